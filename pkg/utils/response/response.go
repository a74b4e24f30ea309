package response

import (
	"net/http"

	"runbox/pkg/errors"
	"runbox/pkg/utils/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Response represents a standard API error/status response.
type Response struct {
	Code    errors.ErrorCode `json:"code"`               // Error code
	Kind    string           `json:"kind"`               // Outcome family (contract_violation, runtime_failure, ...)
	Message string           `json:"message"`            // Human-readable message
	Details interface{}      `json:"details,omitempty"`  // Additional details (omit if nil)
	TraceID string           `json:"trace_id,omitempty"` // Request trace ID
}

// Success sends a successful response with data
func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, data)
}

// Error sends an error response
// It automatically extracts error code and message from the error
func Error(c *gin.Context, err error) {
	customErr := errors.GetError(err)

	logger.Warn(c.Request.Context(), "request failed",
		zap.Int("code", int(customErr.Code)),
		zap.String("kind", customErr.Code.Kind()),
		zap.String("message", customErr.Error()),
	)

	resp := Response{
		Code:    customErr.Code,
		Kind:    customErr.Code.Kind(),
		Message: customErr.Error(),
		Details: details(customErr),
		TraceID: getTraceID(c),
	}

	c.JSON(customErr.Code.HTTPStatus(), resp)
}

// ErrorWithCode sends an error response with specific error code
func ErrorWithCode(c *gin.Context, code errors.ErrorCode, message string) {
	if message == "" {
		message = code.Message()
	}

	logger.Warn(c.Request.Context(), "request failed",
		zap.Int("code", int(code)),
		zap.String("kind", code.Kind()),
		zap.String("message", message),
	)

	resp := Response{
		Code:    code,
		Kind:    code.Kind(),
		Message: message,
		TraceID: getTraceID(c),
	}

	c.JSON(code.HTTPStatus(), resp)
}

// BadRequest sends a 400 bad request error
func BadRequest(c *gin.Context, message string) {
	ErrorWithCode(c, errors.InvalidParams, message)
}

// InternalServerError sends a 500 internal server error with a generic
// message; the underlying error is logged, never echoed to the caller.
func InternalServerError(c *gin.Context, err error) {
	logger.Error(c.Request.Context(), "internal error", zap.Error(err))
	ErrorWithCode(c, errors.InternalServerError, "")
}

func details(err *errors.Error) interface{} {
	if len(err.Details) == 0 {
		return nil
	}
	return err.Details
}

// getTraceID extracts trace ID from context
func getTraceID(c *gin.Context) string {
	if traceID, exists := c.Get("trace_id"); exists {
		if s, ok := traceID.(string); ok {
			return s
		}
	}
	return ""
}
