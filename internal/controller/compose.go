package controller

import (
	"encoding/json"
	"net/http"

	"runbox/internal/executor"
	"runbox/pkg/errors"
	"runbox/pkg/utils/response"

	"github.com/gin-gonic/gin"
)

// ExecuteResponse is the success body: the script's declared result and its
// captured console output, always as two separate fields.
type ExecuteResponse struct {
	Result json.RawMessage `json:"result"`
	Stdout string          `json:"stdout"`
}

// composeOutcome maps a classified outcome onto the external contract.
// Client-fault outcomes carry their specific kind and a bounded detail;
// sandbox faults surface as a generic server error.
func composeOutcome(c *gin.Context, outcome executor.Outcome) {
	switch outcome.Kind {
	case executor.OutcomeSuccess:
		c.JSON(http.StatusOK, ExecuteResponse{
			Result: outcome.Result,
			Stdout: outcome.Stdout,
		})
	case executor.OutcomeContractViolation, executor.OutcomeRuntimeFailure:
		err := errors.New(outcome.Code)
		if outcome.Detail != "" {
			err = err.WithMessage(outcome.Detail)
		}
		if outcome.Stdout != "" {
			err = err.WithDetail("stdout", outcome.Stdout)
		}
		response.Error(c, err)
	case executor.OutcomeResourceExceeded:
		err := errors.New(outcome.Code).WithDetail("limit", string(outcome.Limit))
		if outcome.Stdout != "" {
			err = err.WithDetail("stdout", outcome.Stdout)
		}
		response.Error(c, err)
	default:
		// Sandbox failure: server fault, no script-derived detail.
		response.ErrorWithCode(c, errors.SandboxFailure, "")
	}
}
