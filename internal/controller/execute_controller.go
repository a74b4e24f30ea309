package controller

import (
	"context"

	"runbox/internal/executor"
	"runbox/pkg/utils/response"

	"github.com/gin-gonic/gin"
)

// Executor runs one script and classifies the outcome.
type Executor interface {
	Execute(ctx context.Context, script string) executor.Outcome
}

// ExecuteRequest is the inbound execution request body.
type ExecuteRequest struct {
	Script string `json:"script" binding:"required"`
}

// ExecuteController handles script execution requests.
type ExecuteController struct {
	exec Executor
}

// NewExecuteController creates a new controller.
func NewExecuteController(exec Executor) *ExecuteController {
	return &ExecuteController{exec: exec}
}

// Execute runs one submitted script synchronously and writes the composed
// response.
func (h *ExecuteController) Execute(c *gin.Context) {
	var req ExecuteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Missing 'script' in request")
		return
	}

	outcome := h.exec.Execute(c.Request.Context(), req.Script)
	composeOutcome(c, outcome)
}

// Health reports service liveness.
func (h *ExecuteController) Health(c *gin.Context) {
	response.Success(c, gin.H{"status": "ok"})
}
