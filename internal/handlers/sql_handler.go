package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"admin_codegen/internal/responses"
	"admin_codegen/internal/services"
)

type SQLExecutor interface {
	Execute(ctx context.Context, script string) ([]services.StatementResult, error)
}

type SQLHandler struct {
	executor SQLExecutor
}

func NewSQLHandler(executor SQLExecutor) *SQLHandler {
	return &SQLHandler{executor: executor}
}

func (h *SQLHandler) Execute(c *gin.Context) {
	var req services.ExecuteSQLRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		responses.Fail(c, http.StatusBadRequest, err, "Invalid request body")
		return
	}

	results, err := h.executor.Execute(c.Request.Context(), req.SQL)
	if err != nil {
		responses.Fail(c, http.StatusBadRequest, err, "SQL execution failed")
		return
	}
	responses.Success(c, http.StatusOK, results, "SQL executed successfully")
}
