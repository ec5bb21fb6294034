package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	queryUC "github.com/talentforge/candidate-os/internal/application/usecase/query"
	"github.com/talentforge/candidate-os/pkg/apperror"
	"github.com/talentforge/candidate-os/pkg/logger"
)

type QueryHandler struct {
	queryUseCase *queryUC.QueryUseCase
	logger       logger.Logger
}

func NewQueryHandler(uc *queryUC.QueryUseCase, log logger.Logger) *QueryHandler {
	return &QueryHandler{queryUseCase: uc, logger: log}
}

func (h *QueryHandler) Query(c *gin.Context) {
	var req QueryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperror.NewInvalidInput("'request' field is required", err))
		return
	}

	output, err := h.queryUseCase.Execute(c.Request.Context(), queryUC.QueryInput{Request: req.Request})
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, QueryResponse{
		SQL:     output.SQL,
		Columns: output.Columns,
		Rows:    output.Rows,
	})
}
