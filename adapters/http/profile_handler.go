package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/talentforge/candidate-os/internal/domain/candidate"
	"github.com/talentforge/candidate-os/pkg/apperror"
	"github.com/talentforge/candidate-os/pkg/logger"
)

type ProfileHandler struct {
	repo   candidate.Repository
	logger logger.Logger
}

func NewProfileHandler(repo candidate.Repository, log logger.Logger) *ProfileHandler {
	return &ProfileHandler{repo: repo, logger: log}
}

func (h *ProfileHandler) GetProfile(c *gin.Context) {
	id := c.Param("id")

	profile, err := h.repo.GetByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, candidate.ErrProfileNotFound) {
			c.Error(apperror.NewNotFound("candidate", id))
			return
		}
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, ToProfileDTO(profile))
}
