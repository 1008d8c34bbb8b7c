package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/akhilrajps/sahara-mess/internal/domain/models"
)

// respondError maps engine errors onto HTTP statuses. Caller errors keep their
// message; anything unrecognized is a collaborator failure and is reported as
// such without leaking internals.
func respondError(c *gin.Context, logger *zap.Logger, err error) {
	var quota *models.QuotaExceededError
	if errors.As(err, &quota) {
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"error":          quota.Error(),
			"remaining_days": quota.Remaining,
		})
		return
	}

	switch {
	case errors.Is(err, models.ErrStudentNotFound), errors.Is(err, models.ErrBillNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, models.ErrStudentExists),
		errors.Is(err, models.ErrBillExists),
		errors.Is(err, models.ErrAlreadyDecided),
		errors.Is(err, models.ErrInvalidTransition):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case models.IsCallerError(err):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	default:
		logger.Error("collaborator failure", zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": models.ErrCollaboratorUnavailable.Error()})
	}
}
