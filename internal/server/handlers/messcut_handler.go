package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/akhilrajps/sahara-mess/internal/domain/models"
	"github.com/akhilrajps/sahara-mess/internal/service/messcut"
)

// MessCutHandler exposes the mess-cut application and usage endpoints.
type MessCutHandler struct {
	svc    *messcut.Service
	logger *zap.Logger
}

// NewMessCutHandler constructs the HTTP handler adapter.
func NewMessCutHandler(svc *messcut.Service, logger *zap.Logger) *MessCutHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MessCutHandler{svc: svc, logger: logger}
}

type applyMessCutRequest struct {
	MessNo   string `json:"mess_no" binding:"required"`
	FromDate string `json:"from_date" binding:"required"`
	ToDate   string `json:"to_date" binding:"required"`
}

// Apply handles POST /api/mess-cuts.
func (h *MessCutHandler) Apply(c *gin.Context) {
	var req applyMessCutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid mess cut payload", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	from, err := time.Parse(models.DateLayout, req.FromDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "from_date must be YYYY-MM-DD"})
		return
	}
	to, err := time.Parse(models.DateLayout, req.ToDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "to_date must be YYYY-MM-DD"})
		return
	}

	cut, err := h.svc.Apply(c.Request.Context(), req.MessNo, from, to)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusCreated, cut)
}

// Usage handles GET /api/mess-cuts/:messNo/usage?month=YYYY-MM.
func (h *MessCutHandler) Usage(c *gin.Context) {
	month := c.Query("month")
	if _, err := time.Parse(models.MonthLayout, month); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "month must be YYYY-MM"})
		return
	}

	used, remaining, err := h.svc.Usage(c.Request.Context(), c.Param("messNo"), month)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"mess_no":        c.Param("messNo"),
		"month":          month,
		"used_days":      used,
		"remaining_days": remaining,
		"monthly_cap":    models.MessCutMonthlyCap,
	})
}
