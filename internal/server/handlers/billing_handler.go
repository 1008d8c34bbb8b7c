package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/akhilrajps/sahara-mess/internal/domain/models"
	"github.com/akhilrajps/sahara-mess/internal/service/billing"
)

// BillingHandler exposes bill generation, publication and lookup.
type BillingHandler struct {
	svc    *billing.Service
	logger *zap.Logger
}

// NewBillingHandler constructs the HTTP handler adapter.
func NewBillingHandler(svc *billing.Service, logger *zap.Logger) *BillingHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BillingHandler{svc: svc, logger: logger}
}

type generateBillsRequest struct {
	Month                string  `json:"month" binding:"required"`
	DaysInMonth          int     `json:"days_in_month"`
	PerDayCharge         float64 `json:"per_day_charge" binding:"required,gt=0"`
	EstablishmentCharge  float64 `json:"establishment_charge" binding:"gte=0"`
	FeastCharge          float64 `json:"feast_charge" binding:"gte=0"`
	SpecialCharge        float64 `json:"special_charge" binding:"gte=0"`
	IncludeSaharaInmates *bool   `json:"include_sahara_inmates"`
	ApprovedOnly         *bool   `json:"approved_only"`
	AutoPublish          bool    `json:"auto_publish"`
}

// Generate handles POST /api/bills/generate. days_in_month may be omitted; when
// provided it must match the calendar length of the month — the engine itself
// trusts the value, so the mismatch is caught here at the boundary.
func (h *BillingHandler) Generate(c *gin.Context) {
	var req generateBillsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid bill generation payload", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	monthStart, err := time.Parse(models.MonthLayout, req.Month)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "month must be YYYY-MM"})
		return
	}

	calendarDays := monthStart.AddDate(0, 1, -1).Day()
	if req.DaysInMonth == 0 {
		req.DaysInMonth = calendarDays
	}
	if req.DaysInMonth != calendarDays {
		c.JSON(http.StatusBadRequest, gin.H{"error": "days_in_month does not match the calendar month"})
		return
	}

	params := billing.GenerateParams{
		Month:                req.Month,
		DaysInMonth:          req.DaysInMonth,
		PerDayCharge:         req.PerDayCharge,
		EstablishmentCharge:  req.EstablishmentCharge,
		FeastCharge:          req.FeastCharge,
		SpecialCharge:        req.SpecialCharge,
		IncludeSaharaInmates: boolOrDefault(req.IncludeSaharaInmates, true),
		ApprovedOnly:         boolOrDefault(req.ApprovedOnly, true),
		AutoPublish:          req.AutoPublish,
	}

	summary, err := h.svc.Generate(c.Request.Context(), params)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, summary)
}

type publishBillsRequest struct {
	Month string `json:"month" binding:"required"`
}

// Publish handles POST /api/bills/publish.
func (h *BillingHandler) Publish(c *gin.Context) {
	var req publishBillsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	if _, err := time.Parse(models.MonthLayout, req.Month); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "month must be YYYY-MM"})
		return
	}

	count, err := h.svc.Publish(c.Request.Context(), req.Month)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"month": req.Month, "published": count})
}

// Get handles GET /api/bills/:messNo/:month.
func (h *BillingHandler) Get(c *gin.Context) {
	month := c.Param("month")
	if _, err := time.Parse(models.MonthLayout, month); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "month must be YYYY-MM"})
		return
	}

	bill, err := h.svc.BillForMonth(c.Request.Context(), c.Param("messNo"), month)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, bill)
}

func boolOrDefault(v *bool, fallback bool) bool {
	if v == nil {
		return fallback
	}
	return *v
}
