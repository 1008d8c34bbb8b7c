package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/akhilrajps/sahara-mess/internal/service/payments"
)

// PaymentsHandler exposes payment submission, verification and fines.
type PaymentsHandler struct {
	svc    *payments.Service
	logger *zap.Logger
}

// NewPaymentsHandler constructs the HTTP handler adapter.
func NewPaymentsHandler(svc *payments.Service, logger *zap.Logger) *PaymentsHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PaymentsHandler{svc: svc, logger: logger}
}

func billIDParam(c *gin.Context) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid bill id"})
		return primitive.NilObjectID, false
	}
	return id, true
}

type submitPaymentRequest struct {
	Method         string `json:"method" binding:"required"`
	TransactionRef string `json:"transaction_ref"`
}

// Submit handles POST /api/bills/:id/payments.
func (h *PaymentsHandler) Submit(c *gin.Context) {
	id, ok := billIDParam(c)
	if !ok {
		return
	}

	var req submitPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	bill, sub, err := h.svc.Submit(c.Request.Context(), id, req.Method, req.TransactionRef)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"bill": bill, "submission": sub})
}

type verifyPaymentRequest struct {
	Decision   string `json:"decision" binding:"required,oneof=approve reject"`
	VerifiedBy string `json:"verified_by" binding:"required"`
}

// Verify handles POST /api/bills/:id/verification.
func (h *PaymentsHandler) Verify(c *gin.Context) {
	id, ok := billIDParam(c)
	if !ok {
		return
	}

	var req verifyPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "decision must be approve or reject"})
		return
	}

	bill, err := h.svc.Verify(c.Request.Context(), id, payments.Decision(req.Decision), req.VerifiedBy)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, bill)
}

type applyFineRequest struct {
	Amount float64 `json:"amount" binding:"required"`
	Reason string  `json:"reason" binding:"required"`
}

// ApplyFine handles POST /api/bills/:id/fines.
func (h *PaymentsHandler) ApplyFine(c *gin.Context) {
	id, ok := billIDParam(c)
	if !ok {
		return
	}

	var req applyFineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	bill, err := h.svc.ApplyFine(c.Request.Context(), id, req.Amount, req.Reason)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, bill)
}
