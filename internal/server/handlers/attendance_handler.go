package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/akhilrajps/sahara-mess/internal/domain/models"
	"github.com/akhilrajps/sahara-mess/internal/service/attendance"
)

// AttendanceHandler exposes the meal-scan and identifier-resolution endpoints.
type AttendanceHandler struct {
	svc    *attendance.Service
	logger *zap.Logger
}

// NewAttendanceHandler constructs the HTTP handler adapter.
func NewAttendanceHandler(svc *attendance.Service, logger *zap.Logger) *AttendanceHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AttendanceHandler{svc: svc, logger: logger}
}

type scanRequest struct {
	// Either the resolved mess number or the raw decoded QR text must be present.
	MessNo  string `json:"mess_no"`
	RawText string `json:"raw_text"`
	StaffID string `json:"staff_id" binding:"required"`
}

// Scan handles POST /api/attendance/scans. The meal type is derived from the scan
// time server-side; any meal the client claims is ignored.
func (h *AttendanceHandler) Scan(c *gin.Context) {
	var req scanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid scan payload", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	messNo := req.MessNo
	if messNo == "" {
		resolved, err := models.ResolveIdentifier(req.RawText)
		if err != nil {
			respondError(c, h.logger, err)
			return
		}
		messNo = resolved
	}

	record, created, err := h.svc.Mark(c.Request.Context(), messNo, req.StaffID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	status := http.StatusCreated
	if !created {
		status = http.StatusOK
	}
	c.JSON(status, gin.H{"record": record, "created": created})
}

type resolveIdentifierRequest struct {
	RawText string `json:"raw_text" binding:"required"`
}

// ResolveIdentifier handles POST /api/identifiers/resolve.
func (h *AttendanceHandler) ResolveIdentifier(c *gin.Context) {
	var req resolveIdentifierRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	messNo, err := models.ResolveIdentifier(req.RawText)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"mess_no": messNo})
}
