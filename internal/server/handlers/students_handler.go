package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/akhilrajps/sahara-mess/internal/service/students"
)

// StudentsHandler exposes registration and the admin approval decision.
type StudentsHandler struct {
	svc    *students.Service
	logger *zap.Logger
}

// NewStudentsHandler constructs the HTTP handler adapter.
func NewStudentsHandler(svc *students.Service, logger *zap.Logger) *StudentsHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StudentsHandler{svc: svc, logger: logger}
}

type registerStudentRequest struct {
	MessNo       string `json:"mess_no" binding:"required"`
	Name         string `json:"name" binding:"required"`
	Room         string `json:"room"`
	SaharaInmate bool   `json:"sahara_inmate"`
}

// Register handles POST /api/students.
func (h *StudentsHandler) Register(c *gin.Context) {
	var req registerStudentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	student, err := h.svc.Register(c.Request.Context(), req.MessNo, req.Name, req.Room, req.SaharaInmate)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusCreated, student)
}

type approvalRequest struct {
	Approve   *bool  `json:"approve" binding:"required"`
	DecidedBy string `json:"decided_by" binding:"required"`
}

// Decide handles POST /api/students/:messNo/approval.
func (h *StudentsHandler) Decide(c *gin.Context) {
	var req approvalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	student, err := h.svc.Decide(c.Request.Context(), c.Param("messNo"), *req.Approve, req.DecidedBy)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, student)
}
