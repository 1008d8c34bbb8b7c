package students

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/akhilrajps/sahara-mess/internal/domain/models"
	"github.com/akhilrajps/sahara-mess/internal/repository/mongodb"
)

// Service handles student registration and the one-shot admin approval decision.
type Service struct {
	students mongodb.StudentRepository
	logger   *zap.Logger
	now      func() time.Time
}

// NewService wires a students service instance.
func NewService(students mongodb.StudentRepository, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{students: students, logger: logger, now: time.Now}
}

// Register creates a pending student. The mess number must already be canonical.
func (s *Service) Register(ctx context.Context, messNo, name, room string, saharaInmate bool) (models.Student, error) {
	normalized, ok := models.NormalizeMessNo(messNo)
	if !ok {
		return models.Student{}, fmt.Errorf("%w: %q", models.ErrUnparsableIdentifier, messNo)
	}

	student := models.Student{
		MessNo:       normalized,
		Name:         name,
		Room:         room,
		SaharaInmate: saharaInmate,
		Approval:     models.ApprovalPending,
		RegisteredAt: s.now(),
	}

	student, err := s.students.InsertStudent(ctx, student)
	if err != nil {
		return models.Student{}, err
	}

	s.logger.Info("student registered", zap.String("mess_no", student.MessNo))
	return student, nil
}

// Decide applies the admin approval decision exactly once.
func (s *Service) Decide(ctx context.Context, messNo string, approve bool, decidedBy string) (models.Student, error) {
	decision := models.ApprovalRejected
	if approve {
		decision = models.ApprovalApproved
	}

	student, err := s.students.DecideStudent(ctx, messNo, decision, decidedBy, s.now())
	if err != nil {
		return models.Student{}, err
	}

	s.logger.Info("registration decided",
		zap.String("mess_no", messNo),
		zap.String("decision", string(decision)),
		zap.String("decided_by", decidedBy))
	return student, nil
}
