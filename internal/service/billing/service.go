package billing

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/akhilrajps/sahara-mess/internal/domain/models"
	"github.com/akhilrajps/sahara-mess/internal/repository/mongodb"
	"github.com/akhilrajps/sahara-mess/internal/repository/sheets"
	"github.com/akhilrajps/sahara-mess/pkg/clients/push"
)

// GenerateParams carries the charges and eligibility flags of one bill run.
// DaysInMonth must match the calendar length of Month; the HTTP and scheduler
// adapters validate that before the run starts.
type GenerateParams struct {
	Month                string
	DaysInMonth          int
	PerDayCharge         float64
	EstablishmentCharge  float64
	FeastCharge          float64
	SpecialCharge        float64
	IncludeSaharaInmates bool
	ApprovedOnly         bool
	AutoPublish          bool
}

// SkippedStudent names a student left out of a run and why.
type SkippedStudent struct {
	MessNo string `json:"mess_no"`
	Reason string `json:"reason"`
}

// RunSummary is the outcome of one bill-generation batch.
type RunSummary struct {
	RunID       string           `json:"run_id"`
	Month       string           `json:"month"`
	Generated   int              `json:"generated"`
	TotalAmount float64          `json:"total_amount"`
	Skipped     []SkippedStudent `json:"skipped"`
}

// Service is the monthly bill-generation engine plus publication. Each student's
// bill is created independently: one failure lands in the run summary, never
// aborts the batch, and a (student, month) that already has a bill is skipped.
type Service struct {
	students mongodb.StudentRepository
	cuts     mongodb.MessCutRepository
	bills    mongodb.BillRepository
	register sheets.Exporter
	notifier push.Client
	logger   *zap.Logger
	now      func() time.Time
}

// NewService wires a billing service instance. register and notifier may be nil;
// both are best-effort collaborators.
func NewService(students mongodb.StudentRepository, cuts mongodb.MessCutRepository, bills mongodb.BillRepository, register sheets.Exporter, notifier push.Client, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		students: students,
		cuts:     cuts,
		bills:    bills,
		register: register,
		notifier: notifier,
		logger:   logger,
		now:      time.Now,
	}
}

// Generate runs the monthly close for params.Month and returns the run summary.
func (s *Service) Generate(ctx context.Context, params GenerateParams) (RunSummary, error) {
	monthStart, err := time.Parse(models.MonthLayout, params.Month)
	if err != nil {
		return RunSummary{}, fmt.Errorf("parse month %q: %w", params.Month, err)
	}
	monthEnd := monthStart.AddDate(0, 1, -1)

	students, err := s.students.ListStudents(ctx, params.IncludeSaharaInmates)
	if err != nil {
		return RunSummary{}, err
	}

	summary := RunSummary{
		RunID:   uuid.NewString(),
		Month:   params.Month,
		Skipped: []SkippedStudent{},
	}
	generatedAt := s.now()
	var generated []models.Bill

	for _, student := range students {
		if params.ApprovedOnly && !student.Approved() {
			summary.Skipped = append(summary.Skipped, SkippedStudent{MessNo: student.MessNo, Reason: "student not approved"})
			continue
		}

		cutDays, err := s.cuts.SumGrantedIntersecting(ctx, student.MessNo, monthStart, monthEnd)
		if err != nil {
			s.logger.Error("failed reading mess cuts for bill",
				zap.String("mess_no", student.MessNo), zap.String("month", params.Month), zap.Error(err))
			summary.Skipped = append(summary.Skipped, SkippedStudent{MessNo: student.MessNo, Reason: "mess cut lookup failed"})
			continue
		}

		billableDays := models.BillableDays(params.DaysInMonth, cutDays)
		bill := models.Bill{
			MessNo:              student.MessNo,
			Month:               params.Month,
			BillableDays:        billableDays,
			PerDayCharge:        params.PerDayCharge,
			EstablishmentCharge: params.EstablishmentCharge,
			FeastCharge:         params.FeastCharge,
			SpecialCharge:       params.SpecialCharge,
			Fines:               []models.Fine{},
			Status:              models.BillUnpaid,
			Published:           params.AutoPublish,
			GeneratedAt:         generatedAt,
		}
		bill.RecomputeTotal()

		bill, err = s.bills.InsertBill(ctx, bill)
		if err != nil {
			reason := "bill creation failed"
			if errors.Is(err, models.ErrBillExists) {
				reason = "bill already generated"
			} else {
				s.logger.Error("failed inserting bill",
					zap.String("mess_no", student.MessNo), zap.String("month", params.Month), zap.Error(err))
			}
			summary.Skipped = append(summary.Skipped, SkippedStudent{MessNo: student.MessNo, Reason: reason})
			continue
		}

		summary.Generated++
		summary.TotalAmount += bill.TotalAmount
		generated = append(generated, bill)

		s.notify(ctx, bill.MessNo, push.EventBillGenerated, "Mess bill generated",
			fmt.Sprintf("Your mess bill for %s is Rs %.2f (%d billable days).", params.Month, bill.TotalAmount, bill.BillableDays))
	}

	s.exportRegister(ctx, params.Month, generated)

	s.logger.Info("bill run complete",
		zap.String("run_id", summary.RunID),
		zap.String("month", summary.Month),
		zap.Int("generated", summary.Generated),
		zap.Float64("total_amount", summary.TotalAmount),
		zap.Int("skipped", len(summary.Skipped)))

	return summary, nil
}

// Publish flips the published flag on the month's unpublished bills and tells the
// students. Returns how many bills were newly published.
func (s *Service) Publish(ctx context.Context, month string) (int, error) {
	bills, err := s.bills.PublishBills(ctx, month)
	if err != nil {
		return 0, err
	}

	for _, bill := range bills {
		s.notify(ctx, bill.MessNo, push.EventBillPublished, "Mess bill published",
			fmt.Sprintf("Your mess bill for %s is ready: Rs %.2f.", month, bill.TotalAmount))
	}

	s.logger.Info("bills published", zap.String("month", month), zap.Int("count", len(bills)))
	return len(bills), nil
}

// BillForMonth fetches one student's bill.
func (s *Service) BillForMonth(ctx context.Context, messNo, month string) (models.Bill, error) {
	return s.bills.GetBillForMonth(ctx, messNo, month)
}

func (s *Service) exportRegister(ctx context.Context, month string, bills []models.Bill) {
	if s.register == nil || len(bills) == 0 {
		return
	}
	if err := s.register.AppendBills(ctx, month, bills); err != nil {
		s.logger.Warn("bill register export failed", zap.String("month", month), zap.Error(err))
	}
}

func (s *Service) notify(ctx context.Context, messNo, event, title, body string) {
	if s.notifier == nil {
		return
	}
	err := s.notifier.Notify(ctx, push.Notification{MessNo: messNo, Event: event, Title: title, Body: body})
	if err != nil {
		s.logger.Warn("bill notification failed", zap.String("mess_no", messNo), zap.Error(err))
	}
}
