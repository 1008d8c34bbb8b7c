package messcut

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/akhilrajps/sahara-mess/internal/domain/models"
	"github.com/akhilrajps/sahara-mess/internal/repository/mongodb"
	"github.com/akhilrajps/sahara-mess/pkg/clients/push"
)

// Service owns the mess-cut rules: the nightly application cutoff, the date-range
// checks, the auto-approval grant formula and the monthly quota. Applications are
// auto-approved and immutable once taken.
type Service struct {
	students mongodb.StudentRepository
	cuts     mongodb.MessCutRepository
	notifier push.Client
	loc      *time.Location
	logger   *zap.Logger
	now      func() time.Time
}

// NewService wires a mess-cut service instance.
func NewService(students mongodb.StudentRepository, cuts mongodb.MessCutRepository, notifier push.Client, loc *time.Location, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		students: students,
		cuts:     cuts,
		notifier: notifier,
		loc:      loc,
		logger:   logger,
		now:      time.Now,
	}
}

// Usage reports the month-to-date granted days and what is left under the cap.
func (s *Service) Usage(ctx context.Context, messNo, month string) (used, remaining int, err error) {
	used, err = s.cuts.QuotaUsed(ctx, messNo, month)
	if err != nil {
		return 0, 0, err
	}
	remaining = models.MessCutMonthlyCap - used
	if remaining < 0 {
		remaining = 0
	}
	return used, remaining, nil
}

// Apply validates and records a mess-cut request. Checks run in a fixed order and
// fail fast: the 21:00 application cutoff, then the date range (tomorrow or later,
// to on or after from), then the monthly quota. Granted days come from the
// auto-approval formula and the quota reservation is atomic per student, so
// concurrent requests cannot jointly overshoot the cap.
func (s *Service) Apply(ctx context.Context, messNo string, from, to time.Time) (models.MessCutApplication, error) {
	student, err := s.students.GetStudent(ctx, messNo)
	if err != nil {
		return models.MessCutApplication{}, err
	}
	if !student.Approved() {
		return models.MessCutApplication{}, models.ErrStudentNotApproved
	}

	now := s.now().In(s.loc)
	if now.Hour() >= models.MessCutCutoffHour {
		return models.MessCutApplication{}, models.ErrApplicationWindowClosed
	}

	fromDate := models.DateOnly(from)
	toDate := models.DateOnly(to)
	today := models.DateOnly(now)

	if !fromDate.After(today) {
		return models.MessCutApplication{}, models.ErrInvalidDateRange
	}
	if toDate.Before(fromDate) {
		return models.MessCutApplication{}, models.ErrInvalidDateRange
	}

	requested := models.RequestedDays(fromDate, toDate)
	granted := models.GrantedDays(requested)
	month := models.MonthKey(fromDate)

	if granted > 0 {
		if err := s.cuts.ReserveQuota(ctx, messNo, month, granted, models.MessCutMonthlyCap); err != nil {
			return models.MessCutApplication{}, err
		}
	}

	cut := models.MessCutApplication{
		MessNo:        messNo,
		FromDate:      fromDate,
		ToDate:        toDate,
		RequestedDays: requested,
		GrantedDays:   granted,
		Month:         month,
		AppliedAt:     now,
	}

	cut, err = s.cuts.InsertMessCut(ctx, cut)
	if err != nil {
		// Hand the reserved days back so a failed persist leaves no partial record.
		if granted > 0 {
			if releaseErr := s.cuts.ReleaseQuota(ctx, messNo, month, granted); releaseErr != nil {
				s.logger.Error("failed releasing quota after insert failure",
					zap.String("mess_no", messNo), zap.String("month", month), zap.Error(releaseErr))
			}
		}
		return models.MessCutApplication{}, err
	}

	s.logger.Info("mess cut applied",
		zap.String("mess_no", messNo),
		zap.String("from", fromDate.Format(models.DateLayout)),
		zap.String("to", toDate.Format(models.DateLayout)),
		zap.Int("requested", requested),
		zap.Int("granted", granted))

	s.notify(ctx, cut)

	return cut, nil
}

func (s *Service) notify(ctx context.Context, cut models.MessCutApplication) {
	if s.notifier == nil {
		return
	}
	err := s.notifier.Notify(ctx, push.Notification{
		MessNo: cut.MessNo,
		Event:  push.EventMessCutApplied,
		Title:  "Mess cut applied",
		Body: fmt.Sprintf("Mess cut from %s to %s recorded, %d day(s) granted.",
			cut.FromDate.Format(models.DateLayout), cut.ToDate.Format(models.DateLayout), cut.GrantedDays),
	})
	if err != nil {
		s.logger.Warn("mess cut notification failed", zap.String("mess_no", cut.MessNo), zap.Error(err))
	}
}
