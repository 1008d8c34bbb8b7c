package scheduler

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/akhilrajps/sahara-mess/internal/config"
	"github.com/akhilrajps/sahara-mess/internal/domain/models"
	"github.com/akhilrajps/sahara-mess/internal/service/billing"
)

// Scheduler runs the monthly close: shortly after a month ends it generates the
// bills for that month with the configured standard charges.
type Scheduler struct {
	cron       *cron.Cron
	billingSvc *billing.Service
	cfg        config.Config
	loc        *time.Location
	logger     *zap.Logger
}

// NewScheduler creates a new scheduler instance.
func NewScheduler(cfg config.Config, billingSvc *billing.Service, loc *time.Location, logger *zap.Logger) *Scheduler {
	if logger == nil {
		logger = zap.NewNop()
	}

	c := cron.New(cron.WithLocation(loc))

	return &Scheduler{
		cron:       c,
		billingSvc: billingSvc,
		cfg:        cfg,
		loc:        loc,
		logger:     logger,
	}
}

// Start registers the monthly close job and starts the cron loop. The default
// schedule fires on the 1st at 06:00 mess-local time, generating bills for the
// month that just ended.
func (s *Scheduler) Start() {
	s.logger.Info("starting scheduler", zap.String("schedule", s.cfg.Billing.CronSchedule))

	_, err := s.cron.AddFunc(s.cfg.Billing.CronSchedule, s.runMonthlyClose)
	if err != nil {
		s.logger.Error("failed to schedule monthly close", zap.Error(err))
	}

	s.cron.Start()
}

// Stop stops the scheduler.
func (s *Scheduler) Stop() {
	s.logger.Info("stopping scheduler")
	s.cron.Stop()
}

func (s *Scheduler) runMonthlyClose() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	now := time.Now().In(s.loc)
	prevMonthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, -1, 0)
	month := models.MonthKey(prevMonthStart)
	daysInMonth := prevMonthStart.AddDate(0, 1, -1).Day()

	s.logger.Info("running monthly close", zap.String("month", month))

	summary, err := s.billingSvc.Generate(ctx, billing.GenerateParams{
		Month:                month,
		DaysInMonth:          daysInMonth,
		PerDayCharge:         s.cfg.Mess.PerDayCharge,
		EstablishmentCharge:  s.cfg.Mess.EstablishmentCharge,
		FeastCharge:          s.cfg.Mess.FeastCharge,
		SpecialCharge:        s.cfg.Mess.SpecialCharge,
		IncludeSaharaInmates: s.cfg.Billing.IncludeSaharaInmates,
		ApprovedOnly:         true,
		AutoPublish:          s.cfg.Billing.AutoPublish,
	})
	if err != nil {
		s.logger.Error("monthly close failed", zap.String("month", month), zap.Error(err))
		return
	}

	s.logger.Info("monthly close finished",
		zap.String("run_id", summary.RunID),
		zap.String("month", month),
		zap.Int("generated", summary.Generated),
		zap.Int("skipped", len(summary.Skipped)))
}
