package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"time"

	"go.uber.org/zap"

	"github.com/akhilrajps/sahara-mess/internal/config"
	"github.com/akhilrajps/sahara-mess/internal/repository/mongodb"
	"github.com/akhilrajps/sahara-mess/internal/repository/sheets"
	"github.com/akhilrajps/sahara-mess/internal/scheduler"
	"github.com/akhilrajps/sahara-mess/internal/server/handlers"
	"github.com/akhilrajps/sahara-mess/internal/server/router"
	attendancesvc "github.com/akhilrajps/sahara-mess/internal/service/attendance"
	billingsvc "github.com/akhilrajps/sahara-mess/internal/service/billing"
	messcutsvc "github.com/akhilrajps/sahara-mess/internal/service/messcut"
	paymentssvc "github.com/akhilrajps/sahara-mess/internal/service/payments"
	studentssvc "github.com/akhilrajps/sahara-mess/internal/service/students"
	"github.com/akhilrajps/sahara-mess/pkg/clients/push"
	"github.com/akhilrajps/sahara-mess/pkg/logger"
)

func main() {
	cfg, err := config.Load("")
	if err != nil {
		panic(err)
	}

	baseLogger := logger.Must(logger.New())
	defer func() { _ = baseLogger.Sync() }()

	zap.ReplaceGlobals(baseLogger)

	loc := cfg.Location()

	repo, err := mongodb.NewRepository(context.Background(), cfg.MongoDB.URI, cfg.MongoDB.DBName)
	if err != nil {
		baseLogger.Fatal("failed to init mongodb repository", zap.Error(err))
	}
	defer func() {
		if err := repo.Close(context.Background()); err != nil {
			baseLogger.Error("failed to close mongodb connection", zap.Error(err))
		}
	}()

	var notifier push.Client
	if cfg.Push.ServerKey != "" {
		notifier = push.NewClient(cfg.Push)
		baseLogger.Info("push notification client enabled")
	} else {
		baseLogger.Warn("push server key missing, notifications disabled")
	}

	var register sheets.Exporter
	if cfg.Sheets.SpreadsheetID != "" {
		register, err = sheets.NewBillRegister(context.Background(), cfg.Sheets, baseLogger.Named("repo.sheets"))
		if err != nil {
			baseLogger.Fatal("failed to init bill register export", zap.Error(err))
		}
	} else {
		baseLogger.Warn("bill register spreadsheet not configured, export disabled")
	}

	studentsSvc := studentssvc.NewService(repo, baseLogger.Named("svc.students"))
	messCutSvc := messcutsvc.NewService(repo, repo, notifier, loc, baseLogger.Named("svc.messcut"))
	attendanceSvc := attendancesvc.NewService(repo, repo, repo, loc, baseLogger.Named("svc.attendance"))
	billingSvc := billingsvc.NewService(repo, repo, repo, register, notifier, baseLogger.Named("svc.billing"))
	paymentsSvc := paymentssvc.NewService(repo, notifier, baseLogger.Named("svc.payments"))

	engine := router.New(router.Handlers{
		Students:   handlers.NewStudentsHandler(studentsSvc, baseLogger.Named("handlers.students")),
		MessCuts:   handlers.NewMessCutHandler(messCutSvc, baseLogger.Named("handlers.messcut")),
		Attendance: handlers.NewAttendanceHandler(attendanceSvc, baseLogger.Named("handlers.attendance")),
		Billing:    handlers.NewBillingHandler(billingSvc, baseLogger.Named("handlers.billing")),
		Payments:   handlers.NewPaymentsHandler(paymentsSvc, baseLogger.Named("handlers.payments")),
	}, baseLogger.Named("router"))

	sched := scheduler.NewScheduler(*cfg, billingSvc, loc, baseLogger.Named("scheduler"))
	sched.Start()
	defer sched.Stop()

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      engine,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	go func() {
		baseLogger.Info("server starting", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			baseLogger.Fatal("http server crashed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	baseLogger.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		baseLogger.Error("graceful shutdown failed", zap.Error(err))
	}
}
