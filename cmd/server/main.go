package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/academyops/clinicboard/internal/api"
	"github.com/academyops/clinicboard/internal/app"
	"github.com/academyops/clinicboard/internal/config"
	"github.com/academyops/clinicboard/internal/grid"
	"github.com/academyops/clinicboard/internal/repository"
	"github.com/academyops/clinicboard/internal/service"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

const boardRefreshQuiet = 500 * time.Millisecond

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger := app.NewLogger(cfg.Environment)
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := pgxpool.New(ctx, cfg.DBDSN)
	if err != nil {
		logger.Fatal("Failed to create database pool", zap.Error(err))
	}
	defer pool.Close()

	migrator, err := app.NewMigrator(pool, cfg.MigrationsPath)
	if err != nil {
		logger.Fatal("Failed to create migrator", zap.Error(err))
	}
	if err := migrator.Run(ctx); err != nil {
		logger.Fatal("Failed to apply migrations", zap.Error(err))
	}
	migrator.Close()

	sessionRepo := repository.NewSessionRepository(pool)
	attendanceRepo := repository.NewAttendanceRepository(pool)
	requestRepo := repository.NewEnrollmentRequestRepository(pool)
	memberRepo := repository.NewMemberRepository(pool)

	sessionService := service.NewSessionService(sessionRepo, logger)
	attendanceService := service.NewAttendanceService(attendanceRepo, sessionRepo, logger)
	enrollmentService := service.NewEnrollmentService(requestRepo, memberRepo, logger)

	window := grid.TimeWindow{
		StartHour:     cfg.BoardStartHour,
		EndHour:       cfg.BoardEndHour,
		PixelsPerHour: 60,
	}
	server := api.NewServer(sessionService, attendanceService, enrollmentService, window, logger)

	refresher := app.NewRefresher(boardRefreshQuiet, server.InvalidateBoards, logger)
	defer refresher.Stop()
	sessionService.OnMutate(refresher.Notify)
	attendanceService.OnMutate(refresher.Notify)

	go func() {
		<-ctx.Done()
		logger.Info("Shutting down")
		if err := server.Shutdown(); err != nil {
			logger.Error("Shutdown failed", zap.Error(err))
		}
	}()

	logger.Info("Starting clinicboard",
		zap.String("environment", cfg.Environment),
		zap.String("listen_addr", cfg.ListenAddr),
	)
	if err := server.Listen(cfg.ListenAddr); err != nil {
		logger.Fatal("Server stopped", zap.Error(err))
	}
}
