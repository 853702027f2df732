package main

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"wake_scheduler/internal/device"
	"wake_scheduler/internal/handlers"
	"wake_scheduler/internal/logger"
	"wake_scheduler/internal/metrics"
	"wake_scheduler/internal/repository"
	"wake_scheduler/internal/repository/db"
	"wake_scheduler/internal/schedule"
	"wake_scheduler/internal/server"
	"wake_scheduler/internal/service"

	"github.com/spf13/afero"
	"github.com/urfave/cli"
)

const httpShutdownTimeout = 10 * time.Second

func runDaemon(c *cli.Context) error {
	settings, err := loadSettings(c)
	if err != nil {
		return err
	}

	log := logger.Get(settings.LogLevel)
	for _, w := range settings.Warnings {
		log.Warnw("config warning", "detail", w)
	}
	metrics.Register()

	sqlDB, err := db.InitDB(settings.DBPath)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := sqlDB.Close(); cerr != nil {
			log.Warnw("failed to close sqlite", "err", cerr)
		}
	}()

	now := utcNow()
	cfg, fallback, resolver := buildSchedule(settings, now, log.Named("schedule"))
	hw := newHardware(settings.Device, afero.NewOsFs(), utcNow, log.Named("device"))
	flag := &device.ShutdownFlag{}

	engine := schedule.NewEngine(cfg, settings.Thresholds, schedule.Deps{
		Sensor: hw.sensor,
		RTC:    hw.rtc,
		Flag:   flag,
		Clock:  utcNow,
	}, log.Named("engine"))

	services := service.NewService(repository.NewRepository(sqlDB), service.Deps{
		Engine:   engine,
		Flag:     flag,
		Resolver: resolver,
		Fallback: fallback,
		Power:    hw.power,
		Clock:    utcNow,
		Auth: service.AuthConfig{
			SigningKey:  []byte(settings.Auth.SigningKey),
			TokenTTL:    settings.Auth.TokenTTL,
			SignUpToken: settings.Auth.SignUpToken,
		},
		Log: log,
	})
	apiHandler := handlers.NewHandler(services, log.Named("http"))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	srv := &server.Server{}
	if httpAddr := settings.HTTPAddr(); httpAddr != "" {
		addr, err := srv.Listen(httpAddr)
		if err != nil {
			return err
		}
		go func() {
			if err := srv.Run(httpAddr, apiHandler.InitRoutes()); err != nil {
				log.Errorw("http server stopped", "err", err)
			}
		}()
		log.Infow("maintenance api listening", "addr", addr.String())
	}
	log.Infow("wake scheduler started", "device", settings.Device.Mode, "tick", settings.TickInterval.String())

	plan, runErr := services.Supervisor.Run(ctx, settings.TickInterval)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), httpShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Warnw("http server forced to shutdown", "err", err)
	}

	switch {
	case errors.Is(runErr, context.Canceled):
		log.Infow("interrupted before power-down")
		return nil
	case runErr != nil:
		return fmt.Errorf("shutdown failed: %w", runErr)
	}
	log.Infow("done", "wake_at", plan.WakeAt.String())
	return nil
}
