package main

import (
	"context"
	"fmt"
	"io"
	"time"

	"wake_scheduler/internal/logger"
	"wake_scheduler/internal/schedule"

	"github.com/spf13/afero"
	"github.com/urfave/cli"
)

func printPlan(c *cli.Context) error {
	settings, err := loadSettings(c)
	if err != nil {
		return err
	}
	log := logger.Get(settings.LogLevel)

	at := utcNow()
	if s := c.String("at"); s != "" {
		parsed, err := time.Parse(time.RFC3339, s)
		if err != nil {
			return fmt.Errorf("invalid --at %q: use RFC3339", s)
		}
		at = parsed.UTC()
	}

	voltage := c.Float64("voltage")
	if voltage < 0 {
		hw := newHardware(settings.Device, afero.NewOsFs(), utcNow, log.Named("device"))
		voltage, err = hw.sensor.ReadVoltage(context.Background())
		if err != nil {
			return fmt.Errorf("read voltage: %w", err)
		}
	}

	cfg, fallback, resolver := buildSchedule(settings, at, log.Named("schedule"))
	// no hardware: the engine only previews
	engine := schedule.NewEngine(cfg, settings.Thresholds, schedule.Deps{Clock: func() time.Time { return at }}, log.Named("engine"))
	writePlan(c.App.Writer, cfg, fallback, resolver, engine.Preview(at, voltage))
	return nil
}

func writePlan(w io.Writer, cfg schedule.Config, fallback bool, resolver schedule.Resolver, plan schedule.WakePlan) {
	fmt.Fprintf(w, "window:    %s - %s\n", cfg.Window.Start, cfg.Window.End)
	fmt.Fprintf(w, "on:        %s\n", cfg.OnDuration)
	fmt.Fprintf(w, "off:       %s\n", cfg.OffDuration)
	fmt.Fprintf(w, "fallback:  %t\n", fallback)
	if solar, ok := resolver.(schedule.SolarResolver); ok {
		rise, set := solar.SunTimes()
		if !rise.IsZero() && !set.IsZero() {
			fmt.Fprintf(w, "sunrise:   %s\n", rise.UTC().Format(time.RFC3339))
			fmt.Fprintf(w, "sunset:    %s\n", set.UTC().Format(time.RFC3339))
		}
	}
	fmt.Fprintf(w, "at:        %s\n", plan.Now.Format(time.RFC3339))
	fmt.Fprintf(w, "voltage:   %.3f V (%s)\n", plan.Voltage, plan.Tier)
	fmt.Fprintf(w, "sleep:     %s\n", plan.OffDuration)
	fmt.Fprintf(w, "in window: %t\n", plan.Inside)
	fmt.Fprintf(w, "wake at:   %s\n", plan.WakeAt)
}
