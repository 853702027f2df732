package schedule

import (
	"context"
	"errors"
	"fmt"
	"time"

	"wake_scheduler/internal/logger"
)

// VoltageSensor reads the battery voltage.
type VoltageSensor interface {
	ReadVoltage(ctx context.Context) (float64, error)
}

// RTC is the hardware real-time clock holding the wake alarm.
type RTC interface {
	Now(ctx context.Context) (time.Time, error)
	SetAlarm(ctx context.Context, at TimeOfDay) error
}

// ShutdownRequester receives the "awake long enough" signal. The outer
// control loop owns the actual power-down.
type ShutdownRequester interface {
	RequestShutdown()
}

// ErrNoHardware is returned by Shutdown on an engine built without a sensor
// or RTC; such engines only serve Preview.
var ErrNoHardware = errors.New("engine has no voltage sensor or rtc")

// Deps are the collaborators of an Engine. Sensor and RTC may be nil for an
// engine that only previews plans.
type Deps struct {
	Sensor VoltageSensor
	RTC    RTC
	Flag   ShutdownRequester
	Clock  func() time.Time
}

// Session is the per-boot state of the engine.
type Session struct {
	StartedAt         time.Time     `json:"started_at"`
	Ready             bool          `json:"ready"`
	OffDuration       time.Duration `json:"off_duration"`
	ShutdownRequested bool          `json:"shutdown_requested"`
}

// WakePlan is the outcome of one shutdown decision.
type WakePlan struct {
	Now         time.Time     `json:"now"`
	Voltage     float64       `json:"voltage"`
	Tier        Tier          `json:"tier"`
	OffDuration time.Duration `json:"off_duration"`
	Inside      bool          `json:"inside_window"`
	WakeAt      TimeOfDay     `json:"wake_at"`
}

// Engine decides when to power down and when to wake up again.
// It is driven from a single goroutine; the zero value is not ready and
// ignores every call.
type Engine struct {
	cfg        Config
	thresholds VoltageThresholds
	deps       Deps
	session    Session
	log        *logger.Logger
}

// NewEngine starts a session at the current clock time.
func NewEngine(cfg Config, th VoltageThresholds, deps Deps, log *logger.Logger) *Engine {
	if deps.Clock == nil {
		deps.Clock = time.Now
	}
	if log == nil {
		log = logger.Nop()
	}
	return &Engine{
		cfg:        cfg,
		thresholds: th,
		deps:       deps,
		log:        log,
		session: Session{
			StartedAt:   deps.Clock(),
			OffDuration: cfg.OffDuration,
			Ready:       true,
		},
	}
}

func (e *Engine) Config() Config                { return e.cfg }
func (e *Engine) Thresholds() VoltageThresholds { return e.thresholds }
func (e *Engine) Session() Session              { return e.session }

// Process requests a shutdown once the device has been awake for OnDuration.
// It reports whether a shutdown has been requested.
func (e *Engine) Process(now time.Time) bool {
	if !e.session.Ready {
		return false
	}
	if e.session.ShutdownRequested {
		return true
	}
	if now.Sub(e.session.StartedAt) < e.cfg.OnDuration {
		return false
	}
	e.log.Infow("online too long, shutdown needed",
		"started_at", e.session.StartedAt,
		"on_duration", e.cfg.OnDuration.String(),
	)
	e.session.ShutdownRequested = true
	if e.deps.Flag != nil {
		e.deps.Flag.RequestShutdown()
	}
	return true
}

// Shutdown adapts the sleep duration to the battery, computes the next wake
// time and programs the RTC alarm. Sensor and RTC failures are returned as is
// to the caller.
func (e *Engine) Shutdown(ctx context.Context) (WakePlan, error) {
	if !e.session.Ready {
		return WakePlan{}, nil
	}
	if e.deps.Sensor == nil || e.deps.RTC == nil {
		return WakePlan{}, ErrNoHardware
	}

	voltage, err := e.deps.Sensor.ReadVoltage(ctx)
	if err != nil {
		return WakePlan{}, fmt.Errorf("read voltage: %w", err)
	}

	off, tier := Adapt(e.cfg.OffDuration, voltage, e.thresholds)
	e.session.OffDuration = off
	switch tier {
	case TierHalf:
		e.log.Warnw("low voltage: doubling sleep duration", "voltage", voltage, "threshold", e.thresholds.Half)
	case TierQuarter:
		e.log.Warnw("low voltage: quadrupling sleep duration", "voltage", voltage, "threshold", e.thresholds.Quarter)
	}

	now, err := e.deps.RTC.Now(ctx)
	if err != nil {
		return WakePlan{}, fmt.Errorf("read rtc time: %w", err)
	}

	wake, inside := NextWake(e.cfg.Window, now, off)
	plan := WakePlan{
		Now:         now,
		Voltage:     voltage,
		Tier:        tier,
		OffDuration: off,
		Inside:      inside,
		WakeAt:      wake,
	}

	e.log.Infow("scheduling next wakeup", "wake_at", wake.String(), "inside_window", inside, "sleep", off.String())
	if err := e.deps.RTC.SetAlarm(ctx, wake); err != nil {
		return plan, fmt.Errorf("set rtc alarm %s: %w", wake, err)
	}
	return plan, nil
}

// Preview runs the shutdown decision for a hypothetical time and voltage
// without touching the session or the hardware.
func (e *Engine) Preview(now time.Time, voltage float64) WakePlan {
	off, tier := Adapt(e.cfg.OffDuration, voltage, e.thresholds)
	wake, inside := NextWake(e.cfg.Window, now, off)
	return WakePlan{
		Now:         now,
		Voltage:     voltage,
		Tier:        tier,
		OffDuration: off,
		Inside:      inside,
		WakeAt:      wake,
	}
}

// NextWake returns the next wake time of day. While inside the window the
// device sleeps for off; outside it sleeps until the window reopens.
func NextWake(w Window, now time.Time, off time.Duration) (TimeOfDay, bool) {
	if inWindow(w, now) {
		return ClockOf(now.Add(off)), true
	}
	return w.Start, false
}

func inWindow(w Window, now time.Time) bool {
	t := sinceMidnight(now)
	start, end := w.Start.Offset(), w.End.Offset()
	if !w.Wraps() {
		return start < t && t < end
	}
	return (t < start && t < end) || (t >= start && t >= end)
}
