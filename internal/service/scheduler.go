package service

import (
	"context"
	"sync"
	"time"

	"wake_scheduler/internal/device"
	"wake_scheduler/internal/logger"
	"wake_scheduler/internal/metrics"
	"wake_scheduler/internal/models"
	"wake_scheduler/internal/repository"
	"wake_scheduler/internal/schedule"
)

// Shutdown request sources.
const (
	SourceSchedule = "schedule"
	SourceOperator = "operator"
)

// SchedulerService owns the engine for one run and journals every decision.
// The engine is single-threaded; all access goes through mu.
type SchedulerService struct {
	mu        sync.Mutex
	engine    *schedule.Engine
	flag      *device.ShutdownFlag
	resolver  schedule.Resolver
	fallback  bool
	stateRepo repository.StateRepo
	eventRepo repository.EventRepo
	clock     func() time.Time
	log       *logger.Logger
}

func NewSchedulerService(stateRepo repository.StateRepo, eventRepo repository.EventRepo, deps Deps) *SchedulerService {
	if deps.Flag == nil {
		deps.Flag = &device.ShutdownFlag{}
	}
	if deps.Clock == nil {
		deps.Clock = time.Now
	}
	if deps.Log == nil {
		deps.Log = logger.Nop()
	}
	return &SchedulerService{
		engine:    deps.Engine,
		flag:      deps.Flag,
		resolver:  deps.Resolver,
		fallback:  deps.Fallback,
		stateRepo: stateRepo,
		eventRepo: eventRepo,
		clock:     deps.Clock,
		log:       deps.Log.Named("scheduler"),
	}
}

// Boot journals the start of the run and stores the first snapshot.
func (s *SchedulerService) Boot(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.clock()
	cfg := s.engine.Config()
	s.journal(ctx, now, models.EventBoot, "device booted", map[string]any{
		"window_start": cfg.Window.Start.String(),
		"window_end":   cfg.Window.End.String(),
		"on_seconds":   int(cfg.OnDuration / time.Second),
		"off_seconds":  int(cfg.OffDuration / time.Second),
	})

	metrics.SetConfigFallback(s.fallback)
	if s.fallback {
		s.journal(ctx, now, models.EventConfigFallback, "malformed schedule replaced by safe values", nil)
	}

	if rise, set, ok := s.sunTimes(); ok {
		s.log.Infow("solar schedule", "sunrise", rise, "sunset", set)
	}

	s.log.Infow("schedule loaded",
		"window_start", cfg.Window.Start.String(),
		"window_end", cfg.Window.End.String(),
		"on", cfg.OnDuration.String(),
		"off", cfg.OffDuration.String(),
		"fallback", s.fallback,
	)
	s.saveState(ctx, now, nil)
}

// Tick feeds the engine the current time. It reports whether the device
// should power down now, either because the on duration has elapsed or
// because an operator asked for it.
func (s *SchedulerService) Tick(ctx context.Context, now time.Time) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	was := s.engine.Session().ShutdownRequested
	if s.engine.Process(now) && !was {
		metrics.IncShutdownRequest(SourceSchedule)
		s.journal(ctx, now, models.EventShutdownRequested, "on duration elapsed", map[string]any{
			"source":     SourceSchedule,
			"on_seconds": int(s.engine.Config().OnDuration / time.Second),
		})
		s.saveState(ctx, now, nil)
	}
	return s.flag.Requested()
}

// RequestShutdown raises the shutdown flag on behalf of an operator. It
// returns false when a shutdown was already pending.
func (s *SchedulerService) RequestShutdown(ctx context.Context, operator string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.flag.Requested() {
		return false
	}
	s.flag.RequestShutdown()

	now := s.clock()
	metrics.IncShutdownRequest(SourceOperator)
	s.journal(ctx, now, models.EventShutdownRequested, "shutdown requested by operator", map[string]any{
		"source":   SourceOperator,
		"operator": operator,
	})
	s.saveState(ctx, now, nil)
	s.log.Infow("shutdown requested by operator", "operator", operator)
	return true
}

func (s *SchedulerService) ShutdownRequested() bool { return s.flag.Requested() }

// PowerDown reads the battery, programs the RTC alarm and journals the plan.
// It does not cut power.
func (s *SchedulerService) PowerDown(ctx context.Context) (schedule.WakePlan, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	plan, err := s.engine.Shutdown(ctx)
	if err != nil {
		metrics.IncCollaboratorError("shutdown")
		s.journal(ctx, s.clock(), models.EventError, err.Error(), nil)
		return plan, err
	}

	if plan.Tier != schedule.TierNormal {
		s.journal(ctx, plan.Now, models.EventLowVoltage, "sleep extended for low battery", map[string]any{
			"voltage":    plan.Voltage,
			"tier":       plan.Tier.String(),
			"thresholds": s.engine.Thresholds(),
		})
	}
	s.journal(ctx, plan.Now, models.EventWakeScheduled, "wake alarm set for "+plan.WakeAt.String(), map[string]any{
		"wake_at":       plan.WakeAt.String(),
		"inside_window": plan.Inside,
		"sleep_seconds": int(plan.OffDuration / time.Second),
		"tier":          plan.Tier.String(),
	})
	metrics.ObserveWake(plan.Voltage, plan.OffDuration.Seconds(), plan.WakeAt.Offset().Seconds(), plan.Tier.String())
	s.saveState(ctx, plan.Now, &plan)
	return plan, nil
}

// Preview answers "what would happen at this time and voltage" without
// touching the session or the hardware.
func (s *SchedulerService) Preview(at time.Time, voltage float64) schedule.WakePlan {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.engine.Preview(at, voltage)
}

func (s *SchedulerService) Schedule() ScheduleInfo {
	s.mu.Lock()
	defer s.mu.Unlock()

	info := ScheduleInfo{
		Config:     s.engine.Config(),
		Thresholds: s.engine.Thresholds(),
		Fallback:   s.fallback,
		Session:    s.engine.Session(),
	}
	if rise, set, ok := s.sunTimes(); ok {
		info.Sunrise, info.Sunset = &rise, &set
	}
	return info
}

func (s *SchedulerService) sunTimes() (time.Time, time.Time, bool) {
	solar, ok := s.resolver.(schedule.SolarResolver)
	if !ok {
		return time.Time{}, time.Time{}, false
	}
	rise, set := solar.SunTimes()
	if rise.IsZero() || set.IsZero() {
		return time.Time{}, time.Time{}, false
	}
	return rise.UTC(), set.UTC(), true
}

// journal failures are logged and never stop the control loop.
func (s *SchedulerService) journal(ctx context.Context, at time.Time, typ, description string, meta map[string]any) {
	ev := models.ScheduleEvent{
		OccurredAt:  at.UTC(),
		Type:        typ,
		Description: description,
	}
	if meta != nil {
		ev.Metadata = meta
	}
	if err := s.eventRepo.Append(ctx, ev); err != nil {
		s.log.Warnw("journal append failed", "type", typ, "err", err)
	}
}

func (s *SchedulerService) saveState(ctx context.Context, at time.Time, plan *schedule.WakePlan) {
	cfg := s.engine.Config()
	session := s.engine.Session()
	st := models.DeviceState{
		ID:                1,
		StartedAt:         session.StartedAt,
		WindowStart:       cfg.Window.Start.String(),
		WindowEnd:         cfg.Window.End.String(),
		OnSeconds:         int(cfg.OnDuration / time.Second),
		OffSeconds:        int(session.OffDuration / time.Second),
		Fallback:          s.fallback,
		ShutdownRequested: s.flag.Requested(),
		UpdatedAt:         at.UTC(),
	}
	if plan != nil {
		st.Voltage = plan.Voltage
		st.Tier = plan.Tier.String()
		st.NextWake = plan.WakeAt.String()
	}
	if err := s.stateRepo.Save(ctx, st); err != nil {
		s.log.Warnw("state save failed", "err", err)
	}
}
