package service

import (
	"context"
	"time"

	"wake_scheduler/internal/device"
	"wake_scheduler/internal/logger"
	"wake_scheduler/internal/metrics"
	"wake_scheduler/internal/schedule"
)

// SupervisorService is the outer control loop: it ticks the scheduler and,
// once a shutdown is requested, programs the wake alarm and cuts power.
type SupervisorService struct {
	scheduler *SchedulerService
	power     device.PowerSwitch
	clock     func() time.Time
	log       *logger.Logger
}

func NewSupervisorService(scheduler *SchedulerService, power device.PowerSwitch, clock func() time.Time, log *logger.Logger) *SupervisorService {
	if clock == nil {
		clock = time.Now
	}
	if log == nil {
		log = logger.Nop()
	}
	return &SupervisorService{scheduler: scheduler, power: power, clock: clock, log: log}
}

// Run boots the scheduler and ticks at the given interval until the device
// powers down or ctx is canceled. The first tick happens immediately.
func (s *SupervisorService) Run(ctx context.Context, tick time.Duration) (schedule.WakePlan, error) {
	s.scheduler.Boot(ctx)

	t := time.NewTicker(tick)
	defer t.Stop()
	for {
		if s.scheduler.Tick(ctx, s.clock()) {
			return s.powerDown(ctx)
		}
		select {
		case <-ctx.Done():
			return schedule.WakePlan{}, ctx.Err()
		case <-t.C:
		}
	}
}

func (s *SupervisorService) powerDown(ctx context.Context) (schedule.WakePlan, error) {
	plan, err := s.scheduler.PowerDown(ctx)
	if err != nil {
		s.log.Errorw("shutdown aborted, device stays on", "err", err)
		return plan, err
	}

	s.log.Infow("powering off", "wake_at", plan.WakeAt.String(), "voltage", plan.Voltage, "tier", plan.Tier.String())
	if s.power == nil {
		return plan, nil
	}
	if err := s.power.PowerOff(ctx); err != nil {
		metrics.IncCollaboratorError("power_off")
		return plan, err
	}
	return plan, nil
}
