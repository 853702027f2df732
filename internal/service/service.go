package service

import (
	"context"
	"time"

	"wake_scheduler/internal/device"
	"wake_scheduler/internal/logger"
	"wake_scheduler/internal/models"
	"wake_scheduler/internal/repository"
	"wake_scheduler/internal/schedule"
)

type Authorization interface {
	SignUp(username, password string, grant SignUpGrant) (int, error)
	GenerateToken(username, password string) (string, error)
	ParseToken(accessToken string) (int, error)
}

// Scheduler exposes the wake schedule of the current run to operators.
type Scheduler interface {
	Schedule() ScheduleInfo
	Preview(at time.Time, voltage float64) schedule.WakePlan
	RequestShutdown(ctx context.Context, operator string) bool
	ShutdownRequested() bool
}

// Monitoring exposes the persisted device snapshot.
type Monitoring interface {
	GetState(ctx context.Context) (models.DeviceState, error)
}

// EventLog exposes the append-only journal with filtering access.
type EventLog interface {
	List(ctx context.Context, f LogFilter) ([]models.ScheduleEvent, error)
}

// Supervisor drives the engine until power-down. Stop via context
// cancellation in main() for graceful shutdown.
type Supervisor interface {
	Run(ctx context.Context, tick time.Duration) (schedule.WakePlan, error)
}

type Service struct {
	Scheduler
	Monitoring
	EventLog
	Supervisor
	Authorization
}

// Deps are the runtime collaborators that do not live in the repository layer.
type Deps struct {
	Engine   *schedule.Engine
	Flag     *device.ShutdownFlag
	Resolver schedule.Resolver
	Fallback bool
	Power    device.PowerSwitch
	Clock    func() time.Time
	Auth     AuthConfig
	Log      *logger.Logger
}

func NewService(repos *repository.Repository, deps Deps) *Service {
	if deps.Log == nil {
		deps.Log = logger.Nop()
	}
	scheduler := NewSchedulerService(repos.StateRepo, repos.EventRepo, deps)
	return &Service{
		Scheduler:     scheduler,
		Monitoring:    NewMonitoringService(repos.StateRepo, deps.Flag),
		EventLog:      NewEventLogService(repos.EventRepo),
		Supervisor:    NewSupervisorService(scheduler, deps.Power, deps.Clock, deps.Log.Named("supervisor")),
		Authorization: NewAuthService(repos.Operators, deps.Auth),
	}
}
