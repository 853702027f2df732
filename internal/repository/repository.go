package repository

import (
	"context"
	"database/sql"
	"time"

	"wake_scheduler/internal/models"
)

type Operators interface {
	Create(username, hash string) (int, error)
	GetByUsername(username string) (*models.Operator, error)
	Count() (int, error)
}

type StateRepo interface {
	Save(ctx context.Context, s models.DeviceState) error
	Load(ctx context.Context) (models.DeviceState, error)
}

type EventRepo interface {
	Append(ctx context.Context, e models.ScheduleEvent) error
	List(ctx context.Context, from, to time.Time, typ string) ([]models.ScheduleEvent, error)
}

type Repository struct {
	StateRepo StateRepo
	EventRepo EventRepo
	Operators Operators
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{
		StateRepo: NewStateSQLite(db),
		EventRepo: NewEventSQLite(db),
		Operators: NewOperatorRepository(db),
	}
}
