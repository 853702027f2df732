package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"wake_scheduler/internal/models"
)

type StateSQLite struct {
	db *sql.DB
}

func NewStateSQLite(db *sql.DB) *StateSQLite {
	return &StateSQLite{db: db}
}

const (
	deviceStateRowID = 1

	upsertStateSQL = `
		INSERT INTO device_state (id, started_at, window_start, window_end, on_s, off_s,
			fallback, shutdown_requested, voltage, tier, next_wake, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			started_at=excluded.started_at,
			window_start=excluded.window_start,
			window_end=excluded.window_end,
			on_s=excluded.on_s,
			off_s=excluded.off_s,
			fallback=excluded.fallback,
			shutdown_requested=excluded.shutdown_requested,
			voltage=excluded.voltage,
			tier=excluded.tier,
			next_wake=excluded.next_wake,
			updated_at=excluded.updated_at
	`

	selectStateSQL = `
		SELECT id, started_at, window_start, window_end, on_s, off_s,
			fallback, shutdown_requested, voltage, tier, next_wake, updated_at
		FROM device_state WHERE id=?
	`
)

// Save upserts the single device_state row. Timestamps are stored in UTC;
// a zero UpdatedAt becomes now.
func (r *StateSQLite) Save(ctx context.Context, s models.DeviceState) error {
	updated := s.UpdatedAt
	if updated.IsZero() {
		updated = time.Now()
	}

	_, err := r.db.ExecContext(ctx, upsertStateSQL,
		deviceStateRowID,
		s.StartedAt.UTC(),
		s.WindowStart,
		s.WindowEnd,
		s.OnSeconds,
		s.OffSeconds,
		s.Fallback,
		s.ShutdownRequested,
		s.Voltage,
		s.Tier,
		s.NextWake,
		updated.UTC(),
	)
	return err
}

// Load returns the zero DeviceState when nothing was saved yet.
func (r *StateSQLite) Load(ctx context.Context) (models.DeviceState, error) {
	row := r.db.QueryRowContext(ctx, selectStateSQL, deviceStateRowID)

	var s models.DeviceState
	if err := row.Scan(
		&s.ID,
		&s.StartedAt,
		&s.WindowStart,
		&s.WindowEnd,
		&s.OnSeconds,
		&s.OffSeconds,
		&s.Fallback,
		&s.ShutdownRequested,
		&s.Voltage,
		&s.Tier,
		&s.NextWake,
		&s.UpdatedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.DeviceState{}, nil
		}
		return models.DeviceState{}, err
	}
	s.StartedAt = s.StartedAt.UTC()
	s.UpdatedAt = s.UpdatedAt.UTC()
	return s, nil
}
