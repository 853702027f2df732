package service

import (
	"context"
	"time"

	"wake_scheduler/internal/device"
	"wake_scheduler/internal/models"
	"wake_scheduler/internal/repository"
)

type MonitoringService struct {
	stateRepo repository.StateRepo
	flag      *device.ShutdownFlag
}

func NewMonitoringService(stateRepo repository.StateRepo, flag *device.ShutdownFlag) *MonitoringService {
	return &MonitoringService{stateRepo: stateRepo, flag: flag}
}

// GetState returns the persisted snapshot of the current run with the live
// shutdown flag applied. Before the first save it returns a bare baseline.
func (s *MonitoringService) GetState(ctx context.Context) (models.DeviceState, error) {
	state, err := s.stateRepo.Load(ctx)
	if err != nil {
		return models.DeviceState{}, err
	}
	if state.ID == 0 {
		state = models.DeviceState{ID: 1, UpdatedAt: time.Now().UTC()}
	}
	if s.flag != nil && s.flag.Requested() {
		state.ShutdownRequested = true
	}
	state.StartedAt = toUTC(state.StartedAt)
	state.UpdatedAt = toUTC(state.UpdatedAt)
	return state, nil
}

// toUTC normalizes non-zero time to UTC, preserving zero values.
func toUTC(t time.Time) time.Time {
	if t.IsZero() {
		return t
	}
	return t.UTC()
}
