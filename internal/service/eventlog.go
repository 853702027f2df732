package service

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"wake_scheduler/internal/models"
	"wake_scheduler/internal/repository"
)

// Journal filter errors; both are caller mistakes.
var (
	ErrInvalidTimeRange = errors.New("invalid time range: from must not be after to")
	ErrUnknownEventType = errors.New("unknown event type")
)

type EventLogService struct {
	eventRepo repository.EventRepo
}

func NewEventLogService(eventRepo repository.EventRepo) *EventLogService {
	return &EventLogService{eventRepo: eventRepo}
}

// ParseEventType maps a filter value such as "wake-scheduled" onto its
// journal type. An empty value matches every type.
func ParseEventType(s string) (string, error) {
	typ := strings.ReplaceAll(strings.ToUpper(strings.TrimSpace(s)), "-", "_")
	if typ == "" || slices.Contains(models.EventTypes, typ) {
		return typ, nil
	}
	return "", fmt.Errorf("%w %q: want one of %s", ErrUnknownEventType, s, strings.Join(models.EventTypes, ", "))
}

// List returns journal events matching f, oldest first. Bounds are compared
// in UTC and a zero bound is open.
func (s *EventLogService) List(ctx context.Context, f LogFilter) ([]models.ScheduleEvent, error) {
	typ, err := ParseEventType(f.Type)
	if err != nil {
		return nil, err
	}
	from, to := toUTC(f.From), toUTC(f.To)
	if !from.IsZero() && !to.IsZero() && from.After(to) {
		return nil, ErrInvalidTimeRange
	}
	return s.eventRepo.List(ctx, from, to, typ)
}
