package service

import (
	"time"

	"wake_scheduler/internal/schedule"
)

// LogFilter supports journal filtering by time range and type.
type LogFilter struct {
	From time.Time // inclusive; zero means no lower bound
	To   time.Time // inclusive; zero means no upper bound
	Type string    // one of models.EventTypes, case-insensitive; "" matches all
}

// SignUpGrant is what a sign-up request presents to be let in.
type SignUpGrant struct {
	OperatorID int    // signed-in operator registering someone else; 0 when anonymous
	Token      string // shared sign-up token, if any
}

// ScheduleInfo describes the schedule in effect for the current run.
type ScheduleInfo struct {
	Config     schedule.Config            `json:"config"`
	Thresholds schedule.VoltageThresholds `json:"thresholds"`
	Fallback   bool                       `json:"fallback"`
	Session    schedule.Session           `json:"session"`
	Sunrise    *time.Time                 `json:"sunrise,omitempty"`
	Sunset     *time.Time                 `json:"sunset,omitempty"`
}
