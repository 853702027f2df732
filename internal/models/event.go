package models

import "time"

// Journal event types.
const (
	EventBoot              = "BOOT"
	EventConfigFallback    = "CONFIG_FALLBACK"
	EventShutdownRequested = "SHUTDOWN_REQUESTED"
	EventLowVoltage        = "LOW_VOLTAGE"
	EventWakeScheduled     = "WAKE_SCHEDULED"
	EventError             = "ERROR"
)

// EventTypes lists every journal type in the order a run emits them.
var EventTypes = []string{
	EventBoot,
	EventConfigFallback,
	EventShutdownRequested,
	EventLowVoltage,
	EventWakeScheduled,
	EventError,
}

// ScheduleEvent is a single journal entry.
type ScheduleEvent struct {
	EventID     string    `json:"event_id"`
	OccurredAt  time.Time `json:"occurred_at"`
	Type        string    `json:"type"`
	Description string    `json:"description"`
	Metadata    any       `json:"metadata,omitempty"`
}
