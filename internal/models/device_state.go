package models

import "time"

// DeviceState is the snapshot of the current run shown to operators.
// It is overwritten at every boot.
type DeviceState struct {
	ID                int       `json:"id"`
	StartedAt         time.Time `json:"started_at"`
	WindowStart       string    `json:"window_start"` // HH:MM:SS
	WindowEnd         string    `json:"window_end"`   // HH:MM:SS
	OnSeconds         int       `json:"on_seconds"`
	OffSeconds        int       `json:"off_seconds"` // last adapted sleep
	Fallback          bool      `json:"fallback"`    // safe schedule in use
	ShutdownRequested bool      `json:"shutdown_requested"`
	Voltage           float64   `json:"voltage,omitempty"`   // last reading, V
	Tier              string    `json:"tier,omitempty"`      // normal | half | quarter
	NextWake          string    `json:"next_wake,omitempty"` // HH:MM:SS
	UpdatedAt         time.Time `json:"updated_at"`
}
