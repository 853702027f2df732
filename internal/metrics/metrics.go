package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "wake_scheduler"

var (
	once sync.Once

	batteryVoltage = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "battery_voltage_volts",
			Help:      "Battery voltage read before the last shutdown decision.",
		},
	)

	sleepDuration = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "sleep_duration_seconds",
			Help:      "Sleep duration after voltage backoff.",
		},
	)

	nextWake = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "next_wake_seconds_of_day",
			Help:      "Programmed RTC alarm as seconds since midnight UTC.",
		},
	)

	configFallback = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "config_fallback",
			Help:      "1 when the safe schedule replaced a malformed configuration.",
		},
	)

	shutdownRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "shutdown_requests_total",
			Help:      "Shutdown requests by source (schedule, operator).",
		},
		[]string{"source"},
	)

	wakesScheduled = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "wakes_scheduled_total",
			Help:      "RTC alarms written, by backoff tier.",
		},
		[]string{"tier"},
	)

	collaboratorErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "collaborator_errors_total",
			Help:      "Failed shutdown steps, by operation (shutdown, power_off).",
		},
		[]string{"op"},
	)
)

// Register registers metrics (idempotent).
func Register() {
	once.Do(func() {
		prometheus.MustRegister(
			batteryVoltage,
			sleepDuration,
			nextWake,
			configFallback,
			shutdownRequests,
			wakesScheduled,
			collaboratorErrors,
		)
	})
}

func SetConfigFallback(fallback bool) {
	if fallback {
		configFallback.Set(1)
		return
	}
	configFallback.Set(0)
}

func IncShutdownRequest(source string) {
	shutdownRequests.WithLabelValues(source).Inc()
}

// ObserveWake records one completed shutdown decision.
func ObserveWake(voltage, sleepSeconds, wakeSecondsOfDay float64, tier string) {
	batteryVoltage.Set(voltage)
	sleepDuration.Set(sleepSeconds)
	nextWake.Set(wakeSecondsOfDay)
	wakesScheduled.WithLabelValues(tier).Inc()
}

func IncCollaboratorError(op string) {
	collaboratorErrors.WithLabelValues(op).Inc()
}
