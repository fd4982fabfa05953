// Package metrics defines the Prometheus collectors for the daemon.
// Served by internal/web at /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// CyclesTotal counts completed control cycles by loop mode.
	CyclesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bonsaibox_cycles_total",
			Help: "Completed control cycles by loop mode",
		},
		[]string{"mode"},
	)

	// SensorFailuresTotal counts failed sensor reads by error kind.
	SensorFailuresTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bonsaibox_sensor_failures_total",
			Help: "Failed sensor reads by error kind",
		},
		[]string{"kind"},
	)

	// ActuatorSwitchesTotal counts applied actuator state changes.
	ActuatorSwitchesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bonsaibox_actuator_switches_total",
			Help: "Applied actuator state changes by device",
		},
		[]string{"device"},
	)

	// ActuatorDeferralsTotal counts decisions deferred by dwell time.
	ActuatorDeferralsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bonsaibox_actuator_deferrals_total",
			Help: "Actuator decisions deferred by minimum dwell time",
		},
		[]string{"device"},
	)

	// ActuatorWriteFailuresTotal counts failed relay writes.
	ActuatorWriteFailuresTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bonsaibox_actuator_write_failures_total",
			Help: "Failed relay writes by device",
		},
		[]string{"device"},
	)

	// TemperatureC is the last validated temperature reading.
	TemperatureC = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "bonsaibox_temperature_celsius",
			Help: "Last validated temperature reading",
		},
	)

	// HumidityPct is the last validated humidity reading.
	HumidityPct = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "bonsaibox_humidity_percent",
			Help: "Last validated relative humidity reading",
		},
	)

	// Mode is the loop mode as a number: 0 normal, 1 degraded, 2 fail-safe.
	Mode = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "bonsaibox_mode",
			Help: "Loop mode: 0 normal, 1 degraded, 2 fail-safe",
		},
	)

	// CycleSeconds observes control cycle duration.
	CycleSeconds = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "bonsaibox_cycle_duration_seconds",
			Help:    "Control cycle duration",
			Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
		},
	)

	// MQTTPublishesTotal counts publish outcomes.
	MQTTPublishesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bonsaibox_mqtt_publishes_total",
			Help: "MQTT publish attempts by outcome",
		},
		[]string{"outcome"},
	)
)
