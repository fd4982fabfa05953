// Package mqtt publishes climate telemetry and events with abstraction for
// testing.
package mqtt

import (
	"encoding/json"
	"time"
)

// TopicTelemetry carries one message per control cycle.
const TopicTelemetry = "bonsai/climate/telemetry"

// TopicEvents carries actuator state changes.
const TopicEvents = "bonsai/climate/events"

// TopicSystem carries system lifecycle events (startup, shutdown, heartbeat).
const TopicSystem = "bonsai/climate/system"

// Publisher publishes daemon output to the broker.
type Publisher interface {
	// PublishTelemetry sends the per-cycle snapshot. Failures must not
	// crash the process.
	PublishTelemetry(t Telemetry) error

	// PublishEvent sends an actuator state change.
	PublishEvent(e ActuatorEvent) error

	// PublishSystem sends a system lifecycle event.
	PublishSystem(e SystemEvent) error

	// Close disconnects from the broker.
	Close() error
}

// ConnectionStatus reports whether the MQTT connection is active.
type ConnectionStatus interface {
	IsConnected() bool
}

// Telemetry is the per-cycle state published to TopicTelemetry.
type Telemetry struct {
	Timestamp   time.Time
	Mode        string
	HaveReading bool
	Temperature float64
	Humidity    float64
	Fan         bool
	Humidifier  bool
	Lights      bool
}

// ActuatorEvent is one device state change published to TopicEvents.
type ActuatorEvent struct {
	Timestamp time.Time
	Device    string
	On        bool
	Reason    string
	Mode      string
}

// SystemEvent represents a system lifecycle event.
type SystemEvent struct {
	Timestamp  time.Time
	Event      string // e.g. "STARTUP", "SHUTDOWN", "HEARTBEAT"
	Reason     string // e.g. "SIGTERM" (shutdown only)
	RawPayload []byte // pre-formatted JSON payload; if set, used directly
	Retained   bool
}

// TelemetryPayload is the wire format for telemetry messages.
type TelemetryPayload struct {
	Climate TelemetryInner `json:"climate"`
}

// TelemetryInner contains the telemetry details.
type TelemetryInner struct {
	Timestamp    string   `json:"timestamp"`
	Mode         string   `json:"mode"`
	TemperatureC *float64 `json:"temperature_c,omitempty"`
	HumidityPct  *float64 `json:"humidity_pct,omitempty"`
	Fan          string   `json:"fan"`
	Humidifier   string   `json:"humidifier"`
	Lights       string   `json:"lights"`
}

// EventPayload is the wire format for actuator events.
type EventPayload struct {
	Actuator EventInner `json:"actuator"`
}

// EventInner contains the actuator event details.
type EventInner struct {
	Timestamp string `json:"timestamp"`
	Device    string `json:"device"`
	State     string `json:"state"`
	Reason    string `json:"reason"`
	Mode      string `json:"mode"`
}

// SystemPayload is the wire format for simple system events.
type SystemPayload struct {
	System SystemInner `json:"system"`
}

// SystemInner contains the system event details.
type SystemInner struct {
	Timestamp string `json:"timestamp"`
	Event     string `json:"event"`
	Reason    string `json:"reason,omitempty"`
}

func stateString(on bool) string {
	if on {
		return "ON"
	}
	return "OFF"
}

// FormatTelemetry creates the JSON payload for a telemetry message.
func FormatTelemetry(t Telemetry) ([]byte, error) {
	inner := TelemetryInner{
		Timestamp:  t.Timestamp.UTC().Format(time.RFC3339),
		Mode:       t.Mode,
		Fan:        stateString(t.Fan),
		Humidifier: stateString(t.Humidifier),
		Lights:     stateString(t.Lights),
	}
	if t.HaveReading {
		temp, hum := t.Temperature, t.Humidity
		inner.TemperatureC = &temp
		inner.HumidityPct = &hum
	}
	return json.Marshal(TelemetryPayload{Climate: inner})
}

// FormatEvent creates the JSON payload for an actuator event.
func FormatEvent(e ActuatorEvent) ([]byte, error) {
	return json.Marshal(EventPayload{Actuator: EventInner{
		Timestamp: e.Timestamp.UTC().Format(time.RFC3339),
		Device:    e.Device,
		State:     stateString(e.On),
		Reason:    e.Reason,
		Mode:      e.Mode,
	}})
}

// FormatSystem creates the JSON payload for a system event.
// If e.RawPayload is set, it is returned directly (used for full status
// snapshots).
func FormatSystem(e SystemEvent) ([]byte, error) {
	if e.RawPayload != nil {
		return e.RawPayload, nil
	}
	return json.Marshal(SystemPayload{System: SystemInner{
		Timestamp: e.Timestamp.UTC().Format(time.RFC3339),
		Event:     e.Event,
		Reason:    e.Reason,
	}})
}
