package status

import (
	"encoding/json"
	"time"
)

// StatusJSON is the top-level JSON envelope for status output.
type StatusJSON struct {
	Status StatusInner `json:"status"`
}

// StatusInner contains the status details.
type StatusInner struct {
	Event  string `json:"event,omitempty"`
	Reason string `json:"reason,omitempty"`

	Mode                string        `json:"mode"`
	Reading             *ReadingJSON  `json:"reading,omitempty"`
	Actuators           ActuatorsJSON `json:"actuators"`
	ConsecutiveFailures int           `json:"consecutive_sensor_failures"`
	LastCycle           string        `json:"last_cycle,omitempty"`

	UptimeSeconds int64      `json:"uptime_seconds"`
	StartTime     string     `json:"start_time"`
	Timestamp     string     `json:"timestamp"`
	MQTT          MQTTStatus `json:"mqtt"`
	Config        ConfigJSON `json:"config"`
}

// ReadingJSON is the JSON representation of the last validated reading.
type ReadingJSON struct {
	TemperatureC float64 `json:"temperature_c"`
	HumidityPct  float64 `json:"humidity_pct"`
	At           string  `json:"at"`
}

// ActuatorsJSON is the JSON representation of actuator state.
type ActuatorsJSON struct {
	Fan        DeviceJSON `json:"fan"`
	Humidifier DeviceJSON `json:"humidifier"`
	Lights     DeviceJSON `json:"lights"`
}

// DeviceJSON is one actuator's state.
type DeviceJSON struct {
	State       string `json:"state"`
	LastChanged string `json:"last_changed,omitempty"`
}

// MQTTStatus reports MQTT connection state.
type MQTTStatus struct {
	Connected bool   `json:"connected"`
	Broker    string `json:"broker"`
}

// ConfigJSON is the JSON representation of daemon config.
type ConfigJSON struct {
	PeriodMs         int64   `json:"period_ms"`
	DwellMs          int64   `json:"dwell_ms"`
	SensorTimeoutMs  int64   `json:"sensor_timeout_ms"`
	Hysteresis       float64 `json:"hysteresis"`
	FailureThreshold int     `json:"failure_threshold"`
	Broker           string  `json:"broker"`
	HTTPAddr         string  `json:"http_addr"`
}

func stateString(on bool) string {
	if on {
		return "ON"
	}
	return "OFF"
}

func timeString(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

func buildInner(snap Snapshot) StatusInner {
	inner := StatusInner{
		Mode: snap.Mode.String(),
		Actuators: ActuatorsJSON{
			Fan:        DeviceJSON{State: stateString(snap.Actuators.Fan), LastChanged: timeString(snap.Actuators.FanChanged)},
			Humidifier: DeviceJSON{State: stateString(snap.Actuators.Humidifier), LastChanged: timeString(snap.Actuators.HumidifierChanged)},
			Lights:     DeviceJSON{State: stateString(snap.Actuators.Lights), LastChanged: timeString(snap.Actuators.LightsChanged)},
		},
		ConsecutiveFailures: snap.ConsecutiveFailures,
		LastCycle:           timeString(snap.LastCycle),
		UptimeSeconds:       int64(snap.Uptime().Truncate(time.Second).Seconds()),
		StartTime:           snap.StartTime.UTC().Format(time.RFC3339),
		Timestamp:           snap.Now.UTC().Format(time.RFC3339),
		MQTT:                MQTTStatus{Connected: snap.MQTTConnected, Broker: snap.Config.Broker},
		Config: ConfigJSON{
			PeriodMs:         snap.Config.PeriodMs,
			DwellMs:          snap.Config.DwellMs,
			SensorTimeoutMs:  snap.Config.SensorTimeoutMs,
			Hysteresis:       snap.Config.Hysteresis,
			FailureThreshold: snap.Config.FailureThreshold,
			Broker:           snap.Config.Broker,
			HTTPAddr:         snap.Config.HTTPAddr,
		},
	}
	if snap.Reading != nil {
		inner.Reading = &ReadingJSON{
			TemperatureC: snap.Reading.TemperatureC,
			HumidityPct:  snap.Reading.HumidityPct,
			At:           timeString(snap.Reading.Time),
		}
	}
	return inner
}

// FormatJSON returns the JSON status for the web endpoint (no event/reason).
func FormatJSON(snap Snapshot) []byte {
	data, _ := json.MarshalIndent(StatusJSON{Status: buildInner(snap)}, "", "  ")
	return data
}

// FormatStatusEvent returns the JSON status for an MQTT system event.
func FormatStatusEvent(snap Snapshot, event, reason string) []byte {
	inner := buildInner(snap)
	inner.Event = event
	inner.Reason = reason
	data, _ := json.Marshal(StatusJSON{Status: inner})
	return data
}
