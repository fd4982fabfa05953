package status

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/jgrew/bonsaibox/internal/climate"
)

var testCfg = Config{
	PeriodMs:         30000,
	DwellMs:          60000,
	SensorTimeoutMs:  2000,
	Hysteresis:       1.0,
	FailureThreshold: 5,
	Broker:           "tcp://localhost:1883",
	HTTPAddr:         ":8080",
}

func TestTrackerSnapshot(t *testing.T) {
	start := time.Date(2026, 6, 1, 8, 0, 0, 0, time.UTC)
	tr := NewTracker(start, testCfg)

	snap := tr.Snapshot()
	if snap.Mode != climate.ModeNormal {
		t.Errorf("initial mode = %v, want NORMAL", snap.Mode)
	}
	if snap.Reading != nil {
		t.Error("no reading before the first cycle")
	}
	if !snap.StartTime.Equal(start) {
		t.Errorf("start time = %v, want %v", snap.StartTime, start)
	}

	at := start.Add(30 * time.Second)
	reading := climate.Reading{TemperatureC: 23.4, HumidityPct: 51.2, Time: at}
	var acts climate.ActuatorState
	acts.Set(climate.DeviceFan, true, at)
	tr.UpdateCycle(climate.ModeDegraded, &reading, acts, 1, at)

	snap = tr.Snapshot()
	if snap.Mode != climate.ModeDegraded {
		t.Errorf("mode = %v, want DEGRADED", snap.Mode)
	}
	if snap.Reading == nil || snap.Reading.TemperatureC != 23.4 {
		t.Errorf("reading = %+v, want 23.4C", snap.Reading)
	}
	if !snap.Actuators.Fan {
		t.Error("fan should be on in snapshot")
	}
	if snap.ConsecutiveFailures != 1 {
		t.Errorf("failures = %d, want 1", snap.ConsecutiveFailures)
	}
}

func TestUpdateCycleKeepsLastReading(t *testing.T) {
	tr := NewTracker(time.Now(), testCfg)
	at := time.Now()
	reading := climate.Reading{TemperatureC: 22, HumidityPct: 50, Time: at}
	tr.UpdateCycle(climate.ModeNormal, &reading, climate.ActuatorState{}, 0, at)

	// Failed cycle passes nil: the last-known reading must survive.
	tr.UpdateCycle(climate.ModeDegraded, nil, climate.ActuatorState{}, 1, at.Add(time.Second))

	snap := tr.Snapshot()
	if snap.Reading == nil || snap.Reading.TemperatureC != 22 {
		t.Errorf("last-known reading lost: %+v", snap.Reading)
	}
}

func TestSnapshotIsACopy(t *testing.T) {
	tr := NewTracker(time.Now(), testCfg)
	at := time.Now()
	reading := climate.Reading{TemperatureC: 22, HumidityPct: 50, Time: at}
	tr.UpdateCycle(climate.ModeNormal, &reading, climate.ActuatorState{}, 0, at)

	snap := tr.Snapshot()
	snap.Reading.TemperatureC = 99

	if got := tr.Snapshot().Reading.TemperatureC; got != 22 {
		t.Errorf("tracker state mutated through snapshot: %v", got)
	}
}

func TestFormatJSON(t *testing.T) {
	start := time.Date(2026, 6, 1, 8, 0, 0, 0, time.UTC)
	tr := NewTracker(start, testCfg)
	at := start.Add(time.Minute)
	reading := climate.Reading{TemperatureC: 23.4, HumidityPct: 51.2, Time: at}
	var acts climate.ActuatorState
	acts.Set(climate.DeviceHumidifier, true, at)
	tr.UpdateCycle(climate.ModeNormal, &reading, acts, 0, at)

	var parsed StatusJSON
	if err := json.Unmarshal(FormatJSON(tr.Snapshot()), &parsed); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if parsed.Status.Mode != "NORMAL" {
		t.Errorf("mode = %q", parsed.Status.Mode)
	}
	if parsed.Status.Reading == nil || parsed.Status.Reading.HumidityPct != 51.2 {
		t.Errorf("reading = %+v", parsed.Status.Reading)
	}
	if parsed.Status.Actuators.Humidifier.State != "ON" {
		t.Errorf("humidifier = %q, want ON", parsed.Status.Actuators.Humidifier.State)
	}
	if parsed.Status.Actuators.Fan.State != "OFF" {
		t.Errorf("fan = %q, want OFF", parsed.Status.Actuators.Fan.State)
	}
	if parsed.Status.Actuators.Fan.LastChanged != "" {
		t.Error("fan never driven: last_changed should be omitted")
	}
	if parsed.Status.Event != "" {
		t.Error("web JSON must not carry an event field")
	}
}

func TestFormatStatusEvent(t *testing.T) {
	tr := NewTracker(time.Now(), testCfg)

	var parsed StatusJSON
	if err := json.Unmarshal(FormatStatusEvent(tr.Snapshot(), "SHUTDOWN", "SIGTERM"), &parsed); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if parsed.Status.Event != "SHUTDOWN" || parsed.Status.Reason != "SIGTERM" {
		t.Errorf("event/reason = %q/%q", parsed.Status.Event, parsed.Status.Reason)
	}
}
