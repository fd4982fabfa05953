// Package status provides a thread-safe status tracker for the bonsaibox
// daemon. The control loop writes it once per cycle; HTTP handlers and MQTT
// system events read immutable snapshots.
package status

import (
	"sync"
	"time"

	"github.com/jgrew/bonsaibox/internal/climate"
)

// Config contains daemon configuration for display.
type Config struct {
	PeriodMs         int64
	DwellMs          int64
	SensorTimeoutMs  int64
	Hysteresis       float64
	FailureThreshold int
	Broker           string
	HTTPAddr         string
}

// Snapshot is a point-in-time view of daemon state.
// It is a value type, safe to use after the lock is released.
type Snapshot struct {
	Mode      climate.Mode
	Reading   *climate.Reading // last validated reading, nil before the first success
	Actuators climate.ActuatorState

	ConsecutiveFailures int
	LastCycle           time.Time

	StartTime     time.Time
	Now           time.Time
	MQTTConnected bool
	Config        Config
}

// Uptime returns the duration since the daemon started.
func (s Snapshot) Uptime() time.Duration {
	return s.Now.Sub(s.StartTime)
}

// Tracker holds mutable daemon state behind an RWMutex.
type Tracker struct {
	mu   sync.RWMutex
	snap Snapshot
}

// NewTracker creates a Tracker with the given start time and config.
func NewTracker(startTime time.Time, cfg Config) *Tracker {
	return &Tracker{
		snap: Snapshot{
			StartTime: startTime,
			Config:    cfg,
		},
	}
}

// UpdateCycle records the outcome of one control cycle.
// The reading is copied so later cycles cannot mutate a snapshot already
// handed out.
func (t *Tracker) UpdateCycle(mode climate.Mode, reading *climate.Reading, acts climate.ActuatorState, failures int, at time.Time) {
	t.mu.Lock()
	t.snap.Mode = mode
	if reading != nil {
		r := *reading
		t.snap.Reading = &r
	}
	t.snap.Actuators = acts
	t.snap.ConsecutiveFailures = failures
	t.snap.LastCycle = at
	t.mu.Unlock()
}

// SetMQTTConnected sets the MQTT connection status.
func (t *Tracker) SetMQTTConnected(connected bool) {
	t.mu.Lock()
	t.snap.MQTTConnected = connected
	t.mu.Unlock()
}

// Snapshot returns a point-in-time copy of the daemon state.
// The Now field is set to the current time at the moment of the call.
func (t *Tracker) Snapshot() Snapshot {
	t.mu.RLock()
	s := t.snap
	t.mu.RUnlock()
	if s.Reading != nil {
		r := *s.Reading
		s.Reading = &r
	}
	s.Now = time.Now()
	return s
}
