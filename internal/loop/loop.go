// Package loop runs the periodic sense-decide-actuate cycle and owns the
// Normal/Degraded/FailSafe health state machine.
package loop

import (
	"context"
	"log/slog"
	"time"

	"github.com/jgrew/bonsaibox/internal/climate"
	"github.com/jgrew/bonsaibox/internal/metrics"
	"github.com/jgrew/bonsaibox/internal/mqtt"
	"github.com/jgrew/bonsaibox/internal/sensor"
	"github.com/jgrew/bonsaibox/internal/status"
)

// SensorReader is the sensing capability the loop consumes.
type SensorReader interface {
	Read(ctx context.Context) (climate.Reading, error)
}

// ActuatorDriver is the actuation capability the loop consumes.
type ActuatorDriver interface {
	Set(dev climate.Device, on bool) error
}

// Config holds the loop's timing and policy parameters. Validated by the
// config package before the loop sees it.
type Config struct {
	Period           time.Duration
	Dwell            time.Duration
	FailureThreshold int
	Hysteresis       float64
	Setpoints        climate.Setpoints

	// HeartbeatEvery is the number of cycles between retained heartbeat
	// status events. Zero disables the heartbeat.
	HeartbeatEvery int
}

// Loop is the control loop. Not safe for concurrent use; Run owns it.
type Loop struct {
	cfg     Config
	sensors SensorReader
	driver  ActuatorDriver
	pub     mqtt.Publisher
	conn    mqtt.ConnectionStatus // nil when the publisher has no connection state
	tracker *status.Tracker
	log     *slog.Logger

	mode        climate.Mode
	failures    int // consecutive sensor read failures
	badWrites   int // consecutive cycles with at least one failed relay write
	lastReading *climate.Reading
	acts        climate.ActuatorState
	cycles      int

	pendingModeReason string
}

// New creates a control loop starting in Normal mode with no reading.
func New(cfg Config, sensors SensorReader, driver ActuatorDriver, pub mqtt.Publisher, conn mqtt.ConnectionStatus, tracker *status.Tracker, log *slog.Logger) *Loop {
	return &Loop{
		cfg:     cfg,
		sensors: sensors,
		driver:  driver,
		pub:     pub,
		conn:    conn,
		tracker: tracker,
		log:     log,
	}
}

// Run executes cycles at the configured period until ctx is cancelled. The
// first cycle runs immediately. A cycle that overruns the period skips the
// missed ticks rather than running overlapped cycles; ctx is only checked
// between cycles, so an in-flight cycle finishes applying its decision.
func (l *Loop) Run(ctx context.Context) {
	ticker := time.NewTicker(l.cfg.Period)
	defer ticker.Stop()

	l.Cycle(ctx, time.Now())
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			l.Cycle(ctx, now)
		}
	}
}

// Cycle runs one sense-decide-actuate pass at the given time. Exported so
// tests can drive the loop with an injected clock.
func (l *Loop) Cycle(ctx context.Context, now time.Time) {
	start := time.Now()
	defer func() { metrics.CycleSeconds.Observe(time.Since(start).Seconds()) }()

	fresh := l.sense(ctx)

	// A read success while in FailSafe takes effect from the next cycle;
	// this cycle still applies the fail-safe set.
	recovering := l.mode == climate.ModeFailSafe && fresh != nil

	dec, failsafe := l.decide(now)
	writeFailed := l.apply(dec, failsafe, now)

	if writeFailed {
		l.badWrites++
		if l.badWrites >= l.cfg.FailureThreshold && l.mode != climate.ModeFailSafe {
			l.setMode(climate.ModeFailSafe, "consecutive actuator write failures")
		}
	} else {
		l.badWrites = 0
		if recovering {
			l.setMode(climate.ModeNormal, "sensor recovered")
		}
	}

	l.cycles++
	metrics.CyclesTotal.WithLabelValues(l.mode.String()).Inc()
	metrics.Mode.Set(float64(l.mode))
	if l.conn != nil {
		l.tracker.SetMQTTConnected(l.conn.IsConnected())
	}
	l.tracker.UpdateCycle(l.mode, fresh, l.acts, l.failures, now)

	l.publishTelemetry(now, fresh)
	l.flushModeEvent()
	if l.cfg.HeartbeatEvery > 0 && l.cycles%l.cfg.HeartbeatEvery == 0 {
		l.publishHeartbeat(now)
	}
}

// sense reads the sensor once and advances the failure-driven part of the
// mode machine. Returns the fresh reading, or nil on failure.
func (l *Loop) sense(ctx context.Context) *climate.Reading {
	reading, err := l.sensors.Read(ctx)
	if err != nil {
		l.failures++
		kind := "unknown"
		if k, ok := sensor.KindOf(err); ok {
			kind = k.String()
		}
		metrics.SensorFailuresTotal.WithLabelValues(kind).Inc()
		l.log.Warn("sensor read failed",
			"error", err, "kind", kind, "consecutive", l.failures, "mode", l.mode)

		switch {
		case l.failures >= l.cfg.FailureThreshold && l.mode != climate.ModeFailSafe:
			l.setMode(climate.ModeFailSafe, "consecutive sensor failures")
		case l.mode == climate.ModeNormal:
			l.setMode(climate.ModeDegraded, "sensor read failed")
		}
		return nil
	}

	l.failures = 0
	l.lastReading = &reading
	metrics.TemperatureC.Set(reading.TemperatureC)
	metrics.HumidityPct.Set(reading.HumidityPct)
	l.log.Debug("sensor read",
		"temperature_c", reading.TemperatureC, "humidity_pct", reading.HumidityPct)

	if l.mode == climate.ModeDegraded {
		l.setMode(climate.ModeNormal, "sensor recovered")
	}
	return &reading
}

// decide picks the desired actuator set for this cycle. The second return
// reports whether the set is the fail-safe one, which bypasses dwell.
func (l *Loop) decide(now time.Time) (climate.Decision, bool) {
	if l.mode == climate.ModeFailSafe {
		return climate.FailSafeDecision(), true
	}
	if l.lastReading == nil {
		// Never had a reading. Hold the conservative set without a mode
		// change until the first success.
		return climate.FailSafeDecision(), true
	}
	return climate.Decide(*l.lastReading, l.cfg.Setpoints, l.acts, now, l.cfg.Hysteresis), false
}

// apply drives every device toward the decision, enforcing dwell for
// non-fail-safe changes. Returns true if any relay write failed.
func (l *Loop) apply(dec climate.Decision, failsafe bool, now time.Time) bool {
	var writeFailed bool
	for _, dev := range climate.Devices() {
		want := dec.For(dev)
		last := l.acts.LastChanged(dev)
		changed := want.On != l.acts.On(dev) || last.IsZero()

		if changed && !failsafe && !last.IsZero() {
			if held := l.cfg.Dwell - now.Sub(last); held > 0 {
				metrics.ActuatorDeferralsTotal.WithLabelValues(string(dev)).Inc()
				l.log.Info("actuator change deferred by dwell",
					"device", dev, "want", want.On, "reason", want.Reason, "remaining", held)
				continue
			}
		}

		// Always write through the driver: it skips no-op writes itself and
		// retries devices left in an unknown state by an earlier failure.
		if err := l.driver.Set(dev, want.On); err != nil {
			writeFailed = true
			metrics.ActuatorWriteFailuresTotal.WithLabelValues(string(dev)).Inc()
			l.log.Error("relay write failed", "device", dev, "want", want.On, "error", err)
			continue
		}
		if !changed {
			continue
		}

		l.acts.Set(dev, want.On, now)
		metrics.ActuatorSwitchesTotal.WithLabelValues(string(dev)).Inc()
		l.log.Info("actuator switched", "device", dev, "on", want.On, "reason", want.Reason)
		if err := l.pub.PublishEvent(mqtt.ActuatorEvent{
			Timestamp: now,
			Device:    string(dev),
			On:        want.On,
			Reason:    want.Reason,
			Mode:      l.mode.String(),
		}); err != nil {
			l.log.Warn("publish actuator event failed", "device", dev, "error", err)
		}
	}
	return writeFailed
}

func (l *Loop) setMode(m climate.Mode, reason string) {
	if m == l.mode {
		return
	}
	level := slog.LevelWarn
	if m == climate.ModeNormal {
		level = slog.LevelInfo
	}
	l.log.Log(context.Background(), level, "mode change",
		"from", l.mode, "to", m, "reason", reason)
	l.mode = m
	l.pendingModeReason = reason
}

// flushModeEvent publishes a MODE_CHANGE status event for a transition that
// happened this cycle. Deferred to after the tracker update so the event
// carries the post-cycle snapshot.
func (l *Loop) flushModeEvent() {
	if l.pendingModeReason == "" {
		return
	}
	reason := l.pendingModeReason
	l.pendingModeReason = ""
	snap := l.tracker.Snapshot()
	err := l.pub.PublishSystem(mqtt.SystemEvent{
		Timestamp:  snap.Now,
		Event:      "MODE_CHANGE",
		Reason:     reason,
		RawPayload: status.FormatStatusEvent(snap, "MODE_CHANGE", reason),
	})
	if err != nil {
		l.log.Warn("publish mode change failed", "error", err)
	}
}

func (l *Loop) publishTelemetry(now time.Time, fresh *climate.Reading) {
	t := mqtt.Telemetry{
		Timestamp:  now,
		Mode:       l.mode.String(),
		Fan:        l.acts.Fan,
		Humidifier: l.acts.Humidifier,
		Lights:     l.acts.Lights,
	}
	if fresh != nil {
		t.HaveReading = true
		t.Temperature = fresh.TemperatureC
		t.Humidity = fresh.HumidityPct
	}
	if err := l.pub.PublishTelemetry(t); err != nil {
		l.log.Warn("publish telemetry failed", "error", err)
	}
}

func (l *Loop) publishHeartbeat(now time.Time) {
	snap := l.tracker.Snapshot()
	err := l.pub.PublishSystem(mqtt.SystemEvent{
		Timestamp:  now,
		Event:      "HEARTBEAT",
		RawPayload: status.FormatStatusEvent(snap, "HEARTBEAT", ""),
		Retained:   true,
	})
	if err != nil {
		l.log.Warn("publish heartbeat failed", "error", err)
	}
}
