package mqtt

import "sync"

// FakePublisher records published messages for test assertions.
type FakePublisher struct {
	mu sync.Mutex

	// Telemetry contains all telemetry messages that were published.
	Telemetry []Telemetry

	// Events contains all actuator events that were published.
	Events []ActuatorEvent

	// SystemEvents contains all system events that were published.
	SystemEvents []SystemEvent

	// PublishError, if set, is returned by all Publish methods.
	PublishError error

	// Closed tracks if Close was called.
	Closed bool

	// Connected controls the return value of IsConnected.
	Connected bool
}

// NewFakePublisher creates a FakePublisher for testing.
func NewFakePublisher() *FakePublisher {
	return &FakePublisher{Connected: true}
}

// PublishTelemetry records the telemetry message.
func (f *FakePublisher) PublishTelemetry(t Telemetry) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.PublishError != nil {
		return f.PublishError
	}
	f.Telemetry = append(f.Telemetry, t)
	return nil
}

// PublishEvent records the actuator event.
func (f *FakePublisher) PublishEvent(e ActuatorEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.PublishError != nil {
		return f.PublishError
	}
	f.Events = append(f.Events, e)
	return nil
}

// PublishSystem records the system event.
func (f *FakePublisher) PublishSystem(e SystemEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.PublishError != nil {
		return f.PublishError
	}
	f.SystemEvents = append(f.SystemEvents, e)
	return nil
}

// IsConnected reports the scripted connection state.
func (f *FakePublisher) IsConnected() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.Connected
}

// Close marks the publisher as closed.
func (f *FakePublisher) Close() error {
	f.mu.Lock()
	f.Closed = true
	f.mu.Unlock()
	return nil
}

// EventsFor returns recorded events for the named device.
func (f *FakePublisher) EventsFor(device string) []ActuatorEvent {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []ActuatorEvent
	for _, e := range f.Events {
		if e.Device == device {
			out = append(out, e)
		}
	}
	return out
}
