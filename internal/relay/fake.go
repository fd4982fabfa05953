package relay

import "sync"

// Write records a single WritePin call.
type Write struct {
	Pin  int
	High bool
}

// FakePins is a test double that records pin writes.
type FakePins struct {
	mu sync.Mutex

	// Levels holds the last written level per pin.
	Levels map[int]bool

	// Writes contains every WritePin call in order.
	Writes []Write

	// WriteError, if set, is returned by WritePin.
	WriteError error

	// Closed tracks if Close was called.
	Closed bool
}

// NewFakePins creates an empty FakePins.
func NewFakePins() *FakePins {
	return &FakePins{Levels: make(map[int]bool)}
}

// WritePin records the write.
func (f *FakePins) WritePin(pin int, high bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.WriteError != nil {
		return f.WriteError
	}
	f.Levels[pin] = high
	f.Writes = append(f.Writes, Write{Pin: pin, High: high})
	return nil
}

// Close marks the pins as closed.
func (f *FakePins) Close() error {
	f.mu.Lock()
	f.Closed = true
	f.mu.Unlock()
	return nil
}

// Level returns the last written level for pin.
func (f *FakePins) Level(pin int) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.Levels[pin]
}

// WriteCount returns the number of writes to the given pin.
func (f *FakePins) WriteCount(pin int) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, w := range f.Writes {
		if w.Pin == pin {
			n++
		}
	}
	return n
}
