package sensor

import (
	"context"
	"errors"
	"sync"
)

// FakeSample is a single scripted raw sample.
type FakeSample struct {
	TempRaw uint16
	HumRaw  uint16
	// Err, if set, is returned instead of the counts.
	Err error
	// Block, if set, makes ReadRaw hang until ctx expires (simulates a
	// wedged bus).
	Block bool
}

// FakeRaw is a test double that returns scripted raw samples.
// When samples are exhausted, the last sample repeats.
type FakeRaw struct {
	mu      sync.Mutex
	Samples []FakeSample
	index   int

	// Reads counts ReadRaw calls.
	Reads int

	// Closed tracks if Close was called.
	Closed bool
}

// NewFakeRaw creates a FakeRaw with the given samples.
func NewFakeRaw(samples ...FakeSample) *FakeRaw {
	return &FakeRaw{Samples: samples}
}

// Sample builds a scripted sample from physical values.
func Sample(tempC, humidityPct float64) FakeSample {
	return FakeSample{TempRaw: RawFromTemperature(tempC), HumRaw: RawFromHumidity(humidityPct)}
}

// ReadRaw returns the next scripted sample.
func (f *FakeRaw) ReadRaw(ctx context.Context) (uint16, uint16, error) {
	f.mu.Lock()
	f.Reads++
	if len(f.Samples) == 0 {
		f.mu.Unlock()
		return 0, 0, errors.New("no samples configured")
	}
	s := f.Samples[f.index]
	if f.index < len(f.Samples)-1 {
		f.index++
	}
	f.mu.Unlock()

	if s.Block {
		<-ctx.Done()
		return 0, 0, ctx.Err()
	}
	if s.Err != nil {
		return 0, 0, s.Err
	}
	return s.TempRaw, s.HumRaw, nil
}

// Close marks the reader as closed.
func (f *FakeRaw) Close() error {
	f.mu.Lock()
	f.Closed = true
	f.mu.Unlock()
	return nil
}

// Append adds more scripted samples.
func (f *FakeRaw) Append(samples ...FakeSample) {
	f.mu.Lock()
	f.Samples = append(f.Samples, samples...)
	f.mu.Unlock()
}
