// Package sensor turns raw temperature/humidity counts into validated
// climate readings. The real raw source is an SHT20 on the I2C bus; tests
// use the in-package fake.
package sensor

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jgrew/bonsaibox/internal/climate"
)

// ErrorKind classifies a failed read.
type ErrorKind int

const (
	// KindTimeout means the raw read did not complete within the bounded
	// timeout.
	KindTimeout ErrorKind = iota
	// KindOutOfRange means the converted values fell outside sensor
	// plausibility bounds.
	KindOutOfRange
	// KindBus means the underlying I2C transaction failed.
	KindBus
)

func (k ErrorKind) String() string {
	switch k {
	case KindTimeout:
		return "timeout"
	case KindOutOfRange:
		return "out_of_range"
	case KindBus:
		return "bus"
	}
	return "unknown"
}

// Error is a classified sensor read failure.
type Error struct {
	Kind  ErrorKind
	Cause error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("sensor read %s: %v", e.Kind, e.Cause)
	}
	return fmt.Sprintf("sensor read %s", e.Kind)
}

func (e *Error) Unwrap() error { return e.Cause }

// KindOf extracts the ErrorKind from err, if err is a sensor Error.
func KindOf(err error) (ErrorKind, bool) {
	var se *Error
	if errors.As(err, &se) {
		return se.Kind, true
	}
	return 0, false
}

// RawReader is the hardware capability the reader consumes: one raw
// temperature/humidity sample per call. Wire-level framing lives below
// this interface.
type RawReader interface {
	// ReadRaw returns raw sensor counts with measurement status bits
	// already masked off. Blocks until the sample is ready or ctx ends.
	ReadRaw(ctx context.Context) (tempRaw, humRaw uint16, err error)

	// Close releases the underlying bus.
	Close() error
}

// SHT20 conversion formulas (datasheet sections 6.1 / 6.2).
const (
	tempOffsetC = -46.85
	tempScaleC  = 175.72
	humOffset   = -6.0
	humScale    = 125.0
	rawSpan     = 65536.0
)

// ConvertTemperature converts a raw 14-bit count to degrees Celsius.
func ConvertTemperature(raw uint16) float64 {
	return tempOffsetC + tempScaleC*float64(raw)/rawSpan
}

// ConvertHumidity converts a raw 12-bit count to percent relative humidity.
func ConvertHumidity(raw uint16) float64 {
	return humOffset + humScale*float64(raw)/rawSpan
}

// RawFromTemperature inverts ConvertTemperature. Intended for fakes.
func RawFromTemperature(c float64) uint16 {
	return uint16((c - tempOffsetC) / tempScaleC * rawSpan)
}

// RawFromHumidity inverts ConvertHumidity. Intended for fakes.
func RawFromHumidity(pct float64) uint16 {
	return uint16((pct - humOffset) / humScale * rawSpan)
}

// Reader produces validated readings from a RawReader with a bounded
// timeout. No internal retries; retry policy belongs to the control loop.
type Reader struct {
	raw     RawReader
	timeout time.Duration
	now     func() time.Time
}

// NewReader wraps raw with the given per-read timeout.
func NewReader(raw RawReader, timeout time.Duration) *Reader {
	return &Reader{raw: raw, timeout: timeout, now: time.Now}
}

type rawResult struct {
	temp uint16
	hum  uint16
	err  error
}

// Read returns one validated reading, or an Error classifying the failure.
// Never blocks longer than the configured timeout.
func (r *Reader) Read(ctx context.Context) (climate.Reading, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	// Buffered so a late raw read cannot leak the goroutine.
	ch := make(chan rawResult, 1)
	go func() {
		t, h, err := r.raw.ReadRaw(ctx)
		ch <- rawResult{temp: t, hum: h, err: err}
	}()

	var res rawResult
	select {
	case <-ctx.Done():
		return climate.Reading{}, &Error{Kind: KindTimeout, Cause: ctx.Err()}
	case res = <-ch:
	}

	if res.err != nil {
		if errors.Is(res.err, context.DeadlineExceeded) {
			return climate.Reading{}, &Error{Kind: KindTimeout, Cause: res.err}
		}
		return climate.Reading{}, &Error{Kind: KindBus, Cause: res.err}
	}

	reading := climate.Reading{
		TemperatureC: ConvertTemperature(res.temp),
		HumidityPct:  ConvertHumidity(res.hum),
		Time:         r.now(),
	}
	if !reading.Plausible() {
		return climate.Reading{}, &Error{
			Kind:  KindOutOfRange,
			Cause: fmt.Errorf("%.2f degC / %.2f %%RH outside plausible range", reading.TemperatureC, reading.HumidityPct),
		}
	}
	return reading, nil
}

// Close releases the underlying raw reader.
func (r *Reader) Close() error { return r.raw.Close() }
