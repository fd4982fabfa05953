// Package sht20 drives a Sensirion SHT20 temperature/humidity sensor over
// I2C using periph.io. It returns raw counts; unit conversion happens in
// internal/sensor.
package sht20

import (
	"context"
	"encoding/binary"
	"fmt"
	"time"

	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/host/v3"
)

// Sensor constants from the SHT20 datasheet.
const (
	// Addr is the fixed 7-bit I2C address.
	Addr uint16 = 0x40

	cmdTriggerTempNoHold = 0xF3
	cmdTriggerRHNoHold   = 0xF5
	cmdSoftReset         = 0xFE

	// The two LSBs of a measurement carry status, not data.
	statusMask = 0x0003

	// Worst-case measurement times at full resolution.
	tempMeasTime = 85 * time.Millisecond
	rhMeasTime   = 29 * time.Millisecond
	resetTime    = 15 * time.Millisecond
)

// DefaultBus is the Raspberry Pi's user-facing I2C bus.
const DefaultBus = "1"

// Device is an open SHT20. It implements sensor.RawReader.
type Device struct {
	dev i2c.Dev
	bus i2c.BusCloser
}

// Open initializes the host, opens the named I2C bus, and soft-resets the
// sensor so a power cycle never leaves it mid-measurement.
func Open(busName string) (*Device, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("init periph host: %w", err)
	}
	bus, err := i2creg.Open(busName)
	if err != nil {
		return nil, fmt.Errorf("open i2c bus %q: %w", busName, err)
	}
	d := &Device{dev: i2c.Dev{Bus: bus, Addr: Addr}, bus: bus}
	if err := d.dev.Tx([]byte{cmdSoftReset}, nil); err != nil {
		bus.Close()
		return nil, fmt.Errorf("sht20 soft reset: %w", err)
	}
	time.Sleep(resetTime)
	return d, nil
}

// ReadRaw triggers and collects one temperature and one humidity
// measurement using the no-hold-master protocol, so the bus is never
// clock-stretched for the full measurement time.
func (d *Device) ReadRaw(ctx context.Context) (uint16, uint16, error) {
	tempRaw, err := d.measure(ctx, cmdTriggerTempNoHold, tempMeasTime)
	if err != nil {
		return 0, 0, fmt.Errorf("temperature: %w", err)
	}
	humRaw, err := d.measure(ctx, cmdTriggerRHNoHold, rhMeasTime)
	if err != nil {
		return 0, 0, fmt.Errorf("humidity: %w", err)
	}
	return tempRaw, humRaw, nil
}

func (d *Device) measure(ctx context.Context, cmd byte, wait time.Duration) (uint16, error) {
	if err := d.dev.Tx([]byte{cmd}, nil); err != nil {
		return 0, fmt.Errorf("trigger 0x%02X: %w", cmd, err)
	}
	if err := sleepCtx(ctx, wait); err != nil {
		return 0, err
	}

	// MSB, LSB, CRC.
	var buf [3]byte
	if err := d.dev.Tx(nil, buf[:]); err != nil {
		return 0, fmt.Errorf("read measurement: %w", err)
	}
	if c := crc8(buf[:2]); c != buf[2] {
		return 0, fmt.Errorf("crc mismatch: computed 0x%02X, sensor sent 0x%02X", c, buf[2])
	}
	raw := binary.BigEndian.Uint16(buf[:2])
	return raw &^ statusMask, nil
}

// Close releases the I2C bus.
func (d *Device) Close() error { return d.bus.Close() }

// crc8 implements the SHT2x checksum: polynomial x^8 + x^5 + x^4 + 1
// (0x131), initialization 0x00, over the two data bytes.
func crc8(data []byte) byte {
	var crc byte
	for _, b := range data {
		crc ^= b
		for i := 0; i < 8; i++ {
			if crc&0x80 != 0 {
				crc = crc<<1 ^ 0x31
			} else {
				crc <<= 1
			}
		}
	}
	return crc
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
