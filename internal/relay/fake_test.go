package relay

import (
	"errors"
	"testing"
)

func TestFakePinsRecordsWrites(t *testing.T) {
	f := NewFakePins()

	if err := f.WritePin(17, true); err != nil {
		t.Fatalf("WritePin: %v", err)
	}
	if err := f.WritePin(27, false); err != nil {
		t.Fatalf("WritePin: %v", err)
	}
	if err := f.WritePin(17, false); err != nil {
		t.Fatalf("WritePin: %v", err)
	}

	if f.Level(17) {
		t.Error("pin 17 should end low")
	}
	if f.Level(27) {
		t.Error("pin 27 should be low")
	}
	if got := f.WriteCount(17); got != 2 {
		t.Errorf("pin 17 writes = %d, want 2", got)
	}
	if len(f.Writes) != 3 {
		t.Errorf("total writes = %d, want 3", len(f.Writes))
	}
	if f.Writes[0] != (Write{Pin: 17, High: true}) {
		t.Errorf("first write = %+v", f.Writes[0])
	}
}

func TestFakePinsWriteError(t *testing.T) {
	f := NewFakePins()
	f.WriteError = errors.New("boom")

	if err := f.WritePin(17, true); err == nil {
		t.Fatal("expected injected error")
	}
	if len(f.Writes) != 0 {
		t.Error("failed writes must not be recorded")
	}
}

func TestFakePinsClose(t *testing.T) {
	f := NewFakePins()
	if err := f.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if !f.Closed {
		t.Error("Closed should be set")
	}
}
