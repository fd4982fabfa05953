package climate

import (
	"testing"
	"time"
)

func at(h, m int) time.Time {
	return time.Date(2026, 6, 1, h, m, 0, 0, time.UTC)
}

func TestParseWindow(t *testing.T) {
	tests := []struct {
		in      string
		want    Window
		wantErr bool
	}{
		{"07:00-19:00", Window{Start: 420, End: 1140}, false},
		{"22:00-06:00", Window{Start: 1320, End: 360}, false},
		{"0:05-1:30", Window{Start: 5, End: 90}, false},
		{"07:00", Window{}, true},
		{"7am-7pm", Window{}, true},
		{"25:00-06:00", Window{}, true},
		{"07:61-08:00", Window{}, true},
		{"07:00-07:00", Window{}, true},
		{"", Window{}, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseWindow(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseWindow(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if err == nil && got != tt.want {
				t.Errorf("ParseWindow(%q) = %+v, want %+v", tt.in, got, tt.want)
			}
		})
	}
}

func TestWindowContains(t *testing.T) {
	day := Window{Start: 7 * 60, End: 19 * 60}
	tests := []struct {
		name string
		t    time.Time
		want bool
	}{
		{"before start", at(6, 59), false},
		{"at start", at(7, 0), true},
		{"midday", at(12, 30), true},
		{"at end is exclusive", at(19, 0), false},
		{"after end", at(23, 0), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := day.Contains(tt.t); got != tt.want {
				t.Errorf("Contains(%v) = %v, want %v", tt.t, got, tt.want)
			}
		})
	}
}

func TestWindowWrapsMidnight(t *testing.T) {
	night := Window{Start: 22 * 60, End: 6 * 60}
	tests := []struct {
		name string
		t    time.Time
		want bool
	}{
		{"late evening", at(23, 0), true},
		{"at start", at(22, 0), true},
		{"midnight", at(0, 0), true},
		{"early morning", at(5, 59), true},
		{"at end is exclusive", at(6, 0), false},
		{"midday", at(12, 0), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := night.Contains(tt.t); got != tt.want {
				t.Errorf("Contains(%v) = %v, want %v", tt.t, got, tt.want)
			}
		})
	}
}

func TestInAnyWindow(t *testing.T) {
	windows := []Window{
		{Start: 7 * 60, End: 12 * 60},
		{Start: 14 * 60, End: 19 * 60},
	}
	if !InAnyWindow(windows, at(8, 0)) {
		t.Error("08:00 should be inside the morning window")
	}
	if InAnyWindow(windows, at(13, 0)) {
		t.Error("13:00 falls in the gap between windows")
	}
	if !InAnyWindow(windows, at(15, 0)) {
		t.Error("15:00 should be inside the afternoon window")
	}
	if InAnyWindow(nil, at(12, 0)) {
		t.Error("no windows means never on")
	}
}

func TestWindowString(t *testing.T) {
	w := Window{Start: 420, End: 1140}
	if got := w.String(); got != "07:00-19:00" {
		t.Errorf("String() = %q, want %q", got, "07:00-19:00")
	}
}
