package climate

import (
	"fmt"
	"time"
)

// Window is a time-of-day interval in minutes since midnight, end-exclusive.
// A window with End <= Start wraps midnight (e.g. 22:00-06:00).
type Window struct {
	Start int
	End   int
}

// ParseWindow parses a "HH:MM-HH:MM" wall-clock interval.
func ParseWindow(s string) (Window, error) {
	var sh, sm, eh, em int
	n, err := fmt.Sscanf(s, "%d:%d-%d:%d", &sh, &sm, &eh, &em)
	if err != nil || n != 4 {
		return Window{}, fmt.Errorf("light window %q: want HH:MM-HH:MM", s)
	}
	if sh < 0 || sh > 23 || eh < 0 || eh > 23 || sm < 0 || sm > 59 || em < 0 || em > 59 {
		return Window{}, fmt.Errorf("light window %q: hours 0-23, minutes 0-59", s)
	}
	w := Window{Start: sh*60 + sm, End: eh*60 + em}
	if w.Start == w.End {
		return Window{}, fmt.Errorf("light window %q: zero length", s)
	}
	return w, nil
}

// Contains reports whether the wall-clock time of t falls inside the window.
func (w Window) Contains(t time.Time) bool {
	m := t.Hour()*60 + t.Minute()
	if w.Start < w.End {
		return m >= w.Start && m < w.End
	}
	// Wraps midnight.
	return m >= w.Start || m < w.End
}

func (w Window) String() string {
	return fmt.Sprintf("%02d:%02d-%02d:%02d", w.Start/60, w.Start%60, w.End/60, w.End%60)
}

// InAnyWindow reports whether t falls inside any of the given windows.
func InAnyWindow(windows []Window, t time.Time) bool {
	for _, w := range windows {
		if w.Contains(t) {
			return true
		}
	}
	return false
}
