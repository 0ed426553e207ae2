package session

import (
	"errors"
	"fmt"
	"time"
)

// State classifies where a class session sits relative to an instant.
type State string

const (
	StateUpcoming State = "upcoming"
	StateActive   State = "active"
	StateClosed   State = "closed"
)

// ErrInvalidWindow is returned when a session's start time is after its end
// time. Sessions are same-day only; a midnight-crossing window is rejected
// rather than evaluated.
var ErrInvalidWindow = errors.New("session start time is after end time")

// Window classifies a session against now. The schedule and now are assumed
// to share one clock; the date is combined with the HH:MM times in now's
// location and compared directly. Both boundaries are inclusive: a session
// whose end time equals now is still active.
func Window(date time.Time, startTime, endTime string, now time.Time) (State, error) {
	start, err := combine(date, startTime, now.Location())
	if err != nil {
		return "", err
	}
	end, err := combine(date, endTime, now.Location())
	if err != nil {
		return "", err
	}
	if end.Before(start) {
		return "", ErrInvalidWindow
	}
	switch {
	case now.Before(start):
		return StateUpcoming, nil
	case now.After(end):
		return StateClosed, nil
	default:
		return StateActive, nil
	}
}

// ParseClock parses a time of day in "HH:MM" or "HH:MM:SS" form. Trailing
// text and unpadded minutes are rejected rather than normalized.
func ParseClock(s string) (hour, min, sec int, err error) {
	t, perr := time.Parse("15:04", s)
	if perr != nil {
		t, perr = time.Parse("15:04:05", s)
	}
	if perr != nil {
		return 0, 0, 0, fmt.Errorf("invalid time of day: %q", s)
	}
	return t.Hour(), t.Minute(), t.Second(), nil
}

func combine(date time.Time, clock string, loc *time.Location) (time.Time, error) {
	h, m, s, err := ParseClock(clock)
	if err != nil {
		return time.Time{}, err
	}
	return time.Date(date.Year(), date.Month(), date.Day(), h, m, s, 0, loc), nil
}
