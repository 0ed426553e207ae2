package session

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWindow(t *testing.T) {
	date := time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)
	at := func(hour, min int) time.Time {
		return time.Date(2024, 1, 10, hour, min, 0, 0, time.UTC)
	}

	tests := []struct {
		name string
		now  time.Time
		want State
	}{
		{name: "one minute before start", now: at(8, 59), want: StateUpcoming},
		{name: "exactly at start", now: at(9, 0), want: StateActive},
		{name: "mid window", now: at(9, 30), want: StateActive},
		{name: "exactly at end", now: at(10, 0), want: StateActive},
		{name: "one minute after end", now: at(10, 1), want: StateClosed},
		{name: "previous day", now: at(9, 30).AddDate(0, 0, -1), want: StateUpcoming},
		{name: "next day", now: at(9, 30).AddDate(0, 0, 1), want: StateClosed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Window(date, "09:00", "10:00", tt.now)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestWindowEndSecondInclusive(t *testing.T) {
	date := time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)

	// 10:00:30 is after the 10:00:00 boundary instant.
	now := time.Date(2024, 1, 10, 10, 0, 30, 0, time.UTC)
	got, err := Window(date, "09:00", "10:00", now)
	require.NoError(t, err)
	assert.Equal(t, StateClosed, got)
}

func TestWindowInvalid(t *testing.T) {
	date := time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)
	now := time.Date(2024, 1, 10, 12, 0, 0, 0, time.UTC)

	_, err := Window(date, "22:00", "01:00", now)
	assert.ErrorIs(t, err, ErrInvalidWindow)

	_, err = Window(date, "9am", "10:00", now)
	assert.Error(t, err)

	_, err = Window(date, "09:00", "25:00", now)
	assert.Error(t, err)
}

func TestParseClock(t *testing.T) {
	h, m, s, err := ParseClock("09:05")
	require.NoError(t, err)
	assert.Equal(t, []int{9, 5, 0}, []int{h, m, s})

	h, m, s, err = ParseClock("23:59:59")
	require.NoError(t, err)
	assert.Equal(t, []int{23, 59, 59}, []int{h, m, s})

	_, _, _, err = ParseClock("24:00")
	assert.Error(t, err)

	_, _, _, err = ParseClock("noon")
	assert.Error(t, err)

	// No trailing text and no unpadded minutes.
	_, _, _, err = ParseClock("09:00x")
	assert.Error(t, err)

	_, _, _, err = ParseClock("9:5")
	assert.Error(t, err)
}
