// Package timetricks holds calendar and sampling-clock helpers. All functions
// operate on the wall clock of the time's own location, so callers should pass
// station-local times.
package timetricks

import (
	"time"
)

const (
	// DotFormat names a rendered frame by its timestamp.
	DotFormat = "200601021504"

	// Tick is the sampling interval of station observations.
	Tick = 6 * time.Minute
)

func TrimClock(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

func SetClock(t time.Time, hour, minute time.Duration) time.Time {
	return TrimClock(t).Add(hour*time.Hour + minute*time.Minute)
}

// OnTick reports whether t falls exactly on a 6 minute sampling tick, that is
// minute 0, 6, 12 ... 54 with no seconds.
func OnTick(t time.Time) bool {
	return t.Second() == 0 && t.Nanosecond() == 0 && t.Minute()%6 == 0
}

// FloorTick returns the last sampling tick at or before t.
func FloorTick(t time.Time) time.Time {
	y, mo, d := t.Date()
	h, m, _ := t.Clock()
	return time.Date(y, mo, d, h, m-m%6, 0, 0, t.Location())
}

// CeilTick returns the first sampling tick at or after t.
func CeilTick(t time.Time) time.Time {
	f := FloorTick(t)
	if f.Equal(t) {
		return f
	}
	return f.Add(Tick)
}

// Ticks lists every sampling tick in the half open interval [begin, end).
func Ticks(begin, end time.Time) []time.Time {
	var ticks []time.Time
	for t := CeilTick(begin); t.Before(end); t = t.Add(Tick) {
		ticks = append(ticks, t)
	}
	return ticks
}
