package sunset

import (
	"fmt"
	"time"
)

// Place is a station's coordinates and time zone.
type Place struct {
	Lat, Long float64
	Location  *time.Location
}

// SantaMonica is the Santa Monica pier tide station.
var SantaMonica = Place{
	Lat:      34.0083,
	Long:     -118.5,
	Location: mustLoadLocation("America/Los_Angeles"),
}

// SunEvents are sun events in time order.
type SunEvents []SunEvent

// SunEvent is a sunrise or sunset.
type SunEvent struct {
	Time  time.Time
	Event Event
}

func (s SunEvent) String() string {
	return fmt.Sprintf("%s %s", s.Event, s.Time.Format("Jan 2 3:04 PM"))
}

// Event is true for a sunrise.
type Event bool

const (
	Sunrise Event = true
	Sunset  Event = false
)

func (e Event) String() string {
	if e == Sunrise {
		return "Sunrise"
	}
	return "Sunset"
}

// Span is a stretch of daylight.
type Span struct {
	Begin, End time.Time
}

// clip limits s to [begin, end]. ok is false when they do not overlap.
func (s Span) clip(begin, end time.Time) (Span, bool) {
	if !s.End.After(begin) || !s.Begin.Before(end) {
		return Span{}, false
	}
	if s.Begin.Before(begin) {
		s.Begin = begin
	}
	if s.End.After(end) {
		s.End = end
	}
	return s, true
}

func mustLoadLocation(name string) *time.Location {
	loc, err := time.LoadLocation(name)
	if err != nil {
		panic(err)
	}
	return loc
}
