package sunset

import (
	"time"

	"github.com/spencer-p/tidedash/pkg/timetricks"

	"github.com/keep94/sunrise"
)

// GetSunEvents returns the ordered sun events of every calendar day touched by
// [begin, end] in the given place, starting with the first day's sunrise.
func GetSunEvents(begin, end time.Time, place Place) SunEvents {
	var ret SunEvents
	var s sunrise.Sunrise
	for day := timetricks.TrimClock(begin.In(place.Location)); !day.After(end); day = day.AddDate(0, 0, 1) {
		s.Around(place.Lat, place.Long, timetricks.SetClock(day, 12, 0))
		rise, set := s.Sunrise(), s.Sunset()
		if rise.IsZero() || set.IsZero() {
			// Polar day or night.
			continue
		}
		ret = append(ret,
			SunEvent{rise.In(place.Location), Sunrise},
			SunEvent{set.In(place.Location), Sunset})
	}
	return ret
}

// Daylight lists the daylight spans overlapping [begin, end], clipped to it.
func Daylight(begin, end time.Time, place Place) []Span {
	var spans []Span
	events := GetSunEvents(begin, end, place)
	for i := 0; i+1 < len(events); i += 2 {
		if span, ok := (Span{events[i].Time, events[i+1].Time}).clip(begin, end); ok {
			spans = append(spans, span)
		}
	}
	return spans
}
