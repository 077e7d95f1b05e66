// Package summary formats the latest observations of the water level and met
// products for a text panel.
package summary

import (
	"fmt"
	"time"

	"github.com/spencer-p/tidedash/pkg/product"
)

const (
	TimeFormat  = "01/02/2006 03:04 PM"
	Unavailable = "data temporarily unavailable"
)

// Record keys.
const (
	Time        = "time"
	WaterLevel  = "water_level"
	WaterTemp   = "water_temp"
	AirTemp     = "air_temp"
	AirPressure = "air_pressure"
	Winds       = "winds"
	Gust        = "gust"
)

// Record maps each field to its display string.
type Record map[string]string

// Source is the part of a product a summary reads.
type Source interface {
	LatestValue(col string) (float64, bool)
	LatestText(col string) (string, bool)
	LatestObservationTime() (time.Time, bool)
	IsStale() bool
}

// Sources are the products a record reads from. Any of them may be nil.
// Each field is judged on the product that observes it, so a stale wind
// sensor does not hide a fresh temperature.
type Sources struct {
	Water       Source
	Temperature Source
	Wind        Source
	Pressure    Source
}

// Build formats the latest readings. Readings of a stale product are
// reported as unavailable. The time is the latest met observation, or the
// latest water level observation without one.
func Build(s Sources) Record {
	r := Record{
		Time:        Unavailable,
		WaterLevel:  value(s.Water, product.ColObserved, "%.3f ft Above MLLW"),
		WaterTemp:   value(s.Temperature, product.ColWaterTemp, "%.0f°F"),
		AirTemp:     value(s.Temperature, product.ColAirTemp, "%.0f°F"),
		AirPressure: value(s.Pressure, product.ColPressure, "%.1f mb"),
		Winds:       wind(s.Wind, product.ColWindSpeed),
		Gust:        wind(s.Wind, product.ColGustSpeed),
	}
	if t, ok := latest(s.Temperature, s.Wind, s.Pressure); ok {
		r[Time] = t.Format(TimeFormat)
	} else if t, ok := latest(s.Water); ok {
		r[Time] = t.Format(TimeFormat)
	}
	return r
}

func latest(sources ...Source) (time.Time, bool) {
	var at time.Time
	found := false
	for _, s := range sources {
		if s == nil {
			continue
		}
		if t, ok := s.LatestObservationTime(); ok && (!found || t.After(at)) {
			at, found = t, true
		}
	}
	return at, found
}

func value(s Source, col, format string) string {
	if s == nil || s.IsStale() {
		return Unavailable
	}
	v, ok := s.LatestValue(col)
	if !ok {
		return Unavailable
	}
	return fmt.Sprintf(format, v)
}

func wind(s Source, col string) string {
	speed := value(s, col, "%.2f kts")
	if speed == Unavailable {
		return speed
	}
	if dir, ok := s.LatestText(product.ColWindCardinal); ok {
		return speed + " from " + dir
	}
	return speed
}

// Lines lists the record as "Label: value" lines in panel order.
func (r Record) Lines() []string {
	labels := []struct{ key, label string }{
		{Time, "Local Time"},
		{WaterLevel, "Water Level"},
		{WaterTemp, "Water Temp"},
		{AirTemp, "Air Temp"},
		{AirPressure, "Barometric Pressure"},
		{Winds, "Winds"},
		{Gust, "Gusting to"},
	}
	lines := make([]string, 0, len(labels))
	for _, l := range labels {
		lines = append(lines, l.label+": "+r[l.key])
	}
	return lines
}
