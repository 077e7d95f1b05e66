package summary

import (
	"fmt"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/spencer-p/tidedash/pkg/product"
)

type fakeSource struct {
	values map[string]float64
	texts  map[string]string
	latest time.Time
	stale  bool
}

func (f *fakeSource) LatestValue(col string) (float64, bool) {
	v, ok := f.values[col]
	if !ok {
		return math.NaN(), false
	}
	return v, true
}

func (f *fakeSource) LatestText(col string) (string, bool) {
	v, ok := f.texts[col]
	return v, ok
}

func (f *fakeSource) LatestObservationTime() (time.Time, bool) {
	return f.latest, !f.latest.IsZero()
}

func (f *fakeSource) IsStale() bool { return f.stale }

var observedAt = time.Date(2021, time.June, 1, 14, 6, 0, 0, time.UTC)

func water() *fakeSource {
	return &fakeSource{
		values: map[string]float64{product.ColObserved: 3.14159},
		latest: observedAt,
	}
}

func temperature() *fakeSource {
	return &fakeSource{
		values: map[string]float64{
			product.ColAirTemp:   68.4,
			product.ColWaterTemp: 61.6,
		},
		latest: observedAt,
	}
}

func windSource() *fakeSource {
	return &fakeSource{
		values: map[string]float64{
			product.ColWindSpeed: 7.125,
			product.ColGustSpeed: 11,
		},
		texts:  map[string]string{product.ColWindCardinal: "WSW"},
		latest: observedAt,
	}
}

func pressure() *fakeSource {
	return &fakeSource{
		values: map[string]float64{product.ColPressure: 1013.25},
		latest: observedAt,
	}
}

func fresh() Sources {
	return Sources{Water: water(), Temperature: temperature(), Wind: windSource(), Pressure: pressure()}
}

func TestBuild(t *testing.T) {
	staleWind := fresh()
	staleWind.Wind.(*fakeSource).stale = true

	allStale := fresh()
	for _, s := range []Source{allStale.Temperature, allStale.Wind, allStale.Pressure} {
		s.(*fakeSource).stale = true
	}

	waterOnly := Sources{Water: water()}
	waterOnly.Water.(*fakeSource).latest = observedAt.Add(-6 * time.Minute)

	table := []struct {
		name string
		in   Sources
		want Record
	}{{
		name: "fresh",
		in:   fresh(),
		want: Record{
			Time:        "06/01/2021 02:06 PM",
			WaterLevel:  "3.142 ft Above MLLW",
			WaterTemp:   "62°F",
			AirTemp:     "68°F",
			AirPressure: "1013.2 mb",
			Winds:       "7.12 kts from WSW",
			Gust:        "11.00 kts from WSW",
		},
	}, {
		name: "stale wind only",
		in:   staleWind,
		want: Record{
			Time:        "06/01/2021 02:06 PM",
			WaterLevel:  "3.142 ft Above MLLW",
			WaterTemp:   "62°F",
			AirTemp:     "68°F",
			AirPressure: "1013.2 mb",
			Winds:       Unavailable,
			Gust:        Unavailable,
		},
	}, {
		name: "stale met",
		in:   allStale,
		want: Record{
			Time:        "06/01/2021 02:06 PM",
			WaterLevel:  "3.142 ft Above MLLW",
			WaterTemp:   Unavailable,
			AirTemp:     Unavailable,
			AirPressure: Unavailable,
			Winds:       Unavailable,
			Gust:        Unavailable,
		},
	}, {
		name: "water only",
		in:   waterOnly,
		want: Record{
			Time:        "06/01/2021 02:00 PM",
			WaterLevel:  "3.142 ft Above MLLW",
			WaterTemp:   Unavailable,
			AirTemp:     Unavailable,
			AirPressure: Unavailable,
			Winds:       Unavailable,
			Gust:        Unavailable,
		},
	}, {
		name: "nothing",
		want: Record{
			Time:        Unavailable,
			WaterLevel:  Unavailable,
			WaterTemp:   Unavailable,
			AirTemp:     Unavailable,
			AirPressure: Unavailable,
			Winds:       Unavailable,
			Gust:        Unavailable,
		},
	}}
	for _, tc := range table {
		t.Run(tc.name, func(t *testing.T) {
			got := Build(tc.in)
			if diff := cmp.Diff(tc.want, got); diff != "" {
				t.Errorf("wrong record (-want,+got): %s", diff)
			}
		})
	}
}

func ExampleRecord_Lines() {
	r := Build(fresh())
	fmt.Println(strings.Join(r.Lines(), "\n"))
	// Output:
	// Local Time: 06/01/2021 02:06 PM
	// Water Level: 3.142 ft Above MLLW
	// Water Temp: 62°F
	// Air Temp: 68°F
	// Barometric Pressure: 1013.2 mb
	// Winds: 7.12 kts from WSW
	// Gusting to: 11.00 kts from WSW
}
