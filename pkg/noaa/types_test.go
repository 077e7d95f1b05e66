package noaa

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

var pacific = func() *time.Location {
	loc, err := time.LoadLocation("America/Los_Angeles")
	if err != nil {
		panic(err)
	}
	return loc
}()

func TestNewTable(t *testing.T) {
	entries := []map[string]string{
		{"t": "2021-06-01 00:12", "v": "2.10", "s": "", "f": "0,0,0,0"},
		{"t": "2021-06-01 00:00", "v": "2.05", "s": "0.003", "f": "0,0,0,0"},
	}
	tbl, err := newTable(entries, pacific)
	if err != nil {
		t.Fatalf("newTable: %v", err)
	}

	want := []Row{{
		Time:   time.Date(2021, time.June, 1, 0, 0, 0, 0, pacific),
		Values: map[string]string{"v": "2.05", "s": "0.003", "f": "0,0,0,0"},
	}, {
		Time:   time.Date(2021, time.June, 1, 0, 12, 0, 0, pacific),
		Values: map[string]string{"v": "2.10", "f": "0,0,0,0"},
	}}
	if diff := cmp.Diff(want, tbl.Rows); diff != "" {
		t.Errorf("rows (-want,+got): %s", diff)
	}
}

func TestNewTableRejects(t *testing.T) {
	table := []struct {
		name  string
		entry map[string]string
	}{
		{"no time", map[string]string{"v": "1.0"}},
		{"bad time", map[string]string{"t": "06/01/2021 00:00", "v": "1.0"}},
	}
	for _, tc := range table {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := newTable([]map[string]string{tc.entry}, pacific); err == nil {
				t.Errorf("newTable(%v) succeeded", tc.entry)
			}
		})
	}
}

func TestTrimAndPredictions(t *testing.T) {
	tbl, err := newTable([]map[string]string{
		{"t": "2021-05-31 20:05", "v": "4.512", "type": "H"},
		{"t": "2021-06-01 02:17", "v": "0.310", "type": "L"},
		{"t": "2021-06-01 08:29", "v": "bogus", "type": "H"},
		{"t": "2021-06-01 14:41", "v": "1.204", "type": "?"},
		{"t": "2021-06-01 20:53", "v": "5.020", "type": "H"},
	}, pacific)
	if err != nil {
		t.Fatal(err)
	}

	day := time.Date(2021, time.June, 1, 0, 0, 0, 0, pacific)
	trimmed := tbl.Trim(day, day.Add(24*time.Hour))
	if trimmed.Len() != 4 {
		t.Fatalf("trimmed to %d rows, want 4", trimmed.Len())
	}

	want := Predictions{
		{Time: Time(day.Add(2*time.Hour + 17*time.Minute)), Height: 0.31, Type: LowTide},
		{Time: Time(day.Add(20*time.Hour + 53*time.Minute)), Height: 5.02, Type: HighTide},
	}
	got := trimmed.Predictions()
	if diff := cmp.Diff(want, got, cmp.Comparer(func(a, b Time) bool {
		return time.Time(a).Equal(time.Time(b))
	})); diff != "" {
		t.Errorf("predictions (-want,+got): %s", diff)
	}

	var empty *Table
	if empty.Len() != 0 || empty.Predictions() != nil {
		t.Error("a nil table should be empty")
	}
}

func TestUnmarshalPrediction(t *testing.T) {
	var got Prediction
	if err := json.Unmarshal([]byte(`{"t":"2020-10-20 02:17", "v":"4.080", "type":"H"}`), &got); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if got.Height != 4.08 || got.Type != HighTide {
		t.Errorf("got %s, want a 4.08 ft high", got)
	}
	if h, m, _ := time.Time(got.Time).Clock(); h != 2 || m != 17 {
		t.Errorf("got time %02d:%02d, want 02:17", h, m)
	}

	for _, bad := range []string{
		`{"t":"2020-10-20 02:17", "v":"4.080", "type":"X"}`,
		`{"t":"2020-10-20 02:17", "v":4.080, "type":"H"}`,
		`{"t":"yesterday", "v":"4.080", "type":"H"}`,
	} {
		if err := json.Unmarshal([]byte(bad), &got); err == nil {
			t.Errorf("Unmarshal(%s) succeeded", bad)
		}
	}
}

func TestTideWords(t *testing.T) {
	for tide, want := range map[Tide]string{HighTide: "High", LowTide: "Low", Tide(7): "invalid"} {
		if got := tide.Word(); got != want {
			t.Errorf("Tide(%d).Word() = %q, want %q", uint(tide), got, want)
		}
	}
}
