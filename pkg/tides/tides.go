// Package tides picks the handful of high and low tides worth showing next to
// the current time.
package tides

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/spencer-p/tidedash/pkg/noaa"
)

const (
	timeFmt   = "3:04 PM"
	heightFmt = "%.2f ft"

	// Window is how many extrema Select returns.
	Window = 3
)

var ErrTooFew = errors.New("not enough tide extrema")

// Select returns the three extrema surrounding now. When the extremum nearest
// to now is still upcoming, that is one prior and two upcoming; when it is at or
// before now, two prior and one upcoming. preds must be sorted by time.
func Select(preds noaa.Predictions, now time.Time) (noaa.Predictions, error) {
	n := len(preds)
	if n < Window {
		return nil, fmt.Errorf("%w: have %d, need %d", ErrTooFew, n, Window)
	}

	i := nearest(preds, now)

	// Either way the nearest extremum sits in the middle of the window.
	first := i - 1
	if first < 0 {
		first = 0
	}
	if first+Window > n {
		first = n - Window
	}
	return preds[first : first+Window], nil
}

// nearest finds the index of the extremum closest to t. Ties go to the earlier
// extremum.
func nearest(preds noaa.Predictions, t time.Time) int {
	// First extremum strictly after t.
	after := sort.Search(len(preds), func(i int) bool {
		return time.Time(preds[i].Time).After(t)
	})
	switch {
	case after == 0:
		return 0
	case after == len(preds):
		return len(preds) - 1
	}
	before := after - 1
	if time.Time(preds[after].Time).Sub(t) < t.Sub(time.Time(preds[before].Time)) {
		return after
	}
	return before
}

// Row is one line of the tide table panel.
type Row struct {
	Time   string `json:"time"`
	Tide   string `json:"tide"`
	Height string `json:"height"`
}

// Table formats extrema for display.
func Table(preds noaa.Predictions) []Row {
	rows := make([]Row, len(preds))
	for i, p := range preds {
		rows[i] = Row{
			Time:   time.Time(p.Time).Format(timeFmt),
			Tide:   p.Type.Word(),
			Height: fmt.Sprintf(heightFmt, float64(p.Height)),
		}
	}
	return rows
}

func (r Row) String() string {
	return fmt.Sprintf("%s tide at %s, %s", r.Tide, r.Time, r.Height)
}

// MarshalJSON encodes a table as a list even when it is empty.
func MarshalJSON(rows []Row) ([]byte, error) {
	if rows == nil {
		rows = []Row{}
	}
	return json.Marshal(rows)
}
