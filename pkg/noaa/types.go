package noaa

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"time"
)

const predTimeFormat = "2006-01-02 15:04"

// timeKey is the payload key holding each row's timestamp.
const timeKey = "t"

// Prediction holds a single tide event prediction.
type Prediction struct {
	// Local time of tide prediction
	Time Time `json:"t"`
	// Height in feet
	Height Height `json:"v"`
	// High or Low tide, "H" or "L" when encoded
	Type Tide `json:"type"`
}

// Verify the custom types can be unmarshaled
var _ json.Unmarshaler = &Time{}
var _ json.Unmarshaler = new(Height)
var _ json.Unmarshaler = new(Tide)

// Predictions is a time series of Prediction.
type Predictions []Prediction

type Station int

const (
	SantaMonica Station = 9410840
)

type Time time.Time

// ParseTime reads a payload timestamp on the station's wall clock.
func ParseTime(s string, loc *time.Location) (time.Time, error) {
	parsed, err := time.ParseInLocation(predTimeFormat, s, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("time %q not in fmt %q: %w", s, predTimeFormat, err)
	}
	return parsed, nil
}

func (t *Time) UnmarshalJSON(buf []byte) error {
	var s string
	if err := json.Unmarshal(buf, &s); err != nil {
		return fmt.Errorf("prediction time %q not string: %w", buf, err)
	}
	parsed, err := ParseTime(s, time.Local)
	if err != nil {
		return err
	}
	*t = Time(parsed)
	return nil
}

type Height float64

func ParseHeight(s string) (Height, error) {
	parsed, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("water height %q not a float: %w", s, err)
	}
	return Height(parsed), nil
}

func (h *Height) UnmarshalJSON(buf []byte) error {
	var s string
	if err := json.Unmarshal(buf, &s); err != nil {
		return fmt.Errorf("water height %q not string: %w", buf, err)
	}
	parsed, err := ParseHeight(s)
	if err != nil {
		return err
	}
	*h = parsed
	return nil
}

type Tide uint

const (
	HighTide Tide = iota
	LowTide
)

func (t Tide) Valid() bool {
	return t == HighTide || t == LowTide
}

func ParseTide(s string) (Tide, error) {
	switch s {
	case "H":
		return HighTide, nil
	case "L":
		return LowTide, nil
	default:
		return 0, fmt.Errorf("invalid tide type %q", s)
	}
}

func (t *Tide) UnmarshalJSON(buf []byte) error {
	var s string
	if err := json.Unmarshal(buf, &s); err != nil {
		return fmt.Errorf("tide %q not a string: %w", buf, err)
	}
	parsed, err := ParseTide(s)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

func (t Tide) String() string {
	switch t {
	case HighTide:
		return "H"
	case LowTide:
		return "L"
	default:
		return "invalid"
	}
}

// Word spells the tide type out for display.
func (t Tide) Word() string {
	switch t {
	case HighTide:
		return "High"
	case LowTide:
		return "Low"
	default:
		return "invalid"
	}
}

func (p Prediction) String() string {
	return fmt.Sprintf("{t: %s, v: %f, type: %s}",
		time.Time(p.Time).Format(time.RFC822),
		p.Height,
		p.Type.String())
}

// Row is one timestamped record of a pull. Keys whose payload value was an
// empty string are absent.
type Row struct {
	Time   time.Time
	Values map[string]string
}

// Table is the result of a pull, sorted by time.
type Table struct {
	Rows []Row
}

func newTable(entries []map[string]string, loc *time.Location) (*Table, error) {
	tbl := &Table{Rows: make([]Row, 0, len(entries))}
	for _, entry := range entries {
		ts, ok := entry[timeKey]
		if !ok {
			return nil, fmt.Errorf("entry %v has no %q key", entry, timeKey)
		}
		t, err := ParseTime(ts, loc)
		if err != nil {
			return nil, err
		}
		vals := make(map[string]string, len(entry)-1)
		for k, v := range entry {
			if k == timeKey || v == "" {
				continue
			}
			vals[k] = v
		}
		tbl.Rows = append(tbl.Rows, Row{Time: t, Values: vals})
	}
	sort.SliceStable(tbl.Rows, func(i, j int) bool {
		return tbl.Rows[i].Time.Before(tbl.Rows[j].Time)
	})
	return tbl, nil
}

// Trim keeps rows in the closed window [begin, end].
func (tbl *Table) Trim(begin, end time.Time) *Table {
	out := &Table{}
	for _, r := range tbl.Rows {
		if r.Time.Before(begin) || r.Time.After(end) {
			continue
		}
		out.Rows = append(out.Rows, r)
	}
	return out
}

// Len is the number of rows; nil tables are empty.
func (tbl *Table) Len() int {
	if tbl == nil {
		return 0
	}
	return len(tbl.Rows)
}

// Predictions reads hi-lo rows as typed tide events. Rows without a valid
// height or tide type are skipped.
func (tbl *Table) Predictions() Predictions {
	var preds Predictions
	if tbl == nil {
		return preds
	}
	for _, r := range tbl.Rows {
		h, err := ParseHeight(r.Values["v"])
		if err != nil {
			continue
		}
		typ, err := ParseTide(r.Values["type"])
		if err != nil {
			continue
		}
		preds = append(preds, Prediction{Time: Time(r.Time), Height: h, Type: typ})
	}
	return preds
}
