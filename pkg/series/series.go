// Package series implements a small time indexed table. Each row is keyed by
// a unique timestamp and carries any number of named numeric or text columns.
// Missing numeric values are NaN and missing text values are empty strings.
//
// Frames are treated as immutable once built: every transformation returns a
// new Frame.
package series

import (
	"fmt"
	"math"
	"sort"
	"time"
)

// Frame is an ordered, time indexed table of columns.
type Frame struct {
	index  []time.Time
	floats map[string][]float64
	texts  map[string][]string
}

// Null is the missing numeric value.
func Null() float64 { return math.NaN() }

// IsNull reports whether v is missing.
func IsNull(v float64) bool { return math.IsNaN(v) }

// New creates an empty-columned frame over the given timestamps. The index is
// sorted and duplicate instants are collapsed.
func New(index []time.Time) *Frame {
	f := &Frame{
		index:  sortedUnique(index),
		floats: make(map[string][]float64),
		texts:  make(map[string][]string),
	}
	return f
}

// Builder accumulates rows in any order. Later writes to the same cell win.
type Builder struct {
	rows   map[int64]time.Time
	floats map[string]map[int64]float64
	texts  map[string]map[int64]string
}

func NewBuilder() *Builder {
	return &Builder{
		rows:   make(map[int64]time.Time),
		floats: make(map[string]map[int64]float64),
		texts:  make(map[string]map[int64]string),
	}
}

// Row makes sure a row exists at t even if no cell is ever written to it.
func (b *Builder) Row(t time.Time) {
	b.rows[t.UnixNano()] = t
}

// Float writes one numeric cell.
func (b *Builder) Float(t time.Time, col string, v float64) {
	b.Row(t)
	if b.floats[col] == nil {
		b.floats[col] = make(map[int64]float64)
	}
	b.floats[col][t.UnixNano()] = v
}

// Text writes one text cell.
func (b *Builder) Text(t time.Time, col string, v string) {
	b.Row(t)
	if b.texts[col] == nil {
		b.texts[col] = make(map[int64]string)
	}
	b.texts[col][t.UnixNano()] = v
}

// FloatColumn declares a numeric column so it exists even when every cell is
// null.
func (b *Builder) FloatColumn(col string) {
	if b.floats[col] == nil {
		b.floats[col] = make(map[int64]float64)
	}
}

// TextColumn declares a text column.
func (b *Builder) TextColumn(col string) {
	if b.texts[col] == nil {
		b.texts[col] = make(map[int64]string)
	}
}

func (b *Builder) Frame() *Frame {
	index := make([]time.Time, 0, len(b.rows))
	for _, t := range b.rows {
		index = append(index, t)
	}
	f := New(index)
	for col, cells := range b.floats {
		vals := nulls(f.Len())
		for i, t := range f.index {
			if v, ok := cells[t.UnixNano()]; ok {
				vals[i] = v
			}
		}
		f.floats[col] = vals
	}
	for col, cells := range b.texts {
		vals := make([]string, f.Len())
		for i, t := range f.index {
			vals[i] = cells[t.UnixNano()]
		}
		f.texts[col] = vals
	}
	return f
}

func (f *Frame) Len() int {
	if f == nil {
		return 0
	}
	return len(f.index)
}

// Index returns a copy of the row timestamps.
func (f *Frame) Index() []time.Time {
	if f == nil {
		return nil
	}
	return append([]time.Time(nil), f.index...)
}

func (f *Frame) Time(i int) time.Time { return f.index[i] }

// SetFloats attaches a numeric column. The slice is owned by the frame
// afterwards.
func (f *Frame) SetFloats(col string, vals []float64) error {
	if len(vals) != f.Len() {
		return fmt.Errorf("column %q has %d values for %d rows", col, len(vals), f.Len())
	}
	delete(f.texts, col)
	f.floats[col] = vals
	return nil
}

// SetTexts attaches a text column.
func (f *Frame) SetTexts(col string, vals []string) error {
	if len(vals) != f.Len() {
		return fmt.Errorf("column %q has %d values for %d rows", col, len(vals), f.Len())
	}
	delete(f.floats, col)
	f.texts[col] = vals
	return nil
}

// Floats returns a numeric column, or nil if there is none by that name.
func (f *Frame) Floats(col string) []float64 {
	if f == nil {
		return nil
	}
	return f.floats[col]
}

// Texts returns a text column, or nil if there is none by that name.
func (f *Frame) Texts(col string) []string {
	if f == nil {
		return nil
	}
	return f.texts[col]
}

// Has reports whether a column of either kind exists.
func (f *Frame) Has(col string) bool {
	if f == nil {
		return false
	}
	_, okf := f.floats[col]
	_, okt := f.texts[col]
	return okf || okt
}

// Columns lists all column names in sorted order.
func (f *Frame) Columns() []string {
	if f == nil {
		return nil
	}
	cols := make([]string, 0, len(f.floats)+len(f.texts))
	for c := range f.floats {
		cols = append(cols, c)
	}
	for c := range f.texts {
		cols = append(cols, c)
	}
	sort.Strings(cols)
	return cols
}

// Lookup finds the row at t.
func (f *Frame) Lookup(t time.Time) (int, bool) {
	i := sort.Search(f.Len(), func(i int) bool { return !f.index[i].Before(t) })
	if i < f.Len() && f.index[i].Equal(t) {
		return i, true
	}
	return i, false
}

// Join merges frames on their timestamps, keeping every row of every frame.
// Cells absent from a frame become null. When two frames share a column name,
// non-null values from later frames win.
func Join(frames ...*Frame) *Frame {
	b := NewBuilder()
	for _, f := range frames {
		if f == nil {
			continue
		}
		for _, t := range f.index {
			b.Row(t)
		}
		for c, vals := range f.floats {
			b.FloatColumn(c)
			for i, v := range vals {
				if !IsNull(v) {
					b.Float(f.index[i], c, v)
				}
			}
		}
		for c, vals := range f.texts {
			b.TextColumn(c)
			for i, v := range vals {
				if v != "" {
					b.Text(f.index[i], c, v)
				}
			}
		}
	}
	return b.Frame()
}

// Filter keeps the rows for which keep returns true.
func (f *Frame) Filter(keep func(i int) bool) *Frame {
	var rows []int
	for i := range f.index {
		if keep(i) {
			rows = append(rows, i)
		}
	}
	return f.take(rows)
}

// Slice keeps rows in the closed interval [begin, end].
func (f *Frame) Slice(begin, end time.Time) *Frame {
	return f.Filter(func(i int) bool {
		t := f.index[i]
		return !t.Before(begin) && !t.After(end)
	})
}

// Upto keeps rows at or before t.
func (f *Frame) Upto(t time.Time) *Frame {
	return f.Filter(func(i int) bool { return !f.index[i].After(t) })
}

// Reindex conforms the frame to a new index. Rows of f not in index are dropped
// and rows of index not in f are null.
func (f *Frame) Reindex(index []time.Time) *Frame {
	out := New(index)
	for c := range f.floats {
		out.floats[c] = nulls(out.Len())
	}
	for c := range f.texts {
		out.texts[c] = make([]string, out.Len())
	}
	for j, t := range out.index {
		i, ok := f.Lookup(t)
		if !ok {
			continue
		}
		for c, v := range f.floats {
			out.floats[c][j] = v[i]
		}
		for c, v := range f.texts {
			out.texts[c][j] = v[i]
		}
	}
	return out
}

// LastValid finds the latest non-null value of col at or before upto.
func (f *Frame) LastValid(col string, upto time.Time) (time.Time, float64, bool) {
	vals := f.Floats(col)
	for i := len(vals) - 1; i >= 0; i-- {
		if f.index[i].After(upto) || IsNull(vals[i]) {
			continue
		}
		return f.index[i], vals[i], true
	}
	return time.Time{}, Null(), false
}

// LastValidText is LastValid for text columns.
func (f *Frame) LastValidText(col string, upto time.Time) (time.Time, string, bool) {
	vals := f.Texts(col)
	for i := len(vals) - 1; i >= 0; i-- {
		if f.index[i].After(upto) || vals[i] == "" {
			continue
		}
		return f.index[i], vals[i], true
	}
	return time.Time{}, "", false
}

// AllNull reports whether every value of the named columns inside the closed
// interval [begin, end] is null. Columns that do not exist count as null.
func (f *Frame) AllNull(cols []string, begin, end time.Time) bool {
	for _, c := range cols {
		vals := f.Floats(c)
		for i, v := range vals {
			t := f.index[i]
			if t.Before(begin) || t.After(end) {
				continue
			}
			if !IsNull(v) {
				return false
			}
		}
	}
	return true
}

// Range returns the smallest and largest non-null values across the named
// columns. Both are NaN when there are none.
func (f *Frame) Range(cols ...string) (lo, hi float64) {
	lo, hi = Null(), Null()
	for _, c := range cols {
		for _, v := range f.Floats(c) {
			if IsNull(v) {
				continue
			}
			if IsNull(lo) || v < lo {
				lo = v
			}
			if IsNull(hi) || v > hi {
				hi = v
			}
		}
	}
	return lo, hi
}

// Equal reports whether two frames hold the same rows and cells. Nulls compare
// equal to each other.
func (f *Frame) Equal(g *Frame) bool {
	if f == nil || g == nil {
		return f.Len() == 0 && g.Len() == 0
	}
	if f.Len() != g.Len() || len(f.Columns()) != len(g.Columns()) {
		return false
	}
	for i := range f.index {
		if !f.index[i].Equal(g.index[i]) {
			return false
		}
	}
	for c, v := range f.floats {
		w, ok := g.floats[c]
		if !ok {
			return false
		}
		for i := range v {
			if v[i] != w[i] && !(IsNull(v[i]) && IsNull(w[i])) {
				return false
			}
		}
	}
	for c, v := range f.texts {
		w, ok := g.texts[c]
		if !ok {
			return false
		}
		for i := range v {
			if v[i] != w[i] {
				return false
			}
		}
	}
	return true
}

func (f *Frame) take(rows []int) *Frame {
	index := make([]time.Time, len(rows))
	for j, i := range rows {
		index[j] = f.index[i]
	}
	out := &Frame{
		index:  index,
		floats: make(map[string][]float64, len(f.floats)),
		texts:  make(map[string][]string, len(f.texts)),
	}
	for c, v := range f.floats {
		vals := make([]float64, len(rows))
		for j, i := range rows {
			vals[j] = v[i]
		}
		out.floats[c] = vals
	}
	for c, v := range f.texts {
		vals := make([]string, len(rows))
		for j, i := range rows {
			vals[j] = v[i]
		}
		out.texts[c] = vals
	}
	return out
}

func nulls(n int) []float64 {
	vals := make([]float64, n)
	for i := range vals {
		vals[i] = Null()
	}
	return vals
}

func sortedUnique(index []time.Time) []time.Time {
	out := append([]time.Time(nil), index...)
	sort.Slice(out, func(i, j int) bool { return out[i].Before(out[j]) })
	n := 0
	for i, t := range out {
		if i > 0 && t.Equal(out[n-1]) {
			continue
		}
		out[n] = t
		n++
	}
	return out[:n]
}
