package series

import (
	"math"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

var t0 = time.Date(2021, time.June, 1, 12, 0, 0, 0, time.UTC)

func at(minutes int) time.Time {
	return t0.Add(time.Duration(minutes) * time.Minute)
}

var nan = math.NaN()

func TestBuilderSortsAndCollapses(t *testing.T) {
	b := NewBuilder()
	b.Float(at(12), "v", 3)
	b.Float(at(0), "v", 1)
	b.Float(at(6), "v", 2)
	b.Float(at(6), "v", 2.5)
	b.Text(at(0), "type", "H")
	f := b.Frame()

	if diff := cmp.Diff([]time.Time{at(0), at(6), at(12)}, f.Index()); diff != "" {
		t.Errorf("wrong index (-want,+got): %s", diff)
	}
	if diff := cmp.Diff([]float64{1, 2.5, 3}, f.Floats("v")); diff != "" {
		t.Errorf("wrong values (-want,+got): %s", diff)
	}
	if diff := cmp.Diff([]string{"H", "", ""}, f.Texts("type")); diff != "" {
		t.Errorf("wrong texts (-want,+got): %s", diff)
	}
}

func TestJoin(t *testing.T) {
	a := NewBuilder()
	a.Float(at(0), "air", 60)
	a.Float(at(6), "air", 61)
	b := NewBuilder()
	b.Float(at(6), "water", 55)
	b.Float(at(12), "water", 56)

	got := Join(a.Frame(), b.Frame())

	if got.Len() != 3 {
		t.Fatalf("got %d rows, want 3", got.Len())
	}
	opt := cmpopts.EquateNaNs()
	if diff := cmp.Diff([]float64{60, 61, nan}, got.Floats("air"), opt); diff != "" {
		t.Errorf("wrong air (-want,+got): %s", diff)
	}
	if diff := cmp.Diff([]float64{nan, 55, 56}, got.Floats("water"), opt); diff != "" {
		t.Errorf("wrong water (-want,+got): %s", diff)
	}
}

func TestReindex(t *testing.T) {
	b := NewBuilder()
	b.Float(at(3), "v", 9)
	b.Float(at(6), "v", 1)
	b.Text(at(6), "event", "L")
	f := b.Frame().Reindex([]time.Time{at(0), at(6), at(12)})

	opt := cmpopts.EquateNaNs()
	if diff := cmp.Diff([]float64{nan, 1, nan}, f.Floats("v"), opt); diff != "" {
		t.Errorf("wrong values (-want,+got): %s", diff)
	}
	if diff := cmp.Diff([]string{"", "L", ""}, f.Texts("event")); diff != "" {
		t.Errorf("wrong texts (-want,+got): %s", diff)
	}
}

func TestLastValidAndAllNull(t *testing.T) {
	f := New([]time.Time{at(0), at(6), at(12), at(18)})
	if err := f.SetFloats("v", []float64{1, 2, nan, 4}); err != nil {
		t.Fatal(err)
	}

	when, v, ok := f.LastValid("v", at(12))
	if !ok || v != 2 || !when.Equal(at(6)) {
		t.Errorf("LastValid = (%s, %v, %t), want (%s, 2, true)", when, v, ok, at(6))
	}

	table := []struct {
		name       string
		begin, end time.Time
		want       bool
	}{
		{"gap only", at(10), at(14), true},
		{"includes value", at(6), at(12), false},
		{"outside rows", at(30), at(60), true},
	}
	for _, tc := range table {
		t.Run(tc.name, func(t *testing.T) {
			if got := f.AllNull([]string{"v"}, tc.begin, tc.end); got != tc.want {
				t.Errorf("AllNull = %t, want %t", got, tc.want)
			}
		})
	}
}

func TestEqualTreatsNullsAlike(t *testing.T) {
	mk := func() *Frame {
		f := New([]time.Time{at(0), at(6)})
		f.SetFloats("v", []float64{nan, 2})
		return f
	}
	if !mk().Equal(mk()) {
		t.Errorf("identical frames compare unequal")
	}
	other := mk()
	other.SetFloats("v", []float64{1, 2})
	if mk().Equal(other) {
		t.Errorf("different frames compare equal")
	}
}

func TestRange(t *testing.T) {
	f := New([]time.Time{at(0), at(6)})
	f.SetFloats("air", []float64{61, nan})
	f.SetFloats("water", []float64{nan, 55})
	lo, hi := f.Range("air", "water")
	if lo != 55 || hi != 61 {
		t.Errorf("Range = (%v, %v), want (55, 61)", lo, hi)
	}
	lo, hi = f.Range("missing")
	if !IsNull(lo) || !IsNull(hi) {
		t.Errorf("Range of missing column = (%v, %v), want nulls", lo, hi)
	}
}
