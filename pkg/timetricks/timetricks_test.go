package timetricks

import (
	"fmt"
	"testing"
	"time"
)

var pacific = func() *time.Location {
	loc, err := time.LoadLocation("America/Los_Angeles")
	if err != nil {
		panic(err)
	}
	return loc
}()

func ExampleFloorTick() {
	t := time.Date(2021, time.March, 4, 13, 59, 30, 0, pacific)
	fmt.Println(FloorTick(t).Format(DotFormat))
	fmt.Println(CeilTick(t).Format(DotFormat))
	// Output:
	// 202103041354
	// 202103041400
}

func TestOnTick(t *testing.T) {
	table := []struct {
		t    time.Time
		want bool
	}{
		{time.Date(2021, time.March, 4, 13, 0, 0, 0, pacific), true},
		{time.Date(2021, time.March, 4, 13, 54, 0, 0, pacific), true},
		{time.Date(2021, time.March, 4, 13, 55, 0, 0, pacific), false},
		{time.Date(2021, time.March, 4, 13, 6, 1, 0, pacific), false},
	}
	for _, tc := range table {
		t.Run(tc.t.Format(time.Kitchen), func(t *testing.T) {
			if got := OnTick(tc.t); got != tc.want {
				t.Errorf("OnTick(%s) = %t, want %t", tc.t, got, tc.want)
			}
		})
	}
}

func TestTicks(t *testing.T) {
	table := []struct {
		name       string
		begin, end time.Time
		want       int
	}{{
		name:  "aligned",
		begin: time.Date(2021, time.March, 4, 0, 0, 0, 0, pacific),
		end:   time.Date(2021, time.March, 4, 1, 0, 0, 0, pacific),
		want:  10,
	}, {
		name:  "unaligned",
		begin: time.Date(2021, time.March, 4, 0, 1, 0, 0, pacific),
		end:   time.Date(2021, time.March, 4, 1, 1, 0, 0, pacific),
		want:  10,
	}, {
		name:  "empty",
		begin: time.Date(2021, time.March, 4, 0, 1, 0, 0, pacific),
		end:   time.Date(2021, time.March, 4, 0, 5, 0, 0, pacific),
		want:  0,
	}}
	for _, tc := range table {
		t.Run(tc.name, func(t *testing.T) {
			got := Ticks(tc.begin, tc.end)
			if len(got) != tc.want {
				t.Fatalf("got %d ticks, want %d", len(got), tc.want)
			}
			for _, tick := range got {
				if !OnTick(tick) {
					t.Errorf("%s is not on a tick", tick)
				}
			}
		})
	}
}

func TestTrimClock(t *testing.T) {
	in := time.Date(2021, time.March, 14, 17, 45, 12, 9, pacific)
	want := time.Date(2021, time.March, 14, 0, 0, 0, 0, pacific)
	if got := TrimClock(in); !got.Equal(want) {
		t.Errorf("TrimClock(%s) = %s, want %s", in, got, want)
	}
	if got := SetClock(in, 3, 0); !got.Equal(want.Add(3 * time.Hour)) {
		t.Errorf("SetClock(%s, 3, 0) = %s, want 03:00 that day", in, got)
	}
}
