// Package splines interpolates a tide curve through predicted highs and lows.
// It stands in for the minute-by-minute predictions when those are missing.
package splines

import (
	"math"
	"time"

	"github.com/spencer-p/tidedash/pkg/noaa"
)

// Curve is the cubic between two consecutive extrema. It is flat at both ends
// and undefined outside [Start, End].
type Curve struct {
	Start, End time.Time
	From, To   float64
}

// Spline is a run of curves, each starting where the previous one ended.
type Spline []Curve

// Fit links the extrema in order. Pairs that are not strictly increasing in
// time are skipped.
func Fit(extrema noaa.Predictions) Spline {
	var s Spline
	for i := 1; i < len(extrema); i++ {
		start, end := time.Time(extrema[i-1].Time), time.Time(extrema[i].Time)
		if !end.After(start) {
			continue
		}
		s = append(s, Curve{
			Start: start,
			End:   end,
			From:  float64(extrema[i-1].Height),
			To:    float64(extrema[i].Height),
		})
	}
	return s
}

// Eval is the height of the curve at t.
func (c Curve) Eval(t time.Time) float64 {
	if t.Before(c.Start) || t.After(c.End) {
		return math.NaN()
	}
	u := float64(t.Sub(c.Start)) / float64(c.End.Sub(c.Start))
	return c.From + (c.To-c.From)*u*u*(3-2*u)
}

// Eval is the height of the spline at t, or NaN outside it.
func (s Spline) Eval(t time.Time) float64 {
	lo, hi := 0, len(s)
	for lo < hi {
		mid := lo + (hi-lo)/2
		switch {
		case t.Before(s[mid].Start):
			hi = mid
		case t.After(s[mid].End):
			lo = mid + 1
		default:
			return s[mid].Eval(t)
		}
	}
	return math.NaN()
}

// Sample evaluates s at each of times.
func (s Spline) Sample(times []time.Time) []float64 {
	return s.Fill(times, nil)
}

// Fill returns vals with every NaN replaced by the spline at the matching
// time. A nil vals is all NaN. vals itself is not modified.
func (s Spline) Fill(times []time.Time, vals []float64) []float64 {
	out := make([]float64, len(times))
	for i, t := range times {
		if vals != nil && !math.IsNaN(vals[i]) {
			out[i] = vals[i]
			continue
		}
		out[i] = s.Eval(t)
	}
	return out
}
