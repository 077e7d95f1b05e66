package visualize

import (
	"bytes"
	"fmt"
	"image"
	"image/draw"
	"image/png"
	"math"
	"time"

	chart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/spencer-p/tidedash/pkg/sunset"
)

// tickHours are the hours labeled on the time axis.
var tickHours = map[int]bool{0: true, 3: true, 6: true, 9: true, 12: true, 15: true, 18: true, 21: true}

// timePanel describes one time series chart.
type timePanel struct {
	title  string
	yName  string
	yFmt   string
	lo, hi float64
	series []chart.Series
}

// render draws the panel into r of dst. The current time line is always drawn
// so the chart has at least one series.
func (p timePanel) render(dst *image.RGBA, r image.Rectangle, fr Frame, st Style) error {
	fontSize := st.FontSize * 0.8
	lo, hi := p.lo, p.hi
	if !finite(lo) || !finite(hi) || hi <= lo {
		lo, hi = 0, 1
	}
	yFmt := p.yFmt
	if yFmt == "" {
		yFmt = "%.1f"
	}

	series := append([]chart.Series{}, daylightSeries(fr, st.Place, hi)...)
	series = append(series, p.series...)
	series = append(series, chart.TimeSeries{
		Name:    "Current Time",
		XValues: []time.Time{fr.Dot, fr.Dot},
		YValues: []float64{lo, hi},
		Style: chart.Style{
			StrokeColor: nowColor,
			StrokeWidth: math.Max(1, st.LineWidth/2),
		},
	})

	c := chart.Chart{
		Title:      p.title,
		TitleStyle: chart.Style{FontSize: st.FontSize},
		Width:      r.Dx(),
		Height:     r.Dy(),
		Background: chart.Style{Padding: chart.Box{Top: int(pixels(st.FontSize) * 2), Left: 16, Right: 24, Bottom: 16}},
		XAxis: chart.XAxis{
			Style: chart.Style{FontSize: fontSize},
			Range: &chart.ContinuousRange{
				Min: chart.TimeToFloat64(fr.Begin),
				Max: chart.TimeToFloat64(fr.End),
			},
			Ticks: timeTicks(fr.Begin, fr.End),
		},
		YAxis: chart.YAxis{
			Name:      p.yName,
			NameStyle: chart.Style{FontSize: fontSize},
			Style:     chart.Style{FontSize: fontSize},
			Range:     &chart.ContinuousRange{Min: lo, Max: hi},
			ValueFormatter: func(v interface{}) string {
				if f, ok := v.(float64); ok {
					return fmt.Sprintf(yFmt, f)
				}
				return ""
			},
		},
		Series: series,
	}

	var buf bytes.Buffer
	if err := c.Render(chart.PNG, &buf); err != nil {
		return fmt.Errorf("failed to render %q chart: %w", p.title, err)
	}
	img, err := png.Decode(&buf)
	if err != nil {
		return fmt.Errorf("failed to decode %q chart: %w", p.title, err)
	}
	draw.Draw(dst, r, img, img.Bounds().Min, draw.Src)
	return nil
}

// timeTicks labels every third hour inside the window.
func timeTicks(begin, end time.Time) []chart.Tick {
	var ticks []chart.Tick
	t := begin.Truncate(time.Hour)
	if t.Before(begin) {
		t = t.Add(time.Hour)
	}
	for ; !t.After(end); t = t.Add(time.Hour) {
		if !tickHours[t.Hour()] || t.Minute() != 0 {
			continue
		}
		ticks = append(ticks, chart.Tick{
			Value: chart.TimeToFloat64(t),
			Label: t.Format("3 PM"),
		})
	}
	return ticks
}

// lineSeries splits a column into runs of finite values so gaps stay gaps.
func lineSeries(name string, times []time.Time, vals []float64, style chart.Style) []chart.Series {
	var out []chart.Series
	var xs []time.Time
	var ys []float64
	flush := func() {
		if len(xs) > 0 {
			out = append(out, chart.TimeSeries{Name: name, XValues: xs, YValues: ys, Style: style})
		}
		xs, ys = nil, nil
	}
	for i := range times {
		if i >= len(vals) || !finite(vals[i]) {
			flush()
			continue
		}
		xs = append(xs, times[i])
		ys = append(ys, vals[i])
	}
	flush()
	return out
}

// marker is a single dot at (t, v), or nothing when v is not finite.
func marker(name string, t time.Time, v float64, col drawing.Color, st Style) []chart.Series {
	if !finite(v) {
		return nil
	}
	return []chart.Series{chart.TimeSeries{
		Name:    name,
		XValues: []time.Time{t},
		YValues: []float64{v},
		Style: chart.Style{
			StrokeColor: transparent,
			StrokeWidth: 0,
			DotWidth:    math.Max(2, math.Sqrt(st.MarkerSize)),
			DotColor:    col,
		},
	}}
}

// daylightSeries shades daylight hours by filling under a line at the top of
// the chart.
func daylightSeries(fr Frame, place sunset.Place, top float64) []chart.Series {
	if place.Location == nil {
		return nil
	}
	var out []chart.Series
	for _, span := range sunset.Daylight(fr.Begin, fr.End, place) {
		out = append(out, chart.TimeSeries{
			Name:    "Daylight",
			XValues: []time.Time{span.Begin, span.End},
			YValues: []float64{top, top},
			Style: chart.Style{
				StrokeColor: transparent,
				StrokeWidth: 0,
				FillColor:   daylight,
			},
		})
	}
	return out
}

// valueRange spans every finite value with some padding.
func valueRange(pad float64, cols ...[]float64) (lo, hi float64) {
	lo, hi = math.Inf(1), math.Inf(-1)
	for _, col := range cols {
		for _, v := range col {
			if !finite(v) {
				continue
			}
			lo = math.Min(lo, v)
			hi = math.Max(hi, v)
		}
	}
	if math.IsInf(lo, 0) {
		return math.NaN(), math.NaN()
	}
	return lo - pad, hi + pad
}

func scaled(vals []float64, f func(float64) float64) []float64 {
	out := make([]float64, len(vals))
	for i, v := range vals {
		out[i] = f(v)
	}
	return out
}
