package visualize

import (
	"fmt"
	"image"
	"math"
	"time"

	chart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/spencer-p/tidedash/pkg/units"
)

// recentSamples is how many wind samples the compass rose shows.
const recentSamples = 10

// Extremum is a predicted high or low tide.
type Extremum struct {
	Time   time.Time
	Height float64
	High   bool
}

// WaterLevelData is the water level series in feet above MLLW.
type WaterLevelData struct {
	Times     []time.Time
	Observed  []float64
	Predicted []float64
	Extrema   []Extremum
}

// TemperatureData is air and water temperature in degrees Fahrenheit, along
// with their thermometer fill heights.
type TemperatureData struct {
	Times       []time.Time
	Air, Water  []float64
	AirHeight   []float64
	WaterHeight []float64
	// Min and Max are the observed extremes across both series.
	Min, Max float64
}

// WindData is wind speed and gust in knots, direction in compass degrees and
// the rose coordinates of each sample.
type WindData struct {
	Times     []time.Time
	Speed     []float64
	Direction []float64
	Cardinal  []string
	Gust      []float64
	Radius    []float64
	Angle     []float64
}

// PressureData is air pressure in millibars and its dial angle.
type PressureData struct {
	Times    []time.Time
	Pressure []float64
	Theta    []float64
}

// MetData bundles the meteorological products.
type MetData struct {
	Temperature TemperatureData
	Wind        WindData
	Pressure    PressureData
}

// WaterLevel draws observed water level up to the dot time over the full
// predicted curve, with high and low tide labels.
func WaterLevel(d WaterLevelData, fr Frame, st Style) (*image.RGBA, error) {
	img := newCanvas(st.Width, st.Height)
	conv, unit := feet(fr.Metric)

	obs := scaled(d.Observed, conv)
	pred := scaled(d.Predicted, conv)
	n := upto(d.Times, fr.Dot)

	var hilo []float64
	var notes []chart.Value2
	for _, e := range d.Extrema {
		if !finite(e.Height) {
			continue
		}
		h := conv(e.Height)
		hilo = append(hilo, h)
		kind := "L"
		if e.High {
			kind = "H"
		}
		notes = append(notes, chart.Value2{
			XValue: chart.TimeToFloat64(e.Time),
			YValue: h,
			Label:  fmt.Sprintf("%s %.2f %s", kind, h, unit),
		})
	}
	lo, hi := valueRange(conv(1), obs, pred, hilo)

	var series []chart.Series
	series = append(series, lineSeries("Predicted", d.Times, pred, chart.Style{
		StrokeColor:     predicted,
		StrokeWidth:     math.Max(1, st.LineWidth/2),
		StrokeDashArray: []float64{8, 6},
	})...)
	series = append(series, lineSeries("Observed", d.Times[:n], obs[:n], chart.Style{
		StrokeColor: observed,
		StrokeWidth: st.LineWidth,
	})...)
	series = append(series, marker("Latest", fr.Dot, at(d.Times, obs, fr.Dot), observed, st)...)
	if len(notes) > 0 {
		series = append(series, chart.AnnotationSeries{
			Name:        "Tides",
			Annotations: notes,
			Style:       chart.Style{FontSize: st.FontSize * 0.7},
		})
	}

	panel := timePanel{
		title:  "Water Level",
		yName:  fmt.Sprintf("Height (%s above MLLW)", unit),
		yFmt:   "%.1f",
		lo:     lo,
		hi:     hi,
		series: series,
	}
	body := img.Bounds()
	if err := panel.render(img, body, fr, st); err != nil {
		return nil, err
	}
	legend(img, body, st, []legendEntry{
		{"Observed", reading(at(d.Times, obs, fr.Dot), "%.2f "+unit), observed},
		{"Predicted", reading(at(d.Times, pred, fr.Dot), "%.2f "+unit), predicted},
	})
	if fr.Stale {
		banner(img, body, st)
	}
	return img, nil
}

// Temperature draws both temperature series beside a pair of thermometers.
func Temperature(d TemperatureData, fr Frame, st Style) (*image.RGBA, error) {
	img := newCanvas(st.Width, st.Height)
	b := img.Bounds()
	chartRect := image.Rect(b.Min.X, b.Min.Y, b.Min.X+b.Dx()*2/3, b.Max.Y)
	gaugeRect := image.Rect(chartRect.Max.X, b.Min.Y, b.Max.X, b.Max.Y)

	conv, unit := fahrenheit(fr.Metric)
	air, water := scaled(d.Air, conv), scaled(d.Water, conv)
	n := upto(d.Times, fr.Dot)
	lo, hi := valueRange(3, air, water)

	var series []chart.Series
	series = append(series, lineSeries("Air", d.Times[:n], air[:n], chart.Style{StrokeColor: airColor, StrokeWidth: st.LineWidth})...)
	series = append(series, lineSeries("Water", d.Times[:n], water[:n], chart.Style{StrokeColor: waterColor, StrokeWidth: st.LineWidth})...)
	series = append(series, marker("Air now", fr.Dot, at(d.Times, air, fr.Dot), airColor, st)...)
	series = append(series, marker("Water now", fr.Dot, at(d.Times, water, fr.Dot), waterColor, st)...)

	panel := timePanel{
		title:  "Temperature",
		yName:  "Temperature (" + unit + ")",
		yFmt:   "%.0f",
		lo:     lo,
		hi:     hi,
		series: series,
	}
	if err := panel.render(img, chartRect, fr, st); err != nil {
		return nil, err
	}
	if err := thermometers(img, gaugeRect, d, fr, st); err != nil {
		return nil, err
	}
	if fr.Stale {
		banner(img, b, st)
	}
	return img, nil
}

// Pressure draws the pressure series beside a barometer dial.
func Pressure(d PressureData, fr Frame, st Style) (*image.RGBA, error) {
	img := newCanvas(st.Width, st.Height)
	b := img.Bounds()
	chartRect := image.Rect(b.Min.X, b.Min.Y, b.Min.X+b.Dx()*3/5, b.Max.Y)
	dialRect := image.Rect(chartRect.Max.X, b.Min.Y, b.Max.X, b.Max.Y)

	n := upto(d.Times, fr.Dot)
	lo, hi := valueRange(2, d.Pressure)

	var series []chart.Series
	series = append(series, lineSeries("Pressure", d.Times[:n], d.Pressure[:n], chart.Style{StrokeColor: observed, StrokeWidth: st.LineWidth})...)
	series = append(series, marker("Latest", fr.Dot, at(d.Times, d.Pressure, fr.Dot), observed, st)...)

	panel := timePanel{
		title:  "Air Pressure",
		yName:  "Pressure (mb)",
		yFmt:   "%.0f",
		lo:     lo,
		hi:     hi,
		series: series,
	}
	if err := panel.render(img, chartRect, fr, st); err != nil {
		return nil, err
	}
	p := at(d.Times, d.Pressure, fr.Dot)
	if err := barometer(img, inset(dialRect, 0.05), at(d.Times, d.Theta, fr.Dot), reading(p, "%.1f mb"), st); err != nil {
		return nil, err
	}
	if fr.Stale {
		banner(img, b, st)
	}
	return img, nil
}

// Wind draws only the compass rose of recent samples and a text legend.
func Wind(d WindData, fr Frame, st Style) (*image.RGBA, error) {
	img := newCanvas(st.Width, st.Height)
	b := img.Bounds()
	roseRect := image.Rect(b.Min.X, b.Min.Y, b.Min.X+b.Dx()*3/5, b.Max.Y)
	textRect := image.Rect(roseRect.Max.X, b.Min.Y, b.Max.X, b.Max.Y)

	if err := compass(img, inset(roseRect, 0.05), recentWind(d, fr.Dot), st); err != nil {
		return nil, err
	}
	windLegend(img, textRect, d, fr, st)
	if fr.Stale {
		banner(img, b, st)
	}
	return img, nil
}

// Met draws the three meteorological gauges side by side with a shared legend.
func Met(d MetData, fr Frame, st Style) (*image.RGBA, error) {
	img := newCanvas(st.Width, st.Height)
	b := img.Bounds()
	px := pixels(st.FontSize)

	p := at(d.Pressure.Times, d.Pressure.Pressure, fr.Dot)
	theta := at(d.Pressure.Times, d.Pressure.Theta, fr.Dot)

	var thermo, rose, dial, text image.Rectangle
	if st.MetColumns == 2 {
		cols := columns(b, 2)
		left := cols[0]
		rose = image.Rect(left.Min.X, left.Min.Y, left.Max.X, left.Min.Y+left.Dy()/2)
		dial = image.Rect(left.Min.X, rose.Max.Y, left.Max.X, left.Max.Y)
		right := cols[1]
		thermo = image.Rect(right.Min.X, right.Min.Y, right.Max.X, right.Min.Y+right.Dy()*3/5)
		text = image.Rect(right.Min.X, thermo.Max.Y, right.Max.X, right.Max.Y)
	} else {
		top := image.Rect(b.Min.X, b.Min.Y, b.Max.X, b.Max.Y-int(px*7))
		cols := columns(top, 3)
		thermo, rose, dial = cols[0], cols[1], cols[2]
		text = image.Rect(b.Min.X, top.Max.Y, b.Max.X, b.Max.Y)
	}

	if err := thermometers(img, thermo, d.Temperature, fr, st); err != nil {
		return nil, err
	}
	if err := compass(img, inset(rose, 0.05), recentWind(d.Wind, fr.Dot), st); err != nil {
		return nil, err
	}
	if err := barometer(img, inset(dial, 0.05), theta, reading(p, "%.1f mb"), st); err != nil {
		return nil, err
	}
	metLegend(img, text, d, fr, st)
	if fr.Stale {
		banner(img, b, st)
	}
	return img, nil
}

func thermometers(img *image.RGBA, r image.Rectangle, d TemperatureData, fr Frame, st Style) error {
	conv, unit := fahrenheit(fr.Metric)
	var scale []string
	if finite(d.Min) && finite(d.Max) {
		lo, hi := d.Min-5, d.Max+5
		for i := 0; i <= 4; i++ {
			scale = append(scale, fmt.Sprintf("%.0f", conv(lo+(hi-lo)*float64(i)/4)))
		}
	}
	halves := columns(r, 2)
	gauges := []thermometer{{
		title:  "Air",
		height: at(d.Times, d.AirHeight, fr.Dot),
		value:  reading(conv(at(d.Times, d.Air, fr.Dot)), "%.0f"+unit),
		scale:  scale,
		color:  airColor,
	}, {
		title:  "Water",
		height: at(d.Times, d.WaterHeight, fr.Dot),
		value:  reading(conv(at(d.Times, d.Water, fr.Dot)), "%.0f"+unit),
		scale:  scale,
		color:  waterColor,
	}}
	for i, g := range gauges {
		if err := g.draw(img, halves[i], st); err != nil {
			return err
		}
	}
	return nil
}

// recentWind picks the last samples at or before dot, oldest first.
func recentWind(d WindData, dot time.Time) []windSample {
	n := upto(d.Times, dot)
	first := n - recentSamples
	if first < 0 {
		first = 0
	}
	var out []windSample
	for i := first; i < n; i++ {
		out = append(out, windSample{radius: d.Radius[i], angle: d.Angle[i]})
	}
	return out
}

func windLegend(img *image.RGBA, r image.Rectangle, d WindData, fr Frame, st Style) {
	speed := at(d.Times, d.Speed, fr.Dot)
	gust := at(d.Times, d.Gust, fr.Dot)
	card := ""
	if i := upto(d.Times, fr.Dot); i > 0 && i <= len(d.Cardinal) {
		card = d.Cardinal[i-1]
	}
	lines := []legendEntry{
		{"Time", fr.Dot.Format("01/02 03:04 PM"), black},
		{"Wind", windReading(speed, card, fr.Metric), observed},
		{"Gust", windReading(gust, card, fr.Metric), gray},
	}
	legend(img, r, st, lines)
}

func metLegend(img *image.RGBA, r image.Rectangle, d MetData, fr Frame, st Style) {
	w := d.Wind
	speed := at(w.Times, w.Speed, fr.Dot)
	card := ""
	if i := upto(w.Times, fr.Dot); i > 0 && i <= len(w.Cardinal) {
		card = w.Cardinal[i-1]
	}
	air := at(d.Temperature.Times, d.Temperature.Air, fr.Dot)
	water := at(d.Temperature.Times, d.Temperature.Water, fr.Dot)
	p := at(d.Pressure.Times, d.Pressure.Pressure, fr.Dot)
	legend(img, r, st, []legendEntry{
		{"Data time", fr.Dot.Format("01/02 03:04 PM"), black},
		{"Wind", windReading(speed, card, fr.Metric), observed},
		{"Air temp", tempReading(air), airColor},
		{"Water temp", tempReading(water), waterColor},
		{"Air pressure", reading(p, "%.1f mb"), black},
	})
}

type legendEntry struct {
	name, value string
	color       drawing.Color
}

// legend stacks name: value lines at the top left of r.
func legend(img *image.RGBA, r image.Rectangle, st Style, entries []legendEntry) {
	px := pixels(st.FontSize) * 0.8
	x := r.Min.X + int(px*2)
	y := r.Min.Y + int(px*3)
	for _, e := range entries {
		label(img, e.name+": "+e.value, x, y, px, e.color, Left)
		y += int(px * 1.4)
	}
}

func reading(v float64, format string) string {
	if !finite(v) {
		return "n/a"
	}
	return fmt.Sprintf(format, v)
}

func windReading(kts float64, cardinal string, metric bool) string {
	if !finite(kts) {
		return "n/a"
	}
	s := fmt.Sprintf("%.1f kts", kts)
	if metric {
		s = fmt.Sprintf("%.1f m/s", units.KnotsToMetersPerSecond(kts))
	}
	if cardinal != "" {
		s += " from " + cardinal
	}
	return s
}

func tempReading(f float64) string {
	if !finite(f) {
		return "n/a"
	}
	return fmt.Sprintf("%.0f°F (%.0f°C)", f, units.FahrenheitToCelsius(f))
}

func feet(metric bool) (func(float64) float64, string) {
	if metric {
		return units.FeetToMeters, "m"
	}
	return identity, "ft"
}

func fahrenheit(metric bool) (func(float64) float64, string) {
	if metric {
		return units.FahrenheitToCelsius, "°C"
	}
	return identity, "°F"
}

func identity(v float64) float64 { return v }
