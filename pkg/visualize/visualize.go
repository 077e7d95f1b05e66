// Package visualize renders single animation frames for station products.
//
// Every layout is a pure function of its data, the frame's dot time and a
// Style: data after the dot time is never drawn as observed, and values that
// are not finite are skipped rather than plotted.
package visualize

import (
	"image"
	"image/color"
	"image/draw"
	"math"
	"time"

	"github.com/wcharczuk/go-chart/v2/drawing"
	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/spencer-p/tidedash/pkg/sunset"
)

// Style holds the sizing constants of a frame.
type Style struct {
	Width, Height int
	// FontSize is in points.
	FontSize   float64
	LineWidth  float64
	MarkerSize float64
	Gauge      Gauge
	// WindNeedle draws wind samples as needles instead of arrows.
	WindNeedle bool
	// MetColumns picks the two or three column met layout.
	MetColumns int
	// Place is used for daylight shading; a nil location disables it.
	Place sunset.Place
}

// Gauge sizes the icon glyphs, in abstract gauge units.
type Gauge struct {
	TubeScale  float64
	TubeHeight float64
	BulbRadius float64
	ScalePad   float64
	WindRadius float64
}

// Frame places one rendered image in time.
type Frame struct {
	// Begin and End bound the padded plotting window.
	Begin, End time.Time
	// Dot is the instant this frame shows as "now".
	Dot time.Time
	// Metric selects metric display units.
	Metric bool
	// Stale marks data that should read as unavailable.
	Stale bool
}

const unavailable = "data temporarily unavailable"

var (
	white       = drawing.ColorWhite
	black       = drawing.ColorBlack
	gray        = drawing.ColorFromHex("8c8c8c")
	lightGray   = drawing.ColorFromHex("d9d9d9")
	observed    = drawing.ColorFromHex("1f77b4")
	predicted   = drawing.ColorFromHex("7f7f7f")
	nowColor    = drawing.ColorFromHex("d62728")
	daylight    = drawing.Color{R: 0xff, G: 0xf7, B: 0xc2, A: 0xa0}
	airColor    = drawing.ColorFromHex("f94f60")
	waterColor  = drawing.ColorFromHex("007bae")
	gaugeFace   = drawing.ColorFromHex("f4f4f4")
	transparent = drawing.Color{R: 0xff, G: 0xff, B: 0xff, A: 0}
)

// Align anchors a label horizontally.
type Align int

const (
	Left Align = iota
	Center
	Right
)

func newCanvas(w, h int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(img, img.Bounds(), image.NewUniform(white), image.Point{}, draw.Src)
	return img
}

// pixels converts a point size to pixels at 96 DPI.
func pixels(points float64) float64 {
	return points * 96 / 72
}

// label draws s vertically centered on y, scaling the bitmap font to px pixels
// tall.
func label(dst draw.Image, s string, x, y int, px float64, col color.Color, align Align) {
	if s == "" || px <= 0 {
		return
	}
	face := basicfont.Face7x13
	m := face.Metrics()
	w := font.MeasureString(face, s).Ceil()
	h := m.Height.Ceil()

	src := image.NewRGBA(image.Rect(0, 0, w, h))
	d := &font.Drawer{
		Dst:  src,
		Src:  image.NewUniform(col),
		Face: face,
		Dot:  fixed.Point26_6{X: 0, Y: m.Ascent},
	}
	d.DrawString(s)

	scale := px / float64(h)
	sw, sh := int(float64(w)*scale+0.5), int(float64(h)*scale+0.5)
	switch align {
	case Center:
		x -= sw / 2
	case Right:
		x -= sw
	}
	r := image.Rect(x, y-sh/2, x+sw, y-sh/2+sh)
	xdraw.NearestNeighbor.Scale(dst, r, src, src.Bounds(), xdraw.Over, nil)
}

// banner writes the stale data notice across the top of a region.
func banner(dst *image.RGBA, r image.Rectangle, st Style) {
	px := pixels(st.FontSize)
	bg := image.Rect(r.Min.X, r.Min.Y, r.Max.X, r.Min.Y+int(px*2))
	draw.Draw(dst, bg, image.NewUniform(drawing.Color{R: 0xff, G: 0xe0, B: 0xe0, A: 0xff}), image.Point{}, draw.Src)
	label(dst, unavailable, r.Min.X+r.Dx()/2, bg.Min.Y+bg.Dy()/2, px, nowColor, Center)
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// at returns the value at or immediately before t, or NaN when the sample at
// that instant is missing.
func at(times []time.Time, vals []float64, t time.Time) float64 {
	for i := len(times) - 1; i >= 0; i-- {
		if times[i].After(t) {
			continue
		}
		if i < len(vals) {
			return vals[i]
		}
		break
	}
	return math.NaN()
}

// upto counts the samples at or before t.
func upto(times []time.Time, t time.Time) int {
	n := 0
	for n < len(times) && !times[n].After(t) {
		n++
	}
	return n
}

// inset shrinks r by a fraction of its smaller side.
func inset(r image.Rectangle, frac float64) image.Rectangle {
	side := r.Dx()
	if r.Dy() < side {
		side = r.Dy()
	}
	d := int(float64(side) * frac)
	return r.Inset(d)
}

// columns splits r into n equal vertical strips.
func columns(r image.Rectangle, n int) []image.Rectangle {
	out := make([]image.Rectangle, n)
	w := r.Dx() / n
	for i := range out {
		out[i] = image.Rect(r.Min.X+i*w, r.Min.Y, r.Min.X+(i+1)*w, r.Max.Y)
	}
	return out
}
