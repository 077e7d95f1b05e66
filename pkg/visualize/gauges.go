package visualize

import (
	"fmt"
	"image"
	"image/color"
	"math"

	"github.com/wcharczuk/go-chart/v2/drawing"
)

// Barometer dial domain in millibars. PressureAngle maps it onto the dial.
const (
	PressureLow  = 940.0
	PressureHigh = 1050.0
)

var (
	dialLabels = []float64{940, 960, 980, 1000, 1020, 1040}
	dialWords  = map[float64]string{980: "Rain", 1000: "Change", 1020: "Fair"}
	compassPts = []struct {
		name  string
		angle float64
	}{{"N", 90}, {"E", 0}, {"S", 270}, {"W", 180}}
)

// PressureAngle is the dial angle, in degrees counter-clockwise from east, of
// a pressure reading. The dial sweeps 270 degrees starting 45 degrees before
// east.
func PressureAngle(mb float64) float64 {
	if !finite(mb) {
		return math.NaN()
	}
	angle := (PressureHigh-mb)/(PressureHigh-PressureLow)*270 - 45
	return wrap(angle)
}

// WindAngle converts a heading in degrees clockwise from north, naming where
// the wind comes from, to the counter-clockwise-from-east angle of the arrow
// showing where it blows.
func WindAngle(compass float64) float64 {
	if !finite(compass) {
		return math.NaN()
	}
	return wrap(360 - (compass - 90) + 180)
}

func wrap(deg float64) float64 {
	deg = math.Mod(deg, 360)
	if deg < 0 {
		deg += 360
	}
	return deg
}

// polar converts a radius and counter-clockwise-from-east angle to pixels.
func polar(cx, cy, r, deg float64) (float64, float64) {
	rad := deg * math.Pi / 180
	return cx + r*math.Cos(rad), cy - r*math.Sin(rad)
}

func graphics(dst *image.RGBA) (*drawing.RasterGraphicContext, error) {
	gc, err := drawing.NewRasterGraphicContext(dst)
	if err != nil {
		return nil, fmt.Errorf("failed to create graphics context: %w", err)
	}
	return gc, nil
}

func circle(gc *drawing.RasterGraphicContext, cx, cy, r float64) {
	gc.BeginPath()
	gc.ArcTo(cx, cy, r, r, 0, 2*math.Pi)
	gc.Close()
}

func segment(gc *drawing.RasterGraphicContext, x1, y1, x2, y2 float64, col color.Color, width float64) {
	gc.SetStrokeColor(col)
	gc.SetLineWidth(width)
	gc.BeginPath()
	gc.MoveTo(x1, y1)
	gc.LineTo(x2, y2)
	gc.Stroke()
}

func rect(gc *drawing.RasterGraphicContext, x1, y1, x2, y2 float64) {
	gc.BeginPath()
	gc.MoveTo(x1, y1)
	gc.LineTo(x2, y1)
	gc.LineTo(x2, y2)
	gc.LineTo(x1, y2)
	gc.Close()
}

// thermometer describes one tube gauge.
type thermometer struct {
	title string
	// height is the fill level in gauge units, 0 through Gauge.TubeScale.
	height float64
	value  string
	// scale labels bottom to top, evenly spaced over TubeScale.
	scale []string
	color drawing.Color
}

func (th thermometer) draw(dst *image.RGBA, r image.Rectangle, st Style) error {
	gc, err := graphics(dst)
	if err != nil {
		return err
	}
	g := st.Gauge
	px := pixels(st.FontSize)

	// Leave room for the title above and the reading below.
	body := image.Rect(r.Min.X, r.Min.Y+int(px*2), r.Max.X, r.Max.Y-int(px*2))
	units := g.TubeHeight + 2*g.BulbRadius + g.ScalePad
	unit := float64(body.Dy()) / units

	cx := float64(body.Min.X+body.Dx()/2) + g.ScalePad*unit/2
	top := float64(body.Min.Y) + g.ScalePad*unit/2
	bottom := top + g.TubeHeight*unit
	half := g.BulbRadius * unit / 2
	bulbY := bottom + g.BulbRadius*unit*0.8
	bulbR := g.BulbRadius * unit

	gc.SetLineWidth(math.Max(1, st.LineWidth/2))
	gc.SetStrokeColor(black)
	gc.SetFillColor(gaugeFace)
	rect(gc, cx-half, top, cx+half, bottom)
	gc.FillStroke()

	gc.SetFillColor(th.color)
	circle(gc, cx, bulbY, bulbR)
	gc.FillStroke()

	if finite(th.height) {
		level := bottom - math.Max(0, math.Min(th.height, g.TubeHeight))*unit
		gc.SetFillColor(th.color)
		rect(gc, cx-half*0.6, level, cx+half*0.6, bottom+bulbR/2)
		gc.Fill()
	}

	for i, s := range th.scale {
		if len(th.scale) < 2 {
			break
		}
		y := bottom - float64(i)/float64(len(th.scale)-1)*g.TubeScale*unit
		segment(gc, cx-half*1.6, y, cx-half, y, black, 1)
		label(dst, s, int(cx-half*2), int(y), px*0.7, black, Right)
	}

	label(dst, th.title, r.Min.X+r.Dx()/2, r.Min.Y+int(px), px, black, Center)
	label(dst, th.value, r.Min.X+r.Dx()/2, r.Max.Y-int(px), px, th.color, Center)
	return nil
}

// barometer draws the pressure dial with a needle at theta degrees.
func barometer(dst *image.RGBA, r image.Rectangle, theta float64, reading string, st Style) error {
	gc, err := graphics(dst)
	if err != nil {
		return err
	}
	px := pixels(st.FontSize)
	cx := float64(r.Min.X + r.Dx()/2)
	cy := float64(r.Min.Y + r.Dy()/2)
	radius := math.Min(float64(r.Dx()), float64(r.Dy()))/2 - px*1.5

	gc.SetLineWidth(math.Max(1, st.LineWidth/2))
	gc.SetStrokeColor(black)
	gc.SetFillColor(gaugeFace)
	circle(gc, cx, cy, radius)
	gc.FillStroke()

	for mb := PressureLow; mb <= PressureHigh; mb += 10 {
		a := PressureAngle(mb)
		x1, y1 := polar(cx, cy, radius*0.9, a)
		x2, y2 := polar(cx, cy, radius, a)
		segment(gc, x1, y1, x2, y2, black, 1)
	}
	for _, mb := range dialLabels {
		a := PressureAngle(mb)
		x, y := polar(cx, cy, radius*0.78, a)
		label(dst, fmt.Sprintf("%.0f", mb), int(x), int(y), px*0.6, black, Center)
		if w, ok := dialWords[mb]; ok {
			x, y := polar(cx, cy, radius*0.55, a)
			label(dst, w, int(x), int(y), px*0.7, gray, Center)
		}
	}

	if finite(theta) {
		x, y := polar(cx, cy, radius*0.85, theta)
		segment(gc, cx, cy, x, y, nowColor, math.Max(2, st.LineWidth))
	}
	gc.SetFillColor(black)
	circle(gc, cx, cy, math.Max(3, radius*0.04))
	gc.Fill()

	label(dst, reading, int(cx), int(cy+radius*0.4), px*0.8, black, Center)
	return nil
}

// windSample is one point on the compass rose.
type windSample struct {
	radius, angle float64
}

// compass draws the rose with the most recent sample last. Older samples are
// lighter.
func compass(dst *image.RGBA, r image.Rectangle, samples []windSample, st Style) error {
	gc, err := graphics(dst)
	if err != nil {
		return err
	}
	px := pixels(st.FontSize)
	cx := float64(r.Min.X + r.Dx()/2)
	cy := float64(r.Min.Y + r.Dy()/2)
	radius := math.Min(float64(r.Dx()), float64(r.Dy()))/2 - px*1.5

	gc.SetLineWidth(1)
	gc.SetStrokeColor(black)
	gc.SetFillColor(gaugeFace)
	circle(gc, cx, cy, radius)
	gc.FillStroke()
	gc.SetStrokeColor(lightGray)
	for _, f := range []float64{1.0 / 3, 2.0 / 3} {
		circle(gc, cx, cy, radius*f)
		gc.Stroke()
	}
	for _, p := range compassPts {
		x, y := polar(cx, cy, radius+px*0.8, p.angle)
		label(dst, p.name, int(x), int(y), px, black, Center)
	}

	scale := st.Gauge.WindRadius
	if scale <= 0 {
		scale = 1
	}
	n := len(samples)
	for i, s := range samples {
		if !finite(s.radius) || !finite(s.angle) {
			continue
		}
		col := blues(0.5 + float64(i+1)/float64(2*n))
		length := math.Min(s.radius/scale, 1) * radius
		if st.WindNeedle {
			needle(gc, cx, cy, length, s.angle, col, st.LineWidth)
		} else {
			arrow(gc, cx, cy, length, s.angle, col, st.LineWidth)
		}
	}
	return nil
}

func arrow(gc *drawing.RasterGraphicContext, cx, cy, length, angle float64, col color.Color, width float64) {
	if length <= 0 {
		return
	}
	tx, ty := polar(cx, cy, length, angle)
	segment(gc, cx, cy, tx, ty, col, math.Max(1, width))
	head := math.Min(length*0.3, 20)
	lx, ly := polar(tx, ty, head, angle+150)
	rx, ry := polar(tx, ty, head, angle-150)
	gc.SetFillColor(col)
	gc.BeginPath()
	gc.MoveTo(tx, ty)
	gc.LineTo(lx, ly)
	gc.LineTo(rx, ry)
	gc.Close()
	gc.Fill()
}

func needle(gc *drawing.RasterGraphicContext, cx, cy, length, angle float64, col color.Color, width float64) {
	if length <= 0 {
		return
	}
	base := math.Max(2, width*1.5)
	tx, ty := polar(cx, cy, length, angle)
	lx, ly := polar(cx, cy, base, angle+90)
	rx, ry := polar(cx, cy, base, angle-90)
	gc.SetFillColor(col)
	gc.BeginPath()
	gc.MoveTo(lx, ly)
	gc.LineTo(tx, ty)
	gc.LineTo(rx, ry)
	gc.Close()
	gc.Fill()
}

// blues is a light to dark blue ramp over [0, 1].
func blues(t float64) drawing.Color {
	t = math.Max(0, math.Min(1, t))
	lerp := func(a, b uint8) uint8 {
		return uint8(float64(a) + (float64(b)-float64(a))*t + 0.5)
	}
	return drawing.Color{
		R: lerp(0xde, 0x08),
		G: lerp(0xeb, 0x30),
		B: lerp(0xf7, 0x6b),
		A: 0xff,
	}
}
