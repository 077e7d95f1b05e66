package product

import (
	"context"
	"image"
	"time"

	"github.com/spencer-p/tidedash/pkg/noaa"
	"github.com/spencer-p/tidedash/pkg/series"
	"github.com/spencer-p/tidedash/pkg/units"
	"github.com/spencer-p/tidedash/pkg/visualize"
)

// Wind columns. Speeds are in knots and direction in degrees clockwise from
// north.
const (
	ColWindSpeed    = "wind_speed"
	ColWindDir      = "wind_dir"
	ColWindCardinal = "wind_cardinal"
	ColGustSpeed    = "gust_speed"
	ColWindRadius   = "wind_radius"
	ColWindAngle    = "wind_angle"
)

// WindProduct draws recent wind on a compass rose.
type WindProduct struct {
	base
}

func newWind(gw Gateway, loc *time.Location, s Settings) *WindProduct {
	return &WindProduct{base: newBase(Wind, gw, loc, s, ColWindSpeed, ColWindDir, ColGustSpeed)}
}

func (p *WindProduct) Load(ctx context.Context, now time.Time) error {
	if err := p.setNow(now); err != nil {
		return err
	}
	obs := p.observation(ctx, noaa.Wind,
		field{key: "s", col: ColWindSpeed},
		field{key: "d", col: ColWindDir},
		field{key: "g", col: ColGustSpeed},
	)
	merged := p.conform(obs)

	speed := merged.Floats(ColWindSpeed)
	dir := merged.Floats(ColWindDir)
	_, top := merged.Range(ColWindSpeed)

	n := merged.Len()
	cardinal := make([]string, n)
	radius := make([]float64, n)
	angle := make([]float64, n)
	for i := 0; i < n; i++ {
		cardinal[i] = units.Cardinal(dir[i])
		angle[i] = visualize.WindAngle(dir[i])
		switch {
		case series.IsNull(speed[i]):
			radius[i] = series.Null()
		case top > 0:
			radius[i] = speed[i] / top * p.settings.Gauge.WindRadius
		default:
			radius[i] = 0
		}
	}
	if err := merged.SetTexts(ColWindCardinal, cardinal); err != nil {
		return err
	}
	if err := merged.SetFloats(ColWindRadius, radius); err != nil {
		return err
	}
	if err := merged.SetFloats(ColWindAngle, angle); err != nil {
		return err
	}

	p.loaded(merged)
	return nil
}

func (p *WindProduct) data() visualize.WindData {
	return visualize.WindData{
		Times:     p.frame.Index(),
		Speed:     p.floats(ColWindSpeed),
		Direction: p.floats(ColWindDir),
		Cardinal:  p.texts(ColWindCardinal),
		Gust:      p.floats(ColGustSpeed),
		Radius:    p.floats(ColWindRadius),
		Angle:     p.floats(ColWindAngle),
	}
}

func (p *WindProduct) RenderFrame(dot time.Time, metric bool) (image.Image, error) {
	fr, err := p.canRender(p, dot, metric)
	if err != nil {
		return nil, err
	}
	img, err := visualize.Wind(p.data(), fr, p.settings.style(p.loc))
	if err != nil {
		return nil, err
	}
	p.rendered()
	return img, nil
}

func (p *WindProduct) BuildAnimation(ctx context.Context, now time.Time) (string, error) {
	return buildAnimation(ctx, p, &p.base, now)
}
