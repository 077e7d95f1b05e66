package product

import (
	"context"
	"image"
	"time"

	"github.com/spencer-p/tidedash/pkg/noaa"
	"github.com/spencer-p/tidedash/pkg/series"
	"github.com/spencer-p/tidedash/pkg/visualize"
)

// Temperature columns, in degrees Fahrenheit. The heights are thermometer fill
// levels in gauge units.
const (
	ColAirTemp     = "air_temp"
	ColWaterTemp   = "water_temp"
	ColAirHeight   = "air_height"
	ColWaterHeight = "water_height"
)

const temperaturePad = 5.0

// TemperatureProduct shows air and water temperature on a shared scale.
type TemperatureProduct struct {
	base
	// lo and hi are the observed extremes across both columns.
	lo, hi float64
}

func newTemperature(gw Gateway, loc *time.Location, s Settings) *TemperatureProduct {
	return &TemperatureProduct{base: newBase(Temperature, gw, loc, s, ColAirTemp, ColWaterTemp)}
}

func (p *TemperatureProduct) Load(ctx context.Context, now time.Time) error {
	if err := p.setNow(now); err != nil {
		return err
	}
	air := p.observation(ctx, noaa.AirTemperature, field{key: "v", col: ColAirTemp})
	water := p.observation(ctx, noaa.WaterTemperature, field{key: "v", col: ColWaterTemp})
	merged := p.conform(series.Join(air, water))

	p.lo, p.hi = merged.Range(ColAirTemp, ColWaterTemp)
	for col, height := range map[string]string{ColAirTemp: ColAirHeight, ColWaterTemp: ColWaterHeight} {
		temps := merged.Floats(col)
		heights := make([]float64, len(temps))
		for i, t := range temps {
			heights[i] = p.height(t)
		}
		if err := merged.SetFloats(height, heights); err != nil {
			return err
		}
	}

	p.loaded(merged)
	return nil
}

// height places t on the thermometer, with the observed range padded by five
// degrees at either end spanning the whole tube.
func (p *TemperatureProduct) height(t float64) float64 {
	if series.IsNull(t) || series.IsNull(p.lo) {
		return series.Null()
	}
	lo, hi := p.lo-temperaturePad, p.hi+temperaturePad
	return (t - lo) / (hi - lo) * p.settings.Gauge.TubeScale
}

func (p *TemperatureProduct) data() visualize.TemperatureData {
	return visualize.TemperatureData{
		Times:       p.frame.Index(),
		Air:         p.floats(ColAirTemp),
		Water:       p.floats(ColWaterTemp),
		AirHeight:   p.floats(ColAirHeight),
		WaterHeight: p.floats(ColWaterHeight),
		Min:         p.lo,
		Max:         p.hi,
	}
}

func (p *TemperatureProduct) RenderFrame(dot time.Time, metric bool) (image.Image, error) {
	fr, err := p.canRender(p, dot, metric)
	if err != nil {
		return nil, err
	}
	img, err := visualize.Temperature(p.data(), fr, p.settings.style(p.loc))
	if err != nil {
		return nil, err
	}
	p.rendered()
	return img, nil
}

func (p *TemperatureProduct) BuildAnimation(ctx context.Context, now time.Time) (string, error) {
	return buildAnimation(ctx, p, &p.base, now)
}
