package product

import (
	"context"
	"image"
	"time"

	"github.com/spencer-p/tidedash/pkg/noaa"
	"github.com/spencer-p/tidedash/pkg/visualize"
)

// Pressure columns. Pressure is in millibars and theta is the dial angle.
const (
	ColPressure      = "air_press"
	ColPressureTheta = "air_press_theta"
)

// PressureProduct shows air pressure next to a barometer dial.
type PressureProduct struct {
	base
}

func newPressure(gw Gateway, loc *time.Location, s Settings) *PressureProduct {
	return &PressureProduct{base: newBase(AirPressure, gw, loc, s, ColPressure)}
}

func (p *PressureProduct) Load(ctx context.Context, now time.Time) error {
	if err := p.setNow(now); err != nil {
		return err
	}
	obs := p.observation(ctx, noaa.AirPressure, field{key: "v", col: ColPressure})
	merged := p.conform(obs)

	pressure := merged.Floats(ColPressure)
	theta := make([]float64, len(pressure))
	for i, mb := range pressure {
		theta[i] = visualize.PressureAngle(mb)
	}
	if err := merged.SetFloats(ColPressureTheta, theta); err != nil {
		return err
	}

	p.loaded(merged)
	return nil
}

func (p *PressureProduct) data() visualize.PressureData {
	return visualize.PressureData{
		Times:    p.frame.Index(),
		Pressure: p.floats(ColPressure),
		Theta:    p.floats(ColPressureTheta),
	}
}

func (p *PressureProduct) RenderFrame(dot time.Time, metric bool) (image.Image, error) {
	fr, err := p.canRender(p, dot, metric)
	if err != nil {
		return nil, err
	}
	img, err := visualize.Pressure(p.data(), fr, p.settings.style(p.loc))
	if err != nil {
		return nil, err
	}
	p.rendered()
	return img, nil
}

func (p *PressureProduct) BuildAnimation(ctx context.Context, now time.Time) (string, error) {
	return buildAnimation(ctx, p, &p.base, now)
}
