package product

import (
	"context"
	"image"
	"time"

	"github.com/spencer-p/tidedash/pkg/series"
	"github.com/spencer-p/tidedash/pkg/visualize"
)

// MetProduct bundles temperature, wind and pressure into one display. It
// owns its members and never pulls from the gateway itself.
type MetProduct struct {
	base
	temperature *TemperatureProduct
	wind        *WindProduct
	pressure    *PressureProduct
}

func newMet(gw Gateway, loc *time.Location, s Settings) *MetProduct {
	m := &MetProduct{
		temperature: newTemperature(gw, loc, s),
		wind:        newWind(gw, loc, s),
		pressure:    newPressure(gw, loc, s),
	}
	var observed []string
	for _, b := range m.members() {
		observed = append(observed, b.observed...)
	}
	m.base = newBase(Met, gw, loc, s, observed...)
	return m
}

func (m *MetProduct) members() []*base {
	return []*base{&m.temperature.base, &m.wind.base, &m.pressure.base}
}

// Members are the owned temperature, wind and pressure products.
func (m *MetProduct) Members() []Product {
	return []Product{m.temperature, m.wind, m.pressure}
}

func (m *MetProduct) Reset() {
	m.base.Reset()
	for _, p := range m.Members() {
		p.Reset()
	}
}

func (m *MetProduct) Load(ctx context.Context, now time.Time) error {
	if err := m.setNow(now); err != nil {
		return err
	}
	var frames []*series.Frame
	for _, p := range m.Members() {
		if err := p.Load(ctx, now); err != nil {
			return err
		}
		frames = append(frames, p.Series())
	}
	m.loaded(series.Join(frames...))
	return nil
}

// IsStale is true when any member is stale.
func (m *MetProduct) IsStale() bool {
	if m.frame == nil {
		return true
	}
	for _, p := range m.Members() {
		if p.IsStale() {
			return true
		}
	}
	return false
}

func (m *MetProduct) data() visualize.MetData {
	return visualize.MetData{
		Temperature: m.temperature.data(),
		Wind:        m.wind.data(),
		Pressure:    m.pressure.data(),
	}
}

func (m *MetProduct) RenderFrame(dot time.Time, metric bool) (image.Image, error) {
	fr, err := m.canRender(m, dot, metric)
	if err != nil {
		return nil, err
	}
	img, err := visualize.Met(m.data(), fr, m.settings.style(m.loc))
	if err != nil {
		return nil, err
	}
	m.rendered()
	return img, nil
}

func (m *MetProduct) BuildAnimation(ctx context.Context, now time.Time) (string, error) {
	return buildAnimation(ctx, m, &m.base, now)
}
