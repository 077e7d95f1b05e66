package product

import (
	"context"
	"fmt"
	"image"
	"log"
	"time"

	"github.com/spencer-p/tidedash/pkg/noaa"
	"github.com/spencer-p/tidedash/pkg/noaa/splines"
	"github.com/spencer-p/tidedash/pkg/series"
	"github.com/spencer-p/tidedash/pkg/tides"
	"github.com/spencer-p/tidedash/pkg/timetricks"
	"github.com/spencer-p/tidedash/pkg/visualize"
)

// Water level columns.
const (
	ColObserved      = "observed"
	ColPredicted     = "predicted"
	ColPredictedHiLo = "predicted_hilo"
	ColHiLoType      = "hilo_type"
)

// splinePad widens the hi-lo pull so the curve between extrema covers the
// edges of the window.
const splinePad = 12 * time.Hour

// WaterLevelProduct merges observed water level with the one minute
// prediction and the predicted highs and lows.
type WaterLevelProduct struct {
	base
}

func newWaterLevel(gw Gateway, loc *time.Location, s Settings) *WaterLevelProduct {
	return &WaterLevelProduct{base: newBase(WaterLevel, gw, loc, s, ColObserved)}
}

func (p *WaterLevelProduct) Load(ctx context.Context, now time.Time) error {
	if err := p.setNow(now); err != nil {
		return err
	}
	begin, end := p.begin(), p.end()

	obs := p.observation(ctx, noaa.WaterLevel, field{key: "v", col: ColObserved})
	pred, predErr := p.pull(ctx, noaa.TidePredictions, noaa.OneMinute, begin, end,
		field{key: "v", col: ColPredicted})
	extrema, hiloErr := p.hilo(ctx, begin.Add(-splinePad), end.Add(splinePad))

	hilo := series.NewBuilder()
	hilo.FloatColumn(ColPredictedHiLo)
	hilo.TextColumn(ColHiLoType)
	var hiloTimes []time.Time
	trailing := p.trailing()
	for _, e := range extrema {
		t := time.Time(e.Time)
		if t.Before(begin) || t.After(trailing) {
			continue
		}
		hilo.Float(t, ColPredictedHiLo, float64(e.Height))
		hilo.Text(t, ColHiLoType, e.Type.String())
		hiloTimes = append(hiloTimes, t)
	}

	// Keep observations and extrema, and future predictions on the six
	// minute ticks only.
	joined := series.Join(pred, obs, hilo.Frame())
	observed := joined.Floats(ColObserved)
	marks := joined.Floats(ColPredictedHiLo)
	kept := joined.Filter(func(i int) bool {
		t := joined.Time(i)
		return !series.IsNull(observed[i]) || !series.IsNull(marks[i]) ||
			(t.After(now) && timetricks.OnTick(t))
	})
	merged := p.conform(kept, hiloTimes...)

	if predErr != nil && hiloErr == nil && len(extrema) >= 2 {
		log.Printf("%s: filling predictions from %d extrema", p.kind, len(extrema))
		filled := splines.Fit(extrema).Fill(merged.Index(), merged.Floats(ColPredicted))
		if err := merged.SetFloats(ColPredicted, filled); err != nil {
			return err
		}
	}

	p.loaded(merged)
	return nil
}

// hilo pulls predicted highs and lows.
func (p *WaterLevelProduct) hilo(ctx context.Context, begin, end time.Time) (noaa.Predictions, error) {
	tbl, err := p.gw.Pull(ctx, noaa.Query{
		Product:  noaa.TidePredictions,
		Interval: noaa.HiLo,
		Begin:    begin,
		End:      end,
	})
	if err != nil {
		return nil, err
	}
	return tbl.Predictions(), nil
}

// TodayTides pulls the extrema from a day before now to a day and a half
// after and picks the three around now.
func (p *WaterLevelProduct) TodayTides(ctx context.Context, now time.Time) (noaa.Predictions, error) {
	if err := ValidateReferenceTime(now, p.loc); err != nil {
		return nil, err
	}
	preds, err := p.hilo(ctx, now.Add(-24*time.Hour), now.Add(36*time.Hour))
	if err != nil {
		return nil, err
	}
	sel, err := tides.Select(preds, now)
	if err != nil {
		return nil, fmt.Errorf("failed to select tides around %s: %w", now.Format(time.RFC3339), err)
	}
	return sel, nil
}

func (p *WaterLevelProduct) data() visualize.WaterLevelData {
	d := visualize.WaterLevelData{
		Times:     p.frame.Index(),
		Observed:  p.floats(ColObserved),
		Predicted: p.floats(ColPredicted),
	}
	marks := p.floats(ColPredictedHiLo)
	types := p.texts(ColHiLoType)
	for i, v := range marks {
		if series.IsNull(v) {
			continue
		}
		d.Extrema = append(d.Extrema, visualize.Extremum{
			Time:   d.Times[i],
			Height: v,
			High:   types[i] == noaa.HighTide.String(),
		})
	}
	return d
}

func (p *WaterLevelProduct) RenderFrame(dot time.Time, metric bool) (image.Image, error) {
	fr, err := p.canRender(p, dot, metric)
	if err != nil {
		return nil, err
	}
	img, err := visualize.WaterLevel(p.data(), fr, p.settings.style(p.loc))
	if err != nil {
		return nil, err
	}
	p.rendered()
	return img, nil
}

func (p *WaterLevelProduct) BuildAnimation(ctx context.Context, now time.Time) (string, error) {
	return buildAnimation(ctx, p, &p.base, now)
}
