package product

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"
	"strconv"
	"time"

	"github.com/spencer-p/tidedash/pkg/animate"
	"github.com/spencer-p/tidedash/pkg/metrics"
	"github.com/spencer-p/tidedash/pkg/noaa"
	"github.com/spencer-p/tidedash/pkg/series"
	"github.com/spencer-p/tidedash/pkg/timetricks"
	"github.com/spencer-p/tidedash/pkg/visualize"
)

// base holds what every product shares: its settings, cycle state and merged
// series.
type base struct {
	kind     Kind
	gw       Gateway
	loc      *time.Location
	settings Settings

	state State
	now   time.Time
	frame *series.Frame
	// observed names the columns that come from station sensors as opposed
	// to predictions or derived values.
	observed []string
}

func newBase(kind Kind, gw Gateway, loc *time.Location, s Settings, observed ...string) base {
	return base{
		kind:     kind,
		gw:       gw,
		loc:      loc,
		settings: s,
		observed: observed,
	}
}

func (b *base) Kind() Kind { return b.kind }

func (b *base) State() State { return b.state }

func (b *base) Reset() {
	b.state = Uninitialized
	b.now = time.Time{}
	b.frame = nil
}

func (b *base) Series() *series.Frame { return b.frame }

// setNow starts a load for now. Loading again in the same cycle is allowed;
// loading after frames were rendered requires a Reset.
func (b *base) setNow(now time.Time) error {
	if err := ValidateReferenceTime(now, b.loc); err != nil {
		return err
	}
	if b.state > Loaded {
		return fmt.Errorf("%w: %s is %s, reset before loading", ErrPrecondition, b.kind, b.state)
	}
	b.now = now
	if b.state < ReferenceTimeSet {
		b.state = ReferenceTimeSet
	}
	return nil
}

func (b *base) loaded(f *series.Frame) {
	b.frame = f
	b.state = Loaded
}

// begin and end bound the padded window around the reference time.
func (b *base) begin() time.Time {
	return b.now.Add(-time.Duration(b.settings.HoursPadBefore) * time.Hour)
}

func (b *base) end() time.Time {
	return b.now.Add(time.Duration(b.settings.HoursPadAfter) * time.Hour)
}

// trailing is the last tick of the window. Its row never carries observations,
// so it is always after now: without a forward pad it is the tick following
// the current one.
func (b *base) trailing() time.Time {
	t := timetricks.FloorTick(b.end())
	if !t.After(b.now) {
		t = t.Add(timetricks.Tick)
	}
	return t
}

// grid is every tick of the window, ending with the trailing row.
func (b *base) grid() []time.Time {
	return append(timetricks.Ticks(b.begin(), b.trailing()), b.trailing())
}

// field maps a payload key to a column.
type field struct {
	key, col string
	text     bool
}

// pull fetches one product over [begin, end] into a frame. An unavailable
// product yields an empty frame with its columns declared, so callers carry on
// with nulls.
func (b *base) pull(ctx context.Context, p noaa.Product, iv noaa.Interval, begin, end time.Time, fields ...field) (*series.Frame, error) {
	tbl, err := b.gw.Pull(ctx, noaa.Query{
		Product:  p,
		Interval: iv,
		Begin:    begin,
		End:      end,
	})
	bld := series.NewBuilder()
	for _, f := range fields {
		if f.text {
			bld.TextColumn(f.col)
		} else {
			bld.FloatColumn(f.col)
		}
	}
	if err != nil {
		if !errors.Is(err, noaa.ErrUnavailable) {
			err = fmt.Errorf("%w: %v", noaa.ErrUnavailable, err)
		}
		return bld.Frame(), err
	}

	for _, row := range tbl.Rows {
		bld.Row(row.Time)
		for _, f := range fields {
			raw, ok := row.Values[f.key]
			if !ok {
				continue
			}
			if f.text {
				bld.Text(row.Time, f.col, raw)
				continue
			}
			v, err := strconv.ParseFloat(raw, 64)
			if err != nil {
				log.Printf("%s: bad %s value %q at %s", b.kind, f.key, raw, row.Time.Format(time.RFC3339))
				continue
			}
			bld.Float(row.Time, f.col, v)
		}
	}
	return bld.Frame(), nil
}

// observation pulls a plain six minute observation product over the window.
func (b *base) observation(ctx context.Context, p noaa.Product, fields ...field) *series.Frame {
	f, _ := b.pull(ctx, p, noaa.SixMinute, b.begin(), b.end(), fields...)
	return f
}

// conform reindexes f to the grid and blanks the observed columns of the
// trailing row.
func (b *base) conform(f *series.Frame, extra ...time.Time) *series.Frame {
	out := f.Reindex(append(b.grid(), extra...))
	last := out.Len() - 1
	for _, c := range b.observed {
		if vals := out.Floats(c); vals != nil {
			vals[last] = series.Null()
		}
	}
	return out
}

// LatestObservationTime is the last row at or before now with any observed
// value.
func (b *base) LatestObservationTime() (time.Time, bool) {
	var latest time.Time
	found := false
	for _, c := range b.observed {
		t, _, ok := b.frame.LastValid(c, b.now)
		if ok && (!found || t.After(latest)) {
			latest, found = t, true
		}
	}
	return latest, found
}

// LatestValue is the last non-null value of col at or before the latest
// observation.
func (b *base) LatestValue(col string) (float64, bool) {
	latest, ok := b.LatestObservationTime()
	if !ok {
		return series.Null(), false
	}
	_, v, ok := b.frame.LastValid(col, latest)
	return v, ok
}

func (b *base) LatestText(col string) (string, bool) {
	latest, ok := b.LatestObservationTime()
	if !ok {
		return "", false
	}
	_, v, ok := b.frame.LastValidText(col, latest)
	return v, ok
}

// IsStale reports whether every observation of the last NullDataHours is
// missing. A product that was never loaded is stale.
func (b *base) IsStale() bool {
	if b.frame == nil {
		return true
	}
	since := b.now.Add(-time.Duration(b.settings.NullDataHours) * time.Hour)
	return b.frame.AllNull(b.observed, since, b.now)
}

// canRender checks the state for RenderFrame and returns the frame
// placement.
func (b *base) canRender(p Product, dot time.Time, metric bool) (visualize.Frame, error) {
	if b.state < Loaded {
		return visualize.Frame{}, fmt.Errorf("%w: %s rendered before load", ErrPrecondition, b.kind)
	}
	return visualize.Frame{
		Begin:  b.begin(),
		End:    b.end(),
		Dot:    dot,
		Metric: metric,
		Stale:  p.IsStale(),
	}, nil
}

func (b *base) rendered() {
	if b.state < FramesRendered {
		b.state = FramesRendered
	}
	metrics.FrameRendered(b.kind.String())
}

// floats returns col, or a null column when it is missing.
func (b *base) floats(col string) []float64 {
	if vals := b.frame.Floats(col); vals != nil {
		return vals
	}
	vals := make([]float64, b.frame.Len())
	for i := range vals {
		vals[i] = series.Null()
	}
	return vals
}

func (b *base) texts(col string) []string {
	if vals := b.frame.Texts(col); vals != nil {
		return vals
	}
	return make([]string, b.frame.Len())
}

// dots lists the frame times of an animation: every FrameEvery-th row up to
// the latest observation, and the latest observation itself. With no
// observations at all a single frame at the current tick shows the stale
// notice.
func dots(p Product, b *base) []time.Time {
	latest, ok := p.LatestObservationTime()
	if !ok {
		return []time.Time{timetricks.FloorTick(b.now)}
	}
	index := p.Series().Index()
	var out []time.Time
	for i := 0; i < len(index); i += b.settings.FrameEvery {
		if index[i].After(latest) {
			break
		}
		out = append(out, index[i])
	}
	if len(out) == 0 || !out[len(out)-1].Equal(latest) {
		out = append(out, latest)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Before(out[j]) })
	return out
}

// buildAnimation runs a whole cycle of p: clear, load, render, assemble.
func buildAnimation(ctx context.Context, p Product, b *base, now time.Time) (string, error) {
	if err := ValidateReferenceTime(now, b.loc); err != nil {
		return "", err
	}
	p.Reset()
	if err := animate.ClearFrames(b.settings.PlotDir); err != nil {
		return "", err
	}
	if err := p.Load(ctx, now); err != nil {
		return "", err
	}

	freq := b.settings.ToggleUnitsFreq
	for i, dot := range dots(p, b) {
		metric := (i/freq)%2 == 1
		img, err := p.RenderFrame(dot, metric)
		if err != nil {
			return "", fmt.Errorf("failed to render %s frame at %s: %w", b.kind, dot.Format(time.RFC3339), err)
		}
		if _, err := animate.WriteFrame(b.settings.PlotDir, dot, img); err != nil {
			return "", err
		}
	}

	frames, err := animate.ListFrames(b.settings.PlotDir)
	if err != nil {
		return "", err
	}
	out := animate.ArtifactPath(b.settings.AssetDir, b.kind.String())
	if err := animate.Assemble(frames, out, b.settings.animation()); err != nil {
		return "", err
	}
	b.state = Assembled
	return out, nil
}
