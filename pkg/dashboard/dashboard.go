// Package dashboard runs the product cycle: it fixes the reference time,
// builds every product's animation, and keeps the latest summary and tide
// table for the front ends.
package dashboard

import (
	"context"
	"errors"
	"fmt"
	"log"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/spencer-p/tidedash/pkg/metrics"
	"github.com/spencer-p/tidedash/pkg/product"
	"github.com/spencer-p/tidedash/pkg/summary"
	"github.com/spencer-p/tidedash/pkg/tides"
)

// Snapshot is the outcome of the last cycle.
type Snapshot struct {
	RunID string    `json:"run_id"`
	Now   time.Time `json:"now"`
	// Latest is the summary record of the latest observations.
	Latest summary.Record `json:"latest"`
	// Tides are the extrema around Now, if they could be pulled.
	Tides []tides.Row `json:"tides"`
	// Artifacts are the file names of the animations built so far, in
	// rotation order.
	Artifacts []string `json:"artifacts"`
}

// Dashboard owns the products. RunCycle must not be called concurrently; the
// accessors are safe to call at any time.
type Dashboard struct {
	loc      *time.Location
	products []product.Product
	clock    func() time.Time

	mu        sync.RWMutex
	snapshot  Snapshot
	artifacts map[product.Kind]string
}

// New builds a dashboard over products, cycled in the given order.
func New(loc *time.Location, products ...product.Product) *Dashboard {
	return &Dashboard{
		loc:       loc,
		products:  products,
		clock:     time.Now,
		artifacts: make(map[product.Kind]string),
	}
}

// FromKinds constructs one product per kind.
func FromKinds(gw product.Gateway, loc *time.Location, kinds []product.Kind, settings func(product.Kind) product.Settings) (*Dashboard, error) {
	var products []product.Product
	for _, k := range kinds {
		p, err := product.New(k, gw, loc, settings(k))
		if err != nil {
			return nil, fmt.Errorf("failed to create %s: %w", k, err)
		}
		products = append(products, p)
	}
	return New(loc, products...), nil
}

// SetClock replaces the time source.
func (d *Dashboard) SetClock(clock func() time.Time) {
	d.clock = clock
}

// RunCycle builds every product for the current time. A failing product is
// logged and skipped; the joined errors are returned after all products ran.
func (d *Dashboard) RunCycle(ctx context.Context) error {
	id := uuid.NewString()
	now := d.clock().In(d.loc)
	log.Printf("cycle %s: starting at %s", id, now.Format(time.RFC3339))

	var errs []error
	for _, p := range d.products {
		start := time.Now()
		out, err := build(ctx, p, now)
		result := "ok"
		if err != nil {
			result = "error"
			log.Printf("cycle %s: %s failed: %v", id, p.Kind(), err)
			errs = append(errs, fmt.Errorf("%s: %w", p.Kind(), err))
		} else {
			log.Printf("cycle %s: %s written to %s in %s", id, p.Kind(), out, time.Since(start).Round(time.Millisecond))
			d.mu.Lock()
			d.artifacts[p.Kind()] = filepath.Base(out)
			d.mu.Unlock()
		}
		metrics.ObserveCycle(p.Kind().String(), result, time.Since(start))
		metrics.SetStale(p.Kind().String(), p.IsStale())
	}

	snap := Snapshot{
		RunID:  id,
		Now:    now,
		Latest: summary.Build(d.sources()),
	}
	if water := d.water(); water != nil {
		preds, err := water.TodayTides(ctx, now)
		if err != nil {
			log.Printf("cycle %s: no tide table: %v", id, err)
		} else {
			snap.Tides = tides.Table(preds)
		}
	}

	d.mu.Lock()
	snap.Artifacts = d.rotation()
	d.snapshot = snap
	d.mu.Unlock()

	log.Printf("cycle %s: done with %d failures", id, len(errs))
	return errors.Join(errs...)
}

// build runs one product's cycle, turning a panic into an error so the
// remaining products still run.
func build(ctx context.Context, p product.Product, now time.Time) (out string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return p.BuildAnimation(ctx, now)
}

// sources picks the product behind each summary field. Members of a met
// product are used on their own so each field follows its own staleness.
func (d *Dashboard) sources() summary.Sources {
	var src summary.Sources
	var assign func(p product.Product)
	assign = func(p product.Product) {
		switch p.Kind() {
		case product.WaterLevel:
			src.Water = p
		case product.Temperature:
			src.Temperature = p
		case product.Wind:
			src.Wind = p
		case product.AirPressure:
			src.Pressure = p
		case product.Met:
			for _, m := range p.(*product.MetProduct).Members() {
				assign(m)
			}
		}
	}
	for _, p := range d.products {
		assign(p)
	}
	return src
}

func (d *Dashboard) water() *product.WaterLevelProduct {
	for _, p := range d.products {
		if w, ok := p.(*product.WaterLevelProduct); ok {
			return w
		}
	}
	return nil
}

// rotation must be called with mu held.
func (d *Dashboard) rotation() []string {
	var names []string
	for _, p := range d.products {
		if name, ok := d.artifacts[p.Kind()]; ok {
			names = append(names, name)
		}
	}
	return names
}

// Snapshot returns the result of the last completed cycle.
func (d *Dashboard) Snapshot() Snapshot {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.snapshot
}

// Latest is the summary record of the last cycle, or nil before the first.
func (d *Dashboard) Latest() summary.Record {
	return d.Snapshot().Latest
}

func (d *Dashboard) Tides() []tides.Row {
	return d.Snapshot().Tides
}

// Rotation lists the artifact names a slideshow should cycle through.
func (d *Dashboard) Rotation() []string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.rotation()
}
