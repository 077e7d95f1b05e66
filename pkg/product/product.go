// Package product models each station product: it pulls the product's series
// from the gateway, merges them onto the sampling grid around a reference
// time, and renders the frames of its animation.
//
// A product runs one cycle at a time:
//
//	Uninitialized -> ReferenceTimeSet -> Loaded -> FramesRendered -> Assembled
//
// BuildAnimation runs a whole cycle. Reset returns a product to Uninitialized.
package product

import (
	"context"
	"errors"
	"fmt"
	"image"
	"strings"
	"time"

	"github.com/spencer-p/tidedash/pkg/noaa"
	"github.com/spencer-p/tidedash/pkg/series"
)

var (
	// ErrPrecondition is returned when an operation is called before the
	// state it depends on.
	ErrPrecondition = errors.New("precondition failed")

	// ErrInvalidInput is returned for malformed settings, reference times
	// outside the station time zone and unknown product names.
	ErrInvalidInput = errors.New("invalid input")
)

// Kind enumerates the products.
type Kind int

const (
	WaterLevel Kind = iota
	Temperature
	Wind
	AirPressure
	Met
)

var kindNames = [...]string{
	WaterLevel:  "water_level",
	Temperature: "temperature",
	Wind:        "wind",
	AirPressure: "air_pressure",
	Met:         "met",
}

// Kinds lists every product in display order.
func Kinds() []Kind {
	return []Kind{WaterLevel, Temperature, Wind, AirPressure, Met}
}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return fmt.Sprintf("Kind(%d)", int(k))
	}
	return kindNames[k]
}

func (k Kind) valid() bool {
	return k >= 0 && int(k) < len(kindNames)
}

// ParseKind looks up a product by name.
func ParseKind(name string) (Kind, error) {
	name = strings.TrimSpace(strings.ToLower(name))
	for k, n := range kindNames {
		if n == name {
			return Kind(k), nil
		}
	}
	return 0, fmt.Errorf("%w: unknown product %q", ErrInvalidInput, name)
}

// ParseKinds parses a comma separated product list.
func ParseKinds(names []string) ([]Kind, error) {
	var kinds []Kind
	for _, n := range names {
		if strings.TrimSpace(n) == "" {
			continue
		}
		k, err := ParseKind(n)
		if err != nil {
			return nil, err
		}
		kinds = append(kinds, k)
	}
	return kinds, nil
}

// State is a product's position in its cycle.
type State int

const (
	Uninitialized State = iota
	ReferenceTimeSet
	Loaded
	FramesRendered
	Assembled
)

func (s State) String() string {
	switch s {
	case Uninitialized:
		return "uninitialized"
	case ReferenceTimeSet:
		return "reference time set"
	case Loaded:
		return "loaded"
	case FramesRendered:
		return "frames rendered"
	case Assembled:
		return "assembled"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// Gateway pulls tables from the station API. *noaa.Client implements it.
type Gateway interface {
	Pull(ctx context.Context, q noaa.Query) (*noaa.Table, error)
}

// Product is the set of operations every station product supports.
type Product interface {
	Kind() Kind

	// Load pulls and merges the product's series around now. Upstream
	// failures are absorbed: the affected columns stay null and the product
	// reports stale data.
	Load(ctx context.Context, now time.Time) error

	// Series is the merged series of the last Load.
	Series() *series.Frame

	LatestValue(col string) (float64, bool)
	LatestText(col string) (string, bool)
	LatestObservationTime() (time.Time, bool)
	IsStale() bool

	// RenderFrame draws the series as of dot.
	RenderFrame(dot time.Time, metric bool) (image.Image, error)

	// BuildAnimation runs a full cycle for now and returns the artifact path.
	BuildAnimation(ctx context.Context, now time.Time) (string, error)

	State() State
	Reset()
}

// ValidateReferenceTime checks that now is set and carries the station's time
// zone.
func ValidateReferenceTime(now time.Time, loc *time.Location) error {
	if now.IsZero() {
		return fmt.Errorf("%w: reference time is not set", ErrPrecondition)
	}
	if loc == nil || now.Location().String() != loc.String() {
		return fmt.Errorf("%w: reference time %s is not in station time zone %v",
			ErrInvalidInput, now.Format(time.RFC3339), loc)
	}
	return nil
}

// New constructs a product of the given kind.
func New(kind Kind, gw Gateway, loc *time.Location, s Settings) (Product, error) {
	if !kind.valid() {
		return nil, fmt.Errorf("%w: unknown product %s", ErrInvalidInput, kind)
	}
	if gw == nil {
		return nil, fmt.Errorf("%w: no gateway", ErrInvalidInput)
	}
	if loc == nil {
		return nil, fmt.Errorf("%w: no station time zone", ErrInvalidInput)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}

	switch kind {
	case WaterLevel:
		return newWaterLevel(gw, loc, s), nil
	case Temperature:
		return newTemperature(gw, loc, s), nil
	case Wind:
		return newWind(gw, loc, s), nil
	case AirPressure:
		return newPressure(gw, loc, s), nil
	case Met:
		return newMet(gw, loc, s), nil
	}
	panic("unreachable")
}
