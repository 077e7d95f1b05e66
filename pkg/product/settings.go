package product

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/spencer-p/tidedash/pkg/animate"
	"github.com/spencer-p/tidedash/pkg/sunset"
	"github.com/spencer-p/tidedash/pkg/visualize"
)

// Settings configure one product. They are fixed at construction.
type Settings struct {
	// PlotDir holds the product's frames and is cleared every cycle.
	PlotDir string `yaml:"-" validate:"required"`
	// AssetDir receives the finished artifact.
	AssetDir string `yaml:"-" validate:"required"`

	HoursPadBefore int `yaml:"hours_pad_before" validate:"gte=1"`
	HoursPadAfter  int `yaml:"hours_pad_after" validate:"gte=0"`
	// NullDataHours is how far back IsStale looks for any observation.
	NullDataHours int `yaml:"null_data_hours" validate:"gte=1"`

	Width      int     `yaml:"width" validate:"gt=0"`
	Height     int     `yaml:"height" validate:"gt=0"`
	FontSize   float64 `yaml:"font_size" validate:"gte=0"`
	LineWidth  float64 `yaml:"line_width" validate:"gte=0"`
	MarkerSize float64 `yaml:"marker_size" validate:"gte=0"`

	Animate       bool          `yaml:"animate"`
	LoopCount     int           `yaml:"loop_count" validate:"gte=0"`
	TotalDuration time.Duration `yaml:"total_duration" validate:"gte=0"`
	// FrameEvery renders every nth row of the series.
	FrameEvery int `yaml:"frame_every" validate:"gte=1"`
	// ToggleUnitsFreq switches between imperial and metric every so many
	// frames.
	ToggleUnitsFreq int `yaml:"toggle_units_freq" validate:"gte=1"`

	Gauge      GaugeSettings `yaml:"gauge"`
	WindNeedle bool          `yaml:"wind_needle"`
	MetColumns int           `yaml:"met_columns" validate:"oneof=2 3"`

	// Daylight shades the hours between sunrise and sunset.
	Daylight  bool    `yaml:"daylight"`
	Latitude  float64 `yaml:"latitude" validate:"gte=-90,lte=90"`
	Longitude float64 `yaml:"longitude" validate:"gte=-180,lte=180"`
}

// GaugeSettings size the thermometer, barometer and compass glyphs.
type GaugeSettings struct {
	TubeScale  float64 `yaml:"tube_scale" validate:"gt=0"`
	TubeHeight float64 `yaml:"tube_height" validate:"gtefield=TubeScale"`
	BulbRadius float64 `yaml:"bulb_radius" validate:"gt=0"`
	ScalePad   float64 `yaml:"scale_pad" validate:"gte=0"`
	WindRadius float64 `yaml:"wind_radius" validate:"gt=0"`
}

var validate = validator.New()

// DefaultSettings are the settings each product ships with. The directories
// are left for the caller.
func DefaultSettings(kind Kind) Settings {
	s := Settings{
		HoursPadBefore:  12,
		HoursPadAfter:   3,
		NullDataHours:   4,
		Width:           1400,
		Height:          1000,
		FontSize:        17,
		LineWidth:       5,
		MarkerSize:      100,
		Animate:         true,
		LoopCount:       1,
		TotalDuration:   3 * time.Second,
		FrameEvery:      10,
		ToggleUnitsFreq: 1000,
		Gauge: GaugeSettings{
			TubeScale:  60,
			TubeHeight: 63,
			BulbRadius: 6,
			ScalePad:   20,
			WindRadius: 60,
		},
		MetColumns: 3,
		Latitude:   sunset.SantaMonica.Lat,
		Longitude:  sunset.SantaMonica.Long,
	}
	switch kind {
	case WaterLevel:
		s.Daylight = true
	case Met:
		s.FontSize = 20
		s.LineWidth = 3
		s.LoopCount = 0
		s.Gauge.TubeScale = 70
		s.Gauge.TubeHeight = 75
		s.Gauge.BulbRadius = 7
		s.Gauge.ScalePad = 15
	}
	return s
}

// WithDirs places a product's frames under plotRoot/<kind> and its artifact in
// assetDir.
func (s Settings) WithDirs(kind Kind, plotRoot, assetDir string) Settings {
	s.PlotDir = filepath.Join(plotRoot, kind.String())
	s.AssetDir = assetDir
	return s
}

// Validate checks every field, wrapping failures in ErrInvalidInput.
func (s Settings) Validate() error {
	if err := validate.Struct(s); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	return nil
}

func (s Settings) style(loc *time.Location) visualize.Style {
	st := visualize.Style{
		Width:      s.Width,
		Height:     s.Height,
		FontSize:   s.FontSize,
		LineWidth:  s.LineWidth,
		MarkerSize: s.MarkerSize,
		Gauge: visualize.Gauge{
			TubeScale:  s.Gauge.TubeScale,
			TubeHeight: s.Gauge.TubeHeight,
			BulbRadius: s.Gauge.BulbRadius,
			ScalePad:   s.Gauge.ScalePad,
			WindRadius: s.Gauge.WindRadius,
		},
		WindNeedle: s.WindNeedle,
		MetColumns: s.MetColumns,
	}
	if s.Daylight {
		st.Place = sunset.Place{Lat: s.Latitude, Long: s.Longitude, Location: loc}
	}
	return st
}

func (s Settings) animation() animate.Options {
	return animate.Options{
		LoopCount:     s.LoopCount,
		TotalDuration: s.TotalDuration,
		Animate:       s.Animate,
	}
}
