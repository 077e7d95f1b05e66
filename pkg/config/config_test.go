package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/spencer-p/tidedash/pkg/noaa"
	"github.com/spencer-p/tidedash/pkg/product"
)

func TestLoadDefaults(t *testing.T) {
	c, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if c.Interval != 6*time.Minute {
		t.Errorf("Interval = %v, want 6m", c.Interval)
	}
	if c.Location().String() != "America/Los_Angeles" {
		t.Errorf("Location = %v, want America/Los_Angeles", c.Location())
	}
	if diff := cmp.Diff([]product.Kind{product.Met, product.WaterLevel}, c.Kinds()); diff != "" {
		t.Errorf("Kinds (-want,+got): %s", diff)
	}

	gw := c.Gateway()
	if gw.Station != noaa.SantaMonica || gw.BaseURL != noaa.NOAA_URL {
		t.Errorf("Gateway() = %+v, want the Santa Monica station on the production API", gw)
	}

	s := c.Settings(product.Met)
	if s.PlotDir != filepath.Join("plots", "met") || s.AssetDir != "assets" {
		t.Errorf("met dirs = %q, %q", s.PlotDir, s.AssetDir)
	}
	if s.Gauge.TubeScale != 70 {
		t.Errorf("met tube scale = %v, want 70", s.Gauge.TubeScale)
	}
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("PRODUCTS", "wind,air_pressure")
	t.Setenv("PLOT_PATH", "/tmp/frames")
	t.Setenv("INTERVAL", "12m")
	t.Setenv("TIME_ZONE", "UTC")
	t.Setenv("LATITUDE", "36.95")

	c, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if diff := cmp.Diff([]product.Kind{product.Wind, product.AirPressure}, c.Kinds()); diff != "" {
		t.Errorf("Kinds (-want,+got): %s", diff)
	}
	if c.Interval != 12*time.Minute {
		t.Errorf("Interval = %v, want 12m", c.Interval)
	}
	if c.Location() != time.UTC {
		t.Errorf("Location = %v, want UTC", c.Location())
	}
	s := c.Settings(product.Wind)
	if s.PlotDir != "/tmp/frames/wind" {
		t.Errorf("PlotDir = %q", s.PlotDir)
	}
	if s.Latitude != 36.95 {
		t.Errorf("Latitude = %v, want 36.95", s.Latitude)
	}
}

func TestLoadRejects(t *testing.T) {
	for _, tc := range []struct {
		name, key, value string
	}{
		{"unknown product", "PRODUCTS", "water_level,surf"},
		{"bad time zone", "TIME_ZONE", "Pacific/Atlantis"},
		{"short interval", "INTERVAL", "10s"},
		{"cache outlives cycle", "CACHE_TTL", "1h"},
		{"latitude", "LATITUDE", "91"},
		{"missing profile", "RENDER_PROFILE", "/does/not/exist.yaml"},
	} {
		t.Run(tc.name, func(t *testing.T) {
			t.Setenv(tc.key, tc.value)
			_, err := Load()
			if err == nil {
				t.Fatalf("Load() succeeded with %s=%s", tc.key, tc.value)
			}
			if tc.key != "RENDER_PROFILE" && !errors.Is(err, product.ErrInvalidInput) {
				t.Errorf("Load() = %v, want ErrInvalidInput", err)
			}
		})
	}
}

const profile = `
defaults:
  font_size: 14
  total_duration: 5s
products:
  met:
    met_columns: 2
    gauge:
      tube_scale: 80
      tube_height: 85
  water_level:
    daylight: false
    latitude: 36.95
`

func TestProfile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "profile.yaml")
	if err := os.WriteFile(path, []byte(profile), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("RENDER_PROFILE", path)

	c, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	met := c.Settings(product.Met)
	if met.FontSize != 14 || met.TotalDuration != 5*time.Second {
		t.Errorf("met font %v duration %v, want profile defaults", met.FontSize, met.TotalDuration)
	}
	if met.MetColumns != 2 || met.Gauge.TubeScale != 80 {
		t.Errorf("met columns %d tube scale %v, want 2 and 80", met.MetColumns, met.Gauge.TubeScale)
	}
	if met.Gauge.BulbRadius != 7 {
		t.Errorf("met bulb radius = %v, want its default 7", met.Gauge.BulbRadius)
	}
	if met.LoopCount != 0 {
		t.Errorf("met loop count = %d, want its default 0", met.LoopCount)
	}
	if met.Latitude != c.Latitude {
		t.Errorf("met latitude = %v, want %v from the environment", met.Latitude, c.Latitude)
	}

	water := c.Settings(product.WaterLevel)
	if water.Daylight {
		t.Error("water level daylight shading should be off")
	}
	if water.Latitude != 36.95 {
		t.Errorf("water latitude = %v, want 36.95 from the profile", water.Latitude)
	}
	if water.PlotDir != filepath.Join("plots", "water_level") {
		t.Errorf("water PlotDir = %q", water.PlotDir)
	}

	wind := c.Settings(product.Wind)
	if wind.FontSize != 14 || wind.MetColumns != 3 {
		t.Errorf("wind font %v columns %d, want 14 and 3", wind.FontSize, wind.MetColumns)
	}
}

func TestParseProfileRejects(t *testing.T) {
	for _, tc := range []struct {
		name, doc string
	}{
		{"unknown product", "products:\n  surf:\n    width: 10\n"},
		{"wrong type", "defaults:\n  width: wide\n"},
		{"not yaml", "defaults: [\n"},
	} {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := ParseProfile([]byte(tc.doc)); !errors.Is(err, product.ErrInvalidInput) {
				t.Errorf("ParseProfile() = %v, want ErrInvalidInput", err)
			}
		})
	}
}

func TestProfileValuesAreValidated(t *testing.T) {
	path := filepath.Join(t.TempDir(), "profile.yaml")
	if err := os.WriteFile(path, []byte("products:\n  wind:\n    toggle_units_freq: 0\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("RENDER_PROFILE", path)

	if _, err := Load(); !errors.Is(err, product.ErrInvalidInput) {
		t.Errorf("Load() = %v, want ErrInvalidInput", err)
	}
}
