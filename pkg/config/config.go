// Package config reads the server configuration from the environment, an
// optional .env file and an optional YAML render profile.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"sort"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"

	"github.com/spencer-p/tidedash/pkg/noaa"
	"github.com/spencer-p/tidedash/pkg/product"
)

// Config is the process configuration. Every field can be set from the
// environment variable of the same name, e.g. PLOT_PATH.
type Config struct {
	Port   string `default:"8080" validate:"required,numeric"`
	Prefix string `default:"/" validate:"required,startswith=/"`

	Station  int    `default:"9410840" validate:"gt=0"`
	TimeZone string `default:"America/Los_Angeles" split_words:"true" validate:"required"`
	APIURL   string `envconfig:"API_URL" default:"https://api.tidesandcurrents.noaa.gov/api/prod/datagetter" validate:"required,url"`

	AssetsPath string `default:"assets" split_words:"true" validate:"required"`
	PlotPath   string `default:"plots" split_words:"true" validate:"required"`

	Interval    time.Duration `default:"6m" validate:"gte=1m"`
	HTTPTimeout time.Duration `envconfig:"HTTP_TIMEOUT" default:"30s" validate:"gt=0"`
	// CacheTTL should stay shorter than Interval so every cycle sees fresh
	// tables.
	CacheTTL time.Duration `envconfig:"CACHE_TTL" default:"5m" validate:"gte=0,ltefield=Interval"`

	Products []string `default:"met,water_level" validate:"min=1"`

	// RenderProfile is an optional YAML file overriding product settings.
	RenderProfile string `split_words:"true"`

	Latitude  float64 `default:"34.0083" validate:"gte=-90,lte=90"`
	Longitude float64 `default:"-118.5" validate:"gte=-180,lte=180"`

	loc     *time.Location
	kinds   []product.Kind
	profile *Profile
}

var validate = validator.New()

// Load reads the configuration. A missing .env file is not an error.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Printf("config: ignoring .env: %v", err)
	}
	var c Config
	if err := envconfig.Process("", &c); err != nil {
		return nil, fmt.Errorf("%w: %v", product.ErrInvalidInput, err)
	}
	if err := c.init(); err != nil {
		return nil, err
	}
	return &c, nil
}

// init validates c and resolves the derived fields.
func (c *Config) init() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("%w: %v", product.ErrInvalidInput, err)
	}

	loc, err := time.LoadLocation(c.TimeZone)
	if err != nil {
		return fmt.Errorf("%w: time zone %q: %v", product.ErrInvalidInput, c.TimeZone, err)
	}
	c.loc = loc

	kinds, err := product.ParseKinds(c.Products)
	if err != nil {
		return err
	}
	if len(kinds) == 0 {
		return fmt.Errorf("%w: no products configured", product.ErrInvalidInput)
	}
	c.kinds = kinds

	c.profile = &Profile{}
	if c.RenderProfile != "" {
		p, err := ReadProfile(c.RenderProfile)
		if err != nil {
			return err
		}
		c.profile = p
	}

	for _, k := range product.Kinds() {
		if err := c.Settings(k).Validate(); err != nil {
			return fmt.Errorf("%s settings: %w", k, err)
		}
	}
	return nil
}

// Location is the station time zone.
func (c *Config) Location() *time.Location { return c.loc }

// Kinds are the configured products in rotation order.
func (c *Config) Kinds() []product.Kind { return c.kinds }

// Gateway is the CO-OPS client options for this configuration.
func (c *Config) Gateway() noaa.ClientOptions {
	return noaa.ClientOptions{
		BaseURL:  c.APIURL,
		Station:  noaa.Station(c.Station),
		Location: c.loc,
		Timeout:  c.HTTPTimeout,
		CacheTTL: c.CacheTTL,
	}
}

// Settings are the settings of kind: its defaults, then the profile's
// defaults, then the profile's entry for kind.
func (c *Config) Settings(kind product.Kind) product.Settings {
	s := product.DefaultSettings(kind)
	s.Latitude = c.Latitude
	s.Longitude = c.Longitude
	if c.profile != nil {
		s = c.profile.apply(kind, s)
	}
	return s.WithDirs(kind, c.PlotPath, c.AssetsPath)
}

// Profile overrides product settings. Keys under products are product names;
// their fields are the yaml names of product.Settings.
//
//	defaults:
//	  font_size: 14
//	products:
//	  met:
//	    met_columns: 2
type Profile struct {
	Defaults yaml.Node            `yaml:"defaults"`
	Products map[string]yaml.Node `yaml:"products"`

	// decoded is filled by ReadProfile and ParseProfile.
	decoded map[product.Kind]product.Settings
}

// ReadProfile reads and parses the profile at path.
func ReadProfile(path string) (*Profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read render profile %s: %w", path, err)
	}
	return ParseProfile(data)
}

// ParseProfile parses a profile, rejecting unknown product names and values
// that do not decode onto product.Settings.
func ParseProfile(data []byte) (*Profile, error) {
	var p Profile
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("%w: failed to parse render profile: %v", product.ErrInvalidInput, err)
	}

	names := make([]string, 0, len(p.Products))
	for name := range p.Products {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if _, err := product.ParseKind(name); err != nil {
			return nil, fmt.Errorf("render profile: %w", err)
		}
	}

	p.decoded = make(map[product.Kind]product.Settings)
	for _, k := range product.Kinds() {
		s := product.DefaultSettings(k)
		if err := decode(&p.Defaults, &s); err != nil {
			return nil, fmt.Errorf("%w: render profile defaults: %v", product.ErrInvalidInput, err)
		}
		if n, ok := p.Products[k.String()]; ok {
			if err := decode(&n, &s); err != nil {
				return nil, fmt.Errorf("%w: render profile %s: %v", product.ErrInvalidInput, k, err)
			}
		}
		p.decoded[k] = s
	}
	return &p, nil
}

// decode applies n onto s, leaving fields n does not name untouched.
func decode(n *yaml.Node, s *product.Settings) error {
	if n.Kind == 0 {
		return nil
	}
	return n.Decode(s)
}

// apply overlays the profile onto s. Location and directories are kept from s.
func (p *Profile) apply(kind product.Kind, s product.Settings) product.Settings {
	o, ok := p.decoded[kind]
	if !ok {
		return s
	}
	if !p.names(kind, "latitude") {
		o.Latitude = s.Latitude
	}
	if !p.names(kind, "longitude") {
		o.Longitude = s.Longitude
	}
	o.PlotDir, o.AssetDir = s.PlotDir, s.AssetDir
	return o
}

// names reports whether the profile sets key for kind.
func (p *Profile) names(kind product.Kind, key string) bool {
	has := func(n yaml.Node) bool {
		if n.Kind != yaml.MappingNode {
			return false
		}
		for i := 0; i+1 < len(n.Content); i += 2 {
			if n.Content[i].Value == key {
				return true
			}
		}
		return false
	}
	if has(p.Defaults) {
		return true
	}
	n, ok := p.Products[kind.String()]
	return ok && has(n)
}
