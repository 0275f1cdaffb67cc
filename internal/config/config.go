package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/willbeason/fractal-canopy/pkg/params"
	"gopkg.in/yaml.v3"
)

// DefaultPath is read when no config file is named explicitly.
const DefaultPath = "canopy.yaml"

// Config is the content of canopy.yaml.
type Config struct {
	// Width and Height are the surface size in pixels.
	Width  int `yaml:"width" json:"width"`
	Height int `yaml:"height" json:"height"`
	// MaxSurface bounds Width, Height, and any later resize. Zero disables it.
	MaxSurface int `yaml:"max_surface" json:"max_surface"`

	TrunkHeight  float64 `yaml:"trunk_height" json:"trunk_height"`
	HeightFactor float64 `yaml:"height_factor" json:"height_factor"`
	Amount       int     `yaml:"amount" json:"amount"`
	MaxAmount    int     `yaml:"max_amount" json:"max_amount"`
	Thickness    float64 `yaml:"thickness" json:"thickness"`
	// Angle is in degrees.
	Angle float64 `yaml:"angle" json:"angle"`

	Output   string `yaml:"output" json:"output"`
	Addr     string `yaml:"addr" json:"addr"`
	LogLevel string `yaml:"log_level" json:"log_level"`
}

func Default() Config {
	p := params.Defaults()
	return Config{
		Width:        800,
		Height:       600,
		MaxSurface:   params.DefaultMaxSurface,
		TrunkHeight:  p.Height,
		HeightFactor: p.HeightFactor,
		Amount:       p.Amount,
		MaxAmount:    params.DefaultMaxAmount,
		Thickness:    p.Thickness,
		Angle:        params.Degrees(p.Angle),
		Output:       "canopy.png",
		Addr:         ":8080",
		LogLevel:     "info",
	}
}

// Load reads a YAML or JSON config file over the defaults. Fields missing
// from the file keep their default. A missing file at DefaultPath is not an
// error; a missing file anywhere else is.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		path = DefaultPath
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) && path == DefaultPath {
			return cfg, nil
		}
		return cfg, fmt.Errorf("failed to read config: %w", err)
	}

	if strings.ToLower(filepath.Ext(path)) == ".json" {
		if err := json.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("failed to parse %s: %w", path, err)
		}
	} else {
		// Default to YAML
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("failed to parse %s: %w", path, err)
		}
	}

	return cfg, cfg.Validate()
}

// Parameters converts the config into the canopy's render parameters.
func (c Config) Parameters() params.RenderParameters {
	return params.RenderParameters{
		Height:       c.TrunkHeight,
		HeightFactor: c.HeightFactor,
		Amount:       c.Amount,
		Thickness:    c.Thickness,
		Angle:        params.Radians(c.Angle),
	}
}

func (c Config) Validate() error {
	var errs []error
	if c.Width <= 0 || c.Height <= 0 {
		errs = append(errs, fmt.Errorf("surface must be at least 1x1, got %dx%d", c.Width, c.Height))
	}
	if c.MaxSurface > 0 && (c.Width > c.MaxSurface || c.Height > c.MaxSurface) {
		errs = append(errs, fmt.Errorf("surface %dx%d exceeds max_surface %d", c.Width, c.Height, c.MaxSurface))
	}
	errs = append(errs, c.Parameters().Validate(c.MaxAmount))
	return errors.Join(errs...)
}
