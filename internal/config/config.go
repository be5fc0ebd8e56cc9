package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"

	"github.com/san-kum/simwatch/internal/entity"
	"github.com/san-kum/simwatch/internal/geo"
)

const (
	DefaultURL        = "ws://localhost:8000/ws"
	DefaultRetryDelay = 2 * time.Second
	DefaultLogPath    = "simwatch.log"
	DefaultLogLevel   = "info"
	DefaultRecordDir  = "recordings"
	DefaultTheme      = "default"
	DefaultPreset     = "strait"
)

var ErrInvalid = errors.New("config: invalid")

type Config struct {
	URL           string            `yaml:"url" env:"SIMWATCH_URL"`
	Preset        string            `yaml:"preset,omitempty"`
	Bounds        geo.Bounds        `yaml:"bounds"`
	Viewport      geo.Viewport      `yaml:"viewport"`
	Categories    []string          `yaml:"categories"`
	Kinds         []entity.KindSpec `yaml:"kinds"`
	TurnPeriods   []float64         `yaml:"turn_periods,omitempty"`
	GeographyPath string            `yaml:"geography,omitempty" env:"SIMWATCH_GEOGRAPHY"`
	Theme         string            `yaml:"theme" env:"SIMWATCH_THEME"`
	LogPath       string            `yaml:"log_path" env:"SIMWATCH_LOG"`
	LogLevel      string            `yaml:"log_level" env:"SIMWATCH_LOG_LEVEL"`
	RetryDelay    time.Duration     `yaml:"retry_delay" env:"SIMWATCH_RETRY_DELAY"`
	RecordDir     string            `yaml:"record_dir" env:"SIMWATCH_RECORD_DIR"`
	Record        bool              `yaml:"record" env:"SIMWATCH_RECORD"`
}

// DefaultConfig returns the settings of the default preset.
func DefaultConfig() *Config {
	cfg := &Config{
		URL:        DefaultURL,
		Theme:      DefaultTheme,
		LogPath:    DefaultLogPath,
		LogLevel:   DefaultLogLevel,
		RetryDelay: DefaultRetryDelay,
		RecordDir:  DefaultRecordDir,
	}
	cfg.ApplyPreset(GetPreset(DefaultPreset))
	return cfg
}

// ApplyPreset copies the deployment settings of p into c. A nil preset is
// ignored.
func (c *Config) ApplyPreset(p *Preset) {
	if p == nil {
		return
	}
	c.Preset = p.Name
	c.Bounds = p.Bounds
	c.Viewport = p.Viewport
	c.Categories = append([]string(nil), p.Categories...)
	c.Kinds = append([]entity.KindSpec(nil), p.Kinds...)
	c.TurnPeriods = append([]float64(nil), p.TurnPeriods...)
}

// Load reads a YAML file over the defaults. A file naming a preset starts
// from that preset instead.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var head struct {
		Preset string `yaml:"preset"`
	}
	if err := yaml.Unmarshal(data, &head); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	cfg := DefaultConfig()
	if head.Preset != "" {
		p := GetPreset(head.Preset)
		if p == nil {
			return nil, fmt.Errorf("%w: unknown preset %q", ErrInvalid, head.Preset)
		}
		cfg.ApplyPreset(p)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// ParseEnv overlays SIMWATCH_* environment variables onto c.
func (c *Config) ParseEnv() error {
	if err := env.Parse(c); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

func (c *Config) Validate() error {
	if c.URL == "" {
		return fmt.Errorf("%w: empty url", ErrInvalid)
	}
	if _, err := geo.NewTransform(c.Bounds, c.Viewport); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	if c.Viewport.W <= 0 || c.Viewport.H <= 0 {
		return fmt.Errorf("%w: viewport must be positive, got %vx%v", ErrInvalid, c.Viewport.W, c.Viewport.H)
	}
	if _, err := entity.NewCatalog(c.Kinds); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	for i := 1; i < len(c.TurnPeriods); i++ {
		if c.TurnPeriods[i] <= c.TurnPeriods[i-1] {
			return fmt.Errorf("%w: turn periods must increase", ErrInvalid)
		}
	}
	if c.RetryDelay < 0 {
		return fmt.Errorf("%w: negative retry delay", ErrInvalid)
	}
	return nil
}

// Catalog builds the kind catalog.
func (c *Config) Catalog() (*entity.Catalog, error) {
	return entity.NewCatalog(c.Kinds)
}

// Transform builds the coordinate transform.
func (c *Config) Transform() (*geo.Transform, error) {
	return geo.NewTransform(c.Bounds, c.Viewport)
}
