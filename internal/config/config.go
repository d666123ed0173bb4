package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/schrodsim/internal/dynamo"
	"github.com/san-kum/schrodsim/internal/eigen"
	"github.com/san-kum/schrodsim/internal/potential"
	"github.com/san-kum/schrodsim/internal/shooting"
)

const (
	DefaultPotential = "square_well"
	DefaultScheme    = "rk4"
	DefaultXMin      = 0.0
	DefaultXMax      = 10.0
	DefaultXStep     = 0.01
	DefaultEMin      = 10.0
	DefaultEMax      = 500.0
	DefaultEStep     = 5.0
	DefaultLogLevel  = "info"
)

type Config struct {
	Potential  string         `yaml:"potential"`
	Scheme     string         `yaml:"scheme"`
	Grid       potential.Grid `yaml:"grid"`
	Search     eigen.Sweep    `yaml:"search"`
	Tolerances eigen.Options  `yaml:"tolerances"`
	LogLevel   string         `yaml:"log_level"`
}

func DefaultConfig() *Config {
	return &Config{
		Potential: DefaultPotential,
		Scheme:    DefaultScheme,
		Grid: potential.Grid{
			XMin: DefaultXMin,
			XMax: DefaultXMax,
			Step: DefaultXStep,
		},
		Search: eigen.Sweep{
			EMin:  DefaultEMin,
			EMax:  DefaultEMax,
			EStep: DefaultEStep,
		},
		Tolerances: eigen.DefaultOptions(),
		LogLevel:   DefaultLogLevel,
	}
}

// Load reads a YAML file over the defaults, so omitted keys keep their
// default values.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
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

// Validate checks everything except the potential name; unknown names are
// resolved to the square well by the caller.
func (c *Config) Validate() error {
	if _, err := c.SchemeValue(); err != nil {
		return fmt.Errorf("%w: %v", dynamo.ErrParameterBounds, err)
	}
	if err := c.Grid.Validate(); err != nil {
		return err
	}
	if err := c.Search.Validate(); err != nil {
		return err
	}
	if err := c.Tolerances.Validate(); err != nil {
		return err
	}
	if _, err := ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("%w: %v", dynamo.ErrParameterBounds, err)
	}
	return nil
}

func (c *Config) Shape() potential.Shape {
	return potential.Parse(c.Potential)
}

func (c *Config) SchemeValue() (shooting.Scheme, error) {
	return shooting.ParseScheme(c.Scheme)
}

func ParseLevel(name string) (slog.Level, error) {
	var level slog.Level
	if strings.TrimSpace(name) == "" {
		return slog.LevelInfo, nil
	}
	if err := level.UnmarshalText([]byte(name)); err != nil {
		return slog.LevelInfo, fmt.Errorf("unknown log level: %s", name)
	}
	return level, nil
}
