package config

import (
	"fmt"
	"os"

	"go.uber.org/multierr"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/san-kum/bladebalance/internal/balance"
	"github.com/san-kum/bladebalance/internal/curve"
	"github.com/san-kum/bladebalance/internal/dataset"
	"github.com/san-kum/bladebalance/internal/pipeline"
	"github.com/san-kum/bladebalance/internal/render"
	"github.com/san-kum/bladebalance/internal/scene"
	"github.com/san-kum/bladebalance/internal/theme"
)

const (
	DefaultData    = "data_swords.csv"
	DefaultOutput  = "plots"
	DefaultHistory = ".bladebalance"
)

type Config struct {
	Data       string         `yaml:"data"`
	Specimen   string         `yaml:"specimen,omitempty"`
	History    string         `yaml:"history"`
	Demo       bool           `yaml:"demo"`
	Jobs       int            `yaml:"jobs,omitempty"`
	PairPolicy string         `yaml:"pair_policy"`
	Output     OutputConfig   `yaml:"output"`
	Geometry   GeometryConfig `yaml:"geometry"`
	Sampling   curve.Domain   `yaml:"sampling"`
	Viewport   curve.Viewport `yaml:"viewport"`
	Theme      theme.Theme    `yaml:"theme,omitempty"`
}

type OutputConfig struct {
	Dir    string `yaml:"dir"`
	Format string `yaml:"format"`
	Width  int    `yaml:"width"`
	Height int    `yaml:"height"`
}

type GeometryConfig struct {
	GripOffset   float64 `yaml:"grip_offset"`
	TargetOffset float64 `yaml:"target_offset"`
	HandWidth    float64 `yaml:"hand_width"`
	PommelMargin float64 `yaml:"pommel_margin"`
}

func DefaultConfig() *Config {
	return &Config{
		Data:       DefaultData,
		History:    DefaultHistory,
		PairPolicy: string(balance.PolicyReject),
		Output: OutputConfig{
			Dir:    DefaultOutput,
			Format: "png",
			Width:  render.DefaultWidth,
			Height: render.DefaultHeight,
		},
		Geometry: GeometryConfig{
			GripOffset:   balance.DefaultGripOffset,
			TargetOffset: balance.DefaultTargetOffset,
			HandWidth:    balance.DefaultHandWidth,
			PommelMargin: balance.DefaultPommelMargin,
		},
		Sampling: curve.DefaultDomain(),
		Viewport: curve.DefaultViewport(),
		Theme:    theme.Theme{Name: theme.Default.Name},
	}
}

// Load overlays the file at path on the defaults.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()
	if err := cfg.Overlay(path); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Overlay replaces the fields set in the file at path.
func (c *Config) Overlay(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("config: parse %s: %w", path, err)
	}
	return nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Validate reports every invalid section at once.
func (c *Config) Validate() error {
	var err error
	err = multierr.Append(err, c.SpecimenOptions().Validate())
	err = multierr.Append(err, c.Calculator().Validate())
	err = multierr.Append(err, c.Sampling.Validate())
	err = multierr.Append(err, c.Viewport.Validate())
	err = multierr.Append(err, c.RenderOptions().Validate())
	if _, terr := c.ResolveTheme(); terr != nil {
		err = multierr.Append(err, terr)
	}
	return err
}

func (c *Config) SpecimenOptions() balance.Options {
	return balance.Options{
		GripOffset: c.Geometry.GripOffset,
		PairPolicy: balance.PairPolicy(c.PairPolicy),
	}
}

func (c *Config) Calculator() balance.Config {
	return balance.Config{
		TargetOffset: c.Geometry.TargetOffset,
		HandWidth:    c.Geometry.HandWidth,
		PommelMargin: c.Geometry.PommelMargin,
	}
}

func (c *Config) SceneOptions() scene.Options {
	return scene.Options{Domain: c.Sampling, Viewport: c.Viewport, Demo: c.Demo}
}

func (c *Config) RenderOptions() render.Options {
	return render.Options{Width: c.Output.Width, Height: c.Output.Height, Format: c.Output.Format}
}

func (c *Config) DatasetOptions(log *zap.Logger) dataset.Options {
	return dataset.Options{Specimen: c.SpecimenOptions(), Logger: log}
}

func (c *Config) PipelineOptions(log *zap.Logger) pipeline.Options {
	return pipeline.Options{Calculator: c.Calculator(), Scene: c.SceneOptions(), Logger: log}
}

// ResolveTheme merges the configured overrides onto their base theme.
func (c *Config) ResolveTheme() (theme.Theme, error) {
	return theme.Resolve(c.Theme)
}
