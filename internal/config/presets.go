package config

import (
	"maps"
	"slices"

	"github.com/san-kum/bladebalance/internal/curve"
)

var Presets = map[string]*Config{
	"default": DefaultConfig(),
	"demo": with(func(c *Config) {
		c.Demo = true
	}),
	"wide": with(func(c *Config) {
		c.Viewport = curve.Viewport{XMin: -80, XMax: 200, YMin: -100, YMax: 100}
		c.Output.Width, c.Output.Height = 1200, 860
	}),
	"fine": with(func(c *Config) {
		c.Sampling.StepDeg = 1
	}),
	"print": with(func(c *Config) {
		c.Theme.Name = "print"
		c.Output.Format = "svg"
	}),
	"lenient": with(func(c *Config) {
		c.PairPolicy = "drop"
	}),
}

func with(fn func(*Config)) *Config {
	c := DefaultConfig()
	fn(c)
	return c
}

// GetPreset returns a copy of the named preset, or nil.
func GetPreset(name string) *Config {
	p, ok := Presets[name]
	if !ok {
		return nil
	}
	c := *p
	c.Theme = p.Theme.Clone()
	return &c
}

func ListPresets() []string {
	return slices.Sorted(maps.Keys(Presets))
}
