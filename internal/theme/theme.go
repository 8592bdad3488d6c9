// Package theme maps the style keys emitted by a scene to colors, stroke
// widths and marker sizes. Nothing in the balance core knows about colors;
// renderers combine a scene with a Theme.
package theme

import (
	"fmt"
	"image/color"
	"maps"
	"os"
	"slices"

	"github.com/charmbracelet/lipgloss"
	"github.com/lucasb-eyer/go-colorful"
	"gopkg.in/yaml.v3"
)

// Roles that every theme colors in addition to the scene roles.
const (
	Background = "background"
	Paper      = "paper"
	Font       = "font"
	Grid       = "grid"
	Axis       = "axis"
)

type Stroke struct {
	Width float64   `yaml:"width"`
	Halo  float64   `yaml:"halo,omitempty"`
	Dash  []float64 `yaml:"dash,omitempty"`
}

type Marker struct {
	Size float64 `yaml:"size"`
	Halo float64 `yaml:"halo,omitempty"`
}

// Theme is an explicit presentation configuration. Colors are keyed by
// role, strokes and markers by scene element.
type Theme struct {
	Name    string            `yaml:"name"`
	Colors  map[string]string `yaml:"colors"`
	Strokes map[string]Stroke `yaml:"strokes"`
	Markers map[string]Marker `yaml:"markers"`
}

var defaultStrokes = map[string]Stroke{
	"grip_circle":        {Width: 0.5, Halo: 2, Dash: []float64{4, 4}},
	"rog_circle":         {Width: 2, Halo: 5},
	"pivot_circle":       {Width: 1, Halo: 3},
	"rog_grip_circle":    {Width: 1, Halo: 3},
	"measurement_circle": {Width: 1, Dash: []float64{5, 20}},
	"blade":              {Width: 8},
	"hilt":               {Width: 5},
	"crossguard":         {Width: 5},
	"rog_line":           {Width: 2},
	"rog_grip_line":      {Width: 2, Halo: 4},
}

var defaultMarkers = map[string]Marker{
	"cop":         {Size: 6, Halo: 10},
	"com":         {Size: 8, Halo: 12},
	"dbp":         {Size: 6, Halo: 12},
	"measurement": {Size: 4, Halo: 6},
}

var (
	ThemeAstro = Theme{
		Name: "astro",
		Colors: map[string]string{
			"target":      Astro.MustShade("red", 500),
			"tip":         Astro.MustShade("hotorange", 500),
			"rog":         Astro.MustShade("green", 500),
			"pommel":      Astro.MustShade("brightblue", 500),
			"rog_grip":    Astro.MustShade("pink", 500),
			"grip":        Astro.MustShade("grey", 300),
			"com":         Astro.MustShade("yellow", 500),
			"measurement": Astro.MustShade("yellow", 500),
			"sword":       Astro.MustShade("neutral", 0),
			Background:    Astro.MustShade("darkblue", 950),
			Paper:         Astro.MustShade("darkblue", 700),
			Font:          Astro.MustShade("neutral", 0),
			Grid:          "#3c3c3c",
			Axis:          "#969696",
		},
		Strokes: defaultStrokes,
		Markers: defaultMarkers,
	}

	ThemePrint = Theme{
		Name: "print",
		Colors: map[string]string{
			"target":      Astro.MustShade("red", 700),
			"tip":         Astro.MustShade("hotorange", 700),
			"rog":         Astro.MustShade("green", 800),
			"pommel":      Astro.MustShade("darkblue", 500),
			"rog_grip":    Astro.MustShade("pink", 700),
			"grip":        Astro.MustShade("grey", 600),
			"com":         Astro.MustShade("orange", 700),
			"measurement": Astro.MustShade("orange", 800),
			"sword":       Astro.MustShade("neutral", 1000),
			Background:    Astro.MustShade("neutral", 0),
			Paper:         Astro.MustShade("grey", 100),
			Font:          Astro.MustShade("neutral", 1000),
			Grid:          Astro.MustShade("grey", 250),
			Axis:          Astro.MustShade("grey", 700),
		},
		Strokes: defaultStrokes,
		Markers: defaultMarkers,
	}

	Default = ThemeAstro

	Themes = []Theme{ThemeAstro, ThemePrint}
)

// Get returns a copy of the named theme.
func Get(name string) (Theme, bool) {
	for _, t := range Themes {
		if t.Name == name {
			return t.Clone(), true
		}
	}
	return Theme{}, false
}

func Names() []string {
	names := make([]string, len(Themes))
	for i, t := range Themes {
		names[i] = t.Name
	}
	return names
}

func (t Theme) Clone() Theme {
	c := Theme{
		Name:    t.Name,
		Colors:  maps.Clone(t.Colors),
		Strokes: make(map[string]Stroke, len(t.Strokes)),
		Markers: maps.Clone(t.Markers),
	}
	for k, s := range t.Strokes {
		s.Dash = slices.Clone(s.Dash)
		c.Strokes[k] = s
	}
	return c
}

// Merge overlays the non-empty entries of o onto a copy of t.
func (t Theme) Merge(o Theme) Theme {
	out := t.Clone()
	if o.Name != "" {
		out.Name = o.Name
	}
	if out.Colors == nil {
		out.Colors = map[string]string{}
	}
	if out.Strokes == nil {
		out.Strokes = map[string]Stroke{}
	}
	if out.Markers == nil {
		out.Markers = map[string]Marker{}
	}
	maps.Copy(out.Colors, o.Colors)
	maps.Copy(out.Strokes, o.Strokes)
	maps.Copy(out.Markers, o.Markers)
	return out
}

// Validate checks that every color parses.
func (t Theme) Validate() error {
	for _, role := range slices.Sorted(maps.Keys(t.Colors)) {
		if _, err := colorful.Hex(t.Colors[role]); err != nil {
			return fmt.Errorf("theme %s: role %s: %w", t.Name, role, err)
		}
	}
	return nil
}

// Hex returns the color of role, falling back to the font color.
func (t Theme) Hex(role string) string {
	if hex, ok := t.Colors[role]; ok {
		return hex
	}
	if hex, ok := t.Colors[Font]; ok {
		return hex
	}
	return "#ffffff"
}

// Color returns the role color for image renderers.
func (t Theme) Color(role string) color.Color {
	c, err := colorful.Hex(t.Hex(role))
	if err != nil {
		return color.White
	}
	return c
}

// Terminal returns the role color for lipgloss styles.
func (t Theme) Terminal(role string) lipgloss.Color {
	return lipgloss.Color(t.Hex(role))
}

func (t Theme) Stroke(element string) Stroke {
	if s, ok := t.Strokes[element]; ok {
		return s
	}
	return Stroke{Width: 1}
}

func (t Theme) Marker(element string) Marker {
	if m, ok := t.Markers[element]; ok {
		return m
	}
	return Marker{Size: 6}
}

// Load reads a theme file. The file names a base theme and overrides any of
// its entries:
//
//	name: astro
//	colors:
//	  rog: "#00ff88"
func Load(path string) (Theme, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Theme{}, err
	}
	var o Theme
	if err := yaml.Unmarshal(data, &o); err != nil {
		return Theme{}, fmt.Errorf("theme: parse %s: %w", path, err)
	}
	return Resolve(o)
}

// Resolve merges o onto the theme named by o.Name (default astro).
func Resolve(o Theme) (Theme, error) {
	name := o.Name
	if name == "" {
		name = Default.Name
	}
	base, ok := Get(name)
	if !ok {
		base = Default.Clone()
	}
	t := base.Merge(o)
	if err := t.Validate(); err != nil {
		return Theme{}, err
	}
	return t, nil
}
