package theme

import (
	"fmt"
	"sort"
)

// Palette maps a color family to its shades.
type Palette map[string]map[int]string

// Astro is the default palette.
var Astro = Palette{
	"neutral": {0: "#ffffff", 1000: "#000000"},
	"darkblue": {
		100: "#cbdee9", 200: "#98bdd3", 300: "#649cbd", 400: "#2f7aa7", 500: "#005a8f",
		600: "#004872", 700: "#1c3f5e", 800: "#1b2d3e", 900: "#172635", 950: "#080c11",
	},
	"brightblue": {
		100: "#daeeff", 200: "#cee9fc", 300: "#b7dcff", 400: "#92cbff", 500: "#4dacff",
		600: "#3a87cf", 700: "#2b659b", 800: "#1c3851", 850: "#142435", 900: "#101923",
	},
	"grey": {
		100: "#f5f6f9", 200: "#eaeef4", 250: "#e0e5eb", 300: "#d4d8dd", 400: "#bbc1c9",
		500: "#a4abb6", 600: "#7b8089", 700: "#51555b", 800: "#3c3e42", 900: "#292a2d",
	},
	"red":    {400: "#ff5f60", 500: "#ff3838", 600: "#ff2a04", 700: "#c8102e", 800: "#8b1703", 900: "#661102"},
	"orange": {400: "#ffcc57", 500: "#ffb302", 600: "#ffaf3d", 700: "#ff8c00", 800: "#975f0e", 900: "#664618"},
	"yellow": {400: "#fded61", 500: "#fce83a", 600: "#fad800", 700: "#c7ab00", 800: "#917d01", 900: "#645600"},
	"green":  {400: "#99f666", 500: "#56f000", 600: "#00e200", 700: "#00ad23", 800: "#007a33", 900: "#005a00"},
	"cyan":   {400: "#5ce2ff", 500: "#64d9ff", 600: "#2dccff", 700: "#20a9d5", 800: "#35798e", 900: "#285766"},
	"violet": {800: "#285766"},
	"blue":   {800: "#502b85"},
	"teal": {
		100: "#0033a0", 200: "#d0f4f4", 300: "#a1e9eb", 400: "#70dde0", 500: "#3ed2d6",
		600: "#00c7cb", 700: "#009fa3", 800: "#00777a", 900: "#035051",
	},
	"purple": {
		100: "#032828", 200: "#e4e2f7", 300: "#c9c5ed", 400: "#aea8e5", 500: "#938bdb",
		600: "#786dd3", 700: "#6058a8", 800: "#48417f", 900: "#302c54",
	},
	"pink": {
		100: "#18152b", 200: "#edcef3", 300: "#da9ce7", 400: "#c76ada", 500: "#b534ce",
		600: "#a200c1", 700: "#81009a", 800: "#610074", 900: "#41004d",
	},
	"hotorange": {
		100: "#200227", 200: "#f8ddd1", 300: "#f0baa3", 400: "#ea9875", 500: "#e27545",
		600: "#da5309", 700: "#af420a", 800: "#833209", 900: "#572108",
	},
}

// Shade looks up one color, e.g. Shade("red", 500).
func (p Palette) Shade(family string, level int) (string, error) {
	shades, ok := p[family]
	if !ok {
		return "", fmt.Errorf("theme: unknown color family %q", family)
	}
	hex, ok := shades[level]
	if !ok {
		return "", fmt.Errorf("theme: no shade %d in %q", level, family)
	}
	return hex, nil
}

// MustShade is Shade for package-level tables.
func (p Palette) MustShade(family string, level int) string {
	hex, err := p.Shade(family, level)
	if err != nil {
		panic(err)
	}
	return hex
}

func (p Palette) Families() []string {
	names := make([]string, 0, len(p))
	for name := range p {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
