// Package scene assembles the renderable geometry of one specimen: clipped
// curves, point markers, annotations and a numeric summary. Traces carry
// style keys (role and element) instead of colors; a renderer resolves them
// against a theme.
package scene

import (
	"cmp"
	"fmt"
	"slices"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/san-kum/bladebalance/internal/balance"
	"github.com/san-kum/bladebalance/internal/curve"
)

// Color roles.
const (
	RoleTarget      = "target"
	RoleTip         = "tip"
	RoleRog         = "rog"
	RolePommel      = "pommel"
	RoleRogGrip     = "rog_grip"
	RoleGrip        = "grip"
	RoleCOM         = "com"
	RoleMeasurement = "measurement"
	RoleSword       = "sword"
)

// Stroke and marker elements.
const (
	ElemGripCircle        = "grip_circle"
	ElemRogCircle         = "rog_circle"
	ElemPivotCircle       = "pivot_circle"
	ElemRogGripCircle     = "rog_grip_circle"
	ElemMeasurementCircle = "measurement_circle"
	ElemBlade             = "blade"
	ElemHilt              = "hilt"
	ElemCrossguard        = "crossguard"
	ElemRogLine           = "rog_line"
	ElemRogGripLine       = "rog_grip_line"

	ElemCOP         = "cop"
	ElemCOM         = "com"
	ElemDBP         = "dbp"
	ElemMeasurement = "measurement"
)

// CrossguardHalfWidth is the drawn half span of the crossguard.
const CrossguardHalfWidth = 10.0

// DBPLabelOffset lifts the "DBP" annotation above the upper balance point.
const DBPLabelOffset = 5.0

// Roles lists every color role a scene can emit.
var Roles = []string{RoleTarget, RoleTip, RoleRog, RolePommel, RoleRogGrip, RoleGrip, RoleCOM, RoleMeasurement, RoleSword}

type Options struct {
	Domain   curve.Domain
	Viewport curve.Viewport
	// Demo draws the static outline only.
	Demo bool
}

func DefaultOptions() Options {
	return Options{
		Domain:   curve.DefaultDomain(),
		Viewport: curve.DefaultViewport(),
	}
}

// Trace is one drawn polyline.
type Trace struct {
	Label      string          `json:"label"`
	Role       string          `json:"role"`
	Element    string          `json:"element"`
	Points     []balance.Point `json:"points"`
	ShowLegend bool            `json:"show_legend"`
	LegendRank int             `json:"legend_rank,omitempty"`
}

// Marker is a set of points drawn with one glyph style.
type Marker struct {
	Label      string          `json:"label"`
	Role       string          `json:"role"`
	Element    string          `json:"element"`
	Points     []balance.Point `json:"points"`
	ShowLegend bool            `json:"show_legend"`
	LegendRank int             `json:"legend_rank,omitempty"`
}

type Annotation struct {
	X    float64 `json:"x"`
	Y    float64 `json:"y"`
	Text string  `json:"text"`
	Role string  `json:"role"`
}

type Summary struct {
	Name   string  `json:"name"`
	Pommel float64 `json:"pommel"`
	Grip   float64 `json:"grip"`
	COM    float64 `json:"com"`
	Length float64 `json:"length"`
	Rog    float64 `json:"rog"`
	HasRog bool    `json:"has_rog"`
}

func (s Summary) String() string {
	rog := "n/a"
	if s.HasRog {
		rog = fmt.Sprintf("%.2f mm", s.Rog)
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%s:\n", s.Name)
	fmt.Fprintf(&b, "Pommel: %.2f mm\n", s.Pommel)
	fmt.Fprintf(&b, "Grip: %.2f mm\n", s.Grip)
	fmt.Fprintf(&b, "COM: %.2f mm\n", s.COM)
	fmt.Fprintf(&b, "Length: %.2f mm\n", s.Length)
	fmt.Fprintf(&b, "ROG: %s\n", rog)
	return b.String()
}

// Slug is the file-name form of a specimen name: lower case, spaces as
// underscores.
func Slug(name string) string {
	slug := cases.Lower(language.Und).String(strings.TrimSpace(name))
	return strings.ReplaceAll(slug, " ", "_")
}

// Scene is everything a renderer needs for one specimen.
type Scene struct {
	Title       string         `json:"title"`
	Viewport    curve.Viewport `json:"viewport"`
	Traces      []Trace        `json:"traces"`
	Markers     []Marker       `json:"markers"`
	Annotations []Annotation   `json:"annotations"`
	Summary     Summary        `json:"summary"`
	Skipped     []balance.Skip `json:"-"`
}

// LegendEntries returns the traces and markers shown in the legend, ordered
// by rank.
func (sc *Scene) LegendEntries() []LegendEntry {
	var out []LegendEntry
	for i, t := range sc.Traces {
		if t.ShowLegend {
			out = append(out, LegendEntry{Label: t.Label, Rank: t.LegendRank, Trace: i, Marker: -1})
		}
	}
	for i, m := range sc.Markers {
		if m.ShowLegend {
			out = append(out, LegendEntry{Label: m.Label, Rank: m.LegendRank, Trace: -1, Marker: i})
		}
	}
	slices.SortStableFunc(out, func(a, b LegendEntry) int { return cmp.Compare(a.Rank, b.Rank) })
	return out
}

// LegendEntry points at the trace or marker (the other index is -1).
type LegendEntry struct {
	Label  string
	Rank   int
	Trace  int
	Marker int
}

type circleStyle struct {
	role    string
	element string
	legend  bool
	rank    int
}

var circleStyles = map[balance.PivotKind]circleStyle{
	balance.PivotGrip:        {RoleGrip, ElemGripCircle, false, 0},
	balance.PivotRog:         {RoleRog, ElemRogCircle, true, 2},
	balance.PivotTip:         {RoleTip, ElemPivotCircle, true, 6},
	balance.PivotTarget:      {RoleTarget, ElemPivotCircle, true, 3},
	balance.PivotPommel:      {RolePommel, ElemPivotCircle, true, 5},
	balance.PivotRogGrip:     {RoleRogGrip, ElemRogGripCircle, true, 1},
	balance.PivotMeasurement: {RoleMeasurement, ElemMeasurementCircle, false, 0},
}

const (
	rankMeasurements = 4
	rankCOP          = 7
	rankCOM          = 8
)

// Build lays out the scene for s from its derived quantities.
func Build(s *balance.Specimen, d balance.Derived, opts Options) (*Scene, error) {
	if err := opts.Domain.Validate(); err != nil {
		return nil, err
	}
	if err := opts.Viewport.Validate(); err != nil {
		return nil, err
	}

	rog, hasRog := s.ROG()
	sc := &Scene{
		Title:    "Dynamic Balance Point - " + s.Name(),
		Viewport: opts.Viewport,
		Summary: Summary{
			Name:   s.Name(),
			Pommel: s.Pommel(),
			Grip:   s.Grip(),
			COM:    s.COM(),
			Length: s.Length(),
			Rog:    rog,
			HasRog: hasRog,
		},
		Skipped: d.Skipped,
	}

	sc.addOutline(s)
	if opts.Demo {
		return sc, nil
	}

	for _, c := range d.Circles {
		if err := sc.addCircle(c, opts); err != nil {
			return nil, err
		}
	}

	if d.HasCOP {
		sc.Markers = append(sc.Markers, Marker{
			Label: "Center of Percussion", Role: RoleGrip, Element: ElemCOP,
			Points:     []balance.Point{{X: d.COP, Y: 0}},
			ShowLegend: true, LegendRank: rankCOP,
		})
	}

	if hasRog {
		sc.Traces = append(sc.Traces, Trace{
			Label: "ROG Grip Line", Role: RoleRogGrip, Element: ElemRogGripLine,
			Points: []balance.Point{{X: s.Grip(), Y: 0}, {X: s.COM(), Y: -rog}},
		})
	}

	for i, p := range s.Pairs() {
		sc.Markers = append(sc.Markers, Marker{
			Label: "Measurements", Role: RoleMeasurement, Element: ElemMeasurement,
			Points:     []balance.Point{{X: p.Near, Y: 0}, {X: p.Far, Y: 0}},
			ShowLegend: i == 0, LegendRank: rankMeasurements,
		})
	}

	sc.Markers = append(sc.Markers, Marker{
		Label: "Center of Mass", Role: RoleCOM, Element: ElemCOM,
		Points:     []balance.Point{{X: s.COM(), Y: 0}},
		ShowLegend: true, LegendRank: rankCOM,
	})

	if d.HasDBP {
		sc.Traces = append(sc.Traces, Trace{
			Label: "ROG Line", Role: RoleRog, Element: ElemRogLine,
			Points: []balance.Point{{X: s.COM(), Y: 0}, {X: s.COM(), Y: rog}},
		})
		sc.Markers = append(sc.Markers, Marker{
			Label: "Dynamic Balance Points", Role: RoleRog, Element: ElemDBP,
			Points: []balance.Point{d.DBP[0], d.DBP[1]},
		})
		sc.Annotations = append(sc.Annotations, Annotation{
			X: d.DBP[0].X, Y: d.DBP[0].Y + DBPLabelOffset, Text: "DBP", Role: RoleRog,
		})
	}

	return sc, nil
}

func (sc *Scene) addOutline(s *balance.Specimen) {
	sc.Traces = append(sc.Traces,
		Trace{
			Label: "Blade", Role: RoleSword, Element: ElemBlade,
			Points: []balance.Point{{X: 0, Y: 0}, {X: s.Length(), Y: 0}},
		},
		Trace{
			Label: "Hilt", Role: RoleSword, Element: ElemHilt,
			Points: []balance.Point{{X: s.Pommel(), Y: 0}, {X: 0, Y: 0}},
		},
		Trace{
			Label: "Crossguard", Role: RoleSword, Element: ElemCrossguard,
			Points: []balance.Point{{X: 0, Y: -CrossguardHalfWidth}, {X: 0, Y: CrossguardHalfWidth}},
		},
	)
}

func (sc *Scene) addCircle(c balance.NamedCircle, opts Options) error {
	style, ok := circleStyles[c.Pivot.Kind]
	if !ok {
		return fmt.Errorf("scene: no style for pivot kind %v", c.Pivot.Kind)
	}
	lines, err := curve.Clip(c.Circle, opts.Domain, opts.Viewport)
	if err != nil {
		return err
	}
	for _, l := range lines {
		pts := make([]balance.Point, len(l.Samples))
		for i, s := range l.Samples {
			pts[i] = balance.Point{X: s.X, Y: s.Y}
		}
		sc.Traces = append(sc.Traces, Trace{
			Label:      c.Pivot.Label,
			Role:       style.role,
			Element:    style.element,
			Points:     pts,
			ShowLegend: style.legend && l.Representative,
			LegendRank: style.rank,
		})
	}
	return nil
}
