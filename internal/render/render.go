// Package render draws a scene to an image or vector file with gonum/plot.
package render

import (
	"errors"
	"fmt"
	"image/color"
	"io"
	"os"
	"path/filepath"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/san-kum/bladebalance/internal/balance"
	"github.com/san-kum/bladebalance/internal/curve"
	"github.com/san-kum/bladebalance/internal/scene"
	"github.com/san-kum/bladebalance/internal/theme"
)

var ErrUnsupportedFormat = errors.New("render: unsupported format")

// Formats lists the file formats Render can write.
var Formats = []string{"png", "svg", "pdf", "jpg"}

const (
	DefaultWidth  = 800
	DefaultHeight = 550

	// dpi used by gonum/plot raster canvases.
	dpi = 96
)

type Options struct {
	Width  int
	Height int
	Format string
}

func DefaultOptions() Options {
	return Options{Width: DefaultWidth, Height: DefaultHeight, Format: "png"}
}

func (o Options) Validate() error {
	if o.Width <= 0 || o.Height <= 0 {
		return fmt.Errorf("render: size must be positive, got %dx%d", o.Width, o.Height)
	}
	if !supported(o.Format) {
		return fmt.Errorf("%w: %q", ErrUnsupportedFormat, o.Format)
	}
	return nil
}

func supported(format string) bool {
	for _, f := range Formats {
		if f == format {
			return true
		}
	}
	return false
}

// FileName is the output name for a specimen plot.
func FileName(specimen, format string) string {
	return scene.Slug(specimen) + "_sword_plot." + format
}

// plotArea fills the viewport so the data area stands apart from the paper.
func plotArea(vp curve.Viewport, c color.Color) (*plotter.Polygon, error) {
	rect := plotter.XYs{
		{X: vp.XMin, Y: vp.YMin},
		{X: vp.XMax, Y: vp.YMin},
		{X: vp.XMax, Y: vp.YMax},
		{X: vp.XMin, Y: vp.YMax},
	}
	poly, err := plotter.NewPolygon(rect)
	if err != nil {
		return nil, fmt.Errorf("render: plot area: %w", err)
	}
	poly.Color = c
	poly.LineStyle.Width = 0
	return poly, nil
}

func pixels(px int) vg.Length {
	return vg.Length(px) * vg.Inch / dpi
}

// Plot builds the gonum plot for sc.
func Plot(sc *scene.Scene, th theme.Theme) (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = sc.Title
	p.BackgroundColor = th.Color(theme.Paper)
	p.Title.TextStyle.Color = th.Color(theme.Font)

	vp := sc.Viewport
	p.X.Min, p.X.Max = vp.XMin, vp.XMax
	p.Y.Min, p.Y.Max = vp.YMin, vp.YMax
	p.X.Label.Text = "mm"
	for _, ax := range []*plot.Axis{&p.X, &p.Y} {
		ax.LineStyle.Color = th.Color(theme.Axis)
		ax.Label.TextStyle.Color = th.Color(theme.Font)
		ax.Tick.Label.Color = th.Color(theme.Font)
		ax.Tick.LineStyle.Color = th.Color(theme.Axis)
	}

	area, err := plotArea(vp, th.Color(theme.Background))
	if err != nil {
		return nil, err
	}
	p.Add(area)

	grid := plotter.NewGrid()
	grid.Vertical.Color = th.Color(theme.Grid)
	grid.Horizontal.Color = th.Color(theme.Grid)
	p.Add(grid)

	lines := make([]*plotter.Line, len(sc.Traces))
	for i, t := range sc.Traces {
		st := th.Stroke(t.Element)
		xys := toXYs(t.Points)
		if st.Halo > 0 {
			halo, err := plotter.NewLine(xys)
			if err != nil {
				return nil, fmt.Errorf("render: %s halo: %w", t.Label, err)
			}
			halo.LineStyle.Color = th.Color(theme.Background)
			halo.LineStyle.Width = vg.Points(st.Width + st.Halo)
			p.Add(halo)
		}
		l, err := plotter.NewLine(xys)
		if err != nil {
			return nil, fmt.Errorf("render: %s: %w", t.Label, err)
		}
		l.LineStyle.Color = th.Color(t.Role)
		l.LineStyle.Width = vg.Points(st.Width)
		l.LineStyle.Dashes = dashes(st.Dash)
		p.Add(l)
		lines[i] = l
	}

	scatters := make([]*plotter.Scatter, len(sc.Markers))
	for i, m := range sc.Markers {
		mk := th.Marker(m.Element)
		xys := toXYs(m.Points)
		if mk.Halo > 0 {
			halo, err := plotter.NewScatter(xys)
			if err != nil {
				return nil, fmt.Errorf("render: %s halo: %w", m.Label, err)
			}
			halo.GlyphStyle.Color = th.Color(theme.Background)
			halo.GlyphStyle.Radius = vg.Points(mk.Halo / 2)
			halo.GlyphStyle.Shape = draw.CircleGlyph{}
			p.Add(halo)
		}
		s, err := plotter.NewScatter(xys)
		if err != nil {
			return nil, fmt.Errorf("render: %s: %w", m.Label, err)
		}
		s.GlyphStyle.Color = th.Color(m.Role)
		s.GlyphStyle.Radius = vg.Points(mk.Size / 2)
		s.GlyphStyle.Shape = draw.CircleGlyph{}
		p.Add(s)
		scatters[i] = s
	}

	if len(sc.Annotations) > 0 {
		lbl := plotter.XYLabels{
			XYs:    make(plotter.XYs, len(sc.Annotations)),
			Labels: make([]string, len(sc.Annotations)),
		}
		for i, a := range sc.Annotations {
			lbl.XYs[i] = plotter.XY{X: a.X, Y: a.Y}
			lbl.Labels[i] = a.Text
		}
		labels, err := plotter.NewLabels(lbl)
		if err != nil {
			return nil, fmt.Errorf("render: annotations: %w", err)
		}
		for i, a := range sc.Annotations {
			labels.TextStyle[i].Color = th.Color(a.Role)
		}
		p.Add(labels)
	}

	p.Legend.Top = true
	p.Legend.TextStyle.Color = th.Color(theme.Font)
	for _, e := range sc.LegendEntries() {
		if e.Trace >= 0 {
			p.Legend.Add(e.Label, lines[e.Trace])
		} else {
			p.Legend.Add(e.Label, scatters[e.Marker])
		}
	}

	return p, nil
}

// WriteTo renders sc into w.
func WriteTo(w io.Writer, sc *scene.Scene, th theme.Theme, opts Options) error {
	if err := opts.Validate(); err != nil {
		return err
	}
	p, err := Plot(sc, th)
	if err != nil {
		return err
	}
	wt, err := p.WriterTo(pixels(opts.Width), pixels(opts.Height), opts.Format)
	if err != nil {
		return fmt.Errorf("render: %w", err)
	}
	_, err = wt.WriteTo(w)
	return err
}

// Save renders sc into dir and returns the written path.
func Save(dir string, sc *scene.Scene, th theme.Theme, opts Options) (string, error) {
	if err := opts.Validate(); err != nil {
		return "", err
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", err
	}
	path := filepath.Join(dir, FileName(sc.Summary.Name, opts.Format))
	f, err := os.Create(path)
	if err != nil {
		return "", err
	}
	if err := WriteTo(f, sc, th, opts); err != nil {
		f.Close()
		return "", err
	}
	return path, f.Close()
}

func toXYs(pts []balance.Point) plotter.XYs {
	xys := make(plotter.XYs, len(pts))
	for i, p := range pts {
		xys[i] = plotter.XY{X: p.X, Y: p.Y}
	}
	return xys
}

func dashes(d []float64) []vg.Length {
	if len(d) == 0 {
		return nil
	}
	out := make([]vg.Length, len(d))
	for i, v := range d {
		out[i] = vg.Points(v)
	}
	return out
}
