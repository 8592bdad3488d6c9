package viz

import (
	"math"

	"github.com/san-kum/bladebalance/internal/balance"
	"github.com/san-kum/bladebalance/internal/curve"
	"github.com/san-kum/bladebalance/internal/scene"
)

// Projection maps balance-plane coordinates onto canvas sub-pixels, y up.
type Projection struct {
	Viewport curve.Viewport
	SubW     int
	SubH     int
}

func (p Projection) Point(x, y float64) (int, int) {
	vp := p.Viewport
	px := scale(x-vp.XMin, vp.XMax-vp.XMin, p.SubW)
	py := scale(vp.YMax-y, vp.YMax-vp.YMin, p.SubH)
	return px, py
}

func scale(v, span float64, n int) int {
	if span <= 0 || n <= 1 {
		return 0
	}
	return int(math.Round(v / span * float64(n-1)))
}

// DrawScene plots the traces, markers and annotations of sc on a w x h cell
// canvas.
func DrawScene(sc *scene.Scene, w, h int) *Canvas {
	c := NewCanvas(w, h)
	proj := Projection{Viewport: sc.Viewport, SubW: c.SubWidth(), SubH: c.SubHeight()}

	for _, t := range sc.Traces {
		drawPolyline(c, proj, t.Points, t.Role)
	}
	for _, m := range sc.Markers {
		for _, p := range m.Points {
			x, y := proj.Point(p.X, p.Y)
			c.Set(x, y, m.Role)
			c.Set(x-1, y, m.Role)
			c.Set(x+1, y, m.Role)
			c.Set(x, y-1, m.Role)
			c.Set(x, y+1, m.Role)
		}
	}
	for _, a := range sc.Annotations {
		x, y := proj.Point(a.X, a.Y)
		c.Text(x/2, y/4, a.Text, a.Role)
	}
	return c
}

func drawPolyline(c *Canvas, proj Projection, pts []balance.Point, role string) {
	if len(pts) == 1 {
		x, y := proj.Point(pts[0].X, pts[0].Y)
		c.Set(x, y, role)
		return
	}
	for i := 1; i < len(pts); i++ {
		x0, y0 := proj.Point(pts[i-1].X, pts[i-1].Y)
		x1, y1 := proj.Point(pts[i].X, pts[i].Y)
		c.DrawLine(x0, y0, x1, y1, role)
	}
}
