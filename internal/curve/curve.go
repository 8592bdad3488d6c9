package curve

import (
	"errors"
	"fmt"
	"iter"
	"math"
)

// MaxStepDeg is the coarsest angular resolution accepted by a Domain.
const MaxStepDeg = 5.0

const degToRad = math.Pi / 180.0

var (
	ErrInvalidDomain   = errors.New("curve: invalid angular domain")
	ErrInvalidViewport = errors.New("curve: invalid viewport")
)

// Parametric maps an angle in radians to a point.
type Parametric interface {
	At(theta float64) (x, y float64)
}

// Func adapts a plain function to Parametric.
type Func func(theta float64) (x, y float64)

func (f Func) At(theta float64) (x, y float64) { return f(theta) }

// Domain is an inclusive angular range in degrees.
type Domain struct {
	StartDeg float64 `yaml:"start_deg" json:"start_deg"`
	EndDeg   float64 `yaml:"end_deg" json:"end_deg"`
	StepDeg  float64 `yaml:"step_deg" json:"step_deg"`
}

// DefaultDomain is the full turn at 3 degree resolution, 121 samples.
func DefaultDomain() Domain {
	return Domain{StartDeg: -180, EndDeg: 180, StepDeg: 3}
}

func (d Domain) Validate() error {
	switch {
	case math.IsNaN(d.StartDeg) || math.IsNaN(d.EndDeg) || math.IsNaN(d.StepDeg):
		return fmt.Errorf("%w: NaN bound", ErrInvalidDomain)
	case math.IsInf(d.StartDeg, 0) || math.IsInf(d.EndDeg, 0):
		return fmt.Errorf("%w: infinite bound", ErrInvalidDomain)
	case d.StepDeg <= 0:
		return fmt.Errorf("%w: step %.3f must be positive", ErrInvalidDomain, d.StepDeg)
	case d.StepDeg > MaxStepDeg:
		return fmt.Errorf("%w: step %.3f coarser than %.0f degrees", ErrInvalidDomain, d.StepDeg, MaxStepDeg)
	case d.EndDeg < d.StartDeg:
		return fmt.Errorf("%w: end %.3f before start %.3f", ErrInvalidDomain, d.EndDeg, d.StartDeg)
	}
	return nil
}

// Len is the number of samples in the domain, end included when it falls on
// the step grid.
func (d Domain) Len() int {
	if d.Validate() != nil {
		return 0
	}
	return int(math.Floor((d.EndDeg-d.StartDeg)/d.StepDeg+1e-9)) + 1
}

// Angle returns the i-th sample angle in radians. Angles come from the
// integer index, never from accumulation, so runs are bit-reproducible.
func (d Domain) Angle(i int) float64 {
	return (d.StartDeg + float64(i)*d.StepDeg) * degToRad
}

type Sample struct {
	Theta float64
	X, Y  float64
}

// Samples yields f over d in increasing angular order.
func Samples(f Parametric, d Domain) iter.Seq[Sample] {
	return func(yield func(Sample) bool) {
		n := d.Len()
		for i := 0; i < n; i++ {
			theta := d.Angle(i)
			x, y := f.At(theta)
			if !yield(Sample{Theta: theta, X: x, Y: y}) {
				return
			}
		}
	}
}

// Viewport bounds what gets drawn. Clipping only enforces the y range and
// the x maximum; XMin is a display bound for renderers.
type Viewport struct {
	XMin float64 `yaml:"x_min" json:"x_min"`
	XMax float64 `yaml:"x_max" json:"x_max"`
	YMin float64 `yaml:"y_min" json:"y_min"`
	YMax float64 `yaml:"y_max" json:"y_max"`
}

func DefaultViewport() Viewport {
	return Viewport{XMin: -40, XMax: 120, YMin: -55, YMax: 55}
}

func (v Viewport) Validate() error {
	if !(v.YMin <= v.YMax) {
		return fmt.Errorf("%w: y range [%.2f, %.2f]", ErrInvalidViewport, v.YMin, v.YMax)
	}
	if !(v.XMin < v.XMax) {
		return fmt.Errorf("%w: x range [%.2f, %.2f]", ErrInvalidViewport, v.XMin, v.XMax)
	}
	return nil
}

func (v Viewport) Contains(x, y float64) bool {
	return y >= v.YMin && y <= v.YMax && x < v.XMax
}

// Polyline is one in-bounds run of consecutive samples.
type Polyline struct {
	Samples        []Sample
	Representative bool
}

func (p Polyline) Len() int { return len(p.Samples) }

// XY splits the samples into coordinate slices.
func (p Polyline) XY() (xs, ys []float64) {
	xs = make([]float64, len(p.Samples))
	ys = make([]float64, len(p.Samples))
	for i, s := range p.Samples {
		xs[i], ys[i] = s.X, s.Y
	}
	return xs, ys
}

// Clip samples f over d and splits the result into polylines that stay
// inside vp. A fully out-of-bounds curve yields no polylines.
func Clip(f Parametric, d Domain, vp Viewport) ([]Polyline, error) {
	if err := d.Validate(); err != nil {
		return nil, err
	}
	if err := vp.Validate(); err != nil {
		return nil, err
	}

	var out []Polyline
	var open []Sample
	flush := func() {
		if len(open) == 0 {
			return
		}
		out = append(out, Polyline{Samples: open, Representative: len(out) == 0})
		open = nil
	}

	for s := range Samples(f, d) {
		if vp.Contains(s.X, s.Y) {
			open = append(open, s)
			continue
		}
		flush()
	}
	flush()
	return out, nil
}
