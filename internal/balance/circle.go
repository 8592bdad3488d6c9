package balance

import "math"

// PivotCircle is the balance locus for one pivot position. It passes through
// both dynamic balance points (com, +-rog) and the pivot itself on the axis.
type PivotCircle struct {
	Pivot float64
	H     float64
	R     float64
}

// NewPivotCircle constructs the circle for pivot p given the center of mass
// and radius of gyration. A pivot at the center of mass has no finite
// circle.
func NewPivotCircle(com, rog, p float64) (PivotCircle, error) {
	if p == com {
		return PivotCircle{}, &DegenerateGeometryError{Pivot: p}
	}
	h := (p*p - com*com - rog*rog) / (2 * (p - com))
	dh := com - h
	return PivotCircle{
		Pivot: p,
		H:     h,
		R:     math.Sqrt(dh*dh + rog*rog),
	}, nil
}

// At evaluates the circle at angle theta (radians).
func (c PivotCircle) At(theta float64) (x, y float64) {
	return c.H + c.R*math.Cos(theta), c.R * math.Sin(theta)
}

// Conjugate is the second crossing of the axis: the point struck without
// reaction at the pivot.
func (c PivotCircle) Conjugate() float64 {
	return 2*c.H - c.Pivot
}

// Residual is the signed distance from (x, y) to the circle.
func (c PivotCircle) Residual(x, y float64) float64 {
	return math.Hypot(x-c.H, y) - c.R
}
