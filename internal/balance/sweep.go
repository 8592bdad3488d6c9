package balance

import (
	"errors"
	"fmt"
	"math"
)

// MaxSweepPoints bounds the number of pivots a single sweep evaluates.
const MaxSweepPoints = 10000

// SweepPoint pairs a pivot with its conjugate point.
type SweepPoint struct {
	Pivot     float64
	Conjugate float64
}

// PercussionSweep moves the pivot from the pommel to the crossguard in
// steps of step and reports the conjugate point of each pivot. With the
// pivot in the hand the conjugate point is the center of percussion.
// Degenerate pivots are left out. Sweeps needing more than MaxSweepPoints
// pivots are refused.
func (c *Calculator) PercussionSweep(s *Specimen, step float64) ([]SweepPoint, error) {
	if !(step > 0) {
		return nil, fmt.Errorf("balance: sweep step must be positive, got %v", step)
	}
	rog, ok := s.ROG()
	if !ok {
		return nil, ErrNoRog
	}

	if math.IsNaN(s.pommel) || math.IsInf(s.pommel, 0) || s.pommel > 0 {
		return nil, fmt.Errorf("%w: pommel at %v", ErrSweepRange, s.pommel)
	}
	span := math.Floor(-s.pommel / step)
	if span >= MaxSweepPoints {
		return nil, fmt.Errorf("%w: step %v over %v needs more than %d points", ErrSweepRange, step, -s.pommel, MaxSweepPoints)
	}

	n := int(span) + 1
	out := make([]SweepPoint, 0, n)
	for i := range n {
		p := s.pommel + float64(i)*step
		if p > 0 {
			break
		}
		pc, err := NewPivotCircle(s.com, rog, p)
		if errors.Is(err, ErrDegenerateGeometry) {
			continue
		}
		if err != nil {
			return nil, err
		}
		out = append(out, SweepPoint{Pivot: p, Conjugate: pc.Conjugate()})
	}
	return out, nil
}
