package balance

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

// RogFromPair estimates the radius of gyration from one pair of oscillation
// nodes flanking the center of mass: sqrt((com-near) * (far-com)). A NaN
// coordinate is outside the domain.
func RogFromPair(com, near, far float64) (float64, error) {
	d1 := com - near
	d2 := far - com
	if !(d1 >= 0 && d2 >= 0) {
		return 0, &DomainError{COM: com, Near: near, Far: far}
	}
	return math.Sqrt(d1 * d2), nil
}

// AggregateRog combines per-pair estimates with the geometric mean. Each
// pair is a multiplicative estimate of the same radius. It reports false
// when there is nothing to aggregate.
func AggregateRog(estimates []float64) (float64, bool) {
	switch len(estimates) {
	case 0:
		return 0, false
	case 1:
		return estimates[0], true
	}
	return stat.GeometricMean(estimates, nil), true
}
