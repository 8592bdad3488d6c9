package balance

import (
	"errors"
	"fmt"
)

var (
	// ErrDomain indicates a measurement pair that does not straddle the
	// center of mass, so its radius of gyration radicand is negative.
	ErrDomain = errors.New("balance: pair does not straddle center of mass")

	// ErrDegenerateGeometry indicates a pivot (or grip) at the center of mass.
	ErrDegenerateGeometry = errors.New("balance: pivot coincides with center of mass")

	// ErrNoRog indicates a quantity that needs a radius of gyration on a
	// specimen measured without pairs.
	ErrNoRog = errors.New("balance: radius of gyration unavailable")

	// ErrSweepRange indicates a percussion sweep that would produce no
	// points or more than MaxSweepPoints.
	ErrSweepRange = errors.New("balance: sweep range out of bounds")

	// ErrInvalidPolicy indicates an unknown pair policy.
	ErrInvalidPolicy = errors.New("balance: unknown pair policy")
)

// DomainError wraps ErrDomain with the offending pair.
type DomainError struct {
	COM  float64
	Near float64
	Far  float64
}

func (e *DomainError) Error() string {
	return fmt.Sprintf("%v: near=%.3f com=%.3f far=%.3f", ErrDomain, e.Near, e.COM, e.Far)
}

func (e *DomainError) Unwrap() error {
	return ErrDomain
}

// DegenerateGeometryError wraps ErrDegenerateGeometry with the pivot used.
type DegenerateGeometryError struct {
	Quantity string
	Pivot    float64
}

func (e *DegenerateGeometryError) Error() string {
	if e.Quantity == "" {
		return fmt.Sprintf("%v: pivot=%.3f", ErrDegenerateGeometry, e.Pivot)
	}
	return fmt.Sprintf("%v: %s (pivot=%.3f)", ErrDegenerateGeometry, e.Quantity, e.Pivot)
}

func (e *DegenerateGeometryError) Unwrap() error {
	return ErrDegenerateGeometry
}
