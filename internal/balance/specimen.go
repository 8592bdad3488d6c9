package balance

import (
	"fmt"
	"math"
	"slices"
)

// DefaultGripOffset approximates the middle of the hand, relative to the
// grip reference. It is the same for every specimen.
const DefaultGripOffset = -4.5

// PairPolicy decides what happens to a pair that fails estimation.
type PairPolicy string

const (
	// PolicyReject fails the whole specimen on the first invalid pair.
	PolicyReject PairPolicy = "reject"
	// PolicyDrop excludes the invalid pair and records it on the specimen.
	PolicyDrop PairPolicy = "drop"
)

// Measurements are the raw inputs of one specimen. Positions are absolute
// readings along the specimen's longitudinal axis.
type Measurements struct {
	Name     string
	Mass     float64
	GripRef  float64
	CogRef   float64
	HiltExt  float64
	BladeExt float64
	LeverRef float64
}

// Pair is one pair of equal-period oscillation nodes.
type Pair struct {
	Near float64
	Far  float64
}

// DroppedPair is a grip-relative pair excluded under PolicyDrop.
type DroppedPair struct {
	Pair Pair
	Err  error
}

type Options struct {
	GripOffset float64
	PairPolicy PairPolicy
}

func DefaultOptions() Options {
	return Options{
		GripOffset: DefaultGripOffset,
		PairPolicy: PolicyReject,
	}
}

func (o Options) Validate() error {
	switch o.PairPolicy {
	case PolicyReject, PolicyDrop:
	default:
		return fmt.Errorf("%w: %q", ErrInvalidPolicy, o.PairPolicy)
	}
	if math.IsNaN(o.GripOffset) || math.IsInf(o.GripOffset, 0) {
		return fmt.Errorf("balance: grip offset must be finite, got %v", o.GripOffset)
	}
	return nil
}

// Specimen is the immutable balance record of one weapon. Derived positions
// are relative to the grip reference.
type Specimen struct {
	raw     Measurements
	grip    float64
	length  float64
	com     float64
	pommel  float64
	lever   float64
	pairs   []Pair
	dropped []DroppedPair
	rog     float64
	hasRog  bool
}

// NewSpecimen derives a specimen from raw measurements and raw (absolute)
// oscillation node pairs. The radius of gyration is the geometric mean of
// the per-pair estimates and is absent when no pair survives.
func NewSpecimen(m Measurements, rawPairs []Pair, opts Options) (*Specimen, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	s := &Specimen{
		raw:    m,
		grip:   opts.GripOffset,
		length: m.BladeExt - m.GripRef,
		com:    m.CogRef - m.GripRef,
		pommel: m.HiltExt - m.GripRef,
		lever:  m.LeverRef - m.GripRef,
	}

	estimates := make([]float64, 0, len(rawPairs))
	for _, p := range rawPairs {
		rel := Pair{Near: p.Near - m.GripRef, Far: p.Far - m.GripRef}
		est, err := RogFromPair(s.com, rel.Near, rel.Far)
		if err != nil {
			if opts.PairPolicy == PolicyDrop {
				s.dropped = append(s.dropped, DroppedPair{Pair: rel, Err: err})
				continue
			}
			return nil, fmt.Errorf("specimen %q: %w", m.Name, err)
		}
		s.pairs = append(s.pairs, rel)
		estimates = append(estimates, est)
	}

	s.rog, s.hasRog = AggregateRog(estimates)
	return s, nil
}

func (s *Specimen) Name() string               { return s.raw.Name }
func (s *Specimen) Mass() float64              { return s.raw.Mass }
func (s *Specimen) Measurements() Measurements { return s.raw }

// Grip is the fixed mid-hand offset, not a measured value.
func (s *Specimen) Grip() float64 { return s.grip }

// Length is the blade tip extent.
func (s *Specimen) Length() float64 { return s.length }

// COM is the center of mass.
func (s *Specimen) COM() float64 { return s.com }

// Pommel is the rear extent of the hilt.
func (s *Specimen) Pommel() float64 { return s.pommel }

func (s *Specimen) Lever() float64 { return s.lever }

// Pairs returns a copy of the grip-relative pairs that contributed to ROG.
func (s *Specimen) Pairs() []Pair { return slices.Clone(s.pairs) }

// DroppedPairs returns the pairs excluded under PolicyDrop.
func (s *Specimen) DroppedPairs() []DroppedPair { return slices.Clone(s.dropped) }

// ROG returns the radius of gyration and whether it is known.
func (s *Specimen) ROG() (float64, bool) { return s.rog, s.hasRog }

func (s *Specimen) String() string {
	rog := "n/a"
	if s.hasRog {
		rog = fmt.Sprintf("%.2f", s.rog)
	}
	return fmt.Sprintf("%s (com=%.2f length=%.2f pommel=%.2f rog=%s)", s.raw.Name, s.com, s.length, s.pommel, rog)
}
