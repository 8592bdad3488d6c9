// Package balance provides the static balance model of a bladed weapon.
//
// All positions live on one longitudinal axis and are expressed relative to
// the grip reference of the measured specimen:
//
//   - [Specimen]: immutable record of one weapon's measurements
//   - [RogFromPair], [AggregateRog]: radius of gyration from oscillation nodes
//   - [PivotCircle]: the balance circle for a chosen pivot ("Hudgins circle")
//   - [Calculator]: named points and circles derived from a specimen
//
// # Example
//
//	s, err := balance.NewSpecimen(m, pairs, balance.DefaultOptions())
//	if err != nil {
//	    return err
//	}
//	d := balance.NewCalculator(balance.DefaultConfig()).Derive(s)
//	for _, c := range d.Circles {
//	    x, y := c.Circle.At(0)
//	}
//
// # Failure isolation
//
// Quantities that need a radius of gyration are unavailable for a specimen
// measured without pairs, and a pivot that coincides with the center of mass
// has no finite circle. [Calculator.Derive] records both cases in
// [Derived.Skipped] and keeps going.
package balance
