package balance

import (
	"errors"
	"fmt"
	"iter"
	"math"
)

const (
	DefaultTargetOffset = 100.0
	DefaultHandWidth    = 4.5
	DefaultPommelMargin = 2.0
)

// Quantity names used in Derived.Skipped.
const (
	QuantityCOP          = "center of percussion"
	QuantityDBP          = "dynamic balance points"
	QuantityRogGrip      = "rog around grip"
	QuantityPivotCircles = "pivot circles"
)

// PivotKind identifies what a pivot position represents.
type PivotKind int

const (
	PivotGrip PivotKind = iota
	PivotRog
	PivotTip
	PivotTarget
	PivotPommel
	PivotRogGrip
	PivotMeasurement
)

var pivotKindNames = map[PivotKind]string{
	PivotGrip:        "grip",
	PivotRog:         "rog",
	PivotTip:         "tip",
	PivotTarget:      "target",
	PivotPommel:      "pommel",
	PivotRogGrip:     "rog_grip",
	PivotMeasurement: "measurement",
}

func (k PivotKind) String() string {
	if n, ok := pivotKindNames[k]; ok {
		return n
	}
	return fmt.Sprintf("PivotKind(%d)", int(k))
}

// Config holds the calculator's explicit constants. TargetOffset places the
// simulated target contact beyond the tip; it is a display convention, not
// a derived physical quantity.
type Config struct {
	TargetOffset float64
	HandWidth    float64
	PommelMargin float64
}

func DefaultConfig() Config {
	return Config{
		TargetOffset: DefaultTargetOffset,
		HandWidth:    DefaultHandWidth,
		PommelMargin: DefaultPommelMargin,
	}
}

func (c Config) Validate() error {
	if !(c.HandWidth > 0) || math.IsInf(c.HandWidth, 0) {
		return fmt.Errorf("balance: hand width must be positive, got %v", c.HandWidth)
	}
	if math.IsNaN(c.TargetOffset) || math.IsNaN(c.PommelMargin) {
		return errors.New("balance: target offset and pommel margin must be numbers")
	}
	return nil
}

// GripPositions yields hand positions starting at the crossguard and
// stepping toward the pommel by HandWidth while they stay more than
// PommelMargin in front of it. The sequence is finite and can be ranged over
// any number of times.
func (c Config) GripPositions(pommel float64) iter.Seq[float64] {
	return func(yield func(float64) bool) {
		if !(c.HandWidth > 0) {
			return
		}
		limit := pommel + c.PommelMargin
		for i := 0; ; i++ {
			p := -float64(i) * c.HandWidth
			if !(p > limit) || !yield(p) {
				return
			}
		}
	}
}

// Point is a location in the balance plane.
type Point struct {
	X, Y float64
}

// NamedPivot is one pivot position of the plan. Index orders pivots of the
// same kind (grip positions, measurement pairs).
type NamedPivot struct {
	Kind     PivotKind
	Label    string
	Position float64
	Index    int
}

type NamedCircle struct {
	Pivot  NamedPivot
	Circle PivotCircle
}

// Skip records a quantity that could not be derived.
type Skip struct {
	Quantity string
	Err      error
}

// Derived collects everything computed for one specimen.
type Derived struct {
	COP        float64
	HasCOP     bool
	RogGrip    float64
	HasRogGrip bool
	DBP        [2]Point
	HasDBP     bool
	Circles    []NamedCircle
	Skipped    []Skip
}

// Circle returns the first derived circle of the given kind.
func (d *Derived) Circle(kind PivotKind) (NamedCircle, bool) {
	for _, c := range d.Circles {
		if c.Pivot.Kind == kind {
			return c, true
		}
	}
	return NamedCircle{}, false
}

// Calculator derives named points and circles from specimens.
type Calculator struct {
	cfg Config
}

func NewCalculator(cfg Config) *Calculator {
	return &Calculator{cfg: cfg}
}

func (c *Calculator) Config() Config { return c.cfg }

// CenterOfPercussion is the point struck without reaction at the grip:
// com + rog^2 / (com - grip).
func (c *Calculator) CenterOfPercussion(s *Specimen) (float64, error) {
	rog, ok := s.ROG()
	if !ok {
		return 0, ErrNoRog
	}
	if s.com == s.grip {
		return 0, &DegenerateGeometryError{Quantity: QuantityCOP, Pivot: s.grip}
	}
	return s.com + rog*rog/(s.com-s.grip), nil
}

// RogGripPivot is the pivot one grip-centered radius of gyration in front
// of the grip.
func (c *Calculator) RogGripPivot(s *Specimen) (float64, error) {
	rog, ok := s.ROG()
	if !ok {
		return 0, ErrNoRog
	}
	d := s.com - s.grip
	return math.Sqrt(d*d+rog*rog) + s.grip, nil
}

// DynamicBalancePoints returns (com, +rog) and (com, -rog).
func (c *Calculator) DynamicBalancePoints(s *Specimen) ([2]Point, error) {
	rog, ok := s.ROG()
	if !ok {
		return [2]Point{}, ErrNoRog
	}
	return [2]Point{{X: s.com, Y: rog}, {X: s.com, Y: -rog}}, nil
}

// PivotPlan lists every configured pivot in drawing order: grip positions,
// the rog circle, tip, target, pommel, rog around grip, then one pivot per
// measurement pair at its near node.
func (c *Calculator) PivotPlan(s *Specimen) ([]NamedPivot, error) {
	rog, ok := s.ROG()
	if !ok {
		return nil, ErrNoRog
	}
	rogGrip, err := c.RogGripPivot(s)
	if err != nil {
		return nil, err
	}

	var plan []NamedPivot
	i := 0
	for p := range c.cfg.GripPositions(s.pommel) {
		plan = append(plan, NamedPivot{Kind: PivotGrip, Label: "Grip Circle", Position: p, Index: i})
		i++
	}
	plan = append(plan,
		NamedPivot{Kind: PivotRog, Label: "Radius of Gyration", Position: s.com + rog},
		NamedPivot{Kind: PivotTip, Label: "Pivot at Tip", Position: s.length},
		NamedPivot{Kind: PivotTarget, Label: "Pivot at Target", Position: s.length + c.cfg.TargetOffset},
		NamedPivot{Kind: PivotPommel, Label: "Action at Pommel", Position: s.pommel},
		NamedPivot{Kind: PivotRogGrip, Label: "ROG around Grip", Position: rogGrip},
	)
	for j, pr := range s.pairs {
		plan = append(plan, NamedPivot{Kind: PivotMeasurement, Label: "Measurement Circle", Position: pr.Near, Index: j})
	}
	return plan, nil
}

// Derive computes every named quantity for s. Quantities that cannot be
// computed are listed in Skipped; one bad pivot never hides the others.
func (c *Calculator) Derive(s *Specimen) Derived {
	var d Derived

	if cop, err := c.CenterOfPercussion(s); err != nil {
		d.Skipped = append(d.Skipped, Skip{Quantity: QuantityCOP, Err: err})
	} else {
		d.COP, d.HasCOP = cop, true
	}

	if dbp, err := c.DynamicBalancePoints(s); err != nil {
		d.Skipped = append(d.Skipped, Skip{Quantity: QuantityDBP, Err: err})
	} else {
		d.DBP, d.HasDBP = dbp, true
	}

	if rg, err := c.RogGripPivot(s); err != nil {
		d.Skipped = append(d.Skipped, Skip{Quantity: QuantityRogGrip, Err: err})
	} else {
		d.RogGrip, d.HasRogGrip = rg, true
	}

	plan, err := c.PivotPlan(s)
	if err != nil {
		d.Skipped = append(d.Skipped, Skip{Quantity: QuantityPivotCircles, Err: err})
		return d
	}

	rog, _ := s.ROG()
	for _, p := range plan {
		circle, err := NewPivotCircle(s.com, rog, p.Position)
		if err != nil {
			var dg *DegenerateGeometryError
			if errors.As(err, &dg) {
				dg.Quantity = p.Label
			}
			d.Skipped = append(d.Skipped, Skip{Quantity: p.Label, Err: err})
			continue
		}
		d.Circles = append(d.Circles, NamedCircle{Pivot: p, Circle: circle})
	}
	return d
}
