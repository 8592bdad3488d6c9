package balance_test

import (
	"math"
	"slices"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/bladebalance/internal/balance"
)

func mustSpecimen(m balance.Measurements, pairs ...balance.Pair) *balance.Specimen {
	s, err := balance.NewSpecimen(m, pairs, balance.DefaultOptions())
	Expect(err).NotTo(HaveOccurred())
	return s
}

func quantities(skips []balance.Skip) []string {
	out := make([]string, len(skips))
	for i, s := range skips {
		out[i] = s.Quantity
	}
	return out
}

var _ = Describe("Calculator", func() {
	var calc *balance.Calculator

	BeforeEach(func() {
		calc = balance.NewCalculator(balance.DefaultConfig())
	})

	Describe("GripPositions", func() {
		It("steps inward from the crossguard until past the pommel margin", func() {
			cfg := balance.DefaultConfig()
			Expect(slices.Collect(cfg.GripPositions(-20))).To(Equal([]float64{0, -4.5, -9, -13.5}))
			Expect(slices.Collect(cfg.GripPositions(-5))).To(Equal([]float64{0}))
		})

		It("is empty when the pommel sits in front of the crossguard margin", func() {
			cfg := balance.DefaultConfig()
			Expect(slices.Collect(cfg.GripPositions(-1))).To(BeEmpty())
		})

		It("can be ranged over more than once", func() {
			seq := balance.DefaultConfig().GripPositions(-20)
			Expect(slices.Collect(seq)).To(Equal(slices.Collect(seq)))
		})

		It("stops early when the consumer breaks", func() {
			n := 0
			for range balance.DefaultConfig().GripPositions(-1000) {
				n++
				if n == 3 {
					break
				}
			}
			Expect(n).To(Equal(3))
		})

		It("yields nothing for a non-positive hand width", func() {
			cfg := balance.Config{HandWidth: 0}
			Expect(slices.Collect(cfg.GripPositions(-100))).To(BeEmpty())
			Expect(cfg.Validate()).To(HaveOccurred())
		})
	})

	Context("with a measured specimen", func() {
		var s *balance.Specimen

		BeforeEach(func() {
			s = mustSpecimen(crecy, balance.Pair{Near: 110, Far: 170}, balance.Pair{Near: 105, Far: 190})
		})

		It("computes the center of percussion about the grip", func() {
			rog, _ := s.ROG()
			cop, err := calc.CenterOfPercussion(s)
			Expect(err).NotTo(HaveOccurred())
			Expect(cop).To(BeNumerically("~", 30+rog*rog/(30-balance.DefaultGripOffset), 1e-12))
		})

		It("places the dynamic balance points at com +- rog", func() {
			rog, _ := s.ROG()
			dbp, err := calc.DynamicBalancePoints(s)
			Expect(err).NotTo(HaveOccurred())
			Expect(dbp).To(Equal([2]balance.Point{{X: 30, Y: rog}, {X: 30, Y: -rog}}))
		})

		It("computes the rog-around-grip pivot", func() {
			rog, _ := s.ROG()
			d := 30 - balance.DefaultGripOffset
			p, err := calc.RogGripPivot(s)
			Expect(err).NotTo(HaveOccurred())
			Expect(p).To(BeNumerically("~", math.Sqrt(d*d+rog*rog)+balance.DefaultGripOffset, 1e-12))
		})

		It("plans pivots in drawing order", func() {
			plan, err := calc.PivotPlan(s)
			Expect(err).NotTo(HaveOccurred())

			kinds := make([]balance.PivotKind, len(plan))
			for i, p := range plan {
				kinds[i] = p.Kind
			}
			Expect(kinds).To(Equal([]balance.PivotKind{
				balance.PivotGrip,
				balance.PivotRog,
				balance.PivotTip,
				balance.PivotTarget,
				balance.PivotPommel,
				balance.PivotRogGrip,
				balance.PivotMeasurement,
				balance.PivotMeasurement,
			}))
			Expect(plan[2].Position).To(Equal(800.0))
			Expect(plan[3].Position).To(Equal(800.0 + balance.DefaultTargetOffset))
			Expect(plan[4].Position).To(Equal(-5.0))
			Expect(plan[6].Position).To(Equal(10.0))
			Expect(plan[7].Position).To(Equal(5.0))
			Expect(plan[7].Index).To(Equal(1))
		})

		It("honors a configured target offset", func() {
			cfg := balance.DefaultConfig()
			cfg.TargetOffset = 250
			plan, err := balance.NewCalculator(cfg).PivotPlan(s)
			Expect(err).NotTo(HaveOccurred())
			Expect(plan[3].Kind).To(Equal(balance.PivotTarget))
			Expect(plan[3].Position).To(Equal(1050.0))
		})

		It("derives every circle and skips nothing", func() {
			d := calc.Derive(s)
			Expect(d.Skipped).To(BeEmpty())
			Expect(d.HasCOP).To(BeTrue())
			Expect(d.HasDBP).To(BeTrue())
			Expect(d.HasRogGrip).To(BeTrue())
			Expect(d.Circles).To(HaveLen(8))

			rog, _ := s.ROG()
			for _, c := range d.Circles {
				Expect(c.Circle.Residual(30, rog)).To(BeNumerically("~", 0, 1e-9*math.Max(1, c.Circle.R)))
			}

			tip, ok := d.Circle(balance.PivotTip)
			Expect(ok).To(BeTrue())
			Expect(tip.Circle.Pivot).To(Equal(800.0))
		})
	})

	Context("without pairs", func() {
		It("reports every rog-dependent quantity as skipped", func() {
			s := mustSpecimen(crecy)
			d := calc.Derive(s)

			Expect(d.HasCOP).To(BeFalse())
			Expect(d.HasDBP).To(BeFalse())
			Expect(d.Circles).To(BeEmpty())
			Expect(quantities(d.Skipped)).To(Equal([]string{
				balance.QuantityCOP,
				balance.QuantityDBP,
				balance.QuantityRogGrip,
				balance.QuantityPivotCircles,
			}))
			for _, sk := range d.Skipped {
				Expect(sk.Err).To(MatchError(balance.ErrNoRog))
			}
		})
	})

	Context("with a pivot at the center of mass", func() {
		It("omits only the degenerate circles", func() {
			// rog collapses to zero, so the rog circle, the rog-around-grip
			// circle and the measurement circle all pivot at com.
			s := mustSpecimen(crecy, balance.Pair{Near: 130, Far: 170})
			d := calc.Derive(s)

			Expect(quantities(d.Skipped)).To(ConsistOf("Radius of Gyration", "ROG around Grip", "Measurement Circle"))
			for _, sk := range d.Skipped {
				Expect(sk.Err).To(MatchError(balance.ErrDegenerateGeometry))
			}
			Expect(d.Circles).To(HaveLen(4))
			Expect(d.HasCOP).To(BeTrue())
			Expect(d.COP).To(Equal(30.0))
		})

		It("guards the center of percussion when com sits on the grip", func() {
			m := crecy
			m.CogRef = m.GripRef + balance.DefaultGripOffset
			s := mustSpecimen(m, balance.Pair{Near: 80, Far: 120})

			_, err := calc.CenterOfPercussion(s)
			Expect(err).To(MatchError(balance.ErrDegenerateGeometry))

			d := calc.Derive(s)
			Expect(quantities(d.Skipped)).To(ContainElement(balance.QuantityCOP))
			Expect(d.HasDBP).To(BeTrue())
		})
	})
})
