package balance_test

import (
	"errors"
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/bladebalance/internal/balance"
)

var crecy = balance.Measurements{
	Name:     "Reference",
	Mass:     800,
	GripRef:  100,
	CogRef:   130,
	HiltExt:  95,
	BladeExt: 900,
	LeverRef: 140,
}

var _ = Describe("Specimen", func() {
	It("derives grip-relative positions from raw readings", func() {
		s, err := balance.NewSpecimen(crecy, nil, balance.DefaultOptions())
		Expect(err).NotTo(HaveOccurred())

		Expect(s.COM()).To(Equal(30.0))
		Expect(s.Length()).To(Equal(800.0))
		Expect(s.Pommel()).To(Equal(-5.0))
		Expect(s.Lever()).To(Equal(40.0))
		Expect(s.Grip()).To(Equal(balance.DefaultGripOffset))
		Expect(s.Mass()).To(Equal(800.0))
	})

	It("leaves rog absent without pairs", func() {
		s, err := balance.NewSpecimen(crecy, nil, balance.DefaultOptions())
		Expect(err).NotTo(HaveOccurred())

		_, ok := s.ROG()
		Expect(ok).To(BeFalse())
		Expect(s.Pairs()).To(BeEmpty())
		Expect(s.String()).To(ContainSubstring("rog=n/a"))
	})

	It("stores pairs relative to the grip reference", func() {
		s, err := balance.NewSpecimen(crecy, []balance.Pair{{Near: 110, Far: 170}}, balance.DefaultOptions())
		Expect(err).NotTo(HaveOccurred())

		Expect(s.Pairs()).To(Equal([]balance.Pair{{Near: 10, Far: 70}}))
		rog, ok := s.ROG()
		Expect(ok).To(BeTrue())
		Expect(rog).To(BeNumerically("~", math.Sqrt(20*40), 1e-12))
	})

	It("aggregates several pairs with the geometric mean", func() {
		m := balance.Measurements{Name: "gm", CogRef: 5}
		pairs := []balance.Pair{{Near: -20, Far: 30}, {Near: -25, Far: 35}}

		s, err := balance.NewSpecimen(m, pairs, balance.DefaultOptions())
		Expect(err).NotTo(HaveOccurred())

		rog, ok := s.ROG()
		Expect(ok).To(BeTrue())
		Expect(rog).To(BeNumerically("~", 27.386, 1e-3))
		Expect(rog).To(BeNumerically("~", math.Sqrt(25*30), 1e-9))
	})

	It("does not expose its internal pair slice", func() {
		s, err := balance.NewSpecimen(crecy, []balance.Pair{{Near: 110, Far: 170}}, balance.DefaultOptions())
		Expect(err).NotTo(HaveOccurred())

		pairs := s.Pairs()
		pairs[0].Near = 999
		Expect(s.Pairs()[0].Near).To(Equal(10.0))
	})

	Context("with a pair that does not straddle the center of mass", func() {
		bad := []balance.Pair{{Near: 110, Far: 170}, {Near: 140, Far: 170}}

		It("rejects the specimen by default", func() {
			s, err := balance.NewSpecimen(crecy, bad, balance.DefaultOptions())
			Expect(s).To(BeNil())
			Expect(err).To(MatchError(balance.ErrDomain))

			var de *balance.DomainError
			Expect(errors.As(err, &de)).To(BeTrue())
			Expect(de.Near).To(Equal(40.0))
		})

		It("drops and records the pair under the drop policy", func() {
			opts := balance.DefaultOptions()
			opts.PairPolicy = balance.PolicyDrop

			s, err := balance.NewSpecimen(crecy, bad, opts)
			Expect(err).NotTo(HaveOccurred())
			Expect(s.Pairs()).To(HaveLen(1))

			dropped := s.DroppedPairs()
			Expect(dropped).To(HaveLen(1))
			Expect(dropped[0].Pair).To(Equal(balance.Pair{Near: 40, Far: 70}))
			Expect(dropped[0].Err).To(MatchError(balance.ErrDomain))

			rog, ok := s.ROG()
			Expect(ok).To(BeTrue())
			Expect(rog).To(BeNumerically("~", math.Sqrt(800), 1e-12))
		})

		It("leaves rog absent when every pair is dropped", func() {
			opts := balance.DefaultOptions()
			opts.PairPolicy = balance.PolicyDrop

			s, err := balance.NewSpecimen(crecy, bad[1:], opts)
			Expect(err).NotTo(HaveOccurred())
			_, ok := s.ROG()
			Expect(ok).To(BeFalse())
		})
	})

	It("rejects an unknown pair policy", func() {
		opts := balance.DefaultOptions()
		opts.PairPolicy = "clamp"

		_, err := balance.NewSpecimen(crecy, nil, opts)
		Expect(err).To(MatchError(balance.ErrInvalidPolicy))
	})
})
