package eigen_test

import (
	"context"
	"errors"
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/schrodsim/internal/dynamo"
	"github.com/san-kum/schrodsim/internal/eigen"
	"github.com/san-kum/schrodsim/internal/potential"
	"github.com/san-kum/schrodsim/internal/shooting"
)

// levels of an infinite well of width 10 with ħ²/m = 1
func analytic(n int) float64 {
	return float64(n*n) * math.Pi * math.Pi / 200.0
}

func interiorNodes(psi []float64) int {
	nodes := 0
	for i := 2; i < len(psi)-1; i++ {
		if (psi[i-1] < 0) != (psi[i] < 0) {
			nodes++
		}
	}
	return nodes
}

var _ = Describe("Square well search", func() {
	var profile *potential.Profile

	BeforeEach(func() {
		var err error
		profile, err = potential.Build(potential.NewSquareWell(), potential.Grid{XMin: 0, XMax: 10, Step: 0.01})
		Expect(err).NotTo(HaveOccurred())
	})

	It("finds converged states between 10 and 500 with RK4", func() {
		sols, err := eigen.FindEigenstates(context.Background(), profile, eigen.Sweep{EMin: 10, EMax: 500, EStep: 5}, shooting.RK4)
		Expect(err).NotTo(HaveOccurred())
		Expect(sols).NotTo(BeEmpty())

		within := 0
		for i, s := range sols {
			Expect(s.Energy).To(BeNumerically(">=", 10))
			Expect(s.Energy).To(BeNumerically("<=", 500))
			Expect(s.Wavefunction).To(HaveLen(profile.Len()))
			Expect(s.Positions).To(HaveLen(profile.Len()))
			if i > 0 {
				Expect(s.Energy).To(BeNumerically(">", sols[i-1].Energy))
			}
			if s.WithinTolerance(1e-3) {
				within++
			}
		}
		Expect(within).To(BeNumerically(">=", 1))
	})

	It("reproduces the lowest analytic levels", func() {
		sols, err := eigen.FindEigenstates(context.Background(), profile, eigen.Sweep{EMin: 0.01, EMax: 1, EStep: 0.01}, shooting.RK4)
		Expect(err).NotTo(HaveOccurred())
		Expect(sols).To(HaveLen(4))

		for i, s := range sols {
			Expect(s.Energy).To(BeNumerically("~", analytic(i+1), 1e-3))
			Expect(interiorNodes(s.Wavefunction)).To(Equal(i))
		}
	})

	It("keeps accepted energies at least the dedup tolerance apart", func() {
		sols, err := eigen.FindEigenstates(context.Background(), profile, eigen.Sweep{EMin: 0.01, EMax: 3, EStep: 0.01}, shooting.RK4)
		Expect(err).NotTo(HaveOccurred())
		for i := 1; i < len(sols); i++ {
			Expect(sols[i].Energy - sols[i-1].Energy).To(BeNumerically(">=", eigen.DefaultDedupTolerance))
		}
	})

	It("returns no states for a sweep below the well floor", func() {
		sols, err := eigen.FindEigenstates(context.Background(), profile, eigen.Sweep{EMin: -5, EMax: -0.5, EStep: 0.5}, shooting.RK4)
		Expect(err).NotTo(HaveOccurred())
		Expect(sols).To(BeEmpty())
	})

	It("rejects an invalid sweep before integrating", func() {
		_, err := eigen.FindEigenstates(context.Background(), profile, eigen.Sweep{EMin: 10, EMax: 5, EStep: 1}, shooting.RK4)
		Expect(errors.Is(err, dynamo.ErrParameterBounds)).To(BeTrue())

		_, err = eigen.FindEigenstates(context.Background(), profile, eigen.Sweep{EMin: 0, EMax: 5, EStep: 0}, shooting.RK4)
		Expect(errors.Is(err, dynamo.ErrParameterBounds)).To(BeTrue())
	})

	It("stops when the context is canceled", func() {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := eigen.FindEigenstates(ctx, profile, eigen.Sweep{EMin: 10, EMax: 500, EStep: 5}, shooting.RK4)
		Expect(errors.Is(err, dynamo.ErrContextCanceled)).To(BeTrue())
	})

	Context("comparing schemes", func() {
		It("agrees between Euler and RK4 at low energy, with RK4 closer", func() {
			// ground state of the continuum problem
			e := analytic(1)
			euler, err := shooting.Integrate(profile, e, shooting.Euler)
			Expect(err).NotTo(HaveOccurred())
			rk4, err := shooting.Integrate(profile, e, shooting.RK4)
			Expect(err).NotTo(HaveOccurred())

			Expect(euler.Boundary).To(BeNumerically("~", rk4.Boundary, 1e-2))
			Expect(math.Abs(rk4.Boundary)).To(BeNumerically("<", math.Abs(euler.Boundary)))
		})
	})
})
