package experiment

import (
	"context"
	"log/slog"
	"math"

	"golang.org/x/sync/errgroup"

	"github.com/san-kum/schrodsim/internal/shooting"
	"github.com/san-kum/schrodsim/internal/store"
)

type Comparison struct {
	Scheme shooting.Scheme
	Result *store.Result
}

// Compare runs the same request once per scheme, concurrently. The first
// failure cancels the others.
func Compare(ctx context.Context, req Request, schemes []shooting.Scheme, logger *slog.Logger) ([]Comparison, error) {
	g, ctx := errgroup.WithContext(ctx)
	out := make([]Comparison, len(schemes))

	for i, scheme := range schemes {
		g.Go(func() error {
			r := req
			r.Scheme = scheme
			res, err := New(r, logger).Run(ctx)
			if err != nil {
				return err
			}
			out[i] = Comparison{Scheme: scheme, Result: res}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

type Pair struct {
	Reference float64
	Other     float64
	Found     bool
}

func (p Pair) Delta() float64 {
	if !p.Found {
		return math.NaN()
	}
	return p.Other - p.Reference
}

// Align matches every reference energy to the nearest other energy within tol.
func Align(reference, other []float64, tol float64) []Pair {
	pairs := make([]Pair, len(reference))
	for i, e := range reference {
		pairs[i] = Pair{Reference: e}
		best := math.Inf(1)
		for _, o := range other {
			if d := math.Abs(o - e); d <= tol && d < best {
				best = d
				pairs[i].Other = o
				pairs[i].Found = true
			}
		}
	}
	return pairs
}
