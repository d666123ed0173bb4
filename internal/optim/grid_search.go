// Package optim searches calculation parameters for the best value of a
// search metric.
package optim

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/san-kum/schrodsim/internal/experiment"
	"github.com/san-kum/schrodsim/internal/metrics"
)

var setters = map[string]func(*experiment.Request, float64){
	"x_min":    func(r *experiment.Request, v float64) { r.Grid.XMin = v },
	"x_max":    func(r *experiment.Request, v float64) { r.Grid.XMax = v },
	"x_step":   func(r *experiment.Request, v float64) { r.Grid.Step = v },
	"e_step":   func(r *experiment.Request, v float64) { r.Sweep.EStep = v },
	"psi":      func(r *experiment.Request, v float64) { r.Options.PsiPrecision = v },
	"interval": func(r *experiment.Request, v float64) { r.Options.IntervalPrecision = v },
	"dedup":    func(r *experiment.Request, v float64) { r.Options.DedupTolerance = v },
}

func Params() []string {
	names := make([]string, 0, len(setters))
	for k := range setters {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

type GridSearch struct {
	paramNames []string
	ranges     [][]float64
}

func NewGridSearch(params []string, ranges [][]float64) (*GridSearch, error) {
	if len(params) != len(ranges) {
		return nil, fmt.Errorf("%d parameters but %d ranges", len(params), len(ranges))
	}
	for i, p := range params {
		if _, ok := setters[p]; !ok {
			return nil, fmt.Errorf("unknown parameter: %s (available: %v)", p, Params())
		}
		if len(ranges[i]) == 0 {
			return nil, fmt.Errorf("parameter %s has no values", p)
		}
	}
	return &GridSearch{paramNames: params, ranges: ranges}, nil
}

// Trial is one point of the grid. Value is +Inf when the calculation failed
// or found no states.
type Trial struct {
	Params map[string]float64
	Value  float64
	States int
	Err    error
}

// Search runs every combination and returns the trial with the smallest
// metric value. A fresh metric is built per trial.
func (g *GridSearch) Search(ctx context.Context, base experiment.Request, newMetric func() metrics.Metric) (Trial, []Trial, error) {
	var trials []Trial
	if err := g.searchRecursive(ctx, 0, map[string]float64{}, base, newMetric, &trials); err != nil {
		return Trial{}, trials, err
	}

	best := Trial{Value: math.Inf(1)}
	for _, t := range trials {
		if t.Value < best.Value {
			best = t
		}
	}
	if math.IsInf(best.Value, 1) {
		return best, trials, errors.New("no trial produced any states")
	}
	return best, trials, nil
}

func (g *GridSearch) searchRecursive(
	ctx context.Context,
	depth int,
	current map[string]float64,
	base experiment.Request,
	newMetric func() metrics.Metric,
	trials *[]Trial,
) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if depth == len(g.paramNames) {
		req := base
		for name, v := range current {
			setters[name](&req, v)
		}

		trial := Trial{Params: current, Value: math.Inf(1)}
		m := newMetric()
		exp := experiment.New(req, nil)
		exp.AddObserver(m)
		result, err := exp.Run(ctx)
		switch {
		case err != nil && ctx.Err() != nil:
			return err
		case err != nil:
			trial.Err = err
		default:
			trial.States = len(result.Solutions)
			if trial.States > 0 {
				trial.Value = m.Value()
			}
		}
		*trials = append(*trials, trial)
		return nil
	}

	paramName := g.paramNames[depth]
	for _, val := range g.ranges[depth] {
		newParams := make(map[string]float64, len(current)+1)
		for k, v := range current {
			newParams[k] = v
		}
		newParams[paramName] = val

		if err := g.searchRecursive(ctx, depth+1, newParams, base, newMetric, trials); err != nil {
			return err
		}
	}
	return nil
}
