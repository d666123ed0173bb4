package experiment

import (
	"context"
	"log/slog"
	"time"

	"github.com/san-kum/schrodsim/internal/config"
	"github.com/san-kum/schrodsim/internal/eigen"
	"github.com/san-kum/schrodsim/internal/potential"
	"github.com/san-kum/schrodsim/internal/shooting"
	"github.com/san-kum/schrodsim/internal/store"
)

// Request is everything one calculation needs.
type Request struct {
	Shape   potential.Shape
	Scheme  shooting.Scheme
	Grid    potential.Grid
	Sweep   eigen.Sweep
	Options eigen.Options
}

func DefaultRequest() Request {
	req, _ := RequestFromConfig(config.DefaultConfig())
	return req
}

func RequestFromConfig(cfg *config.Config) (Request, error) {
	if err := cfg.Validate(); err != nil {
		return Request{}, err
	}
	scheme, err := cfg.SchemeValue()
	if err != nil {
		return Request{}, err
	}
	return Request{
		Shape:   cfg.Shape(),
		Scheme:  scheme,
		Grid:    cfg.Grid,
		Sweep:   cfg.Search,
		Options: cfg.Tolerances,
	}, nil
}

// Experiment builds the profile, runs the search and packages the result.
type Experiment struct {
	req       Request
	logger    *slog.Logger
	observers []eigen.Observer
}

func New(req Request, logger *slog.Logger) *Experiment {
	if logger == nil {
		logger = slog.Default()
	}
	return &Experiment{req: req, logger: logger}
}

func (e *Experiment) AddObserver(o eigen.Observer) {
	e.observers = append(e.observers, o)
}

func (e *Experiment) Run(ctx context.Context) (*store.Result, error) {
	started := time.Now()

	shape, ok := potential.Resolve(e.req.Shape)
	if !ok {
		requested := "<nil>"
		if e.req.Shape != nil {
			requested = e.req.Shape.Name()
		}
		e.logger.Warn("unknown potential, falling back", "requested", requested, "using", shape.Name())
	}

	profile, err := potential.Build(shape, e.req.Grid)
	if err != nil {
		return nil, err
	}

	searcher := eigen.NewSearcher(e.req.Options, e.logger)
	for _, o := range e.observers {
		searcher.AddObserver(o)
	}

	report, err := searcher.Search(ctx, shooting.NewShooter(profile, e.req.Scheme), e.req.Sweep)
	if err != nil {
		return nil, err
	}

	result := &store.Result{
		Shape:     shape.Name(),
		Scheme:    e.req.Scheme,
		Grid:      profile.Grid,
		X:         profile.X,
		Potential: profile.V,
		Sweep:     e.req.Sweep,
		Options:   e.req.Options,
		Scan:      report.Sweep,
		Solutions: report.Solutions,
		Started:   started,
		Elapsed:   time.Since(started),
	}
	e.logger.Info("calculation finished",
		"potential", result.Shape,
		"scheme", result.Scheme.String(),
		"states", len(result.Solutions),
		"elapsed", result.Elapsed.Round(time.Millisecond))
	return result, nil
}
