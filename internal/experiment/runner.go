package experiment

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/san-kum/schrodsim/internal/eigen"
	"github.com/san-kum/schrodsim/internal/store"
)

var ErrBusy = errors.New("calculation already in progress")

type Outcome struct {
	Result *store.Result
	Err    error
}

// Runner runs at most one calculation at a time in the background and
// publishes successful results to its store.
type Runner struct {
	store  *store.Store
	logger *slog.Logger
	busy   atomic.Bool

	mu        sync.Mutex
	observers []eigen.Observer
}

func NewRunner(st *store.Store, logger *slog.Logger) *Runner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Runner{store: st, logger: logger}
}

func (r *Runner) Store() *store.Store { return r.store }

func (r *Runner) Busy() bool { return r.busy.Load() }

func (r *Runner) AddObserver(o eigen.Observer) {
	r.mu.Lock()
	r.observers = append(r.observers, o)
	r.mu.Unlock()
}

// Start launches a calculation. The returned channel receives exactly one
// Outcome and is then closed. The store is updated before the Outcome is sent.
func (r *Runner) Start(ctx context.Context, req Request) (<-chan Outcome, error) {
	if !r.busy.CompareAndSwap(false, true) {
		return nil, ErrBusy
	}

	exp := New(req, r.logger)
	r.mu.Lock()
	for _, o := range r.observers {
		exp.AddObserver(o)
	}
	r.mu.Unlock()

	out := make(chan Outcome, 1)
	go func() {
		defer close(out)

		result, err := exp.Run(ctx)
		if err != nil {
			r.logger.Error("calculation failed", "err", err)
		} else {
			r.store.Replace(result)
		}
		r.busy.Store(false)
		out <- Outcome{Result: result, Err: err}
	}()
	return out, nil
}

// Run starts a calculation and waits for it.
func (r *Runner) Run(ctx context.Context, req Request) (*store.Result, error) {
	ch, err := r.Start(ctx, req)
	if err != nil {
		return nil, err
	}
	o := <-ch
	return o.Result, o.Err
}
