// Package presenter implements the loading-screen controller of a transition.
//
// A Presenter runs the orchestrator load concurrently with a minimum display timer, so
// the visible wait is max(load time, minimum display time), and forwards the external
// activation trigger to Commit once both have finished.
package presenter

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/aretw0/sceneflow/internal/logging"
	"github.com/aretw0/sceneflow/pkg/domain"
	"github.com/aretw0/sceneflow/pkg/orchestrator"
	"golang.org/x/sync/errgroup"
)

// ErrAlreadyStarted is returned when Start is called twice on the same Presenter.
var ErrAlreadyStarted = errors.New("presenter already started")

// Loader is the part of the orchestrator a Presenter drives.
type Loader interface {
	RunLoad(ctx context.Context, sink orchestrator.ProgressSink) error
	Commit() error
}

// View renders the loading indicator.
type View interface {
	// Progress receives normalized, non-decreasing progress in [0,1].
	Progress(p float64)
	// Ready reveals the "press to continue" affordance.
	Ready()
}

type nopView struct{}

func (nopView) Progress(float64) {}
func (nopView) Ready()           {}

// State is the per-transition presenter bookkeeping.
type State struct {
	StartedAt     time.Time
	Deadline      time.Time // minimum display deadline
	LoadFinished  bool
	TimerFinished bool
	Progress      float64
}

// ReadyForActivation reports whether both the load and the timer finished.
func (s State) ReadyForActivation() bool {
	return s.LoadFinished && s.TimerFinished
}

// Presenter coordinates one transition's loading screen.
type Presenter struct {
	loader Loader
	view   View
	logger *slog.Logger

	mu        sync.Mutex
	state     State
	started   bool
	committed bool
	err       error
	done      chan struct{}
}

// Option configures the Presenter.
type Option func(*Presenter)

// WithView sets the view that renders progress.
func WithView(v View) Option {
	return func(p *Presenter) {
		p.view = v
	}
}

// WithLogger sets a custom structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Presenter) {
		p.logger = logger
	}
}

// New creates a Presenter for the loader's current transition.
func New(loader Loader, opts ...Option) *Presenter {
	p := &Presenter{
		loader: loader,
		view:   nopView{},
		logger: logging.NewNop(),
		done:   make(chan struct{}),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Start begins the load and the minimum display timer. It does not block.
func (p *Presenter) Start(ctx context.Context, minDisplay time.Duration) error {
	p.mu.Lock()
	if p.started {
		p.mu.Unlock()
		return ErrAlreadyStarted
	}
	p.started = true
	now := time.Now()
	p.state = State{StartedAt: now, Deadline: now.Add(minDisplay)}
	p.mu.Unlock()

	p.view.Progress(0)
	go p.run(ctx, minDisplay)
	return nil
}

func (p *Presenter) run(ctx context.Context, minDisplay time.Duration) {
	defer close(p.done)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := p.loader.RunLoad(gctx, p.report); err != nil {
			return err
		}
		p.mu.Lock()
		p.state.LoadFinished = true
		p.mu.Unlock()
		return nil
	})
	g.Go(func() error {
		timer := time.NewTimer(minDisplay)
		defer timer.Stop()
		select {
		case <-gctx.Done():
			return gctx.Err()
		case <-timer.C:
		}
		p.mu.Lock()
		p.state.TimerFinished = true
		p.mu.Unlock()
		return nil
	})

	err := g.Wait()

	p.mu.Lock()
	p.err = err
	elapsed := time.Since(p.state.StartedAt)
	p.mu.Unlock()

	if err != nil {
		p.logger.Warn("presenter stopped before ready", "err", err)
		return
	}
	p.logger.Debug("presenter ready", "elapsed", elapsed)
	p.view.Ready()
}

func (p *Presenter) report(v float64) {
	p.mu.Lock()
	if v > p.state.Progress {
		p.state.Progress = v
	}
	p.mu.Unlock()
	p.view.Progress(v)
}

// Ready reports whether both the load and the minimum display timer finished.
func (p *Presenter) Ready() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state.ReadyForActivation()
}

// OnActivationTrigger commits the transition once the presenter is ready.
// Before that it does nothing, so it can be wired to an input poll that fires every tick.
func (p *Presenter) OnActivationTrigger() {
	p.mu.Lock()
	if !p.state.ReadyForActivation() || p.committed {
		p.mu.Unlock()
		return
	}
	p.committed = true
	p.mu.Unlock()

	if err := p.loader.Commit(); err != nil {
		// Ungated transitions are already committing or done
		if errors.Is(err, domain.ErrNoActiveTransition) {
			p.logger.Debug("activation trigger ignored", "err", err)
			return
		}
		p.logger.Warn("activation failed", "err", err)
		return
	}
	p.logger.Debug("activation triggered")
}

// Committed reports whether the activation trigger was forwarded.
func (p *Presenter) Committed() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.committed
}

// Done is closed once the presenter is ready or the load failed.
func (p *Presenter) Done() <-chan struct{} {
	return p.done
}

// Wait blocks until the presenter is ready, the load failed, or ctx is done.
func (p *Presenter) Wait(ctx context.Context) error {
	select {
	case <-p.done:
		return p.Err()
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Err returns the error that stopped the presenter, if any.
func (p *Presenter) Err() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.err
}

// State returns a snapshot of the presenter bookkeeping.
func (p *Presenter) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}
