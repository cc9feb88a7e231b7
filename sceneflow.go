package sceneflow

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/aretw0/sceneflow/internal/logging"
	"github.com/aretw0/sceneflow/pkg/adapters/memory"
	"github.com/aretw0/sceneflow/pkg/domain"
	"github.com/aretw0/sceneflow/pkg/events"
	"github.com/aretw0/sceneflow/pkg/observability"
	"github.com/aretw0/sceneflow/pkg/orchestrator"
	"github.com/aretw0/sceneflow/pkg/ports"
	"github.com/aretw0/sceneflow/pkg/presenter"
)

// DefaultMinDisplay is how long the loading screen stays up when the load is faster.
const DefaultMinDisplay = 2 * time.Second

var (
	// ErrClosed is returned by operations on a closed Director.
	ErrClosed = errors.New("director closed")
	// ErrNotReady is returned by Trigger while the loading screen is still up.
	ErrNotReady = errors.New("loading screen not ready for activation")
)

// ViewFactory builds the view that renders one transition's loading screen.
type ViewFactory func(t *orchestrator.Transition) presenter.View

// Director is the high-level entry point for sceneflow.
// It pairs every transition with a presenter and writes finished transitions to the journal.
type Director struct {
	orch       *orchestrator.Orchestrator
	loader     ports.SceneLoader
	journal    ports.TransitionJournal
	metrics    *observability.Metrics
	bus        *events.Bus
	views      ViewFactory
	minDisplay time.Duration
	tick       time.Duration
	logger     *slog.Logger

	ctx     context.Context
	cancel  context.CancelFunc
	stopped chan struct{} // closed once the orchestrator and the presenter stopped
	wg      sync.WaitGroup
	detach  func()

	navMu   sync.Mutex // serializes slot changes
	mu      sync.Mutex
	session *Session

	closeOnce sync.Once
}

// Option defines a functional option for configuring the Director.
type Option func(*Director)

// WithLogger sets a custom structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(d *Director) {
		d.logger = logger
	}
}

// WithJournal sets where finished transitions are recorded (default: in memory).
func WithJournal(j ports.TransitionJournal) Option {
	return func(d *Director) {
		d.journal = j
	}
}

// WithMetrics feeds the given collectors from the bus and the journal path.
func WithMetrics(m *observability.Metrics) Option {
	return func(d *Director) {
		d.metrics = m
	}
}

// WithBus shares an existing event bus.
func WithBus(bus *events.Bus) Option {
	return func(d *Director) {
		d.bus = bus
	}
}

// WithMinDisplay sets the minimum time the loading screen is shown.
func WithMinDisplay(dur time.Duration) Option {
	return func(d *Director) {
		if dur >= 0 {
			d.minDisplay = dur
		}
	}
}

// WithTickInterval sets how often host handles are polled.
func WithTickInterval(tick time.Duration) Option {
	return func(d *Director) {
		d.tick = tick
	}
}

// WithViewFactory sets how loading screens are rendered.
func WithViewFactory(f ViewFactory) Option {
	return func(d *Director) {
		d.views = f
	}
}

// New creates a Director driving the given host loader.
func New(loader ports.SceneLoader, opts ...Option) *Director {
	d := &Director{
		loader:     loader,
		minDisplay: DefaultMinDisplay,
		tick:       orchestrator.DefaultTickInterval,
	}
	for _, opt := range opts {
		opt(d)
	}

	if d.logger == nil {
		d.logger = logging.NewNop()
	}
	if d.bus == nil {
		d.bus = events.NewBus(events.WithLogger(d.logger))
	}
	if d.journal == nil {
		d.journal = memory.NewJournal()
	}
	if d.metrics != nil {
		d.detach = d.metrics.Attach(d.bus)
	}

	d.orch = orchestrator.New(loader,
		orchestrator.WithBus(d.bus),
		orchestrator.WithLogger(d.logger),
		orchestrator.WithTickInterval(d.tick),
	)
	d.ctx, d.cancel = context.WithCancel(context.Background())
	d.stopped = make(chan struct{})
	return d
}

// Navigate requests a transition to target and starts its loading screen.
//
// The load runs for the lifetime of the Director, not of ctx. A gated transition
// waits for Trigger once the loading screen is ready; an ungated one activates as
// soon as the content is staged.
func (d *Director) Navigate(ctx context.Context, target domain.Selector, mode domain.LoadMode, gated bool) (*Session, error) {
	return d.start(func() (*orchestrator.Transition, error) {
		return d.orch.RequestTransition(ctx, target, mode, gated)
	})
}

// Reload runs a transition back to the host's active scene.
func (d *Director) Reload(ctx context.Context, gated bool) (*Session, error) {
	return d.start(func() (*orchestrator.Transition, error) {
		return d.orch.ReloadCurrent(ctx, gated)
	})
}

func (d *Director) start(request func() (*orchestrator.Transition, error)) (*Session, error) {
	if d.ctx.Err() != nil {
		return nil, ErrClosed
	}

	d.navMu.Lock()
	defer d.navMu.Unlock()

	t, err := request()
	if err != nil {
		return nil, err
	}

	popts := []presenter.Option{presenter.WithLogger(d.logger.With("transition_id", t.ID()))}
	if d.views != nil {
		popts = append(popts, presenter.WithView(d.views(t)))
	}
	s := &Session{
		transition: t,
		presenter:  presenter.New(d.orch.Bind(t), popts...),
	}

	d.mu.Lock()
	d.session = s
	d.mu.Unlock()

	if err := s.presenter.Start(d.ctx, d.minDisplay); err != nil {
		return nil, err
	}
	d.track(s)

	d.logger.Info("navigation started",
		"transition_id", t.ID(),
		"target", t.Request().Target.String(),
		"min_display", d.minDisplay,
	)
	return s, nil
}

// track records the transition once it is terminal. Transitions still in flight
// at Close are abandoned with ErrClosed and recorded as failed.
func (d *Director) track(s *Session) {
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		select {
		case <-s.transition.Done():
		case <-d.stopped:
			if d.orch.Abandon(s.transition, ErrClosed) {
				d.logger.Info("transition abandoned", "transition_id", s.transition.ID())
			}
		}

		rec := s.transition.Record()
		if d.metrics != nil {
			d.metrics.ObserveRecord(rec)
		}
		if err := d.journal.Record(context.WithoutCancel(d.ctx), rec); err != nil {
			d.logger.Warn("failed to record transition", "transition_id", rec.ID, "err", err)
			return
		}
		d.logger.Debug("transition recorded", "transition_id", rec.ID, "outcome", rec.Outcome)
	}()
}

// Current returns the latest session, or nil before the first navigation.
func (d *Director) Current() *Session {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.session
}

// Trigger forwards the external activation trigger to the current loading screen.
// It returns domain.ErrNoActiveTransition when nothing is in flight and ErrNotReady
// while the load or the minimum display time is still running.
func (d *Director) Trigger() error {
	s := d.Current()
	if s == nil || s.transition.Phase().Terminal() {
		return domain.ErrNoActiveTransition
	}
	if !s.Ready() {
		return ErrNotReady
	}
	s.Trigger()
	return nil
}

// Status describes the transition slot and the host's active scene.
func (d *Director) Status() Status {
	st := Status{Phase: domain.PhaseIdle}
	if s := d.Current(); s != nil {
		st = s.status()
	}
	st.ActiveScene = d.loader.ActiveScene()
	return st
}

// LoadAdditive loads a scene next to the active content without a loading screen.
func (d *Director) LoadAdditive(ctx context.Context, target domain.Selector) (domain.Scene, error) {
	if d.ctx.Err() != nil {
		return domain.Scene{}, ErrClosed
	}
	return d.orch.LoadAdditive(ctx, target)
}

// Unload unloads a loaded scene and waits for the host to finish.
func (d *Director) Unload(ctx context.Context, target domain.Selector) error {
	if d.ctx.Err() != nil {
		return ErrClosed
	}
	return d.orch.UnloadScene(ctx, target)
}

// History lists finished transitions, newest first. A limit <= 0 lists all of them.
func (d *Director) History(ctx context.Context, limit int) ([]domain.TransitionRecord, error) {
	return d.journal.List(ctx, limit)
}

// Bus returns the event bus progress and lifecycle events are published to.
func (d *Director) Bus() *events.Bus {
	return d.bus
}

// Orchestrator returns the underlying orchestrator.
func (d *Director) Orchestrator() *orchestrator.Orchestrator {
	return d.orch
}

// Close abandons the transitions in flight and waits for background work to stop.
// Abandoned transitions end as failed with ErrClosed and are written to the journal,
// which is not closed.
func (d *Director) Close() error {
	d.closeOnce.Do(func() {
		d.cancel()
		d.orch.Close()
		if s := d.Current(); s != nil {
			<-s.presenter.Done()
		}
		close(d.stopped)
		d.wg.Wait()
		if d.detach != nil {
			d.detach()
		}
	})
	return nil
}
