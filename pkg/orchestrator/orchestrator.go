package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/aretw0/sceneflow/internal/logging"
	"github.com/aretw0/sceneflow/pkg/domain"
	"github.com/aretw0/sceneflow/pkg/events"
	"github.com/aretw0/sceneflow/pkg/ports"
	"github.com/google/uuid"
)

// DefaultTickInterval is how often host handles are polled (about one frame at 60Hz).
const DefaultTickInterval = 16 * time.Millisecond

// ProgressSink receives normalized progress in [0,1].
type ProgressSink func(progress float64)

// PresenterLauncher asks the host to switch to the loading context for a new transition.
// It runs on its own goroutine.
type PresenterLauncher func(ctx context.Context, t *Transition)

// Orchestrator coordinates scene transitions against a host SceneLoader.
//
// It keeps a single transition slot: a request made while another transition is
// still loading or staged replaces it (last writer wins) and the replaced transition
// resolves with domain.ErrSupersededTransition. Requests are not queued.
type Orchestrator struct {
	loader ports.SceneLoader
	bus    *events.Bus
	logger *slog.Logger
	tick   time.Duration
	now    func() time.Time
	launch PresenterLauncher

	mu      sync.Mutex
	current *Transition

	closeOnce sync.Once
	closing   chan struct{}
	wg        sync.WaitGroup
}

// Option configures the Orchestrator.
type Option func(*Orchestrator)

// WithLogger sets a custom structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(o *Orchestrator) {
		o.logger = logger
	}
}

// WithBus sets the event bus progress and lifecycle events are published to.
func WithBus(bus *events.Bus) Option {
	return func(o *Orchestrator) {
		o.bus = bus
	}
}

// WithTickInterval sets how often host handles are polled.
func WithTickInterval(d time.Duration) Option {
	return func(o *Orchestrator) {
		if d > 0 {
			o.tick = d
		}
	}
}

// WithClock overrides the time source used for timestamps.
func WithClock(now func() time.Time) Option {
	return func(o *Orchestrator) {
		o.now = now
	}
}

// WithPresenterLauncher registers the callback that shows the loading context.
func WithPresenterLauncher(launch PresenterLauncher) Option {
	return func(o *Orchestrator) {
		o.launch = launch
	}
}

// New creates an Orchestrator driving the given host loader.
func New(loader ports.SceneLoader, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		loader:  loader,
		tick:    DefaultTickInterval,
		now:     time.Now,
		logger:  logging.NewNop(),
		closing: make(chan struct{}),
	}
	for _, opt := range opts {
		opt(o)
	}
	if o.bus == nil {
		o.bus = events.NewBus(events.WithLogger(o.logger))
	}
	return o
}

// Bus returns the event bus used by the orchestrator.
func (o *Orchestrator) Bus() *events.Bus {
	return o.bus
}

// Current returns the transition in the slot, or nil if none was requested yet.
func (o *Orchestrator) Current() *Transition {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.current
}

// CurrentHandle returns the host handle of the current transition, or nil.
// Manual-activation UIs may use it to inspect or flip the activation gate directly.
func (o *Orchestrator) CurrentHandle() ports.LoadHandle {
	t := o.Current()
	if t == nil {
		return nil
	}
	return t.Handle()
}

// RequestTransition records a new target in the transition slot.
// The selector is validated before the host is touched.
func (o *Orchestrator) RequestTransition(ctx context.Context, target domain.Selector, mode domain.LoadMode, gated bool) (*Transition, error) {
	if err := target.Validate(); err != nil {
		return nil, err
	}
	if mode == "" {
		mode = domain.LoadSingle
	}

	t := newTransition(domain.TransitionRequest{
		ID:          uuid.NewString(),
		Target:      target,
		Mode:        mode,
		Gated:       gated,
		RequestedAt: o.now(),
	})

	o.mu.Lock()
	prev := o.current
	o.current = t
	o.mu.Unlock()

	if prev != nil {
		o.supersede(ctx, prev)
	}

	o.logger.Debug("transition requested",
		"transition_id", t.ID(),
		"target", target.String(),
		"mode", mode,
		"gated", gated,
	)

	if o.launch != nil {
		o.wg.Add(1)
		go func() {
			defer o.wg.Done()
			o.launch(context.WithoutCancel(ctx), t)
		}()
	}
	return t, nil
}

func (o *Orchestrator) supersede(ctx context.Context, prev *Transition) {
	handle, ok := prev.supersede(o.now())
	if !ok {
		return
	}
	if handle != nil {
		handle.Release()
	}
	o.logger.Info("transition superseded",
		"transition_id", prev.ID(),
		"progress", prev.Progress(),
	)
	o.bus.Publish(context.WithoutCancel(ctx), domain.Event{
		Type:         domain.EventTransitionSuperseded,
		Timestamp:    o.now(),
		TransitionID: prev.ID(),
		Scene:        prev.Scene(),
		Progress:     prev.Progress(),
		Err:          domain.ErrSupersededTransition,
	})
	prev.resolve()
}

// Commit opens the activation gate of the staged transition.
// It returns domain.ErrNoActiveTransition when there is nothing to commit and
// domain.ErrNotStaged when the load has not reached the activation threshold yet.
// Both are benign; the gate is left untouched.
func (o *Orchestrator) Commit() error {
	t := o.Current()
	if t == nil {
		return domain.ErrNoActiveTransition
	}
	return o.commit(t)
}

func (o *Orchestrator) commit(t *Transition) error {
	handle, found := t.beginCommit()
	switch found {
	case domain.PhaseStaged:
	case domain.PhaseRequested, domain.PhaseLoading:
		return domain.ErrNotStaged
	case domain.PhaseCommitting:
		return nil
	default:
		return domain.ErrNoActiveTransition
	}

	handle.SetActivationAllowed(true)
	o.logger.Info("transition committed", "transition_id", t.ID(), "scene", t.Scene().Name)

	o.wg.Add(1)
	go o.finalize(t, handle)
	return nil
}

// finalize waits for the host to finish activating the committed content.
func (o *Orchestrator) finalize(t *Transition, handle ports.LoadHandle) {
	defer o.wg.Done()

	ticker := time.NewTicker(o.tick)
	defer ticker.Stop()

	for {
		if err := handle.Err(); err != nil {
			o.fail(context.Background(), t, fmt.Errorf("%w: %w", domain.ErrHostLoadFailure, err))
			return
		}
		if handle.IsDone() {
			break
		}
		select {
		case <-o.closing:
			return
		case <-ticker.C:
		}
	}

	handle.Release()
	if _, ok := t.finish(domain.PhaseDone, nil, o.now()); !ok {
		return
	}
	defer t.resolve()
	scene := t.Scene()
	o.logger.Info("scene loaded", "transition_id", t.ID(), "scene", scene.Name, "index", scene.Index)
	o.bus.Publish(context.Background(), domain.Event{
		Type:         domain.EventSceneLoaded,
		Timestamp:    o.now(),
		TransitionID: t.ID(),
		Scene:        scene,
		Progress:     1,
	})
}

// Abandon ends t as failed with cause unless it already ended, releasing its host
// handle. It reports whether t was still in flight.
func (o *Orchestrator) Abandon(t *Transition, cause error) bool {
	return o.fail(context.Background(), t, cause)
}

// fail ends the transition as failed and notifies subscribers.
func (o *Orchestrator) fail(ctx context.Context, t *Transition, err error) bool {
	handle, ok := t.finish(domain.PhaseFailed, err, o.now())
	if !ok {
		return false
	}
	defer t.resolve()
	if handle != nil {
		handle.Release()
	}
	o.logger.Error("transition failed", "transition_id", t.ID(), "target", t.Request().Target.String(), "err", err)
	o.bus.Publish(context.WithoutCancel(ctx), domain.Event{
		Type:         domain.EventTransitionFailed,
		Timestamp:    o.now(),
		TransitionID: t.ID(),
		Scene:        t.Scene(),
		Progress:     t.Progress(),
		Err:          err,
	})
	return true
}

// ActiveSceneIndex returns the build index of the host's active scene.
func (o *Orchestrator) ActiveSceneIndex() int {
	return o.loader.ActiveScene().Index
}

// ActiveSceneName returns the name of the host's active scene.
func (o *Orchestrator) ActiveSceneName() string {
	return o.loader.ActiveScene().Name
}

// Close stops background finalization and waits for it to exit.
// Transitions still committing stay in that phase.
func (o *Orchestrator) Close() {
	o.closeOnce.Do(func() {
		close(o.closing)
	})
	o.wg.Wait()
}

// waitTick suspends until the next tick, ctx cancellation, or Close.
func (o *Orchestrator) waitTick(ctx context.Context, ticker *time.Ticker) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-o.closing:
		return ErrClosed
	case <-ticker.C:
		return nil
	}
}

// ErrClosed is returned by polling loops interrupted by Close.
var ErrClosed = errors.New("orchestrator closed")
