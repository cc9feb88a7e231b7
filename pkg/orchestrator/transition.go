package orchestrator

import (
	"context"
	"sync"
	"time"

	"github.com/aretw0/sceneflow/pkg/domain"
	"github.com/aretw0/sceneflow/pkg/ports"
)

// Transition is the awaitable handle of a single requested transition.
type Transition struct {
	req  domain.TransitionRequest
	done chan struct{}

	mu         sync.Mutex
	phase      domain.Phase
	progress   float64
	handle     ports.LoadHandle
	scene      domain.Scene
	err        error
	loadStart  time.Time
	stagedAt   time.Time
	finishedAt time.Time
}

func newTransition(req domain.TransitionRequest) *Transition {
	return &Transition{
		req:   req,
		done:  make(chan struct{}),
		phase: domain.PhaseRequested,
	}
}

// ID returns the transition identifier.
func (t *Transition) ID() string { return t.req.ID }

// Request returns the immutable request that created the transition.
func (t *Transition) Request() domain.TransitionRequest { return t.req }

// Phase returns the current lifecycle phase.
func (t *Transition) Phase() domain.Phase {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.phase
}

// Progress returns the last normalized progress reported for this transition.
func (t *Transition) Progress() float64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.progress
}

// Scene returns the scene identity reported by the host, once known.
func (t *Transition) Scene() domain.Scene {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.scene
}

// Done is closed when the transition reaches a terminal phase.
func (t *Transition) Done() <-chan struct{} { return t.done }

// Err returns why the transition failed or was superseded. It is nil otherwise.
func (t *Transition) Err() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.err
}

// Outcome returns the terminal outcome, or "" while the transition is in flight.
func (t *Transition) Outcome() domain.Outcome {
	return domain.OutcomeOf(t.Phase())
}

// Wait blocks until the transition is terminal or ctx is done.
// It returns nil when the transition was committed and activated.
func (t *Transition) Wait(ctx context.Context) error {
	select {
	case <-t.done:
		return t.Err()
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Record summarizes the transition for the journal.
func (t *Transition) Record() domain.TransitionRecord {
	t.mu.Lock()
	defer t.mu.Unlock()

	rec := domain.TransitionRecord{
		ID:          t.req.ID,
		Target:      t.req.Target,
		Mode:        t.req.Mode,
		Gated:       t.req.Gated,
		Outcome:     domain.OutcomeOf(t.phase),
		Scene:       t.scene,
		RequestedAt: t.req.RequestedAt,
		FinishedAt:  t.finishedAt,
	}
	if t.err != nil {
		rec.Error = t.err.Error()
	}
	if !t.loadStart.IsZero() && !t.stagedAt.IsZero() {
		rec.LoadTime = t.stagedAt.Sub(t.loadStart)
	}
	return rec
}

// Handle returns the host handle, or nil before the load began.
func (t *Transition) Handle() ports.LoadHandle {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.handle
}

// claim moves Requested to Loading. It returns the phase found.
func (t *Transition) claim(now time.Time) (domain.Phase, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.phase != domain.PhaseRequested {
		return t.phase, false
	}
	t.phase = domain.PhaseLoading
	t.loadStart = now
	return t.phase, true
}

// attach stores the host handle unless the transition already ended.
func (t *Transition) attach(h ports.LoadHandle) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.phase.Terminal() {
		return false
	}
	t.handle = h
	t.scene = h.Scene()
	return true
}

func (t *Transition) setProgress(p float64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if p > t.progress {
		t.progress = p
	}
}

// stage moves Loading to Staged.
func (t *Transition) stage(now time.Time) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.phase != domain.PhaseLoading {
		return false
	}
	t.phase = domain.PhaseStaged
	t.stagedAt = now
	t.progress = 1
	return true
}

// beginCommit moves Staged to Committing and returns the handle to unblock.
// The returned phase is the one found before the move.
func (t *Transition) beginCommit() (ports.LoadHandle, domain.Phase) {
	t.mu.Lock()
	defer t.mu.Unlock()
	found := t.phase
	if found == domain.PhaseStaged {
		t.phase = domain.PhaseCommitting
		return t.handle, found
	}
	return nil, found
}

// finish moves the transition into a terminal phase exactly once.
// It returns the handle that was attached, and false if the transition had already ended.
// The caller that finished the transition must call resolve once subscribers were notified.
func (t *Transition) finish(phase domain.Phase, err error, now time.Time) (ports.LoadHandle, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.phase.Terminal() {
		return nil, false
	}
	t.phase = phase
	t.err = err
	t.finishedAt = now
	h := t.handle
	if h != nil {
		t.scene = h.Scene()
	}
	return h, true
}

// supersede ends the transition as superseded unless it is already committing or terminal.
// Committing transitions are left to finish on their own.
func (t *Transition) supersede(now time.Time) (ports.LoadHandle, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	switch t.phase {
	case domain.PhaseRequested, domain.PhaseLoading, domain.PhaseStaged:
	default:
		return nil, false
	}
	t.phase = domain.PhaseSuperseded
	t.err = domain.ErrSupersededTransition
	t.finishedAt = now
	return t.handle, true
}

// resolve releases waiters. It must be called exactly once, after finish or supersede succeeded.
func (t *Transition) resolve() {
	close(t.done)
}
