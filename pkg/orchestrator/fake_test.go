package orchestrator_test

import (
	"context"
	"errors"
	"sync"

	"github.com/aretw0/sceneflow/pkg/domain"
	"github.com/aretw0/sceneflow/pkg/ports"
)

// fakeHandle is a LoadHandle whose raw progress is scripted by the test.
type fakeHandle struct {
	mu       sync.Mutex
	script   []float64 // consumed one value per Progress call
	raw      float64
	done     bool
	allowed  bool
	err      error
	released bool
	scene    domain.Scene
}

func (h *fakeHandle) Progress() float64 {
	h.mu.Lock()
	defer h.mu.Unlock()
	if len(h.script) > 0 {
		h.raw = h.script[0]
		h.script = h.script[1:]
	}
	return h.raw
}

func (h *fakeHandle) SetRaw(raw float64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.script = nil
	h.raw = raw
}

func (h *fakeHandle) Finish() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.done = true
	h.raw = 1
}

func (h *fakeHandle) Fail(err error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.err = err
}

func (h *fakeHandle) IsDone() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.done
}

func (h *fakeHandle) ActivationAllowed() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.allowed
}

func (h *fakeHandle) SetActivationAllowed(allowed bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.allowed = allowed
}

func (h *fakeHandle) Scene() domain.Scene {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.scene
}

func (h *fakeHandle) Err() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.err
}

func (h *fakeHandle) Release() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.released = true
}

func (h *fakeHandle) Released() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.released
}

// fakeLoader hands out queued handles, or fails with err.
type fakeLoader struct {
	mu        sync.Mutex
	queue     []*fakeHandle
	err       error
	loadCalls int
	active    domain.Scene
}

var errUnknownScene = errors.New("unknown scene")

func (l *fakeLoader) BeginLoad(ctx context.Context, target domain.Selector, mode domain.LoadMode) (ports.LoadHandle, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.loadCalls++
	if l.err != nil {
		return nil, l.err
	}
	if len(l.queue) == 0 {
		return nil, errUnknownScene
	}
	h := l.queue[0]
	l.queue = l.queue[1:]
	h.allowed = true // hosts allow activation by default
	return h, nil
}

func (l *fakeLoader) BeginUnload(ctx context.Context, target domain.Selector) (ports.UnloadHandle, error) {
	return nil, errUnknownScene
}

func (l *fakeLoader) ActiveScene() domain.Scene {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.active
}

func (l *fakeLoader) LoadCalls() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.loadCalls
}

// recorder collects events from the bus.
type recorder struct {
	mu     sync.Mutex
	events []domain.Event
}

func (r *recorder) Handle(ctx context.Context, e domain.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
	return nil
}

func (r *recorder) Of(kind domain.EventType) []domain.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Event
	for _, e := range r.events {
		if e.Type == kind {
			out = append(out, e)
		}
	}
	return out
}
