package memory

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/aretw0/sceneflow/pkg/domain"
	"github.com/aretw0/sceneflow/pkg/ports"
)

// ErrSceneNotFound is returned when a selector does not match any scene in the catalog.
var ErrSceneNotFound = errors.New("scene not found")

// ErrSceneNotLoaded is returned when unloading a scene that is not loaded.
var ErrSceneNotLoaded = errors.New("scene not loaded")

// SceneSpec describes a scene the simulated host can load.
// Its build index is its position in the catalog.
type SceneSpec struct {
	Name string
	// LoadTime is how long raw progress takes to reach the activation threshold.
	LoadTime time.Duration
	// ActivationTime is how long the host takes to finalize once activation is allowed.
	ActivationTime time.Duration
	// Fail, if set, is reported by the handle once raw progress passes FailAt.
	Fail   error
	FailAt float64
}

// Loader implements ports.SceneLoader by simulating a host runtime.
// Progress is derived from wall-clock time elapsed since BeginLoad.
// Safe for concurrent use.
type Loader struct {
	mu         sync.Mutex
	catalog    []SceneSpec
	loaded     []int // build indexes, active scene first
	unloadTime time.Duration
	now        func() time.Time
}

// LoaderOption configures the Loader.
type LoaderOption func(*Loader)

// WithClock overrides the time source.
func WithClock(now func() time.Time) LoaderOption {
	return func(l *Loader) {
		l.now = now
	}
}

// WithUnloadTime sets how long unloads take.
func WithUnloadTime(d time.Duration) LoaderOption {
	return func(l *Loader) {
		l.unloadTime = d
	}
}

// WithActiveScene marks the scene at the given index as loaded and active at startup.
func WithActiveScene(index int) LoaderOption {
	return func(l *Loader) {
		l.loaded = []int{index}
	}
}

// NewLoader creates a simulated host loader over the given catalog.
// The first scene is active at startup unless WithActiveScene says otherwise.
func NewLoader(catalog []SceneSpec, opts ...LoaderOption) *Loader {
	l := &Loader{
		catalog: append([]SceneSpec(nil), catalog...),
		now:     time.Now,
	}
	if len(catalog) > 0 {
		l.loaded = []int{0}
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// resolve finds the catalog index for a selector. Caller must hold l.mu.
func (l *Loader) resolve(target domain.Selector) (int, error) {
	if target.Index != nil {
		if *target.Index < 0 || *target.Index >= len(l.catalog) {
			return 0, fmt.Errorf("%w: %s", ErrSceneNotFound, target)
		}
		return *target.Index, nil
	}
	for i, spec := range l.catalog {
		if spec.Name == target.Name {
			return i, nil
		}
	}
	return 0, fmt.Errorf("%w: %s", ErrSceneNotFound, target)
}

func (l *Loader) scene(index int) domain.Scene {
	return domain.Scene{Index: index, Name: l.catalog[index].Name}
}

// BeginLoad starts a simulated load. Activation is allowed by default, as in most hosts.
func (l *Loader) BeginLoad(ctx context.Context, target domain.Selector, mode domain.LoadMode) (ports.LoadHandle, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	index, err := l.resolve(target)
	if err != nil {
		return nil, err
	}
	return &loadHandle{
		loader:            l,
		index:             index,
		spec:              l.catalog[index],
		mode:              mode,
		started:           l.now(),
		activationAllowed: true,
	}, nil
}

// BeginUnload starts a simulated unload of a loaded scene.
func (l *Loader) BeginUnload(ctx context.Context, target domain.Selector) (ports.UnloadHandle, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	index, err := l.resolve(target)
	if err != nil {
		return nil, err
	}
	if !l.isLoaded(index) {
		return nil, fmt.Errorf("%w: %s", ErrSceneNotLoaded, target)
	}
	return &unloadHandle{
		loader:  l,
		index:   index,
		started: l.now(),
	}, nil
}

// ActiveScene returns the currently active scene, or a zero Scene with index -1 if none.
func (l *Loader) ActiveScene() domain.Scene {
	l.mu.Lock()
	defer l.mu.Unlock()
	if len(l.loaded) == 0 {
		return domain.Scene{Index: -1}
	}
	return l.scene(l.loaded[0])
}

// LoadedScenes returns every loaded scene, active scene first.
func (l *Loader) LoadedScenes() []domain.Scene {
	l.mu.Lock()
	defer l.mu.Unlock()
	scenes := make([]domain.Scene, 0, len(l.loaded))
	for _, idx := range l.loaded {
		scenes = append(scenes, l.scene(idx))
	}
	return scenes
}

// Catalog returns the scene catalog in build order.
func (l *Loader) Catalog() []domain.Scene {
	l.mu.Lock()
	defer l.mu.Unlock()
	scenes := make([]domain.Scene, len(l.catalog))
	for i := range l.catalog {
		scenes[i] = l.scene(i)
	}
	return scenes
}

func (l *Loader) isLoaded(index int) bool {
	for _, idx := range l.loaded {
		if idx == index {
			return true
		}
	}
	return false
}

// activate applies a finished load. Caller must hold l.mu.
func (l *Loader) activate(index int, mode domain.LoadMode) {
	if mode == domain.LoadAdditive {
		if !l.isLoaded(index) {
			l.loaded = append(l.loaded, index)
		}
		return
	}
	l.loaded = []int{index}
}

// remove applies a finished unload. Caller must hold l.mu.
func (l *Loader) remove(index int) {
	kept := l.loaded[:0]
	for _, idx := range l.loaded {
		if idx != index {
			kept = append(kept, idx)
		}
	}
	l.loaded = kept
}

type loadHandle struct {
	loader  *Loader
	index   int
	spec    SceneSpec
	mode    domain.LoadMode
	started time.Time

	// guarded by loader.mu
	activationAllowed bool
	activatedAt       time.Time
	done              bool
	released          bool
	err               error
}

// raw computes the host progress. Caller must hold loader.mu.
func (h *loadHandle) raw() float64 {
	if h.done {
		return 1
	}
	if h.spec.LoadTime <= 0 {
		return domain.ActivationThreshold
	}
	elapsed := h.loader.now().Sub(h.started)
	p := domain.ActivationThreshold * float64(elapsed) / float64(h.spec.LoadTime)
	if p > domain.ActivationThreshold {
		p = domain.ActivationThreshold
	}
	return p
}

// advance moves the simulated load forward. Caller must hold loader.mu.
func (h *loadHandle) advance() {
	if h.done || h.err != nil || h.released {
		return
	}
	raw := h.raw()
	if h.spec.Fail != nil && raw >= h.spec.FailAt {
		h.err = h.spec.Fail
		return
	}
	if !h.activationAllowed || !domain.IsStaged(raw) {
		return
	}
	now := h.loader.now()
	if h.activatedAt.IsZero() {
		h.activatedAt = now
	}
	if now.Sub(h.activatedAt) >= h.spec.ActivationTime {
		h.done = true
		h.loader.activate(h.index, h.mode)
	}
}

func (h *loadHandle) Progress() float64 {
	h.loader.mu.Lock()
	defer h.loader.mu.Unlock()
	h.advance()
	return h.raw()
}

func (h *loadHandle) IsDone() bool {
	h.loader.mu.Lock()
	defer h.loader.mu.Unlock()
	h.advance()
	return h.done
}

func (h *loadHandle) ActivationAllowed() bool {
	h.loader.mu.Lock()
	defer h.loader.mu.Unlock()
	return h.activationAllowed
}

func (h *loadHandle) SetActivationAllowed(allowed bool) {
	h.loader.mu.Lock()
	defer h.loader.mu.Unlock()
	h.activationAllowed = allowed
	if !allowed {
		h.activatedAt = time.Time{}
	}
}

func (h *loadHandle) Scene() domain.Scene {
	h.loader.mu.Lock()
	defer h.loader.mu.Unlock()
	return h.loader.scene(h.index)
}

func (h *loadHandle) Err() error {
	h.loader.mu.Lock()
	defer h.loader.mu.Unlock()
	h.advance()
	return h.err
}

func (h *loadHandle) Release() {
	h.loader.mu.Lock()
	defer h.loader.mu.Unlock()
	h.released = true
}

type unloadHandle struct {
	loader  *Loader
	index   int
	started time.Time
	done    bool
}

func (h *unloadHandle) IsDone() bool {
	h.loader.mu.Lock()
	defer h.loader.mu.Unlock()
	if !h.done && h.loader.now().Sub(h.started) >= h.loader.unloadTime {
		h.done = true
		h.loader.remove(h.index)
	}
	return h.done
}

func (h *unloadHandle) Scene() domain.Scene {
	h.loader.mu.Lock()
	defer h.loader.mu.Unlock()
	return h.loader.scene(h.index)
}

func (h *unloadHandle) Err() error {
	return nil
}
