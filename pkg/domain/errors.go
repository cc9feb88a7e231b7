package domain

import "errors"

// ErrInvalidSelector is returned when a selector sets both an index and a name, or neither.
var ErrInvalidSelector = errors.New("invalid scene selector")

// ErrHostLoadFailure wraps errors reported by the host while loading a scene.
var ErrHostLoadFailure = errors.New("host scene load failed")

// ErrHostUnloadFailure wraps errors reported by the host while unloading a scene.
var ErrHostUnloadFailure = errors.New("host scene unload failed")

// ErrNoActiveTransition is returned by Commit when there is nothing to commit.
// Callers driven by an input poll are expected to ignore it.
var ErrNoActiveTransition = errors.New("no active transition")

// ErrNotStaged is returned by Commit when the current transition has not reached the
// activation threshold yet. The activation gate is left closed.
var ErrNotStaged = errors.New("transition not staged")

// ErrSupersededTransition resolves a transition that was replaced by a newer request
// before it was committed.
var ErrSupersededTransition = errors.New("transition superseded")

// ErrRecordNotFound is returned when a transition record cannot be found in the journal.
var ErrRecordNotFound = errors.New("transition record not found")
