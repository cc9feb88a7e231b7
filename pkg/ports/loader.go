package ports

import (
	"context"

	"github.com/aretw0/sceneflow/pkg/domain"
)

// SceneLoader is the host runtime's asynchronous scene loading primitive.
// The orchestrator never constructs handles itself, it only drives them.
type SceneLoader interface {
	// BeginLoad starts loading the selected scene.
	// It returns an error if the host rejects the target (e.g. unknown scene).
	BeginLoad(ctx context.Context, target domain.Selector, mode domain.LoadMode) (LoadHandle, error)

	// BeginUnload starts unloading the selected scene.
	BeginUnload(ctx context.Context, target domain.Selector) (UnloadHandle, error)

	// ActiveScene returns the identity of the currently active scene.
	ActiveScene() domain.Scene
}

// LoadHandle is an in-flight host load.
// Raw progress saturates at domain.ActivationThreshold until activation is allowed.
type LoadHandle interface {
	// Progress returns the raw host completion in [0,1].
	Progress() float64

	// IsDone reports whether the host finished the load, activation included.
	IsDone() bool

	// ActivationAllowed reports the current state of the activation gate.
	ActivationAllowed() bool

	// SetActivationAllowed opens or closes the activation gate.
	SetActivationAllowed(allowed bool)

	// Scene returns the identity of the scene being loaded.
	Scene() domain.Scene

	// Err returns a non-nil error if the host failed the load after it began.
	Err() error

	// Release tells the host the handle is no longer observed.
	Release()
}

// UnloadHandle is an in-flight host unload. Unloads have no staging phase.
type UnloadHandle interface {
	IsDone() bool
	Scene() domain.Scene
	Err() error
}
