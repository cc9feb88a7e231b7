package orchestrator

import (
	"context"
	"fmt"
	"time"

	"github.com/aretw0/sceneflow/pkg/domain"
)

// UnloadScene asks the host to unload a scene and waits for it to finish.
// Unloads have no activation gate.
func (o *Orchestrator) UnloadScene(ctx context.Context, target domain.Selector) error {
	if err := target.Validate(); err != nil {
		return err
	}

	handle, err := o.loader.BeginUnload(ctx, target)
	if err != nil {
		return fmt.Errorf("%w: %w", domain.ErrHostUnloadFailure, err)
	}

	ticker := time.NewTicker(o.tick)
	defer ticker.Stop()

	for !handle.IsDone() {
		if herr := handle.Err(); herr != nil {
			return fmt.Errorf("%w: %w", domain.ErrHostUnloadFailure, herr)
		}
		if err := o.waitTick(ctx, ticker); err != nil {
			return err
		}
	}

	scene := handle.Scene()
	o.logger.Info("scene unloaded", "scene", scene.Name, "index", scene.Index)
	o.bus.Publish(ctx, domain.Event{
		Type:      domain.EventSceneUnloaded,
		Timestamp: o.now(),
		Scene:     scene,
	})
	return nil
}

// ReloadCurrent requests a transition to the host's active scene.
func (o *Orchestrator) ReloadCurrent(ctx context.Context, gated bool) (*Transition, error) {
	active := o.loader.ActiveScene()
	return o.RequestTransition(ctx, domain.ByIndex(active.Index), domain.LoadSingle, gated)
}
