package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aretw0/sceneflow/pkg/domain"
)

// RunLoad starts the host load for the current transition with activation withheld.
//
// While the load runs, normalized progress is pushed to sink (may be nil) and to
// progress subscribers once per tick. Values never decrease and the last one is 1.
// RunLoad returns nil as soon as the content is staged; ungated transitions are then
// committed automatically. Host failures are returned wrapped in
// domain.ErrHostLoadFailure and are not retried.
func (o *Orchestrator) RunLoad(ctx context.Context, sink ProgressSink) error {
	t := o.Current()
	if t == nil {
		return domain.ErrNoActiveTransition
	}
	return o.runLoad(ctx, t, sink)
}

func (o *Orchestrator) runLoad(ctx context.Context, t *Transition, sink ProgressSink) error {
	if phase, ok := t.claim(o.now()); !ok {
		if phase == domain.PhaseSuperseded {
			return domain.ErrSupersededTransition
		}
		return fmt.Errorf("%w: transition %s is %s", domain.ErrNoActiveTransition, t.ID(), phase)
	}

	req := t.Request()
	handle, err := o.loader.BeginLoad(ctx, req.Target, req.Mode)
	if err != nil {
		err = fmt.Errorf("%w: %w", domain.ErrHostLoadFailure, err)
		o.fail(ctx, t, err)
		return err
	}
	handle.SetActivationAllowed(false)

	if !t.attach(handle) {
		handle.Release()
		return domain.ErrSupersededTransition
	}

	o.logger.Debug("load started", "transition_id", t.ID(), "scene", handle.Scene().Name)

	ticker := time.NewTicker(o.tick)
	defer ticker.Stop()

	last := 0.0
	for {
		if t.Phase() == domain.PhaseSuperseded {
			return domain.ErrSupersededTransition
		}
		if herr := handle.Err(); herr != nil {
			err := fmt.Errorf("%w: %w", domain.ErrHostLoadFailure, herr)
			o.fail(ctx, t, err)
			return err
		}

		raw := handle.Progress()
		staged := domain.IsStaged(raw) || handle.IsDone()
		p := domain.NormalizeProgress(raw)
		if staged {
			p = 1
		}
		if p < last {
			p = last
		}
		last = p
		o.report(ctx, t, p, sink)

		if staged {
			break
		}

		if err := o.waitTick(ctx, ticker); err != nil {
			// Host loads cannot be aborted; the transition is abandoned
			if !errors.Is(err, ErrClosed) {
				o.fail(ctx, t, err)
			}
			return err
		}
	}

	if !t.stage(o.now()) {
		return domain.ErrSupersededTransition
	}
	o.logger.Info("transition staged", "transition_id", t.ID(), "scene", t.Scene().Name)

	if !req.Gated {
		if err := o.commit(t); err != nil {
			return err
		}
	}
	return nil
}

func (o *Orchestrator) report(ctx context.Context, t *Transition, p float64, sink ProgressSink) {
	t.setProgress(p)
	if sink != nil {
		sink(p)
	}
	o.bus.Publish(ctx, domain.Event{
		Type:         domain.EventProgress,
		Timestamp:    o.now(),
		TransitionID: t.ID(),
		Scene:        t.Scene(),
		Progress:     p,
	})
}

// LoadAdditive loads a scene next to the active content, bypassing the transition slot
// and the activation gate. It returns once the host reports the scene loaded.
func (o *Orchestrator) LoadAdditive(ctx context.Context, target domain.Selector) (domain.Scene, error) {
	if err := target.Validate(); err != nil {
		return domain.Scene{}, err
	}

	handle, err := o.loader.BeginLoad(ctx, target, domain.LoadAdditive)
	if err != nil {
		return domain.Scene{}, fmt.Errorf("%w: %w", domain.ErrHostLoadFailure, err)
	}
	defer handle.Release()
	handle.SetActivationAllowed(true)

	ticker := time.NewTicker(o.tick)
	defer ticker.Stop()

	for !handle.IsDone() {
		if herr := handle.Err(); herr != nil {
			return domain.Scene{}, fmt.Errorf("%w: %w", domain.ErrHostLoadFailure, herr)
		}
		if err := o.waitTick(ctx, ticker); err != nil {
			return domain.Scene{}, err
		}
	}

	scene := handle.Scene()
	o.logger.Info("scene loaded", "scene", scene.Name, "index", scene.Index, "mode", domain.LoadAdditive)
	o.bus.Publish(ctx, domain.Event{
		Type:      domain.EventSceneLoaded,
		Timestamp: o.now(),
		Scene:     scene,
		Progress:  1,
	})
	return scene, nil
}
