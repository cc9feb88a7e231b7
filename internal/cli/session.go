package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/aretw0/sceneflow"
	"github.com/aretw0/sceneflow/internal/presentation/tui"
	"github.com/aretw0/sceneflow/pkg/domain"
	"github.com/aretw0/sceneflow/pkg/orchestrator"
	"github.com/aretw0/sceneflow/pkg/presenter"
)

// RunOptions configures an interactive transition.
type RunOptions struct {
	Target   domain.Selector
	Mode     domain.LoadMode
	Gated    bool
	Headless bool // no banner, activate as soon as ready
	In       io.Reader
	Out      io.Writer
}

// ViewFactory renders loading screens on out.
func ViewFactory(out io.Writer) sceneflow.ViewFactory {
	return func(t *orchestrator.Transition) presenter.View {
		return tui.NewProgressView(out, t.Request().Target.String())
	}
}

// RunTransition drives one transition from the terminal: it shows the loading bar and
// activates the new scene when the user presses Enter once the screen is ready.
// When input ends (or in headless mode) the scene is activated as soon as it is ready.
// If ctx is cancelled first, its cause is returned.
func RunTransition(ctx context.Context, d *sceneflow.Director, opts RunOptions, logger *slog.Logger) (domain.Scene, error) {
	if !opts.Headless {
		tui.PrintBanner(opts.Out)
	}

	session, err := d.Navigate(ctx, opts.Target, opts.Mode, opts.Gated)
	if err != nil {
		return domain.Scene{}, err
	}

	if opts.Gated {
		go triggerLoop(ctx, d, session, opts, logger)
	}

	if err := session.Wait(ctx); err != nil {
		if cause := context.Cause(ctx); cause != nil && ctx.Err() != nil {
			return domain.Scene{}, cause
		}
		return domain.Scene{}, err
	}
	scene := session.Transition().Scene()
	fmt.Fprintf(opts.Out, ">>> Scene '%s' is active.\n", scene.Name)
	return scene, nil
}

// triggerLoop forwards Enter presses to the Director until the transition ends.
func triggerLoop(ctx context.Context, d *sceneflow.Director, s *sceneflow.Session, opts RunOptions, logger *slog.Logger) {
	if !opts.Headless && opts.In != nil {
		lines := make(chan struct{})
		go func() {
			defer close(lines)
			scanner := bufio.NewScanner(opts.In)
			for scanner.Scan() {
				select {
				case lines <- struct{}{}:
				case <-s.Transition().Done():
					return
				}
			}
		}()

	read:
		for {
			select {
			case <-ctx.Done():
				return
			case <-s.Transition().Done():
				return
			case _, ok := <-lines:
				if !ok {
					break read
				}
				err := d.Trigger()
				switch {
				case err == nil:
					return
				case errors.Is(err, sceneflow.ErrNotReady):
					fmt.Fprintln(opts.Out, ">>> Still loading...")
				default:
					logger.Debug("trigger ignored", "err", err)
					return
				}
			}
		}
		logger.Debug("input closed, activating when ready")
	}

	select {
	case <-ctx.Done():
		return
	case <-s.Presenter().Done():
	}
	if s.Ready() {
		s.Trigger()
	}
}
