package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
)

// InterruptedError is the cancel cause of a context stopped by SIGINT or SIGTERM.
type InterruptedError struct {
	Signal os.Signal
}

func (e *InterruptedError) Error() string {
	return fmt.Sprintf("interrupted by %v", e.Signal)
}

// NotifyContext returns a context cancelled on SIGINT or SIGTERM with an
// *InterruptedError as its cause. The returned stop function cancels it without one.
func NotifyContext(parent context.Context) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancelCause(parent)
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	go func() {
		defer signal.Stop(sigCh)
		select {
		case sig := <-sigCh:
			cancel(&InterruptedError{Signal: sig})
		case <-ctx.Done():
		}
	}()

	return ctx, func() { cancel(nil) }
}

// Interrupted returns the signal that stopped ctx or produced err, or nil.
func Interrupted(ctx context.Context, err error) os.Signal {
	var ie *InterruptedError
	if errors.As(err, &ie) || errors.As(context.Cause(ctx), &ie) {
		return ie.Signal
	}
	return nil
}
