//go:build unix

package cli

import (
	"bytes"
	"context"
	"syscall"
	"testing"
	"time"

	"github.com/aretw0/sceneflow/internal/logging"
	"github.com/aretw0/sceneflow/pkg/config"
	"github.com/aretw0/sceneflow/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNotifyContext_Stop(t *testing.T) {
	ctx, stop := NotifyContext(context.Background())
	stop()

	<-ctx.Done()
	assert.Nil(t, Interrupted(ctx, ctx.Err()))
}

func TestNotifyContext_SignalBecomesCause(t *testing.T) {
	ctx, stop := NotifyContext(context.Background())
	defer stop()

	require.NoError(t, syscall.Kill(syscall.Getpid(), syscall.SIGTERM))

	select {
	case <-ctx.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("context not cancelled by SIGTERM")
	}
	assert.Equal(t, syscall.SIGTERM, Interrupted(ctx, nil))
	assert.ErrorContains(t, context.Cause(ctx), "interrupted by terminated")
}

func TestRunTransition_ReturnsInterruption(t *testing.T) {
	cfg := testConfig(t)
	cfg.Scenes = append(cfg.Scenes, config.Scene{Name: "Slow", LoadTime: 10 * time.Second})
	rt, err := NewRuntime(cfg, logging.NewNop())
	require.NoError(t, err)
	defer rt.Close()

	ctx, cancel := context.WithCancelCause(context.Background())
	time.AfterFunc(20*time.Millisecond, func() {
		cancel(&InterruptedError{Signal: syscall.SIGINT})
	})

	var out bytes.Buffer
	_, err = RunTransition(ctx, rt.Director, RunOptions{
		Target:   ParseSelector("Slow"),
		Mode:     domain.LoadSingle,
		Gated:    true,
		Headless: true,
		Out:      &out,
	}, logging.NewNop())

	var ie *InterruptedError
	require.ErrorAs(t, err, &ie)
	assert.Equal(t, syscall.SIGINT, Interrupted(context.Background(), err))
}
