package orchestrator_test

import (
	"context"
	"testing"
	"time"

	"github.com/aretw0/sceneflow/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBinding_IgnoresLaterRequests(t *testing.T) {
	// Only the replacement ever reaches the host
	second := &fakeHandle{raw: 0.9, scene: domain.Scene{Index: 2, Name: "Level2"}}
	loader := &fakeLoader{queue: []*fakeHandle{second}}
	orch, _ := newOrchestrator(t, loader)
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	t1, err := orch.RequestTransition(ctx, domain.ByIndex(1), domain.LoadSingle, true)
	require.NoError(t, err)
	stale := orch.Bind(t1)
	assert.Same(t, t1, stale.Transition())

	t2, err := orch.RequestTransition(ctx, domain.ByIndex(2), domain.LoadSingle, true)
	require.NoError(t, err)

	// The stale binding must not claim the replacement
	assert.ErrorIs(t, stale.RunLoad(ctx, nil), domain.ErrSupersededTransition)
	assert.Equal(t, 0, loader.LoadCalls())
	assert.Equal(t, domain.PhaseRequested, t2.Phase())

	current := orch.Bind(t2)
	require.NoError(t, current.RunLoad(ctx, nil))
	require.Equal(t, domain.PhaseStaged, t2.Phase())
	assert.Equal(t, 1, loader.LoadCalls())
	assert.Same(t, second, orch.CurrentHandle())

	assert.ErrorIs(t, stale.Commit(), domain.ErrNoActiveTransition)
	assert.False(t, second.ActivationAllowed(), "stale commit must not open the replacement gate")

	require.NoError(t, current.Commit())
	assert.True(t, second.ActivationAllowed())
	second.Finish()
	require.NoError(t, t2.Wait(ctx))
	assert.Equal(t, domain.OutcomeCommitted, t2.Outcome())
}
