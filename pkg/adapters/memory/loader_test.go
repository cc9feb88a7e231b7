package memory_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/aretw0/sceneflow/pkg/adapters/memory"
	"github.com/aretw0/sceneflow/pkg/domain"
	contract "github.com/aretw0/sceneflow/pkg/ports/tests"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeClock is a manually advanced time source.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func TestInMemoryLoader_Contract(t *testing.T) {
	loader := memory.NewLoader([]memory.SceneSpec{
		{Name: "Boot"},
		{Name: "Level1", LoadTime: 20 * time.Millisecond, ActivationTime: 5 * time.Millisecond},
	})

	contract.SceneLoaderContractTest(t, loader, "Level1", time.Second)
}

func TestLoader_ProgressFollowsClock(t *testing.T) {
	clock := &fakeClock{now: time.Unix(0, 0)}
	loader := memory.NewLoader([]memory.SceneSpec{
		{Name: "Boot"},
		{Name: "Level1", LoadTime: time.Second},
	}, memory.WithClock(clock.Now))

	handle, err := loader.BeginLoad(context.Background(), domain.ByIndex(1), domain.LoadSingle)
	require.NoError(t, err)
	handle.SetActivationAllowed(false)

	assert.Equal(t, 0.0, handle.Progress())

	clock.Advance(500 * time.Millisecond)
	assert.InDelta(t, 0.45, handle.Progress(), 1e-9)

	clock.Advance(10 * time.Second)
	assert.Equal(t, domain.ActivationThreshold, handle.Progress(), "progress saturates while gated")
	assert.False(t, handle.IsDone())
	assert.Equal(t, "Boot", loader.ActiveScene().Name)

	handle.SetActivationAllowed(true)
	assert.True(t, handle.IsDone())
	assert.Equal(t, 1.0, handle.Progress())
	assert.Equal(t, domain.Scene{Index: 1, Name: "Level1"}, loader.ActiveScene())
}

func TestLoader_AdditiveAndUnload(t *testing.T) {
	loader := memory.NewLoader([]memory.SceneSpec{
		{Name: "Boot"},
		{Name: "HUD"},
	})
	ctx := context.Background()

	handle, err := loader.BeginLoad(ctx, domain.ByName("HUD"), domain.LoadAdditive)
	require.NoError(t, err)
	require.True(t, handle.IsDone())

	assert.Len(t, loader.LoadedScenes(), 2)
	assert.Equal(t, "Boot", loader.ActiveScene().Name)

	unload, err := loader.BeginUnload(ctx, domain.ByName("HUD"))
	require.NoError(t, err)
	assert.True(t, unload.IsDone())
	assert.Len(t, loader.LoadedScenes(), 1)

	_, err = loader.BeginUnload(ctx, domain.ByName("HUD"))
	assert.ErrorIs(t, err, memory.ErrSceneNotLoaded)
}

func TestLoader_FailingScene(t *testing.T) {
	boom := errors.New("corrupt bundle")
	loader := memory.NewLoader([]memory.SceneSpec{
		{Name: "Boot"},
		{Name: "Broken", Fail: boom},
	})

	handle, err := loader.BeginLoad(context.Background(), domain.ByName("Broken"), domain.LoadSingle)
	require.NoError(t, err)
	assert.ErrorIs(t, handle.Err(), boom)
	assert.False(t, handle.IsDone())

	_, err = loader.BeginLoad(context.Background(), domain.ByIndex(7), domain.LoadSingle)
	assert.ErrorIs(t, err, memory.ErrSceneNotFound)
}
