package sceneflow_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/aretw0/sceneflow"
	"github.com/aretw0/sceneflow/pkg/adapters/memory"
	"github.com/aretw0/sceneflow/pkg/domain"
	"github.com/aretw0/sceneflow/pkg/observability"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errCorrupt = errors.New("corrupt asset bundle")

func catalog() []memory.SceneSpec {
	return []memory.SceneSpec{
		{Name: "Boot"},
		{Name: "Level1", LoadTime: 30 * time.Millisecond, ActivationTime: 5 * time.Millisecond},
		{Name: "Broken", LoadTime: 30 * time.Millisecond, Fail: errCorrupt, FailAt: 0.3},
		{Name: "Slow", LoadTime: 5 * time.Second},
	}
}

func newDirector(t *testing.T, opts ...sceneflow.Option) (*sceneflow.Director, *memory.Loader, *memory.Journal) {
	t.Helper()
	loader := memory.NewLoader(catalog())
	journal := memory.NewJournal()
	opts = append([]sceneflow.Option{
		sceneflow.WithJournal(journal),
		sceneflow.WithTickInterval(time.Millisecond),
		sceneflow.WithMinDisplay(20 * time.Millisecond),
	}, opts...)
	d := sceneflow.New(loader, opts...)
	t.Cleanup(func() { _ = d.Close() })
	return d, loader, journal
}

func waitCtx(t *testing.T) context.Context {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	t.Cleanup(cancel)
	return ctx
}

func TestDirector_GatedNavigation(t *testing.T) {
	d, loader, _ := newDirector(t)
	ctx := waitCtx(t)

	assert.Equal(t, domain.PhaseIdle, d.Status().Phase)
	assert.ErrorIs(t, d.Trigger(), domain.ErrNoActiveTransition)

	s, err := d.Navigate(ctx, domain.ByName("Level1"), domain.LoadSingle, true)
	require.NoError(t, err)
	assert.Same(t, s, d.Current())
	assert.ErrorIs(t, d.Trigger(), sceneflow.ErrNotReady)

	require.Eventually(t, s.Ready, time.Second, time.Millisecond)

	st := d.Status()
	assert.Equal(t, s.ID(), st.TransitionID)
	assert.Equal(t, domain.PhaseStaged, st.Phase)
	assert.Equal(t, 1.0, st.Progress)
	assert.True(t, st.Ready)
	assert.Equal(t, "Boot", st.ActiveScene.Name, "staged content stays inactive until triggered")

	require.NoError(t, d.Trigger())
	require.NoError(t, s.Wait(ctx))
	assert.Equal(t, "Level1", loader.ActiveScene().Name)

	require.Eventually(t, func() bool {
		recs, err := d.History(ctx, 0)
		return err == nil && len(recs) == 1
	}, time.Second, time.Millisecond)

	recs, err := d.History(ctx, 0)
	require.NoError(t, err)
	assert.Equal(t, s.ID(), recs[0].ID)
	assert.Equal(t, domain.OutcomeCommitted, recs[0].Outcome)
	assert.Equal(t, "Level1", recs[0].Scene.Name)
	assert.Positive(t, recs[0].LoadTime)

	assert.ErrorIs(t, d.Trigger(), domain.ErrNoActiveTransition)
}

func TestDirector_UngatedActivatesWithoutTrigger(t *testing.T) {
	d, loader, _ := newDirector(t)
	ctx := waitCtx(t)

	s, err := d.Navigate(ctx, domain.ByIndex(1), domain.LoadSingle, false)
	require.NoError(t, err)
	require.NoError(t, s.Wait(ctx))
	assert.Equal(t, "Level1", loader.ActiveScene().Name)
}

func TestDirector_LastRequestWins(t *testing.T) {
	d, loader, journal := newDirector(t)
	ctx := waitCtx(t)

	first, err := d.Navigate(ctx, domain.ByName("Slow"), domain.LoadSingle, true)
	require.NoError(t, err)
	require.Eventually(t, func() bool { return first.Transition().Progress() > 0 }, time.Second, time.Millisecond)

	second, err := d.Navigate(ctx, domain.ByName("Level1"), domain.LoadSingle, true)
	require.NoError(t, err)

	assert.ErrorIs(t, first.Wait(ctx), domain.ErrSupersededTransition)
	require.Eventually(t, second.Ready, time.Second, time.Millisecond)
	first.Trigger()
	assert.False(t, second.Presenter().Committed(), "stale loading screen cannot activate its successor")

	require.NoError(t, d.Trigger())
	require.NoError(t, second.Wait(ctx))
	assert.Equal(t, "Level1", loader.ActiveScene().Name)

	require.Eventually(t, func() bool {
		recs, _ := journal.List(ctx, 0)
		return len(recs) == 2
	}, time.Second, time.Millisecond)

	superseded, err := journal.Get(ctx, first.ID())
	require.NoError(t, err)
	assert.Equal(t, domain.OutcomeSuperseded, superseded.Outcome)

	recs, err := d.History(ctx, 1)
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, second.ID(), recs[0].ID)
}

func TestDirector_FailedLoadIsRecorded(t *testing.T) {
	metrics := observability.NewMetrics(nil)
	d, _, journal := newDirector(t, sceneflow.WithMetrics(metrics))
	ctx := waitCtx(t)

	s, err := d.Navigate(ctx, domain.ByName("Broken"), domain.LoadSingle, true)
	require.NoError(t, err)

	err = s.Wait(ctx)
	assert.ErrorIs(t, err, domain.ErrHostLoadFailure)
	assert.ErrorIs(t, err, errCorrupt)
	assert.False(t, s.Ready())

	require.Eventually(t, func() bool {
		rec, err := journal.Get(ctx, s.ID())
		return err == nil && rec.Outcome == domain.OutcomeFailed
	}, time.Second, time.Millisecond)
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.Transitions.WithLabelValues("failed")))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.Events.WithLabelValues("transition_failed")))

	st := d.Status()
	assert.Equal(t, domain.PhaseFailed, st.Phase)
	assert.Contains(t, st.Error, errCorrupt.Error())
}

func TestDirector_InvalidSelector(t *testing.T) {
	d, _, _ := newDirector(t)

	_, err := d.Navigate(context.Background(), domain.Selector{}, domain.LoadSingle, true)
	assert.ErrorIs(t, err, domain.ErrInvalidSelector)
	assert.Nil(t, d.Current())
}

func TestDirector_AdditiveUnloadAndReload(t *testing.T) {
	d, loader, _ := newDirector(t, sceneflow.WithMinDisplay(0))
	ctx := waitCtx(t)

	scene, err := d.LoadAdditive(ctx, domain.ByName("Level1"))
	require.NoError(t, err)
	assert.Equal(t, "Level1", scene.Name)
	assert.Len(t, loader.LoadedScenes(), 2)
	assert.Equal(t, "Boot", loader.ActiveScene().Name)

	require.NoError(t, d.Unload(ctx, domain.ByName("Level1")))
	assert.Len(t, loader.LoadedScenes(), 1)

	s, err := d.Reload(ctx, false)
	require.NoError(t, err)
	assert.Equal(t, 0, *s.Transition().Request().Target.Index)
	require.NoError(t, s.Wait(ctx))
	assert.Equal(t, "Boot", loader.ActiveScene().Name)
}

func TestDirector_Close(t *testing.T) {
	d, _, _ := newDirector(t)
	ctx := waitCtx(t)

	s, err := d.Navigate(ctx, domain.ByName("Slow"), domain.LoadSingle, true)
	require.NoError(t, err)

	require.NoError(t, d.Close())
	require.NoError(t, d.Close())

	select {
	case <-s.Presenter().Done():
	default:
		t.Fatal("presenter still running after Close")
	}

	_, err = d.Navigate(ctx, domain.ByName("Level1"), domain.LoadSingle, true)
	assert.ErrorIs(t, err, sceneflow.ErrClosed)
	assert.ErrorIs(t, d.Unload(ctx, domain.ByIndex(0)), sceneflow.ErrClosed)
}

func TestDirector_CloseRecordsAbandonedTransition(t *testing.T) {
	d, _, journal := newDirector(t)
	ctx := waitCtx(t)

	s, err := d.Navigate(ctx, domain.ByName("Slow"), domain.LoadSingle, true)
	require.NoError(t, err)
	require.NoError(t, d.Close())

	assert.Equal(t, domain.PhaseFailed, s.Transition().Phase())
	assert.Error(t, s.Wait(ctx))

	recs, err := journal.List(ctx, 0)
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, s.ID(), recs[0].ID)
	assert.Equal(t, domain.OutcomeFailed, recs[0].Outcome)
	assert.NotEmpty(t, recs[0].Error)
	assert.False(t, recs[0].FinishedAt.IsZero())
}
