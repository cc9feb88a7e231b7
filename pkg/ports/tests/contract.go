package tests

import (
	"context"
	"testing"
	"time"

	"github.com/aretw0/sceneflow/pkg/domain"
	"github.com/aretw0/sceneflow/pkg/ports"
)

// SceneLoaderContractTest is a reusable test suite that verifies if an adapter complies with ports.SceneLoader.
// knownScene must name a scene the loader can load within timeout.
func SceneLoaderContractTest(t *testing.T, loader ports.SceneLoader, knownScene string, timeout time.Duration) {
	t.Helper()
	ctx := context.Background()

	t.Run("BeginLoad_Unknown", func(t *testing.T) {
		_, err := loader.BeginLoad(ctx, domain.ByName("does-not-exist"), domain.LoadSingle)
		if err == nil {
			t.Fatal("expected error loading unknown scene, got nil")
		}
	})

	t.Run("Gate_Withholds_Activation", func(t *testing.T) {
		handle, err := loader.BeginLoad(ctx, domain.ByName(knownScene), domain.LoadSingle)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		defer handle.Release()
		handle.SetActivationAllowed(false)

		deadline := time.Now().Add(timeout)
		for !domain.IsStaged(handle.Progress()) {
			if time.Now().After(deadline) {
				t.Fatalf("scene %s never staged, progress %.2f", knownScene, handle.Progress())
			}
			time.Sleep(time.Millisecond)
		}

		if handle.Progress() > domain.ActivationThreshold {
			t.Errorf("progress must saturate at threshold while gated, got %.2f", handle.Progress())
		}
		if handle.IsDone() {
			t.Error("handle reported done while activation was withheld")
		}

		handle.SetActivationAllowed(true)
		for !handle.IsDone() {
			if time.Now().After(deadline.Add(timeout)) {
				t.Fatal("handle never finished after activation was allowed")
			}
			time.Sleep(time.Millisecond)
		}
		if err := handle.Err(); err != nil {
			t.Fatalf("unexpected handle error: %v", err)
		}
		if got := loader.ActiveScene().Name; got != knownScene {
			t.Errorf("expected active scene %s, got %s", knownScene, got)
		}
	})

	t.Run("BeginUnload_Unknown", func(t *testing.T) {
		_, err := loader.BeginUnload(ctx, domain.ByName("does-not-exist"))
		if err == nil {
			t.Fatal("expected error unloading unknown scene, got nil")
		}
	})
}
