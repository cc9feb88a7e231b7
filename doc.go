/*
Package sceneflow orchestrates asynchronous scene transitions for a host runtime.

A transition loads the target content in the background with activation withheld,
shows a loading screen for at least a minimum time, and only makes the new content
active once an external trigger (usually user input) fires after both the load and
the minimum display time have finished.

# Concept

The host ("the engine that actually owns scenes") is reached through the
ports.SceneLoader interface. sceneflow never renders anything: it drives the host's
load handles, normalizes their progress, and publishes progress and lifecycle events
on a bus that views, metrics, and remote clients subscribe to.

There is a single transition slot. Requesting a new transition while another one is
still loading replaces it; the replaced one resolves as superseded.

# Usage

	loader := memory.NewLoader([]memory.SceneSpec{
		{Name: "Menu"},
		{Name: "Level1", LoadTime: 3 * time.Second},
	})

	director := sceneflow.New(loader, sceneflow.WithMinDisplay(2*time.Second))
	defer director.Close()

	session, err := director.Navigate(ctx, domain.ByName("Level1"), domain.LoadSingle, true)
	if err != nil {
		log.Fatal(err)
	}

	// Later, on any key press:
	_ = director.Trigger()

	if err := session.Wait(ctx); err != nil {
		log.Printf("transition did not complete: %v", err)
	}

Every finished transition is written to the configured ports.TransitionJournal and can
be listed with History.
*/
package sceneflow
