/*
Package orchestrator drives two-phase scene transitions: load, then gate activation.

An Orchestrator holds a single transition slot. RequestTransition records the target
(last writer wins; a transition replaced before it was committed resolves as superseded),
RunLoad starts the host load with activation withheld and reports normalized progress
until the content is staged, and Commit opens the activation gate so the host can finalize.

	orch := orchestrator.New(loader, orchestrator.WithBus(bus))

	t, err := orch.RequestTransition(ctx, domain.ByName("Level1"), domain.LoadSingle, true)
	if err != nil {
		return err
	}
	if err := orch.RunLoad(ctx, func(p float64) { fmt.Printf("%3.0f%%\n", p*100) }); err != nil {
		return err
	}
	_ = orch.Commit()
	return t.Wait(ctx)

Host handles are only ever observed by polling at a fixed tick, never by busy-spinning.
*/
package orchestrator
