package orchestrator

import "context"

// Binding drives one specific transition. Unlike RunLoad and Commit on the
// Orchestrator, it never acts on a transition requested later, so a presenter
// left over from a superseded request cannot load or activate its successor.
type Binding struct {
	o *Orchestrator
	t *Transition
}

// Bind returns a Binding for t.
func (o *Orchestrator) Bind(t *Transition) *Binding {
	return &Binding{o: o, t: t}
}

// Transition returns the bound transition.
func (b *Binding) Transition() *Transition { return b.t }

// RunLoad behaves like Orchestrator.RunLoad for the bound transition.
// It returns domain.ErrSupersededTransition once the transition was replaced.
func (b *Binding) RunLoad(ctx context.Context, sink ProgressSink) error {
	return b.o.runLoad(ctx, b.t, sink)
}

// Commit behaves like Orchestrator.Commit for the bound transition.
func (b *Binding) Commit() error {
	return b.o.commit(b.t)
}
