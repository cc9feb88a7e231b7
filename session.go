package sceneflow

import (
	"context"

	"github.com/aretw0/sceneflow/pkg/domain"
	"github.com/aretw0/sceneflow/pkg/orchestrator"
	"github.com/aretw0/sceneflow/pkg/presenter"
)

// Session pairs a transition with the loading screen presenting it.
type Session struct {
	transition *orchestrator.Transition
	presenter  *presenter.Presenter
}

// ID returns the transition identifier.
func (s *Session) ID() string { return s.transition.ID() }

// Transition returns the underlying transition.
func (s *Session) Transition() *orchestrator.Transition { return s.transition }

// Presenter returns the loading screen controller.
func (s *Session) Presenter() *presenter.Presenter { return s.presenter }

// Ready reports whether the loading screen accepts the activation trigger.
func (s *Session) Ready() bool { return s.presenter.Ready() }

// Trigger forwards the activation trigger. It is a no-op before Ready.
func (s *Session) Trigger() { s.presenter.OnActivationTrigger() }

// Wait blocks until the transition is terminal or ctx is done.
// It returns nil only when the target content became active.
func (s *Session) Wait(ctx context.Context) error {
	return s.transition.Wait(ctx)
}

// Status is a point-in-time view of the transition slot.
type Status struct {
	TransitionID string          `json:"transition_id,omitempty"`
	Target       string          `json:"target,omitempty"`
	Mode         domain.LoadMode `json:"mode,omitempty"`
	Gated        bool            `json:"gated"`
	Phase        domain.Phase    `json:"phase"`
	Progress     float64         `json:"progress"`
	Ready        bool            `json:"ready"`
	Scene        domain.Scene    `json:"scene"`
	ActiveScene  domain.Scene    `json:"active_scene"`
	Error        string          `json:"error,omitempty"`
}

func (s *Session) status() Status {
	t := s.transition
	req := t.Request()
	st := Status{
		TransitionID: t.ID(),
		Target:       req.Target.String(),
		Mode:         req.Mode,
		Gated:        req.Gated,
		Phase:        t.Phase(),
		Progress:     t.Progress(),
		Ready:        s.presenter.Ready(),
		Scene:        t.Scene(),
	}
	if err := t.Err(); err != nil {
		st.Error = err.Error()
	} else if err := s.presenter.Err(); err != nil {
		st.Error = err.Error()
	}
	return st
}
