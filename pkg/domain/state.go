package domain

// Phase is the lifecycle position of a single transition.
type Phase string

const (
	PhaseIdle       Phase = "idle"
	PhaseRequested  Phase = "requested"
	PhaseLoading    Phase = "loading"    // Raw progress below the activation threshold
	PhaseStaged     Phase = "staged"     // Loaded, activation withheld
	PhaseCommitting Phase = "committing" // Activation allowed, host finalizing
	PhaseDone       Phase = "done"
	PhaseSuperseded Phase = "superseded"
	PhaseFailed     Phase = "failed"
)

// Terminal reports whether no further transitions are possible from this phase.
func (p Phase) Terminal() bool {
	switch p {
	case PhaseDone, PhaseSuperseded, PhaseFailed:
		return true
	}
	return false
}

// Outcome is the terminal result of a transition.
type Outcome string

const (
	OutcomeCommitted  Outcome = "committed"
	OutcomeSuperseded Outcome = "superseded"
	OutcomeFailed     Outcome = "failed"
)

// OutcomeOf maps a terminal phase to its outcome. Non-terminal phases yield "".
func OutcomeOf(p Phase) Outcome {
	switch p {
	case PhaseDone:
		return OutcomeCommitted
	case PhaseSuperseded:
		return OutcomeSuperseded
	case PhaseFailed:
		return OutcomeFailed
	}
	return ""
}
