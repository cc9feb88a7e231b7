package domain

import "time"

// TransitionRequest describes a single navigation to a target scene.
// It is immutable once the load begins; a newer request supersedes it instead of mutating it.
type TransitionRequest struct {
	ID          string    `json:"id"`
	Target      Selector  `json:"target"`
	Mode        LoadMode  `json:"mode"`
	Gated       bool      `json:"gated"` // Activation waits for an explicit Commit
	RequestedAt time.Time `json:"requested_at"`
}
