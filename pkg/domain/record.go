package domain

import "time"

// TransitionRecord is the durable summary of a finished transition.
type TransitionRecord struct {
	ID          string        `json:"id"`
	Target      Selector      `json:"target"`
	Mode        LoadMode      `json:"mode"`
	Gated       bool          `json:"gated"`
	Outcome     Outcome       `json:"outcome"`
	Scene       Scene         `json:"scene"`
	Error       string        `json:"error,omitempty"`
	RequestedAt time.Time     `json:"requested_at"`
	FinishedAt  time.Time     `json:"finished_at"`
	LoadTime    time.Duration `json:"load_time"`
}
