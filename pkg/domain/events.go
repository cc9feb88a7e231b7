package domain

import (
	"time"
)

// EventType defines the category of the event.
type EventType string

const (
	EventProgress             EventType = "progress"
	EventSceneLoaded          EventType = "scene_loaded"
	EventSceneUnloaded        EventType = "scene_unloaded"
	EventTransitionSuperseded EventType = "transition_superseded"
	EventTransitionFailed     EventType = "transition_failed"
)

// Event is a progress or lifecycle notification.
// Fields that do not apply to the event type are left zero.
type Event struct {
	Type         EventType `json:"type"`
	Timestamp    time.Time `json:"timestamp"`
	TransitionID string    `json:"transition_id,omitempty"`
	Scene        Scene     `json:"scene"`
	Progress     float64   `json:"progress,omitempty"`
	Err          error     `json:"-"`
}

// ErrText returns the event error text, or "" when the event carries none.
func (e Event) ErrText() string {
	if e.Err == nil {
		return ""
	}
	return e.Err.Error()
}
