package http

import (
	"log/slog"
	"sync"
)

// allTopics receives every broadcast regardless of transition.
const allTopics = ""

// StreamManager handles active SSE connections.
type StreamManager struct {
	mu          sync.RWMutex
	subscribers map[string]map[chan<- string]struct{} // TransitionID -> Set of Channels
	logger      *slog.Logger
}

// NewStreamManager creates an empty StreamManager.
func NewStreamManager(logger *slog.Logger) *StreamManager {
	return &StreamManager{
		subscribers: make(map[string]map[chan<- string]struct{}),
		logger:      logger,
	}
}

// Subscribe registers a client for one transition, or for every event when
// transitionID is empty. The returned function unregisters it.
func (sm *StreamManager) Subscribe(transitionID string) (chan string, func()) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	ch := make(chan string, 64)
	if _, ok := sm.subscribers[transitionID]; !ok {
		sm.subscribers[transitionID] = make(map[chan<- string]struct{})
	}
	sm.subscribers[transitionID][ch] = struct{}{}

	return ch, func() {
		sm.mu.Lock()
		defer sm.mu.Unlock()
		if subs, ok := sm.subscribers[transitionID]; ok {
			delete(subs, ch)
			close(ch)
			if len(subs) == 0 {
				delete(sm.subscribers, transitionID)
			}
		}
	}
}

// Broadcast sends msg to the transition's subscribers and to the global ones.
func (sm *StreamManager) Broadcast(transitionID string, msg string) {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	sm.send(allTopics, msg)
	if transitionID != allTopics {
		sm.send(transitionID, msg)
	}
}

// Caller must hold sm.mu.
func (sm *StreamManager) send(topic, msg string) {
	for ch := range sm.subscribers[topic] {
		select {
		case ch <- msg:
		default:
			// Drop message if channel is full (slow client)
			sm.logger.Warn("SSE: client buffer full, dropping message", "transition_id", topic)
		}
	}
}

// Len returns the number of connected clients.
func (sm *StreamManager) Len() int {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	n := 0
	for _, subs := range sm.subscribers {
		n += len(subs)
	}
	return n
}
