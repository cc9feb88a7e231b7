package events

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/aretw0/sceneflow/internal/logging"
	"github.com/aretw0/sceneflow/pkg/domain"
)

// Handler receives published events.
type Handler func(ctx context.Context, e domain.Event) error

// SubscriptionID identifies a subscription for Unsubscribe.
type SubscriptionID uint64

// allKinds is the pseudo-kind for subscribers that receive every event.
const allKinds domain.EventType = "*"

type subscription struct {
	id      SubscriptionID
	kind    domain.EventType
	handler Handler
}

// Bus is a typed publish/subscribe registry.
// Safe for concurrent use.
type Bus struct {
	mu     sync.RWMutex
	nextID SubscriptionID
	subs   []subscription // in subscription order
	logger *slog.Logger
}

// Option configures the Bus.
type Option func(*Bus)

// WithLogger configures the logger used to report failing handlers.
func WithLogger(logger *slog.Logger) Option {
	return func(b *Bus) {
		b.logger = logger
	}
}

// NewBus creates an empty bus.
func NewBus(opts ...Option) *Bus {
	b := &Bus{
		logger: logging.NewNop(),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Subscribe registers a handler for one event kind.
func (b *Bus) Subscribe(kind domain.EventType, h Handler) SubscriptionID {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.nextID++
	b.subs = append(b.subs, subscription{id: b.nextID, kind: kind, handler: h})
	return b.nextID
}

// SubscribeAll registers a handler for every event kind.
func (b *Bus) SubscribeAll(h Handler) SubscriptionID {
	return b.Subscribe(allKinds, h)
}

// Unsubscribe removes a subscription. It reports whether the subscription existed.
func (b *Bus) Unsubscribe(id SubscriptionID) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i, s := range b.subs {
		if s.id == id {
			b.subs = append(b.subs[:i:i], b.subs[i+1:]...)
			return true
		}
	}
	return false
}

// Len returns the number of active subscriptions.
func (b *Bus) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}

// Publish delivers the event synchronously to matching subscribers in subscription order.
// Handlers may subscribe or unsubscribe while being called.
func (b *Bus) Publish(ctx context.Context, e domain.Event) {
	b.mu.RLock()
	targets := make([]subscription, 0, len(b.subs))
	for _, s := range b.subs {
		if s.kind == e.Type || s.kind == allKinds {
			targets = append(targets, s)
		}
	}
	b.mu.RUnlock()

	for _, s := range targets {
		if err := b.deliver(ctx, s, e); err != nil {
			b.logger.Warn("event handler failed",
				"event", e.Type,
				"subscription", s.id,
				"transition_id", e.TransitionID,
				"err", err,
			)
		}
	}
}

func (b *Bus) deliver(ctx context.Context, s subscription, e domain.Event) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("handler panic: %v", r)
		}
	}()
	return s.handler(ctx, e)
}
