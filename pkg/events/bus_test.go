package events_test

import (
	"context"
	"errors"
	"testing"

	"github.com/aretw0/sceneflow/pkg/domain"
	"github.com/aretw0/sceneflow/pkg/events"
	"github.com/stretchr/testify/assert"
)

func TestBus_DeliversByKindInOrder(t *testing.T) {
	bus := events.NewBus()
	ctx := context.Background()

	var got []string
	bus.Subscribe(domain.EventProgress, func(ctx context.Context, e domain.Event) error {
		got = append(got, "first")
		return nil
	})
	bus.Subscribe(domain.EventSceneLoaded, func(ctx context.Context, e domain.Event) error {
		got = append(got, "loaded")
		return nil
	})
	bus.Subscribe(domain.EventProgress, func(ctx context.Context, e domain.Event) error {
		got = append(got, "second")
		return nil
	})
	bus.SubscribeAll(func(ctx context.Context, e domain.Event) error {
		got = append(got, "all")
		return nil
	})

	bus.Publish(ctx, domain.Event{Type: domain.EventProgress, Progress: 0.5})

	assert.Equal(t, []string{"first", "second", "all"}, got)
}

func TestBus_IsolatesFailingHandlers(t *testing.T) {
	bus := events.NewBus()
	ctx := context.Background()

	delivered := 0
	bus.Subscribe(domain.EventProgress, func(ctx context.Context, e domain.Event) error {
		panic("observer exploded")
	})
	bus.Subscribe(domain.EventProgress, func(ctx context.Context, e domain.Event) error {
		return errors.New("observer failed")
	})
	bus.Subscribe(domain.EventProgress, func(ctx context.Context, e domain.Event) error {
		delivered++
		return nil
	})

	assert.NotPanics(t, func() {
		bus.Publish(ctx, domain.Event{Type: domain.EventProgress})
		bus.Publish(ctx, domain.Event{Type: domain.EventProgress})
	})
	assert.Equal(t, 2, delivered)
}

func TestBus_Unsubscribe(t *testing.T) {
	bus := events.NewBus()
	ctx := context.Background()

	calls := 0
	id := bus.Subscribe(domain.EventSceneUnloaded, func(ctx context.Context, e domain.Event) error {
		calls++
		return nil
	})

	bus.Publish(ctx, domain.Event{Type: domain.EventSceneUnloaded})
	assert.True(t, bus.Unsubscribe(id))
	assert.False(t, bus.Unsubscribe(id))
	bus.Publish(ctx, domain.Event{Type: domain.EventSceneUnloaded})

	assert.Equal(t, 1, calls)
	assert.Equal(t, 0, bus.Len())
}

func TestBus_UnsubscribeDuringPublish(t *testing.T) {
	bus := events.NewBus()
	ctx := context.Background()

	var id events.SubscriptionID
	calls := 0
	id = bus.Subscribe(domain.EventProgress, func(ctx context.Context, e domain.Event) error {
		calls++
		bus.Unsubscribe(id)
		return nil
	})

	bus.Publish(ctx, domain.Event{Type: domain.EventProgress})
	bus.Publish(ctx, domain.Event{Type: domain.EventProgress})
	assert.Equal(t, 1, calls)
}
