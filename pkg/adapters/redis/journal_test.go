package redis_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/aretw0/sceneflow/pkg/adapters/redis"
	"github.com/aretw0/sceneflow/pkg/domain"
	"github.com/aretw0/sceneflow/pkg/ports"
	backend "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedisJournal_Contract(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("Failed to start miniredis: %v", err)
	}
	defer mr.Close()

	client := backend.NewClient(&backend.Options{
		Addr: mr.Addr(),
	})

	journal := redis.NewFromClient(client)
	ports.RunTransitionJournalContract(t, journal)
}

func TestRedisJournal_TTL(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	client := backend.NewClient(&backend.Options{
		Addr: mr.Addr(),
	})
	journal := redis.NewFromClient(client, redis.WithPrefix("test:"), redis.WithTTL(time.Minute))
	ctx := context.Background()

	rec := domain.TransitionRecord{
		ID:         "t1",
		Target:     domain.ByIndex(2),
		Outcome:    domain.OutcomeCommitted,
		FinishedAt: time.Now(),
	}
	require.NoError(t, journal.Record(ctx, rec))
	assert.True(t, mr.Exists("test:t1"), "Record key should be set in Redis")

	loaded, err := journal.Get(ctx, "t1")
	require.NoError(t, err)
	require.NotNil(t, loaded.Target.Index)
	assert.Equal(t, 2, *loaded.Target.Index)

	// Expire the record; the index entry is pruned lazily on List
	mr.FastForward(2 * time.Minute)

	records, err := journal.List(ctx, 0)
	require.NoError(t, err)
	assert.Empty(t, records)

	members, err := mr.ZMembers("test:index")
	if err == nil {
		assert.Empty(t, members)
	}
}
