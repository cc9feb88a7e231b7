package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/aretw0/sceneflow/pkg/domain"
	backend "github.com/redis/go-redis/v9"
)

// Journal implements ports.TransitionJournal using Redis.
// Records are stored as JSON strings and indexed in a ZSET scored by finish time.
type Journal struct {
	client *backend.Client
	prefix string
	ttl    time.Duration
}

type Option func(*Journal)

// WithTTL sets the expiration for records.
func WithTTL(ttl time.Duration) Option {
	return func(j *Journal) {
		j.ttl = ttl
	}
}

// WithPrefix sets the key prefix for records.
func WithPrefix(prefix string) Option {
	return func(j *Journal) {
		j.prefix = prefix
	}
}

// New creates a new Redis journal with options.
func New(address, password string, db int, opts ...Option) *Journal {
	rdb := backend.NewClient(&backend.Options{
		Addr:     address,
		Password: password,
		DB:       db,
	})
	return NewFromClient(rdb, opts...)
}

// NewFromClient creates a new Redis journal from an existing client.
func NewFromClient(client *backend.Client, opts ...Option) *Journal {
	journal := &Journal{
		client: client,
		prefix: "sceneflow:transition:",
		ttl:    0, // No expiration by default
	}

	for _, opt := range opts {
		opt(journal)
	}

	return journal
}

func (j *Journal) key(id string) string {
	return j.prefix + id
}

func (j *Journal) indexKey() string {
	return j.prefix + "index"
}

// Record persists the record to Redis.
func (j *Journal) Record(ctx context.Context, rec domain.TransitionRecord) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to marshal record: %w", err)
	}

	pipe := j.client.Pipeline()
	pipe.Set(ctx, j.key(rec.ID), data, j.ttl)
	pipe.ZAdd(ctx, j.indexKey(), backend.Z{
		Score:  float64(rec.FinishedAt.UnixNano()),
		Member: rec.ID,
	})

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to save to redis: %w", err)
	}
	return nil
}

// Get retrieves a record from Redis.
func (j *Journal) Get(ctx context.Context, id string) (domain.TransitionRecord, error) {
	val, err := j.client.Get(ctx, j.key(id)).Result()
	if err != nil {
		if errors.Is(err, backend.Nil) {
			return domain.TransitionRecord{}, domain.ErrRecordNotFound
		}
		return domain.TransitionRecord{}, fmt.Errorf("failed to get from redis: %w", err)
	}

	var rec domain.TransitionRecord
	if err := json.Unmarshal([]byte(val), &rec); err != nil {
		return domain.TransitionRecord{}, fmt.Errorf("failed to unmarshal record: %w", err)
	}
	return rec, nil
}

// List returns records newest first, skipping index entries whose record expired.
func (j *Journal) List(ctx context.Context, limit int) ([]domain.TransitionRecord, error) {
	stop := int64(-1)
	if limit > 0 {
		stop = int64(limit) - 1
	}

	ids, err := j.client.ZRevRange(ctx, j.indexKey(), 0, stop).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list records: %w", err)
	}

	records := make([]domain.TransitionRecord, 0, len(ids))
	var stale []any
	for _, id := range ids {
		rec, err := j.Get(ctx, id)
		if errors.Is(err, domain.ErrRecordNotFound) {
			stale = append(stale, id)
			continue
		}
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}

	// Lazy cleanup of expired records
	if len(stale) > 0 {
		if err := j.client.ZRem(ctx, j.indexKey(), stale...).Err(); err != nil {
			return nil, fmt.Errorf("failed to prune expired records: %w", err)
		}
	}
	return records, nil
}

// Close closes the redis client.
func (j *Journal) Close() error {
	return j.client.Close()
}
