package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/aretw0/sceneflow/pkg/domain"
)

// Journal implements ports.TransitionJournal in memory.
// Safe for concurrent use.
type Journal struct {
	data map[string]domain.TransitionRecord
	mu   sync.RWMutex
}

// NewJournal creates a new in-memory journal.
func NewJournal() *Journal {
	return &Journal{
		data: make(map[string]domain.TransitionRecord),
	}
}

// Record stores the record, replacing any previous record with the same ID.
func (j *Journal) Record(ctx context.Context, rec domain.TransitionRecord) error {
	// Copy the selector index so callers can't mutate stored records by pointer
	if rec.Target.Index != nil {
		idx := *rec.Target.Index
		rec.Target.Index = &idx
	}

	j.mu.Lock()
	defer j.mu.Unlock()
	j.data[rec.ID] = rec
	return nil
}

// Get retrieves a record by ID.
func (j *Journal) Get(ctx context.Context, id string) (domain.TransitionRecord, error) {
	j.mu.RLock()
	defer j.mu.RUnlock()

	rec, ok := j.data[id]
	if !ok {
		return domain.TransitionRecord{}, domain.ErrRecordNotFound
	}
	return rec, nil
}

// List returns records ordered by finish time, newest first.
func (j *Journal) List(ctx context.Context, limit int) ([]domain.TransitionRecord, error) {
	j.mu.RLock()
	records := make([]domain.TransitionRecord, 0, len(j.data))
	for _, rec := range j.data {
		records = append(records, rec)
	}
	j.mu.RUnlock()

	sort.Slice(records, func(a, b int) bool {
		if records[a].FinishedAt.Equal(records[b].FinishedAt) {
			return records[a].ID < records[b].ID
		}
		return records[a].FinishedAt.After(records[b].FinishedAt)
	})

	if limit > 0 && len(records) > limit {
		records = records[:limit]
	}
	return records, nil
}
