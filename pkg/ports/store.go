package ports

import (
	"context"

	"github.com/aretw0/sceneflow/pkg/domain"
)

// TransitionJournal persists the records of finished transitions.
type TransitionJournal interface {
	// Record stores a finished transition. Recording the same ID twice overwrites it.
	Record(ctx context.Context, rec domain.TransitionRecord) error

	// Get retrieves a record by transition ID.
	// Returns domain.ErrRecordNotFound if the record does not exist.
	Get(ctx context.Context, id string) (domain.TransitionRecord, error)

	// List returns up to limit records, most recently finished first.
	// A limit <= 0 returns every record.
	List(ctx context.Context, limit int) ([]domain.TransitionRecord, error)
}
