package ports

import (
	"context"
	"testing"
	"time"

	"github.com/aretw0/sceneflow/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunTransitionJournalContract runs a suite of tests to verify that a TransitionJournal
// implementation adheres to the defined interface contract.
func RunTransitionJournalContract(t *testing.T, journal TransitionJournal) {
	ctx := context.Background()
	prefix := "contract-" + time.Now().Format("20060102150405.000000")
	base := time.Now().UTC().Truncate(time.Second)

	newRecord := func(id string, finishedAt time.Time) domain.TransitionRecord {
		return domain.TransitionRecord{
			ID:          id,
			Target:      domain.ByName("Level1"),
			Mode:        domain.LoadSingle,
			Gated:       true,
			Outcome:     domain.OutcomeCommitted,
			Scene:       domain.Scene{Index: 1, Name: "Level1"},
			RequestedAt: finishedAt.Add(-2 * time.Second),
			FinishedAt:  finishedAt,
			LoadTime:    1500 * time.Millisecond,
		}
	}

	t.Run("Record and Get", func(t *testing.T) {
		rec := newRecord(prefix+"-get", base)

		err := journal.Record(ctx, rec)
		require.NoError(t, err, "Record should not return error")

		loaded, err := journal.Get(ctx, rec.ID)
		require.NoError(t, err, "Get should not return error")
		assert.Equal(t, rec.ID, loaded.ID)
		assert.Equal(t, rec.Outcome, loaded.Outcome)
		assert.Equal(t, "Level1", loaded.Target.Name)
		assert.Nil(t, loaded.Target.Index)
		assert.Equal(t, rec.Scene, loaded.Scene)
		assert.Equal(t, rec.LoadTime, loaded.LoadTime)
		assert.True(t, rec.FinishedAt.Equal(loaded.FinishedAt))
	})

	t.Run("Get Non-Existent", func(t *testing.T) {
		_, err := journal.Get(ctx, "non-existent-"+prefix)
		assert.ErrorIs(t, err, domain.ErrRecordNotFound)
	})

	t.Run("Overwrite", func(t *testing.T) {
		rec := newRecord(prefix+"-overwrite", base)
		require.NoError(t, journal.Record(ctx, rec))

		rec.Outcome = domain.OutcomeSuperseded
		rec.Error = domain.ErrSupersededTransition.Error()
		require.NoError(t, journal.Record(ctx, rec))

		loaded, err := journal.Get(ctx, rec.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.OutcomeSuperseded, loaded.Outcome)
		assert.Equal(t, rec.Error, loaded.Error)
	})

	t.Run("List newest first", func(t *testing.T) {
		older := newRecord(prefix+"-older", base.Add(time.Hour))
		newer := newRecord(prefix+"-newer", base.Add(2*time.Hour))
		require.NoError(t, journal.Record(ctx, older))
		require.NoError(t, journal.Record(ctx, newer))

		records, err := journal.List(ctx, 2)
		require.NoError(t, err)
		require.Len(t, records, 2)
		assert.Equal(t, newer.ID, records[0].ID)
		assert.Equal(t, older.ID, records[1].ID)

		all, err := journal.List(ctx, 0)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, len(all), 2)
	})
}
