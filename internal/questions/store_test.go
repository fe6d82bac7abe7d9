package questions

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maxwell142857/cs5500-group6/internal/db"
)

func setupTestStore(t *testing.T) *Store {
	t.Helper()
	database, err := db.OpenMemory()
	require.NoError(t, err)
	t.Cleanup(func() { database.Close() })
	return NewStore(database)
}

func TestEnsureIsIdempotent(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	a, err := store.Ensure(ctx, "Is it a mammal?", FeatureAIGenerated)
	require.NoError(t, err)
	b, err := store.Ensure(ctx, "  Is it a mammal?  ", FeatureCached)
	require.NoError(t, err)

	assert.Equal(t, a.ID, b.ID)
	assert.Equal(t, FeatureAIGenerated, b.Feature)

	_, err = store.Ensure(ctx, "   ", FeatureCached)
	assert.Error(t, err)
}

func TestNextCachedRanking(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	low, err := store.Seed(ctx, "animal", 0, "Is it a bird?")
	require.NoError(t, err)
	high, err := store.Seed(ctx, "animal", 0, "Is it a mammal?")
	require.NoError(t, err)
	_, err = store.Seed(ctx, "animal", 1, "Does it have fur?")
	require.NoError(t, err)
	_, err = store.Seed(ctx, "food", 0, "Is it sweet?")
	require.NoError(t, err)

	require.NoError(t, store.AdjustEffectiveness(ctx, "animal", high.ID, 0.1))
	require.NoError(t, store.AdjustEffectiveness(ctx, "animal", low.ID, -0.05))

	q, err := store.NextCached(ctx, "animal", 0, nil)
	require.NoError(t, err)
	assert.Equal(t, "Is it a mammal?", q.Text)

	q, err = store.NextCached(ctx, "animal", 0, []string{"Is it a mammal?"})
	require.NoError(t, err)
	assert.Equal(t, "Is it a bird?", q.Text)

	_, err = store.NextCached(ctx, "animal", 0, []string{"Is it a mammal?", "Is it a bird?"})
	assert.ErrorIs(t, err, ErrNotFound)

	q, err = store.NextCached(ctx, "animal", 1, nil)
	require.NoError(t, err)
	assert.Equal(t, "Does it have fur?", q.Text)

	_, err = store.NextCached(ctx, "vehicle", 0, nil)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestNextCachedExcludeIgnoresCase(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	_, err := store.Seed(ctx, "animal", 2, "IS IT A MAMMAL?")
	require.NoError(t, err)

	_, err = store.NextCached(ctx, "animal", 2, []string{"Is it a mammal?"})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestNextCachedUsageBreaksTies(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	a, err := store.Seed(ctx, "animal", 2, "Is it wild?")
	require.NoError(t, err)
	b, err := store.Seed(ctx, "animal", 2, "Is it small?")
	require.NoError(t, err)

	// Same effectiveness after +0.25 then -0.25; b has more usage.
	require.NoError(t, store.AdjustEffectiveness(ctx, "animal", b.ID, 0.25))
	require.NoError(t, store.AdjustEffectiveness(ctx, "animal", b.ID, -0.25))

	q, err := store.NextCached(ctx, "animal", 2, nil)
	require.NoError(t, err)
	assert.Equal(t, b.ID, q.ID)
	assert.NotEqual(t, a.ID, q.ID)
}

func TestAdjustEffectivenessClamps(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	q, err := store.Seed(ctx, "animal", 0, "Is it a mammal?")
	require.NoError(t, err)

	for i := 0; i < 10; i++ {
		require.NoError(t, store.AdjustEffectiveness(ctx, "animal", q.ID, 0.1))
	}
	slot, err := store.Slot(ctx, "animal", q.ID)
	require.NoError(t, err)
	assert.Equal(t, 1.0, slot.Effectiveness)
	assert.Equal(t, 10, slot.UsageCount)

	for i := 0; i < 30; i++ {
		require.NoError(t, store.AdjustEffectiveness(ctx, "animal", q.ID, -0.05))
	}
	slot, err = store.Slot(ctx, "animal", q.ID)
	require.NoError(t, err)
	assert.Equal(t, 0.0, slot.Effectiveness)

	assert.ErrorIs(t, store.AdjustEffectiveness(ctx, "food", q.ID, 0.1), ErrNotFound)
}

func TestRecordUsage(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	q, err := store.Ensure(ctx, "Is it a reptile?", FeatureAIGenerated)
	require.NoError(t, err)
	created, err := store.EnsureSlot(ctx, "animal", q.ID, 3, 1, DefaultEffectiveness)
	require.NoError(t, err)
	assert.True(t, created)

	require.NoError(t, store.RecordUsage(ctx, q.ID, "animal", 5))

	got, err := store.Get(ctx, q.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.AskCount)
	assert.NotNil(t, got.LastUsedAt)

	// The existing position is kept.
	slot, err := store.Slot(ctx, "animal", q.ID)
	require.NoError(t, err)
	require.NotNil(t, slot.Position)
	assert.Equal(t, 3, *slot.Position)
	assert.Equal(t, 1, slot.UsageCount)

	assert.ErrorIs(t, store.RecordUsage(ctx, 9999, "animal", 0), ErrNotFound)
}

func TestRecordUsageFillsMissingPosition(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	q, err := store.Ensure(ctx, "Is it green?", FeatureCached)
	require.NoError(t, err)
	_, err = store.db.ExecContext(ctx,
		`INSERT INTO domain_questions (domain, question_id) VALUES (?, ?)`, "animal", q.ID)
	require.NoError(t, err)

	slot, err := store.Slot(ctx, "animal", q.ID)
	require.NoError(t, err)
	assert.Nil(t, slot.Position)

	require.NoError(t, store.RecordUsage(ctx, q.ID, "animal", 4))
	slot, err = store.Slot(ctx, "animal", q.ID)
	require.NoError(t, err)
	require.NotNil(t, slot.Position)
	assert.Equal(t, 4, *slot.Position)
}

func TestEnsureSlotDoesNotOverwrite(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	q, err := store.Seed(ctx, "animal", 0, "Is it a pet?")
	require.NoError(t, err)
	require.NoError(t, store.AdjustEffectiveness(ctx, "animal", q.ID, 0.1))

	created, err := store.EnsureSlot(ctx, "animal", q.ID, 7, 1, DefaultEffectiveness)
	require.NoError(t, err)
	assert.False(t, created)

	slot, err := store.Slot(ctx, "animal", q.ID)
	require.NoError(t, err)
	assert.InDelta(t, 0.6, slot.Effectiveness, 1e-9)
	assert.Equal(t, 0, *slot.Position)
}

func TestRecordOutcomeRunningMean(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	q, err := store.Ensure(ctx, "Is it big?", FeatureAIGenerated)
	require.NoError(t, err)

	require.NoError(t, store.RecordOutcome(ctx, q.ID, true))
	require.NoError(t, store.RecordOutcome(ctx, q.ID, false))
	require.NoError(t, store.RecordOutcome(ctx, q.ID, true))
	require.NoError(t, store.RecordOutcome(ctx, q.ID, true))

	got, err := store.Get(ctx, q.ID)
	require.NoError(t, err)
	assert.InDelta(t, 0.75, got.SuccessRate, 1e-9)
}

func TestRanked(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	a, err := store.Seed(ctx, "sport", 0, "Is it played with a ball?")
	require.NoError(t, err)
	_, err = store.Seed(ctx, "sport", 1, "Is it a team sport?")
	require.NoError(t, err)
	require.NoError(t, store.AdjustEffectiveness(ctx, "sport", a.ID, 0.1))

	ranked, err := store.Ranked(ctx, "sport", 0)
	require.NoError(t, err)
	require.Len(t, ranked, 2)
	assert.Equal(t, "Is it played with a ball?", ranked[0].Text)
}

func TestWithTxRollback(t *testing.T) {
	database, err := db.OpenMemory()
	require.NoError(t, err)
	t.Cleanup(func() { database.Close() })
	store := NewStore(database)
	ctx := context.Background()

	q, err := store.Seed(ctx, "animal", 0, "Is it a mammal?")
	require.NoError(t, err)

	tx, err := database.BeginTx(ctx, nil)
	require.NoError(t, err)
	require.NoError(t, store.WithTx(tx).AdjustEffectiveness(ctx, "animal", q.ID, 0.1))
	require.NoError(t, tx.Rollback())

	slot, err := store.Slot(ctx, "animal", q.ID)
	require.NoError(t, err)
	assert.Equal(t, DefaultEffectiveness, slot.Effectiveness)
}
