package cache

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/jask/dossier/internal/api"
)

func openTestDB(t *testing.T) *CaseCache {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "cache.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewCaseCache(db)
}

func TestOpenMigratesTwice(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "cache.db")
	db, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, db.Close())

	// reopening an already-migrated database must be a no-op
	db, err = Open(path)
	require.NoError(t, err)
	require.NoError(t, db.Close())
}

func TestCaseCacheReplaceAndList(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	cc := openTestDB(t)

	base := time.Date(2026, 8, 20, 10, 0, 0, 0, time.UTC)
	first := []api.Case{
		{ID: "c1", Name: "Vente Dupont", Status: "ready", ConfidenceScore: 87, UpdatedAt: base},
		{ID: "c2", Name: "Succession Martin", Status: "en_cours", Pinned: true, UpdatedAt: base.Add(time.Hour)},
	}
	require.NoError(t, cc.Replace(ctx, first))

	got, err := cc.List(ctx)
	require.NoError(t, err)
	require.Len(t, got, 2)
	require.Equal(t, "c2", got[0].ID, "newest first")
	require.True(t, got[0].Pinned)
	require.Equal(t, "en_cours", got[0].Status, "raw status survives the round trip")

	// Replace is wholesale: dropped cases disappear
	require.NoError(t, cc.Replace(ctx, first[:1]))
	got, err = cc.List(ctx)
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.Equal(t, "c1", got[0].ID)
}

func TestChatStoreRoundTrip(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	db, err := Open(filepath.Join(t.TempDir(), "cache.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	store := NewChatStore(db)

	now := Now()
	require.NoError(t, store.Append(ctx, "case-1", api.ChatMessage{
		ID: "m1", Role: "user", Body: "quels documents manquent ?", CreatedAt: now,
	}))
	require.NoError(t, store.Append(ctx, "case-1", api.ChatMessage{
		ID: "m2", Role: "assistant", Body: "l'attestation notariée", CreatedAt: now.Add(time.Second),
	}))
	require.NoError(t, store.Append(ctx, "case-2", api.ChatMessage{
		ID: "m3", Role: "user", Body: "other case", CreatedAt: now,
	}))

	history, err := store.History(ctx, "case-1")
	require.NoError(t, err)
	require.Len(t, history, 2)
	require.Equal(t, "user", history[0].Role)
	require.Equal(t, "assistant", history[1].Role)

	require.NoError(t, store.Clear(ctx, "case-1"))
	history, err = store.History(ctx, "case-1")
	require.NoError(t, err)
	require.Empty(t, history)

	// clearing one case leaves the others alone
	other, err := store.History(ctx, "case-2")
	require.NoError(t, err)
	require.Len(t, other, 1)
}

func TestReviewStoreUpsertGetDue(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	db, err := Open(filepath.Join(t.TempDir(), "cache.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	store := NewReviewStore(db)

	_, ok, err := store.Get(ctx, "never-seen")
	require.NoError(t, err)
	require.False(t, ok)

	now := Now()
	require.NoError(t, store.Upsert(ctx, CardReview{
		CardID: "card-a", DeckID: "deck-1", Ease: 2.5, DueAt: now.Add(-time.Hour),
	}))
	require.NoError(t, store.Upsert(ctx, CardReview{
		CardID: "card-b", DeckID: "deck-1", Ease: 2.5, DueAt: now.Add(-time.Minute),
	}))
	require.NoError(t, store.Upsert(ctx, CardReview{
		CardID: "card-c", DeckID: "deck-1", Ease: 2.5, DueAt: now.Add(time.Hour),
	}))

	due, err := store.Due(ctx, "deck-1", now)
	require.NoError(t, err)
	require.Len(t, due, 2)
	require.Equal(t, "card-a", due[0].CardID, "most overdue first")

	// upsert replaces in place
	reviewed := now
	require.NoError(t, store.Upsert(ctx, CardReview{
		CardID: "card-a", DeckID: "deck-1", Ease: 2.6, IntervalDays: 6,
		Repetitions: 2, DueAt: now.Add(6 * 24 * time.Hour), ReviewedAt: &reviewed,
	}))
	got, ok, err := store.Get(ctx, "card-a")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, 2, got.Repetitions)
	require.NotNil(t, got.ReviewedAt)

	due, err = store.Due(ctx, "deck-1", now)
	require.NoError(t, err)
	require.Len(t, due, 1)
}
