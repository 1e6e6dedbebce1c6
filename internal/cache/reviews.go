package cache

import (
	"context"
	"database/sql"
	"time"
)

// CardReview is the locally owned spaced-repetition state of one flashcard.
// Decks come from the server; review progress never leaves this machine.
type CardReview struct {
	CardID       string
	DeckID       string
	Ease         float64
	IntervalDays int
	Repetitions  int
	DueAt        time.Time
	ReviewedAt   *time.Time
}

// ReviewStore persists card review state.
type ReviewStore struct {
	db *sql.DB
}

func NewReviewStore(db *sql.DB) *ReviewStore { return &ReviewStore{db: db} }

// Upsert writes the state after a review (or seeds a new card).
func (s *ReviewStore) Upsert(ctx context.Context, r CardReview) error {
	_, err := s.db.ExecContext(ctx, `
	INSERT INTO card_reviews(card_id, deck_id, ease, interval_days, repetitions, due_at, reviewed_at)
	VALUES(?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT(card_id) DO UPDATE SET
	 ease=excluded.ease, interval_days=excluded.interval_days,
	 repetitions=excluded.repetitions, due_at=excluded.due_at,
	 reviewed_at=excluded.reviewed_at;
	`, r.CardID, r.DeckID, r.Ease, r.IntervalDays, r.Repetitions, r.DueAt, r.ReviewedAt)
	return err
}

// Get returns the state for one card; ok is false for never-seen cards.
func (s *ReviewStore) Get(ctx context.Context, cardID string) (CardReview, bool, error) {
	row := s.db.QueryRowContext(ctx, `
	SELECT card_id, deck_id, ease, interval_days, repetitions, due_at, reviewed_at
	FROM card_reviews WHERE card_id = ?`, cardID)
	var r CardReview
	err := row.Scan(&r.CardID, &r.DeckID, &r.Ease, &r.IntervalDays, &r.Repetitions, &r.DueAt, &r.ReviewedAt)
	if err == sql.ErrNoRows {
		return CardReview{}, false, nil
	}
	if err != nil {
		return CardReview{}, false, err
	}
	return r, true, nil
}

// Due returns cards in a deck due at or before now, most overdue first.
func (s *ReviewStore) Due(ctx context.Context, deckID string, now time.Time) ([]CardReview, error) {
	rows, err := s.db.QueryContext(ctx, `
	SELECT card_id, deck_id, ease, interval_days, repetitions, due_at, reviewed_at
	FROM card_reviews WHERE deck_id = ? AND due_at <= ? ORDER BY due_at ASC`, deckID, now)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []CardReview
	for rows.Next() {
		var r CardReview
		if err := rows.Scan(&r.CardID, &r.DeckID, &r.Ease, &r.IntervalDays, &r.Repetitions, &r.DueAt, &r.ReviewedAt); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
