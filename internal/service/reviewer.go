package service

import (
	"context"
	"fmt"
	"time"

	"github.com/jask/dossier/internal/api"
	"github.com/jask/dossier/internal/cache"
)

// Reviewer schedules flashcard reviews locally with an SM-2 style update.
// Grades run 0-5; below 3 the card resets to relearning.
type Reviewer struct {
	Store *cache.ReviewStore
}

const (
	minEase     = 1.3
	defaultEase = 2.5
)

// SyncDeck seeds review state for cards the store has never seen, making
// them due immediately. Existing state is left alone.
func (r *Reviewer) SyncDeck(ctx context.Context, deck api.Deck, now time.Time) error {
	for _, card := range deck.Cards {
		_, ok, err := r.Store.Get(ctx, card.ID)
		if err != nil {
			return fmt.Errorf("reading review state: %w", err)
		}
		if ok {
			continue
		}
		seed := cache.CardReview{
			CardID: card.ID,
			DeckID: deck.ID,
			Ease:   defaultEase,
			DueAt:  now,
		}
		if err := r.Store.Upsert(ctx, seed); err != nil {
			return fmt.Errorf("seeding card %s: %w", card.ID, err)
		}
	}
	return nil
}

// Grade applies one review outcome and persists the rescheduled card.
func (r *Reviewer) Grade(ctx context.Context, cardID string, grade int, now time.Time) (cache.CardReview, error) {
	state, ok, err := r.Store.Get(ctx, cardID)
	if err != nil {
		return cache.CardReview{}, err
	}
	if !ok {
		return cache.CardReview{}, fmt.Errorf("card %s not synced", cardID)
	}
	next := Reschedule(state, grade, now)
	if err := r.Store.Upsert(ctx, next); err != nil {
		return cache.CardReview{}, err
	}
	return next, nil
}

// Due returns the deck's cards due for review.
func (r *Reviewer) Due(ctx context.Context, deckID string, now time.Time) ([]cache.CardReview, error) {
	return r.Store.Due(ctx, deckID, now)
}

// Reschedule computes the next review state for a grade in [0,5].
func Reschedule(state cache.CardReview, grade int, now time.Time) cache.CardReview {
	if grade < 0 {
		grade = 0
	}
	if grade > 5 {
		grade = 5
	}

	if grade < 3 {
		state.Repetitions = 0
		state.IntervalDays = 1
	} else {
		switch state.Repetitions {
		case 0:
			state.IntervalDays = 1
		case 1:
			state.IntervalDays = 6
		default:
			state.IntervalDays = int(float64(state.IntervalDays)*state.Ease + 0.5)
		}
		state.Repetitions++
	}

	state.Ease += 0.1 - float64(5-grade)*(0.08+float64(5-grade)*0.02)
	if state.Ease < minEase {
		state.Ease = minEase
	}

	reviewed := now
	state.ReviewedAt = &reviewed
	state.DueAt = now.AddDate(0, 0, state.IntervalDays)
	return state
}
