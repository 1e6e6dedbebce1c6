package service

import (
	"context"
	"time"

	"github.com/jask/dossier/internal/api"
)

// AnalysisAPI is the slice of the client the watcher needs.
type AnalysisAPI interface {
	StreamAnalysis(ctx context.Context, caseID string, handle func(api.AnalysisEvent)) error
	GetCase(ctx context.Context, id string) (api.Case, error)
}

// Watcher observes a running analysis: the SSE stream when the backend
// offers one, a fixed-interval poll otherwise. Updates land on the handler
// until a terminal status arrives or ctx is cancelled.
type Watcher struct {
	API          AnalysisAPI
	PollInterval time.Duration
}

// Watch blocks until the analysis reaches a terminal state. A stream setup
// failure silently downgrades to polling; there is no retry beyond that.
func (w *Watcher) Watch(ctx context.Context, caseID string, handle func(api.AnalysisEvent)) error {
	err := w.API.StreamAnalysis(ctx, caseID, handle)
	if err == nil || ctx.Err() != nil {
		return err
	}
	return w.poll(ctx, caseID, handle)
}

func (w *Watcher) poll(ctx context.Context, caseID string, handle func(api.AnalysisEvent)) error {
	interval := w.PollInterval
	if interval <= 0 {
		interval = 5 * time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		c, err := w.API.GetCase(ctx, caseID)
		if err != nil {
			return err
		}
		ev := api.AnalysisEvent{
			Status:     NormalizeStatus(c.Status),
			Percentage: c.ConfidenceScore,
		}
		handle(ev)
		if ev.Terminal() {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}
