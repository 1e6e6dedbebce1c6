package service

import (
	"context"
	"errors"
	"time"

	"github.com/jask/dossier/internal/api"
)

// LinkAPI is the slice of the client the link flow needs.
type LinkAPI interface {
	LinkDirectory(ctx context.Context, caseID, serverDir string) (<-chan api.LinkProgress, func() error, error)
	CancelLink(ctx context.Context, caseID, linkID string) error
}

// LinkResult summarizes a finished or interrupted directory link.
type LinkResult struct {
	LinkID    string
	Indexed   int
	Total     int
	Cancelled bool
}

// LinkDirectory runs a directory-link job to completion, forwarding each
// progress event to onProgress. Cancelling ctx aborts the stream and issues
// the cleanup DELETE with the link_id captured from the stream; the result
// then reports Cancelled.
func LinkDirectory(ctx context.Context, client LinkAPI, caseID, serverDir string, onProgress func(api.LinkProgress)) (LinkResult, error) {
	events, wait, err := client.LinkDirectory(ctx, caseID, serverDir)
	if err != nil {
		return LinkResult{}, err
	}

	var res LinkResult
	for ev := range events {
		if ev.LinkID != "" {
			res.LinkID = ev.LinkID
		}
		res.Indexed = ev.Indexed
		res.Total = ev.Total
		if onProgress != nil {
			onProgress(ev)
		}
	}
	streamErr := wait()

	if errors.Is(streamErr, context.Canceled) || ctx.Err() != nil {
		res.Cancelled = true
		if res.LinkID != "" {
			// the stream's context is gone; the cleanup call gets its own
			cleanupCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := client.CancelLink(cleanupCtx, caseID, res.LinkID); err != nil {
				return res, err
			}
		}
		return res, nil
	}
	if streamErr != nil {
		return res, streamErr
	}
	return res, nil
}
