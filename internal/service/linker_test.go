package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jask/dossier/internal/api"
)

type fakeLinkAPI struct {
	events    []api.LinkProgress
	streamErr error
	cancelAt  int // cancel ctx after delivering this many events; 0 means never

	cancelledCase string
	cancelledLink string
	cancelCalls   int
	ctxCancel     context.CancelFunc
}

func (f *fakeLinkAPI) LinkDirectory(ctx context.Context, caseID, serverDir string) (<-chan api.LinkProgress, func() error, error) {
	out := make(chan api.LinkProgress)
	done := make(chan struct{})
	go func() {
		defer close(out)
		defer close(done)
		for i, ev := range f.events {
			select {
			case out <- ev:
			case <-ctx.Done():
				f.streamErr = ctx.Err()
				return
			}
			if f.cancelAt > 0 && i+1 == f.cancelAt {
				f.ctxCancel()
				f.streamErr = context.Canceled
				return
			}
		}
	}()
	return out, func() error { <-done; return f.streamErr }, nil
}

func (f *fakeLinkAPI) CancelLink(ctx context.Context, caseID, linkID string) error {
	f.cancelCalls++
	f.cancelledCase = caseID
	f.cancelledLink = linkID
	return nil
}

func TestLinkDirectoryCompletes(t *testing.T) {
	t.Parallel()

	fake := &fakeLinkAPI{events: []api.LinkProgress{
		{LinkID: "lnk-1", Indexed: 0, Total: 3},
		{LinkID: "lnk-1", Indexed: 3, Total: 3, Percentage: 100},
	}}

	var seen int
	res, err := LinkDirectory(context.Background(), fake, "case-9", "/srv/docs", func(api.LinkProgress) {
		seen++
	})
	require.NoError(t, err)
	require.Equal(t, 2, seen)
	require.Equal(t, "lnk-1", res.LinkID)
	require.Equal(t, 3, res.Indexed)
	require.False(t, res.Cancelled)
	require.Zero(t, fake.cancelCalls, "completed links need no cleanup")
}

func TestLinkDirectoryCancelIssuesCleanup(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	fake := &fakeLinkAPI{
		events: []api.LinkProgress{
			{LinkID: "lnk-7", Indexed: 1, Total: 10},
			{LinkID: "lnk-7", Indexed: 2, Total: 10},
		},
		cancelAt:  1,
		ctxCancel: cancel,
	}

	res, err := LinkDirectory(ctx, fake, "case-9", "/srv/docs", nil)
	require.NoError(t, err)
	require.True(t, res.Cancelled)
	require.Equal(t, 1, fake.cancelCalls)
	require.Equal(t, "case-9", fake.cancelledCase)
	require.Equal(t, "lnk-7", fake.cancelledLink, "cleanup uses the link_id captured from the stream")
}

func TestLinkDirectoryCancelBeforeLinkIDSkipsCleanup(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	fake := &fakeLinkAPI{}
	res, err := LinkDirectory(ctx, fake, "case-9", "/srv/docs", nil)
	require.NoError(t, err)
	require.True(t, res.Cancelled)
	require.Zero(t, fake.cancelCalls, "nothing to clean up without a link_id")
}
