package api

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestDecodeSSE(t *testing.T) {
	t.Parallel()

	stream := strings.Join([]string{
		": keepalive",
		"data: {\"a\":1}",
		"",
		"data: {\"b\":",
		"data: 2}",
		"",
		"event: progress",
		"data:{\"c\":3}",
		"",
	}, "\n")

	var got []string
	err := decodeSSE(context.Background(), strings.NewReader(stream), func(data []byte) error {
		got = append(got, string(data))
		return nil
	})
	require.NoError(t, err)
	require.Equal(t, []string{`{"a":1}`, "{\"b\":\n2}", `{"c":3}`}, got)
}

func TestDecodeSSEFlushesTrailingData(t *testing.T) {
	t.Parallel()

	// stream ends without the final blank line
	var got []string
	err := decodeSSE(context.Background(), strings.NewReader("data: tail"), func(data []byte) error {
		got = append(got, string(data))
		return nil
	})
	require.NoError(t, err)
	require.Equal(t, []string{"tail"}, got)
}

func TestStreamAnalysisStopsAtTerminal(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/dossiers/c1/analysis/stream", r.URL.Path)
		w.Header().Set("Content-Type", "text/event-stream")
		flusher := w.(http.Flusher)
		events := []string{
			`{"stage":"extracting","percentage":20,"status":"analyzing"}`,
			`{"stage":"done","percentage":100,"status":"ready"}`,
			`{"stage":"never-delivered","percentage":0,"status":"analyzing"}`,
		}
		for _, ev := range events {
			fmt.Fprintf(w, "data: %s\n\n", ev)
			flusher.Flush()
		}
	}))
	defer srv.Close()

	c := New(srv.URL, "")
	var got []AnalysisEvent
	err := c.StreamAnalysis(context.Background(), "c1", func(ev AnalysisEvent) {
		got = append(got, ev)
	})
	require.NoError(t, err)
	require.Len(t, got, 2, "delivery stops at the terminal event")
	require.True(t, got[1].Terminal())
}

func TestLinkDirectoryStream(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/api/dossiers/c1/documents/link-directory", r.URL.Path)
		w.Header().Set("Content-Type", "text/event-stream")
		flusher := w.(http.Flusher)
		for i := 1; i <= 3; i++ {
			fmt.Fprintf(w, "data: {\"link_id\":\"lnk-1\",\"indexed\":%d,\"total\":3}\n\n", i)
			flusher.Flush()
		}
	}))
	defer srv.Close()

	c := New(srv.URL, "")
	events, wait, err := c.LinkDirectory(context.Background(), "c1", "/srv/docs")
	require.NoError(t, err)

	var got []LinkProgress
	for ev := range events {
		got = append(got, ev)
	}
	require.NoError(t, wait())
	require.Len(t, got, 3)
	require.Equal(t, "lnk-1", got[0].LinkID)
	require.Equal(t, 3, got[2].Indexed)
}

func TestLinkDirectoryCancelMidStream(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		flusher := w.(http.Flusher)
		fmt.Fprint(w, "data: {\"link_id\":\"lnk-2\",\"indexed\":1,\"total\":100}\n\n")
		flusher.Flush()
		select {
		case <-r.Context().Done():
		case <-time.After(5 * time.Second):
		}
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	c := New(srv.URL, "")
	events, wait, err := c.LinkDirectory(ctx, "c1", "/srv/docs")
	require.NoError(t, err)

	first := <-events
	require.Equal(t, "lnk-2", first.LinkID)
	cancel()

	for range events {
		// drain whatever made it out before the cancel
	}
	require.Error(t, wait())
}

func TestCancelLink(t *testing.T) {
	t.Parallel()

	var called bool
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		require.Equal(t, http.MethodDelete, r.Method)
		require.Equal(t, "/api/dossiers/c1/documents/link/lnk-2", r.URL.Path)
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	c := New(srv.URL, "")
	require.NoError(t, c.CancelLink(context.Background(), "c1", "lnk-2"))
	require.True(t, called)
}
