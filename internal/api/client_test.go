package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestListCases(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodGet, r.Method)
		require.Equal(t, "/api/dossiers", r.URL.Path)
		require.Equal(t, "Bearer tok-1", r.Header.Get("Authorization"))
		_ = json.NewEncoder(w).Encode([]Case{
			{ID: "c1", Name: "Vente Dupont", Status: "ready", ConfidenceScore: 87},
		})
	}))
	defer srv.Close()

	c := New(srv.URL, "tok-1")
	cases, err := c.ListCases(context.Background())
	require.NoError(t, err)
	require.Len(t, cases, 1)
	require.Equal(t, "Vente Dupont", cases[0].Name)
}

func TestAPIErrorDecoding(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error":"case not found"}`))
	}))
	defer srv.Close()

	c := New(srv.URL, "")
	_, err := c.GetCase(context.Background(), "missing")
	require.Error(t, err)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, http.StatusNotFound, apiErr.StatusCode)
	require.Equal(t, "case not found", apiErr.Message)
}

func TestUnreachableClassification(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // deliberately dead

	c := New(srv.URL, "")
	_, err := c.ListCases(context.Background())
	require.ErrorIs(t, err, ErrUnreachable)
}

func TestContextCancelIsNotUnreachable(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	c := New(srv.URL, "")
	_, err := c.ListCases(ctx)
	require.Error(t, err)
	require.NotErrorIs(t, err, ErrUnreachable)
}

func TestSetPinned(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPatch, r.Method)
		require.Equal(t, "/api/dossiers/c1", r.URL.Path)
		var body map[string]bool
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		require.True(t, body["pinned"])
		_ = json.NewEncoder(w).Encode(Case{ID: "c1", Pinned: true})
	}))
	defer srv.Close()

	c := New(srv.URL, "")
	got, err := c.SetPinned(context.Background(), "c1", true)
	require.NoError(t, err)
	require.True(t, got.Pinned)
}

func TestCreateCaseMultipart(t *testing.T) {
	t.Parallel()

	tmp := t.TempDir() + "/acte.txt"
	require.NoError(t, os.WriteFile(tmp, []byte("acte de vente"), 0o600))

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/dossiers", r.URL.Path)
		require.NoError(t, r.ParseMultipartForm(1<<20))
		require.Equal(t, "Vente Dupont", r.FormValue("name"))
		require.Equal(t, "sale", r.FormValue("transaction_type"))
		require.Len(t, r.MultipartForm.File["files"], 1)
		_ = json.NewEncoder(w).Encode(Case{ID: "c-new", Name: "Vente Dupont"})
	}))
	defer srv.Close()

	c := New(srv.URL, "")
	created, err := c.CreateCase(context.Background(), "Vente Dupont", "sale", []string{tmp})
	require.NoError(t, err)
	require.Equal(t, "c-new", created.ID)
}

func TestCreateModule(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/api/dossiers/c1/modules", r.URL.Path)
		var body struct {
			Name        string   `json:"name"`
			DocumentIDs []string `json:"document_ids"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		require.Equal(t, "Contrats", body.Name)
		require.Equal(t, []string{"d1", "d2"}, body.DocumentIDs)
		_ = json.NewEncoder(w).Encode(Module{ID: "m-new", Name: "Contrats", DocumentIDs: body.DocumentIDs})
	}))
	defer srv.Close()

	c := New(srv.URL, "")
	mod, err := c.CreateModule(context.Background(), "c1", "Contrats", []string{"d1", "d2"})
	require.NoError(t, err)
	require.Equal(t, "m-new", mod.ID)
	require.Len(t, mod.DocumentIDs, 2)
}

func TestUploadRecordingFields(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/courses/modules/m1/recordings", r.URL.Path)
		require.NoError(t, r.ParseMultipartForm(1<<20))
		require.Equal(t, "Recording x", r.FormValue("name"))
		require.Equal(t, "fr", r.FormValue("language"))
		require.Equal(t, "true", r.FormValue("identify_speakers"))
		require.Equal(t, "42.0", r.FormValue("duration_seconds"))
		require.Len(t, r.MultipartForm.File["audio"], 1)
		_ = json.NewEncoder(w).Encode(Document{ID: "rec1"})
	}))
	defer srv.Close()

	c := New(srv.URL, "")
	got, err := c.UploadRecording(context.Background(), "m1", []byte{0, 1}, RecordingMeta{
		Name:             "Recording x",
		Language:         "fr",
		IdentifySpeakers: true,
		Duration:         42 * time.Second,
	})
	require.NoError(t, err)
	require.Equal(t, "rec1", got.ID)
}
