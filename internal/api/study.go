package api

import (
	"context"
	"fmt"
	"net/url"
	"time"
)

// The study surface is the academic product variant: sessions group cases
// by term, modules scope generation, decks and audio summaries are the
// generated artifacts. Paths live under /api/courses on the backend.

// ListSessions returns all study sessions.
func (c *Client) ListSessions(ctx context.Context) ([]Session, error) {
	resp, err := c.get(ctx, "/api/courses/sessions")
	if err != nil {
		return nil, err
	}
	var out []Session
	if err := decodeJSON(resp, &out); err != nil {
		return nil, fmt.Errorf("listing sessions: %w", err)
	}
	return out, nil
}

// CreateSession creates a session. Dates are "2006-01-02" strings.
func (c *Client) CreateSession(ctx context.Context, s Session) (Session, error) {
	resp, err := c.post(ctx, "/api/courses/sessions", s)
	if err != nil {
		return Session{}, err
	}
	var out Session
	if err := decodeJSON(resp, &out); err != nil {
		return Session{}, fmt.Errorf("creating session: %w", err)
	}
	return out, nil
}

// DeleteSession removes a session.
func (c *Client) DeleteSession(ctx context.Context, id string) error {
	resp, err := c.del(ctx, "/api/courses/sessions/"+url.PathEscape(id))
	if err != nil {
		return err
	}
	if err := drainClose(resp); err != nil {
		return fmt.Errorf("deleting session %s: %w", id, err)
	}
	return nil
}

// ListModules returns the modules defined for a case.
func (c *Client) ListModules(ctx context.Context, caseID string) ([]Module, error) {
	resp, err := c.get(ctx, "/api/dossiers/"+url.PathEscape(caseID)+"/modules")
	if err != nil {
		return nil, err
	}
	var out []Module
	if err := decodeJSON(resp, &out); err != nil {
		return nil, fmt.Errorf("listing modules for %s: %w", caseID, err)
	}
	return out, nil
}

// CreateModule groups documents under a named module within a case.
func (c *Client) CreateModule(ctx context.Context, caseID, name string, documentIDs []string) (Module, error) {
	body := struct {
		Name        string   `json:"name"`
		DocumentIDs []string `json:"document_ids"`
	}{Name: name, DocumentIDs: documentIDs}
	resp, err := c.post(ctx, "/api/dossiers/"+url.PathEscape(caseID)+"/modules", body)
	if err != nil {
		return Module{}, err
	}
	var out Module
	if err := decodeJSON(resp, &out); err != nil {
		return Module{}, fmt.Errorf("creating module: %w", err)
	}
	return out, nil
}

// ListDecks returns the flashcard decks generated for a module.
func (c *Client) ListDecks(ctx context.Context, moduleID string) ([]Deck, error) {
	resp, err := c.get(ctx, "/api/courses/modules/"+url.PathEscape(moduleID)+"/decks")
	if err != nil {
		return nil, err
	}
	var out []Deck
	if err := decodeJSON(resp, &out); err != nil {
		return nil, fmt.Errorf("listing decks for %s: %w", moduleID, err)
	}
	return out, nil
}

// GenerateDeck asks the backend to build a flashcard deck from a module's
// documents. Generation is synchronous on small modules, so the full deck
// comes back.
func (c *Client) GenerateDeck(ctx context.Context, moduleID string) (Deck, error) {
	resp, err := c.post(ctx, "/api/courses/modules/"+url.PathEscape(moduleID)+"/decks", nil)
	if err != nil {
		return Deck{}, err
	}
	var out Deck
	if err := decodeJSON(resp, &out); err != nil {
		return Deck{}, fmt.Errorf("generating deck for %s: %w", moduleID, err)
	}
	return out, nil
}

// ListAudioSummaries returns the audio summaries generated for a module.
func (c *Client) ListAudioSummaries(ctx context.Context, moduleID string) ([]AudioSummary, error) {
	resp, err := c.get(ctx, "/api/courses/modules/"+url.PathEscape(moduleID)+"/audio-summaries")
	if err != nil {
		return nil, err
	}
	var out []AudioSummary
	if err := decodeJSON(resp, &out); err != nil {
		return nil, fmt.Errorf("listing audio summaries for %s: %w", moduleID, err)
	}
	return out, nil
}

// GenerateAudioSummary asks the backend to synthesize a narrated summary of
// a module. The result is polled or streamed by the caller via its status.
func (c *Client) GenerateAudioSummary(ctx context.Context, moduleID, language string) (AudioSummary, error) {
	body := map[string]string{"language": language}
	resp, err := c.post(ctx, "/api/courses/modules/"+url.PathEscape(moduleID)+"/audio-summaries", body)
	if err != nil {
		return AudioSummary{}, err
	}
	var out AudioSummary
	if err := decodeJSON(resp, &out); err != nil {
		return AudioSummary{}, fmt.Errorf("generating audio summary for %s: %w", moduleID, err)
	}
	return out, nil
}

// RecordingMeta is the metadata captured alongside a finished recording.
type RecordingMeta struct {
	Name             string
	Language         string
	IdentifySpeakers bool
	Duration         time.Duration
}

// UploadRecording sends a finished recording blob for transcription under a
// module. The blob travels as multipart form data with its metadata fields.
func (c *Client) UploadRecording(ctx context.Context, moduleID string, audio []byte, meta RecordingMeta) (Document, error) {
	fields := map[string]string{
		"name":              meta.Name,
		"language":          meta.Language,
		"identify_speakers": fmt.Sprintf("%t", meta.IdentifySpeakers),
		"duration_seconds":  fmt.Sprintf("%.1f", meta.Duration.Seconds()),
	}
	endpoint := "/api/courses/modules/" + url.PathEscape(moduleID) + "/recordings"
	resp, err := c.postMultipart(ctx, endpoint, "audio", meta.Name+".wav", audio, fields)
	if err != nil {
		return Document{}, err
	}
	var out Document
	if err := decodeJSON(resp, &out); err != nil {
		return Document{}, fmt.Errorf("uploading recording: %w", err)
	}
	return out, nil
}
