package api

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
)

// ListCases returns all cases visible to the user.
func (c *Client) ListCases(ctx context.Context) ([]Case, error) {
	resp, err := c.get(ctx, "/api/dossiers")
	if err != nil {
		return nil, err
	}
	var out []Case
	if err := decodeJSON(resp, &out); err != nil {
		return nil, fmt.Errorf("listing cases: %w", err)
	}
	return out, nil
}

// GetCase fetches a single case.
func (c *Client) GetCase(ctx context.Context, id string) (Case, error) {
	resp, err := c.get(ctx, "/api/dossiers/"+url.PathEscape(id))
	if err != nil {
		return Case{}, err
	}
	var out Case
	if err := decodeJSON(resp, &out); err != nil {
		return Case{}, fmt.Errorf("fetching case %s: %w", id, err)
	}
	return out, nil
}

// CreateCase creates a case and uploads the initial documents in the same
// multipart request, matching the new-case form.
func (c *Client) CreateCase(ctx context.Context, name, transactionType string, files []string) (Case, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	if err := w.WriteField("name", name); err != nil {
		return Case{}, err
	}
	if err := w.WriteField("transaction_type", transactionType); err != nil {
		return Case{}, err
	}
	for _, path := range files {
		if err := appendFilePart(w, "files", path); err != nil {
			return Case{}, err
		}
	}
	if err := w.Close(); err != nil {
		return Case{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/dossiers", &buf)
	if err != nil {
		return Case{}, err
	}
	req.Header.Set("Content-Type", w.FormDataContentType())
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Case{}, classifyTransport(err)
	}
	var out Case
	if err := decodeJSON(resp, &out); err != nil {
		return Case{}, fmt.Errorf("creating case: %w", err)
	}
	return out, nil
}

// DeleteCase removes a case and everything under it.
func (c *Client) DeleteCase(ctx context.Context, id string) error {
	resp, err := c.del(ctx, "/api/dossiers/"+url.PathEscape(id))
	if err != nil {
		return err
	}
	if err := drainClose(resp); err != nil {
		return fmt.Errorf("deleting case %s: %w", id, err)
	}
	return nil
}

// SetPinned toggles the pinned flag.
func (c *Client) SetPinned(ctx context.Context, id string, pinned bool) (Case, error) {
	resp, err := c.patch(ctx, "/api/dossiers/"+url.PathEscape(id), map[string]bool{"pinned": pinned})
	if err != nil {
		return Case{}, err
	}
	var out Case
	if err := decodeJSON(resp, &out); err != nil {
		return Case{}, fmt.Errorf("pinning case %s: %w", id, err)
	}
	return out, nil
}

// StartAnalysis kicks off the backend analysis pipeline for a case.
func (c *Client) StartAnalysis(ctx context.Context, id string) error {
	resp, err := c.post(ctx, "/api/dossiers/"+url.PathEscape(id)+"/analyze", nil)
	if err != nil {
		return err
	}
	if err := drainClose(resp); err != nil {
		return fmt.Errorf("starting analysis for %s: %w", id, err)
	}
	return nil
}

// GetChecklist fetches the generated checklist for a case.
func (c *Client) GetChecklist(ctx context.Context, id string) (Checklist, error) {
	resp, err := c.get(ctx, "/api/dossiers/"+url.PathEscape(id)+"/checklist")
	if err != nil {
		return Checklist{}, err
	}
	var out Checklist
	if err := decodeJSON(resp, &out); err != nil {
		return Checklist{}, fmt.Errorf("fetching checklist for %s: %w", id, err)
	}
	return out, nil
}

// GetBrief fetches the generated case brief.
func (c *Client) GetBrief(ctx context.Context, id string) (Brief, error) {
	resp, err := c.get(ctx, "/api/dossiers/"+url.PathEscape(id)+"/brief")
	if err != nil {
		return Brief{}, err
	}
	var out Brief
	if err := decodeJSON(resp, &out); err != nil {
		return Brief{}, fmt.Errorf("fetching brief for %s: %w", id, err)
	}
	return out, nil
}

// ChatOptions carry the locally persisted model settings with each message.
type ChatOptions struct {
	Model       string  `json:"model,omitempty"`
	Temperature float64 `json:"temperature,omitempty"`
	TopP        float64 `json:"top_p,omitempty"`
}

// Chat sends a user message to the case assistant and returns its reply.
func (c *Client) Chat(ctx context.Context, caseID, message string, opts ChatOptions) (ChatMessage, error) {
	body := struct {
		Message string `json:"message"`
		ChatOptions
	}{Message: message, ChatOptions: opts}
	resp, err := c.post(ctx, "/api/dossiers/"+url.PathEscape(caseID)+"/chat", body)
	if err != nil {
		return ChatMessage{}, err
	}
	var out ChatMessage
	if err := decodeJSON(resp, &out); err != nil {
		return ChatMessage{}, fmt.Errorf("chat: %w", err)
	}
	return out, nil
}

func appendFilePart(w *multipart.Writer, field, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()
	part, err := w.CreateFormFile(field, filepath.Base(path))
	if err != nil {
		return err
	}
	if _, err := io.Copy(part, f); err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}
	return nil
}
