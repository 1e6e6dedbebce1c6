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
)

// ListDocuments returns the documents attached to a case.
func (c *Client) ListDocuments(ctx context.Context, caseID string) ([]Document, error) {
	resp, err := c.get(ctx, "/api/dossiers/"+url.PathEscape(caseID)+"/documents")
	if err != nil {
		return nil, err
	}
	var out []Document
	if err := decodeJSON(resp, &out); err != nil {
		return nil, fmt.Errorf("listing documents for %s: %w", caseID, err)
	}
	return out, nil
}

// UploadDocument uploads a local file to a case as multipart form data.
func (c *Client) UploadDocument(ctx context.Context, caseID, path string) (Document, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	if err := appendFilePart(w, "file", path); err != nil {
		return Document{}, err
	}
	if err := w.Close(); err != nil {
		return Document{}, err
	}

	endpoint := c.baseURL + "/api/dossiers/" + url.PathEscape(caseID) + "/documents/upload"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, &buf)
	if err != nil {
		return Document{}, err
	}
	req.Header.Set("Content-Type", w.FormDataContentType())
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Document{}, classifyTransport(err)
	}
	var out Document
	if err := decodeJSON(resp, &out); err != nil {
		return Document{}, fmt.Errorf("uploading %s: %w", path, err)
	}
	return out, nil
}

// LinkPath attaches a server-visible file to a case by path, without
// transferring bytes.
func (c *Client) LinkPath(ctx context.Context, caseID, serverPath string) (Document, error) {
	body := map[string]string{"path": serverPath}
	resp, err := c.post(ctx, "/api/dossiers/"+url.PathEscape(caseID)+"/documents/link", body)
	if err != nil {
		return Document{}, err
	}
	var out Document
	if err := decodeJSON(resp, &out); err != nil {
		return Document{}, fmt.Errorf("linking %s: %w", serverPath, err)
	}
	return out, nil
}

// LinkDirectory starts a server-side directory indexing job and streams its
// progress. Events arrive on the returned channel until the stream ends or
// ctx is cancelled; the first event carries the link_id needed for cleanup.
// The channel is closed when the stream terminates; the error (if any) is
// delivered through errFn afterwards.
func (c *Client) LinkDirectory(ctx context.Context, caseID, serverDir string) (<-chan LinkProgress, func() error, error) {
	body := map[string]string{"path": serverDir}
	resp, err := c.post(ctx, "/api/dossiers/"+url.PathEscape(caseID)+"/documents/link-directory", body)
	if err != nil {
		return nil, nil, err
	}
	if resp.StatusCode >= 400 {
		return nil, nil, readAPIError(resp)
	}

	events := make(chan LinkProgress)
	var streamErr error
	done := make(chan struct{})
	go func() {
		defer close(events)
		defer close(done)
		defer resp.Body.Close()
		streamErr = decodeSSE(ctx, resp.Body, func(data []byte) error {
			var p LinkProgress
			if err := unmarshalEvent(data, &p); err != nil {
				return err
			}
			select {
			case events <- p:
				return nil
			case <-ctx.Done():
				return ctx.Err()
			}
		})
	}()
	errFn := func() error {
		<-done
		return streamErr
	}
	return events, errFn, nil
}

// CancelLink tears down an interrupted directory-link job. Call it with the
// link_id captured from the progress stream after cancelling the fetch.
func (c *Client) CancelLink(ctx context.Context, caseID, linkID string) error {
	path := "/api/dossiers/" + url.PathEscape(caseID) + "/documents/link/" + url.PathEscape(linkID)
	resp, err := c.del(ctx, path)
	if err != nil {
		return err
	}
	if err := drainClose(resp); err != nil {
		return fmt.Errorf("cancelling link %s: %w", linkID, err)
	}
	return nil
}

// DownloadDocument streams a document's bytes into dst.
func (c *Client) DownloadDocument(ctx context.Context, caseID, docID, dst string) error {
	path := "/api/dossiers/" + url.PathEscape(caseID) + "/documents/" + url.PathEscape(docID) + "/download"
	resp, err := c.get(ctx, path)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		return readAPIError(resp)
	}
	f, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("creating %s: %w", dst, err)
	}
	defer f.Close()
	if _, err := io.Copy(f, resp.Body); err != nil {
		return fmt.Errorf("writing %s: %w", dst, err)
	}
	return nil
}

// DeleteDocument removes a single document from a case.
func (c *Client) DeleteDocument(ctx context.Context, caseID, docID string) error {
	path := "/api/dossiers/" + url.PathEscape(caseID) + "/documents/" + url.PathEscape(docID)
	resp, err := c.del(ctx, path)
	if err != nil {
		return err
	}
	if err := drainClose(resp); err != nil {
		return fmt.Errorf("deleting document %s: %w", docID, err)
	}
	return nil
}
