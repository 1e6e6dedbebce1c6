package api

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strings"
)

// decodeSSE reads a text/event-stream body and calls handle with each
// event's data payload. It returns nil on a clean end of stream and the
// context error if the caller cancelled mid-stream.
func decodeSSE(ctx context.Context, r io.Reader, handle func(data []byte) error) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64<<10), 1<<20)

	var data bytes.Buffer
	flush := func() error {
		if data.Len() == 0 {
			return nil
		}
		payload := data.Bytes()
		data.Reset()
		return handle(payload)
	}

	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return err
		}
		line := scanner.Text()
		switch {
		case line == "":
			if err := flush(); err != nil {
				return err
			}
		case strings.HasPrefix(line, "data:"):
			if data.Len() > 0 {
				data.WriteByte('\n')
			}
			data.WriteString(strings.TrimPrefix(strings.TrimPrefix(line, "data:"), " "))
		case strings.HasPrefix(line, ":"):
			// comment / keepalive
		default:
			// event:/id:/retry: fields are not used by this backend
		}
	}
	if err := scanner.Err(); err != nil {
		if errors.Is(err, context.Canceled) || ctx.Err() != nil {
			return context.Canceled
		}
		return fmt.Errorf("reading stream: %w", err)
	}
	return flush()
}

func unmarshalEvent(data []byte, v any) error {
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("decoding event %q: %w", string(data), err)
	}
	return nil
}

// StreamAnalysis consumes the analysis progress stream for a case, calling
// handle for each event. It returns once a terminal event arrives, the
// stream ends, or ctx is cancelled.
func (c *Client) StreamAnalysis(ctx context.Context, caseID string, handle func(AnalysisEvent)) error {
	resp, err := c.get(ctx, "/api/dossiers/"+url.PathEscape(caseID)+"/analysis/stream")
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		return readAPIError(resp)
	}

	var errTerminal = errors.New("terminal")
	err = decodeSSE(ctx, resp.Body, func(data []byte) error {
		var ev AnalysisEvent
		if err := unmarshalEvent(data, &ev); err != nil {
			return err
		}
		handle(ev)
		if ev.Terminal() {
			return errTerminal
		}
		return nil
	})
	if errors.Is(err, errTerminal) {
		return nil
	}
	return err
}
