package api

import (
	"context"
	"fmt"
)

// ListModels returns the LLM models the backend offers for chat and
// analysis.
func (c *Client) ListModels(ctx context.Context) ([]ModelInfo, error) {
	resp, err := c.get(ctx, "/api/settings/models")
	if err != nil {
		return nil, err
	}
	var out []ModelInfo
	if err := decodeJSON(resp, &out); err != nil {
		return nil, fmt.Errorf("listing models: %w", err)
	}
	return out, nil
}

// ListExtractionMethods returns the OCR/text-extraction methods the backend
// supports for uploaded documents.
func (c *Client) ListExtractionMethods(ctx context.Context) ([]ExtractionMethod, error) {
	resp, err := c.get(ctx, "/api/settings/extraction-methods")
	if err != nil {
		return nil, err
	}
	var out []ExtractionMethod
	if err := decodeJSON(resp, &out); err != nil {
		return nil, fmt.Errorf("listing extraction methods: %w", err)
	}
	return out, nil
}
