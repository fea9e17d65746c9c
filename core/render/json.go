// Package render provides output renderers for batches of ContentItems.
// This file implements the JSON Lines and JSON array renderers, the two
// persistence formats of a scrape run.
package render

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/gaurav-prasanna/threadpipe/core"
)

// JSONLRenderer writes one JSON object per line, one line per page.
type JSONLRenderer struct{}

// NewJSONLRenderer creates a JSONLRenderer.
func NewJSONLRenderer() *JSONLRenderer {
	return &JSONLRenderer{}
}

// Render encodes each item on its own line.
func (r *JSONLRenderer) Render(items []core.ContentItem) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	for i, it := range items {
		if err := enc.Encode(it); err != nil {
			return nil, fmt.Errorf("encoding item %d: %w", i, err)
		}
	}
	return buf.Bytes(), nil
}

// Extension returns the file extension for JSON Lines output.
func (r *JSONLRenderer) Extension() string {
	return ".jsonl"
}

// JSONRenderer writes all items as one indented JSON array.
type JSONRenderer struct{}

// NewJSONRenderer creates a JSONRenderer.
func NewJSONRenderer() *JSONRenderer {
	return &JSONRenderer{}
}

// Render encodes items as an indented array. A nil batch becomes [].
func (r *JSONRenderer) Render(items []core.ContentItem) ([]byte, error) {
	if items == nil {
		items = []core.ContentItem{}
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(items); err != nil {
		return nil, fmt.Errorf("marshaling JSON: %w", err)
	}
	return buf.Bytes(), nil
}

// Extension returns the file extension for JSON output.
func (r *JSONRenderer) Extension() string {
	return ".json"
}
