// Package extraction wraps the document extraction engine. The engine is a
// black box: given a document ID it parses the stored file, writes line items,
// fields, and any newly discovered field definitions straight to the database,
// and reports only the counts back.
package extraction

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// Result is what the engine reports after it has already persisted its output.
type Result struct {
	ItemCount           int `json:"item_count"`
	NewFieldsDiscovered int `json:"new_fields_discovered"`
}

type Client interface {
	Process(ctx context.Context, documentID string) (Result, error)
}

type httpClient struct {
	baseURL string
	hc      *http.Client
}

// NewHTTPClient builds a client against the extraction engine's HTTP API.
// Extraction runs OCR plus an LLM pass, so the timeout is generous.
func NewHTTPClient(baseURL string) Client {
	return &httpClient{
		baseURL: baseURL,
		hc:      &http.Client{Timeout: 120 * time.Second},
	}
}

func (c *httpClient) Process(ctx context.Context, documentID string) (Result, error) {
	payload, err := json.Marshal(map[string]string{"document_id": documentID})
	if err != nil {
		return Result{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/extract", bytes.NewReader(payload))
	if err != nil {
		return Result{}, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.hc.Do(req)
	if err != nil {
		return Result{}, fmt.Errorf("extraction request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var apiErr struct {
			Error string `json:"error"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&apiErr)
		if apiErr.Error != "" {
			return Result{}, fmt.Errorf("extraction engine: %s", apiErr.Error)
		}
		return Result{}, fmt.Errorf("extraction engine returned status %d", resp.StatusCode)
	}

	var result Result
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return Result{}, fmt.Errorf("failed to decode extraction result: %w", err)
	}
	return result, nil
}

// MockClient is a stand-in for local development without the engine running.
type MockClient struct {
	Result Result
	Err    error
}

func (m *MockClient) Process(_ context.Context, _ string) (Result, error) {
	return m.Result, m.Err
}
