// Package preview resolves stored file references into time-limited signed
// URLs for inline document preview.
package preview

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

type Provider interface {
	SignedURL(ctx context.Context, fileRef string) (string, error)
}

type httpProvider struct {
	baseURL string
	hc      *http.Client
}

// NewHTTPProvider talks to the file service's signing endpoint.
func NewHTTPProvider(baseURL string) Provider {
	return &httpProvider{
		baseURL: baseURL,
		hc:      &http.Client{Timeout: 10 * time.Second},
	}
}

func (p *httpProvider) SignedURL(ctx context.Context, fileRef string) (string, error) {
	endpoint := p.baseURL + "/v1/sign?ref=" + url.QueryEscape(fileRef)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return "", err
	}

	resp, err := p.hc.Do(req)
	if err != nil {
		return "", fmt.Errorf("preview signer request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("preview signer returned status %d", resp.StatusCode)
	}

	var body struct {
		URL       string `json:"url"`
		ExpiresIn int    `json:"expires_in"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", fmt.Errorf("failed to decode signed URL: %w", err)
	}
	if body.URL == "" {
		return "", fmt.Errorf("preview signer returned an empty URL")
	}
	return body.URL, nil
}
