// Package suggest talks to the external analyte code-suggestion service. The
// service is an opaque collaborator: unreachable endpoints and empty answers
// are both reported as "no suggestion" so the resolution chain can fall
// through to its deterministic tier.
package suggest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// Suggestion is one proposed short code for an analyte name.
type Suggestion struct {
	ShortCode  string  `json:"short_code"`
	Confidence float64 `json:"confidence"`
}

// CodeSuggester proposes a short code for an analyte name. Implementations
// return (nil, nil) when they have no answer; errors are reserved for
// transport failures, which callers treat the same way.
type CodeSuggester interface {
	SuggestCode(ctx context.Context, analyteName, unit string) (*Suggestion, error)
}

type httpClient struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

// NewHTTPClient returns a CodeSuggester backed by the suggestion service's
// HTTP API.
func NewHTTPClient(baseURL, apiKey string, timeout time.Duration) CodeSuggester {
	return &httpClient{
		baseURL: baseURL,
		apiKey:  apiKey,
		client:  &http.Client{Timeout: timeout},
	}
}

type suggestRequest struct {
	AnalyteName string `json:"analyte_name"`
	Unit        string `json:"unit,omitempty"`
}

type suggestResponse struct {
	ShortCode  string  `json:"short_code"`
	Confidence float64 `json:"confidence"`
}

func (c *httpClient) SuggestCode(ctx context.Context, analyteName, unit string) (*Suggestion, error) {
	body, err := json.Marshal(suggestRequest{AnalyteName: analyteName, Unit: unit})
	if err != nil {
		return nil, fmt.Errorf("marshal suggest request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/suggest-code", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build suggest request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("call suggestion service: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("suggestion service returned status %d", resp.StatusCode)
	}

	var out suggestResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode suggest response: %w", err)
	}

	if out.ShortCode == "" {
		return nil, nil
	}
	return &Suggestion{ShortCode: out.ShortCode, Confidence: out.Confidence}, nil
}

// Disabled is a CodeSuggester that never suggests. Used when no suggestion
// service is configured.
type Disabled struct{}

func (Disabled) SuggestCode(ctx context.Context, analyteName, unit string) (*Suggestion, error) {
	return nil, nil
}
