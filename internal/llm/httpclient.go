package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// errorBodyLimit caps how much of a failed reply ends up in the error
const errorBodyLimit = 512

// APIError is a non-2xx reply from a provider endpoint
type APIError struct {
	Provider string
	Status   int
	Body     string
}

func (e *APIError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("%s returned status %d", e.Provider, e.Status)
	}
	return fmt.Sprintf("%s returned status %d: %s", e.Provider, e.Status, e.Body)
}

// HTTPClient posts JSON bodies to a provider API and decodes JSON replies
type HTTPClient struct {
	provider string
	client   *http.Client
}

func NewHTTPClient(provider string, timeout time.Duration) *HTTPClient {
	return &HTTPClient{
		provider: provider,
		client:   &http.Client{Timeout: timeout},
	}
}

// PostJSON sends in to url and decodes the reply into out. It returns the
// round-trip latency so callers can report it.
func (c *HTTPClient) PostJSON(ctx context.Context, url string, headers map[string]string, in, out any) (int64, error) {
	body, err := json.Marshal(in)
	if err != nil {
		return 0, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return 0, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	start := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("%s request failed: %w", c.provider, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, errorBodyLimit))
		return 0, &APIError{
			Provider: c.provider,
			Status:   resp.StatusCode,
			Body:     strings.TrimSpace(string(snippet)),
		}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return 0, fmt.Errorf("failed to decode %s response: %w", c.provider, err)
	}

	return time.Since(start).Milliseconds(), nil
}
