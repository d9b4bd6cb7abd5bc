// Package fetch retrieves the payloads of asynchronous items: weather
// reports, currency rates and the state of the media player.
package fetch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/time/rate"
)

// userAgent identifies lookout to the services it polls.
const userAgent = "lookout/0.3 (+https://github.com/abelbrown/lookout)"

// maxBody caps how much of a response is read.
const maxBody = 1 << 20

// Fetcher performs rate-limited HTTP requests. All remote sources share
// one Fetcher, so a burst of refreshes cannot hammer a service.
type Fetcher struct {
	client  *http.Client
	limiter *rate.Limiter
}

// NewFetcher creates a Fetcher with the given HTTP client timeout.
func NewFetcher(timeout time.Duration) *Fetcher {
	return &Fetcher{
		client:  &http.Client{Timeout: timeout},
		limiter: rate.NewLimiter(rate.Every(500*time.Millisecond), 2),
	}
}

// request describes one HTTP call.
type request struct {
	method  string
	url     string
	body    []byte
	headers map[string]string
}

// fetchJSON performs req and decodes the JSON response into out.
func (f *Fetcher) fetchJSON(ctx context.Context, req request, out any) error {
	if err := f.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limiter: %w", err)
	}

	var body io.Reader
	if req.body != nil {
		body = bytes.NewReader(req.body)
	}
	method := req.method
	if method == "" {
		method = http.MethodGet
	}
	hreq, err := http.NewRequestWithContext(ctx, method, req.url, body)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	hreq.Header.Set("User-Agent", userAgent)
	for k, v := range req.headers {
		hreq.Header.Set(k, v)
	}

	resp, err := f.client.Do(hreq)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("HTTP error: %s", resp.Status)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("parse response: %w", err)
	}
	return nil
}
