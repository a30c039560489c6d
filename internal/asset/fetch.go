package asset

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
)

const defaultUserAgent = "imprint-viewer/1.0"

// Fetcher retrieves the raw mesh payload from an HTTP endpoint.
type Fetcher struct {
	URL       string
	UserAgent string
	Client    *http.Client
}

// NewFetcher returns a Fetcher for url whose requests give up after timeout.
// A zero timeout means requests wait for the transport.
func NewFetcher(url string, timeout time.Duration) *Fetcher {
	return &Fetcher{
		URL:       url,
		UserAgent: defaultUserAgent,
		Client:    &http.Client{Timeout: timeout},
	}
}

// Fetch issues one GET and returns the body. Any failure is a *FetchError.
func (f *Fetcher) Fetch(ctx context.Context) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.URL, nil)
	if err != nil {
		return nil, &FetchError{URL: f.URL, Err: err}
	}
	if f.UserAgent != "" {
		req.Header.Set("User-Agent", f.UserAgent)
	}
	client := f.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, &FetchError{URL: f.URL, Err: err}
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, &FetchError{URL: f.URL, StatusCode: resp.StatusCode, Err: fmt.Errorf("%s", resp.Status)}
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &FetchError{URL: f.URL, Err: err}
	}
	return body, nil
}
