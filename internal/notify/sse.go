package notify

import (
	"context"
	"net/http"

	"github.com/r3labs/sse/v2"
	"gopkg.in/cenkalti/backoff.v1"
)

// SSESource reads a text/event-stream endpoint.
type SSESource struct {
	URL    string
	Client *http.Client
}

// NewSSESource returns a source for url. A nil client uses a client without timeout, which
// a long-lived stream needs.
func NewSSESource(url string, client *http.Client) *SSESource {
	if client == nil {
		client = &http.Client{}
	}
	return &SSESource{URL: url, Client: client}
}

// Subscribe makes one connection attempt and streams event data to handle until the stream
// ends. Reconnecting is left to the Listener.
func (s *SSESource) Subscribe(ctx context.Context, handle func([]byte)) error {
	c := sse.NewClient(s.URL)
	c.Connection = s.Client
	c.ReconnectStrategy = &backoff.StopBackOff{}
	return c.SubscribeRawWithContext(ctx, func(ev *sse.Event) {
		handle(ev.Data)
	})
}
