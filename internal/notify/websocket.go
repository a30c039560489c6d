package notify

import (
	"context"

	"github.com/gorilla/websocket"
)

// WebSocketSource reads text frames from a WebSocket endpoint.
type WebSocketSource struct {
	URL    string
	Dialer *websocket.Dialer
}

// NewWebSocketSource returns a source for url using the default dialer.
func NewWebSocketSource(url string) *WebSocketSource {
	return &WebSocketSource{URL: url, Dialer: websocket.DefaultDialer}
}

// Subscribe dials once and delivers every message until the connection closes.
func (s *WebSocketSource) Subscribe(ctx context.Context, handle func([]byte)) error {
	conn, _, err := s.Dialer.DialContext(ctx, s.URL, nil)
	if err != nil {
		return err
	}
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			_ = conn.Close()
		case <-done:
		}
	}()
	defer conn.Close()

	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return err
		}
		handle(msg)
	}
}
