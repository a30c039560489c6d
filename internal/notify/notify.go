// Package notify keeps a standing subscription to the server's push channel and hands every
// notification to a callback. A received event always means "a new asset is available".
package notify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"gopkg.in/cenkalti/backoff.v1"
)

// Notification is the JSON payload of one push event.
type Notification struct {
	Message string `json:"message"`
	Asset   string `json:"asset,omitempty"`
}

// Decode parses a payload. Non-JSON payloads become the message text as-is.
func Decode(data []byte) Notification {
	var n Notification
	if err := json.Unmarshal(data, &n); err != nil {
		return Notification{Message: strings.TrimSpace(string(data))}
	}
	return n
}

// Source delivers raw event payloads. Subscribe blocks until the connection ends or ctx is
// cancelled; the Listener reconnects.
type Source interface {
	Subscribe(ctx context.Context, handle func(payload []byte)) error
}

// NewSource picks the transport from the URL scheme: http(s) is Server-Sent Events,
// ws(s) is WebSocket.
func NewSource(rawURL string, client *http.Client) (Source, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("notify: %w", err)
	}
	switch u.Scheme {
	case "http", "https":
		return NewSSESource(rawURL, client), nil
	case "ws", "wss":
		return NewWebSocketSource(rawURL), nil
	}
	return nil, fmt.Errorf("notify: unsupported scheme %q", u.Scheme)
}

// Reconnect is the exponential backoff between subscription attempts.
type Reconnect struct {
	Initial time.Duration
	Max     time.Duration
	// GiveUp stops reconnecting after this much time without a delivered event; zero never stops.
	GiveUp time.Duration
}

// DefaultReconnect starts at 500ms and caps at 30s.
func DefaultReconnect() Reconnect {
	return Reconnect{Initial: 500 * time.Millisecond, Max: 30 * time.Second}
}

func (r Reconnect) backoff() *backoff.ExponentialBackOff {
	b := backoff.NewExponentialBackOff()
	if r.Initial > 0 {
		b.InitialInterval = r.Initial
	}
	if r.Max > 0 {
		b.MaxInterval = r.Max
	}
	b.MaxElapsedTime = r.GiveUp
	b.Reset()
	return b
}

// ErrGaveUp is returned by Run when the reconnect policy is exhausted.
var ErrGaveUp = errors.New("notify: gave up reconnecting")

// Listener owns the subscription.
type Listener struct {
	source    Source
	reconnect Reconnect
	handle    func(Notification)
	log       *slog.Logger
}

// NewListener returns a listener calling handle for every notification. handle runs on the
// listener's goroutine and must not block for long.
func NewListener(source Source, reconnect Reconnect, handle func(Notification), log *slog.Logger) *Listener {
	if log == nil {
		log = slog.Default()
	}
	return &Listener{source: source, reconnect: reconnect, handle: handle, log: log}
}

// Run subscribes until ctx is cancelled, reconnecting with backoff whenever the connection
// ends. It returns ctx.Err() on cancellation or ErrGaveUp.
func (l *Listener) Run(ctx context.Context) error {
	b := l.reconnect.backoff()
	for {
		delivered := false
		err := l.source.Subscribe(ctx, func(payload []byte) {
			if len(payload) == 0 {
				return
			}
			delivered = true
			n := Decode(payload)
			l.log.Info("notification received", "message", n.Message, "asset", n.Asset)
			l.handle(n)
		})
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if delivered {
			b.Reset()
		}
		wait := b.NextBackOff()
		if wait == backoff.Stop {
			l.log.Error("notification channel lost", "err", err)
			return ErrGaveUp
		}
		l.log.Warn("notification channel dropped, reconnecting", "err", err, "in", wait)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(wait):
		}
	}
}
