package notify

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/r3labs/sse/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecode(t *testing.T) {
	assert.Equal(t, Notification{Message: "hi", Asset: "a.stl"}, Decode([]byte(`{"message":"hi","asset":"a.stl"}`)))
	assert.Equal(t, Notification{Message: "plain text"}, Decode([]byte("plain text\n")))
}

func TestNewSource(t *testing.T) {
	s, err := NewSource("http://localhost/notifications/", nil)
	require.NoError(t, err)
	assert.IsType(t, &SSESource{}, s)

	s, err = NewSource("wss://localhost/ws", nil)
	require.NoError(t, err)
	assert.IsType(t, &WebSocketSource{}, s)

	_, err = NewSource("ftp://localhost", nil)
	assert.Error(t, err)
}

// scriptedSource delivers one batch of payloads per Subscribe call, then fails.
type scriptedSource struct {
	mu      sync.Mutex
	batches [][]string
	calls   int
}

func (s *scriptedSource) Subscribe(ctx context.Context, handle func([]byte)) error {
	s.mu.Lock()
	s.calls++
	var batch []string
	if len(s.batches) > 0 {
		batch, s.batches = s.batches[0], s.batches[1:]
	}
	s.mu.Unlock()
	for _, p := range batch {
		handle([]byte(p))
	}
	return errors.New("connection reset")
}

func TestListenerReconnects(t *testing.T) {
	src := &scriptedSource{batches: [][]string{
		{`{"message":"one"}`},
		{},
		{`{"message":"two"}`, ``},
	}}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var got []string
	l := NewListener(src, Reconnect{Initial: time.Millisecond, Max: 2 * time.Millisecond}, func(n Notification) {
		got = append(got, n.Message)
		if len(got) == 2 {
			cancel()
		}
	}, nil)

	err := l.Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, []string{"one", "two"}, got)
	assert.GreaterOrEqual(t, src.calls, 3)
}

func TestListenerGivesUp(t *testing.T) {
	src := &scriptedSource{}
	l := NewListener(src, Reconnect{Initial: time.Millisecond, Max: time.Millisecond, GiveUp: 20 * time.Millisecond}, func(Notification) {}, nil)
	done := make(chan error, 1)
	go func() { done <- l.Run(context.Background()) }()
	select {
	case err := <-done:
		assert.ErrorIs(t, err, ErrGaveUp)
	case <-time.After(5 * time.Second):
		t.Fatal("listener did not give up")
	}
}

func TestSSESource(t *testing.T) {
	server := sse.New()
	server.AutoReplay = false
	server.CreateStream("notifications")
	defer server.Close()

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		q.Set("stream", "notifications")
		r.URL.RawQuery = q.Encode()
		server.ServeHTTP(w, r)
	}))
	defer ts.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	// publish until the subscriber has connected and received one
	go func() {
		tick := time.NewTicker(20 * time.Millisecond)
		defer tick.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-tick.C:
				server.Publish("notifications", &sse.Event{Data: []byte(`{"message":"new planet"}`)})
			}
		}
	}()

	got := make(chan Notification, 1)
	l := NewListener(NewSSESource(ts.URL, nil), DefaultReconnect(), func(n Notification) {
		select {
		case got <- n:
		default:
		}
		cancel()
	}, nil)
	_ = l.Run(ctx)

	select {
	case n := <-got:
		assert.Equal(t, "new planet", n.Message)
	default:
		t.Fatal("no notification received")
	}
}

func TestWebSocketSource(t *testing.T) {
	upgrader := websocket.Upgrader{}
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		_ = conn.WriteMessage(websocket.TextMessage, []byte(`{"message":"hello"}`))
		_, _, _ = conn.ReadMessage()
	}))
	defer ts.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var got Notification
	src := NewWebSocketSource("ws" + strings.TrimPrefix(ts.URL, "http"))
	err := NewListener(src, DefaultReconnect(), func(n Notification) {
		got = n
		cancel()
	}, nil).Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, "hello", got.Message)
}
