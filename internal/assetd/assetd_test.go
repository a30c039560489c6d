package assetd

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"imprint-viewer/internal/notify"
)

func writeMesh(t *testing.T, dir, name, body string, mod time.Time) {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))
	require.NoError(t, os.Chtimes(path, mod, mod))
}

func TestLibraryLatest(t *testing.T) {
	dir := t.TempDir()
	lib := &Library{Dir: dir}

	_, err := lib.Latest()
	assert.ErrorIs(t, err, ErrNoAsset)

	base := time.Now().Add(-time.Hour)
	writeMesh(t, dir, "a.stl", "a", base)
	writeMesh(t, dir, "b.STL", "b", base.Add(time.Minute))
	writeMesh(t, dir, "notes.txt", "x", base.Add(time.Hour))

	path, err := lib.Latest()
	require.NoError(t, err)
	assert.Equal(t, "b.STL", filepath.Base(path))
}

func TestLatestEndpoint(t *testing.T) {
	dir := t.TempDir()
	srv := NewServer(&Library{Dir: dir}, nil)
	defer srv.Close()
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/stl/latest")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	writeMesh(t, dir, "planet.stl", "solid planet", time.Now())
	resp, err = http.Get(ts.URL + "/stl/latest")
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "model/stl", resp.Header.Get("Content-Type"))
	assert.Equal(t, "solid planet", string(body))
}

func TestNotifyEndpointValidation(t *testing.T) {
	srv := NewServer(&Library{Dir: t.TempDir()}, nil)
	defer srv.Close()
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	for body, want := range map[string]int{
		`{"message":"hello"}`: http.StatusAccepted,
		`{"message":"  "}`:    http.StatusBadRequest,
		`not json`:            http.StatusBadRequest,
	} {
		resp, err := http.Post(ts.URL+"/notify", "application/json", strings.NewReader(body))
		require.NoError(t, err)
		resp.Body.Close()
		assert.Equal(t, want, resp.StatusCode, body)
	}

	resp, err := http.Get(ts.URL + "/notify")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
}

func TestWebSocketBroadcast(t *testing.T) {
	srv := NewServer(&Library{Dir: t.TempDir()}, nil)
	defer srv.Close()
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(ts.URL, "http")+"/ws", nil)
	require.NoError(t, err)
	defer conn.Close()

	require.Eventually(t, func() bool { return srv.Clients() == 1 }, 2*time.Second, 10*time.Millisecond)
	srv.Announce("planet.stl")

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)
	n := notify.Decode(data)
	assert.Equal(t, "planet.stl", n.Asset)
	assert.Contains(t, n.Message, "planet.stl")
}

// A viewer-side listener receives notifications posted to the server.
func TestListenerReceivesPublishedNotification(t *testing.T) {
	srv := NewServer(&Library{Dir: t.TempDir()}, nil)
	defer srv.Close()
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	for _, url := range []string{ts.URL + "/notifications/", "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"} {
		t.Run(url[:2], func(t *testing.T) {
			src, err := notify.NewSource(url, nil)
			require.NoError(t, err)

			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			got := make(chan notify.Notification, 1)
			l := notify.NewListener(src, notify.DefaultReconnect(), func(n notify.Notification) {
				select {
				case got <- n:
				default:
				}
			}, nil)
			go l.Run(ctx)

			tick := time.NewTicker(20 * time.Millisecond)
			defer tick.Stop()
			for {
				select {
				case n := <-got:
					assert.Equal(t, "fresh", n.Message)
					return
				case <-tick.C:
					srv.Publish(notify.Notification{Message: "fresh"})
				case <-ctx.Done():
					t.Fatal("no notification delivered")
				}
			}
		})
	}
}

func TestWatcherDebounces(t *testing.T) {
	dir := t.TempDir()
	w := NewWatcher(dir, nil)
	w.Debounce = 100 * time.Millisecond

	var (
		mu    sync.Mutex
		names []string
	)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- w.Run(ctx, func(name string) {
			mu.Lock()
			names = append(names, name)
			mu.Unlock()
		})
	}()
	// give the watcher time to register
	time.Sleep(100 * time.Millisecond)

	path := filepath.Join(dir, "planet.stl")
	f, err := os.Create(path)
	require.NoError(t, err)
	for i := 0; i < 5; i++ {
		_, err := f.WriteString("facet\n")
		require.NoError(t, err)
		time.Sleep(10 * time.Millisecond)
	}
	require.NoError(t, f.Close())
	require.NoError(t, os.WriteFile(filepath.Join(dir, "ignored.txt"), []byte("x"), 0644))

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(names) > 0
	}, 2*time.Second, 10*time.Millisecond)
	time.Sleep(300 * time.Millisecond)

	mu.Lock()
	assert.Equal(t, []string{"planet.stl"}, names)
	mu.Unlock()

	cancel()
	assert.ErrorIs(t, <-done, context.Canceled)
}

func TestWatcherMissingDir(t *testing.T) {
	w := NewWatcher(filepath.Join(t.TempDir(), "missing"), nil)
	assert.Error(t, w.Run(context.Background(), func(string) {}))
}
