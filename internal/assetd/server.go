package assetd

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"path/filepath"
	"strings"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/r3labs/sse/v2"

	"imprint-viewer/internal/notify"
)

// Stream is the SSE stream id carrying notifications.
const Stream = "notifications"

// Server serves the newest mesh and fans notifications out to SSE and WebSocket clients.
type Server struct {
	lib *Library
	log *slog.Logger

	events   *sse.Server
	upgrader websocket.Upgrader

	mu      sync.Mutex
	clients map[*websocket.Conn]bool
}

// NewServer returns a Server for lib.
func NewServer(lib *Library, log *slog.Logger) *Server {
	if log == nil {
		log = slog.Default()
	}
	events := sse.New()
	events.AutoReplay = false
	events.CreateStream(Stream)
	return &Server{
		lib:     lib,
		log:     log,
		events:  events,
		clients: make(map[*websocket.Conn]bool),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

// Handler returns the HTTP routes.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /stl/latest", s.handleLatest)
	mux.HandleFunc("GET /notifications/", s.handleEvents)
	mux.HandleFunc("GET /ws", s.handleWebSocket)
	mux.HandleFunc("POST /notify", s.handleNotify)
	return mux
}

// Announce publishes that name is the newest mesh.
func (s *Server) Announce(name string) {
	s.Publish(notify.Notification{Message: "new mesh " + name, Asset: name})
}

// Publish sends n to every connected client.
func (s *Server) Publish(n notify.Notification) {
	data, err := json.Marshal(n)
	if err != nil {
		s.log.Error("marshal notification", "err", err)
		return
	}
	s.log.Info("publish", "message", n.Message, "asset", n.Asset)
	s.events.Publish(Stream, &sse.Event{Data: data})
	s.broadcast(data)
}

// Clients reports how many WebSocket clients are connected.
func (s *Server) Clients() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.clients)
}

// Close disconnects every client.
func (s *Server) Close() {
	s.events.Close()
	s.mu.Lock()
	defer s.mu.Unlock()
	for c := range s.clients {
		c.Close()
		delete(s.clients, c)
	}
}

func (s *Server) handleLatest(w http.ResponseWriter, r *http.Request) {
	path, err := s.lib.Latest()
	if errors.Is(err, ErrNoAsset) {
		http.Error(w, "no mesh available", http.StatusNotFound)
		return
	}
	if err != nil {
		s.log.Error("latest mesh", "err", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "model/stl")
	w.Header().Set("Content-Disposition", `inline; filename="`+filepath.Base(path)+`"`)
	w.Header().Set("Cache-Control", "no-store")
	http.ServeFile(w, r, path)
}

func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	q.Set("stream", Stream)
	r.URL.RawQuery = q.Encode()
	s.events.ServeHTTP(w, r)
}

func (s *Server) handleNotify(w http.ResponseWriter, r *http.Request) {
	var n notify.Notification
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<16)).Decode(&n); err != nil {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}
	n.Message = strings.TrimSpace(n.Message)
	if n.Message == "" {
		http.Error(w, "message is required", http.StatusBadRequest)
		return
	}
	s.Publish(n)
	w.WriteHeader(http.StatusAccepted)
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warn("websocket upgrade", "err", err)
		return
	}
	s.mu.Lock()
	s.clients[conn] = true
	s.mu.Unlock()
	s.log.Debug("websocket client connected", "remote", r.RemoteAddr)

	defer func() {
		s.mu.Lock()
		delete(s.clients, conn)
		s.mu.Unlock()
		conn.Close()
		s.log.Debug("websocket client disconnected", "remote", r.RemoteAddr)
	}()

	// reads only detect disconnects
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (s *Server) broadcast(data []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for c := range s.clients {
		if err := c.WriteMessage(websocket.TextMessage, data); err != nil {
			s.log.Warn("websocket write", "err", err)
			c.Close()
			delete(s.clients, c)
		}
	}
}
