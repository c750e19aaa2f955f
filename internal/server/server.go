package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"
	"github.com/lox/trucoforbots/internal/bot"
)

const (
	// Largest POST /decide body accepted.
	maxRequestBody = 64 << 10
	shutdownGrace  = 5 * time.Second
)

// Server serves policy decisions over HTTP and WebSocket
type Server struct {
	decider     *Decider
	stats       *Stats
	clock       quartz.Clock
	logger      *log.Logger
	upgrader    websocket.Upgrader
	sendBuffer  int
	router      chi.Router
	mu          sync.RWMutex
	connections map[*Connection]bool
}

// Option configures a Server
type Option func(*options)

type options struct {
	clock          quartz.Clock
	defaultProfile string
	sendBuffer     int
}

// WithClock injects the clock used for timestamps, uptime and pings.
func WithClock(clock quartz.Clock) Option {
	return func(o *options) { o.clock = clock }
}

// WithDefaultProfile sets the profile used when a request names none.
func WithDefaultProfile(name string) Option {
	return func(o *options) { o.defaultProfile = name }
}

// WithSendBuffer bounds the outbound queue of each websocket connection.
func WithSendBuffer(n int) Option {
	return func(o *options) { o.sendBuffer = n }
}

// NewServer creates a server answering with the policies in registry
func NewServer(registry *bot.Registry, logger *log.Logger, opts ...Option) *Server {
	o := options{
		clock:          quartz.NewReal(),
		defaultProfile: bot.TieredProfile,
		sendBuffer:     64,
	}
	for _, opt := range opts {
		opt(&o)
	}

	logger = logger.WithPrefix("server")
	stats := NewStats(o.clock)
	s := &Server{
		decider: NewDecider(registry, o.defaultProfile, stats, logger),
		stats:   stats,
		clock:   o.clock,
		logger:  logger,
		upgrader: websocket.Upgrader{
			// Bots connect from anywhere; there is no browser session to protect.
			CheckOrigin:     func(r *http.Request) bool { return true },
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
		sendBuffer:  o.sendBuffer,
		connections: make(map[*Connection]bool),
	}
	s.router = s.routes()
	return s
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(s.requestLogger)

	r.Get("/health", s.handleHealth)
	r.Get("/profiles", s.handleProfiles)
	r.Get("/stats", s.handleStats)
	r.Post("/decide", s.handleDecide)
	r.Get("/ws", s.handleWebSocket)
	return r
}

// Handler returns the HTTP handler of the server.
func (s *Server) Handler() http.Handler { return s.router }

// Stats returns the server's counters.
func (s *Server) Stats() *Stats { return s.stats }

// Run listens on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("Starting decision server", "addr", addr, "defaultProfile", s.decider.DefaultProfile())
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	s.logger.Info("Shutting down decision server")
	s.closeConnections()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

func (s *Server) closeConnections() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for conn := range s.connections {
		_ = conn.Close()
	}
}

// ConnectionCount returns the number of open websocket connections.
func (s *Server) ConnectionCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.connections)
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := s.clock.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.logger.Debug("HTTP request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", s.clock.Since(start))
	})
}

// handleHealth handles health check requests
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = fmt.Fprintf(w, "OK")
}

func (s *Server) handleProfiles(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.decider.Profiles())
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.stats.Snapshot())
}

func (s *Server) handleDecide(w http.ResponseWriter, r *http.Request) {
	var req DecideRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBody))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		code, status := CodeInvalidMessage, http.StatusBadRequest
		if errorCode(err) == CodeInvalidSnapshot {
			code, status = CodeInvalidSnapshot, http.StatusUnprocessableEntity
		}
		s.stats.RecordError(code)
		writeJSON(w, status, ErrorData{Code: code, Message: err.Error()})
		return
	}

	resp, err := s.decider.Decide(req)
	if err != nil {
		w.Header().Set("X-Request-Id", resp.RequestID)
		writeJSON(w, errorStatus(err), ErrorData{Code: errorCode(err), Message: err.Error()})
		return
	}
	w.Header().Set("X-Request-Id", resp.RequestID)
	writeJSON(w, http.StatusOK, resp)
}

// handleWebSocket handles WebSocket upgrade requests
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Error("Failed to upgrade connection", "error", err)
		return
	}

	client := NewConnection(conn, s.decider, s.clock, s.sendBuffer, s.logger)
	s.register(client)
	client.Start()

	profiles := make([]string, 0)
	for _, p := range s.decider.Profiles() {
		profiles = append(profiles, p.Name)
	}
	client.reply(MessageTypeWelcome, "", WelcomeData{
		ConnectionID:   client.ID(),
		DefaultProfile: s.decider.DefaultProfile(),
		Profiles:       profiles,
	})

	go func() {
		<-client.Done()
		s.unregister(client)
	}()
}

func (s *Server) register(conn *Connection) {
	s.mu.Lock()
	s.connections[conn] = true
	total := len(s.connections)
	s.mu.Unlock()
	s.stats.ConnectionOpened()
	s.logger.Info("Client connected", "conn", conn.ID(), "total", total)
}

func (s *Server) unregister(conn *Connection) {
	s.mu.Lock()
	_, ok := s.connections[conn]
	delete(s.connections, conn)
	total := len(s.connections)
	s.mu.Unlock()
	if !ok {
		return
	}
	s.stats.ConnectionClosed()
	s.logger.Info("Client disconnected", "conn", conn.ID(), "total", total)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
