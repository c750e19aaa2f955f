package server

import (
	"sync"
	"time"

	"github.com/coder/quartz"
	"github.com/lox/trucoforbots/internal/bot"
)

// Stats counts decisions served since startup.
type Stats struct {
	mu               sync.RWMutex
	clock            quartz.Clock
	started          time.Time
	byKind           map[bot.Kind]int
	byProfile        map[string]int
	replies          map[bot.RaiseReply]int
	errors           map[string]int
	connections      int
	totalConnections int
}

// NewStats creates counters that measure uptime against clock
func NewStats(clock quartz.Clock) *Stats {
	return &Stats{
		clock:     clock,
		started:   clock.Now(),
		byKind:    make(map[bot.Kind]int),
		byProfile: make(map[string]int),
		replies:   make(map[bot.RaiseReply]int),
		errors:    make(map[string]int),
	}
}

// RecordDecision counts one answered question.
func (s *Stats) RecordDecision(d bot.Decision) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.byKind[d.Kind]++
	s.byProfile[d.Profile]++
	if d.Reply != nil {
		s.replies[*d.Reply]++
	}
}

// RecordError counts one failed request by error code.
func (s *Stats) RecordError(code string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.errors[code]++
}

// ConnectionOpened tracks a new websocket client.
func (s *Stats) ConnectionOpened() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.connections++
	s.totalConnections++
}

// ConnectionClosed tracks a websocket client going away.
func (s *Stats) ConnectionClosed() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.connections > 0 {
		s.connections--
	}
}

// StatsSnapshot is the JSON form of Stats at one instant.
type StatsSnapshot struct {
	StartedAt        time.Time      `json:"startedAt"`
	UptimeSeconds    float64        `json:"uptimeSeconds"`
	Decisions        int            `json:"decisions"`
	ByKind           map[string]int `json:"byKind"`
	ByProfile        map[string]int `json:"byProfile"`
	Replies          map[string]int `json:"replies"`
	Errors           map[string]int `json:"errors"`
	Connections      int            `json:"connections"`
	TotalConnections int            `json:"totalConnections"`
}

// Snapshot returns a copy of the counters.
func (s *Stats) Snapshot() StatsSnapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := StatsSnapshot{
		StartedAt:        s.started,
		UptimeSeconds:    s.clock.Since(s.started).Seconds(),
		ByKind:           make(map[string]int, len(s.byKind)),
		ByProfile:        make(map[string]int, len(s.byProfile)),
		Replies:          make(map[string]int, len(s.replies)),
		Errors:           make(map[string]int, len(s.errors)),
		Connections:      s.connections,
		TotalConnections: s.totalConnections,
	}
	for kind, n := range s.byKind {
		snap.ByKind[string(kind)] = n
		snap.Decisions += n
	}
	for profile, n := range s.byProfile {
		snap.ByProfile[profile] = n
	}
	for reply, n := range s.replies {
		snap.Replies[reply.String()] = n
	}
	for code, n := range s.errors {
		snap.Errors[code] = n
	}
	return snap
}
