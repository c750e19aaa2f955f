package server

import (
	"errors"
	"net/http"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/lox/trucoforbots/internal/bot"
	"github.com/lox/trucoforbots/internal/deck"
)

// Error codes sent to clients.
const (
	CodeInvalidMessage  = "invalid_message"
	CodeUnknownProfile  = "unknown_profile"
	CodeUnknownKind     = "unknown_kind"
	CodeInvalidSnapshot = "invalid_snapshot"
	CodeInternal        = "internal_error"
	CodeUnknownType     = "unknown_message_type"
)

// Decider answers DecideRequests with the bot of the requested profile. It is
// shared by the HTTP handler and every websocket connection.
type Decider struct {
	registry       *bot.Registry
	defaultProfile string
	logger         *log.Logger
	stats          *Stats

	mu   sync.Mutex
	bots map[string]*bot.Bot
}

// NewDecider creates a decider over registry
func NewDecider(registry *bot.Registry, defaultProfile string, stats *Stats, logger *log.Logger) *Decider {
	return &Decider{
		registry:       registry,
		defaultProfile: defaultProfile,
		logger:         logger,
		stats:          stats,
		bots:           make(map[string]*bot.Bot),
	}
}

// DefaultProfile returns the profile used when a request names none.
func (d *Decider) DefaultProfile() string { return d.defaultProfile }

// Decide resolves the profile and kind, then asks the bot. Every outcome is
// counted in the stats.
func (d *Decider) Decide(req DecideRequest) (DecideResponse, error) {
	requestID := uuid.NewString()

	b, err := d.botFor(req.Profile)
	if err != nil {
		d.stats.RecordError(errorCode(err))
		return DecideResponse{RequestID: requestID}, err
	}
	kind, err := bot.ParseKind(req.Kind)
	if err != nil {
		d.stats.RecordError(errorCode(err))
		return DecideResponse{RequestID: requestID}, err
	}

	decision, err := b.Decide(kind, req.Snapshot)
	if err != nil {
		d.logger.Debug("Decision failed", "requestId", requestID, "profile", b.Name(), "kind", kind, "error", err)
		d.stats.RecordError(errorCode(err))
		return DecideResponse{RequestID: requestID}, err
	}

	d.stats.RecordDecision(decision)
	d.logger.Info("Decision", "requestId", requestID, "profile", decision.Profile, "kind", kind, "value", decision.Value())
	return DecideResponse{RequestID: requestID, Decision: decision}, nil
}

func (d *Decider) botFor(profile string) (*bot.Bot, error) {
	if profile == "" {
		profile = d.defaultProfile
	}
	policy, err := d.registry.Get(profile)
	if err != nil {
		return nil, err
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if b, ok := d.bots[profile]; ok && b.Policy() == policy {
		return b, nil
	}
	b := bot.New(policy, d.logger)
	d.bots[profile] = b
	return b, nil
}

// Profiles lists the registered profiles.
func (d *Decider) Profiles() []ProfileInfo {
	policies := d.registry.Policies()
	out := make([]ProfileInfo, len(policies))
	for i, p := range policies {
		out[i] = ProfileInfo{Name: p.Name(), Variant: p.Variant(), Default: p.Name() == d.defaultProfile}
	}
	return out
}

// errorCode maps a decision error to the code reported to clients.
func errorCode(err error) string {
	switch {
	case errors.Is(err, bot.ErrUnknownProfile):
		return CodeUnknownProfile
	case errors.Is(err, bot.ErrUnknownKind):
		return CodeUnknownKind
	case errors.Is(err, bot.ErrInvalidSnapshot), errors.Is(err, deck.ErrInvalidCard):
		return CodeInvalidSnapshot
	default:
		return CodeInternal
	}
}

// errorStatus maps a decision error to an HTTP status.
func errorStatus(err error) int {
	switch errorCode(err) {
	case CodeUnknownProfile, CodeUnknownKind:
		return http.StatusBadRequest
	case CodeInvalidSnapshot:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}
