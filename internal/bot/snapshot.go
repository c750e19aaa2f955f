package bot

import (
	"errors"
	"fmt"
	"strings"

	"github.com/lox/trucoforbots/internal/classification"
	"github.com/lox/trucoforbots/internal/deck"
)

// Score limits of a truco match.
const (
	// GamePoint ends the match.
	GamePoint = 12
	// ElevenPoints is one hand away from game point ("mão de onze").
	ElevenPoints = GamePoint - 1
	// MaxHandPoints is the highest stake a hand can reach.
	MaxHandPoints = 12
	// MaxRounds is the number of rounds that can resolve before the last card.
	MaxRounds = 2
	// HandSize is the number of cards dealt to each player.
	HandSize = 3
)

// ErrInvalidSnapshot is returned for snapshots the policy cannot reason about.
var ErrInvalidSnapshot = errors.New("invalid snapshot")

// RoundResult is the outcome of one resolved round, from the bot's side.
type RoundResult int

const (
	Won RoundResult = iota
	Lost
	Drew
)

func (r RoundResult) String() string {
	switch r {
	case Won:
		return "won"
	case Lost:
		return "lost"
	case Drew:
		return "drew"
	default:
		return "unknown"
	}
}

// MarshalText encodes the result as "won", "lost" or "drew".
func (r RoundResult) MarshalText() ([]byte, error) {
	if r < Won || r > Drew {
		return nil, fmt.Errorf("%w: round result %d", ErrInvalidSnapshot, int(r))
	}
	return []byte(r.String()), nil
}

// UnmarshalText accepts the names produced by MarshalText in any case.
func (r *RoundResult) UnmarshalText(text []byte) error {
	switch strings.ToLower(string(text)) {
	case "won":
		*r = Won
	case "lost":
		*r = Lost
	case "drew":
		*r = Drew
	default:
		return fmt.Errorf("%w: unknown round result %q", ErrInvalidSnapshot, text)
	}
	return nil
}

// Phase is the state of the hand as seen by the decision funnels. Only the
// first round result matters; later results never change the phase.
type Phase int

const (
	NotStarted Phase = iota
	AfterWon
	AfterLost
	AfterDrew
	phaseCount
)

var phaseNames = [phaseCount]string{
	NotStarted: "not_started",
	AfterWon:   "won",
	AfterLost:  "lost",
	AfterDrew:  "drew",
}

func (p Phase) String() string {
	if p < 0 || p >= phaseCount {
		return "unknown"
	}
	return phaseNames[p]
}

// ParsePhase returns the phase with the given name.
func ParsePhase(name string) (Phase, error) {
	for p, n := range phaseNames {
		if n == name {
			return Phase(p), nil
		}
	}
	return 0, fmt.Errorf("unknown phase %q", name)
}

// Snapshot is the read-only view of a hand the host supplies on every call.
type Snapshot struct {
	Hand          []deck.Card   `json:"hand"`
	Vira          deck.Card     `json:"vira"`
	Rounds        []RoundResult `json:"rounds"`
	Score         int           `json:"score"`
	OpponentScore int           `json:"opponentScore"`
	HandPoints    int           `json:"handPoints"`
	OpponentCard  *deck.Card    `json:"opponentCard,omitempty"`
}

// Validate rejects snapshots outside the game's domain.
func (s Snapshot) Validate() error {
	if n := len(s.Hand); n == 0 || n > HandSize {
		return fmt.Errorf("%w: hand has %d cards", ErrInvalidSnapshot, n)
	}
	if err := s.Vira.Validate(); err != nil {
		return fmt.Errorf("%w: vira: %w", ErrInvalidSnapshot, err)
	}

	seen := map[deck.Card]bool{s.Vira: true}
	for i, card := range s.Hand {
		if err := card.Validate(); err != nil {
			return fmt.Errorf("%w: hand card %d: %w", ErrInvalidSnapshot, i, err)
		}
		if seen[card] {
			return fmt.Errorf("%w: %v appears twice", ErrInvalidSnapshot, card)
		}
		seen[card] = true
	}

	if s.OpponentCard != nil && !s.OpponentCard.IsHidden() {
		if err := s.OpponentCard.Validate(); err != nil {
			return fmt.Errorf("%w: opponent card: %w", ErrInvalidSnapshot, err)
		}
		if seen[*s.OpponentCard] {
			return fmt.Errorf("%w: opponent card %v is already in play", ErrInvalidSnapshot, *s.OpponentCard)
		}
	}

	if len(s.Rounds) > MaxRounds {
		return fmt.Errorf("%w: %d round results, at most %d", ErrInvalidSnapshot, len(s.Rounds), MaxRounds)
	}
	for i, r := range s.Rounds {
		if r < Won || r > Drew {
			return fmt.Errorf("%w: round %d has result %d", ErrInvalidSnapshot, i, int(r))
		}
	}

	if s.Score < 0 || s.Score > ElevenPoints {
		return fmt.Errorf("%w: score %d", ErrInvalidSnapshot, s.Score)
	}
	if s.OpponentScore < 0 || s.OpponentScore > ElevenPoints {
		return fmt.Errorf("%w: opponent score %d", ErrInvalidSnapshot, s.OpponentScore)
	}
	if s.HandPoints < 1 || s.HandPoints > MaxHandPoints {
		return fmt.Errorf("%w: hand points %d", ErrInvalidSnapshot, s.HandPoints)
	}
	return nil
}

// Phase derives the decision phase from the first round result.
func (s Snapshot) Phase() Phase {
	if len(s.Rounds) == 0 {
		return NotStarted
	}
	switch s.Rounds[0] {
	case Won:
		return AfterWon
	case Lost:
		return AfterLost
	default:
		return AfterDrew
	}
}

// Stage returns the band table stage for the current phase.
func (s Snapshot) Stage() classification.Stage {
	if s.Phase() == NotStarted {
		return classification.FirstRound
	}
	return classification.LaterRound
}

// Tally counts the cards in hand.
func (s Snapshot) Tally() classification.Tally {
	return classification.NewTally(s.Hand, s.Vira)
}

// VisibleOpponentCard returns the opponent's card when one has been played.
func (s Snapshot) VisibleOpponentCard() (deck.Card, bool) {
	if s.OpponentCard == nil {
		return deck.Card{}, false
	}
	return *s.OpponentCard, true
}
