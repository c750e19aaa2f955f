package bot

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/lox/trucoforbots/internal/classification"
	"github.com/lox/trucoforbots/internal/deck"
)

// ErrIllegalCard is returned when a policy picks a card that is not in hand.
var ErrIllegalCard = errors.New("card not in hand")

// Bot validates snapshots before handing them to a Policy and logs every
// decision it makes.
type Bot struct {
	policy Policy
	logger *log.Logger
}

// New creates a bot for policy
func New(policy Policy, logger *log.Logger) *Bot {
	return &Bot{
		policy: policy,
		logger: logger.WithPrefix("bot").With("profile", policy.Name()),
	}
}

// Name returns the profile name of the underlying policy.
func (b *Bot) Name() string { return b.policy.Name() }

// Policy returns the wrapped policy.
func (b *Bot) Policy() Policy { return b.policy }

func (b *Bot) OpeningCallResponse(s Snapshot) (bool, error) {
	if err := s.Validate(); err != nil {
		return false, err
	}
	accept := b.policy.OpeningCallResponse(s)
	b.logger.Debug("Opening call", append(describe(s), "accept", accept)...)
	return accept, nil
}

func (b *Bot) RaiseRequest(s Snapshot) (bool, error) {
	if err := s.Validate(); err != nil {
		return false, err
	}
	raise := b.policy.RaiseRequest(s)
	b.logger.Debug("Raise request", append(describe(s), "raise", raise)...)
	return raise, nil
}

func (b *Bot) RaiseResponse(s Snapshot) (RaiseReply, error) {
	if err := s.Validate(); err != nil {
		return Decline, err
	}
	reply := b.policy.RaiseResponse(s)
	b.logger.Debug("Raise response", append(describe(s), "reply", reply)...)
	return reply, nil
}

func (b *Bot) ChooseCard(s Snapshot) (deck.Card, error) {
	if err := s.Validate(); err != nil {
		return deck.Card{}, err
	}
	card := b.policy.ChooseCard(s)
	if !slices.Contains(s.Hand, card) {
		b.logger.Error("Policy chose a card outside the hand", "card", card, "hand", s.Hand)
		return deck.Card{}, fmt.Errorf("%w: %s chose %v", ErrIllegalCard, b.policy.Name(), card)
	}
	b.logger.Debug("Choose card", append(describe(s), "card", card)...)
	return card, nil
}

// describe returns the key/value pairs logged with every decision.
func describe(s Snapshot) []any {
	return []any{
		"phase", s.Phase(),
		"hand", s.Hand,
		"vira", s.Vira,
		"power", classification.HandPower(s.Hand, s.Vira),
		"archetypes", s.Tally().Archetypes(),
	}
}

// ThinkingContext accumulates the reasoning behind a decision
type ThinkingContext struct {
	thoughts []string
}

// AddThought appends a formatted thought
func (tc *ThinkingContext) AddThought(format string, args ...any) {
	tc.thoughts = append(tc.thoughts, fmt.Sprintf(format, args...))
}

// GetThoughts returns the complete stream of thoughts
func (tc *ThinkingContext) GetThoughts() string {
	if len(tc.thoughts) == 0 {
		return "No clear reasoning available"
	}
	return strings.Join(tc.thoughts, ". ")
}

// think records what the policy saw when it decided.
func (b *Bot) think(s Snapshot) *ThinkingContext {
	tc := &ThinkingContext{}
	tc.AddThought("Phase %s with %d hand points", s.Phase(), s.HandPoints)
	tc.AddThought("Hand %s under vira %v has power %d", formatHand(s.Hand), s.Vira, classification.HandPower(s.Hand, s.Vira))

	if tp, ok := b.policy.(*TierPolicy); ok {
		tc.AddThought("Power tier %d on the %s table", tp.Tier(s), s.Stage())
	}
	if archetypes := s.Tally().Archetypes(); len(archetypes) > 0 {
		names := make([]string, len(archetypes))
		for i, a := range archetypes {
			names[i] = a.String()
		}
		tc.AddThought("Hand matches %s", strings.Join(names, ", "))
	}
	if opponent, ok := s.VisibleOpponentCard(); ok {
		if opponent.IsHidden() {
			tc.AddThought("Opponent played face down")
		} else {
			tc.AddThought("Opponent played %v, beatable: %t", opponent, CanBeat(s.Hand, opponent, s.Vira))
		}
	}
	if s.OpponentScore == ElevenPoints || s.Score == ElevenPoints {
		tc.AddThought("Score %d-%d puts a side on eleven", s.Score, s.OpponentScore)
	}
	return tc
}

func formatHand(hand []deck.Card) string {
	parts := make([]string, len(hand))
	for i, c := range hand {
		parts[i] = c.String()
	}
	return strings.Join(parts, " ")
}
