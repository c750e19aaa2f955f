package bot

import (
	"fmt"
	"maps"
	"slices"

	"github.com/lox/trucoforbots/internal/classification"
	"github.com/lox/trucoforbots/internal/deck"
)

// NeverTier is a minimum tier no hand reaches; use it to switch a phase off.
const NeverTier = classification.MaxTier + 1

// TierRules configures a policy driven purely by power tiers.
type TierRules struct {
	Calibration classification.Calibration
	// OpeningMinTier is the first-round tier needed to play a hand of eleven.
	OpeningMinTier int
	// RaiseMinTier is the tier needed to ask for a raise, per phase.
	RaiseMinTier map[Phase]int
	// ForceRaise lists phases where holding Zap and Copas always asks for a raise.
	ForceRaise []Phase
	// Replies maps a tier to the answer given to a raise. Missing tiers decline.
	Replies map[int]RaiseReply
}

// DefaultTierRules returns the rules of the built-in tier profile.
func DefaultTierRules() TierRules {
	return TierRules{
		Calibration:    classification.DefaultCalibration,
		OpeningMinTier: 3,
		RaiseMinTier: map[Phase]int{
			NotStarted: 3,
			AfterWon:   4,
			AfterDrew:  4,
			AfterLost:  3,
		},
		ForceRaise: []Phase{AfterLost},
		Replies: map[int]RaiseReply{
			4: ReRaise,
			3: Accept,
		},
	}
}

// Validate checks the rules once, at construction.
func (r TierRules) Validate() error {
	if err := r.Calibration.Validate(); err != nil {
		return err
	}
	if !validMinTier(r.OpeningMinTier) {
		return fmt.Errorf("opening minimum tier %d out of range", r.OpeningMinTier)
	}
	for p := NotStarted; p < phaseCount; p++ {
		tier, ok := r.RaiseMinTier[p]
		if !ok {
			return fmt.Errorf("no raise minimum tier for phase %s", p)
		}
		if !validMinTier(tier) {
			return fmt.Errorf("raise minimum tier %d for phase %s out of range", tier, p)
		}
	}
	for p := range r.RaiseMinTier {
		if p < 0 || p >= phaseCount {
			return fmt.Errorf("raise minimum tier for unknown phase %d", int(p))
		}
	}
	for _, p := range r.ForceRaise {
		if p <= NotStarted || p >= phaseCount {
			return fmt.Errorf("forced raise needs a resolved round, got phase %s", p)
		}
	}
	for tier, reply := range r.Replies {
		if tier < classification.MinTier || tier > classification.MaxTier {
			return fmt.Errorf("reply for tier %d out of range", tier)
		}
		if reply < Decline || reply > ReRaise {
			return fmt.Errorf("reply %d for tier %d is not a raise reply", int(reply), tier)
		}
	}
	return nil
}

func validMinTier(tier int) bool {
	return tier >= classification.MinTier && tier <= NeverTier
}

// TierPolicy decides from the hand's power tier.
type TierPolicy struct {
	name  string
	rules TierRules
}

// NewTierPolicy validates rules and returns a policy that owns a copy of them.
func NewTierPolicy(name string, rules TierRules) (*TierPolicy, error) {
	if err := rules.Validate(); err != nil {
		return nil, fmt.Errorf("tier profile %q: %w", name, err)
	}
	rules.Calibration.FirstRound = slices.Clone(rules.Calibration.FirstRound)
	rules.Calibration.LaterRound = slices.Clone(rules.Calibration.LaterRound)
	rules.RaiseMinTier = maps.Clone(rules.RaiseMinTier)
	rules.ForceRaise = slices.Clone(rules.ForceRaise)
	rules.Replies = maps.Clone(rules.Replies)
	return &TierPolicy{name: name, rules: rules}, nil
}

func (p *TierPolicy) Name() string     { return p.name }
func (p *TierPolicy) Variant() Variant { return VariantTier }

// Rules returns the rules the policy was built with.
func (p *TierPolicy) Rules() TierRules { return p.rules }

// Tier returns the power tier of the hand at its current stage.
func (p *TierPolicy) Tier(s Snapshot) int {
	return p.rules.Calibration.PowerRank(s.Hand, s.Vira, s.Stage())
}

func (p *TierPolicy) OpeningCallResponse(s Snapshot) bool {
	if opponentOnEleven(s) {
		return true
	}
	tier := p.rules.Calibration.PowerRank(s.Hand, s.Vira, classification.FirstRound)
	return tier >= p.rules.OpeningMinTier
}

func (p *TierPolicy) RaiseRequest(s Snapshot) bool {
	if raiseBlocked(s) {
		return false
	}
	phase := s.Phase()
	if slices.Contains(p.rules.ForceRaise, phase) && holdsZapAndCopas(s) {
		return true
	}
	return p.Tier(s) >= p.rules.RaiseMinTier[phase]
}

func (p *TierPolicy) RaiseResponse(s Snapshot) RaiseReply {
	if holdsZapAndCopas(s) {
		return Accept
	}
	switch s.Phase() {
	case NotStarted, AfterWon:
		return p.reply(p.Tier(s))
	default:
		return Decline
	}
}

func (p *TierPolicy) reply(tier int) RaiseReply {
	if r, ok := p.rules.Replies[tier]; ok {
		return r
	}
	return Decline
}

func (p *TierPolicy) ChooseCard(s Snapshot) deck.Card {
	hand, vira := s.Hand, s.Vira
	opponent, visible := s.VisibleOpponentCard()

	if s.Phase() == NotStarted {
		switch {
		case holdsZapAndCopas(s):
			return Weakest(hand, vira)
		case visible:
			return WeakestWinner(hand, opponent, vira)
		default:
			return Strongest(hand, vira)
		}
	}

	if visible && (opponent.IsHidden() || opponent.IsZap(vira)) {
		return Weakest(hand, vira)
	}

	switch s.Phase() {
	case AfterDrew, AfterLost:
		return Strongest(hand, vira)
	case AfterWon:
		if len(s.Rounds) == 1 && Strongest(hand, vira).IsZap(vira) {
			return Weakest(hand, vira)
		}
	}
	return hand[0]
}
