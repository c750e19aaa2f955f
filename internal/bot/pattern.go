package bot

import (
	"fmt"
	"maps"
	"slices"

	"github.com/lox/trucoforbots/internal/classification"
	"github.com/lox/trucoforbots/internal/deck"
)

// Play names the card a lead rule puts on the table.
type Play int

const (
	PlayWeakest Play = iota
	PlayStrongest
	PlayGood
	PlayFirst
)

func (p Play) String() string {
	switch p {
	case PlayWeakest:
		return "weakest"
	case PlayStrongest:
		return "strongest"
	case PlayGood:
		return "good"
	case PlayFirst:
		return "first"
	default:
		return "unknown"
	}
}

// ParsePlay returns the play with the given name.
func ParsePlay(name string) (Play, error) {
	for _, p := range []Play{PlayWeakest, PlayStrongest, PlayGood, PlayFirst} {
		if p.String() == name {
			return p, nil
		}
	}
	return 0, fmt.Errorf("unknown play %q", name)
}

// LeadRule picks the opening card when the hand matches an archetype.
type LeadRule struct {
	When classification.Archetype
	Play Play
}

// PatternRules configures a policy driven by hand archetypes. Each decision is
// a membership test of the hand's archetypes against a set.
type PatternRules struct {
	Opening []classification.Archetype
	Raise   map[Phase][]classification.Archetype
	// ReRaise answers a raise with +1, or accepts when winning would end the match.
	ReRaise []classification.Archetype
	// Accept answers a raise with 0, or re-raises when losing would end the match.
	Accept []classification.Archetype
	// Lead is consulted in order for the first card of the hand.
	Lead []LeadRule
}

// DefaultPatternRules returns the rules of the built-in pattern profile.
func DefaultPatternRules() PatternRules {
	return PatternRules{
		Opening: []classification.Archetype{
			classification.Giga,
			classification.TopTrumpFigure,
			classification.LowTrumpFigure,
			classification.TopTrumpGood,
			classification.LowTrumpGood,
			classification.TwoGoodNoTrump,
		},
		Raise: map[Phase][]classification.Archetype{
			NotStarted: {
				classification.Trash,
				classification.TopTrumpFigure,
				classification.TopTrumpGood,
				classification.LowTrumpGood,
				classification.LowTrumpFigure,
				classification.TwoGoodNoTrump,
			},
			AfterWon: {
				classification.Trash,
				classification.TwoGoodNoTrump,
				classification.LowTrumpFigure,
				classification.LowTrumpGood,
				classification.TopTrumpGood,
				classification.TopTrumpFigure,
				classification.WeakWithTrump,
				classification.MediumOneGood,
			},
			AfterLost: {
				classification.Giga,
				classification.Trash,
				classification.TwoGoodNoTrump,
				classification.LowTrumpFigure,
				classification.LowTrumpGood,
				classification.TopTrumpGood,
				classification.TopTrumpFigure,
			},
			AfterDrew: {
				classification.Giga,
				classification.MediumOneGood,
				classification.TwoGoodNoTrump,
				classification.WeakWithTrump,
				classification.LowTrumpFigure,
				classification.LowTrumpGood,
			},
		},
		ReRaise: []classification.Archetype{
			classification.Giga,
			classification.TopTrumpGood,
			classification.TopTrumpFigure,
		},
		Accept: []classification.Archetype{
			classification.LowTrumpGood,
			classification.LowTrumpFigure,
			classification.MediumOneGood,
			classification.TwoGoodNoTrump,
		},
		Lead: []LeadRule{
			{When: classification.TopTrumpGood, Play: PlayGood},
			{When: classification.Giga, Play: PlayWeakest},
		},
	}
}

// Validate checks the rules once, at construction.
func (r PatternRules) Validate() error {
	check := func(where string, set []classification.Archetype) error {
		for _, a := range set {
			if a.String() == "unknown" {
				return fmt.Errorf("%s: unknown archetype %d", where, int(a))
			}
		}
		return nil
	}

	if err := check("opening", r.Opening); err != nil {
		return err
	}
	for p, set := range r.Raise {
		if p < 0 || p >= phaseCount {
			return fmt.Errorf("raise set for unknown phase %d", int(p))
		}
		if err := check("raise "+p.String(), set); err != nil {
			return err
		}
	}
	if err := check("re-raise", r.ReRaise); err != nil {
		return err
	}
	if err := check("accept", r.Accept); err != nil {
		return err
	}
	for i, rule := range r.Lead {
		if rule.When.String() == "unknown" {
			return fmt.Errorf("lead rule %d: unknown archetype %d", i, int(rule.When))
		}
		if rule.Play.String() == "unknown" {
			return fmt.Errorf("lead rule %d: unknown play %d", i, int(rule.Play))
		}
	}
	return nil
}

// PatternPolicy decides from the archetypes the hand matches.
type PatternPolicy struct {
	name  string
	rules PatternRules
}

// NewPatternPolicy validates rules and returns a policy that owns a copy of them.
func NewPatternPolicy(name string, rules PatternRules) (*PatternPolicy, error) {
	if err := rules.Validate(); err != nil {
		return nil, fmt.Errorf("pattern profile %q: %w", name, err)
	}
	raise := make(map[Phase][]classification.Archetype, len(rules.Raise))
	for p, set := range rules.Raise {
		raise[p] = slices.Clone(set)
	}
	rules.Raise = raise
	rules.Opening = slices.Clone(rules.Opening)
	rules.ReRaise = slices.Clone(rules.ReRaise)
	rules.Accept = slices.Clone(rules.Accept)
	rules.Lead = slices.Clone(rules.Lead)
	return &PatternPolicy{name: name, rules: rules}, nil
}

func (p *PatternPolicy) Name() string     { return p.name }
func (p *PatternPolicy) Variant() Variant { return VariantPattern }

// Rules returns a copy of the rules the policy was built with.
func (p *PatternPolicy) Rules() PatternRules {
	r := p.rules
	r.Raise = maps.Clone(p.rules.Raise)
	return r
}

func (p *PatternPolicy) OpeningCallResponse(s Snapshot) bool {
	if opponentOnEleven(s) {
		return true
	}
	return s.Tally().MatchesAny(p.rules.Opening)
}

func (p *PatternPolicy) RaiseRequest(s Snapshot) bool {
	if raiseBlocked(s) {
		return false
	}
	return s.Tally().MatchesAny(p.rules.Raise[s.Phase()])
}

func (p *PatternPolicy) RaiseResponse(s Snapshot) RaiseReply {
	if holdsZapAndCopas(s) {
		return Accept
	}
	if s.HandPoints >= MaxHandPoints {
		return Decline
	}

	tally := s.Tally()
	switch {
	case tally.MatchesAny(p.rules.ReRaise):
		if s.Score+s.HandPoints >= GamePoint {
			return Accept
		}
		return ReRaise
	case tally.MatchesAny(p.rules.Accept):
		if s.OpponentScore+s.HandPoints >= GamePoint {
			return ReRaise
		}
		return Accept
	default:
		return Decline
	}
}

func (p *PatternPolicy) ChooseCard(s Snapshot) deck.Card {
	hand, vira := s.Hand, s.Vira
	if opponent, ok := s.VisibleOpponentCard(); ok {
		return WeakestWinner(hand, opponent, vira)
	}

	if s.Phase() == NotStarted {
		tally := s.Tally()
		for _, rule := range p.rules.Lead {
			if tally.Matches(rule.When) {
				return play(rule.Play, hand, vira)
			}
		}
	}
	return Strongest(hand, vira)
}

func play(p Play, hand []deck.Card, vira deck.Card) deck.Card {
	switch p {
	case PlayWeakest:
		return Weakest(hand, vira)
	case PlayGood:
		if card, ok := firstInBand(hand, vira, classification.GoodMin, classification.GoodMax); ok {
			return card
		}
		return Strongest(hand, vira)
	case PlayFirst:
		return hand[0]
	default:
		return Strongest(hand, vira)
	}
}
