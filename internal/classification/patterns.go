package classification

import (
	"fmt"

	"github.com/lox/trucoforbots/internal/deck"
)

// Value bands used by the archetypes.
const (
	FigureMin = 4
	FigureMax = 6
	GoodMin   = 7
	GoodMax   = 9
)

// Tally counts a hand once: how many cards hold each relative value, and which
// trump suits are present. All archetype predicates read the same tally.
type Tally struct {
	cards   int
	byValue [deck.ZapValue + 1]int
	trumps  [4]bool
}

// NewTally builds the tally of hand in a single pass.
func NewTally(hand []deck.Card, vira deck.Card) Tally {
	var t Tally
	for _, card := range hand {
		t.cards++
		v := card.RelativeValue(vira)
		if v < 0 || v > deck.ZapValue {
			continue
		}
		t.byValue[v]++
		if card.IsManilha(vira) {
			t.trumps[card.Suit] = true
		}
	}
	return t
}

// Cards returns the number of cards tallied.
func (t Tally) Cards() int { return t.cards }

// Count returns how many cards have a relative value within [lo, hi].
func (t Tally) Count(lo, hi int) int {
	if lo < 0 {
		lo = 0
	}
	if hi > deck.ZapValue {
		hi = deck.ZapValue
	}
	n := 0
	for v := lo; v <= hi; v++ {
		n += t.byValue[v]
	}
	return n
}

// Trumps returns the number of trumps held.
func (t Tally) Trumps() int {
	return t.Count(deck.DiamondsTrumpValue, deck.ZapValue)
}

// TopTrumps counts Zap and Copas.
func (t Tally) TopTrumps() int {
	return t.Count(deck.CopasValue, deck.ZapValue)
}

// LowTrumps counts the Diamonds and Spades trumps.
func (t Tally) LowTrumps() int {
	return t.Count(deck.DiamondsTrumpValue, deck.SpadesTrumpValue)
}

// Good counts non-trumps in the good band (Ace, Two and Three in most hands).
func (t Tally) Good() int { return t.Count(GoodMin, GoodMax) }

// Figures counts non-trumps in the figure band.
func (t Tally) Figures() int { return t.Count(FigureMin, FigureMax) }

// HasTrump reports whether the trump of suit is held.
func (t Tally) HasTrump(suit deck.Suit) bool {
	return suit >= deck.Diamonds && suit <= deck.Clubs && t.trumps[suit]
}

// HasZapAndCopas reports whether both of the two strongest cards are held.
func (t Tally) HasZapAndCopas() bool {
	return t.trumps[deck.Clubs] && t.trumps[deck.Hearts]
}

// Archetype names a recognisable hand shape.
type Archetype int

const (
	Giga Archetype = iota
	TopTrumpFigure
	LowTrumpFigure
	TopTrumpGood
	LowTrumpGood
	MediumOneGood
	TwoGoodNoTrump
	WeakWithTrump
	Trash
	MediumNoGood
	archetypeCount
)

var archetypeNames = [archetypeCount]string{
	Giga:           "giga",
	TopTrumpFigure: "top-trump-figure",
	LowTrumpFigure: "low-trump-figure",
	TopTrumpGood:   "top-trump-good",
	LowTrumpGood:   "low-trump-good",
	MediumOneGood:  "medium-one-good",
	TwoGoodNoTrump: "two-good-no-trump",
	WeakWithTrump:  "weak-with-trump",
	Trash:          "trash",
	MediumNoGood:   "medium-no-good",
}

func (a Archetype) String() string {
	if a < 0 || a >= archetypeCount {
		return "unknown"
	}
	return archetypeNames[a]
}

// ParseArchetype returns the archetype with the given name.
func ParseArchetype(name string) (Archetype, error) {
	for a, n := range archetypeNames {
		if n == name {
			return Archetype(a), nil
		}
	}
	return 0, fmt.Errorf("unknown archetype %q", name)
}

// AllArchetypes returns every archetype in declaration order.
func AllArchetypes() []Archetype {
	all := make([]Archetype, archetypeCount)
	for i := range all {
		all[i] = Archetype(i)
	}
	return all
}

// Matches reports whether the tallied hand has the shape a.
func (t Tally) Matches(a Archetype) bool {
	switch a {
	case Giga:
		return t.Trumps() >= 2
	case TopTrumpFigure:
		return t.TopTrumps() == 1 && t.Figures() == 1
	case LowTrumpFigure:
		return t.LowTrumps() == 1 && t.Figures() == 1
	case TopTrumpGood:
		return t.TopTrumps() == 1 && t.Good() >= 1
	case LowTrumpGood:
		return t.LowTrumps() == 1 && t.Good() >= 1
	case MediumOneGood:
		return t.Count(0, FigureMin-1) == 0 && t.Count(GoodMin+1, deck.ZapValue) == 1
	case TwoGoodNoTrump:
		return t.Good() >= 2 && t.Trumps() == 0
	case WeakWithTrump:
		return t.Trumps() == 1 && t.Good() == 0
	case Trash:
		return t.Count(FigureMax, deck.ZapValue) == 0
	case MediumNoGood:
		return t.Count(0, FigureMin-1) == 0 && t.Count(GoodMin+1, deck.ZapValue) == 0
	default:
		return false
	}
}

// MatchesAny reports whether the hand has any of the given shapes.
func (t Tally) MatchesAny(set []Archetype) bool {
	for _, a := range set {
		if t.Matches(a) {
			return true
		}
	}
	return false
}

// Archetypes returns every shape the hand matches, in declaration order.
func (t Tally) Archetypes() []Archetype {
	var matched []Archetype
	for a := Archetype(0); a < archetypeCount; a++ {
		if t.Matches(a) {
			matched = append(matched, a)
		}
	}
	return matched
}

// Detect tallies hand and returns every archetype it matches.
func Detect(hand []deck.Card, vira deck.Card) []Archetype {
	return NewTally(hand, vira).Archetypes()
}
