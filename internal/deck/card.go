package deck

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidCard is returned for cards outside the 40-card domain.
var ErrInvalidCard = errors.New("invalid card")

// Suit represents a card suit. Suits are declared in trump order, weakest first.
type Suit int

const (
	Diamonds Suit = iota
	Spades
	Hearts
	Clubs
)

// String returns the string representation of a suit
func (s Suit) String() string {
	switch s {
	case Diamonds:
		return "♦"
	case Spades:
		return "♠"
	case Hearts:
		return "♥"
	case Clubs:
		return "♣"
	default:
		return "?"
	}
}

// IsRed returns true if the suit is red (Hearts or Diamonds)
func (s Suit) IsRed() bool {
	return s == Hearts || s == Diamonds
}

func (s Suit) valid() bool {
	return s >= Diamonds && s <= Clubs
}

// Rank represents a card rank. Ranks are declared in base order, weakest first.
type Rank int

const (
	// Hidden is the rank of a card played face down.
	Hidden Rank = iota
	Four
	Five
	Six
	Seven
	Queen
	Jack
	King
	Ace
	Two
	Three
)

const rankCount = 10

// String returns the string representation of a rank
func (r Rank) String() string {
	switch r {
	case Four:
		return "4"
	case Five:
		return "5"
	case Six:
		return "6"
	case Seven:
		return "7"
	case Queen:
		return "Q"
	case Jack:
		return "J"
	case King:
		return "K"
	case Ace:
		return "A"
	case Two:
		return "2"
	case Three:
		return "3"
	default:
		return "?"
	}
}

// Next returns the rank that follows r in the base order, wrapping Three to Four.
func (r Rank) Next() Rank {
	return r%rankCount + 1
}

// IsFigure returns true for Queen, Jack and King.
func (r Rank) IsFigure() bool {
	return r >= Queen && r <= King
}

func (r Rank) valid() bool {
	return r >= Four && r <= Three
}

// Card represents a playing card
type Card struct {
	Suit Suit
	Rank Rank
}

// HiddenCard is the placeholder for an opponent card played face down.
var HiddenCard = Card{Rank: Hidden}

// NewCard creates a new card
func NewCard(suit Suit, rank Rank) Card {
	return Card{Suit: suit, Rank: rank}
}

// String returns the string representation of a card (e.g., "7♣")
func (c Card) String() string {
	if c.IsHidden() {
		return "??"
	}
	return fmt.Sprintf("%s%s", c.Rank, c.Suit)
}

// IsHidden reports whether the card was played face down.
func (c Card) IsHidden() bool {
	return c.Rank == Hidden
}

// Validate reports an error unless c is one of the 40 cards of the deck.
func (c Card) Validate() error {
	if !c.Rank.valid() || !c.Suit.valid() {
		return fmt.Errorf("%w: rank=%d suit=%d", ErrInvalidCard, c.Rank, c.Suit)
	}
	return nil
}

// Code returns the two-character ASCII form used by ParseCard (e.g., "7c").
func (c Card) Code() string {
	if c.IsHidden() {
		return "??"
	}
	return c.Rank.String() + string(suitCodes[c.Suit])
}

// MarshalText encodes the card in its two-character form.
func (c Card) MarshalText() ([]byte, error) {
	if !c.IsHidden() {
		if err := c.Validate(); err != nil {
			return nil, err
		}
	}
	return []byte(c.Code()), nil
}

// UnmarshalText decodes the two-character form, including "??" for a hidden card.
func (c *Card) UnmarshalText(text []byte) error {
	parsed, err := ParseCard(string(text))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

const (
	rankCodes = "4567QJKA23"
	suitCodes = "dshc"
)

// ParseCard parses a two-character card such as "7c", "Qh" or "??".
func ParseCard(s string) (Card, error) {
	if s == "??" {
		return HiddenCard, nil
	}
	if len(s) != 2 {
		return Card{}, fmt.Errorf("%w: %q", ErrInvalidCard, s)
	}
	r := strings.IndexByte(rankCodes, strings.ToUpper(s[:1])[0])
	if r < 0 {
		return Card{}, fmt.Errorf("%w: unknown rank in %q", ErrInvalidCard, s)
	}
	su := strings.IndexByte(suitCodes, strings.ToLower(s[1:])[0])
	if su < 0 {
		return Card{}, fmt.Errorf("%w: unknown suit in %q", ErrInvalidCard, s)
	}
	return Card{Suit: Suit(su), Rank: Rank(r + 1)}, nil
}

// ParseCards parses a concatenated list of two-character cards (e.g., "7c7h4d").
func ParseCards(s string) ([]Card, error) {
	if len(s)%2 != 0 {
		return nil, fmt.Errorf("%w: odd length card string %q", ErrInvalidCard, s)
	}
	cards := make([]Card, 0, len(s)/2)
	for i := 0; i < len(s); i += 2 {
		card, err := ParseCard(s[i : i+2])
		if err != nil {
			return nil, err
		}
		cards = append(cards, card)
	}
	return cards, nil
}

// MustParseCards is like ParseCards but panics on error. Intended for tests.
func MustParseCards(s string) []Card {
	cards, err := ParseCards(s)
	if err != nil {
		panic(err)
	}
	return cards
}

// MustParseCard is like ParseCard but panics on error.
func MustParseCard(s string) Card {
	card, err := ParseCard(s)
	if err != nil {
		panic(err)
	}
	return card
}

// AllCards returns the 40 cards of the deck, suit by suit.
func AllCards() []Card {
	cards := make([]Card, 0, 40)
	for suit := Diamonds; suit <= Clubs; suit++ {
		for rank := Four; rank <= Three; rank++ {
			cards = append(cards, NewCard(suit, rank))
		}
	}
	return cards
}
