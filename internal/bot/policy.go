package bot

import (
	"fmt"

	"github.com/lox/trucoforbots/internal/deck"
)

// RaiseReply is the answer to an opponent's raise.
type RaiseReply int

const (
	Decline RaiseReply = -1
	Accept  RaiseReply = 0
	ReRaise RaiseReply = 1
)

func (r RaiseReply) String() string {
	switch r {
	case Decline:
		return "decline"
	case Accept:
		return "accept"
	case ReRaise:
		return "re-raise"
	default:
		return "unknown"
	}
}

// ParseRaiseReply returns the reply with the given name.
func ParseRaiseReply(name string) (RaiseReply, error) {
	for _, r := range []RaiseReply{Decline, Accept, ReRaise} {
		if r.String() == name {
			return r, nil
		}
	}
	return 0, fmt.Errorf("unknown raise reply %q", name)
}

// Variant identifies how a policy classifies hands.
type Variant string

const (
	VariantTier    Variant = "tier"
	VariantPattern Variant = "pattern"
)

// Policy answers the four questions the host asks during a hand. Callers must
// pass snapshots that pass Validate. Implementations hold no mutable state and
// are safe for concurrent use.
type Policy interface {
	Name() string
	Variant() Variant
	// OpeningCallResponse decides whether to play a hand of eleven.
	OpeningCallResponse(s Snapshot) bool
	// RaiseRequest decides whether to ask for a raise.
	RaiseRequest(s Snapshot) bool
	// RaiseResponse answers an opponent's raise.
	RaiseResponse(s Snapshot) RaiseReply
	// ChooseCard picks a card from s.Hand.
	ChooseCard(s Snapshot) deck.Card
}

// opponentOnEleven is the shared opening-call rule: when the opponent is one
// hand from winning there is nothing left to protect.
func opponentOnEleven(s Snapshot) bool {
	return s.OpponentScore == ElevenPoints
}

// raiseBlocked reports whether asking for more is pointless or forbidden.
func raiseBlocked(s Snapshot) bool {
	return s.Score == ElevenPoints || s.OpponentScore == ElevenPoints || s.HandPoints >= MaxHandPoints
}

// holdsZapAndCopas reports whether the two strongest cards are both in hand.
func holdsZapAndCopas(s Snapshot) bool {
	return s.Tally().HasZapAndCopas()
}
