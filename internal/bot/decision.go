package bot

import (
	"errors"
	"fmt"

	"github.com/lox/trucoforbots/internal/deck"
)

// ErrUnknownKind is returned for a decision kind the bot does not answer.
var ErrUnknownKind = errors.New("unknown decision kind")

// Kind names one of the four questions a host asks.
type Kind string

const (
	KindOpeningCall   Kind = "opening_call"
	KindRaiseRequest  Kind = "raise_request"
	KindRaiseResponse Kind = "raise_response"
	KindChooseCard    Kind = "choose_card"
)

// Kinds lists every decision kind in the order a hand asks them.
func Kinds() []Kind {
	return []Kind{KindOpeningCall, KindRaiseRequest, KindRaiseResponse, KindChooseCard}
}

// ParseKind validates a kind received over the wire.
func ParseKind(name string) (Kind, error) {
	for _, k := range Kinds() {
		if string(k) == name {
			return k, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownKind, name)
}

// Decision is the answer to one question. Exactly one of Accept, Reply and
// Card is set, according to Kind.
type Decision struct {
	Profile   string      `json:"profile"`
	Kind      Kind        `json:"kind"`
	Accept    *bool       `json:"accept,omitempty"`
	Reply     *RaiseReply `json:"reply,omitempty"`
	Card      *deck.Card  `json:"card,omitempty"`
	Reasoning string      `json:"reasoning,omitempty"`
}

// Value returns the answer as a display string.
func (d Decision) Value() string {
	switch {
	case d.Accept != nil:
		if *d.Accept {
			return "yes"
		}
		return "no"
	case d.Reply != nil:
		return d.Reply.String()
	case d.Card != nil:
		return d.Card.String()
	default:
		return ""
	}
}

// Decide answers the question named by kind.
func (b *Bot) Decide(kind Kind, s Snapshot) (Decision, error) {
	d := Decision{Profile: b.policy.Name(), Kind: kind}

	switch kind {
	case KindOpeningCall:
		accept, err := b.OpeningCallResponse(s)
		if err != nil {
			return Decision{}, err
		}
		d.Accept = &accept
	case KindRaiseRequest:
		raise, err := b.RaiseRequest(s)
		if err != nil {
			return Decision{}, err
		}
		d.Accept = &raise
	case KindRaiseResponse:
		reply, err := b.RaiseResponse(s)
		if err != nil {
			return Decision{}, err
		}
		d.Reply = &reply
	case KindChooseCard:
		card, err := b.ChooseCard(s)
		if err != nil {
			return Decision{}, err
		}
		d.Card = &card
	default:
		return Decision{}, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}

	d.Reasoning = b.think(s).GetThoughts()
	return d, nil
}

// DecideAll answers every kind for the same snapshot.
func (b *Bot) DecideAll(s Snapshot) ([]Decision, error) {
	decisions := make([]Decision, 0, len(Kinds()))
	for _, kind := range Kinds() {
		d, err := b.Decide(kind, s)
		if err != nil {
			return nil, err
		}
		decisions = append(decisions, d)
	}
	return decisions, nil
}
