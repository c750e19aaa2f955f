package bot

import "github.com/lox/trucoforbots/internal/deck"

// Card searches over a hand. Every search is total on a non-empty hand and
// prefers the earliest card in hand order on ties. On an empty hand they
// return the zero Card; snapshot validation keeps that from reaching a policy.

// Strongest returns the card with the highest relative value.
func Strongest(hand []deck.Card, vira deck.Card) deck.Card {
	if len(hand) == 0 {
		return deck.Card{}
	}
	best := hand[0]
	for _, card := range hand[1:] {
		if card.CompareValueTo(best, vira) > 0 {
			best = card
		}
	}
	return best
}

// Weakest returns the card with the lowest relative value.
func Weakest(hand []deck.Card, vira deck.Card) deck.Card {
	if len(hand) == 0 {
		return deck.Card{}
	}
	worst := hand[0]
	for _, card := range hand[1:] {
		if card.CompareValueTo(worst, vira) < 0 {
			worst = card
		}
	}
	return worst
}

// WeakestWinner returns the cheapest card that beats opponent. When no card
// beats it, it falls back to Weakest.
func WeakestWinner(hand []deck.Card, opponent, vira deck.Card) deck.Card {
	var (
		winner deck.Card
		found  bool
	)
	for _, card := range hand {
		if card.CompareValueTo(opponent, vira) <= 0 {
			continue
		}
		if !found || card.CompareValueTo(winner, vira) < 0 {
			winner, found = card, true
		}
	}
	if !found {
		return Weakest(hand, vira)
	}
	return winner
}

// CanBeat reports whether any card in hand beats opponent.
func CanBeat(hand []deck.Card, opponent, vira deck.Card) bool {
	return Strongest(hand, vira).CompareValueTo(opponent, vira) > 0
}

// firstInBand returns the first card whose relative value lies in [lo, hi].
func firstInBand(hand []deck.Card, vira deck.Card, lo, hi int) (deck.Card, bool) {
	for _, card := range hand {
		if v := card.RelativeValue(vira); v >= lo && v <= hi {
			return card, true
		}
	}
	return deck.Card{}, false
}
