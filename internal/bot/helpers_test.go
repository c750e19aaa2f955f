package bot

import "github.com/lox/trucoforbots/internal/deck"

// hand builds a one-point snapshot under vira. Tests adjust the other fields.
func hand(cards, vira string, rounds ...RoundResult) Snapshot {
	return Snapshot{
		Hand:       deck.MustParseCards(cards),
		Vira:       deck.MustParseCard(vira),
		Rounds:     rounds,
		HandPoints: 1,
	}
}

func withOpponent(s Snapshot, card string) Snapshot {
	c := deck.MustParseCard(card)
	s.OpponentCard = &c
	return s
}

func withScore(s Snapshot, score, opponent, points int) Snapshot {
	s.Score, s.OpponentScore, s.HandPoints = score, opponent, points
	return s
}
