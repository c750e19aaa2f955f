package deck

// Relative values of the four trumps. Every non-trump scores between 1 and 9.
const (
	DiamondsTrumpValue = 10
	SpadesTrumpValue   = 11
	CopasValue         = 12
	ZapValue           = 13
)

// ManilhaRank returns the trump rank selected by the vira.
func ManilhaRank(vira Card) Rank {
	return vira.Rank.Next()
}

// IsManilha reports whether c is one of the four trumps for this vira.
func (c Card) IsManilha(vira Card) bool {
	return !c.IsHidden() && c.Rank == ManilhaRank(vira)
}

// IsZap reports whether c is the trump of Clubs, the strongest card of the hand.
func (c Card) IsZap(vira Card) bool {
	return c.IsManilha(vira) && c.Suit == Clubs
}

// IsCopas reports whether c is the trump of Hearts.
func (c Card) IsCopas(vira Card) bool {
	return c.IsManilha(vira) && c.Suit == Hearts
}

// RelativeValue returns the power of c under vira, in [1, 13].
// The trump rank is lifted out of the base order, so ranks above it drop one
// place and non-trumps stay within 1..9. A hidden card is worth 0.
func (c Card) RelativeValue(vira Card) int {
	if c.IsHidden() {
		return 0
	}
	if c.IsManilha(vira) {
		return DiamondsTrumpValue + int(c.Suit)
	}
	if c.Rank > ManilhaRank(vira) {
		return int(c.Rank) - 1
	}
	return int(c.Rank)
}

// CompareValueTo returns -1, 0 or 1 as c is weaker than, as strong as, or
// stronger than other. Only non-trumps of equal rank compare equal.
func (c Card) CompareValueTo(other, vira Card) int {
	a, b := c.RelativeValue(vira), other.RelativeValue(vira)
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}
