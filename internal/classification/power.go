// Package classification turns a truco hand into comparable strength signals:
// numeric power tiers calibrated per stage of the hand, and named archetypes
// detected from a single tally of the cards.
package classification

import (
	"errors"
	"fmt"

	"github.com/lox/trucoforbots/internal/deck"
)

// ErrInvalidBands is returned when a band table does not partition its range.
var ErrInvalidBands = errors.New("invalid band table")

// Stage selects which band table applies. Fewer cards are held after the first
// round, so the achievable power range shrinks.
type Stage int

const (
	FirstRound Stage = iota
	LaterRound
)

func (s Stage) String() string {
	switch s {
	case FirstRound:
		return "first_round"
	case LaterRound:
		return "later_round"
	default:
		return "unknown"
	}
}

// ParseStage parses the names produced by Stage.String.
func ParseStage(name string) (Stage, error) {
	switch name {
	case "first_round":
		return FirstRound, nil
	case "later_round":
		return LaterRound, nil
	default:
		return 0, fmt.Errorf("unknown stage %q", name)
	}
}

// Tier bounds. Tier 4 is the strongest.
const (
	MinTier = 1
	MaxTier = 4
)

// Power ranges each band table must cover: three cards before the first round
// resolves, two afterwards.
var stageRanges = map[Stage][2]int{
	FirstRound: {3, 39},
	LaterRound: {2, 26},
}

// StageRange returns the power range a band table for stage must cover.
func StageRange(stage Stage) (floor, ceiling int) {
	r := stageRanges[stage]
	return r[0], r[1]
}

// HandPower sums the relative value of every card still held.
func HandPower(hand []deck.Card, vira deck.Card) int {
	power := 0
	for _, card := range hand {
		power += card.RelativeValue(vira)
	}
	return power
}

// Band maps the inclusive power range [Min, Max] to a tier.
type Band struct {
	Tier int
	Min  int
	Max  int
}

// BandTable is an ascending list of contiguous bands for one stage.
type BandTable []Band

// Validate checks that the bands are ascending, contiguous, non-overlapping,
// carry strictly increasing tiers within [MinTier, MaxTier] and cover [floor, ceiling].
func (t BandTable) Validate(floor, ceiling int) error {
	if len(t) == 0 {
		return fmt.Errorf("%w: no bands", ErrInvalidBands)
	}
	if t[0].Min > floor {
		return fmt.Errorf("%w: first band starts at %d, want <= %d", ErrInvalidBands, t[0].Min, floor)
	}
	if last := t[len(t)-1]; last.Max < ceiling {
		return fmt.Errorf("%w: last band ends at %d, want >= %d", ErrInvalidBands, last.Max, ceiling)
	}
	for i, b := range t {
		if b.Tier < MinTier || b.Tier > MaxTier {
			return fmt.Errorf("%w: band %d has tier %d", ErrInvalidBands, i, b.Tier)
		}
		if b.Min > b.Max {
			return fmt.Errorf("%w: band %d is empty (%d..%d)", ErrInvalidBands, i, b.Min, b.Max)
		}
		if i == 0 {
			continue
		}
		prev := t[i-1]
		switch {
		case b.Min <= prev.Max:
			return fmt.Errorf("%w: bands %d and %d overlap at %d", ErrInvalidBands, i-1, i, b.Min)
		case b.Min > prev.Max+1:
			return fmt.Errorf("%w: gap %d..%d between bands %d and %d", ErrInvalidBands, prev.Max+1, b.Min-1, i-1, i)
		case b.Tier <= prev.Tier:
			return fmt.Errorf("%w: tiers must ascend, band %d has %d after %d", ErrInvalidBands, i, b.Tier, prev.Tier)
		}
	}
	return nil
}

// Tier returns the tier of the band containing power. Powers below the table
// fall into the lowest band and powers above it into the highest.
func (t BandTable) Tier(power int) int {
	if len(t) == 0 {
		return MinTier
	}
	for _, b := range t {
		if power <= b.Max {
			return b.Tier
		}
	}
	return t[len(t)-1].Tier
}

// Calibration holds one band table per stage.
type Calibration struct {
	Name       string
	FirstRound BandTable
	LaterRound BandTable
}

// DefaultCalibration is the cut-point set the tier policy ships with.
var DefaultCalibration = Calibration{
	Name: "default",
	FirstRound: BandTable{
		{Tier: 1, Min: 3, Max: 12},
		{Tier: 2, Min: 13, Max: 19},
		{Tier: 3, Min: 20, Max: 27},
		{Tier: 4, Min: 28, Max: 39},
	},
	LaterRound: BandTable{
		{Tier: 1, Min: 2, Max: 10},
		{Tier: 2, Min: 11, Max: 15},
		{Tier: 3, Min: 16, Max: 20},
		{Tier: 4, Min: 21, Max: 26},
	},
}

// Validate checks both band tables against the power range of their stage.
func (c Calibration) Validate() error {
	for _, stage := range []Stage{FirstRound, LaterRound} {
		r := stageRanges[stage]
		if err := c.Table(stage).Validate(r[0], r[1]); err != nil {
			return fmt.Errorf("calibration %q %s: %w", c.Name, stage, err)
		}
	}
	return nil
}

// Table returns the band table for stage.
func (c Calibration) Table(stage Stage) BandTable {
	if stage == FirstRound {
		return c.FirstRound
	}
	return c.LaterRound
}

// PowerRank returns the tier of hand for the given stage.
func (c Calibration) PowerRank(hand []deck.Card, vira deck.Card, stage Stage) int {
	return c.Table(stage).Tier(HandPower(hand, vira))
}
