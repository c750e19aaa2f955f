package bot

import (
	"testing"

	"github.com/lox/trucoforbots/internal/classification"
	"github.com/lox/trucoforbots/internal/deck"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTier(t *testing.T) *TierPolicy {
	t.Helper()
	p, err := NewTierPolicy(TieredProfile, DefaultTierRules())
	require.NoError(t, err)
	return p
}

func TestTierOpeningCall(t *testing.T) {
	t.Parallel()
	p := newTier(t)

	// 7c + 7h + 4d under a Six of Hearts: 13 + 12 + 1 = 26, first-round tier 3.
	strong := hand("7c7h4d", "6h")
	assert.Equal(t, 3, p.Tier(strong))
	assert.True(t, p.OpeningCallResponse(strong))

	weak := hand("4d5s6c", "6h")
	assert.Equal(t, 1, p.Tier(weak))
	assert.False(t, p.OpeningCallResponse(weak))

	// Nothing to protect when the opponent is on eleven.
	assert.True(t, p.OpeningCallResponse(withScore(weak, 4, 11, 1)))
}

func TestTierRaiseRequest(t *testing.T) {
	t.Parallel()
	p := newTier(t)

	tests := []struct {
		name string
		s    Snapshot
		want bool
	}{
		{"first round tier 3", hand("7c7h4d", "6h"), true},
		{"first round tier 1", hand("4d5s6c", "6h"), false},
		{"own score on eleven", withScore(hand("7c7h4d", "6h"), 11, 0, 1), false},
		{"opponent on eleven", withScore(hand("7c7h4d", "6h"), 0, 11, 1), false},
		{"hand already at twelve", withScore(hand("7c7h4d", "6h"), 0, 0, 12), false},
		// 3s + 2d = 17, later-round tier 3, short of the tier 4 needed after a win.
		{"won with tier 3", hand("3s2d", "6h", Won), false},
		{"won with tier 4", hand("7c3s", "6h", Won), true},
		{"drew with tier 3", hand("3s2d", "6h", Drew), false},
		{"lost with tier 3", hand("3s2d", "6h", Lost), true},
		{"lost with tier 1", hand("Ad4d", "6h", Lost), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, p.RaiseRequest(tt.s))
		})
	}
}

func TestTierForcedRaise(t *testing.T) {
	t.Parallel()

	rules := DefaultTierRules()
	rules.RaiseMinTier[AfterLost] = NeverTier
	p, err := NewTierPolicy("forced", rules)
	require.NoError(t, err)

	assert.True(t, p.RaiseRequest(hand("7c7h", "6h", Lost)))
	assert.False(t, p.RaiseRequest(hand("7c3s", "6h", Lost)))
	// Forcing only applies to the phases it names.
	rules.RaiseMinTier[AfterDrew] = NeverTier
	p, err = NewTierPolicy("forced", rules)
	require.NoError(t, err)
	assert.False(t, p.RaiseRequest(hand("7c7h", "6h", Drew)))
}

func TestTierRaiseResponse(t *testing.T) {
	t.Parallel()
	p := newTier(t)

	tests := []struct {
		name string
		s    Snapshot
		want RaiseReply
	}{
		// 13 + 9 + 8 = 30
		{"first round tier 4", hand("7c3s2d", "6h"), ReRaise},
		// 10 + 9 + 8 = 27
		{"first round tier 3", hand("7d3s2d", "6h"), Accept},
		{"first round tier 1", hand("4d5s6c", "6h"), Decline},
		{"won with tier 4", hand("7c3s", "6h", Won), ReRaise},
		{"won with tier 3", hand("3s2d", "6h", Won), Accept},
		{"won with tier 1", hand("Ad4d", "6h", Won), Decline},
		{"drew declines", hand("7c3s", "6h", Drew), Decline},
		// Copas plus a Four, after losing the first round.
		{"lost declines", hand("7h4d", "6h", Lost), Decline},
		{"zap and copas accept after a win", hand("7c7h4d", "6h", Won), Accept},
		{"zap and copas accept after a loss", hand("7c7h", "6h", Lost), Accept},
		{"zap and copas accept in the first round", hand("7c7h3s", "6h"), Accept},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, p.RaiseResponse(tt.s))
		})
	}
}

func TestTierChooseCard(t *testing.T) {
	t.Parallel()
	p := newTier(t)

	tests := []struct {
		name string
		s    Snapshot
		want string
	}{
		{"bait with zap and copas", hand("7c7h4d", "6h"), "4d"},
		{"bait even when the opponent played", withOpponent(hand("7h3s7c", "6h"), "2s"), "3s"},
		{"weakest winner", withOpponent(hand("7d3sQc", "6h"), "2s"), "3s"},
		{"weakest when nothing wins", withOpponent(hand("3s2dKh", "6h"), "7c"), "Kh"},
		{"lead strongest", hand("Qd3s7d", "6h"), "7d"},
		{"hidden card after a round", withOpponent(hand("3s7c", "6h", Won), "??"), "3s"},
		{"zap after a round", withOpponent(hand("3s7h", "6h", Lost), "7c"), "3s"},
		{"strongest after a draw", hand("Qd3s", "6h", Drew), "3s"},
		{"strongest after a loss", withOpponent(hand("Qd3s", "6h", Lost), "Ad"), "3s"},
		{"hold the zap after a win", hand("7c4d", "6h", Won), "4d"},
		{"first card after a win", hand("Qd3s", "6h", Won), "Qd"},
		{"first card in the last round", hand("7c", "6h", Won, Lost), "7c"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := p.ChooseCard(tt.s)
			assert.Equal(t, deck.MustParseCard(tt.want), got)
			assert.Contains(t, tt.s.Hand, got)
		})
	}
}

func TestTierRulesValidate(t *testing.T) {
	t.Parallel()

	require.NoError(t, DefaultTierRules().Validate())

	tests := []struct {
		name   string
		mutate func(*TierRules)
	}{
		{"opening tier zero", func(r *TierRules) { r.OpeningMinTier = 0 }},
		{"missing phase", func(r *TierRules) { delete(r.RaiseMinTier, AfterDrew) }},
		{"raise tier too high", func(r *TierRules) { r.RaiseMinTier[AfterWon] = NeverTier + 1 }},
		{"force before any round", func(r *TierRules) { r.ForceRaise = []Phase{NotStarted} }},
		{"reply for tier five", func(r *TierRules) { r.Replies[5] = Accept }},
		{"reply out of range", func(r *TierRules) { r.Replies[4] = RaiseReply(3) }},
		{"gapped bands", func(r *TierRules) {
			r.Calibration.FirstRound = classification.BandTable{
				{Tier: 1, Min: 3, Max: 12},
				{Tier: 4, Min: 14, Max: 39},
			}
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rules := DefaultTierRules()
			tt.mutate(&rules)
			_, err := NewTierPolicy("broken", rules)
			assert.Error(t, err)
		})
	}
}

func TestTierPolicyOwnsItsRules(t *testing.T) {
	t.Parallel()

	rules := DefaultTierRules()
	p, err := NewTierPolicy("owned", rules)
	require.NoError(t, err)

	rules.RaiseMinTier[NotStarted] = NeverTier
	assert.True(t, p.RaiseRequest(hand("7c7h4d", "6h")))
}
