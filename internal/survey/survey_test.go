package survey

import (
	"context"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/lox/trucoforbots/internal/bot"
	"github.com/lox/trucoforbots/internal/deck"
	"github.com/lox/trucoforbots/internal/randutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func quietLogger() *log.Logger {
	return log.NewWithOptions(io.Discard, log.Options{})
}

func defaultPolicies() []bot.Policy {
	return bot.DefaultRegistry().Policies()
}

// cheater leads a card nobody holds.
type cheater struct{ bot.Policy }

func (cheater) ChooseCard(bot.Snapshot) deck.Card { return deck.HiddenCard }

func TestRunIsReproducible(t *testing.T) {
	t.Parallel()

	opts := Options{Hands: 3000, Workers: 3, Seed: 42}
	a, err := Run(context.Background(), defaultPolicies(), opts, quietLogger())
	require.NoError(t, err)
	b, err := Run(context.Background(), defaultPolicies(), opts, quietLogger())
	require.NoError(t, err)

	assert.Equal(t, a, b)

	opts.Seed = 43
	c, err := Run(context.Background(), defaultPolicies(), opts, quietLogger())
	require.NoError(t, err)
	assert.NotEqual(t, a.Power, c.Power)
}

func TestRunCounts(t *testing.T) {
	t.Parallel()

	report, err := Run(context.Background(), defaultPolicies(), Options{Hands: 1001, Workers: 4, Seed: 1}, quietLogger())
	require.NoError(t, err)

	assert.Equal(t, 1001, report.Hands)
	assert.Equal(t, 4, report.Workers)
	require.Len(t, report.Profiles, 2)
	assert.Equal(t, bot.PatternedProfile, report.Profiles[0].Name)
	assert.Equal(t, bot.TieredProfile, report.Profiles[1].Name)

	for _, p := range report.Profiles {
		t.Run(p.Name, func(t *testing.T) {
			total := 0.0
			for _, s := range p.Replies {
				total += s
			}
			assert.InDelta(t, 1, total, 1e-9)
			assert.GreaterOrEqual(t, p.OpeningAccept.Value, p.OpeningAccept.Low)
			assert.LessOrEqual(t, p.OpeningAccept.Value, p.OpeningAccept.High)
			assert.GreaterOrEqual(t, p.LeadValue.Mean, 1.0)
			assert.LessOrEqual(t, p.LeadValue.Mean, 13.0)
		})
	}

	tiered, ok := report.Profile(bot.TieredProfile)
	require.True(t, ok)
	require.Len(t, tiered.Tiers, 4)
	total := 0.0
	for _, s := range tiered.Tiers {
		total += s
	}
	assert.InDelta(t, 1, total, 1e-9)

	patterned, ok := report.Profile(bot.PatternedProfile)
	require.True(t, ok)
	assert.Empty(t, patterned.Tiers)

	_, ok = report.Profile("ghost")
	assert.False(t, ok)
}

func TestRunPowerStaysInRange(t *testing.T) {
	t.Parallel()

	report, err := Run(context.Background(), defaultPolicies(), Options{Hands: 2000, Workers: 2, Seed: 9}, quietLogger())
	require.NoError(t, err)

	// Three Fours at the bottom, Zap, Copas and Espadilha at the top.
	assert.GreaterOrEqual(t, report.Power.P10, 3.0)
	assert.LessOrEqual(t, report.Power.P90, 36.0)
	assert.Greater(t, report.Power.StdDev, 0.0)
	assert.Len(t, report.Archetypes, 10)
}

func TestRunFixedVira(t *testing.T) {
	t.Parallel()

	vira := deck.MustParseCard("6h")
	report, err := Run(context.Background(), defaultPolicies(), Options{Hands: 500, Workers: 2, Seed: 5, Vira: &vira}, quietLogger())
	require.NoError(t, err)
	assert.Equal(t, "6h", report.Vira)

	d := deck.NewDeck(randutil.New(5))
	for range 500 {
		s := deal(d, &vira)
		require.Len(t, s.Hand, 3)
		assert.NotContains(t, s.Hand, vira)
		assert.Equal(t, vira, s.Vira)
		require.NoError(t, s.Validate())
	}
}

func TestRunRejectsBadOptions(t *testing.T) {
	t.Parallel()

	hidden := deck.HiddenCard
	tests := []struct {
		name string
		opts Options
	}{
		{"no hands", Options{Workers: 1}},
		{"no workers", Options{Hands: 10}},
		{"hidden vira", Options{Hands: 10, Workers: 1, Vira: &hidden}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Run(context.Background(), defaultPolicies(), tt.opts, quietLogger())
			assert.ErrorIs(t, err, ErrInvalidOptions)
		})
	}

	_, err := Run(context.Background(), nil, Options{Hands: 10, Workers: 1}, quietLogger())
	assert.ErrorIs(t, err, ErrInvalidOptions)
}

func TestRunMoreWorkersThanHands(t *testing.T) {
	t.Parallel()

	report, err := Run(context.Background(), defaultPolicies(), Options{Hands: 3, Workers: 8}, quietLogger())
	require.NoError(t, err)
	assert.Equal(t, 3, report.Hands)
	assert.Equal(t, 3, report.Workers)
}

func TestRunCancelled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Run(ctx, defaultPolicies(), Options{Hands: 10000, Workers: 2}, quietLogger())
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRunRejectsIllegalCards(t *testing.T) {
	t.Parallel()

	tiered, err := bot.DefaultRegistry().Get(bot.TieredProfile)
	require.NoError(t, err)

	_, err = Run(context.Background(), []bot.Policy{cheater{tiered}}, Options{Hands: 10, Workers: 1}, quietLogger())
	assert.ErrorIs(t, err, bot.ErrIllegalCard)
}

func TestReportWriteJSON(t *testing.T) {
	t.Parallel()

	report, err := Run(context.Background(), defaultPolicies(), Options{Hands: 200, Workers: 2, Seed: 3}, quietLogger())
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "survey.json")
	require.NoError(t, report.WriteJSON(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var decoded Report
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, 200, decoded.Hands)
	assert.Equal(t, int64(3), decoded.Seed)
	require.Len(t, decoded.Profiles, 2)
	assert.Equal(t, report.Profiles[1].Tiers, decoded.Profiles[1].Tiers)
}
