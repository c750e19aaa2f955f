// Package survey deals random hands and measures how each profile answers
// them. It is the calibration tool for band tables and archetype sets.
package survey

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/charmbracelet/log"
	"github.com/lox/trucoforbots/internal/bot"
	"github.com/lox/trucoforbots/internal/classification"
	"github.com/lox/trucoforbots/internal/deck"
	"github.com/lox/trucoforbots/internal/randutil"
	"github.com/lox/trucoforbots/internal/statistics"
	"golang.org/x/sync/errgroup"
)

// ErrInvalidOptions is returned before any hand is dealt.
var ErrInvalidOptions = errors.New("invalid survey options")

// How often a worker checks for cancellation.
const checkEvery = 256

// Options controls a survey run.
type Options struct {
	Hands   int
	Workers int
	Seed    int64
	// Vira fixes the trump indicator for every hand. Nil deals it randomly.
	Vira *deck.Card
}

// Validate checks the options
func (o Options) Validate() error {
	if o.Hands < 1 {
		return fmt.Errorf("%w: hands must be positive, got %d", ErrInvalidOptions, o.Hands)
	}
	if o.Workers < 1 {
		return fmt.Errorf("%w: workers must be positive, got %d", ErrInvalidOptions, o.Workers)
	}
	if o.Vira != nil {
		if err := o.Vira.Validate(); err != nil {
			return fmt.Errorf("%w: vira: %w", ErrInvalidOptions, err)
		}
	}
	return nil
}

// tally is what one worker accumulates for one profile.
type tally struct {
	opening   statistics.Rate
	raise     statistics.Rate
	replies   statistics.Histogram
	leadValue statistics.Sample
	tiers     statistics.Histogram
}

func newTally() *tally {
	return &tally{replies: statistics.Histogram{}, tiers: statistics.Histogram{}}
}

func (t *tally) merge(other *tally) {
	t.opening.Merge(other.opening)
	t.raise.Merge(other.raise)
	t.replies.Merge(other.replies)
	t.leadValue.Merge(&other.leadValue)
	t.tiers.Merge(other.tiers)
}

// workerResult holds everything one worker saw.
type workerResult struct {
	hands      int
	archetypes statistics.Histogram
	power      statistics.Sample
	profiles   []*tally
}

func newWorkerResult(profiles int) *workerResult {
	r := &workerResult{archetypes: statistics.Histogram{}, profiles: make([]*tally, profiles)}
	for i := range r.profiles {
		r.profiles[i] = newTally()
	}
	return r
}

// Run deals opts.Hands first-round hands across opts.Workers and asks every
// policy all four questions about each. Results are reproducible for a given
// seed and worker count.
func Run(ctx context.Context, policies []bot.Policy, opts Options, logger *log.Logger) (*Report, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	if len(policies) == 0 {
		return nil, fmt.Errorf("%w: no profiles to survey", ErrInvalidOptions)
	}
	logger = logger.WithPrefix("survey")

	workers := min(opts.Workers, opts.Hands)
	perWorker, remainder := opts.Hands/workers, opts.Hands%workers
	results := make([]*workerResult, workers)

	logger.Info("Starting survey", "hands", opts.Hands, "workers", workers, "seed", opts.Seed, "profiles", len(policies))

	g, ctx := errgroup.WithContext(ctx)
	for w := range workers {
		hands := perWorker
		if w < remainder {
			hands++
		}
		g.Go(func() error {
			res, err := runWorker(ctx, w, hands, policies, opts)
			if err != nil {
				return err
			}
			results[w] = res
			logger.Debug("Worker finished", "worker", w, "hands", res.hands)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	total := newWorkerResult(len(policies))
	for _, res := range results {
		total.hands += res.hands
		total.archetypes.Merge(res.archetypes)
		total.power.Merge(&res.power)
		for i, t := range res.profiles {
			total.profiles[i].merge(t)
		}
	}

	report := buildReport(total, policies, opts, workers)
	logger.Info("Survey complete", "hands", report.Hands)
	return report, nil
}

func runWorker(ctx context.Context, worker, hands int, policies []bot.Policy, opts Options) (*workerResult, error) {
	rng := randutil.ForWorker(opts.Seed, worker)
	d := deck.NewDeck(rng)
	res := newWorkerResult(len(policies))

	for i := range hands {
		if i%checkEvery == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}

		s := deal(d, opts.Vira)
		if err := s.Validate(); err != nil {
			return nil, fmt.Errorf("worker %d dealt an invalid hand: %w", worker, err)
		}
		res.hands++
		res.power.Add(float64(classification.HandPower(s.Hand, s.Vira)))
		for _, a := range s.Tally().Archetypes() {
			res.archetypes.Add(int(a))
		}

		for p, policy := range policies {
			t := res.profiles[p]
			t.opening.Observe(policy.OpeningCallResponse(s))
			t.raise.Observe(policy.RaiseRequest(s))
			t.replies.Add(int(policy.RaiseResponse(s)))
			card := policy.ChooseCard(s)
			if !slices.Contains(s.Hand, card) {
				return nil, fmt.Errorf("%w: %s chose %v from %v", bot.ErrIllegalCard, policy.Name(), card, s.Hand)
			}
			t.leadValue.Add(float64(card.RelativeValue(s.Vira)))
			if tp, ok := policy.(*bot.TierPolicy); ok {
				t.tiers.Add(tp.Tier(s))
			}
		}
	}
	return res, nil
}

// deal reshuffles and deals a vira and three cards.
func deal(d *deck.Deck, fixed *deck.Card) bot.Snapshot {
	d.Reset()
	s := bot.Snapshot{HandPoints: 1}
	if fixed != nil {
		s.Vira = *fixed
	} else {
		s.Vira, _ = d.Deal()
	}
	for len(s.Hand) < bot.HandSize {
		card, ok := d.Deal()
		if !ok {
			break
		}
		if card != s.Vira {
			s.Hand = append(s.Hand, card)
		}
	}
	return s
}
