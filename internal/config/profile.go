package config

import (
	"fmt"
	"strconv"

	"github.com/lox/trucoforbots/internal/bot"
	"github.com/lox/trucoforbots/internal/classification"
)

// ProfileConfig defines a named policy. Blocks left out keep the defaults of
// the variant.
type ProfileConfig struct {
	Name     string          `hcl:"name,label"`
	Variant  string          `hcl:"variant"`
	Tiers    *TiersConfig    `hcl:"tiers,block"`
	Bands    []BandsConfig   `hcl:"bands,block"`
	Patterns *PatternsConfig `hcl:"patterns,block"`
	Lead     []LeadConfig    `hcl:"lead,block"`
}

// TiersConfig holds the thresholds of a tier profile.
type TiersConfig struct {
	OpeningMin *int              `hcl:"opening_min,optional"`
	RaiseMin   map[string]int    `hcl:"raise_min,optional"`
	ForceRaise []string          `hcl:"force_raise,optional"`
	Replies    map[string]string `hcl:"replies,optional"`
}

// BandsConfig replaces the band table of one stage.
type BandsConfig struct {
	Stage string       `hcl:"stage,label"`
	Bands []BandConfig `hcl:"band,block"`
}

// BandConfig is one power band.
type BandConfig struct {
	Tier int `hcl:"tier"`
	Min  int `hcl:"min"`
	Max  int `hcl:"max"`
}

// PatternsConfig holds the archetype sets of a pattern profile.
type PatternsConfig struct {
	Opening []string            `hcl:"opening,optional"`
	Raise   map[string][]string `hcl:"raise,optional"`
	ReRaise []string            `hcl:"re_raise,optional"`
	Accept  []string            `hcl:"accept,optional"`
}

// LeadConfig is one lead rule; blocks are tried in file order.
type LeadConfig struct {
	When string `hcl:"when,label"`
	Play string `hcl:"play"`
}

// Policy builds the policy the profile describes.
func (p ProfileConfig) Policy() (bot.Policy, error) {
	switch bot.Variant(p.Variant) {
	case bot.VariantTier:
		if p.Patterns != nil || len(p.Lead) > 0 {
			return nil, p.errorf("patterns and lead blocks only apply to pattern profiles")
		}
		rules, err := p.tierRules()
		if err != nil {
			return nil, err
		}
		policy, err := bot.NewTierPolicy(p.Name, rules)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
		}
		return policy, nil
	case bot.VariantPattern:
		if p.Tiers != nil || len(p.Bands) > 0 {
			return nil, p.errorf("tiers and bands blocks only apply to tier profiles")
		}
		rules, err := p.patternRules()
		if err != nil {
			return nil, err
		}
		policy, err := bot.NewPatternPolicy(p.Name, rules)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
		}
		return policy, nil
	default:
		return nil, p.errorf("unknown variant %q", p.Variant)
	}
}

func (p ProfileConfig) errorf(format string, args ...any) error {
	return fmt.Errorf("%w: profile %q: %s", ErrInvalidConfig, p.Name, fmt.Sprintf(format, args...))
}

func (p ProfileConfig) tierRules() (bot.TierRules, error) {
	rules := bot.DefaultTierRules()

	calibration := rules.Calibration
	calibration.Name = p.Name
	for _, b := range p.Bands {
		stage, err := classification.ParseStage(b.Stage)
		if err != nil {
			return rules, p.errorf("bands: %v", err)
		}
		table := make(classification.BandTable, len(b.Bands))
		for i, band := range b.Bands {
			table[i] = classification.Band{Tier: band.Tier, Min: band.Min, Max: band.Max}
		}
		if stage == classification.FirstRound {
			calibration.FirstRound = table
		} else {
			calibration.LaterRound = table
		}
	}
	rules.Calibration = calibration

	t := p.Tiers
	if t == nil {
		return rules, nil
	}
	if t.OpeningMin != nil {
		rules.OpeningMinTier = *t.OpeningMin
	}
	for name, tier := range t.RaiseMin {
		phase, err := bot.ParsePhase(name)
		if err != nil {
			return rules, p.errorf("raise_min: %v", err)
		}
		rules.RaiseMinTier[phase] = tier
	}
	if t.ForceRaise != nil {
		rules.ForceRaise = rules.ForceRaise[:0]
		for _, name := range t.ForceRaise {
			phase, err := bot.ParsePhase(name)
			if err != nil {
				return rules, p.errorf("force_raise: %v", err)
			}
			rules.ForceRaise = append(rules.ForceRaise, phase)
		}
	}
	if t.Replies != nil {
		rules.Replies = make(map[int]bot.RaiseReply, len(t.Replies))
		for key, name := range t.Replies {
			tier, err := strconv.Atoi(key)
			if err != nil {
				return rules, p.errorf("replies: tier %q is not a number", key)
			}
			reply, err := bot.ParseRaiseReply(name)
			if err != nil {
				return rules, p.errorf("replies: %v", err)
			}
			rules.Replies[tier] = reply
		}
	}
	return rules, nil
}

func (p ProfileConfig) patternRules() (bot.PatternRules, error) {
	rules := bot.DefaultPatternRules()

	if len(p.Lead) > 0 {
		rules.Lead = make([]bot.LeadRule, len(p.Lead))
		for i, l := range p.Lead {
			when, err := classification.ParseArchetype(l.When)
			if err != nil {
				return rules, p.errorf("lead: %v", err)
			}
			play, err := bot.ParsePlay(l.Play)
			if err != nil {
				return rules, p.errorf("lead %q: %v", l.When, err)
			}
			rules.Lead[i] = bot.LeadRule{When: when, Play: play}
		}
	}

	c := p.Patterns
	if c == nil {
		return rules, nil
	}

	var err error
	if c.Opening != nil {
		if rules.Opening, err = parseArchetypes(c.Opening); err != nil {
			return rules, p.errorf("opening: %v", err)
		}
	}
	for name, set := range c.Raise {
		phase, err := bot.ParsePhase(name)
		if err != nil {
			return rules, p.errorf("raise: %v", err)
		}
		if rules.Raise[phase], err = parseArchetypes(set); err != nil {
			return rules, p.errorf("raise %s: %v", name, err)
		}
	}
	if c.ReRaise != nil {
		if rules.ReRaise, err = parseArchetypes(c.ReRaise); err != nil {
			return rules, p.errorf("re_raise: %v", err)
		}
	}
	if c.Accept != nil {
		if rules.Accept, err = parseArchetypes(c.Accept); err != nil {
			return rules, p.errorf("accept: %v", err)
		}
	}
	return rules, nil
}

func parseArchetypes(names []string) ([]classification.Archetype, error) {
	out := make([]classification.Archetype, len(names))
	for i, name := range names {
		a, err := classification.ParseArchetype(name)
		if err != nil {
			return nil, err
		}
		out[i] = a
	}
	return out, nil
}
