package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/lox/trucoforbots/internal/bot"
)

// ProfilesCmd lists registered profiles
type ProfilesCmd struct{}

func (c *ProfilesCmd) Run(g *Globals) error {
	cfg, _, err := g.load()
	if err != nil {
		return err
	}
	registry, err := cfg.Registry()
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(os.Stdout, renderProfiles(registry.Policies(), cfg.Server.DefaultProfile))
	return err
}

func renderProfiles(policies []bot.Policy, defaultProfile string) string {
	t := newTable("Profile", "Variant", "Summary")
	for _, p := range policies {
		name := p.Name()
		if name == defaultProfile {
			name += " *"
		}
		t.Row(name, string(p.Variant()), summarise(p))
	}
	return t.Render()
}

// summarise describes the thresholds of a policy in one line.
func summarise(p bot.Policy) string {
	switch p := p.(type) {
	case *bot.TierPolicy:
		r := p.Rules()
		return fmt.Sprintf("%s bands, opening tier %d, raise %d/%d/%d/%d",
			r.Calibration.Name, r.OpeningMinTier,
			r.RaiseMinTier[bot.NotStarted], r.RaiseMinTier[bot.AfterWon], r.RaiseMinTier[bot.AfterLost], r.RaiseMinTier[bot.AfterDrew])
	case *bot.PatternPolicy:
		r := p.Rules()
		names := make([]string, len(r.Opening))
		for i, a := range r.Opening {
			names[i] = a.String()
		}
		return "opening " + strings.Join(names, ", ")
	}
	return ""
}
