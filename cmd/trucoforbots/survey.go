package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/lox/trucoforbots/internal/bot"
	"github.com/lox/trucoforbots/internal/classification"
	"github.com/lox/trucoforbots/internal/deck"
	"github.com/lox/trucoforbots/internal/survey"
)

// SurveyCmd deals random hands and tabulates each profile's answers
type SurveyCmd struct {
	Hands    int      `short:"n" help:"Hands to deal (overrides config)"`
	Workers  int      `short:"w" help:"Parallel workers (overrides config)"`
	Seed     *int64   `help:"RNG seed (overrides config)"`
	Vira     string   `help:"Fix the vira for every hand, e.g. 6h"`
	Profiles []string `short:"p" help:"Profiles to survey (default: all)"`
	Out      string   `short:"o" help:"Write the JSON report to this file"`
}

func (c *SurveyCmd) Run(g *Globals) error {
	cfg, logger, err := g.load()
	if err != nil {
		return err
	}
	registry, err := cfg.Registry()
	if err != nil {
		return err
	}

	opts := survey.Options{
		Hands:   cfg.Survey.Hands,
		Workers: cfg.Survey.Workers,
		Seed:    cfg.Survey.Seed,
	}
	if c.Hands != 0 {
		opts.Hands = c.Hands
	}
	if c.Workers != 0 {
		opts.Workers = c.Workers
	}
	if c.Seed != nil {
		opts.Seed = *c.Seed
	}
	viraCode := cfg.Survey.Vira
	if c.Vira != "" {
		viraCode = c.Vira
	}
	if viraCode != "" {
		vira, err := deck.ParseCard(viraCode)
		if err != nil {
			return fmt.Errorf("vira: %w", err)
		}
		opts.Vira = &vira
	}

	names := c.Profiles
	if len(names) == 0 {
		names = cfg.Survey.Include
	}
	policies := registry.Policies()
	if len(names) > 0 {
		policies = policies[:0]
		for _, name := range names {
			p, err := registry.Get(name)
			if err != nil {
				return err
			}
			policies = append(policies, p)
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	report, err := survey.Run(ctx, policies, opts, logger)
	if err != nil {
		return err
	}

	out := c.Out
	if out == "" {
		out = cfg.Survey.Output
	}
	if out != "" {
		if err := report.WriteJSON(out); err != nil {
			return fmt.Errorf("failed to write report: %w", err)
		}
		logger.Info("Wrote survey report", "file", out)
	}

	_, err = fmt.Fprintln(os.Stdout, renderSurvey(report))
	return err
}

func renderSurvey(r *survey.Report) string {
	var b strings.Builder

	title := fmt.Sprintf("Survey of %d hands (seed %d)", r.Hands, r.Seed)
	if r.Vira != "" {
		title += ", vira " + r.Vira
	}
	b.WriteString(headerStyle.Render(title))
	b.WriteString("\n")
	b.WriteString(dimStyle.Render(fmt.Sprintf("power mean %.1f, sd %.1f, p10 %.0f, median %.0f, p90 %.0f",
		r.Power.Mean, r.Power.StdDev, r.Power.P10, r.Power.Median, r.Power.P90)))
	b.WriteString("\n")

	profiles := newTable("Profile", "Variant", "Open", "Raise", "Decline", "Accept", "Re-raise", "Lead", "T1", "T2", "T3", "T4")
	for _, p := range r.Profiles {
		row := []string{
			p.Name,
			string(p.Variant),
			percent(p.OpeningAccept.Value),
			percent(p.RaiseRequest.Value),
			percent(p.Reply(bot.Decline)),
			percent(p.Reply(bot.Accept)),
			percent(p.Reply(bot.ReRaise)),
			fmt.Sprintf("%.2f", p.LeadValue.Mean),
		}
		for tier := classification.MinTier; tier <= classification.MaxTier; tier++ {
			if p.Tiers == nil {
				row = append(row, "-")
				continue
			}
			row = append(row, percent(p.Tiers[tier]))
		}
		profiles.Row(row...)
	}
	b.WriteString(profiles.Render())
	b.WriteString("\n")

	archetypes := newTable("Archetype", "Hands")
	for _, a := range classification.AllArchetypes() {
		archetypes.Row(a.String(), percent(r.Archetypes[a.String()]))
	}
	b.WriteString(archetypes.Render())
	return b.String()
}

func newTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(dimStyle).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return yesStyle.Padding(0, 1)
			}
			return lipgloss.NewStyle().Padding(0, 1)
		}).
		Headers(headers...)
}

func percent(v float64) string {
	return fmt.Sprintf("%.1f%%", v*100)
}
