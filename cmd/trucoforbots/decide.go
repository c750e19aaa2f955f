package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/lox/trucoforbots/internal/bot"
	"github.com/lox/trucoforbots/internal/classification"
)

// DecideCmd answers one snapshot with one profile
type DecideCmd struct {
	File    string `arg:"" optional:"" default:"-" help:"Snapshot JSON file, - for stdin"`
	Profile string `short:"p" help:"Profile to ask (default: the configured default profile)"`
	Kind    string `short:"k" help:"Ask a single question (opening_call, raise_request, raise_response, choose_card) instead of all four"`
	JSON    bool   `help:"Print decisions as JSON"`
}

func (c *DecideCmd) Run(g *Globals) error {
	cfg, logger, err := g.load()
	if err != nil {
		return err
	}
	registry, err := cfg.Registry()
	if err != nil {
		return err
	}

	name := c.Profile
	if name == "" {
		name = cfg.Server.DefaultProfile
	}
	policy, err := registry.Get(name)
	if err != nil {
		return err
	}

	s, err := c.readSnapshot()
	if err != nil {
		return err
	}

	b := bot.New(policy, logger)
	var decisions []bot.Decision
	if c.Kind == "" {
		decisions, err = b.DecideAll(s)
	} else {
		var kind bot.Kind
		kind, err = bot.ParseKind(c.Kind)
		if err == nil {
			var d bot.Decision
			d, err = b.Decide(kind, s)
			decisions = []bot.Decision{d}
		}
	}
	if err != nil {
		return err
	}

	if c.JSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(decisions)
	}
	_, err = fmt.Fprintln(os.Stdout, renderDecisions(s, decisions))
	return err
}

func (c *DecideCmd) readSnapshot() (bot.Snapshot, error) {
	var r io.Reader = os.Stdin
	if c.File != "-" {
		f, err := os.Open(c.File)
		if err != nil {
			return bot.Snapshot{}, err
		}
		defer f.Close()
		r = f
	}
	return decodeSnapshot(r)
}

func decodeSnapshot(r io.Reader) (bot.Snapshot, error) {
	var s bot.Snapshot
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&s); err != nil {
		return bot.Snapshot{}, fmt.Errorf("failed to decode snapshot: %w", err)
	}
	if err := s.Validate(); err != nil {
		return bot.Snapshot{}, err
	}
	return s, nil
}

func renderDecisions(s bot.Snapshot, decisions []bot.Decision) string {
	var b strings.Builder

	profile := ""
	if len(decisions) > 0 {
		profile = decisions[0].Profile
	}
	b.WriteString(headerStyle.Render("Profile " + profile))
	b.WriteString("\n\n")

	line := func(label, value string) {
		b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, labelStyle.Render(label), value))
		b.WriteString("\n")
	}
	line("Hand", renderCards(s.Hand, s.Vira))
	line("Vira", renderCard(s.Vira, s.Vira))
	line("Phase", s.Phase().String())
	line("Score", fmt.Sprintf("%d-%d (hand worth %d)", s.Score, s.OpponentScore, s.HandPoints))
	if s.OpponentCard != nil {
		line("Opponent", renderCard(*s.OpponentCard, s.Vira))
	}
	line("Power", fmt.Sprintf("%d", classification.HandPower(s.Hand, s.Vira)))
	line("Archetypes", archetypeList(s))
	b.WriteString("\n")

	for _, d := range decisions {
		line(string(d.Kind), renderValue(d, s.Vira))
		if d.Reasoning != "" {
			b.WriteString(dimStyle.Render("  " + d.Reasoning))
			b.WriteString("\n")
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

func archetypeList(s bot.Snapshot) string {
	archetypes := s.Tally().Archetypes()
	if len(archetypes) == 0 {
		return dimStyle.Render("none")
	}
	names := make([]string, len(archetypes))
	for i, a := range archetypes {
		names[i] = a.String()
	}
	return strings.Join(names, ", ")
}
