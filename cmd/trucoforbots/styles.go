package main

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/lox/trucoforbots/internal/bot"
	"github.com/lox/trucoforbots/internal/deck"
)

var (
	headerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Bold(true).
			Padding(0, 1)

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#96CEB4")).
			Bold(true).
			Width(16)

	yesStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#96CEB4")).
			Bold(true)

	noStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("#FF6B6B")).
		Bold(true)

	raiseStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFD700")).
			Bold(true)

	redCardStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B")).
			Bold(true)

	blackCardStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FAFAFA")).
			Bold(true)

	trumpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFEAA7")).
			Underline(true)

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#626262"))
)

// renderCard colours a card by suit and underlines trumps.
func renderCard(c deck.Card, vira deck.Card) string {
	style := blackCardStyle
	if c.Suit.IsRed() {
		style = redCardStyle
	}
	if c.IsManilha(vira) {
		style = style.Inherit(trumpStyle)
	}
	return style.Render(c.String())
}

func renderCards(cards []deck.Card, vira deck.Card) string {
	parts := make([]string, len(cards))
	for i, c := range cards {
		parts[i] = renderCard(c, vira)
	}
	return strings.Join(parts, " ")
}

// renderValue styles a decision's answer.
func renderValue(d bot.Decision, vira deck.Card) string {
	switch {
	case d.Accept != nil && *d.Accept:
		return yesStyle.Render(d.Value())
	case d.Accept != nil:
		return noStyle.Render(d.Value())
	case d.Reply != nil && *d.Reply == bot.ReRaise:
		return raiseStyle.Render(d.Value())
	case d.Reply != nil && *d.Reply == bot.Accept:
		return yesStyle.Render(d.Value())
	case d.Reply != nil:
		return noStyle.Render(d.Value())
	case d.Card != nil:
		return renderCard(*d.Card, vira)
	}
	return d.Value()
}
