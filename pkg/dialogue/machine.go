// Package dialogue implements the guided help state machine.
//
// A Machine holds only the immutable domain table. All mutable state lives in the
// domain.Conversation passed to each call, so one Machine can serve any number of
// conversations as long as each conversation has a single owner at a time.
package dialogue

import (
	"strings"

	"github.com/socialsphere/guide/pkg/domain"
)

// Fixed responses. Domain-specific text comes from the table.
const (
	MenuHeader      = "📌 Main Menu:"
	MenuFooter      = "Type one to continue 👆"
	NotUnderstood   = "❌ I didn’t catch that. Please choose from Main Menu:"
	NotClear        = "❌ Not clear."
	ReturnHint      = "➡️ Type 'menu' to go back to Main Menu."
	AlreadyAnswered = "✅ You’ve got your answer. Type 'menu' to return to Main Menu."
)

// Machine is the rule-based dialogue engine.
type Machine struct {
	table domain.Table
	menu  string
	miss  string
}

// New creates a Machine over table. The table is not validated here; loaders do that.
func New(table domain.Table) *Machine {
	return &Machine{
		table: table,
		menu:  renderMenu(table),
		miss:  NotUnderstood + "\n" + strings.Join(table.Titles(), " | "),
	}
}

// Table returns the table the machine was built with.
func (m *Machine) Table() domain.Table {
	return m.table
}

// Menu returns the main menu listing.
func (m *Machine) Menu() string {
	return m.menu
}

// Respond consumes one utterance, advances conv and returns the text to display.
func (m *Machine) Respond(conv *domain.Conversation, text string) string {
	return m.Step(conv, text).Response
}

// Step is Respond with a description of the transition.
// Timestamp and SessionID are left for the caller to fill in.
func (m *Machine) Step(conv *domain.Conversation, text string) domain.TurnEvent {
	normalized := Normalize(text)
	ev := domain.TurnEvent{From: conv.Step}

	if IsMenuCommand(normalized) {
		conv.Reset()
		ev.Outcome = domain.OutcomeReset
		ev.Response = m.menu
	} else {
		switch conv.Step {
		case domain.StepMenu, "":
			m.selectDomain(conv, normalized, &ev)
		case domain.StepClarifying:
			m.clarify(conv, normalized, &ev)
		case domain.StepAnswering:
			ev.Outcome = domain.OutcomeClosed
			ev.Response = AlreadyAnswered
		default:
			m.recover(conv, &ev)
		}
	}

	conv.Turns++
	ev.To = conv.Step
	ev.Domain = conv.Domain
	return ev
}

func (m *Machine) selectDomain(conv *domain.Conversation, text string, ev *domain.TurnEvent) {
	d, ok := m.table.Match(text)
	if !ok {
		ev.Outcome = domain.OutcomeUnrecognized
		ev.Response = m.miss
		return
	}

	conv.Step = domain.StepClarifying
	conv.Domain = d.Key
	ev.Outcome = domain.OutcomeMatched
	ev.Matched = d.Key
	ev.Response = d.Intro + "\n\n" + d.Clarifying
}

func (m *Machine) clarify(conv *domain.Conversation, text string, ev *domain.TurnEvent) {
	d, ok := m.table.Lookup(conv.Domain)
	if !ok {
		m.recover(conv, ev)
		return
	}

	a, ok := d.MatchAnswer(text)
	if !ok {
		ev.Outcome = domain.OutcomeUnrecognized
		ev.Response = NotClear + " " + d.Clarifying
		return
	}

	// The domain stays selected while answering.
	conv.Step = domain.StepAnswering
	ev.Outcome = domain.OutcomeMatched
	ev.Matched = a.Key
	ev.Response = a.Text + "\n\n" + ReturnHint
}

// recover handles state that does not fit the table: an unknown step, or a
// domain key that the current content no longer defines.
func (m *Machine) recover(conv *domain.Conversation, ev *domain.TurnEvent) {
	conv.Reset()
	ev.Outcome = domain.OutcomeRecovered
	ev.Response = m.menu
}

// Normalize lowercases and trims input before matching.
func Normalize(text string) string {
	return strings.ToLower(strings.TrimSpace(text))
}

// IsMenuCommand reports whether normalized text is the global reset command.
func IsMenuCommand(normalized string) bool {
	return normalized == "menu" || normalized == "main menu"
}

func renderMenu(table domain.Table) string {
	var sb strings.Builder
	sb.WriteString(MenuHeader)
	sb.WriteString("\n")
	for _, title := range table.Titles() {
		sb.WriteString("- ")
		sb.WriteString(title)
		sb.WriteString("\n")
	}
	sb.WriteString("\n")
	sb.WriteString(MenuFooter)
	return sb.String()
}
