package domain

import (
	"encoding/json"
	"fmt"
)

// Step is the position of a conversation in the menu → clarifying → answering grammar.
type Step string

const (
	StepMenu       Step = "menu"       // Waiting for a domain pick
	StepClarifying Step = "clarifying" // Domain picked, waiting for a sub-topic
	StepAnswering  Step = "answering"  // Answer delivered, only "menu" leaves
)

// Valid reports whether s is one of the known steps.
func (s Step) Valid() bool {
	switch s {
	case StepMenu, StepClarifying, StepAnswering:
		return true
	}
	return false
}

func (s Step) String() string {
	return string(s)
}

// UnmarshalJSON accepts the known steps only. An empty value decodes to StepMenu.
func (s *Step) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if raw == "" {
		*s = StepMenu
		return nil
	}
	step := Step(raw)
	if !step.Valid() {
		return fmt.Errorf("unknown step %q", raw)
	}
	*s = step
	return nil
}
