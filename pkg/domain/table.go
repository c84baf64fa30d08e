package domain

import (
	"fmt"
	"strings"
)

// Answer is a canned response selected when Key occurs in the user's input.
type Answer struct {
	Key  string `json:"key" yaml:"key"`
	Text string `json:"text" yaml:"text"`
}

// Domain is a top-level help topic.
type Domain struct {
	Key        string   `json:"key" yaml:"key"`
	Title      string   `json:"title" yaml:"title"`
	Intro      string   `json:"intro" yaml:"intro"`
	Clarifying string   `json:"clarifying" yaml:"clarifying"`
	Answers    []Answer `json:"answers" yaml:"answers"`
}

// MatchAnswer returns the first answer (definition order) whose key is a substring of text.
// text is expected to be normalized already.
func (d Domain) MatchAnswer(text string) (Answer, bool) {
	for _, a := range d.Answers {
		if strings.Contains(text, a.Key) {
			return a, true
		}
	}
	return Answer{}, false
}

// Table is the ordered, immutable set of help domains.
type Table struct {
	Domains []Domain `json:"domains" yaml:"domains"`
}

// Lookup finds a domain by its exact key.
func (t Table) Lookup(key string) (Domain, bool) {
	for _, d := range t.Domains {
		if d.Key == key {
			return d, true
		}
	}
	return Domain{}, false
}

// Match returns the first domain (table order) whose key is a substring of text.
// text is expected to be normalized already.
func (t Table) Match(text string) (Domain, bool) {
	for _, d := range t.Domains {
		if strings.Contains(text, d.Key) {
			return d, true
		}
	}
	return Domain{}, false
}

// Keys lists domain keys in table order.
func (t Table) Keys() []string {
	keys := make([]string, len(t.Domains))
	for i, d := range t.Domains {
		keys[i] = d.Key
	}
	return keys
}

// Titles lists display titles in table order. A domain without a title falls back to its key.
func (t Table) Titles() []string {
	titles := make([]string, len(t.Domains))
	for i, d := range t.Domains {
		titles[i] = d.DisplayTitle()
	}
	return titles
}

// DisplayTitle is the name shown in menu listings.
func (d Domain) DisplayTitle() string {
	if d.Title != "" {
		return d.Title
	}
	return d.Key
}

// Validate checks the invariants matching relies on. Keys must already be
// lowercase and trimmed, otherwise normalized input could never select them.
func (t Table) Validate() error {
	if len(t.Domains) == 0 {
		return fmt.Errorf("%w: no domains defined", ErrInvalidTable)
	}

	var problems []string
	seen := make(map[string]bool)
	for i, d := range t.Domains {
		where := fmt.Sprintf("domain #%d (%q)", i, d.Key)
		if msg := checkKey(d.Key); msg != "" {
			problems = append(problems, where+": key "+msg)
		}
		if seen[d.Key] {
			problems = append(problems, where+": duplicate key")
		}
		seen[d.Key] = true
		if strings.TrimSpace(d.Intro) == "" {
			problems = append(problems, where+": empty intro")
		}
		if strings.TrimSpace(d.Clarifying) == "" {
			problems = append(problems, where+": empty clarifying prompt")
		}
		if len(d.Answers) == 0 {
			problems = append(problems, where+": no answers")
		}

		seenAnswer := make(map[string]bool)
		for _, a := range d.Answers {
			if msg := checkKey(a.Key); msg != "" {
				problems = append(problems, fmt.Sprintf("%s: answer %q %s", where, a.Key, msg))
			}
			if seenAnswer[a.Key] {
				problems = append(problems, fmt.Sprintf("%s: duplicate answer %q", where, a.Key))
			}
			seenAnswer[a.Key] = true
			if strings.TrimSpace(a.Text) == "" {
				problems = append(problems, fmt.Sprintf("%s: answer %q has no text", where, a.Key))
			}
		}
	}

	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidTable, strings.Join(problems, "; "))
	}
	return nil
}

func checkKey(key string) string {
	switch {
	case key == "":
		return "is empty"
	case strings.TrimSpace(key) != key:
		return "has surrounding whitespace"
	case strings.ToLower(key) != key:
		return "is not lowercase"
	}
	return ""
}
