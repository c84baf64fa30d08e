// Package graph renders the help content as a Mermaid flowchart.
package graph

import (
	"fmt"
	"strings"

	"github.com/socialsphere/guide/pkg/domain"
)

const menuID = "menu"

// Overlay marks a conversation's position on the chart.
type Overlay struct {
	Step   domain.Step
	Domain string
}

// OverlayFor builds the overlay of conv.
func OverlayFor(conv *domain.Conversation) *Overlay {
	return &Overlay{Step: conv.Step, Domain: conv.Domain}
}

// GenerateMermaid produces a Mermaid flowchart of the dialogue over table:
//   - Main menu: ((Circle))
//   - Domain (clarifying prompt): [/Parallelogram/]
//   - Answer: [Rectangle]
//
// Edges are labeled with the key that selects their target. When overlay is
// non-nil the conversation's current node is highlighted.
func GenerateMermaid(table domain.Table, overlay *Overlay) string {
	var sb strings.Builder
	sb.WriteString("graph TD\n")
	fmt.Fprintf(&sb, "    %s((\"Main Menu\"))\n", menuID)

	for _, d := range table.Domains {
		dID := domainID(d.Key)
		fmt.Fprintf(&sb, "    %s[/\"%s\"/]\n", dID, label(d.DisplayTitle()))
		fmt.Fprintf(&sb, "    %s -- \"%s\" --> %s\n", menuID, label(d.Key), dID)

		for _, a := range d.Answers {
			aID := answerID(d.Key, a.Key)
			fmt.Fprintf(&sb, "    %s[\"%s\"]\n", aID, label(a.Key))
			fmt.Fprintf(&sb, "    %s -- \"%s\" --> %s\n", dID, label(a.Key), aID)
		}
	}

	if current := currentNode(table, overlay); current != "" {
		sb.WriteString("\n    %% Overlay Styles\n")
		sb.WriteString("    classDef current fill:#ffeb3b,stroke:#fbc02d,stroke-width:4px,color:#000;\n")
		fmt.Fprintf(&sb, "    class %s current;\n", current)
	}

	return sb.String()
}

// currentNode returns the node for overlay. Answering has no single answer node,
// so the domain is highlighted.
func currentNode(table domain.Table, overlay *Overlay) string {
	if overlay == nil {
		return ""
	}
	switch overlay.Step {
	case domain.StepClarifying, domain.StepAnswering:
		if _, ok := table.Lookup(overlay.Domain); ok {
			return domainID(overlay.Domain)
		}
		return ""
	default:
		return menuID
	}
}

func domainID(key string) string {
	return "d_" + sanitizeMermaidID(key)
}

func answerID(domainKey, answerKey string) string {
	return "a_" + sanitizeMermaidID(domainKey) + "__" + sanitizeMermaidID(answerKey)
}

func label(s string) string {
	return strings.ReplaceAll(s, "\"", "'")
}

func sanitizeMermaidID(id string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		}
		return '_'
	}, id)
}
