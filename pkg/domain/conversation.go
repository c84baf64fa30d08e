package domain

import "time"

// Conversation is the dialogue state of a single session.
// Invariant: Domain is empty iff Step == StepMenu.
type Conversation struct {
	// SessionID identifies the owning session. Empty for ad-hoc conversations.
	SessionID string `json:"session_id,omitempty"`

	// Step is the current position in the dialogue grammar.
	Step Step `json:"step"`

	// Domain is the key of the selected domain while clarifying or answering.
	Domain string `json:"domain,omitempty"`

	// Turns counts processed respond calls.
	Turns int `json:"turns"`

	UpdatedAt time.Time `json:"updated_at,omitempty"`

	// Sealed carries the encrypted conversation when the store seals data at rest.
	// The other fields are then placeholders.
	Sealed string `json:"sealed,omitempty"`
}

// NewConversation creates a conversation at the main menu.
func NewConversation(sessionID string) *Conversation {
	return &Conversation{
		SessionID: sessionID,
		Step:      StepMenu,
	}
}

// Reset returns the conversation to the main menu.
func (c *Conversation) Reset() {
	c.Step = StepMenu
	c.Domain = ""
}

// Snapshot returns a copy safe to hand to another owner.
func (c *Conversation) Snapshot() *Conversation {
	if c == nil {
		return nil
	}
	cp := *c
	return &cp
}
