package domain

import (
	"context"
	"time"
)

// Outcome classifies how a turn was handled.
type Outcome string

const (
	OutcomeReset        Outcome = "reset"        // "menu" override
	OutcomeMatched      Outcome = "matched"      // Domain or answer key found
	OutcomeUnrecognized Outcome = "unrecognized" // Nothing matched, guidance returned
	OutcomeClosed       Outcome = "closed"       // Input after an answer was given
	OutcomeRecovered    Outcome = "recovered"    // Corrupt or stale state reset to the menu
)

// TurnEvent describes one processed utterance.
type TurnEvent struct {
	Timestamp time.Time `json:"timestamp"`
	SessionID string    `json:"session_id,omitempty"`
	From      Step      `json:"from"`
	To        Step      `json:"to"`
	Domain    string    `json:"domain,omitempty"`
	Matched   string    `json:"matched,omitempty"` // Domain or answer key that was selected
	Outcome   Outcome   `json:"outcome"`
	Response  string    `json:"response"`
}

// LifecycleHooks defines callbacks for dialogue observability.
type LifecycleHooks struct {
	OnTurn  func(context.Context, *TurnEvent)
	OnReset func(context.Context, *TurnEvent)
}

// Merge returns hooks that call h first and then other.
func (h LifecycleHooks) Merge(other LifecycleHooks) LifecycleHooks {
	return LifecycleHooks{
		OnTurn:  chain(h.OnTurn, other.OnTurn),
		OnReset: chain(h.OnReset, other.OnReset),
	}
}

func chain(a, b func(context.Context, *TurnEvent)) func(context.Context, *TurnEvent) {
	switch {
	case a == nil:
		return b
	case b == nil:
		return a
	}
	return func(ctx context.Context, e *TurnEvent) {
		a(ctx, e)
		b(ctx, e)
	}
}
