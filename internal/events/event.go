// Package events provides domain event definitions for decoupled,
// event-driven communication between modules.
// Infrastructure (Bus, Handler) is in platform/events.
package events

import (
	"angebot_backend/platform/events"

	"github.com/google/uuid"
)

// Re-export platform types for convenience
type (
	Event       = events.Event
	Bus         = events.Bus
	Handler     = events.Handler
	HandlerFunc = events.HandlerFunc
	BaseEvent   = events.BaseEvent
)

// Re-export platform functions
var NewBaseEvent = events.NewBaseEvent

// =============================================================================
// Quote Domain Events
// =============================================================================

// QuoteStatusChanged is published when a quote moves to a new status.
type QuoteStatusChanged struct {
	BaseEvent
	QuoteID   uuid.UUID `json:"quoteId"`
	OldStatus string    `json:"oldStatus"`
	NewStatus string    `json:"newStatus"`
}

func (e QuoteStatusChanged) EventName() string { return "quotes.status_changed" }

// QuoteDelivered is published after a proposal was emailed to the customer.
type QuoteDelivered struct {
	BaseEvent
	QuoteID        uuid.UUID `json:"quoteId"`
	RecipientEmail string    `json:"recipientEmail"`
}

func (e QuoteDelivered) EventName() string { return "quotes.delivered" }
