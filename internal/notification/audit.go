// Package notification consumes quote domain events. The audit handler
// writes a structured log entry per event so status changes and deliveries
// leave a trace without the quotes module knowing about logging concerns.
package notification

import (
	"context"
	"fmt"

	"angebot_backend/internal/events"
	"angebot_backend/platform/logger"
)

// AuditHandler logs quote lifecycle events from the bus.
type AuditHandler struct {
	log *logger.Logger
}

func NewAuditHandler(log *logger.Logger) *AuditHandler {
	return &AuditHandler{log: log}
}

// RegisterHandlers subscribes to all relevant domain events on the event bus.
func (h *AuditHandler) RegisterHandlers(bus events.Bus) {
	bus.Subscribe(events.QuoteStatusChanged{}.EventName(), h)
	bus.Subscribe(events.QuoteDelivered{}.EventName(), h)
}

// Handle routes events to the appropriate handler method.
func (h *AuditHandler) Handle(_ context.Context, event events.Event) error {
	switch e := event.(type) {
	case events.QuoteStatusChanged:
		h.log.Info("quote status changed",
			"quoteId", e.QuoteID,
			"oldStatus", e.OldStatus,
			"newStatus", e.NewStatus,
			"occurredAt", e.OccurredAt(),
		)
	case events.QuoteDelivered:
		h.log.Info("quote delivered",
			"quoteId", e.QuoteID,
			"recipientEmail", e.RecipientEmail,
			"occurredAt", e.OccurredAt(),
		)
	default:
		return fmt.Errorf("unexpected event type %T for %s", event, event.EventName())
	}
	return nil
}

// Compile-time check that AuditHandler implements events.Handler.
var _ events.Handler = (*AuditHandler)(nil)
