package notification

import (
	"context"
	"testing"

	"angebot_backend/internal/events"
	"angebot_backend/platform/logger"

	"github.com/google/uuid"
)

func TestAuditHandlerReceivesQuoteEvents(t *testing.T) {
	log := logger.New("development")
	bus := events.NewInMemoryBus(log)
	NewAuditHandler(log).RegisterHandlers(bus)

	statusEvent := events.QuoteStatusChanged{
		BaseEvent: events.NewBaseEvent(),
		QuoteID:   uuid.New(),
		OldStatus: "draft",
		NewStatus: "sent",
	}
	if err := bus.PublishSync(context.Background(), statusEvent); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	delivered := events.QuoteDelivered{
		BaseEvent:      events.NewBaseEvent(),
		QuoteID:        uuid.New(),
		RecipientEmail: "kunde@example.com",
	}
	if err := bus.PublishSync(context.Background(), delivered); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestAuditHandlerRejectsUnknownEvent(t *testing.T) {
	h := NewAuditHandler(logger.New("development"))

	if err := h.Handle(context.Background(), unrelatedEvent{BaseEvent: events.NewBaseEvent()}); err == nil {
		t.Fatal("expected error for unknown event type")
	}
}

type unrelatedEvent struct {
	events.BaseEvent
}

func (unrelatedEvent) EventName() string { return "quotes.status_changed" }
