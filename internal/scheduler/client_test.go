package scheduler

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/hibiken/asynq"

	"angebot_backend/platform/config"
)

func TestEnqueueQuoteDelivery(t *testing.T) {
	mr := miniredis.RunT(t)

	cfg := &config.Config{
		RedisURL:       "redis://" + mr.Addr(),
		AsynqQueueName: "delivery",
	}
	client, err := NewClient(cfg)
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	defer client.Close()

	quoteID := uuid.New()
	if err := client.EnqueueQuoteDelivery(context.Background(), quoteID, "kunde@example.com"); err != nil {
		t.Fatalf("EnqueueQuoteDelivery: %v", err)
	}

	inspector := asynq.NewInspector(asynq.RedisClientOpt{Addr: mr.Addr()})
	defer inspector.Close()

	tasks, err := inspector.ListPendingTasks("delivery")
	if err != nil {
		t.Fatalf("ListPendingTasks: %v", err)
	}
	if len(tasks) != 1 {
		t.Fatalf("pending tasks = %d, want 1", len(tasks))
	}
	if tasks[0].Type != TaskQuoteDelivery {
		t.Fatalf("task type = %q", tasks[0].Type)
	}

	payload, err := ParseQuoteDeliveryPayload(asynq.NewTask(tasks[0].Type, tasks[0].Payload))
	if err != nil {
		t.Fatalf("ParseQuoteDeliveryPayload: %v", err)
	}
	if payload.QuoteID != quoteID.String() {
		t.Fatalf("payload quote id = %q, want %q", payload.QuoteID, quoteID)
	}
	if payload.RecipientEmail != "kunde@example.com" {
		t.Fatalf("payload recipient = %q", payload.RecipientEmail)
	}
}
