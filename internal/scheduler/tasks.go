package scheduler

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

const TaskQuoteDelivery = "quotes.deliver"

type QuoteDeliveryPayload struct {
	QuoteID        string `json:"quoteId"`
	RecipientEmail string `json:"recipientEmail"`
}

func NewQuoteDeliveryTask(payload QuoteDeliveryPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskQuoteDelivery, data), nil
}

func ParseQuoteDeliveryPayload(task *asynq.Task) (QuoteDeliveryPayload, error) {
	var payload QuoteDeliveryPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return QuoteDeliveryPayload{}, err
	}
	return payload, nil
}
