package scheduler

import (
	"context"
	"fmt"

	"angebot_backend/platform/config"
	"angebot_backend/platform/logger"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
)

// Worker consumes delivery jobs from the asynq queue.
type Worker struct {
	server    *asynq.Server
	mux       *asynq.ServeMux
	deliverer *Deliverer
	log       *logger.Logger
}

func NewWorker(cfg config.SchedulerConfig, deliverer *Deliverer, log *logger.Logger) (*Worker, error) {
	redisURL := cfg.GetRedisURL()
	if redisURL == "" {
		return nil, fmt.Errorf("redis url not configured")
	}

	opt, err := redisClientOpt(redisURL, cfg.GetRedisTLSInsecure())
	if err != nil {
		return nil, err
	}

	queue := cfg.GetAsynqQueueName()
	if queue == "" {
		queue = "default"
	}

	concurrency := cfg.GetAsynqConcurrency()
	if concurrency < 1 {
		concurrency = 10
	}

	server := asynq.NewServer(opt, asynq.Config{
		Concurrency: concurrency,
		Queues: map[string]int{
			queue: 1,
		},
	})

	mux := asynq.NewServeMux()
	w := &Worker{
		server:    server,
		mux:       mux,
		deliverer: deliverer,
		log:       log,
	}

	mux.HandleFunc(TaskQuoteDelivery, w.handleQuoteDelivery)

	return w, nil
}

func (w *Worker) handleQuoteDelivery(ctx context.Context, task *asynq.Task) error {
	payload, err := ParseQuoteDeliveryPayload(task)
	if err != nil {
		return err
	}

	quoteID, err := uuid.Parse(payload.QuoteID)
	if err != nil {
		return err
	}

	return w.deliverer.Deliver(ctx, quoteID, payload.RecipientEmail)
}

func (w *Worker) Run(ctx context.Context) {
	if w == nil || w.server == nil {
		return
	}

	go func() {
		<-ctx.Done()
		w.server.Shutdown()
	}()

	if err := w.server.Run(w.mux); err != nil {
		w.log.Error("scheduler worker stopped", "error", err)
	}
}
