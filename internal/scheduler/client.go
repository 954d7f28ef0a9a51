package scheduler

import (
	"context"
	"crypto/tls"
	"fmt"

	quotesvc "angebot_backend/internal/quotes/service"
	"angebot_backend/platform/config"
	"angebot_backend/platform/logger"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"
)

// Client enqueues delivery jobs on the asynq queue. It implements the quotes
// service's DeliveryScheduler port.
type Client struct {
	client *asynq.Client
	queue  string
}

var (
	_ quotesvc.DeliveryScheduler = (*Client)(nil)
	_ quotesvc.DeliveryScheduler = (*SyncScheduler)(nil)
)

func NewClient(cfg config.SchedulerConfig) (*Client, error) {
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

	return &Client{
		client: asynq.NewClient(opt),
		queue:  queue,
	}, nil
}

func (c *Client) Close() error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Close()
}

func (c *Client) EnqueueQuoteDelivery(ctx context.Context, quoteID uuid.UUID, recipientEmail string) error {
	task, err := NewQuoteDeliveryTask(QuoteDeliveryPayload{
		QuoteID:        quoteID.String(),
		RecipientEmail: recipientEmail,
	})
	if err != nil {
		return err
	}

	_, err = c.client.EnqueueContext(ctx, task, asynq.Queue(c.queue), asynq.MaxRetry(5))
	return err
}

// SyncScheduler delivers quotes inline instead of enqueueing them. Used when
// no Redis queue is configured so sending still works in small deployments.
type SyncScheduler struct {
	deliverer *Deliverer
	log       *logger.Logger
}

func NewSyncScheduler(deliverer *Deliverer, log *logger.Logger) *SyncScheduler {
	return &SyncScheduler{deliverer: deliverer, log: log}
}

func (s *SyncScheduler) EnqueueQuoteDelivery(ctx context.Context, quoteID uuid.UUID, recipientEmail string) error {
	s.log.Info("delivering quote synchronously, no queue configured", "quoteId", quoteID)
	return s.deliverer.Deliver(ctx, quoteID, recipientEmail)
}

func redisClientOpt(redisURL string, tlsInsecure bool) (asynq.RedisClientOpt, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return asynq.RedisClientOpt{}, err
	}

	var tlsConfig *tls.Config
	if opt.TLSConfig != nil {
		clone := opt.TLSConfig.Clone()
		if tlsInsecure {
			clone.InsecureSkipVerify = true
		}
		tlsConfig = clone
	} else if tlsInsecure {
		tlsConfig = &tls.Config{InsecureSkipVerify: true}
	}

	return asynq.RedisClientOpt{
		Addr:      opt.Addr,
		Password:  opt.Password,
		DB:        opt.DB,
		TLSConfig: tlsConfig,
	}, nil
}
