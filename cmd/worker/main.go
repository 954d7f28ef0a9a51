package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"angebot_backend/internal/adapters"
	"angebot_backend/internal/adapters/storage"
	"angebot_backend/internal/catalog"
	"angebot_backend/internal/email"
	"angebot_backend/internal/events"
	"angebot_backend/internal/notification"
	"angebot_backend/internal/pdf"
	"angebot_backend/internal/quotes"
	"angebot_backend/internal/scheduler"
	"angebot_backend/platform/config"
	"angebot_backend/platform/db"
	"angebot_backend/platform/logger"
	"angebot_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	log := logger.New(cfg.Env)
	log.Info("starting delivery worker", "env", cfg.Env)

	if cfg.GetRedisURL() == "" {
		panic("REDIS_URL is required for the delivery worker")
	}
	if !cfg.IsGotenbergEnabled() {
		panic("GOTENBERG_URL is required for the delivery worker")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var pool *pgxpool.Pool
	if err := withRetry(ctx, log, "database connection", 5, 2*time.Second, func() error {
		p, err := db.NewPool(ctx, cfg)
		if err != nil {
			return err
		}
		pool = p
		return nil
	}); err != nil {
		log.Error("failed to connect to database", "error", err)
		panic("failed to connect to database: " + err.Error())
	}
	defer pool.Close()

	eventBus := events.NewInMemoryBus(log)
	notification.NewAuditHandler(log).RegisterHandlers(eventBus)
	val := validator.New()

	var sender email.Sender = email.NoopSender{}
	if cfg.GetEmailEnabled() {
		sender = email.NewSMTPSender(
			cfg.GetSMTPHost(), cfg.GetSMTPPort(),
			cfg.GetSMTPUsername(), cfg.GetSMTPPassword(),
			cfg.GetEmailFromAddress(), cfg.GetEmailFromName(),
		)
	} else {
		log.Warn("SMTP_HOST not configured; delivered quotes will not be emailed")
	}

	var storageSvc storage.Service
	if cfg.IsMinIOEnabled() {
		minioSvc, err := storage.NewMinIOService(cfg)
		if err != nil {
			log.Error("failed to initialize storage service", "error", err)
			panic("failed to initialize storage service: " + err.Error())
		}
		storageSvc = minioSvc
	}

	// Worker-side quote wiring (no HTTP handlers required).
	catalogModule := catalog.NewModule(pool, val)
	catalogReader := adapters.NewCatalogReader(catalogModule.Repository())
	quotesModule := quotes.NewModule(pool, catalogReader, log, eventBus, val)

	gotenberg := pdf.NewGotenbergClient(cfg.GetGotenbergURL(), cfg.GetGotenbergUsername(), cfg.GetGotenbergPassword())
	renderer, err := pdf.NewRenderer(gotenberg, cfg.GetAppBaseURL())
	if err != nil {
		log.Error("failed to initialize PDF renderer", "error", err)
		panic("failed to initialize PDF renderer: " + err.Error())
	}
	quotesModule.Service().SetPDFRenderer(renderer)

	deliverer := scheduler.NewDeliverer(quotesModule.Service(), sender, storageSvc, cfg.GetMinioBucketProposalPDFs(), eventBus, log)

	worker, err := scheduler.NewWorker(cfg, deliverer, log)
	if err != nil {
		log.Error("failed to initialize delivery worker", "error", err)
		panic("failed to initialize delivery worker: " + err.Error())
	}

	worker.Run(ctx)
}

func withRetry(ctx context.Context, log *logger.Logger, name string, attempts int, baseDelay time.Duration, fn func() error) error {
	if attempts < 1 {
		return errors.New(name + ": invalid retry attempts")
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err := fn(); err == nil {
			return nil
		} else {
			lastErr = err
			log.Warn("retryable operation failed", "operation", name, "attempt", attempt, "error", err)
		}

		if attempt < attempts {
			delay := time.Duration(attempt*attempt) * baseDelay
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
		}
	}

	return errors.New(name + ": " + lastErr.Error())
}
