package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"angebot_backend/internal/adapters"
	"angebot_backend/internal/adapters/storage"
	"angebot_backend/internal/ai"
	"angebot_backend/internal/auth"
	"angebot_backend/internal/catalog"
	"angebot_backend/internal/docimport"
	"angebot_backend/internal/email"
	"angebot_backend/internal/events"
	apphttp "angebot_backend/internal/http"
	"angebot_backend/internal/http/router"
	"angebot_backend/internal/notification"
	"angebot_backend/internal/pdf"
	"angebot_backend/internal/quotes"
	quotesvc "angebot_backend/internal/quotes/service"
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

	// Initialize structured logger
	log := logger.New(cfg.Env)
	log.Info("starting server", "env", cfg.Env, "addr", cfg.HTTPAddr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// ========================================================================
	// Infrastructure Layer
	// ========================================================================

	if err := withRetry(ctx, log, "database migrations", 5, 2*time.Second, func() error {
		return db.RunMigrations(ctx, cfg, "migrations")
	}); err != nil {
		log.Error("failed to run database migrations", "error", err)
		panic("failed to run database migrations: " + err.Error())
	}
	log.Info("database migrations complete")

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
	log.Info("database connection established")

	// Event bus for decoupled communication between modules
	eventBus := events.NewInMemoryBus(log)
	notification.NewAuditHandler(log).RegisterHandlers(eventBus)

	// Shared validator instance for dependency injection
	val := validator.New()

	sender := newEmailSender(cfg, log)

	// Storage service for archived proposal PDFs (MinIO)
	var storageSvc storage.Service
	if cfg.IsMinIOEnabled() {
		minioSvc, err := storage.NewMinIOService(cfg)
		if err != nil {
			log.Error("failed to initialize storage service", "error", err)
			panic("failed to initialize storage service: " + err.Error())
		}
		if err := withRetry(ctx, log, "ensure proposal-pdfs bucket", 5, 2*time.Second, func() error {
			return minioSvc.EnsureBucketExists(ctx, cfg.GetMinioBucketProposalPDFs())
		}); err != nil {
			log.Error("failed to ensure storage bucket exists", "error", err, "bucket", cfg.GetMinioBucketProposalPDFs())
			panic("failed to ensure storage bucket exists: " + err.Error())
		}
		storageSvc = minioSvc
		log.Info("storage service initialized", "proposalPDFsBucket", cfg.GetMinioBucketProposalPDFs())
	} else {
		log.Warn("MINIO_ENDPOINT not configured; proposal PDFs will not be archived")
	}

	// ========================================================================
	// Domain Modules (Composition Root)
	// ========================================================================

	catalogModule := catalog.NewModule(pool, val)
	catalogReader := adapters.NewCatalogReader(catalogModule.Repository())
	quotesModule := quotes.NewModule(pool, catalogReader, log, eventBus, val)

	// Gemini text generation: proposal narratives + document import
	var aiModules []apphttp.Module
	if cfg.IsAIEnabled() {
		aiClient, err := ai.NewClient(ctx, cfg)
		if err != nil {
			log.Error("failed to initialize AI client", "error", err)
			panic("failed to initialize AI client: " + err.Error())
		}
		quotesModule.Service().SetNarrativeGenerator(adapters.NewNarrativeGenerator(aiClient))

		importModule := docimport.NewModule(
			adapters.NewDocumentExtractor(aiClient),
			adapters.NewImportLibrary(catalogModule.Repository()),
			log, val,
		)
		aiModules = append(aiModules, importModule)
		log.Info("AI text generation initialized", "model", cfg.GetGeminiModel())
	} else {
		log.Warn("GEMINI_API_KEY not configured; narratives and document import disabled")
	}

	// Gotenberg PDF rendering
	if cfg.IsGotenbergEnabled() {
		gotenberg := pdf.NewGotenbergClient(cfg.GetGotenbergURL(), cfg.GetGotenbergUsername(), cfg.GetGotenbergPassword())
		renderer, err := pdf.NewRenderer(gotenberg, cfg.GetAppBaseURL())
		if err != nil {
			log.Error("failed to initialize PDF renderer", "error", err)
			panic("failed to initialize PDF renderer: " + err.Error())
		}
		quotesModule.Service().SetPDFRenderer(renderer)
		log.Info("gotenberg PDF renderer initialized", "url", cfg.GetGotenbergURL())

		// Delivery needs a rendered PDF, so it is only wired when Gotenberg is.
		deliverer := scheduler.NewDeliverer(quotesModule.Service(), sender, storageSvc, cfg.GetMinioBucketProposalPDFs(), eventBus, log)
		quotesModule.Service().SetDeliveryScheduler(newDeliveryScheduler(cfg, deliverer, log))
	} else {
		log.Warn("GOTENBERG_URL not configured; PDF rendering and delivery disabled")
	}

	authModule := auth.NewModule(pool, cfg, sender, log, val)

	// ========================================================================
	// HTTP Layer
	// ========================================================================

	modules := []apphttp.Module{
		authModule,
		catalogModule,
		quotesModule,
	}
	modules = append(modules, aiModules...)

	app := &apphttp.App{
		Config:   cfg,
		Logger:   log,
		Health:   db.NewPoolAdapter(pool),
		EventBus: eventBus,
		Modules:  modules,
	}

	engine := router.New(app)

	srvErr := make(chan error, 1)
	go func() {
		log.Info("server listening", "addr", cfg.HTTPAddr)
		srvErr <- engine.Run(cfg.HTTPAddr)
	}()

	select {
	case <-ctx.Done():
		log.Info("shutdown signal received, gracefully shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = shutdownCtx
	case err := <-srvErr:
		if err != nil {
			log.Error("server error", "error", err)
			panic("server error: " + err.Error())
		}
	}
}

func newEmailSender(cfg *config.Config, log *logger.Logger) email.Sender {
	if !cfg.GetEmailEnabled() {
		log.Warn("SMTP_HOST not configured; outgoing email disabled")
		return email.NoopSender{}
	}
	return email.NewSMTPSender(
		cfg.GetSMTPHost(), cfg.GetSMTPPort(),
		cfg.GetSMTPUsername(), cfg.GetSMTPPassword(),
		cfg.GetEmailFromAddress(), cfg.GetEmailFromName(),
	)
}

// newDeliveryScheduler prefers the asynq queue and falls back to in-process
// delivery when no Redis is configured.
func newDeliveryScheduler(cfg config.SchedulerConfig, deliverer *scheduler.Deliverer, log *logger.Logger) quotesvc.DeliveryScheduler {
	if cfg.GetRedisURL() == "" {
		log.Warn("REDIS_URL not configured; delivering quotes synchronously")
		return scheduler.NewSyncScheduler(deliverer, log)
	}

	client, err := scheduler.NewClient(cfg)
	if err != nil {
		log.Error("failed to initialize delivery queue, delivering synchronously", "error", err)
		return scheduler.NewSyncScheduler(deliverer, log)
	}
	return client
}

func withRetry(ctx context.Context, log *logger.Logger, name string, attempts int, baseDelay time.Duration, fn func() error) error {
	if attempts < 1 {
		return fmt.Errorf("%s: invalid retry attempts", name)
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
