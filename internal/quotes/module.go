// Package quotes provides the quote (Angebot) domain module: pricing,
// versioning, duplication and delivery of proposals.
package quotes

import (
	"angebot_backend/internal/events"
	apphttp "angebot_backend/internal/http"
	"angebot_backend/internal/quotes/handler"
	"angebot_backend/internal/quotes/repository"
	"angebot_backend/internal/quotes/service"
	"angebot_backend/platform/logger"
	"angebot_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module represents the quotes domain module
type Module struct {
	handler *handler.Handler
	service *service.Service
}

// NewModule creates a new quotes module with all dependencies wired
func NewModule(pool *pgxpool.Pool, catalog service.CatalogReader, log *logger.Logger, eventBus events.Bus, val *validator.Validator) *Module {
	repo := repository.New(pool)
	svc := service.New(repo, catalog, log)
	svc.SetEventBus(eventBus)

	return &Module{
		handler: handler.New(svc, val),
		service: svc,
	}
}

// Name returns the module name for logging
func (m *Module) Name() string {
	return "quotes"
}

// Service returns the service layer for external use
func (m *Module) Service() *service.Service {
	return m.service
}

// RegisterRoutes registers the module's routes
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	m.handler.RegisterRoutes(ctx.Protected.Group("/quotes"))

	// Price preview carries no stored data and needs no auth.
	m.handler.RegisterPublicRoutes(ctx.V1.Group("/quotes"))
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
