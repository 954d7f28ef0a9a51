// Package catalog provides the reference data module: the service module
// library (Bausteine), target countries and contact persons.
package catalog

import (
	apphttp "angebot_backend/internal/http"
	"angebot_backend/internal/catalog/handler"
	"angebot_backend/internal/catalog/repository"
	"angebot_backend/internal/catalog/service"
	"angebot_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module represents the catalog domain module
type Module struct {
	handler *handler.Handler
	service *service.Service
	repo    *repository.Repo
}

// NewModule creates a new catalog module with all dependencies wired
func NewModule(pool *pgxpool.Pool, val *validator.Validator) *Module {
	repo := repository.New(pool)
	svc := service.New(repo)

	return &Module{
		handler: handler.New(svc, val),
		service: svc,
		repo:    repo,
	}
}

// Name returns the module name for logging
func (m *Module) Name() string {
	return "catalog"
}

// Service returns the service layer for external use
func (m *Module) Service() *service.Service {
	return m.service
}

// Repository returns the repository for adapter wiring
func (m *Module) Repository() *repository.Repo {
	return m.repo
}

// RegisterRoutes registers the module's routes
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	m.handler.RegisterModuleRoutes(ctx.Protected.Group("/modules"))
	m.handler.RegisterCountryRoutes(ctx.Protected.Group("/countries"))
	m.handler.RegisterContactRoutes(ctx.Protected.Group("/contacts"))
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
