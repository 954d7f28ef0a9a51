// Package adapters wires cross-module ports so domain packages never import
// each other directly.
package adapters

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	catrepo "angebot_backend/internal/catalog/repository"
	quotesvc "angebot_backend/internal/quotes/service"
)

// CatalogReader adapts the catalog repository for the quotes domain,
// satisfying the quotes service's CatalogReader port.
type CatalogReader struct {
	repo *catrepo.Repo
}

// NewCatalogReader creates a new catalog reader adapter.
func NewCatalogReader(repo *catrepo.Repo) *CatalogReader {
	return &CatalogReader{repo: repo}
}

// GetModulesByIDs resolves modules by ID, including inactive ones.
func (a *CatalogReader) GetModulesByIDs(ctx context.Context, ids []uuid.UUID) ([]quotesvc.ModuleInfo, error) {
	modules, err := a.repo.GetModulesByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("catalog adapter: get modules: %w", err)
	}

	out := make([]quotesvc.ModuleInfo, len(modules))
	for i, m := range modules {
		out[i] = quotesvc.ModuleInfo{
			ID:        m.ID,
			Name:      m.Name,
			UnitPrice: m.UnitPrice,
			Active:    m.Active,
		}
	}
	return out, nil
}

// GetCountriesByIDs resolves countries by ID.
func (a *CatalogReader) GetCountriesByIDs(ctx context.Context, ids []uuid.UUID) ([]quotesvc.CountryInfo, error) {
	countries, err := a.repo.GetCountriesByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("catalog adapter: get countries: %w", err)
	}

	out := make([]quotesvc.CountryInfo, len(countries))
	for i, c := range countries {
		out[i] = quotesvc.CountryInfo{ID: c.ID, Name: c.Name}
	}
	return out, nil
}

// Compile-time check against the quotes port.
var _ quotesvc.CatalogReader = (*CatalogReader)(nil)
