package adapters

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"angebot_backend/internal/ai"
	catrepo "angebot_backend/internal/catalog/repository"
	"angebot_backend/internal/docimport"
)

// DocumentExtractor adapts the Gemini client for the document import,
// satisfying docimport.Extractor.
type DocumentExtractor struct {
	client *ai.Client
}

// NewDocumentExtractor creates a new document extractor adapter.
func NewDocumentExtractor(client *ai.Client) *DocumentExtractor {
	return &DocumentExtractor{client: client}
}

// Extract runs the structured extraction over the document text.
func (a *DocumentExtractor) Extract(ctx context.Context, documentText string) (*docimport.Extraction, error) {
	doc, err := a.client.ExtractQuoteDocument(ctx, documentText)
	if err != nil {
		return nil, fmt.Errorf("extractor adapter: %w", err)
	}

	modules := make([]docimport.ModuleCandidate, len(doc.Modules))
	for i, m := range doc.Modules {
		modules[i] = docimport.ModuleCandidate{
			Name:        m.Name,
			Description: m.Description,
			UnitPrice:   m.UnitPrice,
			Category:    m.Category,
		}
	}

	return &docimport.Extraction{
		Modules:      modules,
		CustomerName: doc.QuoteData.CustomerName,
		ProjectTitle: doc.QuoteData.ProjectTitle,
		Countries:    doc.QuoteData.Countries,
	}, nil
}

var _ docimport.Extractor = (*DocumentExtractor)(nil)

// ImportLibrary adapts the catalog repository for the document import,
// satisfying docimport.Library.
type ImportLibrary struct {
	repo *catrepo.Repo
}

// NewImportLibrary creates a new import library adapter.
func NewImportLibrary(repo *catrepo.Repo) *ImportLibrary {
	return &ImportLibrary{repo: repo}
}

// FindModuleIDByNameAndPrice looks for an existing module matching the
// candidate. Returns a not-found error when absent.
func (a *ImportLibrary) FindModuleIDByNameAndPrice(ctx context.Context, name string, unitPrice int64) (uuid.UUID, error) {
	m, err := a.repo.FindModuleByNameAndPrice(ctx, name, unitPrice)
	if err != nil {
		return uuid.Nil, err
	}
	return m.ID, nil
}

// CreateModule inserts an extracted module into the library.
func (a *ImportLibrary) CreateModule(ctx context.Context, candidate docimport.ModuleCandidate) (uuid.UUID, error) {
	now := time.Now()
	m := catrepo.Module{
		ID:          uuid.New(),
		Name:        candidate.Name,
		Description: candidate.Description,
		Scope:       []string{},
		Subpoints:   []string{},
		UnitPrice:   candidate.UnitPrice,
		Category:    candidate.Category,
		Active:      true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := a.repo.CreateModule(ctx, &m); err != nil {
		return uuid.Nil, err
	}
	return m.ID, nil
}

// ListCountries returns the reference countries for matching.
func (a *ImportLibrary) ListCountries(ctx context.Context) ([]docimport.CountryRef, error) {
	countries, err := a.repo.ListCountries(ctx, false)
	if err != nil {
		return nil, err
	}

	refs := make([]docimport.CountryRef, len(countries))
	for i, c := range countries {
		refs[i] = docimport.CountryRef{ID: c.ID, Name: c.Name}
	}
	return refs, nil
}

var _ docimport.Library = (*ImportLibrary)(nil)
