package service

import (
	"context"

	"angebot_backend/internal/quotes/repository"

	"github.com/google/uuid"
)

// Store is the persistence surface the service needs. Implemented by
// *repository.Repository; tests substitute an in-memory fake.
type Store interface {
	CreateWithLinks(ctx context.Context, quote *repository.Quote, modules []repository.QuoteModule, countryIDs []uuid.UUID) error
	UpdateWithLinks(ctx context.Context, quote *repository.Quote, modules []repository.QuoteModule, countryIDs []uuid.UUID) error
	GetByID(ctx context.Context, id uuid.UUID) (*repository.Quote, error)
	GetModuleLinks(ctx context.Context, quoteID uuid.UUID) ([]repository.QuoteModule, error)
	GetCountryLinks(ctx context.Context, quoteID uuid.UUID) ([]uuid.UUID, error)
	List(ctx context.Context, params repository.ListParams) (*repository.ListResult, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status string) error
	Delete(ctx context.Context, id uuid.UUID) error
	CreateVersion(ctx context.Context, quoteID uuid.UUID, changeReason *string, createdBy *string) (uuid.UUID, int, error)
	ListVersions(ctx context.Context, quoteID uuid.UUID) ([]repository.QuoteVersion, error)
	GetVersion(ctx context.Context, versionID uuid.UUID) (*repository.QuoteVersion, error)
	GetVersionModules(ctx context.Context, versionID uuid.UUID) ([]repository.VersionModule, error)
	GetVersionCountries(ctx context.Context, versionID uuid.UUID) ([]uuid.UUID, error)
}

// ModuleInfo is the module data the quotes service needs from the catalog.
type ModuleInfo struct {
	ID        uuid.UUID
	Name      string
	UnitPrice int64
	Active    bool
}

// CountryInfo is the country data the quotes service needs from the catalog.
type CountryInfo struct {
	ID   uuid.UUID
	Name string
}

// CatalogReader resolves module and country references without importing the
// catalog domain. Implemented by an adapter in internal/adapters. Lookups
// include inactive modules so historical quote links keep resolving.
type CatalogReader interface {
	GetModulesByIDs(ctx context.Context, ids []uuid.UUID) ([]ModuleInfo, error)
	GetCountriesByIDs(ctx context.Context, ids []uuid.UUID) ([]CountryInfo, error)
}

// NarrativeInput is the quote context handed to the text generator.
type NarrativeInput struct {
	CustomerName string
	ProjectTitle string
	ModuleNames  []string
	CountryNames []string
	DeliveryMode string
}

// Narrative holds generated proposal prose. Fields are nil when generation
// was skipped or failed.
type Narrative struct {
	CompanyIntroduction *string
	MethodologyText     *string
	CustomerIntroText   *string
}

// NarrativeGenerator produces proposal prose. Optional: a nil generator and
// any generation error both leave the narrative fields empty.
type NarrativeGenerator interface {
	Generate(ctx context.Context, input NarrativeInput) (*Narrative, error)
}

// DeliveryScheduler enqueues the background job that renders, archives and
// emails a quote.
type DeliveryScheduler interface {
	EnqueueQuoteDelivery(ctx context.Context, quoteID uuid.UUID, recipientEmail string) error
}

// PDFRenderer turns a fully resolved quote into a PDF document.
type PDFRenderer interface {
	RenderQuotePDF(ctx context.Context, quote RenderData) ([]byte, error)
}

// RenderData is everything the PDF template needs.
type RenderData struct {
	Quote        repository.Quote
	ModuleNames  map[uuid.UUID]string
	ModuleLinks  []repository.QuoteModule
	CountryNames []string
}
