// Package docimport analyzes uploaded proposal documents and imports the
// service modules they contain into the library.
package docimport

import (
	"context"
	"fmt"
	"strings"

	"angebot_backend/platform/apperr"
	"angebot_backend/platform/logger"

	"github.com/google/uuid"
)

// ModuleCandidate is a service module extracted from a document.
type ModuleCandidate struct {
	Name        string
	Description string
	UnitPrice   int64
	Category    string
}

// Extraction is the structured result of document analysis.
type Extraction struct {
	Modules      []ModuleCandidate
	CustomerName string
	ProjectTitle string
	Countries    []string
}

// Extractor turns raw document text into a structured extraction.
type Extractor interface {
	Extract(ctx context.Context, documentText string) (*Extraction, error)
}

// Library is the catalog surface the import needs: dedupe lookups, module
// creation and the country reference list.
type Library interface {
	FindModuleIDByNameAndPrice(ctx context.Context, name string, unitPrice int64) (uuid.UUID, error)
	CreateModule(ctx context.Context, candidate ModuleCandidate) (uuid.UUID, error)
	ListCountries(ctx context.Context) ([]CountryRef, error)
}

// Service provides the document import workflow.
type Service struct {
	extractor Extractor
	library   Library
	log       *logger.Logger
}

// New creates a new document import service
func New(extractor Extractor, library Library, log *logger.Logger) *Service {
	return &Service{extractor: extractor, library: library, log: log}
}

// ImportedModule reports one module processed by the import.
type ImportedModule struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	UnitPrice int64     `json:"unitPrice"`
	Created   bool      `json:"created"`
}

// AnalyzeResult is the outcome of a document analysis.
type AnalyzeResult struct {
	CustomerName      string           `json:"customerName"`
	ProjectTitle      string           `json:"projectTitle"`
	Modules           []ImportedModule `json:"modules"`
	MatchedCountryIDs []uuid.UUID      `json:"matchedCountryIds"`
	CountriesFound    int              `json:"countriesFound"`
	CountriesMatched  int              `json:"countriesMatched"`
	ModulesCreated    int              `json:"modulesCreated"`
	ModulesExisting   int              `json:"modulesExisting"`
}

// Analyze extracts modules and quote data from document text. Extracted
// modules are deduplicated against the library by lowercase name plus unit
// price; unknown ones are created. Country names are matched against the
// reference list.
func (s *Service) Analyze(ctx context.Context, documentText string) (*AnalyzeResult, error) {
	if strings.TrimSpace(documentText) == "" {
		return nil, apperr.BadRequest("document text is empty")
	}

	extraction, err := s.extractor.Extract(ctx, documentText)
	if err != nil {
		return nil, fmt.Errorf("extract document: %w", err)
	}

	result := &AnalyzeResult{
		CustomerName:      extraction.CustomerName,
		ProjectTitle:      extraction.ProjectTitle,
		Modules:           []ImportedModule{},
		MatchedCountryIDs: []uuid.UUID{},
		CountriesFound:    len(extraction.Countries),
	}

	for _, candidate := range extraction.Modules {
		if strings.TrimSpace(candidate.Name) == "" {
			continue
		}

		imported, err := s.importModule(ctx, candidate)
		if err != nil {
			return nil, err
		}
		if imported.Created {
			result.ModulesCreated++
		} else {
			result.ModulesExisting++
		}
		result.Modules = append(result.Modules, imported)
	}

	countries, err := s.library.ListCountries(ctx)
	if err != nil {
		return nil, fmt.Errorf("list countries: %w", err)
	}
	result.MatchedCountryIDs = MatchCountries(extraction.Countries, countries)
	result.CountriesMatched = len(result.MatchedCountryIDs)

	s.log.Info("document analyzed",
		"modules_created", result.ModulesCreated,
		"modules_existing", result.ModulesExisting,
		"countries_matched", result.CountriesMatched,
	)
	return result, nil
}

func (s *Service) importModule(ctx context.Context, candidate ModuleCandidate) (ImportedModule, error) {
	existingID, err := s.library.FindModuleIDByNameAndPrice(ctx, candidate.Name, candidate.UnitPrice)
	if err == nil {
		return ImportedModule{ID: existingID, Name: candidate.Name, UnitPrice: candidate.UnitPrice, Created: false}, nil
	}
	if !apperr.Is(err, apperr.KindNotFound) {
		return ImportedModule{}, fmt.Errorf("dedupe lookup: %w", err)
	}

	id, err := s.library.CreateModule(ctx, candidate)
	if err != nil {
		return ImportedModule{}, fmt.Errorf("create module: %w", err)
	}
	return ImportedModule{ID: id, Name: candidate.Name, UnitPrice: candidate.UnitPrice, Created: true}, nil
}
