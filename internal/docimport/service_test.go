package docimport

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"angebot_backend/platform/apperr"
	"angebot_backend/platform/logger"

	"github.com/google/uuid"
)

func refCountries(names ...string) []CountryRef {
	refs := make([]CountryRef, len(names))
	for i, n := range names {
		refs[i] = CountryRef{ID: uuid.New(), Name: n}
	}
	return refs
}

func TestMatchCountries_AliasMapping(t *testing.T) {
	refs := refCountries("Germany", "Austria", "Czech Republic", "United Kingdom")

	cases := []struct {
		input string
		want  string
	}{
		{"Deutschland", "Germany"},
		{"germany", "Germany"},
		{"DE", "Germany"},
		{"Österreich", "Austria"},
		{"Tschechien", "Czech Republic"},
		{"Großbritannien", "United Kingdom"},
		{"UK", "United Kingdom"},
	}

	for _, tc := range cases {
		matched := MatchCountries([]string{tc.input}, refs)
		if len(matched) != 1 {
			t.Fatalf("%s: expected 1 match, got %d", tc.input, len(matched))
		}
		var wantID uuid.UUID
		for _, r := range refs {
			if r.Name == tc.want {
				wantID = r.ID
			}
		}
		if matched[0] != wantID {
			t.Errorf("%s: expected %s, got different country", tc.input, tc.want)
		}
	}
}

func TestMatchCountries_PartialAndDedupe(t *testing.T) {
	refs := refCountries("Czech Republic", "Germany")

	// "Czech" only matches via substring; "Deutschland"+"Germany" dedupe to one.
	matched := MatchCountries([]string{"Czech", "Deutschland", "Germany"}, refs)
	if len(matched) != 2 {
		t.Fatalf("expected 2 matches, got %d", len(matched))
	}
}

func TestMatchCountries_UnknownDropped(t *testing.T) {
	refs := refCountries("Germany")

	matched := MatchCountries([]string{"Atlantis", ""}, refs)
	if len(matched) != 0 {
		t.Fatalf("expected no matches, got %d", len(matched))
	}
}

// fakeExtractor returns a canned extraction.
type fakeExtractor struct {
	extraction Extraction
}

func (f *fakeExtractor) Extract(_ context.Context, _ string) (*Extraction, error) {
	return &f.extraction, nil
}

// fakeLibrary keys modules by lowercase name + price.
type fakeLibrary struct {
	modules   map[string]uuid.UUID
	countries []CountryRef
	created   int
}

func libKey(name string, price int64) string {
	return fmt.Sprintf("%s|%d", strings.ToLower(name), price)
}

func (f *fakeLibrary) FindModuleIDByNameAndPrice(_ context.Context, name string, price int64) (uuid.UUID, error) {
	if id, ok := f.modules[libKey(name, price)]; ok {
		return id, nil
	}
	return uuid.Nil, apperr.NotFound("module not found")
}

func (f *fakeLibrary) CreateModule(_ context.Context, c ModuleCandidate) (uuid.UUID, error) {
	id := uuid.New()
	f.modules[libKey(c.Name, c.UnitPrice)] = id
	f.created++
	return id, nil
}

func (f *fakeLibrary) ListCountries(_ context.Context) ([]CountryRef, error) {
	return f.countries, nil
}

func TestAnalyze_DedupesByNameAndPrice(t *testing.T) {
	lib := &fakeLibrary{
		modules:   map[string]uuid.UUID{},
		countries: refCountries("Germany", "France"),
	}
	existingID := uuid.New()
	lib.modules[libKey("Marktgröße", 2300)] = existingID

	ext := &fakeExtractor{extraction: Extraction{
		CustomerName: "Acme GmbH",
		ProjectTitle: "Dachfenster Europa",
		Countries:    []string{"Deutschland", "Frankreich", "Mars"},
		Modules: []ModuleCandidate{
			{Name: "marktgröße", UnitPrice: 2300},   // different case, same price
			{Name: "Marktgröße", UnitPrice: 2300},   // exact duplicate
			{Name: "TOP-Anbieter", UnitPrice: 1600}, // new
			{Name: "", UnitPrice: 100},              // skipped
		},
	}}

	svc := New(ext, lib, logger.New("development"))
	result, err := svc.Analyze(context.Background(), "some proposal text")
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}

	if result.ModulesExisting != 2 {
		t.Fatalf("expected 2 existing modules, got %d", result.ModulesExisting)
	}
	if result.ModulesCreated != 1 {
		t.Fatalf("expected 1 created module, got %d", result.ModulesCreated)
	}
	if lib.created != 1 {
		t.Fatalf("expected 1 library insert, got %d", lib.created)
	}
	if result.Modules[0].ID != existingID {
		t.Fatal("expected existing module id reused")
	}
	if result.CountriesFound != 3 || result.CountriesMatched != 2 {
		t.Fatalf("expected 3 found / 2 matched, got %d / %d", result.CountriesFound, result.CountriesMatched)
	}
	if result.CustomerName != "Acme GmbH" || result.ProjectTitle != "Dachfenster Europa" {
		t.Fatalf("expected quote data passed through, got %+v", result)
	}
}

func TestAnalyze_EmptyDocument(t *testing.T) {
	svc := New(&fakeExtractor{}, &fakeLibrary{modules: map[string]uuid.UUID{}}, logger.New("development"))

	_, err := svc.Analyze(context.Background(), "   ")
	if !apperr.Is(err, apperr.KindBadRequest) {
		t.Fatalf("expected bad request, got %v", err)
	}
}
