package pdf

import (
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"angebot_backend/internal/quotes/repository"
	quotesvc "angebot_backend/internal/quotes/service"
)

func TestFormatEuro(t *testing.T) {
	cases := []struct {
		amount int64
		want   string
	}{
		{0, "0 €"},
		{900, "900 €"},
		{4608, "4.608 €"},
		{13824, "13.824 €"},
		{1000000, "1.000.000 €"},
		{-4608, "-4.608 €"},
	}
	for _, tc := range cases {
		if got := formatEuro(tc.amount); got != tc.want {
			t.Fatalf("formatEuro(%d) = %q, want %q", tc.amount, got, tc.want)
		}
	}
}

func TestBuildHTML(t *testing.T) {
	r, err := NewRenderer(nil, "https://angebot.example.com/")
	if err != nil {
		t.Fatalf("NewRenderer: %v", err)
	}

	quoteID := uuid.New()
	moduleID := uuid.New()
	overrideID := uuid.New()
	overrideType := "direct"
	overrideValue := int64(1500)
	intro := "Wir sind ein Marktforschungsinstitut."

	data := quotesvc.RenderData{
		Quote: repository.Quote{
			ID:                  quoteID,
			CustomerName:        "Beispiel GmbH",
			ProjectTitle:        "Marktstudie Photovoltaik",
			ValidUntil:          time.Date(2026, 10, 15, 0, 0, 0, 0, time.UTC),
			DeliveryMode:        "once",
			Status:              "draft",
			BasePrice:           4800,
			DiscountPercent:     4,
			PricePerCountry:     4608,
			GrandTotal:          13824,
			CountryCount:        3,
			CompanyIntroduction: &intro,
		},
		ModuleNames: map[uuid.UUID]string{
			moduleID:   "Marktgröße & Prognose",
			overrideID: "Wettbewerbsanalyse",
		},
		ModuleLinks: []repository.QuoteModule{
			{ModuleID: moduleID, Quantity: 1},
			{ModuleID: overrideID, Quantity: 2, OverrideType: &overrideType, OverrideValue: &overrideValue},
		},
		CountryNames: []string{"Deutschland", "Frankreich", "Italien"},
	}

	html, err := r.buildHTML(data)
	if err != nil {
		t.Fatalf("buildHTML: %v", err)
	}
	out := string(html)

	for _, want := range []string{
		"Beispiel GmbH",
		"Marktstudie Photovoltaik",
		"Marktgröße &amp; Prognose",
		"Wettbewerbsanalyse",
		"Sonderpreis 1.500 €",
		"4.608 €",
		"13.824 €",
		"Deutschland",
		"Einmalige Lieferung",
		"15.10.2026",
		"Wir sind ein Marktforschungsinstitut.",
		"data:image/png;base64,",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("rendered HTML missing %q", want)
		}
	}

	if strings.Contains(out, "Methodik") {
		t.Fatalf("empty methodology section should be omitted")
	}
}
