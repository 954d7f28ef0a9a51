package ai

import (
	"context"
	"encoding/json"
	"fmt"
)

// ExtractedModule is one service module found in an uploaded proposal.
type ExtractedModule struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	UnitPrice   int64  `json:"unitPrice"`
	Category    string `json:"category"`
}

// ExtractedQuoteData is the quote header data found in an uploaded proposal.
type ExtractedQuoteData struct {
	CustomerName string   `json:"customerName"`
	ProjectTitle string   `json:"projectTitle"`
	Countries    []string `json:"countries"`
}

// ExtractedDocument is the structured result of analyzing a proposal.
type ExtractedDocument struct {
	Modules   []ExtractedModule  `json:"modules"`
	QuoteData ExtractedQuoteData `json:"quoteData"`
}

// ExtractQuoteDocument analyzes proposal text and extracts the service
// modules and header data as structured JSON.
func (c *Client) ExtractQuoteDocument(ctx context.Context, documentText string) (*ExtractedDocument, error) {
	payload, err := c.generateJSON(ctx, extractionPrompt(documentText))
	if err != nil {
		return nil, err
	}

	var doc ExtractedDocument
	if err := json.Unmarshal([]byte(payload), &doc); err != nil {
		return nil, fmt.Errorf("parse extraction response: %w", err)
	}
	return &doc, nil
}

func extractionPrompt(documentText string) string {
	return fmt.Sprintf(`Du bist ein Experte für die Analyse von Marktanalyse-Angeboten.

Analysiere das folgende Angebots-Dokument und extrahiere:

1. Bausteine: Alle angebotenen Leistungsbausteine mit:
   - Name (z.B. "Marktgröße/-entwicklung", "TOP-Anbieter")
   - Beschreibung (kurze Erklärung des Bausteins)
   - Einzelpreis in EUR (nur Zahlen, keine Währung)
   - Kategorie (z.B. "Marktdaten", "Wettbewerb", "Distribution")

2. Angebotsdaten:
   - Kundenname
   - Projekttitel
   - Länder (Liste aller genannten Länder)

DOKUMENT:
%s

Antworte NUR mit einem JSON-Objekt in folgendem Format:
{
  "modules": [
    {
      "name": "Baustein-Name",
      "description": "Beschreibung",
      "unitPrice": 2300,
      "category": "Kategorie"
    }
  ],
  "quoteData": {
    "customerName": "Kundenname",
    "projectTitle": "Projekttitel",
    "countries": ["Deutschland", "Österreich"]
  }
}

Wichtig:
- Preise nur als Zahlen (ohne EUR, ohne Punkte/Kommas als Tausendertrennzeichen)
- Wenn Informationen fehlen, lasse Felder leer oder nutze leere Arrays
- Keine zusätzlichen Erklärungen, nur JSON`, documentText)
}
