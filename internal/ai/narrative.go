package ai

import (
	"context"
	"fmt"
	"strings"
)

// NarrativeRequest is the quote context the prose generator works from.
type NarrativeRequest struct {
	CustomerName string
	ProjectTitle string
	ModuleNames  []string
	CountryNames []string
	DeliveryMode string
}

// NarrativeResult holds the generated proposal texts. CustomerIntro is nil
// when no customer news is available.
type NarrativeResult struct {
	CompanyIntroduction string
	MethodologyText     string
	CustomerIntro       *string
}

// GenerateNarrative produces the company introduction and methodology texts
// for a proposal, plus a news-based customer introduction when news exists.
func (c *Client) GenerateNarrative(ctx context.Context, req NarrativeRequest) (*NarrativeResult, error) {
	intro, err := c.generateText(ctx, companyIntroPrompt(req))
	if err != nil {
		return nil, fmt.Errorf("company introduction: %w", err)
	}

	methodology, err := c.generateText(ctx, methodologyPrompt(req))
	if err != nil {
		return nil, fmt.Errorf("methodology: %w", err)
	}

	result := &NarrativeResult{
		CompanyIntroduction: intro,
		MethodologyText:     methodology,
	}

	// Customer news lookup is a stub for now; without news there is no
	// customer-specific introduction.
	if news := c.lookupCustomerNews(ctx, req.CustomerName); news != "" {
		customerIntro, err := c.generateText(ctx, customerIntroPrompt(req, news))
		if err != nil {
			return nil, fmt.Errorf("customer introduction: %w", err)
		}
		result.CustomerIntro = &customerIntro
	}

	return result, nil
}

// lookupCustomerNews will eventually run a web search for recent customer
// news. It returns empty until that exists.
func (c *Client) lookupCustomerNews(_ context.Context, _ string) string {
	return ""
}

func companyIntroPrompt(req NarrativeRequest) string {
	return fmt.Sprintf(`Du bist ein professioneller Texter für ein Marktforschungsunternehmen im Bauprodukte-Sektor.

Erstelle eine professionelle Firmenvorstellung für ein Angebot an den Kunden %q für das Projekt %q.

Die Firmenvorstellung soll:
- Vertrauen aufbauen durch Betonung von Erfahrung und Expertise
- Die Methodenkompetenz hervorheben
- Auf die spezifische Aufgabenstellung eingehen
- 3-4 Absätze umfassen
- Professionell und sachlich formuliert sein

Kontext:
- Kunde: %s
- Projekt: %s
- Analysebereiche: %s
- Länder: %s

Schreibe NUR den Text der Firmenvorstellung, ohne Überschriften oder zusätzliche Formatierung.`,
		req.CustomerName, req.ProjectTitle,
		req.CustomerName, req.ProjectTitle,
		strings.Join(req.ModuleNames, ", "), strings.Join(req.CountryNames, ", "))
}

func methodologyPrompt(req NarrativeRequest) string {
	return fmt.Sprintf(`Du bist ein professioneller Texter für ein Marktforschungsunternehmen.

Erstelle eine detaillierte Beschreibung der Erhebungsmethode für ein Marktanalyse-Projekt.

Das Projekt umfasst:
- Kunde: %s
- Projekt: %s
- Analysebereiche: %s
- Länder: %s

Die Methodikbeschreibung soll:
- Den triangulatorischen Ansatz (Primärerhebungen in Industrie, Handel, Verarbeitung) erklären
- Die Qualitätssicherung durch Expertenabstimmung betonen
- Auf die spezifischen Analysebereiche eingehen
- Vertrauen in die Datenqualität aufbauen
- 2-3 Absätze umfassen
- Fachlich fundiert aber verständlich formuliert sein

Schreibe NUR den Methodiktext, ohne Überschriften oder zusätzliche Formatierung.`,
		req.CustomerName, req.ProjectTitle,
		strings.Join(req.ModuleNames, ", "), strings.Join(req.CountryNames, ", "))
}

func customerIntroPrompt(req NarrativeRequest, news string) string {
	return fmt.Sprintf(`Du bist ein professioneller Texter für ein Marktforschungsunternehmen.

Erstelle eine kurze, kundenspezifische Einleitung für ein Angebot, die auf aktuelle Entwicklungen beim Kunden eingeht.

Kunde: %s
Projekt: %s
Aktuelle News: %s

Die Einleitung soll:
- Die aktuellen Entwicklungen beim Kunden aufgreifen
- Einen Bezug zur angebotenen Marktanalyse herstellen
- 1-2 Absätze umfassen

Schreibe NUR den Einleitungstext, ohne Überschriften oder zusätzliche Formatierung.`,
		req.CustomerName, req.ProjectTitle, news)
}
