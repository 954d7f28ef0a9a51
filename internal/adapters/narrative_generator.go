package adapters

import (
	"context"

	"angebot_backend/internal/ai"
	quotesvc "angebot_backend/internal/quotes/service"
)

// NarrativeGenerator adapts the Gemini client for the quotes domain,
// satisfying the quotes service's NarrativeGenerator port.
type NarrativeGenerator struct {
	client *ai.Client
}

// NewNarrativeGenerator creates a new narrative generator adapter.
func NewNarrativeGenerator(client *ai.Client) *NarrativeGenerator {
	return &NarrativeGenerator{client: client}
}

// Generate produces the proposal narrative texts.
func (a *NarrativeGenerator) Generate(ctx context.Context, input quotesvc.NarrativeInput) (*quotesvc.Narrative, error) {
	result, err := a.client.GenerateNarrative(ctx, ai.NarrativeRequest{
		CustomerName: input.CustomerName,
		ProjectTitle: input.ProjectTitle,
		ModuleNames:  input.ModuleNames,
		CountryNames: input.CountryNames,
		DeliveryMode: input.DeliveryMode,
	})
	if err != nil {
		return nil, err
	}

	return &quotesvc.Narrative{
		CompanyIntroduction: &result.CompanyIntroduction,
		MethodologyText:     &result.MethodologyText,
		CustomerIntroText:   result.CustomerIntro,
	}, nil
}

var _ quotesvc.NarrativeGenerator = (*NarrativeGenerator)(nil)
