package service

import (
	"context"

	"angebot_backend/internal/quotes/repository"
	"angebot_backend/internal/quotes/transport"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// CreateVersion snapshots the current quote state on explicit request.
func (s *Service) CreateVersion(ctx context.Context, quoteID uuid.UUID, actorName string, req transport.CreateVersionRequest) (*transport.CreateVersionResponse, error) {
	var reason *string
	if req.ChangeReason != "" {
		reason = &req.ChangeReason
	}
	var author *string
	if actorName != "" {
		author = &actorName
	}

	versionID, versionNumber, err := s.store.CreateVersion(ctx, quoteID, reason, author)
	if err != nil {
		return nil, err
	}
	return &transport.CreateVersionResponse{VersionID: versionID, VersionNumber: versionNumber}, nil
}

// ListVersions returns the version history of a quote, newest first. A quote
// without snapshots returns an empty list, an unknown quote returns not found.
func (s *Service) ListVersions(ctx context.Context, quoteID uuid.UUID) ([]transport.VersionSummary, error) {
	if _, err := s.store.GetByID(ctx, quoteID); err != nil {
		return nil, err
	}

	versions, err := s.store.ListVersions(ctx, quoteID)
	if err != nil {
		return nil, err
	}

	out := make([]transport.VersionSummary, len(versions))
	for i, v := range versions {
		out[i] = toVersionSummary(&v)
	}
	return out, nil
}

// GetVersion returns a single snapshot with its frozen module and country
// links, fetched in parallel.
func (s *Service) GetVersion(ctx context.Context, versionID uuid.UUID) (*transport.VersionDetailResponse, error) {
	version, err := s.store.GetVersion(ctx, versionID)
	if err != nil {
		return nil, err
	}

	var (
		modules    []repository.VersionModule
		countryIDs []uuid.UUID
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		modules, err = s.store.GetVersionModules(gctx, versionID)
		return err
	})
	g.Go(func() error {
		var err error
		countryIDs, err = s.store.GetVersionCountries(gctx, versionID)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	moduleResponses := make([]transport.VersionModuleResponse, len(modules))
	for i, m := range modules {
		resp := transport.VersionModuleResponse{
			ModuleID:      m.ModuleID,
			Quantity:      m.Quantity,
			OverrideValue: m.OverrideValue,
		}
		if m.OverrideType != nil {
			resp.OverrideType = *m.OverrideType
		}
		moduleResponses[i] = resp
	}
	if countryIDs == nil {
		countryIDs = []uuid.UUID{}
	}

	return &transport.VersionDetailResponse{
		VersionSummary:      toVersionSummary(version),
		CompanyIntroduction: version.CompanyIntroduction,
		MethodologyText:     version.MethodologyText,
		Modules:             moduleResponses,
		CountryIDs:          countryIDs,
	}, nil
}

func toVersionSummary(v *repository.QuoteVersion) transport.VersionSummary {
	return transport.VersionSummary{
		ID:            v.ID,
		QuoteID:       v.QuoteID,
		VersionNumber: v.VersionNumber,
		CustomerName:  v.CustomerName,
		ProjectTitle:  v.ProjectTitle,
		ValidUntil:    v.ValidUntil,
		ContactID:     v.ContactID,
		DeliveryMode:  transport.DeliveryMode(v.DeliveryMode),
		GrandTotal:    v.GrandTotal,
		ChangeReason:  v.ChangeReason,
		CreatedBy:     v.CreatedBy,
		CreatedAt:     v.CreatedAt,
	}
}
