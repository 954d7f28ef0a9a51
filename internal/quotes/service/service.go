package service

import (
	"context"
	"fmt"
	"time"

	"angebot_backend/internal/events"
	"angebot_backend/internal/quotes/repository"
	"angebot_backend/internal/quotes/transport"
	"angebot_backend/platform/apperr"
	"angebot_backend/platform/logger"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// Service provides business logic for quotes
type Service struct {
	store     Store
	catalog   CatalogReader
	log       *logger.Logger
	narrative NarrativeGenerator // optional — nil skips text generation
	scheduler DeliveryScheduler  // optional — nil disables email delivery
	renderer  PDFRenderer        // optional — nil disables PDF rendering
	bus       events.Bus         // optional
}

// New creates a new quotes service
func New(store Store, catalog CatalogReader, log *logger.Logger) *Service {
	return &Service{store: store, catalog: catalog, log: log}
}

// SetNarrativeGenerator injects the LLM text generator.
func (s *Service) SetNarrativeGenerator(g NarrativeGenerator) { s.narrative = g }

// SetDeliveryScheduler injects the delivery job scheduler.
func (s *Service) SetDeliveryScheduler(d DeliveryScheduler) { s.scheduler = d }

// SetPDFRenderer injects the PDF renderer.
func (s *Service) SetPDFRenderer(r PDFRenderer) { s.renderer = r }

// SetEventBus injects the domain event bus.
func (s *Service) SetEventBus(bus events.Bus) { s.bus = bus }

// resolvedModule pairs a request line with its catalog module and the price
// that actually enters the calculation.
type resolvedModule struct {
	info     ModuleInfo
	quantity int
	override Override
	price    int64 // per-unit, after override
}

// resolveModules looks up the requested modules and applies overrides.
// Inactive modules resolve normally so existing quotes survive soft deletes.
func (s *Service) resolveModules(ctx context.Context, reqs []transport.QuoteModuleRequest) ([]resolvedModule, error) {
	ids := make([]uuid.UUID, len(reqs))
	for i, m := range reqs {
		ids[i] = m.ModuleID
	}

	infos, err := s.catalog.GetModulesByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("resolve modules: %w", err)
	}
	byID := make(map[uuid.UUID]ModuleInfo, len(infos))
	for _, info := range infos {
		byID[info.ID] = info
	}

	resolved := make([]resolvedModule, len(reqs))
	for i, m := range reqs {
		info, ok := byID[m.ModuleID]
		if !ok {
			return nil, apperr.NotFound(fmt.Sprintf("module %s not found", m.ModuleID))
		}
		override, err := OverrideFromWire(m.OverrideType, m.OverrideValue)
		if err != nil {
			return nil, err
		}
		quantity := m.Quantity
		if quantity < 1 {
			quantity = 1
		}
		resolved[i] = resolvedModule{
			info:     info,
			quantity: quantity,
			override: override,
			price:    override.Apply(info.UnitPrice),
		}
	}
	return resolved, nil
}

func breakdownOf(resolved []resolvedModule, countryCount int, mode transport.DeliveryMode) transport.Breakdown {
	prices := make([]int64, 0, len(resolved))
	for _, m := range resolved {
		prices = append(prices, m.price*int64(m.quantity))
	}
	return CalculatePrice(prices, countryCount, mode)
}

// Calculate previews the price of a module/country selection without
// persisting anything.
func (s *Service) Calculate(ctx context.Context, req transport.CalculateRequest) (*transport.Breakdown, error) {
	resolved, err := s.resolveModules(ctx, req.Modules)
	if err != nil {
		return nil, err
	}
	b := breakdownOf(resolved, len(req.CountryIDs), req.DeliveryMode)
	return &b, nil
}

// Create creates a new quote in draft, computing the breakdown server-side
// and generating narrative texts when a generator is configured.
func (s *Service) Create(ctx context.Context, creatorID uuid.UUID, req transport.CreateQuoteRequest) (*transport.CreateQuoteResponse, error) {
	resolved, err := s.resolveModules(ctx, req.Modules)
	if err != nil {
		return nil, err
	}
	countries, err := s.catalog.GetCountriesByIDs(ctx, req.CountryIDs)
	if err != nil {
		return nil, fmt.Errorf("resolve countries: %w", err)
	}
	if len(countries) != len(req.CountryIDs) {
		return nil, apperr.NotFound("one or more countries not found")
	}

	breakdown := breakdownOf(resolved, len(req.CountryIDs), req.DeliveryMode)
	narrative := s.generateNarrative(ctx, req.CustomerName, req.ProjectTitle, resolved, countries, req.DeliveryMode)

	now := time.Now()
	quote := repository.Quote{
		ID:                  uuid.New(),
		CustomerName:        req.CustomerName,
		ProjectTitle:        req.ProjectTitle,
		ValidUntil:          req.ValidUntil,
		ContactID:           req.ContactID,
		DeliveryMode:        string(req.DeliveryMode),
		Status:              string(transport.QuoteStatusDraft),
		BasePrice:           breakdown.BasePrice,
		DiscountPercent:     breakdown.DiscountPercent,
		PricePerCountry:     breakdown.PricePerCountry,
		GrandTotal:          breakdown.GrandTotal,
		CountryCount:        breakdown.CountryCount,
		CompanyIntroduction: narrative.CompanyIntroduction,
		MethodologyText:     narrative.MethodologyText,
		CustomerIntroText:   narrative.CustomerIntroText,
		CreatedBy:           creatorID,
		CreatedAt:           now,
		UpdatedAt:           now,
	}

	if err := s.store.CreateWithLinks(ctx, &quote, moduleLinks(quote.ID, req.Modules), req.CountryIDs); err != nil {
		return nil, err
	}
	return &transport.CreateQuoteResponse{QuoteID: quote.ID}, nil
}

// generateNarrative asks the LLM for proposal prose. Any failure is logged
// and swallowed: quotes must never depend on the generator being up.
func (s *Service) generateNarrative(ctx context.Context, customer, project string, resolved []resolvedModule, countries []CountryInfo, mode transport.DeliveryMode) Narrative {
	if s.narrative == nil {
		return Narrative{}
	}

	moduleNames := make([]string, len(resolved))
	for i, m := range resolved {
		moduleNames[i] = m.info.Name
	}
	countryNames := make([]string, len(countries))
	for i, c := range countries {
		countryNames[i] = c.Name
	}

	n, err := s.narrative.Generate(ctx, NarrativeInput{
		CustomerName: customer,
		ProjectTitle: project,
		ModuleNames:  moduleNames,
		CountryNames: countryNames,
		DeliveryMode: string(mode),
	})
	if err != nil {
		s.log.Warn("narrative generation failed", "error", err, "customer", customer)
		return Narrative{}
	}
	return *n
}

func moduleLinks(quoteID uuid.UUID, reqs []transport.QuoteModuleRequest) []repository.QuoteModule {
	links := make([]repository.QuoteModule, len(reqs))
	for i, m := range reqs {
		quantity := m.Quantity
		if quantity < 1 {
			quantity = 1
		}
		var overrideType *string
		if m.OverrideType != "" {
			t := m.OverrideType
			overrideType = &t
		}
		links[i] = repository.QuoteModule{
			QuoteID:       quoteID,
			ModuleID:      m.ModuleID,
			Quantity:      quantity,
			OverrideType:  overrideType,
			OverrideValue: m.OverrideValue,
			Position:      i,
		}
	}
	return links
}

// Update edits a quote in place. When the request asks for a version, the
// pre-edit state is snapshotted into the ledger first, so the latest version
// always shows what the quote looked like before this edit.
func (s *Service) Update(ctx context.Context, id uuid.UUID, actorName string, req transport.UpdateQuoteRequest) error {
	existing, err := s.store.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if req.CreateVersion {
		var reason *string
		if req.ChangeReason != "" {
			reason = &req.ChangeReason
		}
		var author *string
		if actorName != "" {
			author = &actorName
		}
		if _, _, err := s.store.CreateVersion(ctx, id, reason, author); err != nil {
			return err
		}
	}

	resolved, err := s.resolveModules(ctx, req.Modules)
	if err != nil {
		return err
	}
	countries, err := s.catalog.GetCountriesByIDs(ctx, req.CountryIDs)
	if err != nil {
		return fmt.Errorf("resolve countries: %w", err)
	}
	if len(countries) != len(req.CountryIDs) {
		return apperr.NotFound("one or more countries not found")
	}

	breakdown := breakdownOf(resolved, len(req.CountryIDs), req.DeliveryMode)

	quote := *existing
	quote.CustomerName = req.CustomerName
	quote.ProjectTitle = req.ProjectTitle
	quote.ValidUntil = req.ValidUntil
	quote.ContactID = req.ContactID
	quote.DeliveryMode = string(req.DeliveryMode)
	quote.BasePrice = breakdown.BasePrice
	quote.DiscountPercent = breakdown.DiscountPercent
	quote.PricePerCountry = breakdown.PricePerCountry
	quote.GrandTotal = breakdown.GrandTotal
	quote.CountryCount = breakdown.CountryCount
	quote.UpdatedAt = time.Now()

	return s.store.UpdateWithLinks(ctx, &quote, moduleLinks(id, req.Modules), req.CountryIDs)
}

// Get retrieves a quote with its links. Module and country links are fetched
// in parallel after the header confirms the quote exists.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*transport.QuoteDetailResponse, error) {
	quote, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	var (
		links      []repository.QuoteModule
		countryIDs []uuid.UUID
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		links, err = s.store.GetModuleLinks(gctx, id)
		return err
	})
	g.Go(func() error {
		var err error
		countryIDs, err = s.store.GetCountryLinks(gctx, id)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	modules, err := s.moduleResponses(ctx, links)
	if err != nil {
		return nil, err
	}

	return &transport.QuoteDetailResponse{
		QuoteResponse: toQuoteResponse(quote),
		Modules:       modules,
		CountryIDs:    countryIDs,
	}, nil
}

func (s *Service) moduleResponses(ctx context.Context, links []repository.QuoteModule) ([]transport.QuoteModuleResponse, error) {
	if len(links) == 0 {
		return []transport.QuoteModuleResponse{}, nil
	}

	ids := make([]uuid.UUID, len(links))
	for i, l := range links {
		ids[i] = l.ModuleID
	}
	infos, err := s.catalog.GetModulesByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("resolve modules: %w", err)
	}
	byID := make(map[uuid.UUID]ModuleInfo, len(infos))
	for _, info := range infos {
		byID[info.ID] = info
	}

	out := make([]transport.QuoteModuleResponse, len(links))
	for i, l := range links {
		resp := transport.QuoteModuleResponse{
			ModuleID:      l.ModuleID,
			Quantity:      l.Quantity,
			OverrideValue: l.OverrideValue,
		}
		if l.OverrideType != nil {
			resp.OverrideType = *l.OverrideType
		}
		if info, ok := byID[l.ModuleID]; ok {
			resp.Name = info.Name
			override, err := OverrideFromWire(resp.OverrideType, l.OverrideValue)
			if err == nil {
				resp.ResolvedPrice = override.Apply(info.UnitPrice)
			}
		}
		out[i] = resp
	}
	return out, nil
}

// List retrieves a page of quote headers, newest first.
func (s *Service) List(ctx context.Context, status *string, search string, page, pageSize int) (*transport.ListQuotesResponse, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}

	result, err := s.store.List(ctx, repository.ListParams{
		Status:   status,
		Search:   search,
		Page:     page,
		PageSize: pageSize,
	})
	if err != nil {
		return nil, err
	}

	items := make([]transport.QuoteResponse, len(result.Items))
	for i, q := range result.Items {
		items[i] = toQuoteResponse(&q)
	}
	return &transport.ListQuotesResponse{
		Items:      items,
		Total:      result.Total,
		Page:       result.Page,
		PageSize:   result.PageSize,
		TotalPages: result.TotalPages,
	}, nil
}

// UpdateStatus sets the status of a quote. Any of the known statuses can be
// assigned directly; transitions are not restricted.
func (s *Service) UpdateStatus(ctx context.Context, id uuid.UUID, status transport.QuoteStatus) error {
	existing, err := s.store.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.store.UpdateStatus(ctx, id, string(status)); err != nil {
		return err
	}

	if s.bus != nil && existing.Status != string(status) {
		s.bus.Publish(ctx, events.QuoteStatusChanged{
			BaseEvent: events.NewBaseEvent(),
			QuoteID:   id,
			OldStatus: existing.Status,
			NewStatus: string(status),
		})
	}
	return nil
}

// Delete removes a quote together with its links and version history.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	return s.store.Delete(ctx, id)
}

// Duplicate copies a quote into a new draft. Terms, links and stored prices
// are carried over verbatim; only name and title can be replaced.
func (s *Service) Duplicate(ctx context.Context, id uuid.UUID, creatorID uuid.UUID, req transport.DuplicateQuoteRequest) (*transport.CreateQuoteResponse, error) {
	existing, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	links, err := s.store.GetModuleLinks(ctx, id)
	if err != nil {
		return nil, err
	}
	countryIDs, err := s.store.GetCountryLinks(ctx, id)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	dup := *existing
	dup.ID = uuid.New()
	dup.Status = string(transport.QuoteStatusDraft)
	dup.CreatedBy = creatorID
	dup.CreatedAt = now
	dup.UpdatedAt = now
	if req.CustomerName != "" {
		dup.CustomerName = req.CustomerName
	}
	if req.ProjectTitle != "" {
		dup.ProjectTitle = req.ProjectTitle
	}

	newLinks := make([]repository.QuoteModule, len(links))
	for i, l := range links {
		l.QuoteID = dup.ID
		newLinks[i] = l
	}

	if err := s.store.CreateWithLinks(ctx, &dup, newLinks, countryIDs); err != nil {
		return nil, err
	}
	return &transport.CreateQuoteResponse{QuoteID: dup.ID}, nil
}

// Send enqueues delivery of a quote by email. The job renders the PDF,
// archives it and sends the mail; status becomes sent only after success.
func (s *Service) Send(ctx context.Context, id uuid.UUID, req transport.SendQuoteRequest) error {
	if s.scheduler == nil {
		return apperr.Internal("quote delivery is not configured")
	}
	if _, err := s.store.GetByID(ctx, id); err != nil {
		return err
	}
	if err := s.scheduler.EnqueueQuoteDelivery(ctx, id, req.RecipientEmail); err != nil {
		return fmt.Errorf("enqueue quote delivery: %w", err)
	}
	return nil
}

// RenderPDF renders the proposal document for a quote on demand.
func (s *Service) RenderPDF(ctx context.Context, id uuid.UUID) ([]byte, error) {
	if s.renderer == nil {
		return nil, apperr.Internal("pdf rendering is not configured")
	}
	data, err := s.renderData(ctx, id)
	if err != nil {
		return nil, err
	}
	pdf, err := s.renderer.RenderQuotePDF(ctx, *data)
	if err != nil {
		return nil, fmt.Errorf("render quote pdf: %w", err)
	}
	return pdf, nil
}

// renderData assembles everything the PDF template needs.
func (s *Service) renderData(ctx context.Context, id uuid.UUID) (*RenderData, error) {
	quote, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	links, err := s.store.GetModuleLinks(ctx, id)
	if err != nil {
		return nil, err
	}
	countryIDs, err := s.store.GetCountryLinks(ctx, id)
	if err != nil {
		return nil, err
	}

	moduleIDs := make([]uuid.UUID, len(links))
	for i, l := range links {
		moduleIDs[i] = l.ModuleID
	}
	infos, err := s.catalog.GetModulesByIDs(ctx, moduleIDs)
	if err != nil {
		return nil, fmt.Errorf("resolve modules: %w", err)
	}
	names := make(map[uuid.UUID]string, len(infos))
	for _, info := range infos {
		names[info.ID] = info.Name
	}

	countries, err := s.catalog.GetCountriesByIDs(ctx, countryIDs)
	if err != nil {
		return nil, fmt.Errorf("resolve countries: %w", err)
	}
	countryNames := make([]string, len(countries))
	for i, c := range countries {
		countryNames[i] = c.Name
	}

	return &RenderData{
		Quote:        *quote,
		ModuleNames:  names,
		ModuleLinks:  links,
		CountryNames: countryNames,
	}, nil
}

func toQuoteResponse(q *repository.Quote) transport.QuoteResponse {
	return transport.QuoteResponse{
		ID:           q.ID,
		CustomerName: q.CustomerName,
		ProjectTitle: q.ProjectTitle,
		ValidUntil:   q.ValidUntil,
		ContactID:    q.ContactID,
		DeliveryMode: transport.DeliveryMode(q.DeliveryMode),
		Status:       transport.QuoteStatus(q.Status),
		Breakdown: transport.Breakdown{
			BasePrice:       q.BasePrice,
			DiscountPercent: q.DiscountPercent,
			PricePerCountry: q.PricePerCountry,
			GrandTotal:      q.GrandTotal,
			CountryCount:    q.CountryCount,
		},
		CompanyIntroduction: q.CompanyIntroduction,
		MethodologyText:     q.MethodologyText,
		CustomerIntroText:   q.CustomerIntroText,
		CreatedBy:           q.CreatedBy,
		CreatedAt:           q.CreatedAt,
		UpdatedAt:           q.UpdatedAt,
	}
}
