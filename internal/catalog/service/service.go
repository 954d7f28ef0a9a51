package service

import (
	"context"
	"time"

	"angebot_backend/internal/catalog/repository"
	"angebot_backend/internal/catalog/transport"
	"angebot_backend/platform/phone"

	"github.com/google/uuid"
)

// Store is the persistence surface the catalog service needs. Implemented by
// *repository.Repo.
type Store interface {
	CreateModule(ctx context.Context, m *repository.Module) error
	UpdateModule(ctx context.Context, m *repository.Module) error
	GetModuleByID(ctx context.Context, id uuid.UUID) (*repository.Module, error)
	GetModulesByIDs(ctx context.Context, ids []uuid.UUID) ([]repository.Module, error)
	FindModuleByNameAndPrice(ctx context.Context, name string, unitPrice int64) (*repository.Module, error)
	ListModules(ctx context.Context, params repository.ListModulesParams) ([]repository.Module, error)
	DeactivateModule(ctx context.Context, id uuid.UUID) error

	ListCountries(ctx context.Context, includeInactive bool) ([]repository.Country, error)
	GetCountriesByIDs(ctx context.Context, ids []uuid.UUID) ([]repository.Country, error)

	CreateContact(ctx context.Context, c *repository.Contact) error
	UpdateContact(ctx context.Context, c *repository.Contact) error
	GetContactByID(ctx context.Context, id uuid.UUID) (*repository.Contact, error)
	ListContacts(ctx context.Context) ([]repository.Contact, error)
}

// Service provides business logic for the module library, countries and
// contact persons.
type Service struct {
	store Store
}

// New creates a new catalog service
func New(store Store) *Service {
	return &Service{store: store}
}

// ── Modules ───────────────────────────────────────────────────────────────────

// CreateModule adds a module to the library.
func (s *Service) CreateModule(ctx context.Context, req transport.CreateModuleRequest) (*transport.ModuleResponse, error) {
	now := time.Now()
	m := repository.Module{
		ID:              uuid.New(),
		Name:            req.Name,
		Description:     req.Description,
		LongDescription: req.LongDescription,
		Scope:           emptyIfNil(req.Scope),
		Subpoints:       emptyIfNil(req.Subpoints),
		Methodology:     req.Methodology,
		UnitPrice:       req.UnitPrice,
		Category:        req.Category,
		SortOrder:       req.SortOrder,
		Active:          true,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := s.store.CreateModule(ctx, &m); err != nil {
		return nil, err
	}
	resp := toModuleResponse(&m)
	return &resp, nil
}

// UpdateModule applies a partial update to a module.
func (s *Service) UpdateModule(ctx context.Context, id uuid.UUID, req transport.UpdateModuleRequest) (*transport.ModuleResponse, error) {
	m, err := s.store.GetModuleByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		m.Name = *req.Name
	}
	if req.Description != nil {
		m.Description = *req.Description
	}
	if req.LongDescription != nil {
		m.LongDescription = *req.LongDescription
	}
	if req.Scope != nil {
		m.Scope = req.Scope
	}
	if req.Subpoints != nil {
		m.Subpoints = req.Subpoints
	}
	if req.Methodology != nil {
		m.Methodology = *req.Methodology
	}
	if req.UnitPrice != nil {
		m.UnitPrice = *req.UnitPrice
	}
	if req.Category != nil {
		m.Category = *req.Category
	}
	if req.SortOrder != nil {
		m.SortOrder = *req.SortOrder
	}
	if req.Active != nil {
		m.Active = *req.Active
	}
	m.UpdatedAt = time.Now()

	if err := s.store.UpdateModule(ctx, m); err != nil {
		return nil, err
	}
	resp := toModuleResponse(m)
	return &resp, nil
}

// GetModule retrieves a module, inactive ones included.
func (s *Service) GetModule(ctx context.Context, id uuid.UUID) (*transport.ModuleResponse, error) {
	m, err := s.store.GetModuleByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := toModuleResponse(m)
	return &resp, nil
}

// ListModules lists the module library.
func (s *Service) ListModules(ctx context.Context, params transport.ListModulesParams) ([]transport.ModuleResponse, error) {
	modules, err := s.store.ListModules(ctx, repository.ListModulesParams{
		Search:          params.Search,
		Category:        params.Category,
		IncludeInactive: params.IncludeInactive,
	})
	if err != nil {
		return nil, err
	}

	out := make([]transport.ModuleResponse, len(modules))
	for i, m := range modules {
		out[i] = toModuleResponse(&m)
	}
	return out, nil
}

// DuplicateModule copies a module under a marked name. The copy starts
// active regardless of the source's flag.
func (s *Service) DuplicateModule(ctx context.Context, id uuid.UUID) (*transport.ModuleResponse, error) {
	src, err := s.store.GetModuleByID(ctx, id)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	dup := *src
	dup.ID = uuid.New()
	dup.Name = src.Name + " (Kopie)"
	dup.Active = true
	dup.CreatedAt = now
	dup.UpdatedAt = now

	if err := s.store.CreateModule(ctx, &dup); err != nil {
		return nil, err
	}
	resp := toModuleResponse(&dup)
	return &resp, nil
}

// DeleteModule soft-deletes a module. Existing quotes keep their links.
func (s *Service) DeleteModule(ctx context.Context, id uuid.UUID) error {
	return s.store.DeactivateModule(ctx, id)
}

// ── Countries ─────────────────────────────────────────────────────────────────

// ListCountries lists the reference countries.
func (s *Service) ListCountries(ctx context.Context, includeInactive bool) ([]transport.CountryResponse, error) {
	countries, err := s.store.ListCountries(ctx, includeInactive)
	if err != nil {
		return nil, err
	}

	out := make([]transport.CountryResponse, len(countries))
	for i, c := range countries {
		out[i] = transport.CountryResponse{
			ID:        c.ID,
			Name:      c.Name,
			NameEN:    c.NameEN,
			ISOCode:   c.ISOCode,
			SortOrder: c.SortOrder,
			Active:    c.Active,
		}
	}
	return out, nil
}

// ── Contacts ──────────────────────────────────────────────────────────────────

// CreateContact adds a contact person. Phone numbers are normalized to E.164.
func (s *Service) CreateContact(ctx context.Context, req transport.CreateContactRequest) (*transport.ContactResponse, error) {
	now := time.Now()
	c := repository.Contact{
		ID:        uuid.New(),
		Name:      req.Name,
		Email:     req.Email,
		Phone:     normalizePhone(req.Phone),
		Position:  req.Position,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.store.CreateContact(ctx, &c); err != nil {
		return nil, err
	}
	resp := toContactResponse(&c)
	return &resp, nil
}

// UpdateContact applies a partial update to a contact person.
func (s *Service) UpdateContact(ctx context.Context, id uuid.UUID, req transport.UpdateContactRequest) (*transport.ContactResponse, error) {
	c, err := s.store.GetContactByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		c.Name = *req.Name
	}
	if req.Email != nil {
		c.Email = *req.Email
	}
	if req.Phone != nil {
		c.Phone = normalizePhone(*req.Phone)
	}
	if req.Position != nil {
		c.Position = *req.Position
	}
	c.UpdatedAt = time.Now()

	if err := s.store.UpdateContact(ctx, c); err != nil {
		return nil, err
	}
	resp := toContactResponse(c)
	return &resp, nil
}

// GetContact retrieves a contact person.
func (s *Service) GetContact(ctx context.Context, id uuid.UUID) (*transport.ContactResponse, error) {
	c, err := s.store.GetContactByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := toContactResponse(c)
	return &resp, nil
}

// ListContacts lists all contact persons.
func (s *Service) ListContacts(ctx context.Context) ([]transport.ContactResponse, error) {
	contacts, err := s.store.ListContacts(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]transport.ContactResponse, len(contacts))
	for i, c := range contacts {
		out[i] = toContactResponse(&c)
	}
	return out, nil
}

func normalizePhone(raw string) string {
	return phone.NormalizeE164(raw)
}

func emptyIfNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func toModuleResponse(m *repository.Module) transport.ModuleResponse {
	return transport.ModuleResponse{
		ID:              m.ID,
		Name:            m.Name,
		Description:     m.Description,
		LongDescription: m.LongDescription,
		Scope:           emptyIfNil(m.Scope),
		Subpoints:       emptyIfNil(m.Subpoints),
		Methodology:     m.Methodology,
		UnitPrice:       m.UnitPrice,
		Category:        m.Category,
		SortOrder:       m.SortOrder,
		Active:          m.Active,
		CreatedAt:       m.CreatedAt,
		UpdatedAt:       m.UpdatedAt,
	}
}

func toContactResponse(c *repository.Contact) transport.ContactResponse {
	return transport.ContactResponse{
		ID:        c.ID,
		Name:      c.Name,
		Email:     c.Email,
		Phone:     c.Phone,
		Position:  c.Position,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}
