package service

import (
	"context"
	"strings"
	"testing"

	"angebot_backend/internal/catalog/repository"
	"angebot_backend/internal/catalog/transport"
	"angebot_backend/platform/apperr"

	"github.com/google/uuid"
)

type fakeStore struct {
	modules  map[uuid.UUID]repository.Module
	contacts map[uuid.UUID]repository.Contact
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		modules:  map[uuid.UUID]repository.Module{},
		contacts: map[uuid.UUID]repository.Contact{},
	}
}

func (f *fakeStore) CreateModule(_ context.Context, m *repository.Module) error {
	for _, existing := range f.modules {
		if strings.EqualFold(existing.Name, m.Name) && existing.UnitPrice == m.UnitPrice {
			return apperr.Conflict("a module with this name and price already exists")
		}
	}
	f.modules[m.ID] = *m
	return nil
}

func (f *fakeStore) UpdateModule(_ context.Context, m *repository.Module) error {
	if _, ok := f.modules[m.ID]; !ok {
		return apperr.NotFound("module not found")
	}
	f.modules[m.ID] = *m
	return nil
}

func (f *fakeStore) GetModuleByID(_ context.Context, id uuid.UUID) (*repository.Module, error) {
	m, ok := f.modules[id]
	if !ok {
		return nil, apperr.NotFound("module not found")
	}
	return &m, nil
}

func (f *fakeStore) GetModulesByIDs(_ context.Context, ids []uuid.UUID) ([]repository.Module, error) {
	var out []repository.Module
	for _, id := range ids {
		if m, ok := f.modules[id]; ok {
			out = append(out, m)
		}
	}
	return out, nil
}

func (f *fakeStore) FindModuleByNameAndPrice(_ context.Context, name string, unitPrice int64) (*repository.Module, error) {
	for _, m := range f.modules {
		if strings.EqualFold(m.Name, name) && m.UnitPrice == unitPrice {
			return &m, nil
		}
	}
	return nil, apperr.NotFound("module not found")
}

func (f *fakeStore) ListModules(_ context.Context, params repository.ListModulesParams) ([]repository.Module, error) {
	var out []repository.Module
	for _, m := range f.modules {
		if !params.IncludeInactive && !m.Active {
			continue
		}
		out = append(out, m)
	}
	return out, nil
}

func (f *fakeStore) DeactivateModule(_ context.Context, id uuid.UUID) error {
	m, ok := f.modules[id]
	if !ok {
		return apperr.NotFound("module not found")
	}
	m.Active = false
	f.modules[id] = m
	return nil
}

func (f *fakeStore) ListCountries(_ context.Context, _ bool) ([]repository.Country, error) {
	return nil, nil
}

func (f *fakeStore) GetCountriesByIDs(_ context.Context, _ []uuid.UUID) ([]repository.Country, error) {
	return nil, nil
}

func (f *fakeStore) CreateContact(_ context.Context, c *repository.Contact) error {
	f.contacts[c.ID] = *c
	return nil
}

func (f *fakeStore) UpdateContact(_ context.Context, c *repository.Contact) error {
	if _, ok := f.contacts[c.ID]; !ok {
		return apperr.NotFound("contact not found")
	}
	f.contacts[c.ID] = *c
	return nil
}

func (f *fakeStore) GetContactByID(_ context.Context, id uuid.UUID) (*repository.Contact, error) {
	c, ok := f.contacts[id]
	if !ok {
		return nil, apperr.NotFound("contact not found")
	}
	return &c, nil
}

func (f *fakeStore) ListContacts(_ context.Context) ([]repository.Contact, error) {
	var out []repository.Contact
	for _, c := range f.contacts {
		out = append(out, c)
	}
	return out, nil
}

func TestCreateModule_DuplicateNamePriceConflicts(t *testing.T) {
	svc := New(newFakeStore())

	req := transport.CreateModuleRequest{Name: "Brand Awareness", UnitPrice: 2300}
	if _, err := svc.CreateModule(context.Background(), req); err != nil {
		t.Fatalf("first create: %v", err)
	}

	_, err := svc.CreateModule(context.Background(), req)
	if !apperr.Is(err, apperr.KindConflict) {
		t.Fatalf("expected conflict, got %v", err)
	}

	// Same name at a different price is allowed.
	req.UnitPrice = 2500
	if _, err := svc.CreateModule(context.Background(), req); err != nil {
		t.Fatalf("create with different price: %v", err)
	}
}

func TestDeleteModule_SoftDeletesOnly(t *testing.T) {
	store := newFakeStore()
	svc := New(store)

	created, err := svc.CreateModule(context.Background(), transport.CreateModuleRequest{Name: "Ad Testing", UnitPrice: 1600})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if err := svc.DeleteModule(context.Background(), created.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}

	// Still resolvable by ID, just inactive.
	m, err := svc.GetModule(context.Background(), created.ID)
	if err != nil {
		t.Fatalf("get after delete: %v", err)
	}
	if m.Active {
		t.Fatal("expected module to be inactive")
	}

	active, err := svc.ListModules(context.Background(), transport.ListModulesParams{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(active) != 0 {
		t.Fatalf("expected empty active list, got %d", len(active))
	}

	all, err := svc.ListModules(context.Background(), transport.ListModulesParams{IncludeInactive: true})
	if err != nil {
		t.Fatalf("list inactive: %v", err)
	}
	if len(all) != 1 {
		t.Fatalf("expected 1 module including inactive, got %d", len(all))
	}
}

func TestDuplicateModule_MarksCopy(t *testing.T) {
	store := newFakeStore()
	svc := New(store)

	created, err := svc.CreateModule(context.Background(), transport.CreateModuleRequest{Name: "Concept Test", UnitPrice: 900})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := svc.DeleteModule(context.Background(), created.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}

	dup, err := svc.DuplicateModule(context.Background(), created.ID)
	if err != nil {
		t.Fatalf("duplicate: %v", err)
	}
	if dup.Name != "Concept Test (Kopie)" {
		t.Fatalf("expected marked copy name, got %q", dup.Name)
	}
	if !dup.Active {
		t.Fatal("expected duplicate to start active")
	}
	if dup.ID == created.ID {
		t.Fatal("expected a new id")
	}
}

func TestUpdateModule_PartialUpdate(t *testing.T) {
	svc := New(newFakeStore())

	created, err := svc.CreateModule(context.Background(), transport.CreateModuleRequest{
		Name: "Brand Awareness", Description: "baseline", UnitPrice: 2300, Category: "tracking",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	price := int64(2400)
	updated, err := svc.UpdateModule(context.Background(), created.ID, transport.UpdateModuleRequest{UnitPrice: &price})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.UnitPrice != 2400 {
		t.Fatalf("expected price 2400, got %d", updated.UnitPrice)
	}
	if updated.Name != "Brand Awareness" || updated.Description != "baseline" || updated.Category != "tracking" {
		t.Fatalf("expected untouched fields preserved, got %+v", updated)
	}
}

func TestCreateContact_NormalizesPhone(t *testing.T) {
	store := newFakeStore()
	svc := New(store)

	created, err := svc.CreateContact(context.Background(), transport.CreateContactRequest{
		Name:  "Anna Schmidt",
		Email: "anna@example.com",
		Phone: "089 1234567",
	})
	if err != nil {
		t.Fatalf("create contact: %v", err)
	}
	if created.Phone != "+49891234567" {
		t.Fatalf("expected E.164 phone, got %q", created.Phone)
	}
}
