package service

import (
	"context"
	"sort"
	"testing"
	"time"

	"angebot_backend/internal/quotes/repository"
	"angebot_backend/internal/quotes/transport"
	"angebot_backend/platform/apperr"
	"angebot_backend/platform/logger"

	"github.com/google/uuid"
)

// fakeStore is an in-memory Store for service tests.
type fakeStore struct {
	quotes        map[uuid.UUID]repository.Quote
	moduleLinks   map[uuid.UUID][]repository.QuoteModule
	countryLinks  map[uuid.UUID][]uuid.UUID
	versions      map[uuid.UUID]repository.QuoteVersion
	versionMods   map[uuid.UUID][]repository.VersionModule
	versionCtries map[uuid.UUID][]uuid.UUID
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		quotes:        map[uuid.UUID]repository.Quote{},
		moduleLinks:   map[uuid.UUID][]repository.QuoteModule{},
		countryLinks:  map[uuid.UUID][]uuid.UUID{},
		versions:      map[uuid.UUID]repository.QuoteVersion{},
		versionMods:   map[uuid.UUID][]repository.VersionModule{},
		versionCtries: map[uuid.UUID][]uuid.UUID{},
	}
}

func (f *fakeStore) CreateWithLinks(_ context.Context, q *repository.Quote, modules []repository.QuoteModule, countryIDs []uuid.UUID) error {
	f.quotes[q.ID] = *q
	f.moduleLinks[q.ID] = append([]repository.QuoteModule(nil), modules...)
	f.countryLinks[q.ID] = append([]uuid.UUID(nil), countryIDs...)
	return nil
}

func (f *fakeStore) UpdateWithLinks(_ context.Context, q *repository.Quote, modules []repository.QuoteModule, countryIDs []uuid.UUID) error {
	if _, ok := f.quotes[q.ID]; !ok {
		return apperr.NotFound("quote not found")
	}
	f.quotes[q.ID] = *q
	f.moduleLinks[q.ID] = append([]repository.QuoteModule(nil), modules...)
	f.countryLinks[q.ID] = append([]uuid.UUID(nil), countryIDs...)
	return nil
}

func (f *fakeStore) GetByID(_ context.Context, id uuid.UUID) (*repository.Quote, error) {
	q, ok := f.quotes[id]
	if !ok {
		return nil, apperr.NotFound("quote not found")
	}
	return &q, nil
}

func (f *fakeStore) GetModuleLinks(_ context.Context, id uuid.UUID) ([]repository.QuoteModule, error) {
	return append([]repository.QuoteModule(nil), f.moduleLinks[id]...), nil
}

func (f *fakeStore) GetCountryLinks(_ context.Context, id uuid.UUID) ([]uuid.UUID, error) {
	return append([]uuid.UUID(nil), f.countryLinks[id]...), nil
}

func (f *fakeStore) List(_ context.Context, params repository.ListParams) (*repository.ListResult, error) {
	var items []repository.Quote
	for _, q := range f.quotes {
		items = append(items, q)
	}
	sort.Slice(items, func(i, j int) bool { return items[i].CreatedAt.After(items[j].CreatedAt) })
	return &repository.ListResult{Items: items, Total: len(items), Page: params.Page, PageSize: params.PageSize, TotalPages: 1}, nil
}

func (f *fakeStore) UpdateStatus(_ context.Context, id uuid.UUID, status string) error {
	q, ok := f.quotes[id]
	if !ok {
		return apperr.NotFound("quote not found")
	}
	q.Status = status
	f.quotes[id] = q
	return nil
}

func (f *fakeStore) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := f.quotes[id]; !ok {
		return apperr.NotFound("quote not found")
	}
	delete(f.quotes, id)
	return nil
}

func (f *fakeStore) CreateVersion(_ context.Context, quoteID uuid.UUID, changeReason *string, createdBy *string) (uuid.UUID, int, error) {
	q, ok := f.quotes[quoteID]
	if !ok {
		return uuid.Nil, 0, apperr.NotFound("quote not found")
	}

	next := 1
	for _, v := range f.versions {
		if v.QuoteID == quoteID && v.VersionNumber >= next {
			next = v.VersionNumber + 1
		}
	}

	versionID := uuid.New()
	f.versions[versionID] = repository.QuoteVersion{
		ID:                  versionID,
		QuoteID:             quoteID,
		VersionNumber:       next,
		CustomerName:        q.CustomerName,
		ProjectTitle:        q.ProjectTitle,
		ValidUntil:          q.ValidUntil,
		ContactID:           q.ContactID,
		DeliveryMode:        q.DeliveryMode,
		BasePrice:           q.BasePrice,
		DiscountPercent:     q.DiscountPercent,
		PricePerCountry:     q.PricePerCountry,
		GrandTotal:          q.GrandTotal,
		CountryCount:        q.CountryCount,
		CompanyIntroduction: q.CompanyIntroduction,
		MethodologyText:     q.MethodologyText,
		ChangeReason:        changeReason,
		CreatedBy:           createdBy,
		CreatedAt:           time.Now(),
	}
	for _, m := range f.moduleLinks[quoteID] {
		f.versionMods[versionID] = append(f.versionMods[versionID], repository.VersionModule{
			VersionID:     versionID,
			ModuleID:      m.ModuleID,
			Quantity:      m.Quantity,
			OverrideType:  m.OverrideType,
			OverrideValue: m.OverrideValue,
			Position:      m.Position,
		})
	}
	f.versionCtries[versionID] = append([]uuid.UUID(nil), f.countryLinks[quoteID]...)
	return versionID, next, nil
}

func (f *fakeStore) ListVersions(_ context.Context, quoteID uuid.UUID) ([]repository.QuoteVersion, error) {
	var out []repository.QuoteVersion
	for _, v := range f.versions {
		if v.QuoteID == quoteID {
			out = append(out, v)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].VersionNumber > out[j].VersionNumber })
	return out, nil
}

func (f *fakeStore) GetVersion(_ context.Context, versionID uuid.UUID) (*repository.QuoteVersion, error) {
	v, ok := f.versions[versionID]
	if !ok {
		return nil, apperr.NotFound("quote version not found")
	}
	return &v, nil
}

func (f *fakeStore) GetVersionModules(_ context.Context, versionID uuid.UUID) ([]repository.VersionModule, error) {
	return append([]repository.VersionModule(nil), f.versionMods[versionID]...), nil
}

func (f *fakeStore) GetVersionCountries(_ context.Context, versionID uuid.UUID) ([]uuid.UUID, error) {
	return append([]uuid.UUID(nil), f.versionCtries[versionID]...), nil
}

// fakeCatalog resolves every ID that was registered with it.
type fakeCatalog struct {
	modules   map[uuid.UUID]ModuleInfo
	countries map[uuid.UUID]CountryInfo
}

func newFakeCatalog() *fakeCatalog {
	return &fakeCatalog{modules: map[uuid.UUID]ModuleInfo{}, countries: map[uuid.UUID]CountryInfo{}}
}

func (f *fakeCatalog) addModule(name string, price int64) uuid.UUID {
	id := uuid.New()
	f.modules[id] = ModuleInfo{ID: id, Name: name, UnitPrice: price, Active: true}
	return id
}

func (f *fakeCatalog) addCountry(name string) uuid.UUID {
	id := uuid.New()
	f.countries[id] = CountryInfo{ID: id, Name: name}
	return id
}

func (f *fakeCatalog) GetModulesByIDs(_ context.Context, ids []uuid.UUID) ([]ModuleInfo, error) {
	var out []ModuleInfo
	for _, id := range ids {
		if m, ok := f.modules[id]; ok {
			out = append(out, m)
		}
	}
	return out, nil
}

func (f *fakeCatalog) GetCountriesByIDs(_ context.Context, ids []uuid.UUID) ([]CountryInfo, error) {
	var out []CountryInfo
	for _, id := range ids {
		if c, ok := f.countries[id]; ok {
			out = append(out, c)
		}
	}
	return out, nil
}

func newTestService() (*Service, *fakeStore, *fakeCatalog) {
	store := newFakeStore()
	catalog := newFakeCatalog()
	return New(store, catalog, logger.New("development")), store, catalog
}

func createTestQuote(t *testing.T, svc *Service, catalog *fakeCatalog) (uuid.UUID, transport.CreateQuoteRequest) {
	t.Helper()

	moduleID := catalog.addModule("Brand Awareness", 2300)
	contactID := uuid.New()
	req := transport.CreateQuoteRequest{
		CustomerName: "Acme GmbH",
		ProjectTitle: "Brand Tracker 2026",
		ValidUntil:   time.Now().AddDate(0, 1, 0),
		ContactID:    &contactID,
		DeliveryMode: transport.DeliveryModeOnce,
		Modules:      []transport.QuoteModuleRequest{{ModuleID: moduleID, Quantity: 1}},
		CountryIDs:   []uuid.UUID{catalog.addCountry("Germany"), catalog.addCountry("France")},
	}

	resp, err := svc.Create(context.Background(), uuid.New(), req)
	if err != nil {
		t.Fatalf("create quote: %v", err)
	}
	return resp.QuoteID, req
}

func TestCreate_PersistsBreakdown(t *testing.T) {
	svc, store, catalog := newTestService()
	quoteID, _ := createTestQuote(t, svc, catalog)

	q := store.quotes[quoteID]
	if q.BasePrice != 2300 {
		t.Fatalf("expected base price 2300, got %d", q.BasePrice)
	}
	// 2 countries → 4% tier
	if q.DiscountPercent != 4 {
		t.Fatalf("expected discount 4%%, got %d%%", q.DiscountPercent)
	}
	if q.GrandTotal != q.PricePerCountry*2 {
		t.Fatalf("grand total %d does not equal perCountry %d x 2", q.GrandTotal, q.PricePerCountry)
	}
	if q.Status != string(transport.QuoteStatusDraft) {
		t.Fatalf("expected draft status, got %s", q.Status)
	}
}

func TestCreate_ContactIsOptional(t *testing.T) {
	svc, store, catalog := newTestService()

	req := transport.CreateQuoteRequest{
		CustomerName: "Acme GmbH",
		ProjectTitle: "Tracker",
		ValidUntil:   time.Now().AddDate(0, 1, 0),
		DeliveryMode: transport.DeliveryModeOnce,
		Modules:      []transport.QuoteModuleRequest{{ModuleID: catalog.addModule("Usage & Attitude", 4100), Quantity: 1}},
		CountryIDs:   []uuid.UUID{catalog.addCountry("Germany")},
	}

	resp, err := svc.Create(context.Background(), uuid.New(), req)
	if err != nil {
		t.Fatalf("create without contact: %v", err)
	}
	if store.quotes[resp.QuoteID].ContactID != nil {
		t.Fatalf("expected nil contact, got %v", store.quotes[resp.QuoteID].ContactID)
	}

	detail, err := svc.Get(context.Background(), resp.QuoteID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if detail.ContactID != nil {
		t.Fatalf("expected nil contact in response, got %v", detail.ContactID)
	}
}

func TestCreate_UnknownModule(t *testing.T) {
	svc, _, catalog := newTestService()

	contactID := uuid.New()
	req := transport.CreateQuoteRequest{
		CustomerName: "Acme GmbH",
		ProjectTitle: "Tracker",
		ValidUntil:   time.Now().AddDate(0, 1, 0),
		ContactID:    &contactID,
		DeliveryMode: transport.DeliveryModeOnce,
		Modules:      []transport.QuoteModuleRequest{{ModuleID: uuid.New()}},
		CountryIDs:   []uuid.UUID{catalog.addCountry("Germany")},
	}

	_, err := svc.Create(context.Background(), uuid.New(), req)
	if !apperr.Is(err, apperr.KindNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestCalculate_AppliesOverrides(t *testing.T) {
	svc, _, catalog := newTestService()
	moduleID := catalog.addModule("Ad Testing", 2000)

	direct := int64(1500)
	got, err := svc.Calculate(context.Background(), transport.CalculateRequest{
		Modules:      []transport.QuoteModuleRequest{{ModuleID: moduleID, OverrideType: "direct", OverrideValue: &direct}},
		CountryIDs:   []uuid.UUID{uuid.New()},
		DeliveryMode: transport.DeliveryModeOnce,
	})
	if err != nil {
		t.Fatalf("calculate: %v", err)
	}
	if got.BasePrice != 1500 {
		t.Fatalf("expected overridden base 1500, got %d", got.BasePrice)
	}
}

func TestVersions_SnapshotIsIsolatedFromLaterEdits(t *testing.T) {
	svc, _, catalog := newTestService()
	quoteID, createReq := createTestQuote(t, svc, catalog)

	version, err := svc.CreateVersion(context.Background(), quoteID, "anna", transport.CreateVersionRequest{ChangeReason: "before rework"})
	if err != nil {
		t.Fatalf("create version: %v", err)
	}

	// Edit the quote after the snapshot: new module set, new country set.
	newModule := catalog.addModule("Concept Test", 900)
	updateReq := transport.UpdateQuoteRequest{
		CustomerName: "Acme Holding",
		ProjectTitle: createReq.ProjectTitle,
		ValidUntil:   createReq.ValidUntil,
		ContactID:    createReq.ContactID,
		DeliveryMode: transport.DeliveryModeFramework,
		Modules:      []transport.QuoteModuleRequest{{ModuleID: newModule, Quantity: 2}},
		CountryIDs:   []uuid.UUID{catalog.addCountry("Spain")},
	}
	if err := svc.Update(context.Background(), quoteID, "anna", updateReq); err != nil {
		t.Fatalf("update: %v", err)
	}

	detail, err := svc.GetVersion(context.Background(), version.VersionID)
	if err != nil {
		t.Fatalf("get version: %v", err)
	}
	if detail.CustomerName != "Acme GmbH" {
		t.Fatalf("snapshot customer changed: %s", detail.CustomerName)
	}
	if detail.DeliveryMode != transport.DeliveryModeOnce {
		t.Fatalf("snapshot delivery mode changed: %s", detail.DeliveryMode)
	}
	if len(detail.Modules) != 1 || detail.Modules[0].ModuleID != createReq.Modules[0].ModuleID {
		t.Fatalf("snapshot modules changed: %+v", detail.Modules)
	}
	if len(detail.CountryIDs) != 2 {
		t.Fatalf("snapshot countries changed: %v", detail.CountryIDs)
	}
}

func TestVersions_NumbersStartAtOneAndIncrease(t *testing.T) {
	svc, _, catalog := newTestService()
	quoteID, _ := createTestQuote(t, svc, catalog)

	for want := 1; want <= 3; want++ {
		resp, err := svc.CreateVersion(context.Background(), quoteID, "", transport.CreateVersionRequest{})
		if err != nil {
			t.Fatalf("create version %d: %v", want, err)
		}
		if resp.VersionNumber != want {
			t.Fatalf("expected version number %d, got %d", want, resp.VersionNumber)
		}
	}

	versions, err := svc.ListVersions(context.Background(), quoteID)
	if err != nil {
		t.Fatalf("list versions: %v", err)
	}
	if len(versions) != 3 {
		t.Fatalf("expected 3 versions, got %d", len(versions))
	}
	// Newest first.
	for i, v := range versions {
		if v.VersionNumber != 3-i {
			t.Fatalf("expected version %d at index %d, got %d", 3-i, i, v.VersionNumber)
		}
	}
}

func TestVersions_UnknownQuote(t *testing.T) {
	svc, _, _ := newTestService()

	if _, err := svc.ListVersions(context.Background(), uuid.New()); !apperr.Is(err, apperr.KindNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	if _, err := svc.CreateVersion(context.Background(), uuid.New(), "", transport.CreateVersionRequest{}); !apperr.Is(err, apperr.KindNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	if _, err := svc.GetVersion(context.Background(), uuid.New()); !apperr.Is(err, apperr.KindNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestUpdate_WithVersionSnapshotsPreEditState(t *testing.T) {
	svc, store, catalog := newTestService()
	quoteID, createReq := createTestQuote(t, svc, catalog)

	updateReq := transport.UpdateQuoteRequest{
		CustomerName:  "Renamed GmbH",
		ProjectTitle:  createReq.ProjectTitle,
		ValidUntil:    createReq.ValidUntil,
		ContactID:     createReq.ContactID,
		DeliveryMode:  createReq.DeliveryMode,
		Modules:       createReq.Modules,
		CountryIDs:    createReq.CountryIDs,
		CreateVersion: true,
		ChangeReason:  "customer renamed",
	}
	if err := svc.Update(context.Background(), quoteID, "bob", updateReq); err != nil {
		t.Fatalf("update: %v", err)
	}

	versions, err := svc.ListVersions(context.Background(), quoteID)
	if err != nil {
		t.Fatalf("list versions: %v", err)
	}
	if len(versions) != 1 {
		t.Fatalf("expected 1 version, got %d", len(versions))
	}
	if versions[0].CustomerName != "Acme GmbH" {
		t.Fatalf("expected pre-edit name in snapshot, got %s", versions[0].CustomerName)
	}
	if versions[0].ChangeReason == nil || *versions[0].ChangeReason != "customer renamed" {
		t.Fatalf("expected change reason, got %v", versions[0].ChangeReason)
	}
	if store.quotes[quoteID].CustomerName != "Renamed GmbH" {
		t.Fatalf("expected quote updated, got %s", store.quotes[quoteID].CustomerName)
	}
}

func TestDuplicate_ResetsStatusToDraft(t *testing.T) {
	svc, store, catalog := newTestService()
	quoteID, _ := createTestQuote(t, svc, catalog)

	if err := svc.UpdateStatus(context.Background(), quoteID, transport.QuoteStatusSent); err != nil {
		t.Fatalf("update status: %v", err)
	}

	resp, err := svc.Duplicate(context.Background(), quoteID, uuid.New(), transport.DuplicateQuoteRequest{CustomerName: "Copy GmbH"})
	if err != nil {
		t.Fatalf("duplicate: %v", err)
	}

	dup := store.quotes[resp.QuoteID]
	if dup.Status != string(transport.QuoteStatusDraft) {
		t.Fatalf("expected draft status on duplicate, got %s", dup.Status)
	}
	if dup.CustomerName != "Copy GmbH" {
		t.Fatalf("expected renamed duplicate, got %s", dup.CustomerName)
	}
	original := store.quotes[quoteID]
	if dup.GrandTotal != original.GrandTotal {
		t.Fatalf("expected prices carried over, got %d vs %d", dup.GrandTotal, original.GrandTotal)
	}
	if len(store.moduleLinks[resp.QuoteID]) != len(store.moduleLinks[quoteID]) {
		t.Fatal("expected module links copied")
	}
}

func TestGet_ResolvesModuleNames(t *testing.T) {
	svc, _, catalog := newTestService()
	quoteID, createReq := createTestQuote(t, svc, catalog)

	detail, err := svc.Get(context.Background(), quoteID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if len(detail.Modules) != 1 {
		t.Fatalf("expected 1 module, got %d", len(detail.Modules))
	}
	if detail.Modules[0].Name != "Brand Awareness" {
		t.Fatalf("expected resolved module name, got %q", detail.Modules[0].Name)
	}
	if detail.Modules[0].ResolvedPrice != 2300 {
		t.Fatalf("expected resolved price 2300, got %d", detail.Modules[0].ResolvedPrice)
	}
	if len(detail.CountryIDs) != len(createReq.CountryIDs) {
		t.Fatalf("expected %d countries, got %d", len(createReq.CountryIDs), len(detail.CountryIDs))
	}
}
