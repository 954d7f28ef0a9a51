package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"angebot_backend/platform/apperr"
)

const (
	moduleNotFoundMessage  = "module not found"
	contactNotFoundMessage = "contact not found"

	uniqueViolationCode = "23505"
)

// Module is the database model for a service module (Baustein).
type Module struct {
	ID              uuid.UUID `db:"id"`
	Name            string    `db:"name"`
	Description     string    `db:"description"`
	LongDescription string    `db:"long_description"`
	Scope           []string  `db:"scope"`
	Subpoints       []string  `db:"subpoints"`
	Methodology     string    `db:"methodology"`
	UnitPrice       int64     `db:"unit_price"`
	Category        string    `db:"category"`
	SortOrder       int       `db:"sort_order"`
	Active          bool      `db:"active"`
	CreatedAt       time.Time `db:"created_at"`
	UpdatedAt       time.Time `db:"updated_at"`
}

// Country is the database model for a target country.
type Country struct {
	ID        uuid.UUID `db:"id"`
	Name      string    `db:"name"`
	NameEN    string    `db:"name_en"`
	ISOCode   string    `db:"iso_code"`
	SortOrder int       `db:"sort_order"`
	Active    bool      `db:"active"`
}

// Contact is the database model for a contact person (Ansprechpartner).
type Contact struct {
	ID        uuid.UUID `db:"id"`
	Name      string    `db:"name"`
	Email     string    `db:"email"`
	Phone     string    `db:"phone"`
	Position  string    `db:"position"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

// ListModulesParams filters the module list.
type ListModulesParams struct {
	Search          string
	Category        string
	IncludeInactive bool
}

// Repo implements the catalog repository.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new catalog repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

const moduleColumns = `id, name, description, long_description, scope, subpoints,
		methodology, unit_price, category, sort_order, active, created_at, updated_at`

func scanModule(row pgx.Row) (*Module, error) {
	var m Module
	err := row.Scan(
		&m.ID, &m.Name, &m.Description, &m.LongDescription, &m.Scope, &m.Subpoints,
		&m.Methodology, &m.UnitPrice, &m.Category, &m.SortOrder, &m.Active, &m.CreatedAt, &m.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// CreateModule inserts a service module. The unique index on (lower(name),
// unit_price) turns duplicates into a conflict.
func (r *Repo) CreateModule(ctx context.Context, m *Module) error {
	query := `
		INSERT INTO modules (
			id, name, description, long_description, scope, subpoints,
			methodology, unit_price, category, sort_order, active, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`

	_, err := r.pool.Exec(ctx, query,
		m.ID, m.Name, m.Description, m.LongDescription, m.Scope, m.Subpoints,
		m.Methodology, m.UnitPrice, m.Category, m.SortOrder, m.Active, m.CreatedAt, m.UpdatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode {
			return apperr.Conflict("a module with this name and price already exists")
		}
		return fmt.Errorf("create module: %w", err)
	}
	return nil
}

// UpdateModule writes a full module row.
func (r *Repo) UpdateModule(ctx context.Context, m *Module) error {
	query := `
		UPDATE modules SET
			name = $2, description = $3, long_description = $4, scope = $5,
			subpoints = $6, methodology = $7, unit_price = $8, category = $9,
			sort_order = $10, active = $11, updated_at = $12
		WHERE id = $1`

	result, err := r.pool.Exec(ctx, query,
		m.ID, m.Name, m.Description, m.LongDescription, m.Scope,
		m.Subpoints, m.Methodology, m.UnitPrice, m.Category,
		m.SortOrder, m.Active, m.UpdatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode {
			return apperr.Conflict("a module with this name and price already exists")
		}
		return fmt.Errorf("update module: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperr.NotFound(moduleNotFoundMessage)
	}
	return nil
}

// GetModuleByID retrieves a module regardless of its active flag.
func (r *Repo) GetModuleByID(ctx context.Context, id uuid.UUID) (*Module, error) {
	m, err := scanModule(r.pool.QueryRow(ctx, `SELECT `+moduleColumns+` FROM modules WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound(moduleNotFoundMessage)
		}
		return nil, fmt.Errorf("get module: %w", err)
	}
	return m, nil
}

// GetModulesByIDs retrieves modules by ID, including inactive ones so
// existing quote links keep resolving.
func (r *Repo) GetModulesByIDs(ctx context.Context, ids []uuid.UUID) ([]Module, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	query := `SELECT ` + moduleColumns + ` FROM modules WHERE id = ANY($1)`
	rows, err := r.pool.Query(ctx, query, ids)
	if err != nil {
		return nil, fmt.Errorf("query modules by ids: %w", err)
	}
	defer rows.Close()

	var modules []Module
	for rows.Next() {
		m, err := scanModule(rows)
		if err != nil {
			return nil, fmt.Errorf("scan module: %w", err)
		}
		modules = append(modules, *m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate modules: %w", err)
	}
	return modules, nil
}

// FindModuleByNameAndPrice matches a module case-insensitively by name plus
// exact unit price. Used by the document import to deduplicate.
func (r *Repo) FindModuleByNameAndPrice(ctx context.Context, name string, unitPrice int64) (*Module, error) {
	query := `SELECT ` + moduleColumns + ` FROM modules WHERE lower(name) = $1 AND unit_price = $2`

	m, err := scanModule(r.pool.QueryRow(ctx, query, strings.ToLower(name), unitPrice))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound(moduleNotFoundMessage)
		}
		return nil, fmt.Errorf("find module: %w", err)
	}
	return m, nil
}

// ListModules retrieves modules, active-only unless asked otherwise.
func (r *Repo) ListModules(ctx context.Context, params ListModulesParams) ([]Module, error) {
	var searchParam interface{}
	if params.Search != "" {
		searchParam = "%" + params.Search + "%"
	}
	var categoryParam interface{}
	if params.Category != "" {
		categoryParam = params.Category
	}

	query := `SELECT ` + moduleColumns + `
		FROM modules
		WHERE ($1 OR active)
			AND ($2::text IS NULL OR name ILIKE $2 OR description ILIKE $2)
			AND ($3::text IS NULL OR category = $3)
		ORDER BY sort_order ASC, name ASC`

	rows, err := r.pool.Query(ctx, query, params.IncludeInactive, searchParam, categoryParam)
	if err != nil {
		return nil, fmt.Errorf("list modules: %w", err)
	}
	defer rows.Close()

	var modules []Module
	for rows.Next() {
		m, err := scanModule(rows)
		if err != nil {
			return nil, fmt.Errorf("scan module: %w", err)
		}
		modules = append(modules, *m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate modules: %w", err)
	}
	return modules, nil
}

// DeactivateModule soft-deletes a module by clearing its active flag.
// Quote links referencing the module stay intact.
func (r *Repo) DeactivateModule(ctx context.Context, id uuid.UUID) error {
	result, err := r.pool.Exec(ctx, `UPDATE modules SET active = false, updated_at = $2 WHERE id = $1`, id, time.Now())
	if err != nil {
		return fmt.Errorf("deactivate module: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperr.NotFound(moduleNotFoundMessage)
	}
	return nil
}

// ── Countries ─────────────────────────────────────────────────────────────────

const countryColumns = `id, name, name_en, iso_code, sort_order, active`

// ListCountries retrieves the reference countries, active-only unless asked
// otherwise.
func (r *Repo) ListCountries(ctx context.Context, includeInactive bool) ([]Country, error) {
	query := `SELECT ` + countryColumns + ` FROM countries WHERE ($1 OR active) ORDER BY sort_order ASC, name ASC`

	rows, err := r.pool.Query(ctx, query, includeInactive)
	if err != nil {
		return nil, fmt.Errorf("list countries: %w", err)
	}
	defer rows.Close()

	var countries []Country
	for rows.Next() {
		var c Country
		if err := rows.Scan(&c.ID, &c.Name, &c.NameEN, &c.ISOCode, &c.SortOrder, &c.Active); err != nil {
			return nil, fmt.Errorf("scan country: %w", err)
		}
		countries = append(countries, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate countries: %w", err)
	}
	return countries, nil
}

// GetCountriesByIDs retrieves countries by ID.
func (r *Repo) GetCountriesByIDs(ctx context.Context, ids []uuid.UUID) ([]Country, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	query := `SELECT ` + countryColumns + ` FROM countries WHERE id = ANY($1)`
	rows, err := r.pool.Query(ctx, query, ids)
	if err != nil {
		return nil, fmt.Errorf("query countries by ids: %w", err)
	}
	defer rows.Close()

	var countries []Country
	for rows.Next() {
		var c Country
		if err := rows.Scan(&c.ID, &c.Name, &c.NameEN, &c.ISOCode, &c.SortOrder, &c.Active); err != nil {
			return nil, fmt.Errorf("scan country: %w", err)
		}
		countries = append(countries, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate countries: %w", err)
	}
	return countries, nil
}

// ── Contacts ──────────────────────────────────────────────────────────────────

const contactColumns = `id, name, email, phone, position, created_at, updated_at`

// CreateContact inserts a contact person.
func (r *Repo) CreateContact(ctx context.Context, c *Contact) error {
	query := `
		INSERT INTO contacts (id, name, email, phone, position, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`

	if _, err := r.pool.Exec(ctx, query, c.ID, c.Name, c.Email, c.Phone, c.Position, c.CreatedAt, c.UpdatedAt); err != nil {
		return fmt.Errorf("create contact: %w", err)
	}
	return nil
}

// UpdateContact writes a full contact row.
func (r *Repo) UpdateContact(ctx context.Context, c *Contact) error {
	query := `UPDATE contacts SET name = $2, email = $3, phone = $4, position = $5, updated_at = $6 WHERE id = $1`

	result, err := r.pool.Exec(ctx, query, c.ID, c.Name, c.Email, c.Phone, c.Position, c.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update contact: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperr.NotFound(contactNotFoundMessage)
	}
	return nil
}

// GetContactByID retrieves a contact person.
func (r *Repo) GetContactByID(ctx context.Context, id uuid.UUID) (*Contact, error) {
	var c Contact
	err := r.pool.QueryRow(ctx, `SELECT `+contactColumns+` FROM contacts WHERE id = $1`, id).Scan(
		&c.ID, &c.Name, &c.Email, &c.Phone, &c.Position, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound(contactNotFoundMessage)
		}
		return nil, fmt.Errorf("get contact: %w", err)
	}
	return &c, nil
}

// ListContacts retrieves all contact persons.
func (r *Repo) ListContacts(ctx context.Context) ([]Contact, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+contactColumns+` FROM contacts ORDER BY name ASC`)
	if err != nil {
		return nil, fmt.Errorf("list contacts: %w", err)
	}
	defer rows.Close()

	var contacts []Contact
	for rows.Next() {
		var c Contact
		if err := rows.Scan(&c.ID, &c.Name, &c.Email, &c.Phone, &c.Position, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan contact: %w", err)
		}
		contacts = append(contacts, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate contacts: %w", err)
	}
	return contacts, nil
}
