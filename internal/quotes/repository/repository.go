package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"angebot_backend/platform/apperr"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ── Domain Models ─────────────────────────────────────────────────────────────

// Quote is the database model for a quote header. Prices are whole euros as
// produced by the calculation engine at the last write.
type Quote struct {
	ID                  uuid.UUID  `db:"id"`
	CustomerName        string     `db:"customer_name"`
	ProjectTitle        string     `db:"project_title"`
	ValidUntil          time.Time  `db:"valid_until"`
	ContactID           *uuid.UUID `db:"contact_id"`
	DeliveryMode        string     `db:"delivery_mode"`
	Status              string     `db:"status"`
	BasePrice           int64      `db:"base_price"`
	DiscountPercent     int64      `db:"discount_percent"`
	PricePerCountry     int64      `db:"price_per_country"`
	GrandTotal          int64      `db:"grand_total"`
	CountryCount        int        `db:"country_count"`
	CompanyIntroduction *string    `db:"company_introduction"`
	MethodologyText     *string    `db:"methodology_text"`
	CustomerIntroText   *string    `db:"customer_intro_text"`
	CreatedBy           uuid.UUID  `db:"created_by"`
	CreatedAt           time.Time  `db:"created_at"`
	UpdatedAt           time.Time  `db:"updated_at"`
}

// QuoteModule is a module link owned by a quote, with an optional price
// override recorded as entered.
type QuoteModule struct {
	QuoteID       uuid.UUID `db:"quote_id"`
	ModuleID      uuid.UUID `db:"module_id"`
	Quantity      int       `db:"quantity"`
	OverrideType  *string   `db:"override_type"`
	OverrideValue *int64    `db:"override_value"`
	Position      int       `db:"position"`
}

// ListParams contains parameters for listing quotes
type ListParams struct {
	Status   *string
	Search   string
	Page     int
	PageSize int
}

// ListResult contains the paginated result of listing quotes
type ListResult struct {
	Items      []Quote
	Total      int
	Page       int
	PageSize   int
	TotalPages int
}

// ── Repository ────────────────────────────────────────────────────────────────

const quoteNotFoundMsg = "quote not found"

// Repository provides database operations for quotes and their version ledger
type Repository struct {
	pool *pgxpool.Pool
}

// New creates a new quotes repository
func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const quoteColumns = `id, customer_name, project_title, valid_until, contact_id,
		delivery_mode, status, base_price, discount_percent, price_per_country,
		grand_total, country_count, company_introduction, methodology_text,
		customer_intro_text, created_by, created_at, updated_at`

func scanQuote(row pgx.Row) (*Quote, error) {
	var q Quote
	err := row.Scan(
		&q.ID, &q.CustomerName, &q.ProjectTitle, &q.ValidUntil, &q.ContactID,
		&q.DeliveryMode, &q.Status, &q.BasePrice, &q.DiscountPercent, &q.PricePerCountry,
		&q.GrandTotal, &q.CountryCount, &q.CompanyIntroduction, &q.MethodologyText,
		&q.CustomerIntroText, &q.CreatedBy, &q.CreatedAt, &q.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &q, nil
}

// CreateWithLinks inserts a quote header and its module and country links in a
// single transaction.
func (r *Repository) CreateWithLinks(ctx context.Context, quote *Quote, modules []QuoteModule, countryIDs []uuid.UUID) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	quoteQuery := `
		INSERT INTO quotes (
			id, customer_name, project_title, valid_until, contact_id,
			delivery_mode, status, base_price, discount_percent, price_per_country,
			grand_total, country_count, company_introduction, methodology_text,
			customer_intro_text, created_by, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)`

	if _, err := tx.Exec(ctx, quoteQuery,
		quote.ID, quote.CustomerName, quote.ProjectTitle, quote.ValidUntil, quote.ContactID,
		quote.DeliveryMode, quote.Status, quote.BasePrice, quote.DiscountPercent, quote.PricePerCountry,
		quote.GrandTotal, quote.CountryCount, quote.CompanyIntroduction, quote.MethodologyText,
		quote.CustomerIntroText, quote.CreatedBy, quote.CreatedAt, quote.UpdatedAt,
	); err != nil {
		return fmt.Errorf("failed to insert quote: %w", err)
	}

	if err := insertModuleLinks(ctx, tx, quote.ID, modules); err != nil {
		return err
	}
	if err := insertCountryLinks(ctx, tx, quote.ID, countryIDs); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

// UpdateWithLinks updates a quote header and replaces its module and country
// links. Link replacement is delete-then-insert inside the same transaction so
// readers never observe a partially replaced set.
func (r *Repository) UpdateWithLinks(ctx context.Context, quote *Quote, modules []QuoteModule, countryIDs []uuid.UUID) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	updateQuery := `
		UPDATE quotes SET
			customer_name = $2, project_title = $3, valid_until = $4, contact_id = $5,
			delivery_mode = $6, base_price = $7, discount_percent = $8, price_per_country = $9,
			grand_total = $10, country_count = $11, company_introduction = $12,
			methodology_text = $13, customer_intro_text = $14, updated_at = $15
		WHERE id = $1`

	result, err := tx.Exec(ctx, updateQuery,
		quote.ID, quote.CustomerName, quote.ProjectTitle, quote.ValidUntil, quote.ContactID,
		quote.DeliveryMode, quote.BasePrice, quote.DiscountPercent, quote.PricePerCountry,
		quote.GrandTotal, quote.CountryCount, quote.CompanyIntroduction,
		quote.MethodologyText, quote.CustomerIntroText, quote.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update quote: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperr.NotFound(quoteNotFoundMsg)
	}

	if _, err := tx.Exec(ctx, `DELETE FROM quote_modules WHERE quote_id = $1`, quote.ID); err != nil {
		return fmt.Errorf("failed to delete old module links: %w", err)
	}
	if _, err := tx.Exec(ctx, `DELETE FROM quote_countries WHERE quote_id = $1`, quote.ID); err != nil {
		return fmt.Errorf("failed to delete old country links: %w", err)
	}
	if err := insertModuleLinks(ctx, tx, quote.ID, modules); err != nil {
		return err
	}
	if err := insertCountryLinks(ctx, tx, quote.ID, countryIDs); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

// UpdateNarrative stores generated narrative texts without touching pricing.
func (r *Repository) UpdateNarrative(ctx context.Context, id uuid.UUID, companyIntro, methodology, customerIntro *string) error {
	query := `
		UPDATE quotes SET company_introduction = $2, methodology_text = $3,
			customer_intro_text = $4, updated_at = $5
		WHERE id = $1`
	result, err := r.pool.Exec(ctx, query, id, companyIntro, methodology, customerIntro, time.Now())
	if err != nil {
		return fmt.Errorf("failed to update quote narrative: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperr.NotFound(quoteNotFoundMsg)
	}
	return nil
}

func insertModuleLinks(ctx context.Context, tx pgx.Tx, quoteID uuid.UUID, modules []QuoteModule) error {
	linkQuery := `
		INSERT INTO quote_modules (quote_id, module_id, quantity, override_type, override_value, position)
		VALUES ($1, $2, $3, $4, $5, $6)`

	for i, m := range modules {
		if _, err := tx.Exec(ctx, linkQuery,
			quoteID, m.ModuleID, m.Quantity, m.OverrideType, m.OverrideValue, i,
		); err != nil {
			return fmt.Errorf("failed to insert module link: %w", err)
		}
	}
	return nil
}

func insertCountryLinks(ctx context.Context, tx pgx.Tx, quoteID uuid.UUID, countryIDs []uuid.UUID) error {
	linkQuery := `INSERT INTO quote_countries (quote_id, country_id, position) VALUES ($1, $2, $3)`

	for i, id := range countryIDs {
		if _, err := tx.Exec(ctx, linkQuery, quoteID, id, i); err != nil {
			return fmt.Errorf("failed to insert country link: %w", err)
		}
	}
	return nil
}

// GetByID retrieves a quote header by its ID
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*Quote, error) {
	query := `SELECT ` + quoteColumns + ` FROM quotes WHERE id = $1`

	q, err := scanQuote(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound(quoteNotFoundMsg)
		}
		return nil, fmt.Errorf("failed to get quote: %w", err)
	}
	return q, nil
}

// GetModuleLinks retrieves the module links of a quote in stored order
func (r *Repository) GetModuleLinks(ctx context.Context, quoteID uuid.UUID) ([]QuoteModule, error) {
	query := `
		SELECT quote_id, module_id, quantity, override_type, override_value, position
		FROM quote_modules WHERE quote_id = $1
		ORDER BY position ASC`

	rows, err := r.pool.Query(ctx, query, quoteID)
	if err != nil {
		return nil, fmt.Errorf("failed to query module links: %w", err)
	}
	defer rows.Close()

	var links []QuoteModule
	for rows.Next() {
		var m QuoteModule
		if err := rows.Scan(&m.QuoteID, &m.ModuleID, &m.Quantity, &m.OverrideType, &m.OverrideValue, &m.Position); err != nil {
			return nil, fmt.Errorf("failed to scan module link: %w", err)
		}
		links = append(links, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate module links: %w", err)
	}
	return links, nil
}

// GetCountryLinks retrieves the country IDs of a quote in stored order
func (r *Repository) GetCountryLinks(ctx context.Context, quoteID uuid.UUID) ([]uuid.UUID, error) {
	query := `SELECT country_id FROM quote_countries WHERE quote_id = $1 ORDER BY position ASC`

	rows, err := r.pool.Query(ctx, query, quoteID)
	if err != nil {
		return nil, fmt.Errorf("failed to query country links: %w", err)
	}
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan country link: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate country links: %w", err)
	}
	return ids, nil
}

// UpdateStatus updates the status of a quote
func (r *Repository) UpdateStatus(ctx context.Context, id uuid.UUID, status string) error {
	query := `UPDATE quotes SET status = $2, updated_at = $3 WHERE id = $1`
	result, err := r.pool.Exec(ctx, query, id, status, time.Now())
	if err != nil {
		return fmt.Errorf("failed to update quote status: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperr.NotFound(quoteNotFoundMsg)
	}
	return nil
}

// Delete removes a quote (cascade deletes links and versions)
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM quotes WHERE id = $1`
	result, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete quote: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperr.NotFound(quoteNotFoundMsg)
	}
	return nil
}

// List retrieves quotes with filtering and pagination, newest first
func (r *Repository) List(ctx context.Context, params ListParams) (*ListResult, error) {
	var searchParam interface{}
	if params.Search != "" {
		searchParam = "%" + params.Search + "%"
	}

	var statusParam interface{}
	if params.Status != nil {
		statusParam = *params.Status
	}

	baseQuery := `
		FROM quotes
		WHERE ($1::text IS NULL OR status = $1)
			AND ($2::text IS NULL OR customer_name ILIKE $2 OR project_title ILIKE $2)
	`
	args := []interface{}{statusParam, searchParam}

	var total int
	if err := r.pool.QueryRow(ctx, "SELECT COUNT(*) "+baseQuery, args...).Scan(&total); err != nil {
		return nil, fmt.Errorf("failed to count quotes: %w", err)
	}

	totalPages := (total + params.PageSize - 1) / params.PageSize
	offset := (params.Page - 1) * params.PageSize

	selectQuery := `SELECT ` + quoteColumns + baseQuery + `
		ORDER BY created_at DESC
		LIMIT $3 OFFSET $4`

	args = append(args, params.PageSize, offset)

	rows, err := r.pool.Query(ctx, selectQuery, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list quotes: %w", err)
	}
	defer rows.Close()

	var items []Quote
	for rows.Next() {
		q, err := scanQuote(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan quote: %w", err)
		}
		items = append(items, *q)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate quotes: %w", err)
	}

	return &ListResult{
		Items:      items,
		Total:      total,
		Page:       params.Page,
		PageSize:   params.PageSize,
		TotalPages: totalPages,
	}, nil
}
