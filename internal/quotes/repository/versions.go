package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"angebot_backend/platform/apperr"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// ── Version Models ────────────────────────────────────────────────────────────

// QuoteVersion is a frozen copy of a quote header. Version rows own their
// snapshot data and never change after insert.
type QuoteVersion struct {
	ID                  uuid.UUID  `db:"id"`
	QuoteID             uuid.UUID  `db:"quote_id"`
	VersionNumber       int        `db:"version_number"`
	CustomerName        string     `db:"customer_name"`
	ProjectTitle        string     `db:"project_title"`
	ValidUntil          time.Time  `db:"valid_until"`
	ContactID           *uuid.UUID `db:"contact_id"`
	DeliveryMode        string     `db:"delivery_mode"`
	BasePrice           int64      `db:"base_price"`
	DiscountPercent     int64      `db:"discount_percent"`
	PricePerCountry     int64      `db:"price_per_country"`
	GrandTotal          int64      `db:"grand_total"`
	CountryCount        int        `db:"country_count"`
	CompanyIntroduction *string    `db:"company_introduction"`
	MethodologyText     *string    `db:"methodology_text"`
	ChangeReason        *string    `db:"change_reason"`
	CreatedBy           *string    `db:"created_by"`
	CreatedAt           time.Time  `db:"created_at"`
}

// VersionModule is a module link copied into a version snapshot.
type VersionModule struct {
	VersionID     uuid.UUID `db:"version_id"`
	ModuleID      uuid.UUID `db:"module_id"`
	Quantity      int       `db:"quantity"`
	OverrideType  *string   `db:"override_type"`
	OverrideValue *int64    `db:"override_value"`
	Position      int       `db:"position"`
}

const versionNotFoundMsg = "quote version not found"

// Two writers can snapshot the same quote at once; the unique constraint on
// (quote_id, version_number) rejects the loser, which re-reads MAX and tries
// again with the next number.
const versionInsertRetries = 3

const uniqueViolationCode = "23505"

// CreateVersion snapshots the current state of a quote into the version
// ledger. The header and its module and country links are copied inside one
// transaction so the snapshot is internally consistent. Returns the new
// version's ID and number.
func (r *Repository) CreateVersion(ctx context.Context, quoteID uuid.UUID, changeReason *string, createdBy *string) (uuid.UUID, int, error) {
	var versionID uuid.UUID
	var versionNumber int
	err := retryOnUniqueViolation(versionInsertRetries, func() error {
		var err error
		versionID, versionNumber, err = r.tryCreateVersion(ctx, quoteID, changeReason, createdBy)
		return err
	})
	if err != nil {
		return uuid.Nil, 0, err
	}
	return versionID, versionNumber, nil
}

// retryOnUniqueViolation runs fn up to attempts times, retrying only when the
// error is a Postgres 23505 unique violation. Exhausting the attempts maps to
// a Conflict so callers see a retryable client error, not a raw driver error.
func retryOnUniqueViolation(attempts int, fn func() error) error {
	var lastErr error
	for attempt := 0; attempt < attempts; attempt++ {
		err := fn()
		if err == nil {
			return nil
		}

		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode {
			lastErr = err
			continue
		}
		return err
	}
	return apperr.Wrap(apperr.KindConflict, "concurrent version creation, please retry", lastErr)
}

func (r *Repository) tryCreateVersion(ctx context.Context, quoteID uuid.UUID, changeReason *string, createdBy *string) (uuid.UUID, int, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return uuid.Nil, 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	quote, err := scanQuote(tx.QueryRow(ctx, `SELECT `+quoteColumns+` FROM quotes WHERE id = $1`, quoteID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return uuid.Nil, 0, apperr.NotFound(quoteNotFoundMsg)
		}
		return uuid.Nil, 0, fmt.Errorf("failed to load quote for snapshot: %w", err)
	}

	var versionNumber int
	numberQuery := `SELECT COALESCE(MAX(version_number), 0) + 1 FROM quote_versions WHERE quote_id = $1`
	if err := tx.QueryRow(ctx, numberQuery, quoteID).Scan(&versionNumber); err != nil {
		return uuid.Nil, 0, fmt.Errorf("failed to determine next version number: %w", err)
	}

	versionID := uuid.New()
	headerQuery := `
		INSERT INTO quote_versions (
			id, quote_id, version_number, customer_name, project_title, valid_until,
			contact_id, delivery_mode, base_price, discount_percent, price_per_country,
			grand_total, country_count, company_introduction, methodology_text,
			change_reason, created_by, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)`

	if _, err := tx.Exec(ctx, headerQuery,
		versionID, quoteID, versionNumber, quote.CustomerName, quote.ProjectTitle, quote.ValidUntil,
		quote.ContactID, quote.DeliveryMode, quote.BasePrice, quote.DiscountPercent, quote.PricePerCountry,
		quote.GrandTotal, quote.CountryCount, quote.CompanyIntroduction, quote.MethodologyText,
		changeReason, createdBy, time.Now(),
	); err != nil {
		return uuid.Nil, 0, fmt.Errorf("failed to insert version header: %w", err)
	}

	copyModules := `
		INSERT INTO quote_version_modules (version_id, module_id, quantity, override_type, override_value, position)
		SELECT $1, module_id, quantity, override_type, override_value, position
		FROM quote_modules WHERE quote_id = $2`
	if _, err := tx.Exec(ctx, copyModules, versionID, quoteID); err != nil {
		return uuid.Nil, 0, fmt.Errorf("failed to copy module links: %w", err)
	}

	copyCountries := `
		INSERT INTO quote_version_countries (version_id, country_id, position)
		SELECT $1, country_id, position
		FROM quote_countries WHERE quote_id = $2`
	if _, err := tx.Exec(ctx, copyCountries, versionID, quoteID); err != nil {
		return uuid.Nil, 0, fmt.Errorf("failed to copy country links: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return uuid.Nil, 0, fmt.Errorf("failed to commit version: %w", err)
	}
	return versionID, versionNumber, nil
}

const versionColumns = `id, quote_id, version_number, customer_name, project_title, valid_until,
		contact_id, delivery_mode, base_price, discount_percent, price_per_country,
		grand_total, country_count, company_introduction, methodology_text,
		change_reason, created_by, created_at`

func scanVersion(row pgx.Row) (*QuoteVersion, error) {
	var v QuoteVersion
	err := row.Scan(
		&v.ID, &v.QuoteID, &v.VersionNumber, &v.CustomerName, &v.ProjectTitle, &v.ValidUntil,
		&v.ContactID, &v.DeliveryMode, &v.BasePrice, &v.DiscountPercent, &v.PricePerCountry,
		&v.GrandTotal, &v.CountryCount, &v.CompanyIntroduction, &v.MethodologyText,
		&v.ChangeReason, &v.CreatedBy, &v.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// ListVersions retrieves the version history of a quote, newest first
func (r *Repository) ListVersions(ctx context.Context, quoteID uuid.UUID) ([]QuoteVersion, error) {
	query := `SELECT ` + versionColumns + ` FROM quote_versions WHERE quote_id = $1
		ORDER BY version_number DESC`

	rows, err := r.pool.Query(ctx, query, quoteID)
	if err != nil {
		return nil, fmt.Errorf("failed to list versions: %w", err)
	}
	defer rows.Close()

	var versions []QuoteVersion
	for rows.Next() {
		v, err := scanVersion(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan version: %w", err)
		}
		versions = append(versions, *v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate versions: %w", err)
	}
	return versions, nil
}

// GetVersion retrieves a single version header by its ID
func (r *Repository) GetVersion(ctx context.Context, versionID uuid.UUID) (*QuoteVersion, error) {
	query := `SELECT ` + versionColumns + ` FROM quote_versions WHERE id = $1`

	v, err := scanVersion(r.pool.QueryRow(ctx, query, versionID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound(versionNotFoundMsg)
		}
		return nil, fmt.Errorf("failed to get version: %w", err)
	}
	return v, nil
}

// GetVersionModules retrieves the snapshotted module links of a version
func (r *Repository) GetVersionModules(ctx context.Context, versionID uuid.UUID) ([]VersionModule, error) {
	query := `
		SELECT version_id, module_id, quantity, override_type, override_value, position
		FROM quote_version_modules WHERE version_id = $1
		ORDER BY position ASC`

	rows, err := r.pool.Query(ctx, query, versionID)
	if err != nil {
		return nil, fmt.Errorf("failed to query version modules: %w", err)
	}
	defer rows.Close()

	var links []VersionModule
	for rows.Next() {
		var m VersionModule
		if err := rows.Scan(&m.VersionID, &m.ModuleID, &m.Quantity, &m.OverrideType, &m.OverrideValue, &m.Position); err != nil {
			return nil, fmt.Errorf("failed to scan version module: %w", err)
		}
		links = append(links, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate version modules: %w", err)
	}
	return links, nil
}

// GetVersionCountries retrieves the snapshotted country IDs of a version
func (r *Repository) GetVersionCountries(ctx context.Context, versionID uuid.UUID) ([]uuid.UUID, error) {
	query := `SELECT country_id FROM quote_version_countries WHERE version_id = $1 ORDER BY position ASC`

	rows, err := r.pool.Query(ctx, query, versionID)
	if err != nil {
		return nil, fmt.Errorf("failed to query version countries: %w", err)
	}
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan version country: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate version countries: %w", err)
	}
	return ids, nil
}
