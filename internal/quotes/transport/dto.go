package transport

import (
	"time"

	"github.com/google/uuid"
)

// DeliveryMode selects the discount policy for a quote.
type DeliveryMode string

const (
	// DeliveryModeOnce is a one-off delivery with a volume-tiered discount.
	DeliveryModeOnce DeliveryMode = "once"
	// DeliveryModeFramework is a framework contract with a flat discount.
	DeliveryModeFramework DeliveryMode = "framework-contract"
)

// QuoteStatus defines the status of a quote. Transitions are set by explicit
// action and are not validated against a state machine.
type QuoteStatus string

const (
	QuoteStatusDraft    QuoteStatus = "draft"
	QuoteStatusReady    QuoteStatus = "ready"
	QuoteStatusSent     QuoteStatus = "sent"
	QuoteStatusAccepted QuoteStatus = "accepted"
	QuoteStatusRejected QuoteStatus = "rejected"
)

// Breakdown is the priced result of a calculation: the engine's output is
// persisted verbatim into the quote header.
type Breakdown struct {
	BasePrice       int64 `json:"basePrice"`
	DiscountPercent int64 `json:"discountPercent"`
	PricePerCountry int64 `json:"pricePerCountry"`
	GrandTotal      int64 `json:"grandTotal"`
	CountryCount    int   `json:"countryCount"`
}

// ── Requests ──────────────────────────────────────────────────────────────────

// QuoteModuleRequest selects a module for a quote, optionally with a price
// override: either a direct replacement price or a percentage adjustment.
type QuoteModuleRequest struct {
	ModuleID      uuid.UUID `json:"moduleId" validate:"required"`
	Quantity      int       `json:"quantity" validate:"omitempty,min=1"`
	OverrideType  string    `json:"overrideType" validate:"omitempty,oneof=direct percent"`
	OverrideValue *int64    `json:"overrideValue" validate:"required_with=OverrideType"`
}

// CalculateRequest is the request body for the price preview endpoint.
type CalculateRequest struct {
	Modules      []QuoteModuleRequest `json:"modules" validate:"required,dive"`
	CountryIDs   []uuid.UUID          `json:"countryIds" validate:"required"`
	DeliveryMode DeliveryMode         `json:"deliveryMode" validate:"required,oneof=once framework-contract"`
}

// CreateQuoteRequest is the request body for creating a new quote.
type CreateQuoteRequest struct {
	CustomerName string               `json:"customerName" validate:"required,min=1,max=200"`
	ProjectTitle string               `json:"projectTitle" validate:"required,min=1,max=300"`
	ValidUntil   time.Time            `json:"validUntil" validate:"required"`
	ContactID    *uuid.UUID           `json:"contactId"`
	DeliveryMode DeliveryMode         `json:"deliveryMode" validate:"required,oneof=once framework-contract"`
	Modules      []QuoteModuleRequest `json:"modules" validate:"required,min=1,dive"`
	CountryIDs   []uuid.UUID          `json:"countryIds" validate:"required,min=1"`
}

// UpdateQuoteRequest is the request body for updating a quote in place.
// When CreateVersion is set, the current state is snapshotted into the
// version ledger before the edit is applied.
type UpdateQuoteRequest struct {
	CustomerName  string               `json:"customerName" validate:"required,min=1,max=200"`
	ProjectTitle  string               `json:"projectTitle" validate:"required,min=1,max=300"`
	ValidUntil    time.Time            `json:"validUntil" validate:"required"`
	ContactID     *uuid.UUID           `json:"contactId"`
	DeliveryMode  DeliveryMode         `json:"deliveryMode" validate:"required,oneof=once framework-contract"`
	Modules       []QuoteModuleRequest `json:"modules" validate:"required,min=1,dive"`
	CountryIDs    []uuid.UUID          `json:"countryIds" validate:"required,min=1"`
	CreateVersion bool                 `json:"createVersion"`
	ChangeReason  string               `json:"changeReason" validate:"omitempty,max=1000"`
}

// UpdateStatusRequest is the request body for updating a quote's status.
type UpdateStatusRequest struct {
	Status QuoteStatus `json:"status" validate:"required,oneof=draft ready sent accepted rejected"`
}

// DuplicateQuoteRequest is the request body for duplicating a quote.
type DuplicateQuoteRequest struct {
	CustomerName string `json:"customerName" validate:"omitempty,min=1,max=200"`
	ProjectTitle string `json:"projectTitle" validate:"omitempty,min=1,max=300"`
}

// CreateVersionRequest is the request body for an explicit snapshot.
type CreateVersionRequest struct {
	ChangeReason string `json:"changeReason" validate:"omitempty,max=1000"`
}

// SendQuoteRequest is the request body for delivering a quote by email.
type SendQuoteRequest struct {
	RecipientEmail string `json:"recipientEmail" validate:"required,email"`
}

// ── Responses ─────────────────────────────────────────────────────────────────

// QuoteModuleResponse is a module line on a quote, with the resolved price
// actually used at calculation time.
type QuoteModuleResponse struct {
	ModuleID      uuid.UUID `json:"moduleId"`
	Name          string    `json:"name,omitempty"`
	Quantity      int       `json:"quantity"`
	OverrideType  string    `json:"overrideType,omitempty"`
	OverrideValue *int64    `json:"overrideValue,omitempty"`
	ResolvedPrice int64     `json:"resolvedPrice"`
}

// QuoteResponse is the quote header including the persisted breakdown.
type QuoteResponse struct {
	ID                  uuid.UUID    `json:"id"`
	CustomerName        string       `json:"customerName"`
	ProjectTitle        string       `json:"projectTitle"`
	ValidUntil          time.Time    `json:"validUntil"`
	ContactID           *uuid.UUID   `json:"contactId,omitempty"`
	DeliveryMode        DeliveryMode `json:"deliveryMode"`
	Status              QuoteStatus  `json:"status"`
	Breakdown           Breakdown    `json:"breakdown"`
	CompanyIntroduction *string      `json:"companyIntroduction,omitempty"`
	MethodologyText     *string      `json:"methodologyText,omitempty"`
	CustomerIntroText   *string      `json:"customerIntroText,omitempty"`
	CreatedBy           uuid.UUID    `json:"createdBy"`
	CreatedAt           time.Time    `json:"createdAt"`
	UpdatedAt           time.Time    `json:"updatedAt"`
}

// QuoteDetailResponse is the header plus the current module and country links.
type QuoteDetailResponse struct {
	QuoteResponse
	Modules    []QuoteModuleResponse `json:"modules"`
	CountryIDs []uuid.UUID           `json:"countryIds"`
}

// VersionSummary is one entry in a quote's version history, newest first.
type VersionSummary struct {
	ID            uuid.UUID    `json:"id"`
	QuoteID       uuid.UUID    `json:"quoteId"`
	VersionNumber int          `json:"versionNumber"`
	CustomerName  string       `json:"customerName"`
	ProjectTitle  string       `json:"projectTitle"`
	ValidUntil    time.Time    `json:"validUntil"`
	ContactID     *uuid.UUID   `json:"contactId,omitempty"`
	DeliveryMode  DeliveryMode `json:"deliveryMode"`
	GrandTotal    int64        `json:"grandTotal"`
	ChangeReason  *string      `json:"changeReason,omitempty"`
	CreatedBy     *string      `json:"createdBy,omitempty"`
	CreatedAt     time.Time    `json:"createdAt"`
}

// VersionModuleResponse is a snapshotted module link owned by a version.
type VersionModuleResponse struct {
	ModuleID      uuid.UUID `json:"moduleId"`
	Quantity      int       `json:"quantity"`
	OverrideType  string    `json:"overrideType,omitempty"`
	OverrideValue *int64    `json:"overrideValue,omitempty"`
}

// VersionDetailResponse is a version with its owned snapshots.
type VersionDetailResponse struct {
	VersionSummary
	CompanyIntroduction *string                 `json:"companyIntroduction,omitempty"`
	MethodologyText     *string                 `json:"methodologyText,omitempty"`
	Modules             []VersionModuleResponse `json:"modules"`
	CountryIDs          []uuid.UUID             `json:"countryIds"`
}

// CreateQuoteResponse returns the new quote's identifier.
type CreateQuoteResponse struct {
	QuoteID uuid.UUID `json:"quoteId"`
}

// CreateVersionResponse returns the new version's identifier and number.
type CreateVersionResponse struct {
	VersionID     uuid.UUID `json:"versionId"`
	VersionNumber int       `json:"versionNumber"`
}

// ListQuotesResponse is a paginated page of quote headers.
type ListQuotesResponse struct {
	Items      []QuoteResponse `json:"items"`
	Total      int             `json:"total"`
	Page       int             `json:"page"`
	PageSize   int             `json:"pageSize"`
	TotalPages int             `json:"totalPages"`
}
