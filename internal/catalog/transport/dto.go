package transport

import (
	"time"

	"github.com/google/uuid"
)

// ── Modules (Bausteine) ───────────────────────────────────────────────────────

// CreateModuleRequest is the request body for creating a service module.
type CreateModuleRequest struct {
	Name            string   `json:"name" validate:"required,min=1,max=200"`
	Description     string   `json:"description" validate:"omitempty,max=2000"`
	LongDescription string   `json:"longDescription" validate:"omitempty,max=10000"`
	Scope           []string `json:"scope"`
	Subpoints       []string `json:"subpoints"`
	Methodology     string   `json:"methodology" validate:"omitempty,max=5000"`
	UnitPrice       int64    `json:"unitPrice" validate:"min=0"`
	Category        string   `json:"category" validate:"omitempty,max=100"`
	SortOrder       int      `json:"sortOrder"`
}

// UpdateModuleRequest is the request body for updating a service module.
// Nil fields are left unchanged.
type UpdateModuleRequest struct {
	Name            *string  `json:"name" validate:"omitempty,min=1,max=200"`
	Description     *string  `json:"description" validate:"omitempty,max=2000"`
	LongDescription *string  `json:"longDescription" validate:"omitempty,max=10000"`
	Scope           []string `json:"scope"`
	Subpoints       []string `json:"subpoints"`
	Methodology     *string  `json:"methodology" validate:"omitempty,max=5000"`
	UnitPrice       *int64   `json:"unitPrice" validate:"omitempty,min=0"`
	Category        *string  `json:"category" validate:"omitempty,max=100"`
	SortOrder       *int     `json:"sortOrder"`
	Active          *bool    `json:"active"`
}

// ModuleResponse is a service module as returned by the API.
type ModuleResponse struct {
	ID              uuid.UUID `json:"id"`
	Name            string    `json:"name"`
	Description     string    `json:"description,omitempty"`
	LongDescription string    `json:"longDescription,omitempty"`
	Scope           []string  `json:"scope"`
	Subpoints       []string  `json:"subpoints"`
	Methodology     string    `json:"methodology,omitempty"`
	UnitPrice       int64     `json:"unitPrice"`
	Category        string    `json:"category,omitempty"`
	SortOrder       int       `json:"sortOrder"`
	Active          bool      `json:"active"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

// ListModulesParams are the query parameters for listing modules.
type ListModulesParams struct {
	Search          string
	Category        string
	IncludeInactive bool
}

// ── Countries ─────────────────────────────────────────────────────────────────

// CountryResponse is a target country as returned by the API.
type CountryResponse struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	NameEN    string    `json:"nameEn,omitempty"`
	ISOCode   string    `json:"isoCode"`
	SortOrder int       `json:"sortOrder"`
	Active    bool      `json:"active"`
}

// ── Contacts (Ansprechpartner) ────────────────────────────────────────────────

// CreateContactRequest is the request body for creating a contact person.
type CreateContactRequest struct {
	Name     string `json:"name" validate:"required,min=1,max=200"`
	Email    string `json:"email" validate:"required,email"`
	Phone    string `json:"phone" validate:"omitempty,max=50"`
	Position string `json:"position" validate:"omitempty,max=200"`
}

// UpdateContactRequest is the request body for updating a contact person.
type UpdateContactRequest struct {
	Name     *string `json:"name" validate:"omitempty,min=1,max=200"`
	Email    *string `json:"email" validate:"omitempty,email"`
	Phone    *string `json:"phone" validate:"omitempty,max=50"`
	Position *string `json:"position" validate:"omitempty,max=200"`
}

// ContactResponse is a contact person as returned by the API.
type ContactResponse struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone,omitempty"`
	Position  string    `json:"position,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
