package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	UserRoleAdmin   = "admin"
	UserRoleEndUser = "end_user"
)

// User is the identity reference supplied by the identity collaborator.
// The engine trusts a validated user reference; it does not authenticate.
type User struct {
	ID        uuid.UUID `json:"id" db:"id"`
	Email     string    `json:"email" db:"email"`
	Name      string    `json:"name" db:"name"`
	Role      string    `json:"role" db:"role"`
	Phone     *string   `json:"phone,omitempty" db:"phone"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// UserSummary is the trimmed user shape embedded in detail responses.
type UserSummary struct {
	ID    uuid.UUID `json:"id" db:"id"`
	Name  string    `json:"name" db:"name"`
	Email string    `json:"email" db:"email"`
}

// School is the catalog record for an institution. TuitionFee is the ceiling
// a financing request may not exceed.
type School struct {
	ID          uuid.UUID       `json:"id" db:"id"`
	Name        string          `json:"name" db:"name"`
	Type        string          `json:"type" db:"type"`
	Gender      string          `json:"gender" db:"gender"`
	Area        string          `json:"area" db:"area"`
	Address     *string         `json:"address,omitempty" db:"address"`
	Description *string         `json:"description,omitempty" db:"description"`
	TuitionFee  decimal.Decimal `json:"tuition_fee" db:"tuition_fee"`
	IsVisible   bool            `json:"is_visible" db:"is_visible"`
	CreatedAt   time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at" db:"updated_at"`
}

// SchoolFilter narrows catalog browsing; empty fields mean "any".
// Only visible schools are ever listed.
type SchoolFilter struct {
	Search string
	Gender string
	Area   string
}
