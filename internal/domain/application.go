package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	ApplicationStatusPending  = "pending"
	ApplicationStatusApproved = "approved"
	ApplicationStatusRejected = "rejected"
)

// Decisions accepted by the reviewer
const (
	DecisionApprove = "approve"
	DecisionReject  = "reject"
)

// Application represents a financing request awaiting review.
// Status moves pending -> approved or pending -> rejected, exactly once.
type Application struct {
	ID                   uuid.UUID       `json:"id" db:"id"`
	UserID               uuid.UUID       `json:"user_id" db:"user_id"`
	SchoolID             uuid.UUID       `json:"school_id" db:"school_id"`
	Status               string          `json:"status" db:"status"`
	RejectionReason      *string         `json:"rejection_reason,omitempty" db:"rejection_reason"`
	RequestedAmount      decimal.Decimal `json:"requested_amount" db:"requested_amount"`
	NumberOfInstallments int             `json:"number_of_installments" db:"number_of_installments"`
	CreatedAt            time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt            time.Time       `json:"updated_at" db:"updated_at"`
}

// Decided reports whether the application has reached a terminal status.
func (a *Application) Decided() bool {
	return a.Status != ApplicationStatusPending
}

// DTOs for requests and responses

type SubmitApplicationRequest struct {
	UserID               uuid.UUID       `json:"user_id" validate:"required"`
	SchoolID             uuid.UUID       `json:"school_id" validate:"required"`
	RequestedAmount      decimal.Decimal `json:"requested_amount"`
	NumberOfInstallments int             `json:"number_of_installments" validate:"required,gt=0"`
}

type DecideApplicationRequest struct {
	Decision string `json:"decision" validate:"required,oneof=approve reject"`
	Reason   string `json:"reason,omitempty"`
}

type DecideApplicationResponse struct {
	Application *Application `json:"application"`
	Plan        *Plan        `json:"plan,omitempty"`
}

type ApplicationDetail struct {
	Application *Application `json:"application"`
	User        *UserSummary `json:"user,omitempty"`
	School      *School      `json:"school,omitempty"`
}

// ApplicationFilter narrows list queries; zero values mean "any".
type ApplicationFilter struct {
	UserID   *uuid.UUID
	SchoolID *uuid.UUID
	Status   string
}
