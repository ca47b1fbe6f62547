package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/edufin/financing-engine/internal/domain"
)

// Transactor runs a function within a database transaction. The transaction
// is carried on the context; repository calls made with that context join it.
// Commit happens only if fn returns nil, otherwise everything rolls back.
type Transactor interface {
	WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// ApplicationRepository defines the interface for application data operations
type ApplicationRepository interface {
	// Create creates a new application
	Create(ctx context.Context, app *domain.Application) error

	// GetByID retrieves an application by its ID
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Application, error)

	// GetByIDForUpdate retrieves an application with an exclusive row lock;
	// must be called within a transaction
	GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*domain.Application, error)

	// Update updates a mutable application fields (status, rejection reason)
	Update(ctx context.Context, app *domain.Application) error

	// List retrieves applications matching the filter, newest first
	List(ctx context.Context, filter domain.ApplicationFilter) ([]*domain.Application, error)
}

// PlanRepository defines the interface for installment plan data operations
type PlanRepository interface {
	// Create creates a new plan
	Create(ctx context.Context, plan *domain.Plan) error

	// GetByID retrieves a plan by its ID
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Plan, error)

	// GetByIDForUpdate retrieves a plan with an exclusive row lock;
	// must be called within a transaction
	GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*domain.Plan, error)

	// Update persists the mutable plan fields
	Update(ctx context.Context, plan *domain.Plan) error

	// List retrieves plans matching the filter, newest first
	List(ctx context.Context, filter domain.PlanFilter) ([]*domain.Plan, error)

	// ListDueBefore retrieves active plans whose next due date has passed
	ListDueBefore(ctx context.Context, cutoff time.Time) ([]*domain.Plan, error)
}

// PaymentRepository defines the interface for payment data operations
type PaymentRepository interface {
	// Create appends a payment record; payments are never mutated or deleted
	Create(ctx context.Context, payment *domain.Payment) error

	// ListByPlanID retrieves all payments for a plan, newest first
	ListByPlanID(ctx context.Context, planID uuid.UUID) ([]*domain.Payment, error)

	// GetByIdempotencyKey retrieves the payment previously recorded for the
	// given plan under the given idempotency key
	GetByIdempotencyKey(ctx context.Context, planID uuid.UUID, key string) (*domain.Payment, error)
}

// SchoolRepository defines the read-only catalog surface
type SchoolRepository interface {
	// GetByID retrieves a school by its ID
	GetByID(ctx context.Context, id uuid.UUID) (*domain.School, error)

	// List retrieves visible schools matching the filter, newest first
	List(ctx context.Context, filter domain.SchoolFilter) ([]*domain.School, error)
}

// UserRepository defines the read-only identity surface
type UserRepository interface {
	// GetByID retrieves a user by its ID
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
}
