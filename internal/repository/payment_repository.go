package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/edufin/financing-engine/internal/domain"
)

type paymentRepository struct {
	db *sqlx.DB
}

func NewPaymentRepository(db *sqlx.DB) PaymentRepository {
	return &paymentRepository{db: db}
}

func (r *paymentRepository) Create(ctx context.Context, payment *domain.Payment) error {
	query := `
		INSERT INTO payments (id, plan_id, amount, kind, installment_number, idempotency_key, paid_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := executor(ctx, r.db).ExecContext(ctx, query,
		payment.ID,
		payment.PlanID,
		payment.Amount,
		payment.Kind,
		payment.InstallmentNumber,
		payment.IdempotencyKey,
		payment.PaidAt,
		payment.CreatedAt,
	)

	return err
}

func (r *paymentRepository) ListByPlanID(ctx context.Context, planID uuid.UUID) ([]*domain.Payment, error) {
	query := `
		SELECT id, plan_id, amount, kind, installment_number, idempotency_key, paid_at, created_at
		FROM payments
		WHERE plan_id = $1
		ORDER BY paid_at DESC
	`

	payments := []*domain.Payment{}
	if err := sqlx.SelectContext(ctx, executor(ctx, r.db), &payments, query, planID); err != nil {
		return nil, err
	}

	return payments, nil
}

func (r *paymentRepository) GetByIdempotencyKey(ctx context.Context, planID uuid.UUID, key string) (*domain.Payment, error) {
	query := `
		SELECT id, plan_id, amount, kind, installment_number, idempotency_key, paid_at, created_at
		FROM payments
		WHERE plan_id = $1 AND idempotency_key = $2
	`

	var payment domain.Payment
	if err := sqlx.GetContext(ctx, executor(ctx, r.db), &payment, query, planID, key); err != nil {
		return nil, err
	}

	return &payment, nil
}
