package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/edufin/financing-engine/internal/domain"
)

type planRepository struct {
	db *sqlx.DB
}

func NewPlanRepository(db *sqlx.DB) PlanRepository {
	return &planRepository{db: db}
}

const planColumns = `id, application_id, user_id, school_id, status, total_amount, down_payment, installment_amount, number_of_installments, paid_installments, next_due_date, created_at, updated_at`

func (r *planRepository) Create(ctx context.Context, plan *domain.Plan) error {
	query := fmt.Sprintf(`
		INSERT INTO installment_plans (%s)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`, planColumns)

	_, err := executor(ctx, r.db).ExecContext(ctx, query,
		plan.ID,
		plan.ApplicationID,
		plan.UserID,
		plan.SchoolID,
		plan.Status,
		plan.TotalAmount,
		plan.DownPayment,
		plan.InstallmentAmount,
		plan.NumberOfInstallments,
		plan.PaidInstallments,
		plan.NextDueDate,
		plan.CreatedAt,
		plan.UpdatedAt,
	)

	return err
}

func (r *planRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Plan, error) {
	query := fmt.Sprintf(`SELECT %s FROM installment_plans WHERE id = $1`, planColumns)

	var plan domain.Plan
	if err := sqlx.GetContext(ctx, executor(ctx, r.db), &plan, query, id); err != nil {
		return nil, err
	}

	return &plan, nil
}

// GetByIDForUpdate takes the per-plan row lock serializing concurrent
// read-modify-write cycles against the same plan.
func (r *planRepository) GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*domain.Plan, error) {
	query := fmt.Sprintf(`SELECT %s FROM installment_plans WHERE id = $1 FOR UPDATE`, planColumns)

	var plan domain.Plan
	if err := sqlx.GetContext(ctx, executor(ctx, r.db), &plan, query, id); err != nil {
		return nil, err
	}

	return &plan, nil
}

func (r *planRepository) Update(ctx context.Context, plan *domain.Plan) error {
	query := `
		UPDATE installment_plans
		SET status = $2, paid_installments = $3, next_due_date = $4, updated_at = $5
		WHERE id = $1
	`

	_, err := executor(ctx, r.db).ExecContext(ctx, query,
		plan.ID,
		plan.Status,
		plan.PaidInstallments,
		plan.NextDueDate,
		plan.UpdatedAt,
	)

	return err
}

func (r *planRepository) List(ctx context.Context, filter domain.PlanFilter) ([]*domain.Plan, error) {
	query := fmt.Sprintf(`SELECT %s FROM installment_plans WHERE 1=1`, planColumns)
	args := []interface{}{}

	if filter.UserID != nil {
		args = append(args, *filter.UserID)
		query += fmt.Sprintf(" AND user_id = $%d", len(args))
	}
	if filter.SchoolID != nil {
		args = append(args, *filter.SchoolID)
		query += fmt.Sprintf(" AND school_id = $%d", len(args))
	}
	if filter.Status != "" && filter.Status != "all" {
		args = append(args, filter.Status)
		query += fmt.Sprintf(" AND status = $%d", len(args))
	}
	query += " ORDER BY created_at DESC"

	plans := []*domain.Plan{}
	if err := sqlx.SelectContext(ctx, executor(ctx, r.db), &plans, query, args...); err != nil {
		return nil, err
	}

	return plans, nil
}

func (r *planRepository) ListDueBefore(ctx context.Context, cutoff time.Time) ([]*domain.Plan, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM installment_plans
		WHERE status = $1 AND next_due_date IS NOT NULL AND next_due_date < $2
		ORDER BY next_due_date
	`, planColumns)

	plans := []*domain.Plan{}
	if err := sqlx.SelectContext(ctx, executor(ctx, r.db), &plans, query, domain.PlanStatusActive, cutoff); err != nil {
		return nil, err
	}

	return plans, nil
}
