package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/edufin/financing-engine/internal/domain"
)

type applicationRepository struct {
	db *sqlx.DB
}

func NewApplicationRepository(db *sqlx.DB) ApplicationRepository {
	return &applicationRepository{db: db}
}

func (r *applicationRepository) Create(ctx context.Context, app *domain.Application) error {
	query := `
		INSERT INTO applications (id, user_id, school_id, status, rejection_reason, requested_amount, number_of_installments, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err := executor(ctx, r.db).ExecContext(ctx, query,
		app.ID,
		app.UserID,
		app.SchoolID,
		app.Status,
		app.RejectionReason,
		app.RequestedAmount,
		app.NumberOfInstallments,
		app.CreatedAt,
		app.UpdatedAt,
	)

	return err
}

const applicationColumns = `id, user_id, school_id, status, rejection_reason, requested_amount, number_of_installments, created_at, updated_at`

func (r *applicationRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Application, error) {
	query := fmt.Sprintf(`SELECT %s FROM applications WHERE id = $1`, applicationColumns)

	var app domain.Application
	if err := sqlx.GetContext(ctx, executor(ctx, r.db), &app, query, id); err != nil {
		return nil, err
	}

	return &app, nil
}

func (r *applicationRepository) GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*domain.Application, error) {
	query := fmt.Sprintf(`SELECT %s FROM applications WHERE id = $1 FOR UPDATE`, applicationColumns)

	var app domain.Application
	if err := sqlx.GetContext(ctx, executor(ctx, r.db), &app, query, id); err != nil {
		return nil, err
	}

	return &app, nil
}

func (r *applicationRepository) Update(ctx context.Context, app *domain.Application) error {
	query := `
		UPDATE applications
		SET status = $2, rejection_reason = $3, updated_at = $4
		WHERE id = $1
	`

	_, err := executor(ctx, r.db).ExecContext(ctx, query,
		app.ID,
		app.Status,
		app.RejectionReason,
		app.UpdatedAt,
	)

	return err
}

func (r *applicationRepository) List(ctx context.Context, filter domain.ApplicationFilter) ([]*domain.Application, error) {
	query := fmt.Sprintf(`SELECT %s FROM applications WHERE 1=1`, applicationColumns)
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

	apps := []*domain.Application{}
	if err := sqlx.SelectContext(ctx, executor(ctx, r.db), &apps, query, args...); err != nil {
		return nil, err
	}

	return apps, nil
}
