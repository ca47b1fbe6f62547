package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/edufin/financing-engine/internal/domain"
)

type schoolRepository struct {
	db *sqlx.DB
}

func NewSchoolRepository(db *sqlx.DB) SchoolRepository {
	return &schoolRepository{db: db}
}

const schoolColumns = `id, name, type, gender, area, address, description, tuition_fee, is_visible, created_at, updated_at`

func (r *schoolRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.School, error) {
	query := fmt.Sprintf(`SELECT %s FROM schools WHERE id = $1`, schoolColumns)

	var school domain.School
	if err := sqlx.GetContext(ctx, executor(ctx, r.db), &school, query, id); err != nil {
		return nil, err
	}

	return &school, nil
}

func (r *schoolRepository) List(ctx context.Context, filter domain.SchoolFilter) ([]*domain.School, error) {
	query := fmt.Sprintf(`SELECT %s FROM schools WHERE is_visible = TRUE`, schoolColumns)
	args := []interface{}{}

	if filter.Search != "" {
		args = append(args, "%"+filter.Search+"%")
		query += fmt.Sprintf(" AND name ILIKE $%d", len(args))
	}
	if filter.Gender != "" && filter.Gender != "all" {
		args = append(args, filter.Gender)
		query += fmt.Sprintf(" AND gender = $%d", len(args))
	}
	if filter.Area != "" && filter.Area != "all" {
		args = append(args, filter.Area)
		query += fmt.Sprintf(" AND area = $%d", len(args))
	}
	query += " ORDER BY created_at DESC"

	schools := []*domain.School{}
	if err := sqlx.SelectContext(ctx, executor(ctx, r.db), &schools, query, args...); err != nil {
		return nil, err
	}

	return schools, nil
}

type userRepository struct {
	db *sqlx.DB
}

func NewUserRepository(db *sqlx.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	query := `SELECT id, email, name, role, phone, created_at FROM users WHERE id = $1`

	var user domain.User
	if err := sqlx.GetContext(ctx, executor(ctx, r.db), &user, query, id); err != nil {
		return nil, err
	}

	return &user, nil
}
