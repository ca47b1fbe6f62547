package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"

	"github.com/edufin/financing-engine/internal/domain"
	"github.com/edufin/financing-engine/internal/repository"
	apperrors "github.com/edufin/financing-engine/pkg/errors"
)

// CatalogService exposes the read-only school catalog. Catalog management
// itself belongs to an external collaborator; this service only reads.
type CatalogService struct {
	Schools repository.SchoolRepository
}

func NewCatalogService(schools repository.SchoolRepository) *CatalogService {
	return &CatalogService{Schools: schools}
}

func (s *CatalogService) ListSchools(ctx context.Context, filter domain.SchoolFilter) ([]*domain.School, error) {
	schools, err := s.Schools.List(ctx, filter)
	if err != nil {
		return nil, apperrors.WrapPersistence(err)
	}
	return schools, nil
}

func (s *CatalogService) GetSchool(ctx context.Context, schoolID uuid.UUID) (*domain.School, error) {
	school, err := s.Schools.GetByID(ctx, schoolID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.WrapSchoolNotFound(schoolID.String())
		}
		return nil, apperrors.WrapPersistence(err)
	}
	return school, nil
}
