package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/edufin/financing-engine/internal/config"
	"github.com/edufin/financing-engine/internal/domain"
	"github.com/edufin/financing-engine/internal/repository"
	apperrors "github.com/edufin/financing-engine/pkg/errors"
)

// ApplicationService is the reviewer: it takes financing requests in and
// turns pending applications into approved plans or rejections.
type ApplicationService struct {
	Apps    repository.ApplicationRepository
	Plans   repository.PlanRepository
	Schools repository.SchoolRepository
	Users   repository.UserRepository
	Tx      repository.Transactor
	Config  *config.Config
}

func NewApplicationService(
	apps repository.ApplicationRepository,
	plans repository.PlanRepository,
	schools repository.SchoolRepository,
	users repository.UserRepository,
	tx repository.Transactor,
	cfg *config.Config,
) *ApplicationService {
	return &ApplicationService{
		Apps:    apps,
		Plans:   plans,
		Schools: schools,
		Users:   users,
		Tx:      tx,
		Config:  cfg,
	}
}

// Submit validates a financing request and stores it as a pending
// application. The requested amount must be positive and may not exceed the
// school's tuition fee.
func (s *ApplicationService) Submit(ctx context.Context, request *domain.SubmitApplicationRequest) (*domain.Application, error) {
	if !request.RequestedAmount.IsPositive() {
		return nil, apperrors.WrapValidation("requested amount must be greater than zero")
	}
	if request.NumberOfInstallments <= 0 {
		return nil, apperrors.WrapValidation("number of installments must be greater than zero")
	}

	if _, err := s.Users.GetByID(ctx, request.UserID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.WrapUserNotFound(request.UserID.String())
		}
		return nil, apperrors.WrapPersistence(err)
	}

	school, err := s.Schools.GetByID(ctx, request.SchoolID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.WrapSchoolNotFound(request.SchoolID.String())
		}
		return nil, apperrors.WrapPersistence(err)
	}

	if request.RequestedAmount.GreaterThan(school.TuitionFee) {
		return nil, apperrors.WrapValidation("requested amount exceeds the school's tuition fee")
	}

	now := time.Now().UTC()
	app := &domain.Application{
		ID:                   uuid.New(),
		UserID:               request.UserID,
		SchoolID:             request.SchoolID,
		Status:               domain.ApplicationStatusPending,
		RequestedAmount:      request.RequestedAmount,
		NumberOfInstallments: request.NumberOfInstallments,
		CreatedAt:            now,
		UpdatedAt:            now,
	}

	if err := s.Apps.Create(ctx, app); err != nil {
		return nil, apperrors.WrapPersistence(err)
	}

	return app, nil
}

// Decide resolves a pending application. Rejection requires a non-empty
// reason. Approval materializes the installment plan in the same transaction
// as the status flip, so neither can exist without the other.
func (s *ApplicationService) Decide(ctx context.Context, applicationID uuid.UUID, request *domain.DecideApplicationRequest) (*domain.Application, *domain.Plan, error) {
	reason := strings.TrimSpace(request.Reason)
	if request.Decision == domain.DecisionReject && reason == "" {
		return nil, nil, apperrors.WrapValidation("rejection requires a reason")
	}

	var app *domain.Application
	var plan *domain.Plan

	err := s.Tx.WithinTransaction(ctx, func(ctx context.Context) error {
		var err error
		app, err = s.Apps.GetByIDForUpdate(ctx, applicationID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return apperrors.WrapApplicationNotFound(applicationID.String())
			}
			return apperrors.WrapPersistence(err)
		}

		if app.Decided() {
			return apperrors.WrapInvalidState("application has already been decided")
		}

		now := time.Now().UTC()
		switch request.Decision {
		case domain.DecisionApprove:
			app.Status = domain.ApplicationStatusApproved
			plan = domain.NewPlanFromApplication(app, s.Config.DownPaymentRate(), now)
			if err := s.Plans.Create(ctx, plan); err != nil {
				return apperrors.WrapPersistence(err)
			}
		case domain.DecisionReject:
			app.Status = domain.ApplicationStatusRejected
			app.RejectionReason = &reason
		default:
			return apperrors.WrapValidation("decision must be approve or reject")
		}

		app.UpdatedAt = now
		if err := s.Apps.Update(ctx, app); err != nil {
			return apperrors.WrapPersistence(err)
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	return app, plan, nil
}

// Get retrieves one application with its user and school references.
func (s *ApplicationService) Get(ctx context.Context, applicationID uuid.UUID) (*domain.ApplicationDetail, error) {
	app, err := s.Apps.GetByID(ctx, applicationID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.WrapApplicationNotFound(applicationID.String())
		}
		return nil, apperrors.WrapPersistence(err)
	}

	detail := &domain.ApplicationDetail{Application: app}

	if user, err := s.Users.GetByID(ctx, app.UserID); err == nil {
		detail.User = &domain.UserSummary{ID: user.ID, Name: user.Name, Email: user.Email}
	}
	if school, err := s.Schools.GetByID(ctx, app.SchoolID); err == nil {
		detail.School = school
	}

	return detail, nil
}

// List retrieves applications matching the filter, newest first.
func (s *ApplicationService) List(ctx context.Context, filter domain.ApplicationFilter) ([]*domain.Application, error) {
	apps, err := s.Apps.List(ctx, filter)
	if err != nil {
		return nil, apperrors.WrapPersistence(err)
	}
	return apps, nil
}
