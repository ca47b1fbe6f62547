package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"log"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/edufin/financing-engine/internal/config"
	"github.com/edufin/financing-engine/internal/domain"
	"github.com/edufin/financing-engine/internal/repository"
	apperrors "github.com/edufin/financing-engine/pkg/errors"
)

func planCacheKey(planID uuid.UUID) string {
	return "plan:" + planID.String()
}

// PlanService serves plan reads. Plan detail lookups go through a redis
// cache-aside; writers invalidate the key after commit.
type PlanService struct {
	Plans    repository.PlanRepository
	Payments repository.PaymentRepository
	Schools  repository.SchoolRepository
	Users    repository.UserRepository
	Redis    *redis.Client
	Config   *config.Config
}

func NewPlanService(
	plans repository.PlanRepository,
	payments repository.PaymentRepository,
	schools repository.SchoolRepository,
	users repository.UserRepository,
	redisClient *redis.Client,
	cfg *config.Config,
) *PlanService {
	return &PlanService{
		Plans:    plans,
		Payments: payments,
		Schools:  schools,
		Users:    users,
		Redis:    redisClient,
		Config:   cfg,
	}
}

// Get retrieves one plan with its payment history, newest payment first.
func (s *PlanService) Get(ctx context.Context, planID uuid.UUID) (*domain.PlanDetail, error) {
	if cached := s.fromCache(ctx, planID); cached != nil {
		return cached, nil
	}

	plan, err := s.Plans.GetByID(ctx, planID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.WrapPlanNotFound(planID.String())
		}
		return nil, apperrors.WrapPersistence(err)
	}

	payments, err := s.Payments.ListByPlanID(ctx, planID)
	if err != nil {
		return nil, apperrors.WrapPersistence(err)
	}

	detail := &domain.PlanDetail{Plan: plan, Payments: payments}

	if user, err := s.Users.GetByID(ctx, plan.UserID); err == nil {
		detail.User = &domain.UserSummary{ID: user.ID, Name: user.Name, Email: user.Email}
	}
	if school, err := s.Schools.GetByID(ctx, plan.SchoolID); err == nil {
		detail.School = school
	}

	s.toCache(ctx, planID, detail)
	return detail, nil
}

// List retrieves plans matching the filter, newest first.
func (s *PlanService) List(ctx context.Context, filter domain.PlanFilter) ([]*domain.Plan, error) {
	plans, err := s.Plans.List(ctx, filter)
	if err != nil {
		return nil, apperrors.WrapPersistence(err)
	}
	return plans, nil
}

// Progress computes the paid/remaining/percent view for a plan. Reads fresh
// state, never the cache, so it always reflects committed writes.
func (s *PlanService) Progress(ctx context.Context, planID uuid.UUID) (*domain.PlanProgress, error) {
	plan, err := s.Plans.GetByID(ctx, planID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.WrapPlanNotFound(planID.String())
		}
		return nil, apperrors.WrapPersistence(err)
	}

	progress := plan.Progress()
	return &progress, nil
}

func (s *PlanService) fromCache(ctx context.Context, planID uuid.UUID) *domain.PlanDetail {
	if s.Redis == nil {
		return nil
	}
	raw, err := s.Redis.Get(ctx, planCacheKey(planID)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			log.Printf("plan cache read failed for %s: %v", planID, err)
		}
		return nil
	}
	var detail domain.PlanDetail
	if err := json.Unmarshal(raw, &detail); err != nil {
		return nil
	}
	return &detail
}

func (s *PlanService) toCache(ctx context.Context, planID uuid.UUID, detail *domain.PlanDetail) {
	if s.Redis == nil {
		return
	}
	raw, err := json.Marshal(detail)
	if err != nil {
		return
	}
	if err := s.Redis.Set(ctx, planCacheKey(planID), raw, s.Config.Business.PlanCacheTTL).Err(); err != nil {
		log.Printf("plan cache write failed for %s: %v", planID, err)
	}
}
