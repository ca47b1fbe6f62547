package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"

	"github.com/edufin/financing-engine/internal/config"
	"github.com/edufin/financing-engine/internal/domain"
	"github.com/edufin/financing-engine/internal/repository"
	apperrors "github.com/edufin/financing-engine/pkg/errors"
)

// PaymentService records payments and drives the plan state machine. The
// payment row and the plan mutation commit in one transaction under the
// plan's row lock, so a payment never exists without its plan transition and
// two concurrent submissions cannot claim the same installment number.
type PaymentService struct {
	Plans    repository.PlanRepository
	Payments repository.PaymentRepository
	Tx       repository.Transactor
	Redis    *redis.Client
	Config   *config.Config
}

func NewPaymentService(
	plans repository.PlanRepository,
	payments repository.PaymentRepository,
	tx repository.Transactor,
	redisClient *redis.Client,
	cfg *config.Config,
) *PaymentService {
	return &PaymentService{
		Plans:    plans,
		Payments: payments,
		Tx:       tx,
		Redis:    redisClient,
		Config:   cfg,
	}
}

// RecordPayment appends a payment of the given kind against the plan. The
// amount and installment number are derived from the locked plan state, never
// taken from the caller. A non-empty idempotencyKey makes retries safe: a
// replay returns the originally recorded payment without touching the plan.
func (s *PaymentService) RecordPayment(ctx context.Context, planID uuid.UUID, kind string, idempotencyKey string) (*domain.Payment, *domain.Plan, error) {
	var payment *domain.Payment
	var plan *domain.Plan
	replayed := false

	err := s.Tx.WithinTransaction(ctx, func(ctx context.Context) error {
		var err error
		plan, err = s.Plans.GetByIDForUpdate(ctx, planID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return apperrors.WrapPlanNotFound(planID.String())
			}
			return apperrors.WrapPersistence(err)
		}

		if idempotencyKey != "" {
			existing, err := s.Payments.GetByIdempotencyKey(ctx, planID, idempotencyKey)
			if err == nil {
				if existing.Kind != kind {
					return apperrors.WrapValidation(fmt.Sprintf(
						"idempotency key already used for a %s payment", existing.Kind))
				}
				payment = existing
				replayed = true
				return nil
			}
			if !errors.Is(err, sql.ErrNoRows) {
				return apperrors.WrapPersistence(err)
			}
		}

		now := time.Now().UTC()

		var amount decimal.Decimal
		var number int
		switch kind {
		case domain.PaymentKindDownPayment:
			amount = plan.DownPayment
			number = 0
		case domain.PaymentKindInstallment:
			number = plan.PaidInstallments + 1
			amount = plan.InstallmentDue(number)
		default:
			return apperrors.WrapValidation(fmt.Sprintf("unknown payment kind %q", kind))
		}

		if err := plan.ApplyPayment(kind, now, s.Config.InstallmentPeriod()); err != nil {
			return err
		}

		payment = &domain.Payment{
			ID:                uuid.New(),
			PlanID:            plan.ID,
			Amount:            amount,
			Kind:              kind,
			InstallmentNumber: number,
			PaidAt:            now,
			CreatedAt:         now,
		}
		if idempotencyKey != "" {
			payment.IdempotencyKey = &idempotencyKey
		}

		if err := s.Payments.Create(ctx, payment); err != nil {
			return apperrors.WrapPersistence(err)
		}
		if err := s.Plans.Update(ctx, plan); err != nil {
			return apperrors.WrapPersistence(err)
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	if !replayed {
		s.invalidatePlanCache(ctx, planID)
	}

	return payment, plan, nil
}

func (s *PaymentService) invalidatePlanCache(ctx context.Context, planID uuid.UUID) {
	if s.Redis == nil {
		return
	}
	if err := s.Redis.Del(ctx, planCacheKey(planID)).Err(); err != nil {
		log.Printf("failed to invalidate plan cache for %s: %v", planID, err)
	}
}
