package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/edufin/financing-engine/internal/domain"
	"github.com/edufin/financing-engine/internal/repository/mocks"
	apperrors "github.com/edufin/financing-engine/pkg/errors"
)

func newPaymentService(plans *mocks.MockPlanRepository, payments *mocks.MockPaymentRepository) *PaymentService {
	return &PaymentService{
		Plans:    plans,
		Payments: payments,
		Tx:       mocks.MockTransactor{},
		Config:   testConfig(),
	}
}

func submittedPlan() *domain.Plan {
	now := time.Now().UTC()
	app := &domain.Application{
		ID:                   uuid.New(),
		UserID:               uuid.New(),
		SchoolID:             uuid.New(),
		Status:               domain.ApplicationStatusApproved,
		RequestedAmount:      decimal.NewFromInt(50000),
		NumberOfInstallments: 12,
	}
	return domain.NewPlanFromApplication(app, decimal.NewFromFloat(0.20), now)
}

func TestRecordPayment_DownPayment(t *testing.T) {
	plans := &mocks.MockPlanRepository{}
	payments := &mocks.MockPaymentRepository{}
	service := newPaymentService(plans, payments)

	plan := submittedPlan()
	before := time.Now().UTC()

	plans.On("GetByIDForUpdate", mock.Anything, plan.ID).Return(plan, nil)
	payments.On("Create", mock.Anything, mock.MatchedBy(func(p *domain.Payment) bool {
		return p.PlanID == plan.ID &&
			p.Kind == domain.PaymentKindDownPayment &&
			p.InstallmentNumber == 0 &&
			p.Amount.Equal(decimal.NewFromInt(10000))
	})).Return(nil)
	plans.On("Update", mock.Anything, mock.MatchedBy(func(p *domain.Plan) bool {
		return p.Status == domain.PlanStatusActive && p.NextDueDate != nil
	})).Return(nil)

	payment, updated, err := service.RecordPayment(context.Background(), plan.ID, domain.PaymentKindDownPayment, "")

	require.NoError(t, err)
	assert.True(t, payment.Amount.Equal(decimal.NewFromInt(10000)))
	assert.Equal(t, 0, payment.InstallmentNumber)
	assert.Equal(t, domain.PlanStatusActive, updated.Status)
	require.NotNil(t, updated.NextDueDate)
	assert.WithinDuration(t, before.Add(30*24*time.Hour), *updated.NextDueDate, 5*time.Second)

	plans.AssertExpectations(t)
	payments.AssertExpectations(t)
}

func TestRecordPayment_InstallmentSequence(t *testing.T) {
	plans := &mocks.MockPlanRepository{}
	payments := &mocks.MockPaymentRepository{}
	service := newPaymentService(plans, payments)

	plan := submittedPlan()
	plan.Status = domain.PlanStatusActive
	plan.PaidInstallments = 5
	due := time.Now().UTC()
	plan.NextDueDate = &due

	plans.On("GetByIDForUpdate", mock.Anything, plan.ID).Return(plan, nil)
	payments.On("Create", mock.Anything, mock.MatchedBy(func(p *domain.Payment) bool {
		return p.InstallmentNumber == 6 &&
			p.Kind == domain.PaymentKindInstallment &&
			p.Amount.Equal(decimal.NewFromFloat(3333.33))
	})).Return(nil)
	plans.On("Update", mock.Anything, mock.Anything).Return(nil)

	payment, updated, err := service.RecordPayment(context.Background(), plan.ID, domain.PaymentKindInstallment, "")

	require.NoError(t, err)
	assert.Equal(t, 6, payment.InstallmentNumber)
	assert.Equal(t, 6, updated.PaidInstallments)
	assert.Equal(t, domain.PlanStatusActive, updated.Status)
}

func TestRecordPayment_FinalInstallmentCompletes(t *testing.T) {
	plans := &mocks.MockPlanRepository{}
	payments := &mocks.MockPaymentRepository{}
	service := newPaymentService(plans, payments)

	plan := submittedPlan()
	plan.Status = domain.PlanStatusActive
	plan.PaidInstallments = 11
	due := time.Now().UTC()
	plan.NextDueDate = &due

	plans.On("GetByIDForUpdate", mock.Anything, plan.ID).Return(plan, nil)
	payments.On("Create", mock.Anything, mock.MatchedBy(func(p *domain.Payment) bool {
		// Final installment carries the rounding remainder
		return p.InstallmentNumber == 12 && p.Amount.Equal(decimal.NewFromFloat(3333.37))
	})).Return(nil)
	plans.On("Update", mock.Anything, mock.MatchedBy(func(p *domain.Plan) bool {
		return p.Status == domain.PlanStatusCompleted && p.NextDueDate == nil
	})).Return(nil)

	_, updated, err := service.RecordPayment(context.Background(), plan.ID, domain.PaymentKindInstallment, "")

	require.NoError(t, err)
	assert.Equal(t, domain.PlanStatusCompleted, updated.Status)
	assert.Nil(t, updated.NextDueDate)
	assert.Equal(t, 12, updated.PaidInstallments)
}

func TestRecordPayment_InstallmentOnSubmittedPlan(t *testing.T) {
	plans := &mocks.MockPlanRepository{}
	payments := &mocks.MockPaymentRepository{}
	service := newPaymentService(plans, payments)

	plan := submittedPlan()
	plans.On("GetByIDForUpdate", mock.Anything, plan.ID).Return(plan, nil)

	_, _, err := service.RecordPayment(context.Background(), plan.ID, domain.PaymentKindInstallment, "")

	assert.ErrorIs(t, err, apperrors.ErrInvalidState)
	// No payment row may exist without the plan transition
	payments.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	plans.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

func TestRecordPayment_PlanNotFound(t *testing.T) {
	plans := &mocks.MockPlanRepository{}
	payments := &mocks.MockPaymentRepository{}
	service := newPaymentService(plans, payments)

	planID := uuid.New()
	plans.On("GetByIDForUpdate", mock.Anything, planID).Return(nil, sql.ErrNoRows)

	_, _, err := service.RecordPayment(context.Background(), planID, domain.PaymentKindDownPayment, "")

	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestRecordPayment_UnknownKind(t *testing.T) {
	plans := &mocks.MockPlanRepository{}
	payments := &mocks.MockPaymentRepository{}
	service := newPaymentService(plans, payments)

	plan := submittedPlan()
	plans.On("GetByIDForUpdate", mock.Anything, plan.ID).Return(plan, nil)

	_, _, err := service.RecordPayment(context.Background(), plan.ID, "refund", "")

	assert.ErrorIs(t, err, apperrors.ErrValidation)
	payments.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestRecordPayment_IdempotentReplay(t *testing.T) {
	plans := &mocks.MockPlanRepository{}
	payments := &mocks.MockPaymentRepository{}
	service := newPaymentService(plans, payments)

	plan := submittedPlan()
	plan.Status = domain.PlanStatusActive
	plan.PaidInstallments = 6

	key := "attempt-42"
	existing := &domain.Payment{
		ID:                uuid.New(),
		PlanID:            plan.ID,
		Amount:            decimal.NewFromFloat(3333.33),
		Kind:              domain.PaymentKindInstallment,
		InstallmentNumber: 6,
		IdempotencyKey:    &key,
	}

	plans.On("GetByIDForUpdate", mock.Anything, plan.ID).Return(plan, nil)
	payments.On("GetByIdempotencyKey", mock.Anything, plan.ID, key).Return(existing, nil)

	payment, _, err := service.RecordPayment(context.Background(), plan.ID, domain.PaymentKindInstallment, key)

	require.NoError(t, err)
	assert.Equal(t, existing.ID, payment.ID)
	assert.Equal(t, 6, payment.InstallmentNumber)

	// Replay must not append a second payment or advance the plan
	payments.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	plans.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	assert.Equal(t, 6, plan.PaidInstallments)
}

func TestRecordPayment_IdempotencyKeyKindMismatch(t *testing.T) {
	plans := &mocks.MockPlanRepository{}
	payments := &mocks.MockPaymentRepository{}
	service := newPaymentService(plans, payments)

	plan := submittedPlan()
	plan.Status = domain.PlanStatusActive
	plan.PaidInstallments = 1

	key := "attempt-7"
	existing := &domain.Payment{
		ID:                uuid.New(),
		PlanID:            plan.ID,
		Amount:            decimal.NewFromInt(10000),
		Kind:              domain.PaymentKindDownPayment,
		InstallmentNumber: 0,
		IdempotencyKey:    &key,
	}

	plans.On("GetByIDForUpdate", mock.Anything, plan.ID).Return(plan, nil)
	payments.On("GetByIdempotencyKey", mock.Anything, plan.ID, key).Return(existing, nil)

	// Reusing a down-payment key for an installment must be rejected rather
	// than silently returning the earlier payment
	_, _, err := service.RecordPayment(context.Background(), plan.ID, domain.PaymentKindInstallment, key)

	assert.ErrorIs(t, err, apperrors.ErrValidation)
	payments.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	plans.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	assert.Equal(t, 1, plan.PaidInstallments)
}

func TestRecordPayment_FreshIdempotencyKey(t *testing.T) {
	plans := &mocks.MockPlanRepository{}
	payments := &mocks.MockPaymentRepository{}
	service := newPaymentService(plans, payments)

	plan := submittedPlan()
	key := "attempt-1"

	plans.On("GetByIDForUpdate", mock.Anything, plan.ID).Return(plan, nil)
	payments.On("GetByIdempotencyKey", mock.Anything, plan.ID, key).Return(nil, sql.ErrNoRows)
	payments.On("Create", mock.Anything, mock.MatchedBy(func(p *domain.Payment) bool {
		return p.IdempotencyKey != nil && *p.IdempotencyKey == key
	})).Return(nil)
	plans.On("Update", mock.Anything, mock.Anything).Return(nil)

	payment, _, err := service.RecordPayment(context.Background(), plan.ID, domain.PaymentKindDownPayment, key)

	require.NoError(t, err)
	require.NotNil(t, payment.IdempotencyKey)
	assert.Equal(t, key, *payment.IdempotencyKey)

	payments.AssertExpectations(t)
	plans.AssertExpectations(t)
}
