package service

import (
	"context"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edufin/financing-engine/internal/domain"
	"github.com/edufin/financing-engine/internal/repository"
)

const integrationSchema = `
	CREATE TABLE IF NOT EXISTS installment_plans (
		id UUID PRIMARY KEY,
		application_id UUID NOT NULL,
		user_id UUID NOT NULL,
		school_id UUID NOT NULL,
		status VARCHAR(20) NOT NULL,
		total_amount DECIMAL(15,2) NOT NULL,
		down_payment DECIMAL(15,2) NOT NULL,
		installment_amount DECIMAL(15,2) NOT NULL,
		number_of_installments INT NOT NULL,
		paid_installments INT NOT NULL DEFAULT 0,
		next_due_date TIMESTAMP,
		created_at TIMESTAMP NOT NULL,
		updated_at TIMESTAMP NOT NULL
	);
	CREATE TABLE IF NOT EXISTS payments (
		id UUID PRIMARY KEY,
		plan_id UUID NOT NULL REFERENCES installment_plans(id),
		amount DECIMAL(15,2) NOT NULL,
		kind VARCHAR(20) NOT NULL,
		installment_number INT NOT NULL,
		idempotency_key VARCHAR(255),
		paid_at TIMESTAMP NOT NULL,
		created_at TIMESTAMP NOT NULL,
		UNIQUE (plan_id, idempotency_key)
	);
`

// setupPaymentIntegration connects to the database named by TEST_DATABASE_URL
// and wires a PaymentService over the real repositories, so the row locking
// and unique constraints are the live ones. Skipped when the variable is
// unset.
func setupPaymentIntegration(t *testing.T) (*PaymentService, repository.PlanRepository, *sqlx.DB) {
	t.Helper()

	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set, skipping database integration test")
	}

	db, err := sqlx.Connect("postgres", dsn)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	_, err = db.Exec(integrationSchema)
	require.NoError(t, err)

	plans := repository.NewPlanRepository(db)
	payments := repository.NewPaymentRepository(db)
	service := NewPaymentService(plans, payments, repository.NewTransactor(db), nil, testConfig())

	return service, plans, db
}

func createActivePlan(t *testing.T, db *sqlx.DB, plans repository.PlanRepository, paidInstallments int) *domain.Plan {
	t.Helper()

	plan := submittedPlan()
	plan.Status = domain.PlanStatusActive
	plan.PaidInstallments = paidInstallments
	due := time.Now().UTC().Add(30 * 24 * time.Hour)
	plan.NextDueDate = &due

	require.NoError(t, plans.Create(context.Background(), plan))
	t.Cleanup(func() {
		db.Exec("DELETE FROM payments WHERE plan_id = $1", plan.ID)
		db.Exec("DELETE FROM installment_plans WHERE id = $1", plan.ID)
	})

	return plan
}

// Two simultaneous submissions of the same logical payment (same idempotency
// key) must resolve to a single recorded installment. The row lock serializes
// the read-modify-write cycles and the loser observes the winner's payment.
func TestRecordPayment_ConcurrentSameKey(t *testing.T) {
	service, plans, db := setupPaymentIntegration(t)
	ctx := context.Background()

	plan := createActivePlan(t, db, plans, 5)
	key := uuid.NewString()

	var wg sync.WaitGroup
	results := make([]*domain.Payment, 2)
	errs := make([]error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], _, errs[i] = service.RecordPayment(ctx, plan.ID, domain.PaymentKindInstallment, key)
		}(i)
	}
	wg.Wait()

	require.NoError(t, errs[0])
	require.NoError(t, errs[1])
	assert.Equal(t, results[0].ID, results[1].ID)
	assert.Equal(t, 6, results[0].InstallmentNumber)

	reloaded, err := plans.GetByID(ctx, plan.ID)
	require.NoError(t, err)
	assert.Equal(t, 6, reloaded.PaidInstallments)

	var count int
	require.NoError(t, db.Get(&count,
		"SELECT COUNT(*) FROM payments WHERE plan_id = $1 AND installment_number = 6", plan.ID))
	assert.Equal(t, 1, count)
}

// Distinct idempotency keys are distinct logical payments: the lock forces
// them into sequence, so they claim consecutive installment numbers and never
// the same one twice.
func TestRecordPayment_ConcurrentDistinctKeys(t *testing.T) {
	service, plans, db := setupPaymentIntegration(t)
	ctx := context.Background()

	plan := createActivePlan(t, db, plans, 5)

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, _, errs[i] = service.RecordPayment(ctx, plan.ID, domain.PaymentKindInstallment, uuid.NewString())
		}(i)
	}
	wg.Wait()

	require.NoError(t, errs[0])
	require.NoError(t, errs[1])

	reloaded, err := plans.GetByID(ctx, plan.ID)
	require.NoError(t, err)
	assert.Equal(t, 7, reloaded.PaidInstallments)

	numbers := []int{}
	require.NoError(t, db.Select(&numbers,
		"SELECT installment_number FROM payments WHERE plan_id = $1 ORDER BY installment_number", plan.ID))
	assert.Equal(t, []int{6, 7}, numbers)
}

// The unique constraint on (plan_id, idempotency_key) is the backstop below
// the service-level replay check.
func TestPaymentIdempotencyKeyUniqueConstraint(t *testing.T) {
	_, plans, db := setupPaymentIntegration(t)

	plan := createActivePlan(t, db, plans, 0)
	key := uuid.NewString()
	now := time.Now().UTC()

	insert := func(number int) error {
		_, err := db.Exec(`
			INSERT INTO payments (id, plan_id, amount, kind, installment_number, idempotency_key, paid_at, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		`, uuid.New(), plan.ID, decimal.NewFromFloat(3333.33), domain.PaymentKindInstallment, number, key, now, now)
		return err
	}

	require.NoError(t, insert(1))
	assert.Error(t, insert(2))
}
