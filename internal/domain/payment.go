package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	PaymentKindDownPayment = "down_payment"
	PaymentKindInstallment = "installment"
)

// Payment is an immutable record of money received against a plan.
// InstallmentNumber is 0 for the down payment; installments are 1-based and
// contiguous per plan. IdempotencyKey, when supplied by the caller, dedupes
// retried submissions of the same logical payment.
type Payment struct {
	ID                uuid.UUID       `json:"id" db:"id"`
	PlanID            uuid.UUID       `json:"plan_id" db:"plan_id"`
	Amount            decimal.Decimal `json:"amount" db:"amount"`
	Kind              string          `json:"kind" db:"kind"`
	InstallmentNumber int             `json:"installment_number" db:"installment_number"`
	IdempotencyKey    *string         `json:"-" db:"idempotency_key"`
	PaidAt            time.Time       `json:"paid_at" db:"paid_at"`
	CreatedAt         time.Time       `json:"created_at" db:"created_at"`
}

type RecordPaymentRequest struct {
	Kind string `json:"kind" validate:"required,oneof=down_payment installment"`
}

type RecordPaymentResponse struct {
	Payment *Payment `json:"payment"`
	Plan    *Plan    `json:"plan"`
}
