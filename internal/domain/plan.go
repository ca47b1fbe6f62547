package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	apperrors "github.com/edufin/financing-engine/pkg/errors"
	"github.com/edufin/financing-engine/pkg/utils"
)

const (
	PlanStatusSubmitted = "submitted"
	PlanStatusActive    = "active"
	PlanStatusCompleted = "completed"
)

// Plan is an installment schedule materialized from an approved application.
//
// It is a three-state machine: submitted until the down payment is recorded,
// active while installments are outstanding, completed once the last
// installment lands. Status never regresses and PaidInstallments never
// decreases. NextDueDate is set only while the plan is active.
type Plan struct {
	ID                   uuid.UUID       `json:"id" db:"id"`
	ApplicationID        uuid.UUID       `json:"application_id" db:"application_id"`
	UserID               uuid.UUID       `json:"user_id" db:"user_id"`
	SchoolID             uuid.UUID       `json:"school_id" db:"school_id"`
	Status               string          `json:"status" db:"status"`
	TotalAmount          decimal.Decimal `json:"total_amount" db:"total_amount"`
	DownPayment          decimal.Decimal `json:"down_payment" db:"down_payment"`
	InstallmentAmount    decimal.Decimal `json:"installment_amount" db:"installment_amount"`
	NumberOfInstallments int             `json:"number_of_installments" db:"number_of_installments"`
	PaidInstallments     int             `json:"paid_installments" db:"paid_installments"`
	NextDueDate          *time.Time      `json:"next_due_date,omitempty" db:"next_due_date"`
	CreatedAt            time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt            time.Time       `json:"updated_at" db:"updated_at"`
}

// NewPlanFromApplication materializes a plan from an approved application's
// terms. Down payment is Total * rate; the financed remainder is split evenly
// with the rounding remainder carried by the final installment.
func NewPlanFromApplication(app *Application, downPaymentRate decimal.Decimal, now time.Time) *Plan {
	downPayment := utils.CalculateDownPayment(app.RequestedAmount, downPaymentRate)
	installment := utils.CalculateInstallmentAmount(app.RequestedAmount, downPayment, app.NumberOfInstallments)

	return &Plan{
		ID:                   uuid.New(),
		ApplicationID:        app.ID,
		UserID:               app.UserID,
		SchoolID:             app.SchoolID,
		Status:               PlanStatusSubmitted,
		TotalAmount:          app.RequestedAmount,
		DownPayment:          downPayment,
		InstallmentAmount:    installment,
		NumberOfInstallments: app.NumberOfInstallments,
		PaidInstallments:     0,
		NextDueDate:          nil,
		CreatedAt:            now,
		UpdatedAt:            now,
	}
}

// InstallmentDue returns the amount owed for the given 1-based installment
// number. Every installment is the flat amount except the last, which absorbs
// the rounding remainder.
func (p *Plan) InstallmentDue(number int) decimal.Decimal {
	if number >= p.NumberOfInstallments {
		return utils.CalculateFinalInstallment(p.TotalAmount, p.DownPayment, p.InstallmentAmount, p.NumberOfInstallments)
	}
	return p.InstallmentAmount
}

// ApplyPayment drives the state machine for a single payment of the given
// kind. The caller must hold exclusive access to the plan record for the
// duration of the surrounding read-modify-write.
func (p *Plan) ApplyPayment(kind string, now time.Time, cadence time.Duration) error {
	switch kind {
	case PaymentKindDownPayment:
		if p.Status != PlanStatusSubmitted {
			return apperrors.WrapInvalidState(
				fmt.Sprintf("down payment not accepted for plan in status %q", p.Status))
		}
		p.Status = PlanStatusActive
		due := utils.NextDueDate(now, cadence)
		p.NextDueDate = &due

	case PaymentKindInstallment:
		if p.Status != PlanStatusActive {
			return apperrors.WrapInvalidState(
				fmt.Sprintf("installment not accepted for plan in status %q", p.Status))
		}
		if p.PaidInstallments >= p.NumberOfInstallments {
			return apperrors.WrapOverpayment(p.ID.String())
		}
		p.PaidInstallments++
		if p.PaidInstallments == p.NumberOfInstallments {
			p.Status = PlanStatusCompleted
			p.NextDueDate = nil
		} else {
			due := utils.NextDueDate(now, cadence)
			p.NextDueDate = &due
		}

	default:
		return apperrors.WrapValidation(fmt.Sprintf("unknown payment kind %q", kind))
	}

	p.UpdatedAt = now
	return nil
}

// PlanProgress is a point-in-time view of how much of a plan has been paid.
type PlanProgress struct {
	PaidAmount      decimal.Decimal `json:"paid_amount"`
	RemainingAmount decimal.Decimal `json:"remaining_amount"`
	Percent         decimal.Decimal `json:"percent"`
}

// Progress computes paid/remaining/percent from the plan snapshot. The down
// payment always counts toward the paid amount, so a submitted plan reports
// its down payment as already committed. Pure, no side effects; calling it
// twice on the same snapshot yields identical output.
func (p *Plan) Progress() PlanProgress {
	paid := p.DownPayment
	for i := 1; i <= p.PaidInstallments; i++ {
		paid = paid.Add(p.InstallmentDue(i))
	}

	return PlanProgress{
		PaidAmount:      paid,
		RemainingAmount: p.TotalAmount.Sub(paid),
		Percent:         utils.Percent(paid, p.TotalAmount),
	}
}

// DTOs for responses

type PlanDetail struct {
	Plan     *Plan        `json:"plan"`
	User     *UserSummary `json:"user,omitempty"`
	School   *School      `json:"school,omitempty"`
	Payments []*Payment   `json:"payments"`
}

// PlanFilter narrows list queries; zero values mean "any".
type PlanFilter struct {
	UserID   *uuid.UUID
	SchoolID *uuid.UUID
	Status   string
}
