package utils

import (
	"time"

	"github.com/shopspring/decimal"
)

// CalculateDownPayment calculates the up-front payment due before a plan activates.
// Formula: Total * Rate, rounded to the nearest minor currency unit.
func CalculateDownPayment(total decimal.Decimal, rate decimal.Decimal) decimal.Decimal {
	return total.Mul(rate).Round(2)
}

// CalculateInstallmentAmount calculates the recurring installment amount.
// The financed remainder is split evenly and floored to the minor currency
// unit; whatever is left over after flooring is absorbed by the final
// installment so the ledger sums exactly to the plan total.
func CalculateInstallmentAmount(total, downPayment decimal.Decimal, installments int) decimal.Decimal {
	financed := total.Sub(downPayment)
	return financed.Div(decimal.NewFromInt(int64(installments))).RoundFloor(2)
}

// CalculateFinalInstallment calculates the last installment including the
// rounding remainder left over from the even split.
func CalculateFinalInstallment(total, downPayment, installmentAmount decimal.Decimal, installments int) decimal.Decimal {
	financed := total.Sub(downPayment)
	allButLast := installmentAmount.Mul(decimal.NewFromInt(int64(installments - 1)))
	return financed.Sub(allButLast)
}

// NextDueDate calculates the following due date from the moment a payment is
// applied. Advancing from the transition time rather than the previous due
// date keeps a fixed cadence without drift across variable-length months.
func NextDueDate(from time.Time, period time.Duration) time.Time {
	return from.Add(period)
}

// Percent returns part/whole as a percentage rounded to 2 decimal places.
func Percent(part, whole decimal.Decimal) decimal.Decimal {
	if whole.IsZero() {
		return decimal.Zero
	}
	return part.Div(whole).Mul(decimal.NewFromInt(100)).Round(2)
}
