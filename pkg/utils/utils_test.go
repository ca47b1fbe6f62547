package utils

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestCalculateDownPayment(t *testing.T) {
	tests := []struct {
		name     string
		total    decimal.Decimal
		rate     decimal.Decimal
		expected decimal.Decimal
	}{
		{
			name:     "standard 20 percent",
			total:    decimal.NewFromInt(50000),
			rate:     decimal.NewFromFloat(0.20),
			expected: decimal.NewFromInt(10000),
		},
		{
			name:     "rounds to minor currency unit",
			total:    decimal.NewFromFloat(333.33),
			rate:     decimal.NewFromFloat(0.20),
			expected: decimal.NewFromFloat(66.67), // 66.666 rounds up
		},
		{
			name:     "zero rate",
			total:    decimal.NewFromInt(50000),
			rate:     decimal.Zero,
			expected: decimal.Zero,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := CalculateDownPayment(tt.total, tt.rate)
			assert.True(t, result.Equal(tt.expected),
				"Expected %v, but got %v", tt.expected, result)
		})
	}
}

func TestCalculateInstallmentAmount(t *testing.T) {
	tests := []struct {
		name         string
		total        decimal.Decimal
		downPayment  decimal.Decimal
		installments int
		expected     decimal.Decimal
	}{
		{
			name:         "uneven split floors to cent",
			total:        decimal.NewFromInt(50000),
			downPayment:  decimal.NewFromInt(10000),
			installments: 12,
			expected:     decimal.NewFromFloat(3333.33), // 40000/12 = 3333.3333...
		},
		{
			name:         "even split",
			total:        decimal.NewFromInt(10000),
			downPayment:  decimal.NewFromInt(2000),
			installments: 8,
			expected:     decimal.NewFromInt(1000),
		},
		{
			name:         "single installment",
			total:        decimal.NewFromInt(50000),
			downPayment:  decimal.NewFromInt(10000),
			installments: 1,
			expected:     decimal.NewFromInt(40000),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := CalculateInstallmentAmount(tt.total, tt.downPayment, tt.installments)
			assert.True(t, result.Equal(tt.expected),
				"Expected %v, but got %v", tt.expected, result)
		})
	}
}

func TestCalculateFinalInstallment(t *testing.T) {
	total := decimal.NewFromInt(50000)
	down := decimal.NewFromInt(10000)
	installment := CalculateInstallmentAmount(total, down, 12)

	final := CalculateFinalInstallment(total, down, installment, 12)

	// 40000 - 11*3333.33 = 3333.37
	assert.True(t, final.Equal(decimal.NewFromFloat(3333.37)),
		"Expected 3333.37, got %v", final)

	// The schedule must sum exactly to the financed amount
	sum := installment.Mul(decimal.NewFromInt(11)).Add(final)
	assert.True(t, sum.Equal(total.Sub(down)))
}

func TestNextDueDate(t *testing.T) {
	from := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	period := 30 * 24 * time.Hour

	due := NextDueDate(from, period)

	assert.Equal(t, time.Date(2024, 1, 31, 12, 0, 0, 0, time.UTC), due)
}

func TestPercent(t *testing.T) {
	assert.True(t, Percent(decimal.NewFromInt(10000), decimal.NewFromInt(50000)).Equal(decimal.NewFromInt(20)))
	assert.True(t, Percent(decimal.NewFromInt(1), decimal.NewFromInt(3)).Equal(decimal.NewFromFloat(33.33)))
	assert.True(t, Percent(decimal.NewFromInt(5), decimal.Zero).Equal(decimal.Zero))
}
