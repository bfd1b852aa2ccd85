package utils

import (
	"strings"

	"github.com/shopspring/decimal"
)

// SplitName splits a full name into CRM first/last name tokens.
// The first token becomes the first name and the remainder the last name.
// A single-token name is used for both fields.
func SplitName(name string) (firstName, lastName string) {
	trimmed := strings.TrimSpace(name)
	parts := strings.Fields(trimmed)

	switch len(parts) {
	case 0:
		return "", ""
	case 1:
		return parts[0], parts[0]
	default:
		return parts[0], strings.Join(parts[1:], " ")
	}
}

// NormalizePhone strips every non-digit character from the input.
// The stored phone value is always pure digits.
func NormalizePhone(value string) string {
	var b strings.Builder
	for _, r := range value {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// FormatPhone groups a 10-digit phone number for display as "0412 345 678".
// Shorter inputs are grouped progressively; anything past 10 digits is dropped.
func FormatPhone(value string) string {
	digits := NormalizePhone(value)
	if len(digits) > 10 {
		digits = digits[:10]
	}

	switch {
	case len(digits) <= 4:
		return digits
	case len(digits) <= 7:
		return digits[:4] + " " + digits[4:]
	default:
		return digits[:4] + " " + digits[4:7] + " " + digits[7:]
	}
}

// ClampLoanAmount forces an amount into the allowed range.
func ClampLoanAmount(amount, min, max int) int {
	if amount < min {
		return min
	}
	if amount > max {
		return max
	}
	return amount
}

// EstimateMonthlyRepayment calculates the amortized monthly payment for a
// loan amount at the given APR over a term in months, rounded to whole
// currency units. Zero-rate loans divide the principal evenly.
func EstimateMonthlyRepayment(amount int, apr decimal.Decimal, months int) decimal.Decimal {
	if months <= 0 {
		return decimal.Zero
	}

	principal := decimal.NewFromInt(int64(amount))
	if apr.IsZero() {
		return principal.Div(decimal.NewFromInt(int64(months))).Round(0)
	}

	// monthlyRate = apr / 100 / 12
	monthlyRate := apr.Div(decimal.NewFromInt(100)).Div(decimal.NewFromInt(12))

	// payment = P * r * (1+r)^n / ((1+r)^n - 1)
	growth := decimal.NewFromInt(1).Add(monthlyRate).Pow(decimal.NewFromInt(int64(months)))
	payment := principal.Mul(monthlyRate).Mul(growth).Div(growth.Sub(decimal.NewFromInt(1)))

	return payment.Round(0)
}
