package underwriting

import (
	"github.com/shopspring/decimal"
)

var (
	hundred = decimal.NewFromInt(100)
	twelve  = decimal.NewFromInt(12)
)

// growthPlaces keeps intermediate powers well below a cent of error.
const growthPlaces = 24

// MonthlyPayment is the fully amortizing payment for principal at annualRate
// percent over termMonths, rounded to cents. A zero or negative rate spreads
// the principal evenly; a non-positive term or principal yields zero.
func MonthlyPayment(principal, annualRate decimal.Decimal, termMonths int) decimal.Decimal {
	if termMonths <= 0 || !principal.IsPositive() {
		return decimal.Zero
	}
	n := decimal.NewFromInt(int64(termMonths))
	if !annualRate.IsPositive() {
		return principal.Div(n).Round(2)
	}

	r := annualRate.DivRound(twelve.Mul(hundred), growthPlaces)
	growth := pow(decimal.NewFromInt(1).Add(r), termMonths)

	return principal.Mul(r).Mul(growth).
		DivRound(growth.Sub(decimal.NewFromInt(1)), growthPlaces).
		Round(2)
}

// pow raises base to a non-negative integer power by squaring.
func pow(base decimal.Decimal, exp int) decimal.Decimal {
	result := decimal.NewFromInt(1)
	for exp > 0 {
		if exp&1 == 1 {
			result = result.Mul(base).Round(growthPlaces)
		}
		base = base.Mul(base).Round(growthPlaces)
		exp >>= 1
	}
	return result
}

// Percent returns round(part / whole * 100, 2). whole must be positive.
func Percent(part, whole decimal.Decimal) decimal.Decimal {
	return part.Div(whole).Mul(hundred).Round(2)
}
