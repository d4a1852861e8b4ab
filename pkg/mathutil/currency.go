// Package mathutil provides the fixed-point arithmetic used for every
// currency-affecting computation.
//
// Values are shopspring decimals. Binary operations keep
// constants.InternalPrecision decimal places so that hundreds of schedule rows
// can be chained without representation error creeping into the cents.
package mathutil

import (
	"errors"

	"github.com/iwvelando/loan-calculator/pkg/constants"
	"github.com/shopspring/decimal"
)

// ErrDivisionByZero is returned by Div when the divisor is zero.
var ErrDivisionByZero = errors.New("division by zero")

// Cent is the smallest currency unit.
var Cent = decimal.New(1, -2)

var (
	one                  = decimal.NewFromInt(1)
	currencyTolerance    = decimal.NewFromFloat(constants.CurrencyTolerance)
	percentageMultiplier = decimal.NewFromInt(constants.PercentageMultiplier)
	monthsPerYearPercent = decimal.NewFromInt(constants.MonthsPerYear * constants.PercentageMultiplier)
)

// Add returns a + b at internal precision.
func Add(a, b decimal.Decimal) decimal.Decimal {
	return a.Add(b).Round(constants.InternalPrecision)
}

// Sub returns a - b at internal precision.
func Sub(a, b decimal.Decimal) decimal.Decimal {
	return a.Sub(b).Round(constants.InternalPrecision)
}

// Mul returns a * b at internal precision.
func Mul(a, b decimal.Decimal) decimal.Decimal {
	return a.Mul(b).Round(constants.InternalPrecision)
}

// Div returns a / b at internal precision.
func Div(a, b decimal.Decimal) (decimal.Decimal, error) {
	if b.IsZero() {
		return decimal.Zero, ErrDivisionByZero
	}
	return a.DivRound(b, constants.InternalPrecision), nil
}

// Round rounds a value half away from zero to the given number of places.
func Round(val decimal.Decimal, places int32) decimal.Decimal {
	return val.Round(places)
}

// RoundCurrency rounds a value to two decimals, i.e. to represent real currency.
func RoundCurrency(val decimal.Decimal) decimal.Decimal {
	return val.Round(constants.CurrencyPlaces)
}

// Pow raises base to a non-negative integer power by repeated squaring,
// keeping the given number of places at every step.
func Pow(base decimal.Decimal, n int, places int32) decimal.Decimal {
	result := one
	for n > 0 {
		if n&1 == 1 {
			result = result.Mul(base).Round(places)
		}
		base = base.Mul(base).Round(places)
		n >>= 1
	}
	return result
}

// MonthlyRate converts an annual percentage rate (e.g. 4.9) into the monthly
// fraction (0.0040833...).
func MonthlyRate(annualPercent decimal.Decimal) decimal.Decimal {
	return annualPercent.DivRound(monthsPerYearPercent, constants.RatePrecision)
}

// IsZero checks if a value is effectively zero (within tolerance)
func IsZero(val decimal.Decimal) bool {
	return val.Abs().LessThanOrEqual(currencyTolerance)
}

// IsPositive checks if a value is positive (greater than tolerance)
func IsPositive(val decimal.Decimal) bool {
	return val.GreaterThan(currencyTolerance)
}

// IsNegative checks if a value is negative (less than negative tolerance)
func IsNegative(val decimal.Decimal) bool {
	return val.LessThan(currencyTolerance.Neg())
}

// WithinTolerance checks if two values are within a specified tolerance
func WithinTolerance(val1, val2, tolerance decimal.Decimal) bool {
	return val1.Sub(val2).Abs().LessThanOrEqual(tolerance)
}

// Min returns the minimum of two values
func Min(a, b decimal.Decimal) decimal.Decimal {
	if a.LessThan(b) {
		return a
	}
	return b
}

// Max returns the maximum of two values
func Max(a, b decimal.Decimal) decimal.Decimal {
	if a.GreaterThan(b) {
		return a
	}
	return b
}

// CalculatePercentage calculates what percentage value is of total. A zero
// total yields zero.
func CalculatePercentage(value, total decimal.Decimal) decimal.Decimal {
	if total.IsZero() {
		return decimal.Zero
	}
	return value.DivRound(total, constants.InternalPrecision).Mul(percentageMultiplier)
}
