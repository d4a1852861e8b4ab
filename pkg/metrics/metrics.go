// Package metrics derives ratios, risk levels and cost figures from loan
// results. Every function is pure: schedules are read, never modified, and
// missing optional context yields a neutral value instead of an error.
package metrics

import (
	"github.com/iwvelando/loan-calculator/pkg/constants"
	"github.com/iwvelando/loan-calculator/pkg/loans"
	"github.com/iwvelando/loan-calculator/pkg/mathutil"
	"github.com/shopspring/decimal"
)

// RatioPlaces is the number of decimal places ratios are rounded to.
const RatioPlaces = 4

// Context is the borrower and market information a caller may supply.
// Rates are annual percentages.
type Context struct {
	MonthlyIncome    decimal.NullDecimal `json:"monthlyIncome"`
	PropertyValue    decimal.NullDecimal `json:"propertyValue"`
	MarketRate       decimal.NullDecimal `json:"marketRate"`
	DiscountRate     decimal.NullDecimal `json:"discountRate"`
	OtherMonthlyDebt decimal.NullDecimal `json:"otherMonthlyDebt"`
}

// Ratio is a computed ratio. Available is false when the context needed to
// compute it was missing or zero.
type Ratio struct {
	Value     decimal.Decimal `json:"value"`
	Available bool            `json:"available"`
}

func ratio(numerator, denominator decimal.Decimal) Ratio {
	if !denominator.IsPositive() {
		return Ratio{}
	}
	return Ratio{Value: numerator.DivRound(denominator, RatioPlaces), Available: true}
}

func present(v decimal.NullDecimal) bool {
	return v.Valid && v.Decimal.IsPositive()
}

// DebtToIncome is the monthly payment divided by the monthly income.
func DebtToIncome(result loans.PaymentMethodResult, ctx Context) Ratio {
	if !present(ctx.MonthlyIncome) {
		return Ratio{}
	}
	return ratio(result.MonthlyPayment, ctx.MonthlyIncome.Decimal)
}

// TotalDebtToIncome adds the other monthly debt of the borrower to the
// payment before dividing by the income.
func TotalDebtToIncome(result loans.PaymentMethodResult, ctx Context) Ratio {
	if !present(ctx.MonthlyIncome) {
		return Ratio{}
	}
	debt := result.MonthlyPayment
	if ctx.OtherMonthlyDebt.Valid {
		debt = debt.Add(ctx.OtherMonthlyDebt.Decimal)
	}
	return ratio(debt, ctx.MonthlyIncome.Decimal)
}

// LoanToValue is the principal divided by the property value.
func LoanToValue(params loans.LoanParameters, ctx Context) Ratio {
	if !present(ctx.PropertyValue) {
		return Ratio{}
	}
	return ratio(params.Principal, ctx.PropertyValue.Decimal)
}

// InterestRatio is the total interest divided by the principal.
func InterestRatio(params loans.LoanParameters, result loans.PaymentMethodResult) Ratio {
	return ratio(result.TotalInterest, params.Principal)
}

// InterestShare is the part of all money paid that goes to interest.
func InterestShare(result loans.PaymentMethodResult) Ratio {
	return ratio(result.TotalInterest, result.TotalPayment)
}

// AffordabilityScore rates the total debt burden from 0 (all income goes to
// debt) to 100 (no debt). Without an income the neutral score is returned.
func AffordabilityScore(result loans.PaymentMethodResult, ctx Context) int {
	dti := TotalDebtToIncome(result, ctx)
	if !dti.Available {
		return constants.NeutralScore
	}
	score := decimal.NewFromInt(100).Sub(dti.Value.Mul(decimal.NewFromInt(100))).Round(0)
	score = mathutil.Max(decimal.Zero, mathutil.Min(decimal.NewFromInt(100), score))
	return int(score.IntPart())
}

// Metrics bundles every derived figure of a single loan.
type Metrics struct {
	DebtToIncome       Ratio           `json:"debtToIncome"`
	TotalDebtToIncome  Ratio           `json:"totalDebtToIncome"`
	LoanToValue        Ratio           `json:"loanToValue"`
	InterestRatio      Ratio           `json:"interestRatio"`
	InterestShare      Ratio           `json:"interestShare"`
	AffordabilityScore int             `json:"affordabilityScore"`
	Risk               RiskAssessment  `json:"risk"`
	Cost               CostAnalysis    `json:"cost"`
	PresentValue       decimal.Decimal `json:"presentValue"`
	// PresentValueAvailable is false when no discount rate was supplied.
	PresentValueAvailable bool `json:"presentValueAvailable"`
}

// Evaluate computes all metrics of a loan.
func Evaluate(params loans.LoanParameters, result loans.PaymentMethodResult, ctx Context) Metrics {
	m := Metrics{
		DebtToIncome:       DebtToIncome(result, ctx),
		TotalDebtToIncome:  TotalDebtToIncome(result, ctx),
		LoanToValue:        LoanToValue(params, ctx),
		InterestRatio:      InterestRatio(params, result),
		InterestShare:      InterestShare(result),
		AffordabilityScore: AffordabilityScore(result, ctx),
		Risk:               AssessRisk(params, result, ctx),
		Cost:               AnalyzeCost(params, result),
	}
	if ctx.DiscountRate.Valid && !ctx.DiscountRate.Decimal.IsNegative() {
		m.PresentValue = PresentValue(result.Schedule, ctx.DiscountRate.Decimal)
		m.PresentValueAvailable = true
	}
	return m
}
