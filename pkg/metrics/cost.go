package metrics

import (
	"github.com/iwvelando/loan-calculator/pkg/constants"
	"github.com/iwvelando/loan-calculator/pkg/loans"
	"github.com/iwvelando/loan-calculator/pkg/mathutil"
	"github.com/shopspring/decimal"
)

// CostAnalysis describes how the interest of a loan is spread over time.
type CostAnalysis struct {
	FirstYearInterest      decimal.Decimal `json:"firstYearInterest"`
	AverageMonthlyInterest decimal.Decimal `json:"averageMonthlyInterest"`
	// CrossoverMonth is the first month whose principal portion exceeds its
	// interest portion, 0 if none does.
	CrossoverMonth int `json:"crossoverMonth"`
	// HalfPaidMonth is the first month ending with at most half the
	// principal outstanding.
	HalfPaidMonth int   `json:"halfPaidMonth"`
	InterestShare Ratio `json:"interestShare"`
}

// AnalyzeCost walks the schedule of a result.
func AnalyzeCost(params loans.LoanParameters, result loans.PaymentMethodResult) CostAnalysis {
	cost := CostAnalysis{InterestShare: InterestShare(result)}
	schedule := result.Schedule
	if len(schedule) == 0 {
		return cost
	}

	half := mathutil.RoundCurrency(params.Principal).Div(decimal.NewFromInt(2))
	for _, item := range schedule {
		if item.Month <= constants.MonthsPerYear {
			cost.FirstYearInterest = cost.FirstYearInterest.Add(item.InterestPortion)
		}
		if cost.CrossoverMonth == 0 && item.PrincipalPortion.GreaterThan(item.InterestPortion) {
			cost.CrossoverMonth = item.Month
		}
		if cost.HalfPaidMonth == 0 && item.RemainingBalance.LessThanOrEqual(half) {
			cost.HalfPaidMonth = item.Month
		}
	}
	cost.AverageMonthlyInterest = mathutil.RoundCurrency(
		result.TotalInterest.DivRound(decimal.NewFromInt(int64(len(schedule))), constants.InternalPrecision))
	return cost
}

// PresentValue discounts every payment of the schedule to month 0 at the
// given annual rate in percent.
func PresentValue(schedule []loans.PaymentScheduleItem, annualDiscountPercent decimal.Decimal) decimal.Decimal {
	growth := decimal.NewFromInt(1).Add(mathutil.MonthlyRate(annualDiscountPercent))
	factor := decimal.NewFromInt(1)
	total := decimal.Zero
	for _, item := range schedule {
		factor = factor.Mul(growth).Round(constants.RatePrecision)
		total = total.Add(item.Payment.DivRound(factor, constants.InternalPrecision))
	}
	return mathutil.RoundCurrency(total)
}

// MethodComparison contrasts level-payment and level-principal repayment of
// the same loan.
type MethodComparison struct {
	EqualPaymentMonthly    decimal.Decimal `json:"equalPaymentMonthly"`
	EqualPrincipalFirst    decimal.Decimal `json:"equalPrincipalFirst"`
	EqualPrincipalLast     decimal.Decimal `json:"equalPrincipalLast"`
	EqualPaymentInterest   decimal.Decimal `json:"equalPaymentInterest"`
	EqualPrincipalInterest decimal.Decimal `json:"equalPrincipalInterest"`
	// InterestDifference is the extra interest paid with level payments.
	InterestDifference decimal.Decimal `json:"interestDifference"`
	// FirstPaymentDifference is how much higher the first level-principal
	// payment is.
	FirstPaymentDifference decimal.Decimal `json:"firstPaymentDifference"`
}

// CompareMethods compares two results of the same loan. MonthlyPayment of a
// level-principal result is its first, largest payment.
func CompareMethods(equalPayment, equalPrincipal loans.PaymentMethodResult) MethodComparison {
	c := MethodComparison{
		EqualPaymentMonthly:    equalPayment.MonthlyPayment,
		EqualPrincipalFirst:    equalPrincipal.MonthlyPayment,
		EqualPaymentInterest:   equalPayment.TotalInterest,
		EqualPrincipalInterest: equalPrincipal.TotalInterest,
		InterestDifference:     equalPayment.TotalInterest.Sub(equalPrincipal.TotalInterest),
		FirstPaymentDifference: equalPrincipal.MonthlyPayment.Sub(equalPayment.MonthlyPayment),
	}
	if n := len(equalPrincipal.Schedule); n > 0 {
		c.EqualPrincipalLast = equalPrincipal.Schedule[n-1].Payment
	}
	return c
}

// Benefit summarizes what a prepayment buys.
type Benefit struct {
	Amount        decimal.Decimal `json:"amount"`
	InterestSaved decimal.Decimal `json:"interestSaved"`
	MonthsSaved   int             `json:"monthsSaved"`
	// SavingsPerUnit is the interest saved per unit of money prepaid.
	SavingsPerUnit Ratio `json:"savingsPerUnit"`
}

// PrepaymentBenefit derives the return of a prepayment.
func PrepaymentBenefit(result loans.PrepaymentResult) Benefit {
	return Benefit{
		Amount:         result.Option.Amount,
		InterestSaved:  result.InterestSaved,
		MonthsSaved:    result.MonthsSaved,
		SavingsPerUnit: ratio(result.InterestSaved, result.Option.Amount),
	}
}
