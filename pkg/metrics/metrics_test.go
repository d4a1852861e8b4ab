package metrics_test

import (
	"testing"

	"github.com/iwvelando/loan-calculator/pkg/loans"
	"github.com/iwvelando/loan-calculator/pkg/metrics"
	"github.com/iwvelando/loan-calculator/pkg/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var d = testutil.D

func opt(s string) decimal.NullDecimal {
	return decimal.NewNullDecimal(d(s))
}

func mortgage(t *testing.T) (loans.LoanParameters, loans.PaymentMethodResult) {
	t.Helper()
	params := loans.LoanParameters{Principal: d("500000"), AnnualRatePercent: d("4.9"), TermYears: 30}
	result, err := loans.NewCalculator(nil).CalculateEqualPayment(params)
	require.NoError(t, err)
	return params, result
}

func TestRatios(t *testing.T) {
	params, result := mortgage(t)

	dti := metrics.DebtToIncome(result, metrics.Context{MonthlyIncome: opt("10000")})
	assert.True(t, dti.Available)
	assert.True(t, dti.Value.Equal(d("0.2654")), "debt to income = %s", dti.Value)

	total := metrics.TotalDebtToIncome(result, metrics.Context{MonthlyIncome: opt("10000"), OtherMonthlyDebt: opt("346.37")})
	assert.True(t, total.Value.Equal(d("0.3")), "total debt to income = %s", total.Value)

	ltv := metrics.LoanToValue(params, metrics.Context{PropertyValue: opt("800000")})
	assert.True(t, ltv.Value.Equal(d("0.625")), "loan to value = %s", ltv.Value)

	interest := metrics.InterestRatio(params, result)
	assert.True(t, interest.Value.Equal(d("0.9106")), "interest ratio = %s", interest.Value)

	share := metrics.InterestShare(result)
	assert.True(t, share.Value.Equal(d("0.4766")), "interest share = %s", share.Value)
}

func TestMissingContextIsNeutral(t *testing.T) {
	params, result := mortgage(t)
	empty := metrics.Context{}

	assert.False(t, metrics.DebtToIncome(result, empty).Available)
	assert.False(t, metrics.LoanToValue(params, empty).Available)
	assert.False(t, metrics.LoanToValue(params, metrics.Context{PropertyValue: opt("0")}).Available)
	assert.Equal(t, 50, metrics.AffordabilityScore(result, empty))
	assert.Equal(t, metrics.RiskUnknown, metrics.PaymentRisk(metrics.DebtToIncome(result, empty)))
	assert.Equal(t, metrics.RiskUnknown, metrics.RateRisk(params, empty))

	assessment := metrics.AssessRisk(params, result, empty)
	assert.Equal(t, metrics.RiskUnknown, assessment.Payment)
	assert.Equal(t, metrics.RiskMedium, assessment.Interest)
	assert.Equal(t, metrics.RiskMedium, assessment.Overall)
	assert.Empty(t, assessment.Flags)

	all := metrics.Evaluate(params, result, empty)
	assert.False(t, all.PresentValueAvailable)
}

func TestRiskBuckets(t *testing.T) {
	ratio := func(s string) metrics.Ratio { return metrics.Ratio{Value: d(s), Available: true} }

	tests := []struct {
		name     string
		got      metrics.RiskLevel
		expected metrics.RiskLevel
	}{
		{"Payment low", metrics.PaymentRisk(ratio("0.2654")), metrics.RiskLow},
		{"Payment at low cutoff", metrics.PaymentRisk(ratio("0.3")), metrics.RiskLow},
		{"Payment medium", metrics.PaymentRisk(ratio("0.4423")), metrics.RiskMedium},
		{"Payment at medium cutoff", metrics.PaymentRisk(ratio("0.5")), metrics.RiskMedium},
		{"Payment high", metrics.PaymentRisk(ratio("0.5307")), metrics.RiskHigh},
		{"LTV low", metrics.LTVRisk(ratio("0.5")), metrics.RiskLow},
		{"LTV at low cutoff", metrics.LTVRisk(ratio("0.6")), metrics.RiskLow},
		{"LTV at medium cutoff", metrics.LTVRisk(ratio("0.8")), metrics.RiskMedium},
		{"LTV high", metrics.LTVRisk(ratio("0.8001")), metrics.RiskHigh},
		{"Interest low", metrics.InterestRisk(ratio("0.5")), metrics.RiskLow},
		{"Interest medium", metrics.InterestRisk(ratio("1")), metrics.RiskMedium},
		{"Interest high", metrics.InterestRisk(ratio("1.01")), metrics.RiskHigh},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.got)
		})
	}
}

func TestRateRisk(t *testing.T) {
	params := loans.LoanParameters{Principal: d("100000"), AnnualRatePercent: d("4.9"), TermYears: 10}

	tests := []struct {
		market   string
		expected metrics.RiskLevel
	}{
		{"5.2", metrics.RiskLow},
		{"4.9", metrics.RiskLow},
		{"4.4", metrics.RiskMedium},
		{"4.3", metrics.RiskHigh},
	}
	for _, tt := range tests {
		t.Run(tt.market, func(t *testing.T) {
			assert.Equal(t, tt.expected, metrics.RateRisk(params, metrics.Context{MarketRate: opt(tt.market)}))
		})
	}
}

func TestAssessRisk(t *testing.T) {
	params, result := mortgage(t)

	assessment := metrics.AssessRisk(params, result, metrics.Context{
		MonthlyIncome: opt("5000"),
		PropertyValue: opt("1000000"),
		MarketRate:    opt("4.2"),
	})
	assert.Equal(t, metrics.RiskHigh, assessment.Payment)
	assert.Equal(t, metrics.RiskLow, assessment.LoanToValue)
	assert.Equal(t, metrics.RiskMedium, assessment.Interest)
	assert.Equal(t, metrics.RiskHigh, assessment.Rate)
	assert.Equal(t, metrics.RiskHigh, assessment.Overall)
	require.Len(t, assessment.Flags, 2)
	assert.Contains(t, assessment.Flags[0], "53.1%")
	assert.Contains(t, assessment.Flags[1], "0.70 points")
}

func TestAffordabilityScore(t *testing.T) {
	_, result := mortgage(t)

	tests := []struct {
		name     string
		ctx      metrics.Context
		expected int
	}{
		{"Comfortable", metrics.Context{MonthlyIncome: opt("10000"), OtherMonthlyDebt: opt("346.37")}, 70},
		{"Stretched", metrics.Context{MonthlyIncome: opt("5307.26")}, 50},
		{"Underwater", metrics.Context{MonthlyIncome: opt("2000")}, 0},
		{"No income", metrics.Context{OtherMonthlyDebt: opt("100")}, 50},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, metrics.AffordabilityScore(result, tt.ctx))
		})
	}
}

func TestAnalyzeCost(t *testing.T) {
	params, result := mortgage(t)

	cost := metrics.AnalyzeCost(params, result)
	assert.True(t, cost.FirstYearInterest.Equal(d("24332.77")), "first year interest = %s", cost.FirstYearInterest)
	assert.True(t, cost.AverageMonthlyInterest.Equal(d("1264.74")), "average monthly interest = %s", cost.AverageMonthlyInterest)
	assert.Equal(t, 191, cost.CrossoverMonth)
	assert.Equal(t, 241, cost.HalfPaidMonth)

	// Level principal pays more principal than interest from the start.
	byPrincipal, err := loans.NewCalculator(nil).CalculateEqualPrincipal(params)
	require.NoError(t, err)
	assert.Less(t, metrics.AnalyzeCost(params, byPrincipal).CrossoverMonth, 191)
}

func TestPresentValue(t *testing.T) {
	_, result := mortgage(t)

	atLoanRate := metrics.PresentValue(result.Schedule, d("4.9"))
	assert.True(t, atLoanRate.Sub(d("500000")).Abs().LessThan(d("1")),
		"discounting at the loan rate should return the principal, got %s", atLoanRate)

	higher := metrics.PresentValue(result.Schedule, d("6"))
	assert.True(t, higher.LessThan(atLoanRate))

	undiscounted := metrics.PresentValue(result.Schedule, d("0"))
	assert.True(t, undiscounted.Equal(result.TotalPayment), "undiscounted = %s", undiscounted)
}

func TestCompareMethods(t *testing.T) {
	params, level := mortgage(t)
	byPrincipal, err := loans.NewCalculator(nil).CalculateEqualPrincipal(params)
	require.NoError(t, err)

	c := metrics.CompareMethods(level, byPrincipal)
	assert.True(t, c.InterestDifference.Equal(d("86786.21")), "interest difference = %s", c.InterestDifference)
	assert.True(t, c.FirstPaymentDifference.Equal(d("776.93")), "first payment difference = %s", c.FirstPaymentDifference)
	assert.True(t, c.EqualPrincipalLast.LessThan(c.EqualPaymentMonthly))
}

func TestPrepaymentBenefit(t *testing.T) {
	params, _ := mortgage(t)
	prepaid, err := loans.NewCalculator(nil).ApplyPrepayment(params, loans.PrepaymentOption{
		Month: 60, Amount: d("50000"), Method: loans.ReduceTerm,
	})
	require.NoError(t, err)

	benefit := metrics.PrepaymentBenefit(prepaid)
	assert.Equal(t, 56, benefit.MonthsSaved)
	assert.True(t, benefit.InterestSaved.Equal(prepaid.InterestSaved))
	assert.True(t, benefit.SavingsPerUnit.Available)
	assert.True(t, benefit.SavingsPerUnit.Value.GreaterThan(d("1")),
		"saving %s on 50000 should exceed the amount", benefit.InterestSaved)
}

func TestMetricsDoNotMutateSchedule(t *testing.T) {
	params, result := mortgage(t)
	before := make([]loans.PaymentScheduleItem, len(result.Schedule))
	copy(before, result.Schedule)

	ctx := metrics.Context{
		MonthlyIncome:    opt("9000"),
		PropertyValue:    opt("750000"),
		MarketRate:       opt("4.5"),
		DiscountRate:     opt("3"),
		OtherMonthlyDebt: opt("400"),
	}
	all := metrics.Evaluate(params, result, ctx)
	assert.True(t, all.PresentValueAvailable)
	assert.True(t, all.PresentValue.GreaterThan(params.Principal))

	assert.Equal(t, before, result.Schedule)
}
