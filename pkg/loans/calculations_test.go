package loans_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/iwvelando/loan-calculator/pkg/loans"
	"github.com/iwvelando/loan-calculator/pkg/mathutil"
	"github.com/iwvelando/loan-calculator/pkg/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var d = testutil.D

func params(principal, rate string, years int) loans.LoanParameters {
	return loans.LoanParameters{
		Principal:         d(principal),
		AnnualRatePercent: d(rate),
		TermYears:         years,
	}
}

func TestCalculateEqualPaymentConcreteScenarios(t *testing.T) {
	calc := loans.NewCalculator(zap.NewNop())

	t.Run("500000 at 4.9% over 30 years", func(t *testing.T) {
		result, err := calc.CalculateEqualPayment(params("500000", "4.9", 30))
		require.NoError(t, err)

		require.Len(t, result.Schedule, 360)
		assert.True(t, result.MonthlyPayment.Equal(d("2653.63")), "monthly payment = %s", result.MonthlyPayment)
		assert.True(t, result.TotalInterest.Equal(result.TotalPayment.Sub(d("500000"))))
		assert.True(t, mathutil.WithinTolerance(result.TotalPayment, d("955306.80"), d("0.05")),
			"total payment = %s", result.TotalPayment)
		assert.Equal(t, loans.EqualPayment, result.Method)
	})

	t.Run("100000 at 0% over 10 years", func(t *testing.T) {
		result, err := calc.CalculateEqualPayment(params("100000", "0", 10))
		require.NoError(t, err)

		require.Len(t, result.Schedule, 120)
		assert.True(t, result.MonthlyPayment.Equal(d("833.33")), "monthly payment = %s", result.MonthlyPayment)
		assert.True(t, result.TotalInterest.IsZero(), "total interest = %s", result.TotalInterest)
		assert.True(t, result.TotalPayment.Equal(d("100000")), "total payment = %s", result.TotalPayment)
		for _, item := range result.Schedule {
			assert.True(t, item.InterestPortion.IsZero(), "month %d interest %s", item.Month, item.InterestPortion)
		}
	})
}

func TestCalculateEqualPaymentInvariants(t *testing.T) {
	calc := loans.NewCalculator(nil)

	for _, principal := range []string{"1000", "12345.67", "175000", "500000", "3000000"} {
		for _, rate := range []string{"0", "0.5", "3.25", "4.9", "18"} {
			for _, years := range []int{1, 5, 15, 30} {
				name := fmt.Sprintf("%s_%s%%_%dy", principal, rate, years)
				t.Run(name, func(t *testing.T) {
					p := params(principal, rate, years)
					result, err := calc.CalculateEqualPayment(p)
					require.NoError(t, err)

					require.Len(t, result.Schedule, years*12)
					testutil.CheckScheduleInvariants(t, p.Principal, p.Principal, result)
					testutil.CheckLevelPayment(t, result.Schedule)
				})
			}
		}
	}
}

func TestCalculateEqualPaymentHighRateLongTerm(t *testing.T) {
	calc := loans.NewCalculator(nil)

	tests := []struct {
		principal string
		rate      string
		years     int
		payment   string
	}{
		{"99.99", "300", 10, "25"},
		{"500000", "36", 100, "15000"},
		{"100", "24", 100, "2"},
		{"500000", "100", 50, "41666.67"},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("%s_%s%%_%dy", tt.principal, tt.rate, tt.years), func(t *testing.T) {
			p := params(tt.principal, tt.rate, tt.years)
			result, err := calc.CalculateEqualPayment(p)
			require.NoError(t, err)

			require.Len(t, result.Schedule, tt.years*12)
			testutil.CheckScheduleInvariants(t, p.Principal, p.Principal, result)
			assert.True(t, result.MonthlyPayment.Equal(d(tt.payment)), "monthly payment = %s", result.MonthlyPayment)
			last := result.Schedule[len(result.Schedule)-1]
			assert.True(t, last.Payment.Equal(result.MonthlyPayment),
				"final payment %s differs from %s", last.Payment, result.MonthlyPayment)
		})
	}
}

func TestCalculateEqualPaymentExtremeInvariants(t *testing.T) {
	calc := loans.NewCalculator(nil)

	for _, principal := range []string{"99.99", "100", "500000"} {
		for _, rate := range []string{"24", "36", "100", "300"} {
			for _, years := range []int{10, 50, 100} {
				name := fmt.Sprintf("%s_%s%%_%dy", principal, rate, years)
				t.Run(name, func(t *testing.T) {
					p := params(principal, rate, years)
					result, err := calc.CalculateEqualPayment(p)
					require.NoError(t, err)

					require.Len(t, result.Schedule, years*12)
					testutil.CheckScheduleInvariants(t, p.Principal, p.Principal, result)
					testutil.CheckLevelPayment(t, result.Schedule)
				})
			}
		}
	}
}

func TestCalculateEqualPrincipalInvariants(t *testing.T) {
	calc := loans.NewCalculator(nil)

	for _, principal := range []string{"1000", "12345.67", "500000"} {
		for _, rate := range []string{"0", "3.25", "4.9", "18"} {
			for _, years := range []int{1, 10, 30} {
				name := fmt.Sprintf("%s_%s%%_%dy", principal, rate, years)
				t.Run(name, func(t *testing.T) {
					p := params(principal, rate, years)
					result, err := calc.CalculateEqualPrincipal(p)
					require.NoError(t, err)

					require.Len(t, result.Schedule, years*12)
					testutil.CheckScheduleInvariants(t, p.Principal, p.Principal, result)
					testutil.CheckLevelPrincipal(t, result.Schedule)
					assert.Equal(t, loans.EqualPrincipal, result.Method)
				})
			}
		}
	}
}

func TestCalculateEqualPrincipalFirstPaymentIsMaximum(t *testing.T) {
	calc := loans.NewCalculator(nil)
	result, err := calc.CalculateEqualPrincipal(params("500000", "4.9", 30))
	require.NoError(t, err)

	// 500000/360 = 1388.89 principal + 500000*4.9%/12 = 2041.67 interest.
	assert.True(t, result.MonthlyPayment.Equal(d("3430.56")), "monthly payment = %s", result.MonthlyPayment)
	last := result.Schedule[len(result.Schedule)-1]
	assert.True(t, last.Payment.LessThan(result.MonthlyPayment))

	level, err := calc.CalculateEqualPayment(params("500000", "4.9", 30))
	require.NoError(t, err)
	assert.True(t, result.TotalInterest.LessThan(level.TotalInterest),
		"level principal interest %s should be below level payment interest %s",
		result.TotalInterest, level.TotalInterest)
}

func TestZeroRateEqualPrincipal(t *testing.T) {
	calc := loans.NewCalculator(nil)
	result, err := calc.CalculateEqualPrincipal(params("100000", "0", 10))
	require.NoError(t, err)

	assert.True(t, result.TotalInterest.IsZero())
	assert.True(t, result.MonthlyPayment.Equal(d("833.34")), "monthly payment = %s", result.MonthlyPayment)
	assert.True(t, result.Schedule[119].Payment.Equal(d("833.33")))
}

func TestCalculateIsIdempotent(t *testing.T) {
	calc := loans.NewCalculator(nil)
	p := params("318000", "5.35", 25)

	first, err := calc.CalculateEqualPayment(p)
	require.NoError(t, err)
	second, err := calc.CalculateEqualPayment(p)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestCalculateDispatch(t *testing.T) {
	calc := loans.NewCalculator(nil)
	p := params("200000", "6", 30)

	level, err := calc.Calculate(p, loans.EqualPayment)
	require.NoError(t, err)
	assert.True(t, level.MonthlyPayment.Equal(d("1199.10")), "monthly payment = %s", level.MonthlyPayment)

	byPrincipal, err := calc.Calculate(p, loans.EqualPrincipal)
	require.NoError(t, err)
	assert.Equal(t, loans.EqualPrincipal, byPrincipal.Method)

	_, err = calc.Calculate(p, loans.PaymentMethod("balloon"))
	assert.Error(t, err)
}

func TestInvalidLoanParameters(t *testing.T) {
	calc := loans.NewCalculator(nil)

	tests := []struct {
		name  string
		p     loans.LoanParameters
		field string
	}{
		{"Negative principal", params("-1", "5", 10), "principal"},
		{"Zero principal", params("0", "5", 10), "principal"},
		{"Sub-cent principal", params("0.001", "5", 10), "principal"},
		{"Negative rate", params("100000", "-0.1", 10), "annualRatePercent"},
		{"Zero term", params("100000", "5", 0), "termYears"},
		{"Negative term", params("100000", "5", -3), "termYears"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, method := range []loans.PaymentMethod{loans.EqualPayment, loans.EqualPrincipal} {
				_, err := calc.Calculate(tt.p, method)
				require.Error(t, err)
				assert.True(t, errors.Is(err, loans.ErrInvalidLoanParameters))

				var invalid *loans.InvalidLoanParametersError
				require.True(t, errors.As(err, &invalid))
				assert.Equal(t, tt.field, invalid.Field)
			}
		})
	}
}

func TestLevelPayment(t *testing.T) {
	tests := []struct {
		name      string
		principal string
		rate      string
		months    int
		expected  string
	}{
		{"Standard 30-year mortgage", "240000", "6", 360, "1438.92"},
		{"5-year car loan", "20000", "4", 60, "368.33"},
		{"Zero interest loan", "10000", "0", 60, "166.67"},
		{"High interest loan", "10000", "18", 36, "361.52"},
		{"Interest-only for a century", "500000", "36", 1200, "15000"},
		{"Extreme rate", "99.99", "300", 120, "25"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			payment, err := loans.LevelPayment(d(tt.principal), mathutil.MonthlyRate(d(tt.rate)), tt.months)
			require.NoError(t, err)
			assert.True(t, mathutil.RoundCurrency(payment).Equal(d(tt.expected)),
				"LevelPayment() = %s, expected %s", payment, tt.expected)
		})
	}

	_, err := loans.LevelPayment(d("1000"), decimal.Zero, 0)
	assert.ErrorIs(t, err, loans.ErrInvalidLoanParameters)
}

func TestParseMethods(t *testing.T) {
	method, err := loans.ParsePaymentMethod("")
	require.NoError(t, err)
	assert.Equal(t, loans.EqualPayment, method)

	method, err = loans.ParsePaymentMethod("equalPrincipal")
	require.NoError(t, err)
	assert.Equal(t, loans.EqualPrincipal, method)

	_, err = loans.ParsePaymentMethod("interestOnly")
	assert.Error(t, err)

	prepay, err := loans.ParsePrepaymentMethod("reduceTerm")
	require.NoError(t, err)
	assert.Equal(t, loans.ReduceTerm, prepay)

	prepay, err = loans.ParsePrepaymentMethod("REDUCE_PAYMENT")
	require.NoError(t, err)
	assert.Equal(t, loans.ReducePayment, prepay)

	_, err = loans.ParsePrepaymentMethod("")
	assert.Error(t, err)
}

func BenchmarkCalculateEqualPayment(b *testing.B) {
	calc := loans.NewCalculator(nil)
	p := params("500000", "4.9", 30)
	for i := 0; i < b.N; i++ {
		if _, err := calc.CalculateEqualPayment(p); err != nil {
			b.Fatal(err)
		}
	}
}
