// Package analysis sweeps loan parameters and compares loan scenarios.
package analysis

import (
	"fmt"

	"github.com/iwvelando/loan-calculator/pkg/loans"
	"github.com/iwvelando/loan-calculator/pkg/mathutil"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Analyzer runs sensitivity sweeps and scenario comparisons on top of the
// amortization engine.
type Analyzer struct {
	calc    *loans.Calculator
	logger  *zap.Logger
	workers int
}

// NewAnalyzer creates a new analyzer. workers bounds the parallelism of
// scenario evaluation; zero selects the default.
func NewAnalyzer(logger *zap.Logger, workers int) *Analyzer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Analyzer{
		calc:    loans.NewCalculator(logger),
		logger:  logger,
		workers: workers,
	}
}

// AnalyzeSensitivity evaluates the baseline loan and every requested rate
// (term held fixed) and term (rate held fixed) with level payments. The two
// sweeps are independent; no rate/term grid is evaluated.
func (a *Analyzer) AnalyzeSensitivity(principal, baselineRate decimal.Decimal, baselineTerm int, sweep SensitivitySweepConfig) (SensitivityReport, error) {
	baseline, err := a.calc.CalculateEqualPayment(loans.LoanParameters{
		Principal:         principal,
		AnnualRatePercent: baselineRate,
		TermYears:         baselineTerm,
	})
	if err != nil {
		return SensitivityReport{}, fmt.Errorf("baseline: %w", err)
	}

	report := SensitivityReport{
		Principal:    principal,
		BaselineRate: baselineRate,
		BaselineTerm: baselineTerm,
		Baseline:     summarize(baseline),
	}

	for _, rate := range sweep.RateValues {
		result, err := a.calc.CalculateEqualPayment(loans.LoanParameters{
			Principal:         principal,
			AnnualRatePercent: rate,
			TermYears:         baselineTerm,
		})
		if err != nil {
			return SensitivityReport{}, fmt.Errorf("rate %s: %w", rate, err)
		}
		report.Rate = append(report.Rate, sensitivityPoint(ParameterRate, rate, baseline, result))
	}

	for _, term := range sweep.TermValues {
		result, err := a.calc.CalculateEqualPayment(loans.LoanParameters{
			Principal:         principal,
			AnnualRatePercent: baselineRate,
			TermYears:         term,
		})
		if err != nil {
			return SensitivityReport{}, fmt.Errorf("term %d: %w", term, err)
		}
		report.Term = append(report.Term, sensitivityPoint(ParameterTerm, decimal.NewFromInt(int64(term)), baseline, result))
	}

	report.MostSensitive = mostSensitive(report.Rate, report.Term)

	a.logger.Debug(fmt.Sprintf("sensitivity sweep of %d rates and %d terms, most sensitive %q",
		len(report.Rate), len(report.Term), report.MostSensitive),
		zap.String("op", "analysis.AnalyzeSensitivity"),
	)
	return report, nil
}

func sensitivityPoint(parameter string, value decimal.Decimal, baseline, variant loans.PaymentMethodResult) SensitivityResult {
	return SensitivityResult{
		Parameter:                  parameter,
		VariedValue:                value,
		MonthlyPayment:             variant.MonthlyPayment,
		TotalInterest:              variant.TotalInterest,
		PercentageChangeVsBaseline: percentChange(baseline.TotalInterest, variant.TotalInterest),
	}
}

// percentChange returns (variant - baseline) / baseline * 100 rounded to two
// places, or zero when the baseline is zero.
func percentChange(baseline, variant decimal.Decimal) decimal.Decimal {
	return mathutil.RoundCurrency(mathutil.CalculatePercentage(variant.Sub(baseline), baseline))
}

// mostSensitive returns the parameter whose sweep moved total interest the
// most. Ties go to the rate.
func mostSensitive(rate, term []SensitivityResult) string {
	swing := func(results []SensitivityResult) decimal.Decimal {
		largest := decimal.Zero
		for _, r := range results {
			largest = mathutil.Max(largest, r.PercentageChangeVsBaseline.Abs())
		}
		return largest
	}

	switch {
	case len(rate) == 0 && len(term) == 0:
		return ""
	case len(term) == 0:
		return ParameterRate
	case len(rate) == 0:
		return ParameterTerm
	case swing(term).GreaterThan(swing(rate)):
		return ParameterTerm
	default:
		return ParameterRate
	}
}

func summarize(result loans.PaymentMethodResult) Summary {
	return Summary{
		MonthlyPayment: result.MonthlyPayment,
		TotalPayment:   result.TotalPayment,
		TotalInterest:  result.TotalInterest,
	}
}
