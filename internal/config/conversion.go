package config

import (
	"fmt"

	"github.com/iwvelando/loan-calculator/internal/optimizer"
	"github.com/iwvelando/loan-calculator/pkg/analysis"
	"github.com/iwvelando/loan-calculator/pkg/loans"
	"github.com/iwvelando/loan-calculator/pkg/metrics"
	"github.com/shopspring/decimal"
)

// decimalFromFloat converts a YAML number. NewFromFloat keeps the shortest
// representation, so 4.9 becomes exactly 4.9.
func decimalFromFloat(f float64) decimal.Decimal {
	return decimal.NewFromFloat(f)
}

func nullDecimal(f *float64) decimal.NullDecimal {
	if f == nil {
		return decimal.NullDecimal{}
	}
	return decimal.NewNullDecimal(decimalFromFloat(*f))
}

// Parameters converts the loan into engine parameters.
func (loan Loan) Parameters() loans.LoanParameters {
	return loans.LoanParameters{
		Principal:         decimalFromFloat(loan.Principal),
		AnnualRatePercent: decimalFromFloat(loan.AnnualRate),
		TermYears:         loan.TermYears,
	}
}

// PaymentMethod parses the configured repayment method.
func (loan Loan) PaymentMethod() (loans.PaymentMethod, error) {
	method, err := loans.ParsePaymentMethod(loan.Method)
	if err != nil {
		return "", fmt.Errorf("loan '%s': %w", loan.Name, err)
	}
	return method, nil
}

// Option converts the prepayment into an engine option.
func (p *Prepayment) Option() (loans.PrepaymentOption, error) {
	if p == nil {
		return loans.PrepaymentOption{}, fmt.Errorf("no prepayment configured")
	}
	method, err := loans.ParsePrepaymentMethod(p.Method)
	if err != nil {
		return loans.PrepaymentOption{}, err
	}
	return loans.PrepaymentOption{
		Month:  p.Month,
		Amount: decimalFromFloat(p.Amount),
		Method: method,
	}, nil
}

// Config converts the optimizer settings.
func (o *Optimizer) Config() (optimizer.Config, error) {
	if o == nil {
		return optimizer.Config{}, fmt.Errorf("no optimizer configured")
	}
	if optimizer.CanonicalField(o.Field) == "" {
		return optimizer.Config{}, fmt.Errorf("unsupported optimizer field %q", o.Field)
	}
	return optimizer.Config{
		Field:           o.Field,
		MaxPaymentRatio: decimalFromFloat(o.MaxPaymentRatio),
		Min:             decimalFromFloat(o.Min),
		Max:             decimalFromFloat(o.Max),
		Tolerance:       decimalFromFloat(o.Tolerance),
		MaxIterations:   o.MaxIterations,
	}, nil
}

// ToMetrics converts the context; a nil context has no values.
func (c *MetricsContext) ToMetrics() metrics.Context {
	if c == nil {
		return metrics.Context{}
	}
	return metrics.Context{
		MonthlyIncome:    nullDecimal(c.MonthlyIncome),
		PropertyValue:    nullDecimal(c.PropertyValue),
		MarketRate:       nullDecimal(c.MarketRate),
		DiscountRate:     nullDecimal(c.DiscountRate),
		OtherMonthlyDebt: nullDecimal(c.OtherMonthlyDebt),
	}
}

// Parameters converts the combined loan into engine parameters.
func (c CombinedLoan) Parameters() (loans.CombinedLoanParameters, error) {
	method, err := loans.ParsePaymentMethod(c.Method)
	if err != nil {
		return loans.CombinedLoanParameters{}, fmt.Errorf("combined loan '%s': %w", c.Name, err)
	}
	return loans.CombinedLoanParameters{
		Commercial: loans.LoanLeg{
			Principal:         decimalFromFloat(c.Commercial.Principal),
			AnnualRatePercent: decimalFromFloat(c.Commercial.AnnualRate),
		},
		ProvidentFund: loans.LoanLeg{
			Principal:         decimalFromFloat(c.ProvidentFund.Principal),
			AnnualRatePercent: decimalFromFloat(c.ProvidentFund.AnnualRate),
		},
		TermYears: c.TermYears,
		Method:    method,
	}, nil
}

// Baseline returns the loan the sweep varies.
func (s Sensitivity) Baseline() (principal, annualRatePercent decimal.Decimal, termYears int) {
	return decimalFromFloat(s.Principal), decimalFromFloat(s.AnnualRate), s.TermYears
}

// Sweep converts the swept values.
func (s Sensitivity) Sweep() analysis.SensitivitySweepConfig {
	sweep := analysis.SensitivitySweepConfig{TermValues: s.TermValues}
	for _, rate := range s.RateValues {
		sweep.RateValues = append(sweep.RateValues, decimalFromFloat(rate))
	}
	return sweep
}

// ToScenarios converts the scenario items in order.
func (s ScenarioSet) ToScenarios() []analysis.Scenario {
	scenarios := make([]analysis.Scenario, 0, len(s.Items))
	for _, item := range s.Items {
		scenarios = append(scenarios, analysis.Scenario{
			ID:   item.ID,
			Name: item.Name,
			Parameters: loans.LoanParameters{
				Principal:         decimalFromFloat(item.Principal),
				AnnualRatePercent: decimalFromFloat(item.AnnualRate),
				TermYears:         item.TermYears,
			},
		})
	}
	return scenarios
}
