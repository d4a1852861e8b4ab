package config

import (
	"testing"

	"github.com/iwvelando/loan-calculator/pkg/loans"
	"github.com/shopspring/decimal"
)

func floatPtr(value float64) *float64 {
	return &value
}

func TestLoanParameters(t *testing.T) {
	loan := Loan{Name: "Home", Principal: 500000, AnnualRate: 4.9, TermYears: 30}

	params := loan.Parameters()
	if !params.Principal.Equal(decimal.NewFromInt(500000)) {
		t.Errorf("Principal = %s, expected 500000", params.Principal)
	}
	if params.AnnualRatePercent.String() != "4.9" {
		t.Errorf("AnnualRatePercent = %s, expected exactly 4.9", params.AnnualRatePercent)
	}
	if params.TermYears != 30 {
		t.Errorf("TermYears = %d, expected 30", params.TermYears)
	}

	method, err := loan.PaymentMethod()
	if err != nil || method != loans.EqualPayment {
		t.Errorf("PaymentMethod() = %v, %v; expected equalPayment", method, err)
	}

	loan.Method = "balloon"
	if _, err := loan.PaymentMethod(); err == nil {
		t.Errorf("PaymentMethod() expected error for unknown method")
	}
}

func TestPrepaymentOption(t *testing.T) {
	p := &Prepayment{Month: 60, Amount: 50000, Method: "reducePayment"}
	option, err := p.Option()
	if err != nil {
		t.Fatalf("Option() error = %v", err)
	}
	if option.Month != 60 || !option.Amount.Equal(decimal.NewFromInt(50000)) || option.Method != loans.ReducePayment {
		t.Errorf("Option() = %+v", option)
	}

	var missing *Prepayment
	if _, err := missing.Option(); err == nil {
		t.Errorf("Option() on nil prepayment expected error")
	}

	bad := &Prepayment{Month: 1, Amount: 1, Method: "skip"}
	if _, err := bad.Option(); err == nil {
		t.Errorf("Option() expected error for unknown method")
	}
}

func TestOptimizerConfig(t *testing.T) {
	o := &Optimizer{Field: "termYears", MaxPaymentRatio: 0.28, Max: 25}
	cfg, err := o.Config()
	if err != nil {
		t.Fatalf("Config() error = %v", err)
	}
	if cfg.MaxPaymentRatio.String() != "0.28" || !cfg.Max.Equal(decimal.NewFromInt(25)) || !cfg.Min.IsZero() {
		t.Errorf("Config() = %+v", cfg)
	}

	var missing *Optimizer
	if _, err := missing.Config(); err == nil {
		t.Errorf("Config() on nil optimizer expected error")
	}

	bad := &Optimizer{Field: "rate"}
	if _, err := bad.Config(); err == nil {
		t.Errorf("Config() expected error for unsupported field")
	}
}

func TestMetricsContext(t *testing.T) {
	var missing *MetricsContext
	if ctx := missing.ToMetrics(); ctx.MonthlyIncome.Valid || ctx.PropertyValue.Valid {
		t.Errorf("ToMetrics() on nil context returned values: %+v", ctx)
	}

	c := &MetricsContext{MonthlyIncome: floatPtr(12000), MarketRate: floatPtr(4.2)}
	ctx := c.ToMetrics()
	if !ctx.MonthlyIncome.Valid || !ctx.MonthlyIncome.Decimal.Equal(decimal.NewFromInt(12000)) {
		t.Errorf("MonthlyIncome = %+v, expected 12000", ctx.MonthlyIncome)
	}
	if ctx.MarketRate.Decimal.String() != "4.2" {
		t.Errorf("MarketRate = %s, expected 4.2", ctx.MarketRate.Decimal)
	}
	if ctx.PropertyValue.Valid || ctx.DiscountRate.Valid || ctx.OtherMonthlyDebt.Valid {
		t.Errorf("unset fields should be null: %+v", ctx)
	}
}

func TestCombinedParameters(t *testing.T) {
	c := CombinedLoan{
		Name:          "Combo",
		TermYears:     25,
		Method:        "equalPrincipal",
		Commercial:    LoanLeg{Principal: 1000000, AnnualRate: 4.9},
		ProvidentFund: LoanLeg{Principal: 600000, AnnualRate: 3.25},
	}
	params, err := c.Parameters()
	if err != nil {
		t.Fatalf("Parameters() error = %v", err)
	}
	if params.Method != loans.EqualPrincipal || params.TermYears != 25 {
		t.Errorf("Parameters() = %+v", params)
	}
	if params.ProvidentFund.AnnualRatePercent.String() != "3.25" {
		t.Errorf("provident fund rate = %s, expected 3.25", params.ProvidentFund.AnnualRatePercent)
	}
}

func TestSweepAndScenarios(t *testing.T) {
	s := Sensitivity{RateValues: []float64{3.5, 6}, TermValues: []int{10, 20}}
	sweep := s.Sweep()
	if len(sweep.RateValues) != 2 || sweep.RateValues[0].String() != "3.5" {
		t.Errorf("Sweep() rates = %v", sweep.RateValues)
	}
	if len(sweep.TermValues) != 2 {
		t.Errorf("Sweep() terms = %v", sweep.TermValues)
	}

	set := ScenarioSet{Items: []ScenarioItem{
		{ID: "a", Name: "A", Principal: 100000, AnnualRate: 4, TermYears: 10},
		{Name: "B", Principal: 100000, AnnualRate: 5, TermYears: 10},
	}}
	scenarios := set.ToScenarios()
	if len(scenarios) != 2 || scenarios[0].ID != "a" || scenarios[1].ID != "" {
		t.Errorf("ToScenarios() = %+v", scenarios)
	}
	if scenarios[1].Parameters.AnnualRatePercent.String() != "5" {
		t.Errorf("second scenario rate = %s", scenarios[1].Parameters.AnnualRatePercent)
	}
}
