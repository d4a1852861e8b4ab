package analysis

import (
	"errors"

	"github.com/iwvelando/loan-calculator/pkg/loans"
	"github.com/shopspring/decimal"
)

// ErrNoScenarios is returned when a comparison is requested without any
// scenario to use as the baseline.
var ErrNoScenarios = errors.New("at least one scenario is required")

// Swept parameter names.
const (
	ParameterRate = "rate"
	ParameterTerm = "term"
)

// SensitivitySweepConfig lists the values to try for each parameter. Either
// list may be empty.
type SensitivitySweepConfig struct {
	RateValues []decimal.Decimal `json:"rateValues,omitempty"`
	TermValues []int             `json:"termValues,omitempty"`
}

// Summary is the headline figures of a calculation without its schedule.
type Summary struct {
	MonthlyPayment decimal.Decimal `json:"monthlyPayment"`
	TotalPayment   decimal.Decimal `json:"totalPayment"`
	TotalInterest  decimal.Decimal `json:"totalInterest"`
}

// SensitivityResult is one evaluated point of a sweep.
type SensitivityResult struct {
	Parameter      string          `json:"parameter"`
	VariedValue    decimal.Decimal `json:"variedValue"`
	MonthlyPayment decimal.Decimal `json:"monthlyPayment"`
	TotalInterest  decimal.Decimal `json:"totalInterest"`
	// PercentageChangeVsBaseline is the change of total interest relative to
	// the baseline, in percent.
	PercentageChangeVsBaseline decimal.Decimal `json:"percentageChangeVsBaseline"`
}

// SensitivityReport holds the rate sweep and the term sweep of a loan.
type SensitivityReport struct {
	Principal    decimal.Decimal     `json:"principal"`
	BaselineRate decimal.Decimal     `json:"baselineRate"`
	BaselineTerm int                 `json:"baselineTerm"`
	Baseline     Summary             `json:"baseline"`
	Rate         []SensitivityResult `json:"rate,omitempty"`
	Term         []SensitivityResult `json:"term,omitempty"`
	// MostSensitive names the parameter with the largest absolute interest
	// swing, empty when nothing was swept.
	MostSensitive string `json:"mostSensitive,omitempty"`
}

// Scenario is a named set of loan parameters. Result is filled in by
// AnalyzeScenarios.
type Scenario struct {
	ID         string                     `json:"id"`
	Name       string                     `json:"name"`
	Parameters loans.LoanParameters       `json:"parameters"`
	Result     *loans.PaymentMethodResult `json:"result,omitempty"`
}

// ScenarioDelta compares one scenario to the baseline.
type ScenarioDelta struct {
	ID                        string          `json:"id"`
	Name                      string          `json:"name"`
	MonthlyPayment            decimal.Decimal `json:"monthlyPayment"`
	TotalInterest             decimal.Decimal `json:"totalInterest"`
	MonthlyPaymentDelta       decimal.Decimal `json:"monthlyPaymentDelta"`
	TotalInterestDelta        decimal.Decimal `json:"totalInterestDelta"`
	TotalInterestDeltaPercent decimal.Decimal `json:"totalInterestDeltaPercent"`
}

// ScenarioRef points at a scenario of a comparison.
type ScenarioRef struct {
	Index int    `json:"index"`
	ID    string `json:"id"`
	Name  string `json:"name"`
}

// Tradeoff is reported when no scenario minimizes both interest and payment.
type Tradeoff struct {
	LowestInterest ScenarioRef `json:"lowestInterest"`
	LowestPayment  ScenarioRef `json:"lowestPayment"`
}

// Recommendation holds exactly one of BestOverall and Tradeoff.
type Recommendation struct {
	BestOverall *ScenarioRef `json:"bestOverall,omitempty"`
	Tradeoff    *Tradeoff    `json:"tradeoff,omitempty"`
}

// ScenarioComparison is the result of AnalyzeScenarios. Scenarios and Deltas
// share the input order; index 0 is the baseline.
type ScenarioComparison struct {
	Scenarios      []Scenario      `json:"scenarios"`
	Deltas         []ScenarioDelta `json:"deltas"`
	Recommendation Recommendation  `json:"recommendation"`
}
