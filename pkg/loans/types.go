package loans

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// PaymentMethod selects the amortization formula.
type PaymentMethod string

const (
	// EqualPayment is the level-payment method: constant monthly payment with
	// a shifting principal/interest mix.
	EqualPayment PaymentMethod = "equalPayment"

	// EqualPrincipal is the level-principal method: constant principal
	// portion with a decreasing monthly payment.
	EqualPrincipal PaymentMethod = "equalPrincipal"
)

// ParsePaymentMethod maps a configuration string onto a PaymentMethod. An
// empty string selects EqualPayment.
func ParsePaymentMethod(value string) (PaymentMethod, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "", "equalpayment", "equal_payment", "level-payment", "levelpayment":
		return EqualPayment, nil
	case "equalprincipal", "equal_principal", "level-principal", "levelprincipal":
		return EqualPrincipal, nil
	default:
		return "", fmt.Errorf("unknown payment method %q", value)
	}
}

// PrepaymentMethod selects how the loan is restructured after a lump sum.
type PrepaymentMethod string

const (
	// ReduceTerm keeps the monthly payment and shortens the loan.
	ReduceTerm PrepaymentMethod = "reduceTerm"

	// ReducePayment keeps the original term and lowers the monthly payment.
	ReducePayment PrepaymentMethod = "reducePayment"
)

// ParsePrepaymentMethod maps a configuration string onto a PrepaymentMethod.
func ParsePrepaymentMethod(value string) (PrepaymentMethod, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "reduceterm", "reduce_term", "term":
		return ReduceTerm, nil
	case "reducepayment", "reduce_payment", "payment":
		return ReducePayment, nil
	default:
		return "", fmt.Errorf("unknown prepayment method %q", value)
	}
}

// LoanParameters holds the inputs of a single loan.
type LoanParameters struct {
	Principal         decimal.Decimal `json:"principal"`
	AnnualRatePercent decimal.Decimal `json:"annualRatePercent"`
	TermYears         int             `json:"termYears"`
}

// TermMonths returns the number of monthly payments of the loan.
func (p LoanParameters) TermMonths() int {
	return p.TermYears * monthsPerYear
}

// PaymentScheduleItem holds the values for a given month. All amounts are
// rounded to cents.
type PaymentScheduleItem struct {
	Month            int             `json:"month"`
	Payment          decimal.Decimal `json:"payment"`
	PrincipalPortion decimal.Decimal `json:"principalPortion"`
	InterestPortion  decimal.Decimal `json:"interestPortion"`
	RemainingBalance decimal.Decimal `json:"remainingBalance"`
}

// PaymentMethodResult is a full amortization of one loan.
type PaymentMethodResult struct {
	Method PaymentMethod `json:"method"`

	// MonthlyPayment is always Schedule[0].Payment. For EqualPrincipal that
	// is the first and largest payment, not an average.
	MonthlyPayment decimal.Decimal `json:"monthlyPayment"`

	TotalPayment  decimal.Decimal       `json:"totalPayment"`
	TotalInterest decimal.Decimal       `json:"totalInterest"`
	Schedule      []PaymentScheduleItem `json:"schedule"`
}

// PrepaymentOption describes a single lump-sum payment made after the
// payment of the given month.
type PrepaymentOption struct {
	Month  int              `json:"month"`
	Amount decimal.Decimal  `json:"amount"`
	Method PrepaymentMethod `json:"method"`
}

// PrepaymentResult is the restructured schedule of a loan with one lump sum
// together with its comparison against the untouched loan.
type PrepaymentResult struct {
	PaymentMethodResult

	Option   PrepaymentOption    `json:"option"`
	Original PaymentMethodResult `json:"original"`

	// NewMonthlyPayment is the payment in force after the lump sum.
	NewMonthlyPayment decimal.Decimal `json:"newMonthlyPayment"`
	InterestSaved     decimal.Decimal `json:"interestSaved"`
	MonthsSaved       int             `json:"monthsSaved"`
}

// LoanLeg is one component of a combined loan.
type LoanLeg struct {
	Principal         decimal.Decimal `json:"principal"`
	AnnualRatePercent decimal.Decimal `json:"annualRatePercent"`
}

// CombinedLoanParameters describes a commercial leg and a provident fund leg
// sharing one term.
type CombinedLoanParameters struct {
	Commercial    LoanLeg       `json:"commercial"`
	ProvidentFund LoanLeg       `json:"providentFund"`
	TermYears     int           `json:"termYears"`
	Method        PaymentMethod `json:"method,omitempty"`
}

// CombinedLoanResult holds both legs and their aggregate.
type CombinedLoanResult struct {
	Commercial     PaymentMethodResult `json:"commercial"`
	ProvidentFund  PaymentMethodResult `json:"providentFund"`
	MonthlyPayment decimal.Decimal     `json:"monthlyPayment"`
	TotalPayment   decimal.Decimal     `json:"totalPayment"`
	TotalInterest  decimal.Decimal     `json:"totalInterest"`
}
