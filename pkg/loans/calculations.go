// Package loans provides the amortization engine: level-payment and
// level-principal schedules, lump-sum prepayment restructuring and combined
// commercial/provident fund loans.
package loans

import (
	"fmt"
	"math"

	"github.com/iwvelando/loan-calculator/pkg/constants"
	"github.com/iwvelando/loan-calculator/pkg/mathutil"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const monthsPerYear = constants.MonthsPerYear

var one = decimal.NewFromInt(1)

// Calculator produces payment schedules. It holds no state besides its
// logger and is safe for concurrent use.
type Calculator struct {
	logger *zap.Logger
}

// NewCalculator creates a new calculator instance.
func NewCalculator(logger *zap.Logger) *Calculator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Calculator{logger: logger}
}

// ValidateParameters performs the basic sanity checks of the engine. Policy
// limits (maximum amounts, terms) are not checked here.
func ValidateParameters(params LoanParameters) error {
	if !mathutil.RoundCurrency(params.Principal).IsPositive() {
		return &InvalidLoanParametersError{Field: "principal", Value: params.Principal.String()}
	}
	if params.AnnualRatePercent.IsNegative() {
		return &InvalidLoanParametersError{Field: "annualRatePercent", Value: params.AnnualRatePercent.String()}
	}
	if params.TermYears <= 0 {
		return &InvalidLoanParametersError{Field: "termYears", Value: fmt.Sprintf("%d", params.TermYears)}
	}
	return nil
}

// Calculate dispatches to the schedule generator of the given method.
func (c *Calculator) Calculate(params LoanParameters, method PaymentMethod) (PaymentMethodResult, error) {
	switch method {
	case EqualPayment, "":
		return c.CalculateEqualPayment(params)
	case EqualPrincipal:
		return c.CalculateEqualPrincipal(params)
	default:
		return PaymentMethodResult{}, fmt.Errorf("unknown payment method %q", method)
	}
}

// CalculateEqualPayment amortizes the loan with a constant monthly payment.
func (c *Calculator) CalculateEqualPayment(params LoanParameters) (PaymentMethodResult, error) {
	if err := ValidateParameters(params); err != nil {
		return PaymentMethodResult{}, err
	}
	principal := mathutil.RoundCurrency(params.Principal)
	rate := mathutil.MonthlyRate(params.AnnualRatePercent)
	months := params.TermMonths()

	plan, err := newLevelPlan(principal, rate, months)
	if err != nil {
		return PaymentMethodResult{}, err
	}

	am := newAmortizer(principal, rate, plan.places)
	schedule := make([]PaymentScheduleItem, 0, months)
	for month := 1; month <= months; month++ {
		exact, shown := plan.at(month)
		item := am.step(month, exact, shown)
		if month == months {
			am.closeOut(&item)
		}
		schedule = append(schedule, item)
		if am.balance.IsZero() {
			break
		}
	}

	result := summarize(EqualPayment, principal, schedule, decimal.Zero)
	c.logger.Debug(fmt.Sprintf("computed level-payment schedule of %d months at %s", months, result.MonthlyPayment),
		zap.String("op", "loans.CalculateEqualPayment"),
	)
	return result, nil
}

// CalculateEqualPrincipal amortizes the loan with a constant principal
// portion. The payment decreases every month; the MonthlyPayment of the
// result is the first, largest payment.
func (c *Calculator) CalculateEqualPrincipal(params LoanParameters) (PaymentMethodResult, error) {
	if err := ValidateParameters(params); err != nil {
		return PaymentMethodResult{}, err
	}
	principal := mathutil.RoundCurrency(params.Principal)
	rate := mathutil.MonthlyRate(params.AnnualRatePercent)
	months := params.TermMonths()

	// Leftover cents go to the first months so that both the principal
	// portion and the payment are non-increasing.
	portions := allocateCents(principal, months, true)

	balance := principal
	schedule := make([]PaymentScheduleItem, 0, months)
	for month := 1; month <= months; month++ {
		interest := mathutil.RoundCurrency(mathutil.Mul(balance, rate))
		portion := portions[month-1]
		balance = balance.Sub(portion)
		schedule = append(schedule, PaymentScheduleItem{
			Month:            month,
			Payment:          portion.Add(interest),
			PrincipalPortion: portion,
			InterestPortion:  interest,
			RemainingBalance: balance,
		})
	}

	result := summarize(EqualPrincipal, principal, schedule, decimal.Zero)
	c.logger.Debug(fmt.Sprintf("computed level-principal schedule of %d months starting at %s", months, result.MonthlyPayment),
		zap.String("op", "loans.CalculateEqualPrincipal"),
	)
	return result, nil
}

// LevelPayment returns the unrounded constant payment that amortizes
// principal over the given number of months at the monthly rate.
func LevelPayment(principal, monthlyRate decimal.Decimal, months int) (decimal.Decimal, error) {
	return levelPayment(principal, monthlyRate, months, workingPlaces(monthlyRate, months))
}

func levelPayment(principal, monthlyRate decimal.Decimal, months int, places int32) (decimal.Decimal, error) {
	if months <= 0 {
		return decimal.Zero, &InvalidLoanParametersError{Field: "termMonths", Value: fmt.Sprintf("%d", months)}
	}
	if monthlyRate.IsZero() {
		return mathutil.Div(principal, decimal.NewFromInt(int64(months)))
	}
	powPlaces := places
	if powPlaces < constants.RatePrecision {
		powPlaces = constants.RatePrecision
	}
	growth := mathutil.Pow(one.Add(monthlyRate), months, powPlaces)
	denominator := growth.Sub(one)
	if denominator.IsZero() {
		return decimal.Zero, fmt.Errorf("level payment for rate %s over %d months: %w",
			monthlyRate, months, mathutil.ErrDivisionByZero)
	}
	numerator := principal.Mul(monthlyRate).Mul(growth).Round(places)
	return numerator.DivRound(denominator, places), nil
}

// workingPlaces is the number of decimal places that keeps the balance of a
// level-payment loan accurate to well below a cent. An error in the payment
// reaches the final balance multiplied by ((1+r)^n - 1) / r, so the places
// grow with the digits of that factor. Ordinary loans stay at
// constants.InternalPrecision.
func workingPlaces(monthlyRate decimal.Decimal, months int) int32 {
	r := monthlyRate.InexactFloat64()
	if r <= 0 || months <= 0 {
		return constants.InternalPrecision
	}
	exponent := float64(months) * math.Log1p(r)
	var digits float64
	if exponent > 30 {
		// (1+r)^n - 1 is (1+r)^n for all practical purposes.
		digits = exponent/math.Ln10 - math.Log10(r)
	} else {
		digits = math.Log10(math.Expm1(exponent) / r)
	}
	places := int32(math.Ceil(digits)) + balanceGuardPlaces
	if places < constants.InternalPrecision {
		return constants.InternalPrecision
	}
	return places
}

// balanceGuardPlaces are the places of accuracy kept on the balance itself.
const balanceGuardPlaces = 6

// levelPlan yields the payment of each month of a level-payment loan: the
// unrounded amount driving the balance and the amount shown on the row.
type levelPlan struct {
	exact      decimal.Decimal
	shown      decimal.Decimal
	allocation []decimal.Decimal
	places     int32
}

func newLevelPlan(principal, rate decimal.Decimal, months int) (levelPlan, error) {
	if rate.IsZero() {
		// Without interest the payments are the principal split into cents,
		// leftover cents on the final months.
		allocation := allocateCents(principal, months, false)
		return levelPlan{
			exact:      allocation[0],
			shown:      allocation[0],
			allocation: allocation,
			places:     constants.InternalPrecision,
		}, nil
	}
	places := workingPlaces(rate, months)
	payment, err := levelPayment(principal, rate, months, places)
	if err != nil {
		return levelPlan{}, err
	}
	return levelPlan{exact: payment, shown: mathutil.RoundCurrency(payment), places: places}, nil
}

// at returns the payment of the given 1-based month of the plan.
func (p levelPlan) at(month int) (exact, shown decimal.Decimal) {
	if p.allocation != nil {
		v := p.allocation[month-1]
		return v, v
	}
	return p.exact, p.shown
}

// amortizer walks a balance forward month by month. The balance is kept at
// the plan's working precision; rows are derived from the rounded balances so
// that the principal portions always add up to the rounded starting balance.
type amortizer struct {
	rate         decimal.Decimal
	balance      decimal.Decimal
	shownBalance decimal.Decimal
	places       int32
}

func newAmortizer(balance, rate decimal.Decimal, places int32) *amortizer {
	return &amortizer{
		rate:         rate,
		balance:      balance,
		shownBalance: mathutil.RoundCurrency(balance),
		places:       places,
	}
}

// step applies one regular payment. A payment that would take the balance
// below zero settles the loan instead.
func (a *amortizer) step(month int, payment, shown decimal.Decimal) PaymentScheduleItem {
	interest := a.balance.Mul(a.rate).Round(a.places)
	balance := a.balance.Sub(payment.Sub(interest)).Round(a.places)

	next := mathutil.RoundCurrency(balance)
	if next.IsNegative() {
		return a.settle(month)
	}
	a.balance = balance

	principalPortion := a.shownBalance.Sub(next)
	interestPortion := shown.Sub(principalPortion)
	if interestPortion.IsNegative() {
		interestPortion = decimal.Zero
		shown = principalPortion
	}
	a.shownBalance = next

	return PaymentScheduleItem{
		Month:            month,
		Payment:          shown,
		PrincipalPortion: principalPortion,
		InterestPortion:  interestPortion,
		RemainingBalance: next,
	}
}

// settle pays off the whole remaining balance plus the month's interest.
func (a *amortizer) settle(month int) PaymentScheduleItem {
	interest := mathutil.RoundCurrency(a.balance.Mul(a.rate))
	principalPortion := a.shownBalance
	a.balance = decimal.Zero
	a.shownBalance = decimal.Zero

	return PaymentScheduleItem{
		Month:            month,
		Payment:          principalPortion.Add(interest),
		PrincipalPortion: principalPortion,
		InterestPortion:  interest,
		RemainingBalance: decimal.Zero,
	}
}

// prepay applies a lump sum between two rows.
func (a *amortizer) prepay(amount decimal.Decimal) {
	a.balance = a.balance.Sub(amount)
	a.shownBalance = a.shownBalance.Sub(amount)
}

// closeOut folds any residual cent left by rounding into the final row.
func (a *amortizer) closeOut(item *PaymentScheduleItem) {
	if a.shownBalance.IsZero() {
		return
	}
	item.PrincipalPortion = item.PrincipalPortion.Add(a.shownBalance)
	item.Payment = item.Payment.Add(a.shownBalance)
	item.RemainingBalance = decimal.Zero
	a.balance = decimal.Zero
	a.shownBalance = decimal.Zero
}

// allocateCents splits total into n cent amounts differing by at most one
// cent. Leftover cents go to the first months when front is set, otherwise
// to the last months.
func allocateCents(total decimal.Decimal, n int, front bool) []decimal.Decimal {
	cents := mathutil.RoundCurrency(total).Shift(constants.CurrencyPlaces).IntPart()
	base := cents / int64(n)
	remainder := int(cents - base*int64(n))

	low := decimal.New(base, -constants.CurrencyPlaces)
	high := decimal.New(base+1, -constants.CurrencyPlaces)

	out := make([]decimal.Decimal, n)
	for i := range out {
		extra := i < remainder
		if !front {
			extra = i >= n-remainder
		}
		if extra {
			out[i] = high
		} else {
			out[i] = low
		}
	}
	return out
}

// summarize builds a PaymentMethodResult. extra is money paid outside of the
// schedule rows (a prepayment lump sum) and counts toward the total payment.
func summarize(method PaymentMethod, principal decimal.Decimal, schedule []PaymentScheduleItem, extra decimal.Decimal) PaymentMethodResult {
	total := extra
	for _, item := range schedule {
		total = total.Add(item.Payment)
	}

	result := PaymentMethodResult{
		Method:        method,
		TotalPayment:  total,
		TotalInterest: total.Sub(principal),
		Schedule:      schedule,
	}
	if len(schedule) > 0 {
		result.MonthlyPayment = schedule[0].Payment
	}
	return result
}
