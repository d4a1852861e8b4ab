package loans

import (
	"fmt"
	"math"

	"github.com/iwvelando/loan-calculator/pkg/mathutil"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// ApplyPrepayment restructures a level-payment loan after a lump sum paid
// right after the payment of option.Month.
//
// Months 1..option.Month are identical to the unrestructured schedule. With
// ReduceTerm a lump sum smaller than about one month's principal portion
// saves interest but no months. The
// lump sum has no row of its own; it is reported through the Option field and
// included in TotalPayment, so TotalInterest still equals TotalPayment minus
// the principal.
func (c *Calculator) ApplyPrepayment(params LoanParameters, option PrepaymentOption) (PrepaymentResult, error) {
	if err := ValidateParameters(params); err != nil {
		return PrepaymentResult{}, err
	}
	months := params.TermMonths()
	amount := mathutil.RoundCurrency(option.Amount)

	switch {
	case option.Month < 0:
		return PrepaymentResult{}, &InvalidPrepaymentError{Reason: fmt.Sprintf("month %d is negative", option.Month)}
	case option.Month >= months:
		return PrepaymentResult{}, &InvalidPrepaymentError{
			Reason: fmt.Sprintf("month %d is not before the end of the %d-month term", option.Month, months),
		}
	case !amount.IsPositive():
		return PrepaymentResult{}, &InvalidPrepaymentError{Reason: fmt.Sprintf("amount %s is not positive", option.Amount)}
	case option.Method != ReduceTerm && option.Method != ReducePayment:
		return PrepaymentResult{}, &InvalidPrepaymentError{Reason: fmt.Sprintf("unknown method %q", option.Method)}
	}

	original, err := c.CalculateEqualPayment(params)
	if err != nil {
		return PrepaymentResult{}, err
	}

	principal := mathutil.RoundCurrency(params.Principal)
	rate := mathutil.MonthlyRate(params.AnnualRatePercent)
	plan, err := newLevelPlan(principal, rate, months)
	if err != nil {
		return PrepaymentResult{}, err
	}

	// Phase 1: unchanged amortization up to the prepayment month.
	am := newAmortizer(principal, rate, plan.places)
	schedule := make([]PaymentScheduleItem, 0, months)
	for month := 1; month <= option.Month; month++ {
		exact, shown := plan.at(month)
		schedule = append(schedule, am.step(month, exact, shown))
	}

	if amount.GreaterThanOrEqual(am.shownBalance) {
		return PrepaymentResult{}, &InvalidPrepaymentError{
			Reason: fmt.Sprintf("amount %s is not less than the remaining balance %s at month %d",
				amount, am.shownBalance, option.Month),
		}
	}
	am.prepay(amount)
	c.logger.Debug(fmt.Sprintf("applying prepayment of %s after month %d, remaining balance %s",
		amount, option.Month, am.shownBalance),
		zap.String("op", "loans.ApplyPrepayment"),
		zap.String("method", string(option.Method)),
	)

	switch option.Method {
	case ReduceTerm:
		phase2, err := reduceTerm(am, plan, option.Month)
		if err != nil {
			return PrepaymentResult{}, err
		}
		schedule = append(schedule, phase2...)
	case ReducePayment:
		phase2, err := reducePayment(am, rate, option.Month, months)
		if err != nil {
			return PrepaymentResult{}, err
		}
		schedule = append(schedule, phase2...)
	}

	result := PrepaymentResult{
		PaymentMethodResult: summarize(EqualPayment, principal, schedule, amount),
		Option: PrepaymentOption{
			Month:  option.Month,
			Amount: amount,
			Method: option.Method,
		},
		Original:    original,
		MonthsSaved: len(original.Schedule) - len(schedule),
	}
	result.InterestSaved = original.TotalInterest.Sub(result.TotalInterest)
	if option.Month < len(schedule) {
		result.NewMonthlyPayment = schedule[option.Month].Payment
	}

	c.logger.Debug(fmt.Sprintf("prepayment saves %s interest and %d months", result.InterestSaved, result.MonthsSaved),
		zap.String("op", "loans.ApplyPrepayment"),
	)
	return result, nil
}

// RemainingTerm solves for the number of payments of size payment needed to
// amortize balance at the monthly rate.
func RemainingTerm(balance, payment, monthlyRate decimal.Decimal) (int, error) {
	if !balance.IsPositive() {
		return 0, nil
	}
	if !payment.IsPositive() {
		return 0, &InvalidPrepaymentError{Reason: fmt.Sprintf("payment %s is not positive", payment)}
	}
	if monthlyRate.IsZero() {
		return int(balance.DivRound(payment, 16).Ceil().IntPart()), nil
	}

	uncovered := payment.Sub(mathutil.Mul(balance, monthlyRate))
	if !uncovered.IsPositive() {
		return 0, &InvalidPrepaymentError{
			Reason: fmt.Sprintf("payment %s does not cover the interest on %s", payment, balance),
		}
	}
	ratio := payment.DivRound(uncovered, 16).InexactFloat64()
	n := math.Log(ratio) / math.Log1p(monthlyRate.InexactFloat64())
	// Guard against log noise turning an exact count into the next integer.
	return int(math.Ceil(n - 1e-9)), nil
}

// reduceTerm keeps paying the original payment until the balance is gone.
// The term shrinks by whole months only: a lump sum below roughly one month's
// principal portion leaves the number of payments unchanged and only lowers
// the final payment.
func reduceTerm(am *amortizer, plan levelPlan, startMonth int) ([]PaymentScheduleItem, error) {
	payment, shown := plan.at(1)
	remaining, err := RemainingTerm(am.balance, payment, am.rate)
	if err != nil {
		return nil, err
	}

	growth := one.Add(am.rate)
	rows := make([]PaymentScheduleItem, 0, remaining)
	for k := 1; k <= remaining; k++ {
		month := startMonth + k
		if k == remaining || mathutil.Mul(am.balance, growth).LessThanOrEqual(payment) {
			rows = append(rows, am.settle(month))
			break
		}
		item := am.step(month, payment, shown)
		rows = append(rows, item)
		if am.balance.IsZero() {
			break
		}
	}
	return rows, nil
}

// reducePayment amortizes the balance over the rest of the original term
// with a recomputed level payment.
func reducePayment(am *amortizer, rate decimal.Decimal, startMonth, termMonths int) ([]PaymentScheduleItem, error) {
	remaining := termMonths - startMonth
	plan, err := newLevelPlan(am.balance, rate, remaining)
	if err != nil {
		return nil, err
	}
	if plan.places > am.places {
		am.places = plan.places
	}

	rows := make([]PaymentScheduleItem, 0, remaining)
	for k := 1; k <= remaining; k++ {
		exact, shown := plan.at(k)
		item := am.step(startMonth+k, exact, shown)
		if k == remaining {
			am.closeOut(&item)
		}
		rows = append(rows, item)
		if am.balance.IsZero() {
			break
		}
	}
	return rows, nil
}
