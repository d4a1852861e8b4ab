// Package optimizer searches for the loan size or term that keeps the
// monthly payment within what a borrower can afford.
package optimizer

import (
	"errors"
	"fmt"
	"strings"

	"github.com/iwvelando/loan-calculator/pkg/constants"
	"github.com/iwvelando/loan-calculator/pkg/format"
	"github.com/iwvelando/loan-calculator/pkg/loans"
	"github.com/iwvelando/loan-calculator/pkg/mathutil"
	"github.com/iwvelando/loan-calculator/pkg/metrics"
	"github.com/iwvelando/loan-calculator/pkg/optimization"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Searchable fields.
const (
	FieldPrincipal = "principal"
	FieldTermYears = "termYears"
)

const defaultMaxIterations = 100

// ErrMissingIncome is returned when the borrower context has no monthly income.
var ErrMissingIncome = errors.New("affordability search requires a monthly income")

// ErrInvalidConfig is returned for unusable search settings.
var ErrInvalidConfig = errors.New("invalid optimizer configuration")

var two = decimal.NewFromInt(2)

// Config bounds one search. Zero values select defaults: the low-risk
// payment-to-income ratio, principal between one cent and the maximum loan
// amount, terms between one year and the maximum term, a one cent tolerance.
type Config struct {
	Field           string          `json:"field"`
	MaxPaymentRatio decimal.Decimal `json:"maxPaymentRatio"`
	Min             decimal.Decimal `json:"min"`
	Max             decimal.Decimal `json:"max"`
	Tolerance       decimal.Decimal `json:"tolerance"`
	MaxIterations   int             `json:"maxIterations"`
}

// Target is a loan whose Config.Field is searched.
type Target struct {
	Name    string
	Params  loans.LoanParameters
	Method  loans.PaymentMethod
	Context metrics.Context
	Config  Config
}

// Runner evaluates affordability searches.
type Runner struct {
	logger *zap.Logger
	calc   *loans.Calculator
}

type evaluation struct {
	value   decimal.Decimal
	payment decimal.Decimal
	limit   decimal.Decimal
}

func (e evaluation) feasible() bool {
	return e.payment.LessThanOrEqual(e.limit)
}

func (e evaluation) headroom() decimal.Decimal {
	return e.limit.Sub(e.payment)
}

// NewRunner constructs a Runner.
func NewRunner(logger *zap.Logger) *Runner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Runner{logger: logger, calc: loans.NewCalculator(logger)}
}

// CanonicalField normalizes a field name, returning "" when unsupported.
func CanonicalField(field string) string {
	switch strings.ToLower(strings.TrimSpace(field)) {
	case "principal", "amount":
		return FieldPrincipal
	case "termyears", "term", "years":
		return FieldTermYears
	default:
		return ""
	}
}

func (c Config) withDefaults() (Config, error) {
	field := CanonicalField(c.Field)
	if field == "" {
		return c, fmt.Errorf("%w: unsupported optimizer field %q", ErrInvalidConfig, c.Field)
	}
	c.Field = field

	if c.MaxPaymentRatio.IsZero() {
		c.MaxPaymentRatio = decimal.NewFromFloat(constants.PaymentToIncomeLow)
	}
	if !c.MaxPaymentRatio.IsPositive() {
		return c, fmt.Errorf("%w: max payment ratio must be positive, got %s", ErrInvalidConfig, c.MaxPaymentRatio)
	}

	switch field {
	case FieldPrincipal:
		if c.Min.IsZero() {
			c.Min = mathutil.Cent
		}
		if c.Max.IsZero() {
			c.Max = decimal.NewFromInt(constants.MaxLoanAmount)
		}
		if c.Tolerance.IsZero() {
			c.Tolerance = mathutil.Cent
		}
		c.Min = mathutil.RoundCurrency(c.Min)
		c.Max = mathutil.RoundCurrency(c.Max)
	case FieldTermYears:
		if c.Min.IsZero() {
			c.Min = decimal.NewFromInt(1)
		}
		if c.Max.IsZero() {
			c.Max = decimal.NewFromInt(constants.MaxTermYears)
		}
		// Terms are whole years.
		c.Tolerance = decimal.NewFromInt(1)
		c.Min = c.Min.Ceil()
		c.Max = c.Max.Floor()
	}

	if !c.Min.IsPositive() {
		return c, fmt.Errorf("%w: optimizer minimum must be positive, got %s", ErrInvalidConfig, c.Min)
	}
	if c.Min.GreaterThan(c.Max) {
		return c, fmt.Errorf("%w: optimizer minimum %s exceeds maximum %s", ErrInvalidConfig, c.Min, c.Max)
	}
	if c.Tolerance.IsNegative() {
		return c, fmt.Errorf("%w: optimizer tolerance must not be negative, got %s", ErrInvalidConfig, c.Tolerance)
	}
	if c.MaxIterations <= 0 {
		c.MaxIterations = defaultMaxIterations
	}
	return c, nil
}

// PaymentLimit is the largest monthly payment keeping total debt within
// ratio of the monthly income.
func PaymentLimit(ctx metrics.Context, ratio decimal.Decimal) (decimal.Decimal, error) {
	if !ctx.MonthlyIncome.Valid || !ctx.MonthlyIncome.Decimal.IsPositive() {
		return decimal.Zero, ErrMissingIncome
	}
	limit := ctx.MonthlyIncome.Decimal.Mul(ratio)
	if ctx.OtherMonthlyDebt.Valid {
		limit = limit.Sub(ctx.OtherMonthlyDebt.Decimal)
	}
	return mathutil.RoundCurrency(limit), nil
}

// Optimize searches the configured field. Payments grow with the principal
// and shrink with the term, so the search keeps the largest affordable
// principal or the shortest affordable term.
func (r *Runner) Optimize(target Target) (optimization.Summary, error) {
	cfg, err := target.Config.withDefaults()
	if err != nil {
		return optimization.Summary{}, err
	}
	limit, err := PaymentLimit(target.Context, cfg.MaxPaymentRatio)
	if err != nil {
		return optimization.Summary{}, err
	}

	original := target.Params.Principal
	if cfg.Field == FieldTermYears {
		original = decimal.NewFromInt(int64(target.Params.TermYears))
	}

	lowerEval, err := r.evaluate(target, cfg.Field, cfg.Min, limit)
	if err != nil {
		return optimization.Summary{}, err
	}
	upperEval, err := r.evaluate(target, cfg.Field, cfg.Max, limit)
	if err != nil {
		return optimization.Summary{}, err
	}

	// good is the bound preferred when affordable, bad the other one.
	good, bad := upperEval, lowerEval
	if cfg.Field == FieldTermYears {
		good, bad = lowerEval, upperEval
	}

	summary := optimization.Summary{
		TargetName:      target.Name,
		Field:           cfg.Field,
		Original:        original,
		OriginalDisplay: display(cfg.Field, original),
		PaymentLimit:    limit,
	}

	var final evaluation
	switch {
	case good.feasible():
		final = good
		summary.Converged = true
	case bad.feasible():
		final, summary.Iterations, err = r.search(target, cfg, bad, good)
		if err != nil {
			return optimization.Summary{}, err
		}
		summary.Converged = true
	default:
		final = bad
		if good.headroom().GreaterThan(bad.headroom()) {
			final = good
		}
		summary.Notes = []string{fmt.Sprintf(
			"unable to keep the payment within %s between %s and %s",
			format.Currency(limit),
			display(cfg.Field, cfg.Min),
			display(cfg.Field, cfg.Max),
		)}
	}

	summary.Value = final.value
	summary.ValueDisplay = display(cfg.Field, final.value)
	summary.Payment = final.payment
	summary.Headroom = final.headroom()

	r.logger.Debug(fmt.Sprintf("optimized %s of %s to %s in %d iterations",
		cfg.Field, target.Name, summary.ValueDisplay, summary.Iterations),
		zap.String("op", "optimizer.Optimize"),
		zap.Bool("converged", summary.Converged),
	)
	return summary, nil
}

// search bisects between an affordable and an unaffordable evaluation and
// returns the affordable value closest to the unaffordable one.
func (r *Runner) search(target Target, cfg Config, feasible, infeasible evaluation) (evaluation, int, error) {
	iterations := 0
	for iterations < cfg.MaxIterations && !mathutil.WithinTolerance(feasible.value, infeasible.value, cfg.Tolerance) {
		mid := snap(cfg.Field, feasible.value.Add(infeasible.value).Div(two))
		if mid.Equal(feasible.value) || mid.Equal(infeasible.value) {
			break
		}
		evalMid, err := r.evaluate(target, cfg.Field, mid, feasible.limit)
		if err != nil {
			return evaluation{}, iterations, err
		}
		iterations++
		if evalMid.feasible() {
			feasible = evalMid
		} else {
			infeasible = evalMid
		}
	}
	return feasible, iterations, nil
}

func (r *Runner) evaluate(target Target, field string, value, limit decimal.Decimal) (evaluation, error) {
	params := target.Params
	switch field {
	case FieldPrincipal:
		params.Principal = value
	case FieldTermYears:
		params.TermYears = int(value.IntPart())
	}

	result, err := r.calc.Calculate(params, target.Method)
	if err != nil {
		return evaluation{}, fmt.Errorf("evaluating %s %s: %w", field, value, err)
	}
	return evaluation{value: value, payment: result.MonthlyPayment, limit: limit}, nil
}

func snap(field string, value decimal.Decimal) decimal.Decimal {
	if field == FieldTermYears {
		return value.Floor()
	}
	return mathutil.RoundCurrency(value)
}

func display(field string, value decimal.Decimal) string {
	if field == FieldTermYears {
		return fmt.Sprintf("%s years", value.String())
	}
	return format.Currency(value)
}
