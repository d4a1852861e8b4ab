// Package report evaluates a configuration into the figures printed by the
// CLI and returned by the HTTP API.
package report

import (
	"context"
	"errors"
	"fmt"

	"github.com/iwvelando/loan-calculator/internal/config"
	"github.com/iwvelando/loan-calculator/internal/optimizer"
	"github.com/iwvelando/loan-calculator/pkg/analysis"
	"github.com/iwvelando/loan-calculator/pkg/batch"
	"github.com/iwvelando/loan-calculator/pkg/constants"
	"github.com/iwvelando/loan-calculator/pkg/datetime"
	"github.com/iwvelando/loan-calculator/pkg/loans"
	"github.com/iwvelando/loan-calculator/pkg/metrics"
	"github.com/iwvelando/loan-calculator/pkg/optimization"
	"go.uber.org/zap"
)

// ErrPrepaymentMethod is returned when a prepayment is configured on a
// level-principal loan.
var ErrPrepaymentMethod = errors.New("prepayment requires the equalPayment method")

// Report holds every evaluated section of a configuration.
type Report struct {
	Loans       []LoanReport        `json:"loans,omitempty"`
	Combined    []CombinedReport    `json:"combined,omitempty"`
	Sensitivity []SensitivityReport `json:"sensitivity,omitempty"`
	Scenarios   *ScenarioReport     `json:"scenarios,omitempty"`
	Warnings    []string            `json:"warnings,omitempty"`
}

// LoanReport is one amortized loan. When a prepayment is configured Result is
// the restructured loan and Prepayment holds the comparison with the
// original.
type LoanReport struct {
	Name       string                    `json:"name"`
	Parameters loans.LoanParameters      `json:"parameters"`
	Result     loans.PaymentMethodResult `json:"result"`
	// Dates labels the schedule rows when a start date is configured.
	Dates []string `json:"dates,omitempty"`
	// MaturityDate is the month of the last payment, when dated.
	MaturityDate string                   `json:"maturityDate,omitempty"`
	Prepayment   *loans.PrepaymentResult  `json:"prepayment,omitempty"`
	Benefit      *metrics.Benefit         `json:"benefit,omitempty"`
	Methods      metrics.MethodComparison `json:"methods"`
	Metrics      metrics.Metrics          `json:"metrics"`
	// Optimization is the affordability search, when configured.
	Optimization *optimization.Summary `json:"optimization,omitempty"`
}

// CombinedReport is one combined commercial/provident fund loan.
type CombinedReport struct {
	Name   string                   `json:"name"`
	Result loans.CombinedLoanResult `json:"result"`
}

// SensitivityReport is one rate/term sweep.
type SensitivityReport struct {
	Name   string                     `json:"name"`
	Result analysis.SensitivityReport `json:"result"`
}

// ScenarioReport is the scenario comparison.
type ScenarioReport struct {
	Name   string                      `json:"name"`
	Result analysis.ScenarioComparison `json:"result"`
}

// GetReport evaluates every section of the configuration. Loans are
// evaluated in parallel; the report keeps the configured order. Any failing
// calculation fails the whole report with the error of the first failing
// loan in configured order.
func GetReport(ctx context.Context, logger *zap.Logger, conf config.Configuration) (*Report, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	calc := loans.NewCalculator(logger)
	analyzer := analysis.NewAnalyzer(logger, constants.DefaultBatchWorkers)
	runner := optimizer.NewRunner(logger)

	report := &Report{Warnings: conf.ValidateConfiguration()}

	loanReports, err := batch.Map(ctx, conf.Loans, constants.DefaultBatchWorkers, func(_ context.Context, loan config.Loan) (LoanReport, error) {
		return evaluateLoan(logger, calc, runner, loan)
	})
	if err != nil {
		return nil, err
	}
	report.Loans = loanReports

	for _, combined := range conf.Combined {
		params, err := combined.Parameters()
		if err != nil {
			return nil, err
		}
		result, err := calc.CalculateCombined(params)
		if err != nil {
			return nil, fmt.Errorf("combined loan '%s': %w", combined.Name, err)
		}
		report.Combined = append(report.Combined, CombinedReport{Name: combined.Name, Result: result})
	}

	for _, sweep := range conf.Sensitivity {
		principal, rate, term := sweep.Baseline()
		result, err := analyzer.AnalyzeSensitivity(principal, rate, term, sweep.Sweep())
		if err != nil {
			return nil, fmt.Errorf("sensitivity '%s': %w", sweep.Name, err)
		}
		report.Sensitivity = append(report.Sensitivity, SensitivityReport{Name: sweep.Name, Result: result})
	}

	if len(conf.Scenarios.Items) > 0 {
		result, err := analyzer.AnalyzeScenarios(ctx, conf.Scenarios.ToScenarios())
		if err != nil {
			return nil, fmt.Errorf("scenarios '%s': %w", conf.Scenarios.Name, err)
		}
		report.Scenarios = &ScenarioReport{Name: conf.Scenarios.Name, Result: result}
	}

	logger.Debug(fmt.Sprintf("evaluated %d loans, %d combined loans, %d sweeps",
		len(report.Loans), len(report.Combined), len(report.Sensitivity)),
		zap.String("op", "report.GetReport"),
	)
	return report, nil
}

func evaluateLoan(logger *zap.Logger, calc *loans.Calculator, runner *optimizer.Runner, loan config.Loan) (LoanReport, error) {
	params := loan.Parameters()
	method, err := loan.PaymentMethod()
	if err != nil {
		return LoanReport{}, err
	}

	lr := LoanReport{Name: loan.Name, Parameters: params}

	levelPayment, err := calc.CalculateEqualPayment(params)
	if err != nil {
		return LoanReport{}, fmt.Errorf("loan '%s': %w", loan.Name, err)
	}
	levelPrincipal, err := calc.CalculateEqualPrincipal(params)
	if err != nil {
		return LoanReport{}, fmt.Errorf("loan '%s': %w", loan.Name, err)
	}
	lr.Methods = metrics.CompareMethods(levelPayment, levelPrincipal)

	switch {
	case loan.Prepayment != nil:
		if method != loans.EqualPayment {
			return LoanReport{}, fmt.Errorf("loan '%s': %w", loan.Name, ErrPrepaymentMethod)
		}
		option, err := loan.Prepayment.Option()
		if err != nil {
			return LoanReport{}, fmt.Errorf("loan '%s': %w", loan.Name, err)
		}
		prepaid, err := calc.ApplyPrepayment(params, option)
		if err != nil {
			return LoanReport{}, fmt.Errorf("loan '%s': %w", loan.Name, err)
		}
		benefit := metrics.PrepaymentBenefit(prepaid)
		lr.Result = prepaid.PaymentMethodResult
		lr.Prepayment = &prepaid
		lr.Benefit = &benefit
	case method == loans.EqualPrincipal:
		lr.Result = levelPrincipal
	default:
		lr.Result = levelPayment
	}

	scheduleDates(logger, &lr, loan.StartDate)
	lr.Metrics = metrics.Evaluate(params, lr.Result, loan.Context.ToMetrics())

	if loan.Optimizer != nil {
		cfg, err := loan.Optimizer.Config()
		if err != nil {
			return LoanReport{}, fmt.Errorf("loan '%s': optimizer: %w", loan.Name, err)
		}
		summary, err := runner.Optimize(optimizer.Target{
			Name:    loan.Name,
			Params:  params,
			Method:  method,
			Context: loan.Context.ToMetrics(),
			Config:  cfg,
		})
		if err != nil {
			return LoanReport{}, fmt.Errorf("loan '%s': optimizer: %w", loan.Name, err)
		}
		lr.Optimization = &summary
	}
	return lr, nil
}

// scheduleDates labels the rows of lr. An unparsable start date is already a
// configuration warning, so the rows are left unlabelled.
func scheduleDates(logger *zap.Logger, lr *LoanReport, startDate string) {
	if startDate == "" {
		return
	}
	dates, err := datetime.PaymentDates(startDate, len(lr.Result.Schedule))
	if err != nil {
		logger.Debug(fmt.Sprintf("leaving loan '%s' undated", lr.Name),
			zap.String("op", "report.scheduleDates"),
			zap.String("startDate", startDate),
			zap.Error(err),
		)
		return
	}
	maturity, err := datetime.MaturityDate(startDate, len(dates))
	if err != nil {
		logger.Debug(fmt.Sprintf("no maturity date for loan '%s'", lr.Name),
			zap.String("op", "report.scheduleDates"),
			zap.Error(err),
		)
	}
	lr.Dates = dates
	lr.MaturityDate = maturity
}
