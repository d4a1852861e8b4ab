// Package output provides utilities for formatting and displaying loan reports.
package output

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/iwvelando/loan-calculator/internal/report"
	"github.com/iwvelando/loan-calculator/pkg/analysis"
	"github.com/iwvelando/loan-calculator/pkg/constants"
	"github.com/iwvelando/loan-calculator/pkg/format"
	"github.com/iwvelando/loan-calculator/pkg/loans"
	"github.com/iwvelando/loan-calculator/pkg/metrics"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Write renders the report in the named output format.
func Write(w io.Writer, outputFormat string, r *report.Report) error {
	switch outputFormat {
	case constants.OutputFormatPretty, "":
		return PrettyFormat(w, r)
	case constants.OutputFormatCSV:
		return CsvFormat(w, r)
	case constants.OutputFormatJSON:
		return JSONFormat(w, r)
	default:
		return fmt.Errorf("unknown output format %q", outputFormat)
	}
}

// PrettyFormat outputs a human-readable rather than machine-readable report.
func PrettyFormat(w io.Writer, r *report.Report) error {
	p := message.NewPrinter(language.English)
	ew := &errWriter{w: w}

	for _, loan := range r.Loans {
		prettyLoan(ew, p, loan)
		ew.printf("\n")
	}
	for _, combined := range r.Combined {
		prettyCombined(ew, combined)
		ew.printf("\n")
	}
	for _, sweep := range r.Sensitivity {
		prettySensitivity(ew, sweep)
		ew.printf("\n")
	}
	if r.Scenarios != nil {
		prettyScenarios(ew, *r.Scenarios)
		ew.printf("\n")
	}
	if len(r.Warnings) > 0 {
		ew.printf("--- Warnings ---\n")
		for _, warning := range r.Warnings {
			ew.printf("- %s\n", warning)
		}
	}
	return ew.err
}

func prettyLoan(ew *errWriter, p *message.Printer, loan report.LoanReport) {
	result := loan.Result
	ew.printf("--- Results for loan %s ---\n", loan.Name)
	ew.printf("Method: %s | Principal: %s | Rate: %s | Term: %d years\n",
		result.Method, format.Currency(loan.Parameters.Principal),
		format.Percent(loan.Parameters.AnnualRatePercent), loan.Parameters.TermYears)
	ew.printf("Monthly payment: %s | Total payment: %s | Total interest: %s\n",
		format.Currency(result.MonthlyPayment), format.Currency(result.TotalPayment), format.Currency(result.TotalInterest))
	if loan.MaturityDate != "" {
		ew.printf("Final payment: %s\n", loan.MaturityDate)
	}

	if loan.Prepayment != nil {
		option := loan.Prepayment.Option
		ew.printf("Prepayment: %s after month %d (%s) | New payment: %s | Interest saved: %s | Months saved: %d\n",
			format.Currency(option.Amount), option.Month, option.Method,
			format.Currency(loan.Prepayment.NewMonthlyPayment), format.Currency(loan.Prepayment.InterestSaved),
			loan.Prepayment.MonthsSaved)
	}

	ew.printf("Level payment vs level principal: %s more interest, first payment %s lower\n",
		format.Currency(loan.Methods.InterestDifference), format.Currency(loan.Methods.FirstPaymentDifference))

	m := loan.Metrics
	ew.printf("Risk: %s (payment %s, loan-to-value %s, interest %s, rate %s) | Affordability: %d/100\n",
		m.Risk.Overall, m.Risk.Payment, m.Risk.LoanToValue, m.Risk.Interest, m.Risk.Rate, m.AffordabilityScore)
	ew.printf("Interest ratio: %s | First year interest: %s | Principal exceeds interest from month %d\n",
		ratio(m.InterestRatio), format.Currency(m.Cost.FirstYearInterest), m.Cost.CrossoverMonth)
	for _, flag := range m.Risk.Flags {
		ew.printf("! %s\n", flag)
	}

	if opt := loan.Optimization; opt != nil {
		ew.printf("Affordable %s: %s (configured %s) | Payment: %s of %s limit | Iterations: %d\n",
			opt.Field, opt.ValueDisplay, opt.OriginalDisplay,
			format.Currency(opt.Payment), format.Currency(opt.PaymentLimit), opt.Iterations)
		for _, note := range opt.Notes {
			ew.printf("! %s\n", note)
		}
	}

	ew.printf("Month | Date    | Payment       | Principal     | Interest      | Balance\n")
	ew.printf("_____ | _______ | _____________ | _____________ | _____________ | _____________\n")
	for i, item := range result.Schedule {
		date := "-------"
		if i < len(loan.Dates) {
			date = loan.Dates[i]
		}
		ew.write(p.Sprintf("%5d | %s | %13s | %13s | %13s | %13s\n", item.Month, date,
			format.Currency(item.Payment), format.Currency(item.PrincipalPortion),
			format.Currency(item.InterestPortion), format.Currency(item.RemainingBalance)))
	}
}

func prettyCombined(ew *errWriter, combined report.CombinedReport) {
	result := combined.Result
	ew.printf("--- Results for combined loan %s ---\n", combined.Name)
	ew.printf("Leg            | Monthly payment | Total payment   | Total interest\n")
	ew.printf("______________ | _______________ | _______________ | _______________\n")
	row := func(name string, r loans.PaymentMethodResult) {
		ew.printf("%-14s | %15s | %15s | %15s\n", name,
			format.Currency(r.MonthlyPayment), format.Currency(r.TotalPayment), format.Currency(r.TotalInterest))
	}
	row("Commercial", result.Commercial)
	row("Provident fund", result.ProvidentFund)
	ew.printf("%-14s | %15s | %15s | %15s\n", "Total",
		format.Currency(result.MonthlyPayment), format.Currency(result.TotalPayment), format.Currency(result.TotalInterest))
}

func prettySensitivity(ew *errWriter, sweep report.SensitivityReport) {
	result := sweep.Result
	ew.printf("--- Sensitivity for %s ---\n", sweep.Name)
	ew.printf("Baseline: %s at %s over %d years | Monthly payment: %s | Total interest: %s\n",
		format.Currency(result.Principal), format.Percent(result.BaselineRate), result.BaselineTerm,
		format.Currency(result.Baseline.MonthlyPayment), format.Currency(result.Baseline.TotalInterest))
	ew.printf("Parameter | Value  | Monthly payment | Total interest  | Change\n")
	ew.printf("_________ | ______ | _______________ | _______________ | _______\n")
	for _, group := range [][]analysisPoint{points(result.Rate), points(result.Term)} {
		for _, point := range group {
			ew.printf("%-9s | %6s | %15s | %15s | %7s\n", point.parameter, point.value,
				point.payment, point.interest, point.change)
		}
	}
	if result.MostSensitive != "" {
		ew.printf("Most sensitive parameter: %s\n", result.MostSensitive)
	}
}

func prettyScenarios(ew *errWriter, scenarios report.ScenarioReport) {
	result := scenarios.Result
	ew.printf("--- Scenario comparison %s ---\n", scenarios.Name)
	ew.printf("#  | Scenario                       | Monthly payment | Payment delta   | Interest delta   | Change\n")
	ew.printf("__ | ______________________________ | _______________ | _______________ | ________________ | _______\n")
	for i, delta := range result.Deltas {
		ew.printf("%2d | %-30s | %15s | %15s | %16s | %7s\n", i, delta.Name,
			format.Currency(delta.MonthlyPayment), format.Currency(delta.MonthlyPaymentDelta),
			format.Currency(delta.TotalInterestDelta), format.Percent(delta.TotalInterestDeltaPercent))
	}
	switch rec := result.Recommendation; {
	case rec.BestOverall != nil:
		ew.printf("Recommendation: %s is best overall\n", rec.BestOverall.Name)
	case rec.Tradeoff != nil:
		ew.printf("Recommendation: tradeoff between %s (lowest interest) and %s (lowest payment)\n",
			rec.Tradeoff.LowestInterest.Name, rec.Tradeoff.LowestPayment.Name)
	}
}

// CsvFormat outputs every loan schedule in comma-separated value format.
func CsvFormat(w io.Writer, r *report.Report) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"loan", "month", "date", "payment", "principal", "interest", "balance"}); err != nil {
		return err
	}
	for _, loan := range r.Loans {
		for i, item := range loan.Result.Schedule {
			date := ""
			if i < len(loan.Dates) {
				date = loan.Dates[i]
			}
			record := []string{
				loan.Name,
				strconv.Itoa(item.Month),
				date,
				format.NumericCurrency(item.Payment),
				format.NumericCurrency(item.PrincipalPortion),
				format.NumericCurrency(item.InterestPortion),
				format.NumericCurrency(item.RemainingBalance),
			}
			if err := cw.Write(record); err != nil {
				return err
			}
		}
	}
	cw.Flush()
	return cw.Error()
}

// CsvString returns the CSV rendering of the report.
func CsvString(r *report.Report) (string, error) {
	var b strings.Builder
	if err := CsvFormat(&b, r); err != nil {
		return "", err
	}
	return b.String(), nil
}

// JSONFormat outputs the whole report as indented JSON.
func JSONFormat(w io.Writer, r *report.Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(r)
}

type analysisPoint struct {
	parameter string
	value     string
	payment   string
	interest  string
	change    string
}

func points(results []analysis.SensitivityResult) []analysisPoint {
	out := make([]analysisPoint, 0, len(results))
	for _, r := range results {
		out = append(out, analysisPoint{
			parameter: r.Parameter,
			value:     r.VariedValue.String(),
			payment:   format.Currency(r.MonthlyPayment),
			interest:  format.Currency(r.TotalInterest),
			change:    format.Percent(r.PercentageChangeVsBaseline),
		})
	}
	return out
}

func ratio(r metrics.Ratio) string {
	if !r.Available {
		return "n/a"
	}
	return format.Ratio(r.Value)
}

// errWriter remembers the first write error so rendering code can print
// unconditionally.
type errWriter struct {
	w   io.Writer
	err error
}

func (ew *errWriter) write(s string) {
	if ew.err != nil {
		return
	}
	_, ew.err = io.WriteString(ew.w, s)
}

func (ew *errWriter) printf(formatString string, args ...interface{}) {
	ew.write(fmt.Sprintf(formatString, args...))
}
