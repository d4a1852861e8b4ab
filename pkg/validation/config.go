// Package validation checks loans against lending policy limits. Limits are
// reported as warnings; the engine computes any loan it accepts.
package validation

import (
	"fmt"
	"strings"

	"github.com/iwvelando/loan-calculator/pkg/constants"
	"github.com/iwvelando/loan-calculator/pkg/datetime"
	"github.com/shopspring/decimal"
)

var (
	maxLoanAmount          = decimal.NewFromInt(constants.MaxLoanAmount)
	maxProvidentFundAmount = decimal.NewFromInt(constants.MaxProvidentFundAmount)
	maxAnnualRatePercent   = decimal.NewFromInt(constants.MaxAnnualRatePercent)
)

// ValidateLoanLimits returns the policy limits a loan exceeds.
func ValidateLoanLimits(loanName string, principal, annualRatePercent decimal.Decimal, termYears int) []string {
	var warnings []string

	if principal.GreaterThan(maxLoanAmount) {
		warnings = append(warnings, fmt.Sprintf("Loan '%s' principal %s exceeds the maximum loan amount %s",
			loanName, principal.StringFixed(2), maxLoanAmount.StringFixed(2)))
	}
	if annualRatePercent.GreaterThan(maxAnnualRatePercent) {
		warnings = append(warnings, fmt.Sprintf("Loan '%s' rate %s%% exceeds the maximum rate %s%%",
			loanName, annualRatePercent, maxAnnualRatePercent))
	}
	if termYears > constants.MaxTermYears {
		warnings = append(warnings, fmt.Sprintf("Loan '%s' term of %d years exceeds the maximum term of %d years",
			loanName, termYears, constants.MaxTermYears))
	}

	return warnings
}

// ValidateProvidentFund checks the provident fund leg of a combined loan
// against its cap.
func ValidateProvidentFund(loanName string, principal decimal.Decimal) string {
	if principal.GreaterThan(maxProvidentFundAmount) {
		return fmt.Sprintf("Combined loan '%s' provident fund principal %s exceeds the cap %s",
			loanName, principal.StringFixed(2), maxProvidentFundAmount.StringFixed(2))
	}
	return ""
}

// ValidateStartDate checks that a start date, when given, parses.
func ValidateStartDate(loanName, startDate string) string {
	if startDate == "" {
		return ""
	}
	if _, err := datetime.OffsetDate(startDate, datetime.DateTimeLayout, 0); err != nil {
		return fmt.Sprintf("Loan '%s' start date %q is not in %s format; payment dates will be omitted",
			loanName, startDate, datetime.DateTimeLayout)
	}
	return ""
}

// ConfigValidator collects the loans of a configuration for policy checks.
type ConfigValidator struct {
	Loans    []LoanConfig
	Combined []CombinedConfig
}

type LoanConfig struct {
	Name              string
	Principal         decimal.Decimal
	AnnualRatePercent decimal.Decimal
	TermYears         int
	StartDate         string
}

type CombinedConfig struct {
	Name                   string
	TermYears              int
	CommercialPrincipal    decimal.Decimal
	CommercialRatePercent  decimal.Decimal
	ProvidentFundPrincipal decimal.Decimal
	ProvidentRatePercent   decimal.Decimal
}

// ValidateAll validates the entire configuration and returns warnings
func (cv *ConfigValidator) ValidateAll() []string {
	var warnings []string

	for _, loan := range cv.Loans {
		warnings = append(warnings, ValidateLoanLimits(loan.Name, loan.Principal, loan.AnnualRatePercent, loan.TermYears)...)
		if warning := ValidateStartDate(loan.Name, loan.StartDate); warning != "" {
			warnings = append(warnings, warning)
		}
	}

	for _, combined := range cv.Combined {
		total := combined.CommercialPrincipal.Add(combined.ProvidentFundPrincipal)
		warnings = append(warnings, ValidateLoanLimits(combined.Name, total,
			decimal.Max(combined.CommercialRatePercent, combined.ProvidentRatePercent), combined.TermYears)...)
		if warning := ValidateProvidentFund(combined.Name, combined.ProvidentFundPrincipal); warning != "" {
			warnings = append(warnings, warning)
		}
	}

	return warnings
}

// OutputFormat normalizes a report format name. An empty name selects the
// pretty format.
func OutputFormat(format string) (string, error) {
	normalized := strings.ToLower(strings.TrimSpace(format))
	switch normalized {
	case "":
		return constants.OutputFormatPretty, nil
	case constants.OutputFormatPretty, constants.OutputFormatCSV, constants.OutputFormatJSON:
		return normalized, nil
	}
	return "", fmt.Errorf("expected output format of %s, %s or %s, got %q",
		constants.OutputFormatPretty, constants.OutputFormatCSV, constants.OutputFormatJSON, format)
}
