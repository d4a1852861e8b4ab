// Package config defines the data structures related to configuration and
// includes functions for loading and parsing the config.
package config

import (
	"fmt"
	"io"

	"github.com/iwvelando/loan-calculator/pkg/constants"
	"github.com/iwvelando/loan-calculator/pkg/validation"
	"github.com/spf13/viper"
)

// DateTimeLayout is the format expected in config files and is also the output
// date format.
const DateTimeLayout = constants.DateTimeLayout

// Configuration holds all configuration for loan-calculator.
type Configuration struct {
	Logging     LoggingConfig `yaml:"logging,omitempty"`
	Output      OutputConfig  `yaml:"output,omitempty"`
	Loans       []Loan        `yaml:"loans,omitempty"`
	Combined    []CombinedLoan
	Sensitivity []Sensitivity
	Scenarios   ScenarioSet
}

// LoggingConfig holds logging configuration options
type LoggingConfig struct {
	Level      string `yaml:"level,omitempty"`      // debug, info, warn, error
	Format     string `yaml:"format,omitempty"`     // json, console
	OutputFile string `yaml:"outputFile,omitempty"` // optional file output
}

// OutputConfig holds output format configuration options
type OutputConfig struct {
	Format string `yaml:"format,omitempty"` // pretty, csv, json
}

// Loan is a single loan to amortize, optionally with a prepayment and
// borrower context for risk metrics.
type Loan struct {
	Name       string
	Principal  float64
	AnnualRate float64 // percent
	TermYears  int
	Method     string // equalPayment (default) or equalPrincipal
	StartDate  string // optional, labels the schedule rows
	Prepayment *Prepayment
	Context    *MetricsContext
	Optimizer  *Optimizer
}

// Optimizer searches the principal or term that keeps the payment within
// MaxPaymentRatio of the monthly income. Unset values take defaults.
type Optimizer struct {
	Field           string // principal or termYears
	MaxPaymentRatio float64
	Min             float64
	Max             float64
	Tolerance       float64
	MaxIterations   int
}

// Prepayment is a lump sum paid after the payment of Month.
type Prepayment struct {
	Month  int
	Amount float64
	Method string // reduceTerm or reducePayment
}

// MetricsContext carries the optional borrower and market figures.
type MetricsContext struct {
	MonthlyIncome    *float64
	PropertyValue    *float64
	MarketRate       *float64
	DiscountRate     *float64
	OtherMonthlyDebt *float64
}

// LoanLeg is one part of a combined loan.
type LoanLeg struct {
	Principal  float64
	AnnualRate float64
}

// CombinedLoan is a commercial loan and a provident fund loan sharing a term.
type CombinedLoan struct {
	Name          string
	TermYears     int
	Method        string
	Commercial    LoanLeg
	ProvidentFund LoanLeg
}

// Sensitivity sweeps the rate and term of a loan.
type Sensitivity struct {
	Name       string
	Principal  float64
	AnnualRate float64
	TermYears  int
	RateValues []float64
	TermValues []int
}

// ScenarioSet is a named list of scenarios compared against the first one.
type ScenarioSet struct {
	Name  string
	Items []ScenarioItem
}

// ScenarioItem is one scenario of a comparison.
type ScenarioItem struct {
	ID         string
	Name       string
	Principal  float64
	AnnualRate float64
	TermYears  int
}

// LoadConfiguration takes a file path as input and loads the YAML-formatted
// configuration there.
func LoadConfiguration(configPath string) (*Configuration, error) {
	v := viper.New()
	v.SetConfigFile(configPath)
	v.AutomaticEnv()

	v.SetConfigType("yml")

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file, %s", err)
	}

	return decode(v)
}

// LoadConfigurationFromReader loads a YAML-formatted configuration from r.
func LoadConfigurationFromReader(r io.Reader) (*Configuration, error) {
	v := viper.New()
	v.SetConfigType("yml")

	if err := v.ReadConfig(r); err != nil {
		return nil, fmt.Errorf("error reading config, %s", err)
	}

	return decode(v)
}

func decode(v *viper.Viper) (*Configuration, error) {
	var configuration Configuration
	err := v.Unmarshal(&configuration)
	if err != nil {
		return nil, fmt.Errorf("unable to decode into struct, %s", err)
	}

	return &configuration, nil
}

// ValidateConfiguration performs general validation of the configuration and returns warnings
func (c *Configuration) ValidateConfiguration() []string {
	var warnings []string

	if len(c.Loans) == 0 && len(c.Combined) == 0 && len(c.Sensitivity) == 0 && len(c.Scenarios.Items) == 0 {
		warnings = append(warnings, "Configuration defines no loans, combined loans, sensitivity sweeps or scenarios")
	}

	validator := validation.ConfigValidator{}
	for i, loan := range c.Loans {
		if loan.Name == "" {
			warnings = append(warnings, fmt.Sprintf("Loan %d has no name", i+1))
		}
		validator.Loans = append(validator.Loans, validation.LoanConfig{
			Name:              loan.Name,
			Principal:         decimalFromFloat(loan.Principal),
			AnnualRatePercent: decimalFromFloat(loan.AnnualRate),
			TermYears:         loan.TermYears,
			StartDate:         loan.StartDate,
		})
	}
	for _, combined := range c.Combined {
		validator.Combined = append(validator.Combined, validation.CombinedConfig{
			Name:                   combined.Name,
			TermYears:              combined.TermYears,
			CommercialPrincipal:    decimalFromFloat(combined.Commercial.Principal),
			CommercialRatePercent:  decimalFromFloat(combined.Commercial.AnnualRate),
			ProvidentFundPrincipal: decimalFromFloat(combined.ProvidentFund.Principal),
			ProvidentRatePercent:   decimalFromFloat(combined.ProvidentFund.AnnualRate),
		})
	}
	for _, sweep := range c.Sensitivity {
		validator.Loans = append(validator.Loans, validation.LoanConfig{
			Name:              sweep.Name,
			Principal:         decimalFromFloat(sweep.Principal),
			AnnualRatePercent: decimalFromFloat(sweep.AnnualRate),
			TermYears:         sweep.TermYears,
		})
	}
	for _, item := range c.Scenarios.Items {
		validator.Loans = append(validator.Loans, validation.LoanConfig{
			Name:              item.Name,
			Principal:         decimalFromFloat(item.Principal),
			AnnualRatePercent: decimalFromFloat(item.AnnualRate),
			TermYears:         item.TermYears,
		})
	}

	return append(warnings, validator.ValidateAll()...)
}
