package metrics

import (
	"fmt"

	"github.com/iwvelando/loan-calculator/pkg/constants"
	"github.com/iwvelando/loan-calculator/pkg/loans"
	"github.com/shopspring/decimal"
)

// RiskLevel is a categorical risk bucket.
type RiskLevel string

const (
	RiskUnknown RiskLevel = "unknown"
	RiskLow     RiskLevel = "low"
	RiskMedium  RiskLevel = "medium"
	RiskHigh    RiskLevel = "high"
)

func (r RiskLevel) rank() int {
	switch r {
	case RiskLow:
		return 1
	case RiskMedium:
		return 2
	case RiskHigh:
		return 3
	default:
		return 0
	}
}

// bucket maps v to low when v <= low, medium when v <= medium, else high.
func bucket(v decimal.Decimal, low, medium float64) RiskLevel {
	switch {
	case v.LessThanOrEqual(decimal.NewFromFloat(low)):
		return RiskLow
	case v.LessThanOrEqual(decimal.NewFromFloat(medium)):
		return RiskMedium
	default:
		return RiskHigh
	}
}

// PaymentRisk buckets a payment-to-income ratio: at most 0.3 is low, at most
// 0.5 medium, anything above high.
func PaymentRisk(dti Ratio) RiskLevel {
	if !dti.Available {
		return RiskUnknown
	}
	return bucket(dti.Value, constants.PaymentToIncomeLow, constants.PaymentToIncomeMedium)
}

// LTVRisk buckets a loan-to-value ratio: at most 0.6 is low, at most 0.8
// medium, anything above high.
func LTVRisk(ltv Ratio) RiskLevel {
	if !ltv.Available {
		return RiskUnknown
	}
	return bucket(ltv.Value, constants.LoanToValueLow, constants.LoanToValueMedium)
}

// InterestRisk buckets a total-interest/principal ratio: at most 0.5 is low,
// at most 1.0 medium, anything above high.
func InterestRisk(interestRatio Ratio) RiskLevel {
	if !interestRatio.Available {
		return RiskUnknown
	}
	return bucket(interestRatio.Value, constants.InterestRatioLow, constants.InterestRatioMedium)
}

// RateRisk compares the loan rate to the market rate. A rate at or below the
// market is low risk, up to half a percentage point above is medium.
func RateRisk(params loans.LoanParameters, ctx Context) RiskLevel {
	if !ctx.MarketRate.Valid {
		return RiskUnknown
	}
	spread := params.AnnualRatePercent.Sub(ctx.MarketRate.Decimal)
	return bucket(spread, 0, constants.RateSpreadMedium)
}

// RiskAssessment holds the individual risk levels and the worst of them.
type RiskAssessment struct {
	Payment     RiskLevel `json:"payment"`
	LoanToValue RiskLevel `json:"loanToValue"`
	Interest    RiskLevel `json:"interest"`
	Rate        RiskLevel `json:"rate"`
	Overall     RiskLevel `json:"overall"`
	Flags       []string  `json:"flags,omitempty"`
}

// AssessRisk evaluates every risk dimension. Overall is the worst known
// level, or unknown when no dimension could be evaluated.
func AssessRisk(params loans.LoanParameters, result loans.PaymentMethodResult, ctx Context) RiskAssessment {
	dti := DebtToIncome(result, ctx)
	ltv := LoanToValue(params, ctx)
	interest := InterestRatio(params, result)

	a := RiskAssessment{
		Payment:     PaymentRisk(dti),
		LoanToValue: LTVRisk(ltv),
		Interest:    InterestRisk(interest),
		Rate:        RateRisk(params, ctx),
		Overall:     RiskUnknown,
	}
	for _, level := range []RiskLevel{a.Payment, a.LoanToValue, a.Interest, a.Rate} {
		if level.rank() > a.Overall.rank() {
			a.Overall = level
		}
	}

	if a.Payment == RiskHigh {
		a.Flags = append(a.Flags, fmt.Sprintf("payment takes %s of monthly income", percent(dti.Value)))
	}
	if a.LoanToValue == RiskHigh {
		a.Flags = append(a.Flags, fmt.Sprintf("loan is %s of the property value", percent(ltv.Value)))
	}
	if a.Interest == RiskHigh {
		a.Flags = append(a.Flags, fmt.Sprintf("total interest is %s of the principal", percent(interest.Value)))
	}
	if a.Rate == RiskHigh {
		a.Flags = append(a.Flags, fmt.Sprintf("rate is %s points above the market",
			params.AnnualRatePercent.Sub(ctx.MarketRate.Decimal).StringFixed(2)))
	}
	return a
}

func percent(v decimal.Decimal) string {
	return v.Mul(decimal.NewFromInt(constants.PercentageMultiplier)).StringFixed(1) + "%"
}
