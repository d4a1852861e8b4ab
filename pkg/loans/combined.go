package loans

import (
	"fmt"

	"go.uber.org/zap"
)

// CalculateCombined amortizes a commercial leg and a provident fund leg over
// the same term and sums them. The legs do not interact; the first failing
// leg aborts the calculation.
func (c *Calculator) CalculateCombined(params CombinedLoanParameters) (CombinedLoanResult, error) {
	method := params.Method
	if method == "" {
		method = EqualPayment
	}

	commercial, err := c.Calculate(LoanParameters{
		Principal:         params.Commercial.Principal,
		AnnualRatePercent: params.Commercial.AnnualRatePercent,
		TermYears:         params.TermYears,
	}, method)
	if err != nil {
		return CombinedLoanResult{}, fmt.Errorf("commercial leg: %w", err)
	}

	providentFund, err := c.Calculate(LoanParameters{
		Principal:         params.ProvidentFund.Principal,
		AnnualRatePercent: params.ProvidentFund.AnnualRatePercent,
		TermYears:         params.TermYears,
	}, method)
	if err != nil {
		return CombinedLoanResult{}, fmt.Errorf("provident fund leg: %w", err)
	}

	result := CombinedLoanResult{
		Commercial:     commercial,
		ProvidentFund:  providentFund,
		MonthlyPayment: commercial.MonthlyPayment.Add(providentFund.MonthlyPayment),
		TotalPayment:   commercial.TotalPayment.Add(providentFund.TotalPayment),
		TotalInterest:  commercial.TotalInterest.Add(providentFund.TotalInterest),
	}

	c.logger.Debug(fmt.Sprintf("combined loan monthly payment %s", result.MonthlyPayment),
		zap.String("op", "loans.CalculateCombined"),
	)
	return result, nil
}
