package analysis

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/iwvelando/loan-calculator/pkg/batch"
	"github.com/iwvelando/loan-calculator/pkg/loans"
	"go.uber.org/zap"
)

// AnalyzeScenarios evaluates every scenario with level payments and compares
// each one to the first. The input slice is not modified; the returned
// scenarios carry their results and an ID (generated when missing).
//
// The recommendation picks the first scenario with the lowest interest delta
// and the first with the lowest payment delta. The baseline takes part with
// deltas of zero. When several scenarios fail, the error names the first of
// them in input order.
func (a *Analyzer) AnalyzeScenarios(ctx context.Context, scenarios []Scenario) (ScenarioComparison, error) {
	if len(scenarios) == 0 {
		return ScenarioComparison{}, ErrNoScenarios
	}

	evaluated := make([]Scenario, len(scenarios))
	copy(evaluated, scenarios)
	for i := range evaluated {
		if evaluated[i].ID == "" {
			evaluated[i].ID = uuid.NewString()
		}
	}

	results, err := batch.Map(ctx, evaluated, a.workers, func(_ context.Context, s Scenario) (loans.PaymentMethodResult, error) {
		result, err := a.calc.CalculateEqualPayment(s.Parameters)
		if err != nil {
			return loans.PaymentMethodResult{}, fmt.Errorf("scenario %q: %w", s.Name, err)
		}
		return result, nil
	})
	if err != nil {
		return ScenarioComparison{}, err
	}

	baseline := results[0]
	comparison := ScenarioComparison{
		Scenarios: evaluated,
		Deltas:    make([]ScenarioDelta, len(evaluated)),
	}
	lowestInterest, lowestPayment := 0, 0
	for i := range evaluated {
		result := results[i]
		evaluated[i].Result = &result

		delta := ScenarioDelta{
			ID:                        evaluated[i].ID,
			Name:                      evaluated[i].Name,
			MonthlyPayment:            result.MonthlyPayment,
			TotalInterest:             result.TotalInterest,
			MonthlyPaymentDelta:       result.MonthlyPayment.Sub(baseline.MonthlyPayment),
			TotalInterestDelta:        result.TotalInterest.Sub(baseline.TotalInterest),
			TotalInterestDeltaPercent: percentChange(baseline.TotalInterest, result.TotalInterest),
		}
		comparison.Deltas[i] = delta

		if delta.TotalInterestDelta.LessThan(comparison.Deltas[lowestInterest].TotalInterestDelta) {
			lowestInterest = i
		}
		if delta.MonthlyPaymentDelta.LessThan(comparison.Deltas[lowestPayment].MonthlyPaymentDelta) {
			lowestPayment = i
		}
	}

	if lowestInterest == lowestPayment {
		best := ref(evaluated, lowestInterest)
		comparison.Recommendation.BestOverall = &best
	} else {
		comparison.Recommendation.Tradeoff = &Tradeoff{
			LowestInterest: ref(evaluated, lowestInterest),
			LowestPayment:  ref(evaluated, lowestPayment),
		}
	}

	a.logger.Debug(fmt.Sprintf("compared %d scenarios, lowest interest %d, lowest payment %d",
		len(evaluated), lowestInterest, lowestPayment),
		zap.String("op", "analysis.AnalyzeScenarios"),
	)
	return comparison, nil
}

func ref(scenarios []Scenario, i int) ScenarioRef {
	return ScenarioRef{Index: i, ID: scenarios[i].ID, Name: scenarios[i].Name}
}
