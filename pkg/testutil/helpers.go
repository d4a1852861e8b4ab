// Package testutil provides common utility functions for testing.
package testutil

import (
	"testing"

	"github.com/iwvelando/loan-calculator/pkg/loans"
	"github.com/shopspring/decimal"
)

// Cent is the rounding tolerance used throughout the schedule checks.
var Cent = decimal.New(1, -2)

// D parses a decimal literal and panics on malformed input.
func D(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

// SumPrincipal adds the principal portions of a schedule.
func SumPrincipal(schedule []loans.PaymentScheduleItem) decimal.Decimal {
	total := decimal.Zero
	for _, item := range schedule {
		total = total.Add(item.PrincipalPortion)
	}
	return total
}

// SumInterest adds the interest portions of a schedule.
func SumInterest(schedule []loans.PaymentScheduleItem) decimal.Decimal {
	total := decimal.Zero
	for _, item := range schedule {
		total = total.Add(item.InterestPortion)
	}
	return total
}

// CheckScheduleInvariants verifies the properties every produced schedule
// must satisfy. repaid is the principal covered by the rows (the principal
// minus any lump sum paid outside of them).
func CheckScheduleInvariants(tb testing.TB, principal, repaid decimal.Decimal, result loans.PaymentMethodResult) {
	tb.Helper()

	schedule := result.Schedule
	if len(schedule) == 0 {
		tb.Fatalf("schedule is empty")
	}

	if sum := SumPrincipal(schedule); sum.Sub(repaid).Abs().GreaterThan(Cent) {
		tb.Errorf("principal portions sum to %s, expected %s", sum, repaid)
	}

	previous := principal
	for i, item := range schedule {
		if item.Month != i+1 {
			tb.Errorf("row %d has month %d", i, item.Month)
		}
		if item.RemainingBalance.GreaterThan(previous) {
			tb.Errorf("month %d balance %s increased from %s", item.Month, item.RemainingBalance, previous)
		}
		if !item.PrincipalPortion.Add(item.InterestPortion).Equal(item.Payment) {
			tb.Errorf("month %d: principal %s + interest %s != payment %s",
				item.Month, item.PrincipalPortion, item.InterestPortion, item.Payment)
		}
		if item.InterestPortion.IsNegative() {
			tb.Errorf("month %d has negative interest %s", item.Month, item.InterestPortion)
		}
		if item.Payment.IsNegative() || item.RemainingBalance.IsNegative() {
			tb.Errorf("month %d has payment %s and balance %s", item.Month, item.Payment, item.RemainingBalance)
		}
		previous = item.RemainingBalance
	}

	if last := schedule[len(schedule)-1]; !last.RemainingBalance.IsZero() {
		tb.Errorf("final balance is %s, expected 0", last.RemainingBalance)
	}
	if !result.MonthlyPayment.Equal(schedule[0].Payment) {
		tb.Errorf("monthly payment %s differs from first payment %s", result.MonthlyPayment, schedule[0].Payment)
	}
	if !result.TotalInterest.Equal(result.TotalPayment.Sub(principal)) {
		tb.Errorf("total interest %s != total payment %s - principal %s",
			result.TotalInterest, result.TotalPayment, principal)
	}
}

// CheckLevelPayment verifies that every payment is within a cent of the
// first payment.
func CheckLevelPayment(tb testing.TB, schedule []loans.PaymentScheduleItem) {
	tb.Helper()
	first := schedule[0].Payment
	for _, item := range schedule {
		if item.Payment.Sub(first).Abs().GreaterThan(Cent) {
			tb.Errorf("month %d payment %s differs from %s", item.Month, item.Payment, first)
		}
	}
}

// CheckLevelPrincipal verifies constant principal portions and
// non-increasing payments.
func CheckLevelPrincipal(tb testing.TB, schedule []loans.PaymentScheduleItem) {
	tb.Helper()
	first := schedule[0].PrincipalPortion
	for i, item := range schedule {
		if item.PrincipalPortion.Sub(first).Abs().GreaterThan(Cent) {
			tb.Errorf("month %d principal %s differs from %s", item.Month, item.PrincipalPortion, first)
		}
		if i > 0 && item.Payment.GreaterThan(schedule[i-1].Payment) {
			tb.Errorf("month %d payment %s exceeds previous %s", item.Month, item.Payment, schedule[i-1].Payment)
		}
	}
}
