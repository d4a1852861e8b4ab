// Package optimization provides shared data structures for optimization results.
package optimization

import "github.com/shopspring/decimal"

// Summary captures the result of a single affordability search.
type Summary struct {
	TargetName string          `json:"targetName"`
	Field      string          `json:"field"`
	Original   decimal.Decimal `json:"original"`
	Value      decimal.Decimal `json:"value"`
	// PaymentLimit is the highest monthly payment the borrower context allows.
	PaymentLimit    decimal.Decimal `json:"paymentLimit"`
	Payment         decimal.Decimal `json:"payment"`
	Headroom        decimal.Decimal `json:"headroom"`
	Iterations      int             `json:"iterations"`
	Converged       bool            `json:"converged"`
	Notes           []string        `json:"notes,omitempty"`
	OriginalDisplay string          `json:"originalDisplay,omitempty"`
	ValueDisplay    string          `json:"valueDisplay,omitempty"`
}
