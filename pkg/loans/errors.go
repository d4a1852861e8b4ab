package loans

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidLoanParameters matches any *InvalidLoanParametersError via errors.Is.
	ErrInvalidLoanParameters = errors.New("invalid loan parameters")

	// ErrInvalidPrepayment matches any *InvalidPrepaymentError via errors.Is.
	ErrInvalidPrepayment = errors.New("invalid prepayment")
)

// InvalidLoanParametersError reports which loan field failed its sanity check.
type InvalidLoanParametersError struct {
	Field string
	Value string
}

func (e *InvalidLoanParametersError) Error() string {
	return fmt.Sprintf("invalid loan parameters: %s = %s", e.Field, e.Value)
}

// Is reports whether target is ErrInvalidLoanParameters.
func (e *InvalidLoanParametersError) Is(target error) bool {
	return target == ErrInvalidLoanParameters
}

// InvalidPrepaymentError reports why a prepayment could not be applied.
type InvalidPrepaymentError struct {
	Reason string
}

func (e *InvalidPrepaymentError) Error() string {
	return "invalid prepayment: " + e.Reason
}

// Is reports whether target is ErrInvalidPrepayment.
func (e *InvalidPrepaymentError) Is(target error) bool {
	return target == ErrInvalidPrepayment
}
