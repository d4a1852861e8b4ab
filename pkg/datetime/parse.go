// Package datetime provides date helpers for labelling schedule rows.
package datetime

import (
	"fmt"
	"time"

	"github.com/iwvelando/loan-calculator/pkg/constants"
)

const (
	// DateTimeLayout is the format expected in config files and is also the output
	// date format.
	DateTimeLayout = constants.DateTimeLayout
)

// MustParseTime parses a date string using the given layout and panics on error.
// This is intended for use in tests where the date string is known to be valid.
func MustParseTime(layout, dateStr string) time.Time {
	t, err := time.Parse(layout, dateStr)
	if err != nil {
		panic(err)
	}
	return t
}

// OffsetDate returns the string-formatted date offset by the given number of
// months relative to the given date.
func OffsetDate(date, layout string, months int) (string, error) {
	t, err := time.Parse(layout, date)
	if err != nil {
		return date, err
	}
	return t.AddDate(0, months, 0).Format(layout), nil
}

// PaymentDate returns the month in which the given 1-based payment of a loan
// starting at startDate falls. The first payment is due in the start month.
func PaymentDate(startDate string, month int) (string, error) {
	if month < 1 {
		return "", fmt.Errorf("payment month %d is not positive", month)
	}
	return OffsetDate(startDate, DateTimeLayout, month-1)
}

// PaymentDates labels a schedule of the given length. An empty start date
// yields nil.
func PaymentDates(startDate string, months int) ([]string, error) {
	if startDate == "" {
		return nil, nil
	}
	start, err := time.Parse(DateTimeLayout, startDate)
	if err != nil {
		return nil, err
	}
	dates := make([]string, months)
	for i := range dates {
		dates[i] = start.AddDate(0, i, 0).Format(DateTimeLayout)
	}
	return dates, nil
}

// MaturityDate returns the month of the last payment of a loan.
func MaturityDate(startDate string, termMonths int) (string, error) {
	return PaymentDate(startDate, termMonths)
}
