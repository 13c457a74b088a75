package models

import (
	"fmt"
	"time"

	dErrors "milsabores/pkg/domain-errors"
)

const dateLayout = "2006-01-02"

// Date is a civil calendar date with no time zone, serialised as 2006-01-02.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

// ParseDate parses a 2006-01-02 date and rejects impossible days.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return Date{}, dErrors.New(dErrors.CodeValidation, "birth date must be YYYY-MM-DD")
	}
	return DateOf(t), nil
}

// DateOf returns the calendar date of t in t's own location.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return Date{Year: y, Month: m, Day: d}
}

func (d Date) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, int(d.Month), d.Day)
}

func (d Date) IsZero() bool {
	return d == Date{}
}

// AgeOn returns completed years between d and the calendar date of t. The
// year ticks over once t's month and day reach d's, so someone born on
// February 29 ages on March 1 in common years.
func (d Date) AgeOn(t time.Time) int {
	y, m, day := t.Date()
	age := y - d.Year
	if m < d.Month || (m == d.Month && day < d.Day) {
		age--
	}
	return age
}

func (d Date) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

func (d *Date) UnmarshalText(b []byte) error {
	parsed, err := ParseDate(string(b))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}
