package core

import (
	"errors"
	"fmt"
	"time"
)

// DateLayout is the encoding used in the persisted document and over the API.
const DateLayout = "02.01.2006"

// MonthLayout is the reporting-period encoding (month and year).
const MonthLayout = "01.2006"

var (
	ErrInvalidDate  = errors.New("invalid date")
	ErrInvalidMonth = errors.New("invalid month")
)

type (
	// Date is a calendar date with no time-of-day component.
	Date struct {
		time.Time
	}

	// Month is a reporting period covering one calendar month, first day
	// through last day inclusive.
	Month struct {
		Year  int
		Month time.Month
	}
)

// NewDate creates a Date from year, month, day.
func NewDate(year int, month time.Month, day int) Date {
	return Date{Time: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// Today returns the current calendar date.
func Today() Date {
	now := time.Now()
	return NewDate(now.Year(), now.Month(), now.Day())
}

// ParseDate parses the dd.mm.yyyy wire form.
func ParseDate(s string) (Date, error) {
	t, err := time.ParseInLocation(DateLayout, s, time.UTC)
	if err != nil {
		return Date{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	return Date{Time: t}, nil
}

func (d Date) Validate() error {
	if d.IsZero() {
		return ErrInvalidDate
	}
	return nil
}

// Format renders the dd.mm.yyyy wire form.
func (d Date) Format() string {
	return d.Time.Format(DateLayout)
}

func (d Date) Equal(other Date) bool {
	return d.Year() == other.Year() && d.Month() == other.Month() && d.Day() == other.Day()
}

// ParseMonth parses the mm.yyyy wire form.
func ParseMonth(s string) (Month, error) {
	t, err := time.ParseInLocation(MonthLayout, s, time.UTC)
	if err != nil {
		return Month{}, fmt.Errorf("%w: %q", ErrInvalidMonth, s)
	}
	return Month{Year: t.Year(), Month: t.Month()}, nil
}

// First returns the first day of the month.
func (m Month) First() Date {
	return NewDate(m.Year, m.Month, 1)
}

// Last returns the last day of the month.
func (m Month) Last() Date {
	return NewDate(m.Year, m.Month, m.Days())
}

// Days returns the number of days in the month.
func (m Month) Days() int {
	return time.Date(m.Year, m.Month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// Contains reports whether the date falls inside the month, both ends
// inclusive.
func (m Month) Contains(d Date) bool {
	return d.Year() == m.Year && d.Month() == m.Month
}

// Format renders the mm.yyyy wire form.
func (m Month) Format() string {
	return time.Date(m.Year, m.Month, 1, 0, 0, 0, 0, time.UTC).Format(MonthLayout)
}
