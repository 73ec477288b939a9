package caldate

import (
	"errors"
	"fmt"
	"time"
)

// ErrInvalidDate is returned when an input cannot be parsed as a calendar date.
var ErrInvalidDate = errors.New("invalid date")

const dateLayout = "2006-01-02"

// Date is a timezone-free calendar day. Billing periods, due dates, and
// service dates are civil days, not instants. Keeping them free of a
// location avoids the classic bug where "2024-03-01" parsed as UTC midnight
// renders as February 29th in a UTC-behind timezone.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

// Parse accepts a date-only string (YYYY-MM-DD) or an RFC3339 timestamp.
// A date-only string is taken as that civil day directly; a timestamp is
// reduced to the civil day of its own location.
func Parse(s string) (Date, error) {
	if t, err := time.Parse(dateLayout, s); err == nil {
		return Date{Year: t.Year(), Month: t.Month(), Day: t.Day()}, nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return FromTime(t), nil
	}
	return Date{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
}

// FromTime returns the civil day of t in t's own location.
func FromTime(t time.Time) Date {
	return Date{Year: t.Year(), Month: t.Month(), Day: t.Day()}
}

// Today returns the current civil day in the server's local timezone.
func Today() Date {
	return FromTime(time.Now())
}

// Time pins the date to UTC midnight, the stable representation for DATE
// columns and for day arithmetic (UTC has no DST, so every day is 24h).
func (d Date) Time() time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC)
}

func (d Date) String() string {
	return d.Time().Format(dateLayout)
}

func (d Date) IsZero() bool {
	return d == Date{}
}

// AddDays returns the date n calendar days later (earlier when n < 0).
func (d Date) AddDays(n int) Date {
	return FromTime(d.Time().AddDate(0, 0, n))
}

// After reports whether d falls on a later calendar day than other.
func (d Date) After(other Date) bool {
	return d.Time().After(other.Time())
}

// Before reports whether d falls on an earlier calendar day than other.
func (d Date) Before(other Date) bool {
	return d.Time().Before(other.Time())
}

// DaysBetween counts whole calendar days from a to b, positive when b is
// later. It operates on civil days, never wall-clock elapsed time, so a
// DST transition inside the range cannot skew the count.
func DaysBetween(a, b Date) int {
	return int(b.Time().Sub(a.Time()) / (24 * time.Hour))
}
