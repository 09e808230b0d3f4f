package timeutil

import "time"

// Common layouts used across handlers and services
const (
	DateLayout     = "2006-01-02"
	DateTimeLayout = "2006-01-02 15:04:05"
	MonthLayout    = "2006-01"
	DisplayLayout  = "02 Jan 2006"
)

// StartOfMonth returns 00:00:00 on the first day of t's month.
func StartOfMonth(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
}

// StartOfDay returns the start of day (00:00:00) for the given time
func StartOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// MonthKey returns the YYYY-MM key identifying t's billing month.
func MonthKey(t time.Time) string {
	return t.Format(MonthLayout)
}

// MonthsBetween returns the first day of every calendar month strictly after
// `from` up to and including `to`'s month. An empty slice is returned when
// `to` falls in or before `from`'s month.
func MonthsBetween(from, to time.Time) []time.Time {
	var months []time.Time
	cur := StartOfMonth(from).AddDate(0, 1, 0)
	last := StartOfMonth(to)
	for !cur.After(last) {
		months = append(months, cur)
		cur = cur.AddDate(0, 1, 0)
	}
	return months
}

// DaysLate returns how many days past the 1st of the month a payment date
// falls. Rent is due on the 1st, so a payment on the 1st is 0 days late.
func DaysLate(paymentDate time.Time) int {
	if paymentDate.Day() <= 1 {
		return 0
	}
	return paymentDate.Day() - 1
}
