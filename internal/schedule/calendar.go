// Package schedule knows when payment runs happen and re-plans them on a
// cron schedule.
package schedule

import "time"

// businessDayOfRun is the weekday count that lands on the monthly payment run.
const businessDayOfRun = 5

// FifthBusinessDay returns midnight of the fifth Monday-to-Friday day in
// t's month, in t's location. Public holidays are not considered.
func FifthBusinessDay(t time.Time) time.Time {
	d := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
	count := 0
	for {
		if isBusinessDay(d) {
			count++
			if count == businessDayOfRun {
				return d
			}
		}
		d = d.AddDate(0, 0, 1)
	}
}

// NextPaymentRun returns this month's payment run if it is today or later,
// otherwise next month's.
func NextPaymentRun(now time.Time) time.Time {
	run := FifthBusinessDay(now)
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	if !run.Before(today) {
		return run
	}
	firstOfNext := time.Date(now.Year(), now.Month()+1, 1, 0, 0, 0, 0, now.Location())
	return FifthBusinessDay(firstOfNext)
}

// IsPaymentRunDay reports whether t falls on its month's payment run.
func IsPaymentRunDay(t time.Time) bool {
	run := FifthBusinessDay(t)
	return t.Year() == run.Year() && t.YearDay() == run.YearDay()
}

func isBusinessDay(t time.Time) bool {
	wd := t.Weekday()
	return wd != time.Saturday && wd != time.Sunday
}
