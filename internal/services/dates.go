package services

import "time"

// addMonthsClamped advances t by the given number of calendar months, clamping
// the day to the target month's last day. time.AddDate would normalize
// Jan 31 + 1 month into Mar 2/3; due dates must land on Feb 28/29 instead.
func addMonthsClamped(t time.Time, months int) time.Time {
	y, m, d := t.Date()
	firstOfTarget := time.Date(y, m+time.Month(months), 1, 0, 0, 0, 0, t.Location())
	lastDay := firstOfTarget.AddDate(0, 1, -1).Day()
	if d > lastDay {
		d = lastDay
	}
	hh, mm, ss := t.Clock()
	return time.Date(firstOfTarget.Year(), firstOfTarget.Month(), d, hh, mm, ss, t.Nanosecond(), t.Location())
}
