package bot

import "time"

// NextWeekly returns the next occurrence of day at hour:minute strictly
// after now, in the location of now.
func NextWeekly(now time.Time, day time.Weekday, hour, minute int) time.Time {
	days := int(day - now.Weekday())
	if days < 0 {
		days += 7
	}
	next := time.Date(now.Year(), now.Month(), now.Day()+days, hour, minute, 0, 0, now.Location())
	if !next.After(now) {
		next = next.AddDate(0, 0, 7)
	}
	return next
}

// NextDaily returns the next hour:minute strictly after now.
func NextDaily(now time.Time, hour, minute int) time.Time {
	next := time.Date(now.Year(), now.Month(), now.Day(), hour, minute, 0, 0, now.Location())
	if !next.After(now) {
		next = next.AddDate(0, 0, 1)
	}
	return next
}
