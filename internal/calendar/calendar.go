// Package calendar decides whether a date is an ordinary working day.
// Holiday knowledge is supplied by a [HolidayChecker]; this package only
// combines it with the weekday rule.
package calendar

import "time"

// HolidayChecker reports public holidays for some national calendar.
type HolidayChecker interface {
	IsHoliday(date time.Time) bool
}

// Rules combines the Monday-Friday rule with a holiday calendar.
type Rules struct {
	// Holidays may be nil, in which case no date is a holiday.
	Holidays HolidayChecker
}

// IsWeekend reports whether date falls on Saturday or Sunday.
func IsWeekend(date time.Time) bool {
	wd := date.Weekday()
	return wd == time.Saturday || wd == time.Sunday
}

// IsHoliday reports whether date is a public holiday.
func (r Rules) IsHoliday(date time.Time) bool {
	if r.Holidays == nil {
		return false
	}
	return r.Holidays.IsHoliday(date)
}

// IsBusinessDay reports whether date is Monday through Friday and not a
// public holiday.
func (r Rules) IsBusinessDay(date time.Time) bool {
	return !IsWeekend(date) && !r.IsHoliday(date)
}
