// Package holiday computes Japanese national holidays from the rules of
// the Act on National Holidays rather than a shipped date table, so the
// calendar does not go stale at the end of a published list.
//
// Coverage is 2000 through 2099. The equinox days use the standard
// approximation formula, which matches the dates announced by the
// National Astronomical Observatory for that range.
package holiday

import (
	"math"
	"time"
)

// Japan answers holiday questions for the Japanese national calendar.
// The zero value is ready to use.
type Japan struct{}

// IsHoliday reports whether date is a national holiday, including
// substitute holidays and citizens' holidays.
func (Japan) IsHoliday(date time.Time) bool {
	_, ok := Name(date)
	return ok
}

// HolidayName is [Name] as a method, for callers holding a Japan value.
func (Japan) HolidayName(date time.Time) (string, bool) {
	return Name(date)
}

// Name returns the holiday name for date, or false if it is not one.
// Only the calendar date matters; the time of day and zone are ignored.
func Name(date time.Time) (string, bool) {
	d := civil(date)
	if name, ok := statutory(d); ok {
		return name, true
	}
	if isSubstitute(d) {
		return "振替休日", true
	}
	if isCitizens(d) {
		return "国民の休日", true
	}
	return "", false
}

// civil strips the clock so that date arithmetic is zone-safe.
func civil(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// isSubstitute implements the 2007 rule: when a holiday falls on a
// Sunday, the next day that is not itself a holiday is a day off.
func isSubstitute(d time.Time) bool {
	if d.Year() < 2007 {
		// Before 2007 only the Monday directly after a Sunday holiday counted.
		prev := d.AddDate(0, 0, -1)
		_, ok := statutory(prev)
		return d.Weekday() == time.Monday && ok
	}
	for prev := d.AddDate(0, 0, -1); ; prev = prev.AddDate(0, 0, -1) {
		if _, ok := statutory(prev); !ok {
			return false
		}
		if prev.Weekday() == time.Sunday {
			return true
		}
	}
}

// isCitizens reports a weekday sandwiched between two statutory holidays.
func isCitizens(d time.Time) bool {
	if d.Weekday() == time.Sunday {
		return false
	}
	_, before := statutory(d.AddDate(0, 0, -1))
	_, after := statutory(d.AddDate(0, 0, 1))
	return before && after
}

// statutory returns holidays named directly by the Act, without the
// substitute and citizens' rules.
func statutory(d time.Time) (string, bool) {
	y, m, day := d.Year(), d.Month(), d.Day()

	if name, ok := special(y, m, day); ok {
		return name, ok
	}

	switch m {
	case time.January:
		if day == 1 {
			return "元日", true
		}
		if isNthMonday(d, 2) {
			return "成人の日", true
		}
	case time.February:
		if day == 11 {
			return "建国記念の日", true
		}
		if day == 23 && y >= 2020 {
			return "天皇誕生日", true
		}
	case time.March:
		if day == vernalEquinox(y) {
			return "春分の日", true
		}
	case time.April:
		if day == 29 {
			if y >= 2007 {
				return "昭和の日", true
			}
			return "みどりの日", true
		}
	case time.May:
		switch day {
		case 3:
			return "憲法記念日", true
		case 4:
			if y >= 2007 {
				return "みどりの日", true
			}
		case 5:
			return "こどもの日", true
		}
	case time.July:
		if y == 2020 || y == 2021 {
			break
		}
		if y >= 2003 && isNthMonday(d, 3) {
			return "海の日", true
		}
		if y < 2003 && day == 20 {
			return "海の日", true
		}
	case time.August:
		if y >= 2016 && y != 2020 && y != 2021 && day == 11 {
			return "山の日", true
		}
	case time.September:
		if y >= 2003 && isNthMonday(d, 3) {
			return "敬老の日", true
		}
		if y < 2003 && day == 15 {
			return "敬老の日", true
		}
		if day == autumnalEquinox(y) {
			return "秋分の日", true
		}
	case time.October:
		if y == 2020 || y == 2021 {
			break
		}
		if isNthMonday(d, 2) {
			if y >= 2020 {
				return "スポーツの日", true
			}
			return "体育の日", true
		}
	case time.November:
		if day == 3 {
			return "文化の日", true
		}
		if day == 23 {
			return "勤労感謝の日", true
		}
	case time.December:
		if day == 23 && y >= 1989 && y <= 2018 {
			return "天皇誕生日", true
		}
	}
	return "", false
}

// special covers one-off dates set by separate legislation: the 2019
// enthronement and the Olympic reshuffles of 2020 and 2021.
func special(y int, m time.Month, day int) (string, bool) {
	type md struct {
		m time.Month
		d int
	}
	table := map[int]map[md]string{
		2019: {
			{time.May, 1}:      "即位の日",
			{time.October, 22}: "即位礼正殿の儀",
		},
		2020: {
			{time.July, 23}:   "海の日",
			{time.July, 24}:   "スポーツの日",
			{time.August, 10}: "山の日",
		},
		2021: {
			{time.July, 22}:  "海の日",
			{time.July, 23}:  "スポーツの日",
			{time.August, 8}: "山の日",
		},
	}
	name, ok := table[y][md{m, day}]
	return name, ok
}

// isNthMonday reports whether d is the nth Monday of its month.
func isNthMonday(d time.Time, n int) bool {
	return d.Weekday() == time.Monday && (d.Day()-1)/7 == n-1
}

func vernalEquinox(y int) int {
	return equinox(y, 20.8431)
}

func autumnalEquinox(y int) int {
	return equinox(y, 23.2488)
}

// equinox applies the approximation valid for 1980-2099.
func equinox(y int, base float64) int {
	years := float64(y - 1980)
	return int(math.Floor(base + 0.242194*years - math.Floor(years/4)))
}
