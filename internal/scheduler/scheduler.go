package scheduler

import (
	"time"

	"github.com/nugget/credo-bot/internal/calendar"
	"github.com/nugget/credo-bot/internal/exclusion"
)

// HolidayNamer optionally lets the holiday calendar explain itself.
type HolidayNamer interface {
	HolidayName(date time.Time) (string, bool)
}

// Scheduler combines calendar rules with user exclusions.
type Scheduler struct {
	rules      calendar.Rules
	exclusions *exclusion.Set
}

// New creates a scheduler. A nil exclusion set excludes nothing.
func New(rules calendar.Rules, exclusions *exclusion.Set) *Scheduler {
	return &Scheduler{rules: rules, exclusions: exclusions}
}

// Decide returns whether the report should run on today.
//
// Explicit exclusions are checked first and override the calendar: an
// excluded weekday is skipped, and the reason is always ReasonExcludedDate
// even when the date is also a weekend or holiday. Weekends are reported
// before holidays.
func (s *Scheduler) Decide(today time.Time) Decision {
	d := Decision{Date: today}

	switch {
	case s.exclusions.Contains(today):
		d.Reason = ReasonExcludedDate
	case calendar.IsWeekend(today):
		d.Reason = ReasonWeekend
	case s.rules.IsHoliday(today):
		d.Reason = ReasonHoliday
		if namer, ok := s.rules.Holidays.(HolidayNamer); ok {
			d.Detail, _ = namer.HolidayName(today)
		}
	default:
		d.ShouldRun = true
		d.Reason = ReasonEligible
	}
	return d
}
