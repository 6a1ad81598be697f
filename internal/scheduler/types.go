// Package scheduler decides whether the daily report should run.
package scheduler

import (
	"fmt"
	"time"
)

// Reason explains a Decision.
type Reason string

const (
	ReasonExcludedDate Reason = "excluded_date" // Listed in SKIP_DATES or the skip file
	ReasonWeekend      Reason = "weekend"       // Saturday or Sunday
	ReasonHoliday      Reason = "holiday"       // National holiday on a weekday
	ReasonEligible     Reason = "eligible"      // Business day, run the report
)

// Decision is the outcome of one scheduling check. It is computed fresh
// for each invocation and never stored.
type Decision struct {
	Date      time.Time `json:"date"`
	ShouldRun bool      `json:"should_run"`
	Reason    Reason    `json:"reason"`
	// Detail names the holiday when Reason is ReasonHoliday.
	Detail string `json:"detail,omitempty"`
}

// String renders the decision the way the cron log shows it.
func (d Decision) String() string {
	date := d.Date.Format(time.DateOnly)
	switch d.Reason {
	case ReasonExcludedDate:
		return fmt.Sprintf("[skip] %s は指定除外日", date)
	case ReasonWeekend:
		return fmt.Sprintf("[skip] %s は休日 (%s)", date, d.Date.Weekday())
	case ReasonHoliday:
		if d.Detail != "" {
			return fmt.Sprintf("[skip] %s は祝日 (%s)", date, d.Detail)
		}
		return fmt.Sprintf("[skip] %s は祝日", date)
	default:
		return fmt.Sprintf("[run] %s 平日判定 OK", date)
	}
}
