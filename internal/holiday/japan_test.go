package holiday

import (
	"testing"
	"time"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 9, 0, 0, 0, time.UTC)
}

func TestName(t *testing.T) {
	tests := []struct {
		date time.Time
		want string
	}{
		{date(2025, time.January, 1), "元日"},
		{date(2025, time.January, 13), "成人の日"},
		{date(2025, time.February, 11), "建国記念の日"},
		{date(2025, time.February, 23), "天皇誕生日"},
		{date(2025, time.February, 24), "振替休日"},
		{date(2025, time.March, 20), "春分の日"},
		{date(2025, time.April, 29), "昭和の日"},
		{date(2025, time.May, 3), "憲法記念日"},
		{date(2025, time.May, 4), "みどりの日"},
		{date(2025, time.May, 5), "こどもの日"},
		{date(2025, time.May, 6), "振替休日"},
		{date(2025, time.July, 21), "海の日"},
		{date(2025, time.August, 11), "山の日"},
		{date(2025, time.September, 15), "敬老の日"},
		{date(2025, time.September, 23), "秋分の日"},
		{date(2025, time.October, 13), "スポーツの日"},
		{date(2025, time.November, 3), "文化の日"},
		{date(2025, time.November, 24), "振替休日"},
		{date(2023, time.January, 2), "振替休日"},
		{date(2024, time.August, 12), "振替休日"},
		{date(2026, time.March, 20), "春分の日"},
		{date(2026, time.September, 21), "敬老の日"},
		{date(2026, time.September, 22), "国民の休日"},
		{date(2026, time.September, 23), "秋分の日"},
		{date(2019, time.April, 30), "国民の休日"},
		{date(2019, time.May, 1), "即位の日"},
		{date(2019, time.May, 2), "国民の休日"},
		{date(2019, time.October, 22), "即位礼正殿の儀"},
		{date(2018, time.December, 23), "天皇誕生日"},
		{date(2020, time.July, 24), "スポーツの日"},
		{date(2021, time.August, 9), "振替休日"},
	}

	for _, tt := range tests {
		t.Run(tt.date.Format("2006-01-02"), func(t *testing.T) {
			got, ok := Name(tt.date)
			if !ok {
				t.Fatalf("Name(%s) = not a holiday, want %q", tt.date.Format(time.DateOnly), tt.want)
			}
			if got != tt.want {
				t.Errorf("Name(%s) = %q, want %q", tt.date.Format(time.DateOnly), got, tt.want)
			}
		})
	}
}

func TestNotHoliday(t *testing.T) {
	for _, d := range []time.Time{
		date(2025, time.August, 15),
		date(2025, time.December, 31),
		date(2025, time.January, 6),
		date(2019, time.December, 23),
		date(2020, time.October, 12),
		date(2020, time.August, 11),
		date(2025, time.September, 22),
	} {
		if name, ok := Name(d); ok {
			t.Errorf("Name(%s) = %q, want no holiday", d.Format(time.DateOnly), name)
		}
	}
}

func TestIsHoliday_IgnoresZone(t *testing.T) {
	tokyo := time.FixedZone("JST", 9*60*60)
	// 00:30 on New Year's Day in Tokyo is still 12/31 in UTC.
	d := time.Date(2025, time.January, 1, 0, 30, 0, 0, tokyo)
	if !(Japan{}).IsHoliday(d) {
		t.Error("IsHoliday should use the calendar date in the value's own zone")
	}
}
