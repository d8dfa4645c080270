package dateutil

import "time"

// DayKeyLayout is the wire format for calendar days in the document
// store. Records store dates as strings so range filters compare
// lexicographically, which for this layout equals chronological order.
const DayKeyLayout = "2006-01-02"

// TruncateToDayUTC truncates the given time to midnight UTC.
//
// Example:
//   - Input: 2025-10-17 14:23:45 UTC
//   - Output: 2025-10-17 00:00:00 UTC
func TruncateToDayUTC(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// TodayUTC returns the current date truncated to midnight UTC.
func TodayUTC() time.Time {
	return TruncateToDayUTC(time.Now())
}

// DayKey renders a time as its calendar-day document key component.
func DayKey(t time.Time) string {
	return t.UTC().Format(DayKeyLayout)
}

// ParseDayKey parses a YYYY-MM-DD day key back into a UTC midnight time.
func ParseDayKey(s string) (time.Time, error) {
	return time.ParseInLocation(DayKeyLayout, s, time.UTC)
}

// WindowStart returns the first day of the trailing window of `days`
// calendar days ending at `end` inclusive. WindowStart(d, 7) == d-6.
func WindowStart(end time.Time, days int) time.Time {
	return TruncateToDayUTC(end).AddDate(0, 0, -(days - 1))
}

// CoversEveryDay reports whether `have` contains a day key for every
// one of the `days` calendar days ending at `end` inclusive. Record
// count alone is not enough: a 7-entry set that skips a day fails.
func CoversEveryDay(have map[string]bool, end time.Time, days int) bool {
	day := WindowStart(end, days)
	for i := 0; i < days; i++ {
		if !have[DayKey(day)] {
			return false
		}
		day = day.AddDate(0, 0, 1)
	}
	return true
}
