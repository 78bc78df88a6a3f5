package spacedrep

import "time"

// DateLayout is the calendar-date format used for due dates.
const DateLayout = "2006-01-02"

// Day truncates t to midnight of its calendar date in t's location.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// DaysBetween returns the number of calendar days from a to b.
func DaysBetween(a, b time.Time) int {
	da := time.Date(a.Year(), a.Month(), a.Day(), 0, 0, 0, 0, time.UTC)
	db := time.Date(b.Year(), b.Month(), b.Day(), 0, 0, 0, 0, time.UTC)
	return int(db.Sub(da).Hours() / 24)
}

// IsDue reports whether an item with the given due date should be reviewed
// on today. A nil due date means the item was never scheduled and is due.
func IsDue(nextDue *time.Time, today time.Time) bool {
	if nextDue == nil {
		return true
	}
	return DaysBetween(*nextDue, today) >= 0
}

// OverdueDays returns how many days past due the item is. Returns 0 if not
// yet due or never scheduled.
func OverdueDays(nextDue *time.Time, today time.Time) int {
	if nextDue == nil {
		return 0
	}
	if d := DaysBetween(*nextDue, today); d > 0 {
		return d
	}
	return 0
}

// DaysUntilReview returns the number of days until the next review.
// Returns 0 if already due.
func DaysUntilReview(nextDue *time.Time, today time.Time) int {
	if nextDue == nil {
		return 0
	}
	if d := DaysBetween(today, *nextDue); d > 0 {
		return d
	}
	return 0
}

// ParseDate parses a YYYY-MM-DD date in UTC.
func ParseDate(s string) (time.Time, error) {
	return time.Parse(DateLayout, s)
}

// FormatDate formats t as YYYY-MM-DD.
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}
