package timeutil

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// TimePlaceholder is rendered wherever a time string failed to parse.
const TimePlaceholder = "--:--"

// DayKey identifies one of the seven weekday buckets of a board.
type DayKey string

const (
	DayMonday    DayKey = "monday"
	DayTuesday   DayKey = "tuesday"
	DayWednesday DayKey = "wednesday"
	DayThursday  DayKey = "thursday"
	DayFriday    DayKey = "friday"
	DaySaturday  DayKey = "saturday"
	DaySunday    DayKey = "sunday"
)

// WeekDays lists the day keys in board order, Monday first.
var WeekDays = []DayKey{
	DayMonday, DayTuesday, DayWednesday, DayThursday,
	DayFriday, DaySaturday, DaySunday,
}

// Index returns the zero-based board column of the day, Monday = 0.
// Unknown keys return -1.
func (d DayKey) Index() int {
	for i, key := range WeekDays {
		if key == d {
			return i
		}
	}
	return -1
}

// WeekRange is a Monday-through-Sunday span of a single week.
type WeekRange struct {
	Start time.Time // Monday 00:00:00
	End   time.Time // Sunday 23:59:59
}

// WeekRangeOf returns the Monday-start week containing ref. A Sunday
// reference counts as the last day of the current week, not the first day
// of the next one.
func WeekRangeOf(ref time.Time) WeekRange {
	day := time.Date(ref.Year(), ref.Month(), ref.Day(), 0, 0, 0, 0, ref.Location())

	daysSinceMonday := int(day.Weekday()) - 1
	if day.Weekday() == time.Sunday {
		daysSinceMonday = 6
	}

	start := day.AddDate(0, 0, -daysSinceMonday)
	end := start.AddDate(0, 0, 6).Add(23*time.Hour + 59*time.Minute + 59*time.Second)

	return WeekRange{Start: start, End: end}
}

// Contains reports whether t falls inside the week.
func (w WeekRange) Contains(t time.Time) bool {
	return !t.Before(w.Start) && !t.After(w.End)
}

// ParseDate parses a YYYY-MM-DD calendar date in local time. Malformed
// input (wrong field count, non-numeric parts, impossible dates) yields
// ok=false instead of an error so render paths can fall back to a
// placeholder.
func ParseDate(s string) (time.Time, bool) {
	parts := strings.Split(s, "-")
	if len(parts) != 3 {
		return time.Time{}, false
	}

	year, err1 := strconv.Atoi(parts[0])
	month, err2 := strconv.Atoi(parts[1])
	day, err3 := strconv.Atoi(parts[2])
	if err1 != nil || err2 != nil || err3 != nil {
		return time.Time{}, false
	}
	if month < 1 || month > 12 || day < 1 || day > 31 {
		return time.Time{}, false
	}

	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.Local)
	// time.Date normalizes overflow (Feb 30 becomes Mar 2); reject those.
	if t.Day() != day || int(t.Month()) != month {
		return time.Time{}, false
	}

	return t, true
}

// DayKeyOf maps a YYYY-MM-DD date to its weekday bucket using the local
// calendar. The date string carries no zone, so no UTC shift is applied.
func DayKeyOf(dateStr string) (DayKey, bool) {
	t, ok := ParseDate(dateStr)
	if !ok {
		return "", false
	}

	switch t.Weekday() {
	case time.Monday:
		return DayMonday, true
	case time.Tuesday:
		return DayTuesday, true
	case time.Wednesday:
		return DayWednesday, true
	case time.Thursday:
		return DayThursday, true
	case time.Friday:
		return DayFriday, true
	case time.Saturday:
		return DaySaturday, true
	default:
		return DaySunday, true
	}
}

// MinutesSinceMidnight parses a 24-hour HH:MM string into minutes.
// "24:00" is accepted as minute 1440, the exclusive end of a day, so
// round-trips with TimeStringOf. Malformed input yields ok=false.
func MinutesSinceMidnight(s string) (int, bool) {
	parts := strings.Split(s, ":")
	if len(parts) != 2 {
		return 0, false
	}

	hour, err1 := strconv.Atoi(parts[0])
	minute, err2 := strconv.Atoi(parts[1])
	if err1 != nil || err2 != nil {
		return 0, false
	}
	if hour == 24 && minute == 0 {
		return 24 * 60, true
	}
	if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return 0, false
	}

	return hour*60 + minute, true
}

// TimeStringOf is the inverse of MinutesSinceMidnight. Minute 1440 renders
// as "24:00" so an exclusive end at midnight stays printable; other
// out-of-day values render as the placeholder.
func TimeStringOf(minutes int) string {
	if minutes == 24*60 {
		return "24:00"
	}
	if minutes < 0 || minutes > 24*60 {
		return TimePlaceholder
	}
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}

// CombineLocal merges a YYYY-MM-DD date and an HH:MM time into one local
// wall-clock instant. Either part failing to parse yields ok=false.
func CombineLocal(dateStr, timeStr string) (time.Time, bool) {
	day, ok := ParseDate(dateStr)
	if !ok {
		return time.Time{}, false
	}
	minutes, ok := MinutesSinceMidnight(timeStr)
	if !ok {
		return time.Time{}, false
	}
	return day.Add(time.Duration(minutes) * time.Minute), true
}

// FormatDate renders a date in the API's YYYY-MM-DD form.
func FormatDate(t time.Time) string {
	return t.Format("2006-01-02")
}

// FormatTimeRange renders "HH:MM-HH:MM" for labels on the board.
func FormatTimeRange(start, end string) string {
	if _, ok := MinutesSinceMidnight(start); !ok {
		start = TimePlaceholder
	}
	if _, ok := MinutesSinceMidnight(end); !ok {
		end = TimePlaceholder
	}
	return fmt.Sprintf("%s-%s", start, end)
}
