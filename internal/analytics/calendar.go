package analytics

import (
	"fmt"
	"math"
	"time"
)

const (
	minutesPerHour = 60
	minutesPerDay  = 1440
	day            = 24 * time.Hour
)

// DaysBetween returns the absolute distance between a and b in whole days,
// rounded up.
func DaysBetween(a, b time.Time) int {
	diff := b.Sub(a)
	if diff < 0 {
		diff = -diff
	}
	return int(math.Ceil(float64(diff) / float64(day)))
}

// WeekNumber buckets a date by week of its calendar year. It counts
// fractional days since January 1 (in the date's own location) offset by
// January 1's weekday, which differs from ISO-8601 week numbering.
func WeekNumber(t time.Time) int {
	firstDay := time.Date(t.Year(), time.January, 1, 0, 0, 0, 0, t.Location())
	pastDays := float64(t.Sub(firstDay)) / float64(day)
	return int(math.Ceil((pastDays + float64(firstDay.Weekday()) + 1) / 7))
}

// WeekKey is the volume-by-week label for t.
func WeekKey(t time.Time) string {
	return fmt.Sprintf("Week %d", WeekNumber(t))
}

func round(value float64, places int) float64 {
	scale := math.Pow(10, float64(places))
	return math.Round(value*scale) / scale
}

func percent(part, total int, places int) float64 {
	if total == 0 {
		return 0
	}
	return round(float64(part)/float64(total)*100, places)
}
