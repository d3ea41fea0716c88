// utils/dates.go
package utils

import "time"

func BeginningOfDay(t time.Time) time.Time {
	year, month, day := t.Date()
	return time.Date(year, month, day, 0, 0, 0, 0, t.Location())
}

func DaysBetween(start, end time.Time) int {
	start = BeginningOfDay(start)
	end = BeginningOfDay(end)
	return int(end.Sub(start).Hours() / 24)
}

// DateRangesOverlap reports whether [aStart,aEnd] and [bStart,bEnd] share a day.
func DateRangesOverlap(aStart, aEnd, bStart, bEnd time.Time) bool {
	return !BeginningOfDay(aStart).After(BeginningOfDay(bEnd)) &&
		!BeginningOfDay(bStart).After(BeginningOfDay(aEnd))
}
