// Package civil converts between civil calendar fields and instants
// expressed as milliseconds since the Unix epoch. All conversions are in
// UTC; callers apply zone offsets themselves.
package civil

import "time"

// UnixMilli converts a civil date and time, interpreted as UTC, to
// milliseconds since 1970-01-01T00:00:00Z. It assumes the proleptic
// Gregorian calendar and ignores leap seconds.
//
// Fields are not range-checked against the calendar. A day past the end of
// its month rolls forward into the next one (April 31 is May 1), and a month
// outside 1..12 is carried into the year.
func UnixMilli(year, month, day, hour, minute, second, millis int) int64 {
	year, month = normMonth(year, month)

	d := daysSinceEpoch(year) + daysBeforeMonth[month-1]
	if month > 2 && IsLeapYear(year) {
		d++
	}
	days := int64(d) + int64(day) - 1 - absoluteToUnixDays
	secs := days*secondsPerDay + int64(hour)*secondsPerHour + int64(minute)*secondsPerMinute + int64(second)
	return secs*1000 + int64(millis)
}

// Date is a civil date without a time of day.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

// Weekday returns the day of the week of a civil date.
// The date is normalised the same way as in UnixMilli.
func Weekday(year, month, day int) time.Weekday {
	days := FloorDiv(UnixMilli(year, month, day, 0, 0, 0, 0), millisPerDay)
	// 1970-01-01 was a Thursday.
	return time.Weekday(FloorMod(days+int64(time.Thursday), 7))
}

// DateOf returns the UTC civil date an instant falls on.
func DateOf(ms int64) Date {
	y, m, d := time.UnixMilli(ms).UTC().Date()
	return Date{Year: y, Month: m, Day: d}
}

// IsLeapYear reports whether year has 366 days.
func IsLeapYear(year int) bool {
	return year%4 == 0 && (year%100 != 0 || year%400 == 0)
}

// FloorDiv divides a by b rounding towards negative infinity. b must be positive.
func FloorDiv(a, b int64) int64 {
	q := a / b
	if a%b < 0 {
		q--
	}
	return q
}

// FloorMod returns the remainder of FloorDiv; it is always in [0, b).
func FloorMod(a, b int64) int64 {
	m := a % b
	if m < 0 {
		m += b
	}
	return m
}

func normMonth(year, month int) (int, int) {
	m := int64(month - 1)
	year += int(FloorDiv(m, 12))
	return year, int(FloorMod(m, 12)) + 1
}

var daysBeforeMonth = [12]uint64{0, 31, 59, 90, 120, 151, 181, 212, 243, 273, 304, 334}

// The constants mirror time.go in the Go standard library.
const (
	secondsPerMinute = 60
	secondsPerHour   = 60 * secondsPerMinute
	secondsPerDay    = 24 * secondsPerHour
	millisPerDay     = 1000 * secondsPerDay
	daysPer400Years  = 365*400 + 97
	daysPer100Years  = 365*100 + 24
	daysPer4Years    = 365*4 + 1

	absoluteZeroYear = -292277022399

	// absoluteToUnixDays is daysSinceEpoch(1970).
	absoluteToUnixDays = 106751991073094
)

// daysSinceEpoch returns the number of days from the absolute epoch to the
// start of year. This is (year - absoluteZeroYear) * 365 plus leap days.
func daysSinceEpoch(year int) uint64 {
	y := uint64(int64(year) - absoluteZeroYear)

	n := y / 400
	y -= 400 * n
	d := daysPer400Years * n

	n = y / 100
	y -= 100 * n
	d += daysPer100Years * n

	n = y / 4
	y -= 4 * n
	d += daysPer4Years * n

	d += 365 * y

	return d
}
