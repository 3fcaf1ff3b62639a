package render

import "fmt"

const (
	daysPerMonth = 30.44
	daysPerYear  = 365.25
)

// Relative describes ms relative to now, both in milliseconds since the
// epoch: "just now", "5 minutes ago", "in 3 days". Every unit is the floor
// of the next smaller one.
func Relative(ms, now int64) string {
	diff := now - ms
	past := diff > 0
	if diff < 0 {
		diff = -diff
	}

	seconds := diff / 1000
	if seconds < 5 {
		return "just now"
	}
	phrase := magnitude(seconds)
	if past {
		return phrase + " ago"
	}
	return "in " + phrase
}

func magnitude(seconds int64) string {
	if seconds < 60 {
		return plural(seconds, "second")
	}
	minutes := seconds / 60
	if minutes < 60 {
		return plural(minutes, "minute")
	}
	hours := minutes / 60
	if hours < 24 {
		return plural(hours, "hour")
	}
	days := hours / 24
	if days < 30 {
		return plural(days, "day")
	}
	months := max(int64(float64(days)/daysPerMonth), 1)
	if months < 12 {
		return plural(months, "month")
	}
	return plural(int64(float64(days)/daysPerYear), "year")
}

func plural(n int64, unit string) string {
	if n == 1 {
		return "1 " + unit
	}
	return fmt.Sprintf("%d %ss", n, unit)
}
