// Package tzoffset derives the UTC offset of a zone at an instant from the
// civil fields a calendar.Service reports, and formats offsets.
//
// The offset is never looked up in zone rules. Reading the zone's civil
// fields back as if they were UTC and subtracting the true instant yields
// the offset in effect, including daylight saving time and offsets that are
// not whole hours (+05:30, +12:45).
package tzoffset

import (
	"fmt"

	"github.com/ngrash/tsconv/calendar"
	"github.com/ngrash/tsconv/internal/civil"
)

const millisPerMinute = 60 * 1000

// Minutes returns the offset of zone from UTC at instant ms, in minutes
// east of UTC.
func Minutes(cal calendar.Service, ms int64, zone string) (int, error) {
	f, err := cal.FieldsIn(ms, zone)
	if err != nil {
		return 0, fmt.Errorf("offset of %s: %w", zone, err)
	}
	return FromFields(f, ms), nil
}

// FromFields returns the offset implied by f being the civil representation
// of ms. Fields carry whole seconds, so ms is truncated to the second first.
func FromFields(f calendar.Fields, ms int64) int {
	local := civil.UnixMilli(f.Year, f.Month, f.Day, f.Hour, f.Minute, f.Second, 0)
	utc := civil.FloorDiv(ms, 1000) * 1000
	diff := local - utc
	// Round half away from zero.
	if diff < 0 {
		return -int((-diff + millisPerMinute/2) / millisPerMinute)
	}
	return int((diff + millisPerMinute/2) / millisPerMinute)
}

// Short formats an offset as +H or +H:MM, e.g. "+0", "-8", "+5:30".
func Short(minutes int) string {
	sign, h, m := split(minutes)
	if m == 0 {
		return fmt.Sprintf("%c%d", sign, h)
	}
	return fmt.Sprintf("%c%d:%02d", sign, h, m)
}

// Fixed formats an offset as ±HH:MM, e.g. "+00:00", "+05:30".
func Fixed(minutes int) string {
	sign, h, m := split(minutes)
	return fmt.Sprintf("%c%02d:%02d", sign, h, m)
}

// Compact formats an offset as ±HHMM, the RFC 2822 form.
func Compact(minutes int) string {
	sign, h, m := split(minutes)
	return fmt.Sprintf("%c%02d%02d", sign, h, m)
}

// split never yields a negative sign for zero.
func split(minutes int) (sign byte, h, m int) {
	sign = '+'
	if minutes < 0 {
		sign = '-'
		minutes = -minutes
	}
	return sign, minutes / 60, minutes % 60
}
