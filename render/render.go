// Package render formats an instant in the representations a user is likely
// to paste somewhere else: Unix seconds and milliseconds, ISO 8601, RFC 2822,
// SQL, a relative phrase and a long human-readable form.
package render

import (
	"fmt"
	"time"

	"github.com/ngrash/tsconv/calendar"
	"github.com/ngrash/tsconv/internal/civil"
	"github.com/ngrash/tsconv/tzoffset"
)

// Output holds every rendering of one instant.
type Output struct {
	UnixSeconds   int64  `json:"unix_seconds"`
	UnixMillis    int64  `json:"unix_millis"`
	ISOUTC        string `json:"iso_utc"`
	ISOWithOffset string `json:"iso_with_offset"`
	RFC2822       string `json:"rfc2822"`
	SQL           string `json:"sql"`
	Relative      string `json:"relative"`
	Human         string `json:"human"`
}

// Render formats the instant ms for zone. now, in milliseconds since the
// epoch, is only used for Relative and is read once.
func Render(cal calendar.Service, ms int64, zone string, now int64) (Output, error) {
	utc, err := cal.FieldsIn(ms, calendar.UTC)
	if err != nil {
		return Output{}, fmt.Errorf("render: %w", err)
	}
	local, err := cal.FieldsIn(ms, zone)
	if err != nil {
		return Output{}, fmt.Errorf("render in %s: %w", zone, err)
	}
	frac := int(civil.FloorMod(ms, 1000))
	offset := tzoffset.FromFields(local, ms)

	return Output{
		UnixSeconds:   civil.FloorDiv(ms, 1000),
		UnixMillis:    ms,
		ISOUTC:        iso(utc, frac) + "Z",
		ISOWithOffset: iso(local, frac) + tzoffset.Fixed(offset),
		RFC2822:       rfc2822(local, offset),
		SQL:           sql(local, frac),
		Relative:      Relative(ms, now),
		Human:         human(local),
	}, nil
}

// year renders four digits, or a sign and six digits outside 0..9999 as
// ISO 8601 expanded years do.
func year(y int) string {
	switch {
	case y < 0:
		return fmt.Sprintf("-%06d", -y)
	case y > 9999:
		return fmt.Sprintf("+%06d", y)
	}
	return fmt.Sprintf("%04d", y)
}

func iso(f calendar.Fields, frac int) string {
	return fmt.Sprintf("%s-%02d-%02dT%02d:%02d:%02d.%03d",
		year(f.Year), f.Month, f.Day, f.Hour, f.Minute, f.Second, frac)
}

func sql(f calendar.Fields, frac int) string {
	s := fmt.Sprintf("%s-%02d-%02d %02d:%02d:%02d",
		year(f.Year), f.Month, f.Day, f.Hour, f.Minute, f.Second)
	if frac != 0 {
		s += fmt.Sprintf(".%03d", frac)
	}
	return s
}

// rfc2822 takes the weekday from the civil date in the zone, not from the
// UTC instant.
func rfc2822(f calendar.Fields, offset int) string {
	wd := civil.Weekday(f.Year, f.Month, f.Day).String()[:3]
	mon := time.Month(f.Month).String()[:3]
	return fmt.Sprintf("%s, %02d %s %s %02d:%02d:%02d %s",
		wd, f.Day, mon, year(f.Year), f.Hour, f.Minute, f.Second, tzoffset.Compact(offset))
}

// human renders e.g. "Monday, January 15, 2024 at 12:30:00 PM".
func human(f calendar.Fields) string {
	ampm := "AM"
	if f.Hour >= 12 {
		ampm = "PM"
	}
	h := f.Hour % 12
	if h == 0 {
		h = 12
	}
	return fmt.Sprintf("%s, %s %d, %d at %d:%02d:%02d %s",
		civil.Weekday(f.Year, f.Month, f.Day), time.Month(f.Month), f.Day, f.Year,
		h, f.Minute, f.Second, ampm)
}
