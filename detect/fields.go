package detect

import (
	"strconv"
	"strings"

	"github.com/ngrash/tsconv/internal/civil"
)

// MaxInstant bounds the representable instants: 100,000,000 days either
// side of the epoch, roughly years -271821 to 275760.
const MaxInstant = 8_640_000_000_000_000

// stamp is a civil date and time together with the UTC offset, in minutes,
// its fields are expressed in.
type stamp struct {
	year, month, day     int
	hour, minute, second int
	millis               int
	offset               int
}

// valid reports whether every field is in range. Days are checked against
// 1..31 only; a day past the end of its month rolls over in instant.
func (s stamp) valid() bool {
	return s.month >= 1 && s.month <= 12 &&
		s.day >= 1 && s.day <= 31 &&
		s.hour >= 0 && s.hour <= 23 &&
		s.minute >= 0 && s.minute <= 59 &&
		s.second >= 0 && s.second <= 59
}

// instant validates s and converts it to milliseconds since the epoch.
func (s stamp) instant() (int64, bool) {
	if !s.valid() {
		return 0, false
	}
	ms := civil.UnixMilli(s.year, s.month, s.day, s.hour, s.minute, s.second, s.millis)
	ms -= int64(s.offset) * 60 * 1000
	return representable(ms)
}

func representable(ms int64) (int64, bool) {
	if ms < -MaxInstant || ms > MaxInstant {
		return 0, false
	}
	return ms, true
}

// num converts a run of ASCII digits matched by a pattern. Empty groups are 0.
func num(s string) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return n
}

// millis converts a fractional-second digit run to milliseconds,
// truncating past the third digit: "5" is 500, "123456" is 123.
func millis(frac string) int {
	if len(frac) > 3 {
		frac = frac[:3]
	}
	for len(frac) < 3 {
		frac += "0"
	}
	return num(frac)
}

// meridiem applies an AM/PM suffix to a 12-hour clock hour.
// Without a suffix the hour is taken as-is.
func meridiem(hour int, suffix string) (int, bool) {
	switch strings.ToLower(suffix) {
	case "":
		return hour, true
	case "am":
		if hour < 1 || hour > 12 {
			return 0, false
		}
		return hour % 12, true
	case "pm":
		if hour < 1 || hour > 12 {
			return 0, false
		}
		return hour%12 + 12, true
	}
	return 0, false
}

// numericOffset parses "+hh:mm", "+hhmm", "Z" and friends into minutes east of UTC.
func numericOffset(s string) (int, bool) {
	if s == "" || s == "Z" || s == "z" {
		return 0, true
	}
	sign := 1
	switch s[0] {
	case '+':
	case '-':
		sign = -1
	default:
		return 0, false
	}
	digits := strings.ReplaceAll(s[1:], ":", "")
	if len(digits) != 4 {
		return 0, false
	}
	h, m := num(digits[:2]), num(digits[2:])
	if h > 23 || m > 59 {
		return 0, false
	}
	return sign * (h*60 + m), true
}

// months maps the first three letters of an English month name to its number.
var months = map[string]int{
	"jan": 1, "feb": 2, "mar": 3, "apr": 4, "may": 5, "jun": 6,
	"jul": 7, "aug": 8, "sep": 9, "oct": 10, "nov": 11, "dec": 12,
}

func monthNumber(name string) (int, bool) {
	if len(name) < 3 {
		return 0, false
	}
	m, ok := months[strings.ToLower(name[:3])]
	return m, ok
}

// monthPattern matches English month names and their three-letter abbreviations.
const monthPattern = `jan(?:uary)?|feb(?:ruary)?|mar(?:ch)?|apr(?:il)?|may|june?|july?|aug(?:ust)?|sep(?:t(?:ember)?)?|oct(?:ober)?|nov(?:ember)?|dec(?:ember)?`

// rfc2822Zones are the zone names RFC 2822 section 4.3 defines, in minutes east of UTC.
var rfc2822Zones = map[string]int{
	"UT": 0, "GMT": 0, "Z": 0,
	"EST": -5 * 60, "EDT": -4 * 60,
	"CST": -6 * 60, "CDT": -5 * 60,
	"MST": -7 * 60, "MDT": -6 * 60,
	"PST": -8 * 60, "PDT": -7 * 60,
}
