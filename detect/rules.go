package detect

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/ngrash/tsconv/internal/civil"
)

const millisPerDay = 24 * 60 * 60 * 1000

// defaultRules is the priority order. Earlier rules win for inputs that
// more than one rule accepts.
var defaultRules = []Rule{
	relativeRule{},
	unixMillisRule{},
	unixSecondsRule{},
	isoRule{},
	compactISORule{},
	rfc2822Rule{},
	sqlRule{},
	dateRule{},
	compactDateRule{},
	slashDateRule{},
	slashDateTimeRule{},
	ymdSlashRule{},
	dayFirstRule{},
	namedMonthRule{},
	timeOnlyRule{},
}

// modeless is embedded by rules whose reading does not depend on the mode.
type modeless struct{}

func (modeless) ModeSensitive() bool { return false }

// clock is the optional " hh:mm[:ss]" suffix shared by several date shapes.
const clock = `(?:\s+(\d{1,2}):(\d{2})(?::(\d{2}))?)?`

var (
	relativeRe    = regexp.MustCompile(`(?i)^(now|today|yesterday|tomorrow)$`)
	unixMillisRe  = regexp.MustCompile(`^[+-]?\d{13,}$`)
	unixSecondsRe = regexp.MustCompile(`^[+-]?\d{1,12}$`)
	isoRe         = regexp.MustCompile(`^(\d{4})-(\d{2})-(\d{2})[Tt](\d{2}):(\d{2})(?::(\d{2})(?:\.(\d+))?)?([Zz]|[+-]\d{2}:?\d{2})?$`)
	compactISORe  = regexp.MustCompile(`^(\d{4})(\d{2})(\d{2})[Tt](\d{2})(\d{2})(\d{2})([Zz])?$`)
	rfc2822Re     = regexp.MustCompile(`(?i)^(?:(?:mon|tue|wed|thu|fri|sat|sun),\s*)?(\d{1,2})\s+(jan|feb|mar|apr|may|jun|jul|aug|sep|oct|nov|dec)\s+(\d{4})\s+(\d{2}):(\d{2})(?::(\d{2}))?(?:\s+([+-]\d{4}|[a-z]{1,5}))?$`)
	sqlRe         = regexp.MustCompile(`^(\d{4})-(\d{2})-(\d{2})\s+(\d{2}):(\d{2})(?::(\d{2})(?:[.,](\d+))?)?$`)
	dateRe        = regexp.MustCompile(`^(\d{4})-(\d{2})-(\d{2})$`)
	compactDateRe = regexp.MustCompile(`^(\d{4})(\d{2})(\d{2})$`)
	slashDateRe   = regexp.MustCompile(`^(\d{1,2})/(\d{1,2})/(\d{4})$`)
	slashTimeRe   = regexp.MustCompile(`^(\d{1,2})/(\d{1,2})/(\d{4})\s+(\d{1,2}):(\d{2})(?::(\d{2}))?$`)
	ymdSlashRe    = regexp.MustCompile(`^(\d{4})/(\d{1,2})/(\d{1,2})` + clock + `$`)
	dayFirstRe    = regexp.MustCompile(`^(\d{1,2})([.-])(\d{1,2})([.-])(\d{4})` + clock + `$`)
	dayMonthRe    = regexp.MustCompile(`(?i)^(\d{1,2})\s+(` + monthPattern + `)\.?\s+(\d{4})$`)
	monthDayRe    = regexp.MustCompile(`(?i)^(` + monthPattern + `)\.?\s+(\d{1,2})(?:st|nd|rd|th)?,?\s+(\d{4})(?:\s+(\d{1,2}):(\d{2})(?::(\d{2}))?(?:\s*([ap]m))?)?$`)
	timeOnlyRe    = regexp.MustCompile(`(?i)^(\d{1,2}):(\d{2})(?::(\d{2}))?(?:\s*([ap]m))?$`)
)

// relativeRule resolves now, today, yesterday and tomorrow against the
// context's clock. today is the same instant as now.
type relativeRule struct{ modeless }

func (relativeRule) Label(Context) string           { return "Relative keyword" }
func (relativeRule) Match(s string, _ Context) bool { return relativeRe.MatchString(s) }
func (relativeRule) Parse(s string, ctx Context) (int64, bool) {
	now := ctx.nowMillis()
	switch strings.ToLower(s) {
	case "yesterday":
		now -= millisPerDay
	case "tomorrow":
		now += millisPerDay
	}
	return representable(now)
}

// unixMillisRule reads 13 or more digits as milliseconds since the epoch.
type unixMillisRule struct{ modeless }

func (unixMillisRule) Label(Context) string           { return "Unix timestamp (ms)" }
func (unixMillisRule) Match(s string, _ Context) bool { return unixMillisRe.MatchString(s) }
func (unixMillisRule) Parse(s string, _ Context) (int64, bool) {
	ms, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, false
	}
	return representable(ms)
}

// unixSecondsRule reads up to 12 digits as seconds since the epoch.
type unixSecondsRule struct{ modeless }

func (unixSecondsRule) Label(Context) string           { return "Unix timestamp (s)" }
func (unixSecondsRule) Match(s string, _ Context) bool { return unixSecondsRe.MatchString(s) }
func (unixSecondsRule) Parse(s string, _ Context) (int64, bool) {
	sec, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, false
	}
	return representable(sec * 1000)
}

// isoRule reads extended ISO 8601. Without a zone designator the time is UTC.
type isoRule struct{ modeless }

func (isoRule) Label(Context) string           { return "ISO 8601" }
func (isoRule) Match(s string, _ Context) bool { return isoRe.MatchString(s) }
func (isoRule) Parse(s string, _ Context) (int64, bool) {
	m := isoRe.FindStringSubmatch(s)
	off, ok := numericOffset(m[8])
	if !ok {
		return 0, false
	}
	return stamp{
		year: num(m[1]), month: num(m[2]), day: num(m[3]),
		hour: num(m[4]), minute: num(m[5]), second: num(m[6]),
		millis: millis(m[7]),
		offset: off,
	}.instant()
}

// compactISORule reads YYYYMMDDThhmmss as UTC.
type compactISORule struct{ modeless }

func (compactISORule) Label(Context) string           { return "ISO 8601 (compact)" }
func (compactISORule) Match(s string, _ Context) bool { return compactISORe.MatchString(s) }
func (compactISORule) Parse(s string, _ Context) (int64, bool) {
	m := compactISORe.FindStringSubmatch(s)
	return stamp{
		year: num(m[1]), month: num(m[2]), day: num(m[3]),
		hour: num(m[4]), minute: num(m[5]), second: num(m[6]),
	}.instant()
}

// rfc2822Rule reads the email date format. The weekday, if present, is not
// checked against the date. A missing zone means UTC.
type rfc2822Rule struct{ modeless }

func (rfc2822Rule) Label(Context) string           { return "RFC 2822" }
func (rfc2822Rule) Match(s string, _ Context) bool { return rfc2822Re.MatchString(s) }
func (rfc2822Rule) Parse(s string, _ Context) (int64, bool) {
	m := rfc2822Re.FindStringSubmatch(s)
	month, ok := monthNumber(m[2])
	if !ok {
		return 0, false
	}
	var off int
	switch zone := m[7]; {
	case zone == "":
	case zone[0] == '+' || zone[0] == '-':
		if off, ok = numericOffset(zone); !ok {
			return 0, false
		}
	default:
		if off, ok = rfc2822Zones[strings.ToUpper(zone)]; !ok {
			return 0, false
		}
	}
	return stamp{
		year: num(m[3]), month: month, day: num(m[1]),
		hour: num(m[4]), minute: num(m[5]), second: num(m[6]),
		offset: off,
	}.instant()
}

// sqlRule reads "YYYY-MM-DD hh:mm[:ss[.fff]]" as UTC. A comma before the
// fraction, as some logging frameworks write it, reads as a dot.
type sqlRule struct{ modeless }

func (sqlRule) Label(Context) string           { return "SQL datetime" }
func (sqlRule) Match(s string, _ Context) bool { return sqlRe.MatchString(s) }
func (sqlRule) Parse(s string, _ Context) (int64, bool) {
	m := sqlRe.FindStringSubmatch(s)
	return stamp{
		year: num(m[1]), month: num(m[2]), day: num(m[3]),
		hour: num(m[4]), minute: num(m[5]), second: num(m[6]),
		millis: millis(m[7]),
	}.instant()
}

// dateRule reads YYYY-MM-DD as midnight UTC.
type dateRule struct{ modeless }

func (dateRule) Label(Context) string           { return "Date (YYYY-MM-DD)" }
func (dateRule) Match(s string, _ Context) bool { return dateRe.MatchString(s) }
func (dateRule) Parse(s string, _ Context) (int64, bool) {
	m := dateRe.FindStringSubmatch(s)
	return stamp{year: num(m[1]), month: num(m[2]), day: num(m[3])}.instant()
}

// compactDateRule reads YYYYMMDD as midnight UTC. In the default order
// unixSecondsRule claims unsigned eight-digit input first.
type compactDateRule struct{ modeless }

func (compactDateRule) Label(Context) string           { return "Date (YYYYMMDD)" }
func (compactDateRule) Match(s string, _ Context) bool { return compactDateRe.MatchString(s) }
func (compactDateRule) Parse(s string, _ Context) (int64, bool) {
	m := compactDateRe.FindStringSubmatch(s)
	return stamp{year: num(m[1]), month: num(m[2]), day: num(m[3])}.instant()
}

// slashFields orders the first two groups of a slash date by mode.
func slashFields(a, b string, mode Mode) (month, day int) {
	if mode == EU {
		return num(b), num(a)
	}
	return num(a), num(b)
}

// slashDateRule reads N/N/YYYY as month/day (US) or day/month (EU).
type slashDateRule struct{}

func (slashDateRule) Label(ctx Context) string {
	if ctx.Mode == EU {
		return "EU date (DD/MM/YYYY)"
	}
	return "US date (MM/DD/YYYY)"
}
func (slashDateRule) ModeSensitive() bool            { return true }
func (slashDateRule) Match(s string, _ Context) bool { return slashDateRe.MatchString(s) }
func (slashDateRule) Parse(s string, ctx Context) (int64, bool) {
	m := slashDateRe.FindStringSubmatch(s)
	month, day := slashFields(m[1], m[2], ctx.Mode)
	return stamp{year: num(m[3]), month: month, day: day}.instant()
}

// slashDateTimeRule is slashDateRule followed by hh:mm[:ss].
type slashDateTimeRule struct{}

func (slashDateTimeRule) Label(ctx Context) string {
	if ctx.Mode == EU {
		return "EU datetime"
	}
	return "US datetime"
}
func (slashDateTimeRule) ModeSensitive() bool            { return true }
func (slashDateTimeRule) Match(s string, _ Context) bool { return slashTimeRe.MatchString(s) }
func (slashDateTimeRule) Parse(s string, ctx Context) (int64, bool) {
	m := slashTimeRe.FindStringSubmatch(s)
	month, day := slashFields(m[1], m[2], ctx.Mode)
	return stamp{
		year: num(m[3]), month: month, day: day,
		hour: num(m[4]), minute: num(m[5]), second: num(m[6]),
	}.instant()
}

// ymdSlashRule reads YYYY/MM/DD[ hh:mm[:ss]] as UTC.
type ymdSlashRule struct{ modeless }

func (ymdSlashRule) Label(Context) string           { return "Date (YYYY/MM/DD)" }
func (ymdSlashRule) Match(s string, _ Context) bool { return ymdSlashRe.MatchString(s) }
func (ymdSlashRule) Parse(s string, _ Context) (int64, bool) {
	m := ymdSlashRe.FindStringSubmatch(s)
	return stamp{
		year: num(m[1]), month: num(m[2]), day: num(m[3]),
		hour: num(m[4]), minute: num(m[5]), second: num(m[6]),
	}.instant()
}

// dayFirstRule reads DD.MM.YYYY and DD-MM-YYYY, each with an optional
// time, as UTC. Both separators must be the same.
type dayFirstRule struct{ modeless }

func (dayFirstRule) Label(Context) string { return "European date (DD.MM.YYYY)" }
func (dayFirstRule) Match(s string, _ Context) bool {
	m := dayFirstRe.FindStringSubmatch(s)
	return m != nil && m[2] == m[4]
}
func (dayFirstRule) Parse(s string, _ Context) (int64, bool) {
	m := dayFirstRe.FindStringSubmatch(s)
	return stamp{
		year: num(m[5]), month: num(m[3]), day: num(m[1]),
		hour: num(m[6]), minute: num(m[7]), second: num(m[8]),
	}.instant()
}

// namedMonthRule reads "15 Jan 2024" and "Jan 15, 2024[ 3:04[:05][ PM]]" as UTC.
type namedMonthRule struct{ modeless }

func (namedMonthRule) Label(Context) string { return "Named month date" }
func (namedMonthRule) Match(s string, _ Context) bool {
	return dayMonthRe.MatchString(s) || monthDayRe.MatchString(s)
}
func (namedMonthRule) Parse(s string, _ Context) (int64, bool) {
	if m := dayMonthRe.FindStringSubmatch(s); m != nil {
		month, ok := monthNumber(m[2])
		if !ok {
			return 0, false
		}
		return stamp{year: num(m[3]), month: month, day: num(m[1])}.instant()
	}
	m := monthDayRe.FindStringSubmatch(s)
	if m == nil {
		return 0, false
	}
	month, ok := monthNumber(m[1])
	if !ok {
		return 0, false
	}
	hour, ok := meridiem(num(m[4]), m[7])
	if !ok {
		return 0, false
	}
	return stamp{
		year: num(m[3]), month: month, day: num(m[2]),
		hour: hour, minute: num(m[5]), second: num(m[6]),
	}.instant()
}

// timeOnlyRule reads hh:mm[:ss][ AM|PM] as that wall time on the current
// UTC calendar day.
type timeOnlyRule struct{ modeless }

func (timeOnlyRule) Label(Context) string           { return "Time only" }
func (timeOnlyRule) Match(s string, _ Context) bool { return timeOnlyRe.MatchString(s) }
func (timeOnlyRule) Parse(s string, ctx Context) (int64, bool) {
	m := timeOnlyRe.FindStringSubmatch(s)
	hour, ok := meridiem(num(m[1]), m[4])
	if !ok {
		return 0, false
	}
	today := civil.DateOf(ctx.nowMillis())
	return stamp{
		year: today.Year, month: int(today.Month), day: today.Day,
		hour: hour, minute: num(m[2]), second: num(m[3]),
	}.instant()
}
