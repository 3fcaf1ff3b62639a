package detect

import (
	"errors"
	"strconv"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

// 2024-01-15T10:30:00Z
const fixedNow = 1705314600000

func fixedContext(mode Mode) Context {
	return Context{Mode: mode, Now: func() time.Time { return time.UnixMilli(fixedNow) }}
}

func TestDetect(t *testing.T) {
	cases := []struct {
		in   string
		want Result
	}{
		{"now", Result{fixedNow, "Relative keyword", false}},
		{"Today", Result{fixedNow, "Relative keyword", false}},
		{"yesterday", Result{fixedNow - 86_400_000, "Relative keyword", false}},
		{"TOMORROW", Result{fixedNow + 86_400_000, "Relative keyword", false}},

		{"1705314600000", Result{1705314600000, "Unix timestamp (ms)", false}},
		{"1705314600", Result{1705314600000, "Unix timestamp (s)", false}},
		{"0", Result{0, "Unix timestamp (s)", false}},
		{"-1", Result{-1000, "Unix timestamp (s)", false}},
		{"+86400", Result{86_400_000, "Unix timestamp (s)", false}},
		{"  1705314600  ", Result{1705314600000, "Unix timestamp (s)", false}},

		{"2024-01-15T10:30:00Z", Result{1705314600000, "ISO 8601", false}},
		{"2024-01-15T10:30:00.123Z", Result{1705314600123, "ISO 8601", false}},
		{"2024-01-15T10:30:00.123456", Result{1705314600123, "ISO 8601", false}},
		{"2024-01-15T10:30:00.5", Result{1705314600500, "ISO 8601", false}},
		{"2024-01-15t10:30", Result{1705314600000, "ISO 8601", false}},
		{"2024-01-15T10:30:00+05:30", Result{1705294800000, "ISO 8601", false}},
		{"2024-01-15T10:30:00-0500", Result{1705332600000, "ISO 8601", false}},

		{"20240115T103000Z", Result{1705314600000, "ISO 8601 (compact)", false}},
		{"20240115T103000", Result{1705314600000, "ISO 8601 (compact)", false}},

		{"Mon, 15 Jan 2024 10:30:00 +0000", Result{1705314600000, "RFC 2822", false}},
		{"15 Jan 2024 10:30:00 EST", Result{1705332600000, "RFC 2822", false}},
		{"15 jan 2024 10:30 gmt", Result{1705314600000, "RFC 2822", false}},
		{"Mon,15 Jan 2024 16:00:00 +0530", Result{1705314600000, "RFC 2822", false}},

		{"2024-01-15 10:30:00", Result{1705314600000, "SQL datetime", false}},
		{"2024-01-15 10:30", Result{1705314600000, "SQL datetime", false}},
		{"2024-01-15 10:30:00.123", Result{1705314600123, "SQL datetime", false}},
		{"2024-01-15 10:30:00,123", Result{1705314600123, "SQL datetime", false}},

		{"2024-01-15", Result{1705276800000, "Date (YYYY-MM-DD)", false}},

		{"01/02/2024", Result{1704153600000, "US date (MM/DD/YYYY)", true}},
		{"1/2/2024", Result{1704153600000, "US date (MM/DD/YYYY)", true}},
		{"01/02/2024 13:45:30", Result{1704203130000, "US datetime", true}},

		{"2024/01/15", Result{1705276800000, "Date (YYYY/MM/DD)", false}},
		{"2024/1/15 10:30", Result{1705314600000, "Date (YYYY/MM/DD)", false}},

		{"15.01.2024", Result{1705276800000, "European date (DD.MM.YYYY)", false}},
		{"15-01-2024 10:30:45", Result{1705314645000, "European date (DD.MM.YYYY)", false}},

		{"15 Jan 2024", Result{1705276800000, "Named month date", false}},
		{"15 january 2024", Result{1705276800000, "Named month date", false}},
		{"January 15, 2024", Result{1705276800000, "Named month date", false}},
		{"Jan 15th, 2024 3:30 PM", Result{1705332600000, "Named month date", false}},
		{"Sept 1 2024 10:30", Result{1725186600000, "Named month date", false}},

		{"10:30", Result{1705314600000, "Time only", false}},
		{"10:30:45", Result{1705314645000, "Time only", false}},
		{"12:15 am", Result{1705277700000, "Time only", false}},
		{"12:00PM", Result{1705320000000, "Time only", false}},
	}
	ctx := fixedContext(US)
	for _, c := range cases {
		got, err := Detect(c.in, ctx)
		if err != nil {
			t.Errorf("Detect(%q) error: %v", c.in, err)
			continue
		}
		if diff := cmp.Diff(c.want, got); diff != "" {
			t.Errorf("Detect(%q) mismatch (-want +got):\n%s", c.in, diff)
		}
	}
}

func TestDetect_NoMatch(t *testing.T) {
	inputs := []string{
		"",
		"   ",
		"not a date",
		"2024-13-01",
		"2024-00-10",
		"2024-01-32",
		"2024-01-15T24:00:00Z",
		"2024-01-15T10:60:00Z",
		"2024-01-15T10:30:00+24:00",
		"2024-01-15 10:30:60",
		"13/13/2024",
		"00/10/2024",
		"15.13.2024",
		"15.01-2024",
		"15 Jan 2024 10:30:00 CET",
		"Jan 15, 2024 13:00 PM",
		"0:30 am",
		"25:00",
		"9000000000000000",
		"-9000000000000000",
		"99999999999999999999",
	}
	for _, in := range inputs {
		if got, err := Detect(in, fixedContext(US)); !errors.Is(err, ErrNoMatch) {
			t.Errorf("Detect(%q) = %+v, %v; want ErrNoMatch", in, got, err)
		}
	}
}

func TestDetect_DigitBoundary(t *testing.T) {
	for _, s := range []int64{1, 42, 999_999, 1_705_314_600, 99_999_999_999, 999_999_999_999, -999_999_999_999} {
		got, err := Detect(strconv.FormatInt(s, 10), fixedContext(US))
		if err != nil {
			t.Fatalf("Detect(%d) error: %v", s, err)
		}
		if got.Instant != s*1000 {
			t.Errorf("Detect(%d).Instant = %d, want %d", s, got.Instant, s*1000)
		}
	}
	for _, ms := range []int64{1_000_000_000_000, 1_705_314_600_000, -1_000_000_000_000, MaxInstant} {
		got, err := Detect(strconv.FormatInt(ms, 10), fixedContext(US))
		if err != nil {
			t.Fatalf("Detect(%d) error: %v", ms, err)
		}
		if got.Instant != ms {
			t.Errorf("Detect(%d).Instant = %d, want %d", ms, got.Instant, ms)
		}
	}
}

func TestDetect_Mode(t *testing.T) {
	cases := []struct {
		in   string
		mode Mode
		want Result
	}{
		{"01/02/2024", US, Result{1704153600000, "US date (MM/DD/YYYY)", true}},
		{"01/02/2024", EU, Result{1706745600000, "EU date (DD/MM/YYYY)", true}},
		{"01/02/2024 13:45", US, Result{1704203100000, "US datetime", true}},
		{"01/02/2024 13:45", EU, Result{1706795100000, "EU datetime", true}},
		{"13/01/2024", EU, Result{1705104000000, "EU date (DD/MM/YYYY)", true}},
		// Dates that are not slash-delimited read the same in both modes.
		{"15.01.2024", EU, Result{1705276800000, "European date (DD.MM.YYYY)", false}},
		{"2024/01/15", EU, Result{1705276800000, "Date (YYYY/MM/DD)", false}},
	}
	for _, c := range cases {
		got, err := Detect(c.in, fixedContext(c.mode))
		if err != nil {
			t.Errorf("Detect(%q, %v) error: %v", c.in, c.mode, err)
			continue
		}
		if diff := cmp.Diff(c.want, got); diff != "" {
			t.Errorf("Detect(%q, %v) mismatch (-want +got):\n%s", c.in, c.mode, diff)
		}
	}

	if _, err := Detect("13/01/2024", fixedContext(US)); !errors.Is(err, ErrNoMatch) {
		t.Errorf("Detect(13/01/2024, US) error = %v, want ErrNoMatch", err)
	}
}

// Day 31 is accepted for every month and rolls into the next one.
func TestDetect_DayOverflow(t *testing.T) {
	cases := []struct {
		in   string
		mode Mode
		want int64
	}{
		{"04/31/2024", US, 1714521600000}, // 2024-05-01
		{"31/04/2024", EU, 1714521600000},
		{"31.02.2024", US, 1709337600000}, // 2024-03-02
		{"2024/02/31", US, 1709337600000},
	}
	for _, c := range cases {
		got, err := Detect(c.in, fixedContext(c.mode))
		if err != nil {
			t.Errorf("Detect(%q) error: %v", c.in, err)
			continue
		}
		if got.Instant != c.want {
			t.Errorf("Detect(%q).Instant = %d, want %d", c.in, got.Instant, c.want)
		}
	}
}

type stubRule struct {
	label string
	match bool
	ok    bool
}

func (r stubRule) Label(Context) string                { return r.label }
func (r stubRule) Match(string, Context) bool          { return r.match }
func (r stubRule) Parse(string, Context) (int64, bool) { return 1, r.ok }
func (r stubRule) ModeSensitive() bool                 { return false }

func TestDetectWith_NoFallthrough(t *testing.T) {
	rules := []Rule{
		stubRule{label: "skipped", match: false, ok: true},
		stubRule{label: "authoritative", match: true, ok: false},
		stubRule{label: "never consulted", match: true, ok: true},
	}
	if got, err := DetectWith(rules, "x", Context{}); !errors.Is(err, ErrNoMatch) {
		t.Errorf("DetectWith = %+v, %v; want ErrNoMatch", got, err)
	}

	rules[1] = stubRule{label: "authoritative", match: true, ok: true}
	got, err := DetectWith(rules, "x", Context{})
	if err != nil {
		t.Fatal(err)
	}
	if got.Label != "authoritative" {
		t.Errorf("DetectWith label = %q, want %q", got.Label, "authoritative")
	}
}

func TestCompactDate(t *testing.T) {
	// Shadowed by the seconds rule in the default order.
	got, err := Detect("20240115", fixedContext(US))
	if err != nil {
		t.Fatal(err)
	}
	if got.Label != "Unix timestamp (s)" {
		t.Errorf("Detect(20240115).Label = %q, want Unix timestamp (s)", got.Label)
	}

	got, err = DetectWith([]Rule{compactDateRule{}}, "20240115", Context{})
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(Result{1705276800000, "Date (YYYYMMDD)", false}, got); diff != "" {
		t.Errorf("compact date mismatch (-want +got):\n%s", diff)
	}
	if _, err := DetectWith([]Rule{compactDateRule{}}, "20241315", Context{}); !errors.Is(err, ErrNoMatch) {
		t.Errorf("compact date with month 13: error = %v, want ErrNoMatch", err)
	}
}

func TestDetect_TimeOnlyUsesUTCDate(t *testing.T) {
	// 23:30 on 2023-12-31 in UTC. Local wall clocks are irrelevant.
	ctx := Context{Now: func() time.Time {
		return time.Date(2024, 1, 1, 1, 30, 0, 0, time.FixedZone("X", 2*60*60))
	}}
	got, err := Detect("23:59:59", ctx)
	if err != nil {
		t.Fatal(err)
	}
	if want := int64(1704067199000); got.Instant != want {
		t.Errorf("Detect(23:59:59).Instant = %d, want %d", got.Instant, want)
	}
}

func TestLabels(t *testing.T) {
	want := []string{
		"Relative keyword",
		"Unix timestamp (ms)",
		"Unix timestamp (s)",
		"ISO 8601",
		"ISO 8601 (compact)",
		"RFC 2822",
		"SQL datetime",
		"Date (YYYY-MM-DD)",
		"Date (YYYYMMDD)",
		"EU date (DD/MM/YYYY)",
		"EU datetime",
		"Date (YYYY/MM/DD)",
		"European date (DD.MM.YYYY)",
		"Named month date",
		"Time only",
	}
	if diff := cmp.Diff(want, Labels(Context{Mode: EU})); diff != "" {
		t.Errorf("Labels mismatch (-want +got):\n%s", diff)
	}

	var sensitive []string
	for _, r := range Rules() {
		if r.ModeSensitive() {
			sensitive = append(sensitive, r.Label(Context{}))
		}
	}
	if diff := cmp.Diff([]string{"US date (MM/DD/YYYY)", "US datetime"}, sensitive); diff != "" {
		t.Errorf("mode-sensitive rules mismatch (-want +got):\n%s", diff)
	}
}

func TestRules_ReturnsCopy(t *testing.T) {
	r := Rules()
	r[0] = nil
	if Rules()[0] == nil {
		t.Error("Rules() exposes the package registry")
	}
}

func TestParseMode(t *testing.T) {
	for in, want := range map[string]Mode{"us": US, "EU": EU, " Eu ": EU} {
		got, err := ParseMode(in)
		if err != nil || got != want {
			t.Errorf("ParseMode(%q) = %v, %v; want %v", in, got, err, want)
		}
	}
	if _, err := ParseMode("iso"); err == nil {
		t.Error("ParseMode(iso) succeeded")
	}
}

func TestMode_Text(t *testing.T) {
	b, err := EU.MarshalText()
	if err != nil {
		t.Fatal(err)
	}
	if string(b) != "eu" {
		t.Errorf("EU.MarshalText() = %q, want eu", b)
	}
	var m Mode
	if err := m.UnmarshalText([]byte("EU")); err != nil || m != EU {
		t.Errorf("UnmarshalText(EU) = %v, %v", m, err)
	}
	if _, err := Mode(7).MarshalText(); err == nil {
		t.Error("Mode(7).MarshalText() succeeded")
	}
}
