// Package detect recognises the textual encoding of a point in time and
// parses it into milliseconds since the Unix epoch.
//
// Recognition walks an ordered list of rules. The first rule whose Match
// accepts the input decides the outcome: if its Parse then rejects the
// input (month 13, minute 75, ...), the input is unrecognized and no later
// rule is consulted.
package detect

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrNoMatch is returned when no rule recognises the input, or when the
// recognising rule cannot turn it into a valid instant.
var ErrNoMatch = errors.New("unrecognized time format")

// Mode selects how the first two groups of a slash-delimited date are read.
type Mode int

const (
	// US reads 01/02/2024 as January 2.
	US Mode = iota
	// EU reads 01/02/2024 as February 1.
	EU
)

func (m Mode) String() string {
	switch m {
	case US:
		return "US"
	case EU:
		return "EU"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// ParseMode parses "us" or "eu", ignoring case.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "us":
		return US, nil
	case "eu":
		return EU, nil
	}
	return US, fmt.Errorf("invalid date format mode %q: want us or eu", s)
}

// MarshalText implements encoding.TextMarshaler.
func (m Mode) MarshalText() ([]byte, error) {
	if m != US && m != EU {
		return nil, fmt.Errorf("invalid date format mode %d", int(m))
	}
	return []byte(strings.ToLower(m.String())), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (m *Mode) UnmarshalText(b []byte) error {
	v, err := ParseMode(string(b))
	if err != nil {
		return err
	}
	*m = v
	return nil
}

// Context carries everything besides the text that a rule may depend on.
type Context struct {
	Mode Mode
	// Now returns the wall clock used by relative keywords and time-only
	// input. If nil, time.Now is used.
	Now func() time.Time
}

func (c Context) nowMillis() int64 {
	if c.Now == nil {
		return time.Now().UnixMilli()
	}
	return c.Now().UnixMilli()
}

// Rule recognises and parses one textual shape.
type Rule interface {
	// Label is the human-readable name of the shape under ctx.
	Label(ctx Context) string
	// Match reports whether text has this rule's shape.
	Match(text string, ctx Context) bool
	// Parse converts text to an instant. It reports false when the shape
	// matched but a field is out of range or the instant is not representable.
	Parse(text string, ctx Context) (int64, bool)
	// ModeSensitive reports whether the result depends on ctx.Mode.
	ModeSensitive() bool
}

// Result is a successful detection.
type Result struct {
	Instant       int64  `json:"instant"`
	Label         string `json:"label"`
	ModeSensitive bool   `json:"mode_sensitive"`
}

// Detect recognises text using the default rules.
func Detect(text string, ctx Context) (Result, error) {
	return DetectWith(defaultRules, text, ctx)
}

// DetectWith recognises text using rules in the given order.
func DetectWith(rules []Rule, text string, ctx Context) (Result, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return Result{}, ErrNoMatch
	}
	for _, r := range rules {
		if !r.Match(text, ctx) {
			continue
		}
		ms, ok := r.Parse(text, ctx)
		if !ok {
			return Result{}, ErrNoMatch
		}
		return Result{Instant: ms, Label: r.Label(ctx), ModeSensitive: r.ModeSensitive()}, nil
	}
	return Result{}, ErrNoMatch
}

// Rules returns the default rules in priority order.
func Rules() []Rule {
	return append([]Rule(nil), defaultRules...)
}

// Labels returns the labels of the default rules under ctx, in priority order.
func Labels(ctx Context) []string {
	labels := make([]string, len(defaultRules))
	for i, r := range defaultRules {
		labels[i] = r.Label(ctx)
	}
	return labels
}
