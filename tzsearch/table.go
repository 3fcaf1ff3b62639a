package tzsearch

import (
	"slices"
	"strings"
	"sync"
)

// abbreviations maps common zone abbreviations to the zones that use them.
// An abbreviation may name zones on different continents (CST, IST).
var abbreviations = map[string][]string{
	"UTC":   {"UTC"},
	"GMT":   {"Europe/London", "Africa/Abidjan"},
	"BST":   {"Europe/London"},
	"IST":   {"Asia/Kolkata", "Europe/Dublin"},
	"WET":   {"Europe/Lisbon"},
	"WEST":  {"Europe/Lisbon"},
	"CET":   {"Europe/Berlin", "Europe/Paris", "Europe/Rome", "Europe/Madrid", "Europe/Amsterdam"},
	"CEST":  {"Europe/Berlin", "Europe/Paris", "Europe/Rome", "Europe/Madrid", "Europe/Amsterdam"},
	"EET":   {"Europe/Helsinki", "Europe/Athens", "Europe/Kyiv", "Africa/Cairo"},
	"EEST":  {"Europe/Helsinki", "Europe/Athens", "Europe/Kyiv"},
	"MSK":   {"Europe/Moscow"},
	"WAT":   {"Africa/Lagos"},
	"EAT":   {"Africa/Nairobi"},
	"SAST":  {"Africa/Johannesburg"},
	"GST":   {"Asia/Dubai"},
	"PKT":   {"Asia/Karachi"},
	"NPT":   {"Asia/Kathmandu"},
	"ICT":   {"Asia/Bangkok"},
	"WIB":   {"Asia/Jakarta"},
	"SGT":   {"Asia/Singapore"},
	"HKT":   {"Asia/Hong_Kong"},
	"JST":   {"Asia/Tokyo"},
	"KST":   {"Asia/Seoul"},
	"AWST":  {"Australia/Perth"},
	"ACST":  {"Australia/Adelaide", "Australia/Darwin"},
	"ACDT":  {"Australia/Adelaide"},
	"AEST":  {"Australia/Sydney", "Australia/Melbourne", "Australia/Brisbane"},
	"AEDT":  {"Australia/Sydney", "Australia/Melbourne"},
	"NZST":  {"Pacific/Auckland"},
	"NZDT":  {"Pacific/Auckland"},
	"CHAST": {"Pacific/Chatham"},
	"HST":   {"Pacific/Honolulu"},
	"AKST":  {"America/Anchorage"},
	"AKDT":  {"America/Anchorage"},
	"PST":   {"America/Los_Angeles", "America/Vancouver", "America/Tijuana"},
	"PDT":   {"America/Los_Angeles", "America/Vancouver", "America/Tijuana"},
	"MST":   {"America/Denver", "America/Phoenix", "America/Edmonton"},
	"MDT":   {"America/Denver", "America/Edmonton"},
	"CST":   {"America/Chicago", "America/Mexico_City", "America/Winnipeg", "Asia/Shanghai", "Asia/Taipei"},
	"CDT":   {"America/Chicago", "America/Winnipeg"},
	"EST":   {"America/New_York", "America/Toronto", "America/Detroit"},
	"EDT":   {"America/New_York", "America/Toronto", "America/Detroit"},
	"AST":   {"America/Halifax", "America/Puerto_Rico"},
	"ADT":   {"America/Halifax"},
	"NST":   {"America/St_Johns"},
	"NDT":   {"America/St_Johns"},
	"BRT":   {"America/Sao_Paulo"},
	"ART":   {"America/Argentina/Buenos_Aires"},
}

// Table relates abbreviations and zones in both directions.
// It is read-only once built.
type Table struct {
	zones   map[string][]string // abbreviation -> zones
	abbrevs map[string][]string // zone -> abbreviations
	keys    []string
}

// NewTable builds a Table from a map of upper-case abbreviations to zones.
func NewTable(m map[string][]string) *Table {
	t := &Table{
		zones:   make(map[string][]string, len(m)),
		abbrevs: make(map[string][]string),
	}
	for abbrev := range m {
		t.keys = append(t.keys, abbrev)
	}
	slices.Sort(t.keys)
	for _, abbrev := range t.keys {
		zones := slices.Clone(m[abbrev])
		t.zones[abbrev] = zones
		for _, zone := range zones {
			t.abbrevs[zone] = append(t.abbrevs[zone], abbrev)
		}
	}
	return t
}

var defaultTable = sync.OnceValue(func() *Table { return NewTable(abbreviations) })

// DefaultTable returns the built-in abbreviation table.
func DefaultTable() *Table { return defaultTable() }

// Zones returns the zones using abbrev, ignoring case.
func (t *Table) Zones(abbrev string) []string {
	return slices.Clone(t.zones[strings.ToUpper(abbrev)])
}

// Abbrevs returns the abbreviations of zone in alphabetical order.
func (t *Table) Abbrevs(zone string) []string {
	return slices.Clone(t.abbrevs[zone])
}

// Keys returns every abbreviation in alphabetical order.
func (t *Table) Keys() []string {
	return slices.Clone(t.keys)
}

func (t *Table) has(abbrev string) bool {
	_, ok := t.zones[abbrev]
	return ok
}
