// Package tzsearch ranks time zone identifiers against a short, possibly
// misspelled or abbreviated query.
//
// A query matches a candidate when its characters occur in the candidate in
// order. Runs of adjacent characters and characters at the start of a path
// segment or word score higher, so "ny" prefers New_York over Sydney.
package tzsearch

import (
	"slices"
	"strings"
)

const (
	matchScore    = 1
	adjacentBonus = 3
	boundaryBonus = 5
	abbrevBoost   = 50
)

// Ranked is a zone and its score for one query.
type Ranked struct {
	Zone  string `json:"zone"`
	Score int    `json:"score"`
}

// Score returns how well query matches text, ignoring case. It is 0 unless
// every character of query occurs in text in order.
func Score(query, text string) int {
	q := []rune(strings.ToLower(query))
	t := []rune(strings.ToLower(text))
	if len(q) == 0 {
		return 0
	}
	score, qi, prev := 0, 0, -2
	for i := 0; i < len(t) && qi < len(q); i++ {
		if t[i] != q[qi] {
			continue
		}
		score += matchScore
		if i == prev+1 {
			score += adjacentBonus
		}
		if i == 0 || isSeparator(t[i-1]) {
			score += boundaryBonus
		}
		prev = i
		qi++
	}
	if qi < len(q) {
		return 0
	}
	return score
}

func isSeparator(r rune) bool {
	switch r {
	case '/', '_', ' ', '-':
		return true
	}
	return false
}

// Search ranks catalog against query, best first. Each zone scores the best
// of its identifier and its abbreviations in table. A query that is itself an
// abbreviation in table boosts every zone using it. Zones that do not match
// are left out; ties keep catalog order. A blank query returns the whole
// catalog, unscored, in order.
func Search(query string, catalog []string, table *Table) []Ranked {
	query = strings.TrimSpace(query)
	if query == "" {
		all := make([]Ranked, len(catalog))
		for i, zone := range catalog {
			all[i] = Ranked{Zone: zone}
		}
		return all
	}

	var boosted []string
	if key := strings.ToUpper(query); table.has(key) {
		boosted = table.zones[key]
	}

	var ranked []Ranked
	for _, zone := range catalog {
		s := Score(query, zone)
		for _, abbrev := range table.abbrevs[zone] {
			s = max(s, Score(query, abbrev))
		}
		if slices.Contains(boosted, zone) {
			s += abbrevBoost
		}
		if s > 0 {
			ranked = append(ranked, Ranked{Zone: zone, Score: s})
		}
	}
	slices.SortStableFunc(ranked, func(a, b Ranked) int { return b.Score - a.Score })
	return ranked
}
