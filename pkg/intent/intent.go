// Package intent assigns a coarse topic category to a free-text question so
// retrieval can pick a traversal strategy. The classifier is a deterministic
// keyword scorer, not a semantic model: identical input always produces
// identical output, which keeps golden-output tests exact.
package intent

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Intent is the topic category of a query.
type Intent string

const (
	IntentFacility    Intent = "facility"
	IntentAsset       Intent = "asset"
	IntentMaintenance Intent = "maintenance"
	IntentPersonnel   Intent = "personnel"
	IntentGeneral     Intent = "general"
)

// priority is the fixed tie-break order: when two intents score equally the
// earlier one wins. General is never scored; it is the zero-match fallback.
var priority = []Intent{
	IntentFacility,
	IntentAsset,
	IntentMaintenance,
	IntentPersonnel,
}

// keywords owns the fixed keyword set per intent. Multi-word keywords are
// matched as phrases.
var keywords = map[Intent][]string{
	IntentFacility: {
		"facility", "facilities", "plant", "plants", "building",
		"location", "site", "where",
	},
	IntentAsset: {
		"asset", "assets", "equipment", "machine", "machines",
		"pump", "pumps", "device", "devices",
	},
	IntentMaintenance: {
		"maintenance", "work order", "work orders", "repair", "repairs",
		"fix", "maintain", "maintained", "service",
	},
	IntentPersonnel: {
		"who", "personnel", "technician", "technicians", "assigned",
		"staff", "employee", "responsible",
	},
}

// scoreNormalizer converts a raw occurrence count into [0, 1]. Three keyword
// hits saturate the score.
const scoreNormalizer = 3.0

// Classify returns the highest-scoring intent for query, falling back to
// General when no keyword matches. Ties are broken by the fixed priority
// order Facility > Asset > Maintenance > Personnel.
func Classify(query string) Intent {
	scores := Scores(query)

	best := IntentGeneral
	bestScore := 0.0
	for _, it := range priority {
		if scores[it] > bestScore {
			best = it
			bestScore = scores[it]
		}
	}
	return best
}

// Scores returns the normalized keyword score per intent. Exposed for
// observability and tests.
func Scores(query string) map[Intent]float64 {
	lowered := strings.ToLower(query)

	scores := make(map[Intent]float64, len(priority))
	for _, it := range priority {
		count := 0
		for _, kw := range keywords[it] {
			count += countWordOccurrences(lowered, kw)
		}
		score := float64(count) / scoreNormalizer
		if score > 1.0 {
			score = 1.0
		}
		scores[it] = score
	}
	return scores
}

// countWordOccurrences counts occurrences of keyword in text where the match
// is bounded by non-alphanumeric runes, so "who" does not match inside
// "whole".
func countWordOccurrences(text, keyword string) int {
	count := 0
	for start := 0; ; {
		idx := strings.Index(text[start:], keyword)
		if idx < 0 {
			break
		}
		abs := start + idx
		end := abs + len(keyword)
		if boundaryBefore(text, abs) && boundaryAfter(text, end) {
			count++
		}
		start = abs + len(keyword)
	}
	return count
}

func boundaryBefore(text string, idx int) bool {
	if idx == 0 {
		return true
	}
	r, _ := utf8.DecodeLastRuneInString(text[:idx])
	return !isWordRune(r)
}

func boundaryAfter(text string, idx int) bool {
	if idx >= len(text) {
		return true
	}
	r, _ := utf8.DecodeRuneInString(text[idx:])
	return !isWordRune(r)
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}
