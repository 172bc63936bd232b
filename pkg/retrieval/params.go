package retrieval

import (
	"regexp"
	"strings"
)

// Category selects what kind of parameter to sniff out of a query.
type Category string

const (
	CategoryFacility Category = "facility"
	CategoryAsset    Category = "asset"
)

// ParamExtractor extracts a query parameter (e.g. a facility name) from
// free text. It is a narrow interface so the keyword heuristic can be
// swapped for a better NLP approach without touching retrieval logic.
type ParamExtractor interface {
	// Extract returns the extracted parameter, or "" when none was found.
	Extract(query string, category Category) string
}

// maxParamTokens bounds how much trailing text a capture keeps. Facility
// names in the source data are short multi-word labels ("Plant A").
const maxParamTokens = 4

var (
	// Captures the full phrase following a location keyword, not just the
	// next token: "in plant a" must yield "plant a", since single-token
	// capture breaks multi-word facility names.
	facilityPattern = regexp.MustCompile(`\b(?:in|at|within|facility|plant|site|building)\s+(?:the\s+)?([a-z0-9][a-z0-9 _\-]*)`)

	assetPattern = regexp.MustCompile(`\b(?:asset|equipment|machine|pump|about)\s+(?:the\s+|named\s+)?([a-z0-9][a-z0-9 _\-]*)`)
)

// KeywordParamExtractor is the default heuristic extractor: a regular
// expression per category over the lower-cased query.
type KeywordParamExtractor struct{}

// NewKeywordParamExtractor returns the default extractor.
func NewKeywordParamExtractor() *KeywordParamExtractor {
	return &KeywordParamExtractor{}
}

// Extract implements ParamExtractor.
func (*KeywordParamExtractor) Extract(query string, category Category) string {
	lowered := strings.ToLower(query)

	var pattern *regexp.Regexp
	switch category {
	case CategoryFacility:
		pattern = facilityPattern
	case CategoryAsset:
		pattern = assetPattern
	default:
		return ""
	}

	match := pattern.FindStringSubmatch(lowered)
	if match == nil {
		return ""
	}

	tokens := strings.Fields(strings.TrimSpace(match[1]))
	if len(tokens) > maxParamTokens {
		tokens = tokens[:maxParamTokens]
	}
	return strings.Join(tokens, " ")
}
