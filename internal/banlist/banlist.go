package banlist

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"golang.org/x/text/cases"
)

//go:embed defaults.json
var defaultsJSON []byte

var defaultTerms = mustParseDefaults()

func mustParseDefaults() []string {
	var raw []string
	if err := json.Unmarshal(defaultsJSON, &raw); err != nil {
		panic(fmt.Sprintf("banlist: embedded defaults.json is invalid: %v", err))
	}
	terms := make([]string, 0, len(raw))
	seen := make(map[string]struct{}, len(raw))
	for _, term := range raw {
		normalized := Normalize(term)
		if normalized == "" {
			continue
		}
		key := foldKey(normalized)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		terms = append(terms, normalized)
	}
	return terms
}

// Defaults returns a copy of the embedded default term list.
func Defaults() []string {
	out := make([]string, len(defaultTerms))
	copy(out, defaultTerms)
	return out
}

// Normalize trims a term and collapses internal whitespace runs to single
// spaces, so phrase detection and dedup keys are stable regardless of how
// the term was typed.
func Normalize(term string) string {
	return strings.Join(strings.Fields(term), " ")
}

// IsPhrase reports whether a normalized term contains whitespace and should
// therefore match by substring rather than on word boundaries.
func IsPhrase(term string) bool {
	return strings.Contains(Normalize(term), " ")
}

// Merge combines the embedded defaults with user-added terms. Defaults keep
// their embedded order, user terms follow sorted case-insensitively, and
// duplicates (by Unicode case folding) collapse onto the earlier entry.
func Merge(userTerms []string) []string {
	merged := make([]string, 0, len(defaultTerms)+len(userTerms))
	seen := make(map[string]struct{}, len(defaultTerms)+len(userTerms))
	for _, term := range defaultTerms {
		seen[foldKey(term)] = struct{}{}
		merged = append(merged, term)
	}

	extras := make([]string, 0, len(userTerms))
	for _, term := range userTerms {
		normalized := Normalize(term)
		if normalized == "" {
			continue
		}
		key := foldKey(normalized)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		extras = append(extras, normalized)
	}
	sort.Slice(extras, func(i, j int) bool {
		ki, kj := foldKey(extras[i]), foldKey(extras[j])
		if ki == kj {
			return extras[i] < extras[j]
		}
		return ki < kj
	})
	return append(merged, extras...)
}

// Split partitions terms into single words and phrases, preserving order.
func Split(terms []string) (singles, phrases []string) {
	for _, term := range terms {
		normalized := Normalize(term)
		if normalized == "" {
			continue
		}
		if strings.Contains(normalized, " ") {
			phrases = append(phrases, normalized)
			continue
		}
		singles = append(singles, normalized)
	}
	return singles, phrases
}

// foldKey builds the case-insensitive dedup key. A fresh Caser per call:
// cases.Caser carries transform state and must not be shared.
func foldKey(term string) string {
	return cases.Fold().String(term)
}
