package match

import (
	"fmt"
	"regexp"
	"strings"

	"bleep/internal/banlist"
)

// DefaultPlaceholder replaces matched spans when no placeholder is configured.
const DefaultPlaceholder = "****"

// Matcher is a compiled banned term set. The zero value and nil both act as
// an empty list that never matches.
type Matcher struct {
	placeholder string
	single      *regexp.Regexp
	phrases     []phrasePattern
	termCount   int
}

type phrasePattern struct {
	term    string
	pattern *regexp.Regexp
}

// Result reports one matching pass over a piece of text.
type Result struct {
	Matched      bool
	CensoredText string
	Terms        []string
}

// Compile builds a matcher from the supplied term list. Terms containing
// whitespace become phrase patterns in list order; the remaining terms fold
// into one word-boundary alternation. An empty list compiles to a matcher
// that never matches.
func Compile(terms []string, placeholder string) (*Matcher, error) {
	if placeholder == "" {
		placeholder = DefaultPlaceholder
	}
	singles, phrases := banlist.Split(terms)
	m := &Matcher{
		placeholder: placeholder,
		termCount:   len(singles) + len(phrases),
	}

	if len(singles) > 0 {
		quoted := make([]string, len(singles))
		for i, term := range singles {
			quoted[i] = regexp.QuoteMeta(term)
		}
		pattern, err := regexp.Compile(`(?i)\b(?:` + strings.Join(quoted, "|") + `)\b`)
		if err != nil {
			return nil, fmt.Errorf("compile single-term pattern: %w", err)
		}
		m.single = pattern
	}

	for _, term := range phrases {
		pattern, err := regexp.Compile(`(?i)` + regexp.QuoteMeta(term))
		if err != nil {
			return nil, fmt.Errorf("compile phrase pattern %q: %w", term, err)
		}
		m.phrases = append(m.phrases, phrasePattern{term: term, pattern: pattern})
	}
	return m, nil
}

// TermCount returns how many terms the matcher was compiled from.
func (m *Matcher) TermCount() int {
	if m == nil {
		return 0
	}
	return m.termCount
}

// Placeholder returns the replacement token used for censoring.
func (m *Matcher) Placeholder() string {
	if m == nil || m.placeholder == "" {
		return DefaultPlaceholder
	}
	return m.placeholder
}

// Match runs both passes: detection against the original text, then
// censoring. Terms lists which banned terms hit, phrases in compile order
// followed by single words in text order.
func (m *Matcher) Match(text string) Result {
	res := Result{CensoredText: text}
	if m == nil || text == "" {
		return res
	}

	for _, p := range m.phrases {
		if p.pattern.MatchString(text) {
			res.Matched = true
			res.Terms = append(res.Terms, p.term)
		}
	}
	if m.single != nil {
		seen := make(map[string]struct{})
		for _, hit := range m.single.FindAllString(text, -1) {
			res.Matched = true
			term := strings.ToLower(hit)
			if _, dup := seen[term]; dup {
				continue
			}
			seen[term] = struct{}{}
			res.Terms = append(res.Terms, term)
		}
	}
	if res.Matched {
		res.CensoredText = m.Censor(text)
	}
	return res
}

// Censor replaces every matched span with the placeholder without reporting
// a match. Phrases replace first so a phrase span collapses to a single
// placeholder before the word pass sees its remnants.
func (m *Matcher) Censor(text string) string {
	if m == nil || text == "" {
		return text
	}
	for _, p := range m.phrases {
		text = p.pattern.ReplaceAllString(text, m.placeholder)
	}
	if m.single != nil {
		text = m.single.ReplaceAllString(text, m.placeholder)
	}
	return text
}
