package match

import (
	"testing"
)

func TestEmptyTermListNeverMatches(t *testing.T) {
	m, err := Compile(nil, "****")
	if err != nil {
		t.Fatalf("compile failed: %v", err)
	}
	res := m.Match("frak this whole thing")
	if res.Matched || res.CensoredText != "frak this whole thing" {
		t.Fatalf("empty matcher should never match: %+v", res)
	}
	if m.TermCount() != 0 {
		t.Fatalf("unexpected term count: %d", m.TermCount())
	}
}

func TestNilMatcherActsEmpty(t *testing.T) {
	var m *Matcher
	if res := m.Match("frak"); res.Matched {
		t.Fatalf("nil matcher must not match")
	}
	if got := m.Censor("frak"); got != "frak" {
		t.Fatalf("nil matcher must not censor, got %q", got)
	}
	if m.Placeholder() != DefaultPlaceholder {
		t.Fatalf("nil matcher placeholder = %q", m.Placeholder())
	}
}

func TestSingleTermsMatchOnWordBoundaries(t *testing.T) {
	m, err := Compile([]string{"frak"}, "****")
	if err != nil {
		t.Fatalf("compile failed: %v", err)
	}
	tests := []struct {
		text string
		want bool
	}{
		{"frak", true},
		{"Frak!", true},
		{"what the FRAK happened", true},
		{"frakking", false},
		{"refrak", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := m.Match(tt.text).Matched; got != tt.want {
			t.Errorf("Match(%q) = %v, want %v", tt.text, got, tt.want)
		}
	}
}

func TestPhrasesMatchBySubstring(t *testing.T) {
	m, err := Compile([]string{"son of a bitch"}, "****")
	if err != nil {
		t.Fatalf("compile failed: %v", err)
	}
	if !m.Match("you SON OF A BITCH you").Matched {
		t.Fatalf("phrase should match case-insensitively")
	}
	if !m.Match("son of a bitches").Matched {
		t.Fatalf("phrase should match by containment, not boundaries")
	}
	if m.Match("son of a gun").Matched {
		t.Fatalf("different phrase must not match")
	}
}

func TestCensorReplacesEverySpan(t *testing.T) {
	m, err := Compile([]string{"frak"}, "[bleep]")
	if err != nil {
		t.Fatalf("compile failed: %v", err)
	}
	res := m.Match("frak that frakking Frak")
	if !res.Matched {
		t.Fatalf("expected a match")
	}
	if res.CensoredText != "[bleep] that frakking [bleep]" {
		t.Fatalf("unexpected censored text: %q", res.CensoredText)
	}
}

func TestPhraseCensorsBeforeSingleWords(t *testing.T) {
	m, err := Compile([]string{"bitch", "son of a bitch"}, "****")
	if err != nil {
		t.Fatalf("compile failed: %v", err)
	}
	res := m.Match("you son of a bitch")
	if res.CensoredText != "you ****" {
		t.Fatalf("phrase span should collapse to one placeholder, got %q", res.CensoredText)
	}
}

func TestMatchReportsTerms(t *testing.T) {
	m, err := Compile([]string{"frak", "smeg", "god damn it"}, "****")
	if err != nil {
		t.Fatalf("compile failed: %v", err)
	}
	res := m.Match("God damn it, Frak this and frak that")
	if !res.Matched {
		t.Fatalf("expected a match")
	}
	if len(res.Terms) != 2 || res.Terms[0] != "god damn it" || res.Terms[1] != "frak" {
		t.Fatalf("unexpected terms: %+v", res.Terms)
	}
}

func TestCensorOnlyPassLeavesDetectionAlone(t *testing.T) {
	m, err := Compile([]string{"frak"}, "****")
	if err != nil {
		t.Fatalf("compile failed: %v", err)
	}
	if got := m.Censor("frak off"); got != "**** off" {
		t.Fatalf("unexpected censor output: %q", got)
	}
	if got := m.Censor("clean text"); got != "clean text" {
		t.Fatalf("clean text should pass through, got %q", got)
	}
}

func TestRegexMetacharactersInTermsAreLiteral(t *testing.T) {
	m, err := Compile([]string{"a+b", "what (the)"}, "****")
	if err != nil {
		t.Fatalf("compile failed: %v", err)
	}
	if !m.Match("so what (the) now").Matched {
		t.Fatalf("metacharacter phrase should match literally")
	}
	if m.Match("aab").Matched {
		t.Fatalf("quoted single term must not act as a regex")
	}
}

func TestEmptyPlaceholderFallsBack(t *testing.T) {
	m, err := Compile([]string{"frak"}, "")
	if err != nil {
		t.Fatalf("compile failed: %v", err)
	}
	if got := m.Censor("frak"); got != DefaultPlaceholder {
		t.Fatalf("expected default placeholder, got %q", got)
	}
}
