package schedule

import (
	"testing"
)

func TestParseEncodeWindowsRoundTrip(t *testing.T) {
	windows := []Window{
		{Start: 10, End: 15, Term: "frak"},
		{Start: 42.5, End: 43.75},
	}
	encoded, err := EncodeWindows(windows)
	if err != nil {
		t.Fatalf("encode failed: %v", err)
	}
	decoded, err := ParseWindows(encoded)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if len(decoded) != 2 {
		t.Fatalf("unexpected decoded size: %+v", decoded)
	}
	if decoded[0] != windows[0] || decoded[1] != windows[1] {
		t.Fatalf("round trip changed windows: %+v", decoded)
	}
}

func TestParseWindowsBlankInput(t *testing.T) {
	windows, err := ParseWindows("   ")
	if err != nil {
		t.Fatalf("blank input should not error: %v", err)
	}
	if len(windows) != 0 {
		t.Fatalf("expected empty list, got %+v", windows)
	}
}

func TestEncodeWindowsEmptyList(t *testing.T) {
	encoded, err := EncodeWindows(nil)
	if err != nil {
		t.Fatalf("encode failed: %v", err)
	}
	if encoded != "[]" {
		t.Fatalf("expected empty JSON array, got %q", encoded)
	}
}

func TestActiveAtBoundariesInclusive(t *testing.T) {
	sched := Schedule{
		VideoID:      "dQw4w9WgXcQ",
		CanonicalURL: "https://www.youtube.com/watch?v=dQw4w9WgXcQ",
		Windows:      []Window{{Start: 10, End: 15, Term: "frak"}},
	}
	tests := []struct {
		pos  float64
		want bool
	}{
		{9.99, false},
		{10, true},
		{12, true},
		{15, true},
		{15.01, false},
	}
	for _, tt := range tests {
		if _, got := sched.ActiveAt(tt.pos); got != tt.want {
			t.Errorf("ActiveAt(%v) = %v, want %v", tt.pos, got, tt.want)
		}
	}
}

func TestActiveAtReturnsFirstCoveringWindow(t *testing.T) {
	sched := Schedule{
		Windows: []Window{
			{Start: 5, End: 20, Term: "first"},
			{Start: 10, End: 15, Term: "second"},
		},
	}
	w, ok := sched.ActiveAt(12)
	if !ok || w.Term != "first" {
		t.Fatalf("expected first covering window, got %+v ok=%v", w, ok)
	}
	if _, ok := sched.ActiveAt(30); ok {
		t.Fatalf("position outside all windows should not match")
	}
}

func TestActiveAtEmptySchedule(t *testing.T) {
	var sched Schedule
	if _, ok := sched.ActiveAt(0); ok {
		t.Fatalf("empty schedule should never be active")
	}
}

func TestAppliesToExactMatchOnly(t *testing.T) {
	sched := Schedule{CanonicalURL: "https://www.youtube.com/watch?v=dQw4w9WgXcQ"}
	if !sched.AppliesTo("https://www.youtube.com/watch?v=dQw4w9WgXcQ") {
		t.Fatalf("expected identical canonical URL to apply")
	}
	if !sched.AppliesTo("  https://www.youtube.com/watch?v=dQw4w9WgXcQ  ") {
		t.Fatalf("surrounding whitespace should not break the match")
	}
	if sched.AppliesTo("https://www.youtube.com/watch?v=DQW4W9WGXCQ") {
		t.Fatalf("video ids are case sensitive; different casing must not apply")
	}
	if sched.AppliesTo("https://www.youtube.com/watch?v=aaaaaaaaaaa") {
		t.Fatalf("different video must not apply")
	}
	if (Schedule{}).AppliesTo("") {
		t.Fatalf("empty stored URL must never apply")
	}
}

func TestNormalizeSortsByStartThenEnd(t *testing.T) {
	sched := Schedule{
		Windows: []Window{
			{Start: 30, End: 31},
			{Start: 5, End: 9},
			{Start: 5, End: 6},
		},
	}
	sched.Normalize()
	if sched.Windows[0] != (Window{Start: 5, End: 6}) ||
		sched.Windows[1] != (Window{Start: 5, End: 9}) ||
		sched.Windows[2] != (Window{Start: 30, End: 31}) {
		t.Fatalf("unexpected order after normalize: %+v", sched.Windows)
	}
}

func TestValidateRejectsMalformedWindows(t *testing.T) {
	valid := Schedule{
		VideoID:      "dQw4w9WgXcQ",
		CanonicalURL: "https://www.youtube.com/watch?v=dQw4w9WgXcQ",
		Windows:      []Window{{Start: 0, End: 0}, {Start: 1.5, End: 2}},
	}
	if err := valid.Validate(); err != nil {
		t.Fatalf("valid schedule rejected: %v", err)
	}

	cases := []struct {
		name  string
		sched Schedule
	}{
		{"negative start", Schedule{VideoID: "a", CanonicalURL: "u", Windows: []Window{{Start: -1, End: 2}}}},
		{"end before start", Schedule{VideoID: "a", CanonicalURL: "u", Windows: []Window{{Start: 5, End: 4}}}},
		{"missing video id", Schedule{CanonicalURL: "u"}},
		{"missing canonical url", Schedule{VideoID: "a"}},
	}
	for _, tc := range cases {
		if err := tc.sched.Validate(); err == nil {
			t.Errorf("%s: expected validation error", tc.name)
		}
	}
}

func TestTermsDistinctInWindowOrder(t *testing.T) {
	sched := Schedule{
		Windows: []Window{
			{Start: 1, End: 2, Term: "frak"},
			{Start: 3, End: 4, Term: ""},
			{Start: 5, End: 6, Term: "smeg"},
			{Start: 7, End: 8, Term: "frak"},
		},
	}
	terms := sched.Terms()
	if len(terms) != 2 || terms[0] != "frak" || terms[1] != "smeg" {
		t.Fatalf("unexpected terms: %+v", terms)
	}
}

func TestCloneIsIndependent(t *testing.T) {
	orig := Schedule{
		VideoID: "dQw4w9WgXcQ",
		Windows: []Window{{Start: 1, End: 2}},
	}
	copied := orig.Clone()
	copied.Windows[0].End = 99
	if orig.Windows[0].End != 2 {
		t.Fatalf("clone shares window storage with original")
	}
}

func TestTotalMutedSeconds(t *testing.T) {
	sched := Schedule{
		Windows: []Window{{Start: 0, End: 1.5}, {Start: 10, End: 12}},
	}
	if got := sched.TotalMutedSeconds(); got != 3.5 {
		t.Fatalf("TotalMutedSeconds = %v, want 3.5", got)
	}
}
