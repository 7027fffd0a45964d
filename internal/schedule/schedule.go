package schedule

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// Window is one muted interval in playback seconds, boundaries inclusive.
// Term optionally records which banned term produced the window; it is used
// for logs and display only and has no effect on matching.
type Window struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Term  string  `json:"term,omitempty"`
}

// Contains reports whether pos falls inside the window. Both boundaries are
// inclusive, so a position exactly on start or end counts as muted.
func (w Window) Contains(pos float64) bool {
	return pos >= w.Start && pos <= w.End
}

// Duration returns the window length in seconds.
func (w Window) Duration() float64 {
	return w.End - w.Start
}

// Validate checks the window's interval shape.
func (w Window) Validate() error {
	if w.Start < 0 {
		return fmt.Errorf("window start %.3f is negative", w.Start)
	}
	if w.End < w.Start {
		return fmt.Errorf("window end %.3f precedes start %.3f", w.End, w.Start)
	}
	return nil
}

// Schedule is the full mute schedule for one video.
type Schedule struct {
	VideoID      string   `json:"video_id"`
	CanonicalURL string   `json:"canonical_url"`
	Windows      []Window `json:"windows,omitempty"`
}

// ActiveAt returns the first window covering pos, in stored order.
func (s Schedule) ActiveAt(pos float64) (Window, bool) {
	for _, w := range s.Windows {
		if w.Contains(pos) {
			return w, true
		}
	}
	return Window{}, false
}

// AppliesTo reports whether the schedule was produced for the supplied
// canonical URL. Video IDs are case sensitive, so the comparison is exact
// after trimming surrounding whitespace.
func (s Schedule) AppliesTo(canonicalURL string) bool {
	stored := strings.TrimSpace(s.CanonicalURL)
	if stored == "" {
		return false
	}
	return stored == strings.TrimSpace(canonicalURL)
}

// Terms returns the distinct non-empty term labels in window order.
func (s Schedule) Terms() []string {
	var out []string
	seen := make(map[string]struct{}, len(s.Windows))
	for _, w := range s.Windows {
		term := strings.TrimSpace(w.Term)
		if term == "" {
			continue
		}
		if _, dup := seen[term]; dup {
			continue
		}
		seen[term] = struct{}{}
		out = append(out, term)
	}
	return out
}

// TotalMutedSeconds sums the window durations. Overlapping windows count
// each overlap once per window; the figure is for display, not playback math.
func (s Schedule) TotalMutedSeconds() float64 {
	var total float64
	for _, w := range s.Windows {
		total += w.Duration()
	}
	return total
}

// Validate checks identity fields and every window.
func (s Schedule) Validate() error {
	if strings.TrimSpace(s.VideoID) == "" {
		return fmt.Errorf("schedule video id is empty")
	}
	if strings.TrimSpace(s.CanonicalURL) == "" {
		return fmt.Errorf("schedule canonical url is empty")
	}
	for idx, w := range s.Windows {
		if err := w.Validate(); err != nil {
			return fmt.Errorf("window %d: %w", idx, err)
		}
	}
	return nil
}

// Normalize orders windows by start time, earliest first, breaking ties on
// end time. Overlapping windows are preserved as-is.
func (s *Schedule) Normalize() {
	if s == nil {
		return
	}
	sort.SliceStable(s.Windows, func(i, j int) bool {
		if s.Windows[i].Start == s.Windows[j].Start {
			return s.Windows[i].End < s.Windows[j].End
		}
		return s.Windows[i].Start < s.Windows[j].Start
	})
}

// Clone creates a deep copy so callers can hold a snapshot while the store
// overwrites the original.
func (s Schedule) Clone() Schedule {
	out := s
	out.Windows = cloneWindows(s.Windows)
	return out
}

// ParseWindows loads a window list from its persisted JSON form, returning
// an empty list on blank input.
func ParseWindows(raw string) ([]Window, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	var windows []Window
	if err := json.Unmarshal([]byte(raw), &windows); err != nil {
		return nil, err
	}
	return windows, nil
}

// EncodeWindows serialises the window list to JSON for persistence.
func EncodeWindows(windows []Window) (string, error) {
	if len(windows) == 0 {
		return "[]", nil
	}
	data, err := json.Marshal(windows)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func cloneWindows(list []Window) []Window {
	if len(list) == 0 {
		return nil
	}
	out := make([]Window, len(list))
	copy(out, list)
	return out
}
