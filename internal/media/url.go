package media

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
)

// videoIDPattern matches the 11-character id used in watch URLs.
var videoIDPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{11}$`)

// Video identifies one video by id and canonical watch URL.
type Video struct {
	ID           string
	CanonicalURL string
}

// CanonicalURL returns the canonical watch URL for a video id.
func CanonicalURL(videoID string) string {
	return "https://www.youtube.com/watch?v=" + videoID
}

// ValidID reports whether the value is a well-formed video id.
func ValidID(value string) bool {
	return videoIDPattern.MatchString(value)
}

// Parse extracts the video identity from any supported URL form. Accepted
// inputs: watch URLs (any youtube.com subdomain), youtu.be short links,
// /shorts/, /embed/, /live/, /v/ paths, and a bare video id.
func Parse(raw string) (Video, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return Video{}, fmt.Errorf("parse video url: empty input")
	}

	if ValidID(trimmed) {
		return Video{ID: trimmed, CanonicalURL: CanonicalURL(trimmed)}, nil
	}

	candidate := trimmed
	if !strings.Contains(candidate, "://") {
		candidate = "https://" + candidate
	}
	parsed, err := url.Parse(candidate)
	if err != nil {
		return Video{}, fmt.Errorf("parse video url %q: %w", raw, err)
	}

	host := strings.ToLower(parsed.Hostname())
	id := ""
	switch {
	case host == "youtu.be":
		id = firstPathSegment(parsed.Path)
	case host == "youtube.com" || strings.HasSuffix(host, ".youtube.com"):
		id = idFromSitePath(parsed)
	default:
		return Video{}, fmt.Errorf("parse video url %q: unsupported host %q", raw, host)
	}

	if !ValidID(id) {
		return Video{}, fmt.Errorf("parse video url %q: no video id found", raw)
	}
	return Video{ID: id, CanonicalURL: CanonicalURL(id)}, nil
}

func idFromSitePath(parsed *url.URL) string {
	segments := pathSegments(parsed.Path)
	if len(segments) == 0 {
		return ""
	}
	switch segments[0] {
	case "watch":
		return parsed.Query().Get("v")
	case "shorts", "embed", "live", "v":
		if len(segments) > 1 {
			return segments[1]
		}
	}
	return ""
}

func firstPathSegment(path string) string {
	segments := pathSegments(path)
	if len(segments) == 0 {
		return ""
	}
	return segments[0]
}

func pathSegments(path string) []string {
	trimmed := strings.Trim(path, "/")
	if trimmed == "" {
		return nil
	}
	return strings.Split(trimmed, "/")
}
