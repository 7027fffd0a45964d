package logging

import "strings"

// FormatSubject builds the video/item/stage subject string used in console output.
func FormatSubject(videoID, itemID, stage string) string {
	videoID = strings.TrimSpace(videoID)
	itemID = strings.TrimSpace(itemID)
	stage = strings.TrimSpace(stage)
	parts := make([]string, 0, 3)
	if videoID != "" {
		parts = append(parts, "Video "+videoID)
	}
	switch {
	case itemID != "" && stage != "":
		parts = append(parts, "Item #"+itemID+" ("+stage+")")
	case itemID != "":
		parts = append(parts, "Item #"+itemID)
	case stage != "":
		parts = append(parts, stage)
	}
	return strings.Join(parts, " · ")
}
