package queue

import (
	"database/sql"
	"errors"
	"time"
)

const itemColumns = "id, video_id, source_url, status, progress_message, enqueued_at, updated_at"

func scanItem(scanner interface{ Scan(dest ...any) error }) (*Item, error) {
	var (
		id              int64
		videoID         string
		sourceURL       string
		statusStr       string
		progressMessage sql.NullString
		enqueuedRaw     sql.NullString
		updatedRaw      sql.NullString
	)

	if err := scanner.Scan(
		&id,
		&videoID,
		&sourceURL,
		&statusStr,
		&progressMessage,
		&enqueuedRaw,
		&updatedRaw,
	); err != nil {
		return nil, err
	}

	item := &Item{
		ID:              id,
		VideoID:         videoID,
		SourceURL:       sourceURL,
		Status:          Status(statusStr),
		ProgressMessage: progressMessage.String,
	}

	if enqueued, err := parseTimeString(enqueuedRaw.String); err == nil {
		item.EnqueuedAt = enqueued
	}
	if updated, err := parseTimeString(updatedRaw.String); err == nil {
		item.UpdatedAt = updated
	}
	return item, nil
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}

func parseTimeString(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, errors.New("empty")
	}
	if t, err := time.Parse(time.RFC3339Nano, value); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02 15:04:05", value)
}

func makePlaceholders(count int) string {
	if count <= 0 {
		return ""
	}
	placeholders := make([]byte, 0, count*2)
	for i := 0; i < count; i++ {
		if i > 0 {
			placeholders = append(placeholders, ',')
		}
		placeholders = append(placeholders, '?')
	}
	return string(placeholders)
}
