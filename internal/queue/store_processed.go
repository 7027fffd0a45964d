package queue

import (
	"context"
	"fmt"
)

// IsProcessed reports whether a video has a recorded terminal-success
// completion.
func (s *Store) IsProcessed(ctx context.Context, videoID string) (bool, error) {
	var count int
	if err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(1) FROM processed WHERE video_id = ?`, videoID,
	).Scan(&count); err != nil {
		return false, fmt.Errorf("check processed: %w", err)
	}
	return count > 0, nil
}

// ProcessedCount returns the size of the processed set.
func (s *Store) ProcessedCount(ctx context.Context) (int, error) {
	var count int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(1) FROM processed`).Scan(&count); err != nil {
		return 0, fmt.Errorf("count processed: %w", err)
	}
	return count, nil
}

// ListProcessed returns completions newest first. A limit of zero or less
// returns everything.
func (s *Store) ListProcessed(ctx context.Context, limit int) ([]ProcessedEntry, error) {
	query := `SELECT video_id, completed_at FROM processed ORDER BY completed_at DESC, video_id`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list processed: %w", err)
	}
	defer rows.Close()

	var entries []ProcessedEntry
	for rows.Next() {
		var (
			videoID      string
			completedRaw string
		)
		if err := rows.Scan(&videoID, &completedRaw); err != nil {
			return nil, err
		}
		entry := ProcessedEntry{VideoID: videoID}
		if completed, err := parseTimeString(completedRaw); err == nil {
			entry.CompletedAt = completed
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

// ClearProcessed empties the processed set, allowing every video to be
// enqueued again.
func (s *Store) ClearProcessed(ctx context.Context) (int64, error) {
	res, err := s.execWithRetry(ctx, `DELETE FROM processed`)
	if err != nil {
		return 0, fmt.Errorf("clear processed: %w", err)
	}
	return res.RowsAffected()
}
