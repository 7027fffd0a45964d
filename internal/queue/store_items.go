package queue

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
)

// Enqueue appends a new pending work item. A video already queued or already
// in the processed set is not re-added; the outcome tells the caller which
// case applied. For the already-queued outcome the existing item is returned.
func (s *Store) Enqueue(ctx context.Context, videoID, sourceURL string) (*Item, EnqueueOutcome, error) {
	videoID = strings.TrimSpace(videoID)
	sourceURL = strings.TrimSpace(sourceURL)
	if videoID == "" {
		return nil, "", errors.New("video id is empty")
	}
	if sourceURL == "" {
		return nil, "", errors.New("source url is empty")
	}

	ctx = ensureContext(ctx)
	var (
		item    *Item
		outcome EnqueueOutcome
	)
	err := retryOnBusy(ctx, func() error {
		tx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("begin enqueue tx: %w", err)
		}
		defer func() { _ = tx.Rollback() }()

		var processed int
		if err := tx.QueryRowContext(ctx,
			`SELECT COUNT(1) FROM processed WHERE video_id = ?`, videoID,
		).Scan(&processed); err != nil {
			return fmt.Errorf("check processed set: %w", err)
		}
		if processed > 0 {
			item = nil
			outcome = OutcomeAlreadyProcessed
			return tx.Commit()
		}

		row := tx.QueryRowContext(ctx,
			`SELECT `+itemColumns+` FROM work_items WHERE video_id = ?`, videoID)
		existing, err := scanItem(row)
		if err == nil {
			item = existing
			outcome = OutcomeAlreadyQueued
			return tx.Commit()
		}
		if !errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("check queued item: %w", err)
		}

		now := time.Now().UTC()
		timestamp := now.Format(time.RFC3339Nano)
		res, err := tx.ExecContext(ctx,
			`INSERT INTO work_items (video_id, source_url, status, enqueued_at, updated_at)
             VALUES (?, ?, ?, ?, ?)`,
			videoID, sourceURL, StatusPending, timestamp, timestamp,
		)
		if err != nil {
			return fmt.Errorf("insert work item: %w", err)
		}
		id, err := res.LastInsertId()
		if err != nil {
			return fmt.Errorf("last insert id: %w", err)
		}
		item = &Item{
			ID:         id,
			VideoID:    videoID,
			SourceURL:  sourceURL,
			Status:     StatusPending,
			EnqueuedAt: now,
			UpdatedAt:  now,
		}
		outcome = OutcomeAdded
		return tx.Commit()
	})
	if err != nil {
		return nil, "", err
	}
	return item, outcome, nil
}

// GetByID fetches a work item by identifier.
func (s *Store) GetByID(ctx context.Context, id int64) (*Item, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+itemColumns+` FROM work_items WHERE id = ?`, id)
	item, err := scanItem(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get item: %w", err)
	}
	return item, nil
}

// ItemByVideoID returns the queued item for a video, or nil when absent.
func (s *Store) ItemByVideoID(ctx context.Context, videoID string) (*Item, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+itemColumns+` FROM work_items WHERE video_id = ?`, videoID)
	item, err := scanItem(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find by video id: %w", err)
	}
	return item, nil
}

// Update persists changes to an existing work item.
func (s *Store) Update(ctx context.Context, item *Item) error {
	if item == nil {
		return errors.New("item is nil")
	}
	item.UpdatedAt = time.Now().UTC()
	if err := s.execWithoutResultRetry(
		ctx,
		`UPDATE work_items
         SET source_url = ?, status = ?, progress_message = ?, updated_at = ?
         WHERE id = ?`,
		item.SourceURL,
		item.Status,
		nullableString(item.ProgressMessage),
		item.UpdatedAt.Format(time.RFC3339Nano),
		item.ID,
	); err != nil {
		return fmt.Errorf("update item: %w", err)
	}
	return nil
}

// UpdateProgress persists only the progress message, leaving status alone.
func (s *Store) UpdateProgress(ctx context.Context, id int64, message string) error {
	now := time.Now().UTC()
	if err := s.execWithoutResultRetry(
		ctx,
		`UPDATE work_items SET progress_message = ?, updated_at = ? WHERE id = ?`,
		nullableString(message),
		now.Format(time.RFC3339Nano),
		id,
	); err != nil {
		return fmt.Errorf("update progress: %w", err)
	}
	return nil
}

// List returns work items filtered by status set (or all items when no
// status is provided), in queue order.
func (s *Store) List(ctx context.Context, statuses ...Status) ([]*Item, error) {
	var (
		rows *sql.Rows
		err  error
	)

	baseQuery := `SELECT ` + itemColumns + ` FROM work_items`
	orderClause := ` ORDER BY id`

	if len(statuses) == 0 {
		rows, err = s.db.QueryContext(ctx, baseQuery+orderClause)
	} else {
		placeholders := makePlaceholders(len(statuses))
		args := make([]any, len(statuses))
		for i, status := range statuses {
			args[i] = status
		}
		query := baseQuery + ` WHERE status IN (` + placeholders + `)` + orderClause
		rows, err = s.db.QueryContext(ctx, query, args...)
	}
	if err != nil {
		return nil, fmt.Errorf("list work items: %w", err)
	}
	defer rows.Close()

	var items []*Item
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

// NextPending returns the oldest pending item, or nil when the queue is idle.
func (s *Store) NextPending(ctx context.Context) (*Item, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+itemColumns+` FROM work_items WHERE status = ? ORDER BY id LIMIT 1`,
		StatusPending,
	)
	item, err := scanItem(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("next pending: %w", err)
	}
	return item, nil
}

// InFlight returns the item currently mid-processing, or nil when none is.
func (s *Store) InFlight(ctx context.Context) (*Item, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+itemColumns+` FROM work_items WHERE status IN (?, ?, ?) ORDER BY id LIMIT 1`,
		StatusSubmitting, StatusPolling, StatusFetching,
	)
	item, err := scanItem(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("in-flight item: %w", err)
	}
	return item, nil
}

// Remove deletes an item by identifier.
func (s *Store) Remove(ctx context.Context, id int64) (bool, error) {
	res, err := s.execWithRetry(ctx, `DELETE FROM work_items WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("delete item: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return affected > 0, nil
}

// Clear removes pending items from the queue. The in-flight head is never
// touched; it finishes or fails on its own and leaves the queue through the
// normal completion path.
func (s *Store) Clear(ctx context.Context) (int64, error) {
	res, err := s.execWithRetry(ctx, `DELETE FROM work_items WHERE status = ?`, string(StatusPending))
	if err != nil {
		return 0, fmt.Errorf("clear queue: %w", err)
	}
	return res.RowsAffected()
}
