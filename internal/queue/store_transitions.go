package queue

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// CompleteHead removes a finished item and, on success, records its video in
// the processed set, all in one transaction. The item is expected to still be
// the queue head; when it is not, removal falls back to the video id and the
// returned flag tells the caller to log the discrepancy.
func (s *Store) CompleteHead(ctx context.Context, item *Item, success bool) (headMismatch bool, err error) {
	if item == nil {
		return false, errors.New("item is nil")
	}
	ctx = ensureContext(ctx)
	err = retryOnBusy(ctx, func() error {
		tx, txErr := s.db.BeginTx(ctx, nil)
		if txErr != nil {
			return fmt.Errorf("begin complete tx: %w", txErr)
		}
		defer func() { _ = tx.Rollback() }()

		var headID int64
		scanErr := tx.QueryRowContext(ctx, `SELECT id FROM work_items ORDER BY id LIMIT 1`).Scan(&headID)
		if scanErr != nil && !errors.Is(scanErr, sql.ErrNoRows) {
			return fmt.Errorf("find queue head: %w", scanErr)
		}
		headMismatch = headID != item.ID

		var res sql.Result
		var delErr error
		if headMismatch {
			res, delErr = tx.ExecContext(ctx, `DELETE FROM work_items WHERE video_id = ?`, item.VideoID)
		} else {
			res, delErr = tx.ExecContext(ctx, `DELETE FROM work_items WHERE id = ?`, item.ID)
		}
		if delErr != nil {
			return fmt.Errorf("remove completed item: %w", delErr)
		}
		if affected, raErr := res.RowsAffected(); raErr == nil && affected == 0 {
			// Already gone; nothing left to complete but success still counts.
			headMismatch = true
		}

		if success {
			if _, insErr := tx.ExecContext(ctx,
				`INSERT OR REPLACE INTO processed (video_id, completed_at) VALUES (?, ?)`,
				item.VideoID, time.Now().UTC().Format(time.RFC3339Nano),
			); insErr != nil {
				return fmt.Errorf("record processed video: %w", insErr)
			}
		}
		if commitErr := tx.Commit(); commitErr != nil {
			return fmt.Errorf("commit complete: %w", commitErr)
		}
		return nil
	})
	return headMismatch, err
}

// ResetInFlight returns items left mid-processing by a previous run back to
// pending so they restart from submission.
func (s *Store) ResetInFlight(ctx context.Context) (int64, error) {
	res, err := s.execWithRetry(
		ctx,
		`UPDATE work_items
         SET status = ?, progress_message = ?, updated_at = ?
         WHERE status IN (?, ?, ?)`,
		StatusPending,
		RestartResetMessage,
		time.Now().UTC().Format(time.RFC3339Nano),
		StatusSubmitting,
		StatusPolling,
		StatusFetching,
	)
	if err != nil {
		return 0, fmt.Errorf("reset in-flight items: %w", err)
	}
	return res.RowsAffected()
}
