package queue

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"bleep/internal/schedule"
)

// SaveSchedule stores the mute schedule for a video, atomically replacing
// any earlier schedule for the same video.
func (s *Store) SaveSchedule(ctx context.Context, sched schedule.Schedule) error {
	if err := sched.Validate(); err != nil {
		return fmt.Errorf("validate schedule: %w", err)
	}
	windows, err := schedule.EncodeWindows(sched.Windows)
	if err != nil {
		return fmt.Errorf("encode windows: %w", err)
	}
	if err := s.execWithoutResultRetry(
		ctx,
		`INSERT OR REPLACE INTO schedules (video_id, canonical_url, windows, updated_at)
         VALUES (?, ?, ?, ?)`,
		sched.VideoID,
		sched.CanonicalURL,
		windows,
		time.Now().UTC().Format(time.RFC3339Nano),
	); err != nil {
		return fmt.Errorf("save schedule: %w", err)
	}
	return nil
}

// ScheduleFor returns the stored schedule for a video, or nil when none
// exists. Callers still check AppliesTo before trusting the windows.
func (s *Store) ScheduleFor(ctx context.Context, videoID string) (*schedule.Schedule, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT video_id, canonical_url, windows FROM schedules WHERE video_id = ?`, videoID)
	sched, err := scanSchedule(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get schedule: %w", err)
	}
	return sched, nil
}

// ListSchedules returns every stored schedule ordered by video id.
func (s *Store) ListSchedules(ctx context.Context) ([]schedule.Schedule, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT video_id, canonical_url, windows FROM schedules ORDER BY video_id`)
	if err != nil {
		return nil, fmt.Errorf("list schedules: %w", err)
	}
	defer rows.Close()

	var schedules []schedule.Schedule
	for rows.Next() {
		sched, err := scanSchedule(rows)
		if err != nil {
			return nil, err
		}
		schedules = append(schedules, *sched)
	}
	return schedules, rows.Err()
}

// ScheduleCount returns how many videos have a stored schedule.
func (s *Store) ScheduleCount(ctx context.Context) (int, error) {
	var count int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(1) FROM schedules`).Scan(&count); err != nil {
		return 0, fmt.Errorf("count schedules: %w", err)
	}
	return count, nil
}

// DeleteSchedule removes a stored schedule.
func (s *Store) DeleteSchedule(ctx context.Context, videoID string) (bool, error) {
	res, err := s.execWithRetry(ctx, `DELETE FROM schedules WHERE video_id = ?`, videoID)
	if err != nil {
		return false, fmt.Errorf("delete schedule: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return affected > 0, nil
}

func scanSchedule(scanner interface{ Scan(dest ...any) error }) (*schedule.Schedule, error) {
	var (
		videoID      string
		canonicalURL string
		windowsRaw   sql.NullString
	)
	if err := scanner.Scan(&videoID, &canonicalURL, &windowsRaw); err != nil {
		return nil, err
	}
	windows, err := schedule.ParseWindows(windowsRaw.String)
	if err != nil {
		return nil, fmt.Errorf("parse windows for %s: %w", videoID, err)
	}
	return &schedule.Schedule{
		VideoID:      videoID,
		CanonicalURL: canonicalURL,
		Windows:      windows,
	}, nil
}
