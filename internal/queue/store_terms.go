package queue

import (
	"context"
	"errors"
	"fmt"
	"time"

	"bleep/internal/banlist"
)

// AddBanTerm stores a user-added term. Returns false when an equivalent
// term (the column collates case-insensitively) is already present.
func (s *Store) AddBanTerm(ctx context.Context, term string) (bool, error) {
	normalized := banlist.Normalize(term)
	if normalized == "" {
		return false, errors.New("term is empty")
	}
	res, err := s.execWithRetry(ctx,
		`INSERT OR IGNORE INTO ban_terms (term, added_at) VALUES (?, ?)`,
		normalized,
		time.Now().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return false, fmt.Errorf("add ban term: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return affected > 0, nil
}

// RemoveBanTerm deletes a user-added term, matching case-insensitively.
func (s *Store) RemoveBanTerm(ctx context.Context, term string) (bool, error) {
	normalized := banlist.Normalize(term)
	if normalized == "" {
		return false, errors.New("term is empty")
	}
	res, err := s.execWithRetry(ctx, `DELETE FROM ban_terms WHERE term = ?`, normalized)
	if err != nil {
		return false, fmt.Errorf("remove ban term: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return affected > 0, nil
}

// ListBanTerms returns the user-added terms in insertion order.
func (s *Store) ListBanTerms(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT term FROM ban_terms ORDER BY added_at, term`)
	if err != nil {
		return nil, fmt.Errorf("list ban terms: %w", err)
	}
	defer rows.Close()

	var terms []string
	for rows.Next() {
		var term string
		if err := rows.Scan(&term); err != nil {
			return nil, err
		}
		terms = append(terms, term)
	}
	return terms, rows.Err()
}
