package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
)

// Retention bounds for the per-feed seen set. An entry id is pruned
// only when it falls outside the newest keepCount ids AND is older
// than keepAge, so a pruned id can no longer be in any live fetch.
const (
	seenKeepCount = 500
	seenKeepAge   = 30 * 24 * time.Hour
)

type SeenStore struct {
	db *sqlx.DB
}

func NewSeenStore(db *sqlx.DB) *SeenStore {
	return &SeenStore{db: db}
}

// Load returns the seen entry ids for a feed and whether the feed has
// been through at least one committed poll. A feed with no poll_state
// row is uninitialized, which is distinct from initialized-but-empty.
func (s *SeenStore) Load(ctx context.Context, feedID int64) (map[string]struct{}, bool, error) {
	var count int
	err := s.db.GetContext(ctx, &count,
		`SELECT COUNT(*) FROM poll_state WHERE feed_id = ?`, feedID)
	if err != nil {
		return nil, false, fmt.Errorf("load poll state: %w", err)
	}
	if count == 0 {
		return nil, false, nil
	}

	var ids []string
	err = s.db.SelectContext(ctx, &ids,
		`SELECT entry_id FROM seen_entries WHERE feed_id = ?`, feedID)
	if err != nil {
		return nil, false, fmt.Errorf("load seen entries: %w", err)
	}

	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		seen[id] = struct{}{}
	}
	return seen, true, nil
}

// Commit records newly observed entry ids and marks the feed
// initialized, atomically. Retention pruning happens in the same
// transaction.
func (s *SeenStore) Commit(ctx context.Context, feedID int64, entryIDs []string) error {
	ex := GetExecutor(ctx, s.db)
	now := time.Now().UTC()

	for _, id := range entryIDs {
		_, err := ex.ExecContext(ctx,
			`INSERT INTO seen_entries (feed_id, entry_id, first_seen_at)
			 VALUES (?, ?, ?)
			 ON CONFLICT (feed_id, entry_id) DO NOTHING`,
			feedID, id, now,
		)
		if err != nil {
			return fmt.Errorf("insert seen entry: %w", err)
		}
	}

	_, err := ex.ExecContext(ctx,
		`INSERT INTO poll_state (feed_id, initialized_at, last_polled_at)
		 VALUES (?, ?, ?)
		 ON CONFLICT (feed_id) DO UPDATE SET last_polled_at = excluded.last_polled_at`,
		feedID, now, now,
	)
	if err != nil {
		return fmt.Errorf("update poll state: %w", err)
	}

	return s.prune(ctx, ex, feedID, now)
}

func (s *SeenStore) prune(ctx context.Context, ex sqlx.ExtContext, feedID int64, now time.Time) error {
	cutoff := now.Add(-seenKeepAge)
	_, err := ex.ExecContext(ctx,
		`DELETE FROM seen_entries
		 WHERE feed_id = ?
		   AND first_seen_at < ?
		   AND entry_id NOT IN (
		       SELECT entry_id FROM seen_entries
		       WHERE feed_id = ?
		       ORDER BY first_seen_at DESC
		       LIMIT ?
		   )`,
		feedID, cutoff, feedID, seenKeepCount,
	)
	if err != nil {
		return fmt.Errorf("prune seen entries: %w", err)
	}
	return nil
}

// AddNotified bumps the per-feed notification counter after dispatch.
func (s *SeenStore) AddNotified(ctx context.Context, feedID int64, n int) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE poll_state SET total_notified = total_notified + ? WHERE feed_id = ?`,
		n, feedID,
	)
	return err
}
