package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"

	"notifeed/internal/domain"
)

type BindingStore struct {
	db *sqlx.DB
}

func NewBindingStore(db *sqlx.DB) *BindingStore {
	return &BindingStore{db: db}
}

// Add creates a binding. feedID domain.WildcardFeedID stores a wildcard
// row that resolves for every feed.
func (s *BindingStore) Add(ctx context.Context, feedID, channelID int64) error {
	var feed any
	if feedID != domain.WildcardFeedID {
		feed = feedID
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO bindings (feed_id, channel_id) VALUES (?, ?)`,
		feed, channelID,
	)
	if isUniqueViolation(err) {
		return fmt.Errorf("binding: %w", domain.ErrDuplicate)
	}
	return err
}

func (s *BindingStore) Remove(ctx context.Context, feedID, channelID int64) error {
	var (
		res sql.Result
		err error
	)
	if feedID == domain.WildcardFeedID {
		res, err = s.db.ExecContext(ctx,
			`DELETE FROM bindings WHERE feed_id IS NULL AND channel_id = ?`, channelID)
	} else {
		res, err = s.db.ExecContext(ctx,
			`DELETE FROM bindings WHERE feed_id = ? AND channel_id = ?`, feedID, channelID)
	}
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return fmt.Errorf("binding: %w", domain.ErrNotFound)
	}
	return nil
}

// Resolve returns the channel ids bound to the feed: its explicit
// bindings plus all wildcard bindings.
func (s *BindingStore) Resolve(ctx context.Context, feedID int64) ([]int64, error) {
	var ids []int64
	err := s.db.SelectContext(ctx, &ids,
		`SELECT DISTINCT channel_id FROM bindings
		 WHERE feed_id = ? OR feed_id IS NULL
		 ORDER BY channel_id`,
		feedID,
	)
	if err != nil {
		return nil, err
	}
	return ids, nil
}

func (s *BindingStore) List(ctx context.Context) ([]domain.Binding, error) {
	var bindings []domain.Binding
	err := s.db.SelectContext(ctx, &bindings,
		`SELECT id, IFNULL(feed_id, 0) AS feed_id, channel_id FROM bindings ORDER BY id`)
	if err != nil {
		return nil, err
	}
	return bindings, nil
}
