package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"notifeed/internal/domain"
)

type FeedStore struct {
	db *sqlx.DB
}

func NewFeedStore(db *sqlx.DB) *FeedStore {
	return &FeedStore{db: db}
}

func (s *FeedStore) Add(ctx context.Context, name, url string) (*domain.Feed, error) {
	var id int64
	err := s.db.QueryRowContext(ctx,
		`INSERT INTO feeds (name, url) VALUES (?, ?) RETURNING id`,
		name, url,
	).Scan(&id)
	if isUniqueViolation(err) {
		return nil, fmt.Errorf("feed %q: %w", name, domain.ErrDuplicate)
	}
	if err != nil {
		return nil, err
	}
	return s.get(ctx, "id", id)
}

func (s *FeedStore) GetByName(ctx context.Context, name string) (*domain.Feed, error) {
	return s.get(ctx, "name", name)
}

func (s *FeedStore) List(ctx context.Context) ([]domain.Feed, error) {
	var feeds []domain.Feed
	err := s.db.SelectContext(ctx, &feeds,
		`SELECT id, name, url, created_at FROM feeds ORDER BY name`)
	if err != nil {
		return nil, err
	}
	return feeds, nil
}

// Delete removes a feed. Bindings, seen entries and poll state go with
// it via foreign key cascade.
func (s *FeedStore) Delete(ctx context.Context, name string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM feeds WHERE name = ?`, name)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return fmt.Errorf("feed %q: %w", name, domain.ErrNotFound)
	}
	return nil
}

func (s *FeedStore) get(ctx context.Context, column string, value any) (*domain.Feed, error) {
	var feed domain.Feed
	query := fmt.Sprintf(`SELECT id, name, url, created_at FROM feeds WHERE %s = ?`, column)
	err := s.db.GetContext(ctx, &feed, query, value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("feed %v: %w", value, domain.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &feed, nil
}
