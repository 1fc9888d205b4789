package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"notifeed/internal/domain"
)

type ChannelStore struct {
	db *sqlx.DB
}

func NewChannelStore(db *sqlx.DB) *ChannelStore {
	return &ChannelStore{db: db}
}

func (s *ChannelStore) Add(ctx context.Context, name, typ, endpoint string, authToken *string) (*domain.Channel, error) {
	var id int64
	err := s.db.QueryRowContext(ctx,
		`INSERT INTO channels (name, type, endpoint, auth_token) VALUES (?, ?, ?, ?) RETURNING id`,
		name, typ, endpoint, authToken,
	).Scan(&id)
	if isUniqueViolation(err) {
		return nil, fmt.Errorf("channel %q: %w", name, domain.ErrDuplicate)
	}
	if err != nil {
		return nil, err
	}
	return s.GetByID(ctx, id)
}

func (s *ChannelStore) GetByID(ctx context.Context, id int64) (*domain.Channel, error) {
	return s.get(ctx, "id", id)
}

func (s *ChannelStore) GetByName(ctx context.Context, name string) (*domain.Channel, error) {
	return s.get(ctx, "name", name)
}

func (s *ChannelStore) List(ctx context.Context) ([]domain.Channel, error) {
	var channels []domain.Channel
	err := s.db.SelectContext(ctx, &channels,
		`SELECT id, name, type, endpoint, auth_token, created_at FROM channels ORDER BY name`)
	if err != nil {
		return nil, err
	}
	return channels, nil
}

// Delete removes a channel and, via cascade, every binding that
// references it.
func (s *ChannelStore) Delete(ctx context.Context, name string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM channels WHERE name = ?`, name)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return fmt.Errorf("channel %q: %w", name, domain.ErrNotFound)
	}
	return nil
}

func (s *ChannelStore) get(ctx context.Context, column string, value any) (*domain.Channel, error) {
	var channel domain.Channel
	query := fmt.Sprintf(`SELECT id, name, type, endpoint, auth_token, created_at FROM channels WHERE %s = ?`, column)
	err := s.db.GetContext(ctx, &channel, query, value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("channel %v: %w", value, domain.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &channel, nil
}
