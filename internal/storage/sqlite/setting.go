package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/jmoiron/sqlx"
)

const pollIntervalKey = "poll_interval"

type SettingStore struct {
	db *sqlx.DB
}

func NewSettingStore(db *sqlx.DB) *SettingStore {
	return &SettingStore{db: db}
}

// PollInterval returns the persisted poll interval, or fallback when
// none has been set yet.
func (s *SettingStore) PollInterval(ctx context.Context, fallback time.Duration) (time.Duration, error) {
	var value string
	err := s.db.GetContext(ctx, &value,
		`SELECT value FROM settings WHERE key = ?`, pollIntervalKey)
	if errors.Is(err, sql.ErrNoRows) {
		return fallback, nil
	}
	if err != nil {
		return 0, fmt.Errorf("read poll interval: %w", err)
	}

	seconds, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parse poll interval %q: %w", value, err)
	}
	return time.Duration(seconds) * time.Second, nil
}

func (s *SettingStore) SetPollInterval(ctx context.Context, interval time.Duration) error {
	if interval <= 0 {
		return fmt.Errorf("poll interval must be positive, got %s", interval)
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO settings (key, value) VALUES (?, ?)
		 ON CONFLICT (key) DO UPDATE SET value = excluded.value`,
		pollIntervalKey, strconv.FormatInt(int64(interval/time.Second), 10),
	)
	return err
}
