package service

//go:generate mockgen -source=interfaces.go -destination=mocks/mocks.go -package=mocks

import (
	"context"
	"time"

	"notifeed/internal/domain"
	"notifeed/internal/notify"
)

type FeedStore interface {
	List(ctx context.Context) ([]domain.Feed, error)
	GetByName(ctx context.Context, name string) (*domain.Feed, error)
}

type ChannelStore interface {
	GetByID(ctx context.Context, id int64) (*domain.Channel, error)
	GetByName(ctx context.Context, name string) (*domain.Channel, error)
}

type BindingStore interface {
	Resolve(ctx context.Context, feedID int64) ([]int64, error)
}

type SeenStore interface {
	Load(ctx context.Context, feedID int64) (seen map[string]struct{}, initialized bool, err error)
	Commit(ctx context.Context, feedID int64, entryIDs []string) error
	AddNotified(ctx context.Context, feedID int64, n int) error
}

type SettingStore interface {
	PollInterval(ctx context.Context, fallback time.Duration) (time.Duration, error)
}

type Fetcher interface {
	Fetch(ctx context.Context, url string) ([]domain.Entry, error)
}

type SenderFactory interface {
	Create(channel domain.Channel) (notify.Sender, error)
}

type TransactionManager interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

type Dispatcher interface {
	Dispatch(ctx context.Context, feed domain.Feed, entries []domain.Entry) (sent, failed int)
}
