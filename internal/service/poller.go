package service

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"notifeed/internal/domain"
)

// Poller runs one poll cycle over all configured feeds. Feeds are
// processed concurrently and in isolation: one feed's fetch or parse
// failure is logged and skipped without touching the others.
type Poller struct {
	feeds         FeedStore
	seen          SeenStore
	fetcher       Fetcher
	dispatcher    Dispatcher
	txManager     TransactionManager
	locks         *feedLocks
	logger        *slog.Logger
	maxConcurrent int
}

func NewPoller(
	feeds FeedStore,
	seen SeenStore,
	fetcher Fetcher,
	dispatcher Dispatcher,
	txManager TransactionManager,
	logger *slog.Logger,
	maxConcurrent int,
) *Poller {
	if maxConcurrent <= 0 {
		maxConcurrent = 8
	}
	return &Poller{
		feeds:         feeds,
		seen:          seen,
		fetcher:       fetcher,
		dispatcher:    dispatcher,
		txManager:     txManager,
		locks:         newFeedLocks(),
		logger:        logger,
		maxConcurrent: maxConcurrent,
	}
}

// Poll performs one full cycle and reports aggregate statistics. Only
// listing the feeds can fail the cycle as a whole; per-feed problems
// are absorbed into the stats.
func (p *Poller) Poll(ctx context.Context) (*domain.PollStats, error) {
	startTime := time.Now()

	feeds, err := p.feeds.List(ctx)
	if err != nil {
		return nil, err
	}

	stats := &domain.PollStats{Feeds: len(feeds)}
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.maxConcurrent)

	for _, feed := range feeds {
		feed := feed
		g.Go(func() error {
			result, err := p.pollFeed(gctx, feed)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				stats.Failed++
				p.logFeedError(feed, err)
				return nil
			}
			if result.seeded {
				stats.Seeded++
			}
			stats.NewEntries += result.newEntries
			stats.Sent += result.sent
			stats.SendErrors += result.failed
			return nil
		})
	}
	_ = g.Wait()

	stats.Duration = time.Since(startTime)

	p.logger.Info("poll cycle completed",
		"feeds", stats.Feeds,
		"failed", stats.Failed,
		"seeded", stats.Seeded,
		"new_entries", stats.NewEntries,
		"sent", stats.Sent,
		"send_errors", stats.SendErrors,
		"duration", stats.Duration,
	)

	return stats, nil
}

type feedResult struct {
	seeded     bool
	newEntries int
	sent       int
	failed     int
}

// pollFeed runs the per-feed pipeline: fetch, detect, commit, dispatch.
// The feed's mutex covers load+detect+commit only; the seen set is
// durable before the first send goes out, so a slow or crashed dispatch
// can never cause the same entries to be rediscovered.
func (p *Poller) pollFeed(ctx context.Context, feed domain.Feed) (feedResult, error) {
	var result feedResult

	entries, err := p.fetcher.Fetch(ctx, feed.URL)
	if err != nil {
		return result, err
	}

	unlock := p.locks.Lock(feed.ID)
	det, err := p.detectAndCommit(ctx, feed.ID, entries)
	unlock()
	if err != nil {
		return result, err
	}

	if det.Seeded {
		result.seeded = true
		p.logger.Info("feed seeded", "feed", feed.Name, "entries", len(det.ObservedIDs))
		return result, nil
	}
	if len(det.NewEntries) == 0 {
		p.logger.Debug("no new entries", "feed", feed.Name)
		return result, nil
	}

	result.newEntries = len(det.NewEntries)
	for _, entry := range det.NewEntries {
		p.logger.Info("new entry found", "feed", feed.Name, "entry", entry.ID, "title", entry.Title)
	}

	result.sent, result.failed = p.dispatcher.Dispatch(ctx, feed, det.NewEntries)

	if result.sent > 0 {
		if err := p.seen.AddNotified(ctx, feed.ID, result.sent); err != nil {
			p.logger.Warn("failed to update notification counter", "feed", feed.Name, "error", err)
		}
	}

	return result, nil
}

func (p *Poller) detectAndCommit(ctx context.Context, feedID int64, entries []domain.Entry) (Detection, error) {
	seen, initialized, err := p.seen.Load(ctx, feedID)
	if err != nil {
		return Detection{}, err
	}

	det := Detect(entries, seen, initialized)

	err = p.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		return p.seen.Commit(txCtx, feedID, det.ObservedIDs)
	})
	if err != nil {
		return Detection{}, err
	}
	return det, nil
}

func (p *Poller) logFeedError(feed domain.Feed, err error) {
	var fetchErr *domain.FetchError
	var parseErr *domain.ParseError
	switch {
	case errors.As(err, &fetchErr):
		p.logger.Error("feed fetch failed, skipping until next cycle", "feed", feed.Name, "error", err)
	case errors.As(err, &parseErr):
		p.logger.Error("feed content malformed, skipping until next cycle", "feed", feed.Name, "error", err)
	default:
		p.logger.Error("feed poll failed", "feed", feed.Name, "error", err)
	}
}
