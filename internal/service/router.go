package service

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"golang.org/x/sync/errgroup"

	"notifeed/internal/domain"
)

// Router resolves which channels a feed's new entries go to and fans
// the sends out. Channel sends are independent: one channel failing
// never suppresses delivery to the others.
type Router struct {
	bindings      BindingStore
	channels      ChannelStore
	feeds         FeedStore
	fetcher       Fetcher
	senders       SenderFactory
	logger        *slog.Logger
	maxConcurrent int
}

func NewRouter(
	bindings BindingStore,
	channels ChannelStore,
	feeds FeedStore,
	fetcher Fetcher,
	senders SenderFactory,
	logger *slog.Logger,
	maxConcurrent int,
) *Router {
	if maxConcurrent <= 0 {
		maxConcurrent = 4
	}
	return &Router{
		bindings:      bindings,
		channels:      channels,
		feeds:         feeds,
		fetcher:       fetcher,
		senders:       senders,
		logger:        logger,
		maxConcurrent: maxConcurrent,
	}
}

// Dispatch sends every entry to every channel bound to the feed.
// Failures are logged as delivery errors and counted; they are
// terminal for this attempt since the entries are already committed
// as seen.
func (r *Router) Dispatch(ctx context.Context, feed domain.Feed, entries []domain.Entry) (sent, failed int) {
	channelIDs, err := r.bindings.Resolve(ctx, feed.ID)
	if err != nil {
		r.logger.Error("failed to resolve bindings", "feed", feed.Name, "error", err)
		return 0, len(entries)
	}
	if len(channelIDs) == 0 || len(entries) == 0 {
		return 0, 0
	}

	channels := make([]domain.Channel, 0, len(channelIDs))
	for _, id := range channelIDs {
		channel, err := r.channels.GetByID(ctx, id)
		if err != nil {
			r.logger.Error("failed to load channel", "feed", feed.Name, "channel_id", id, "error", err)
			failed += len(entries)
			continue
		}
		channels = append(channels, *channel)
	}

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.maxConcurrent)

	for _, entry := range entries {
		for _, channel := range channels {
			entry, channel := entry, channel
			g.Go(func() error {
				if err := r.send(gctx, channel, feed.Name, entry); err != nil {
					r.logger.Error("delivery failed",
						"feed", feed.Name,
						"entry", entry.ID,
						"channel", channel.Name,
						"error", err,
					)
					mu.Lock()
					failed++
					mu.Unlock()
					return nil
				}
				r.logger.Debug("delivered entry",
					"feed", feed.Name,
					"entry", entry.ID,
					"channel", channel.Name,
				)
				mu.Lock()
				sent++
				mu.Unlock()
				return nil
			})
		}
	}
	_ = g.Wait()

	return sent, failed
}

func (r *Router) send(ctx context.Context, channel domain.Channel, feedName string, entry domain.Entry) error {
	sender, err := r.senders.Create(channel)
	if err != nil {
		return &domain.DeliveryError{Channel: channel.Name, EntryID: entry.ID, Err: err}
	}
	if err := sender.Send(ctx, feedName, entry); err != nil {
		return &domain.DeliveryError{Channel: channel.Name, EntryID: entry.ID, Err: err}
	}
	return nil
}

// Test fetches a feed and sends only its most recent entry to a single
// channel, bypassing bindings and the seen set entirely. Used to
// validate a channel's configuration by hand.
func (r *Router) Test(ctx context.Context, channelName, feedName string) error {
	channel, err := r.channels.GetByName(ctx, channelName)
	if err != nil {
		return err
	}
	feed, err := r.feeds.GetByName(ctx, feedName)
	if err != nil {
		return err
	}

	entries, err := r.fetcher.Fetch(ctx, feed.URL)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		return fmt.Errorf("feed %q has no entries", feedName)
	}

	return r.send(ctx, *channel, feed.Name, entries[0])
}
