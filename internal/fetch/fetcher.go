package fetch

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/mmcdole/gofeed"

	"notifeed/internal/domain"
)

// Config holds fetcher configuration.
type Config struct {
	Timeout        time.Duration
	MaxAttempts    int
	InitialBackoff time.Duration
	MaxBackoff     time.Duration
}

// Fetcher retrieves RSS/Atom/JSON feeds and normalizes their items.
type Fetcher struct {
	httpClient     *http.Client
	parser         *gofeed.Parser
	maxAttempts    int
	initialBackoff time.Duration
	maxBackoff     time.Duration
	logger         *slog.Logger
}

func New(cfg Config, logger *slog.Logger) *Fetcher {
	return &Fetcher{
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		parser:         gofeed.NewParser(),
		maxAttempts:    cfg.MaxAttempts,
		initialBackoff: cfg.InitialBackoff,
		maxBackoff:     cfg.MaxBackoff,
		logger:         logger,
	}
}

// Fetch retrieves the feed at url and returns its entries in feed
// order. Transport failures are retried with exponential backoff and
// reported as *domain.FetchError; malformed content is not retried and
// reported as *domain.ParseError.
func (f *Fetcher) Fetch(ctx context.Context, url string) ([]domain.Entry, error) {
	var body []byte
	var err error

	for attempt := 1; attempt <= f.maxAttempts; attempt++ {
		body, err = f.doRequest(ctx, url)
		if err == nil {
			break
		}

		if attempt == f.maxAttempts {
			return nil, &domain.FetchError{URL: url, Err: fmt.Errorf("after %d attempts: %w", f.maxAttempts, err)}
		}

		backoff := f.calculateBackoff(attempt)
		f.logger.Warn("request failed, retrying",
			"url", url,
			"attempt", attempt,
			"backoff", backoff,
			"error", err,
		)

		select {
		case <-ctx.Done():
			return nil, &domain.FetchError{URL: url, Err: ctx.Err()}
		case <-time.After(backoff):
		}
	}

	feed, err := f.parser.Parse(bytes.NewReader(body))
	if err != nil {
		return nil, &domain.ParseError{URL: url, Err: err}
	}

	entries := make([]domain.Entry, 0, len(feed.Items))
	for _, item := range feed.Items {
		entries = append(entries, normalize(item))
	}
	return entries, nil
}

func (f *Fetcher) doRequest(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Accept", "application/rss+xml, application/atom+xml, application/xml, text/xml")
	req.Header.Set("User-Agent", "Notifeed/1.0")

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	return body, nil
}

func (f *Fetcher) calculateBackoff(attempt int) time.Duration {
	backoff := f.initialBackoff
	for i := 1; i < attempt; i++ {
		backoff *= 2
	}
	if backoff > f.maxBackoff {
		backoff = f.maxBackoff
	}
	return backoff
}

func normalize(item *gofeed.Item) domain.Entry {
	entry := domain.Entry{
		ID:      EntryID(item),
		Title:   item.Title,
		Link:    item.Link,
		Summary: item.Description,
	}
	if item.PublishedParsed != nil {
		entry.PublishedAt = *item.PublishedParsed
	} else if item.UpdatedParsed != nil {
		entry.PublishedAt = *item.UpdatedParsed
	}
	if len(item.Authors) > 0 {
		entry.Author = item.Authors[0].Name
	}
	if item.Image != nil {
		entry.ImageURL = item.Image.URL
	}
	return entry
}
