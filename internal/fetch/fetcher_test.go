package fetch

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"sync/atomic"
	"testing"
	"time"

	"github.com/mmcdole/gofeed"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"notifeed/internal/domain"
)

const rssFixture = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0">
  <channel>
    <title>Example Blog</title>
    <link>https://blog.example.com</link>
    <item>
      <title>Second post</title>
      <link>https://blog.example.com/second</link>
      <guid>blog-2</guid>
      <description>More words</description>
      <author>alice@example.com (Alice)</author>
      <pubDate>Tue, 02 Jan 2024 10:00:00 +0000</pubDate>
    </item>
    <item>
      <title>First post</title>
      <link>https://blog.example.com/first</link>
      <guid>blog-1</guid>
      <description>Some words</description>
      <pubDate>Mon, 01 Jan 2024 10:00:00 +0000</pubDate>
    </item>
  </channel>
</rss>`

const atomFixture = `<?xml version="1.0" encoding="utf-8"?>
<feed xmlns="http://www.w3.org/2005/Atom">
  <title>Example Atom</title>
  <entry>
    <title>Atom post</title>
    <link href="https://atom.example.com/post"/>
    <id>urn:uuid:atom-1</id>
    <updated>2024-01-03T12:00:00Z</updated>
    <summary>Atom words</summary>
  </entry>
</feed>`

func testFetcher(t *testing.T, cfg Config) *Fetcher {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
	return New(cfg, logger)
}

func fastConfig() Config {
	return Config{
		Timeout:        5 * time.Second,
		MaxAttempts:    3,
		InitialBackoff: time.Millisecond,
		MaxBackoff:     5 * time.Millisecond,
	}
}

func TestFetch_RSS(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Contains(t, r.Header.Get("Accept"), "application/rss+xml")
		assert.Equal(t, "Notifeed/1.0", r.Header.Get("User-Agent"))
		w.Write([]byte(rssFixture))
	}))
	defer server.Close()

	entries, err := testFetcher(t, fastConfig()).Fetch(context.Background(), server.URL)

	require.NoError(t, err)
	require.Len(t, entries, 2)

	assert.Equal(t, "blog-2", entries[0].ID)
	assert.Equal(t, "Second post", entries[0].Title)
	assert.Equal(t, "https://blog.example.com/second", entries[0].Link)
	assert.Equal(t, "More words", entries[0].Summary)
	assert.Equal(t, "Alice", entries[0].Author)
	assert.Equal(t, time.Date(2024, 1, 2, 10, 0, 0, 0, time.UTC), entries[0].PublishedAt.UTC())

	assert.Equal(t, "blog-1", entries[1].ID)
	assert.Empty(t, entries[1].Author)
}

func TestFetch_Atom(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(atomFixture))
	}))
	defer server.Close()

	entries, err := testFetcher(t, fastConfig()).Fetch(context.Background(), server.URL)

	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "urn:uuid:atom-1", entries[0].ID)
	assert.Equal(t, "Atom post", entries[0].Title)
	// Atom has no pubDate; the updated timestamp stands in.
	assert.Equal(t, time.Date(2024, 1, 3, 12, 0, 0, 0, time.UTC), entries[0].PublishedAt.UTC())
}

func TestFetch_RetriesThenSucceeds(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Write([]byte(rssFixture))
	}))
	defer server.Close()

	entries, err := testFetcher(t, fastConfig()).Fetch(context.Background(), server.URL)

	require.NoError(t, err)
	assert.Len(t, entries, 2)
	assert.Equal(t, int32(3), calls.Load())
}

func TestFetch_ExhaustedRetriesReturnFetchError(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	_, err := testFetcher(t, fastConfig()).Fetch(context.Background(), server.URL)

	require.Error(t, err)
	var fetchErr *domain.FetchError
	assert.ErrorAs(t, err, &fetchErr)
	assert.Equal(t, server.URL, fetchErr.URL)
	assert.Equal(t, int32(3), calls.Load())
}

func TestFetch_MalformedContentIsNotRetried(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.Write([]byte("this is not a feed"))
	}))
	defer server.Close()

	_, err := testFetcher(t, fastConfig()).Fetch(context.Background(), server.URL)

	require.Error(t, err)
	var parseErr *domain.ParseError
	assert.ErrorAs(t, err, &parseErr)
	assert.Equal(t, int32(1), calls.Load())
}

func TestFetch_ContextCancellationStopsRetrying(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	cfg := fastConfig()
	cfg.InitialBackoff = time.Minute

	_, err := testFetcher(t, cfg).Fetch(ctx, server.URL)

	var fetchErr *domain.FetchError
	require.ErrorAs(t, err, &fetchErr)
	assert.ErrorIs(t, fetchErr.Err, context.Canceled)
}

func TestEntryID_PrefersGUID(t *testing.T) {
	id := EntryID(&gofeed.Item{GUID: "guid-1", Link: "https://example.com/post"})
	assert.Equal(t, "guid-1", id)
}

func TestEntryID_FallsBackToLink(t *testing.T) {
	id := EntryID(&gofeed.Item{Link: "https://example.com/post"})
	assert.Equal(t, "https://example.com/post", id)
}

func TestEntryID_DigestIsStable(t *testing.T) {
	item := &gofeed.Item{Title: "A post", Published: "Mon, 01 Jan 2024 10:00:00 +0000"}

	first := EntryID(item)
	second := EntryID(item)

	assert.Equal(t, first, second)
	assert.Len(t, first, 64)
}

func TestEntryID_DigestSeparatesFields(t *testing.T) {
	a := EntryID(&gofeed.Item{Title: "ab", Published: "c"})
	b := EntryID(&gofeed.Item{Title: "a", Published: "bc"})
	assert.NotEqual(t, a, b)
}
