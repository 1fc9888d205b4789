package domain

import "time"

// WildcardFeedID marks a binding that applies to every current and future feed.
const WildcardFeedID int64 = 0

type Feed struct {
	ID        int64     `db:"id"`
	Name      string    `db:"name"`
	URL       string    `db:"url"`
	CreatedAt time.Time `db:"created_at"`
}

type Channel struct {
	ID        int64     `db:"id"`
	Name      string    `db:"name"`
	Type      string    `db:"type"`
	Endpoint  string    `db:"endpoint"`
	AuthToken *string   `db:"auth_token"`
	CreatedAt time.Time `db:"created_at"`
}

// Binding couples a feed to a notification channel. FeedID is
// WildcardFeedID for bindings that cover all feeds.
type Binding struct {
	ID        int64 `db:"id"`
	FeedID    int64 `db:"feed_id"`
	ChannelID int64 `db:"channel_id"`
}

type SeenEntry struct {
	FeedID      int64     `db:"feed_id"`
	EntryID     string    `db:"entry_id"`
	FirstSeenAt time.Time `db:"first_seen_at"`
}

// PollState tracks per-feed poll bookkeeping. A feed without a row has
// never been polled, which is distinct from a feed with no seen entries.
type PollState struct {
	FeedID        int64     `db:"feed_id"`
	InitializedAt time.Time `db:"initialized_at"`
	LastPolledAt  time.Time `db:"last_polled_at"`
	TotalNotified int64     `db:"total_notified"`
}
