package domain

import (
	"errors"
	"fmt"
)

// Sentinels for configuration operations. CLI commands surface these
// to the operator without performing partial writes.
var (
	ErrNotFound  = errors.New("not found")
	ErrDuplicate = errors.New("already exists")
)

// FetchError means a feed could not be retrieved (network, timeout,
// unexpected HTTP status). Feed-scoped and retried on the next cycle.
type FetchError struct {
	URL string
	Err error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// ParseError means a feed was retrieved but its content could not be
// parsed as RSS/Atom/JSON feed.
type ParseError struct {
	URL string
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse %s: %v", e.URL, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// DeliveryError means a single channel send failed. Terminal for that
// attempt; the entry is already recorded as seen.
type DeliveryError struct {
	Channel string
	EntryID string
	Err     error
}

func (e *DeliveryError) Error() string {
	return fmt.Sprintf("deliver entry %s to channel %s: %v", e.EntryID, e.Channel, e.Err)
}

func (e *DeliveryError) Unwrap() error { return e.Err }
