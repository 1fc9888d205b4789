package service

import "sync"

// feedLocks hands out one mutex per feed id so concurrent cycles can
// never interleave detect+commit for the same feed, while different
// feeds proceed independently.
type feedLocks struct {
	mu    sync.Mutex
	locks map[int64]*sync.Mutex
}

func newFeedLocks() *feedLocks {
	return &feedLocks{locks: make(map[int64]*sync.Mutex)}
}

// Lock acquires the mutex for a feed id and returns its unlock func.
func (l *feedLocks) Lock(feedID int64) func() {
	l.mu.Lock()
	m, ok := l.locks[feedID]
	if !ok {
		m = &sync.Mutex{}
		l.locks[feedID] = m
	}
	l.mu.Unlock()

	m.Lock()
	return m.Unlock
}
