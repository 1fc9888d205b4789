package domain

import "time"

// PollStats holds statistics about one poll cycle.
type PollStats struct {
	Feeds      int
	Failed     int
	Seeded     int
	NewEntries int
	Sent       int
	SendErrors int
	Duration   time.Duration
}
