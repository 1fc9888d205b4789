package domain

import "time"

// Entry is a normalized feed item. It is never persisted as a whole;
// only its ID ends up in the seen set.
type Entry struct {
	ID          string
	Title       string
	Link        string
	Summary     string
	Author      string
	ImageURL    string
	PublishedAt time.Time
}
