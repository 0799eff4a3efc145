// Package storage remembers which articles have already been announced.
package storage

import (
	"context"
	"time"
)

// Article is one announced story.
type Article struct {
	ID      int64     `json:"id"`
	Title   string    `json:"title"`
	URL     string    `json:"url"`
	Summary string    `json:"summary,omitempty"`
	AddedAt time.Time `json:"added_at"`
}

// ArticleStore is an idempotent sink keyed by article URL.
type ArticleStore interface {
	Exists(ctx context.Context, url string) (bool, error)
	// Add stores the article unless its URL is already known. added is false for a duplicate.
	Add(ctx context.Context, title, url, summary string) (id int64, added bool, err error)
	// Count returns the number of stored articles.
	Count(ctx context.Context) (int, error)
	Close() error
}
