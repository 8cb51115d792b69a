package domain

import "time"

// NewsArticle is one market-news item shown in the feed.
type NewsArticle struct {
	Title       string    `json:"title"`
	Source      string    `json:"source"`
	URL         string    `json:"url,omitempty"`
	Summary     string    `json:"summary"`
	PublishedAt time.Time `json:"published_at"`
}
