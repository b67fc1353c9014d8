package domain

import "time"

// Article is a normalized, deduplicated news record derived from one feed item.
// Immutable after normalization except for Image, which enrichment may set
// once from nil to a discovered URL.
type Article struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Link        string     `json:"link"`
	Description string     `json:"description"`
	Source      string     `json:"source"`
	PublishedAt *time.Time `json:"publishedAt"`
	Image       *string    `json:"image"`
}

// ParsedFeed is the provider-agnostic result of fetching one feed
type ParsedFeed struct {
	Title string
	Link  string
	Items []ParsedItem
}

// ParsedItem carries the raw per-item fields as the feed provided them.
// Provider-specific shape differences (guid vs link, summary vs content)
// are resolved once, at normalization time.
type ParsedItem struct {
	Title       string
	Link        string
	GUID        string
	Description string
	Content     string
	Published   *time.Time
	ImageURL    string
}
