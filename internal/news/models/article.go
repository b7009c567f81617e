package models

import "time"

// DefaultCategory is the bucket articles land in when no category was requested.
const DefaultCategory = "general"

// Article represents a cached news article, keyed by URL.
// IsFavorite is owned by this application; the remote feed never supplies it.
type Article struct {
	URL         string    `json:"url"`
	SourceName  string    `json:"source_name"`
	Author      string    `json:"author,omitempty"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	ImageURL    string    `json:"image_url,omitempty"`
	PublishedAt string    `json:"published_at"`
	Content     string    `json:"content,omitempty"`
	Category    string    `json:"category"`
	IsFavorite  bool      `json:"is_favorite"`
	FetchedAt   time.Time `json:"fetched_at"`
}

// HeadlinesPage represents the result of one fetch-and-merge cycle.
// HasMore mirrors the feed's implicit pagination signal: an empty page
// means there are no further pages for this category.
type HeadlinesPage struct {
	Articles []Article `json:"articles"`
	Category string    `json:"category"`
	Page     int       `json:"page"`
	HasMore  bool      `json:"has_more"`
}
