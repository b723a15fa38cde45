package models

import "time"

// NewsItem is one headline. DisplayTime is "HH:MM" local, "00:00" when PublishedAt is unknown.
type NewsItem struct {
	Title       string    `json:"title"`
	Link        string    `json:"link"`
	PublishedAt time.Time `json:"published_at"`
	DisplayTime string    `json:"display_time"`
}
