package models

import "time"

// RawPage is the markup retrieved for a URL by one of the fetch strategies.
type RawPage struct {
	URL        string
	FinalURL   string
	Markup     string
	StatusCode int
	Strategy   string
	FetchedAt  time.Time
}
