package domain

import (
	"strings"
	"time"
)

// ContentType classifies a catalog entry.
type ContentType string

const (
	// ContentTypeLiveTV is a live television stream.
	ContentTypeLiveTV ContentType = "live_tv"
	// ContentTypeVOD is on-demand video.
	ContentTypeVOD ContentType = "vod"
	// ContentTypeSeries is episodic content.
	ContentTypeSeries ContentType = "series"
	// ContentTypeMovie is a feature-length film.
	ContentTypeMovie ContentType = "movie"
)

// ParseContentType converts a string to a ContentType, case-insensitively.
// Returns false if the value does not name a known type.
func ParseContentType(s string) (ContentType, bool) {
	switch strings.ToLower(s) {
	case "live_tv", "livetv", "live":
		return ContentTypeLiveTV, true
	case "vod":
		return ContentTypeVOD, true
	case "series":
		return ContentTypeSeries, true
	case "movie":
		return ContentTypeMovie, true
	default:
		return "", false
	}
}

// Content is a catalog entry: a live stream, a movie, a series, or VOD.
type Content struct {
	ID              string      `json:"id"`
	Title           string      `json:"title"`
	Description     string      `json:"description,omitempty"`
	StreamURL       string      `json:"stream_url"`
	ThumbnailURL    string      `json:"thumbnail_url,omitempty"`
	Type            ContentType `json:"type"`
	DurationSeconds *int64      `json:"duration_seconds,omitempty"`
	ReleaseDate     *time.Time  `json:"release_date,omitempty"`
	Genre           string      `json:"genre,omitempty"`
	Rating          *float64    `json:"rating,omitempty"`
	CreatedAt       time.Time   `json:"created_at"`
	UpdatedAt       time.Time   `json:"updated_at"`
}

// RatingOrZero returns the rating, treating an unset rating as 0.
// Ranking passes use this so unrated items sort last.
func (c *Content) RatingOrZero() float64 {
	if c.Rating == nil {
		return 0
	}
	return *c.Rating
}

// HasGenre reports whether the entry carries a genre tag.
func (c *Content) HasGenre() bool {
	return c.Genre != ""
}

// InitTimestamps sets creation and update times to now.
func (c *Content) InitTimestamps() {
	now := time.Now().UTC()
	c.CreatedAt = now
	c.UpdatedAt = now
}

// Touch updates the modification timestamp.
func (c *Content) Touch() {
	c.UpdatedAt = time.Now().UTC()
}
