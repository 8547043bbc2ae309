// Package search provides full-text search functionality using Bleve.
// It enables federated search across catalog entries and channels with
// genre filtering, fuzzy matching, and relevance ranking.
package search

import (
	"github.com/streamviewapp/streamview-server/internal/domain"
)

// DocType represents the type of document in the unified index.
type DocType string

// Document types for the search index.
const (
	DocTypeContent DocType = "content"
	DocTypeChannel DocType = "channel"
)

// SearchDocument is the unified document structure for the Bleve index.
// Catalog entries and channels are indexed together with type discrimination
// so a single query can surface both.
type SearchDocument struct {
	// Identity
	ID   string  `json:"id"`   // Original entity ID (cnt_xxx, chn_xxx)
	Type DocType `json:"type"` // Discriminator for result grouping

	// Primary searchable text
	// Content: title, Channel: name
	Name string `json:"name"`

	// Content-specific fields (empty for channels)
	Description string `json:"description,omitempty"`
	ContentType string `json:"content_type,omitempty"` // movie, series, vod, live_tv
	Genre       string `json:"genre,omitempty"`

	// Channel-specific fields
	Category      string `json:"category,omitempty"`
	Language      string `json:"language,omitempty"`
	ChannelNumber int    `json:"channel_number,omitempty"`

	// Numeric fields for range queries and sorting
	Rating float64 `json:"rating,omitempty"`

	// Timestamps for sorting
	CreatedAt int64 `json:"created_at"` // Unix millis
	UpdatedAt int64 `json:"updated_at"` // Unix millis
}

// ToMap converts the document to a map with lowercase field names.
// This ensures field names match the Bleve index mapping.
// Bleve by default uses Go struct field names (capitalized), but our
// mapping uses lowercase names, so we convert explicitly.
func (d *SearchDocument) ToMap() map[string]interface{} {
	m := map[string]interface{}{
		"id":         d.ID,
		"type":       string(d.Type),
		"name":       d.Name,
		"created_at": d.CreatedAt,
		"updated_at": d.UpdatedAt,
	}

	// Optional fields - only add if non-empty
	if d.Description != "" {
		m["description"] = d.Description
	}
	if d.ContentType != "" {
		m["content_type"] = d.ContentType
	}
	if d.Genre != "" {
		m["genre"] = d.Genre
	}
	if d.Category != "" {
		m["category"] = d.Category
	}
	if d.Language != "" {
		m["language"] = d.Language
	}
	if d.ChannelNumber > 0 {
		m["channel_number"] = d.ChannelNumber
	}
	if d.Rating > 0 {
		m["rating"] = d.Rating
	}

	return m
}

// ContentToSearchDocument converts a catalog entry to a SearchDocument.
func ContentToSearchDocument(c *domain.Content) *SearchDocument {
	return &SearchDocument{
		ID:          c.ID,
		Type:        DocTypeContent,
		Name:        c.Title,
		Description: c.Description,
		ContentType: string(c.Type),
		Genre:       c.Genre,
		Rating:      c.RatingOrZero(),
		CreatedAt:   c.CreatedAt.UnixMilli(),
		UpdatedAt:   c.UpdatedAt.UnixMilli(),
	}
}

// ChannelToSearchDocument converts a channel to a SearchDocument.
func ChannelToSearchDocument(c *domain.Channel) *SearchDocument {
	return &SearchDocument{
		ID:            c.ID,
		Type:          DocTypeChannel,
		Name:          c.Name,
		Category:      c.Category,
		Language:      c.Language,
		ChannelNumber: c.ChannelNumber,
		CreatedAt:     c.CreatedAt.UnixMilli(),
		UpdatedAt:     c.UpdatedAt.UnixMilli(),
	}
}
