package domain

import "time"

// Channel is a live TV channel with a fixed numeric slot.
type Channel struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	StreamURL     string    `json:"stream_url"`
	LogoURL       string    `json:"logo_url,omitempty"`
	ChannelNumber int       `json:"channel_number"`
	Category      string    `json:"category,omitempty"`
	Language      string    `json:"language,omitempty"`
	IsActive      bool      `json:"is_active"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// HasCategory reports whether the channel carries a category tag.
func (c *Channel) HasCategory() bool {
	return c.Category != ""
}

// InitTimestamps sets creation and update times to now.
func (c *Channel) InitTimestamps() {
	now := time.Now().UTC()
	c.CreatedAt = now
	c.UpdatedAt = now
}

// Touch updates the modification timestamp.
func (c *Channel) Touch() {
	c.UpdatedAt = time.Now().UTC()
}
