package domain

import "time"

// EPGProgram is a scheduled program in the electronic program guide.
type EPGProgram struct {
	ID          string    `json:"id"`
	ChannelID   string    `json:"channel_id"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	StartTime   time.Time `json:"start_time"`
	EndTime     time.Time `json:"end_time"`
	Category    string    `json:"category,omitempty"`
	Rating      string    `json:"rating,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// IsAiringAt reports whether the program is on air at the given instant.
// Both boundaries are inclusive.
func (p *EPGProgram) IsAiringAt(t time.Time) bool {
	return !t.Before(p.StartTime) && !t.After(p.EndTime)
}
