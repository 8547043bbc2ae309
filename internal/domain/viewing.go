package domain

import (
	"math"
	"time"
)

// ViewingSession records one playback session for a user.
// A session references either a catalog entry or a channel (neither is
// enforced; a session may carry both or neither).
//
// Once Completed is true, EndTime is set and DurationSeconds equals the
// rounded wall-clock distance from StartTime to EndTime. Repeated
// completion recomputes both against the current clock.
type ViewingSession struct {
	ID              string     `json:"id"`
	UserID          string     `json:"user_id"`
	ContentID       string     `json:"content_id,omitempty"`
	ChannelID       string     `json:"channel_id,omitempty"`
	StartTime       time.Time  `json:"start_time"`
	EndTime         *time.Time `json:"end_time,omitempty"`
	DurationSeconds *int64     `json:"duration_seconds,omitempty"`
	ProgressSeconds float64    `json:"progress_seconds"`
	Completed       bool       `json:"completed"`
	DeviceInfo      string     `json:"device_info,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
}

// NewViewingSession creates a session at playback start.
func NewViewingSession(id, userID, contentID, channelID, deviceInfo string) *ViewingSession {
	now := time.Now().UTC()
	return &ViewingSession{
		ID:         id,
		UserID:     userID,
		ContentID:  contentID,
		ChannelID:  channelID,
		StartTime:  now,
		Completed:  false,
		DeviceInfo: deviceInfo,
		CreatedAt:  now,
	}
}

// Complete marks the session finished at the given instant and derives
// the duration from the session start. Calling it again recomputes the
// end time and duration (last call wins).
func (s *ViewingSession) Complete(at time.Time) {
	s.Completed = true
	s.EndTime = &at
	duration := int64(math.Round(at.Sub(s.StartTime).Seconds()))
	s.DurationSeconds = &duration
}

// DurationOrZero returns the recorded duration, or 0 when unset.
func (s *ViewingSession) DurationOrZero() int64 {
	if s.DurationSeconds == nil {
		return 0
	}
	return *s.DurationSeconds
}
