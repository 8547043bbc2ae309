package service

import (
	"context"
	"log/slog"
	"strings"

	domainerrors "github.com/streamviewapp/streamview-server/internal/errors"
	"github.com/streamviewapp/streamview-server/internal/store"
)

// StreamingService resolves playback URLs for content and channels.
type StreamingService struct {
	store   *store.Store
	baseURL string
	logger  *slog.Logger
}

// NewStreamingService creates a new streaming service.
// baseURL, when set, is prepended to relative stream paths.
func NewStreamingService(store *store.Store, baseURL string, logger *slog.Logger) *StreamingService {
	return &StreamingService{
		store:   store,
		baseURL: strings.TrimRight(baseURL, "/"),
		logger:  logger,
	}
}

// StreamURL is a resolved playback location.
type StreamURL struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

// ResolveContentURL returns the playback URL for a catalog entry.
func (s *StreamingService) ResolveContentURL(ctx context.Context, contentID string) (*StreamURL, error) {
	content, err := s.store.GetContent(ctx, contentID)
	if err != nil {
		return nil, err
	}

	return &StreamURL{
		ID:  content.ID,
		URL: s.resolve(content.StreamURL),
	}, nil
}

// ResolveChannelURL returns the playback URL for a channel.
// Inactive channels are not streamable.
func (s *StreamingService) ResolveChannelURL(ctx context.Context, channelID string) (*StreamURL, error) {
	channel, err := s.store.GetChannel(ctx, channelID)
	if err != nil {
		return nil, err
	}

	if !channel.IsActive {
		return nil, domainerrors.NotFound("channel is not active")
	}

	return &StreamURL{
		ID:  channel.ID,
		URL: s.resolve(channel.StreamURL),
	}, nil
}

// resolve prepends the configured base URL to relative paths.
// Absolute URLs pass through untouched.
func (s *StreamingService) resolve(streamURL string) string {
	if s.baseURL == "" {
		return streamURL
	}
	if strings.Contains(streamURL, "://") {
		return streamURL
	}
	return s.baseURL + "/" + strings.TrimLeft(streamURL, "/")
}
