package store

import (
	"context"
	"errors"
	"strconv"

	"github.com/streamviewapp/streamview-server/internal/domain"
)

// CreateChannel stores a new channel.
// Channel numbers must be unique across the lineup.
func (s *Store) CreateChannel(ctx context.Context, channel *domain.Channel) error {
	return s.Channels.Create(ctx, channel.ID, channel)
}

// GetChannel retrieves a channel by ID.
func (s *Store) GetChannel(ctx context.Context, id string) (*domain.Channel, error) {
	channel, err := s.Channels.Get(ctx, id)
	if errors.Is(err, ErrNotFound) {
		return nil, ErrChannelNotFound
	}
	return channel, err
}

// GetChannelByNumber retrieves a channel by its lineup number.
func (s *Store) GetChannelByNumber(ctx context.Context, number int) (*domain.Channel, error) {
	channel, err := s.Channels.GetByIndex(ctx, "number", strconv.Itoa(number))
	if errors.Is(err, ErrNotFound) {
		return nil, ErrChannelNotFound
	}
	return channel, err
}

// UpdateChannel updates an existing channel.
func (s *Store) UpdateChannel(ctx context.Context, channel *domain.Channel) error {
	err := s.Channels.Update(ctx, channel.ID, channel)
	if errors.Is(err, ErrNotFound) {
		return ErrChannelNotFound
	}
	return err
}

// DeleteChannel removes a channel. Idempotent.
func (s *Store) DeleteChannel(ctx context.Context, id string) error {
	return s.Channels.Delete(ctx, id)
}

// ListChannels returns all channels.
func (s *Store) ListChannels(ctx context.Context) ([]*domain.Channel, error) {
	return s.Channels.ListAll(ctx)
}

// GetChannelBatch fetches multiple channels by ID in one pass.
// Missing IDs are skipped; the result map contains only channels that exist.
func (s *Store) GetChannelBatch(ctx context.Context, ids []string) (map[string]*domain.Channel, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	result := make(map[string]*domain.Channel, len(ids))
	for _, id := range ids {
		if _, ok := result[id]; ok {
			continue
		}
		channel, err := s.Channels.Get(ctx, id)
		if errors.Is(err, ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		result[id] = channel
	}
	return result, nil
}
