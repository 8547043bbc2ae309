package store

import (
	"context"
	"errors"

	"github.com/streamviewapp/streamview-server/internal/domain"
)

// CreateContent stores a new catalog entry.
func (s *Store) CreateContent(ctx context.Context, content *domain.Content) error {
	return s.Content.Create(ctx, content.ID, content)
}

// GetContent retrieves a catalog entry by ID.
func (s *Store) GetContent(ctx context.Context, id string) (*domain.Content, error) {
	content, err := s.Content.Get(ctx, id)
	if errors.Is(err, ErrNotFound) {
		return nil, ErrContentNotFound
	}
	return content, err
}

// UpdateContent updates an existing catalog entry.
func (s *Store) UpdateContent(ctx context.Context, content *domain.Content) error {
	err := s.Content.Update(ctx, content.ID, content)
	if errors.Is(err, ErrNotFound) {
		return ErrContentNotFound
	}
	return err
}

// DeleteContent removes a catalog entry. Idempotent.
func (s *Store) DeleteContent(ctx context.Context, id string) error {
	return s.Content.Delete(ctx, id)
}

// ListContent returns all catalog entries.
func (s *Store) ListContent(ctx context.Context) ([]*domain.Content, error) {
	return s.Content.ListAll(ctx)
}

// GetContentBatch fetches multiple catalog entries by ID in one pass.
// Missing IDs are skipped rather than reported as errors; the result map
// contains only entries that exist.
func (s *Store) GetContentBatch(ctx context.Context, ids []string) (map[string]*domain.Content, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	result := make(map[string]*domain.Content, len(ids))
	for _, id := range ids {
		if _, ok := result[id]; ok {
			continue
		}
		content, err := s.Content.Get(ctx, id)
		if errors.Is(err, ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		result[id] = content
	}
	return result, nil
}
