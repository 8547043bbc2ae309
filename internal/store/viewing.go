package store

import (
	"context"
	"encoding/json/v2"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/dgraph-io/badger/v4"
	"github.com/streamviewapp/streamview-server/internal/domain"
)

const (
	sessionKeyPrefix       = "sess:"
	sessionByUserPrefix    = "sess:idx:user:"
	sessionByContentPrefix = "sess:idx:content:"
	sessionByChannelPrefix = "sess:idx:channel:"
)

// CreateViewingSession stores a session and its indexes atomically.
// Content and channel indexes are only written when the session
// references one, since live TV sessions have no content ID and
// on-demand sessions have no channel ID.
func (s *Store) CreateViewingSession(ctx context.Context, session *domain.ViewingSession) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}

	return s.db.Update(func(txn *badger.Txn) error {
		// Primary key
		if err := txn.Set([]byte(sessionKeyPrefix+session.ID), data); err != nil {
			return fmt.Errorf("set session: %w", err)
		}

		// Index: by user
		userIdx := sessionByUserPrefix + session.UserID + ":" + session.ID
		if err := txn.Set([]byte(userIdx), []byte(session.ID)); err != nil {
			return fmt.Errorf("set user index: %w", err)
		}

		// Index: by content
		if session.ContentID != "" {
			contentIdx := sessionByContentPrefix + session.ContentID + ":" + session.ID
			if err := txn.Set([]byte(contentIdx), []byte(session.ID)); err != nil {
				return fmt.Errorf("set content index: %w", err)
			}
		}

		// Index: by channel
		if session.ChannelID != "" {
			channelIdx := sessionByChannelPrefix + session.ChannelID + ":" + session.ID
			if err := txn.Set([]byte(channelIdx), []byte(session.ID)); err != nil {
				return fmt.Errorf("set channel index: %w", err)
			}
		}

		return nil
	})
}

// GetViewingSession retrieves a session by ID.
func (s *Store) GetViewingSession(ctx context.Context, id string) (*domain.ViewingSession, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var session domain.ViewingSession
	err := s.db.View(func(txn *badger.Txn) error {
		key := buildKey(sessionKeyPrefix, id)
		defer releaseKey(key)

		item, err := txn.Get(key)
		if errors.Is(err, badger.ErrKeyNotFound) {
			return ErrSessionNotFound
		}
		if err != nil {
			return err
		}

		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &session)
		})
	})

	if err != nil {
		return nil, err
	}
	return &session, nil
}

// UpdateViewingSession rewrites a session under its primary key.
// The user, content, and channel references never change after start,
// so the indexes stay as written by CreateViewingSession.
func (s *Store) UpdateViewingSession(ctx context.Context, session *domain.ViewingSession) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}

	return s.db.Update(func(txn *badger.Txn) error {
		key := []byte(sessionKeyPrefix + session.ID)
		if _, err := txn.Get(key); errors.Is(err, badger.ErrKeyNotFound) {
			return ErrSessionNotFound
		} else if err != nil {
			return err
		}
		return txn.Set(key, data)
	})
}

// GetSessionsForUser retrieves all sessions for a user.
func (s *Store) GetSessionsForUser(ctx context.Context, userID string) ([]*domain.ViewingSession, error) {
	return s.getSessionsByPrefix(ctx, sessionByUserPrefix+userID+":")
}

// GetSessionsForContent retrieves all sessions that reference a catalog entry.
func (s *Store) GetSessionsForContent(ctx context.Context, contentID string) ([]*domain.ViewingSession, error) {
	return s.getSessionsByPrefix(ctx, sessionByContentPrefix+contentID+":")
}

// GetSessionsForChannel retrieves all sessions that reference a channel.
func (s *Store) GetSessionsForChannel(ctx context.Context, channelID string) ([]*domain.ViewingSession, error) {
	return s.getSessionsByPrefix(ctx, sessionByChannelPrefix+channelID+":")
}

// getSessionsByPrefix retrieves sessions matching an index prefix.
// Uses a single transaction to collect IDs and fetch all sessions (no N+1).
func (s *Store) getSessionsByPrefix(ctx context.Context, prefix string) ([]*domain.ViewingSession, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var sessions []*domain.ViewingSession

	err := s.db.View(func(txn *badger.Txn) error {
		// First pass: collect session IDs from index
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(prefix)
		opts.PrefetchValues = true

		it := txn.NewIterator(opts)
		defer it.Close()

		var sessionIDs []string
		for it.Seek([]byte(prefix)); it.ValidForPrefix([]byte(prefix)); it.Next() {
			err := it.Item().Value(func(val []byte) error {
				sessionIDs = append(sessionIDs, string(val))
				return nil
			})
			if err != nil {
				return err
			}
		}

		// Second pass: batch fetch all sessions in same transaction
		sessions = make([]*domain.ViewingSession, 0, len(sessionIDs))
		for _, id := range sessionIDs {
			item, err := txn.Get([]byte(sessionKeyPrefix + id))
			if err != nil {
				continue // Skip missing sessions
			}

			var session domain.ViewingSession
			if err := item.Value(func(val []byte) error {
				return json.Unmarshal(val, &session)
			}); err != nil {
				continue // Skip corrupt sessions
			}
			sessions = append(sessions, &session)
		}

		return nil
	})

	if err != nil {
		return nil, err
	}

	return sessions, nil
}

// ListViewingSessions returns every session in the store.
// Used by the aggregate view counters that span all users.
func (s *Store) ListViewingSessions(ctx context.Context) ([]*domain.ViewingSession, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var sessions []*domain.ViewingSession

	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(sessionKeyPrefix)
		opts.PrefetchValues = true

		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek([]byte(sessionKeyPrefix)); it.ValidForPrefix([]byte(sessionKeyPrefix)); it.Next() {
			key := string(it.Item().Key())
			if strings.HasPrefix(key[len(sessionKeyPrefix):], "idx:") {
				continue
			}

			var session domain.ViewingSession
			err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &session)
			})
			if err != nil {
				return err
			}
			sessions = append(sessions, &session)
		}
		return nil
	})

	if err != nil {
		return nil, err
	}
	return sessions, nil
}

// GetRecentSessionsForUser returns a user's sessions ordered by start
// time descending, newest first, capped at limit. A limit of 0 or less
// returns everything.
func (s *Store) GetRecentSessionsForUser(ctx context.Context, userID string, limit int) ([]*domain.ViewingSession, error) {
	sessions, err := s.GetSessionsForUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	slices.SortFunc(sessions, func(a, b *domain.ViewingSession) int {
		return b.StartTime.Compare(a.StartTime)
	})

	if limit > 0 && len(sessions) > limit {
		sessions = sessions[:limit]
	}

	return sessions, nil
}
