// Package store provides Badger-backed persistence for catalog, guide,
// account, and viewing data.
package store

import (
	"encoding/json/v2"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/dgraph-io/badger/v4"
	"github.com/streamviewapp/streamview-server/internal/domain"
)

// Store wraps a Badger database instance.
type Store struct {
	db     *badger.DB
	logger *slog.Logger

	// Generic entities
	Users       *Entity[domain.User]
	Content     *Entity[domain.Content]
	Channels    *Entity[domain.Channel]
	Preferences *Entity[domain.UserPreference]
}

// New creates a new Store instance with the given database path.
func New(path string, logger *slog.Logger) (*Store, error) {
	opts := badger.DefaultOptions(path)
	opts.Logger = nil            // Disable Badger's internal logging
	opts.SyncWrites = true       // Ensure writes are synced to disk to prevent corruption on crashes
	opts.CompactL0OnClose = true // Compact L0 tables on close for faster startup

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open badger db: %w", err)
	}

	store := &Store{
		db:     db,
		logger: logger,
	}

	// Initialize generic entities
	store.initUsers()
	store.initContent()
	store.initChannels()
	store.initPreferences()

	if logger != nil {
		logger.Info("Badger database opened successfully", "path", path)
	}

	return store, nil
}

// Close gracefully closes the database connection.
func (s *Store) Close() error {
	if s.logger != nil {
		s.logger.Info("Closing database connection")
	}
	return s.db.Close()
}

// Helper methods for database operations.

// get retrieves a value by key.
func (s *Store) get(key []byte, dest any) error {
	return s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(key)
		if err != nil {
			return err
		}

		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, dest)
		})
	})
}

// set stores a value by key.
func (s *Store) set(key []byte, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal value: %w", err)
	}

	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(key, data)
	})
}

// delete removes a key from the database.
func (s *Store) delete(key []byte) error {
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(key)
	})
}

// exists checks if a key exists.
func (s *Store) exists(key []byte) (bool, error) {
	err := s.db.View(func(txn *badger.Txn) error {
		_, err := txn.Get(key)
		return err
	})

	if errors.Is(err, badger.ErrKeyNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// normalizeUsername lowercases usernames for case-insensitive lookup.
func normalizeUsername(username string) string {
	return strings.ToLower(strings.TrimSpace(username))
}

// normalizeEmail lowercases email addresses for case-insensitive lookup.
func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// initUsers initializes the Users entity on the store.
// Username and email are indexed case-insensitively.
func (s *Store) initUsers() {
	s.Users = NewEntity[domain.User](s, "user:").
		WithIndexTransform("username",
			func(u *domain.User) []string {
				return []string{normalizeUsername(u.Username)}
			},
			normalizeUsername,
		).
		WithIndexTransform("email",
			func(u *domain.User) []string {
				return []string{normalizeEmail(u.Email)}
			},
			normalizeEmail,
		)
}

// initContent initializes the Content entity on the store.
func (s *Store) initContent() {
	s.Content = NewEntity[domain.Content](s, "cnt:")
}

// initChannels initializes the Channels entity on the store.
// Channel numbers are unique via the number index.
func (s *Store) initChannels() {
	s.Channels = NewEntity[domain.Channel](s, "chn:").
		WithIndex("number", func(c *domain.Channel) []string {
			return []string{fmt.Sprintf("%d", c.ChannelNumber)}
		})
}

// initPreferences initializes the UserPreferences entity on the store.
// One preference record per user, found via the user index.
func (s *Store) initPreferences() {
	s.Preferences = NewEntity[domain.UserPreference](s, "pref:").
		WithIndex("user", func(p *domain.UserPreference) []string {
			return []string{p.UserID}
		})
}
