package store

import (
	"context"
	"encoding/json/v2"
	"errors"
	"fmt"
	"strings"

	"github.com/dgraph-io/badger/v4"
	"github.com/streamviewapp/streamview-server/internal/domain"
)

const (
	programKeyPrefix       = "prg:"
	programByChannelPrefix = "prg:idx:channel:"
)

// CreateProgram stores a guide program and its channel index atomically.
func (s *Store) CreateProgram(ctx context.Context, program *domain.EPGProgram) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := json.Marshal(program)
	if err != nil {
		return fmt.Errorf("marshal program: %w", err)
	}

	return s.db.Update(func(txn *badger.Txn) error {
		key := []byte(programKeyPrefix + program.ID)
		if _, err := txn.Get(key); err == nil {
			return ErrAlreadyExists.WithMessage("program already exists")
		} else if !errors.Is(err, badger.ErrKeyNotFound) {
			return err
		}

		if err := txn.Set(key, data); err != nil {
			return fmt.Errorf("set program: %w", err)
		}

		channelIdx := programByChannelPrefix + program.ChannelID + ":" + program.ID
		if err := txn.Set([]byte(channelIdx), []byte(program.ID)); err != nil {
			return fmt.Errorf("set channel index: %w", err)
		}

		return nil
	})
}

// GetProgram retrieves a guide program by ID.
func (s *Store) GetProgram(ctx context.Context, id string) (*domain.EPGProgram, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var program domain.EPGProgram
	err := s.db.View(func(txn *badger.Txn) error {
		key := buildKey(programKeyPrefix, id)
		defer releaseKey(key)

		item, err := txn.Get(key)
		if errors.Is(err, badger.ErrKeyNotFound) {
			return ErrProgramNotFound
		}
		if err != nil {
			return err
		}

		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &program)
		})
	})

	if err != nil {
		return nil, err
	}
	return &program, nil
}

// UpdateProgram rewrites a program, moving the channel index when the
// program has been rescheduled onto a different channel.
func (s *Store) UpdateProgram(ctx context.Context, program *domain.EPGProgram) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := json.Marshal(program)
	if err != nil {
		return fmt.Errorf("marshal program: %w", err)
	}

	return s.db.Update(func(txn *badger.Txn) error {
		key := []byte(programKeyPrefix + program.ID)

		var old domain.EPGProgram
		item, err := txn.Get(key)
		if errors.Is(err, badger.ErrKeyNotFound) {
			return ErrProgramNotFound
		}
		if err != nil {
			return err
		}
		if err := item.Value(func(val []byte) error {
			return json.Unmarshal(val, &old)
		}); err != nil {
			return err
		}

		if old.ChannelID != program.ChannelID {
			oldIdx := programByChannelPrefix + old.ChannelID + ":" + old.ID
			if err := txn.Delete([]byte(oldIdx)); err != nil {
				return fmt.Errorf("delete old channel index: %w", err)
			}
			newIdx := programByChannelPrefix + program.ChannelID + ":" + program.ID
			if err := txn.Set([]byte(newIdx), []byte(program.ID)); err != nil {
				return fmt.Errorf("set channel index: %w", err)
			}
		}

		return txn.Set(key, data)
	})
}

// DeleteProgram removes a program and its channel index. Idempotent.
func (s *Store) DeleteProgram(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	return s.db.Update(func(txn *badger.Txn) error {
		key := []byte(programKeyPrefix + id)

		var program domain.EPGProgram
		item, err := txn.Get(key)
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		if err := item.Value(func(val []byte) error {
			return json.Unmarshal(val, &program)
		}); err != nil {
			return err
		}

		channelIdx := programByChannelPrefix + program.ChannelID + ":" + program.ID
		if err := txn.Delete([]byte(channelIdx)); err != nil {
			return fmt.Errorf("delete channel index: %w", err)
		}

		return txn.Delete(key)
	})
}

// GetProgramsForChannel retrieves all programs scheduled on a channel.
// Uses a single transaction to collect IDs and fetch all programs (no N+1).
func (s *Store) GetProgramsForChannel(ctx context.Context, channelID string) ([]*domain.EPGProgram, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	prefix := programByChannelPrefix + channelID + ":"
	var programs []*domain.EPGProgram

	err := s.db.View(func(txn *badger.Txn) error {
		// First pass: collect program IDs from index
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(prefix)
		opts.PrefetchValues = true

		it := txn.NewIterator(opts)
		defer it.Close()

		var programIDs []string
		for it.Seek([]byte(prefix)); it.ValidForPrefix([]byte(prefix)); it.Next() {
			err := it.Item().Value(func(val []byte) error {
				programIDs = append(programIDs, string(val))
				return nil
			})
			if err != nil {
				return err
			}
		}

		// Second pass: batch fetch in same transaction
		programs = make([]*domain.EPGProgram, 0, len(programIDs))
		for _, id := range programIDs {
			item, err := txn.Get([]byte(programKeyPrefix + id))
			if err != nil {
				continue // Skip missing programs
			}

			var program domain.EPGProgram
			if err := item.Value(func(val []byte) error {
				return json.Unmarshal(val, &program)
			}); err != nil {
				continue // Skip corrupt programs
			}
			programs = append(programs, &program)
		}

		return nil
	})

	if err != nil {
		return nil, err
	}
	return programs, nil
}

// ListPrograms returns every guide program in the store.
func (s *Store) ListPrograms(ctx context.Context) ([]*domain.EPGProgram, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var programs []*domain.EPGProgram

	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(programKeyPrefix)
		opts.PrefetchValues = true

		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek([]byte(programKeyPrefix)); it.ValidForPrefix([]byte(programKeyPrefix)); it.Next() {
			key := string(it.Item().Key())
			if strings.HasPrefix(key[len(programKeyPrefix):], "idx:") {
				continue
			}

			var program domain.EPGProgram
			err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &program)
			})
			if err != nil {
				return err
			}
			programs = append(programs, &program)
		}
		return nil
	})

	if err != nil {
		return nil, err
	}
	return programs, nil
}
