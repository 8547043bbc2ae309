package store_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/streamviewapp/streamview-server/internal/store"
	"github.com/stretchr/testify/assert"
)

func TestTypedSentinelsMatchBase(t *testing.T) {
	sentinels := []*store.Error{
		store.ErrUserNotFound,
		store.ErrContentNotFound,
		store.ErrChannelNotFound,
		store.ErrProgramNotFound,
		store.ErrSessionNotFound,
		store.ErrPreferenceNotFound,
	}

	for _, sentinel := range sentinels {
		assert.ErrorIs(t, sentinel, store.ErrNotFound, sentinel.Message)
	}
}

func TestSentinelMatchSurvivesWrapping(t *testing.T) {
	err := fmt.Errorf("get session: %w", store.ErrSessionNotFound)
	assert.ErrorIs(t, err, store.ErrNotFound)
	assert.ErrorIs(t, err, store.ErrSessionNotFound)

	withCause := store.ErrContentNotFound.WithCause(errors.New("key missing"))
	assert.ErrorIs(t, withCause, store.ErrNotFound)
}

func TestSentinelsWithDifferentCodesDoNotMatch(t *testing.T) {
	assert.NotErrorIs(t, store.ErrAlreadyExists, store.ErrNotFound)
	assert.NotErrorIs(t, store.ErrUserNotFound, store.ErrUnauthorized)
	assert.NotErrorIs(t, store.ErrNotFound, errors.New("resource not found"))
}
