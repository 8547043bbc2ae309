package store_test

import (
	"context"
	"testing"
	"time"

	"github.com/streamviewapp/streamview-server/internal/domain"
	"github.com/streamviewapp/streamview-server/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestProgram(id, channelID, title string, start time.Time) *domain.EPGProgram {
	return &domain.EPGProgram{
		ID:        id,
		ChannelID: channelID,
		Title:     title,
		StartTime: start,
		EndTime:   start.Add(30 * time.Minute),
		CreatedAt: time.Now().UTC(),
	}
}

func TestCreateAndGetProgram(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()
	start := time.Now().UTC()
	require.NoError(t, s.CreateProgram(ctx, newTestProgram("prg-1", "chn-1", "Evening News", start)))

	found, err := s.GetProgram(ctx, "prg-1")
	require.NoError(t, err)
	assert.Equal(t, "Evening News", found.Title)
	assert.Equal(t, "chn-1", found.ChannelID)

	err = s.CreateProgram(ctx, newTestProgram("prg-1", "chn-1", "Duplicate", start))
	assert.ErrorIs(t, err, store.ErrAlreadyExists)
}

func TestGetProgramsForChannel(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()
	start := time.Now().UTC()
	require.NoError(t, s.CreateProgram(ctx, newTestProgram("prg-1", "chn-1", "Morning Show", start)))
	require.NoError(t, s.CreateProgram(ctx, newTestProgram("prg-2", "chn-1", "Midday Movie", start.Add(time.Hour))))
	require.NoError(t, s.CreateProgram(ctx, newTestProgram("prg-3", "chn-2", "Sports Hour", start)))

	chn1, err := s.GetProgramsForChannel(ctx, "chn-1")
	require.NoError(t, err)
	assert.Len(t, chn1, 2)

	chn3, err := s.GetProgramsForChannel(ctx, "chn-3")
	require.NoError(t, err)
	assert.Empty(t, chn3)
}

func TestUpdateProgramMovesChannelIndex(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()
	start := time.Now().UTC()
	program := newTestProgram("prg-1", "chn-1", "Late Show", start)
	require.NoError(t, s.CreateProgram(ctx, program))

	program.ChannelID = "chn-2"
	require.NoError(t, s.UpdateProgram(ctx, program))

	chn1, err := s.GetProgramsForChannel(ctx, "chn-1")
	require.NoError(t, err)
	assert.Empty(t, chn1)

	chn2, err := s.GetProgramsForChannel(ctx, "chn-2")
	require.NoError(t, err)
	require.Len(t, chn2, 1)
	assert.Equal(t, "prg-1", chn2[0].ID)
}

func TestDeleteProgram(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()
	require.NoError(t, s.CreateProgram(ctx, newTestProgram("prg-1", "chn-1", "Quiz Night", time.Now().UTC())))
	require.NoError(t, s.DeleteProgram(ctx, "prg-1"))

	_, err := s.GetProgram(ctx, "prg-1")
	assert.ErrorIs(t, err, store.ErrNotFound)

	chn1, err := s.GetProgramsForChannel(ctx, "chn-1")
	require.NoError(t, err)
	assert.Empty(t, chn1)

	// Deleting again is a no-op
	require.NoError(t, s.DeleteProgram(ctx, "prg-1"))
}
