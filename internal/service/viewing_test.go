package service

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/streamviewapp/streamview-server/internal/domain"
	"github.com/streamviewapp/streamview-server/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestViewing(t *testing.T) (*ViewingService, *store.Store, func()) {
	t.Helper()

	tmpDir, err := os.MkdirTemp("", "viewing-service-test-*")
	require.NoError(t, err)

	dbPath := filepath.Join(tmpDir, "test.db")
	testStore, err := store.New(dbPath, nil)
	require.NoError(t, err)

	logger := slog.New(slog.DiscardHandler)
	svc := NewViewingService(testStore, logger)

	cleanup := func() {
		testStore.Close()
		os.RemoveAll(tmpDir)
	}

	return svc, testStore, cleanup
}

func addSessionAt(t *testing.T, s *store.Store, id, userID, contentID string, startTime time.Time, progress float64, completed bool) {
	t.Helper()
	session := &domain.ViewingSession{
		ID:              id,
		UserID:          userID,
		ContentID:       contentID,
		StartTime:       startTime,
		ProgressSeconds: progress,
		Completed:       completed,
		CreatedAt:       startTime,
	}
	require.NoError(t, s.CreateViewingSession(context.Background(), session))
}

func TestStartSession_DefaultsDeviceInfo(t *testing.T) {
	svc, _, cleanup := setupTestViewing(t)
	defer cleanup()

	session, err := svc.StartSession(context.Background(), "user-1", StartSessionRequest{
		ContentID: "cnt-1",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, session.ID)
	assert.Equal(t, "user-1", session.UserID)
	assert.Equal(t, "cnt-1", session.ContentID)
	assert.NotEmpty(t, session.DeviceInfo)
	assert.False(t, session.Completed)
	assert.Nil(t, session.DurationSeconds)
}

func TestStartSession_AcceptsUnknownContent(t *testing.T) {
	svc, _, cleanup := setupTestViewing(t)
	defer cleanup()

	// No catalog entry with this ID exists; session start still succeeds
	session, err := svc.StartSession(context.Background(), "user-1", StartSessionRequest{
		ContentID:  "cnt-ghost",
		DeviceInfo: "living-room-tv",
	})
	require.NoError(t, err)
	assert.Equal(t, "living-room-tv", session.DeviceInfo)
}

func TestUpdateProgress_RecordsPosition(t *testing.T) {
	svc, testStore, cleanup := setupTestViewing(t)
	defer cleanup()

	ctx := context.Background()
	session, err := svc.StartSession(ctx, "user-1", StartSessionRequest{ContentID: "cnt-1"})
	require.NoError(t, err)

	err = svc.UpdateProgress(ctx, session.ID, UpdateProgressRequest{ProgressSeconds: 123.5})
	require.NoError(t, err)

	stored, err := testStore.GetViewingSession(ctx, session.ID)
	require.NoError(t, err)
	assert.Equal(t, 123.5, stored.ProgressSeconds)
	assert.False(t, stored.Completed)
}

func TestUpdateProgress_UnknownSessionIsNoop(t *testing.T) {
	svc, _, cleanup := setupTestViewing(t)
	defer cleanup()

	err := svc.UpdateProgress(context.Background(), "sess-missing", UpdateProgressRequest{ProgressSeconds: 10})
	assert.NoError(t, err)
}

func TestUpdateProgress_CompletionDerivesDuration(t *testing.T) {
	svc, testStore, cleanup := setupTestViewing(t)
	defer cleanup()

	ctx := context.Background()
	start := time.Now().UTC().Add(-90 * time.Second)
	addSessionAt(t, testStore, "sess-1", "user-1", "cnt-1", start, 0, false)

	err := svc.UpdateProgress(ctx, "sess-1", UpdateProgressRequest{ProgressSeconds: 88, Completed: true})
	require.NoError(t, err)

	stored, err := testStore.GetViewingSession(ctx, "sess-1")
	require.NoError(t, err)
	assert.True(t, stored.Completed)
	require.NotNil(t, stored.EndTime)
	require.NotNil(t, stored.DurationSeconds)
	assert.InDelta(t, 90, *stored.DurationSeconds, 2)
}

func TestUpdateProgress_RepeatCompletionRecomputes(t *testing.T) {
	svc, testStore, cleanup := setupTestViewing(t)
	defer cleanup()

	ctx := context.Background()
	start := time.Now().UTC().Add(-60 * time.Second)
	addSessionAt(t, testStore, "sess-1", "user-1", "cnt-1", start, 0, false)

	require.NoError(t, svc.UpdateProgress(ctx, "sess-1", UpdateProgressRequest{ProgressSeconds: 30, Completed: true}))
	first, err := testStore.GetViewingSession(ctx, "sess-1")
	require.NoError(t, err)
	require.NotNil(t, first.DurationSeconds)

	time.Sleep(1100 * time.Millisecond)
	require.NoError(t, svc.UpdateProgress(ctx, "sess-1", UpdateProgressRequest{ProgressSeconds: 30, Completed: true}))
	second, err := testStore.GetViewingSession(ctx, "sess-1")
	require.NoError(t, err)
	require.NotNil(t, second.DurationSeconds)

	assert.Greater(t, *second.DurationSeconds, *first.DurationSeconds)
}

func TestListHistory_OrderAndLimit(t *testing.T) {
	svc, testStore, cleanup := setupTestViewing(t)
	defer cleanup()

	ctx := context.Background()
	base := time.Now().UTC()
	addSessionAt(t, testStore, "sess-old", "user-1", "cnt-1", base.Add(-3*time.Hour), 10, true)
	addSessionAt(t, testStore, "sess-mid", "user-1", "cnt-2", base.Add(-2*time.Hour), 10, true)
	addSessionAt(t, testStore, "sess-new", "user-1", "cnt-3", base.Add(-1*time.Hour), 10, false)
	addSessionAt(t, testStore, "sess-other", "user-2", "cnt-1", base, 10, false)

	history, err := svc.ListHistory(ctx, "user-1", 2)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, "sess-new", history[0].ID)
	assert.Equal(t, "sess-mid", history[1].ID)

	all, err := svc.ListHistory(ctx, "user-1", 0)
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestLastSessionForContent(t *testing.T) {
	svc, testStore, cleanup := setupTestViewing(t)
	defer cleanup()

	ctx := context.Background()
	base := time.Now().UTC()
	addSessionAt(t, testStore, "sess-1", "user-1", "cnt-1", base.Add(-2*time.Hour), 10, true)
	addSessionAt(t, testStore, "sess-2", "user-1", "cnt-1", base.Add(-1*time.Hour), 20, false)
	addSessionAt(t, testStore, "sess-3", "user-1", "cnt-2", base, 5, false)

	latest, err := svc.LastSessionForContent(ctx, "user-1", "cnt-1")
	require.NoError(t, err)
	require.NotNil(t, latest)
	assert.Equal(t, "sess-2", latest.ID)

	none, err := svc.LastSessionForContent(ctx, "user-1", "cnt-never")
	require.NoError(t, err)
	assert.Nil(t, none)
}

func TestGetContinueWatching_DistinctAndOrdered(t *testing.T) {
	svc, testStore, cleanup := setupTestViewing(t)
	defer cleanup()

	ctx := context.Background()
	base := time.Now().UTC()

	addContent(t, testStore, "cnt-1", "Drama", 4.0, base)
	addContent(t, testStore, "cnt-2", "Drama", 3.0, base)

	// Two sessions for cnt-1; only the most recent should surface
	addSessionAt(t, testStore, "sess-a", "user-1", "cnt-1", base.Add(-3*time.Hour), 100, false)
	addSessionAt(t, testStore, "sess-b", "user-1", "cnt-1", base.Add(-1*time.Hour), 200, false)
	addSessionAt(t, testStore, "sess-c", "user-1", "cnt-2", base.Add(-2*time.Hour), 50, false)
	// Completed and zero-progress sessions are not resumable
	addSessionAt(t, testStore, "sess-done", "user-1", "cnt-2", base.Add(-30*time.Minute), 300, true)
	addSessionAt(t, testStore, "sess-zero", "user-1", "cnt-2", base.Add(-20*time.Minute), 0, false)

	items, err := svc.GetContinueWatching(ctx, "user-1")
	require.NoError(t, err)
	require.Len(t, items, 2)

	assert.Equal(t, "cnt-1", items[0].Content.ID)
	assert.Equal(t, "sess-b", items[0].SessionID)
	assert.Equal(t, 200.0, items[0].ProgressSeconds)
	assert.Equal(t, "cnt-2", items[1].Content.ID)
	assert.Equal(t, "sess-c", items[1].SessionID)
}

func TestGetContinueWatching_DropsRemovedContent(t *testing.T) {
	svc, testStore, cleanup := setupTestViewing(t)
	defer cleanup()

	ctx := context.Background()
	base := time.Now().UTC()

	addContent(t, testStore, "cnt-kept", "Drama", 4.0, base)
	addSessionAt(t, testStore, "sess-1", "user-1", "cnt-kept", base.Add(-1*time.Hour), 10, false)
	addSessionAt(t, testStore, "sess-2", "user-1", "cnt-removed", base.Add(-2*time.Hour), 10, false)

	items, err := svc.GetContinueWatching(ctx, "user-1")
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "cnt-kept", items[0].Content.ID)
}

func TestGetGenreBreakdown(t *testing.T) {
	svc, testStore, cleanup := setupTestViewing(t)
	defer cleanup()

	ctx := context.Background()
	base := time.Now().UTC()

	addContent(t, testStore, "cnt-d1", "Drama", 4.0, base)
	addContent(t, testStore, "cnt-d2", "Drama", 3.0, base)
	addContent(t, testStore, "cnt-s1", "Sci-Fi", 4.5, base)
	addContent(t, testStore, "cnt-nogenre", "", 2.0, base)

	// cnt-d1 watched twice still counts once
	addSessionAt(t, testStore, "sess-1", "user-1", "cnt-d1", base.Add(-4*time.Hour), 10, true)
	addSessionAt(t, testStore, "sess-2", "user-1", "cnt-d1", base.Add(-3*time.Hour), 10, true)
	addSessionAt(t, testStore, "sess-3", "user-1", "cnt-d2", base.Add(-2*time.Hour), 10, true)
	addSessionAt(t, testStore, "sess-4", "user-1", "cnt-s1", base.Add(-1*time.Hour), 10, true)
	addSessionAt(t, testStore, "sess-5", "user-1", "cnt-nogenre", base, 10, true)

	breakdown, err := svc.GetGenreBreakdown(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"Drama": 2, "Sci-Fi": 1}, breakdown)
}

func TestGetTotalWatchTime(t *testing.T) {
	svc, testStore, cleanup := setupTestViewing(t)
	defer cleanup()

	ctx := context.Background()
	base := time.Now().UTC()

	completed := func(id string, seconds int64, start time.Time) {
		session := &domain.ViewingSession{
			ID:              id,
			UserID:          "user-1",
			ContentID:       "cnt-1",
			StartTime:       start,
			Completed:       true,
			DurationSeconds: &seconds,
			CreatedAt:       start,
		}
		require.NoError(t, testStore.CreateViewingSession(ctx, session))
	}

	completed("sess-1", 600, base.Add(-3*time.Hour))
	completed("sess-2", 1200, base.Add(-2*time.Hour))
	// Open session with no duration contributes nothing
	addSessionAt(t, testStore, "sess-open", "user-1", "cnt-1", base, 100, false)

	total, err := svc.GetTotalWatchTime(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, int64(1800), total)
}

func TestGetTopContent(t *testing.T) {
	svc, testStore, cleanup := setupTestViewing(t)
	defer cleanup()

	ctx := context.Background()
	base := time.Now().UTC()

	addContent(t, testStore, "cnt-popular", "Drama", 4.0, base)
	addContent(t, testStore, "cnt-niche", "Drama", 3.0, base)

	addSessionAt(t, testStore, "sess-1", "user-1", "cnt-popular", base.Add(-5*time.Hour), 10, true)
	addSessionAt(t, testStore, "sess-2", "user-2", "cnt-popular", base.Add(-4*time.Hour), 10, true)
	addSessionAt(t, testStore, "sess-3", "user-3", "cnt-popular", base.Add(-3*time.Hour), 10, true)
	addSessionAt(t, testStore, "sess-4", "user-1", "cnt-niche", base.Add(-2*time.Hour), 10, true)
	// Sessions against deleted content never surface
	addSessionAt(t, testStore, "sess-5", "user-1", "cnt-gone", base.Add(-1*time.Hour), 10, true)

	top, err := svc.GetTopContent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, top, 2)
	assert.Equal(t, "cnt-popular", top[0].ID)
	assert.Equal(t, "Title cnt-popular", top[0].Title)
	assert.Equal(t, 3, top[0].Views)
	assert.Equal(t, "cnt-niche", top[1].ID)
	assert.Equal(t, 1, top[1].Views)
}

func TestGetTopContent_TiedCountsOrderByID(t *testing.T) {
	svc, testStore, cleanup := setupTestViewing(t)
	defer cleanup()

	ctx := context.Background()
	base := time.Now().UTC()

	addContent(t, testStore, "cnt-beta", "Drama", 4.0, base)
	addContent(t, testStore, "cnt-alpha", "Drama", 3.0, base)

	// One session each: the ranking between equal counts is by ID
	addSessionAt(t, testStore, "sess-1", "user-1", "cnt-beta", base.Add(-2*time.Hour), 10, true)
	addSessionAt(t, testStore, "sess-2", "user-2", "cnt-alpha", base.Add(-1*time.Hour), 10, true)

	top, err := svc.GetTopContent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, top, 2)
	assert.Equal(t, "cnt-alpha", top[0].ID)
	assert.Equal(t, "cnt-beta", top[1].ID)
}

func TestGetTopChannels(t *testing.T) {
	svc, testStore, cleanup := setupTestViewing(t)
	defer cleanup()

	ctx := context.Background()

	addChannel(t, testStore, "chn-1", "Sports", 100, true)
	addChannel(t, testStore, "chn-2", "News", 101, true)

	addSession(t, testStore, "user-1", "", "chn-2")
	addSession(t, testStore, "user-2", "", "chn-2")
	addSession(t, testStore, "user-1", "", "chn-1")

	top, err := svc.GetTopChannels(ctx, 1)
	require.NoError(t, err)
	require.Len(t, top, 1)
	assert.Equal(t, "chn-2", top[0].ID)
	assert.Equal(t, "Channel chn-2", top[0].Title)
	assert.Equal(t, 2, top[0].Views)
}
