package service

import (
	"context"
	"fmt"
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

func setupTestRecommend(t *testing.T) (*RecommendationService, *store.Store, func()) {
	t.Helper()

	tmpDir, err := os.MkdirTemp("", "recommend-service-test-*")
	require.NoError(t, err)

	dbPath := filepath.Join(tmpDir, "test.db")
	testStore, err := store.New(dbPath, nil)
	require.NoError(t, err)

	logger := slog.New(slog.DiscardHandler)
	svc := NewRecommendationService(testStore, logger)

	cleanup := func() {
		testStore.Close()
		os.RemoveAll(tmpDir)
	}

	return svc, testStore, cleanup
}

func addContent(t *testing.T, s *store.Store, id, genre string, rating float64, createdAt time.Time) {
	t.Helper()
	content := &domain.Content{
		ID:        id,
		Title:     "Title " + id,
		StreamURL: "http://cdn.example.com/" + id,
		Type:      domain.ContentTypeMovie,
		Genre:     genre,
		CreatedAt: createdAt,
		UpdatedAt: createdAt,
	}
	if rating > 0 {
		content.Rating = &rating
	}
	require.NoError(t, s.CreateContent(context.Background(), content))
}

func addSession(t *testing.T, s *store.Store, userID, contentID, channelID string) {
	t.Helper()
	session := domain.NewViewingSession(
		fmt.Sprintf("sess-%s-%s%s", userID, contentID, channelID),
		userID, contentID, channelID, "test")
	require.NoError(t, s.CreateViewingSession(context.Background(), session))
}

func addChannel(t *testing.T, s *store.Store, id, category string, number int, active bool) {
	t.Helper()
	channel := &domain.Channel{
		ID:            id,
		Name:          "Channel " + id,
		StreamURL:     "http://cdn.example.com/live/" + id,
		ChannelNumber: number,
		Category:      category,
		IsActive:      active,
	}
	channel.InitTimestamps()
	require.NoError(t, s.CreateChannel(context.Background(), channel))
}

func TestRecommendContent_GenreAffinityFirst(t *testing.T) {
	svc, testStore, cleanup := setupTestRecommend(t)
	defer cleanup()

	ctx := context.Background()
	base := time.Now().UTC()

	addContent(t, testStore, "cnt-watched", "Sci-Fi", 3.0, base)
	addContent(t, testStore, "cnt-scifi-high", "Sci-Fi", 4.8, base)
	addContent(t, testStore, "cnt-scifi-low", "Sci-Fi", 2.1, base)
	addContent(t, testStore, "cnt-drama", "Drama", 4.9, base)

	addSession(t, testStore, "user-1", "cnt-watched", "")

	result, err := svc.RecommendContent(ctx, "user-1", 2)
	require.NoError(t, err)
	require.Len(t, result, 2)

	// Both Sci-Fi entries beat the higher rated Drama entry
	assert.Equal(t, "cnt-scifi-high", result[0].ID)
	assert.Equal(t, "cnt-scifi-low", result[1].ID)
}

func TestRecommendContent_ExcludesWatched(t *testing.T) {
	svc, testStore, cleanup := setupTestRecommend(t)
	defer cleanup()

	ctx := context.Background()
	base := time.Now().UTC()

	addContent(t, testStore, "cnt-1", "Action", 4.0, base)
	addContent(t, testStore, "cnt-2", "Action", 3.5, base)

	addSession(t, testStore, "user-1", "cnt-1", "")

	result, err := svc.RecommendContent(ctx, "user-1", 10)
	require.NoError(t, err)
	for _, content := range result {
		assert.NotEqual(t, "cnt-1", content.ID)
	}
}

func TestRecommendContent_BackfillWhenShort(t *testing.T) {
	svc, testStore, cleanup := setupTestRecommend(t)
	defer cleanup()

	ctx := context.Background()
	base := time.Now().UTC()

	addContent(t, testStore, "cnt-watched", "Sci-Fi", 3.0, base)
	addContent(t, testStore, "cnt-scifi", "Sci-Fi", 4.0, base)
	addContent(t, testStore, "cnt-drama-high", "Drama", 4.9, base)
	addContent(t, testStore, "cnt-drama-low", "Drama", 2.0, base)

	addSession(t, testStore, "user-1", "cnt-watched", "")

	result, err := svc.RecommendContent(ctx, "user-1", 3)
	require.NoError(t, err)
	require.Len(t, result, 3)

	// Affinity match first, then backfill by rating
	assert.Equal(t, "cnt-scifi", result[0].ID)
	assert.Equal(t, "cnt-drama-high", result[1].ID)
	assert.Equal(t, "cnt-drama-low", result[2].ID)
}

func TestRecommendContent_ColdStartTopRated(t *testing.T) {
	svc, testStore, cleanup := setupTestRecommend(t)
	defer cleanup()

	ctx := context.Background()
	base := time.Now().UTC()

	// Ten entries, only the first two rated
	addContent(t, testStore, "cnt-a", "Drama", 4.9, base)
	addContent(t, testStore, "cnt-b", "Drama", 4.7, base)
	for i := range 8 {
		addContent(t, testStore, fmt.Sprintf("cnt-unrated-%d", i), "Drama", 0, base.Add(time.Duration(i)*time.Second))
	}

	result, err := svc.RecommendContent(ctx, "user-fresh", 5)
	require.NoError(t, err)
	require.Len(t, result, 5)
	assert.Equal(t, "cnt-a", result[0].ID)
	assert.Equal(t, "cnt-b", result[1].ID)
}

func TestRecommendContent_NilRatingSortsAsZero(t *testing.T) {
	svc, testStore, cleanup := setupTestRecommend(t)
	defer cleanup()

	ctx := context.Background()
	base := time.Now().UTC()

	addContent(t, testStore, "cnt-unrated", "Drama", 0, base)
	addContent(t, testStore, "cnt-rated", "Drama", 0.5, base)

	result, err := svc.RecommendContent(ctx, "user-fresh", 2)
	require.NoError(t, err)
	require.Len(t, result, 2)
	assert.Equal(t, "cnt-rated", result[0].ID)
	assert.Equal(t, "cnt-unrated", result[1].ID)
}

func TestRecommendSimilar_UnknownIDEmpty(t *testing.T) {
	svc, _, cleanup := setupTestRecommend(t)
	defer cleanup()

	result, err := svc.RecommendSimilar(context.Background(), "cnt-missing", 5)
	require.NoError(t, err)
	assert.Empty(t, result)
}

func TestRecommendSimilar_GenreBeatsType(t *testing.T) {
	svc, testStore, cleanup := setupTestRecommend(t)
	defer cleanup()

	ctx := context.Background()
	base := time.Now().UTC()

	addContent(t, testStore, "cnt-source", "Horror", 3.0, base)
	// Same genre, lower rating
	addContent(t, testStore, "cnt-genre", "Horror", 2.0, base)
	// Same type (movie) only, higher rating
	addContent(t, testStore, "cnt-type", "Comedy", 4.9, base)

	result, err := svc.RecommendSimilar(ctx, "cnt-source", 5)
	require.NoError(t, err)
	require.Len(t, result, 2)
	assert.Equal(t, "cnt-genre", result[0].ID)
	assert.Equal(t, "cnt-type", result[1].ID)
}

func TestRecommendSimilar_NeverIncludesSource(t *testing.T) {
	svc, testStore, cleanup := setupTestRecommend(t)
	defer cleanup()

	ctx := context.Background()
	base := time.Now().UTC()

	addContent(t, testStore, "cnt-source", "Horror", 3.0, base)
	addContent(t, testStore, "cnt-other", "Horror", 2.0, base)

	result, err := svc.RecommendSimilar(ctx, "cnt-source", 10)
	require.NoError(t, err)
	for _, content := range result {
		assert.NotEqual(t, "cnt-source", content.ID)
	}
}

func TestRecommendByGenre_NoBackfill(t *testing.T) {
	svc, testStore, cleanup := setupTestRecommend(t)
	defer cleanup()

	ctx := context.Background()
	base := time.Now().UTC()

	addContent(t, testStore, "cnt-western", "Western", 3.0, base)
	addContent(t, testStore, "cnt-drama", "Drama", 4.9, base)

	result, err := svc.RecommendByGenre(ctx, "user-1", "Western", 5)
	require.NoError(t, err)
	require.Len(t, result, 1)
	assert.Equal(t, "cnt-western", result[0].ID)
}

func TestRecommendByGenre_ExactMatchAndExclusion(t *testing.T) {
	svc, testStore, cleanup := setupTestRecommend(t)
	defer cleanup()

	ctx := context.Background()
	base := time.Now().UTC()

	addContent(t, testStore, "cnt-watched", "Drama", 4.9, base)
	addContent(t, testStore, "cnt-new", "Drama", 3.0, base)

	addSession(t, testStore, "user-1", "cnt-watched", "")

	result, err := svc.RecommendByGenre(ctx, "user-1", "Drama", 5)
	require.NoError(t, err)
	require.Len(t, result, 1)
	assert.Equal(t, "cnt-new", result[0].ID)
}

func TestRecommendChannels_CategoryAffinityThenNumber(t *testing.T) {
	svc, testStore, cleanup := setupTestRecommend(t)
	defer cleanup()

	ctx := context.Background()

	addChannel(t, testStore, "chn-watched", "Sports", 100, true)
	addChannel(t, testStore, "chn-sports-hi", "Sports", 205, true)
	addChannel(t, testStore, "chn-sports-lo", "Sports", 102, true)
	addChannel(t, testStore, "chn-news", "News", 101, true)

	addSession(t, testStore, "user-1", "", "chn-watched")

	result, err := svc.RecommendChannels(ctx, "user-1", 2)
	require.NoError(t, err)
	require.Len(t, result, 2)

	// Sports affinity channels in lineup order, despite News having a lower number
	assert.Equal(t, "chn-sports-lo", result[0].ID)
	assert.Equal(t, "chn-sports-hi", result[1].ID)
}

func TestRecommendChannels_SkipsInactiveAndWatched(t *testing.T) {
	svc, testStore, cleanup := setupTestRecommend(t)
	defer cleanup()

	ctx := context.Background()

	addChannel(t, testStore, "chn-watched", "Sports", 100, true)
	addChannel(t, testStore, "chn-inactive", "Sports", 101, false)
	addChannel(t, testStore, "chn-ok", "Sports", 102, true)

	addSession(t, testStore, "user-1", "", "chn-watched")

	result, err := svc.RecommendChannels(ctx, "user-1", 10)
	require.NoError(t, err)
	require.Len(t, result, 1)
	assert.Equal(t, "chn-ok", result[0].ID)
}

func TestRecommendChannels_BackfillFromOtherCategories(t *testing.T) {
	svc, testStore, cleanup := setupTestRecommend(t)
	defer cleanup()

	ctx := context.Background()

	addChannel(t, testStore, "chn-watched", "Sports", 100, true)
	addChannel(t, testStore, "chn-sports", "Sports", 300, true)
	addChannel(t, testStore, "chn-movies", "Movies", 201, true)
	addChannel(t, testStore, "chn-kids", "Kids", 150, true)

	addSession(t, testStore, "user-1", "", "chn-watched")

	result, err := svc.RecommendChannels(ctx, "user-1", 3)
	require.NoError(t, err)
	require.Len(t, result, 3)

	assert.Equal(t, "chn-sports", result[0].ID)
	// Backfill in ascending lineup order
	assert.Equal(t, "chn-kids", result[1].ID)
	assert.Equal(t, "chn-movies", result[2].ID)
}
