package search

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/streamviewapp/streamview-server/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupTestIndex creates a temporary search index for testing.
func setupTestIndex(t *testing.T) (*SearchIndex, func()) {
	t.Helper()

	tmpDir, err := os.MkdirTemp("", "search-test-*")
	require.NoError(t, err)

	index, err := NewSearchIndex(Options{
		DataPath: tmpDir,
		Logger:   nil,
	})
	require.NoError(t, err)

	cleanup := func() {
		_ = index.Close()
		_ = os.RemoveAll(tmpDir)
	}

	return index, cleanup
}

func TestNewSearchIndex(t *testing.T) {
	index, cleanup := setupTestIndex(t)
	defer cleanup()

	count, err := index.DocumentCount()
	require.NoError(t, err)
	assert.Equal(t, uint64(0), count)
}

func TestSearchIndex_IndexDocument(t *testing.T) {
	index, cleanup := setupTestIndex(t)
	defer cleanup()

	doc := &SearchDocument{
		ID:          "cnt-123",
		Type:        DocTypeContent,
		Name:        "Blade Runner",
		ContentType: "movie",
		Genre:       "Sci-Fi",
	}

	err := index.IndexDocument(doc)
	require.NoError(t, err)

	count, err := index.DocumentCount()
	require.NoError(t, err)
	assert.Equal(t, uint64(1), count)
}

func TestSearchIndex_IndexDocuments_Batch(t *testing.T) {
	index, cleanup := setupTestIndex(t)
	defer cleanup()

	docs := []*SearchDocument{
		{ID: "cnt-1", Type: DocTypeContent, Name: "First Feature"},
		{ID: "cnt-2", Type: DocTypeContent, Name: "Second Feature"},
		{ID: "chn-1", Type: DocTypeChannel, Name: "News Channel"},
	}

	err := index.IndexDocuments(docs)
	require.NoError(t, err)

	count, err := index.DocumentCount()
	require.NoError(t, err)
	assert.Equal(t, uint64(3), count)
}

func TestSearchIndex_DeleteDocument(t *testing.T) {
	index, cleanup := setupTestIndex(t)
	defer cleanup()

	doc := &SearchDocument{
		ID:   "cnt-123",
		Type: DocTypeContent,
		Name: "Short Lived",
	}

	err := index.IndexDocument(doc)
	require.NoError(t, err)

	err = index.DeleteDocument("cnt-123")
	require.NoError(t, err)

	count, err := index.DocumentCount()
	require.NoError(t, err)
	assert.Equal(t, uint64(0), count)
}

func TestSearch_TitleMatch(t *testing.T) {
	index, cleanup := setupTestIndex(t)
	defer cleanup()

	docs := []*SearchDocument{
		{ID: "cnt-1", Type: DocTypeContent, Name: "Ocean Documentary", Genre: "Documentary"},
		{ID: "cnt-2", Type: DocTypeContent, Name: "Space Race", Genre: "Documentary"},
		{ID: "chn-1", Type: DocTypeChannel, Name: "Ocean TV", Category: "Nature"},
	}
	require.NoError(t, index.IndexDocuments(docs))

	params := DefaultSearchParams()
	params.Query = "ocean"

	result, err := index.Search(context.Background(), params)
	require.NoError(t, err)
	assert.Equal(t, uint64(2), result.Total)
}

func TestSearch_TypeFilter(t *testing.T) {
	index, cleanup := setupTestIndex(t)
	defer cleanup()

	docs := []*SearchDocument{
		{ID: "cnt-1", Type: DocTypeContent, Name: "Morning Stories"},
		{ID: "chn-1", Type: DocTypeChannel, Name: "Morning Channel"},
	}
	require.NoError(t, index.IndexDocuments(docs))

	params := DefaultSearchParams()
	params.Query = "morning"
	params.Types = []string{string(DocTypeChannel)}

	result, err := index.Search(context.Background(), params)
	require.NoError(t, err)
	require.Equal(t, uint64(1), result.Total)
	assert.Equal(t, "chn-1", result.Hits[0].ID)
	assert.Equal(t, DocTypeChannel, result.Hits[0].Type)
}

func TestSearch_GenreFilter(t *testing.T) {
	index, cleanup := setupTestIndex(t)
	defer cleanup()

	docs := []*SearchDocument{
		{ID: "cnt-1", Type: DocTypeContent, Name: "Laugh Track", Genre: "Comedy"},
		{ID: "cnt-2", Type: DocTypeContent, Name: "Laugh Lines", Genre: "Drama"},
	}
	require.NoError(t, index.IndexDocuments(docs))

	params := DefaultSearchParams()
	params.Query = "laugh"
	params.Genre = "Comedy"

	result, err := index.Search(context.Background(), params)
	require.NoError(t, err)
	require.Equal(t, uint64(1), result.Total)
	assert.Equal(t, "cnt-1", result.Hits[0].ID)
}

func TestContentToSearchDocument(t *testing.T) {
	rating := 4.5
	now := time.Now().UTC()
	content := &domain.Content{
		ID:          "cnt-1",
		Title:       "The Long Voyage",
		Description: "A ship crosses the Pacific",
		Type:        domain.ContentTypeMovie,
		Genre:       "Adventure",
		Rating:      &rating,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	doc := ContentToSearchDocument(content)
	assert.Equal(t, "cnt-1", doc.ID)
	assert.Equal(t, DocTypeContent, doc.Type)
	assert.Equal(t, "The Long Voyage", doc.Name)
	assert.Equal(t, "movie", doc.ContentType)
	assert.Equal(t, 4.5, doc.Rating)
}

func TestChannelToSearchDocument(t *testing.T) {
	now := time.Now().UTC()
	channel := &domain.Channel{
		ID:            "chn-1",
		Name:          "Sports One",
		Category:      "Sports",
		Language:      "en",
		ChannelNumber: 205,
		IsActive:      true,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	doc := ChannelToSearchDocument(channel)
	assert.Equal(t, "chn-1", doc.ID)
	assert.Equal(t, DocTypeChannel, doc.Type)
	assert.Equal(t, "Sports One", doc.Name)
	assert.Equal(t, 205, doc.ChannelNumber)
}
