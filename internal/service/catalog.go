package service

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/streamviewapp/streamview-server/internal/domain"
	"github.com/streamviewapp/streamview-server/internal/id"
	"github.com/streamviewapp/streamview-server/internal/search"
	"github.com/streamviewapp/streamview-server/internal/store"
)

// CatalogService manages on-demand content and the channel lineup.
// Mutations keep the search index in sync; index failures are logged
// but never fail the write, since the store is the source of truth.
type CatalogService struct {
	store  *store.Store
	search *search.SearchIndex
	logger *slog.Logger
}

// NewCatalogService creates a new catalog service.
func NewCatalogService(store *store.Store, searchIndex *search.SearchIndex, logger *slog.Logger) *CatalogService {
	return &CatalogService{
		store:  store,
		search: searchIndex,
		logger: logger,
	}
}

// GetAllContent returns the full catalog.
func (s *CatalogService) GetAllContent(ctx context.Context) ([]*domain.Content, error) {
	return s.store.ListContent(ctx)
}

// GetContent returns a single catalog entry.
func (s *CatalogService) GetContent(ctx context.Context, contentID string) (*domain.Content, error) {
	return s.store.GetContent(ctx, contentID)
}

// GetContentByType returns catalog entries of the given type.
func (s *CatalogService) GetContentByType(ctx context.Context, contentType domain.ContentType) ([]*domain.Content, error) {
	catalog, err := s.store.ListContent(ctx)
	if err != nil {
		return nil, err
	}

	result := make([]*domain.Content, 0)
	for _, content := range catalog {
		if content.Type == contentType {
			result = append(result, content)
		}
	}
	return result, nil
}

// GetContentByGenre returns catalog entries matching the genre,
// compared case-insensitively.
func (s *CatalogService) GetContentByGenre(ctx context.Context, genre string) ([]*domain.Content, error) {
	catalog, err := s.store.ListContent(ctx)
	if err != nil {
		return nil, err
	}

	result := make([]*domain.Content, 0)
	for _, content := range catalog {
		if strings.EqualFold(content.Genre, genre) {
			result = append(result, content)
		}
	}
	return result, nil
}

// SearchContent searches the catalog by title, description, and genre.
// Uses the full-text index when available, falling back to a substring
// scan over the store so search keeps working if the index is down.
func (s *CatalogService) SearchContent(ctx context.Context, query string, limit int) ([]*domain.Content, error) {
	if limit <= 0 {
		limit = 20
	}

	if s.search != nil {
		params := search.DefaultSearchParams()
		params.Query = query
		params.Types = []string{string(search.DocTypeContent)}
		params.Limit = limit
		params.Highlight = false

		result, err := s.search.Search(ctx, params)
		if err == nil {
			ids := make([]string, 0, len(result.Hits))
			for _, hit := range result.Hits {
				ids = append(ids, hit.ID)
			}
			contentByID, err := s.store.GetContentBatch(ctx, ids)
			if err != nil {
				return nil, fmt.Errorf("resolve search hits: %w", err)
			}
			matches := make([]*domain.Content, 0, len(ids))
			for _, contentID := range ids {
				if content, ok := contentByID[contentID]; ok {
					matches = append(matches, content)
				}
			}
			return matches, nil
		}
		s.logger.Warn("search index query failed, falling back to scan", "error", err)
	}

	return s.scanContent(ctx, query, limit)
}

// scanContent is the index-less substring search over the catalog.
func (s *CatalogService) scanContent(ctx context.Context, query string, limit int) ([]*domain.Content, error) {
	catalog, err := s.store.ListContent(ctx)
	if err != nil {
		return nil, err
	}

	needle := strings.ToLower(query)
	matches := make([]*domain.Content, 0)
	for _, content := range catalog {
		if strings.Contains(strings.ToLower(content.Title), needle) ||
			strings.Contains(strings.ToLower(content.Description), needle) ||
			strings.Contains(strings.ToLower(content.Genre), needle) {
			matches = append(matches, content)
			if len(matches) >= limit {
				break
			}
		}
	}
	return matches, nil
}

// GetTrendingContent returns the newest catalog entries, newest first.
func (s *CatalogService) GetTrendingContent(ctx context.Context, count int) ([]*domain.Content, error) {
	return s.newestContent(ctx, count)
}

// GetRecentContent returns the most recently added entries, newest first.
func (s *CatalogService) GetRecentContent(ctx context.Context, count int) ([]*domain.Content, error) {
	return s.newestContent(ctx, count)
}

func (s *CatalogService) newestContent(ctx context.Context, count int) ([]*domain.Content, error) {
	if count <= 0 {
		count = 10
	}

	catalog, err := s.store.ListContent(ctx)
	if err != nil {
		return nil, err
	}

	slices.SortFunc(catalog, func(a, b *domain.Content) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})

	if len(catalog) > count {
		catalog = catalog[:count]
	}
	return catalog, nil
}

// CreateContentRequest contains the data for adding a catalog entry.
type CreateContentRequest struct {
	Title        string   `json:"title" validate:"required,max=512"`
	Description  string   `json:"description" validate:"max=4096"`
	StreamURL    string   `json:"stream_url" validate:"required,max=2048"`
	ThumbnailURL string   `json:"thumbnail_url" validate:"omitempty,max=2048"`
	Type         string   `json:"type" validate:"required,oneof=live_tv vod series movie"`
	Genre        string   `json:"genre" validate:"max=128"`
	Rating       *float64 `json:"rating" validate:"omitempty,gte=0,lte=10"`
}

// CreateContent adds a catalog entry and indexes it for search.
func (s *CatalogService) CreateContent(ctx context.Context, req CreateContentRequest) (*domain.Content, error) {
	if err := validate.Struct(req); err != nil {
		return nil, formatValidationError(err)
	}

	contentID, err := id.Generate("cnt")
	if err != nil {
		return nil, fmt.Errorf("generate content ID: %w", err)
	}

	content := &domain.Content{
		ID:           contentID,
		Title:        req.Title,
		Description:  req.Description,
		StreamURL:    req.StreamURL,
		ThumbnailURL: req.ThumbnailURL,
		Type:         domain.ContentType(req.Type),
		Genre:        req.Genre,
		Rating:       req.Rating,
	}
	content.InitTimestamps()

	if err := s.store.CreateContent(ctx, content); err != nil {
		return nil, fmt.Errorf("store content: %w", err)
	}

	s.indexContent(content)
	s.logger.Info("content created", "content_id", content.ID, "title", content.Title)

	return content, nil
}

// UpdateContentRequest contains the fields that can change on an entry.
// Nil pointers leave the current value untouched.
type UpdateContentRequest struct {
	Title        *string  `json:"title" validate:"omitempty,max=512"`
	Description  *string  `json:"description" validate:"omitempty,max=4096"`
	StreamURL    *string  `json:"stream_url" validate:"omitempty,max=2048"`
	ThumbnailURL *string  `json:"thumbnail_url" validate:"omitempty,max=2048"`
	Type         *string  `json:"type" validate:"omitempty,oneof=live_tv vod series movie"`
	Genre        *string  `json:"genre" validate:"omitempty,max=128"`
	Rating       *float64 `json:"rating" validate:"omitempty,gte=0,lte=10"`
}

// UpdateContent applies a partial update and reindexes the entry.
func (s *CatalogService) UpdateContent(ctx context.Context, contentID string, req UpdateContentRequest) (*domain.Content, error) {
	if err := validate.Struct(req); err != nil {
		return nil, formatValidationError(err)
	}

	content, err := s.store.GetContent(ctx, contentID)
	if err != nil {
		return nil, err
	}

	if req.Title != nil {
		content.Title = *req.Title
	}
	if req.Description != nil {
		content.Description = *req.Description
	}
	if req.StreamURL != nil {
		content.StreamURL = *req.StreamURL
	}
	if req.ThumbnailURL != nil {
		content.ThumbnailURL = *req.ThumbnailURL
	}
	if req.Type != nil {
		content.Type = domain.ContentType(*req.Type)
	}
	if req.Genre != nil {
		content.Genre = *req.Genre
	}
	if req.Rating != nil {
		content.Rating = req.Rating
	}
	content.Touch()

	if err := s.store.UpdateContent(ctx, content); err != nil {
		return nil, fmt.Errorf("update content: %w", err)
	}

	s.indexContent(content)
	return content, nil
}

// DeleteContent removes a catalog entry and its search document.
// Deleting an unknown ID is a no-op.
func (s *CatalogService) DeleteContent(ctx context.Context, contentID string) error {
	if err := s.store.DeleteContent(ctx, contentID); err != nil {
		return fmt.Errorf("delete content: %w", err)
	}

	if s.search != nil {
		if err := s.search.DeleteDocument(contentID); err != nil {
			s.logger.Warn("failed to remove content from search index", "content_id", contentID, "error", err)
		}
	}
	return nil
}

// GetAllChannels returns the full channel lineup.
func (s *CatalogService) GetAllChannels(ctx context.Context) ([]*domain.Channel, error) {
	return s.store.ListChannels(ctx)
}

// GetChannel returns a single channel.
func (s *CatalogService) GetChannel(ctx context.Context, channelID string) (*domain.Channel, error) {
	return s.store.GetChannel(ctx, channelID)
}

// GetActiveChannels returns the active lineup in channel number order.
func (s *CatalogService) GetActiveChannels(ctx context.Context) ([]*domain.Channel, error) {
	channels, err := s.store.ListChannels(ctx)
	if err != nil {
		return nil, err
	}

	active := make([]*domain.Channel, 0, len(channels))
	for _, channel := range channels {
		if channel.IsActive {
			active = append(active, channel)
		}
	}

	slices.SortFunc(active, func(a, b *domain.Channel) int {
		return a.ChannelNumber - b.ChannelNumber
	})
	return active, nil
}

// CreateChannelRequest contains the data for adding a channel.
type CreateChannelRequest struct {
	Name          string `json:"name" validate:"required,max=256"`
	StreamURL     string `json:"stream_url" validate:"required,max=2048"`
	LogoURL       string `json:"logo_url" validate:"omitempty,max=2048"`
	ChannelNumber int    `json:"channel_number" validate:"required,gt=0"`
	Category      string `json:"category" validate:"max=128"`
	Language      string `json:"language" validate:"max=32"`
	IsActive      *bool  `json:"is_active"`
}

// CreateChannel adds a channel to the lineup and indexes it for search.
// Channels default to active unless the request says otherwise.
func (s *CatalogService) CreateChannel(ctx context.Context, req CreateChannelRequest) (*domain.Channel, error) {
	if err := validate.Struct(req); err != nil {
		return nil, formatValidationError(err)
	}

	channelID, err := id.Generate("chn")
	if err != nil {
		return nil, fmt.Errorf("generate channel ID: %w", err)
	}

	active := true
	if req.IsActive != nil {
		active = *req.IsActive
	}

	channel := &domain.Channel{
		ID:            channelID,
		Name:          req.Name,
		StreamURL:     req.StreamURL,
		LogoURL:       req.LogoURL,
		ChannelNumber: req.ChannelNumber,
		Category:      req.Category,
		Language:      req.Language,
		IsActive:      active,
	}
	channel.InitTimestamps()

	if err := s.store.CreateChannel(ctx, channel); err != nil {
		return nil, fmt.Errorf("store channel: %w", err)
	}

	s.indexChannel(channel)
	s.logger.Info("channel created", "channel_id", channel.ID, "name", channel.Name, "number", channel.ChannelNumber)

	return channel, nil
}

// UpdateChannelRequest contains the fields that can change on a channel.
type UpdateChannelRequest struct {
	Name          *string `json:"name" validate:"omitempty,max=256"`
	StreamURL     *string `json:"stream_url" validate:"omitempty,max=2048"`
	LogoURL       *string `json:"logo_url" validate:"omitempty,max=2048"`
	ChannelNumber *int    `json:"channel_number" validate:"omitempty,gt=0"`
	Category      *string `json:"category" validate:"omitempty,max=128"`
	Language      *string `json:"language" validate:"omitempty,max=32"`
	IsActive      *bool   `json:"is_active"`
}

// UpdateChannel applies a partial update and reindexes the channel.
func (s *CatalogService) UpdateChannel(ctx context.Context, channelID string, req UpdateChannelRequest) (*domain.Channel, error) {
	if err := validate.Struct(req); err != nil {
		return nil, formatValidationError(err)
	}

	channel, err := s.store.GetChannel(ctx, channelID)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		channel.Name = *req.Name
	}
	if req.StreamURL != nil {
		channel.StreamURL = *req.StreamURL
	}
	if req.LogoURL != nil {
		channel.LogoURL = *req.LogoURL
	}
	if req.ChannelNumber != nil {
		channel.ChannelNumber = *req.ChannelNumber
	}
	if req.Category != nil {
		channel.Category = *req.Category
	}
	if req.Language != nil {
		channel.Language = *req.Language
	}
	if req.IsActive != nil {
		channel.IsActive = *req.IsActive
	}
	channel.Touch()

	if err := s.store.UpdateChannel(ctx, channel); err != nil {
		return nil, fmt.Errorf("update channel: %w", err)
	}

	s.indexChannel(channel)
	return channel, nil
}

// DeleteChannel removes a channel and its search document.
// Deleting an unknown ID is a no-op.
func (s *CatalogService) DeleteChannel(ctx context.Context, channelID string) error {
	if err := s.store.DeleteChannel(ctx, channelID); err != nil {
		return fmt.Errorf("delete channel: %w", err)
	}

	if s.search != nil {
		if err := s.search.DeleteDocument(channelID); err != nil {
			s.logger.Warn("failed to remove channel from search index", "channel_id", channelID, "error", err)
		}
	}
	return nil
}

// RebuildSearchIndex reindexes the whole catalog and lineup from the store.
func (s *CatalogService) RebuildSearchIndex(ctx context.Context) error {
	if s.search == nil {
		return nil
	}

	if err := s.search.Rebuild(); err != nil {
		return fmt.Errorf("rebuild index: %w", err)
	}

	catalog, err := s.store.ListContent(ctx)
	if err != nil {
		return err
	}
	channels, err := s.store.ListChannels(ctx)
	if err != nil {
		return err
	}

	docs := make([]*search.SearchDocument, 0, len(catalog)+len(channels))
	for _, content := range catalog {
		docs = append(docs, search.ContentToSearchDocument(content))
	}
	for _, channel := range channels {
		docs = append(docs, search.ChannelToSearchDocument(channel))
	}

	if err := s.search.IndexDocuments(docs); err != nil {
		return fmt.Errorf("index documents: %w", err)
	}

	s.logger.Info("search index rebuilt", "documents", len(docs))
	return nil
}

func (s *CatalogService) indexContent(content *domain.Content) {
	if s.search == nil {
		return
	}
	if err := s.search.IndexDocument(search.ContentToSearchDocument(content)); err != nil {
		s.logger.Warn("failed to index content", "content_id", content.ID, "error", err)
	}
}

func (s *CatalogService) indexChannel(channel *domain.Channel) {
	if s.search == nil {
		return
	}
	if err := s.search.IndexDocument(search.ChannelToSearchDocument(channel)); err != nil {
		s.logger.Warn("failed to index channel", "channel_id", channel.ID, "error", err)
	}
}
