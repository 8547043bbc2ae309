package api

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/streamviewapp/streamview-server/internal/domain"
	domainerrors "github.com/streamviewapp/streamview-server/internal/errors"
	"github.com/streamviewapp/streamview-server/internal/service"
)

func (s *Server) registerContentRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "listContent",
		Method:      http.MethodGet,
		Path:        "/api/v1/content",
		Summary:     "List content",
		Description: "Returns the full catalog",
		Tags:        []string{"Content"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleListContent)

	huma.Register(s.api, huma.Operation{
		OperationID: "searchContent",
		Method:      http.MethodGet,
		Path:        "/api/v1/content/search",
		Summary:     "Search content",
		Description: "Full-text search over titles, descriptions, and genres",
		Tags:        []string{"Content"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleSearchContent)

	huma.Register(s.api, huma.Operation{
		OperationID: "getTrendingContent",
		Method:      http.MethodGet,
		Path:        "/api/v1/content/trending",
		Summary:     "Get trending content",
		Description: "Returns the newest catalog entries",
		Tags:        []string{"Content"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleGetTrendingContent)

	huma.Register(s.api, huma.Operation{
		OperationID: "getRecentContent",
		Method:      http.MethodGet,
		Path:        "/api/v1/content/recent",
		Summary:     "Get recently added content",
		Description: "Returns the most recently added catalog entries",
		Tags:        []string{"Content"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleGetRecentContent)

	huma.Register(s.api, huma.Operation{
		OperationID: "getContentByType",
		Method:      http.MethodGet,
		Path:        "/api/v1/content/type/{type}",
		Summary:     "Get content by type",
		Description: "Returns catalog entries of a given type (live_tv, vod, series, movie)",
		Tags:        []string{"Content"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleGetContentByType)

	huma.Register(s.api, huma.Operation{
		OperationID: "getContentByGenre",
		Method:      http.MethodGet,
		Path:        "/api/v1/content/genre/{genre}",
		Summary:     "Get content by genre",
		Description: "Returns catalog entries matching a genre, case-insensitively",
		Tags:        []string{"Content"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleGetContentByGenre)

	huma.Register(s.api, huma.Operation{
		OperationID: "getContent",
		Method:      http.MethodGet,
		Path:        "/api/v1/content/{id}",
		Summary:     "Get content",
		Description: "Returns a catalog entry by ID",
		Tags:        []string{"Content"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleGetContent)

	huma.Register(s.api, huma.Operation{
		OperationID: "createContent",
		Method:      http.MethodPost,
		Path:        "/api/v1/admin/content",
		Summary:     "Create content",
		Description: "Adds a catalog entry. Requires admin access.",
		Tags:        []string{"Admin"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleCreateContent)

	huma.Register(s.api, huma.Operation{
		OperationID: "updateContent",
		Method:      http.MethodPatch,
		Path:        "/api/v1/admin/content/{id}",
		Summary:     "Update content",
		Description: "Applies a partial update to a catalog entry. Requires admin access.",
		Tags:        []string{"Admin"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleUpdateContent)

	huma.Register(s.api, huma.Operation{
		OperationID: "deleteContent",
		Method:      http.MethodDelete,
		Path:        "/api/v1/admin/content/{id}",
		Summary:     "Delete content",
		Description: "Removes a catalog entry. Requires admin access.",
		Tags:        []string{"Admin"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleDeleteContent)

	huma.Register(s.api, huma.Operation{
		OperationID: "rebuildSearchIndex",
		Method:      http.MethodPost,
		Path:        "/api/v1/admin/search/rebuild",
		Summary:     "Rebuild search index",
		Description: "Drops and reindexes all content and channels. Requires admin access.",
		Tags:        []string{"Admin"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleRebuildSearchIndex)
}

// === DTOs ===

type ContentResponse struct {
	ID              string     `json:"id" doc:"Content ID"`
	Title           string     `json:"title" doc:"Title"`
	Description     string     `json:"description,omitempty" doc:"Description"`
	StreamURL       string     `json:"stream_url" doc:"Stream location"`
	ThumbnailURL    string     `json:"thumbnail_url,omitempty" doc:"Thumbnail image"`
	Type            string     `json:"type" doc:"Content type (live_tv, vod, series, movie)"`
	DurationSeconds *int64     `json:"duration_seconds,omitempty" doc:"Runtime in seconds"`
	ReleaseDate     *time.Time `json:"release_date,omitempty" doc:"Release date"`
	Genre           string     `json:"genre,omitempty" doc:"Genre tag"`
	Rating          *float64   `json:"rating,omitempty" doc:"Rating on a 0-10 scale"`
	CreatedAt       time.Time  `json:"created_at" doc:"Creation time"`
	UpdatedAt       time.Time  `json:"updated_at" doc:"Last update time"`
}

type ListContentResponse struct {
	Content []ContentResponse `json:"content" doc:"Catalog entries"`
}

type ListContentOutput struct {
	Body ListContentResponse
}

type ContentOutput struct {
	Body ContentResponse
}

type SearchContentInput struct {
	Authorization string `header:"Authorization"`
	Query         string `query:"q" doc:"Search terms"`
	Limit         int    `query:"limit" doc:"Maximum results (default 20)"`
}

type CountInput struct {
	Authorization string `header:"Authorization"`
	Count         int    `query:"count" doc:"Maximum results (default 10)"`
}

type ContentTypeInput struct {
	Authorization string `header:"Authorization"`
	Type          string `path:"type" doc:"Content type (live_tv, vod, series, movie)"`
}

type ContentGenreInput struct {
	Authorization string `header:"Authorization"`
	Genre         string `path:"genre" doc:"Genre tag"`
}

type ContentIDInput struct {
	Authorization string `header:"Authorization"`
	ID            string `path:"id" doc:"Content ID"`
}

type CreateContentInput struct {
	Authorization string `header:"Authorization"`
	Body          service.CreateContentRequest
}

type UpdateContentInput struct {
	Authorization string `header:"Authorization"`
	ID            string `path:"id" doc:"Content ID"`
	Body          service.UpdateContentRequest
}

// === Handlers ===

func (s *Server) handleListContent(ctx context.Context, input *AuthenticatedInput) (*ListContentOutput, error) {
	if _, err := s.authenticateRequest(ctx, input.Authorization); err != nil {
		return nil, err
	}

	content, err := s.services.Catalog.GetAllContent(ctx)
	if err != nil {
		return nil, err
	}

	return &ListContentOutput{Body: ListContentResponse{Content: mapContentList(content)}}, nil
}

func (s *Server) handleGetContent(ctx context.Context, input *ContentIDInput) (*ContentOutput, error) {
	if _, err := s.authenticateRequest(ctx, input.Authorization); err != nil {
		return nil, err
	}

	content, err := s.services.Catalog.GetContent(ctx, input.ID)
	if err != nil {
		return nil, err
	}

	return &ContentOutput{Body: mapContentResponse(content)}, nil
}

func (s *Server) handleGetContentByType(ctx context.Context, input *ContentTypeInput) (*ListContentOutput, error) {
	if _, err := s.authenticateRequest(ctx, input.Authorization); err != nil {
		return nil, err
	}

	contentType, ok := domain.ParseContentType(input.Type)
	if !ok {
		return nil, domainerrors.Validationf("unknown content type %q", input.Type)
	}

	content, err := s.services.Catalog.GetContentByType(ctx, contentType)
	if err != nil {
		return nil, err
	}

	return &ListContentOutput{Body: ListContentResponse{Content: mapContentList(content)}}, nil
}

func (s *Server) handleGetContentByGenre(ctx context.Context, input *ContentGenreInput) (*ListContentOutput, error) {
	if _, err := s.authenticateRequest(ctx, input.Authorization); err != nil {
		return nil, err
	}

	content, err := s.services.Catalog.GetContentByGenre(ctx, input.Genre)
	if err != nil {
		return nil, err
	}

	return &ListContentOutput{Body: ListContentResponse{Content: mapContentList(content)}}, nil
}

func (s *Server) handleSearchContent(ctx context.Context, input *SearchContentInput) (*ListContentOutput, error) {
	if _, err := s.authenticateRequest(ctx, input.Authorization); err != nil {
		return nil, err
	}

	content, err := s.services.Catalog.SearchContent(ctx, input.Query, input.Limit)
	if err != nil {
		return nil, err
	}

	return &ListContentOutput{Body: ListContentResponse{Content: mapContentList(content)}}, nil
}

func (s *Server) handleGetTrendingContent(ctx context.Context, input *CountInput) (*ListContentOutput, error) {
	if _, err := s.authenticateRequest(ctx, input.Authorization); err != nil {
		return nil, err
	}

	content, err := s.services.Catalog.GetTrendingContent(ctx, input.Count)
	if err != nil {
		return nil, err
	}

	return &ListContentOutput{Body: ListContentResponse{Content: mapContentList(content)}}, nil
}

func (s *Server) handleGetRecentContent(ctx context.Context, input *CountInput) (*ListContentOutput, error) {
	if _, err := s.authenticateRequest(ctx, input.Authorization); err != nil {
		return nil, err
	}

	content, err := s.services.Catalog.GetRecentContent(ctx, input.Count)
	if err != nil {
		return nil, err
	}

	return &ListContentOutput{Body: ListContentResponse{Content: mapContentList(content)}}, nil
}

func (s *Server) handleCreateContent(ctx context.Context, input *CreateContentInput) (*ContentOutput, error) {
	if _, err := s.authenticateAndRequireAdmin(ctx, input.Authorization); err != nil {
		return nil, err
	}

	content, err := s.services.Catalog.CreateContent(ctx, input.Body)
	if err != nil {
		return nil, err
	}

	return &ContentOutput{Body: mapContentResponse(content)}, nil
}

func (s *Server) handleUpdateContent(ctx context.Context, input *UpdateContentInput) (*ContentOutput, error) {
	if _, err := s.authenticateAndRequireAdmin(ctx, input.Authorization); err != nil {
		return nil, err
	}

	content, err := s.services.Catalog.UpdateContent(ctx, input.ID, input.Body)
	if err != nil {
		return nil, err
	}

	return &ContentOutput{Body: mapContentResponse(content)}, nil
}

func (s *Server) handleDeleteContent(ctx context.Context, input *ContentIDInput) (*MessageOutput, error) {
	if _, err := s.authenticateAndRequireAdmin(ctx, input.Authorization); err != nil {
		return nil, err
	}

	if err := s.services.Catalog.DeleteContent(ctx, input.ID); err != nil {
		return nil, err
	}

	return &MessageOutput{Body: MessageResponse{Message: "Content deleted"}}, nil
}

func (s *Server) handleRebuildSearchIndex(ctx context.Context, input *AuthenticatedInput) (*MessageOutput, error) {
	if _, err := s.authenticateAndRequireAdmin(ctx, input.Authorization); err != nil {
		return nil, err
	}

	if err := s.services.Catalog.RebuildSearchIndex(ctx); err != nil {
		return nil, err
	}

	return &MessageOutput{Body: MessageResponse{Message: "Search index rebuilt"}}, nil
}

// === Mappers ===

func mapContentResponse(c *domain.Content) ContentResponse {
	return ContentResponse{
		ID:              c.ID,
		Title:           c.Title,
		Description:     c.Description,
		StreamURL:       c.StreamURL,
		ThumbnailURL:    c.ThumbnailURL,
		Type:            string(c.Type),
		DurationSeconds: c.DurationSeconds,
		ReleaseDate:     c.ReleaseDate,
		Genre:           c.Genre,
		Rating:          c.Rating,
		CreatedAt:       c.CreatedAt,
		UpdatedAt:       c.UpdatedAt,
	}
}

func mapContentList(content []*domain.Content) []ContentResponse {
	resp := make([]ContentResponse, len(content))
	for i, c := range content {
		resp[i] = mapContentResponse(c)
	}
	return resp
}
