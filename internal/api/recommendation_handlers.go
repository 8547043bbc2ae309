package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
)

func (s *Server) registerRecommendationRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "getRecommendations",
		Method:      http.MethodGet,
		Path:        "/api/v1/recommendations",
		Summary:     "Get recommendations",
		Description: "Returns personalized catalog recommendations based on viewing history",
		Tags:        []string{"Recommendations"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleGetRecommendations)

	huma.Register(s.api, huma.Operation{
		OperationID: "getSimilarContent",
		Method:      http.MethodGet,
		Path:        "/api/v1/recommendations/similar/{contentId}",
		Summary:     "Get similar content",
		Description: "Returns entries similar to the given one by genre and type",
		Tags:        []string{"Recommendations"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleGetSimilarContent)

	huma.Register(s.api, huma.Operation{
		OperationID: "getGenreRecommendations",
		Method:      http.MethodGet,
		Path:        "/api/v1/recommendations/genre/{genre}",
		Summary:     "Get genre recommendations",
		Description: "Returns unwatched entries in a genre, best rated first",
		Tags:        []string{"Recommendations"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleGetGenreRecommendations)

	huma.Register(s.api, huma.Operation{
		OperationID: "getChannelRecommendations",
		Method:      http.MethodGet,
		Path:        "/api/v1/recommendations/channels",
		Summary:     "Get channel recommendations",
		Description: "Returns unwatched active channels matching the user's category affinity",
		Tags:        []string{"Recommendations"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleGetChannelRecommendations)
}

// === DTOs ===

type SimilarContentInput struct {
	Authorization string `header:"Authorization"`
	ContentID     string `path:"contentId" doc:"Source content ID"`
	Count         int    `query:"count" doc:"Maximum results (default 10)"`
}

type GenreRecommendationsInput struct {
	Authorization string `header:"Authorization"`
	Genre         string `path:"genre" doc:"Genre tag"`
	Count         int    `query:"count" doc:"Maximum results (default 10)"`
}

// === Handlers ===

func (s *Server) handleGetRecommendations(ctx context.Context, input *CountInput) (*ListContentOutput, error) {
	userID, err := s.authenticateRequest(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	content, err := s.services.Recommend.RecommendContent(ctx, userID, input.Count)
	if err != nil {
		return nil, err
	}

	return &ListContentOutput{Body: ListContentResponse{Content: mapContentList(content)}}, nil
}

func (s *Server) handleGetSimilarContent(ctx context.Context, input *SimilarContentInput) (*ListContentOutput, error) {
	if _, err := s.authenticateRequest(ctx, input.Authorization); err != nil {
		return nil, err
	}

	content, err := s.services.Recommend.RecommendSimilar(ctx, input.ContentID, input.Count)
	if err != nil {
		return nil, err
	}

	return &ListContentOutput{Body: ListContentResponse{Content: mapContentList(content)}}, nil
}

func (s *Server) handleGetGenreRecommendations(ctx context.Context, input *GenreRecommendationsInput) (*ListContentOutput, error) {
	userID, err := s.authenticateRequest(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	content, err := s.services.Recommend.RecommendByGenre(ctx, userID, input.Genre, input.Count)
	if err != nil {
		return nil, err
	}

	return &ListContentOutput{Body: ListContentResponse{Content: mapContentList(content)}}, nil
}

func (s *Server) handleGetChannelRecommendations(ctx context.Context, input *CountInput) (*ListChannelsOutput, error) {
	userID, err := s.authenticateRequest(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	channels, err := s.services.Recommend.RecommendChannels(ctx, userID, input.Count)
	if err != nil {
		return nil, err
	}

	return &ListChannelsOutput{Body: ListChannelsResponse{Channels: mapChannelList(channels)}}, nil
}
