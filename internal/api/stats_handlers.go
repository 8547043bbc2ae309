package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/streamviewapp/streamview-server/internal/service"
)

func (s *Server) registerStatsRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "getGenreBreakdown",
		Method:      http.MethodGet,
		Path:        "/api/v1/stats/genres",
		Summary:     "Get genre breakdown",
		Description: "Counts the user's distinct watched entries per genre",
		Tags:        []string{"Stats"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleGetGenreBreakdown)

	huma.Register(s.api, huma.Operation{
		OperationID: "getWatchTime",
		Method:      http.MethodGet,
		Path:        "/api/v1/stats/watch-time",
		Summary:     "Get total watch time",
		Description: "Sums the user's completed session durations",
		Tags:        []string{"Stats"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleGetWatchTime)

	huma.Register(s.api, huma.Operation{
		OperationID: "getPopularContent",
		Method:      http.MethodGet,
		Path:        "/api/v1/stats/popular/content",
		Summary:     "Get popular content",
		Description: "Returns the most-watched catalog entries across all users",
		Tags:        []string{"Stats"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleGetPopularContent)

	huma.Register(s.api, huma.Operation{
		OperationID: "getPopularChannels",
		Method:      http.MethodGet,
		Path:        "/api/v1/stats/popular/channels",
		Summary:     "Get popular channels",
		Description: "Returns the most-watched channels across all users",
		Tags:        []string{"Stats"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleGetPopularChannels)
}

// === DTOs ===

type GenreBreakdownResponse struct {
	Genres map[string]int `json:"genres" doc:"Distinct watched entries per genre"`
}

type GenreBreakdownOutput struct {
	Body GenreBreakdownResponse
}

type WatchTimeResponse struct {
	TotalSeconds int64 `json:"total_seconds" doc:"Total completed watch time in seconds"`
}

type WatchTimeOutput struct {
	Body WatchTimeResponse
}

type ViewCountResponse struct {
	ID    string `json:"id" doc:"Entity ID"`
	Title string `json:"title" doc:"Display title"`
	Views int    `json:"views" doc:"Session count"`
}

type PopularResponse struct {
	Items []ViewCountResponse `json:"items" doc:"Entities by view count, descending"`
}

type PopularOutput struct {
	Body PopularResponse
}

// === Handlers ===

func (s *Server) handleGetGenreBreakdown(ctx context.Context, input *AuthenticatedInput) (*GenreBreakdownOutput, error) {
	userID, err := s.authenticateRequest(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	breakdown, err := s.services.Viewing.GetGenreBreakdown(ctx, userID)
	if err != nil {
		return nil, err
	}

	return &GenreBreakdownOutput{Body: GenreBreakdownResponse{Genres: breakdown}}, nil
}

func (s *Server) handleGetWatchTime(ctx context.Context, input *AuthenticatedInput) (*WatchTimeOutput, error) {
	userID, err := s.authenticateRequest(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	total, err := s.services.Viewing.GetTotalWatchTime(ctx, userID)
	if err != nil {
		return nil, err
	}

	return &WatchTimeOutput{Body: WatchTimeResponse{TotalSeconds: total}}, nil
}

func (s *Server) handleGetPopularContent(ctx context.Context, input *CountInput) (*PopularOutput, error) {
	if _, err := s.authenticateRequest(ctx, input.Authorization); err != nil {
		return nil, err
	}

	top, err := s.services.Viewing.GetTopContent(ctx, input.Count)
	if err != nil {
		return nil, err
	}

	return &PopularOutput{Body: PopularResponse{Items: mapViewCounts(top)}}, nil
}

func (s *Server) handleGetPopularChannels(ctx context.Context, input *CountInput) (*PopularOutput, error) {
	if _, err := s.authenticateRequest(ctx, input.Authorization); err != nil {
		return nil, err
	}

	top, err := s.services.Viewing.GetTopChannels(ctx, input.Count)
	if err != nil {
		return nil, err
	}

	return &PopularOutput{Body: PopularResponse{Items: mapViewCounts(top)}}, nil
}

// === Mappers ===

func mapViewCounts(counts []*service.ViewCount) []ViewCountResponse {
	resp := make([]ViewCountResponse, len(counts))
	for i, vc := range counts {
		resp[i] = ViewCountResponse{
			ID:    vc.ID,
			Title: vc.Title,
			Views: vc.Views,
		}
	}
	return resp
}
