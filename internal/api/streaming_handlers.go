package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
)

func (s *Server) registerStreamingRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "getContentStreamURL",
		Method:      http.MethodGet,
		Path:        "/api/v1/stream/content/{id}/url",
		Summary:     "Get content stream URL",
		Description: "Resolves the playback URL for a catalog entry",
		Tags:        []string{"Streaming"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleGetContentStreamURL)

	huma.Register(s.api, huma.Operation{
		OperationID: "getChannelStreamURL",
		Method:      http.MethodGet,
		Path:        "/api/v1/stream/channel/{id}/url",
		Summary:     "Get channel stream URL",
		Description: "Resolves the playback URL for an active channel",
		Tags:        []string{"Streaming"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleGetChannelStreamURL)
}

// === DTOs ===

type StreamURLResponse struct {
	ID  string `json:"id" doc:"Entity ID"`
	URL string `json:"url" doc:"Resolved playback URL"`
}

type StreamURLOutput struct {
	Body StreamURLResponse
}

// === Handlers ===

func (s *Server) handleGetContentStreamURL(ctx context.Context, input *ContentIDInput) (*StreamURLOutput, error) {
	if _, err := s.authenticateRequest(ctx, input.Authorization); err != nil {
		return nil, err
	}

	streamURL, err := s.services.Streaming.ResolveContentURL(ctx, input.ID)
	if err != nil {
		return nil, err
	}

	return &StreamURLOutput{Body: StreamURLResponse{ID: streamURL.ID, URL: streamURL.URL}}, nil
}

func (s *Server) handleGetChannelStreamURL(ctx context.Context, input *ChannelIDInput) (*StreamURLOutput, error) {
	if _, err := s.authenticateRequest(ctx, input.Authorization); err != nil {
		return nil, err
	}

	streamURL, err := s.services.Streaming.ResolveChannelURL(ctx, input.ID)
	if err != nil {
		return nil, err
	}

	return &StreamURLOutput{Body: StreamURLResponse{ID: streamURL.ID, URL: streamURL.URL}}, nil
}
