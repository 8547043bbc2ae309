package api

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/streamviewapp/streamview-server/internal/domain"
	"github.com/streamviewapp/streamview-server/internal/service"
)

func (s *Server) registerChannelRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "listChannels",
		Method:      http.MethodGet,
		Path:        "/api/v1/channels",
		Summary:     "List channels",
		Description: "Returns the full channel lineup",
		Tags:        []string{"Channels"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleListChannels)

	huma.Register(s.api, huma.Operation{
		OperationID: "listActiveChannels",
		Method:      http.MethodGet,
		Path:        "/api/v1/channels/active",
		Summary:     "List active channels",
		Description: "Returns active channels sorted by channel number",
		Tags:        []string{"Channels"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleListActiveChannels)

	huma.Register(s.api, huma.Operation{
		OperationID: "getChannel",
		Method:      http.MethodGet,
		Path:        "/api/v1/channels/{id}",
		Summary:     "Get channel",
		Description: "Returns a channel by ID",
		Tags:        []string{"Channels"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleGetChannel)

	huma.Register(s.api, huma.Operation{
		OperationID: "createChannel",
		Method:      http.MethodPost,
		Path:        "/api/v1/admin/channels",
		Summary:     "Create channel",
		Description: "Adds a channel to the lineup. Requires admin access.",
		Tags:        []string{"Admin"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleCreateChannel)

	huma.Register(s.api, huma.Operation{
		OperationID: "updateChannel",
		Method:      http.MethodPatch,
		Path:        "/api/v1/admin/channels/{id}",
		Summary:     "Update channel",
		Description: "Applies a partial update to a channel. Requires admin access.",
		Tags:        []string{"Admin"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleUpdateChannel)

	huma.Register(s.api, huma.Operation{
		OperationID: "deleteChannel",
		Method:      http.MethodDelete,
		Path:        "/api/v1/admin/channels/{id}",
		Summary:     "Delete channel",
		Description: "Removes a channel from the lineup. Requires admin access.",
		Tags:        []string{"Admin"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleDeleteChannel)
}

// === DTOs ===

type ChannelResponse struct {
	ID            string    `json:"id" doc:"Channel ID"`
	Name          string    `json:"name" doc:"Channel name"`
	StreamURL     string    `json:"stream_url" doc:"Stream location"`
	LogoURL       string    `json:"logo_url,omitempty" doc:"Channel logo"`
	ChannelNumber int       `json:"channel_number" doc:"Lineup slot"`
	Category      string    `json:"category,omitempty" doc:"Category tag"`
	Language      string    `json:"language,omitempty" doc:"Broadcast language"`
	IsActive      bool      `json:"is_active" doc:"Whether the channel is streamable"`
	CreatedAt     time.Time `json:"created_at" doc:"Creation time"`
	UpdatedAt     time.Time `json:"updated_at" doc:"Last update time"`
}

type ListChannelsResponse struct {
	Channels []ChannelResponse `json:"channels" doc:"Channel lineup"`
}

type ListChannelsOutput struct {
	Body ListChannelsResponse
}

type ChannelOutput struct {
	Body ChannelResponse
}

type ChannelIDInput struct {
	Authorization string `header:"Authorization"`
	ID            string `path:"id" doc:"Channel ID"`
}

type CreateChannelInput struct {
	Authorization string `header:"Authorization"`
	Body          service.CreateChannelRequest
}

type UpdateChannelInput struct {
	Authorization string `header:"Authorization"`
	ID            string `path:"id" doc:"Channel ID"`
	Body          service.UpdateChannelRequest
}

// === Handlers ===

func (s *Server) handleListChannels(ctx context.Context, input *AuthenticatedInput) (*ListChannelsOutput, error) {
	if _, err := s.authenticateRequest(ctx, input.Authorization); err != nil {
		return nil, err
	}

	channels, err := s.services.Catalog.GetAllChannels(ctx)
	if err != nil {
		return nil, err
	}

	return &ListChannelsOutput{Body: ListChannelsResponse{Channels: mapChannelList(channels)}}, nil
}

func (s *Server) handleListActiveChannels(ctx context.Context, input *AuthenticatedInput) (*ListChannelsOutput, error) {
	if _, err := s.authenticateRequest(ctx, input.Authorization); err != nil {
		return nil, err
	}

	channels, err := s.services.Catalog.GetActiveChannels(ctx)
	if err != nil {
		return nil, err
	}

	return &ListChannelsOutput{Body: ListChannelsResponse{Channels: mapChannelList(channels)}}, nil
}

func (s *Server) handleGetChannel(ctx context.Context, input *ChannelIDInput) (*ChannelOutput, error) {
	if _, err := s.authenticateRequest(ctx, input.Authorization); err != nil {
		return nil, err
	}

	channel, err := s.services.Catalog.GetChannel(ctx, input.ID)
	if err != nil {
		return nil, err
	}

	return &ChannelOutput{Body: mapChannelResponse(channel)}, nil
}

func (s *Server) handleCreateChannel(ctx context.Context, input *CreateChannelInput) (*ChannelOutput, error) {
	if _, err := s.authenticateAndRequireAdmin(ctx, input.Authorization); err != nil {
		return nil, err
	}

	channel, err := s.services.Catalog.CreateChannel(ctx, input.Body)
	if err != nil {
		return nil, err
	}

	return &ChannelOutput{Body: mapChannelResponse(channel)}, nil
}

func (s *Server) handleUpdateChannel(ctx context.Context, input *UpdateChannelInput) (*ChannelOutput, error) {
	if _, err := s.authenticateAndRequireAdmin(ctx, input.Authorization); err != nil {
		return nil, err
	}

	channel, err := s.services.Catalog.UpdateChannel(ctx, input.ID, input.Body)
	if err != nil {
		return nil, err
	}

	return &ChannelOutput{Body: mapChannelResponse(channel)}, nil
}

func (s *Server) handleDeleteChannel(ctx context.Context, input *ChannelIDInput) (*MessageOutput, error) {
	if _, err := s.authenticateAndRequireAdmin(ctx, input.Authorization); err != nil {
		return nil, err
	}

	if err := s.services.Catalog.DeleteChannel(ctx, input.ID); err != nil {
		return nil, err
	}

	return &MessageOutput{Body: MessageResponse{Message: "Channel deleted"}}, nil
}

// === Mappers ===

func mapChannelResponse(c *domain.Channel) ChannelResponse {
	return ChannelResponse{
		ID:            c.ID,
		Name:          c.Name,
		StreamURL:     c.StreamURL,
		LogoURL:       c.LogoURL,
		ChannelNumber: c.ChannelNumber,
		Category:      c.Category,
		Language:      c.Language,
		IsActive:      c.IsActive,
		CreatedAt:     c.CreatedAt,
		UpdatedAt:     c.UpdatedAt,
	}
}

func mapChannelList(channels []*domain.Channel) []ChannelResponse {
	resp := make([]ChannelResponse, len(channels))
	for i, c := range channels {
		resp[i] = mapChannelResponse(c)
	}
	return resp
}
