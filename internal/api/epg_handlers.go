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

func (s *Server) registerEPGRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "listPrograms",
		Method:      http.MethodGet,
		Path:        "/api/v1/epg",
		Summary:     "List programs",
		Description: "Returns the full program guide sorted by start time",
		Tags:        []string{"EPG"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleListPrograms)

	huma.Register(s.api, huma.Operation{
		OperationID: "getCurrentPrograms",
		Method:      http.MethodGet,
		Path:        "/api/v1/epg/now",
		Summary:     "Get current programs",
		Description: "Returns everything airing right now",
		Tags:        []string{"EPG"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleGetCurrentPrograms)

	huma.Register(s.api, huma.Operation{
		OperationID: "getProgramsInRange",
		Method:      http.MethodGet,
		Path:        "/api/v1/epg/range",
		Summary:     "Get programs in range",
		Description: "Returns programs fully contained in the given time window",
		Tags:        []string{"EPG"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleGetProgramsInRange)

	huma.Register(s.api, huma.Operation{
		OperationID: "getChannelPrograms",
		Method:      http.MethodGet,
		Path:        "/api/v1/epg/channel/{channelId}",
		Summary:     "Get channel schedule",
		Description: "Returns a channel's programs sorted by start time",
		Tags:        []string{"EPG"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleGetChannelPrograms)

	huma.Register(s.api, huma.Operation{
		OperationID: "getChannelCurrentProgram",
		Method:      http.MethodGet,
		Path:        "/api/v1/epg/channel/{channelId}/now",
		Summary:     "Get current program for channel",
		Description: "Returns what's airing on a channel right now",
		Tags:        []string{"EPG"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleGetChannelCurrentProgram)

	huma.Register(s.api, huma.Operation{
		OperationID: "getProgram",
		Method:      http.MethodGet,
		Path:        "/api/v1/epg/{id}",
		Summary:     "Get program",
		Description: "Returns a program by ID",
		Tags:        []string{"EPG"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleGetProgram)

	huma.Register(s.api, huma.Operation{
		OperationID: "createProgram",
		Method:      http.MethodPost,
		Path:        "/api/v1/admin/epg",
		Summary:     "Create program",
		Description: "Schedules a program on a channel. Requires admin access.",
		Tags:        []string{"Admin"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleCreateProgram)

	huma.Register(s.api, huma.Operation{
		OperationID: "updateProgram",
		Method:      http.MethodPatch,
		Path:        "/api/v1/admin/epg/{id}",
		Summary:     "Update program",
		Description: "Applies a partial update to a program. Requires admin access.",
		Tags:        []string{"Admin"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleUpdateProgram)

	huma.Register(s.api, huma.Operation{
		OperationID: "deleteProgram",
		Method:      http.MethodDelete,
		Path:        "/api/v1/admin/epg/{id}",
		Summary:     "Delete program",
		Description: "Removes a program from the guide. Requires admin access.",
		Tags:        []string{"Admin"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleDeleteProgram)
}

// === DTOs ===

type ProgramResponse struct {
	ID          string    `json:"id" doc:"Program ID"`
	ChannelID   string    `json:"channel_id" doc:"Channel the program airs on"`
	Title       string    `json:"title" doc:"Program title"`
	Description string    `json:"description,omitempty" doc:"Description"`
	StartTime   time.Time `json:"start_time" doc:"Airing start"`
	EndTime     time.Time `json:"end_time" doc:"Airing end"`
	Category    string    `json:"category,omitempty" doc:"Category tag"`
	Rating      string    `json:"rating,omitempty" doc:"Content rating (TV-PG, etc.)"`
	CreatedAt   time.Time `json:"created_at" doc:"Creation time"`
}

type ListProgramsResponse struct {
	Programs []ProgramResponse `json:"programs" doc:"Guide programs"`
}

type ListProgramsOutput struct {
	Body ListProgramsResponse
}

type ProgramOutput struct {
	Body ProgramResponse
}

type ProgramIDInput struct {
	Authorization string `header:"Authorization"`
	ID            string `path:"id" doc:"Program ID"`
}

type ChannelProgramsInput struct {
	Authorization string `header:"Authorization"`
	ChannelID     string `path:"channelId" doc:"Channel ID"`
}

type ProgramRangeInput struct {
	Authorization string    `header:"Authorization"`
	From          time.Time `query:"from" doc:"Window start (RFC 3339)"`
	To            time.Time `query:"to" doc:"Window end (RFC 3339)"`
}

type CreateProgramInput struct {
	Authorization string `header:"Authorization"`
	Body          service.CreateProgramRequest
}

type UpdateProgramInput struct {
	Authorization string `header:"Authorization"`
	ID            string `path:"id" doc:"Program ID"`
	Body          service.UpdateProgramRequest
}

// === Handlers ===

func (s *Server) handleListPrograms(ctx context.Context, input *AuthenticatedInput) (*ListProgramsOutput, error) {
	if _, err := s.authenticateRequest(ctx, input.Authorization); err != nil {
		return nil, err
	}

	programs, err := s.services.EPG.GetAllPrograms(ctx)
	if err != nil {
		return nil, err
	}

	return &ListProgramsOutput{Body: ListProgramsResponse{Programs: mapProgramList(programs)}}, nil
}

func (s *Server) handleGetProgram(ctx context.Context, input *ProgramIDInput) (*ProgramOutput, error) {
	if _, err := s.authenticateRequest(ctx, input.Authorization); err != nil {
		return nil, err
	}

	program, err := s.services.EPG.GetProgram(ctx, input.ID)
	if err != nil {
		return nil, err
	}

	return &ProgramOutput{Body: mapProgramResponse(program)}, nil
}

func (s *Server) handleGetCurrentPrograms(ctx context.Context, input *AuthenticatedInput) (*ListProgramsOutput, error) {
	if _, err := s.authenticateRequest(ctx, input.Authorization); err != nil {
		return nil, err
	}

	programs, err := s.services.EPG.GetCurrentPrograms(ctx)
	if err != nil {
		return nil, err
	}

	return &ListProgramsOutput{Body: ListProgramsResponse{Programs: mapProgramList(programs)}}, nil
}

func (s *Server) handleGetProgramsInRange(ctx context.Context, input *ProgramRangeInput) (*ListProgramsOutput, error) {
	if _, err := s.authenticateRequest(ctx, input.Authorization); err != nil {
		return nil, err
	}

	if input.From.IsZero() || input.To.IsZero() {
		return nil, domainerrors.Validation("from and to are required")
	}
	if !input.To.After(input.From) {
		return nil, domainerrors.Validation("to must be after from")
	}

	programs, err := s.services.EPG.GetProgramsInRange(ctx, input.From, input.To)
	if err != nil {
		return nil, err
	}

	return &ListProgramsOutput{Body: ListProgramsResponse{Programs: mapProgramList(programs)}}, nil
}

func (s *Server) handleGetChannelPrograms(ctx context.Context, input *ChannelProgramsInput) (*ListProgramsOutput, error) {
	if _, err := s.authenticateRequest(ctx, input.Authorization); err != nil {
		return nil, err
	}

	programs, err := s.services.EPG.GetProgramsForChannel(ctx, input.ChannelID)
	if err != nil {
		return nil, err
	}

	return &ListProgramsOutput{Body: ListProgramsResponse{Programs: mapProgramList(programs)}}, nil
}

func (s *Server) handleGetChannelCurrentProgram(ctx context.Context, input *ChannelProgramsInput) (*ProgramOutput, error) {
	if _, err := s.authenticateRequest(ctx, input.Authorization); err != nil {
		return nil, err
	}

	program, err := s.services.EPG.GetCurrentProgramForChannel(ctx, input.ChannelID)
	if err != nil {
		return nil, err
	}

	return &ProgramOutput{Body: mapProgramResponse(program)}, nil
}

func (s *Server) handleCreateProgram(ctx context.Context, input *CreateProgramInput) (*ProgramOutput, error) {
	if _, err := s.authenticateAndRequireAdmin(ctx, input.Authorization); err != nil {
		return nil, err
	}

	program, err := s.services.EPG.CreateProgram(ctx, input.Body)
	if err != nil {
		return nil, err
	}

	return &ProgramOutput{Body: mapProgramResponse(program)}, nil
}

func (s *Server) handleUpdateProgram(ctx context.Context, input *UpdateProgramInput) (*ProgramOutput, error) {
	if _, err := s.authenticateAndRequireAdmin(ctx, input.Authorization); err != nil {
		return nil, err
	}

	program, err := s.services.EPG.UpdateProgram(ctx, input.ID, input.Body)
	if err != nil {
		return nil, err
	}

	return &ProgramOutput{Body: mapProgramResponse(program)}, nil
}

func (s *Server) handleDeleteProgram(ctx context.Context, input *ProgramIDInput) (*MessageOutput, error) {
	if _, err := s.authenticateAndRequireAdmin(ctx, input.Authorization); err != nil {
		return nil, err
	}

	if err := s.services.EPG.DeleteProgram(ctx, input.ID); err != nil {
		return nil, err
	}

	return &MessageOutput{Body: MessageResponse{Message: "Program deleted"}}, nil
}

// === Mappers ===

func mapProgramResponse(p *domain.EPGProgram) ProgramResponse {
	return ProgramResponse{
		ID:          p.ID,
		ChannelID:   p.ChannelID,
		Title:       p.Title,
		Description: p.Description,
		StartTime:   p.StartTime,
		EndTime:     p.EndTime,
		Category:    p.Category,
		Rating:      p.Rating,
		CreatedAt:   p.CreatedAt,
	}
}

func mapProgramList(programs []*domain.EPGProgram) []ProgramResponse {
	resp := make([]ProgramResponse, len(programs))
	for i, p := range programs {
		resp[i] = mapProgramResponse(p)
	}
	return resp
}
