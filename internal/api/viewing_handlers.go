package api

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/streamviewapp/streamview-server/internal/domain"
	"github.com/streamviewapp/streamview-server/internal/service"
)

func (s *Server) registerViewingRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "startViewingSession",
		Method:      http.MethodPost,
		Path:        "/api/v1/viewing/start",
		Summary:     "Start viewing session",
		Description: "Begins tracking a playback session",
		Tags:        []string{"Viewing"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleStartViewingSession)

	huma.Register(s.api, huma.Operation{
		OperationID: "updateViewingProgress",
		Method:      http.MethodPut,
		Path:        "/api/v1/viewing/{id}/progress",
		Summary:     "Update viewing progress",
		Description: "Records the client's playback position on a session",
		Tags:        []string{"Viewing"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleUpdateViewingProgress)

	huma.Register(s.api, huma.Operation{
		OperationID: "getViewingHistory",
		Method:      http.MethodGet,
		Path:        "/api/v1/viewing/history",
		Summary:     "Get viewing history",
		Description: "Returns the user's sessions, most recent first",
		Tags:        []string{"Viewing"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleGetViewingHistory)

	huma.Register(s.api, huma.Operation{
		OperationID: "getContinueWatching",
		Method:      http.MethodGet,
		Path:        "/api/v1/viewing/continue",
		Summary:     "Get continue watching",
		Description: "Returns the user's unfinished catalog entries, most recently watched first",
		Tags:        []string{"Viewing"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleGetContinueWatching)
}

// === DTOs ===

type StartSessionRequest struct {
	ContentID  string `json:"content_id,omitempty" validate:"omitempty,max=64" doc:"Catalog entry being played"`
	ChannelID  string `json:"channel_id,omitempty" validate:"omitempty,max=64" doc:"Channel being played"`
	DeviceInfo string `json:"device_info,omitempty" validate:"omitempty,max=256" doc:"Client device description"`
}

type StartSessionInput struct {
	Authorization string `header:"Authorization"`
	Body          StartSessionRequest
}

type SessionResponse struct {
	ID              string     `json:"id" doc:"Session ID"`
	UserID          string     `json:"user_id" doc:"Owning user"`
	ContentID       string     `json:"content_id,omitempty" doc:"Catalog entry"`
	ChannelID       string     `json:"channel_id,omitempty" doc:"Channel"`
	StartTime       time.Time  `json:"start_time" doc:"Playback start"`
	EndTime         *time.Time `json:"end_time,omitempty" doc:"Playback end"`
	DurationSeconds *int64     `json:"duration_seconds,omitempty" doc:"Session length in seconds"`
	ProgressSeconds float64    `json:"progress_seconds" doc:"Playback position in seconds"`
	Completed       bool       `json:"completed" doc:"Whether playback finished"`
	DeviceInfo      string     `json:"device_info,omitempty" doc:"Client device description"`
}

type SessionOutput struct {
	Body SessionResponse
}

type UpdateProgressRequest struct {
	ProgressSeconds float64 `json:"progress_seconds" validate:"gte=0" doc:"Playback position in seconds"`
	Completed       bool    `json:"completed,omitempty" doc:"Whether playback finished"`
}

type UpdateProgressInput struct {
	Authorization string `header:"Authorization"`
	ID            string `path:"id" doc:"Session ID"`
	Body          UpdateProgressRequest
}

type ViewingHistoryInput struct {
	Authorization string `header:"Authorization"`
	Count         int    `query:"count" doc:"Maximum sessions to return (default 50)"`
}

type ViewingHistoryResponse struct {
	Sessions []SessionResponse `json:"sessions" doc:"Viewing sessions, most recent first"`
}

type ViewingHistoryOutput struct {
	Body ViewingHistoryResponse
}

type ContinueWatchingItem struct {
	Content         ContentResponse `json:"content" doc:"Catalog entry to resume"`
	SessionID       string          `json:"session_id" doc:"Session holding the position"`
	ProgressSeconds float64         `json:"progress_seconds" doc:"Playback position in seconds"`
	StartTime       time.Time       `json:"start_time" doc:"When the session started"`
}

type ContinueWatchingResponse struct {
	Items []ContinueWatchingItem `json:"items" doc:"Entries to resume, most recent first"`
}

type ContinueWatchingOutput struct {
	Body ContinueWatchingResponse
}

// === Handlers ===

func (s *Server) handleStartViewingSession(ctx context.Context, input *StartSessionInput) (*SessionOutput, error) {
	userID, err := s.authenticateRequest(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	session, err := s.services.Viewing.StartSession(ctx, userID, service.StartSessionRequest{
		ContentID:  input.Body.ContentID,
		ChannelID:  input.Body.ChannelID,
		DeviceInfo: input.Body.DeviceInfo,
	})
	if err != nil {
		return nil, err
	}

	return &SessionOutput{Body: mapSessionResponse(session)}, nil
}

func (s *Server) handleUpdateViewingProgress(ctx context.Context, input *UpdateProgressInput) (*MessageOutput, error) {
	if _, err := s.authenticateRequest(ctx, input.Authorization); err != nil {
		return nil, err
	}

	if err := s.services.Viewing.UpdateProgress(ctx, input.ID, service.UpdateProgressRequest{
		ProgressSeconds: input.Body.ProgressSeconds,
		Completed:       input.Body.Completed,
	}); err != nil {
		return nil, err
	}

	return &MessageOutput{Body: MessageResponse{Message: "Progress recorded"}}, nil
}

func (s *Server) handleGetViewingHistory(ctx context.Context, input *ViewingHistoryInput) (*ViewingHistoryOutput, error) {
	userID, err := s.authenticateRequest(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	sessions, err := s.services.Viewing.ListHistory(ctx, userID, input.Count)
	if err != nil {
		return nil, err
	}

	resp := make([]SessionResponse, len(sessions))
	for i, session := range sessions {
		resp[i] = mapSessionResponse(session)
	}

	return &ViewingHistoryOutput{Body: ViewingHistoryResponse{Sessions: resp}}, nil
}

func (s *Server) handleGetContinueWatching(ctx context.Context, input *AuthenticatedInput) (*ContinueWatchingOutput, error) {
	userID, err := s.authenticateRequest(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	items, err := s.services.Viewing.GetContinueWatching(ctx, userID)
	if err != nil {
		return nil, err
	}

	resp := make([]ContinueWatchingItem, len(items))
	for i, item := range items {
		resp[i] = ContinueWatchingItem{
			Content:         mapContentResponse(item.Content),
			SessionID:       item.SessionID,
			ProgressSeconds: item.ProgressSeconds,
			StartTime:       item.StartTime,
		}
	}

	return &ContinueWatchingOutput{Body: ContinueWatchingResponse{Items: resp}}, nil
}

// === Mappers ===

func mapSessionResponse(v *domain.ViewingSession) SessionResponse {
	return SessionResponse{
		ID:              v.ID,
		UserID:          v.UserID,
		ContentID:       v.ContentID,
		ChannelID:       v.ChannelID,
		StartTime:       v.StartTime,
		EndTime:         v.EndTime,
		DurationSeconds: v.DurationSeconds,
		ProgressSeconds: v.ProgressSeconds,
		Completed:       v.Completed,
		DeviceInfo:      v.DeviceInfo,
	}
}
