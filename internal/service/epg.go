package service

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/streamviewapp/streamview-server/internal/domain"
	domainerrors "github.com/streamviewapp/streamview-server/internal/errors"
	"github.com/streamviewapp/streamview-server/internal/id"
	"github.com/streamviewapp/streamview-server/internal/store"
	"github.com/streamviewapp/streamview-server/internal/validation"
)

// EPGService manages the electronic program guide.
type EPGService struct {
	store     *store.Store
	validator *validation.Validator
	logger    *slog.Logger
}

// NewEPGService creates a new EPG service.
func NewEPGService(store *store.Store, logger *slog.Logger) *EPGService {
	return &EPGService{
		store:     store,
		validator: validation.New(),
		logger:    logger,
	}
}

// GetAllPrograms returns every guide program sorted by start time.
func (s *EPGService) GetAllPrograms(ctx context.Context) ([]*domain.EPGProgram, error) {
	programs, err := s.store.ListPrograms(ctx)
	if err != nil {
		return nil, err
	}
	sortByStartTime(programs)
	return programs, nil
}

// GetProgram returns a single guide program.
func (s *EPGService) GetProgram(ctx context.Context, programID string) (*domain.EPGProgram, error) {
	return s.store.GetProgram(ctx, programID)
}

// GetProgramsForChannel returns a channel's schedule sorted by start time.
func (s *EPGService) GetProgramsForChannel(ctx context.Context, channelID string) ([]*domain.EPGProgram, error) {
	programs, err := s.store.GetProgramsForChannel(ctx, channelID)
	if err != nil {
		return nil, err
	}
	sortByStartTime(programs)
	return programs, nil
}

// GetCurrentPrograms returns everything airing right now.
// A program is airing when now falls within [StartTime, EndTime],
// inclusive on both ends.
func (s *EPGService) GetCurrentPrograms(ctx context.Context) ([]*domain.EPGProgram, error) {
	programs, err := s.store.ListPrograms(ctx)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	airing := make([]*domain.EPGProgram, 0)
	for _, program := range programs {
		if program.IsAiringAt(now) {
			airing = append(airing, program)
		}
	}
	sortByStartTime(airing)
	return airing, nil
}

// GetCurrentProgramForChannel returns what's airing on a channel now.
func (s *EPGService) GetCurrentProgramForChannel(ctx context.Context, channelID string) (*domain.EPGProgram, error) {
	programs, err := s.store.GetProgramsForChannel(ctx, channelID)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	for _, program := range programs {
		if program.IsAiringAt(now) {
			return program, nil
		}
	}
	return nil, domainerrors.NotFound("no program currently airing on this channel")
}

// GetProgramsInRange returns programs fully contained in [from, to]:
// starting no earlier than from and ending no later than to.
func (s *EPGService) GetProgramsInRange(ctx context.Context, from, to time.Time) ([]*domain.EPGProgram, error) {
	programs, err := s.store.ListPrograms(ctx)
	if err != nil {
		return nil, err
	}

	matched := make([]*domain.EPGProgram, 0)
	for _, program := range programs {
		if !program.StartTime.Before(from) && !program.EndTime.After(to) {
			matched = append(matched, program)
		}
	}
	sortByStartTime(matched)
	return matched, nil
}

// CreateProgramRequest contains the data for scheduling a program.
type CreateProgramRequest struct {
	ChannelID   string    `json:"channel_id" validate:"required,max=64"`
	Title       string    `json:"title" validate:"required,max=512"`
	Description string    `json:"description" validate:"max=4096"`
	StartTime   time.Time `json:"start_time" validate:"required"`
	EndTime     time.Time `json:"end_time" validate:"required,gtfield=StartTime"`
	Category    string    `json:"category" validate:"max=128"`
	Rating      string    `json:"rating" validate:"max=16"`
}

// CreateProgram schedules a program on a channel.
// The channel must exist; overlapping programs are allowed since many
// providers publish overlapping listings.
func (s *EPGService) CreateProgram(ctx context.Context, req CreateProgramRequest) (*domain.EPGProgram, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	if _, err := s.store.GetChannel(ctx, req.ChannelID); err != nil {
		return nil, fmt.Errorf("channel lookup: %w", err)
	}

	programID, err := id.Generate("prg")
	if err != nil {
		return nil, fmt.Errorf("generate program ID: %w", err)
	}

	program := &domain.EPGProgram{
		ID:          programID,
		ChannelID:   req.ChannelID,
		Title:       req.Title,
		Description: req.Description,
		StartTime:   req.StartTime,
		EndTime:     req.EndTime,
		Category:    req.Category,
		Rating:      req.Rating,
		CreatedAt:   time.Now().UTC(),
	}

	if err := s.store.CreateProgram(ctx, program); err != nil {
		return nil, fmt.Errorf("store program: %w", err)
	}

	s.logger.Info("program scheduled",
		"program_id", program.ID,
		"channel_id", program.ChannelID,
		"title", program.Title,
	)
	return program, nil
}

// UpdateProgramRequest contains the fields that can change on a program.
type UpdateProgramRequest struct {
	ChannelID   *string    `json:"channel_id" validate:"omitempty,max=64"`
	Title       *string    `json:"title" validate:"omitempty,max=512"`
	Description *string    `json:"description" validate:"omitempty,max=4096"`
	StartTime   *time.Time `json:"start_time"`
	EndTime     *time.Time `json:"end_time"`
	Category    *string    `json:"category" validate:"omitempty,max=128"`
	Rating      *string    `json:"rating" validate:"omitempty,max=16"`
}

// UpdateProgram applies a partial update to a scheduled program.
func (s *EPGService) UpdateProgram(ctx context.Context, programID string, req UpdateProgramRequest) (*domain.EPGProgram, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	program, err := s.store.GetProgram(ctx, programID)
	if err != nil {
		return nil, err
	}

	if req.ChannelID != nil {
		if _, err := s.store.GetChannel(ctx, *req.ChannelID); err != nil {
			return nil, fmt.Errorf("channel lookup: %w", err)
		}
		program.ChannelID = *req.ChannelID
	}
	if req.Title != nil {
		program.Title = *req.Title
	}
	if req.Description != nil {
		program.Description = *req.Description
	}
	if req.StartTime != nil {
		program.StartTime = *req.StartTime
	}
	if req.EndTime != nil {
		program.EndTime = *req.EndTime
	}
	if req.Category != nil {
		program.Category = *req.Category
	}
	if req.Rating != nil {
		program.Rating = *req.Rating
	}

	if !program.EndTime.After(program.StartTime) {
		return nil, domainerrors.Validation("end_time must be after start_time")
	}

	if err := s.store.UpdateProgram(ctx, program); err != nil {
		return nil, fmt.Errorf("update program: %w", err)
	}
	return program, nil
}

// DeleteProgram removes a program from the guide. Idempotent.
func (s *EPGService) DeleteProgram(ctx context.Context, programID string) error {
	return s.store.DeleteProgram(ctx, programID)
}

// sortByStartTime orders programs earliest first.
func sortByStartTime(programs []*domain.EPGProgram) {
	slices.SortFunc(programs, func(a, b *domain.EPGProgram) int {
		return a.StartTime.Compare(b.StartTime)
	})
}
