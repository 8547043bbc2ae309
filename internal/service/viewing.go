package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/streamviewapp/streamview-server/internal/domain"
	"github.com/streamviewapp/streamview-server/internal/id"
	"github.com/streamviewapp/streamview-server/internal/store"
)

// defaultHistoryLimit caps ListHistory when the caller doesn't ask for more.
const defaultHistoryLimit = 50

// continueWatchingLimit caps the continue-watching rail.
const continueWatchingLimit = 10

// ViewingService tracks playback sessions and derives viewing statistics.
type ViewingService struct {
	store  *store.Store
	logger *slog.Logger
}

// NewViewingService creates a new viewing service.
func NewViewingService(store *store.Store, logger *slog.Logger) *ViewingService {
	return &ViewingService{
		store:  store,
		logger: logger,
	}
}

// StartSessionRequest contains the data for starting a viewing session.
// ContentID and ChannelID are both optional; a session tracks whichever
// the client is playing. Referenced IDs are not checked for existence,
// which keeps session start cheap and lets clients report playback of
// entries that were removed mid-stream.
type StartSessionRequest struct {
	ContentID  string `json:"content_id" validate:"omitempty,max=64"`
	ChannelID  string `json:"channel_id" validate:"omitempty,max=64"`
	DeviceInfo string `json:"device_info" validate:"omitempty,max=256"`
}

// StartSession begins tracking a playback session for the user.
func (s *ViewingService) StartSession(ctx context.Context, userID string, req StartSessionRequest) (*domain.ViewingSession, error) {
	if err := validate.Struct(req); err != nil {
		return nil, formatValidationError(err)
	}

	sessionID, err := id.Generate("sess")
	if err != nil {
		return nil, fmt.Errorf("generate session ID: %w", err)
	}

	deviceInfo := req.DeviceInfo
	if deviceInfo == "" {
		// Anonymous correlation value so multiple untagged devices stay distinguishable
		deviceInfo = uuid.NewString()
	}

	session := domain.NewViewingSession(sessionID, userID, req.ContentID, req.ChannelID, deviceInfo)

	if err := s.store.CreateViewingSession(ctx, session); err != nil {
		return nil, fmt.Errorf("store session: %w", err)
	}

	s.logger.Debug("viewing session started",
		"session_id", session.ID,
		"user_id", userID,
		"content_id", req.ContentID,
		"channel_id", req.ChannelID,
	)

	return session, nil
}

// UpdateProgressRequest carries a progress report from the client.
type UpdateProgressRequest struct {
	ProgressSeconds float64 `json:"progress_seconds" validate:"gte=0"`
	Completed       bool    `json:"completed"`
}

// UpdateProgress records the client's playback position on a session.
// Reports against unknown sessions are silently dropped so stale clients
// don't error after a session expires server-side. Marking a session
// completed derives its duration from wall-clock time since start;
// completing again recomputes it (last call wins).
func (s *ViewingService) UpdateProgress(ctx context.Context, sessionID string, req UpdateProgressRequest) error {
	if err := validate.Struct(req); err != nil {
		return formatValidationError(err)
	}

	session, err := s.store.GetViewingSession(ctx, sessionID)
	if errors.Is(err, store.ErrNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("get session: %w", err)
	}

	session.ProgressSeconds = req.ProgressSeconds
	if req.Completed {
		session.Complete(time.Now().UTC())
	}

	if err := s.store.UpdateViewingSession(ctx, session); err != nil {
		return fmt.Errorf("update session: %w", err)
	}

	return nil
}

// ListHistory returns the user's sessions sorted most recent first.
// A limit of 0 or less falls back to the default of 50.
func (s *ViewingService) ListHistory(ctx context.Context, userID string, limit int) ([]*domain.ViewingSession, error) {
	if limit <= 0 {
		limit = defaultHistoryLimit
	}
	return s.store.GetRecentSessionsForUser(ctx, userID, limit)
}

// LastSessionForContent returns the user's most recent session for a
// catalog entry, or nil when the user has never watched it.
func (s *ViewingService) LastSessionForContent(ctx context.Context, userID, contentID string) (*domain.ViewingSession, error) {
	sessions, err := s.store.GetSessionsForUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	var latest *domain.ViewingSession
	for _, session := range sessions {
		if session.ContentID != contentID {
			continue
		}
		if latest == nil || session.StartTime.After(latest.StartTime) {
			latest = session
		}
	}
	return latest, nil
}

// ContinueWatchingItem pairs an in-progress session with its content.
type ContinueWatchingItem struct {
	Content         *domain.Content `json:"content"`
	SessionID       string          `json:"session_id"`
	ProgressSeconds float64         `json:"progress_seconds"`
	StartTime       time.Time       `json:"start_time"`
}

// GetContinueWatching returns the user's unfinished catalog entries,
// most recently watched first. One entry per content ID, capped at 10;
// sessions whose content has been removed are dropped.
func (s *ViewingService) GetContinueWatching(ctx context.Context, userID string) ([]*ContinueWatchingItem, error) {
	sessions, err := s.store.GetRecentSessionsForUser(ctx, userID, 0)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool)
	var picked []*domain.ViewingSession
	for _, session := range sessions {
		if session.ContentID == "" || session.Completed || session.ProgressSeconds <= 0 {
			continue
		}
		if seen[session.ContentID] {
			continue
		}
		seen[session.ContentID] = true
		picked = append(picked, session)
		if len(picked) >= continueWatchingLimit {
			break
		}
	}

	ids := make([]string, 0, len(picked))
	for _, session := range picked {
		ids = append(ids, session.ContentID)
	}
	contentByID, err := s.store.GetContentBatch(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("resolve content: %w", err)
	}

	items := make([]*ContinueWatchingItem, 0, len(picked))
	for _, session := range picked {
		content, ok := contentByID[session.ContentID]
		if !ok {
			continue
		}
		items = append(items, &ContinueWatchingItem{
			Content:         content,
			SessionID:       session.ID,
			ProgressSeconds: session.ProgressSeconds,
			StartTime:       session.StartTime,
		})
	}

	return items, nil
}

// GetGenreBreakdown counts the user's distinct watched catalog entries
// per genre. Entries without a genre, or that no longer resolve, are
// not counted.
func (s *ViewingService) GetGenreBreakdown(ctx context.Context, userID string) (map[string]int, error) {
	sessions, err := s.store.GetSessionsForUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool)
	var ids []string
	for _, session := range sessions {
		if session.ContentID == "" || seen[session.ContentID] {
			continue
		}
		seen[session.ContentID] = true
		ids = append(ids, session.ContentID)
	}

	contentByID, err := s.store.GetContentBatch(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("resolve content: %w", err)
	}

	breakdown := make(map[string]int)
	for _, contentID := range ids {
		content, ok := contentByID[contentID]
		if !ok || content.Genre == "" {
			continue
		}
		breakdown[content.Genre]++
	}

	return breakdown, nil
}

// GetTotalWatchTime sums the recorded durations of the user's completed
// sessions, in seconds.
func (s *ViewingService) GetTotalWatchTime(ctx context.Context, userID string) (int64, error) {
	sessions, err := s.store.GetSessionsForUser(ctx, userID)
	if err != nil {
		return 0, err
	}

	var total int64
	for _, session := range sessions {
		total += session.DurationOrZero()
	}
	return total, nil
}

// ViewCount pairs an entity with its session count.
type ViewCount struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	Views int    `json:"views"`
}

// GetTopContent returns the most-watched catalog entries across all
// users by session count. Equal counts are ordered by ID so repeated
// calls return a stable ranking. Entries that no longer resolve are
// dropped.
func (s *ViewingService) GetTopContent(ctx context.Context, limit int) ([]*ViewCount, error) {
	if limit <= 0 {
		limit = 10
	}

	sessions, err := s.store.ListViewingSessions(ctx)
	if err != nil {
		return nil, err
	}

	counts := make(map[string]int)
	for _, session := range sessions {
		if session.ContentID != "" {
			counts[session.ContentID]++
		}
	}

	top := topCounts(counts, limit)

	ids := make([]string, 0, len(top))
	for _, vc := range top {
		ids = append(ids, vc.ID)
	}
	contentByID, err := s.store.GetContentBatch(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("resolve content: %w", err)
	}

	result := make([]*ViewCount, 0, len(top))
	for _, vc := range top {
		content, ok := contentByID[vc.ID]
		if !ok {
			continue
		}
		vc.Title = content.Title
		result = append(result, vc)
	}
	return result, nil
}

// GetTopChannels returns the most-watched channels across all users by
// session count. Equal counts are ordered by ID so repeated calls
// return a stable ranking. Channels that no longer resolve are dropped.
func (s *ViewingService) GetTopChannels(ctx context.Context, limit int) ([]*ViewCount, error) {
	if limit <= 0 {
		limit = 10
	}

	sessions, err := s.store.ListViewingSessions(ctx)
	if err != nil {
		return nil, err
	}

	counts := make(map[string]int)
	for _, session := range sessions {
		if session.ChannelID != "" {
			counts[session.ChannelID]++
		}
	}

	top := topCounts(counts, limit)

	ids := make([]string, 0, len(top))
	for _, vc := range top {
		ids = append(ids, vc.ID)
	}
	channelByID, err := s.store.GetChannelBatch(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("resolve channels: %w", err)
	}

	result := make([]*ViewCount, 0, len(top))
	for _, vc := range top {
		channel, ok := channelByID[vc.ID]
		if !ok {
			continue
		}
		vc.Title = channel.Name
		result = append(result, vc)
	}
	return result, nil
}

// topCounts converts a count map to a slice sorted by count descending,
// tie-broken by ID for stable output, capped at limit.
func topCounts(counts map[string]int, limit int) []*ViewCount {
	result := make([]*ViewCount, 0, len(counts))
	for id, views := range counts {
		result = append(result, &ViewCount{ID: id, Views: views})
	}

	slices.SortFunc(result, func(a, b *ViewCount) int {
		if a.Views != b.Views {
			return b.Views - a.Views
		}
		return strings.Compare(a.ID, b.ID)
	})

	if len(result) > limit {
		result = result[:limit]
	}
	return result
}
