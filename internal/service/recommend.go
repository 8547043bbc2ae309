package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"

	"github.com/streamviewapp/streamview-server/internal/domain"
	"github.com/streamviewapp/streamview-server/internal/store"
)

// affinitySampleSize bounds how many distinct watched IDs feed the
// genre/category affinity, so heavy watchers don't trigger unbounded
// content lookups.
const affinitySampleSize = 20

// RecommendationService suggests catalog entries and channels based on
// the user's viewing history. Taste is modelled as the set of genres
// (or channel categories) the user has already watched; candidates the
// user has seen are always excluded.
type RecommendationService struct {
	store  *store.Store
	logger *slog.Logger
}

// NewRecommendationService creates a new recommendation service.
func NewRecommendationService(store *store.Store, logger *slog.Logger) *RecommendationService {
	return &RecommendationService{
		store:  store,
		logger: logger,
	}
}

// RecommendContent suggests up to count unwatched catalog entries.
// Entries matching the user's genre affinity come first, best-rated
// first; when those run short the remainder is backfilled with the
// best-rated unwatched entries regardless of genre. Users with no
// history get a pure top-rated list.
func (s *RecommendationService) RecommendContent(ctx context.Context, userID string, count int) ([]*domain.Content, error) {
	if count <= 0 {
		return []*domain.Content{}, nil
	}

	watched, err := s.watchedContentIDs(ctx, userID)
	if err != nil {
		return nil, err
	}

	affinity, err := s.genreAffinity(ctx, watched)
	if err != nil {
		return nil, err
	}

	catalog, err := s.store.ListContent(ctx)
	if err != nil {
		return nil, fmt.Errorf("list content: %w", err)
	}

	watchedSet := make(map[string]bool, len(watched))
	for _, id := range watched {
		watchedSet[id] = true
	}

	// Phase 1: unwatched entries in an affinity genre, best first.
	var primary []*domain.Content
	for _, content := range catalog {
		if watchedSet[content.ID] {
			continue
		}
		if content.Genre != "" && affinity[content.Genre] {
			primary = append(primary, content)
		}
	}
	sortByRatingThenRecency(primary)
	if len(primary) > count {
		primary = primary[:count]
	}

	// Phase 2: backfill with the best of the rest when short.
	if len(primary) < count {
		inPrimary := make(map[string]bool, len(primary))
		for _, content := range primary {
			inPrimary[content.ID] = true
		}

		var backfill []*domain.Content
		for _, content := range catalog {
			if watchedSet[content.ID] || inPrimary[content.ID] {
				continue
			}
			backfill = append(backfill, content)
		}
		sortByRatingThenRecency(backfill)

		remaining := count - len(primary)
		if len(backfill) > remaining {
			backfill = backfill[:remaining]
		}
		primary = append(primary, backfill...)
	}

	if primary == nil {
		primary = []*domain.Content{}
	}
	return primary, nil
}

// RecommendSimilar suggests entries resembling the given one: anything
// sharing its genre or its type, genre matches ranked above type
// matches, best-rated first. Unknown IDs yield an empty list.
func (s *RecommendationService) RecommendSimilar(ctx context.Context, contentID string, count int) ([]*domain.Content, error) {
	if count <= 0 {
		return []*domain.Content{}, nil
	}

	source, err := s.store.GetContent(ctx, contentID)
	if errors.Is(err, store.ErrNotFound) {
		return []*domain.Content{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get content: %w", err)
	}

	catalog, err := s.store.ListContent(ctx)
	if err != nil {
		return nil, fmt.Errorf("list content: %w", err)
	}

	type scored struct {
		content *domain.Content
		score   int
	}

	var candidates []scored
	for _, content := range catalog {
		if content.ID == source.ID {
			continue
		}
		genreMatch := source.Genre != "" && content.Genre == source.Genre
		typeMatch := content.Type == source.Type
		if !genreMatch && !typeMatch {
			continue
		}
		score := 0
		if genreMatch {
			score = 2
		}
		candidates = append(candidates, scored{content: content, score: score})
	}

	slices.SortFunc(candidates, func(a, b scored) int {
		if a.score != b.score {
			return b.score - a.score
		}
		return compareFloatDesc(a.content.RatingOrZero(), b.content.RatingOrZero())
	})

	if len(candidates) > count {
		candidates = candidates[:count]
	}

	result := make([]*domain.Content, 0, len(candidates))
	for _, c := range candidates {
		result = append(result, c.content)
	}
	return result, nil
}

// RecommendByGenre suggests up to count unwatched entries in exactly the
// given genre, best-rated first. No backfill: a genre the catalog barely
// covers yields a short list.
func (s *RecommendationService) RecommendByGenre(ctx context.Context, userID, genre string, count int) ([]*domain.Content, error) {
	if count <= 0 {
		return []*domain.Content{}, nil
	}

	watched, err := s.watchedContentIDs(ctx, userID)
	if err != nil {
		return nil, err
	}
	watchedSet := make(map[string]bool, len(watched))
	for _, id := range watched {
		watchedSet[id] = true
	}

	catalog, err := s.store.ListContent(ctx)
	if err != nil {
		return nil, fmt.Errorf("list content: %w", err)
	}

	var matches []*domain.Content
	for _, content := range catalog {
		if watchedSet[content.ID] || content.Genre != genre {
			continue
		}
		matches = append(matches, content)
	}
	sortByRatingThenRecency(matches)

	if len(matches) > count {
		matches = matches[:count]
	}
	if matches == nil {
		matches = []*domain.Content{}
	}
	return matches, nil
}

// RecommendChannels suggests up to count active channels the user hasn't
// watched. Channels in a category the user already watches come first in
// lineup order; the rest of the lineup backfills when those run short.
func (s *RecommendationService) RecommendChannels(ctx context.Context, userID string, count int) ([]*domain.Channel, error) {
	if count <= 0 {
		return []*domain.Channel{}, nil
	}

	sessions, err := s.store.GetSessionsForUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	var watched []string
	seen := make(map[string]bool)
	for _, session := range sessions {
		if session.ChannelID == "" || seen[session.ChannelID] {
			continue
		}
		seen[session.ChannelID] = true
		watched = append(watched, session.ChannelID)
	}

	affinity, err := s.categoryAffinity(ctx, watched)
	if err != nil {
		return nil, err
	}

	channels, err := s.store.ListChannels(ctx)
	if err != nil {
		return nil, fmt.Errorf("list channels: %w", err)
	}

	var primary, rest []*domain.Channel
	for _, channel := range channels {
		if !channel.IsActive || seen[channel.ID] {
			continue
		}
		if channel.Category != "" && affinity[channel.Category] {
			primary = append(primary, channel)
		} else {
			rest = append(rest, channel)
		}
	}

	byNumber := func(a, b *domain.Channel) int {
		return a.ChannelNumber - b.ChannelNumber
	}
	slices.SortFunc(primary, byNumber)
	slices.SortFunc(rest, byNumber)

	if len(primary) > count {
		primary = primary[:count]
	}
	if len(primary) < count {
		remaining := count - len(primary)
		if len(rest) > remaining {
			rest = rest[:remaining]
		}
		primary = append(primary, rest...)
	}

	if primary == nil {
		primary = []*domain.Channel{}
	}
	return primary, nil
}

// watchedContentIDs returns the distinct content IDs from the user's
// history, in history scan order.
func (s *RecommendationService) watchedContentIDs(ctx context.Context, userID string) ([]string, error) {
	sessions, err := s.store.GetSessionsForUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	var ids []string
	seen := make(map[string]bool)
	for _, session := range sessions {
		if session.ContentID == "" || seen[session.ContentID] {
			continue
		}
		seen[session.ContentID] = true
		ids = append(ids, session.ContentID)
	}
	return ids, nil
}

// genreAffinity resolves a sample of watched content IDs into the set
// of genres the user has watched.
func (s *RecommendationService) genreAffinity(ctx context.Context, watched []string) (map[string]bool, error) {
	sample := watched
	if len(sample) > affinitySampleSize {
		sample = sample[:affinitySampleSize]
	}

	contentByID, err := s.store.GetContentBatch(ctx, sample)
	if err != nil {
		return nil, fmt.Errorf("resolve watched content: %w", err)
	}

	affinity := make(map[string]bool)
	for _, contentID := range sample {
		content, ok := contentByID[contentID]
		if !ok || content.Genre == "" {
			continue
		}
		affinity[content.Genre] = true
	}
	return affinity, nil
}

// categoryAffinity resolves a sample of watched channel IDs into the
// set of categories the user has watched.
func (s *RecommendationService) categoryAffinity(ctx context.Context, watched []string) (map[string]bool, error) {
	sample := watched
	if len(sample) > affinitySampleSize {
		sample = sample[:affinitySampleSize]
	}

	channelByID, err := s.store.GetChannelBatch(ctx, sample)
	if err != nil {
		return nil, fmt.Errorf("resolve watched channels: %w", err)
	}

	affinity := make(map[string]bool)
	for _, channelID := range sample {
		channel, ok := channelByID[channelID]
		if !ok || channel.Category == "" {
			continue
		}
		affinity[channel.Category] = true
	}
	return affinity, nil
}

// sortByRatingThenRecency orders content by rating descending, treating
// unrated entries as zero, breaking ties by newest first.
func sortByRatingThenRecency(content []*domain.Content) {
	slices.SortFunc(content, func(a, b *domain.Content) int {
		if c := compareFloatDesc(a.RatingOrZero(), b.RatingOrZero()); c != 0 {
			return c
		}
		return b.CreatedAt.Compare(a.CreatedAt)
	})
}

// compareFloatDesc orders floats descending for use in SortFunc.
func compareFloatDesc(a, b float64) int {
	switch {
	case a > b:
		return -1
	case a < b:
		return 1
	default:
		return 0
	}
}
