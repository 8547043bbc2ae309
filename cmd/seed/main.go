// Package main provides a tool to seed the database with demo catalog data.
//
// This creates demo accounts, channels, catalog entries, program guide
// listings, and viewing history to exercise the recommendation and stats
// features against a realistic dataset.
//
// Usage:
//
//	DATA_PATH=~/streamview go run ./cmd/seed
//	DATA_PATH=~/streamview go run ./cmd/seed --sessions=false  # Skip viewing history
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"math/rand"
	"os"
	"path/filepath"
	"time"

	"github.com/streamviewapp/streamview-server/internal/auth"
	"github.com/streamviewapp/streamview-server/internal/domain"
	"github.com/streamviewapp/streamview-server/internal/service"
	"github.com/streamviewapp/streamview-server/internal/store"
)

var seedSessions = flag.Bool("sessions", true, "Create viewing history for demo users")

func main() {
	flag.Parse()

	dataPath := os.Getenv("DATA_PATH")
	if dataPath == "" {
		dataPath = os.ExpandEnv("$HOME/streamview")
	}
	dbPath := filepath.Join(dataPath, "db")

	fmt.Printf("Opening database at: %s\n", dbPath)

	s, err := store.New(dbPath, nil)
	if err != nil {
		log.Fatalf("Failed to open store: %v", err)
	}
	defer s.Close()

	ctx := context.Background()
	logger := slog.New(slog.DiscardHandler)

	secret, err := auth.LoadOrGenerateSecret(dataPath)
	if err != nil {
		log.Fatalf("Failed to load auth secret: %v", err)
	}
	tokenService, err := auth.NewTokenService(secret, 24*time.Hour)
	if err != nil {
		log.Fatalf("Failed to create token service: %v", err)
	}

	authService := service.NewAuthService(s, tokenService, logger)
	catalogService := service.NewCatalogService(s, nil, logger)
	epgService := service.NewEPGService(s, logger)
	viewingService := service.NewViewingService(s, logger)

	users := seedUsers(ctx, s, authService)
	channels := seedChannels(ctx, catalogService)
	catalog := seedContent(ctx, catalogService)
	seedPrograms(ctx, epgService, channels)

	if *seedSessions {
		seedViewingHistory(ctx, viewingService, users, catalog, channels)
	}

	fmt.Println("\nSeeding complete!")
}

// demoUsers are the accounts created for local testing. The first one
// is promoted to admin after registration.
var demoUsers = []struct {
	Username string
	Email    string
	FullName string
}{
	{"admin", "admin@streamview.local", "Demo Admin"},
	{"alex", "alex@example.com", "Alex Rivera"},
	{"jordan", "jordan@example.com", "Jordan Chen"},
	{"sam", "sam@example.com", "Sam Taylor"},
}

func seedUsers(ctx context.Context, s *store.Store, authService *service.AuthService) []*domain.User {
	fmt.Println("\n=== Creating Demo Users ===")

	users := make([]*domain.User, 0, len(demoUsers))
	for i, du := range demoUsers {
		if existing, err := s.GetUserByUsername(ctx, du.Username); err == nil {
			fmt.Printf("  User %s already exists, skipping\n", du.Username)
			users = append(users, existing)
			continue
		}

		resp, err := authService.Register(ctx, service.RegisterRequest{
			Username: du.Username,
			Email:    du.Email,
			Password: "demopass123",
			FullName: du.FullName,
		})
		if err != nil {
			log.Printf("  Failed to create user %s: %v", du.Username, err)
			continue
		}

		user := resp.User
		if i == 0 {
			user.Role = domain.RoleAdmin
			if err := s.UpdateUser(ctx, user); err != nil {
				log.Printf("  Failed to promote %s to admin: %v", du.Username, err)
			}
		}

		fmt.Printf("  Created user: %s (%s)\n", du.Username, du.Email)
		users = append(users, user)
	}
	return users
}

var demoChannels = []service.CreateChannelRequest{
	{Name: "StreamView One", StreamURL: "/live/one/index.m3u8", ChannelNumber: 1, Category: "Entertainment", Language: "en"},
	{Name: "StreamView News", StreamURL: "/live/news/index.m3u8", ChannelNumber: 2, Category: "News", Language: "en"},
	{Name: "StreamView Sports", StreamURL: "/live/sports/index.m3u8", ChannelNumber: 3, Category: "Sports", Language: "en"},
	{Name: "StreamView Kids", StreamURL: "/live/kids/index.m3u8", ChannelNumber: 4, Category: "Kids", Language: "en"},
	{Name: "StreamView Cine", StreamURL: "/live/cine/index.m3u8", ChannelNumber: 5, Category: "Movies", Language: "en"},
	{Name: "StreamView Docs", StreamURL: "/live/docs/index.m3u8", ChannelNumber: 6, Category: "Documentary", Language: "en"},
}

func seedChannels(ctx context.Context, catalogService *service.CatalogService) []*domain.Channel {
	fmt.Println("\n=== Creating Channels ===")

	existing, err := catalogService.GetAllChannels(ctx)
	if err == nil && len(existing) > 0 {
		fmt.Printf("  %d channels already exist, skipping\n", len(existing))
		return existing
	}

	channels := make([]*domain.Channel, 0, len(demoChannels))
	for _, req := range demoChannels {
		channel, err := catalogService.CreateChannel(ctx, req)
		if err != nil {
			log.Printf("  Failed to create channel %s: %v", req.Name, err)
			continue
		}
		fmt.Printf("  Created channel %d: %s\n", channel.ChannelNumber, channel.Name)
		channels = append(channels, channel)
	}
	return channels
}

func rating(v float64) *float64 { return &v }

var demoContent = []service.CreateContentRequest{
	{Title: "Midnight Harbor", Description: "A detective returns to her coastal hometown.", StreamURL: "/vod/midnight-harbor.m3u8", Type: "movie", Genre: "Drama", Rating: rating(8.1)},
	{Title: "Quantum Drift", Description: "A physicist wakes in a parallel timeline.", StreamURL: "/vod/quantum-drift.m3u8", Type: "movie", Genre: "Sci-Fi", Rating: rating(7.6)},
	{Title: "The Last Summit", Description: "Climbers attempt an unclimbed Himalayan face.", StreamURL: "/vod/last-summit.m3u8", Type: "vod", Genre: "Documentary", Rating: rating(8.8)},
	{Title: "Copper Canyon", Description: "A frontier family defends their claim.", StreamURL: "/vod/copper-canyon.m3u8", Type: "series", Genre: "Drama", Rating: rating(7.9)},
	{Title: "Neon Alley", Description: "Street racers in a near-future megacity.", StreamURL: "/vod/neon-alley.m3u8", Type: "series", Genre: "Sci-Fi", Rating: rating(7.2)},
	{Title: "Saffron Table", Description: "A chef tours home kitchens across three continents.", StreamURL: "/vod/saffron-table.m3u8", Type: "series", Genre: "Food", Rating: rating(8.3)},
	{Title: "Glass Castle", Description: "A thriller set inside a corporate tower lockdown.", StreamURL: "/vod/glass-castle.m3u8", Type: "movie", Genre: "Thriller", Rating: rating(6.9)},
	{Title: "Tidewater", Description: "Marine biologists track a vanishing reef.", StreamURL: "/vod/tidewater.m3u8", Type: "vod", Genre: "Documentary", Rating: rating(8.5)},
	{Title: "Second Serve", Description: "A washed-up tennis pro coaches a prodigy.", StreamURL: "/vod/second-serve.m3u8", Type: "movie", Genre: "Sports", Rating: rating(7.4)},
	{Title: "Cold Static", Description: "A radio host receives calls from the past.", StreamURL: "/vod/cold-static.m3u8", Type: "series", Genre: "Thriller", Rating: rating(8.0)},
}

func seedContent(ctx context.Context, catalogService *service.CatalogService) []*domain.Content {
	fmt.Println("\n=== Creating Catalog Entries ===")

	existing, err := catalogService.GetAllContent(ctx)
	if err == nil && len(existing) > 0 {
		fmt.Printf("  %d catalog entries already exist, skipping\n", len(existing))
		return existing
	}

	catalog := make([]*domain.Content, 0, len(demoContent))
	for _, req := range demoContent {
		content, err := catalogService.CreateContent(ctx, req)
		if err != nil {
			log.Printf("  Failed to create content %s: %v", req.Title, err)
			continue
		}
		fmt.Printf("  Created %s: %s\n", content.Type, content.Title)
		catalog = append(catalog, content)
	}
	return catalog
}

// programSlots are generic titles cycled across each channel's schedule.
var programSlots = []string{
	"Morning Review", "The Daily Mix", "Afternoon Special",
	"Prime Feature", "Late Night Wrap",
}

func seedPrograms(ctx context.Context, epgService *service.EPGService, channels []*domain.Channel) {
	fmt.Println("\n=== Creating Program Guide ===")

	now := time.Now().Truncate(time.Hour)
	created := 0

	for _, channel := range channels {
		// Schedule a rolling day of programming starting two hours ago
		start := now.Add(-2 * time.Hour)
		for i := range 12 {
			slot := programSlots[i%len(programSlots)]
			end := start.Add(2 * time.Hour)

			_, err := epgService.CreateProgram(ctx, service.CreateProgramRequest{
				ChannelID:   channel.ID,
				Title:       fmt.Sprintf("%s: %s", channel.Name, slot),
				Description: fmt.Sprintf("%s programming on %s.", channel.Category, channel.Name),
				StartTime:   start,
				EndTime:     end,
				Category:    channel.Category,
				Rating:      "PG",
			})
			if err != nil {
				log.Printf("  Failed to create program on %s: %v", channel.Name, err)
			} else {
				created++
			}
			start = end
		}
	}

	fmt.Printf("  Created %d programs across %d channels\n", created, len(channels))
}

func seedViewingHistory(ctx context.Context, viewingService *service.ViewingService, users []*domain.User, catalog []*domain.Content, channels []*domain.Channel) {
	fmt.Println("\n=== Creating Viewing History ===")

	if len(catalog) == 0 || len(users) == 0 {
		fmt.Println("  Nothing to seed viewing history against, skipping")
		return
	}

	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	created := 0

	for _, user := range users {
		// 3-6 VOD sessions per user, a mix of finished and in-progress
		numSessions := 3 + rng.Intn(4)
		for range numSessions {
			content := catalog[rng.Intn(len(catalog))]

			session, err := viewingService.StartSession(ctx, user.ID, service.StartSessionRequest{
				ContentID:  content.ID,
				DeviceInfo: "Seed Tool",
			})
			if err != nil {
				log.Printf("  Failed to start session for %s: %v", user.Username, err)
				continue
			}

			progress := float64(300 + rng.Intn(5400))
			completed := rng.Float32() < 0.5
			if err := viewingService.UpdateProgress(ctx, session.ID, service.UpdateProgressRequest{
				ProgressSeconds: progress,
				Completed:       completed,
			}); err != nil {
				log.Printf("  Failed to record progress for %s: %v", user.Username, err)
				continue
			}
			created++
		}

		// One live channel session so channel stats have data
		if len(channels) > 0 {
			channel := channels[rng.Intn(len(channels))]
			if _, err := viewingService.StartSession(ctx, user.ID, service.StartSessionRequest{
				ChannelID:  channel.ID,
				DeviceInfo: "Seed Tool",
			}); err != nil {
				log.Printf("  Failed to start channel session for %s: %v", user.Username, err)
			} else {
				created++
			}
		}

		fmt.Printf("  Seeded sessions for %s\n", user.Username)
	}

	fmt.Printf("  Created %d viewing sessions\n", created)
}
