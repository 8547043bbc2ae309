package api

import (
	"github.com/streamviewapp/streamview-server/internal/service"
)

// Services groups all business logic services used by the API server.
// This reduces the parameter count for NewServer and improves testability.
type Services struct {
	Auth      *service.AuthService
	Catalog   *service.CatalogService
	EPG       *service.EPGService
	Viewing   *service.ViewingService
	Recommend *service.RecommendationService
	Streaming *service.StreamingService
}
