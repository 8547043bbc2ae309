package providers

import (
	"context"
	"net/http"

	"github.com/samber/do/v2"

	"github.com/streamviewapp/streamview-server/internal/api"
	"github.com/streamviewapp/streamview-server/internal/config"
	"github.com/streamviewapp/streamview-server/internal/logger"
	"github.com/streamviewapp/streamview-server/internal/service"
)

// HTTPServerHandle wraps http.Server with Shutdownable.
type HTTPServerHandle struct {
	*http.Server
}

// Shutdown implements do.Shutdownable.
func (h *HTTPServerHandle) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return h.Server.Shutdown(ctx)
}

// ProvideHTTPServer provides the HTTP server.
func ProvideHTTPServer(i do.Injector) (*HTTPServerHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)
	indexHandle := do.MustInvoke[*SearchIndexHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	services := &api.Services{
		Auth:      do.MustInvoke[*service.AuthService](i),
		Catalog:   do.MustInvoke[*service.CatalogService](i),
		EPG:       do.MustInvoke[*service.EPGService](i),
		Viewing:   do.MustInvoke[*service.ViewingService](i),
		Recommend: do.MustInvoke[*service.RecommendationService](i),
		Streaming: do.MustInvoke[*service.StreamingService](i),
	}

	handler := api.NewServer(api.Options{
		Store:          storeHandle.Store,
		Search:         indexHandle.SearchIndex,
		Services:       services,
		CORSOrigins:    cfg.Server.CORSOrigins,
		LoginRateLimit: cfg.Auth.LoginRateLimit,
		Logger:         log.Logger,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Start in background
	go func() {
		log.Info("HTTP server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("HTTP server error", "error", err)
		}
	}()

	log.Info("Server running", "addr", srv.Addr)

	return &HTTPServerHandle{Server: srv}, nil
}
