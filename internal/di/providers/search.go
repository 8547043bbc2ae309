package providers

import (
	"context"

	"github.com/samber/do/v2"

	"github.com/streamviewapp/streamview-server/internal/config"
	"github.com/streamviewapp/streamview-server/internal/logger"
	"github.com/streamviewapp/streamview-server/internal/search"
	"github.com/streamviewapp/streamview-server/internal/service"
)

// SearchIndexHandle wraps the search index with shutdown capability.
type SearchIndexHandle struct {
	*search.SearchIndex
}

// Shutdown implements do.Shutdownable.
func (h *SearchIndexHandle) Shutdown() error {
	return h.Close()
}

// ProvideSearchIndex provides the Bleve search index.
func ProvideSearchIndex(i do.Injector) (*SearchIndexHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	index, err := search.NewSearchIndex(search.Options{
		DataPath: cfg.SearchIndexPath(),
		Logger:   log.Logger,
	})
	if err != nil {
		return nil, err
	}

	docCount, _ := index.DocumentCount()
	log.Info("Search index initialized", "documents", docCount)

	return &SearchIndexHandle{SearchIndex: index}, nil
}

// TriggerSearchRebuildIfNeeded rebuilds the search index when it is empty
// but catalog entries exist. Should be called after all services are wired.
func TriggerSearchRebuildIfNeeded(i do.Injector) {
	indexHandle := do.MustInvoke[*SearchIndexHandle](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)
	catalogService := do.MustInvoke[*service.CatalogService](i)
	log := do.MustInvoke[*logger.Logger](i)

	docCount, _ := indexHandle.DocumentCount()
	if docCount > 0 {
		return
	}

	ctx := context.Background()
	catalog, err := storeHandle.ListContent(ctx)
	if err != nil || len(catalog) == 0 {
		return
	}

	log.Info("Search index is empty but catalog entries exist, triggering rebuild",
		"content_count", len(catalog),
	)

	go func() {
		if err := catalogService.RebuildSearchIndex(context.Background()); err != nil {
			log.Error("Search index rebuild failed", "error", err)
		}
	}()
}
