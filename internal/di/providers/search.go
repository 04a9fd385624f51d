package providers

import (
	"context"

	"github.com/samber/do/v2"

	"github.com/contactdock/contactdock-server/internal/config"
	"github.com/contactdock/contactdock-server/internal/domain"
	"github.com/contactdock/contactdock-server/internal/logger"
	"github.com/contactdock/contactdock-server/internal/search"
)

// SearchIndexHandle wraps the search index with shutdown capability.
type SearchIndexHandle struct {
	*search.SearchIndex
}

// Shutdown implements do.Shutdownable.
func (h *SearchIndexHandle) Shutdown() error {
	return h.Close()
}

// ProvideSearchIndex provides the Bleve search index and wires it to the
// store so contact writes are indexed automatically.
func ProvideSearchIndex(i do.Injector) (*SearchIndexHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)

	index, err := search.NewSearchIndex(search.Options{
		DataPath: cfg.Data.Path,
		Logger:   log.Logger,
	})
	if err != nil {
		return nil, err
	}

	storeHandle.SetSearchIndexer(index)

	docCount, _ := index.DocumentCount()
	log.Info("Search index initialized", "documents", docCount)

	return &SearchIndexHandle{SearchIndex: index}, nil
}

// TriggerSearchReindexIfNeeded backfills an empty search index from the
// store. Should be called after all services are wired.
func TriggerSearchReindexIfNeeded(i do.Injector) {
	indexHandle := do.MustInvoke[*SearchIndexHandle](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	docCount, _ := indexHandle.DocumentCount()
	if docCount > 0 {
		return
	}

	ctx := context.Background()
	var contacts []*domain.Contact
	for user, err := range storeHandle.Users.List(ctx) {
		if err != nil {
			log.Warn("Search backfill aborted, user listing failed", "error", err)
			return
		}
		owned, err := storeHandle.ListContacts(ctx, user.ID)
		if err != nil {
			log.Warn("Search backfill aborted, contact listing failed",
				"user_id", user.ID, "error", err)
			return
		}
		contacts = append(contacts, owned...)
	}
	if len(contacts) == 0 {
		return
	}

	log.Info("Search index is empty but contacts exist, triggering backfill",
		"contact_count", len(contacts),
	)

	go func() {
		if err := indexHandle.IndexContacts(contacts); err != nil {
			log.Error("Search index backfill failed", "error", err)
			return
		}
		count, _ := indexHandle.DocumentCount()
		log.Info("Search index backfill completed", "documents", count)
	}()
}
