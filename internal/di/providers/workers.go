package providers

import (
	"context"

	"github.com/samber/do/v2"

	"github.com/contactdock/contactdock-server/internal/config"
	"github.com/contactdock/contactdock-server/internal/importer"
	"github.com/contactdock/contactdock-server/internal/logger"
	"github.com/contactdock/contactdock-server/internal/service"
)

// ImportWatcherHandle wraps the CSV drop-folder watcher with shutdown capability.
// Watcher is nil when the watcher is disabled by configuration.
type ImportWatcherHandle struct {
	*importer.Watcher
	cancel context.CancelFunc
}

// Shutdown implements do.Shutdownable.
func (h *ImportWatcherHandle) Shutdown() error {
	if h.Watcher == nil {
		return nil
	}
	h.cancel()
	return h.Stop()
}

// ProvideImportWatcher provides the CSV drop-folder watcher.
func ProvideImportWatcher(i do.Injector) (*ImportWatcherHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	if !cfg.Import.WatchEnabled {
		log.Info("Import watcher disabled")
		return &ImportWatcherHandle{}, nil
	}

	storeHandle := do.MustInvoke[*StoreHandle](i)
	importService := do.MustInvoke[*service.ImportService](i)

	w, err := importer.New(cfg.Data.Path, storeHandle.Store, importService, log.Logger)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(context.Background())
	if err := w.Start(ctx); err != nil {
		cancel()
		return nil, err
	}

	log.Info("Import watcher started", "path", w.Root())

	return &ImportWatcherHandle{Watcher: w, cancel: cancel}, nil
}
