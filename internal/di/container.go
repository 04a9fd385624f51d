// Package di provides dependency injection configuration for the ContactDock server.
package di

import (
	"github.com/samber/do/v2"

	"github.com/contactdock/contactdock-server/internal/config"
	"github.com/contactdock/contactdock-server/internal/di/providers"
	"github.com/contactdock/contactdock-server/internal/identity"
	"github.com/contactdock/contactdock-server/internal/logger"
	"github.com/contactdock/contactdock-server/internal/service"
)

// NewContainer creates and configures the DI container with all providers.
func NewContainer() *do.RootScope {
	injector := do.New()

	// Core infrastructure
	do.Provide(injector, providers.ProvideConfig)
	do.Provide(injector, providers.ProvideLogger)
	do.Provide(injector, providers.ProvideVerifier)

	// Database layer
	do.Provide(injector, providers.ProvideStore)

	// Search layer
	do.Provide(injector, providers.ProvideSearchIndex)

	// Business services
	do.Provide(injector, providers.ProvideAuthService)
	do.Provide(injector, providers.ProvideContactService)
	do.Provide(injector, providers.ProvideTagService)
	do.Provide(injector, providers.ProvideStatsService)
	do.Provide(injector, providers.ProvideImportService)

	// Workers
	do.Provide(injector, providers.ProvideImportWatcher)

	// Server
	do.Provide(injector, providers.ProvideHTTPServer)

	return injector
}

// Bootstrap initializes all services and returns handles for lifecycle management.
// This triggers lazy initialization of all core services.
func Bootstrap(injector *do.RootScope) error {
	_ = do.MustInvoke[*config.Config](injector)
	_ = do.MustInvoke[*logger.Logger](injector)
	_ = do.MustInvoke[*identity.Verifier](injector)
	_ = do.MustInvoke[*providers.StoreHandle](injector)
	_ = do.MustInvoke[*providers.SearchIndexHandle](injector)

	// Business services
	_ = do.MustInvoke[*service.AuthService](injector)
	_ = do.MustInvoke[*service.ContactService](injector)
	_ = do.MustInvoke[*service.TagService](injector)
	_ = do.MustInvoke[*service.StatsService](injector)
	_ = do.MustInvoke[*service.ImportService](injector)

	// Workers
	_ = do.MustInvoke[*providers.ImportWatcherHandle](injector)

	// Server
	_ = do.MustInvoke[*providers.HTTPServerHandle](injector)

	// Backfill the search index if it was rebuilt or is behind the store.
	providers.TriggerSearchReindexIfNeeded(injector)

	return nil
}
