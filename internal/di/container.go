// Package di provides dependency injection configuration for the Librarian server.
package di

import (
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/samber/do/v2"

	"github.com/listenupapp/librarian/internal/auth"
	"github.com/listenupapp/librarian/internal/config"
	"github.com/listenupapp/librarian/internal/di/providers"
	"github.com/listenupapp/librarian/internal/llm"
	"github.com/listenupapp/librarian/internal/service"
	"github.com/listenupapp/librarian/internal/websearch"
)

// NewContainer creates and configures the DI container with all providers.
func NewContainer() *do.RootScope {
	injector := do.New()

	// Core infrastructure
	do.Provide(injector, providers.ProvideConfig)
	do.Provide(injector, providers.ProvideLogger)
	do.Provide(injector, providers.ProvideAuthKey)
	do.Provide(injector, providers.ProvideMetricsRegistry)

	// Database layer
	do.Provide(injector, providers.ProvideStore)

	// Gateways
	do.Provide(injector, providers.ProvideGenerator)
	do.Provide(injector, providers.ProvideSearcher)

	// Auth layer
	do.Provide(injector, providers.ProvideTokenService)

	// Chat pipeline
	do.Provide(injector, providers.ProvideRouter)
	do.Provide(injector, providers.ProvideSynthesizer)
	do.Provide(injector, providers.ProvideAggregator)
	do.Provide(injector, providers.ProvideComposer)
	do.Provide(injector, providers.ProvideChatMetrics)

	// Business services
	do.Provide(injector, providers.ProvideAuthService)
	do.Provide(injector, providers.ProvideBookService)
	do.Provide(injector, providers.ProvideAdminService)
	do.Provide(injector, providers.ProvideChatService)

	// Server
	do.Provide(injector, providers.ProvideHTTPServer)

	return injector
}

// Bootstrap initializes all services. Providers are lazy, so invoking them
// here surfaces configuration and database errors before serving.
func Bootstrap(injector *do.RootScope) error {
	if _, err := do.Invoke[*config.Config](injector); err != nil {
		return err
	}
	if _, err := do.Invoke[*slog.Logger](injector); err != nil {
		return err
	}
	if _, err := do.Invoke[providers.AuthKey](injector); err != nil {
		return err
	}
	if _, err := do.Invoke[*providers.StoreHandle](injector); err != nil {
		return err
	}

	_ = do.MustInvoke[*prometheus.Registry](injector)
	_ = do.MustInvoke[llm.Generator](injector)
	_ = do.MustInvoke[websearch.Searcher](injector)
	_ = do.MustInvoke[*auth.TokenService](injector)

	_ = do.MustInvoke[*service.AuthService](injector)
	_ = do.MustInvoke[*service.BookService](injector)
	_ = do.MustInvoke[*service.AdminService](injector)
	_ = do.MustInvoke[*service.ChatService](injector)

	_ = do.MustInvoke[*providers.HTTPServerHandle](injector)

	return nil
}
