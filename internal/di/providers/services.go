package providers

import (
	"log/slog"

	"github.com/samber/do/v2"

	"github.com/listenupapp/librarian/internal/auth"
	"github.com/listenupapp/librarian/internal/compose"
	"github.com/listenupapp/librarian/internal/config"
	"github.com/listenupapp/librarian/internal/insights"
	"github.com/listenupapp/librarian/internal/llm"
	"github.com/listenupapp/librarian/internal/router"
	"github.com/listenupapp/librarian/internal/service"
	"github.com/listenupapp/librarian/internal/sqlgen"
	"github.com/listenupapp/librarian/internal/websearch"
)

// ProvideRouter provides the chat intent router.
func ProvideRouter(i do.Injector) (*router.Router, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	log := do.MustInvoke[*slog.Logger](i)

	return router.New(storeHandle.Store, log), nil
}

// ProvideSynthesizer provides the SQL synthesizer.
func ProvideSynthesizer(i do.Injector) (*sqlgen.Synthesizer, error) {
	gen := do.MustInvoke[llm.Generator](i)
	log := do.MustInvoke[*slog.Logger](i)

	return sqlgen.NewSynthesizer(gen, log), nil
}

// ProvideAggregator provides the reading metrics aggregator.
func ProvideAggregator(i do.Injector) (*insights.Aggregator, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)

	return insights.New(storeHandle.Store), nil
}

// ProvideComposer provides the reply composer.
func ProvideComposer(i do.Injector) (*compose.Composer, error) {
	gen := do.MustInvoke[llm.Generator](i)
	log := do.MustInvoke[*slog.Logger](i)

	return compose.New(gen, log), nil
}

// ProvideAuthService provides the authentication service.
func ProvideAuthService(i do.Injector) (*service.AuthService, error) {
	cfg := do.MustInvoke[*config.Config](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)
	tokenService := do.MustInvoke[*auth.TokenService](i)
	log := do.MustInvoke[*slog.Logger](i)

	return service.NewAuthService(storeHandle.Store, tokenService, cfg.Auth.AdminEmail, log), nil
}

// ProvideBookService provides the book service.
func ProvideBookService(i do.Injector) (*service.BookService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	log := do.MustInvoke[*slog.Logger](i)

	return service.NewBookService(storeHandle.Store, log), nil
}

// ProvideAdminService provides the admin service.
func ProvideAdminService(i do.Injector) (*service.AdminService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	books := do.MustInvoke[*service.BookService](i)
	aggregator := do.MustInvoke[*insights.Aggregator](i)
	composer := do.MustInvoke[*compose.Composer](i)
	log := do.MustInvoke[*slog.Logger](i)

	return service.NewAdminService(storeHandle.Store, books, aggregator, composer, log), nil
}

// ProvideChatService provides the chat pipeline.
func ProvideChatService(i do.Injector) (*service.ChatService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	log := do.MustInvoke[*slog.Logger](i)

	return service.NewChatService(
		storeHandle.Store,
		do.MustInvoke[*router.Router](i),
		do.MustInvoke[*sqlgen.Synthesizer](i),
		do.MustInvoke[websearch.Searcher](i),
		do.MustInvoke[*insights.Aggregator](i),
		do.MustInvoke[*compose.Composer](i),
		do.MustInvoke[*service.ChatMetrics](i),
		log,
	), nil
}
