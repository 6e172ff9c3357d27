package providers

import (
	"log/slog"

	"github.com/samber/do/v2"

	"github.com/listenupapp/librarian/internal/config"
	"github.com/listenupapp/librarian/internal/llm"
	"github.com/listenupapp/librarian/internal/websearch"
)

// ProvideGenerator provides the text-generation client. Without an API key
// every generation fails and callers use their fallbacks.
func ProvideGenerator(i do.Injector) (llm.Generator, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*slog.Logger](i)

	if !cfg.OpenAI.Enabled() {
		log.Warn("OPENAI_API_KEY not set, chat answers use built-in fallbacks")
		return llm.Disabled{}, nil
	}

	client := llm.NewOpenAI(llm.OpenAIConfig{
		APIKey:  cfg.OpenAI.APIKey,
		Model:   cfg.OpenAI.Model,
		BaseURL: cfg.OpenAI.BaseURL,
		Timeout: cfg.OpenAI.Timeout,
	})
	log.Info("Text generation enabled", "model", client.Model())
	return client, nil
}

// ProvideSearcher provides the web search client.
func ProvideSearcher(i do.Injector) (websearch.Searcher, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*slog.Logger](i)

	return websearch.NewClient(websearch.Config{
		Endpoint: cfg.Search.URL,
		Timeout:  cfg.Search.Timeout,
	}, log), nil
}
