// Package compose turns strategy results into reply text. Every path has a
// deterministic fallback used whenever generation fails or comes back empty.
package compose

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/listenupapp/librarian/internal/domain"
	"github.com/listenupapp/librarian/internal/llm"
	"github.com/listenupapp/librarian/internal/prompts"
	"github.com/listenupapp/librarian/internal/store"
)

// Sampling temperatures per strategy.
const (
	TempAnswer    = 0.0
	TempRecommend = 0.7
	TempWeb       = 0.5
	TempHabits    = 0.6
	TempInsights  = 0.4
)

// Fallback replies.
const (
	FallbackNoRows    = "I couldn't find any matching records."
	FallbackRecommend = "I had trouble generating recommendations right now. Please try again in a moment."
	FallbackWeb       = "I tried looking this up on the internet, but something went wrong. Please try again later."
	FallbackHabits    = "I had trouble analyzing reading habits. Please try again."

	noSnippets = "No matching results from web search."
)

// Composer builds prompts and calls the generation gateway.
type Composer struct {
	gen    llm.Generator
	logger *slog.Logger
}

// New creates a composer.
func New(gen llm.Generator, logger *slog.Logger) *Composer {
	return &Composer{gen: gen, logger: logger}
}

// AnswerSQL phrases the rows of an executed query.
func (c *Composer) AnswerSQL(ctx context.Context, question, query string, result *store.QueryResult, caller domain.Caller) string {
	user := fmt.Sprintf("User name: %s\nIs admin: %t\nQuestion: %s\nExecuted SQL: %s\nSQL result rows (JSON):\n%s",
		caller.Name, caller.IsAdmin, question, query, toJSON(result.Rows))

	return c.generate(ctx, "sql_answer", prompts.Answer, user, TempAnswer, func() string {
		return RenderRows(result)
	})
}

// Recommend suggests books for target based on their library.
func (c *Composer) Recommend(ctx context.Context, caller domain.Caller, targetName string, books []domain.BookView) string {
	user := fmt.Sprintf("Requester name: %s\nTarget user name: %s\nIs requester admin: %t\nTarget user's existing books (JSON):\n%s",
		caller.Name, targetName, caller.IsAdmin, toJSON(books))

	return c.generate(ctx, "recommendation", prompts.Recommend, user, TempRecommend, constant(FallbackRecommend))
}

// Web answers from the book list and search snippets.
func (c *Composer) Web(ctx context.Context, question string, books []domain.BookView, snippets []string, isAdmin bool) string {
	text := noSnippets
	if len(snippets) > 0 {
		text = strings.Join(snippets, "\n")
	}
	user := fmt.Sprintf("User question: %s\n\nUser's books (JSON):\n%s\n\nIs admin: %t\n\nWeb search snippets:\n%s",
		question, toJSON(books), isAdmin, text)

	return c.generate(ctx, "web_lookup", prompts.Web, user, TempWeb, constant(FallbackWeb))
}

// Habits interprets the target's reading habits.
func (c *Composer) Habits(ctx context.Context, requesterName, targetName string, books []domain.BookView) string {
	user := fmt.Sprintf("User name: %s\nTarget user name: %s\nTheir book collection (JSON):\n%s",
		requesterName, targetName, toJSON(books))

	return c.generate(ctx, "habit_analysis", prompts.Habits, user, TempHabits, constant(FallbackHabits))
}

// UserInsights summarizes a user snapshot.
func (c *Composer) UserInsights(ctx context.Context, m *domain.UserMetrics) string {
	return c.generate(ctx, "admin_insights", prompts.Insights, "METRICS_JSON:\n"+toJSON(m), TempInsights, func() string {
		return RenderUserMetrics(m)
	})
}

// LibraryInsights summarizes a library snapshot.
func (c *Composer) LibraryInsights(ctx context.Context, m *domain.LibraryMetrics) string {
	return c.generate(ctx, "admin_insights", prompts.Insights, "METRICS_JSON:\n"+toJSON(m), TempInsights, func() string {
		return RenderLibraryMetrics(m)
	})
}

func (c *Composer) generate(ctx context.Context, strategy, system, user string, temperature float64, fallback func() string) string {
	out, err := c.gen.Generate(ctx, system, user, temperature)
	if err == nil {
		if out = strings.TrimSpace(out); out != "" {
			return out
		}
		err = llm.ErrEmptyCompletion
	}
	c.logger.Warn("generation failed, using fallback", "strategy", strategy, "error", err)
	return fallback()
}

func constant(s string) func() string {
	return func() string { return s }
}

func toJSON(v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		return "null"
	}
	return string(b)
}
