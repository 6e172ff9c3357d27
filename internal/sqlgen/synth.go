// Package sqlgen turns questions into guarded, read-only SQL.
package sqlgen

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/listenupapp/librarian/internal/llm"
	"github.com/listenupapp/librarian/internal/prompts"
)

// ErrSynthesis means no usable SQL came back from generation.
var ErrSynthesis = errors.New("sqlgen: could not synthesize query")

// Synthesizer asks the generation gateway for SQL and sanitizes the answer.
type Synthesizer struct {
	gen    llm.Generator
	logger *slog.Logger
}

// NewSynthesizer creates a synthesizer backed by gen.
func NewSynthesizer(gen llm.Generator, logger *slog.Logger) *Synthesizer {
	return &Synthesizer{gen: gen, logger: logger}
}

// Synthesize generates SQL at temperature 0 for the caller and returns it
// sanitized. It does not run Guard.
func (s *Synthesizer) Synthesize(ctx context.Context, question string, callerID int64, isAdmin bool) (string, error) {
	raw, err := s.gen.Generate(ctx, prompts.SQL, UserContent(question, callerID, isAdmin), 0)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrSynthesis, err)
	}

	query := Sanitize(raw)
	s.logger.Debug("synthesized sql", "raw", raw, "sql", query)
	if query == "" {
		return "", ErrSynthesis
	}
	return query, nil
}

// UserContent is the user message sent alongside prompts.SQL.
func UserContent(question string, callerID int64, isAdmin bool) string {
	admin := 0
	if isAdmin {
		admin = 1
	}
	return fmt.Sprintf("CURRENT_USER_ID = %d\nIS_ADMIN = %d\nQUESTION: %s", callerID, admin, question)
}
