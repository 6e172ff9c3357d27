// Package llm is the text-generation gateway. Calls are single-turn and
// stateless: one system prompt, one user message, one completion.
package llm

import (
	"context"
	"errors"
)

var (
	// ErrEmptyCompletion is returned when the model answers with no text.
	ErrEmptyCompletion = errors.New("llm: empty completion")
	// ErrNotConfigured is returned by Disabled.
	ErrNotConfigured = errors.New("llm: no API key configured")
)

// Generator produces a completion for a system + user prompt pair.
type Generator interface {
	Generate(ctx context.Context, system, user string, temperature float64) (string, error)
}

// GeneratorFunc adapts a function to Generator.
type GeneratorFunc func(ctx context.Context, system, user string, temperature float64) (string, error)

// Generate calls f.
func (f GeneratorFunc) Generate(ctx context.Context, system, user string, temperature float64) (string, error) {
	return f(ctx, system, user, temperature)
}

// Disabled is used when no provider is configured; every call fails so
// callers take their deterministic fallback.
type Disabled struct{}

// Generate always returns ErrNotConfigured.
func (Disabled) Generate(context.Context, string, string, float64) (string, error) {
	return "", ErrNotConfigured
}
