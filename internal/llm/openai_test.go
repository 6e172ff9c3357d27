package llm

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func completionBody(content string) string {
	b, _ := json.Marshal(map[string]any{
		"id":      "chatcmpl-1",
		"object":  "chat.completion",
		"created": 1700000000,
		"model":   "gpt-4o",
		"choices": []map[string]any{{
			"index":         0,
			"finish_reason": "stop",
			"message":       map[string]any{"role": "assistant", "content": content},
		}},
	})
	return string(b)
}

func TestOpenAIGenerateSuccess(t *testing.T) {
	var payload map[string]any

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		require.NoError(t, json.Unmarshal(body, &payload))

		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, completionBody("  SELECT 1  \n"))
	}))
	defer server.Close()

	client := NewOpenAI(OpenAIConfig{APIKey: "test-key", BaseURL: server.URL})
	assert.Equal(t, "gpt-4o", client.Model())

	got, err := client.Generate(context.Background(), "system prompt", "user prompt", 0)
	require.NoError(t, err)
	assert.Equal(t, "SELECT 1", got)

	assert.Equal(t, "gpt-4o", payload["model"])
	assert.Equal(t, float64(0), payload["temperature"])

	msgs, ok := payload["messages"].([]any)
	require.True(t, ok)
	require.Len(t, msgs, 2)
	assert.Equal(t, "system", msgs[0].(map[string]any)["role"])
	assert.Equal(t, "system prompt", msgs[0].(map[string]any)["content"])
	assert.Equal(t, "user", msgs[1].(map[string]any)["role"])
	assert.Equal(t, "user prompt", msgs[1].(map[string]any)["content"])
}

func TestOpenAIGenerateEmpty(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, completionBody("   "))
	}))
	defer server.Close()

	client := NewOpenAI(OpenAIConfig{APIKey: "k", BaseURL: server.URL})
	_, err := client.Generate(context.Background(), "s", "u", 0.7)
	assert.ErrorIs(t, err, ErrEmptyCompletion)
}

func TestOpenAIGenerateNoRetry(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = io.WriteString(w, `{"error":{"message":"upstream exploded","type":"server_error"}}`)
	}))
	defer server.Close()

	client := NewOpenAI(OpenAIConfig{APIKey: "k", BaseURL: server.URL})
	_, err := client.Generate(context.Background(), "s", "u", 0.5)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 500")
	assert.Equal(t, int32(1), calls.Load())
}

func TestDisabled(t *testing.T) {
	_, err := Disabled{}.Generate(context.Background(), "s", "u", 0)
	assert.True(t, errors.Is(err, ErrNotConfigured))
}

func TestGeneratorFunc(t *testing.T) {
	var gotTemp float64
	g := GeneratorFunc(func(_ context.Context, system, user string, temperature float64) (string, error) {
		gotTemp = temperature
		return system + "|" + user, nil
	})

	out, err := g.Generate(context.Background(), "a", "b", 0.4)
	require.NoError(t, err)
	assert.Equal(t, "a|b", out)
	assert.Equal(t, 0.4, gotTemp)
}
