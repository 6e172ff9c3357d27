package service

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/listenupapp/librarian/internal/auth"
	"github.com/listenupapp/librarian/internal/compose"
	"github.com/listenupapp/librarian/internal/domain"
	"github.com/listenupapp/librarian/internal/insights"
	"github.com/listenupapp/librarian/internal/llm"
	"github.com/listenupapp/librarian/internal/router"
	"github.com/listenupapp/librarian/internal/sqlgen"
	"github.com/listenupapp/librarian/internal/store"
	"github.com/listenupapp/librarian/internal/store/sqlite"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func setupTestStore(t *testing.T) *sqlite.Store {
	t.Helper()

	s, err := sqlite.Open(filepath.Join(t.TempDir(), "test.db"), discardLogger())
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func createTestUser(t *testing.T, s *sqlite.Store, name string, admin bool) *domain.User {
	t.Helper()

	u := &domain.User{Name: name, Email: name + "@example.com", PasswordHash: "x", IsAdmin: admin}
	require.NoError(t, s.CreateUser(context.Background(), u))
	return u
}

func createTestBook(t *testing.T, s *sqlite.Store, owner int64, title, author, genre string, status domain.ReadingStatus) *domain.Book {
	t.Helper()

	b := &domain.Book{OwnerID: owner, Title: title, Author: author, Genre: genre, Status: status}
	require.NoError(t, s.CreateBook(context.Background(), b))
	return b
}

// genCall is one recorded generation request.
type genCall struct {
	System      string
	User        string
	Temperature float64
}

// fakeGenerator answers by system prompt. Prompts without a reply fail.
type fakeGenerator struct {
	mu      sync.Mutex
	replies map[string]string
	calls   []genCall
}

func newFakeGenerator() *fakeGenerator {
	return &fakeGenerator{replies: map[string]string{}}
}

func (f *fakeGenerator) on(system, reply string) *fakeGenerator {
	f.replies[system] = reply
	return f
}

func (f *fakeGenerator) Generate(_ context.Context, system, user string, temperature float64) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, genCall{System: system, User: user, Temperature: temperature})
	reply, ok := f.replies[system]
	if !ok {
		return "", llm.ErrNotConfigured
	}
	return reply, nil
}

func (f *fakeGenerator) callsFor(system string) []genCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []genCall
	for _, c := range f.calls {
		if c.System == system {
			out = append(out, c)
		}
	}
	return out
}

// fakeSearcher records queries and returns fixed snippets.
type fakeSearcher struct {
	queries  []string
	snippets []string
}

func (f *fakeSearcher) Search(_ context.Context, query string) []string {
	f.queries = append(f.queries, query)
	return f.snippets
}

// countingStore counts generated queries that reach the database.
type countingStore struct {
	store.Store
	mu       sync.Mutex
	executed int
}

func (c *countingStore) ExecuteReadOnlyQuery(ctx context.Context, sqlText string) (*store.QueryResult, error) {
	c.mu.Lock()
	c.executed++
	c.mu.Unlock()
	return c.Store.ExecuteReadOnlyQuery(ctx, sqlText)
}

func (c *countingStore) queries() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.executed
}

type chatFixture struct {
	svc      *ChatService
	store    *sqlite.Store
	counting *countingStore
	gen      *fakeGenerator
	searcher *fakeSearcher
	metrics  *ChatMetrics
}

func setupTestChat(t *testing.T) *chatFixture {
	t.Helper()

	s := setupTestStore(t)
	gen := newFakeGenerator()
	searcher := &fakeSearcher{}
	metrics := NewChatMetrics(prometheus.NewRegistry())
	logger := discardLogger()
	counting := &countingStore{Store: s}

	svc := NewChatService(
		counting,
		router.New(s, logger),
		sqlgen.NewSynthesizer(gen, logger),
		searcher,
		insights.New(s),
		compose.New(gen, logger),
		metrics,
		logger,
	)
	return &chatFixture{svc: svc, store: s, counting: counting, gen: gen, searcher: searcher, metrics: metrics}
}

func newTestTokens(t *testing.T) *auth.TokenService {
	t.Helper()

	key := make([]byte, 32)
	for i := range key {
		key[i] = byte(i + 1)
	}
	tokens, err := auth.NewTokenService(key, time.Hour)
	require.NoError(t, err)
	return tokens
}
