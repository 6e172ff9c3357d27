package service

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/listenupapp/librarian/internal/compose"
	"github.com/listenupapp/librarian/internal/domain"
	domainerrors "github.com/listenupapp/librarian/internal/errors"
	"github.com/listenupapp/librarian/internal/prompts"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChat_EmptyMessage(t *testing.T) {
	f := setupTestChat(t)

	_, err := f.svc.Chat(context.Background(), domain.Caller{UserID: 1}, "   ")
	require.Error(t, err)
	assert.ErrorIs(t, err, domainerrors.ErrValidation)
	assert.Equal(t, ReplyEmptyMessage, err.Error())
	assert.Empty(t, f.gen.calls)
}

func TestChat_MessageTooLong(t *testing.T) {
	f := setupTestChat(t)

	_, err := f.svc.Chat(context.Background(), domain.Caller{UserID: 1}, strings.Repeat("é", MaxMessageLength+1))
	require.Error(t, err)
	assert.ErrorIs(t, err, domainerrors.ErrValidation)
	assert.Equal(t, ReplyTooLong, err.Error())
	assert.Empty(t, f.gen.calls)
}

func TestChat_SQLFallbackRendersRowsWhenAnswerFails(t *testing.T) {
	f := setupTestChat(t)
	u := createTestUser(t, f.store, "Arber", false)
	other := createTestUser(t, f.store, "Blerta", false)
	createTestBook(t, f.store, u.ID, "Dune", "Frank Herbert", "Sci-Fi", domain.StatusReading)
	createTestBook(t, f.store, u.ID, "Emma", "Jane Austen", "Romance", domain.StatusCompleted)
	createTestBook(t, f.store, other.ID, "Ulysses", "James Joyce", "Classic", domain.StatusReading)

	f.gen.on(prompts.SQL, fmt.Sprintf("```sql\nSELECT title, author, genre, reading_status FROM Books WHERE user_id = %d AND reading_status = 'reading'\n```", u.ID))

	resp, err := f.svc.Chat(context.Background(), domain.CallerFor(u), "What books am I reading?")
	require.NoError(t, err)
	assert.Equal(t, "Here's what I found:\n- Dune by Frank Herbert (Sci-Fi, Reading)", resp.Reply)

	sqlCalls := f.gen.callsFor(prompts.SQL)
	require.Len(t, sqlCalls, 1)
	assert.Zero(t, sqlCalls[0].Temperature)
	assert.Contains(t, sqlCalls[0].User, fmt.Sprintf("CURRENT_USER_ID = %d", u.ID))
	assert.Contains(t, sqlCalls[0].User, "IS_ADMIN = 0")

	answerCalls := f.gen.callsFor(prompts.Answer)
	require.Len(t, answerCalls, 1)
	assert.Contains(t, answerCalls[0].User, "LOWER(reading_status) = 'reading'")

	assert.InDelta(t, 1, testutil.ToFloat64(f.metrics.RequestsTotal.WithLabelValues("sql_fallback", OutcomeAnswered)), 0)
}

func TestChat_SQLAnswered(t *testing.T) {
	f := setupTestChat(t)
	u := createTestUser(t, f.store, "Arber", false)
	createTestBook(t, f.store, u.ID, "Dune", "Frank Herbert", "Sci-Fi", domain.StatusReading)

	f.gen.
		on(prompts.SQL, fmt.Sprintf("SELECT COUNT(*) AS total FROM books WHERE user_id = %d", u.ID)).
		on(prompts.Answer, "  You have 1 book.  ")

	resp, err := f.svc.Chat(context.Background(), domain.CallerFor(u), "How many books do I have?")
	require.NoError(t, err)
	assert.Equal(t, "You have 1 book.", resp.Reply)
	assert.Contains(t, f.gen.callsFor(prompts.Answer)[0].User, `"total":1`)
}

func TestChat_SQLGuards(t *testing.T) {
	tests := []struct {
		name     string
		admin    bool
		question string
		sql      string
		want     string
		executed int
	}{
		{"member reads users", false, "Who else is here?", "SELECT name FROM users", ReplyNoPermission, 0},
		{"member joins users", false, "Whose books?", "SELECT b.title FROM books b JOIN User u ON u.id = b.user_id", ReplyNoPermission, 0},
		{"member lists users", false, "list all users please", "SELECT 1", ReplyNoPermission, 0},
		{"member mutates", false, "Remove my books", "DELETE FROM books WHERE user_id = 1", ReplyReadOnly, 0},
		{"admin mutates", true, "Drop everything", "DROP TABLE books", ReplyReadOnly, 0},
		{"broken sql", false, "Gibberish?", "SELECT FROM WHERE", ReplyNotUnderstood, 1},
		{"unknown table", false, "Show my reviews", "SELECT * FROM reviews", ReplyNotUnderstood, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := setupTestChat(t)
			u := createTestUser(t, f.store, "Arber", tt.admin)
			createTestBook(t, f.store, u.ID, "Dune", "Frank Herbert", "Sci-Fi", domain.StatusReading)
			f.gen.on(prompts.SQL, tt.sql).on(prompts.Answer, "should not be used")

			resp, err := f.svc.Chat(context.Background(), domain.CallerFor(u), tt.question)
			require.NoError(t, err)
			assert.Equal(t, tt.want, resp.Reply)
			assert.Equal(t, tt.executed, f.counting.queries(), "rejected queries never reach the database")
			assert.Empty(t, f.gen.callsFor(prompts.Answer), "failed queries never reach the answer step")
		})
	}
}

func TestChat_AdminMayQueryUsers(t *testing.T) {
	f := setupTestChat(t)
	admin := createTestUser(t, f.store, "Admin", true)
	createTestUser(t, f.store, "Arber", false)
	f.gen.on(prompts.SQL, "SELECT name FROM Users WHERE is_admin = 0")

	resp, err := f.svc.Chat(context.Background(), domain.CallerFor(admin), "Who are the readers?")
	require.NoError(t, err)
	assert.Equal(t, "Here are the results:\n- name: Arber", resp.Reply)
}

func TestChat_SynthesisFailure(t *testing.T) {
	f := setupTestChat(t)
	u := createTestUser(t, f.store, "Arber", false)

	resp, err := f.svc.Chat(context.Background(), domain.CallerFor(u), "What is on my shelf?")
	require.NoError(t, err)
	assert.Equal(t, ReplyNotUnderstood, resp.Reply)
	assert.InDelta(t, 1, testutil.ToFloat64(f.metrics.RequestsTotal.WithLabelValues("sql_fallback", OutcomeQueryError)), 0)
}

func TestChat_RecommendationEmptyLibrary(t *testing.T) {
	f := setupTestChat(t)
	u := createTestUser(t, f.store, "Arber", false)

	resp, err := f.svc.Chat(context.Background(), domain.CallerFor(u), "Can you recommend a book?")
	require.NoError(t, err)
	assert.Equal(t, replyNoBooksRecommend, resp.Reply)
	assert.Empty(t, f.gen.calls)
}

func TestChat_RecommendationForNamedUser(t *testing.T) {
	f := setupTestChat(t)
	admin := createTestUser(t, f.store, "Admin", true)
	createTestBook(t, f.store, admin.ID, "Admin Only", "Someone", "Drama", domain.StatusReading)
	arber := createTestUser(t, f.store, "Arber", false)
	createTestBook(t, f.store, arber.ID, "Dune", "Frank Herbert", "Sci-Fi", domain.StatusReading)
	f.gen.on(prompts.Recommend, "Try Hyperion.")

	resp, err := f.svc.Chat(context.Background(), domain.CallerFor(admin), "recommend books for Arber")
	require.NoError(t, err)
	assert.Equal(t, "Try Hyperion.", resp.Reply)

	calls := f.gen.callsFor(prompts.Recommend)
	require.Len(t, calls, 1)
	assert.InDelta(t, compose.TempRecommend, calls[0].Temperature, 0)
	assert.Contains(t, calls[0].User, "Target user name: Arber")
	assert.Contains(t, calls[0].User, "Dune")
	assert.NotContains(t, calls[0].User, "Admin Only")
}

func TestChat_RecommendationUnknownNameUsesAdminLibrary(t *testing.T) {
	f := setupTestChat(t)
	admin := createTestUser(t, f.store, "Admin", true)
	createTestBook(t, f.store, admin.ID, "Admin Pick", "Someone", "Drama", domain.StatusReading)
	f.gen.on(prompts.Recommend, "Here you go.")

	_, err := f.svc.Chat(context.Background(), domain.CallerFor(admin), "recommend books for Zed")
	require.NoError(t, err)

	calls := f.gen.callsFor(prompts.Recommend)
	require.Len(t, calls, 1)
	assert.Contains(t, calls[0].User, "Target user name: Admin")
	assert.Contains(t, calls[0].User, "Admin Pick")
}

func TestChat_RecommendationTargetEmptyLibrary(t *testing.T) {
	f := setupTestChat(t)
	admin := createTestUser(t, f.store, "Admin", true)
	createTestUser(t, f.store, "Arber", false)

	resp, err := f.svc.Chat(context.Background(), domain.CallerFor(admin), "suggest a book for Arber")
	require.NoError(t, err)
	assert.Equal(t, "Arber doesn't have any books yet. Add some books to their library first to get recommendations.", resp.Reply)
}

func TestChat_RecommendationFallback(t *testing.T) {
	f := setupTestChat(t)
	u := createTestUser(t, f.store, "Arber", false)
	createTestBook(t, f.store, u.ID, "Dune", "Frank Herbert", "Sci-Fi", domain.StatusReading)

	resp, err := f.svc.Chat(context.Background(), domain.CallerFor(u), "Recommend me a book")
	require.NoError(t, err)
	assert.Equal(t, compose.FallbackRecommend, resp.Reply)
}

func TestChat_HabitsUnresolvedUser(t *testing.T) {
	f := setupTestChat(t)
	admin := createTestUser(t, f.store, "Admin", true)
	createTestBook(t, f.store, admin.ID, "Dune", "Frank Herbert", "Sci-Fi", domain.StatusReading)

	resp, err := f.svc.Chat(context.Background(), domain.CallerFor(admin), "analyze Zed's reading habits")
	require.NoError(t, err)
	assert.Equal(t, ReplyUserNotFound, resp.Reply)
	assert.Empty(t, f.gen.calls)
}

func TestChat_HabitsUnresolvedLeadingPossessive(t *testing.T) {
	f := setupTestChat(t)
	admin := createTestUser(t, f.store, "Admin", true)
	createTestUser(t, f.store, "Arber", false)
	createTestBook(t, f.store, admin.ID, "Dune", "Frank Herbert", "Sci-Fi", domain.StatusReading)
	f.gen.on(prompts.Habits, "should not be used")

	for _, msg := range []string{"Zana's reading habits?", "Zana reading habits please"} {
		resp, err := f.svc.Chat(context.Background(), domain.CallerFor(admin), msg)
		require.NoError(t, err)
		assert.Equal(t, ReplyUserNotFound, resp.Reply, msg)
	}
	assert.Empty(t, f.gen.calls)
}

func TestChat_HabitsForUser(t *testing.T) {
	f := setupTestChat(t)
	admin := createTestUser(t, f.store, "Admin", true)
	arber := createTestUser(t, f.store, "Arber", false)
	createTestBook(t, f.store, arber.ID, "Emma", "Jane Austen", "Romance", domain.StatusCompleted)
	f.gen.on(prompts.Habits, "Arber loves romance.")

	resp, err := f.svc.Chat(context.Background(), domain.CallerFor(admin), "Tell me about Arber's reading habits")
	require.NoError(t, err)
	assert.Equal(t, "Arber loves romance.", resp.Reply)

	calls := f.gen.callsFor(prompts.Habits)
	require.Len(t, calls, 1)
	assert.Contains(t, calls[0].User, "User name: Admin")
	assert.Contains(t, calls[0].User, "Target user name: Arber")
}

func TestChat_HabitsEmptyLibrary(t *testing.T) {
	f := setupTestChat(t)
	u := createTestUser(t, f.store, "Arber", false)

	resp, err := f.svc.Chat(context.Background(), domain.CallerFor(u), "what are my reading habits?")
	require.NoError(t, err)
	assert.Equal(t, replyNoBooksHabits, resp.Reply)
}

func TestChat_WebLookup(t *testing.T) {
	f := setupTestChat(t)
	u := createTestUser(t, f.store, "Arber", false)
	createTestBook(t, f.store, u.ID, "Dune", "Frank Herbert", "Sci-Fi", domain.StatusReading)
	f.searcher.snippets = []string{"Dune has 412 pages."}
	f.gen.on(prompts.Web, "About 412 pages.")

	resp, err := f.svc.Chat(context.Background(), domain.CallerFor(u), "How many pages does Dune have?")
	require.NoError(t, err)
	assert.Equal(t, "About 412 pages.", resp.Reply)

	require.Len(t, f.searcher.queries, 1)
	assert.Equal(t, "How many pages does Dune have? Among these books: Dune", f.searcher.queries[0])

	calls := f.gen.callsFor(prompts.Web)
	require.Len(t, calls, 1)
	assert.Contains(t, calls[0].User, "Dune has 412 pages.")
	assert.NotContains(t, calls[0].User, "reading_status", "web lookups do not share statuses")
}

func TestChat_WebLookupBeforeHabits(t *testing.T) {
	f := setupTestChat(t)
	u := createTestUser(t, f.store, "Arber", false)
	createTestBook(t, f.store, u.ID, "Dune", "Frank Herbert", "Sci-Fi", domain.StatusReading)

	resp, err := f.svc.Chat(context.Background(), domain.CallerFor(u), "how much does this book cost?")
	require.NoError(t, err)
	assert.Equal(t, compose.FallbackWeb, resp.Reply)
	assert.Len(t, f.searcher.queries, 1)
}

func TestChat_AdminInsights(t *testing.T) {
	f := setupTestChat(t)
	admin := createTestUser(t, f.store, "Admin", true)
	arber := createTestUser(t, f.store, "Arber", false)
	createTestBook(t, f.store, arber.ID, "Dune", "Frank Herbert", "Sci-Fi", domain.StatusCompleted)

	resp, err := f.svc.Chat(context.Background(), domain.CallerFor(admin), "library insights")
	require.NoError(t, err)
	assert.Contains(t, resp.Reply, "Library insights:")
	assert.Contains(t, resp.Reply, "- Users: 1")

	resp, err = f.svc.Chat(context.Background(), domain.CallerFor(admin), fmt.Sprintf("/insights user %d", arber.ID))
	require.NoError(t, err)
	assert.Contains(t, resp.Reply, "Insights for Arber:")
	assert.Contains(t, resp.Reply, "Completion rate: 100%")

	resp, err = f.svc.Chat(context.Background(), domain.CallerFor(admin), "/insights user 999")
	require.NoError(t, err)
	assert.Equal(t, ReplyUserNotFound, resp.Reply)

	calls := f.gen.callsFor(prompts.Insights)
	require.Len(t, calls, 2)
	assert.InDelta(t, compose.TempInsights, calls[0].Temperature, 0)
	assert.Contains(t, calls[0].User, "METRICS_JSON:")
}

func TestChat_InsightsCommandIgnoredForMembers(t *testing.T) {
	f := setupTestChat(t)
	u := createTestUser(t, f.store, "Arber", false)

	resp, err := f.svc.Chat(context.Background(), domain.CallerFor(u), "insights")
	require.NoError(t, err)
	assert.Equal(t, ReplyNotUnderstood, resp.Reply)
	assert.Empty(t, f.gen.callsFor(prompts.Insights))
	assert.Len(t, f.gen.callsFor(prompts.SQL), 1)
}

func TestSearchQuery(t *testing.T) {
	books := []*domain.Book{{Title: "Dune"}, {Title: "Emma"}, {Title: "Dune"}, {Title: ""}}
	assert.Equal(t, "price? Among these books: Dune, Emma", SearchQuery("price?", books))
	assert.Equal(t, "price?", SearchQuery("price?", nil))
}

func TestChatMetrics_NilSafe(t *testing.T) {
	var m *ChatMetrics
	assert.NotPanics(t, func() { m.Record("sql_fallback", OutcomeAnswered, 0) })
}
