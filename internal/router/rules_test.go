package router

import (
	"testing"

	"github.com/listenupapp/librarian/internal/domain"
	"github.com/stretchr/testify/assert"
)

var (
	member = domain.Caller{UserID: 2, Name: "Arber", IsAdmin: false}
	admin  = domain.Caller{UserID: 1, Name: "Admin", IsAdmin: true}
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name    string
		message string
		caller  domain.Caller
		want    Strategy
	}{
		{"insights command", "/insights", admin, AdminInsights},
		{"insights with user", "/insights user 5", admin, AdminInsights},
		{"insights phrase", "Library Insights", admin, AdminInsights},
		{"insights phrase not exact", "show me library insights", admin, SQLFallback},
		{"insights for member", "/insights", member, SQLFallback},

		{"recommendation", "Can you recommend some books?", member, Recommendation},
		{"suggest needs book", "suggest something", member, SQLFallback},
		{"recommendation over habits", "please summarize my reading habits, any book recommendations?", member, Recommendation},
		{"recommendation over web", "suggest a book with a high rating", member, Recommendation},

		{"web price", "Which of my books is the most expensive?", member, WebLookup},
		{"web pages", "How many pages does Dune have?", member, WebLookup},
		{"web over habits", "Give me a summary of my reading habits", member, WebLookup},

		{"habit phrase", "What are my reading habits?", member, HabitAnalysis},
		{"habit word", "tell me about my habit", member, HabitAnalysis},
		{"analyze library", "Analyze my library", member, HabitAnalysis},
		{"summarize reading", "please summarize my reading", member, HabitAnalysis},

		{"fallback", "What books am I reading?", member, SQLFallback},
		{"fallback admin", "Who has the most books?", admin, SQLFallback},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.message, tt.caller))
		})
	}
}

func TestRules_Order(t *testing.T) {
	var got []Strategy
	for _, r := range Rules {
		got = append(got, r.Strategy)
	}
	assert.Equal(t, []Strategy{AdminInsights, Recommendation, WebLookup, HabitAnalysis}, got)
}

func TestRules_Individually(t *testing.T) {
	byName := map[string]Rule{}
	for _, r := range Rules {
		byName[r.Name] = r
	}

	assert.True(t, byName["admin insights"].Match("admin insights", admin))
	assert.False(t, byName["admin insights"].Match("admin insights", member))
	assert.True(t, byName["recommendation"].Match("recommend a book", member))
	assert.False(t, byName["recommendation"].Match("recommend a film", member))
	assert.True(t, byName["web lookup"].Match("what's the goodreads score", member))
	assert.False(t, byName["web lookup"].Match("what am i reading", member))
	assert.True(t, byName["habit analysis"].Match("how do i read", member))
	assert.False(t, byName["habit analysis"].Match("list my books", member))
}
