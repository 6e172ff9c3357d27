package compose

import (
	"testing"

	"github.com/listenupapp/librarian/internal/domain"
	"github.com/listenupapp/librarian/internal/store"
	"github.com/stretchr/testify/assert"
)

func TestRenderRows(t *testing.T) {
	tests := []struct {
		name   string
		result *store.QueryResult
		want   string
	}{
		{"nil", nil, FallbackNoRows},
		{"no rows", &store.QueryResult{Columns: []string{"title"}, Rows: []map[string]any{}}, FallbackNoRows},
		{
			"books",
			&store.QueryResult{
				Columns: []string{"reading_status", "genre", "author", "title"},
				Rows: []map[string]any{
					{"title": "Dune", "author": "Frank Herbert", "genre": "Sci-Fi", "reading_status": "Reading"},
					{"title": "Emma", "author": "Jane Austen", "genre": "Romance", "reading_status": "Completed"},
				},
			},
			"Here's what I found:\n- Dune by Frank Herbert (Sci-Fi, Reading)\n- Emma by Jane Austen (Romance, Completed)",
		},
		{
			"generic keeps column order",
			&store.QueryResult{
				Columns: []string{"name", "book_count", "ratio", "missing"},
				Rows:    []map[string]any{{"name": "Arber", "book_count": int64(3), "ratio": 0.5, "missing": nil}},
			},
			"Here are the results:\n- name: Arber, book_count: 3, ratio: 0.5, missing: none",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, RenderRows(tt.result))
		})
	}
}

func TestRenderUserMetrics(t *testing.T) {
	got := RenderUserMetrics(&domain.UserMetrics{
		User:           domain.MetricsIdentity{ID: 2, Name: "Arber"},
		Totals:         domain.UserTotals{Books: 3, Completed: 2, Reading: 1},
		CompletionRate: 66.7,
		TopGenres:      []domain.RankedEntry{{Name: "Sci-Fi", Count: 2}},
	})
	assert.Equal(t, "Insights for Arber:\n"+
		"- Books: 3 (completed 2, reading 1)\n"+
		"- Completion rate: 66.7%\n"+
		"- Top genres: Sci-Fi (2)\n"+
		"- Top authors: none", got)
}

func TestRenderLibraryMetrics(t *testing.T) {
	got := RenderLibraryMetrics(&domain.LibraryMetrics{
		Totals:          domain.LibraryTotals{Users: 2, Books: 5},
		TopUser:         &domain.TopUser{Name: "Arber", Count: 3},
		TopGenre:        &domain.TopGenre{Genre: "Sci-Fi", Count: 2},
		StatusBreakdown: map[string]int{"Reading": 2, "Completed": 3, "Paused": 1},
		TopGenres:       []domain.RankedEntry{{Name: "Sci-Fi", Count: 2}, {Name: "Romance", Count: 2}},
	})
	assert.Equal(t, "Library insights:\n"+
		"- Users: 2\n"+
		"- Books: 5\n"+
		"- Most books: Arber (3)\n"+
		"- Top genre: Sci-Fi (2)\n"+
		"- Status: Reading 2, Completed 3, Paused 1\n"+
		"- Top genres: Sci-Fi (2), Romance (2)", got)
}

func TestRenderLibraryMetrics_Empty(t *testing.T) {
	got := RenderLibraryMetrics(&domain.LibraryMetrics{})
	assert.Equal(t, "Library insights:\n- Users: 0\n- Books: 0\n- Status: none\n- Top genres: none", got)
}
