package compose

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/listenupapp/librarian/internal/domain"
	"github.com/listenupapp/librarian/internal/store"
)

var bookColumns = []string{"title", "author", "genre", "reading_status"}

// RenderRows lists rows as bullets. Book-shaped rows read as
// "title by author (genre, status)"; anything else as "col: value, ...".
func RenderRows(result *store.QueryResult) string {
	if result == nil || len(result.Rows) == 0 {
		return FallbackNoRows
	}

	var b strings.Builder
	if result.HasColumns(bookColumns...) {
		b.WriteString("Here's what I found:")
		for _, row := range result.Rows {
			fmt.Fprintf(&b, "\n- %s by %s (%s, %s)",
				value(row["title"]), value(row["author"]), value(row["genre"]), value(row["reading_status"]))
		}
		return b.String()
	}

	b.WriteString("Here are the results:")
	for _, row := range result.Rows {
		parts := make([]string, 0, len(result.Columns))
		for _, col := range result.Columns {
			parts = append(parts, col+": "+value(row[col]))
		}
		b.WriteString("\n- " + strings.Join(parts, ", "))
	}
	return b.String()
}

func value(v any) string {
	switch t := v.(type) {
	case nil:
		return "none"
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	default:
		return fmt.Sprint(t)
	}
}

// RenderUserMetrics is the plain-text version of a user snapshot.
func RenderUserMetrics(m *domain.UserMetrics) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Insights for %s:", m.User.Name)
	fmt.Fprintf(&b, "\n- Books: %d (completed %d, reading %d)", m.Totals.Books, m.Totals.Completed, m.Totals.Reading)
	fmt.Fprintf(&b, "\n- Completion rate: %s%%", strconv.FormatFloat(m.CompletionRate, 'f', -1, 64))
	fmt.Fprintf(&b, "\n- Top genres: %s", ranked(m.TopGenres))
	fmt.Fprintf(&b, "\n- Top authors: %s", ranked(m.TopAuthors))
	return b.String()
}

// RenderLibraryMetrics is the plain-text version of a library snapshot.
func RenderLibraryMetrics(m *domain.LibraryMetrics) string {
	var b strings.Builder
	b.WriteString("Library insights:")
	fmt.Fprintf(&b, "\n- Users: %d", m.Totals.Users)
	fmt.Fprintf(&b, "\n- Books: %d", m.Totals.Books)
	if m.TopUser != nil {
		fmt.Fprintf(&b, "\n- Most books: %s (%d)", m.TopUser.Name, m.TopUser.Count)
	}
	if m.TopGenre != nil {
		fmt.Fprintf(&b, "\n- Top genre: %s (%d)", m.TopGenre.Genre, m.TopGenre.Count)
	}
	fmt.Fprintf(&b, "\n- Status: %s", statuses(m.StatusBreakdown))
	fmt.Fprintf(&b, "\n- Top genres: %s", ranked(m.TopGenres))
	return b.String()
}

func ranked(entries []domain.RankedEntry) string {
	if len(entries) == 0 {
		return "none"
	}
	parts := make([]string, len(entries))
	for i, e := range entries {
		parts[i] = fmt.Sprintf("%s (%d)", e.Name, e.Count)
	}
	return strings.Join(parts, ", ")
}

// statuses lists known statuses first, then any others alphabetically.
func statuses(breakdown map[string]int) string {
	if len(breakdown) == 0 {
		return "none"
	}
	var parts []string
	for _, st := range domain.Statuses {
		if n, ok := breakdown[string(st)]; ok {
			parts = append(parts, fmt.Sprintf("%s %d", st, n))
		}
	}
	var other []string
	for k := range breakdown {
		if _, known := domain.ParseReadingStatus(k); !known {
			other = append(other, k)
		}
	}
	slices.Sort(other)
	for _, k := range other {
		parts = append(parts, fmt.Sprintf("%s %d", k, breakdown[k]))
	}
	return strings.Join(parts, ", ")
}
