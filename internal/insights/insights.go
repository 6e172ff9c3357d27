// Package insights computes metrics snapshots over users' libraries.
// Snapshots are computed fresh on every call.
package insights

import (
	"context"
	"fmt"
	"math"
	"slices"

	"github.com/listenupapp/librarian/internal/domain"
)

const (
	userTopN    = 5
	libraryTopN = 8
)

// Source is the read side of the catalog the aggregator needs.
type Source interface {
	GetUser(ctx context.Context, id int64) (*domain.User, error)
	ListBooks(ctx context.Context, ownerID int64) ([]*domain.Book, error)
	ListNonAdminUsers(ctx context.Context) ([]*domain.User, error)
	ListNonAdminBooks(ctx context.Context) ([]*domain.Book, error)
}

// Aggregator computes metrics snapshots.
type Aggregator struct {
	src Source
}

// New creates an aggregator reading from src.
func New(src Source) *Aggregator {
	return &Aggregator{src: src}
}

// UserMetrics summarizes one user's library. The store's not-found error is
// returned for an unknown id.
func (a *Aggregator) UserMetrics(ctx context.Context, userID int64) (*domain.UserMetrics, error) {
	user, err := a.src.GetUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("user metrics: %w", err)
	}
	books, err := a.src.ListBooks(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("user metrics: %w", err)
	}

	totals := domain.UserTotals{Books: len(books)}
	genres := make([]string, 0, len(books))
	authors := make([]string, 0, len(books))
	for _, b := range books {
		switch {
		case domain.StatusCompleted.Equal(string(b.Status)):
			totals.Completed++
		case domain.StatusReading.Equal(string(b.Status)):
			totals.Reading++
		}
		genres = append(genres, b.Genre)
		authors = append(authors, b.Author)
	}

	return &domain.UserMetrics{
		Scope:          domain.ScopeUser,
		User:           domain.MetricsIdentity{ID: user.ID, Name: user.Name, Email: user.Email},
		Totals:         totals,
		CompletionRate: CompletionRate(totals.Completed, totals.Books),
		TopGenres:      Rank(genres, userTopN),
		TopAuthors:     Rank(authors, userTopN),
	}, nil
}

// LibraryMetrics summarizes every non-admin library.
func (a *Aggregator) LibraryMetrics(ctx context.Context) (*domain.LibraryMetrics, error) {
	users, err := a.src.ListNonAdminUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("library metrics: %w", err)
	}
	books, err := a.src.ListNonAdminBooks(ctx)
	if err != nil {
		return nil, fmt.Errorf("library metrics: %w", err)
	}

	names := make(map[int64]string, len(users))
	for _, u := range users {
		names[u.ID] = u.Name
	}

	owners := make([]string, 0, len(books))
	genres := make([]string, 0, len(books))
	breakdown := make(map[string]int)
	for _, b := range books {
		owners = append(owners, names[b.OwnerID])
		genres = append(genres, b.Genre)
		breakdown[statusKey(b.Status)]++
	}

	m := &domain.LibraryMetrics{
		Scope:           domain.ScopeLibrary,
		Totals:          domain.LibraryTotals{Users: len(users), Books: len(books)},
		StatusBreakdown: breakdown,
		TopGenres:       Rank(genres, libraryTopN),
	}
	if top := Rank(owners, 1); len(top) == 1 {
		m.TopUser = &domain.TopUser{Name: top[0].Name, Count: top[0].Count}
	}
	if len(m.TopGenres) > 0 {
		m.TopGenre = &domain.TopGenre{Genre: m.TopGenres[0].Name, Count: m.TopGenres[0].Count}
	}
	return m, nil
}

// CompletionRate is completed/total as a percentage rounded to one decimal.
// It is 0 for an empty library.
func CompletionRate(completed, total int) float64 {
	if total == 0 {
		return 0
	}
	return math.Round(float64(completed)/float64(total)*1000) / 10
}

// Rank counts values and returns the top n by count. Ties keep first-seen
// order. Blank values are not counted.
func Rank(values []string, n int) []domain.RankedEntry {
	counts := make(map[string]int)
	var order []string
	for _, v := range values {
		if v == "" {
			continue
		}
		if _, seen := counts[v]; !seen {
			order = append(order, v)
		}
		counts[v]++
	}

	out := make([]domain.RankedEntry, 0, len(order))
	for _, v := range order {
		out = append(out, domain.RankedEntry{Name: v, Count: counts[v]})
	}
	slices.SortStableFunc(out, func(a, b domain.RankedEntry) int {
		return b.Count - a.Count
	})
	if len(out) > n {
		out = out[:n]
	}
	return out
}

// statusKey folds known statuses to their canonical name.
func statusKey(s domain.ReadingStatus) string {
	if st, ok := domain.ParseReadingStatus(string(s)); ok {
		return string(st)
	}
	return string(s)
}
