package domain

// Scope values for metrics snapshots.
const (
	ScopeUser    = "user"
	ScopeLibrary = "library"
)

// RankedEntry is one row of a top-N list.
type RankedEntry struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// UserTotals counts a single library.
type UserTotals struct {
	Books     int `json:"books"`
	Completed int `json:"completed"`
	Reading   int `json:"reading"`
}

// MetricsIdentity identifies whose library a user snapshot covers.
type MetricsIdentity struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// UserMetrics is an immutable snapshot of one user's library.
type UserMetrics struct {
	Scope          string          `json:"scope"`
	User           MetricsIdentity `json:"user"`
	Totals         UserTotals      `json:"totals"`
	CompletionRate float64         `json:"completion_rate"`
	TopGenres      []RankedEntry   `json:"top_genres"`
	TopAuthors     []RankedEntry   `json:"top_authors"`
}

// LibraryTotals counts the whole non-admin library.
type LibraryTotals struct {
	Users int `json:"users"`
	Books int `json:"books"`
}

// TopUser is the reader owning the most books.
type TopUser struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// TopGenre is the most common genre.
type TopGenre struct {
	Genre string `json:"genre"`
	Count int    `json:"count"`
}

// LibraryMetrics is an immutable snapshot across all non-admin users.
type LibraryMetrics struct {
	Scope           string         `json:"scope"`
	Totals          LibraryTotals  `json:"totals"`
	TopUser         *TopUser       `json:"top_user"`
	TopGenre        *TopGenre      `json:"top_genre"`
	StatusBreakdown map[string]int `json:"status_breakdown"`
	TopGenres       []RankedEntry  `json:"top_genres"`
}
