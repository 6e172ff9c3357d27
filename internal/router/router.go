package router

import (
	"context"
	"log/slog"
	"regexp"
	"strconv"
	"strings"

	"github.com/listenupapp/librarian/internal/domain"
	"github.com/listenupapp/librarian/internal/store"
)

// UserDirectory looks up non-admin users by display name.
type UserDirectory interface {
	// FindUserByName matches exactly, ignoring case. Admins are excluded.
	FindUserByName(ctx context.Context, name string) (*domain.User, error)
}

// Patterns tried in order when an admin asks for recommendations.
var RecommendationPatterns = []*regexp.Regexp{
	regexp.MustCompile(`\b(?:for|to)\s+([A-Z][a-z]+(?:'s)?)`),
	regexp.MustCompile(`(?i)\buser\s+([A-Z][a-z]+)`),
}

// Patterns tried in order when an admin asks about reading habits.
var HabitPatterns = []*regexp.Regexp{
	regexp.MustCompile(`\b([A-Z][a-z]+)'s?\s+(?:reading|book|library)`),
	regexp.MustCompile(`(?:for|about)\s+([A-Z][a-z]+)`),
	regexp.MustCompile(`([A-Z][a-z]+)\s+(?:reading|book|library)`),
}

var nameTokenPattern = regexp.MustCompile(`^[A-Z][a-z]+`)

// notNames are capitalized words the name patterns pick up at the start of
// a sentence. They are never looked up.
var notNames = map[string]struct{}{
	"my": {}, "your": {}, "our": {}, "their": {}, "his": {}, "her": {}, "its": {},
	"the": {}, "this": {}, "that": {}, "these": {}, "those": {},
	"what": {}, "how": {}, "why": {}, "when": {}, "who": {}, "which": {},
	"summarize": {}, "summarise": {}, "analyze": {}, "analyse": {},
	"show": {}, "tell": {}, "describe": {}, "give": {}, "please": {},
	"any": {}, "some": {}, "all": {}, "every": {}, "each": {},
}

func isNotName(word string) bool {
	_, ok := notNames[strings.ToLower(word)]
	return ok
}

// Decision is the routing outcome for one message.
type Decision struct {
	Strategy Strategy
	// Target is another user's library an admin asked about. Nil means the caller.
	Target *domain.User
	// InsightsUserID scopes AdminInsights to one user. Nil means the whole library.
	InsightsUserID *int64
	// UnresolvedTarget is set when an admin named someone who doesn't exist.
	UnresolvedTarget bool
}

// Router classifies messages and resolves targets.
type Router struct {
	users  UserDirectory
	logger *slog.Logger
}

// New creates a router.
func New(users UserDirectory, logger *slog.Logger) *Router {
	return &Router{users: users, logger: logger}
}

// Route classifies message and resolves the target scope. Only admins ever
// get a Target other than themselves. Errors come from the directory only.
func (r *Router) Route(ctx context.Context, message string, caller domain.Caller) (Decision, error) {
	message = strings.TrimSpace(message)
	d := Decision{Strategy: Classify(message, caller)}

	switch d.Strategy {
	case AdminInsights:
		d.InsightsUserID = insightsUserID(message)

	case Recommendation:
		if caller.IsAdmin {
			target, _, err := r.resolve(ctx, message, RecommendationPatterns)
			if err != nil {
				return d, err
			}
			d.Target = target
		}

	case HabitAnalysis:
		if caller.IsAdmin {
			target, missed, err := r.resolve(ctx, message, HabitPatterns)
			if err != nil {
				return d, err
			}
			d.Target = target
			d.UnresolvedTarget = target == nil && (missed || mentionsName(message))
		}
	}

	r.logger.Debug("message routed",
		"strategy", d.Strategy,
		"user_id", caller.UserID,
		"targeted", d.Target != nil,
		"unresolved", d.UnresolvedTarget,
	)
	return d, nil
}

// resolve tries each pattern in order; the first capture that names a
// non-admin user wins. missed reports that at least one captured name was
// looked up and not found.
func (r *Router) resolve(ctx context.Context, message string, patterns []*regexp.Regexp) (_ *domain.User, missed bool, _ error) {
	for _, p := range patterns {
		m := p.FindStringSubmatch(message)
		if m == nil {
			continue
		}
		name := cleanName(m[1])
		if name == "" || isNotName(name) {
			continue
		}

		u, err := r.users.FindUserByName(ctx, name)
		if err == nil {
			return u, false, nil
		}
		if !store.IsNotFound(err) {
			return nil, false, err
		}
		missed = true
	}
	return nil, missed, nil
}

// cleanName drops a trailing possessive.
func cleanName(s string) string {
	s = strings.ReplaceAll(s, "'s", "")
	s = strings.ReplaceAll(s, "'", "")
	return strings.TrimSpace(s)
}

// mentionsName reports a capitalized word of two or more letters after the
// first word.
func mentionsName(message string) bool {
	words := strings.Fields(message)
	for i, w := range words {
		if i == 0 {
			continue
		}
		tok := nameTokenPattern.FindString(w)
		if tok != "" && !isNotName(tok) {
			return true
		}
	}
	return false
}

// insightsUserID reads "<cmd> user <id>".
func insightsUserID(message string) *int64 {
	parts := strings.Fields(message)
	if len(parts) < 3 || !strings.EqualFold(parts[1], "user") {
		return nil
	}
	id, err := strconv.ParseInt(parts[2], 10, 64)
	if err != nil {
		return nil
	}
	return &id
}
