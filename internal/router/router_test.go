package router

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/listenupapp/librarian/internal/domain"
	"github.com/listenupapp/librarian/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeDirectory matches names case-insensitively and records lookups.
type fakeDirectory struct {
	users   []*domain.User
	lookups []string
	err     error
}

func (f *fakeDirectory) FindUserByName(_ context.Context, name string) (*domain.User, error) {
	f.lookups = append(f.lookups, name)
	if f.err != nil {
		return nil, f.err
	}
	for _, u := range f.users {
		if strings.EqualFold(u.Name, name) && !u.IsAdmin {
			return u, nil
		}
	}
	return nil, store.ErrUserNotFound
}

func newTestRouter(users ...*domain.User) (*Router, *fakeDirectory) {
	dir := &fakeDirectory{users: users}
	return New(dir, slog.New(slog.NewTextHandler(io.Discard, nil))), dir
}

var arber = &domain.User{ID: 2, Name: "Arber"}

func TestRoute_RecommendationTarget(t *testing.T) {
	r, _ := newTestRouter(arber)

	d, err := r.Route(context.Background(), "recommend books for Arber", admin)
	require.NoError(t, err)
	assert.Equal(t, Recommendation, d.Strategy)
	require.NotNil(t, d.Target)
	assert.Equal(t, int64(2), d.Target.ID)
}

func TestRoute_RecommendationPossessive(t *testing.T) {
	r, dir := newTestRouter(arber)

	d, err := r.Route(context.Background(), "Suggest books to add to Arber's library", admin)
	require.NoError(t, err)
	require.NotNil(t, d.Target)
	assert.Equal(t, "Arber", d.Target.Name)
	assert.Equal(t, []string{"Arber"}, dir.lookups)
}

func TestRoute_RecommendationSecondPattern(t *testing.T) {
	r, dir := newTestRouter(arber)

	d, err := r.Route(context.Background(), "book recommendations for user arber", admin)
	require.NoError(t, err)
	require.NotNil(t, d.Target)
	assert.Equal(t, "Arber", d.Target.Name)
	assert.Equal(t, []string{"arber"}, dir.lookups)
}

func TestRoute_RecommendationUnknownFallsBackToCaller(t *testing.T) {
	r, _ := newTestRouter(arber)

	d, err := r.Route(context.Background(), "recommend books for Zana", admin)
	require.NoError(t, err)
	assert.Equal(t, Recommendation, d.Strategy)
	assert.Nil(t, d.Target)
	assert.False(t, d.UnresolvedTarget)
}

func TestRoute_MemberNeverTargets(t *testing.T) {
	r, dir := newTestRouter(arber)

	d, err := r.Route(context.Background(), "recommend books for Arber", member)
	require.NoError(t, err)
	assert.Nil(t, d.Target)
	assert.Empty(t, dir.lookups)

	d, err = r.Route(context.Background(), "Summarize Arber reading habits", member)
	require.NoError(t, err)
	assert.Equal(t, HabitAnalysis, d.Strategy)
	assert.Nil(t, d.Target)
	assert.False(t, d.UnresolvedTarget)
}

func TestRoute_HabitPatterns(t *testing.T) {
	tests := []struct {
		message string
		lookups []string
	}{
		{"Analyze Arber's reading habits", []string{"Arber"}},
		{"what are the reading habits for Arber", []string{"Arber"}},
		{"Summarize Arber library habits", []string{"Arber"}},
	}
	for _, tt := range tests {
		t.Run(tt.message, func(t *testing.T) {
			r, dir := newTestRouter(arber)
			d, err := r.Route(context.Background(), tt.message, admin)
			require.NoError(t, err)
			assert.Equal(t, HabitAnalysis, d.Strategy)
			require.NotNil(t, d.Target)
			assert.Equal(t, "Arber", d.Target.Name)
			assert.Equal(t, tt.lookups, dir.lookups)
		})
	}
}

func TestRoute_HabitPatternFallthrough(t *testing.T) {
	// The second pattern captures the unknown Zana; the third then finds Arber.
	r, dir := newTestRouter(arber)

	d, err := r.Route(context.Background(), "habits about Zana and Arber reading", admin)
	require.NoError(t, err)
	require.NotNil(t, d.Target)
	assert.Equal(t, "Arber", d.Target.Name)
	assert.Equal(t, []string{"Zana", "Arber"}, dir.lookups)
}

func TestRoute_HabitUnresolved(t *testing.T) {
	r, _ := newTestRouter(arber)

	d, err := r.Route(context.Background(), "Analyze Zana's reading habits", admin)
	require.NoError(t, err)
	assert.Equal(t, HabitAnalysis, d.Strategy)
	assert.Nil(t, d.Target)
	assert.True(t, d.UnresolvedTarget)
}

func TestRoute_HabitUnresolvedLeadingName(t *testing.T) {
	for _, msg := range []string{
		"Zana's reading habits?",
		"Zana reading habits please",
		"Habits about Zana",
	} {
		t.Run(msg, func(t *testing.T) {
			r, dir := newTestRouter(arber)
			d, err := r.Route(context.Background(), msg, admin)
			require.NoError(t, err)
			assert.Equal(t, HabitAnalysis, d.Strategy)
			assert.Nil(t, d.Target)
			assert.True(t, d.UnresolvedTarget)
			assert.Contains(t, dir.lookups, "Zana")
		})
	}
}

func TestRoute_HabitCommonWordsAreNotNames(t *testing.T) {
	for _, msg := range []string{
		"My reading habits",
		"What reading habits do I have?",
		"Summarize book habits",
		"Analyze my reading, Please",
	} {
		t.Run(msg, func(t *testing.T) {
			r, dir := newTestRouter(arber)
			d, err := r.Route(context.Background(), msg, admin)
			require.NoError(t, err)
			assert.Equal(t, HabitAnalysis, d.Strategy)
			assert.Nil(t, d.Target)
			assert.False(t, d.UnresolvedTarget)
			assert.Empty(t, dir.lookups)
		})
	}
}

func TestRoute_HabitOwnForAdmin(t *testing.T) {
	r, _ := newTestRouter(arber)

	d, err := r.Route(context.Background(), "Summarize my reading habits", admin)
	require.NoError(t, err)
	assert.Nil(t, d.Target)
	assert.False(t, d.UnresolvedTarget)

	d, err = r.Route(context.Background(), "How do I read?", admin)
	require.NoError(t, err)
	assert.False(t, d.UnresolvedTarget)
}

func TestRoute_InsightsUserID(t *testing.T) {
	r, _ := newTestRouter()

	d, err := r.Route(context.Background(), "/insights user 42", admin)
	require.NoError(t, err)
	assert.Equal(t, AdminInsights, d.Strategy)
	require.NotNil(t, d.InsightsUserID)
	assert.Equal(t, int64(42), *d.InsightsUserID)

	d, err = r.Route(context.Background(), "/insights user abc", admin)
	require.NoError(t, err)
	assert.Nil(t, d.InsightsUserID)

	d, err = r.Route(context.Background(), "insights", admin)
	require.NoError(t, err)
	assert.Nil(t, d.InsightsUserID)
}

func TestRoute_DirectoryError(t *testing.T) {
	r, dir := newTestRouter(arber)
	dir.err = errors.New("database is locked")

	_, err := r.Route(context.Background(), "recommend books for Arber", admin)
	assert.ErrorContains(t, err, "database is locked")
}

func TestCleanName(t *testing.T) {
	assert.Equal(t, "Arber", cleanName("Arber's"))
	assert.Equal(t, "Arber", cleanName("Arber'"))
	assert.Equal(t, "Arber", cleanName(" Arber "))
}
