package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/listenupapp/librarian/internal/compose"
	"github.com/listenupapp/librarian/internal/domain"
	domainerrors "github.com/listenupapp/librarian/internal/errors"
	"github.com/listenupapp/librarian/internal/insights"
	"github.com/listenupapp/librarian/internal/router"
	"github.com/listenupapp/librarian/internal/sqlgen"
	"github.com/listenupapp/librarian/internal/store"
	"github.com/listenupapp/librarian/internal/websearch"
)

// MaxMessageLength is the longest accepted message, in characters.
const MaxMessageLength = 2000

// Fixed chat replies.
const (
	ReplyEmptyMessage  = "Please type something first."
	ReplyTooLong       = "That message is too long. Please keep it under 2000 characters."
	ReplyNoPermission  = "You don't have permission."
	ReplyReadOnly      = "I only support read-only questions. I can't modify data."
	ReplyNotUnderstood = "I couldn't understand that question. Try rephrasing it."
	ReplyUserNotFound  = "I couldn't find that user. Please check the name and try again."
	ReplyInternal      = "Something went wrong on our side. Please try again."

	replyNoBooksRecommend       = "You don't have any books yet. Add some books to your library first so I can give you personalized recommendations!"
	replyTargetNoBooksRecommend = "%s doesn't have any books yet. Add some books to their library first to get recommendations."
	replyNoBooksHabits          = "You don't have any books yet. Add some books to your library first!"
	replyTargetNoBooksHabits    = "%s doesn't have any books yet. Add some books to their library first."
)

// ChatRequest is an inbound chat message.
type ChatRequest struct {
	Message string `json:"message"`
}

// ChatResponse carries the reply text.
type ChatResponse struct {
	Reply string `json:"reply"`
}

// ChatService answers natural-language questions about the catalog.
type ChatService struct {
	store    store.Store
	router   *router.Router
	sql      *sqlgen.Synthesizer
	search   websearch.Searcher
	insights *insights.Aggregator
	composer *compose.Composer
	metrics  *ChatMetrics
	logger   *slog.Logger
}

// NewChatService creates a chat service.
func NewChatService(
	store store.Store,
	router *router.Router,
	synth *sqlgen.Synthesizer,
	search websearch.Searcher,
	aggregator *insights.Aggregator,
	composer *compose.Composer,
	metrics *ChatMetrics,
	logger *slog.Logger,
) *ChatService {
	return &ChatService{
		store:    store,
		router:   router,
		sql:      synth,
		search:   search,
		insights: aggregator,
		composer: composer,
		metrics:  metrics,
		logger:   logger,
	}
}

// Chat routes the message and produces a reply. The only errors are
// validation errors for an empty or overlong message, each carrying its
// reply text; every other failure becomes a plain reply.
func (s *ChatService) Chat(ctx context.Context, caller domain.Caller, message string) (*ChatResponse, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return nil, domainerrors.ValidationWithDetails(ReplyEmptyMessage, map[string]string{"reply": ReplyEmptyMessage})
	}
	if utf8.RuneCountInString(message) > MaxMessageLength {
		return nil, domainerrors.ValidationWithDetails(ReplyTooLong, map[string]string{"reply": ReplyTooLong})
	}

	start := time.Now()
	decision, err := s.router.Route(ctx, message, caller)
	if err != nil {
		s.logger.Error("routing failed", "user_id", caller.UserID, "error", err)
		s.metrics.Record(string(decision.Strategy), OutcomeError, time.Since(start))
		return &ChatResponse{Reply: ReplyInternal}, nil
	}

	var reply, outcome string
	switch decision.Strategy {
	case router.AdminInsights:
		reply, outcome = s.adminInsights(ctx, decision)
	case router.Recommendation:
		reply, outcome = s.recommend(ctx, caller, decision)
	case router.WebLookup:
		reply, outcome = s.webLookup(ctx, caller, message)
	case router.HabitAnalysis:
		reply, outcome = s.habits(ctx, caller, decision)
	default:
		reply, outcome = s.answerFromSQL(ctx, caller, message)
	}

	s.metrics.Record(string(decision.Strategy), outcome, time.Since(start))
	s.logger.Info("chat answered",
		"user_id", caller.UserID,
		"strategy", decision.Strategy,
		"outcome", outcome,
	)
	return &ChatResponse{Reply: reply}, nil
}

func (s *ChatService) adminInsights(ctx context.Context, d router.Decision) (string, string) {
	if d.InsightsUserID != nil {
		m, err := s.insights.UserMetrics(ctx, *d.InsightsUserID)
		if err != nil {
			if store.IsNotFound(err) {
				return ReplyUserNotFound, OutcomeNotFound
			}
			s.logger.Error("user metrics failed", "target_id", *d.InsightsUserID, "error", err)
			return ReplyInternal, OutcomeError
		}
		return s.composer.UserInsights(ctx, m), OutcomeAnswered
	}

	m, err := s.insights.LibraryMetrics(ctx)
	if err != nil {
		s.logger.Error("library metrics failed", "error", err)
		return ReplyInternal, OutcomeError
	}
	return s.composer.LibraryInsights(ctx, m), OutcomeAnswered
}

// targetBooks loads the library in view: the resolved target for admins,
// otherwise the caller's own.
func (s *ChatService) targetBooks(ctx context.Context, caller domain.Caller, d router.Decision) (string, []*domain.Book, error) {
	ownerID, name := caller.UserID, caller.Name
	if d.Target != nil {
		ownerID, name = d.Target.ID, d.Target.Name
	}
	books, err := s.store.ListBooks(ctx, ownerID)
	if err != nil {
		return name, nil, fmt.Errorf("list books for %d: %w", ownerID, err)
	}
	return name, books, nil
}

func (s *ChatService) recommend(ctx context.Context, caller domain.Caller, d router.Decision) (string, string) {
	name, books, err := s.targetBooks(ctx, caller, d)
	if err != nil {
		s.logger.Error("load books failed", "user_id", caller.UserID, "error", err)
		return ReplyInternal, OutcomeError
	}
	if len(books) == 0 {
		if d.Target != nil {
			return fmt.Sprintf(replyTargetNoBooksRecommend, name), OutcomeEmptyLibrary
		}
		return replyNoBooksRecommend, OutcomeEmptyLibrary
	}
	return s.composer.Recommend(ctx, caller, name, domain.Views(books, true)), OutcomeAnswered
}

func (s *ChatService) habits(ctx context.Context, caller domain.Caller, d router.Decision) (string, string) {
	if d.UnresolvedTarget {
		return ReplyUserNotFound, OutcomeNotFound
	}
	name, books, err := s.targetBooks(ctx, caller, d)
	if err != nil {
		s.logger.Error("load books failed", "user_id", caller.UserID, "error", err)
		return ReplyInternal, OutcomeError
	}
	if len(books) == 0 {
		if d.Target != nil {
			return fmt.Sprintf(replyTargetNoBooksHabits, name), OutcomeEmptyLibrary
		}
		return replyNoBooksHabits, OutcomeEmptyLibrary
	}
	return s.composer.Habits(ctx, caller.Name, name, domain.Views(books, true)), OutcomeAnswered
}

func (s *ChatService) webLookup(ctx context.Context, caller domain.Caller, message string) (string, string) {
	var (
		books []*domain.Book
		err   error
	)
	if caller.IsAdmin {
		books, err = s.store.ListNonAdminBooksByTitle(ctx)
	} else {
		books, err = s.store.ListBooks(ctx, caller.UserID)
	}
	if err != nil {
		s.logger.Error("load books failed", "user_id", caller.UserID, "error", err)
		return ReplyInternal, OutcomeError
	}

	snippets := s.search.Search(ctx, SearchQuery(message, books))
	return s.composer.Web(ctx, message, domain.Views(books, false), snippets, caller.IsAdmin), OutcomeAnswered
}

// SearchQuery appends the distinct titles in view to the question.
func SearchQuery(question string, books []*domain.Book) string {
	seen := make(map[string]struct{}, len(books))
	titles := make([]string, 0, len(books))
	for _, b := range books {
		if b.Title == "" {
			continue
		}
		if _, ok := seen[b.Title]; ok {
			continue
		}
		seen[b.Title] = struct{}{}
		titles = append(titles, b.Title)
	}
	if len(titles) == 0 {
		return question
	}
	return question + " Among these books: " + strings.Join(titles, ", ")
}

func (s *ChatService) answerFromSQL(ctx context.Context, caller domain.Caller, message string) (string, string) {
	query, err := s.sql.Synthesize(ctx, message, caller.UserID, caller.IsAdmin)
	if err != nil {
		s.logger.Warn("sql synthesis failed", "user_id", caller.UserID, "error", err)
		return ReplyNotUnderstood, OutcomeQueryError
	}

	if err := sqlgen.Guard(query, message, caller.IsAdmin); err != nil {
		s.logger.Warn("generated sql rejected", "user_id", caller.UserID, "error", err)
		switch {
		case errors.Is(err, sqlgen.ErrPermission):
			return ReplyNoPermission, OutcomeRejected
		case errors.Is(err, sqlgen.ErrReadOnly):
			return ReplyReadOnly, OutcomeRejected
		}
		return ReplyNotUnderstood, OutcomeRejected
	}

	result, err := s.store.ExecuteReadOnlyQuery(ctx, query)
	if err != nil {
		s.logger.Warn("generated sql failed", "user_id", caller.UserID, "error", err)
		return ReplyNotUnderstood, OutcomeQueryError
	}

	return s.composer.AnswerSQL(ctx, message, query, result, caller), OutcomeAnswered
}
