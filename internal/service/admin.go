package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/listenupapp/librarian/internal/auth"
	"github.com/listenupapp/librarian/internal/compose"
	"github.com/listenupapp/librarian/internal/domain"
	domainerrors "github.com/listenupapp/librarian/internal/errors"
	"github.com/listenupapp/librarian/internal/insights"
	"github.com/listenupapp/librarian/internal/normalize"
	"github.com/listenupapp/librarian/internal/store"
)

// AdminService handles admin-only user, book and insight operations.
// Admin accounts themselves are never managed through it.
type AdminService struct {
	store    store.Store
	books    *BookService
	insights *insights.Aggregator
	composer *compose.Composer
	logger   *slog.Logger
}

// NewAdminService creates a new admin service.
func NewAdminService(
	store store.Store,
	books *BookService,
	aggregator *insights.Aggregator,
	composer *compose.Composer,
	logger *slog.Logger,
) *AdminService {
	return &AdminService{
		store:    store,
		books:    books,
		insights: aggregator,
		composer: composer,
		logger:   logger,
	}
}

// UpdateUserRequest contains the fields that can be updated on a user.
// An empty password keeps the current one.
type UpdateUserRequest struct {
	Name     *string `json:"name,omitempty" validate:"omitempty,min=1,max=100"`
	Email    *string `json:"email,omitempty" validate:"omitempty,email,max=100"`
	Password *string `json:"password,omitempty" validate:"omitempty,min=6,max=1024"`
}

// UserBooks is a non-admin user with their library.
type UserBooks struct {
	User  *domain.User   `json:"user"`
	Books []*domain.Book `json:"books"`
}

// Dashboard is the admin landing summary.
type Dashboard struct {
	TotalUsers int              `json:"total_users"`
	TotalBooks int              `json:"total_books"`
	TopUser    *domain.TopUser  `json:"top_user"`
	TopGenre   *domain.TopGenre `json:"top_genre"`
}

// InsightsReport is a metrics snapshot with its text summary. Exactly one
// of User and Library is set.
type InsightsReport struct {
	User    *domain.UserMetrics    `json:"user,omitempty"`
	Library *domain.LibraryMetrics `json:"library,omitempty"`
	Summary string                 `json:"summary"`
	Users   []*domain.User         `json:"users"`
}

// ListUsers returns non-admin users with their book counts.
func (s *AdminService) ListUsers(ctx context.Context) ([]*domain.UserWithBookCount, error) {
	users, err := s.store.ListNonAdminUsersWithBookCounts(ctx)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}

// managedUser loads a user an admin may manage.
func (s *AdminService) managedUser(ctx context.Context, userID int64) (*domain.User, error) {
	user, err := s.store.GetUser(ctx, userID)
	if err != nil {
		if store.IsNotFound(err) {
			return nil, domainerrors.NotFound("user not found")
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	if user.IsAdmin {
		return nil, domainerrors.Forbidden("admin accounts cannot be managed")
	}
	return user, nil
}

// UpdateUser edits a non-admin user's name, email or password.
func (s *AdminService) UpdateUser(ctx context.Context, adminID, userID int64, req UpdateUserRequest) (*domain.User, error) {
	if err := validate.Validate(req); err != nil {
		return nil, err
	}

	user, err := s.managedUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		user.Name = normalize.Name(*req.Name)
	}
	if req.Email != nil {
		user.Email = strings.TrimSpace(*req.Email)
	}
	if err := s.store.UpdateUser(ctx, user); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			return nil, domainerrors.AlreadyExists("email already in use")
		}
		return nil, fmt.Errorf("update user: %w", err)
	}

	if req.Password != nil && *req.Password != "" {
		hash, err := auth.HashPassword(*req.Password)
		if err != nil {
			return nil, fmt.Errorf("hash password: %w", err)
		}
		if err := s.store.SetUserPassword(ctx, user.ID, hash); err != nil {
			return nil, fmt.Errorf("set password: %w", err)
		}
		user.PasswordHash = hash
	}

	s.logger.Info("user updated by admin",
		"user_id", user.ID,
		"admin_id", adminID,
		"password_changed", req.Password != nil && *req.Password != "",
	)
	return user, nil
}

// DeleteUser removes a non-admin user and their books.
func (s *AdminService) DeleteUser(ctx context.Context, adminID, userID int64) error {
	if _, err := s.managedUser(ctx, userID); err != nil {
		return err
	}
	if err := s.store.DeleteUser(ctx, userID); err != nil {
		return fmt.Errorf("delete user: %w", err)
	}

	s.logger.Info("user deleted by admin", "user_id", userID, "admin_id", adminID)
	return nil
}

// UserBooks returns a non-admin user's library.
func (s *AdminService) UserBooks(ctx context.Context, userID int64) (*UserBooks, error) {
	user, err := s.managedUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	books, err := s.store.ListBooks(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list books: %w", err)
	}
	return &UserBooks{User: user, Books: books}, nil
}

// AddBook creates a book in a non-admin user's library.
func (s *AdminService) AddBook(ctx context.Context, userID int64, req CreateBookRequest) (*domain.Book, error) {
	if _, err := s.managedUser(ctx, userID); err != nil {
		return nil, err
	}
	return s.books.create(ctx, userID, req)
}

// AllBooks returns every non-admin book sorted by title.
func (s *AdminService) AllBooks(ctx context.Context) ([]*domain.Book, error) {
	books, err := s.store.ListNonAdminBooksByTitle(ctx)
	if err != nil {
		return nil, fmt.Errorf("list books: %w", err)
	}
	return books, nil
}

// Dashboard summarizes the non-admin library.
func (s *AdminService) Dashboard(ctx context.Context) (*Dashboard, error) {
	m, err := s.insights.LibraryMetrics(ctx)
	if err != nil {
		return nil, fmt.Errorf("library metrics: %w", err)
	}
	return &Dashboard{
		TotalUsers: m.Totals.Users,
		TotalBooks: m.Totals.Books,
		TopUser:    m.TopUser,
		TopGenre:   m.TopGenre,
	}, nil
}

// Insights builds a snapshot for one user, or for the whole library when
// userID is nil, and summarizes it.
func (s *AdminService) Insights(ctx context.Context, userID *int64) (*InsightsReport, error) {
	users, err := s.store.ListNonAdminUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	report := &InsightsReport{Users: users}
	if report.Users == nil {
		report.Users = []*domain.User{}
	}

	if userID != nil {
		m, err := s.insights.UserMetrics(ctx, *userID)
		if err != nil {
			if store.IsNotFound(err) {
				return nil, domainerrors.NotFoundf("user %d not found", *userID)
			}
			return nil, err
		}
		report.User = m
		report.Summary = s.composer.UserInsights(ctx, m)
		return report, nil
	}

	m, err := s.insights.LibraryMetrics(ctx)
	if err != nil {
		return nil, err
	}
	report.Library = m
	report.Summary = s.composer.LibraryInsights(ctx, m)
	return report, nil
}
