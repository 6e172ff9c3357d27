// Package service provides the business logic of the Librarian catalog:
// accounts, books, admin management and chat.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/listenupapp/librarian/internal/domain"
	domainerrors "github.com/listenupapp/librarian/internal/errors"
	"github.com/listenupapp/librarian/internal/normalize"
	"github.com/listenupapp/librarian/internal/store"
)

// BookService orchestrates book operations.
type BookService struct {
	store  store.Store
	logger *slog.Logger
}

// NewBookService creates a new book service.
func NewBookService(store store.Store, logger *slog.Logger) *BookService {
	return &BookService{
		store:  store,
		logger: logger,
	}
}

// CreateBookRequest contains the fields of a new book.
type CreateBookRequest struct {
	Title  string `json:"title" validate:"required,max=200"`
	Author string `json:"author" validate:"required,max=200"`
	Genre  string `json:"genre" validate:"required,max=100"`
	Status string `json:"reading_status" validate:"required,reading_status"`
}

// UpdateBookRequest contains the fields to change. Nil fields are kept.
type UpdateBookRequest struct {
	Title  *string `json:"title,omitempty" validate:"omitempty,min=1,max=200"`
	Author *string `json:"author,omitempty" validate:"omitempty,min=1,max=200"`
	Genre  *string `json:"genre,omitempty" validate:"omitempty,min=1,max=100"`
	Status *string `json:"reading_status,omitempty" validate:"omitempty,reading_status"`
}

// ListBooks returns the caller's own books.
func (s *BookService) ListBooks(ctx context.Context, caller domain.Caller) ([]*domain.Book, error) {
	books, err := s.store.ListBooks(ctx, caller.UserID)
	if err != nil {
		return nil, fmt.Errorf("list books: %w", err)
	}
	return books, nil
}

// CreateBook adds a book to the caller's library.
func (s *BookService) CreateBook(ctx context.Context, caller domain.Caller, req CreateBookRequest) (*domain.Book, error) {
	return s.create(ctx, caller.UserID, req)
}

func (s *BookService) create(ctx context.Context, ownerID int64, req CreateBookRequest) (*domain.Book, error) {
	if err := validate.Validate(req); err != nil {
		return nil, err
	}
	status, _ := domain.ParseReadingStatus(req.Status)

	book := &domain.Book{
		OwnerID: ownerID,
		Title:   normalize.Title(req.Title),
		Author:  normalize.Title(req.Author),
		Genre:   normalize.Title(req.Genre),
		Status:  status,
	}
	if err := s.store.CreateBook(ctx, book); err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			return nil, domainerrors.NotFound("user not found")
		}
		return nil, fmt.Errorf("create book: %w", err)
	}

	s.logger.Info("book created",
		"book_id", book.ID,
		"owner_id", ownerID,
	)
	return book, nil
}

// UpdateBook edits a book owned by the caller. Admins may edit any book.
func (s *BookService) UpdateBook(ctx context.Context, caller domain.Caller, bookID int64, req UpdateBookRequest) (*domain.Book, error) {
	if err := validate.Validate(req); err != nil {
		return nil, err
	}

	book, err := s.authorizedBook(ctx, caller, bookID)
	if err != nil {
		return nil, err
	}

	if req.Title != nil {
		book.Title = normalize.Title(*req.Title)
	}
	if req.Author != nil {
		book.Author = normalize.Title(*req.Author)
	}
	if req.Genre != nil {
		book.Genre = normalize.Title(*req.Genre)
	}
	if req.Status != nil {
		book.Status, _ = domain.ParseReadingStatus(*req.Status)
	}

	if err := s.store.UpdateBook(ctx, book); err != nil {
		return nil, fmt.Errorf("update book: %w", err)
	}
	return book, nil
}

// DeleteBook removes a book owned by the caller. Admins may delete any book.
func (s *BookService) DeleteBook(ctx context.Context, caller domain.Caller, bookID int64) error {
	if _, err := s.authorizedBook(ctx, caller, bookID); err != nil {
		return err
	}
	if err := s.store.DeleteBook(ctx, bookID); err != nil {
		return fmt.Errorf("delete book: %w", err)
	}

	s.logger.Info("book deleted", "book_id", bookID, "user_id", caller.UserID)
	return nil
}

// authorizedBook loads a book the caller may change.
func (s *BookService) authorizedBook(ctx context.Context, caller domain.Caller, bookID int64) (*domain.Book, error) {
	book, err := s.store.GetBook(ctx, bookID)
	if err != nil {
		if store.IsNotFound(err) {
			return nil, domainerrors.NotFound("book not found")
		}
		return nil, fmt.Errorf("get book: %w", err)
	}
	if book.OwnerID != caller.UserID && !caller.IsAdmin {
		return nil, domainerrors.Forbidden("you can only change your own books")
	}
	return book, nil
}
