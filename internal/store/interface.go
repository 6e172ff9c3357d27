// Package store defines the persistence contract of the Librarian catalog.
// The SQLite implementation lives in store/sqlite.
package store

import (
	"context"

	"github.com/listenupapp/librarian/internal/domain"
)

// Users is the user-record store.
type Users interface {
	CreateUser(ctx context.Context, user *domain.User) error
	GetUser(ctx context.Context, id int64) (*domain.User, error)
	GetUserByEmail(ctx context.Context, email string) (*domain.User, error)
	// FindUserByName matches the display name exactly, ignoring case.
	// Admin accounts are never returned.
	FindUserByName(ctx context.Context, name string) (*domain.User, error)
	UpdateUser(ctx context.Context, user *domain.User) error
	SetUserPassword(ctx context.Context, id int64, passwordHash string) error
	DeleteUser(ctx context.Context, id int64) error
	ListNonAdminUsers(ctx context.Context) ([]*domain.User, error)
	ListNonAdminUsersWithBookCounts(ctx context.Context) ([]*domain.UserWithBookCount, error)
	CountNonAdminUsers(ctx context.Context) (int, error)
}

// Books is the book-record store.
type Books interface {
	CreateBook(ctx context.Context, book *domain.Book) error
	GetBook(ctx context.Context, id int64) (*domain.Book, error)
	UpdateBook(ctx context.Context, book *domain.Book) error
	DeleteBook(ctx context.Context, id int64) error
	// ListBooks returns the owner's books in insertion order.
	ListBooks(ctx context.Context, ownerID int64) ([]*domain.Book, error)
	// ListNonAdminBooks returns every book owned by a non-admin, in insertion order.
	ListNonAdminBooks(ctx context.Context) ([]*domain.Book, error)
	// ListNonAdminBooksByTitle is ListNonAdminBooks sorted by title.
	ListNonAdminBooksByTitle(ctx context.Context) ([]*domain.Book, error)
}

// Querier runs generated, read-only SQL.
type Querier interface {
	// ExecuteReadOnlyQuery fails with ErrQuery for anything but a single
	// read statement, and for any execution fault.
	ExecuteReadOnlyQuery(ctx context.Context, sqlText string) (*QueryResult, error)
}

// Store is the full persistence surface used by services.
type Store interface {
	Users
	Books
	Querier
	Ping(ctx context.Context) error
	Close() error
}
