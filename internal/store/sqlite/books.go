package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/listenupapp/librarian/internal/domain"
	"github.com/listenupapp/librarian/internal/store"
)

// bookColumns must match the scan order in scanBook.
const bookColumns = `id, user_id, title, author, genre, reading_status, created_at`

func scanBook(scanner interface{ Scan(dest ...any) error }) (*domain.Book, error) {
	var (
		b         domain.Book
		status    string
		createdAt string
	)
	if err := scanner.Scan(&b.ID, &b.OwnerID, &b.Title, &b.Author, &b.Genre, &status, &createdAt); err != nil {
		return nil, err
	}

	// Rows written by older clients may carry any casing.
	if st, ok := domain.ParseReadingStatus(status); ok {
		b.Status = st
	} else {
		b.Status = domain.ReadingStatus(status)
	}

	var err error
	b.CreatedAt, err = parseTime(createdAt)
	if err != nil {
		return nil, err
	}
	return &b, nil
}

// CreateBook inserts a book and sets its ID.
// Returns store.ErrUserNotFound if the owner does not exist.
func (s *Store) CreateBook(ctx context.Context, book *domain.Book) error {
	if book.CreatedAt.IsZero() {
		book.CreatedAt = time.Now()
	}
	if book.Status == "" {
		book.Status = domain.StatusReading
	}

	res, err := s.db.ExecContext(ctx, `
		INSERT INTO books (user_id, title, author, genre, reading_status, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		book.OwnerID,
		book.Title,
		book.Author,
		book.Genre,
		string(book.Status),
		formatTime(book.CreatedAt),
	)
	if err != nil {
		if isForeignKeyErr(err) {
			return store.ErrUserNotFound
		}
		return fmt.Errorf("insert book: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("book id: %w", err)
	}
	book.ID = id
	return nil
}

// GetBook retrieves a book by ID.
// Returns store.ErrBookNotFound if the book does not exist.
func (s *Store) GetBook(ctx context.Context, id int64) (*domain.Book, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+bookColumns+` FROM books WHERE id = ?`, id)
	b, err := scanBook(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrBookNotFound
	}
	if err != nil {
		return nil, err
	}
	return b, nil
}

// UpdateBook saves the editable fields of a book. Ownership never changes.
func (s *Store) UpdateBook(ctx context.Context, book *domain.Book) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE books SET title = ?, author = ?, genre = ?, reading_status = ?
		WHERE id = ?`,
		book.Title, book.Author, book.Genre, string(book.Status), book.ID)
	if err != nil {
		return fmt.Errorf("update book: %w", err)
	}
	return requireAffected(res, store.ErrBookNotFound)
}

// DeleteBook removes a book.
func (s *Store) DeleteBook(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM books WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete book: %w", err)
	}
	return requireAffected(res, store.ErrBookNotFound)
}

// ListBooks returns the owner's books in insertion order.
func (s *Store) ListBooks(ctx context.Context, ownerID int64) ([]*domain.Book, error) {
	return s.queryBooks(ctx,
		`SELECT `+bookColumns+` FROM books WHERE user_id = ? ORDER BY id`, ownerID)
}

// ListNonAdminBooks returns every book owned by a non-admin in insertion order.
func (s *Store) ListNonAdminBooks(ctx context.Context) ([]*domain.Book, error) {
	return s.queryBooks(ctx, `
		SELECT b.id, b.user_id, b.title, b.author, b.genre, b.reading_status, b.created_at
		FROM books b JOIN users u ON u.id = b.user_id
		WHERE u.is_admin = 0
		ORDER BY b.id`)
}

// ListNonAdminBooksByTitle is ListNonAdminBooks sorted by title.
func (s *Store) ListNonAdminBooksByTitle(ctx context.Context) ([]*domain.Book, error) {
	return s.queryBooks(ctx, `
		SELECT b.id, b.user_id, b.title, b.author, b.genre, b.reading_status, b.created_at
		FROM books b JOIN users u ON u.id = b.user_id
		WHERE u.is_admin = 0
		ORDER BY b.title COLLATE NOCASE, b.id`)
}

func (s *Store) queryBooks(ctx context.Context, query string, args ...any) ([]*domain.Book, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list books: %w", err)
	}
	defer rows.Close()

	var books []*domain.Book
	for rows.Next() {
		b, err := scanBook(rows)
		if err != nil {
			return nil, err
		}
		books = append(books, b)
	}
	return books, rows.Err()
}
