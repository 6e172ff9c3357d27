package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/listenupapp/librarian/internal/domain"
	"github.com/listenupapp/librarian/internal/store"
)

// userColumns is the ordered list of columns selected in user queries.
// Must match the scan order in scanUser.
const userColumns = `id, name, email, password_hash, is_admin, created_at`

// scanUser scans a sql.Row (or sql.Rows via its Scan method) into a domain.User.
func scanUser(scanner interface{ Scan(dest ...any) error }) (*domain.User, error) {
	var (
		u         domain.User
		isAdmin   int
		createdAt string
	)
	if err := scanner.Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &isAdmin, &createdAt); err != nil {
		return nil, err
	}
	u.IsAdmin = isAdmin != 0

	var err error
	u.CreatedAt, err = parseTime(createdAt)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// CreateUser inserts a new user and sets its ID.
// Returns store.ErrAlreadyExists if the email is taken.
func (s *Store) CreateUser(ctx context.Context, user *domain.User) error {
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now()
	}

	res, err := s.db.ExecContext(ctx, `
		INSERT INTO users (name, email, password_hash, is_admin, created_at)
		VALUES (?, ?, ?, ?, ?)`,
		user.Name,
		strings.TrimSpace(user.Email),
		user.PasswordHash,
		boolToInt(user.IsAdmin),
		formatTime(user.CreatedAt),
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return store.ErrAlreadyExists.WithMessage("email already registered")
		}
		return fmt.Errorf("insert user: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("user id: %w", err)
	}
	user.ID = id
	return nil
}

// GetUser retrieves a user by ID.
// Returns store.ErrUserNotFound if the user does not exist.
func (s *Store) GetUser(ctx context.Context, id int64) (*domain.User, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = ?`, id)
	return oneUser(row)
}

// GetUserByEmail retrieves a user by email, ignoring case.
func (s *Store) GetUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE email = ? COLLATE NOCASE`, strings.TrimSpace(email))
	return oneUser(row)
}

// FindUserByName returns the first non-admin whose name matches exactly, ignoring case.
func (s *Store) FindUserByName(ctx context.Context, name string) (*domain.User, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users
		WHERE name = ? COLLATE NOCASE AND is_admin = 0
		ORDER BY id LIMIT 1`, strings.TrimSpace(name))
	return oneUser(row)
}

func oneUser(row *sql.Row) (*domain.User, error) {
	u, err := scanUser(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return u, nil
}

// UpdateUser saves name and email. Passwords and roles are not editable here.
func (s *Store) UpdateUser(ctx context.Context, user *domain.User) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE users SET name = ?, email = ? WHERE id = ?`,
		user.Name, strings.TrimSpace(user.Email), user.ID)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return store.ErrAlreadyExists.WithMessage("email already registered")
		}
		return fmt.Errorf("update user: %w", err)
	}
	return requireAffected(res, store.ErrUserNotFound)
}

// SetUserPassword replaces the stored password hash.
func (s *Store) SetUserPassword(ctx context.Context, id int64, passwordHash string) error {
	res, err := s.db.ExecContext(ctx, `UPDATE users SET password_hash = ? WHERE id = ?`, passwordHash, id)
	if err != nil {
		return fmt.Errorf("set user password: %w", err)
	}
	return requireAffected(res, store.ErrUserNotFound)
}

// DeleteUser removes a user and, by cascade, their books.
func (s *Store) DeleteUser(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM users WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	return requireAffected(res, store.ErrUserNotFound)
}

// ListNonAdminUsers returns every non-admin user ordered by ID.
func (s *Store) ListNonAdminUsers(ctx context.Context) ([]*domain.User, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE is_admin = 0 ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	var users []*domain.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

// ListNonAdminUsersWithBookCounts returns non-admin users with the size of
// their library, ordered by name.
func (s *Store) ListNonAdminUsersWithBookCounts(ctx context.Context) ([]*domain.UserWithBookCount, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT u.id, u.name, u.email, u.password_hash, u.is_admin, u.created_at, COUNT(b.id)
		FROM users u
		LEFT JOIN books b ON b.user_id = u.id
		WHERE u.is_admin = 0
		GROUP BY u.id
		ORDER BY u.name COLLATE NOCASE, u.id`)
	if err != nil {
		return nil, fmt.Errorf("list users with counts: %w", err)
	}
	defer rows.Close()

	var out []*domain.UserWithBookCount
	for rows.Next() {
		var (
			uc        domain.UserWithBookCount
			isAdmin   int
			createdAt string
		)
		if err := rows.Scan(&uc.ID, &uc.Name, &uc.Email, &uc.PasswordHash, &isAdmin, &createdAt, &uc.BookCount); err != nil {
			return nil, err
		}
		uc.IsAdmin = isAdmin != 0
		if uc.CreatedAt, err = parseTime(createdAt); err != nil {
			return nil, err
		}
		out = append(out, &uc)
	}
	return out, rows.Err()
}

// CountNonAdminUsers returns the number of non-admin accounts.
func (s *Store) CountNonAdminUsers(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users WHERE is_admin = 0`).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count users: %w", err)
	}
	return n, nil
}

// requireAffected maps a zero-row write to notFound.
func requireAffected(res sql.Result, notFound error) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return notFound
	}
	return nil
}
