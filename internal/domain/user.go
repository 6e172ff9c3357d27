package domain

import "time"

// User is an account in the catalog.
// Admins can look across every non-admin library but are never a target themselves.
type User struct {
	ID           int64     `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	IsAdmin      bool      `json:"is_admin"`
	CreatedAt    time.Time `json:"created_at"`
}

// UserWithBookCount pairs a user with the size of their library.
type UserWithBookCount struct {
	User
	BookCount int `json:"book_count"`
}

// Caller is the authenticated identity behind a single request.
type Caller struct {
	UserID  int64
	Name    string
	IsAdmin bool
}

// CallerFor builds the request identity for a user.
func CallerFor(u *User) Caller {
	return Caller{UserID: u.ID, Name: u.Name, IsAdmin: u.IsAdmin}
}
