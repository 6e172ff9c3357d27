// Package main seeds a catalog with demo accounts and books.
//
// Accounts that already exist are left alone, so the tool can be run
// repeatedly.
//
// Usage:
//
//	go run ./cmd/seed --db ~/Librarian/librarian.db
//	go run ./cmd/seed --db ./dev.db --admin-email admin@example.com
package main

import (
	"context"
	"crypto/rand"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/listenupapp/librarian/internal/auth"
	"github.com/listenupapp/librarian/internal/domain"
	domainerrors "github.com/listenupapp/librarian/internal/errors"
	"github.com/listenupapp/librarian/internal/logger"
	"github.com/listenupapp/librarian/internal/service"
	"github.com/listenupapp/librarian/internal/store/sqlite"
)

var (
	dbPath     = flag.String("db", "", "Path to the SQLite database (default ~/Librarian/librarian.db)")
	adminEmail = flag.String("admin-email", "admin@example.com", "Email that receives the admin role")
	password   = flag.String("password", "password123", "Password for every seeded account")
)

type seedBook struct {
	title, author, genre, status string
}

type seedUser struct {
	name, email string
	books       []seedBook
}

var users = []seedUser{
	{name: "Admin", email: "admin@example.com"},
	{
		name:  "Alice Reader",
		email: "alice@example.com",
		books: []seedBook{
			{"dune", "frank herbert", "science fiction", "Completed"},
			{"the left hand of darkness", "ursula k. le guin", "science fiction", "Reading"},
			{"project hail mary", "andy weir", "science fiction", "Completed"},
			{"pride and prejudice", "jane austen", "romance", "Completed"},
		},
	},
	{
		name:  "Bob Pages",
		email: "bob@example.com",
		books: []seedBook{
			{"the hobbit", "j.r.r. tolkien", "fantasy", "Completed"},
			{"mistborn", "brandon sanderson", "fantasy", "Reading"},
			{"gone girl", "gillian flynn", "thriller", "Completed"},
		},
	},
	{
		name:  "Carol Stacks",
		email: "carol@example.com",
		books: []seedBook{
			{"sapiens", "yuval noah harari", "history", "Reading"},
		},
	},
}

func main() {
	flag.Parse()

	path := *dbPath
	if path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			log.Fatalf("Failed to resolve home directory: %v", err)
		}
		path = filepath.Join(home, "Librarian", "librarian.db")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		log.Fatalf("Failed to create data directory: %v", err)
	}

	fmt.Printf("Opening database at: %s\n", path)

	slogger := logger.New(logger.Config{Format: logger.FormatPretty})

	s, err := sqlite.Open(path, slogger)
	if err != nil {
		log.Fatalf("Failed to open store: %v", err)
	}
	defer s.Close()

	// Seeded tokens are never handed out, so a throwaway key is enough.
	key := make([]byte, 32)
	if _, err := rand.Read(key); err != nil {
		log.Fatalf("Failed to generate key: %v", err)
	}
	tokens, err := auth.NewTokenService(key, time.Hour)
	if err != nil {
		log.Fatalf("Failed to create token service: %v", err)
	}

	authService := service.NewAuthService(s, tokens, *adminEmail, slogger)
	bookService := service.NewBookService(s, slogger)

	ctx := context.Background()
	var accounts, created int
	for _, u := range users {
		user, err := signUp(ctx, authService, u)
		if errors.Is(err, domainerrors.ErrAlreadyExists) {
			fmt.Printf("  %s already exists, skipping\n", u.email)
			continue
		}
		if err != nil {
			log.Printf("Skipping %s: %v", u.email, err)
			continue
		}
		caller := domain.CallerFor(user)
		for _, b := range u.books {
			_, err := bookService.CreateBook(ctx, caller, service.CreateBookRequest{
				Title:  b.title,
				Author: b.author,
				Genre:  b.genre,
				Status: b.status,
			})
			if err != nil {
				log.Printf("Failed to add %q for %s: %v", b.title, u.email, err)
				continue
			}
			created++
		}
		accounts++
		fmt.Printf("  %s (%s): %d books\n", user.Name, user.Email, len(u.books))
	}

	fmt.Printf("\nSeeding complete: %d accounts, %d books\n", accounts, created)
	fmt.Printf("Sign in with any seeded email and password %q\n", *password)
}

func signUp(ctx context.Context, svc *service.AuthService, u seedUser) (*domain.User, error) {
	resp, err := svc.Register(ctx, service.RegisterRequest{
		Name:     u.name,
		Email:    u.email,
		Password: *password,
	})
	if err != nil {
		return nil, err
	}
	return resp.User, nil
}
