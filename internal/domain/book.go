// Package domain contains the core entities of the Librarian book catalog.
package domain

import (
	"strings"
	"time"
)

// ReadingStatus is where the owner is with a book.
type ReadingStatus string

const (
	// StatusReading marks a book that is currently being read.
	StatusReading ReadingStatus = "Reading"
	// StatusCompleted marks a finished book.
	StatusCompleted ReadingStatus = "Completed"
)

// Statuses lists every valid status in display order.
var Statuses = []ReadingStatus{StatusReading, StatusCompleted}

// ParseReadingStatus matches s against the known statuses ignoring case.
func ParseReadingStatus(s string) (ReadingStatus, bool) {
	s = strings.TrimSpace(s)
	for _, st := range Statuses {
		if strings.EqualFold(s, string(st)) {
			return st, true
		}
	}
	return "", false
}

// Equal reports whether s names the same status, ignoring case.
func (s ReadingStatus) Equal(other string) bool {
	return strings.EqualFold(strings.TrimSpace(other), string(s))
}

// Book is a single entry in a user's library.
type Book struct {
	ID        int64         `json:"id"`
	OwnerID   int64         `json:"owner_id"`
	Title     string        `json:"title"`
	Author    string        `json:"author"`
	Genre     string        `json:"genre"`
	Status    ReadingStatus `json:"reading_status"`
	CreatedAt time.Time     `json:"created_at"`
}

// BookView is the read-only projection handed to prompts.
type BookView struct {
	Title  string `json:"title"`
	Author string `json:"author"`
	Genre  string `json:"genre"`
	Status string `json:"reading_status,omitempty"`
}

// Views projects books for prompting. Status is omitted when withStatus is false.
func Views(books []*Book, withStatus bool) []BookView {
	out := make([]BookView, 0, len(books))
	for _, b := range books {
		v := BookView{Title: b.Title, Author: b.Author, Genre: b.Genre}
		if withStatus {
			v.Status = string(b.Status)
		}
		out = append(out, v)
	}
	return out
}
