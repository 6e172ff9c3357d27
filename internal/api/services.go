package api

import (
	"github.com/listenupapp/librarian/internal/service"
)

// Services groups all business logic services used by the API server.
// This reduces the parameter count for NewServer and improves testability.
type Services struct {
	Auth  *service.AuthService
	Book  *service.BookService
	Admin *service.AdminService
	Chat  *service.ChatService
}
