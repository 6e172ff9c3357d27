package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/listenupapp/librarian/internal/domain"
)

func (s *Server) registerHomeRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "getHome",
		Method:      http.MethodGet,
		Path:        "/api/v1/home",
		Summary:     "Home",
		Description: "Returns the admin dashboard for admins and the caller's own books for everyone else",
		Tags:        []string{"Home"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleHome)
}

// DashboardResponse summarizes the non-admin library for the admin home.
type DashboardResponse struct {
	TotalUsers int              `json:"total_users" doc:"Non-admin users"`
	TotalBooks int              `json:"total_books" doc:"Books across non-admin users"`
	TopUser    *domain.TopUser  `json:"top_user,omitempty" doc:"Reader with the most books"`
	TopGenre   *domain.TopGenre `json:"top_genre,omitempty" doc:"Most common genre"`
}

// HomeResponse is the landing view. Admins get Dashboard, users get Books.
type HomeResponse struct {
	User      UserResponse       `json:"user" doc:"Authenticated user"`
	Dashboard *DashboardResponse `json:"dashboard,omitempty" doc:"Admin dashboard"`
	Books     []BookResponse     `json:"books,omitempty" doc:"The caller's books"`
}

// HomeInput contains parameters for the home view.
type HomeInput struct {
	Authorization string `header:"Authorization"`
}

// HomeOutput wraps the home response for Huma.
type HomeOutput struct {
	Body HomeResponse
}

func (s *Server) handleHome(ctx context.Context, input *HomeInput) (*HomeOutput, error) {
	caller, err := s.authenticateRequest(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	user, err := s.services.Auth.CurrentUser(ctx, caller.UserID)
	if err != nil {
		return nil, err
	}
	resp := HomeResponse{User: mapUserResponse(user)}

	if caller.IsAdmin {
		d, err := s.services.Admin.Dashboard(ctx)
		if err != nil {
			return nil, err
		}
		resp.Dashboard = &DashboardResponse{
			TotalUsers: d.TotalUsers,
			TotalBooks: d.TotalBooks,
			TopUser:    d.TopUser,
			TopGenre:   d.TopGenre,
		}
		return &HomeOutput{Body: resp}, nil
	}

	books, err := s.services.Book.ListBooks(ctx, caller)
	if err != nil {
		return nil, err
	}
	resp.Books = mapBookResponses(books)
	return &HomeOutput{Body: resp}, nil
}
