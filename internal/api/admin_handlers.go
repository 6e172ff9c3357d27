package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/listenupapp/librarian/internal/domain"
	"github.com/listenupapp/librarian/internal/service"
)

func (s *Server) registerAdminRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "adminListUsers",
		Method:      http.MethodGet,
		Path:        "/api/v1/admin/users",
		Summary:     "List users",
		Description: "Returns non-admin users with their book counts (admin only)",
		Tags:        []string{"Admin"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleAdminListUsers)

	huma.Register(s.api, huma.Operation{
		OperationID: "adminUpdateUser",
		Method:      http.MethodPatch,
		Path:        "/api/v1/admin/users/{id}",
		Summary:     "Update user",
		Description: "Edits a non-admin user's name, email or password (admin only)",
		Tags:        []string{"Admin"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleAdminUpdateUser)

	huma.Register(s.api, huma.Operation{
		OperationID: "adminDeleteUser",
		Method:      http.MethodDelete,
		Path:        "/api/v1/admin/users/{id}",
		Summary:     "Delete user",
		Description: "Deletes a non-admin user and their books (admin only)",
		Tags:        []string{"Admin"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleAdminDeleteUser)

	huma.Register(s.api, huma.Operation{
		OperationID: "adminGetUserBooks",
		Method:      http.MethodGet,
		Path:        "/api/v1/admin/users/{id}/books",
		Summary:     "Get user books",
		Description: "Returns a non-admin user's library (admin only)",
		Tags:        []string{"Admin"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleAdminGetUserBooks)

	huma.Register(s.api, huma.Operation{
		OperationID: "adminAddUserBook",
		Method:      http.MethodPost,
		Path:        "/api/v1/admin/users/{id}/books",
		Summary:     "Add user book",
		Description: "Adds a book to a non-admin user's library (admin only)",
		Tags:        []string{"Admin"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleAdminAddUserBook)

	huma.Register(s.api, huma.Operation{
		OperationID: "adminListBooks",
		Method:      http.MethodGet,
		Path:        "/api/v1/admin/books",
		Summary:     "List all books",
		Description: "Returns every non-admin book sorted by title (admin only)",
		Tags:        []string{"Admin"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleAdminListBooks)

	huma.Register(s.api, huma.Operation{
		OperationID: "adminInsights",
		Method:      http.MethodGet,
		Path:        "/api/v1/admin/insights",
		Summary:     "Reading insights",
		Description: "Returns a metrics snapshot and summary for one user, or for the whole library when user_id is omitted (admin only)",
		Tags:        []string{"Admin"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleAdminInsights)
}

// === DTOs ===

// AdminUserResponse is a non-admin user with their book count.
type AdminUserResponse struct {
	UserResponse
	BookCount int `json:"book_count" doc:"Books in the user's library"`
}

// AdminListUsersInput contains parameters for listing users.
type AdminListUsersInput struct {
	Authorization string `header:"Authorization"`
}

// AdminListUsersResponse contains the users.
type AdminListUsersResponse struct {
	Users []AdminUserResponse `json:"users" doc:"Non-admin users"`
}

// AdminListUsersOutput wraps the list users response for Huma.
type AdminListUsersOutput struct {
	Body AdminListUsersResponse
}

// AdminUpdateUserRequest is the request body for editing a user.
type AdminUpdateUserRequest struct {
	Name     *string `json:"name,omitempty" doc:"Display name"`
	Email    *string `json:"email,omitempty" doc:"Email address"`
	Password *string `json:"password,omitempty" doc:"New password; empty keeps the current one"`
}

// AdminUpdateUserInput wraps the edit user request for Huma.
type AdminUpdateUserInput struct {
	Authorization string `header:"Authorization"`
	ID            int64  `path:"id" doc:"User ID"`
	Body          AdminUpdateUserRequest
}

// AdminUserInput addresses a single user.
type AdminUserInput struct {
	Authorization string `header:"Authorization"`
	ID            int64  `path:"id" doc:"User ID"`
}

// UserBooksResponse is a user with their books.
type UserBooksResponse struct {
	User  UserResponse   `json:"user" doc:"The user"`
	Books []BookResponse `json:"books" doc:"The user's books"`
}

// UserBooksOutput wraps the user books response for Huma.
type UserBooksOutput struct {
	Body UserBooksResponse
}

// AdminAddUserBookInput wraps the add book request for Huma.
type AdminAddUserBookInput struct {
	Authorization string `header:"Authorization"`
	ID            int64  `path:"id" doc:"User ID"`
	Body          CreateBookRequest
}

// AdminListBooksInput contains parameters for listing all books.
type AdminListBooksInput struct {
	Authorization string `header:"Authorization"`
}

// AdminInsightsInput selects the insights scope.
type AdminInsightsInput struct {
	Authorization string `header:"Authorization"`
	UserID        int64  `query:"user_id" doc:"Limit to one user; omit for the whole library"`
}

// InsightsResponse is a metrics snapshot with its summary.
type InsightsResponse struct {
	Scope   string                 `json:"scope" doc:"user or library"`
	User    *domain.UserMetrics    `json:"user_metrics,omitempty" doc:"Single user snapshot"`
	Library *domain.LibraryMetrics `json:"library_metrics,omitempty" doc:"Library-wide snapshot"`
	Summary string                 `json:"summary" doc:"Plain-text summary"`
	Users   []UserResponse         `json:"users" doc:"Users selectable for insights"`
}

// InsightsOutput wraps the insights response for Huma.
type InsightsOutput struct {
	Body InsightsResponse
}

// === Handlers ===

func (s *Server) handleAdminListUsers(ctx context.Context, input *AdminListUsersInput) (*AdminListUsersOutput, error) {
	if _, err := s.authenticateAndRequireAdmin(ctx, input.Authorization); err != nil {
		return nil, err
	}

	users, err := s.services.Admin.ListUsers(ctx)
	if err != nil {
		return nil, err
	}

	resp := make([]AdminUserResponse, len(users))
	for i, u := range users {
		resp[i] = AdminUserResponse{
			UserResponse: mapUserResponse(&u.User),
			BookCount:    u.BookCount,
		}
	}
	return &AdminListUsersOutput{Body: AdminListUsersResponse{Users: resp}}, nil
}

func (s *Server) handleAdminUpdateUser(ctx context.Context, input *AdminUpdateUserInput) (*UserOutput, error) {
	admin, err := s.authenticateAndRequireAdmin(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	user, err := s.services.Admin.UpdateUser(ctx, admin.UserID, input.ID, service.UpdateUserRequest{
		Name:     input.Body.Name,
		Email:    input.Body.Email,
		Password: input.Body.Password,
	})
	if err != nil {
		return nil, err
	}

	return &UserOutput{Body: mapUserResponse(user)}, nil
}

func (s *Server) handleAdminDeleteUser(ctx context.Context, input *AdminUserInput) (*MessageOutput, error) {
	admin, err := s.authenticateAndRequireAdmin(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	if err := s.services.Admin.DeleteUser(ctx, admin.UserID, input.ID); err != nil {
		return nil, err
	}

	return &MessageOutput{Body: MessageResponse{Message: "User deleted"}}, nil
}

func (s *Server) handleAdminGetUserBooks(ctx context.Context, input *AdminUserInput) (*UserBooksOutput, error) {
	if _, err := s.authenticateAndRequireAdmin(ctx, input.Authorization); err != nil {
		return nil, err
	}

	ub, err := s.services.Admin.UserBooks(ctx, input.ID)
	if err != nil {
		return nil, err
	}

	return &UserBooksOutput{Body: UserBooksResponse{
		User:  mapUserResponse(ub.User),
		Books: mapBookResponses(ub.Books),
	}}, nil
}

func (s *Server) handleAdminAddUserBook(ctx context.Context, input *AdminAddUserBookInput) (*BookOutput, error) {
	if _, err := s.authenticateAndRequireAdmin(ctx, input.Authorization); err != nil {
		return nil, err
	}

	book, err := s.services.Admin.AddBook(ctx, input.ID, toCreateBookRequest(input.Body))
	if err != nil {
		return nil, err
	}

	return &BookOutput{Body: mapBookResponse(book)}, nil
}

func (s *Server) handleAdminListBooks(ctx context.Context, input *AdminListBooksInput) (*ListBooksOutput, error) {
	if _, err := s.authenticateAndRequireAdmin(ctx, input.Authorization); err != nil {
		return nil, err
	}

	books, err := s.services.Admin.AllBooks(ctx)
	if err != nil {
		return nil, err
	}

	return &ListBooksOutput{Body: ListBooksResponse{Books: mapBookResponses(books)}}, nil
}

func (s *Server) handleAdminInsights(ctx context.Context, input *AdminInsightsInput) (*InsightsOutput, error) {
	if _, err := s.authenticateAndRequireAdmin(ctx, input.Authorization); err != nil {
		return nil, err
	}

	var userID *int64
	if input.UserID > 0 {
		userID = &input.UserID
	}

	report, err := s.services.Admin.Insights(ctx, userID)
	if err != nil {
		return nil, err
	}

	resp := InsightsResponse{
		Scope:   domain.ScopeLibrary,
		User:    report.User,
		Library: report.Library,
		Summary: report.Summary,
		Users:   make([]UserResponse, len(report.Users)),
	}
	if report.User != nil {
		resp.Scope = domain.ScopeUser
	}
	for i, u := range report.Users {
		resp.Users[i] = mapUserResponse(u)
	}
	return &InsightsOutput{Body: resp}, nil
}
