package api

import (
	"context"
	"strings"

	"github.com/danielgtaylor/huma/v2"

	"github.com/listenupapp/librarian/internal/domain"
	domainerrors "github.com/listenupapp/librarian/internal/errors"
)

// authenticateRequest validates the Bearer token and returns the caller.
func (s *Server) authenticateRequest(ctx context.Context, authHeader string) (domain.Caller, error) {
	if authHeader == "" {
		return domain.Caller{}, huma.Error401Unauthorized("Missing authorization header")
	}

	scheme, token, ok := strings.Cut(authHeader, " ")
	if !ok || scheme != "Bearer" || token == "" {
		return domain.Caller{}, huma.Error401Unauthorized("Invalid authorization header format")
	}

	user, err := s.services.Auth.Authenticate(ctx, token)
	if err != nil {
		return domain.Caller{}, huma.Error401Unauthorized("Invalid or expired token")
	}

	return domain.CallerFor(user), nil
}

// authenticateAndRequireAdmin validates the token and requires the admin role.
func (s *Server) authenticateAndRequireAdmin(ctx context.Context, authHeader string) (domain.Caller, error) {
	caller, err := s.authenticateRequest(ctx, authHeader)
	if err != nil {
		return domain.Caller{}, err
	}
	if !caller.IsAdmin {
		return domain.Caller{}, domainerrors.Forbidden("Admin access required")
	}
	return caller, nil
}
