package api

import (
	"context"
	"strings"

	"github.com/danielgtaylor/huma/v2"
)

// authenticateRequest validates the Authorization header and returns the
// local user id. The owner of every store operation comes from here, never
// from client-supplied parameters.
func (s *Server) authenticateRequest(ctx context.Context, authHeader string) (string, error) {
	token, err := bearerToken(authHeader)
	if err != nil {
		return "", err
	}

	user, err := s.services.Auth.Authenticate(ctx, token)
	if err != nil {
		return "", err
	}
	return user.ID, nil
}

// bearerToken extracts the token from a Bearer authorization header.
func bearerToken(authHeader string) (string, error) {
	if authHeader == "" {
		return "", huma.Error401Unauthorized("Missing authorization header")
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" {
		return "", huma.Error401Unauthorized("Invalid authorization header format")
	}
	return parts[1], nil
}
