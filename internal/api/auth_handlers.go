package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/contactdock/contactdock-server/internal/dto"
	"github.com/contactdock/contactdock-server/internal/service"
)

func (s *Server) registerAuthRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "syncUser",
		Method:      http.MethodPost,
		Path:        "/api/v1/auth/sync",
		Summary:     "Sync identity",
		Description: "Verifies the identity-provider token and upserts the local user record",
		Tags:        []string{"Auth"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleSyncUser)

	huma.Register(s.api, huma.Operation{
		OperationID: "getCurrentUser",
		Method:      http.MethodGet,
		Path:        "/api/v1/auth/me",
		Summary:     "Get current user",
		Description: "Returns the authenticated user's profile",
		Tags:        []string{"Auth"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleGetCurrentUser)

	huma.Register(s.api, huma.Operation{
		OperationID: "updateProfile",
		Method:      http.MethodPut,
		Path:        "/api/v1/auth/profile",
		Summary:     "Update profile",
		Description: "Applies a partial update to the authenticated user's profile",
		Tags:        []string{"Auth"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleUpdateProfile)
}

// === DTOs ===

// SyncUserInput contains parameters for the identity sync endpoint.
type SyncUserInput struct {
	Authorization string `header:"Authorization"`
}

// UserOutput wraps a user response for Huma.
type UserOutput struct {
	Body dto.User
}

// GetCurrentUserInput contains parameters for fetching the current user.
type GetCurrentUserInput struct {
	Authorization string `header:"Authorization"`
}

// UpdateProfileRequest is the request body for updating the profile.
type UpdateProfileRequest struct {
	DisplayName *string        `json:"displayName,omitempty" validate:"omitempty,max=100" doc:"Display name"`
	AvatarURL   *string        `json:"avatarUrl,omitempty" validate:"omitempty,max=500" doc:"Avatar image URL"`
	Preferences map[string]any `json:"preferences,omitempty" doc:"Client preference blob"`
}

// UpdateProfileInput wraps the profile update request for Huma.
type UpdateProfileInput struct {
	Authorization string `header:"Authorization"`
	Body          UpdateProfileRequest
}

// MessageResponse contains a simple message.
type MessageResponse struct {
	Message string `json:"message" doc:"Status message"`
}

// MessageOutput wraps a message response for Huma.
type MessageOutput struct {
	Body MessageResponse
}

// === Handlers ===

func (s *Server) handleSyncUser(ctx context.Context, input *SyncUserInput) (*UserOutput, error) {
	token, err := bearerToken(input.Authorization)
	if err != nil {
		return nil, err
	}

	user, err := s.services.Auth.Sync(ctx, token)
	if err != nil {
		return nil, err
	}

	return &UserOutput{Body: dto.FromUser(user)}, nil
}

func (s *Server) handleGetCurrentUser(ctx context.Context, input *GetCurrentUserInput) (*UserOutput, error) {
	userID, err := s.authenticateRequest(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	user, err := s.services.Auth.Me(ctx, userID)
	if err != nil {
		return nil, err
	}

	return &UserOutput{Body: dto.FromUser(user)}, nil
}

func (s *Server) handleUpdateProfile(ctx context.Context, input *UpdateProfileInput) (*UserOutput, error) {
	userID, err := s.authenticateRequest(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	if err := s.validator.Validate(input.Body); err != nil {
		return nil, err
	}

	user, err := s.services.Auth.UpdateProfile(ctx, userID, service.ProfileUpdate{
		DisplayName: input.Body.DisplayName,
		AvatarURL:   input.Body.AvatarURL,
		Preferences: input.Body.Preferences,
	})
	if err != nil {
		return nil, err
	}

	return &UserOutput{Body: dto.FromUser(user)}, nil
}
