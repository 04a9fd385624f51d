package dto

import (
	"time"

	"github.com/contactdock/contactdock-server/internal/domain"
)

// User is the API representation of the authenticated user.
// The identity-provider subject id is internal and never exposed.
type User struct {
	ID          string         `json:"id"`
	Email       string         `json:"email"`
	DisplayName string         `json:"displayName,omitempty"`
	AvatarURL   string         `json:"avatarUrl,omitempty"`
	Provider    string         `json:"provider,omitempty"`
	Preferences map[string]any `json:"preferences,omitempty"`
	CreatedAt   time.Time      `json:"createdAt"`
	UpdatedAt   time.Time      `json:"updatedAt"`
}

// FromUser converts a domain user.
func FromUser(u *domain.User) User {
	return User{
		ID:          u.ID,
		Email:       u.Email,
		DisplayName: u.DisplayName,
		AvatarURL:   u.AvatarURL,
		Provider:    u.Provider,
		Preferences: u.Preferences,
		CreatedAt:   u.CreatedAt,
		UpdatedAt:   u.UpdatedAt,
	}
}
