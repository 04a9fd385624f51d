package domain

// User represents a locally known account, mapped from the identity provider.
// Users are created on first successful token sync and never deleted by the
// application.
type User struct {
	Record

	// SubjectID is the identity provider's stable subject identifier.
	// Empty for placeholder users awaiting their first authenticated sync.
	SubjectID string `json:"subject_id,omitempty"`

	Email       string         `json:"email"`
	DisplayName string         `json:"display_name,omitempty"`
	AvatarURL   string         `json:"avatar_url,omitempty"`
	Provider    string         `json:"provider,omitempty"`
	Preferences map[string]any `json:"preferences,omitempty"`
}

// IsPlaceholder returns true if this user has no linked identity-provider
// subject yet.
func (u *User) IsPlaceholder() bool {
	return u.SubjectID == ""
}

// Name returns the best available name to display for the user.
func (u *User) Name() string {
	if u.DisplayName != "" {
		return u.DisplayName
	}
	return u.Email
}
