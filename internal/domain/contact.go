package domain

import (
	"strings"
	"time"
)

// Contact represents a person in a user's address book.
// The (Email, OwnerID) pair is unique; Email is stored lower-cased.
type Contact struct {
	Record
	OwnerID string `json:"owner_id"`
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone,omitempty"`
	Company string `json:"company,omitempty"`
	Notes   string `json:"notes,omitempty"`

	// TagIDs references tags owned by the same user, in assignment order.
	TagIDs []string `json:"tag_ids,omitempty"`

	LastInteraction *time.Time `json:"last_interaction,omitempty"`
}

// HasAnyTag returns true if the contact carries at least one of the given
// tag IDs.
func (c *Contact) HasAnyTag(tagIDs []string) bool {
	for _, want := range tagIDs {
		for _, have := range c.TagIDs {
			if have == want {
				return true
			}
		}
	}
	return false
}

// MatchesSearch reports whether the contact matches a case-insensitive
// substring search over name, email, and company.
func (c *Contact) MatchesSearch(text string) bool {
	if text == "" {
		return true
	}
	needle := strings.ToLower(text)
	return strings.Contains(strings.ToLower(c.Name), needle) ||
		strings.Contains(strings.ToLower(c.Email), needle) ||
		strings.Contains(strings.ToLower(c.Company), needle)
}
