// Package dto defines API response shapes.
//
// Domain entities are the storage representation; these types are what
// goes over the wire. Field names follow the client contract (camelCase)
// and tag references are resolved to embedded {id, name, color} objects
// rather than raw ids.
package dto

import (
	"time"

	"github.com/contactdock/contactdock-server/internal/domain"
)

// TagRef is a resolved tag reference embedded in contact responses.
type TagRef struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Color string `json:"color"`
}

// Contact is the API representation of a contact.
type Contact struct {
	ID              string     `json:"id"`
	Name            string     `json:"name"`
	Email           string     `json:"email"`
	Phone           string     `json:"phone,omitempty"`
	Company         string     `json:"company,omitempty"`
	Notes           string     `json:"notes,omitempty"`
	Tags            []TagRef   `json:"tags"`
	LastInteraction *time.Time `json:"lastInteraction,omitempty"`
	CreatedAt       time.Time  `json:"createdAt"`
	UpdatedAt       time.Time  `json:"updatedAt"`
}

// Pagination describes the page window of a list response.
type Pagination struct {
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	Total      int `json:"total"`
	TotalPages int `json:"totalPages"`
}

// ContactPage is a page of contacts plus pagination metadata.
type ContactPage struct {
	Data       []Contact  `json:"data"`
	Pagination Pagination `json:"pagination"`
}

// FromTagRef converts a domain tag reference.
func FromTagRef(r domain.TagRef) TagRef {
	return TagRef{ID: r.ID, Name: r.Name, Color: r.Color}
}

// FromContact converts a domain contact with its resolved tags.
func FromContact(c *domain.Contact, tags []domain.TagRef) Contact {
	refs := make([]TagRef, 0, len(tags))
	for _, t := range tags {
		refs = append(refs, FromTagRef(t))
	}
	return Contact{
		ID:              c.ID,
		Name:            c.Name,
		Email:           c.Email,
		Phone:           c.Phone,
		Company:         c.Company,
		Notes:           c.Notes,
		Tags:            refs,
		LastInteraction: c.LastInteraction,
		CreatedAt:       c.CreatedAt,
		UpdatedAt:       c.UpdatedAt,
	}
}
