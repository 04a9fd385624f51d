package dto

import (
	"time"

	"github.com/contactdock/contactdock-server/internal/domain"
)

// Tag is the API representation of a tag.
type Tag struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Color     string    `json:"color"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// FromTag converts a domain tag.
func FromTag(t *domain.Tag) Tag {
	return Tag{
		ID:        t.ID,
		Name:      t.Name,
		Color:     t.Color,
		CreatedAt: t.CreatedAt,
		UpdatedAt: t.UpdatedAt,
	}
}

// FromTags converts a slice of domain tags.
func FromTags(tags []*domain.Tag) []Tag {
	out := make([]Tag, 0, len(tags))
	for _, t := range tags {
		out = append(out, FromTag(t))
	}
	return out
}
