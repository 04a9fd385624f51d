package domain

// DefaultTagColor is applied when a tag is created without a color.
const DefaultTagColor = "#3B82F6"

// Tag represents a named, colored label a user applies to contacts.
// Names are unique per owner.
type Tag struct {
	Record
	OwnerID string `json:"owner_id"`
	Name    string `json:"name"`
	Color   string `json:"color"`
}

// TagRef is the embedded form of a tag inside contact responses.
type TagRef struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Color string `json:"color"`
}

// Ref returns the embedded representation of this tag.
func (t *Tag) Ref() TagRef {
	return TagRef{ID: t.ID, Name: t.Name, Color: t.Color}
}
