// Package search provides contact search over a Bleve index.
// It answers the list endpoint's substring search across name, email, and
// company, always scoped to a single owner.
package search

import (
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/contactdock/contactdock-server/internal/domain"
)

// ContactDocument is the indexed form of a contact.
//
// All text fields are stored pre-lowercased and NFC-normalized so the
// keyword-analyzed index supports case-insensitive substring matching via
// regexp queries without a custom analyzer.
type ContactDocument struct {
	ID      string `json:"id"`
	OwnerID string `json:"owner_id"`
	Name    string `json:"name"`
	Email   string `json:"email"`
	Company string `json:"company,omitempty"`

	CreatedAt int64 `json:"created_at"` // Unix millis
}

// ToMap converts the document to a map with lowercase field names.
// Bleve by default uses Go struct field names (capitalized), but our
// mapping uses lowercase names, so we convert explicitly.
func (d *ContactDocument) ToMap() map[string]interface{} {
	m := map[string]interface{}{
		"id":         d.ID,
		"owner_id":   d.OwnerID,
		"name":       d.Name,
		"email":      d.Email,
		"created_at": d.CreatedAt,
	}
	if d.Company != "" {
		m["company"] = d.Company
	}
	return m
}

// normalizeText lowercases and NFC-normalizes text for indexing and querying.
func normalizeText(s string) string {
	return norm.NFC.String(strings.ToLower(strings.TrimSpace(s)))
}

// ContactToDocument converts a domain Contact to its indexed form.
func ContactToDocument(c *domain.Contact) *ContactDocument {
	return &ContactDocument{
		ID:        c.ID,
		OwnerID:   c.OwnerID,
		Name:      normalizeText(c.Name),
		Email:     normalizeText(c.Email),
		Company:   normalizeText(c.Company),
		CreatedAt: c.CreatedAt.UnixMilli(),
	}
}
