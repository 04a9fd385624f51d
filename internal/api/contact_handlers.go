package api

import (
	"context"
	"net/http"
	"strings"

	"github.com/danielgtaylor/huma/v2"

	"github.com/contactdock/contactdock-server/internal/dto"
	"github.com/contactdock/contactdock-server/internal/service"
)

func (s *Server) registerContactRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "listContacts",
		Method:      http.MethodGet,
		Path:        "/api/v1/contacts",
		Summary:     "List contacts",
		Description: "Returns a filtered, paginated list of the current user's contacts",
		Tags:        []string{"Contacts"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleListContacts)

	huma.Register(s.api, huma.Operation{
		OperationID:   "createContact",
		Method:        http.MethodPost,
		Path:          "/api/v1/contacts",
		Summary:       "Create contact",
		Description:   "Creates a new contact",
		Tags:          []string{"Contacts"},
		DefaultStatus: http.StatusCreated,
		Security:      []map[string][]string{{"bearer": {}}},
	}, s.handleCreateContact)

	huma.Register(s.api, huma.Operation{
		OperationID: "getContact",
		Method:      http.MethodGet,
		Path:        "/api/v1/contacts/{id}",
		Summary:     "Get contact",
		Description: "Returns a contact by ID",
		Tags:        []string{"Contacts"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleGetContact)

	huma.Register(s.api, huma.Operation{
		OperationID: "updateContact",
		Method:      http.MethodPut,
		Path:        "/api/v1/contacts/{id}",
		Summary:     "Update contact",
		Description: "Applies a partial update to a contact",
		Tags:        []string{"Contacts"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleUpdateContact)

	huma.Register(s.api, huma.Operation{
		OperationID: "deleteContact",
		Method:      http.MethodDelete,
		Path:        "/api/v1/contacts/{id}",
		Summary:     "Delete contact",
		Description: "Deletes a contact",
		Tags:        []string{"Contacts"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleDeleteContact)

	huma.Register(s.api, huma.Operation{
		OperationID: "bulkDeleteContacts",
		Method:      http.MethodPost,
		Path:        "/api/v1/contacts/bulk-delete",
		Summary:     "Bulk delete contacts",
		Description: "Deletes a set of contacts, skipping IDs the user does not own",
		Tags:        []string{"Contacts"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleBulkDeleteContacts)
}

// === DTOs ===

// ListContactsInput contains parameters for listing contacts.
type ListContactsInput struct {
	Authorization string `header:"Authorization"`
	Page          int    `query:"page" doc:"Page number, starting at 1"`
	Limit         int    `query:"limit" doc:"Page size, max 100"`
	Search        string `query:"search" doc:"Case-insensitive substring match over name, email, and company"`
	Tags          string `query:"tags" doc:"Comma-separated tag IDs; contacts matching any are returned"`
}

// ContactPageOutput wraps a contact page for Huma.
type ContactPageOutput struct {
	Body dto.ContactPage
}

// ContactRequest is the request body for creating a contact.
type ContactRequest struct {
	Name    string   `json:"name" validate:"required,min=1,max=200" doc:"Contact name"`
	Email   string   `json:"email" validate:"required,email" doc:"Email, unique per user"`
	Phone   string   `json:"phone,omitempty" validate:"omitempty,max=50" doc:"Phone number"`
	Company string   `json:"company,omitempty" validate:"omitempty,max=200" doc:"Company name"`
	Notes   string   `json:"notes,omitempty" validate:"omitempty,max=5000" doc:"Free-form notes"`
	TagIDs  []string `json:"tagIds,omitempty" doc:"Tag IDs to attach"`
}

// CreateContactInput wraps the create contact request for Huma.
type CreateContactInput struct {
	Authorization string `header:"Authorization"`
	Body          ContactRequest
}

// ContactOutput wraps a single contact response for Huma.
type ContactOutput struct {
	Body dto.Contact
}

// GetContactInput contains parameters for getting a contact.
type GetContactInput struct {
	Authorization string `header:"Authorization"`
	ID            string `path:"id" doc:"Contact ID"`
}

// UpdateContactRequest is the request body for updating a contact.
// Omitted fields are left unchanged.
type UpdateContactRequest struct {
	Name    *string  `json:"name,omitempty" validate:"omitempty,min=1,max=200" doc:"Contact name"`
	Email   *string  `json:"email,omitempty" validate:"omitempty,email" doc:"Email, unique per user"`
	Phone   *string  `json:"phone,omitempty" validate:"omitempty,max=50" doc:"Phone number"`
	Company *string  `json:"company,omitempty" validate:"omitempty,max=200" doc:"Company name"`
	Notes   *string  `json:"notes,omitempty" validate:"omitempty,max=5000" doc:"Free-form notes"`
	TagIDs  []string `json:"tagIds,omitempty" doc:"Replacement tag ID list"`
}

// UpdateContactInput wraps the update contact request for Huma.
type UpdateContactInput struct {
	Authorization string `header:"Authorization"`
	ID            string `path:"id" doc:"Contact ID"`
	Body          UpdateContactRequest
}

// DeleteContactInput contains parameters for deleting a contact.
type DeleteContactInput struct {
	Authorization string `header:"Authorization"`
	ID            string `path:"id" doc:"Contact ID"`
}

// BulkDeleteRequest is the request body for bulk deletion.
type BulkDeleteRequest struct {
	IDs []string `json:"ids" validate:"required,min=1" doc:"Contact IDs to delete"`
}

// BulkDeleteInput wraps the bulk delete request for Huma.
type BulkDeleteInput struct {
	Authorization string `header:"Authorization"`
	Body          BulkDeleteRequest
}

// BulkDeleteResponse reports how many contacts were actually deleted.
type BulkDeleteResponse struct {
	DeletedCount int `json:"deletedCount" doc:"Number of contacts deleted"`
}

// BulkDeleteOutput wraps the bulk delete response for Huma.
type BulkDeleteOutput struct {
	Body BulkDeleteResponse
}

// === Handlers ===

func (s *Server) handleListContacts(ctx context.Context, input *ListContactsInput) (*ContactPageOutput, error) {
	userID, err := s.authenticateRequest(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	page, err := s.services.Contact.List(ctx, userID, service.ListParams{
		Page:   input.Page,
		Limit:  input.Limit,
		Search: input.Search,
		TagIDs: splitTagIDs(input.Tags),
	})
	if err != nil {
		return nil, err
	}

	contacts := make([]dto.Contact, 0, len(page.Contacts))
	for _, c := range page.Contacts {
		contacts = append(contacts, dto.FromContact(c.Contact, c.Tags))
	}

	return &ContactPageOutput{
		Body: dto.ContactPage{
			Data: contacts,
			Pagination: dto.Pagination{
				Page:       page.Pagination.Page,
				Limit:      page.Pagination.Limit,
				Total:      page.Pagination.Total,
				TotalPages: page.Pagination.TotalPages,
			},
		},
	}, nil
}

func (s *Server) handleCreateContact(ctx context.Context, input *CreateContactInput) (*ContactOutput, error) {
	userID, err := s.authenticateRequest(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	if err := s.validator.Validate(input.Body); err != nil {
		return nil, err
	}

	contact, err := s.services.Contact.Create(ctx, userID, service.ContactInput{
		Name:    input.Body.Name,
		Email:   input.Body.Email,
		Phone:   input.Body.Phone,
		Company: input.Body.Company,
		Notes:   input.Body.Notes,
		TagIDs:  input.Body.TagIDs,
	})
	if err != nil {
		return nil, err
	}

	return &ContactOutput{Body: dto.FromContact(contact.Contact, contact.Tags)}, nil
}

func (s *Server) handleGetContact(ctx context.Context, input *GetContactInput) (*ContactOutput, error) {
	userID, err := s.authenticateRequest(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	contact, err := s.services.Contact.Get(ctx, userID, input.ID)
	if err != nil {
		return nil, err
	}

	return &ContactOutput{Body: dto.FromContact(contact.Contact, contact.Tags)}, nil
}

func (s *Server) handleUpdateContact(ctx context.Context, input *UpdateContactInput) (*ContactOutput, error) {
	userID, err := s.authenticateRequest(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	if err := s.validator.Validate(input.Body); err != nil {
		return nil, err
	}

	contact, err := s.services.Contact.Update(ctx, userID, input.ID, service.ContactUpdate{
		Name:    input.Body.Name,
		Email:   input.Body.Email,
		Phone:   input.Body.Phone,
		Company: input.Body.Company,
		Notes:   input.Body.Notes,
		TagIDs:  input.Body.TagIDs,
	})
	if err != nil {
		return nil, err
	}

	return &ContactOutput{Body: dto.FromContact(contact.Contact, contact.Tags)}, nil
}

func (s *Server) handleDeleteContact(ctx context.Context, input *DeleteContactInput) (*MessageOutput, error) {
	userID, err := s.authenticateRequest(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	if err := s.services.Contact.Delete(ctx, userID, input.ID); err != nil {
		return nil, err
	}

	return &MessageOutput{Body: MessageResponse{Message: "Contact deleted"}}, nil
}

func (s *Server) handleBulkDeleteContacts(ctx context.Context, input *BulkDeleteInput) (*BulkDeleteOutput, error) {
	userID, err := s.authenticateRequest(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	if err := s.validator.Validate(input.Body); err != nil {
		return nil, err
	}

	deleted, err := s.services.Contact.BulkDelete(ctx, userID, input.Body.IDs)
	if err != nil {
		return nil, err
	}

	return &BulkDeleteOutput{Body: BulkDeleteResponse{DeletedCount: deleted}}, nil
}

// splitTagIDs parses a comma-separated tag ID list, dropping empties.
func splitTagIDs(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	ids := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			ids = append(ids, trimmed)
		}
	}
	return ids
}
