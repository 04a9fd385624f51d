package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/contactdock/contactdock-server/internal/domain"
	"github.com/contactdock/contactdock-server/internal/dto"
)

func (s *Server) registerImportRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "bulkImportContacts",
		Method:      http.MethodPost,
		Path:        "/api/v1/contacts/bulk-import",
		Summary:     "Bulk import contacts",
		Description: "Imports a batch of contact rows. Row failures are reported in the result; the response is 207 when any row fails.",
		Tags:        []string{"Contacts"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleBulkImportContacts)

	huma.Register(s.api, huma.Operation{
		OperationID: "listImportBatches",
		Method:      http.MethodGet,
		Path:        "/api/v1/contacts/imports",
		Summary:     "List import batches",
		Description: "Returns the current user's bulk import history, newest first",
		Tags:        []string{"Contacts"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleListImportBatches)
}

// === DTOs ===

// ImportRowRequest is a single row of a bulk import.
type ImportRowRequest struct {
	Name    string   `json:"name" doc:"Contact name"`
	Email   string   `json:"email" doc:"Contact email"`
	Phone   string   `json:"phone,omitempty" doc:"Phone number"`
	Company string   `json:"company,omitempty" doc:"Company name"`
	Notes   string   `json:"notes,omitempty" doc:"Free-form notes"`
	TagIDs  []string `json:"tagIds,omitempty" doc:"Tag IDs to attach"`
}

// BulkImportRequest is the request body for a bulk import.
type BulkImportRequest struct {
	Contacts []ImportRowRequest `json:"contacts" validate:"required" doc:"Rows to import, processed in order"`
}

// BulkImportInput wraps the bulk import request for Huma.
type BulkImportInput struct {
	Authorization string `header:"Authorization"`
	Body          BulkImportRequest
}

// BulkImportOutput wraps the import result for Huma.
// Status is 200 when every row succeeds and 207 otherwise.
type BulkImportOutput struct {
	Status int
	Body   dto.ImportResult
}

// ListImportBatchesInput contains parameters for listing import batches.
type ListImportBatchesInput struct {
	Authorization string `header:"Authorization"`
}

// ImportBatchListOutput wraps the import batch list for Huma.
type ImportBatchListOutput struct {
	Body []dto.ImportBatch
}

// === Handlers ===

func (s *Server) handleBulkImportContacts(ctx context.Context, input *BulkImportInput) (*BulkImportOutput, error) {
	userID, err := s.authenticateRequest(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	if err := s.validator.Validate(input.Body); err != nil {
		return nil, err
	}

	rows := make([]domain.ImportRow, 0, len(input.Body.Contacts))
	for _, r := range input.Body.Contacts {
		rows = append(rows, domain.ImportRow{
			Name:    r.Name,
			Email:   r.Email,
			Phone:   r.Phone,
			Company: r.Company,
			Notes:   r.Notes,
			TagIDs:  r.TagIDs,
		})
	}

	result, err := s.services.Import.BulkImport(ctx, userID, rows, domain.ImportSourceAPI)
	if err != nil {
		return nil, err
	}

	status := http.StatusOK
	if result.FailedCount > 0 {
		status = http.StatusMultiStatus
	}

	return &BulkImportOutput{
		Status: status,
		Body:   dto.FromImportResult(result),
	}, nil
}

func (s *Server) handleListImportBatches(ctx context.Context, input *ListImportBatchesInput) (*ImportBatchListOutput, error) {
	userID, err := s.authenticateRequest(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	batches, err := s.services.Import.ListBatches(ctx, userID)
	if err != nil {
		return nil, err
	}

	return &ImportBatchListOutput{Body: dto.FromImportBatches(batches)}, nil
}
