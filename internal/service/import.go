package service

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/contactdock/contactdock-server/internal/domain"
	domainerrors "github.com/contactdock/contactdock-server/internal/errors"
	"github.com/contactdock/contactdock-server/internal/id"
	"github.com/contactdock/contactdock-server/internal/store"
)

// ImportService runs bulk contact imports.
type ImportService struct {
	store  *store.Store
	logger *slog.Logger
}

// NewImportService creates a new import service.
func NewImportService(store *store.Store, logger *slog.Logger) *ImportService {
	return &ImportService{
		store:  store,
		logger: logger,
	}
}

// BulkImport validates and inserts a batch of contact rows for the owner.
//
// Rows are processed strictly in input order. Row failures are reported in
// the result, never as an error; the batch itself only fails on input that
// can't be processed at all (too many rows) or on a storage fault while
// recording the batch.
//
// Duplicate detection works against a snapshot of the owner's existing
// emails taken once at batch start, accumulating accepted rows so a
// duplicate within the batch fails on its second occurrence.
func (s *ImportService) BulkImport(ctx context.Context, ownerID string, rows []domain.ImportRow, source string) (*domain.ImportResult, error) {
	if len(rows) > domain.MaxImportRows {
		return nil, domainerrors.Validationf("batch exceeds %d rows", domain.MaxImportRows)
	}

	seenEmails, err := s.store.ContactEmails(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	validTags, err := s.store.TagIDSet(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	result := &domain.ImportResult{
		BatchID: uuid.NewString(),
		Errors:  []domain.ImportRowError{},
	}

	for i, row := range rows {
		rowIndex := i + 1

		if err := s.importRow(ctx, ownerID, row, seenEmails, validTags); err != nil {
			result.FailedCount++
			result.Errors = append(result.Errors, domain.ImportRowError{
				RowIndex: rowIndex,
				Email:    emailOrUnknown(row.Email),
				Error:    err.Error(),
			})
			continue
		}
		result.SuccessCount++
	}

	batch := &domain.ImportBatch{
		OwnerID:      ownerID,
		BatchID:      result.BatchID,
		Source:       source,
		SuccessCount: result.SuccessCount,
		FailedCount:  result.FailedCount,
		CompletedAt:  time.Now(),
	}
	batchID, err := id.Generate(id.PrefixImport)
	if err != nil {
		return nil, err
	}
	batch.ID = batchID
	batch.InitTimestamps()

	if err := s.store.SaveImportBatch(ctx, batch); err != nil {
		return nil, err
	}

	s.logger.Info("bulk import completed",
		"owner_id", ownerID,
		"batch_id", result.BatchID,
		"source", source,
		"success", result.SuccessCount,
		"failed", result.FailedCount,
	)
	return result, nil
}

// importRow validates and inserts a single row. The returned error message
// is surfaced verbatim in the row's error entry.
func (s *ImportService) importRow(ctx context.Context, ownerID string, row domain.ImportRow, seenEmails map[string]bool, validTags map[string]bool) error {
	if strings.TrimSpace(row.Name) == "" {
		return domainerrors.Validation("Name is required")
	}
	email := store.NormalizeEmail(row.Email)
	if email == "" {
		return domainerrors.Validation("Email is required")
	}
	if seenEmails[email] {
		return domainerrors.AlreadyExists("A contact with this email already exists")
	}
	for _, tagID := range row.TagIDs {
		if !validTags[tagID] {
			return domainerrors.Validationf("invalid tag reference: %s", tagID)
		}
	}

	contact := &domain.Contact{
		OwnerID: ownerID,
		Name:    strings.TrimSpace(row.Name),
		Email:   email,
		Phone:   row.Phone,
		Company: row.Company,
		Notes:   row.Notes,
		TagIDs:  row.TagIDs,
	}
	contactID, err := id.Generate(id.PrefixContact)
	if err != nil {
		return err
	}
	contact.ID = contactID
	contact.InitTimestamps()

	if err := s.store.CreateContact(ctx, contact); err != nil {
		return err
	}

	seenEmails[email] = true
	return nil
}

// ListBatches returns the owner's import history, newest first.
func (s *ImportService) ListBatches(ctx context.Context, ownerID string) ([]*domain.ImportBatch, error) {
	return s.store.ListImportBatches(ctx, ownerID)
}

func emailOrUnknown(email string) string {
	email = strings.TrimSpace(email)
	if email == "" {
		return "Unknown"
	}
	return email
}
