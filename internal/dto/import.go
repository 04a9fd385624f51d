package dto

import (
	"time"

	"github.com/contactdock/contactdock-server/internal/domain"
)

// ImportRowError is a per-row failure in a bulk import.
type ImportRowError struct {
	RowIndex int    `json:"rowIndex"`
	Email    string `json:"email"`
	Error    string `json:"error"`
}

// ImportResult is the outcome of a bulk import.
type ImportResult struct {
	BatchID      string           `json:"batchId"`
	SuccessCount int              `json:"successCount"`
	FailedCount  int              `json:"failedCount"`
	Errors       []ImportRowError `json:"errors"`
}

// ImportBatch is a historical bulk-import record.
type ImportBatch struct {
	ID           string    `json:"id"`
	BatchID      string    `json:"batchId"`
	Source       string    `json:"source"`
	SuccessCount int       `json:"successCount"`
	FailedCount  int       `json:"failedCount"`
	CompletedAt  time.Time `json:"completedAt"`
	CreatedAt    time.Time `json:"createdAt"`
}

// FromImportResult converts a domain import result.
func FromImportResult(r *domain.ImportResult) ImportResult {
	errs := make([]ImportRowError, 0, len(r.Errors))
	for _, e := range r.Errors {
		errs = append(errs, ImportRowError{RowIndex: e.RowIndex, Email: e.Email, Error: e.Error})
	}
	return ImportResult{
		BatchID:      r.BatchID,
		SuccessCount: r.SuccessCount,
		FailedCount:  r.FailedCount,
		Errors:       errs,
	}
}

// FromImportBatches converts a slice of domain import batches.
func FromImportBatches(batches []*domain.ImportBatch) []ImportBatch {
	out := make([]ImportBatch, 0, len(batches))
	for _, b := range batches {
		out = append(out, ImportBatch{
			ID:           b.ID,
			BatchID:      b.BatchID,
			Source:       b.Source,
			SuccessCount: b.SuccessCount,
			FailedCount:  b.FailedCount,
			CompletedAt:  b.CompletedAt,
			CreatedAt:    b.CreatedAt,
		})
	}
	return out
}
