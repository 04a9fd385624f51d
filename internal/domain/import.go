package domain

import "time"

// MaxImportRows caps the number of rows accepted in one bulk import call.
const MaxImportRows = 5000

// Import sources.
const (
	ImportSourceAPI   = "api"
	ImportSourceWatch = "watch"
)

// ImportRow is one raw contact row submitted for bulk import.
type ImportRow struct {
	Name    string   `json:"name"`
	Email   string   `json:"email"`
	Phone   string   `json:"phone,omitempty"`
	Company string   `json:"company,omitempty"`
	Notes   string   `json:"notes,omitempty"`
	TagIDs  []string `json:"tags,omitempty"`
}

// ImportRowError is a per-row failure in a bulk import.
// RowIndex is 1-based and corresponds to the input row position.
type ImportRowError struct {
	RowIndex int    `json:"row_index"`
	Email    string `json:"email"`
	Error    string `json:"error"`
}

// ImportResult summarizes one bulk import call.
// Row errors are data, not failures; the batch never aborts on them.
type ImportResult struct {
	BatchID      string           `json:"batch_id,omitempty"`
	SuccessCount int              `json:"success_count"`
	FailedCount  int              `json:"failed_count"`
	Errors       []ImportRowError `json:"errors"`
}

// ImportBatch is the persisted record of one bulk import run.
type ImportBatch struct {
	Record
	OwnerID      string    `json:"owner_id"`
	BatchID      string    `json:"batch_id"`
	Source       string    `json:"source"`
	SuccessCount int       `json:"success_count"`
	FailedCount  int       `json:"failed_count"`
	CompletedAt  time.Time `json:"completed_at"`
}
