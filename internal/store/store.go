package store

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/dgraph-io/badger/v4"

	"github.com/contactdock/contactdock-server/internal/domain"
)

// SearchIndexer is the interface for updating the search index.
// Store uses this to keep search in sync without depending on search
// implementation details. Index failures never fail the write path; they
// are logged and the index catches up on the next rebuild.
type SearchIndexer interface {
	IndexContact(ctx context.Context, c *domain.Contact) error
	DeleteContact(ctx context.Context, contactID string) error
}

// NoopSearchIndexer is a no-op implementation for testing.
type NoopSearchIndexer struct{}

// IndexContact is a no-op.
func (NoopSearchIndexer) IndexContact(context.Context, *domain.Contact) error { return nil }

// DeleteContact is a no-op.
func (NoopSearchIndexer) DeleteContact(context.Context, string) error { return nil }

// NewNoopSearchIndexer creates a new no-op search indexer for testing.
func NewNoopSearchIndexer() SearchIndexer {
	return NoopSearchIndexer{}
}

// Store wraps a Badger database instance.
type Store struct {
	db     *badger.DB
	logger *slog.Logger

	// Search indexer for keeping search in sync with store changes.
	// Set via SetSearchIndexer after store creation to avoid circular dependencies.
	searchIndexer SearchIndexer

	// Generic entities
	Users *Entity[domain.User]
}

// New creates a new Store instance with the given database path.
func New(path string, logger *slog.Logger) (*Store, error) {
	opts := badger.DefaultOptions(path)
	opts.Logger = nil            // Disable Badger's internal logging
	opts.SyncWrites = true       // Ensure writes are synced to disk to prevent corruption on crashes
	opts.CompactL0OnClose = true // Compact L0 tables on close for faster startup

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open badger db: %w", err)
	}

	store := &Store{
		db:     db,
		logger: logger,
	}

	store.initUsers()

	if logger != nil {
		logger.Info("Badger database opened successfully", "path", path)
	}

	return store, nil
}

// Close gracefully closes the database connection.
func (s *Store) Close() error {
	if s.logger != nil {
		s.logger.Info("Closing database connection")
	}
	return s.db.Close()
}

// SetSearchIndexer sets the search indexer for keeping search in sync.
// This is set after store creation to avoid circular dependencies
// (store needs to exist before the search index can be built from it).
func (s *Store) SetSearchIndexer(indexer SearchIndexer) {
	s.searchIndexer = indexer
}

// initUsers initializes the Users entity on the store.
// Users are global (not owner-scoped) and indexed two ways:
//   - email, case-insensitive via NormalizeEmail
//   - subject, the identity provider's subject id; placeholder users
//     without a subject simply have no entry in this index
func (s *Store) initUsers() {
	s.Users = NewEntity[domain.User](s, "user:").
		WithIndexTransform("email",
			func(u *domain.User) []string {
				return []string{NormalizeEmail(u.Email)}
			},
			NormalizeEmail,
		).
		WithIndex("subject", func(u *domain.User) []string {
			if u.SubjectID == "" {
				return nil
			}
			return []string{u.SubjectID}
		})
}

// indexContact hands a contact to the search indexer, best effort.
func (s *Store) indexContact(ctx context.Context, c *domain.Contact) {
	if s.searchIndexer == nil {
		return
	}
	if err := s.searchIndexer.IndexContact(ctx, c); err != nil && s.logger != nil {
		s.logger.Warn("failed to index contact", "contact_id", c.ID, "error", err)
	}
}

// unindexContact removes a contact from the search indexer, best effort.
func (s *Store) unindexContact(ctx context.Context, contactID string) {
	if s.searchIndexer == nil {
		return
	}
	if err := s.searchIndexer.DeleteContact(ctx, contactID); err != nil && s.logger != nil {
		s.logger.Warn("failed to unindex contact", "contact_id", contactID, "error", err)
	}
}
