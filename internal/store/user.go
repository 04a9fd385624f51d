package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dgraph-io/badger/v4"

	"github.com/contactdock/contactdock-server/internal/domain"
)

// NormalizeEmail lower-cases and trims an email address.
// All email index keys and per-owner uniqueness checks use this form.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// GetUserBySubject finds a user by the identity provider's subject id.
func (s *Store) GetUserBySubject(ctx context.Context, subjectID string) (*domain.User, error) {
	return s.Users.GetByIndex(ctx, "subject", subjectID)
}

// GetUserByEmail finds a user by email, case-insensitive.
func (s *Store) GetUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	return s.Users.GetByIndex(ctx, "email", email)
}

// ReindexUsers drops and rebuilds all user secondary index keys from the
// primary records. Remedial path for a corrupted or stale index, e.g. after
// an index uniqueness violation during identity sync.
func (s *Store) ReindexUsers(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	// Collect users and stale index keys in one pass.
	var users []*domain.User
	for u, err := range s.Users.List(ctx) {
		if err != nil {
			return fmt.Errorf("list users: %w", err)
		}
		users = append(users, u)
	}

	err := s.db.Update(func(txn *badger.Txn) error {
		idxPrefix := []byte("user:idx:")
		opts := badger.DefaultIteratorOptions
		opts.Prefix = idxPrefix
		opts.PrefetchValues = false

		it := txn.NewIterator(opts)
		defer it.Close()

		var keysToDelete [][]byte
		for it.Seek(idxPrefix); it.ValidForPrefix(idxPrefix); it.Next() {
			keyCopy := make([]byte, len(it.Item().Key()))
			copy(keyCopy, it.Item().Key())
			keysToDelete = append(keysToDelete, keyCopy)
		}

		for _, k := range keysToDelete {
			if err := txn.Delete(k); err != nil && !errors.Is(err, badger.ErrKeyNotFound) {
				return err
			}
		}

		for _, u := range users {
			emailKey := []byte("user:idx:email:" + NormalizeEmail(u.Email))
			if err := txn.Set(emailKey, []byte(u.ID)); err != nil {
				return err
			}
			if u.SubjectID != "" {
				subjectKey := []byte("user:idx:subject:" + u.SubjectID)
				if err := txn.Set(subjectKey, []byte(u.ID)); err != nil {
					return err
				}
			}
		}

		return nil
	})
	if err != nil {
		return fmt.Errorf("rebuild user indexes: %w", err)
	}

	if s.logger != nil {
		s.logger.Info("rebuilt user indexes", "users", len(users))
	}
	return nil
}
