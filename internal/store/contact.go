package store

import (
	"context"
	"encoding/json/v2"
	"errors"
	"strings"

	"github.com/dgraph-io/badger/v4"

	"github.com/contactdock/contactdock-server/internal/domain"
)

// Key prefixes for owner-scoped contact storage.
// Embedding the owner id in every key makes tenant isolation a property of
// the key space itself: a prefix scan can never cross owners.
const (
	contactPrefix        = "contact:"            // contact:{ownerID}:{contactID} → Contact JSON
	contactByEmailPrefix = "idx:contacts:email:" // idx:contacts:email:{ownerID}:{email} → contactID
)

// Contact errors.
var (
	ErrContactNotFound    = errors.New("contact not found")
	ErrContactEmailExists = errors.New("contact email already exists")
)

func contactKey(ownerID, contactID string) []byte {
	return []byte(contactPrefix + ownerID + ":" + contactID)
}

func contactEmailKey(ownerID, email string) []byte {
	return []byte(contactByEmailPrefix + ownerID + ":" + NormalizeEmail(email))
}

// CreateContact creates a contact for its owner.
// Returns ErrContactEmailExists if the owner already has a contact with the
// same normalized email.
func (s *Store) CreateContact(ctx context.Context, c *domain.Contact) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	c.Email = NormalizeEmail(c.Email)

	err := s.db.Update(func(txn *badger.Txn) error {
		emailKey := contactEmailKey(c.OwnerID, c.Email)
		if _, err := txn.Get(emailKey); err == nil {
			return ErrContactEmailExists
		} else if !errors.Is(err, badger.ErrKeyNotFound) {
			return err
		}

		data, err := json.Marshal(c)
		if err != nil {
			return err
		}
		if err := txn.Set(contactKey(c.OwnerID, c.ID), data); err != nil {
			return err
		}

		return txn.Set(emailKey, []byte(c.ID))
	})
	if err != nil {
		return err
	}

	s.indexContact(ctx, c)
	return nil
}

// GetContact retrieves a contact by id, scoped to its owner.
func (s *Store) GetContact(ctx context.Context, ownerID, contactID string) (*domain.Contact, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var c domain.Contact
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(contactKey(ownerID, contactID))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return ErrContactNotFound
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &c)
		})
	})
	if err != nil {
		return nil, err
	}

	return &c, nil
}

// GetContactByEmail retrieves a contact by normalized email, scoped to its owner.
func (s *Store) GetContactByEmail(ctx context.Context, ownerID, email string) (*domain.Contact, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var contactID string
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(contactEmailKey(ownerID, email))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return ErrContactNotFound
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			contactID = string(val)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	return s.GetContact(ctx, ownerID, contactID)
}

// UpdateContact replaces a contact record, re-pointing the email index when
// the email changed. Returns ErrContactNotFound if the contact does not
// exist for this owner, and ErrContactEmailExists when the new email is
// taken by a different contact of the same owner.
func (s *Store) UpdateContact(ctx context.Context, c *domain.Contact) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	c.Email = NormalizeEmail(c.Email)

	err := s.db.Update(func(txn *badger.Txn) error {
		key := contactKey(c.OwnerID, c.ID)

		var old domain.Contact
		item, err := txn.Get(key)
		if errors.Is(err, badger.ErrKeyNotFound) {
			return ErrContactNotFound
		}
		if err != nil {
			return err
		}
		if err := item.Value(func(val []byte) error {
			return json.Unmarshal(val, &old)
		}); err != nil {
			return err
		}

		if old.Email != c.Email {
			newEmailKey := contactEmailKey(c.OwnerID, c.Email)
			if existing, err := txn.Get(newEmailKey); err == nil {
				var otherID string
				if err := existing.Value(func(val []byte) error {
					otherID = string(val)
					return nil
				}); err != nil {
					return err
				}
				if otherID != c.ID {
					return ErrContactEmailExists
				}
			} else if !errors.Is(err, badger.ErrKeyNotFound) {
				return err
			}

			if err := txn.Delete(contactEmailKey(c.OwnerID, old.Email)); err != nil && !errors.Is(err, badger.ErrKeyNotFound) {
				return err
			}
			if err := txn.Set(newEmailKey, []byte(c.ID)); err != nil {
				return err
			}
		}

		data, err := json.Marshal(c)
		if err != nil {
			return err
		}
		return txn.Set(key, data)
	})
	if err != nil {
		return err
	}

	s.indexContact(ctx, c)
	return nil
}

// DeleteContact removes a contact and its email index entry.
// Returns ErrContactNotFound if the contact does not exist for this owner.
func (s *Store) DeleteContact(ctx context.Context, ownerID, contactID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	err := s.db.Update(func(txn *badger.Txn) error {
		key := contactKey(ownerID, contactID)

		var c domain.Contact
		item, err := txn.Get(key)
		if errors.Is(err, badger.ErrKeyNotFound) {
			return ErrContactNotFound
		}
		if err != nil {
			return err
		}
		if err := item.Value(func(val []byte) error {
			return json.Unmarshal(val, &c)
		}); err != nil {
			return err
		}

		if err := txn.Delete(contactEmailKey(ownerID, c.Email)); err != nil && !errors.Is(err, badger.ErrKeyNotFound) {
			return err
		}
		return txn.Delete(key)
	})
	if err != nil {
		return err
	}

	s.unindexContact(ctx, contactID)
	return nil
}

// DeleteContacts removes a set of contacts for one owner and returns how
// many were actually deleted. IDs that do not exist for this owner are
// silently skipped, never reported as errors.
func (s *Store) DeleteContacts(ctx context.Context, ownerID string, contactIDs []string) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	deleted := 0
	for _, contactID := range contactIDs {
		err := s.DeleteContact(ctx, ownerID, contactID)
		if errors.Is(err, ErrContactNotFound) {
			continue
		}
		if err != nil {
			return deleted, err
		}
		deleted++
	}

	return deleted, nil
}

// ListContacts returns all contacts for an owner, unordered.
func (s *Store) ListContacts(ctx context.Context, ownerID string) ([]*domain.Contact, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	prefix := []byte(contactPrefix + ownerID + ":")
	var contacts []*domain.Contact

	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix
		opts.PrefetchSize = 100

		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			var c domain.Contact
			err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &c)
			})
			if err != nil {
				continue
			}
			contacts = append(contacts, &c)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return contacts, nil
}

// CountContacts returns the number of contacts for an owner.
func (s *Store) CountContacts(ctx context.Context, ownerID string) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	prefix := []byte(contactPrefix + ownerID + ":")
	count := 0

	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix
		opts.PrefetchValues = false

		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			count++
		}
		return nil
	})

	return count, err
}

// ContactEmails returns the set of normalized emails already used by an
// owner's contacts. Bulk import seeds its duplicate detection from this.
func (s *Store) ContactEmails(ctx context.Context, ownerID string) (map[string]bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	prefix := contactByEmailPrefix + ownerID + ":"
	emails := make(map[string]bool)

	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(prefix)
		opts.PrefetchValues = false

		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek([]byte(prefix)); it.ValidForPrefix([]byte(prefix)); it.Next() {
			key := string(it.Item().Key())
			emails[strings.TrimPrefix(key, prefix)] = true
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return emails, nil
}
