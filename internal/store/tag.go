package store

import (
	"context"
	"encoding/json/v2"
	"errors"
	"sort"
	"strings"

	"github.com/dgraph-io/badger/v4"

	"github.com/contactdock/contactdock-server/internal/domain"
)

// Key prefixes for owner-scoped tag storage.
const (
	tagPrefix       = "tag:"           // tag:{ownerID}:{tagID} → Tag JSON
	tagByNamePrefix = "idx:tags:name:" // idx:tags:name:{ownerID}:{lower(name)} → tagID
)

// Tag errors.
var (
	ErrTagNotFound = errors.New("tag not found")
	ErrTagExists   = errors.New("tag already exists")
)

func tagKey(ownerID, tagID string) []byte {
	return []byte(tagPrefix + ownerID + ":" + tagID)
}

func tagNameKey(ownerID, name string) []byte {
	return []byte(tagByNamePrefix + ownerID + ":" + normalizeTagName(name))
}

func normalizeTagName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// CreateTag creates a tag for its owner.
// Returns ErrTagExists if the owner already has a tag with the same name,
// compared case-insensitively.
func (s *Store) CreateTag(ctx context.Context, t *domain.Tag) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	return s.db.Update(func(txn *badger.Txn) error {
		nameKey := tagNameKey(t.OwnerID, t.Name)
		if _, err := txn.Get(nameKey); err == nil {
			return ErrTagExists
		} else if !errors.Is(err, badger.ErrKeyNotFound) {
			return err
		}

		data, err := json.Marshal(t)
		if err != nil {
			return err
		}
		if err := txn.Set(tagKey(t.OwnerID, t.ID), data); err != nil {
			return err
		}

		return txn.Set(nameKey, []byte(t.ID))
	})
}

// GetTag retrieves a tag by id, scoped to its owner.
func (s *Store) GetTag(ctx context.Context, ownerID, tagID string) (*domain.Tag, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var t domain.Tag
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(tagKey(ownerID, tagID))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return ErrTagNotFound
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &t)
		})
	})
	if err != nil {
		return nil, err
	}

	return &t, nil
}

// GetTagByName retrieves a tag by name (case-insensitive), scoped to its owner.
func (s *Store) GetTagByName(ctx context.Context, ownerID, name string) (*domain.Tag, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var tagID string
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(tagNameKey(ownerID, name))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return ErrTagNotFound
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			tagID = string(val)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	return s.GetTag(ctx, ownerID, tagID)
}

// ListTags returns all tags for an owner, newest first.
func (s *Store) ListTags(ctx context.Context, ownerID string) ([]*domain.Tag, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	prefix := []byte(tagPrefix + ownerID + ":")
	var tags []*domain.Tag

	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix
		opts.PrefetchSize = 100

		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			var t domain.Tag
			err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &t)
			})
			if err != nil {
				continue
			}
			tags = append(tags, &t)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	// Newest first, id as a stable tie-break.
	sort.Slice(tags, func(i, j int) bool {
		if !tags[i].CreatedAt.Equal(tags[j].CreatedAt) {
			return tags[i].CreatedAt.After(tags[j].CreatedAt)
		}
		return tags[i].ID > tags[j].ID
	})

	return tags, nil
}

// TagIDSet returns the set of tag ids owned by a user.
// Contact writes validate tag references against this.
func (s *Store) TagIDSet(ctx context.Context, ownerID string) (map[string]bool, error) {
	tags, err := s.ListTags(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	ids := make(map[string]bool, len(tags))
	for _, t := range tags {
		ids[t.ID] = true
	}
	return ids, nil
}

// GetTagsByIDs resolves tag ids to tags, skipping ids that no longer exist.
func (s *Store) GetTagsByIDs(ctx context.Context, ownerID string, tagIDs []string) ([]*domain.Tag, error) {
	tags := make([]*domain.Tag, 0, len(tagIDs))
	for _, tagID := range tagIDs {
		t, err := s.GetTag(ctx, ownerID, tagID)
		if errors.Is(err, ErrTagNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		tags = append(tags, t)
	}
	return tags, nil
}

// DeleteTag removes a tag, its name index entry, and strips the tag from
// every contact of the same owner that references it.
func (s *Store) DeleteTag(ctx context.Context, ownerID, tagID string) error {
	t, err := s.GetTag(ctx, ownerID, tagID)
	if err != nil {
		return err
	}

	return s.db.Update(func(txn *badger.Txn) error {
		if err := txn.Delete(tagKey(ownerID, tagID)); err != nil {
			return err
		}
		if err := txn.Delete(tagNameKey(ownerID, t.Name)); err != nil && !errors.Is(err, badger.ErrKeyNotFound) {
			return err
		}

		// Strip references from the owner's contacts.
		prefix := []byte(contactPrefix + ownerID + ":")
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix

		it := txn.NewIterator(opts)
		defer it.Close()

		type pendingWrite struct {
			key  []byte
			data []byte
		}
		var writes []pendingWrite

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			var c domain.Contact
			if err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &c)
			}); err != nil {
				continue
			}

			kept := c.TagIDs[:0]
			removed := false
			for _, id := range c.TagIDs {
				if id == tagID {
					removed = true
					continue
				}
				kept = append(kept, id)
			}
			if !removed {
				continue
			}

			c.TagIDs = kept
			c.Touch()

			data, err := json.Marshal(&c)
			if err != nil {
				return err
			}
			keyCopy := make([]byte, len(it.Item().Key()))
			copy(keyCopy, it.Item().Key())
			writes = append(writes, pendingWrite{key: keyCopy, data: data})
		}

		for _, w := range writes {
			if err := txn.Set(w.key, w.data); err != nil {
				return err
			}
		}

		return nil
	})
}
