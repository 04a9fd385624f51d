package store

import (
	"context"
	"encoding/json/v2"
	"sort"

	"github.com/dgraph-io/badger/v4"

	"github.com/contactdock/contactdock-server/internal/domain"
)

// Key prefix for owner-scoped import batch records.
const importPrefix = "import:" // import:{ownerID}:{id} → ImportBatch JSON

func importKey(ownerID, batchID string) []byte {
	return []byte(importPrefix + ownerID + ":" + batchID)
}

// SaveImportBatch persists the record of one bulk import run.
func (s *Store) SaveImportBatch(ctx context.Context, b *domain.ImportBatch) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := json.Marshal(b)
	if err != nil {
		return err
	}

	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(importKey(b.OwnerID, b.ID), data)
	})
}

// ListImportBatches returns an owner's import batches, newest first.
func (s *Store) ListImportBatches(ctx context.Context, ownerID string) ([]*domain.ImportBatch, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	prefix := []byte(importPrefix + ownerID + ":")
	var batches []*domain.ImportBatch

	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix
		opts.PrefetchSize = 100

		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			var b domain.ImportBatch
			err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &b)
			})
			if err != nil {
				continue
			}
			batches = append(batches, &b)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(batches, func(i, j int) bool {
		if !batches[i].CreatedAt.Equal(batches[j].CreatedAt) {
			return batches[i].CreatedAt.After(batches[j].CreatedAt)
		}
		return batches[i].ID > batches[j].ID
	})

	return batches, nil
}
