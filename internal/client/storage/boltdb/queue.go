package boltdb

import (
	"context"
	"encoding/json"
	"fmt"

	"go.etcd.io/bbolt"

	"checkbook/internal/client/storage"
	"checkbook/internal/models"
)

const keyPending = "pending"

// SaveQueue overwrites the persisted pending-mutation queue
func (s *Storage) SaveQueue(ctx context.Context, mutations []models.Mutation) error {
	if s.db == nil {
		return storage.ErrStorageClosed
	}

	data, err := json.Marshal(mutations)
	if err != nil {
		return fmt.Errorf("failed to marshal queue: %w", err)
	}

	err = s.db.Update(func(tx *bbolt.Tx) error {
		bucket, err := tx.CreateBucketIfNotExists(bucketQueue)
		if err != nil {
			return fmt.Errorf("failed to create bucket: %w", err)
		}
		return bucket.Put([]byte(keyPending), data)
	})
	if err != nil {
		return fmt.Errorf("%w: %v", storage.ErrStorageUnavailable, err)
	}

	return nil
}

// GetQueue returns the persisted pending-mutation queue
func (s *Storage) GetQueue(ctx context.Context) ([]models.Mutation, error) {
	if s.db == nil {
		return nil, storage.ErrStorageClosed
	}

	var mutations []models.Mutation

	err := s.db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(bucketQueue)
		if bucket == nil {
			return nil
		}

		data := bucket.Get([]byte(keyPending))
		if data == nil {
			return nil
		}

		if err := json.Unmarshal(data, &mutations); err != nil {
			return fmt.Errorf("failed to unmarshal queue: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", storage.ErrStorageUnavailable, err)
	}

	return mutations, nil
}
