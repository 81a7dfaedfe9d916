package boltdb

import (
	"context"
	"encoding/binary"
	"fmt"
	"time"

	"go.etcd.io/bbolt"

	"checkbook/internal/client/storage"
)

const keyLastShopPull = "last_shop_pull"

// SaveLastShopPull saves the time of the last successful reference pull
func (s *Storage) SaveLastShopPull(ctx context.Context, t time.Time) error {
	if s.db == nil {
		return storage.ErrStorageClosed
	}

	err := s.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(bucketMetadata)
		if bucket == nil {
			return fmt.Errorf("metadata bucket not found")
		}

		// Конвертируем unix time в bytes
		buf := make([]byte, 8)
		binary.BigEndian.PutUint64(buf, uint64(t.Unix()))

		return bucket.Put([]byte(keyLastShopPull), buf)
	})
	if err != nil {
		return fmt.Errorf("failed to save last shop pull: %w", err)
	}

	return nil
}

// GetLastShopPull retrieves the time of the last successful reference
// pull. Returns the zero time if no pull has been performed yet.
func (s *Storage) GetLastShopPull(ctx context.Context) (time.Time, error) {
	if s.db == nil {
		return time.Time{}, storage.ErrStorageClosed
	}

	var t time.Time

	err := s.db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(bucketMetadata)
		if bucket == nil {
			return fmt.Errorf("metadata bucket not found")
		}

		buf := bucket.Get([]byte(keyLastShopPull))
		if buf == nil {
			// Первый pull ещё не выполнялся
			return nil
		}

		t = time.Unix(int64(binary.BigEndian.Uint64(buf)), 0)
		return nil
	})
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to get last shop pull: %w", err)
	}

	return t, nil
}
