package boltdb

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"sort"

	"go.etcd.io/bbolt"

	"checkbook/internal/client/storage"
	"checkbook/internal/models"
)

const keyShops = "shops"

// checksKeyPrefix + "YYYY-MM" адресует коллекцию чеков одного месяца
const checksKeyPrefix = "checks/"

func checksKey(m storage.Month) []byte {
	return []byte(fmt.Sprintf("%s%04d-%02d", checksKeyPrefix, m.Year, m.Month))
}

// SaveShops overwrites the full shop collection
func (s *Storage) SaveShops(ctx context.Context, shops []models.Shop) error {
	return s.putRecord([]byte(keyShops), shops)
}

// GetShops returns the full shop collection
func (s *Storage) GetShops(ctx context.Context) ([]models.Shop, error) {
	var shops []models.Shop
	if err := s.getRecord([]byte(keyShops), &shops); err != nil {
		return nil, err
	}
	return shops, nil
}

// SaveChecks overwrites the check collection for one month
func (s *Storage) SaveChecks(ctx context.Context, m storage.Month, checks []models.Check) error {
	return s.putRecord(checksKey(m), checks)
}

// GetChecks returns the check collection for one month
func (s *Storage) GetChecks(ctx context.Context, m storage.Month) ([]models.Check, error) {
	var checks []models.Check
	if err := s.getRecord(checksKey(m), &checks); err != nil {
		return nil, err
	}
	return checks, nil
}

// Months returns every month that has a stored check collection,
// newest first
func (s *Storage) Months(ctx context.Context) ([]storage.Month, error) {
	if s.db == nil {
		return nil, storage.ErrStorageClosed
	}

	var months []storage.Month

	err := s.db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(bucketLedger)
		if bucket == nil {
			return nil
		}

		prefix := []byte(checksKeyPrefix)
		c := bucket.Cursor()
		for k, _ := c.Seek(prefix); k != nil && bytes.HasPrefix(k, prefix); k, _ = c.Next() {
			var m storage.Month
			if _, err := fmt.Sscanf(string(k[len(prefix):]), "%d-%d", &m.Year, &m.Month); err != nil {
				// Ключ чужого формата пропускаем
				continue
			}
			months = append(months, m)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", storage.ErrStorageUnavailable, err)
	}

	sort.Slice(months, func(i, j int) bool {
		if months[i].Year != months[j].Year {
			return months[i].Year > months[j].Year
		}
		return months[i].Month > months[j].Month
	})

	return months, nil
}

// putRecord сериализует коллекцию в JSON и полностью перезаписывает
// одну запись ledger bucket. bbolt Update коммитит до возврата, так что
// запись долговечна к моменту выхода из функции.
func (s *Storage) putRecord(key []byte, value any) error {
	if s.db == nil {
		return storage.ErrStorageClosed
	}

	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal record: %w", err)
	}

	err = s.db.Update(func(tx *bbolt.Tx) error {
		bucket, err := tx.CreateBucketIfNotExists(bucketLedger)
		if err != nil {
			return fmt.Errorf("failed to create bucket: %w", err)
		}
		return bucket.Put(key, data)
	})
	if err != nil {
		return fmt.Errorf("%w: %v", storage.ErrStorageUnavailable, err)
	}

	return nil
}

// getRecord читает одну запись ledger bucket.
// Отсутствующая запись читается как пустая коллекция (out не трогаем).
func (s *Storage) getRecord(key []byte, out any) error {
	if s.db == nil {
		return storage.ErrStorageClosed
	}

	err := s.db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(bucketLedger)
		if bucket == nil {
			return nil
		}

		data := bucket.Get(key)
		if data == nil {
			return nil
		}

		if err := json.Unmarshal(data, out); err != nil {
			return fmt.Errorf("failed to unmarshal record: %w", err)
		}
		return nil
	})
	if err != nil {
		// Повреждённая или недоступная запись — для вызывающего это
		// StorageUnavailable, он откатится к пустой коллекции
		return fmt.Errorf("%w: %v", storage.ErrStorageUnavailable, err)
	}

	return nil
}
