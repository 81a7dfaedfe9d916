package boltdb

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.etcd.io/bbolt"

	"checkbook/internal/client/storage"
	"checkbook/internal/models"
)

func TestSaveAndGetShops(t *testing.T) {
	ctx := context.Background()
	store := createTestStorage(t)

	// Пустое хранилище читается как пустая коллекция
	shops, err := store.GetShops(ctx)
	require.NoError(t, err)
	assert.Empty(t, shops)

	in := []models.Shop{
		{ID: "s1", Name: "Market"},
		{ID: "s2", Name: "Bakery"},
	}
	require.NoError(t, store.SaveShops(ctx, in))

	got, err := store.GetShops(ctx)
	require.NoError(t, err)
	assert.Equal(t, in, got)

	// Полная перезапись коллекции
	require.NoError(t, store.SaveShops(ctx, in[:1]))
	got, err = store.GetShops(ctx)
	require.NoError(t, err)
	assert.Equal(t, in[:1], got)
}

func TestSaveAndGetChecks_PerMonth(t *testing.T) {
	ctx := context.Background()
	store := createTestStorage(t)

	sep := storage.Month{Year: 2026, Month: 9}
	oct := storage.Month{Year: 2026, Month: 10}

	check := models.Check{ID: "c1", CheckNumber: 1, Date: "2026-09-01", ShopID: "s1", ShopName: "Market", Total: decimal.Zero}
	require.NoError(t, store.SaveChecks(ctx, sep, []models.Check{check}))

	// Коллекции месяцев независимы
	got, err := store.GetChecks(ctx, sep)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "c1", got[0].ID)

	got, err = store.GetChecks(ctx, oct)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestChecks_SurvivesReopen(t *testing.T) {
	ctx := context.Background()
	dbPath := t.TempDir() + "/reopen.db"

	m := storage.Month{Year: 2026, Month: 9}

	store, err := New(ctx, dbPath)
	require.NoError(t, err)
	require.NoError(t, store.SaveChecks(ctx, m, []models.Check{{ID: "c1", Date: "2026-09-01"}}))
	require.NoError(t, store.Close())

	// Данные переживают перезапуск
	store, err = New(ctx, dbPath)
	require.NoError(t, err)
	defer func() { require.NoError(t, store.Close()) }()

	got, err := store.GetChecks(ctx, m)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "c1", got[0].ID)
}

func TestMonths(t *testing.T) {
	ctx := context.Background()
	store := createTestStorage(t)

	months, err := store.Months(ctx)
	require.NoError(t, err)
	assert.Empty(t, months)

	for _, m := range []storage.Month{
		{Year: 2026, Month: 9},
		{Year: 2025, Month: 12},
		{Year: 2026, Month: 1},
	} {
		require.NoError(t, store.SaveChecks(ctx, m, []models.Check{}))
	}

	months, err = store.Months(ctx)
	require.NoError(t, err)

	// Новые месяцы первыми
	assert.Equal(t, []storage.Month{
		{Year: 2026, Month: 9},
		{Year: 2026, Month: 1},
		{Year: 2025, Month: 12},
	}, months)
}

func TestGetShops_CorruptRecord(t *testing.T) {
	ctx := context.Background()
	store := createTestStorage(t)

	// Портим запись напрямую
	err := store.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketLedger).Put([]byte(keyShops), []byte("not json {{{"))
	})
	require.NoError(t, err)

	_, err = store.GetShops(ctx)
	require.Error(t, err)
	assert.ErrorIs(t, err, storage.ErrStorageUnavailable)
}

func TestLedger_StorageClosed(t *testing.T) {
	ctx := context.Background()
	var store Storage // db == nil

	_, err := store.GetShops(ctx)
	assert.ErrorIs(t, err, storage.ErrStorageClosed)

	err = store.SaveShops(ctx, nil)
	assert.ErrorIs(t, err, storage.ErrStorageClosed)
}
