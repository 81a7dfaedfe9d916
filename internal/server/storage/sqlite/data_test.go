package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"checkbook/internal/models"
	"checkbook/internal/server/storage"
)

func newTestStorage(t *testing.T) *Storage {
	t.Helper()

	s, err := New(context.Background(), ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = s.Close()
	})

	return s
}

func shopMutation(action models.Action, id, name string) models.Mutation {
	return models.Mutation{
		EntityType: models.EntityShop,
		Action:     action,
		Shop:       &models.Shop{ID: id, Name: name},
		Timestamp:  time.Now(),
	}
}

func checkMutation(action models.Action, check models.Check) models.Mutation {
	return models.Mutation{
		EntityType: models.EntityCheck,
		Action:     action,
		Check:      &check,
		Timestamp:  time.Now(),
	}
}

func testItem(name, price, count string) models.CheckItem {
	return models.CheckItem{
		ProductName: name,
		Price:       decimal.RequireFromString(price),
		Count:       decimal.RequireFromString(count),
		Unit:        models.UnitPcs,
	}
}

func TestApplyBatch_ShopAndCheck(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()

	check := models.Check{
		ID:          "check-1",
		CheckNumber: 1,
		Date:        "2025-07-15",
		ShopID:      "shop-1",
		ShopName:    "Market",
		Items: []models.CheckItem{
			testItem("Milk", "2.50", "3"),
			testItem("Bread", "1.00", "2"),
		},
		// Присланный итог заведомо неверный, сервер обязан пересчитать
		Total: decimal.RequireFromString("100"),
	}

	applied, err := s.ApplyBatch(ctx, []models.Mutation{
		shopMutation(models.ActionCreate, "shop-1", "Market"),
		checkMutation(models.ActionCreate, check),
	})
	require.NoError(t, err)
	assert.Equal(t, 2, applied)

	shops, err := s.GetShops(ctx)
	require.NoError(t, err)
	require.Len(t, shops, 1)
	assert.Equal(t, "Market", shops[0].Name)

	got, err := s.GetCheck(ctx, "check-1")
	require.NoError(t, err)
	assert.Equal(t, 1, got.CheckNumber)
	assert.Equal(t, "Market", got.ShopName)
	require.Len(t, got.Items, 2)
	assert.Equal(t, 1, got.Items[0].SerialNumber)
	assert.Equal(t, 2, got.Items[1].SerialNumber)
	assert.True(t, got.Items[0].Total.Equal(decimal.RequireFromString("7.50")))
	assert.True(t, got.Total.Equal(decimal.RequireFromString("9.50")),
		"expected total 9.50, got %s", got.Total)
}

func TestApplyBatch_UnknownShopRollsBack(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()

	check := models.Check{
		ID:     "check-1",
		Date:   "2025-07-15",
		ShopID: "shop-missing",
		Items:  []models.CheckItem{testItem("Milk", "2.50", "1")},
	}

	_, err := s.ApplyBatch(ctx, []models.Mutation{
		shopMutation(models.ActionCreate, "shop-1", "Market"),
		checkMutation(models.ActionCreate, check),
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, storage.ErrShopNotFound)
	assert.Contains(t, err.Error(), "shop-missing")

	// Batch откатывается целиком, включая валидный магазин
	shops, err := s.GetShops(ctx)
	require.NoError(t, err)
	assert.Empty(t, shops)

	_, err = s.GetCheck(ctx, "check-1")
	assert.ErrorIs(t, err, storage.ErrCheckNotFound)
}

func TestApplyBatch_IdempotentReplay(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()

	check := models.Check{
		ID:     "check-1",
		Date:   "2025-07-15",
		ShopID: "shop-1",
		Items:  []models.CheckItem{testItem("Milk", "2.50", "1")},
	}
	batch := []models.Mutation{
		shopMutation(models.ActionCreate, "shop-1", "Market"),
		checkMutation(models.ActionCreate, check),
	}

	_, err := s.ApplyBatch(ctx, batch)
	require.NoError(t, err)

	first, err := s.GetCheck(ctx, "check-1")
	require.NoError(t, err)

	// Повторная доставка того же batch после потерянного ответа
	_, err = s.ApplyBatch(ctx, batch)
	require.NoError(t, err)

	second, err := s.GetCheck(ctx, "check-1")
	require.NoError(t, err)

	assert.Equal(t, first.CheckNumber, second.CheckNumber)
	assert.Len(t, second.Items, 1)

	shops, err := s.GetShops(ctx)
	require.NoError(t, err)
	assert.Len(t, shops, 1)
}

func TestApplyBatch_AssignsCheckNumbersPerMonth(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()

	mkCheck := func(id, date string) models.Mutation {
		return checkMutation(models.ActionCreate, models.Check{
			ID:     id,
			Date:   date,
			ShopID: "shop-1",
			Items:  []models.CheckItem{testItem("Milk", "2.50", "1")},
		})
	}

	_, err := s.ApplyBatch(ctx, []models.Mutation{
		shopMutation(models.ActionCreate, "shop-1", "Market"),
		mkCheck("check-1", "2025-07-15"),
		mkCheck("check-2", "2025-07-20"),
		mkCheck("check-3", "2025-08-01"),
	})
	require.NoError(t, err)

	c1, err := s.GetCheck(ctx, "check-1")
	require.NoError(t, err)
	c2, err := s.GetCheck(ctx, "check-2")
	require.NoError(t, err)
	c3, err := s.GetCheck(ctx, "check-3")
	require.NoError(t, err)

	// Нумерация сквозная внутри месяца и начинается заново в новом
	assert.Equal(t, 1, c1.CheckNumber)
	assert.Equal(t, 2, c2.CheckNumber)
	assert.Equal(t, 1, c3.CheckNumber)
}

func TestApplyBatch_DeleteCheck(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()

	check := models.Check{
		ID:     "check-1",
		Date:   "2025-07-15",
		ShopID: "shop-1",
		Items:  []models.CheckItem{testItem("Milk", "2.50", "1")},
	}

	_, err := s.ApplyBatch(ctx, []models.Mutation{
		shopMutation(models.ActionCreate, "shop-1", "Market"),
		checkMutation(models.ActionCreate, check),
	})
	require.NoError(t, err)

	_, err = s.ApplyBatch(ctx, []models.Mutation{
		{
			EntityType: models.EntityCheck,
			Action:     models.ActionDelete,
			Check:      &models.Check{ID: "check-1"},
			Timestamp:  time.Now(),
		},
	})
	require.NoError(t, err)

	_, err = s.GetCheck(ctx, "check-1")
	assert.ErrorIs(t, err, storage.ErrCheckNotFound)
}

func TestApplyBatch_UpdateShopName(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()

	_, err := s.ApplyBatch(ctx, []models.Mutation{
		shopMutation(models.ActionCreate, "shop-1", "Market"),
	})
	require.NoError(t, err)

	_, err = s.ApplyBatch(ctx, []models.Mutation{
		shopMutation(models.ActionUpdate, "shop-1", "Central Market"),
	})
	require.NoError(t, err)

	shops, err := s.GetShops(ctx)
	require.NoError(t, err)
	require.Len(t, shops, 1)
	assert.Equal(t, "Central Market", shops[0].Name)
}

func TestApplyBatch_BadDate(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()

	_, err := s.ApplyBatch(ctx, []models.Mutation{
		shopMutation(models.ActionCreate, "shop-1", "Market"),
		checkMutation(models.ActionCreate, models.Check{
			ID:     "check-1",
			Date:   "15.07.2025",
			ShopID: "shop-1",
		}),
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, storage.ErrInvalidMutation)
}

func TestGetShops_SortedByName(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()

	_, err := s.ApplyBatch(ctx, []models.Mutation{
		shopMutation(models.ActionCreate, "shop-1", "Pharmacy"),
		shopMutation(models.ActionCreate, "shop-2", "Bakery"),
		shopMutation(models.ActionCreate, "shop-3", "Market"),
	})
	require.NoError(t, err)

	shops, err := s.GetShops(ctx)
	require.NoError(t, err)
	require.Len(t, shops, 3)
	assert.Equal(t, "Bakery", shops[0].Name)
	assert.Equal(t, "Market", shops[1].Name)
	assert.Equal(t, "Pharmacy", shops[2].Name)
}
