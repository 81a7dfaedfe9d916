package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"checkbook/internal/models"
	"checkbook/internal/server/storage"
)

// ApplyBatch applies a client mutation batch in one transaction.
// Either every mutation is applied or none is: the first failing
// mutation rolls the whole batch back.
func (s *Storage) ApplyBatch(ctx context.Context, mutations []models.Mutation) (int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	// Rollback после Commit — no-op
	defer func() { _ = tx.Rollback() }()

	for i, m := range mutations {
		switch m.EntityType {
		case models.EntityShop:
			err = s.applyShop(ctx, tx, m)
		case models.EntityCheck:
			err = s.applyCheck(ctx, tx, m)
		default:
			err = fmt.Errorf("%w: unknown entity type %q", storage.ErrInvalidMutation, m.EntityType)
		}
		if err != nil {
			return 0, fmt.Errorf("mutation %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit batch: %w", err)
	}

	return len(mutations), nil
}

// applyShop применяет мутацию магазина внутри транзакции batch
func (s *Storage) applyShop(ctx context.Context, tx *sql.Tx, m models.Mutation) error {
	if m.Shop == nil && m.Action != models.ActionDelete {
		return fmt.Errorf("%w: shop mutation without payload", storage.ErrInvalidMutation)
	}

	now := time.Now().Unix()

	switch m.Action {
	case models.ActionCreate, models.ActionUpdate:
		// Повторная доставка того же магазина — обычное дело при
		// ретраях клиента, поэтому create и update оба работают как upsert
		query := `
			INSERT INTO shops (id, name, created_at, updated_at)
			VALUES (?, ?, ?, ?)
			ON CONFLICT (id) DO UPDATE SET
				name = excluded.name,
				updated_at = excluded.updated_at
		`
		if _, err := tx.ExecContext(ctx, query, m.Shop.ID, m.Shop.Name, now, now); err != nil {
			return fmt.Errorf("failed to upsert shop: %w", err)
		}
		return nil

	case models.ActionDelete:
		if _, err := tx.ExecContext(ctx, `DELETE FROM shops WHERE id = ?`, m.EntityID()); err != nil {
			return fmt.Errorf("failed to delete shop: %w", err)
		}
		return nil

	default:
		return fmt.Errorf("%w: unknown action %q", storage.ErrInvalidMutation, m.Action)
	}
}

// applyCheck применяет мутацию чека внутри транзакции batch
func (s *Storage) applyCheck(ctx context.Context, tx *sql.Tx, m models.Mutation) error {
	if m.Check == nil && m.Action != models.ActionDelete {
		return fmt.Errorf("%w: check mutation without payload", storage.ErrInvalidMutation)
	}

	if m.Action == models.ActionDelete {
		// Позиции удаляются каскадом
		if _, err := tx.ExecContext(ctx, `DELETE FROM checks WHERE id = ?`, m.EntityID()); err != nil {
			return fmt.Errorf("failed to delete check: %w", err)
		}
		return nil
	}

	check := m.Check.Clone()

	month, err := monthOf(check.Date)
	if err != nil {
		return err
	}

	// Магазин должен существовать к моменту применения мутации. Мутация
	// create магазина, пришедшая раньше в том же batch, уже видна
	// внутри транзакции.
	var one int
	err = tx.QueryRowContext(ctx, `SELECT 1 FROM shops WHERE id = ?`, check.ShopID).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%w: check %s references unknown shop %s",
			storage.ErrShopNotFound, check.ID, check.ShopID)
	}
	if err != nil {
		return fmt.Errorf("failed to check shop reference: %w", err)
	}

	// Сервер не доверяет присланным суммам и пересчитывает их сам
	check.ReplaceItems(check.Items)

	// Номер чека внутри месяца назначается сервером, если клиент его не
	// прислал. При повторной доставке существующий номер сохраняется.
	if check.CheckNumber == 0 {
		var existing sql.NullInt64
		err = tx.QueryRowContext(ctx,
			`SELECT check_number FROM checks WHERE id = ?`, check.ID).Scan(&existing)
		if err != nil && !errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("failed to query existing check: %w", err)
		}

		if existing.Valid {
			check.CheckNumber = int(existing.Int64)
		} else {
			var maxNum int
			err = tx.QueryRowContext(ctx,
				`SELECT COALESCE(MAX(check_number), 0) FROM checks WHERE month = ?`,
				month).Scan(&maxNum)
			if err != nil {
				return fmt.Errorf("failed to query max check number: %w", err)
			}
			check.CheckNumber = maxNum + 1
		}
	}

	now := time.Now().Unix()

	query := `
		INSERT INTO checks (id, check_number, date, month, shop_id, shop_name, total, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			check_number = excluded.check_number,
			date = excluded.date,
			month = excluded.month,
			shop_id = excluded.shop_id,
			shop_name = excluded.shop_name,
			total = excluded.total,
			updated_at = excluded.updated_at
	`
	_, err = tx.ExecContext(ctx, query,
		check.ID,
		check.CheckNumber,
		check.Date,
		month,
		check.ShopID,
		check.ShopName,
		check.Total.String(),
		now,
		now,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert check: %w", err)
	}

	// Позиции заменяются целиком, как и на клиенте
	if _, err := tx.ExecContext(ctx, `DELETE FROM check_items WHERE check_id = ?`, check.ID); err != nil {
		return fmt.Errorf("failed to clear check items: %w", err)
	}

	itemQuery := `
		INSERT INTO check_items (check_id, serial_number, product_name, price, count, unit, total)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`
	for _, item := range check.Items {
		_, err := tx.ExecContext(ctx, itemQuery,
			check.ID,
			item.SerialNumber,
			item.ProductName,
			item.Price.String(),
			item.Count.String(),
			string(item.Unit),
			item.Total.String(),
		)
		if err != nil {
			return fmt.Errorf("failed to insert check item: %w", err)
		}
	}

	return nil
}

// GetShops retrieves the full shop reference collection, ordered by name
func (s *Storage) GetShops(ctx context.Context) ([]models.Shop, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, name FROM shops ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("failed to query shops: %w", err)
	}
	defer func() { _ = rows.Close() }()

	shops := []models.Shop{}
	for rows.Next() {
		var shop models.Shop
		if err := rows.Scan(&shop.ID, &shop.Name); err != nil {
			return nil, fmt.Errorf("failed to scan shop: %w", err)
		}
		shops = append(shops, shop)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return shops, nil
}

// GetCheck retrieves a single check with its items by ID.
// Returns ErrCheckNotFound if the check doesn't exist.
func (s *Storage) GetCheck(ctx context.Context, id string) (*models.Check, error) {
	check := &models.Check{}
	var total string

	err := s.db.QueryRowContext(ctx,
		`SELECT id, check_number, date, shop_id, shop_name, total FROM checks WHERE id = ?`,
		id).Scan(&check.ID, &check.CheckNumber, &check.Date, &check.ShopID, &check.ShopName, &total)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, storage.ErrCheckNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get check: %w", err)
	}

	if check.Total, err = decimal.NewFromString(total); err != nil {
		return nil, fmt.Errorf("failed to parse check total: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT serial_number, product_name, price, count, unit, total
		FROM check_items
		WHERE check_id = ?
		ORDER BY serial_number ASC
	`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to query check items: %w", err)
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var item models.CheckItem
		var unit, price, count, itemTotal string

		err := rows.Scan(&item.SerialNumber, &item.ProductName, &price, &count, &unit, &itemTotal)
		if err != nil {
			return nil, fmt.Errorf("failed to scan check item: %w", err)
		}

		if item.Price, err = decimal.NewFromString(price); err != nil {
			return nil, fmt.Errorf("failed to parse item price: %w", err)
		}
		if item.Count, err = decimal.NewFromString(count); err != nil {
			return nil, fmt.Errorf("failed to parse item count: %w", err)
		}
		if item.Total, err = decimal.NewFromString(itemTotal); err != nil {
			return nil, fmt.Errorf("failed to parse item total: %w", err)
		}
		item.Unit = models.UnitOfMeasure(unit)

		check.Items = append(check.Items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return check, nil
}

// monthOf извлекает месяц YYYY-MM из даты чека YYYY-MM-DD
func monthOf(date string) (string, error) {
	if _, err := time.Parse("2006-01-02", date); err != nil {
		return "", fmt.Errorf("%w: bad check date %q", storage.ErrInvalidMutation, date)
	}
	return date[:7], nil
}
