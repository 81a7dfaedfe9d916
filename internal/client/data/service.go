// Package data implements the client-side ledger service: shop and
// check CRUD over the on-device store. Every local mutation is written
// to the ledger synchronously and enqueued for synchronization; read
// failures degrade to empty collections so the UI keeps functioning
// offline.
package data

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"checkbook/internal/client/storage"
	"checkbook/internal/models"
)

// MutationSink принимает мутации для последующей синхронизации
type MutationSink interface {
	Enqueue(ctx context.Context, m models.Mutation) error
}

// Service handles client-side ledger operations
type Service struct {
	ledger storage.LedgerStorage
	sink   MutationSink
	logger *slog.Logger
	now    func() time.Time
	notify func()
}

// NewService creates a new ledger service
func NewService(ledger storage.LedgerStorage, sink MutationSink, logger *slog.Logger) *Service {
	return &Service{
		ledger: ledger,
		sink:   sink,
		logger: logger,
		now:    time.Now,
	}
}

// ListShops returns the local shop collection
func (s *Service) ListShops(ctx context.Context) []models.Shop {
	return s.loadShops(ctx)
}

// AddShop creates a new shop locally and queues it for sync
func (s *Service) AddShop(ctx context.Context, name string) (models.Shop, error) {
	if name == "" {
		return models.Shop{}, fmt.Errorf("shop name is required")
	}

	shops := s.loadShops(ctx)

	shop := models.Shop{
		ID:   uuid.New().String(),
		Name: name,
	}
	shops = append(shops, shop)

	if err := s.ledger.SaveShops(ctx, shops); err != nil {
		return models.Shop{}, fmt.Errorf("failed to save shops: %w", err)
	}

	if err := s.enqueue(ctx, models.Mutation{
		EntityType: models.EntityShop,
		Action:     models.ActionCreate,
		Shop:       &shop,
	}); err != nil {
		return models.Shop{}, err
	}

	return shop, nil
}

// CreateOrUpdateShop writes the shop locally, creating or replacing it,
// and queues the matching mutation
func (s *Service) CreateOrUpdateShop(ctx context.Context, shop models.Shop) (models.Shop, error) {
	if shop.ID == "" || shop.Name == "" {
		return models.Shop{}, fmt.Errorf("shop id and name are required")
	}

	shops := s.loadShops(ctx)

	action := models.ActionCreate
	found := false
	for i := range shops {
		if shops[i].ID == shop.ID {
			shops[i] = shop
			action = models.ActionUpdate
			found = true
			break
		}
	}
	if !found {
		shops = append(shops, shop)
	}

	if err := s.ledger.SaveShops(ctx, shops); err != nil {
		return models.Shop{}, fmt.Errorf("failed to save shops: %w", err)
	}

	if err := s.enqueue(ctx, models.Mutation{
		EntityType: models.EntityShop,
		Action:     action,
		Shop:       &shop,
	}); err != nil {
		return models.Shop{}, err
	}

	return shop, nil
}

// ListChecks returns the check collection for one month
func (s *Service) ListChecks(ctx context.Context, m storage.Month) []models.Check {
	return s.loadChecks(ctx, m)
}

// GetCheck returns one check from the month collection
func (s *Service) GetCheck(ctx context.Context, m storage.Month, checkID string) (models.Check, error) {
	for _, check := range s.loadChecks(ctx, m) {
		if check.ID == checkID {
			return check, nil
		}
	}
	return models.Check{}, storage.ErrCheckNotFound
}

// AddCheck creates a new check locally and queues it for sync.
// Номер чека назначается той стороной, которая создала запись первой:
// здесь — следующий порядковый номер внутри месяца. Имя магазина
// денормализуется в чек на момент создания.
func (s *Service) AddCheck(ctx context.Context, m storage.Month, date, shopID string, items []models.CheckItem) (models.Check, error) {
	shop, err := s.findShop(ctx, shopID)
	if err != nil {
		return models.Check{}, err
	}

	checks := s.loadChecks(ctx, m)

	check := models.Check{
		ID:          uuid.New().String(),
		CheckNumber: len(checks) + 1,
		Date:        date,
		ShopID:      shop.ID,
		ShopName:    shop.Name,
	}
	check.ReplaceItems(items)

	checks = append(checks, check)
	if err := s.ledger.SaveChecks(ctx, m, checks); err != nil {
		return models.Check{}, fmt.Errorf("failed to save checks: %w", err)
	}

	if err := s.enqueue(ctx, models.Mutation{
		EntityType: models.EntityCheck,
		Action:     models.ActionCreate,
		Check:      check.Clone(),
	}); err != nil {
		return models.Check{}, err
	}

	return check, nil
}

// UpdateCheck fully replaces the items of an existing check and
// recomputes its totals
func (s *Service) UpdateCheck(ctx context.Context, m storage.Month, checkID string, items []models.CheckItem) (models.Check, error) {
	checks := s.loadChecks(ctx, m)

	idx := -1
	for i := range checks {
		if checks[i].ID == checkID {
			idx = i
			break
		}
	}
	if idx == -1 {
		return models.Check{}, storage.ErrCheckNotFound
	}

	checks[idx].ReplaceItems(items)

	if err := s.ledger.SaveChecks(ctx, m, checks); err != nil {
		return models.Check{}, fmt.Errorf("failed to save checks: %w", err)
	}

	if err := s.enqueue(ctx, models.Mutation{
		EntityType: models.EntityCheck,
		Action:     models.ActionUpdate,
		Check:      checks[idx].Clone(),
	}); err != nil {
		return models.Check{}, err
	}

	return checks[idx], nil
}

// DeleteCheck removes a check from the month collection and queues the
// deletion
func (s *Service) DeleteCheck(ctx context.Context, m storage.Month, checkID string) error {
	checks := s.loadChecks(ctx, m)

	idx := -1
	for i := range checks {
		if checks[i].ID == checkID {
			idx = i
			break
		}
	}
	if idx == -1 {
		return storage.ErrCheckNotFound
	}

	deleted := checks[idx].Clone()
	checks = append(checks[:idx], checks[idx+1:]...)

	if err := s.ledger.SaveChecks(ctx, m, checks); err != nil {
		return fmt.Errorf("failed to save checks: %w", err)
	}

	return s.enqueue(ctx, models.Mutation{
		EntityType: models.EntityCheck,
		Action:     models.ActionDelete,
		Check:      deleted,
	})
}

// AvailableMonths returns every month with stored checks, newest first
func (s *Service) AvailableMonths(ctx context.Context) []storage.Month {
	months, err := s.ledger.Months(ctx)
	if err != nil {
		s.logger.Warn("Failed to list months, falling back to empty", "error", err)
		return nil
	}
	return months
}

// MonthTotal returns the sum of all check totals for one month
func (s *Service) MonthTotal(ctx context.Context, m storage.Month) decimal.Decimal {
	total := decimal.Zero
	for _, check := range s.loadChecks(ctx, m) {
		total = total.Add(check.Total)
	}
	return total
}

// findShop ищет магазин в локальной коллекции
func (s *Service) findShop(ctx context.Context, shopID string) (models.Shop, error) {
	for _, shop := range s.loadShops(ctx) {
		if shop.ID == shopID {
			return shop, nil
		}
	}
	return models.Shop{}, storage.ErrShopNotFound
}

// loadShops читает коллекцию магазинов, деградируя к пустой при
// недоступном хранилище
func (s *Service) loadShops(ctx context.Context) []models.Shop {
	shops, err := s.ledger.GetShops(ctx)
	if err != nil {
		if !errors.Is(err, storage.ErrStorageUnavailable) {
			s.logger.Error("Unexpected shops read error", "error", err)
		} else {
			s.logger.Warn("Shops unreadable, falling back to empty", "error", err)
		}
		return nil
	}
	return shops
}

// loadChecks читает коллекцию чеков месяца с той же деградацией
func (s *Service) loadChecks(ctx context.Context, m storage.Month) []models.Check {
	checks, err := s.ledger.GetChecks(ctx, m)
	if err != nil {
		if !errors.Is(err, storage.ErrStorageUnavailable) {
			s.logger.Error("Unexpected checks read error", "error", err)
		} else {
			s.logger.Warn("Checks unreadable, falling back to empty", "error", err, "year", m.Year, "month", m.Month)
		}
		return nil
	}
	return checks
}

// OnMutation registers a callback invoked after every successfully
// queued mutation. Онлайн клиент начинает отправку сразу, не дожидаясь
// следующего probe.
func (s *Service) OnMutation(fn func()) {
	s.notify = fn
}

// enqueue ставит мутацию в очередь синхронизации с текущим timestamp
func (s *Service) enqueue(ctx context.Context, m models.Mutation) error {
	m.Timestamp = s.now()
	if err := s.sink.Enqueue(ctx, m); err != nil {
		return fmt.Errorf("failed to enqueue mutation: %w", err)
	}
	if s.notify != nil {
		s.notify()
	}
	return nil
}
