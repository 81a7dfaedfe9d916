// Package syncer implements the reconciler: it drains the pending
// mutation queue against the server with exponential-backoff retry and
// periodically pulls server-authoritative reference data (shops) into
// the local ledger.
package syncer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sethvargo/go-retry"

	httpclient "checkbook/internal/client/api"
	"checkbook/internal/client/netmon"
	"checkbook/internal/client/storage"
	"checkbook/internal/models"
	"checkbook/pkg/api"
)

// ErrOffline reports that a user-initiated sync was invoked while the
// server is unreachable. Проверяется синхронно в момент вызова, а не по
// кэшированному флагу монитора.
var ErrOffline = errors.New("device is offline")

// Queue определяет операции очереди, нужные реконсайлеру
type Queue interface {
	// Snapshot returns the pending batch for one drain cycle
	Snapshot() []models.Mutation

	// Ack removes the first n mutations after server confirmation
	Ack(ctx context.Context, n int) error

	// Len returns the number of pending mutations at call time
	Len() int
}

// Config holds the reconciler tuning knobs. Значения по умолчанию — в
// DefaultConfig; тесты уменьшают BackoffBase, чтобы не ждать реальных
// задержек.
type Config struct {
	MaxRetries      uint64        // максимум повторов после первой попытки
	BackoffBase     time.Duration // задержка растёт как base × 2^attempt
	BackoffCap      time.Duration // потолок задержки
	PullMinInterval time.Duration // минимальный интервал между pull справочника
}

// DefaultConfig returns the production reconciler settings
func DefaultConfig() Config {
	return Config{
		MaxRetries:      3,
		BackoffBase:     time.Second,
		BackoffCap:      30 * time.Second,
		PullMinInterval: 5 * time.Minute,
	}
}

// Service is the sync facade: the single entry point the UI layer uses
// to force a sync or observe sync state. Создаётся явно и передаётся в
// UI слой при старте; никакого глобального singleton.
type Service struct {
	api     httpclient.ClientAPI
	queue   Queue
	ledger  storage.LedgerStorage
	meta    storage.MetadataStorage
	monitor *netmon.Monitor
	cfg     Config
	logger  *slog.Logger
	now     func() time.Time

	// syncing гарантирует не больше одной синхронизации в полёте;
	// конкурентный триггер во время SYNCING — no-op
	syncing atomic.Bool
}

// NewService creates a new sync service
func NewService(
	apiClient httpclient.ClientAPI,
	q Queue,
	ledger storage.LedgerStorage,
	meta storage.MetadataStorage,
	monitor *netmon.Monitor,
	cfg Config,
	logger *slog.Logger,
) *Service {
	return &Service{
		api:     apiClient,
		queue:   q,
		ledger:  ledger,
		meta:    meta,
		monitor: monitor,
		cfg:     cfg,
		logger:  logger,
		now:     time.Now,
	}
}

// Start attaches the reconciler to the connectivity monitor and begins
// probing. Drain и pull — независимые триггеры; монитор дёргает их на
// переходе offline→online и на каждом успешном probe, так что batch
// после исчерпанных retry и pull по интервалу повторяются без
// дополнительных таймеров.
func (s *Service) Start(ctx context.Context) {
	s.monitor.OnOnline(func() {
		if err := s.Drain(ctx); err != nil {
			// Фоновые ошибки только логируем, UI их не видит
			s.logger.Error("Background drain failed", "error", err)
		}
	})
	s.monitor.OnOnline(func() {
		if err := s.PullShops(ctx, false); err != nil {
			s.logger.Error("Background shop pull failed", "error", err)
		}
	})
	s.monitor.Start(ctx)
}

// Stop detaches connectivity listeners
func (s *Service) Stop() {
	s.monitor.Stop()
}

// NudgeDrain запускает фоновую отправку очереди, если клиент online.
// Вызывается после каждой новой мутации; offline — no-op, отправку
// подхватит ближайший успешный probe.
func (s *Service) NudgeDrain(ctx context.Context) {
	if !s.Online() {
		return
	}
	go func() {
		if err := s.Drain(ctx); err != nil {
			s.logger.Warn("Drain after mutation failed", "error", err)
		}
	}()
}

// Online reports the last observed connectivity state
func (s *Service) Online() bool {
	return s.monitor.Online()
}

// PendingCount returns the queue length at call time
func (s *Service) PendingCount() int {
	return s.queue.Len()
}

// Drain sends the entire pending batch to the server as one atomic
// request. Успех очищает ровно тот batch, что был снят snapshot'ом;
// любая неудача оставляет очередь нетронутой целиком.
func (s *Service) Drain(ctx context.Context) error {
	if !s.syncing.CompareAndSwap(false, true) {
		// Синхронизация уже идёт
		return nil
	}
	defer s.syncing.Store(false)

	batch := s.queue.Snapshot()
	if len(batch) == 0 {
		return nil
	}

	req := api.SyncRequest{
		Mutations: make([]api.Mutation, len(batch)),
	}
	for i, m := range batch {
		req.Mutations[i] = models.MutationToAPI(m)
	}

	backoff := retry.WithMaxRetries(s.cfg.MaxRetries,
		retry.WithCappedDuration(s.cfg.BackoffCap,
			retry.NewExponential(s.cfg.BackoffBase)))

	attempt := 0
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		attempt++
		if _, err := s.api.Sync(ctx, req); err != nil {
			s.logger.Warn("Batch sync attempt failed",
				"attempt", attempt,
				"batch_size", len(batch),
				"error", err)
			return retry.RetryableError(err)
		}
		return nil
	})
	if err != nil {
		// Повторы исчерпаны: batch остаётся в очереди и будет отправлен
		// заново следующим триггером
		return fmt.Errorf("batch sync failed: %w", err)
	}

	if err := s.queue.Ack(ctx, len(batch)); err != nil {
		return fmt.Errorf("failed to ack batch: %w", err)
	}

	s.logger.Info("Batch synced", "mutations", len(batch), "attempts", attempt)
	return nil
}

// PullShops fetches the server shop collection and merges it into the
// ledger. Для справочных данных побеждает сервер: отсутствующий или
// переименованный магазин перезаписывается серверной версией; локальные
// магазины, ещё не ушедшие на сервер, остаются на месте.
func (s *Service) PullShops(ctx context.Context, force bool) error {
	if !force {
		last, err := s.meta.GetLastShopPull(ctx)
		if err != nil {
			s.logger.Warn("Failed to read last shop pull time", "error", err)
		} else if !last.IsZero() && s.now().Sub(last) < s.cfg.PullMinInterval {
			return nil
		}
	}

	serverShops, err := s.api.GetShops(ctx)
	if err != nil {
		return fmt.Errorf("shop pull failed: %w", err)
	}

	local, err := s.ledger.GetShops(ctx)
	if err != nil {
		s.logger.Warn("Local shops unreadable, merging into empty", "error", err)
		local = nil
	}

	merged := make([]models.Shop, len(local))
	copy(merged, local)

	index := make(map[string]int, len(merged))
	for i, shop := range merged {
		index[shop.ID] = i
	}

	changed := false
	for _, apiShop := range serverShops {
		shop := models.ShopFromAPI(apiShop)
		if i, ok := index[shop.ID]; ok {
			if merged[i].Name != shop.Name {
				merged[i] = shop
				changed = true
			}
			continue
		}
		index[shop.ID] = len(merged)
		merged = append(merged, shop)
		changed = true
	}

	if changed {
		if err := s.ledger.SaveShops(ctx, merged); err != nil {
			return fmt.Errorf("failed to save pulled shops: %w", err)
		}
	}

	if err := s.meta.SaveLastShopPull(ctx, s.now()); err != nil {
		// Не прерываем pull из-за ошибки сохранения метаданных
		s.logger.Warn("Failed to save last shop pull time", "error", err)
	}

	s.logger.Info("Shop pull completed", "server_shops", len(serverShops), "merged", changed)
	return nil
}

// SyncNow is the user-initiated sync: a reference pull and a queue
// drain as independent concurrent operations. Fails as a whole when the
// device is offline, checked synchronously at invocation.
func (s *Service) SyncNow(ctx context.Context) error {
	if err := s.api.Ping(ctx); err != nil {
		return fmt.Errorf("%w: %v", ErrOffline, err)
	}

	var (
		wg       sync.WaitGroup
		pullErr  error
		drainErr error
	)

	wg.Add(2)
	go func() {
		defer wg.Done()
		pullErr = s.PullShops(ctx, true)
	}()
	go func() {
		defer wg.Done()
		drainErr = s.Drain(ctx)
	}()
	wg.Wait()

	return errors.Join(drainErr, pullErr)
}
