// Package queue implements the durable pending-mutation queue.
//
// Мутации воспроизводятся строго в порядке постановки, но внутри одного
// batch изменения магазинов уходят раньше изменений чеков: чек ссылается
// на магазин по id, и сервер должен суметь разрешить эту ссылку.
package queue

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"checkbook/internal/client/storage"
	"checkbook/internal/models"
)

// Queue is the ordered pending-mutation queue. The in-memory list and
// the persisted record are kept identical after every Enqueue and Ack;
// the only acceptable loss window is a crash between the in-memory
// append and the store write, bounded to a single mutation.
type Queue struct {
	mu      sync.Mutex
	store   storage.QueueStorage
	logger  *slog.Logger
	pending []models.Mutation
}

// New creates a queue and loads the persisted pending mutations.
// Если хранилище недоступно, очередь стартует пустой: оффлайн-работа
// важнее, чем потерянные ранее мутации.
func New(ctx context.Context, store storage.QueueStorage, logger *slog.Logger) (*Queue, error) {
	q := &Queue{
		store:  store,
		logger: logger,
	}

	pending, err := store.GetQueue(ctx)
	if err != nil {
		if !errors.Is(err, storage.ErrStorageUnavailable) {
			return nil, fmt.Errorf("failed to load queue: %w", err)
		}
		logger.Warn("Pending queue unreadable, starting empty", "error", err)
		pending = nil
	}
	q.pending = pending

	return q, nil
}

// Enqueue appends a mutation and persists the queue before returning.
// При ошибке записи мутация убирается из памяти, чтобы in-memory и
// persisted копии не разошлись.
func (q *Queue) Enqueue(ctx context.Context, m models.Mutation) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.pending = append(q.pending, m)

	if err := q.store.SaveQueue(ctx, q.pending); err != nil {
		q.pending = q.pending[:len(q.pending)-1]
		return fmt.Errorf("failed to persist queue: %w", err)
	}

	return nil
}

// Snapshot returns the current pending batch for one drain cycle.
// Shop mutations come first (stable within each group). The snapshot is
// a copy: mutations enqueued after the call are not part of it, and the
// batch covers exactly the first len(snapshot) queued mutations.
func (q *Queue) Snapshot() []models.Mutation {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.pending) == 0 {
		return nil
	}

	batch := make([]models.Mutation, 0, len(q.pending))
	for _, m := range q.pending {
		if m.EntityType == models.EntityShop {
			batch = append(batch, m)
		}
	}
	for _, m := range q.pending {
		if m.EntityType != models.EntityShop {
			batch = append(batch, m)
		}
	}

	return batch
}

// Ack removes the first n queued mutations after the server confirmed
// the whole batch, and persists the remainder. Мутации, поставленные в
// очередь после снятия snapshot, остаются нетронутыми.
func (q *Queue) Ack(ctx context.Context, n int) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if n <= 0 {
		return nil
	}
	if n > len(q.pending) {
		n = len(q.pending)
	}

	remaining := make([]models.Mutation, len(q.pending)-n)
	copy(remaining, q.pending[n:])

	if err := q.store.SaveQueue(ctx, remaining); err != nil {
		// Память не трогаем: подтверждённый batch будет отправлен
		// повторно, сервер обязан применять его идемпотентно
		return fmt.Errorf("failed to persist queue after ack: %w", err)
	}
	q.pending = remaining

	return nil
}

// Len returns the number of pending mutations at call time
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.pending)
}
