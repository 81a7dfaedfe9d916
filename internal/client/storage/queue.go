package storage

import (
	"context"

	"checkbook/internal/models"
)

// QueueStorage persists the pending-mutation queue as a single record.
// After every mutation the persisted copy must match the in-memory
// queue exactly; the queue package relies on that invariant.
type QueueStorage interface {
	// SaveQueue overwrites the persisted queue
	SaveQueue(ctx context.Context, mutations []models.Mutation) error

	// GetQueue returns the persisted queue.
	// An absent record reads as an empty queue.
	GetQueue(ctx context.Context) ([]models.Mutation, error)
}
