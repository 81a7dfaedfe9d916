package storage

import (
	"context"

	"checkbook/internal/models"
)

// DataStorage defines interface for server-of-record persistence
type DataStorage interface {
	// ApplyBatch applies a client mutation batch in one transaction.
	// Either every mutation is applied or none is: the first failing
	// mutation rolls the whole batch back. Returns the number of
	// applied mutations on success.
	// A check referencing an unknown shop fails the batch with an
	// error wrapping ErrShopNotFound, unless the same batch creates
	// the shop in an earlier mutation.
	ApplyBatch(ctx context.Context, mutations []models.Mutation) (int, error)

	// GetShops retrieves the full shop reference collection,
	// ordered by name. Returns empty slice if no shops exist.
	GetShops(ctx context.Context) ([]models.Shop, error)

	// GetCheck retrieves a single check with its items by ID.
	// Returns ErrCheckNotFound if the check doesn't exist.
	GetCheck(ctx context.Context, id string) (*models.Check, error)
}
