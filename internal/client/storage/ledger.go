package storage

import (
	"context"

	"checkbook/internal/models"
)

// Month identifies a per-month check collection in the ledger.
type Month struct {
	Year  int
	Month int // 1-12
}

// LedgerStorage defines the on-device ledger: one durable record per
// reference collection and one per (year, month) check collection.
// Every write is a full overwrite of the affected collection and is
// durable before the call returns.
type LedgerStorage interface {
	// SaveShops overwrites the full shop collection
	SaveShops(ctx context.Context, shops []models.Shop) error

	// GetShops returns the full shop collection.
	// Returns ErrStorageUnavailable when the store cannot be read.
	GetShops(ctx context.Context) ([]models.Shop, error)

	// SaveChecks overwrites the check collection for one month
	SaveChecks(ctx context.Context, m Month, checks []models.Check) error

	// GetChecks returns the check collection for one month.
	// An absent record reads as an empty collection.
	GetChecks(ctx context.Context, m Month) ([]models.Check, error)

	// Months returns every month that has a stored check collection
	Months(ctx context.Context) ([]Month, error)
}
