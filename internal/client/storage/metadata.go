package storage

import (
	"context"
	"time"
)

// MetadataStorage defines interface for storing client sync metadata
type MetadataStorage interface {
	// SaveLastShopPull saves the time of the last successful reference pull
	SaveLastShopPull(ctx context.Context, t time.Time) error

	// GetLastShopPull retrieves the time of the last successful reference
	// pull. Returns the zero time if no pull has been performed yet.
	GetLastShopPull(ctx context.Context) (time.Time, error)
}
