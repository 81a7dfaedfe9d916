package storage

import "errors"

// Common client storage errors
var (
	// ErrStorageUnavailable indicates that the on-device store failed to
	// read or write. Callers degrade to empty collections instead of
	// crashing the UI.
	ErrStorageUnavailable = errors.New("local storage unavailable")

	// ErrStorageClosed indicates that storage is closed
	ErrStorageClosed = errors.New("storage is closed")

	// ErrShopNotFound indicates that shop was not found locally
	ErrShopNotFound = errors.New("shop not found")

	// ErrCheckNotFound indicates that check was not found locally
	ErrCheckNotFound = errors.New("check not found")
)
