package storage

import "errors"

// Common storage errors
var (
	// ErrShopNotFound indicates that a referenced shop does not exist
	ErrShopNotFound = errors.New("shop not found")

	// ErrCheckNotFound indicates that a check was not found in storage
	ErrCheckNotFound = errors.New("check not found")

	// ErrInvalidMutation indicates a batch mutation that cannot be applied
	// (unknown entity type, missing payload, malformed date)
	ErrInvalidMutation = errors.New("invalid mutation")
)
