package store

import (
	"errors"
)

// Common errors
var (
	ErrInternal          = errors.New("internal error")
	ErrStorageCorrupt    = errors.New("storage corrupt")
	ErrPromotionNotFound = errors.New("promotion not found")
)
