package database

import "errors"

// ErrNotFound is returned when a requested cache entry does not exist
var ErrNotFound = errors.New("entry not found")
