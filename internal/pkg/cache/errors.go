package cache

import "github.com/pkg/errors"

// ErrNotFound is returned when the key is not found in the cache.
var ErrNotFound = errors.New("cache: not found")
