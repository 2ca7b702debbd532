package cache

import "errors"

// ErrCacheMiss is returned by Get when the key does not exist or expired.
var ErrCacheMiss = errors.New("cache miss")
