package cache

import (
	"context"
	"time"
)

// Entry is a stored HTTP response: status, content type and body are
// replayed verbatim on a hit.
type Entry struct {
	Status      int
	ContentType string
	Body        []byte
}

// Store defines a TTL key-value cache for responses of idempotent
// read endpoints.
type Store interface {
	Get(ctx context.Context, key string) (*Entry, bool)
	Set(ctx context.Context, key string, e *Entry, ttl time.Duration)
}
