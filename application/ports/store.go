package ports

import "context"

// KeyValueStore is the opaque string store backing persistence.
// Get reports found=false for an absent key.
type KeyValueStore interface {
	Get(ctx context.Context, key string) (value string, found bool, err error)
	Set(ctx context.Context, key, value string) error
}
