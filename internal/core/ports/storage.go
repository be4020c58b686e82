package ports

import "context"

// KeyValueStore is the persistent text storage the session store sits on.
//
// Set must apply all entries as one unit: a reader sees either none or all
// of them. Delete succeeds for keys that are already absent.
type KeyValueStore interface {
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, entries map[string]string) error
	Delete(ctx context.Context, keys ...string) error
}
