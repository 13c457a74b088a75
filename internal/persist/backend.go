// Package persist is the key/value store standing in for the browser's local
// storage. Every tab of a storefront shares one Backend; values are opaque
// JSON documents owned by the stores that write them.
package persist

import (
	"context"
	"strings"
)

// Well-known record keys.
const (
	KeyCart          = "cart"
	KeySession       = "session"
	KeyUsers         = "users"
	KeySchemaVersion = "schema_version"
)

// Backend persists records by key. Get returns sentinel.ErrNotFound for an
// absent key; Delete of an absent key is not an error. Infrastructure
// failures are wrapped with sentinel.ErrUnavailable.
type Backend interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}

// ValidKey reports whether key is usable across every backend: non-empty,
// and free of path separators, whitespace and control characters.
func ValidKey(key string) bool {
	if key == "" || key == "." || key == ".." {
		return false
	}
	return !strings.ContainsFunc(key, func(r rune) bool {
		return r == '/' || r == '\\' || r <= ' ' || r == 0x7f
	})
}
