// Package kv defines the key-value store capability the wallet repository is
// built on. The host supplies whichever implementation it likes; the agent
// ships a sqlite-backed store for persistence and an in-memory store for
// tests.
package kv

import "context"

// Store is a minimal byte-valued key-value store. Get reports absence via the
// second return value rather than an error so callers can distinguish "not
// there" from "store broken".
type Store interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}
