// internal/store/store.go
//
// Persistence for player data.
// The game keeps small JSON documents (solved words per player, preferences
// per browser), so storage is a plain key/value interface with two
// implementations: an in-memory map (guests, tests) and SQLite.
//
// Keys:
//   solved/<username>  → JSON array of solved word keys
//   prefs/<owner>      → JSON object {"selectedCategory": "..."}

package store

import (
	"context"
	"errors"
)

// ErrNotFound is returned by Get for a missing key.
var ErrNotFound = errors.New("not found")

// Store defines the persistence interface for player documents.
// Implementations may be backed by memory (this package), SQLite, etc.
// Writes overwrite: the last Put for a key wins.
type Store interface {
	// Get returns the value stored under key, or ErrNotFound.
	Get(ctx context.Context, key string) ([]byte, error)

	// Put creates or replaces the value under key.
	Put(ctx context.Context, key string, value []byte) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Keys lists every key starting with prefix, sorted.
	Keys(ctx context.Context, prefix string) ([]string, error)
}
