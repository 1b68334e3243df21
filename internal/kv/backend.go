// Package kv is the persistence adapter: JSON values stored under named keys
// in a pluggable key-value backend.
package kv

import (
	"context"
	"errors"
)

// ErrNotFound is returned by backends when a key holds no value.
var ErrNotFound = errors.New("kv: key not found")

// Backend defines the raw key-value operations a store must provide
type Backend interface {
	// Get returns the stored bytes or ErrNotFound.
	Get(ctx context.Context, key string) ([]byte, error)
	// Set stores value under key, replacing any previous value.
	Set(ctx context.Context, key string, value []byte) error
	// SetMany stores every entry in one write. Backends apply it
	// all-or-nothing.
	SetMany(ctx context.Context, entries map[string][]byte) error
}
