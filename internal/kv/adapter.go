package kv

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/rs/zerolog"
)

// Adapter wraps a Backend with JSON (de)serialization. It never returns
// storage errors: failed reads yield the caller's default and failed writes
// are logged and dropped. A nil backend models an environment without
// storage, where reads return defaults and writes do nothing.
type Adapter struct {
	backend Backend
	log     zerolog.Logger
}

// NewAdapter creates an Adapter over backend, which may be nil.
func NewAdapter(backend Backend, log zerolog.Logger) *Adapter {
	return &Adapter{
		backend: backend,
		log:     log.With().Str("component", "kv").Logger(),
	}
}

// Available reports whether a backend is attached.
func (a *Adapter) Available() bool {
	return a != nil && a.backend != nil
}

// Read decodes the value stored under key into a T. Missing keys and
// undecodable values return def.
func Read[T any](ctx context.Context, a *Adapter, key string, def T) T {
	if !a.Available() {
		return def
	}

	raw, err := a.backend.Get(ctx, key)
	if errors.Is(err, ErrNotFound) {
		return def
	}
	if err != nil {
		a.log.Warn().Err(err).Str("key", key).Msg("Storage read failed, using default")
		return def
	}

	var out T
	if err := json.Unmarshal(raw, &out); err != nil {
		a.log.Warn().Err(err).Str("key", key).Msg("Stored value is not valid JSON, using default")
		return def
	}
	return out
}

// Write encodes value and stores it under key. The result only reports
// whether the value reached the backend; callers must not depend on it.
func (a *Adapter) Write(ctx context.Context, key string, value any) bool {
	if !a.Available() {
		return false
	}

	data, err := json.Marshal(value)
	if err != nil {
		a.log.Warn().Err(err).Str("key", key).Msg("Failed to encode value, write dropped")
		return false
	}

	if err := a.backend.Set(ctx, key, data); err != nil {
		a.log.Warn().Err(err).Str("key", key).Int("bytes", len(data)).Msg("Storage write failed, write dropped")
		return false
	}
	return true
}

// WriteMany encodes every value and stores them in a single backend write.
// If any value fails to encode nothing is written.
func (a *Adapter) WriteMany(ctx context.Context, values map[string]any) bool {
	if !a.Available() || len(values) == 0 {
		return false
	}

	entries := make(map[string][]byte, len(values))
	for key, value := range values {
		data, err := json.Marshal(value)
		if err != nil {
			a.log.Warn().Err(err).Str("key", key).Msg("Failed to encode value, batch write dropped")
			return false
		}
		entries[key] = data
	}

	if err := a.backend.SetMany(ctx, entries); err != nil {
		keys := make([]string, 0, len(entries))
		for k := range entries {
			keys = append(keys, k)
		}
		a.log.Warn().Err(err).Strs("keys", keys).Msg("Storage batch write failed, write dropped")
		return false
	}
	return true
}
