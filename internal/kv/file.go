package kv

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// File is a Backend keeping every key in one JSON document on disk. Each
// write rewrites the document through a temp file and rename, so a crash
// leaves either the old or the new document in place.
type File struct {
	path string
	mu   sync.Mutex
	data map[string]json.RawMessage
}

// NewFile opens (or prepares to create) the document at path.
func NewFile(path string) (*File, error) {
	f := &File{
		path: path,
		data: make(map[string]json.RawMessage),
	}

	raw, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return f, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read store file: %w", err)
	}
	if len(raw) == 0 {
		return f, nil
	}
	if err := json.Unmarshal(raw, &f.data); err != nil {
		return nil, fmt.Errorf("store file %s is corrupt: %w", path, err)
	}
	return f, nil
}

func (f *File) Get(_ context.Context, key string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	v, ok := f.data[key]
	if !ok {
		return nil, ErrNotFound
	}
	return append([]byte(nil), v...), nil
}

func (f *File) Set(ctx context.Context, key string, value []byte) error {
	return f.SetMany(ctx, map[string][]byte{key: value})
}

func (f *File) SetMany(_ context.Context, entries map[string][]byte) error {
	for k, v := range entries {
		if !json.Valid(v) {
			return fmt.Errorf("value for %q is not valid JSON", k)
		}
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	next := make(map[string]json.RawMessage, len(f.data)+len(entries))
	for k, v := range f.data {
		next[k] = v
	}
	for k, v := range entries {
		next[k] = append(json.RawMessage(nil), v...)
	}

	if err := f.flush(next); err != nil {
		return err
	}
	f.data = next
	return nil
}

func (f *File) flush(doc map[string]json.RawMessage) error {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode store file: %w", err)
	}

	dir := filepath.Dir(f.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create store directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(f.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Rename(tmpName, f.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to replace store file: %w", err)
	}
	return nil
}
