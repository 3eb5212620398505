// Package blobstore provides key/value byte stores for the dashboard grid.
package blobstore

import (
	"context"
	"sync"

	"github.com/goliatone/go-aidash/components/dashboard"
)

// Memory keeps blobs in process memory.
type Memory struct {
	mu    sync.RWMutex
	blobs map[string][]byte
}

var _ dashboard.BlobStore = (*Memory)(nil)

// NewMemory returns an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{blobs: make(map[string][]byte)}
}

// Load returns a copy of the stored blob or dashboard.ErrBlobNotFound.
func (m *Memory) Load(_ context.Context, key string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	blob, ok := m.blobs[key]
	if !ok {
		return nil, dashboard.ErrBlobNotFound
	}
	return append([]byte(nil), blob...), nil
}

// Save replaces the blob under key.
func (m *Memory) Save(_ context.Context, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.blobs[key] = append([]byte(nil), value...)
	return nil
}
