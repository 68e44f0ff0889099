package storage

import (
	"bytes"
	"context"
	"io"
	"sort"
	"sync"
	"time"
)

// MemoryStore is an in-process Store for development and tests.
type MemoryStore struct {
	mu    sync.Mutex
	blobs map[string]memBlob
	now   func() time.Time
}

type memBlob struct {
	data    []byte
	modTime time.Time
}

var _ Store = (*MemoryStore)(nil)

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{blobs: make(map[string]memBlob), now: time.Now}
}

func (s *MemoryStore) Put(_ context.Context, p string, data []byte, _ string) error {
	key, err := CleanPath(p)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.blobs[key] = memBlob{data: append([]byte(nil), data...), modTime: s.now()}
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, p string) error {
	key, err := CleanPath(p)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.blobs, key)
	return nil
}

func (s *MemoryStore) Exists(_ context.Context, p string) (bool, error) {
	key, err := CleanPath(p)
	if err != nil {
		return false, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.blobs[key]
	return ok, nil
}

func (s *MemoryStore) Open(_ context.Context, p string) (io.ReadCloser, error) {
	key, err := CleanPath(p)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.blobs[key]
	if !ok {
		return nil, ErrNotExist
	}
	return io.NopCloser(bytes.NewReader(b.data)), nil
}

func (s *MemoryStore) List(_ context.Context) ([]Object, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	objs := make([]Object, 0, len(s.blobs))
	for k, b := range s.blobs {
		objs = append(objs, Object{Path: k, Size: int64(len(b.data)), ModTime: b.modTime})
	}
	sort.Slice(objs, func(i, j int) bool { return objs[i].Path < objs[j].Path })
	return objs, nil
}

// Len returns the number of stored blobs.
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.blobs)
}

// SetClock overrides the modification time source.
func (s *MemoryStore) SetClock(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
}
