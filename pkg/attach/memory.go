package attach

import (
	"context"
	"sync"
	"time"

	"github.com/rs/xid"
)

// MemoryStore keeps attachments in process memory. It is the default
// backend: single-node, no persistence across restarts.
type MemoryStore struct {
	mu      sync.Mutex
	blobs   map[string]*Attachment
	maxSize int64
	now     func() time.Time
}

// NewMemoryStore creates an in-memory store. maxSize bounds a single
// blob; 0 means no limit.
func NewMemoryStore(maxSize int64) *MemoryStore {
	return &MemoryStore{
		blobs:   make(map[string]*Attachment),
		maxSize: maxSize,
		now:     time.Now,
	}
}

// Save implements Store.
func (s *MemoryStore) Save(ctx context.Context, name string, data []byte) (string, error) {
	if s.maxSize > 0 && int64(len(data)) > s.maxSize {
		return "", ErrTooLarge
	}

	id := xid.New().String()
	stored := make([]byte, len(data))
	copy(stored, data)

	s.mu.Lock()
	s.blobs[id] = &Attachment{
		ID:      id,
		Name:    name,
		Data:    stored,
		SavedAt: s.now(),
	}
	s.mu.Unlock()

	return id, nil
}

// Fetch implements Store.
func (s *MemoryStore) Fetch(ctx context.Context, id string) (*Attachment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, ok := s.blobs[id]
	if !ok {
		return nil, ErrNotFound
	}
	return a, nil
}

// Cleanup implements Store.
func (s *MemoryStore) Cleanup(ctx context.Context, maxAge time.Duration) error {
	cutoff := s.now().Add(-maxAge)

	s.mu.Lock()
	for id, a := range s.blobs {
		if a.SavedAt.Before(cutoff) {
			delete(s.blobs, id)
		}
	}
	s.mu.Unlock()

	return nil
}

// Len returns the number of stored blobs.
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.blobs)
}
