package cache

import (
	"sync"
	"time"
)

// Slot is a single-entry content-addressed cache. Storing under a new key evicts
// the previous entry unconditionally.
//
// Slot also remembers the most recently observed key, whether or not a value was
// ever stored for it.
type Slot struct {
	mu       sync.Mutex
	lastSeen string
	key      string
	value    []byte
	filled   bool
}

// NewSlot creates an empty slot
func NewSlot() *Slot {
	return &Slot{}
}

// Observe records key as the most recently seen one and reports whether it
// differs from the previous observation.
func (s *Slot) Observe(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	changed := key != s.lastSeen
	s.lastSeen = key
	return changed
}

// LastSeen returns the most recently observed key
func (s *Slot) LastSeen() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSeen
}

// Get returns the stored value when key matches the stored key
func (s *Slot) Get(key string) ([]byte, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.filled || s.key != key {
		return nil, false
	}
	return s.value, true
}

// Store replaces the slot content
func (s *Slot) Store(key string, value []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.key = key
	s.value = value
	s.filled = true
}

// Set implements Cache. ttl is ignored; entries live until evicted.
func (s *Slot) Set(key string, value []byte, _ time.Duration) error {
	s.Store(key, value)
	return nil
}

// Value returns the stored value regardless of key
func (s *Slot) Value() ([]byte, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.value, s.filled
}

// Delete empties the slot if it holds key
func (s *Slot) Delete(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.key == key {
		s.key, s.value, s.filled = "", nil, false
	}
	return nil
}

// Clear empties the slot and forgets the last observed key
func (s *Slot) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.key, s.value, s.filled, s.lastSeen = "", nil, false, ""
	return nil
}

var _ Cache = (*Slot)(nil)
