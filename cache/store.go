package cache

import (
	"sync"
	"time"
)

// entry is a cached value with the time it was stored
type entry[T any] struct {
	Data      T
	Timestamp time.Time
}

// store is a TTL keyed map safe for concurrent use
type store[T any] struct {
	data  map[string]entry[T]
	mutex sync.RWMutex
	now   func() time.Time
}

func newStore[T any](now func() time.Time) *store[T] {
	return &store[T]{
		data: make(map[string]entry[T]),
		now:  now,
	}
}

// get returns the value for key if it is younger than ttl, along with its age
func (s *store[T]) get(key string, ttl time.Duration) (T, time.Duration, bool) {
	s.mutex.RLock()
	e, found := s.data[key]
	s.mutex.RUnlock()

	var zero T
	if !found {
		return zero, 0, false
	}

	age := s.now().Sub(e.Timestamp)
	if age >= ttl {
		return zero, age, false
	}
	return e.Data, age, true
}

func (s *store[T]) put(key string, data T) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	s.data[key] = entry[T]{
		Data:      data,
		Timestamp: s.now(),
	}
}

// prune removes entries older than maxAge and returns how many were removed
func (s *store[T]) prune(maxAge time.Duration) int {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	cutoff := s.now().Add(-maxAge)
	pruned := 0
	for key, e := range s.data {
		if !e.Timestamp.After(cutoff) {
			delete(s.data, key)
			pruned++
		}
	}
	return pruned
}

func (s *store[T]) len() int {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return len(s.data)
}
