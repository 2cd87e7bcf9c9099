package ecs

import (
	"sort"
	"sync"
)

// Store holds every component of type T keyed by entity.
// All methods are safe for concurrent use.
type Store[T any] struct {
	mu    sync.RWMutex
	items map[Entity]T
}

func newStore[T any]() *Store[T] {
	return &Store[T]{items: make(map[Entity]T)}
}

func (s *Store[T]) Get(e Entity) (T, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.items[e]
	return v, ok
}

func (s *Store[T]) Has(e Entity) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.items[e]
	return ok
}

func (s *Store[T]) Set(e Entity, v T) {
	s.mu.Lock()
	s.items[e] = v
	s.mu.Unlock()
}

// Remove reports whether a component was present.
func (s *Store[T]) Remove(e Entity) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.items[e]; !ok {
		return false
	}
	delete(s.items, e)
	return true
}

// Take returns the component and removes it in one step.
func (s *Store[T]) Take(e Entity) (T, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.items[e]
	if ok {
		delete(s.items, e)
	}
	return v, ok
}

// Update runs fn on the stored value under the store lock and writes the
// result back. It returns false without calling fn when e has no component.
func (s *Store[T]) Update(e Entity, fn func(*T)) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.items[e]
	if !ok {
		return false
	}
	fn(&v)
	s.items[e] = v
	return true
}

func (s *Store[T]) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}

// Entities returns the holders of this component in ascending id order.
func (s *Store[T]) Entities() []Entity {
	s.mu.RLock()
	out := make([]Entity, 0, len(s.items))
	for e := range s.items {
		out = append(out, e)
	}
	s.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func (s *Store[T]) remove(e Entity) { s.Remove(e) }

func (s *Store[T]) clear() {
	s.mu.Lock()
	s.items = make(map[Entity]T)
	s.mu.Unlock()
}
