// Package ecs is the entity/component store shared by the simulation systems.
//
// Entities are plain uint64 handles that are never reused, so a stale handle
// held by a relation (for example a projectile's owner) simply stops being
// alive instead of aliasing a newer entity.
package ecs

import (
	"fmt"
	"reflect"
	"sync"
	"sync/atomic"
)

type Entity uint64

// Nil is never handed out by a Registry.
const Nil Entity = 0

func (e Entity) String() string { return fmt.Sprintf("E%d", uint64(e)) }

type anyStore interface {
	remove(e Entity)
	clear()
}

type Registry struct {
	next atomic.Uint64

	mu     sync.RWMutex
	alive  map[Entity]struct{}
	stores map[reflect.Type]anyStore
}

func NewRegistry() *Registry {
	return &Registry{
		alive:  make(map[Entity]struct{}),
		stores: make(map[reflect.Type]anyStore),
	}
}

// StoreOf returns the store for T, registering it on first use.
func StoreOf[T any](r *Registry) *Store[T] {
	key := reflect.TypeOf((*T)(nil)).Elem()

	r.mu.RLock()
	s, ok := r.stores[key]
	r.mu.RUnlock()
	if ok {
		return s.(*Store[T])
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if s, ok := r.stores[key]; ok {
		return s.(*Store[T])
	}
	st := newStore[T]()
	r.stores[key] = st
	return st
}

// Reserve allocates an identity without making it alive.
func (r *Registry) Reserve() Entity {
	return Entity(r.next.Add(1))
}

func (r *Registry) Create() Entity {
	e := r.Reserve()
	r.mu.Lock()
	r.alive[e] = struct{}{}
	r.mu.Unlock()
	return e
}

func (r *Registry) markAlive(e Entity) {
	r.mu.Lock()
	r.alive[e] = struct{}{}
	r.mu.Unlock()
}

func (r *Registry) Alive(e Entity) bool {
	if e == Nil {
		return false
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.alive[e]
	return ok
}

// Destroy removes e and all of its components. It returns false if e was
// not alive; components are still cleared in that case.
func (r *Registry) Destroy(e Entity) bool {
	r.mu.Lock()
	_, ok := r.alive[e]
	delete(r.alive, e)
	stores := make([]anyStore, 0, len(r.stores))
	for _, s := range r.stores {
		stores = append(stores, s)
	}
	r.mu.Unlock()

	for _, s := range stores {
		s.remove(e)
	}
	return ok
}

func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.alive)
}

// LastID is the highest identity handed out so far.
func (r *Registry) LastID() uint64 { return r.next.Load() }

// Restore clears every store and resets the identity counter. Used when
// importing a snapshot.
func (r *Registry) Restore(lastID uint64, alive []Entity) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, s := range r.stores {
		s.clear()
	}
	r.alive = make(map[Entity]struct{}, len(alive))
	for _, e := range alive {
		r.alive[e] = struct{}{}
	}
	r.next.Store(lastID)
}
