package ecs

import (
	"sync"
	"testing"
)

type counter struct{ N int }

type tag struct{}

func TestRegistry_CreateDestroy(t *testing.T) {
	r := NewRegistry()
	e := r.Create()
	if e == Nil {
		t.Fatalf("expected non-nil entity")
	}
	if !r.Alive(e) {
		t.Fatalf("expected %v alive", e)
	}
	counters := StoreOf[counter](r)
	counters.Set(e, counter{N: 2})
	StoreOf[tag](r).Set(e, tag{})

	if !r.Destroy(e) {
		t.Fatalf("expected Destroy to report alive entity")
	}
	if r.Alive(e) {
		t.Fatalf("expected %v dead after Destroy", e)
	}
	if counters.Has(e) || StoreOf[tag](r).Has(e) {
		t.Fatalf("expected components removed")
	}
	if r.Destroy(e) {
		t.Fatalf("second Destroy should report false")
	}
}

func TestRegistry_IdentitiesNeverReused(t *testing.T) {
	r := NewRegistry()
	a := r.Create()
	r.Destroy(a)
	b := r.Create()
	if a == b {
		t.Fatalf("identity reused: %v", a)
	}
	if r.Alive(Nil) {
		t.Fatalf("Nil must never be alive")
	}
}

func TestStoreOf_SameStore(t *testing.T) {
	r := NewRegistry()
	if StoreOf[counter](r) != StoreOf[counter](r) {
		t.Fatalf("expected the same store instance")
	}
}

func TestStore_Take(t *testing.T) {
	r := NewRegistry()
	e := r.Create()
	s := StoreOf[counter](r)
	s.Set(e, counter{N: 7})

	v, ok := s.Take(e)
	if !ok || v.N != 7 {
		t.Fatalf("Take: got %+v ok=%v", v, ok)
	}
	if _, ok := s.Take(e); ok {
		t.Fatalf("expected component gone after Take")
	}
}

func TestStore_UpdateAbsent(t *testing.T) {
	r := NewRegistry()
	e := r.Create()
	s := StoreOf[counter](r)
	called := false
	if s.Update(e, func(c *counter) { called = true }) {
		t.Fatalf("expected Update to report absent")
	}
	if called {
		t.Fatalf("fn must not run for absent component")
	}
}

func TestStore_UpdateConcurrent(t *testing.T) {
	r := NewRegistry()
	e := r.Create()
	s := StoreOf[counter](r)
	s.Set(e, counter{})

	var wg sync.WaitGroup
	for i := 0; i < 64; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.Update(e, func(c *counter) { c.N++ })
		}()
	}
	wg.Wait()
	if v, _ := s.Get(e); v.N != 64 {
		t.Fatalf("expected 64, got %d", v.N)
	}
}

func TestStore_EntitiesSorted(t *testing.T) {
	r := NewRegistry()
	s := StoreOf[counter](r)
	var ids []Entity
	for i := 0; i < 5; i++ {
		ids = append(ids, r.Create())
	}
	for i := len(ids) - 1; i >= 0; i-- {
		s.Set(ids[i], counter{N: i})
	}
	got := s.Entities()
	for i := range got {
		if got[i] != ids[i] {
			t.Fatalf("entities not sorted: %v", got)
		}
	}
}

func TestPrefab_Materialize(t *testing.T) {
	r := NewRegistry()
	p := r.NewPrefab()
	With(p, counter{N: 3})
	e := p.Entity()

	if r.Alive(e) || StoreOf[counter](r).Has(e) {
		t.Fatalf("prefab must not be visible before Materialize")
	}
	if got := p.Materialize(); got != e {
		t.Fatalf("Materialize returned %v, want %v", got, e)
	}
	if !r.Alive(e) {
		t.Fatalf("expected alive after Materialize")
	}
	if v, ok := StoreOf[counter](r).Get(e); !ok || v.N != 3 {
		t.Fatalf("component: %+v ok=%v", v, ok)
	}
}

func TestRegistry_Restore(t *testing.T) {
	r := NewRegistry()
	e := r.Create()
	StoreOf[counter](r).Set(e, counter{N: 1})

	r.Restore(10, []Entity{4, 9})
	if StoreOf[counter](r).Len() != 0 {
		t.Fatalf("expected stores cleared")
	}
	if !r.Alive(4) || !r.Alive(9) || r.Alive(e) {
		t.Fatalf("unexpected alive set")
	}
	if next := r.Create(); next != 11 {
		t.Fatalf("expected next id 11, got %v", next)
	}
}
