package ecs

import (
	"testing"

	"pgregory.net/rapid"
)

// Random create/destroy sequences never reuse an id and Destroy leaves no
// component behind.
func TestRegistry_CreateDestroyProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		r := NewRegistry()
		counters := StoreOf[counter](r)
		seen := map[Entity]bool{}
		var live []Entity

		steps := rapid.IntRange(1, 60).Draw(t, "steps")
		for i := 0; i < steps; i++ {
			if len(live) == 0 || rapid.Bool().Draw(t, "create") {
				e := r.Create()
				if e == Nil || seen[e] {
					t.Fatalf("reused or nil id %v", e)
				}
				seen[e] = true
				counters.Set(e, counter{N: i})
				live = append(live, e)
				continue
			}
			k := rapid.IntRange(0, len(live)-1).Draw(t, "victim")
			e := live[k]
			live = append(live[:k], live[k+1:]...)
			if !r.Destroy(e) {
				t.Fatalf("destroy %v reported dead", e)
			}
			if counters.Has(e) || r.Alive(e) {
				t.Fatalf("%v survived Destroy", e)
			}
		}
		if r.Count() != len(live) || counters.Len() != len(live) {
			t.Fatalf("count=%d store=%d live=%d", r.Count(), counters.Len(), len(live))
		}
	})
}
