package events

import (
	"errors"
	"sync"
	"testing"
)

func TestQueue_DrainOrderAndReset(t *testing.T) {
	q := NewQueue[int]()
	for i := 0; i < 5; i++ {
		q.Push(i)
	}
	got := q.Drain()
	for i, v := range got {
		if v != i {
			t.Fatalf("order broken: %v", got)
		}
	}
	if q.Len() != 0 {
		t.Fatalf("expected empty queue, len=%d", q.Len())
	}
	if again := q.Drain(); len(again) != 0 {
		t.Fatalf("second drain returned %v", again)
	}
}

func TestConsume_FailureIsLocal(t *testing.T) {
	q := NewQueue[int]()
	for i := 0; i < 4; i++ {
		q.Push(i)
	}
	var seen []int
	var failed []int
	st := Consume(q, func(v int) error {
		seen = append(seen, v)
		if v == 1 {
			return errors.New("boom")
		}
		return nil
	}, func(v int, err error) { failed = append(failed, v) })

	if st.Processed != 4 || st.Failed != 1 {
		t.Fatalf("stats %+v", st)
	}
	if len(seen) != 4 || seen[3] != 3 {
		t.Fatalf("events after the failure were skipped: %v", seen)
	}
	if len(failed) != 1 || failed[0] != 1 {
		t.Fatalf("onErr got %v", failed)
	}
	if q.Len() != 0 {
		t.Fatalf("queue not empty after pass")
	}
}

func TestConsume_PushDuringPassGoesToNextPass(t *testing.T) {
	q := NewQueue[int]()
	q.Push(1)
	Consume(q, func(v int) error {
		q.Push(v + 1)
		return nil
	}, nil)
	if got := q.Drain(); len(got) != 1 || got[0] != 2 {
		t.Fatalf("expected the re-push to wait for the next pass, got %v", got)
	}
}

func TestQueue_ConcurrentPush(t *testing.T) {
	q := NewQueue[int]()
	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			q.Push(i)
		}(i)
	}
	wg.Wait()
	if q.Len() != 32 {
		t.Fatalf("len=%d", q.Len())
	}
}

func TestBus_Drain(t *testing.T) {
	b := NewBus()
	b.Attacks.Push(AttackEntity{Origin: 1, Target: 2, Damage: 1})
	out := b.Drain()
	if out.Empty() || len(out.Attacks) != 1 {
		t.Fatalf("unexpected outgoing %+v", out)
	}
	if !b.Drain().Empty() {
		t.Fatalf("bus not cleared")
	}
}
