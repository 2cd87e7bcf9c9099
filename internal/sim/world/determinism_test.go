package world

import (
	"testing"

	"arrowcraft.ai/internal/persistence/snapshot"
	"arrowcraft.ai/internal/protocol"
	"arrowcraft.ai/internal/sim/ecs"
	"arrowcraft.ai/internal/sim/tuning"
)

// script is a fixed intent stream: two archers trade volleys.
func script(tick uint64, a, b ecs.Entity) []IntentEnvelope {
	switch tick % 25 {
	case 1:
		return []IntentEnvelope{
			{Entity: a, Intent: moveIntent(-90, float64(tick%7)-3)},
			{Entity: b, Intent: moveIntent(90, 0)},
			{Entity: a, Intent: useIntent(protocol.IntentStartUseItem, "BOW")},
			{Entity: b, Intent: useIntent(protocol.IntentStartUseItem, "BOW")},
		}
	case 12:
		return []IntentEnvelope{{Entity: b, Intent: useIntent(protocol.IntentReleaseUseItem, "BOW")}}
	case 22:
		return []IntentEnvelope{{Entity: a, Intent: useIntent(protocol.IntentReleaseUseItem, "BOW")}}
	}
	return nil
}

func TestDeterminism_FixedIntentsSameDigest(t *testing.T) {
	mutate := func(tu *tuning.Tuning) { tu.Scheduling.HitWorkers = 8 }
	w1 := newTestWorld(t, mutate)
	w2 := newTestWorld(t, mutate)

	e1 := joinAll(t, w1, nil, "a", "b")
	e2 := joinAll(t, w2, nil, "a", "b")
	if e1[0] != e2[0] || e1[1] != e2[1] {
		t.Fatalf("entity mismatch: %v vs %v", e1, e2)
	}

	for tick := uint64(1); tick < 120; tick++ {
		t1, d1 := w1.StepOnce(nil, nil, script(tick, e1[0], e1[1]))
		t2, d2 := w2.StepOnce(nil, nil, script(tick, e2[0], e2[1]))
		if t1 != tick || t2 != tick {
			t.Fatalf("tick mismatch: %d %d want %d", t1, t2, tick)
		}
		if d1 != d2 {
			t.Fatalf("digest mismatch at tick %d: %s vs %s", tick, d1, d2)
		}
	}
	if w1.Metrics().Totals.Hits == 0 {
		t.Fatalf("script should produce hits")
	}
}

func TestSnapshot_RoundTripResumesIdentically(t *testing.T) {
	w1 := newTestWorld(t, nil)
	ents := joinAll(t, w1, nil, "a", "b")
	a, b := ents[0], ents[1]

	var tick uint64 = 1
	for ; tick < 30; tick++ {
		w1.StepOnce(nil, nil, script(tick, a, b))
	}
	// Export between steps only when nothing is pending.
	for w1.spawns.Len() != 0 {
		w1.StepOnce(nil, nil, script(tick, a, b))
		tick++
	}
	snap := w1.ExportSnapshot()

	path := snapshot.PathFor(t.TempDir(), snap.Header.Tick)
	if err := snapshot.WriteSnapshot(path, snap); err != nil {
		t.Fatalf("write: %v", err)
	}
	loaded, err := snapshot.ReadSnapshot(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}

	w2 := newTestWorld(t, nil)
	if err := w2.ImportSnapshot(loaded); err != nil {
		t.Fatalf("import: %v", err)
	}
	if w2.CurrentTick() != w1.CurrentTick() {
		t.Fatalf("tick %d vs %d", w2.CurrentTick(), w1.CurrentTick())
	}
	if w2.stateDigest(tick) != w1.stateDigest(tick) {
		t.Fatalf("digest differs right after import")
	}

	for end := tick + 60; tick < end; tick++ {
		_, d1 := w1.StepOnce(nil, nil, script(tick, a, b))
		_, d2 := w2.StepOnce(nil, nil, script(tick, a, b))
		if d1 != d2 {
			t.Fatalf("digest mismatch at tick %d after resume", tick)
		}
	}
}

func TestSnapshot_SinkEveryN(t *testing.T) {
	w := newTestWorld(t, func(tu *tuning.Tuning) { tu.SnapshotEveryTicks = 5 })
	sink := make(chan snapshot.SnapshotV1, 4)
	w.SetSnapshotSink(sink)
	joinAll(t, w, nil, "a")
	stepN(w, 10)

	var got []uint64
	for len(sink) > 0 {
		got = append(got, (<-sink).Header.Tick)
	}
	if len(got) != 2 || got[0] != 5 || got[1] != 10 {
		t.Fatalf("snapshot ticks=%v", got)
	}
}

func TestImportSnapshot_RejectsMismatch(t *testing.T) {
	w := newTestWorld(t, nil)
	snap := snapshot.SnapshotV1{Header: snapshot.Header{Version: snapshot.Version, WorldID: "other"}}
	if err := w.ImportSnapshot(snap); err == nil {
		t.Fatalf("expected world id mismatch")
	}
	snap.Header.WorldID = "test"
	snap.Players = []snapshot.PlayerV1{{Entity: 9}}
	snap.LastEntity = 3
	if err := w.ImportSnapshot(snap); err == nil {
		t.Fatalf("expected out of range entity error")
	}
}
