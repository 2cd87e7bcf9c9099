package world

import (
	"encoding/json"
	"testing"

	"arrowcraft.ai/internal/protocol"
	"arrowcraft.ai/internal/sim/ecs"
	"arrowcraft.ai/internal/sim/tuning"
)

func newTestWorld(t *testing.T, mutate func(*tuning.Tuning)) *World {
	t.Helper()
	tune := tuning.Defaults()
	if mutate != nil {
		mutate(&tune)
	}
	w, err := New(WorldConfig{ID: "test", Tuning: tune})
	if err != nil {
		t.Fatalf("new world: %v", err)
	}
	return w
}

// joinAll joins every name in one tick and returns their entities in order.
func joinAll(t *testing.T, w *World, outs map[string]chan []byte, names ...string) []ecs.Entity {
	t.Helper()
	reqs := make([]JoinRequest, 0, len(names))
	for _, n := range names {
		reqs = append(reqs, JoinRequest{Name: n, Out: outs[n], Resp: make(chan JoinResponse, 1)})
	}
	w.StepOnce(reqs, nil, nil)
	ents := make([]ecs.Entity, 0, len(reqs))
	for _, r := range reqs {
		resp := <-r.Resp
		if resp.Welcome.EntityID == 0 {
			t.Fatalf("join %s: no entity", r.Name)
		}
		ents = append(ents, ecs.Entity(resp.Welcome.EntityID))
	}
	return ents
}

func f64(v float64) *float64 { return &v }

func moveIntent(yaw, pitch float64) protocol.IntentMsg {
	return protocol.IntentMsg{Type: protocol.TypeIntent, ProtocolVersion: protocol.Version, Kind: protocol.IntentMove, Yaw: f64(yaw), Pitch: f64(pitch)}
}

func useIntent(kind, item string) protocol.IntentMsg {
	return protocol.IntentMsg{Type: protocol.TypeIntent, ProtocolVersion: protocol.Version, Kind: kind, Item: item}
}

func stepN(w *World, n int) {
	for i := 0; i < n; i++ {
		w.StepOnce(nil, nil, nil)
	}
}

// drawFull aims, draws for a full charge and releases: 1 + (full-1) + 1 ticks.
func drawFull(w *World, shooter ecs.Entity, yaw float64) {
	w.StepOnce(nil, nil, []IntentEnvelope{
		{Entity: shooter, Intent: moveIntent(yaw, 0)},
		{Entity: shooter, Intent: useIntent(protocol.IntentStartUseItem, "BOW")},
	})
	stepN(w, w.tune.Combat.ChargeFullTicks-1)
	w.StepOnce(nil, nil, []IntentEnvelope{
		{Entity: shooter, Intent: useIntent(protocol.IntentReleaseUseItem, "BOW")},
	})
}

func drainEvents(t *testing.T, ch chan []byte) []protocol.Event {
	t.Helper()
	var out []protocol.Event
	for {
		select {
		case b := <-ch:
			var msg protocol.EventsMsg
			if err := json.Unmarshal(b, &msg); err != nil {
				t.Fatalf("decode events: %v", err)
			}
			out = append(out, msg.Events...)
		default:
			return out
		}
	}
}

type recordingTickLogger struct{ entries []TickLogEntry }

func (l *recordingTickLogger) WriteTick(e TickLogEntry) error {
	l.entries = append(l.entries, e)
	return nil
}

type recordingAuditLogger struct{ entries []AuditEntry }

func (l *recordingAuditLogger) WriteAudit(e AuditEntry) error {
	l.entries = append(l.entries, e)
	return nil
}
