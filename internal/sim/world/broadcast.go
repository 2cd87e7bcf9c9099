package world

import (
	"encoding/json"

	"arrowcraft.ai/internal/protocol"
	"arrowcraft.ai/internal/sim/events"
)

func (w *World) broadcast(nowTick uint64, out events.Outgoing, health []protocol.Event) {
	if len(w.clients) == 0 {
		return
	}
	evs := tickEvents(out, health, w.uuidOf)
	if len(evs) == 0 {
		return
	}
	b, err := json.Marshal(protocol.EventsMsg{
		Type:            protocol.TypeEvents,
		ProtocolVersion: protocol.Version,
		Tick:            nowTick,
		Events:          evs,
	})
	if err != nil {
		w.log.Warn("events encode failed", "tick", nowTick, "err", err)
		return
	}
	for _, cl := range w.clients {
		sendLatest(cl.Out, b)
	}
}

// tickEvents flattens one tick's outgoing bus into wire order:
// spawns, attacks, health changes, destroys.
func tickEvents(out events.Outgoing, health []protocol.Event, uuidOf func(uint64) string) []protocol.Event {
	evs := make([]protocol.Event, 0, len(out.Spawned)+len(out.Attacks)+len(health)+len(out.Destroyed))
	for _, s := range out.Spawned {
		pos, vel := s.Position.Array(), s.Velocity.Array()
		evs = append(evs, protocol.Event{
			Kind:       protocol.EventSpawnEntity,
			Entity:     uint64(s.Entity),
			EntityKind: s.Kind,
			UUID:       uuidOf(uint64(s.Entity)),
			Owner:      uint64(s.Owner),
			Pos:        &pos,
			Vel:        &vel,
			Yaw:        s.Yaw,
			Pitch:      s.Pitch,
		})
	}
	for _, a := range out.Attacks {
		evs = append(evs, protocol.Event{
			Kind:   protocol.EventAttackEntity,
			Origin: uint64(a.Origin),
			Target: uint64(a.Target),
			Damage: a.Damage,
		})
	}
	evs = append(evs, health...)
	for _, d := range out.Destroyed {
		evs = append(evs, protocol.Event{
			Kind:   protocol.EventDestroyEntity,
			Entity: uint64(d.Entity),
			Reason: d.Reason,
		})
	}
	return evs
}
