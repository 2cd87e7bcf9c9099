package world

import (
	"arrowcraft.ai/internal/persistence/snapshot"
	"arrowcraft.ai/internal/sim/component"
	"arrowcraft.ai/internal/sim/ecs"
)

// ExportSnapshot captures the live world. Must run on the loop goroutine
// with no prefabs pending, which holds right after flushSpawns.
func (w *World) ExportSnapshot() snapshot.SnapshotV1 {
	snap := snapshot.SnapshotV1{
		Header: snapshot.Header{
			Version: snapshot.Version,
			WorldID: w.cfg.ID,
			Tick:    w.tick.Load(),
		},
		TickRate:           w.tune.TickRateHz,
		SnapshotEveryTicks: w.tune.SnapshotEveryTicks,
		LastEntity:         w.reg.LastID(),
	}
	for _, e := range w.st.kind.Entities() {
		k, _ := w.st.kind.Get(e)
		switch k {
		case component.KindPlayer:
			snap.Players = append(snap.Players, w.exportPlayer(e))
		case component.KindArrow:
			snap.Arrows = append(snap.Arrows, w.exportArrow(e))
		}
	}
	return snap
}

func (w *World) exportPlayer(e ecs.Entity) snapshot.PlayerV1 {
	p := snapshot.PlayerV1{Entity: uint64(e), UUID: w.uuidOf(uint64(e))}
	if n, ok := w.st.name.Get(e); ok {
		p.Name = n.Value
	}
	if pos, ok := w.st.pos.Get(e); ok {
		p.Pos = pos.Array()
	}
	if r, ok := w.st.rot.Get(e); ok {
		p.Yaw, p.Pitch = r.Yaw, r.Pitch
	}
	if inv, ok := w.st.inv.Get(e); ok && inv.Inventory != nil {
		for _, s := range inv.Slots() {
			p.Slots = append(p.Slots, snapshot.SlotV1{Kind: string(s.Kind), Count: s.Count, Meta: s.Meta.Clone()})
		}
	}
	if cs, ok := w.st.charge.Get(e); ok {
		p.Charging, p.ChargeLevel, p.ChargeStart = true, cs.Level, cs.StartTick
	}
	if a, ok := w.st.arrows.Get(e); ok {
		p.ArrowsIn = a.Count
	}
	if h, ok := w.st.health.Get(e); ok {
		p.HP, p.MaxHP = h.Current, h.Max
	}
	return p
}

func (w *World) exportArrow(e ecs.Entity) snapshot.ArrowV1 {
	a := snapshot.ArrowV1{Entity: uint64(e), UUID: w.uuidOf(uint64(e))}
	if o, ok := w.st.owner.Get(e); ok {
		a.Owner = uint64(o.Entity)
	}
	if pos, ok := w.st.pos.Get(e); ok {
		a.Pos = pos.Array()
	}
	if v, ok := w.st.vel.Get(e); ok {
		a.Vel = v.Array()
	}
	if r, ok := w.st.rot.Get(e); ok {
		a.Yaw, a.Pitch = r.Yaw, r.Pitch
	}
	if f, ok := w.st.flight.Get(e); ok {
		a.SpawnTick, a.Age = f.SpawnTick, f.Age
	}
	return a
}
