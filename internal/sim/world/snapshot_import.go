package world

import (
	"fmt"

	"github.com/google/uuid"

	"arrowcraft.ai/internal/persistence/snapshot"
	"arrowcraft.ai/internal/sim/component"
	"arrowcraft.ai/internal/sim/ecs"
	"arrowcraft.ai/internal/sim/geom"
	"arrowcraft.ai/internal/sim/inventory"
)

// ImportSnapshot replaces all world state. Call before Run. Clients are not
// restored; players reconnect as new joins.
func (w *World) ImportSnapshot(snap snapshot.SnapshotV1) error {
	if snap.Header.Version != snapshot.Version {
		return fmt.Errorf("unsupported snapshot version %d", snap.Header.Version)
	}
	if w.cfg.ID != "" && snap.Header.WorldID != w.cfg.ID {
		return fmt.Errorf("snapshot world id mismatch: world=%s snap=%s", w.cfg.ID, snap.Header.WorldID)
	}

	alive := make([]ecs.Entity, 0, len(snap.Players)+len(snap.Arrows))
	for _, p := range snap.Players {
		if p.Entity == 0 || p.Entity > snap.LastEntity {
			return fmt.Errorf("player entity %d out of range (last=%d)", p.Entity, snap.LastEntity)
		}
		alive = append(alive, ecs.Entity(p.Entity))
	}
	for _, a := range snap.Arrows {
		if a.Entity == 0 || a.Entity > snap.LastEntity {
			return fmt.Errorf("arrow entity %d out of range (last=%d)", a.Entity, snap.LastEntity)
		}
		alive = append(alive, ecs.Entity(a.Entity))
	}

	w.reg.Restore(snap.LastEntity, alive)
	_ = w.spawns.Drain()
	_ = w.releases.Drain()
	_ = w.hits.Drain()
	_ = w.bus.Drain()
	_ = w.drainAudits()
	w.clients = map[ecs.Entity]*clientState{}

	for _, p := range snap.Players {
		w.importPlayer(p)
	}
	for _, a := range snap.Arrows {
		w.importArrow(a)
	}
	w.tick.Store(snap.Header.Tick)
	w.publishMetrics(snap.Header.Tick, 0)
	return nil
}

func (w *World) importPlayer(p snapshot.PlayerV1) {
	e := ecs.Entity(p.Entity)
	slots := make([]inventory.ItemStack, len(p.Slots))
	for i, s := range p.Slots {
		slots[i] = inventory.NewStack(inventory.ItemKind(s.Kind), s.Count, s.Meta)
	}
	w.st.kind.Set(e, component.KindPlayer)
	w.st.uuid.Set(e, component.UUID{ID: parseUUID(p.UUID)})
	w.st.name.Set(e, component.Name{Value: p.Name})
	w.st.pos.Set(e, component.Position{Vec3: geom.FromArray(p.Pos)})
	w.st.rot.Set(e, component.Rotation{Yaw: p.Yaw, Pitch: p.Pitch})
	w.st.inv.Set(e, component.Inventory{Inventory: inventory.FromSlots(slots)})
	w.st.arrows.Set(e, component.ArrowsInEntity{Count: p.ArrowsIn})
	w.st.health.Set(e, component.Health{Current: p.HP, Max: p.MaxHP})
	if p.Charging {
		w.st.charge.Set(e, component.ChargeState{Level: p.ChargeLevel, StartTick: p.ChargeStart})
	}
}

func (w *World) importArrow(a snapshot.ArrowV1) {
	e := ecs.Entity(a.Entity)
	w.st.kind.Set(e, component.KindArrow)
	w.st.uuid.Set(e, component.UUID{ID: parseUUID(a.UUID)})
	w.st.pos.Set(e, component.Position{Vec3: geom.FromArray(a.Pos)})
	w.st.vel.Set(e, component.Velocity{Vec3: geom.FromArray(a.Vel)})
	w.st.rot.Set(e, component.Rotation{Yaw: a.Yaw, Pitch: a.Pitch})
	w.st.owner.Set(e, component.Owner{Entity: ecs.Entity(a.Owner)})
	w.st.flight.Set(e, component.Flight{SpawnTick: a.SpawnTick, Age: a.Age})
}

// parseUUID keeps a stored id when it parses and mints a fresh one otherwise.
func parseUUID(s string) uuid.UUID {
	if id, err := uuid.Parse(s); err == nil {
		return id
	}
	return uuid.New()
}
