package world

import (
	"math"

	"arrowcraft.ai/internal/protocol"
	"arrowcraft.ai/internal/sim/component"
	"arrowcraft.ai/internal/sim/ecs"
	"arrowcraft.ai/internal/sim/events"
	"arrowcraft.ai/internal/sim/geom"
	"arrowcraft.ai/internal/sim/inventory"
)

func (w *World) joinPlayer(name string, out chan []byte) JoinResponse {
	if name == "" {
		name = "player"
	}

	starter := make(map[inventory.ItemKind]int, len(w.tune.Player.StarterItems))
	for k, n := range w.tune.Player.StarterItems {
		starter[inventory.ItemKind(k)] = n
	}
	inv := inventory.NewPlayer(starter)

	e := w.reg.Create()
	pos := w.spawnPoint(e)
	id := w.newUUID()
	w.st.kind.Set(e, component.KindPlayer)
	w.st.uuid.Set(e, component.UUID{ID: id})
	w.st.name.Set(e, component.Name{Value: name})
	w.st.pos.Set(e, component.Position{Vec3: pos})
	w.st.rot.Set(e, component.Rotation{})
	w.st.inv.Set(e, component.Inventory{Inventory: inv})
	w.st.arrows.Set(e, component.ArrowsInEntity{})
	w.st.health.Set(e, component.Health{Current: w.tune.Player.MaxHealth, Max: w.tune.Player.MaxHealth})
	w.bus.Spawned.Push(w.spawnedEvent(e))

	if out != nil {
		w.clients[e] = &clientState{Out: out}
	}
	w.log.Info("player joined", "tick", w.tick.Load(), "entity", e, "name", name)

	return JoinResponse{Welcome: protocol.WelcomeMsg{
		Type:            protocol.TypeWelcome,
		ProtocolVersion: protocol.Version,
		WorldID:         w.cfg.ID,
		EntityID:        uint64(e),
		UUID:            id.String(),
		Tick:            w.tick.Load(),
		TickRateHz:      w.tune.TickRateHz,
		Pos:             pos.Array(),
		Inventory:       inventoryView(inv),
	}}
}

// spawnPoint spreads players along X so they do not start inside each other.
func (w *World) spawnPoint(e ecs.Entity) geom.Vec3 {
	base := geom.FromArray(w.tune.Player.SpawnPos)
	base.X += 2 * float64(uint64(e)%16)
	return base
}

func (w *World) removePlayer(e ecs.Entity) bool {
	if !w.isPlayer(e) {
		return false
	}
	w.reg.Destroy(e)
	delete(w.clients, e)
	w.bus.Destroyed.Push(events.EntityDestroyed{Entity: e, Reason: events.DestroyLeft})
	w.log.Info("player left", "tick", w.tick.Load(), "entity", e)
	return true
}

func (w *World) applyIntent(e ecs.Entity, in protocol.IntentMsg, nowTick uint64) {
	switch in.Kind {
	case protocol.IntentMove:
		if in.Pos != nil {
			p := geom.FromArray(*in.Pos)
			if !finite(p.X, p.Y, p.Z) {
				w.log.Debug("move ignored, bad position", "tick", nowTick, "entity", e)
				return
			}
			w.st.pos.Set(e, component.Position{Vec3: p})
		}
		w.st.rot.Update(e, func(r *component.Rotation) {
			if in.Yaw != nil && finite(*in.Yaw) {
				r.Yaw = *in.Yaw
			}
			if in.Pitch != nil && finite(*in.Pitch) {
				r.Pitch = math.Max(-90, math.Min(90, *in.Pitch))
			}
		})
	case protocol.IntentStartUseItem:
		if inventory.ItemKind(in.Item) != inventory.Bow {
			return
		}
		inv, ok := w.st.inv.Get(e)
		if !ok || inv.Inventory == nil || inv.CountOf(inventory.Bow) == 0 {
			w.log.Debug("draw ignored, no bow", "tick", nowTick, "entity", e)
			return
		}
		w.st.charge.Set(e, component.ChargeState{StartTick: nowTick})
	case protocol.IntentReleaseUseItem:
		w.releases.Push(events.ReleaseUseItem{From: e, Item: inventory.ItemKind(in.Item)})
	default:
		w.log.Debug("unknown intent", "tick", nowTick, "entity", e, "kind", in.Kind)
	}
}

func inventoryView(inv *inventory.Inventory) []protocol.ItemStack {
	out := make([]protocol.ItemStack, 0, 4)
	for i, s := range inv.Slots() {
		if s.IsEmpty() {
			continue
		}
		out = append(out, protocol.ItemStack{Slot: i, Kind: string(s.Kind), Count: s.Count})
	}
	return out
}

func finite(vs ...float64) bool {
	for _, v := range vs {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

func (w *World) uuidOf(e uint64) string {
	u, ok := w.st.uuid.Get(ecs.Entity(e))
	if !ok {
		return ""
	}
	return u.ID.String()
}
