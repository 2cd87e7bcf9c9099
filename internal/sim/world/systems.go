package world

import (
	"math"

	"arrowcraft.ai/internal/protocol"
	"arrowcraft.ai/internal/sim/bow"
	"arrowcraft.ai/internal/sim/component"
	"arrowcraft.ai/internal/sim/ecs"
	"arrowcraft.ai/internal/sim/events"
	"arrowcraft.ai/internal/sim/geom"
)

// systemCharge advances every draw in progress.
func (w *World) systemCharge(nowTick uint64) {
	full := w.tune.Combat.ChargeFullTicks
	for _, e := range w.st.charge.Entities() {
		w.st.charge.Update(e, func(cs *component.ChargeState) {
			var held uint64
			if nowTick > cs.StartTick {
				held = nowTick - cs.StartTick
			}
			cs.Level = bow.DrawLevel(held, full)
		})
	}
}

type hitbox struct {
	entity ecs.Entity
	box    geom.AABB
}

func (w *World) playerHitboxes() []hitbox {
	ents := w.st.health.Entities()
	out := make([]hitbox, 0, len(ents))
	for _, e := range ents {
		p, ok := w.st.pos.Get(e)
		if !ok {
			continue
		}
		out = append(out, hitbox{
			entity: e,
			box:    geom.EntityBox(p.Vec3, w.tune.Flight.HitboxHalfWidth, w.tune.Flight.HitboxHeight),
		})
	}
	return out
}

// systemFlight moves arrows one tick. An arrow whose path enters a player
// other than its shooter stops at the entry point and raises a hit; the
// earliest entry wins, ties go to the lowest entity.
func (w *World) systemFlight() {
	targets := w.playerHitboxes()
	lifetime := w.tune.Flight.LifetimeTicks

	for _, e := range w.st.flight.Entities() {
		pos, ok := w.st.pos.Get(e)
		if !ok {
			continue
		}
		vel, ok := w.st.vel.Get(e)
		if !ok {
			continue
		}
		owner, _ := w.st.owner.Get(e)
		next := pos.Add(vel.Vec3)

		struck, first := ecs.Nil, math.Inf(1)
		for _, t := range targets {
			if t.entity == owner.Entity {
				continue
			}
			if frac, hit := t.box.SegmentHit(pos.Vec3, next); hit && frac < first {
				struck, first = t.entity, frac
			}
		}
		if struck != ecs.Nil {
			w.st.pos.Set(e, component.Position{Vec3: pos.Add(vel.Scale(first))})
			w.hits.Push(events.ProjectileEntityEvent{Projectile: e, Client: struck})
			continue
		}

		w.st.pos.Set(e, component.Position{Vec3: next})
		v := vel.Scale(w.tune.Flight.Drag)
		v.Y -= w.tune.Flight.Gravity
		w.st.vel.Set(e, component.Velocity{Vec3: v})

		expired := false
		w.st.flight.Update(e, func(f *component.Flight) {
			f.Age++
			expired = lifetime > 0 && f.Age >= lifetime
		})
		if expired {
			w.reg.Destroy(e)
			w.bus.Destroyed.Push(events.EntityDestroyed{Entity: e, Reason: events.DestroyExpired})
			w.totals.Expired++
		}
	}
}

// systemDamage applies attacks in (target, origin) order. A player brought
// to zero respawns at full health at its spawn point.
func (w *World) systemDamage(attacks []events.AttackEntity) []protocol.Event {
	var out []protocol.Event
	for _, a := range attacks {
		w.totals.Attacks++
		var hp, maxHP float64
		dead := false
		ok := w.st.health.Update(a.Target, func(h *component.Health) {
			h.Current = math.Max(0, h.Current-a.Damage)
			hp, maxHP = h.Current, h.Max
			dead = h.Current == 0
		})
		if !ok {
			continue
		}
		out = append(out, healthEvent(a.Target, hp, maxHP))
		if !dead {
			continue
		}

		w.totals.Deaths++
		w.st.health.Set(a.Target, component.Health{Current: maxHP, Max: maxHP})
		w.st.pos.Set(a.Target, component.Position{Vec3: w.spawnPoint(a.Target)})
		w.st.charge.Remove(a.Target)
		out = append(out, healthEvent(a.Target, maxHP, maxHP))
		w.log.Info("player killed", "tick", w.tick.Load(), "entity", a.Target, "by", a.Origin)
	}
	return out
}

func healthEvent(e ecs.Entity, hp, maxHP float64) protocol.Event {
	return protocol.Event{Kind: protocol.EventHealth, Entity: uint64(e), HP: &hp, MaxHP: maxHP}
}
