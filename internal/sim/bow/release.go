package bow

import (
	"fmt"

	"arrowcraft.ai/internal/sim/component"
	"arrowcraft.ai/internal/sim/ecs"
	"arrowcraft.ai/internal/sim/events"
	"arrowcraft.ai/internal/sim/inventory"
)

// RunRelease drains the release queue on the calling goroutine.
func (m *Module) RunRelease() events.ConsumeStats {
	return events.Consume(m.releases, m.release, func(ev events.ReleaseUseItem, err error) {
		m.log.Warn("bow release dropped", "tick", m.tick(), "entity", ev.From, "err", err)
	})
}

func (m *Module) release(ev events.ReleaseUseItem) error {
	if ev.Item != inventory.Bow {
		return nil
	}

	inv, ok := m.st.inv.Get(ev.From)
	if !ok || inv.Inventory == nil {
		return fmt.Errorf("release from %v: inventory: %w", ev.From, ErrMissingComponent)
	}
	pos, ok := m.st.pos.Get(ev.From)
	if !ok {
		return fmt.Errorf("release from %v: position: %w", ev.From, ErrMissingComponent)
	}
	rot, ok := m.st.rot.Get(ev.From)
	if !ok {
		return fmt.Errorf("release from %v: rotation: %w", ev.From, ErrMissingComponent)
	}

	used, ok, err := inv.ConsumeOne(inventory.Arrow)
	if err != nil {
		return fmt.Errorf("release from %v: take arrow: %w", ev.From, err)
	}
	if !ok {
		m.log.Debug("bow released without arrows", "tick", m.tick(), "entity", ev.From)
		return nil
	}
	if m.audit != nil {
		m.audit.AmmoConsumed(ev.From, used)
	}

	charge := m.resolveCharge(ev.From)
	tr := ComputeTrajectory(m.cfg, pos.Vec3, rot.Yaw, rot.Pitch, charge)
	m.log.Debug("arrow released",
		"tick", m.tick(),
		"entity", ev.From,
		"charge", charge,
		"velocity", tr.Velocity,
		"yaw", rot.Yaw,
		"pitch", rot.Pitch,
	)
	m.spawnArrow(ev.From, rot, tr)
	return nil
}

// resolveCharge takes the shooter's charge state, leaving none behind.
func (m *Module) resolveCharge(e ecs.Entity) float64 {
	cs, ok := m.st.charge.Take(e)
	if !ok {
		m.log.Debug("bow released without charge", "tick", m.tick(), "entity", e)
		return 0
	}
	if m.cfg.ClampCharge {
		return clamp01(cs.Level)
	}
	return cs.Level
}

func (m *Module) spawnArrow(owner ecs.Entity, rot component.Rotation, tr Trajectory) {
	p := m.reg.NewPrefab()
	ecs.With(p, component.KindArrow)
	ecs.With(p, component.UUID{ID: m.newUUID()})
	ecs.With(p, component.Position{Vec3: tr.Position})
	ecs.With(p, component.Velocity{Vec3: tr.Velocity})
	ecs.With(p, component.Rotation{Yaw: rot.Yaw, Pitch: rot.Pitch})
	ecs.With(p, component.Owner{Entity: owner})
	ecs.With(p, component.Flight{SpawnTick: m.tick()})
	m.spawner.Spawn(p)
}
