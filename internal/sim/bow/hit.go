package bow

import (
	"fmt"

	"golang.org/x/sync/errgroup"

	"arrowcraft.ai/internal/sim/component"
	"arrowcraft.ai/internal/sim/ecs"
	"arrowcraft.ai/internal/sim/events"
)

// RunHits drains the hit queue. With more than one worker the batch is
// partitioned by struck entity, so every entity's counter has exactly one
// writer and its hits keep queue order.
func (m *Module) RunHits() events.ConsumeStats {
	batch := m.hits.Drain()
	onErr := func(ev events.ProjectileEntityEvent, err error) {
		m.log.Warn("arrow hit failed", "tick", m.tick(), "projectile", ev.Projectile, "client", ev.Client, "err", err)
	}

	workers := m.cfg.HitWorkers
	if workers <= 1 || len(batch) < 2 {
		return events.ConsumeAll(batch, m.hit, onErr)
	}

	parts := make([][]events.ProjectileEntityEvent, workers)
	for _, ev := range batch {
		i := partition(ev.Client, workers)
		parts[i] = append(parts[i], ev)
	}

	stats := make([]events.ConsumeStats, workers)
	var g errgroup.Group
	for i, part := range parts {
		if len(part) == 0 {
			continue
		}
		g.Go(func() error {
			stats[i] = events.ConsumeAll(part, m.hit, onErr)
			return nil
		})
	}
	_ = g.Wait()

	var total events.ConsumeStats
	for _, st := range stats {
		total = total.Add(st)
	}
	return total
}

func (m *Module) hit(ev events.ProjectileEntityEvent) error {
	if owner, ok := m.lookupOwner(ev.Projectile); ok {
		m.dispatch(owner, ev.Client)
	} else {
		m.log.Debug("arrow hit without owner", "tick", m.tick(), "projectile", ev.Projectile)
	}
	return m.destroy(ev.Projectile)
}

// lookupOwner treats a dead owner the same as a missing relation.
func (m *Module) lookupOwner(projectile ecs.Entity) (ecs.Entity, bool) {
	o, ok := m.st.owner.Get(projectile)
	if !ok || !m.reg.Alive(o.Entity) {
		return ecs.Nil, false
	}
	return o.Entity, true
}

func (m *Module) dispatch(owner, target ecs.Entity) {
	m.bus.Attacks.Push(events.AttackEntity{Origin: owner, Target: target, Damage: m.cfg.Damage})

	counted := m.st.arrows.Update(target, func(a *component.ArrowsInEntity) { a.Count++ })
	if !counted {
		m.log.Debug("struck entity has no arrow counter", "tick", m.tick(), "entity", target)
	}
}

func (m *Module) destroy(projectile ecs.Entity) error {
	if !m.reg.Destroy(projectile) {
		return fmt.Errorf("destroy projectile %v: %w", projectile, ErrNotAlive)
	}
	m.bus.Destroyed.Push(events.EntityDestroyed{Entity: projectile, Reason: events.DestroyHit})
	return nil
}

// partition mixes the id (splitmix64 finalizer) before taking the modulus.
func partition(e ecs.Entity, n int) int {
	x := uint64(e)
	x ^= x >> 30
	x *= 0xbf58476d1ce4e5b9
	x ^= x >> 27
	x *= 0x94d049bb133111eb
	x ^= x >> 31
	return int(x % uint64(n))
}
