package world

import (
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"arrowcraft.ai/internal/sim/component"
	"arrowcraft.ai/internal/sim/ecs"
	"arrowcraft.ai/internal/sim/events"
)

// step runs one tick:
//
//	spawns -> snapshot -> leaves/joins -> intents -> charge -> flight
//	-> release || hit -> damage -> broadcast -> digest/logs
func (w *World) step(joins []JoinRequest, leaves []ecs.Entity, intents []IntentEnvelope) string {
	stepStart := time.Now()
	nowTick := w.tick.Load()

	w.flushSpawns()

	// Snapshot every N ticks, starting after tick 0.
	if w.snapshotSink != nil && nowTick != 0 && w.tune.SnapshotEveryTicks > 0 {
		if nowTick%uint64(w.tune.SnapshotEveryTicks) == 0 {
			snap := w.ExportSnapshot()
			select {
			case w.snapshotSink <- snap:
			default:
				w.log.Warn("snapshot dropped, sink busy", "tick", nowTick)
			}
		}
	}

	// Apply leaves and joins deterministically at tick boundary.
	recordedLeaves := make([]uint64, 0, len(leaves))
	for _, e := range leaves {
		if w.removePlayer(e) {
			recordedLeaves = append(recordedLeaves, uint64(e))
		}
	}
	recordedJoins := make([]RecordedJoin, 0, len(joins))
	for _, req := range joins {
		resp := w.joinPlayer(req.Name, req.Out)
		if req.Resp != nil {
			req.Resp <- resp
		}
		recordedJoins = append(recordedJoins, RecordedJoin{Entity: resp.Welcome.EntityID, Name: req.Name})
	}

	// Apply intents in receive order (the inbox order).
	recorded := make([]RecordedIntent, 0, len(intents))
	for _, env := range intents {
		if !w.isPlayer(env.Entity) {
			continue
		}
		recorded = append(recorded, RecordedIntent{Entity: uint64(env.Entity), Intent: env.Intent})
		w.applyIntent(env.Entity, env.Intent, nowTick)
	}

	w.systemCharge(nowTick)
	w.systemFlight()

	rel, hit := w.runPipelines()
	w.totals.Releases += uint64(rel.Processed)
	w.totals.ReleaseErrors += uint64(rel.Failed)
	w.totals.Hits += uint64(hit.Processed)
	w.totals.HitErrors += uint64(hit.Failed)

	out := w.bus.Drain()
	sortOutgoing(&out)
	healthEvents := w.systemDamage(out.Attacks)
	w.broadcast(nowTick, out, healthEvents)

	digest := w.stateDigest(nowTick)
	if w.tickLogger != nil {
		attacks := make([]RecordedAttack, 0, len(out.Attacks))
		for _, a := range out.Attacks {
			attacks = append(attacks, RecordedAttack{Origin: uint64(a.Origin), Target: uint64(a.Target), Damage: a.Damage})
		}
		entry := TickLogEntry{
			Tick:    nowTick,
			Joins:   recordedJoins,
			Leaves:  recordedLeaves,
			Intents: recorded,
			Attacks: attacks,
			Digest:  digest,
		}
		if err := w.tickLogger.WriteTick(entry); err != nil {
			w.log.Warn("tick log write failed", "tick", nowTick, "err", err)
		}
	}
	for _, a := range w.drainAudits() {
		if w.auditLogger == nil {
			continue
		}
		if err := w.auditLogger.WriteAudit(a); err != nil {
			w.log.Warn("audit log write failed", "tick", nowTick, "err", err)
		}
	}

	stepMS := float64(time.Since(stepStart).Microseconds()) / 1000.0
	nextTick := w.tick.Add(1)
	w.publishMetrics(nextTick, stepMS)
	return digest
}

// flushSpawns materializes prefabs queued during the previous pass.
func (w *World) flushSpawns() {
	for _, p := range w.spawns.Drain() {
		e := p.Materialize()
		w.totals.ArrowsSpawned++
		w.bus.Spawned.Push(w.spawnedEvent(e))
	}
}

func (w *World) spawnedEvent(e ecs.Entity) events.EntitySpawned {
	ev := events.EntitySpawned{Entity: e}
	if k, ok := w.st.kind.Get(e); ok {
		ev.Kind = k.String()
	}
	if p, ok := w.st.pos.Get(e); ok {
		ev.Position = p.Vec3
	}
	if v, ok := w.st.vel.Get(e); ok {
		ev.Velocity = v.Vec3
	}
	if r, ok := w.st.rot.Get(e); ok {
		ev.Yaw, ev.Pitch = r.Yaw, r.Pitch
	}
	if o, ok := w.st.owner.Get(e); ok {
		ev.Owner = o.Entity
	}
	return ev
}

// runPipelines runs release and hit side by side and waits for both.
// Neither returns an error; failures are per event and counted.
func (w *World) runPipelines() (rel, hit events.ConsumeStats) {
	var g errgroup.Group
	g.Go(func() error {
		rel = w.bow.RunRelease()
		return nil
	})
	g.Go(func() error {
		hit = w.bow.RunHits()
		return nil
	})
	_ = g.Wait()
	return rel, hit
}

// sortOutgoing orders events produced by concurrent workers so logs and
// broadcasts are reproducible.
func sortOutgoing(out *events.Outgoing) {
	sort.SliceStable(out.Attacks, func(i, j int) bool {
		a, b := out.Attacks[i], out.Attacks[j]
		if a.Target != b.Target {
			return a.Target < b.Target
		}
		return a.Origin < b.Origin
	})
	sort.SliceStable(out.Destroyed, func(i, j int) bool {
		return out.Destroyed[i].Entity < out.Destroyed[j].Entity
	})
}

func (w *World) isPlayer(e ecs.Entity) bool {
	k, ok := w.st.kind.Get(e)
	return ok && k == component.KindPlayer && w.reg.Alive(e)
}
