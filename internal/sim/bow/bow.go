// Package bow turns bow releases into arrows and arrow hits into damage.
//
// Two pipelines share entity state but read disjoint queues:
//
//	release: ReleaseUseItem -> ammo -> charge -> trajectory -> spawn
//	hit:     ProjectileEntityEvent -> owner -> AttackEntity/counter -> destroy
//
// Both run once per tick and drain their queue completely.
package bow

import (
	"errors"
	"log/slog"

	"github.com/google/uuid"

	"arrowcraft.ai/internal/sim/component"
	"arrowcraft.ai/internal/sim/ecs"
	"arrowcraft.ai/internal/sim/events"
	"arrowcraft.ai/internal/sim/inventory"
	"arrowcraft.ai/internal/sim/tuning"
)

var (
	ErrMissingComponent = errors.New("missing component")
	ErrNotAlive         = errors.New("entity not alive")
)

type Config struct {
	MaxSpeed      float64
	EyeHeight     float64
	ForwardOffset float64
	Damage        float64
	// ClampCharge bounds externally produced charge levels to [0,1].
	ClampCharge bool
	HitWorkers  int
}

func DefaultConfig() Config { return ConfigFromTuning(tuning.Defaults()) }

func ConfigFromTuning(t tuning.Tuning) Config {
	return Config{
		MaxSpeed:      t.Combat.ArrowMaxSpeed,
		EyeHeight:     t.Combat.EyeHeight,
		ForwardOffset: t.Combat.SpawnForwardOffset,
		Damage:        t.Combat.ArrowDamage,
		ClampCharge:   t.Combat.ClampCharge,
		HitWorkers:    t.Scheduling.HitWorkers,
	}
}

// Spawner materializes prefabs into the live world, no earlier than the
// next pass.
type Spawner interface {
	Spawn(p *ecs.Prefab)
}

// AuditSink is told about every arrow taken from an inventory.
type AuditSink interface {
	AmmoConsumed(shooter ecs.Entity, c inventory.Consumption)
}

type Deps struct {
	Registry *ecs.Registry
	Releases *events.Queue[events.ReleaseUseItem]
	Hits     *events.Queue[events.ProjectileEntityEvent]
	Bus      *events.Bus
	Spawner  Spawner

	// Optional.
	Audit   AuditSink
	Logger  *slog.Logger
	Tick    func() uint64
	NewUUID func() uuid.UUID
}

type stores struct {
	inv    *ecs.Store[component.Inventory]
	pos    *ecs.Store[component.Position]
	rot    *ecs.Store[component.Rotation]
	charge *ecs.Store[component.ChargeState]
	owner  *ecs.Store[component.Owner]
	arrows *ecs.Store[component.ArrowsInEntity]
}

type Module struct {
	cfg      Config
	reg      *ecs.Registry
	st       stores
	releases *events.Queue[events.ReleaseUseItem]
	hits     *events.Queue[events.ProjectileEntityEvent]
	bus      *events.Bus
	spawner  Spawner
	audit    AuditSink
	log      *slog.Logger
	tick     func() uint64
	newUUID  func() uuid.UUID
}

func New(cfg Config, d Deps) *Module {
	m := &Module{
		cfg:      cfg,
		reg:      d.Registry,
		releases: d.Releases,
		hits:     d.Hits,
		bus:      d.Bus,
		spawner:  d.Spawner,
		audit:    d.Audit,
		log:      d.Logger,
		tick:     d.Tick,
		newUUID:  d.NewUUID,
		st: stores{
			inv:    ecs.StoreOf[component.Inventory](d.Registry),
			pos:    ecs.StoreOf[component.Position](d.Registry),
			rot:    ecs.StoreOf[component.Rotation](d.Registry),
			charge: ecs.StoreOf[component.ChargeState](d.Registry),
			owner:  ecs.StoreOf[component.Owner](d.Registry),
			arrows: ecs.StoreOf[component.ArrowsInEntity](d.Registry),
		},
	}
	if m.log == nil {
		m.log = slog.New(slog.DiscardHandler)
	}
	if m.tick == nil {
		m.tick = func() uint64 { return 0 }
	}
	if m.newUUID == nil {
		m.newUUID = uuid.New
	}
	if m.cfg.HitWorkers < 1 {
		m.cfg.HitWorkers = 1
	}
	return m
}

func (m *Module) Config() Config { return m.cfg }
