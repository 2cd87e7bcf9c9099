// Package world runs the authoritative arena simulation: a single loop that
// applies client intents, advances projectiles and drives the bow pipelines
// once per tick.
package world

import (
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"

	"arrowcraft.ai/internal/persistence/snapshot"
	"arrowcraft.ai/internal/protocol"
	"arrowcraft.ai/internal/sim/bow"
	"arrowcraft.ai/internal/sim/component"
	"arrowcraft.ai/internal/sim/ecs"
	"arrowcraft.ai/internal/sim/events"
	"arrowcraft.ai/internal/sim/inventory"
	"arrowcraft.ai/internal/sim/tuning"
)

type WorldConfig struct {
	ID     string
	Tuning tuning.Tuning
	Logger *slog.Logger

	// NewUUID defaults to uuid.New. Tests may pin it.
	NewUUID func() uuid.UUID
}

type JoinRequest struct {
	Name string
	Out  chan []byte
	Resp chan JoinResponse
}

type JoinResponse struct {
	Welcome protocol.WelcomeMsg
}

type IntentEnvelope struct {
	Entity ecs.Entity
	Intent protocol.IntentMsg
}

type RecordedJoin struct {
	Entity uint64 `json:"entity"`
	Name   string `json:"name"`
}

type RecordedIntent struct {
	Entity uint64             `json:"entity"`
	Intent protocol.IntentMsg `json:"intent"`
}

type RecordedAttack struct {
	Origin uint64  `json:"origin"`
	Target uint64  `json:"target"`
	Damage float64 `json:"damage"`
}

type TickLogger interface {
	WriteTick(entry TickLogEntry) error
}

type AuditLogger interface {
	WriteAudit(entry AuditEntry) error
}

type TickLogEntry struct {
	Tick    uint64           `json:"tick"`
	Joins   []RecordedJoin   `json:"joins,omitempty"`
	Leaves  []uint64         `json:"leaves,omitempty"`
	Intents []RecordedIntent `json:"intents,omitempty"`
	Attacks []RecordedAttack `json:"attacks,omitempty"`
	Digest  string           `json:"digest"`
}

type AuditEntry struct {
	Tick   uint64 `json:"tick"`
	Actor  uint64 `json:"actor"`
	Action string `json:"action"` // e.g. "CONSUME_ITEM"
	Slot   int    `json:"slot"`
	Item   string `json:"item"`
	From   int    `json:"from"`
	To     int    `json:"to"`
	Reason string `json:"reason,omitempty"`
}

type clientState struct {
	Out chan []byte
}

type stores struct {
	kind   *ecs.Store[component.EntityKind]
	uuid   *ecs.Store[component.UUID]
	name   *ecs.Store[component.Name]
	pos    *ecs.Store[component.Position]
	vel    *ecs.Store[component.Velocity]
	rot    *ecs.Store[component.Rotation]
	inv    *ecs.Store[component.Inventory]
	charge *ecs.Store[component.ChargeState]
	owner  *ecs.Store[component.Owner]
	arrows *ecs.Store[component.ArrowsInEntity]
	health *ecs.Store[component.Health]
	flight *ecs.Store[component.Flight]
}

// World is a single-threaded authoritative simulation. Entity state is only
// touched from the world loop goroutine, except inside the bow pipelines,
// which the loop runs and joins within one step.
type World struct {
	cfg  WorldConfig
	tune tuning.Tuning
	log  *slog.Logger

	tick atomic.Uint64

	reg *ecs.Registry
	st  stores

	releases *events.Queue[events.ReleaseUseItem]
	hits     *events.Queue[events.ProjectileEntityEvent]
	bus      *events.Bus
	spawns   *events.Queue[*ecs.Prefab]
	bow      *bow.Module

	clients map[ecs.Entity]*clientState

	inbox chan IntentEnvelope
	join  chan JoinRequest
	leave chan ecs.Entity
	stop  chan struct{}

	// Optional loggers (may be nil). Implemented in internal/persistence/*.
	tickLogger  TickLogger
	auditLogger AuditLogger

	// Optional snapshot sink (may be nil). Snapshot writing should be off-thread.
	snapshotSink chan<- snapshot.SnapshotV1

	auditMu sync.Mutex
	audits  []AuditEntry

	newUUID func() uuid.UUID
	totals  Totals
	metrics atomic.Value
}

func New(cfg WorldConfig) (*World, error) {
	if cfg.Tuning.TickRateHz == 0 {
		cfg.Tuning = tuning.Defaults()
	}
	if err := cfg.Tuning.Validate(); err != nil {
		return nil, err
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.New(slog.DiscardHandler)
	}
	if cfg.NewUUID == nil {
		cfg.NewUUID = uuid.New
	}

	reg := ecs.NewRegistry()
	w := &World{
		cfg:      cfg,
		tune:     cfg.Tuning,
		log:      cfg.Logger.With("world", cfg.ID),
		reg:      reg,
		releases: events.NewQueue[events.ReleaseUseItem](),
		hits:     events.NewQueue[events.ProjectileEntityEvent](),
		bus:      events.NewBus(),
		spawns:   events.NewQueue[*ecs.Prefab](),
		clients:  map[ecs.Entity]*clientState{},
		inbox:    make(chan IntentEnvelope, 1024),
		join:     make(chan JoinRequest, 64),
		leave:    make(chan ecs.Entity, 64),
		stop:     make(chan struct{}),
		newUUID:  cfg.NewUUID,
		st: stores{
			kind:   ecs.StoreOf[component.EntityKind](reg),
			uuid:   ecs.StoreOf[component.UUID](reg),
			name:   ecs.StoreOf[component.Name](reg),
			pos:    ecs.StoreOf[component.Position](reg),
			vel:    ecs.StoreOf[component.Velocity](reg),
			rot:    ecs.StoreOf[component.Rotation](reg),
			inv:    ecs.StoreOf[component.Inventory](reg),
			charge: ecs.StoreOf[component.ChargeState](reg),
			owner:  ecs.StoreOf[component.Owner](reg),
			arrows: ecs.StoreOf[component.ArrowsInEntity](reg),
			health: ecs.StoreOf[component.Health](reg),
			flight: ecs.StoreOf[component.Flight](reg),
		},
	}
	w.bow = bow.New(bow.ConfigFromTuning(cfg.Tuning), bow.Deps{
		Registry: reg,
		Releases: w.releases,
		Hits:     w.hits,
		Bus:      w.bus,
		Spawner:  w,
		Audit:    w,
		Logger:   w.log,
		Tick:     w.tick.Load,
		NewUUID:  cfg.NewUUID,
	})
	return w, nil
}

func (w *World) SetTickLogger(l TickLogger)                    { w.tickLogger = l }
func (w *World) SetAuditLogger(l AuditLogger)                  { w.auditLogger = l }
func (w *World) SetSnapshotSink(ch chan<- snapshot.SnapshotV1) { w.snapshotSink = ch }

func (w *World) Inbox() chan<- IntentEnvelope { return w.inbox }
func (w *World) Join() chan<- JoinRequest     { return w.join }
func (w *World) Leave() chan<- ecs.Entity     { return w.leave }

func (w *World) CurrentTick() uint64 { return w.tick.Load() }

func (w *World) ID() string {
	if w == nil {
		return ""
	}
	return w.cfg.ID
}

func (w *World) TickRateHz() int {
	if w == nil {
		return 0
	}
	return w.tune.TickRateHz
}

func (w *World) Tuning() tuning.Tuning { return w.tune }

// Spawn queues a prefab; it is materialized at the start of the next step.
func (w *World) Spawn(p *ecs.Prefab) { w.spawns.Push(p) }

// AmmoConsumed records an inventory change made by the release pipeline.
func (w *World) AmmoConsumed(shooter ecs.Entity, c inventory.Consumption) {
	w.auditMu.Lock()
	defer w.auditMu.Unlock()
	w.audits = append(w.audits, AuditEntry{
		Tick:   w.tick.Load(),
		Actor:  uint64(shooter),
		Action: "CONSUME_ITEM",
		Slot:   c.Slot,
		Item:   string(c.Kind),
		From:   c.From,
		To:     c.To,
		Reason: "BOW_RELEASE",
	})
}

func (w *World) drainAudits() []AuditEntry {
	w.auditMu.Lock()
	defer w.auditMu.Unlock()
	out := w.audits
	w.audits = nil
	return out
}
