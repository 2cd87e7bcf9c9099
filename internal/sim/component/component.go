// Package component holds the component types attached to simulation
// entities. Components are plain values stored in ecs.Store.
package component

import (
	"github.com/google/uuid"

	"arrowcraft.ai/internal/sim/ecs"
	"arrowcraft.ai/internal/sim/geom"
	"arrowcraft.ai/internal/sim/inventory"
)

type EntityKind uint8

const (
	KindPlayer EntityKind = iota + 1
	KindArrow
)

func (k EntityKind) String() string {
	switch k {
	case KindPlayer:
		return "PLAYER"
	case KindArrow:
		return "ARROW"
	default:
		return "UNKNOWN"
	}
}

type UUID struct{ ID uuid.UUID }

type Name struct{ Value string }

type Position struct{ geom.Vec3 }

type Velocity struct{ geom.Vec3 }

// Rotation is in degrees. Pitch is clamped to [-90, 90] by producers.
type Rotation struct {
	Yaw   float64
	Pitch float64
}

// Inventory points at the player's slots. Only the release pipeline
// mutates it during a pass.
type Inventory struct{ *inventory.Inventory }

// ChargeState exists while a bow draw is in progress.
type ChargeState struct {
	Level     float64
	StartTick uint64
}

// Owner is a non-owning back-reference to the entity that fired a
// projectile. It never keeps that entity alive.
type Owner struct{ Entity ecs.Entity }

// ArrowsInEntity counts arrows stuck in an entity. Only ever incremented.
type ArrowsInEntity struct{ Count int32 }

type Health struct {
	Current float64
	Max     float64
}

// Flight tracks a projectile in the air.
type Flight struct {
	SpawnTick uint64
	Age       int
}
