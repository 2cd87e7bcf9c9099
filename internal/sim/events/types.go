package events

import (
	"arrowcraft.ai/internal/sim/ecs"
	"arrowcraft.ai/internal/sim/geom"
	"arrowcraft.ai/internal/sim/inventory"
)

// ReleaseUseItem is raised when a player lets go of a held use action.
type ReleaseUseItem struct {
	From ecs.Entity
	Item inventory.ItemKind
}

// ProjectileEntityEvent is raised when a projectile strikes an entity.
type ProjectileEntityEvent struct {
	Projectile ecs.Entity
	Client     ecs.Entity
}

// AttackEntity asks downstream damage resolution to hurt Target.
type AttackEntity struct {
	Origin ecs.Entity
	Target ecs.Entity
	Damage float64
}

type EntitySpawned struct {
	Entity   ecs.Entity
	Kind     string
	Position geom.Vec3
	Velocity geom.Vec3
	Yaw      float64
	Pitch    float64
	Owner    ecs.Entity
}

type EntityDestroyed struct {
	Entity ecs.Entity
	Reason string
}

const (
	DestroyHit     = "hit"
	DestroyExpired = "expired"
	DestroyLeft    = "left"
)
