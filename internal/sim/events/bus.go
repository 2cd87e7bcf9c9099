package events

// Bus collects the events this core produces for downstream systems
// (damage resolution, client broadcast, logs). Pushing never blocks.
type Bus struct {
	Attacks   *Queue[AttackEntity]
	Spawned   *Queue[EntitySpawned]
	Destroyed *Queue[EntityDestroyed]
}

func NewBus() *Bus {
	return &Bus{
		Attacks:   NewQueue[AttackEntity](),
		Spawned:   NewQueue[EntitySpawned](),
		Destroyed: NewQueue[EntityDestroyed](),
	}
}

// Outgoing is everything drained from the bus in one tick.
type Outgoing struct {
	Attacks   []AttackEntity
	Spawned   []EntitySpawned
	Destroyed []EntityDestroyed
}

func (o Outgoing) Empty() bool {
	return len(o.Attacks) == 0 && len(o.Spawned) == 0 && len(o.Destroyed) == 0
}

func (b *Bus) Drain() Outgoing {
	return Outgoing{
		Attacks:   b.Attacks.Drain(),
		Spawned:   b.Spawned.Drain(),
		Destroyed: b.Destroyed.Drain(),
	}
}
