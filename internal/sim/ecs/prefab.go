package ecs

// Prefab is a fully populated entity description whose identity is reserved
// up front. Nothing is visible in the registry until Materialize runs.
type Prefab struct {
	reg    *Registry
	entity Entity
	sets   []func()
	done   bool
}

func (r *Registry) NewPrefab() *Prefab {
	return &Prefab{reg: r, entity: r.Reserve()}
}

func (p *Prefab) Entity() Entity { return p.entity }

// With queues component v for the prefab's entity.
func With[T any](p *Prefab, v T) *Prefab {
	st := StoreOf[T](p.reg)
	e := p.entity
	p.sets = append(p.sets, func() { st.Set(e, v) })
	return p
}

// Materialize installs the queued components and marks the entity alive.
// Calling it twice is a no-op.
func (p *Prefab) Materialize() Entity {
	if p.done {
		return p.entity
	}
	p.done = true
	for _, set := range p.sets {
		set()
	}
	p.reg.markAlive(p.entity)
	return p.entity
}
