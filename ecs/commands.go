package ecs

import "github.com/kamstrup/intmap"

// Commands buffers structural changes and deferred callbacks raised while systems run.
// Nothing queued here touches the storage until Flush, which the Scheduler calls once
// after the last system of a frame. Systems can therefore delete or spawn entities
// while iterating a query without invalidating it.
type Commands struct {
	spawns  [][]any
	deletes []EntityId
	defers  []func()

	deleted *intmap.Map[EntityId, struct{}]
}

func newCommands() *Commands {
	return &Commands{
		deleted: intmap.New[EntityId, struct{}](64),
	}
}

// Defer queues fn to run after all spawns and deletes of this frame are applied.
func (c *Commands) Defer(fn func()) {
	c.defers = append(c.defers, fn)
}

// Spawn queues an entity spawn operation with the given components.
func (c *Commands) Spawn(components ...any) {
	c.spawns = append(c.spawns, components)
}

// Delete queues an entity deletion. Deleting the same entity twice in one frame is
// collapsed into a single delete.
func (c *Commands) Delete(entity EntityId) {
	if c.deleted.Has(entity) {
		return
	}
	c.deleted.Put(entity, struct{}{})
	c.deletes = append(c.deletes, entity)
}

// Deleted reports whether entity has been queued for deletion this frame.
func (c *Commands) Deleted(entity EntityId) bool {
	return c.deleted.Has(entity)
}

// Pending returns the number of queued operations.
func (c *Commands) Pending() int {
	return len(c.spawns) + len(c.deletes) + len(c.defers)
}

// Flush applies deletes, then spawns, then runs deferred callbacks in queue order, and
// resets the buffer. Anything queued by a deferred callback is applied in a further
// round of the same flush, once the callbacks already pending have run.
func (c *Commands) Flush(storage *Storage) {
	var d, s, f int
	for d < len(c.deletes) || s < len(c.spawns) || f < len(c.defers) {
		for ; d < len(c.deletes); d++ {
			storage.Delete(c.deletes[d])
		}
		for ; s < len(c.spawns); s++ {
			storage.Spawn(c.spawns[s]...)
		}
		for ; f < len(c.defers); f++ {
			c.defers[f]()
		}
	}

	clear(c.spawns)
	c.spawns = c.spawns[:0]
	c.deletes = c.deletes[:0]
	clear(c.defers)
	c.defers = c.defers[:0]
	c.deleted.Clear()
}
