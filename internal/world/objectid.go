package world

import "sync/atomic"

// ObjectID identifies an object inside one World. Zero means "none".
type ObjectID uint32

// ObjectIDGenerator hands out object ids for a single world.
// Ids start at 1 so the zero value can mark a missing parent.
type ObjectIDGenerator struct {
	next atomic.Uint32
}

// NewObjectIDGenerator creates a new ID generator.
func NewObjectIDGenerator() *ObjectIDGenerator {
	return &ObjectIDGenerator{}
}

// Next generates the next object id.
// Thread-safe via atomic increment.
func (g *ObjectIDGenerator) Next() ObjectID {
	return ObjectID(g.next.Add(1))
}
