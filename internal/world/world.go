package world

import (
	"slices"

	"github.com/udisondev/spawnforge/internal/asset"
	"github.com/udisondev/spawnforge/internal/geom"
)

// Object is one instantiated asset. Parent and child links are ids into
// the owning World.
type Object struct {
	ID          ObjectID          `yaml:"id"`
	Name        string            `yaml:"name"`
	Pos         geom.Point        `yaml:"pos"`
	Parent      ObjectID          `yaml:"parent,omitempty"`
	Children    []ObjectID        `yaml:"children,omitempty"`
	SpawnID     string            `yaml:"spawn_id,omitempty"`
	SpawnMethod string            `yaml:"spawn_method,omitempty"`
	ZOffset     int               `yaml:"z_offset,omitempty"`
	Flipped     bool              `yaml:"flipped,omitempty"`
	Desc        *asset.Descriptor `yaml:"-"`
}

// World is an arena of objects produced by one or more spawn passes.
// It is not safe for concurrent use; each room owns its own World.
type World struct {
	ids     *ObjectIDGenerator
	objects map[ObjectID]*Object
	order   []ObjectID
}

// New creates an empty world.
func New() *World {
	return &World{
		ids:     NewObjectIDGenerator(),
		objects: make(map[ObjectID]*Object),
	}
}

// AddObject assigns a fresh id to obj and stores it. If obj has a parent
// that exists, obj is appended to the parent's children.
func (w *World) AddObject(obj *Object) ObjectID {
	obj.ID = w.ids.Next()
	w.objects[obj.ID] = obj
	w.order = append(w.order, obj.ID)

	if parent, ok := w.objects[obj.Parent]; ok {
		parent.Children = append(parent.Children, obj.ID)
	} else {
		obj.Parent = 0
	}
	return obj.ID
}

// GetObject returns object by id.
func (w *World) GetObject(id ObjectID) (*Object, bool) {
	obj, ok := w.objects[id]
	return obj, ok
}

// Len returns the number of live objects.
func (w *World) Len() int { return len(w.objects) }

// Objects returns live objects in insertion order.
func (w *World) Objects() []*Object {
	out := make([]*Object, 0, len(w.objects))
	for _, id := range w.order {
		if obj, ok := w.objects[id]; ok {
			out = append(out, obj)
		}
	}
	return out
}

// Roots returns objects without a parent, in insertion order.
func (w *World) Roots() []*Object {
	var out []*Object
	for _, obj := range w.Objects() {
		if obj.Parent == 0 {
			out = append(out, obj)
		}
	}
	return out
}

// Positions returns the positions of all top-level objects.
func (w *World) Positions() []geom.Point {
	roots := w.Roots()
	out := make([]geom.Point, len(roots))
	for i, obj := range roots {
		out[i] = obj.Pos
	}
	return out
}

// BySpawnID returns objects tagged with spawnID, in insertion order.
func (w *World) BySpawnID(spawnID string) []*Object {
	var out []*Object
	for _, obj := range w.Objects() {
		if obj.SpawnID == spawnID {
			out = append(out, obj)
		}
	}
	return out
}

// RemoveObject deletes the object and its whole subtree and unlinks it
// from its parent. Returns the number of removed objects.
func (w *World) RemoveObject(id ObjectID) int {
	obj, ok := w.objects[id]
	if !ok {
		return 0
	}
	if parent, ok := w.objects[obj.Parent]; ok {
		parent.Children = slices.DeleteFunc(parent.Children, func(c ObjectID) bool { return c == id })
	}
	return w.removeTree(obj)
}

func (w *World) removeTree(obj *Object) int {
	n := 1
	for _, c := range obj.Children {
		if child, ok := w.objects[c]; ok {
			n += w.removeTree(child)
		}
	}
	delete(w.objects, obj.ID)
	return n
}

// RemoveSpawn deletes every object tagged with spawnID, children included.
func (w *World) RemoveSpawn(spawnID string) int {
	n := 0
	for _, obj := range w.BySpawnID(spawnID) {
		n += w.RemoveObject(obj.ID)
	}
	w.compact()
	return n
}

func (w *World) compact() {
	w.order = slices.DeleteFunc(w.order, func(id ObjectID) bool {
		_, ok := w.objects[id]
		return !ok
	})
}

// Adopt moves every object of nested into w with fresh ids. Nested roots
// become children of parent and get zOffset; inner links are preserved.
// Returns the ids of the adopted roots.
func (w *World) Adopt(parent ObjectID, nested *World, zOffset int) []ObjectID {
	remap := make(map[ObjectID]ObjectID, nested.Len())
	var roots []ObjectID

	for _, obj := range nested.Objects() {
		cp := *obj
		cp.Children = nil
		if obj.Parent == 0 {
			cp.Parent = parent
			cp.ZOffset = zOffset
		} else {
			cp.Parent = remap[obj.Parent]
		}
		id := w.AddObject(&cp)
		remap[obj.ID] = id
		if obj.Parent == 0 {
			roots = append(roots, id)
		}
	}
	return roots
}
