package world

import (
	"testing"

	"github.com/udisondev/spawnforge/internal/geom"
)

func TestWorld_AddObject(t *testing.T) {
	w := New()

	parent := &Object{Name: "table", Pos: geom.Point{X: 10, Y: 10}, SpawnID: "spn-a"}
	pid := w.AddObject(parent)
	if pid == 0 {
		t.Fatal("AddObject() returned zero id")
	}

	child := &Object{Name: "cup", Parent: pid}
	cid := w.AddObject(child)

	if len(parent.Children) != 1 || parent.Children[0] != cid {
		t.Errorf("parent.Children = %v, want [%d]", parent.Children, cid)
	}

	orphan := &Object{Name: "ghost", Parent: 999}
	w.AddObject(orphan)
	if orphan.Parent != 0 {
		t.Errorf("orphan.Parent = %d, want 0 for unknown parent", orphan.Parent)
	}

	if w.Len() != 3 {
		t.Errorf("Len() = %d, want 3", w.Len())
	}
	if got := len(w.Roots()); got != 2 {
		t.Errorf("len(Roots()) = %d, want 2", got)
	}
}

func TestWorld_RemoveSpawn(t *testing.T) {
	w := New()

	a := w.AddObject(&Object{Name: "rock", SpawnID: "spn-1"})
	w.AddObject(&Object{Name: "moss", Parent: a})
	w.AddObject(&Object{Name: "rock", SpawnID: "spn-1"})
	keep := w.AddObject(&Object{Name: "tree", SpawnID: "spn-2"})

	removed := w.RemoveSpawn("spn-1")
	if removed != 3 {
		t.Errorf("RemoveSpawn() = %d, want 3", removed)
	}
	if w.Len() != 1 {
		t.Fatalf("Len() = %d, want 1", w.Len())
	}
	if _, ok := w.GetObject(keep); !ok {
		t.Error("unrelated object was removed")
	}
	if len(w.BySpawnID("spn-1")) != 0 {
		t.Error("BySpawnID() still returns removed objects")
	}
}

func TestWorld_RemoveObject_UnlinksParent(t *testing.T) {
	w := New()
	p := w.AddObject(&Object{Name: "p"})
	c := w.AddObject(&Object{Name: "c", Parent: p})

	if n := w.RemoveObject(c); n != 1 {
		t.Errorf("RemoveObject() = %d, want 1", n)
	}
	parent, _ := w.GetObject(p)
	if len(parent.Children) != 0 {
		t.Errorf("parent.Children = %v, want empty", parent.Children)
	}
	if n := w.RemoveObject(c); n != 0 {
		t.Errorf("second RemoveObject() = %d, want 0", n)
	}
}

func TestWorld_Adopt(t *testing.T) {
	w := New()
	w.AddObject(&Object{Name: "filler"})
	chest := w.AddObject(&Object{Name: "chest", Pos: geom.Point{X: 100, Y: 100}})

	nested := New()
	coin := nested.AddObject(&Object{Name: "coin", Pos: geom.Point{X: 90, Y: 95}})
	nested.AddObject(&Object{Name: "sparkle", Parent: coin})
	nested.AddObject(&Object{Name: "gem"})

	roots := w.Adopt(chest, nested, 3)
	if len(roots) != 2 {
		t.Fatalf("Adopt() roots = %d, want 2", len(roots))
	}

	parent, _ := w.GetObject(chest)
	if len(parent.Children) != 2 {
		t.Errorf("chest children = %v, want 2 entries", parent.Children)
	}

	adoptedCoin, _ := w.GetObject(roots[0])
	if adoptedCoin.Name != "coin" || adoptedCoin.ZOffset != 3 || adoptedCoin.Parent != chest {
		t.Errorf("adopted coin = %+v", adoptedCoin)
	}
	if len(adoptedCoin.Children) != 1 {
		t.Fatalf("coin children = %v, want 1", adoptedCoin.Children)
	}
	sparkle, _ := w.GetObject(adoptedCoin.Children[0])
	if sparkle.Name != "sparkle" || sparkle.ZOffset != 0 {
		t.Errorf("sparkle = %+v", sparkle)
	}

	if w.Len() != 5 {
		t.Errorf("Len() = %d, want 5", w.Len())
	}
	if got := len(w.Positions()); got != 2 {
		t.Errorf("len(Positions()) = %d, want 2 top-level objects", got)
	}
}
