package element

import (
	"testing"

	"github.com/awfeequdng/basecode/internal/source"
)

func TestRegistryAssignsMonotonicIDs(t *testing.T) {
	reg := NewRegistry()
	var last ID
	for i := 0; i < 10; i++ {
		e := reg.New(KindBlock, None, None, source.Location{})
		if e.ID <= last {
			t.Fatalf("id %d not greater than previous %d", e.ID, last)
		}
		last = e.ID
	}
	if reg.Count() != 10 {
		t.Errorf("Count() = %d, want 10", reg.Count())
	}
}

func TestRegistryFindRoundTrip(t *testing.T) {
	reg := NewRegistry()
	e := reg.New(KindIdentifier, None, None, source.Location{})
	if reg.Find(e.ID) != e {
		t.Error("Find did not return the installed element")
	}
	if reg.Find(9999) != nil {
		t.Error("Find returned an element for an unknown id")
	}
}

func TestOwnedClosureVisitsOnce(t *testing.T) {
	reg := NewRegistry()
	root := reg.New(KindBlock, None, None, source.Location{})
	child := reg.New(KindStatement, root.ID, None, source.Location{})
	grandchild := reg.New(KindIntegerLiteral, root.ID, None, source.Location{})
	reg.AddOwned(root.ID, child.ID)
	reg.AddOwned(child.ID, grandchild.ID)
	// a second edge must not duplicate the visit
	reg.AddOwned(root.ID, grandchild.ID)

	closure := reg.OwnedClosure(root.ID)
	seen := make(map[ID]int)
	for _, id := range closure {
		seen[id]++
	}
	for id, n := range seen {
		if n != 1 {
			t.Errorf("element %d visited %d times", id, n)
		}
	}
	if len(closure) != 3 {
		t.Errorf("closure size = %d, want 3", len(closure))
	}
}

func TestOwnerOfKeepsFirstOwner(t *testing.T) {
	reg := NewRegistry()
	a := reg.New(KindBlock, None, None, source.Location{})
	b := reg.New(KindBlock, None, None, source.Location{})
	lit := reg.New(KindIntegerLiteral, a.ID, None, source.Location{})
	reg.AddOwned(a.ID, lit.ID)
	reg.AddOwned(b.ID, lit.ID)
	if reg.OwnerOf(lit.ID) != a.ID {
		t.Error("OwnerOf should keep the first owner")
	}
}

func TestLabelNames(t *testing.T) {
	reg := NewRegistry()
	e := reg.New(KindIdentifier, None, None, source.Location{})
	want := "identifier_1"
	if e.LabelName() != want {
		t.Errorf("LabelName() = %s, want %s", e.LabelName(), want)
	}
}

func TestByKindInsertionOrder(t *testing.T) {
	reg := NewRegistry()
	first := reg.New(KindIntegerLiteral, None, None, source.Location{})
	reg.New(KindBlock, None, None, source.Location{})
	second := reg.New(KindIntegerLiteral, None, None, source.Location{})

	ids := reg.ByKind(KindIntegerLiteral)
	if len(ids) != 2 || ids[0] != first.ID || ids[1] != second.ID {
		t.Errorf("ByKind order wrong: %v", ids)
	}
}

func TestReplaceChildInOperation(t *testing.T) {
	reg := NewRegistry()
	op := reg.New(KindBinaryOperator, None, None, source.Location{})
	lhs := reg.New(KindIntegerLiteral, None, None, source.Location{})
	rhs := reg.New(KindIntegerLiteral, None, None, source.Location{})
	reg.SetOperation(op.ID, &Operation{Op: OpAdd, LHS: lhs.ID, RHS: rhs.ID})
	reg.AddOwned(op.ID, lhs.ID)
	reg.AddOwned(op.ID, rhs.ID)

	replacement := reg.New(KindIntegerLiteral, None, None, source.Location{})
	if !reg.ReplaceChild(op.ID, rhs.ID, replacement.ID) {
		t.Fatal("ReplaceChild failed")
	}
	if reg.Operation(op.ID).RHS != replacement.ID {
		t.Error("operation RHS was not rewired")
	}
}

func TestRemoveDropsElement(t *testing.T) {
	reg := NewRegistry()
	e := reg.New(KindBinaryOperator, None, None, source.Location{})
	reg.SetOperation(e.ID, &Operation{Op: OpAdd})
	reg.Remove(e.ID)
	if reg.Find(e.ID) != nil {
		t.Error("removed element still present")
	}
	if reg.Count() != 0 {
		t.Errorf("Count() = %d after removal, want 0", reg.Count())
	}
}
