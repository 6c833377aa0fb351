package scope

import (
	"testing"

	"github.com/awfeequdng/basecode/internal/builder"
	"github.com/awfeequdng/basecode/internal/element"
	"github.com/awfeequdng/basecode/internal/source"
)

func newTestManager(t *testing.T) (*Manager, *builder.Builder, element.ID) {
	t.Helper()
	reg := element.NewRegistry()
	b := builder.New(reg)
	m := NewManager(b)
	root := b.MakeBlock(element.None, element.None, source.Location{})
	m.SetRoot(root)
	return m, b, root
}

func declare(b *builder.Builder, scope element.ID, name string) element.ID {
	sym := b.MakeSymbol(scope, element.None, source.Location{}, element.QualifiedSymbol{Name: name}, false)
	return b.MakeIdentifier(scope, element.None, source.Location{}, sym)
}

func TestFindIdentifierInnermostWins(t *testing.T) {
	m, b, root := newTestManager(t)
	outer := declare(b, root, "x")
	child := b.MakeBlock(root, element.None, source.Location{})
	inner := declare(b, child, "x")

	got := m.FindIdentifier(element.QualifiedSymbol{Name: "x"}, child)
	if got != inner {
		t.Errorf("lookup from child = %d, want inner %d", got, inner)
	}
	got = m.FindIdentifier(element.QualifiedSymbol{Name: "x"}, root)
	if got != outer {
		t.Errorf("lookup from root = %d, want outer %d", got, outer)
	}
}

func TestFindIdentifierWalksToRoot(t *testing.T) {
	m, b, root := newTestManager(t)
	target := declare(b, root, "global")
	child := b.MakeBlock(root, element.None, source.Location{})
	grandchild := b.MakeBlock(child, element.None, source.Location{})

	if got := m.FindIdentifier(element.QualifiedSymbol{Name: "global"}, grandchild); got != target {
		t.Errorf("walk to root failed: got %d, want %d", got, target)
	}
	if got := m.FindIdentifier(element.QualifiedSymbol{Name: "missing"}, grandchild); got != element.None {
		t.Error("missing identifier should return None")
	}
}

func TestFindIdentifierThroughNamespace(t *testing.T) {
	m, b, root := newTestManager(t)

	nsScope := b.MakeBlock(root, element.None, source.Location{})
	nsID := b.MakeNamespace(root, element.None, source.Location{}, "core", nsScope)
	sym := b.MakeSymbol(root, element.None, source.Location{}, element.QualifiedSymbol{Name: "core"}, true)
	identID := b.MakeIdentifier(root, element.None, source.Location{}, sym)
	reg := b.Registry()
	reg.Identifier(identID).Initializer = b.MakeInitializer(root, element.None, source.Location{}, nsID)

	target := declare(b, nsScope, "value")

	got := m.FindIdentifier(element.QualifiedSymbol{Namespaces: []string{"core"}, Name: "value"}, root)
	if got != target {
		t.Errorf("qualified lookup = %d, want %d", got, target)
	}
}

func TestFindTypeDeclared(t *testing.T) {
	m, b, root := newTestManager(t)
	typeID := b.MakeBoolType(root, element.None)
	m.DeclareType(root, "bool", typeID)

	child := b.MakeBlock(root, element.None, source.Location{})
	if got := m.FindType(element.QualifiedSymbol{Name: "bool"}, child); got != typeID {
		t.Errorf("FindType = %d, want %d", got, typeID)
	}
	if got := m.FindTypeByName("bool"); got != typeID {
		t.Errorf("FindTypeByName = %d, want %d", got, typeID)
	}
}

func TestDerivedTypesShareIdentity(t *testing.T) {
	m, b, root := newTestManager(t)
	base := b.MakeBoolType(root, element.None)
	m.DeclareType(root, "bool", base)

	first := m.PointerTo(base)
	second := m.PointerTo(base)
	if first != second {
		t.Error("pointer types to the same base must share identity")
	}

	arr1 := m.ArrayOf(base, 4)
	arr2 := m.ArrayOf(base, 4)
	arr3 := m.ArrayOf(base, 8)
	if arr1 != arr2 {
		t.Error("array types with equal base and size must share identity")
	}
	if arr1 == arr3 {
		t.Error("array types with different sizes must differ")
	}
}

func TestWithinLocalScope(t *testing.T) {
	m, b, root := newTestManager(t)
	reg := b.Registry()

	procBody := b.MakeBlock(root, element.None, source.Location{})
	reg.Block(procBody).HasFrame = true
	nested := b.MakeBlock(procBody, element.None, source.Location{})

	if !m.WithinLocalScope(nested) {
		t.Error("block inside a frame scope should be local")
	}
	if m.WithinLocalScope(root) {
		t.Error("root block is not local")
	}
}

func TestScopeStack(t *testing.T) {
	m, b, root := newTestManager(t)
	child := b.MakeBlock(root, element.None, source.Location{})

	if m.Current() != root {
		t.Error("Current should fall back to root")
	}
	m.Push(child)
	if m.Current() != child {
		t.Error("Current should return the pushed block")
	}
	if m.Pop() != child {
		t.Error("Pop should return the pushed block")
	}
	if m.Current() != root {
		t.Error("Current should return to root after Pop")
	}
}
