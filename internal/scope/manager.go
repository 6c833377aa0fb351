// Package scope maintains the lexical scope tree during evaluation and
// answers qualified-name lookups afterwards.
package scope

import (
	"github.com/awfeequdng/basecode/internal/builder"
	"github.com/awfeequdng/basecode/internal/element"
)

type derivedArrayKey struct {
	base element.ID
	size int
}

// Manager tracks the currently-open block during AST evaluation and
// offers lookup services over the finished scope tree.
type Manager struct {
	reg     *element.Registry
	builder *builder.Builder

	root  element.ID
	stack []element.ID

	// name -> type element, per declaring scope
	typeIndex map[element.ID]map[string]element.ID

	// memoized derived types so structurally equal pointers/arrays share
	// identity
	pointerTypes map[element.ID]element.ID
	arrayTypes   map[derivedArrayKey]element.ID
}

func NewManager(b *builder.Builder) *Manager {
	return &Manager{
		reg:          b.Registry(),
		builder:      b,
		typeIndex:    make(map[element.ID]map[string]element.ID),
		pointerTypes: make(map[element.ID]element.ID),
		arrayTypes:   make(map[derivedArrayKey]element.ID),
	}
}

// SetRoot installs the program's root block.
func (m *Manager) SetRoot(root element.ID) {
	m.root = root
}

func (m *Manager) Root() element.ID {
	return m.root
}

// Push opens a block for evaluation.
func (m *Manager) Push(block element.ID) {
	m.stack = append(m.stack, block)
}

// Pop closes the innermost open block.
func (m *Manager) Pop() element.ID {
	if len(m.stack) == 0 {
		return element.None
	}
	top := m.stack[len(m.stack)-1]
	m.stack = m.stack[:len(m.stack)-1]
	return top
}

// Current returns the innermost open block, falling back to the root.
func (m *Manager) Current() element.ID {
	if len(m.stack) == 0 {
		return m.root
	}
	return m.stack[len(m.stack)-1]
}

// DeclareType indexes a type under its name in the declaring scope.
func (m *Manager) DeclareType(scope element.ID, name string, typeID element.ID) {
	if m.typeIndex[scope] == nil {
		m.typeIndex[scope] = make(map[string]element.ID)
	}
	m.typeIndex[scope][name] = typeID
}

// FindType resolves a qualified symbol to a type element, walking the
// scope chain to its root and descending named namespaces for qualified
// symbols. The innermost match wins.
func (m *Manager) FindType(qualified element.QualifiedSymbol, scope element.ID) element.ID {
	if scope == element.None {
		scope = m.Current()
	}
	for s := scope; s != element.None; s = m.parentScope(s) {
		target := s
		if qualified.IsQualified() {
			target = m.descendNamespaces(qualified.Namespaces, s)
			if target == element.None {
				continue
			}
		}
		if types, ok := m.typeIndex[target]; ok {
			if typeID, ok := types[qualified.Name]; ok {
				return typeID
			}
		}
		// a declared identifier can also name a type
		if identID := m.identifierInScope(target, qualified.Name); identID != element.None {
			if typeID := m.typeOfTypeIdentifier(identID); typeID != element.None {
				return typeID
			}
		}
	}
	return element.None
}

// FindTypeByName resolves an unqualified name from the root scope; used
// for the built-in types.
func (m *Manager) FindTypeByName(name string) element.ID {
	return m.FindType(element.QualifiedSymbol{Name: name}, m.root)
}

// FindIdentifier resolves a qualified symbol to the first matching
// declaration, innermost enclosing scope first.
func (m *Manager) FindIdentifier(qualified element.QualifiedSymbol, scope element.ID) element.ID {
	if scope == element.None {
		scope = m.Current()
	}
	for s := scope; s != element.None; s = m.parentScope(s) {
		target := s
		if qualified.IsQualified() {
			target = m.descendNamespaces(qualified.Namespaces, s)
			if target == element.None {
				continue
			}
		}
		if identID := m.identifierInScope(target, qualified.Name); identID != element.None {
			return identID
		}
	}
	return element.None
}

// PointerTo returns the shared pointer type for base, creating it on
// first use.
func (m *Manager) PointerTo(base element.ID) element.ID {
	base = m.reg.ResolveType(base)
	if existing, ok := m.pointerTypes[base]; ok {
		return existing
	}
	typeID := m.builder.MakePointerType(m.root, element.None, base)
	m.pointerTypes[base] = typeID
	m.DeclareType(m.root, m.reg.TypeName(typeID), typeID)
	return typeID
}

// ArrayOf returns the shared array type for (base, size).
func (m *Manager) ArrayOf(base element.ID, size int) element.ID {
	base = m.reg.ResolveType(base)
	key := derivedArrayKey{base: base, size: size}
	if existing, ok := m.arrayTypes[key]; ok {
		return existing
	}
	typeID := m.builder.MakeArrayType(m.root, element.None, base, size)
	m.arrayTypes[key] = typeID
	m.DeclareType(m.root, m.reg.TypeName(typeID), typeID)
	return typeID
}

// WithinLocalScope reports whether block lies inside any procedure-scope
// ancestor.
func (m *Manager) WithinLocalScope(block element.ID) bool {
	for s := block; s != element.None; s = m.parentScope(s) {
		if b := m.reg.Block(s); b != nil && b.HasFrame {
			return true
		}
	}
	return false
}

func (m *Manager) parentScope(block element.ID) element.ID {
	e := m.reg.Find(block)
	if e == nil {
		return element.None
	}
	return e.Parent
}

func (m *Manager) identifierInScope(scope element.ID, name string) element.ID {
	block := m.reg.Block(scope)
	if block == nil {
		return element.None
	}
	for _, identID := range block.Identifiers {
		ident := m.reg.Identifier(identID)
		if ident == nil {
			continue
		}
		if sym := m.reg.Symbol(ident.Symbol); sym != nil && sym.Qualified.Name == name {
			return identID
		}
	}
	return element.None
}

// descendNamespaces follows namespace components from scope; the first
// named-namespace match wins over later matches at higher scopes.
func (m *Manager) descendNamespaces(namespaces []string, scope element.ID) element.ID {
	current := scope
	for _, component := range namespaces {
		identID := m.identifierInScope(current, component)
		if identID == element.None {
			return element.None
		}
		nsBlock := m.namespaceBlock(identID)
		if nsBlock == element.None {
			return element.None
		}
		current = nsBlock
	}
	return current
}

func (m *Manager) namespaceBlock(identID element.ID) element.ID {
	ident := m.reg.Identifier(identID)
	if ident == nil || ident.Initializer == element.None {
		return element.None
	}
	expr := m.initializerExpr(ident.Initializer)
	switch m.reg.KindOf(expr) {
	case element.KindNamespace:
		if w := m.reg.Wrapper(expr); w != nil {
			return w.Expr
		}
	case element.KindModuleReference:
		if w := m.reg.Wrapper(expr); w != nil {
			if mod := m.reg.Module(w.Expr); mod != nil {
				return mod.Scope
			}
		}
	}
	return element.None
}

func (m *Manager) initializerExpr(id element.ID) element.ID {
	if w := m.reg.Wrapper(id); w != nil && w.Expr != element.None {
		return w.Expr
	}
	return id
}

// typeOfTypeIdentifier returns the type an identifier declares, when its
// initializer is a type literal (struct/union/enum/proc) or a type
// directive.
func (m *Manager) typeOfTypeIdentifier(identID element.ID) element.ID {
	ident := m.reg.Identifier(identID)
	if ident == nil || ident.Initializer == element.None {
		return element.None
	}
	expr := m.initializerExpr(ident.Initializer)
	kind := m.reg.KindOf(expr)
	switch {
	case kind.IsType():
		return expr
	case kind == element.KindDirective:
		if d := m.reg.Directive(expr); d != nil && d.Name == "type" {
			return d.TrueBody
		}
	}
	return element.None
}
