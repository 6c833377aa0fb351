// Package vars groups module-scope identifiers by the storage section
// their emitted variables land in.
package vars

import (
	"github.com/awfeequdng/basecode/internal/element"
	"github.com/awfeequdng/basecode/internal/scope"
	"github.com/awfeequdng/basecode/internal/vm"
)

// Grouping holds the section assignment for every emitted identifier.
type Grouping struct {
	sections map[vm.Section][]element.ID
}

func (g *Grouping) Section(section vm.Section) []element.ID {
	return g.sections[section]
}

// All returns the grouped identifiers in section emission order.
func (g *Grouping) All() []element.ID {
	var out []element.ID
	for _, section := range vm.Sections() {
		out = append(out, g.sections[section]...)
	}
	return out
}

// Group walks every referenced identifier and assigns non-local ones to
// bss, ro_data, data, or text.
func Group(reg *element.Registry, scopes *scope.Manager) *Grouping {
	g := &Grouping{sections: make(map[vm.Section][]element.ID)}
	seen := make(map[element.ID]bool)

	// identifiers backing composite fields or procedure parameters lay
	// out inside their owner, never as section variables
	fieldIdents := make(map[element.ID]bool)
	for _, fieldID := range reg.ByKind(element.KindField) {
		if field := reg.Field(fieldID); field != nil {
			fieldIdents[field.Identifier] = true
		}
	}

	consider := func(identID element.ID) {
		if identID == element.None || seen[identID] {
			return
		}
		seen[identID] = true

		e := reg.Find(identID)
		ident := reg.Identifier(identID)
		if e == nil || ident == nil {
			return
		}
		if scopes.WithinLocalScope(e.Parent) {
			return
		}
		if fieldIdents[identID] {
			return
		}

		typeID := reg.ResolveType(ident.TypeRef)
		switch reg.KindOf(typeID) {
		case element.KindNamespaceType, element.KindModuleType, element.KindGenericType, element.KindUnknownType:
			return
		}

		// procedure-typed identifiers belong to text; their storage is
		// the emitted body
		if reg.KindOf(typeID) == element.KindProcType {
			g.sections[vm.SectionText] = append(g.sections[vm.SectionText], identID)
			return
		}

		if initExcluded(reg, ident.Initializer) {
			return
		}

		section := sectionFor(reg, identID, ident, typeID)
		g.sections[section] = append(g.sections[section], identID)
	}

	for _, refID := range reg.ByKind(element.KindIdentifierReference) {
		if ref := reg.Reference(refID); ref != nil {
			consider(ref.Identifier)
		}
	}
	for _, identID := range reg.ByKind(element.KindIdentifier) {
		consider(identID)
	}

	return g
}

// initExcluded filters identifiers whose initializer declares a type or
// binds a module rather than producing a runtime value.
func initExcluded(reg *element.Registry, initID element.ID) bool {
	if initID == element.None {
		return false
	}
	expr := initID
	if w := reg.Wrapper(initID); w != nil && w.Expr != element.None {
		expr = w.Expr
	}
	kind := reg.KindOf(expr)
	switch {
	case kind == element.KindDirective:
		if d := reg.Directive(expr); d != nil && d.Name == "type" {
			return true
		}
	case kind == element.KindProcType, kind == element.KindCompositeType,
		kind == element.KindTypeReference, kind == element.KindModuleReference,
		kind == element.KindTypeLiteral, kind == element.KindNamespace:
		return true
	}
	return false
}

func sectionFor(reg *element.Registry, identID element.ID, ident *element.Identifier, typeID element.ID) vm.Section {
	if ident.Constant {
		return vm.SectionROData
	}
	if ident.Initializer == element.None {
		return vm.SectionBSS
	}
	// explicitly uninitialized identifiers only reserve storage
	if reg.KindOf(initExpr(reg, ident.Initializer)) == element.KindUninitializedLiteral {
		return vm.SectionBSS
	}
	return vm.SectionData
}

func initExpr(reg *element.Registry, initID element.ID) element.ID {
	if w := reg.Wrapper(initID); w != nil && w.Expr != element.None {
		return w.Expr
	}
	return initID
}
