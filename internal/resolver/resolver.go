// Package resolver runs the post-evaluation passes: unknown-identifier
// binding, unknown-type resolution, type checking, and constant folding.
package resolver

import (
	"fmt"

	"github.com/awfeequdng/basecode/internal/builder"
	"github.com/awfeequdng/basecode/internal/diagnostics"
	"github.com/awfeequdng/basecode/internal/element"
	"github.com/awfeequdng/basecode/internal/scope"
)

type Resolver struct {
	reg     *element.Registry
	builder *builder.Builder
	scopes  *scope.Manager
	bag     *diagnostics.Bag
}

func New(b *builder.Builder, scopes *scope.Manager, bag *diagnostics.Bag) *Resolver {
	return &Resolver{
		reg:     b.Registry(),
		builder: b,
		scopes:  scopes,
		bag:     bag,
	}
}

// ResolveUnknownIdentifiers re-runs symbol lookup for each unresolved
// reference until a full pass makes no progress; anything left reports
// P004.
func (r *Resolver) ResolveUnknownIdentifiers(refs []element.ID) bool {
	pending := make([]element.ID, 0, len(refs))
	for _, refID := range refs {
		if ref := r.reg.Reference(refID); ref != nil && ref.Identifier == element.None {
			pending = append(pending, refID)
		}
	}

	for len(pending) > 0 {
		var next []element.ID
		for _, refID := range pending {
			ref := r.reg.Reference(refID)
			e := r.reg.Find(refID)
			if ref == nil || e == nil {
				continue
			}
			identID := r.scopes.FindIdentifier(ref.Qualified, e.Parent)
			if identID == element.None {
				next = append(next, refID)
				continue
			}
			ref.Identifier = identID
			r.bindCallProcType(refID, identID)
		}
		if len(next) == len(pending) {
			for _, refID := range next {
				ref := r.reg.Reference(refID)
				e := r.reg.Find(refID)
				r.bag.Error(
					diagnostics.ErrUnresolvedIdentifier,
					fmt.Sprintf("unresolved identifier: %s", ref.Qualified),
					&e.Location)
			}
			return false
		}
		pending = next
	}
	return true
}

// bindCallProcType fills the procedure type on calls whose callee just
// resolved.
func (r *Resolver) bindCallProcType(refID, identID element.ID) {
	owner := r.reg.OwnerOf(refID)
	if r.reg.KindOf(owner) != element.KindProcCall {
		return
	}
	call := r.reg.ProcCall(owner)
	if call != nil && call.Ref == refID && call.ProcType == element.None {
		call.ProcType = r.reg.IdentifierType(identID)
	}
}

// ResolveUnknownTypes re-infers each queued identifier's type from its
// initializer to a fixed point; failures report P005 per identifier.
func (r *Resolver) ResolveUnknownTypes(idents []element.ID) bool {
	pending := make([]element.ID, 0, len(idents))
	for _, identID := range idents {
		if r.identifierTypeUnknown(identID) {
			pending = append(pending, identID)
		}
	}

	for len(pending) > 0 {
		var next []element.ID
		for _, identID := range pending {
			ident := r.reg.Identifier(identID)
			if ident == nil || ident.Initializer == element.None {
				next = append(next, identID)
				continue
			}
			typeID, ok := r.reg.InferType(r.scopes, ident.Initializer)
			if !ok {
				next = append(next, identID)
				continue
			}
			ident.TypeRef = typeID
			ident.InferredType = true
		}
		if len(next) == len(pending) {
			for _, identID := range next {
				e := r.reg.Find(identID)
				r.bag.Error(
					diagnostics.ErrUnresolvableType,
					fmt.Sprintf("unable to resolve type for identifier: %s", r.identifierName(identID)),
					&e.Location)
			}
			return false
		}
		pending = next
	}
	return true
}

func (r *Resolver) identifierTypeUnknown(identID element.ID) bool {
	ident := r.reg.Identifier(identID)
	if ident == nil {
		return false
	}
	typeID := r.reg.ResolveType(ident.TypeRef)
	return typeID == element.None || r.reg.KindOf(typeID) == element.KindUnknownType
}

func (r *Resolver) identifierName(identID element.ID) string {
	ident := r.reg.Identifier(identID)
	if ident == nil {
		return "?"
	}
	if sym := r.reg.Symbol(ident.Symbol); sym != nil {
		return sym.Qualified.String()
	}
	return "?"
}
