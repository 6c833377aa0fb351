package resolver

import (
	"github.com/awfeequdng/basecode/internal/element"
)

// FoldConstants replaces every foldable operator with the literal it
// evaluates to. Folding is side-effect free: the new literal takes the
// old element's place in its parent and the old element leaves the map.
func (r *Resolver) FoldConstants() bool {
	// collect first: folding mutates the registry
	var candidates []element.ID
	r.reg.Each(func(e *element.Element) bool {
		switch e.Kind {
		case element.KindUnaryOperator, element.KindBinaryOperator:
			if r.reg.IsConstant(e.ID) {
				candidates = append(candidates, e.ID)
			}
		}
		return true
	})

	for _, id := range candidates {
		if r.reg.Find(id) == nil {
			continue // already folded away as a subexpression
		}
		r.foldElement(id)
	}
	return true
}

func (r *Resolver) foldElement(id element.ID) element.ID {
	// fold operands depth-first so the outer fold sees literals
	if op := r.reg.Operation(id); op != nil {
		if op.LHS != element.None {
			r.foldChild(id, op.LHS)
		}
		if op.RHS != element.None {
			r.foldChild(id, op.RHS)
		}
	}

	result, ok := r.reg.Fold(r.scopes, id)
	if !ok {
		return id
	}

	e := r.reg.Find(id)
	owner := r.reg.OwnerOf(id)
	var litID element.ID
	switch result.Kind {
	case element.KindIntegerLiteral:
		litID = r.builder.MakeIntegerLiteral(e.Parent, e.Module, e.Location, result.Integer, result.Signed)
	case element.KindFloatLiteral:
		litID = r.builder.MakeFloatLiteral(e.Parent, e.Module, e.Location, result.Float)
	case element.KindBooleanLiteral:
		litID = r.builder.MakeBooleanLiteral(e.Parent, e.Module, e.Location, result.Bool)
	default:
		return id
	}

	if owner != element.None {
		r.reg.ReplaceChild(owner, id, litID)
	}
	r.reg.Remove(id)
	return litID
}

func (r *Resolver) foldChild(parent, child element.ID) {
	switch r.reg.KindOf(child) {
	case element.KindUnaryOperator, element.KindBinaryOperator:
		if r.reg.IsConstant(child) {
			r.foldElement(child)
		}
	}
}
