package eval

import (
	"fmt"

	"github.com/awfeequdng/basecode/internal/ast"
	"github.com/awfeequdng/basecode/internal/diagnostics"
	"github.com/awfeequdng/basecode/internal/element"
)

// evalAssignment creates a declaration when the target introduces a new
// name and a binary assignment otherwise.
func (ev *Evaluator) evalAssignment(ctx *Context, result *Result) bool {
	target := ctx.Node.Lhs
	if target == nil {
		ev.bag.Error(diagnostics.ErrGeneric, "assignment missing target", &ctx.Node.Location)
		return false
	}
	constant := ctx.Node.Kind == ast.KindConstantAssignment

	if target.Kind == ast.KindSymbol {
		q := qualifiedFromSymbol(target)
		existing := ev.scopes.FindIdentifier(q, ctx.Scope)

		// inside a with body an unknown unqualified target is a field of
		// the receiver, not a new declaration
		if existing == element.None && !q.IsQualified() && len(ev.withReceivers) > 0 &&
			!constant && !target.HasTypeIdentifier() {
			lhs, ok := ev.fieldAccessOnReceiver(ctx, q)
			if !ok {
				return false
			}
			rhs, ok := ev.evaluate(ctx.Node.Rhs, ctx.Scope)
			if !ok {
				return false
			}
			result.Element = ev.builder.MakeBinaryOperator(
				ctx.Scope, ev.module, ctx.Node.Location, element.OpAssignment, lhs, rhs)
			return true
		}

		if existing == element.None || constant || target.HasTypeIdentifier() {
			return ev.declareIdentifier(ctx, target, constant, result)
		}
		// assignment to an existing name
		refID := ev.builder.MakeIdentifierReference(ctx.Scope, ev.module, target.Location, q)
		ev.reg.Reference(refID).Identifier = existing
		rhs, ok := ev.evaluate(ctx.Node.Rhs, ctx.Scope)
		if !ok {
			return false
		}
		result.Element = ev.builder.MakeBinaryOperator(
			ctx.Scope, ev.module, ctx.Node.Location, element.OpAssignment, refID, rhs)
		return true
	}

	// member access, dereference, or subscript target
	lhs, ok := ev.evaluate(target, ctx.Scope)
	if !ok {
		return false
	}
	rhs, ok := ev.evaluate(ctx.Node.Rhs, ctx.Scope)
	if !ok {
		return false
	}
	result.Element = ev.builder.MakeBinaryOperator(
		ctx.Scope, ev.module, ctx.Node.Location, element.OpAssignment, lhs, rhs)
	return true
}

// fieldAccessOnReceiver builds `receiver.name` for with-body rewrites.
func (ev *Evaluator) fieldAccessOnReceiver(ctx *Context, q element.QualifiedSymbol) (element.ID, bool) {
	receiver := ev.withReceivers[len(ev.withReceivers)-1]
	recvRef := ev.builder.MakeIdentifierReference(ctx.Scope, ev.module, ctx.Node.Location, receiver)
	if identID := ev.scopes.FindIdentifier(receiver, ctx.Scope); identID != element.None {
		ev.reg.Reference(recvRef).Identifier = identID
	} else {
		ev.UnresolvedRefs = append(ev.UnresolvedRefs, recvRef)
	}
	fieldRef := ev.builder.MakeIdentifierReference(ctx.Scope, ev.module, ctx.Node.Location, q)
	return ev.builder.MakeBinaryOperator(
		ctx.Scope, ev.module, ctx.Node.Location, element.OpMemberAccess, recvRef, fieldRef), true
}

// declareIdentifier builds the identifier, its optional initializer, and
// the declaration element wrapping both.
func (ev *Evaluator) declareIdentifier(ctx *Context, target *ast.Node, constant bool, result *Result) bool {
	q := qualifiedFromSymbol(target)
	symbolID := ev.builder.MakeSymbol(ctx.Scope, ev.module, target.Location, q, constant)

	var typeRef element.ID
	if target.HasTypeIdentifier() {
		var ok bool
		typeRef, ok = ev.evaluate(target.Rhs, ctx.Scope)
		if !ok {
			return false
		}
	}

	declScope := ctx.Scope
	if q.IsQualified() {
		declScope = ev.ensureNamespaces(ctx, q.Namespaces)
	}

	identID := ev.builder.MakeIdentifier(declScope, ev.module, target.Location, symbolID)
	ident := ev.reg.Identifier(identID)
	ident.Constant = constant
	ident.TypeRef = typeRef

	if ctx.Node.Rhs != nil && ctx.Node.Rhs.Kind != ast.KindUninitializedLiteral {
		exprID, ok := ev.evaluate(ctx.Node.Rhs, declScope)
		if !ok {
			return false
		}
		ident.Initializer = ev.builder.MakeInitializer(declScope, ev.module, ctx.Node.Rhs.Location, exprID)
		ev.reg.AddOwned(identID, ident.Initializer)

		// a named type declaration indexes the type under its symbol
		ev.indexDeclaredType(ctx, identID, exprID, q.Name)
	} else if ctx.Node.Rhs != nil {
		exprID, ok := ev.evaluate(ctx.Node.Rhs, declScope)
		if ok {
			ident.Initializer = ev.builder.MakeInitializer(declScope, ev.module, ctx.Node.Rhs.Location, exprID)
			ev.reg.AddOwned(identID, ident.Initializer)
		}
	}

	if typeRef == element.None {
		ident.InferredType = true
		ev.inferIdentifierType(identID)
	}

	result.Element = ev.builder.MakeDeclaration(ctx.Scope, ev.module, ctx.Node.Location, identID)
	return true
}

// inferIdentifierType tries a bottom-up inference from the initializer;
// failures queue the identifier for the unknown-type pass.
func (ev *Evaluator) inferIdentifierType(identID element.ID) {
	ident := ev.reg.Identifier(identID)
	if ident == nil {
		return
	}
	if ident.Initializer != element.None {
		if typeID, ok := ev.reg.InferType(ev.scopes, ident.Initializer); ok {
			ident.TypeRef = typeID
			return
		}
	}
	unknown := ev.builder.MakeUnknownType(ev.scopes.Root(), ev.module, "unknown")
	ident.TypeRef = unknown
	ev.UnknownTypeIdents = append(ev.UnknownTypeIdents, identID)
}

// indexDeclaredType registers struct/union/enum/proc declarations and
// namespaces so later lookups resolve them by name.
func (ev *Evaluator) indexDeclaredType(ctx *Context, identID, exprID element.ID, name string) {
	kind := ev.reg.KindOf(exprID)
	switch {
	case kind.IsType():
		if t := ev.reg.Type(exprID); t != nil && t.Name == "" {
			t.Name = name
		} else if t != nil && kind == element.KindCompositeType {
			t.Name = name
		}
		ev.scopes.DeclareType(ctx.Scope, name, exprID)
	case kind == element.KindDirective:
		if d := ev.reg.Directive(exprID); d != nil && d.Name == "type" {
			ev.scopes.DeclareType(ctx.Scope, name, d.TrueBody)
		}
	}
}

// ensureNamespaces materializes the namespace chain for a qualified
// declaration and returns the innermost namespace block.
func (ev *Evaluator) ensureNamespaces(ctx *Context, namespaces []string) element.ID {
	current := ctx.Scope
	for _, name := range namespaces {
		existing := ev.scopes.FindIdentifier(element.QualifiedSymbol{Name: name}, current)
		if existing != element.None {
			ident := ev.reg.Identifier(existing)
			if ident != nil && ident.Initializer != element.None {
				if w := ev.reg.Wrapper(ident.Initializer); w != nil {
					if ns := ev.reg.Wrapper(w.Expr); ns != nil && ns.Expr != element.None {
						current = ns.Expr
						continue
					}
				}
			}
		}
		nsScope := ev.builder.MakeBlock(current, ev.module, ctx.Node.Location)
		nsID := ev.builder.MakeNamespace(current, ev.module, ctx.Node.Location, name, nsScope)
		symbolID := ev.builder.MakeSymbol(current, ev.module, ctx.Node.Location,
			element.QualifiedSymbol{Name: name}, true)
		identID := ev.builder.MakeIdentifier(current, ev.module, ctx.Node.Location, symbolID)
		ident := ev.reg.Identifier(identID)
		ident.Constant = true
		ident.TypeRef = ev.scopes.FindTypeByName("namespace")
		ident.Initializer = ev.builder.MakeInitializer(current, ev.module, ctx.Node.Location, nsID)
		ev.reg.AddOwned(identID, ident.Initializer)
		current = nsScope
	}
	return current
}

func (ev *Evaluator) evalNamespace(ctx *Context, result *Result) bool {
	body, ok := ev.evaluate(ctx.Node.Rhs, ctx.Scope)
	if !ok {
		return false
	}
	result.Element = ev.builder.MakeNamespace(ctx.Scope, ev.module, ctx.Node.Location, ctx.Node.Token.Value, body)
	return true
}

func (ev *Evaluator) evalModuleExpression(ctx *Context, result *Result) bool {
	// the session resolves the referenced module; the reference element
	// records the use site
	result.Element = ev.builder.MakeModuleReference(ctx.Scope, ev.module, ctx.Node.Location, element.None)
	return true
}

func (ev *Evaluator) evalImport(ctx *Context, result *Result) bool {
	target, ok := ev.evaluate(ctx.Node.Rhs, ctx.Scope)
	if !ok {
		return false
	}
	if ev.reg.KindOf(target) != element.KindModuleReference {
		ev.bag.Error(diagnostics.ErrGeneric,
			fmt.Sprintf("import expects a module expression, got %s", ev.reg.KindOf(target)),
			&ctx.Node.Location)
		return false
	}
	result.Element = target
	return true
}
