package eval

import (
	"github.com/awfeequdng/basecode/internal/ast"
	"github.com/awfeequdng/basecode/internal/element"
)

// evalTypeIdentifier resolves a type annotation into a type reference.
// Unresolved names get an unknown placeholder the resolver fixes later.
func (ev *Evaluator) evalTypeIdentifier(ctx *Context, result *Result) bool {
	q := qualifiedFromSymbol(ctx.Node.Lhs)
	typeID := ev.scopes.FindType(q, ctx.Scope)
	if typeID == element.None {
		typeID = ev.builder.MakeUnknownType(ev.scopes.Root(), ev.module, q.String())
	}
	if ctx.Node.IsPointer() {
		typeID = ev.scopes.PointerTo(typeID)
	}
	if ctx.Node.IsArray() {
		size := 0
		if len(ctx.Node.Children) > 0 {
			if sizeID, ok := ev.evaluate(ctx.Node.Children[0], ctx.Scope); ok {
				if v, isConst := ev.reg.AsInteger(sizeID); isConst {
					size = int(v)
				}
			}
		}
		typeID = ev.scopes.ArrayOf(typeID, size)
	}
	result.Element = ev.builder.MakeTypeReference(ctx.Scope, ev.module, ctx.Node.Location, q.String(), typeID)
	return true
}

// evalComposite builds struct/union/enum types. Children are the field
// declarations, evaluated inside the type's inner scope.
func (ev *Evaluator) evalComposite(ctx *Context, result *Result) bool {
	var compositeKind element.CompositeKind
	switch ctx.Node.Kind {
	case ast.KindUnionExpression:
		compositeKind = element.CompositeUnion
	case ast.KindEnumExpression:
		compositeKind = element.CompositeEnum
	default:
		compositeKind = element.CompositeStruct
	}

	typeID := ev.builder.MakeCompositeType(ctx.Scope, ev.module, ctx.Node.Location, ctx.Node.Token.Value, compositeKind)
	t := ev.reg.Type(typeID)
	if _, packed := findAttribute(ctx, "packed"); packed {
		t.Packed = true
	}

	ev.scopes.Push(t.Scope)
	defer ev.scopes.Pop()

	enumOrdinal := uint64(0)
	for _, child := range ctx.Node.Children {
		fieldNode := child
		if fieldNode.Kind == ast.KindStatement {
			fieldNode = fieldNode.Rhs
		}
		switch fieldNode.Kind {
		case ast.KindAssignment, ast.KindConstantAssignment:
			declID, ok := ev.evaluate(fieldNode, t.Scope)
			if !ok {
				return false
			}
			if identID := ev.declarationIdentifier(declID); identID != element.None {
				fieldID := ev.builder.MakeField(t.Scope, ev.module, fieldNode.Location, identID)
				ev.builder.AddTypeField(typeID, fieldID)
			}
		case ast.KindSymbol:
			// bare enum member or typed field symbol
			identID := ev.fieldIdentifierFromSymbol(fieldNode, t.Scope, compositeKind, enumOrdinal)
			if identID == element.None {
				continue
			}
			fieldID := ev.builder.MakeField(t.Scope, ev.module, fieldNode.Location, identID)
			ev.builder.AddTypeField(typeID, fieldID)
			enumOrdinal++
		}
	}

	ev.reg.InitializeLayout(typeID)
	result.Element = typeID
	return true
}

func (ev *Evaluator) declarationIdentifier(declID element.ID) element.ID {
	if ev.reg.KindOf(declID) != element.KindDeclaration {
		return element.None
	}
	if w := ev.reg.Wrapper(declID); w != nil {
		return w.Expr
	}
	return element.None
}

func (ev *Evaluator) fieldIdentifierFromSymbol(node *ast.Node, scopeID element.ID, compositeKind element.CompositeKind, ordinal uint64) element.ID {
	q := qualifiedFromSymbol(node)
	symbolID := ev.builder.MakeSymbol(scopeID, ev.module, node.Location, q, false)
	identID := ev.builder.MakeIdentifier(scopeID, ev.module, node.Location, symbolID)
	ident := ev.reg.Identifier(identID)

	if node.HasTypeIdentifier() {
		if typeRef, ok := ev.evaluate(node.Rhs, scopeID); ok {
			ident.TypeRef = typeRef
		}
		return identID
	}
	if compositeKind == element.CompositeEnum {
		ident.Constant = true
		ident.TypeRef = ev.scopes.FindTypeByName("u32")
		valueID := ev.builder.MakeIntegerLiteral(scopeID, ev.module, node.Location, ordinal, false)
		ident.Initializer = ev.builder.MakeInitializer(scopeID, ev.module, node.Location, valueID)
		ev.reg.AddOwned(identID, ident.Initializer)
		return identID
	}
	ident.InferredType = true
	ev.inferIdentifierType(identID)
	return identID
}

// evalProcExpression builds a procedure type with parameters and returns
// in a fresh inner scope, attaching an instance when a body is present.
func (ev *Evaluator) evalProcExpression(ctx *Context, result *Result) bool {
	typeID := ev.builder.MakeProcedureType(ctx.Scope, ev.module, ctx.Node.Location, "")
	t := ev.reg.Type(typeID)

	ev.scopes.Push(t.Scope)
	defer ev.scopes.Pop()

	if ctx.Node.Rhs != nil {
		for _, param := range ctx.Node.Rhs.Children {
			identID := ev.paramIdentifier(param, t.Scope)
			if identID == element.None {
				return false
			}
			fieldID := ev.builder.MakeField(t.Scope, ev.module, param.Location, identID)
			t.Params = append(t.Params, fieldID)
			ev.reg.AddOwned(typeID, fieldID)
		}
	}

	if ctx.Node.Lhs != nil {
		for _, ret := range ctx.Node.Lhs.Children {
			typeRef, ok := ev.evaluate(ret, t.Scope)
			if !ok {
				return false
			}
			q := element.QualifiedSymbol{Name: "_retval"}
			symbolID := ev.builder.MakeSymbol(t.Scope, ev.module, ret.Location, q, false)
			identID := ev.builder.MakeIdentifier(t.Scope, ev.module, ret.Location, symbolID)
			ev.reg.Identifier(identID).TypeRef = typeRef
			fieldID := ev.builder.MakeField(t.Scope, ev.module, ret.Location, identID)
			t.Returns = append(t.Returns, fieldID)
			ev.reg.AddOwned(typeID, fieldID)
		}
	}

	if _, foreign := findAttribute(ctx, "foreign"); foreign {
		t.Foreign = true
	}

	if len(ctx.Node.Children) > 0 {
		bodyScope := ev.builder.MakeBlock(t.Scope, ev.module, ctx.Node.Location)
		if body := ev.reg.Block(bodyScope); body != nil {
			body.HasFrame = true
		}
		ev.scopes.Push(bodyScope)
		for _, child := range ctx.Node.Children[0].Children {
			elem, ok := ev.evaluate(child, bodyScope)
			if ok {
				ev.addStatementToScope(bodyScope, elem)
			}
		}
		ev.scopes.Pop()
		ev.builder.MakeProcInstance(t.Scope, ev.module, ctx.Node.Location, typeID, bodyScope)
	}

	result.Element = typeID
	return true
}

func (ev *Evaluator) paramIdentifier(node *ast.Node, scopeID element.ID) element.ID {
	q := qualifiedFromSymbol(node)
	symbolID := ev.builder.MakeSymbol(scopeID, ev.module, node.Location, q, false)
	identID := ev.builder.MakeIdentifier(scopeID, ev.module, node.Location, symbolID)
	ident := ev.reg.Identifier(identID)
	if node.HasTypeIdentifier() {
		if typeRef, ok := ev.evaluate(node.Rhs, scopeID); ok {
			ident.TypeRef = typeRef
		}
	} else {
		ident.InferredType = true
		ev.inferIdentifierType(identID)
	}
	return identID
}

func findAttribute(ctx *Context, name string) (*ast.Node, bool) {
	for _, attr := range ctx.Attributes {
		if attr.Token.Value == name {
			return attr, true
		}
	}
	return nil, false
}
