package eval

import (
	"fmt"

	"github.com/awfeequdng/basecode/internal/ast"
	"github.com/awfeequdng/basecode/internal/diagnostics"
	"github.com/awfeequdng/basecode/internal/element"
)

func (ev *Evaluator) evalArgumentList(ctx *Context, result *Result) bool {
	var args []element.ID
	for _, child := range ctx.Node.Children {
		if child.Kind == ast.KindPair {
			nameID, ok := ev.evaluate(child.Lhs, ctx.Scope)
			if !ok {
				return false
			}
			valueID, ok := ev.evaluate(child.Rhs, ctx.Scope)
			if !ok {
				return false
			}
			args = append(args, ev.builder.MakeArgumentPair(ctx.Scope, ev.module, child.Location, nameID, valueID))
			continue
		}
		argID, ok := ev.evaluate(child, ctx.Scope)
		if !ok {
			return false
		}
		args = append(args, argID)
	}
	result.Element = ev.builder.MakeArgumentList(ctx.Scope, ev.module, ctx.Node.Location, args)
	return true
}

func (ev *Evaluator) evalProcCall(ctx *Context, result *Result) bool {
	callee, ok := ev.evaluate(ctx.Node.Lhs, ctx.Scope)
	if !ok {
		return false
	}

	argsNode := ctx.Node.Rhs
	if argsNode == nil {
		argsNode = &ast.Node{Kind: ast.KindArgumentList, Location: ctx.Node.Location}
	}
	argsID, ok := ev.evaluate(argsNode, ctx.Scope)
	if !ok {
		return false
	}

	callID := ev.builder.MakeProcCall(ctx.Scope, ev.module, ctx.Node.Location, callee, argsID)
	call := ev.reg.ProcCall(callID)

	// bind the procedure type now when the callee already resolved
	if ref := ev.reg.Reference(callee); ref != nil && ref.Identifier != element.None {
		call.ProcType = ev.reg.IdentifierType(ref.Identifier)
	}
	result.Element = callID
	return true
}

// evalDirective handles the compile-time directives: assembly embeds raw
// VM source, run marks compile-time evaluation, if selects a body, and
// type declares an opaque type marker.
func (ev *Evaluator) evalDirective(ctx *Context, result *Result) bool {
	name := ctx.Node.Token.Value
	d := &element.Directive{Name: name}

	switch name {
	case "assembly":
		raw, ok := ev.evaluate(ctx.Node.Rhs, ctx.Scope)
		if !ok {
			return false
		}
		if ev.reg.KindOf(raw) != element.KindRawBlock {
			ev.bag.Error(diagnostics.ErrGeneric, "#assembly requires a raw block", &ctx.Node.Location)
			return false
		}
		d.Expr = raw

	case "run":
		expr, ok := ev.evaluate(ctx.Node.Rhs, ctx.Scope)
		if !ok {
			return false
		}
		d.Expr = expr

	case "if":
		predicate, ok := ev.evaluate(ctx.Node.Lhs, ctx.Scope)
		if !ok {
			return false
		}
		d.Expr = predicate
		if ctx.Node.Rhs != nil {
			d.TrueBody, ok = ev.evaluate(ctx.Node.Rhs, ctx.Scope)
			if !ok {
				return false
			}
		}
		if len(ctx.Node.Children) > 0 {
			d.FalseBody, ok = ev.evaluate(ctx.Node.Children[0], ctx.Scope)
			if !ok {
				return false
			}
		}

	case "type":
		typeRef, ok := ev.evaluate(ctx.Node.Rhs, ctx.Scope)
		if !ok {
			return false
		}
		d.TrueBody = ev.reg.ResolveType(typeRef)

	case "foreign":
		// marks the adjacent declaration; carried as a plain directive
		if ctx.Node.Rhs != nil {
			expr, ok := ev.evaluate(ctx.Node.Rhs, ctx.Scope)
			if !ok {
				return false
			}
			d.Expr = expr
		}

	default:
		ev.bag.Error(diagnostics.ErrGeneric,
			fmt.Sprintf("unknown directive: #%s", name), &ctx.Node.Location)
		return false
	}

	result.Element = ev.builder.MakeDirective(ctx.Scope, ev.module, ctx.Node.Location, d)
	return true
}

func (ev *Evaluator) evalCast(ctx *Context, result *Result) bool {
	typeRef, ok := ev.evaluate(ctx.Node.Lhs, ctx.Scope)
	if !ok {
		return false
	}
	expr, ok := ev.evaluate(ctx.Node.Rhs, ctx.Scope)
	if !ok {
		return false
	}
	result.Element = ev.builder.MakeCast(ctx.Scope, ev.module, ctx.Node.Location, expr, typeRef)
	return true
}

func (ev *Evaluator) evalTransmute(ctx *Context, result *Result) bool {
	typeRef, ok := ev.evaluate(ctx.Node.Lhs, ctx.Scope)
	if !ok {
		return false
	}
	expr, ok := ev.evaluate(ctx.Node.Rhs, ctx.Scope)
	if !ok {
		return false
	}
	result.Element = ev.builder.MakeTransmute(ctx.Scope, ev.module, ctx.Node.Location, expr, typeRef)
	return true
}
