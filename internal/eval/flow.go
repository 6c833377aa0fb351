package eval

import (
	"strconv"

	"github.com/awfeequdng/basecode/internal/ast"
	"github.com/awfeequdng/basecode/internal/diagnostics"
	"github.com/awfeequdng/basecode/internal/element"
)

func (ev *Evaluator) evalIf(ctx *Context, result *Result) bool {
	predicate, ok := ev.evaluate(ctx.Node.Lhs, ctx.Scope)
	if !ok {
		return false
	}
	trueBranch, ok := ev.evaluate(ctx.Node.Rhs, ctx.Scope)
	if !ok {
		return false
	}
	falseBranch := element.None
	if len(ctx.Node.Children) > 0 {
		falseBranch, ok = ev.evaluate(ctx.Node.Children[0], ctx.Scope)
		if !ok {
			return false
		}
	}
	result.Element = ev.builder.MakeIf(ctx.Scope, ev.module, ctx.Node.Location, predicate, trueBranch, falseBranch)
	return true
}

func (ev *Evaluator) evalElse(ctx *Context, result *Result) bool {
	body, ok := ev.evaluate(ctx.Node.Rhs, ctx.Scope)
	if !ok {
		return false
	}
	result.Element = body
	return true
}

func (ev *Evaluator) evalWhile(ctx *Context, result *Result) bool {
	predicate, ok := ev.evaluate(ctx.Node.Lhs, ctx.Scope)
	if !ok {
		return false
	}
	body, ok := ev.evaluate(ctx.Node.Rhs, ctx.Scope)
	if !ok {
		return false
	}
	result.Element = ev.builder.MakeWhile(ctx.Scope, ev.module, ctx.Node.Location, predicate, body)
	return true
}

// evalFor lowers `for <name> in range(...)`. The range intrinsic's
// start/stop/step/dir/kind arguments shape the eventual CFG.
func (ev *Evaluator) evalFor(ctx *Context, result *Result) bool {
	if ctx.Node.Rhs == nil || ctx.Node.Rhs.Kind != ast.KindProcCall ||
		calleeName(ctx.Node.Rhs.Lhs) != "range" {
		ev.bag.Error(diagnostics.ErrGeneric, "for statement requires a range expression", &ctx.Node.Location)
		return false
	}

	rangeArgs := ctx.Node.Rhs.Rhs
	var positional []*ast.Node
	named := make(map[string]*ast.Node)
	if rangeArgs != nil {
		for _, arg := range rangeArgs.Children {
			if arg.Kind == ast.KindPair {
				named[qualifiedFromSymbol(arg.Lhs).Name] = arg.Rhs
			} else {
				positional = append(positional, arg)
			}
		}
	}
	if len(positional) < 2 {
		ev.bag.Error(diagnostics.ErrIntrinsicArity,
			"range expects at least start and stop arguments", &ctx.Node.Location)
		return false
	}

	pick := func(index int, name string) *ast.Node {
		if index < len(positional) {
			return positional[index]
		}
		return named[name]
	}
	constInt := func(node *ast.Node, fallback int) int {
		if node == nil {
			return fallback
		}
		if v, err := strconv.Atoi(node.Token.Value); err == nil {
			return v
		}
		return fallback
	}

	loop := &element.ForLoop{
		Dir:       constInt(pick(3, "dir"), 0),
		RangeKind: constInt(pick(4, "kind"), 1),
	}

	var ok bool
	loop.Start, ok = ev.evaluate(pick(0, "start"), ctx.Scope)
	if !ok {
		return false
	}
	loop.Stop, ok = ev.evaluate(pick(1, "stop"), ctx.Scope)
	if !ok {
		return false
	}
	if stepNode := pick(2, "step"); stepNode != nil {
		loop.Step, ok = ev.evaluate(stepNode, ctx.Scope)
		if !ok {
			return false
		}
	} else {
		loop.Step = ev.builder.MakeIntegerLiteral(ctx.Scope, ev.module, ctx.Node.Location, 1, true)
	}

	// the induction variable is declared in the loop's body scope, which
	// carries a frame so the induction lowers to a frame local
	bodyScope := ev.builder.MakeBlock(ctx.Scope, ev.module, ctx.Node.Location)
	if body := ev.reg.Block(bodyScope); body != nil {
		body.HasFrame = true
	}
	q := qualifiedFromSymbol(ctx.Node.Lhs)
	symbolID := ev.builder.MakeSymbol(bodyScope, ev.module, ctx.Node.Lhs.Location, q, false)
	inductionID := ev.builder.MakeIdentifier(bodyScope, ev.module, ctx.Node.Lhs.Location, symbolID)
	induction := ev.reg.Identifier(inductionID)
	induction.InferredType = true
	if typeID, inferred := ev.reg.InferType(ev.scopes, loop.Start); inferred {
		induction.TypeRef = typeID
	} else {
		induction.TypeRef = ev.scopes.FindTypeByName("s32")
	}
	loop.Induction = inductionID

	if len(ctx.Node.Children) > 0 {
		ev.scopes.Push(bodyScope)
		for _, child := range ctx.Node.Children[0].Children {
			elem, childOK := ev.evaluate(child, bodyScope)
			if childOK {
				ev.addStatementToScope(bodyScope, elem)
			}
		}
		ev.scopes.Pop()
	}
	loop.Body = bodyScope

	result.Element = ev.builder.MakeFor(ctx.Scope, ev.module, ctx.Node.Location, loop)
	return true
}

func calleeName(node *ast.Node) string {
	if node == nil {
		return ""
	}
	if node.Kind == ast.KindSymbolReference {
		return qualifiedFromSymbol(node.Lhs).Name
	}
	return qualifiedFromSymbol(node).Name
}

func (ev *Evaluator) evalSwitch(ctx *Context, result *Result) bool {
	expr, ok := ev.evaluate(ctx.Node.Lhs, ctx.Scope)
	if !ok {
		return false
	}
	scopeID := ev.builder.MakeBlock(ctx.Scope, ev.module, ctx.Node.Location)
	ev.scopes.Push(scopeID)
	defer ev.scopes.Pop()
	if ctx.Node.Rhs != nil {
		for _, child := range ctx.Node.Rhs.Children {
			elem, childOK := ev.evaluate(child, scopeID)
			if childOK {
				ev.addStatementToScope(scopeID, elem)
			}
		}
	}
	result.Element = ev.builder.MakeSwitch(ctx.Scope, ev.module, ctx.Node.Location, expr, scopeID)
	return true
}

func (ev *Evaluator) evalCase(ctx *Context, result *Result) bool {
	expr := element.None
	if ctx.Node.Lhs != nil {
		var ok bool
		expr, ok = ev.evaluate(ctx.Node.Lhs, ctx.Scope)
		if !ok {
			return false
		}
	}
	body, ok := ev.evaluate(ctx.Node.Rhs, ctx.Scope)
	if !ok {
		return false
	}
	result.Element = ev.builder.MakeCase(ctx.Scope, ev.module, ctx.Node.Location, expr, body)
	return true
}

// evalFallthrough marks the enclosing case so emission chains into the
// next case's body.
func (ev *Evaluator) evalFallthrough(ctx *Context, result *Result) bool {
	fallthroughID := ev.builder.MakeFallthrough(ctx.Scope, ev.module, ctx.Node.Location)
	for scopeID := ctx.Scope; scopeID != element.None; {
		e := ev.reg.Find(scopeID)
		if e == nil {
			break
		}
		owner := ev.reg.OwnerOf(scopeID)
		if ev.reg.KindOf(owner) == element.KindCase {
			ev.reg.Flow(owner).Fallthrough = true
			break
		}
		scopeID = e.Parent
	}
	result.Element = fallthroughID
	return true
}

func (ev *Evaluator) evalBreak(ctx *Context, result *Result) bool {
	label := element.None
	if ctx.Node.Lhs != nil {
		label = ev.builder.MakeLabel(ctx.Scope, ev.module, ctx.Node.Location, ctx.Node.Lhs.Token.Value)
	}
	result.Element = ev.builder.MakeBreak(ctx.Scope, ev.module, ctx.Node.Location, label)
	return true
}

func (ev *Evaluator) evalContinue(ctx *Context, result *Result) bool {
	label := element.None
	if ctx.Node.Lhs != nil {
		label = ev.builder.MakeLabel(ctx.Scope, ev.module, ctx.Node.Location, ctx.Node.Lhs.Token.Value)
	}
	result.Element = ev.builder.MakeContinue(ctx.Scope, ev.module, ctx.Node.Location, label)
	return true
}

func (ev *Evaluator) evalDefer(ctx *Context, result *Result) bool {
	expr, ok := ev.evaluate(ctx.Node.Rhs, ctx.Scope)
	if !ok {
		return false
	}
	result.Element = ev.builder.MakeDefer(ctx.Scope, ev.module, ctx.Node.Location, expr)
	return true
}

func (ev *Evaluator) evalReturn(ctx *Context, result *Result) bool {
	var exprs []element.ID
	if ctx.Node.Rhs != nil {
		for _, child := range ctx.Node.Rhs.Children {
			expr, ok := ev.evaluate(child, ctx.Scope)
			if !ok {
				return false
			}
			exprs = append(exprs, expr)
		}
	}
	result.Element = ev.builder.MakeReturn(ctx.Scope, ev.module, ctx.Node.Location, exprs)
	return true
}

// evalWith binds the named value as the implicit receiver for
// unqualified field names inside its body.
func (ev *Evaluator) evalWith(ctx *Context, result *Result) bool {
	expr, ok := ev.evaluate(ctx.Node.Lhs, ctx.Scope)
	if !ok {
		return false
	}

	pushed := false
	if receiver, named := ev.receiverSymbol(expr); named {
		ev.withReceivers = append(ev.withReceivers, receiver)
		pushed = true
	}
	body, ok := ev.evaluate(ctx.Node.Rhs, ctx.Scope)
	if pushed {
		ev.withReceivers = ev.withReceivers[:len(ev.withReceivers)-1]
	}
	if !ok {
		return false
	}
	result.Element = ev.builder.MakeWith(ctx.Scope, ev.module, ctx.Node.Location, expr, body)
	return true
}

func (ev *Evaluator) receiverSymbol(exprID element.ID) (element.QualifiedSymbol, bool) {
	id := exprID
	if w := ev.reg.Wrapper(id); w != nil && w.Expr != element.None {
		id = w.Expr
	}
	if ref := ev.reg.Reference(id); ref != nil {
		return ref.Qualified, true
	}
	return element.QualifiedSymbol{}, false
}
