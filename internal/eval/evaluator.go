// Package eval lowers the parser's tree into the element graph. One
// handler per AST node kind; the handler map is closed, so unknown kinds
// fail with a coded error.
package eval

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/awfeequdng/basecode/internal/ast"
	"github.com/awfeequdng/basecode/internal/builder"
	"github.com/awfeequdng/basecode/internal/diagnostics"
	"github.com/awfeequdng/basecode/internal/element"
	"github.com/awfeequdng/basecode/internal/scope"
)

// Context carries the state a handler sees: the node, the open scope,
// and the comments/attributes accumulated for attachment.
type Context struct {
	Node       *ast.Node
	Scope      element.ID
	Comments   []string
	Attributes []*ast.Node
}

// Result receives the element a handler produced.
type Result struct {
	Element element.ID
}

type handler func(*Evaluator, *Context, *Result) bool

// Evaluator drives the AST-to-element transformation for one session.
type Evaluator struct {
	reg     *element.Registry
	builder *builder.Builder
	scopes  *scope.Manager
	bag     *diagnostics.Bag

	module element.ID

	// collected for the resolver passes
	UnresolvedRefs    []element.ID
	UnknownTypeIdents []element.ID

	// active with-statement receivers, innermost last
	withReceivers []element.QualifiedSymbol

	handlers map[ast.NodeKind]handler
}

func New(b *builder.Builder, scopes *scope.Manager, bag *diagnostics.Bag) *Evaluator {
	ev := &Evaluator{
		reg:     b.Registry(),
		builder: b,
		scopes:  scopes,
		bag:     bag,
	}
	ev.handlers = map[ast.NodeKind]handler{
		ast.KindModule:               (*Evaluator).evalModule,
		ast.KindSymbol:               (*Evaluator).evalSymbol,
		ast.KindExpression:           (*Evaluator).evalExpression,
		ast.KindStatement:            (*Evaluator).evalStatement,
		ast.KindStatementBody:        (*Evaluator).evalStatementBody,
		ast.KindAssignment:           (*Evaluator).evalAssignment,
		ast.KindConstantAssignment:   (*Evaluator).evalAssignment,
		ast.KindNumberLiteral:        (*Evaluator).evalNumberLiteral,
		ast.KindStringLiteral:        (*Evaluator).evalStringLiteral,
		ast.KindBooleanLiteral:       (*Evaluator).evalBooleanLiteral,
		ast.KindCharacterLiteral:     (*Evaluator).evalCharacterLiteral,
		ast.KindNullLiteral:          (*Evaluator).evalNilLiteral,
		ast.KindUninitializedLiteral: (*Evaluator).evalUninitializedLiteral,
		ast.KindUnaryOperator:        (*Evaluator).evalUnaryOperator,
		ast.KindBinaryOperator:       (*Evaluator).evalBinaryOperator,
		ast.KindIfExpression:         (*Evaluator).evalIf,
		ast.KindElseIfExpression:     (*Evaluator).evalIf,
		ast.KindElseExpression:       (*Evaluator).evalElse,
		ast.KindWhileStatement:       (*Evaluator).evalWhile,
		ast.KindForInStatement:       (*Evaluator).evalFor,
		ast.KindSwitchExpression:     (*Evaluator).evalSwitch,
		ast.KindCaseExpression:       (*Evaluator).evalCase,
		ast.KindFallthroughStatement: (*Evaluator).evalFallthrough,
		ast.KindBreakStatement:       (*Evaluator).evalBreak,
		ast.KindContinueStatement:    (*Evaluator).evalContinue,
		ast.KindDeferExpression:      (*Evaluator).evalDefer,
		ast.KindReturnStatement:      (*Evaluator).evalReturn,
		ast.KindProcExpression:       (*Evaluator).evalProcExpression,
		ast.KindProcCall:             (*Evaluator).evalProcCall,
		ast.KindArgumentList:         (*Evaluator).evalArgumentList,
		ast.KindStructExpression:     (*Evaluator).evalComposite,
		ast.KindUnionExpression:      (*Evaluator).evalComposite,
		ast.KindEnumExpression:       (*Evaluator).evalComposite,
		ast.KindNamespaceExpression:  (*Evaluator).evalNamespace,
		ast.KindDirective:            (*Evaluator).evalDirective,
		ast.KindCastExpression:       (*Evaluator).evalCast,
		ast.KindTransmuteExpression:  (*Evaluator).evalTransmute,
		ast.KindWithExpression:       (*Evaluator).evalWith,
		ast.KindSymbolReference:      (*Evaluator).evalSymbolReference,
		ast.KindSubscriptExpression:  (*Evaluator).evalSubscript,
		ast.KindModuleExpression:     (*Evaluator).evalModuleExpression,
		ast.KindImportExpression:     (*Evaluator).evalImport,
		ast.KindLabel:                (*Evaluator).evalLabel,
		ast.KindRawBlock:             (*Evaluator).evalRawBlock,
		ast.KindBasicBlock:           (*Evaluator).evalBasicBlock,
		ast.KindTypeIdentifier:       (*Evaluator).evalTypeIdentifier,
	}
	return ev
}

// EvaluateModule builds a module element and evaluates the module node's
// statements into its top-level block.
func (ev *Evaluator) EvaluateModule(program element.ID, node *ast.Node, path string) element.ID {
	moduleID := ev.builder.MakeModule(program, path, node.Location)
	ev.module = moduleID

	mod := ev.reg.Module(moduleID)
	ev.scopes.Push(mod.Scope)
	defer ev.scopes.Pop()

	for _, child := range node.Children {
		elem, ok := ev.evaluate(child, mod.Scope)
		if !ok {
			continue
		}
		ev.addStatementToScope(mod.Scope, elem)
	}
	return moduleID
}

// Evaluate lowers one node in the given scope. Exposed for the session's
// compile-time directive handling.
func (ev *Evaluator) Evaluate(node *ast.Node, scopeID element.ID) (element.ID, bool) {
	return ev.evaluate(node, scopeID)
}

func (ev *Evaluator) evaluate(node *ast.Node, scopeID element.ID) (element.ID, bool) {
	if node == nil {
		return element.None, false
	}
	fn, ok := ev.handlers[node.Kind]
	if !ok {
		ev.bag.Error(
			diagnostics.ErrGeneric,
			fmt.Sprintf("unsupported ast node: %s", node.Kind),
			&node.Location)
		return element.None, false
	}

	ctx := &Context{Node: node, Scope: scopeID}
	for _, comment := range node.Comments {
		ctx.Comments = append(ctx.Comments, comment.Token.Value)
	}
	ctx.Attributes = node.Attributes

	var result Result
	if !fn(ev, ctx, &result) {
		return element.None, false
	}
	ev.applyContext(ctx, result.Element)
	return result.Element, true
}

func (ev *Evaluator) applyContext(ctx *Context, id element.ID) {
	e := ev.reg.Find(id)
	if e == nil {
		return
	}
	e.Comments = append(e.Comments, ctx.Comments...)
	for _, attr := range ctx.Attributes {
		var exprID element.ID
		if attr.Rhs != nil {
			exprID, _ = ev.evaluate(attr.Rhs, ctx.Scope)
		}
		attrID := ev.builder.MakeAttribute(ctx.Scope, ev.module, attr.Location, attr.Token.Value, exprID)
		if e.Attributes == nil {
			e.Attributes = make(map[string]element.ID)
		}
		e.Attributes[attr.Token.Value] = attrID
	}
}

func (ev *Evaluator) addStatementToScope(scopeID, elem element.ID) {
	if elem == element.None {
		return
	}
	block := ev.reg.Block(scopeID)
	if block == nil {
		return
	}
	// defers collect into the block's deferred stack instead
	if ev.reg.KindOf(elem) == element.KindDefer {
		return
	}
	block.Statements = append(block.Statements, elem)
	ev.reg.AddOwned(scopeID, elem)
}

// qualifiedFromSymbol reads a dotted symbol node into its components.
func qualifiedFromSymbol(node *ast.Node) element.QualifiedSymbol {
	var q element.QualifiedSymbol
	switch {
	case node == nil:
	case node.Kind == ast.KindSymbol:
		parts := make([]string, 0, len(node.Children))
		for _, part := range node.Children {
			parts = append(parts, part.Token.Value)
		}
		if len(parts) > 0 {
			q.Namespaces = parts[:len(parts)-1]
			q.Name = parts[len(parts)-1]
		}
	default:
		q.Name = node.Token.Value
	}
	return q
}

func (ev *Evaluator) evalModule(ctx *Context, result *Result) bool {
	scopeID := ev.scopes.Current()
	for _, child := range ctx.Node.Children {
		elem, ok := ev.evaluate(child, scopeID)
		if ok {
			ev.addStatementToScope(scopeID, elem)
		}
	}
	result.Element = ev.module
	return true
}

func (ev *Evaluator) evalSymbol(ctx *Context, result *Result) bool {
	q := qualifiedFromSymbol(ctx.Node)
	symbolID := ev.builder.MakeSymbol(ctx.Scope, ev.module, ctx.Node.Location, q, false)
	if ctx.Node.HasTypeIdentifier() {
		typeRef, ok := ev.evaluate(ctx.Node.Rhs, ctx.Scope)
		if ok {
			if sym := ev.reg.Symbol(symbolID); sym != nil {
				sym.TypeRef = typeRef
			}
		}
	}
	result.Element = symbolID
	return true
}

func (ev *Evaluator) evalExpression(ctx *Context, result *Result) bool {
	root, ok := ev.evaluate(ctx.Node.Lhs, ctx.Scope)
	if !ok {
		return false
	}
	result.Element = ev.builder.MakeExpression(ctx.Scope, ev.module, ctx.Node.Location, root)
	return true
}

func (ev *Evaluator) evalStatement(ctx *Context, result *Result) bool {
	var labels []element.ID
	if ctx.Node.Lhs != nil && ctx.Node.Lhs.Kind == ast.KindLabelList {
		for _, labelNode := range ctx.Node.Lhs.Children {
			labels = append(labels, ev.builder.MakeLabel(
				ctx.Scope, ev.module, labelNode.Location, labelNode.Token.Value))
		}
	}
	expr, ok := ev.evaluate(ctx.Node.Rhs, ctx.Scope)
	if !ok {
		return false
	}
	if ev.reg.KindOf(expr) == element.KindDefer {
		// already collected on the block's defer stack
		result.Element = expr
		return true
	}
	result.Element = ev.builder.MakeStatement(ctx.Scope, ev.module, ctx.Node.Location, expr, labels)
	return true
}

func (ev *Evaluator) evalStatementBody(ctx *Context, result *Result) bool {
	blockID := ev.builder.MakeBlock(ctx.Scope, ev.module, ctx.Node.Location)
	ev.scopes.Push(blockID)
	defer ev.scopes.Pop()
	for _, child := range ctx.Node.Children {
		elem, ok := ev.evaluate(child, blockID)
		if ok {
			ev.addStatementToScope(blockID, elem)
		}
	}
	result.Element = blockID
	return true
}

func (ev *Evaluator) evalNumberLiteral(ctx *Context, result *Result) bool {
	text := ctx.Node.Token.Value
	loc := ctx.Node.Location

	if strings.ContainsAny(text, ".eE") && !strings.HasPrefix(text, "0x") {
		value, err := strconv.ParseFloat(text, 64)
		if err != nil {
			ev.bag.Error(diagnostics.ErrGeneric, fmt.Sprintf("invalid number literal: %s", text), &loc)
			return false
		}
		result.Element = ev.builder.MakeFloatLiteral(ctx.Scope, ev.module, loc, value)
		return true
	}

	radix := ctx.Node.Token.Radix
	if radix == 0 {
		radix = 10
	}
	negative := strings.HasPrefix(text, "-")
	digits := strings.TrimPrefix(text, "-")
	switch {
	case strings.HasPrefix(digits, "0x"):
		radix = 16
		digits = digits[2:]
	case strings.HasPrefix(digits, "0b"):
		radix = 2
		digits = digits[2:]
	case strings.HasPrefix(digits, "$"):
		radix = 16
		digits = digits[1:]
	}
	value, err := strconv.ParseUint(digits, radix, 64)
	if err != nil {
		ev.bag.Error(diagnostics.ErrGeneric, fmt.Sprintf("invalid number literal: %s", text), &loc)
		return false
	}
	if negative {
		value = uint64(-int64(value))
	}
	// decimal literals narrow within the signed types; other radixes are
	// bit patterns and stay unsigned
	signed := radix == 10
	result.Element = ev.builder.MakeIntegerLiteral(ctx.Scope, ev.module, loc, value, signed)
	return true
}

func (ev *Evaluator) evalStringLiteral(ctx *Context, result *Result) bool {
	result.Element = ev.builder.MakeStringLiteral(ctx.Scope, ev.module, ctx.Node.Location, ctx.Node.Token.Value)
	return true
}

func (ev *Evaluator) evalBooleanLiteral(ctx *Context, result *Result) bool {
	result.Element = ev.builder.MakeBooleanLiteral(ctx.Scope, ev.module, ctx.Node.Location, ctx.Node.Token.Value == "true")
	return true
}

func (ev *Evaluator) evalCharacterLiteral(ctx *Context, result *Result) bool {
	runes := []rune(ctx.Node.Token.Value)
	value := element.RuneInvalid
	if len(runes) > 0 {
		value = runes[0]
	}
	result.Element = ev.builder.MakeCharacterLiteral(ctx.Scope, ev.module, ctx.Node.Location, value)
	return true
}

func (ev *Evaluator) evalNilLiteral(ctx *Context, result *Result) bool {
	result.Element = ev.builder.MakeNilLiteral(ctx.Scope, ev.module, ctx.Node.Location)
	return true
}

func (ev *Evaluator) evalUninitializedLiteral(ctx *Context, result *Result) bool {
	result.Element = ev.builder.MakeUninitializedLiteral(ctx.Scope, ev.module, ctx.Node.Location)
	return true
}

func (ev *Evaluator) evalUnaryOperator(ctx *Context, result *Result) bool {
	op := element.UnaryOperatorForToken(ctx.Node.Token.Value)
	if op == element.OpUnknown {
		ev.bag.Error(diagnostics.ErrGeneric,
			fmt.Sprintf("unsupported unary operator: %s", ctx.Node.Token.Value),
			&ctx.Node.Location)
		return false
	}
	operand, ok := ev.evaluate(ctx.Node.Rhs, ctx.Scope)
	if !ok {
		return false
	}
	result.Element = ev.builder.MakeUnaryOperator(ctx.Scope, ev.module, ctx.Node.Location, op, operand)
	return true
}

func (ev *Evaluator) evalBinaryOperator(ctx *Context, result *Result) bool {
	op := element.BinaryOperatorForToken(ctx.Node.Token.Value)
	if op == element.OpUnknown {
		ev.bag.Error(diagnostics.ErrGeneric,
			fmt.Sprintf("unsupported binary operator: %s", ctx.Node.Token.Value),
			&ctx.Node.Location)
		return false
	}
	lhs, ok := ev.evaluate(ctx.Node.Lhs, ctx.Scope)
	if !ok {
		return false
	}

	var rhs element.ID
	if op == element.OpMemberAccess {
		// the member name resolves against the composite's fields during
		// type inference, not through the scope chain
		rhs, ok = ev.fieldReference(ctx.Node.Rhs, ctx.Scope)
	} else {
		rhs, ok = ev.evaluate(ctx.Node.Rhs, ctx.Scope)
	}
	if !ok {
		return false
	}
	result.Element = ev.builder.MakeBinaryOperator(ctx.Scope, ev.module, ctx.Node.Location, op, lhs, rhs)
	return true
}

func (ev *Evaluator) fieldReference(node *ast.Node, scopeID element.ID) (element.ID, bool) {
	if node == nil {
		return element.None, false
	}
	var q element.QualifiedSymbol
	switch node.Kind {
	case ast.KindSymbolReference:
		q = qualifiedFromSymbol(node.Lhs)
	case ast.KindSymbol:
		q = qualifiedFromSymbol(node)
	default:
		return ev.evaluate(node, scopeID)
	}
	return ev.builder.MakeIdentifierReference(scopeID, ev.module, node.Location, q), true
}

func (ev *Evaluator) evalSubscript(ctx *Context, result *Result) bool {
	lhs, ok := ev.evaluate(ctx.Node.Lhs, ctx.Scope)
	if !ok {
		return false
	}
	rhs, ok := ev.evaluate(ctx.Node.Rhs, ctx.Scope)
	if !ok {
		return false
	}
	result.Element = ev.builder.MakeBinaryOperator(ctx.Scope, ev.module, ctx.Node.Location, element.OpSubscript, lhs, rhs)
	return true
}

func (ev *Evaluator) evalSymbolReference(ctx *Context, result *Result) bool {
	q := qualifiedFromSymbol(ctx.Node.Lhs)
	if q.Name == "" {
		q.Name = ctx.Node.Token.Value
	}

	// inside a with body, an unqualified name that resolves to nothing
	// rewrites to a field access on the with receiver
	if !q.IsQualified() && len(ev.withReceivers) > 0 &&
		ev.scopes.FindIdentifier(q, ctx.Scope) == element.None {
		access, ok := ev.fieldAccessOnReceiver(ctx, q)
		if !ok {
			return false
		}
		result.Element = access
		return true
	}

	refID := ev.builder.MakeIdentifierReference(ctx.Scope, ev.module, ctx.Node.Location, q)
	if identID := ev.scopes.FindIdentifier(q, ctx.Scope); identID != element.None {
		ev.reg.Reference(refID).Identifier = identID
	} else {
		ev.UnresolvedRefs = append(ev.UnresolvedRefs, refID)
	}
	result.Element = refID
	return true
}

func (ev *Evaluator) evalLabel(ctx *Context, result *Result) bool {
	result.Element = ev.builder.MakeLabel(ctx.Scope, ev.module, ctx.Node.Location, ctx.Node.Token.Value)
	return true
}

func (ev *Evaluator) evalRawBlock(ctx *Context, result *Result) bool {
	result.Element = ev.builder.MakeRawBlock(ctx.Scope, ev.module, ctx.Node.Location, ctx.Node.Token.Value)
	return true
}

func (ev *Evaluator) evalBasicBlock(ctx *Context, result *Result) bool {
	blockID := ev.builder.MakeBlock(ctx.Scope, ev.module, ctx.Node.Location)
	ev.scopes.Push(blockID)
	defer ev.scopes.Pop()
	for _, child := range ctx.Node.Children {
		elem, ok := ev.evaluate(child, blockID)
		if ok {
			ev.addStatementToScope(blockID, elem)
		}
	}
	result.Element = blockID
	return true
}
