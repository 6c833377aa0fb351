package ast

import "github.com/awfeequdng/basecode/internal/source"

// Construction helpers for parse trees. The production parser builds
// nodes directly; these keep hand-built trees in tests readable.

// New creates a node of the given kind.
func New(kind NodeKind) *Node {
	return &Node{Kind: kind}
}

// NewToken creates a node carrying a token value.
func NewToken(kind NodeKind, value string) *Node {
	return &Node{Kind: kind, Token: Token{Value: value}}
}

// NewAt creates a token node with a source span.
func NewAt(kind NodeKind, value string, loc source.Location) *Node {
	return &Node{Kind: kind, Token: Token{Value: value, Location: loc}, Location: loc}
}

// Symbol builds a symbol node from dotted path parts; the final part is
// the leaf name.
func Symbol(parts ...string) *Node {
	sym := New(KindSymbol)
	for _, part := range parts {
		sym.Children = append(sym.Children, NewToken(KindSymbolPart, part))
	}
	return sym
}

// TypedSymbol builds a symbol with an attached type annotation.
func TypedSymbol(typeName string, parts ...string) *Node {
	sym := Symbol(parts...)
	sym.Rhs = TypeIdentifier(typeName)
	return sym
}

// TypeIdentifier builds a type annotation node.
func TypeIdentifier(name string) *Node {
	ti := New(KindTypeIdentifier)
	ti.Lhs = Symbol(name)
	return ti
}

// Assignment builds an assignment with symbol targets and value sources.
func Assignment(target, value *Node) *Node {
	node := New(KindAssignment)
	node.Lhs = target
	node.Rhs = value
	return node
}

// ConstantAssignment builds a constant declaration node.
func ConstantAssignment(target, value *Node) *Node {
	node := New(KindConstantAssignment)
	node.Lhs = target
	node.Rhs = value
	return node
}

// Statement wraps an expression node in a statement.
func Statement(expr *Node) *Node {
	node := New(KindStatement)
	node.Rhs = expr
	return node
}

// Module builds a module node from statements.
func Module(statements ...*Node) *Node {
	node := New(KindModule)
	node.Children = statements
	return node
}

// Binary builds a binary operator node.
func Binary(op string, lhs, rhs *Node) *Node {
	node := NewToken(KindBinaryOperator, op)
	node.Lhs = lhs
	node.Rhs = rhs
	return node
}

// Unary builds a unary operator node.
func Unary(op string, operand *Node) *Node {
	node := NewToken(KindUnaryOperator, op)
	node.Rhs = operand
	return node
}

// Number builds a number literal node.
func Number(text string) *Node {
	return NewToken(KindNumberLiteral, text)
}

// String builds a string literal node.
func String(text string) *Node {
	return NewToken(KindStringLiteral, text)
}

// Boolean builds a boolean literal node.
func Boolean(value bool) *Node {
	if value {
		return NewToken(KindBooleanLiteral, "true")
	}
	return NewToken(KindBooleanLiteral, "false")
}

// ProcCall builds a call with an argument list.
func ProcCall(callee *Node, args ...*Node) *Node {
	list := New(KindArgumentList)
	list.Children = args
	node := New(KindProcCall)
	node.Lhs = callee
	node.Rhs = list
	return node
}

// Ref builds an identifier use site for a dotted name.
func Ref(parts ...string) *Node {
	node := New(KindSymbolReference)
	node.Lhs = Symbol(parts...)
	return node
}

// Pair builds a named argument.
func Pair(name string, value *Node) *Node {
	node := New(KindPair)
	node.Lhs = Symbol(name)
	node.Rhs = value
	return node
}

// Body wraps statements in a statement body.
func Body(statements ...*Node) *Node {
	node := New(KindStatementBody)
	node.Children = statements
	return node
}
