package element

import "strings"

// Companion payload records. Each element kind maps to exactly one of
// these groups; the registry stores them keyed by element ID.

// Literal backs every literal kind plus comments and raw blocks.
type Literal struct {
	Text    string
	Integer uint64
	Float   float64
	Bool    bool
	Rune    rune
	Signed  bool
}

// QualifiedSymbol is an ordered list of namespace components plus a
// terminal name.
type QualifiedSymbol struct {
	Namespaces []string
	Name       string
}

func (q QualifiedSymbol) String() string {
	if len(q.Namespaces) == 0 {
		return q.Name
	}
	return strings.Join(q.Namespaces, ".") + "." + q.Name
}

func (q QualifiedSymbol) IsQualified() bool {
	return len(q.Namespaces) > 0
}

// Symbol backs symbol elements produced from dotted paths.
type Symbol struct {
	Qualified QualifiedSymbol
	Constant  bool
	TypeRef   ID // optional type annotation
}

// Identifier backs declared names.
type Identifier struct {
	Symbol       ID
	TypeRef      ID
	Initializer  ID
	Constant     bool
	InferredType bool
}

// Reference backs identifier use sites; Identifier is zero until the
// resolver binds it.
type Reference struct {
	Qualified  QualifiedSymbol
	Identifier ID
}

// Block backs lexical scopes.
type Block struct {
	Statements  []ID
	Identifiers []ID
	Blocks      []ID
	Defers      []ID // LIFO of deferred expressions
	HasFrame    bool
}

// NumberClass partitions numeric types.
type NumberClass int

const (
	ClassNone NumberClass = iota
	ClassInteger
	ClassFloat
)

// CompositeKind distinguishes composite type layouts.
type CompositeKind int

const (
	CompositeStruct CompositeKind = iota
	CompositeUnion
	CompositeEnum
)

// AccessModel describes how values of a type move at the ABI level.
type AccessModel int

const (
	AccessValue AccessModel = iota
	AccessPointer
)

// Type backs every type kind; the element kind selects which fields apply.
type Type struct {
	Name        string
	SizeInBytes int
	Alignment   int

	// numeric types
	Min    int64
	Max    uint64
	Signed bool
	Class  NumberClass

	// pointer and array types
	Base      ID
	ArraySize int

	// composite and tuple types
	Scope     ID
	Fields    []ID
	Composite CompositeKind
	Packed    bool

	// procedure types
	Params         []ID
	Returns        []ID
	Foreign        bool
	ForeignAddress uint64
	Instances      []ID
}

// Field backs composite and procedure parameter fields.
type Field struct {
	Identifier ID
	Offset     int
}

// Operation backs unary and binary operators; LHS is zero for unary.
type Operation struct {
	Op  Operator
	LHS ID
	RHS ID
}

// Flow backs if, while, with, and case elements.
type Flow struct {
	Predicate   ID
	Body        ID
	Else        ID // else-if chains nest another if element here
	Fallthrough bool
}

// ForLoop backs for-range statements. Dir 0 ascends, 1 descends; RangeKind
// 0 is inclusive, 1 exclusive.
type ForLoop struct {
	Induction ID
	Start     ID
	Stop      ID
	Step      ID
	Dir       int
	RangeKind int
	Body      ID
}

// Switch backs switch statements; the scope block owns the case chain.
type Switch struct {
	Expr  ID
	Scope ID
}

// Statement wraps an expression with its attached labels.
type Statement struct {
	Expr   ID
	Labels []ID
}

// Wrapper backs single-child elements: expression, initializer, defer,
// namespace, break, continue, spread, label, label/module references.
type Wrapper struct {
	Expr ID
	Name string
}

// Return backs return statements.
type Return struct {
	Exprs []ID
}

// ProcCall backs call sites. SignatureID is allocated per foreign
// variadic call site.
type ProcCall struct {
	Ref         ID
	Args        ID
	ProcType    ID
	SignatureID int
}

// ArgumentList preserves call argument order.
type ArgumentList struct {
	Args []ID
}

// ArgumentPair backs named arguments.
type ArgumentPair struct {
	Name  ID
	Value ID
}

// Cast backs cast and transmute elements.
type Cast struct {
	Expr    ID
	TypeRef ID
}

// Directive backs compile-time directives: assembly, run, if, type.
type Directive struct {
	Name      string
	Expr      ID
	TrueBody  ID
	FalseBody ID
}

// TypeReference names a type use site.
type TypeReference struct {
	Name string
	Type ID
}

// Intrinsic backs compiler-implemented calls such as range.
type Intrinsic struct {
	Name string
	Args ID
}

// Module backs one compiled source module.
type Module struct {
	Scope ID
	Path  string
}

// Program aggregates one top-level block per module.
type Program struct {
	Block   ID
	Modules []ID
}

// Attribute backs @name(value) annotations.
type Attribute struct {
	Name string
	Expr ID
}

// ProcInstance is a specialized procedure body attached to a proc type.
type ProcInstance struct {
	Type  ID
	Scope ID
}
