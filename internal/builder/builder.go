// Package builder owns element construction. Every factory allocates an
// id, stamps the module and parent scope, installs the element in the
// element map, and wires parent/child ownership. Factories never resolve
// names.
package builder

import (
	"fmt"

	"github.com/awfeequdng/basecode/internal/element"
	"github.com/awfeequdng/basecode/internal/source"
)

type Builder struct {
	reg *element.Registry
}

func New(reg *element.Registry) *Builder {
	return &Builder{reg: reg}
}

func (b *Builder) Registry() *element.Registry {
	return b.reg
}

// make allocates the element header. Ownership edges are structural:
// each factory wires the element to the parent that actually holds it,
// so the owned closure of the program reaches every element exactly once.
func (b *Builder) make(kind element.Kind, parent, module element.ID, loc source.Location) *element.Element {
	return b.reg.New(kind, parent, module, loc)
}

// Program and modules

func (b *Builder) MakeProgram() element.ID {
	e := b.reg.New(element.KindProgram, element.None, element.None, source.Location{})
	root := b.MakeBlock(element.None, element.None, source.Location{})
	b.reg.SetProgram(e.ID, &element.Program{Block: root})
	b.reg.AddOwned(e.ID, root)
	return e.ID
}

// MakeModule creates a module whose top-level block chains to the
// program's root block, keeping the built-in types in scope.
func (b *Builder) MakeModule(program element.ID, path string, loc source.Location) element.ID {
	e := b.make(element.KindModule, element.None, element.None, loc)
	e.Module = e.ID
	parentScope := element.None
	if p := b.reg.Program(program); p != nil {
		parentScope = p.Block
	}
	scope := b.MakeBlock(parentScope, e.ID, loc)
	b.reg.SetModule(e.ID, &element.Module{Scope: scope, Path: path})
	b.reg.AddOwned(e.ID, scope)
	if p := b.reg.Program(program); p != nil {
		p.Modules = append(p.Modules, e.ID)
		b.reg.AddOwned(program, e.ID)
	}
	return e.ID
}

func (b *Builder) MakeBlock(parent, module element.ID, loc source.Location) element.ID {
	e := b.make(element.KindBlock, parent, module, loc)
	b.reg.SetBlock(e.ID, &element.Block{})
	if parentBlock := b.reg.Block(parent); parentBlock != nil {
		parentBlock.Blocks = append(parentBlock.Blocks, e.ID)
		b.reg.AddOwned(parent, e.ID)
	}
	return e.ID
}

// Literals

func (b *Builder) MakeIntegerLiteral(parent, module element.ID, loc source.Location, value uint64, signed bool) element.ID {
	e := b.make(element.KindIntegerLiteral, parent, module, loc)
	b.reg.SetLiteral(e.ID, &element.Literal{Integer: value, Signed: signed})
	return e.ID
}

func (b *Builder) MakeFloatLiteral(parent, module element.ID, loc source.Location, value float64) element.ID {
	e := b.make(element.KindFloatLiteral, parent, module, loc)
	b.reg.SetLiteral(e.ID, &element.Literal{Float: value})
	return e.ID
}

func (b *Builder) MakeBooleanLiteral(parent, module element.ID, loc source.Location, value bool) element.ID {
	e := b.make(element.KindBooleanLiteral, parent, module, loc)
	b.reg.SetLiteral(e.ID, &element.Literal{Bool: value})
	return e.ID
}

func (b *Builder) MakeStringLiteral(parent, module element.ID, loc source.Location, value string) element.ID {
	e := b.make(element.KindStringLiteral, parent, module, loc)
	b.reg.SetLiteral(e.ID, &element.Literal{Text: value})
	return e.ID
}

func (b *Builder) MakeCharacterLiteral(parent, module element.ID, loc source.Location, value rune) element.ID {
	e := b.make(element.KindCharacterLiteral, parent, module, loc)
	b.reg.SetLiteral(e.ID, &element.Literal{Rune: value})
	return e.ID
}

func (b *Builder) MakeNilLiteral(parent, module element.ID, loc source.Location) element.ID {
	e := b.make(element.KindNilLiteral, parent, module, loc)
	b.reg.SetLiteral(e.ID, &element.Literal{})
	return e.ID
}

func (b *Builder) MakeUninitializedLiteral(parent, module element.ID, loc source.Location) element.ID {
	e := b.make(element.KindUninitializedLiteral, parent, module, loc)
	b.reg.SetLiteral(e.ID, &element.Literal{})
	return e.ID
}

func (b *Builder) MakeComment(parent, module element.ID, loc source.Location, text string) element.ID {
	e := b.make(element.KindComment, parent, module, loc)
	b.reg.SetLiteral(e.ID, &element.Literal{Text: text})
	return e.ID
}

func (b *Builder) MakeRawBlock(parent, module element.ID, loc source.Location, text string) element.ID {
	e := b.make(element.KindRawBlock, parent, module, loc)
	b.reg.SetLiteral(e.ID, &element.Literal{Text: text})
	return e.ID
}

// Symbols, identifiers, references

func (b *Builder) MakeSymbol(parent, module element.ID, loc source.Location, qualified element.QualifiedSymbol, constant bool) element.ID {
	e := b.make(element.KindSymbol, parent, module, loc)
	b.reg.SetSymbol(e.ID, &element.Symbol{Qualified: qualified, Constant: constant})
	return e.ID
}

func (b *Builder) MakeIdentifier(parent, module element.ID, loc source.Location, symbol element.ID) element.ID {
	e := b.make(element.KindIdentifier, parent, module, loc)
	ident := &element.Identifier{Symbol: symbol}
	if sym := b.reg.Symbol(symbol); sym != nil {
		ident.Constant = sym.Constant
	}
	b.reg.SetIdentifier(e.ID, ident)
	b.reg.AddOwned(e.ID, symbol)
	if block := b.reg.Block(parent); block != nil {
		block.Identifiers = append(block.Identifiers, e.ID)
		b.reg.AddOwned(parent, e.ID)
	}
	return e.ID
}

func (b *Builder) MakeIdentifierReference(parent, module element.ID, loc source.Location, qualified element.QualifiedSymbol) element.ID {
	e := b.make(element.KindIdentifierReference, parent, module, loc)
	b.reg.SetReference(e.ID, &element.Reference{Qualified: qualified})
	return e.ID
}

func (b *Builder) MakeInitializer(parent, module element.ID, loc source.Location, expr element.ID) element.ID {
	e := b.make(element.KindInitializer, parent, module, loc)
	b.reg.SetWrapper(e.ID, &element.Wrapper{Expr: expr})
	b.reg.AddOwned(e.ID, expr)
	return e.ID
}

// Operators

func (b *Builder) MakeUnaryOperator(parent, module element.ID, loc source.Location, op element.Operator, operand element.ID) element.ID {
	e := b.make(element.KindUnaryOperator, parent, module, loc)
	b.reg.SetOperation(e.ID, &element.Operation{Op: op, RHS: operand})
	b.reg.AddOwned(e.ID, operand)
	return e.ID
}

func (b *Builder) MakeBinaryOperator(parent, module element.ID, loc source.Location, op element.Operator, lhs, rhs element.ID) element.ID {
	e := b.make(element.KindBinaryOperator, parent, module, loc)
	b.reg.SetOperation(e.ID, &element.Operation{Op: op, LHS: lhs, RHS: rhs})
	b.reg.AddOwned(e.ID, lhs)
	b.reg.AddOwned(e.ID, rhs)
	return e.ID
}

// Statements and control flow

func (b *Builder) MakeStatement(parent, module element.ID, loc source.Location, expr element.ID, labels []element.ID) element.ID {
	e := b.make(element.KindStatement, parent, module, loc)
	b.reg.SetStatement(e.ID, &element.Statement{Expr: expr, Labels: labels})
	b.reg.AddOwned(e.ID, expr)
	for _, label := range labels {
		b.reg.AddOwned(e.ID, label)
	}
	return e.ID
}

func (b *Builder) MakeExpression(parent, module element.ID, loc source.Location, root element.ID) element.ID {
	e := b.make(element.KindExpression, parent, module, loc)
	b.reg.SetWrapper(e.ID, &element.Wrapper{Expr: root})
	b.reg.AddOwned(e.ID, root)
	return e.ID
}

func (b *Builder) MakeIf(parent, module element.ID, loc source.Location, predicate, trueBranch, falseBranch element.ID) element.ID {
	e := b.make(element.KindIf, parent, module, loc)
	b.reg.SetFlow(e.ID, &element.Flow{Predicate: predicate, Body: trueBranch, Else: falseBranch})
	b.reg.AddOwned(e.ID, predicate)
	b.reg.AddOwned(e.ID, trueBranch)
	b.reg.AddOwned(e.ID, falseBranch)
	return e.ID
}

func (b *Builder) MakeWhile(parent, module element.ID, loc source.Location, predicate, body element.ID) element.ID {
	e := b.make(element.KindWhile, parent, module, loc)
	b.reg.SetFlow(e.ID, &element.Flow{Predicate: predicate, Body: body})
	b.reg.AddOwned(e.ID, predicate)
	b.reg.AddOwned(e.ID, body)
	return e.ID
}

func (b *Builder) MakeFor(parent, module element.ID, loc source.Location, loop *element.ForLoop) element.ID {
	e := b.make(element.KindFor, parent, module, loc)
	b.reg.SetForLoop(e.ID, loop)
	b.reg.AddOwned(e.ID, loop.Induction)
	b.reg.AddOwned(e.ID, loop.Start)
	b.reg.AddOwned(e.ID, loop.Stop)
	b.reg.AddOwned(e.ID, loop.Step)
	b.reg.AddOwned(e.ID, loop.Body)
	return e.ID
}

func (b *Builder) MakeSwitch(parent, module element.ID, loc source.Location, expr, scope element.ID) element.ID {
	e := b.make(element.KindSwitch, parent, module, loc)
	b.reg.SetSwitch(e.ID, &element.Switch{Expr: expr, Scope: scope})
	b.reg.AddOwned(e.ID, expr)
	b.reg.AddOwned(e.ID, scope)
	return e.ID
}

func (b *Builder) MakeCase(parent, module element.ID, loc source.Location, expr, body element.ID) element.ID {
	e := b.make(element.KindCase, parent, module, loc)
	b.reg.SetFlow(e.ID, &element.Flow{Predicate: expr, Body: body})
	b.reg.AddOwned(e.ID, expr)
	b.reg.AddOwned(e.ID, body)
	return e.ID
}

func (b *Builder) MakeFallthrough(parent, module element.ID, loc source.Location) element.ID {
	e := b.make(element.KindFallthrough, parent, module, loc)
	b.reg.SetWrapper(e.ID, &element.Wrapper{})
	return e.ID
}

func (b *Builder) MakeWith(parent, module element.ID, loc source.Location, expr, body element.ID) element.ID {
	e := b.make(element.KindWith, parent, module, loc)
	b.reg.SetFlow(e.ID, &element.Flow{Predicate: expr, Body: body})
	b.reg.AddOwned(e.ID, expr)
	b.reg.AddOwned(e.ID, body)
	return e.ID
}

func (b *Builder) MakeBreak(parent, module element.ID, loc source.Location, label element.ID) element.ID {
	e := b.make(element.KindBreak, parent, module, loc)
	b.reg.SetWrapper(e.ID, &element.Wrapper{Expr: label})
	return e.ID
}

func (b *Builder) MakeContinue(parent, module element.ID, loc source.Location, label element.ID) element.ID {
	e := b.make(element.KindContinue, parent, module, loc)
	b.reg.SetWrapper(e.ID, &element.Wrapper{Expr: label})
	return e.ID
}

func (b *Builder) MakeDefer(parent, module element.ID, loc source.Location, expr element.ID) element.ID {
	e := b.make(element.KindDefer, parent, module, loc)
	b.reg.SetWrapper(e.ID, &element.Wrapper{Expr: expr})
	b.reg.AddOwned(e.ID, expr)
	if block := b.reg.Block(parent); block != nil {
		block.Defers = append(block.Defers, e.ID)
	}
	return e.ID
}

func (b *Builder) MakeReturn(parent, module element.ID, loc source.Location, exprs []element.ID) element.ID {
	e := b.make(element.KindReturn, parent, module, loc)
	b.reg.SetReturn(e.ID, &element.Return{Exprs: exprs})
	for _, expr := range exprs {
		b.reg.AddOwned(e.ID, expr)
	}
	return e.ID
}

func (b *Builder) MakeLabel(parent, module element.ID, loc source.Location, name string) element.ID {
	e := b.make(element.KindLabel, parent, module, loc)
	b.reg.SetWrapper(e.ID, &element.Wrapper{Name: name})
	return e.ID
}

func (b *Builder) MakeNamespace(parent, module element.ID, loc source.Location, name string, scope element.ID) element.ID {
	e := b.make(element.KindNamespace, parent, module, loc)
	b.reg.SetWrapper(e.ID, &element.Wrapper{Expr: scope, Name: name})
	b.reg.AddOwned(e.ID, scope)
	return e.ID
}

func (b *Builder) MakeModuleReference(parent, module element.ID, loc source.Location, target element.ID) element.ID {
	e := b.make(element.KindModuleReference, parent, module, loc)
	b.reg.SetWrapper(e.ID, &element.Wrapper{Expr: target})
	return e.ID
}

// Calls and arguments

func (b *Builder) MakeArgumentList(parent, module element.ID, loc source.Location, args []element.ID) element.ID {
	e := b.make(element.KindArgumentList, parent, module, loc)
	b.reg.SetArgumentList(e.ID, &element.ArgumentList{Args: args})
	for _, arg := range args {
		b.reg.AddOwned(e.ID, arg)
	}
	return e.ID
}

func (b *Builder) MakeArgumentPair(parent, module element.ID, loc source.Location, name, value element.ID) element.ID {
	e := b.make(element.KindArgumentPair, parent, module, loc)
	b.reg.SetArgumentPair(e.ID, &element.ArgumentPair{Name: name, Value: value})
	b.reg.AddOwned(e.ID, name)
	b.reg.AddOwned(e.ID, value)
	return e.ID
}

func (b *Builder) MakeProcCall(parent, module element.ID, loc source.Location, ref, args element.ID) element.ID {
	e := b.make(element.KindProcCall, parent, module, loc)
	b.reg.SetProcCall(e.ID, &element.ProcCall{Ref: ref, Args: args})
	b.reg.AddOwned(e.ID, ref)
	b.reg.AddOwned(e.ID, args)
	return e.ID
}

func (b *Builder) MakeIntrinsic(parent, module element.ID, loc source.Location, name string, args element.ID) element.ID {
	e := b.make(element.KindIntrinsic, parent, module, loc)
	b.reg.SetIntrinsic(e.ID, &element.Intrinsic{Name: name, Args: args})
	b.reg.AddOwned(e.ID, args)
	return e.ID
}

// Casts and directives

func (b *Builder) MakeCast(parent, module element.ID, loc source.Location, expr, typeRef element.ID) element.ID {
	e := b.make(element.KindCast, parent, module, loc)
	b.reg.SetCast(e.ID, &element.Cast{Expr: expr, TypeRef: typeRef})
	b.reg.AddOwned(e.ID, expr)
	b.reg.AddOwned(e.ID, typeRef)
	return e.ID
}

func (b *Builder) MakeTransmute(parent, module element.ID, loc source.Location, expr, typeRef element.ID) element.ID {
	e := b.make(element.KindTransmute, parent, module, loc)
	b.reg.SetCast(e.ID, &element.Cast{Expr: expr, TypeRef: typeRef})
	b.reg.AddOwned(e.ID, expr)
	b.reg.AddOwned(e.ID, typeRef)
	return e.ID
}

func (b *Builder) MakeDirective(parent, module element.ID, loc source.Location, d *element.Directive) element.ID {
	e := b.make(element.KindDirective, parent, module, loc)
	b.reg.SetDirective(e.ID, d)
	b.reg.AddOwned(e.ID, d.Expr)
	b.reg.AddOwned(e.ID, d.TrueBody)
	b.reg.AddOwned(e.ID, d.FalseBody)
	return e.ID
}

func (b *Builder) MakeAttribute(parent, module element.ID, loc source.Location, name string, expr element.ID) element.ID {
	e := b.make(element.KindAttribute, parent, module, loc)
	b.reg.SetAttribute(e.ID, &element.Attribute{Name: name, Expr: expr})
	b.reg.AddOwned(e.ID, expr)
	return e.ID
}

func (b *Builder) MakeDeclaration(parent, module element.ID, loc source.Location, identifier element.ID) element.ID {
	e := b.make(element.KindDeclaration, parent, module, loc)
	b.reg.SetWrapper(e.ID, &element.Wrapper{Expr: identifier})
	b.reg.AddOwned(e.ID, identifier)
	return e.ID
}

func (b *Builder) MakeTypeReference(parent, module element.ID, loc source.Location, name string, typeID element.ID) element.ID {
	e := b.make(element.KindTypeReference, parent, module, loc)
	b.reg.SetTypeReference(e.ID, &element.TypeReference{Name: name, Type: typeID})
	return e.ID
}

func (b *Builder) MakeProcInstance(parent, module element.ID, loc source.Location, procType, scope element.ID) element.ID {
	e := b.make(element.KindProcInstance, parent, module, loc)
	b.reg.SetProcInstance(e.ID, &element.ProcInstance{Type: procType, Scope: scope})
	b.reg.AddOwned(e.ID, scope)
	if t := b.reg.Type(procType); t != nil {
		t.Instances = append(t.Instances, e.ID)
	}
	return e.ID
}

// Fields

func (b *Builder) MakeField(parent, module element.ID, loc source.Location, identifier element.ID) element.ID {
	e := b.make(element.KindField, parent, module, loc)
	b.reg.SetField(e.ID, &element.Field{Identifier: identifier})
	b.reg.AddOwned(e.ID, identifier)
	return e.ID
}

// Types

func (b *Builder) MakeNumericType(parent, module element.ID, props element.NumericProperties) element.ID {
	e := b.make(element.KindNumericType, parent, module, source.Location{})
	b.reg.SetType(e.ID, &element.Type{
		Name:        props.Name,
		SizeInBytes: props.SizeInBytes,
		Alignment:   props.SizeInBytes,
		Min:         props.Min,
		Max:         props.Max,
		Signed:      props.Signed,
		Class:       props.Class,
	})
	b.reg.AddOwned(parent, e.ID)
	return e.ID
}

func (b *Builder) MakeBoolType(parent, module element.ID) element.ID {
	e := b.make(element.KindBoolType, parent, module, source.Location{})
	b.reg.SetType(e.ID, &element.Type{Name: "bool", SizeInBytes: 1, Alignment: 1, Class: element.ClassInteger})
	b.reg.AddOwned(parent, e.ID)
	return e.ID
}

func (b *Builder) MakeRuneType(parent, module element.ID) element.ID {
	e := b.make(element.KindRuneType, parent, module, source.Location{})
	b.reg.SetType(e.ID, &element.Type{Name: "rune", SizeInBytes: 4, Alignment: 4, Class: element.ClassInteger})
	b.reg.AddOwned(parent, e.ID)
	return e.ID
}

func (b *Builder) MakeStringType(parent, module element.ID) element.ID {
	e := b.make(element.KindStringType, parent, module, source.Location{})
	b.reg.SetType(e.ID, &element.Type{Name: "string", SizeInBytes: 16, Alignment: 8})
	b.reg.AddOwned(parent, e.ID)
	return e.ID
}

func (b *Builder) MakeAnyType(parent, module element.ID) element.ID {
	e := b.make(element.KindAnyType, parent, module, source.Location{})
	b.reg.SetType(e.ID, &element.Type{Name: "any", SizeInBytes: 16, Alignment: 8})
	b.reg.AddOwned(parent, e.ID)
	return e.ID
}

func (b *Builder) MakeUnknownType(parent, module element.ID, name string) element.ID {
	e := b.make(element.KindUnknownType, parent, module, source.Location{})
	b.reg.SetType(e.ID, &element.Type{Name: name})
	b.reg.AddOwned(parent, e.ID)
	return e.ID
}

func (b *Builder) MakeNamespaceType(parent, module element.ID) element.ID {
	e := b.make(element.KindNamespaceType, parent, module, source.Location{})
	b.reg.SetType(e.ID, &element.Type{Name: "namespace"})
	b.reg.AddOwned(parent, e.ID)
	return e.ID
}

func (b *Builder) MakeModuleType(parent, module element.ID) element.ID {
	e := b.make(element.KindModuleType, parent, module, source.Location{})
	b.reg.SetType(e.ID, &element.Type{Name: "module"})
	b.reg.AddOwned(parent, e.ID)
	return e.ID
}

const pointerWidth = 8

// MakePointerType derives a pointer type; callers go through the scope
// manager so structurally equal pointers share identity.
func (b *Builder) MakePointerType(parent, module, base element.ID) element.ID {
	e := b.make(element.KindPointerType, parent, module, source.Location{})
	name := fmt.Sprintf("ptr_%s", b.reg.TypeName(base))
	b.reg.SetType(e.ID, &element.Type{
		Name:        name,
		SizeInBytes: pointerWidth,
		Alignment:   pointerWidth,
		Base:        base,
	})
	b.reg.AddOwned(parent, e.ID)
	return e.ID
}

// MakeArrayType derives an array type; identity sharing is the scope
// manager's job.
func (b *Builder) MakeArrayType(parent, module, base element.ID, size int) element.ID {
	e := b.make(element.KindArrayType, parent, module, source.Location{})
	name := fmt.Sprintf("array_%s_%d", b.reg.TypeName(base), size)
	b.reg.SetType(e.ID, &element.Type{
		Name:        name,
		SizeInBytes: b.reg.SizeOf(base) * size,
		Alignment:   b.reg.AlignmentOf(base),
		Base:        base,
		ArraySize:   size,
	})
	b.reg.AddOwned(parent, e.ID)
	return e.ID
}

// MakeCompositeType creates a struct/union/enum type together with its
// inner scope block.
func (b *Builder) MakeCompositeType(parent, module element.ID, loc source.Location, name string, composite element.CompositeKind) element.ID {
	e := b.make(element.KindCompositeType, parent, module, loc)
	b.reg.AddOwned(parent, e.ID)
	scope := b.MakeBlock(parent, module, loc)
	b.reg.AddOwned(e.ID, scope)
	b.reg.SetType(e.ID, &element.Type{Name: name, Scope: scope, Composite: composite})
	return e.ID
}

// MakeTupleType creates an anonymous composite.
func (b *Builder) MakeTupleType(parent, module element.ID, loc source.Location) element.ID {
	e := b.make(element.KindTupleType, parent, module, loc)
	b.reg.AddOwned(parent, e.ID)
	scope := b.MakeBlock(parent, module, loc)
	b.reg.AddOwned(e.ID, scope)
	b.reg.SetType(e.ID, &element.Type{Name: fmt.Sprintf("tuple_%d", e.ID), Scope: scope})
	return e.ID
}

// MakeProcedureType creates a procedure type with a fresh inner scope for
// its parameter and return fields.
func (b *Builder) MakeProcedureType(parent, module element.ID, loc source.Location, name string) element.ID {
	e := b.make(element.KindProcType, parent, module, loc)
	b.reg.AddOwned(parent, e.ID)
	scope := b.MakeBlock(parent, module, loc)
	b.reg.AddOwned(e.ID, scope)
	b.reg.SetType(e.ID, &element.Type{Name: name, Scope: scope, SizeInBytes: pointerWidth, Alignment: pointerWidth})
	return e.ID
}

// AddTypeField appends a field to a composite or procedure type.
func (b *Builder) AddTypeField(typeID element.ID, fieldID element.ID) {
	if t := b.reg.Type(typeID); t != nil {
		t.Fields = append(t.Fields, fieldID)
		b.reg.AddOwned(typeID, fieldID)
	}
}
