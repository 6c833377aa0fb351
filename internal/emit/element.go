package emit

import (
	"fmt"

	"github.com/awfeequdng/basecode/internal/diagnostics"
	"github.com/awfeequdng/basecode/internal/element"
	"github.com/awfeequdng/basecode/internal/intern"
	"github.com/awfeequdng/basecode/internal/vm"
)

// address is the (base, offset) pair member access and assignment
// targets produce. Direct marks a frame local addressed by name rather
// than through memory.
type address struct {
	Base   vm.Operand
	Offset int64
	Direct bool
}

func (a address) operand() vm.Operand {
	if a.Offset != 0 {
		return a.Base.WithOffset(a.Offset)
	}
	return a.Base
}

// emitStatement lowers one statement-position element into the current
// block. Temporaries acquired during the statement release on exit.
func (e *Emitter) emitStatement(id element.ID) bool {
	return e.statementScope(func() bool {
		return e.emitStatementInner(id)
	})
}

func (e *Emitter) emitStatementInner(id element.ID) bool {
	elem := e.reg.Find(id)
	if elem == nil {
		return true
	}

	switch elem.Kind {
	case element.KindStatement:
		stmt := e.reg.Statement(id)
		if stmt == nil {
			return true
		}
		for _, labelID := range stmt.Labels {
			if w := e.reg.Wrapper(labelID); w != nil {
				e.current.InnerLabel(e.asm.MakeLabel(w.Name))
			}
		}
		return e.emitStatementInner(stmt.Expr)

	case element.KindExpression:
		if w := e.reg.Wrapper(id); w != nil {
			return e.emitStatementInner(w.Expr)
		}
		return true

	case element.KindDeclaration:
		return e.emitDeclaration(id)

	case element.KindBinaryOperator:
		op := e.reg.Operation(id)
		if op != nil && op.Op == element.OpAssignment {
			return e.emitAssignment(id, op)
		}
		_, ok := e.emitValue(id)
		return ok

	case element.KindIf:
		return e.emitIf(id)
	case element.KindWhile:
		return e.emitWhile(id)
	case element.KindFor:
		return e.emitFor(id)
	case element.KindSwitch:
		return e.emitSwitch(id)
	case element.KindBreak:
		return e.emitBreak(id)
	case element.KindContinue:
		return e.emitContinue(id)
	case element.KindReturn:
		return e.emitReturn(id)
	case element.KindProcCall:
		_, ok := e.emitCall(id)
		return ok
	case element.KindBlock:
		return e.emitBlock(id)
	case element.KindDefer, element.KindFallthrough:
		// defers run at scope exit; fallthrough is a case flag
		return true
	case element.KindDirective:
		return e.emitDirective(id)
	case element.KindComment, element.KindImport, element.KindModuleReference,
		element.KindNamespace, element.KindLabel:
		return true
	case element.KindWith:
		// with is lexical sugar; its body emits directly
		if flow := e.reg.Flow(id); flow != nil {
			return e.emitBlock(flow.Body)
		}
		return true
	}

	// expression in statement position
	_, ok := e.emitValue(id)
	return ok
}

// emitBlock emits a scope's statements followed by its deferred stack in
// LIFO order.
func (e *Emitter) emitBlock(id element.ID) bool {
	block := e.reg.Block(id)
	if block == nil {
		return true
	}
	for _, stmtID := range block.Statements {
		if !e.emitStatement(stmtID) {
			return false
		}
		if e.current.IsTerminated() {
			// deferred statements never run on paths that already
			// returned; emitReturn handles them itself
			return true
		}
	}
	return e.emitDefers(id)
}

func (e *Emitter) emitDefers(blockID element.ID) bool {
	block := e.reg.Block(blockID)
	if block == nil {
		return true
	}
	for i := len(block.Defers) - 1; i >= 0; i-- {
		w := e.reg.Wrapper(block.Defers[i])
		if w == nil {
			continue
		}
		if !e.emitStatement(w.Expr) {
			return false
		}
	}
	return true
}

func (e *Emitter) emitDeclaration(id element.ID) bool {
	w := e.reg.Wrapper(id)
	if w == nil {
		return true
	}
	identID := w.Expr
	elem := e.reg.Find(identID)
	ident := e.reg.Identifier(identID)
	if elem == nil || ident == nil {
		return true
	}

	// module-scope storage lives in the section tables
	if !e.scopes.WithinLocalScope(elem.Parent) {
		return true
	}

	typeID := e.reg.IdentifierType(identID)
	size := vm.OpSizeForByteSize(e.reg.SizeOf(typeID))
	e.frame.Local(e.identName(identID), size)

	if ident.Initializer == element.None {
		return true
	}
	value, ok := e.emitValue(e.initExpr(ident.Initializer))
	if !ok {
		return false
	}
	dst := vm.RefOperand(e.asm.MakeNamedRef(vm.RefLocal, e.identName(identID), size))
	e.current.Move(dst, value)
	return true
}

// emitValue lowers an expression and returns the operand holding its
// value.
func (e *Emitter) emitValue(id element.ID) (vm.Operand, bool) {
	elem := e.reg.Find(id)
	if elem == nil {
		return vm.Operand{}, false
	}

	switch elem.Kind {
	case element.KindExpression, element.KindInitializer:
		if w := e.reg.Wrapper(id); w != nil {
			return e.emitValue(w.Expr)
		}

	case element.KindIntegerLiteral:
		lit := e.reg.Literal(id)
		size := e.inferredSize(id)
		return vm.IntOperand(lit.Integer, size), true

	case element.KindFloatLiteral:
		lit := e.reg.Literal(id)
		size := e.inferredSize(id)
		if size == vm.SizeDword {
			return vm.FloatOperand(float64(float32(lit.Float)), size), true
		}
		return vm.FloatOperand(lit.Float, vm.SizeQword), true

	case element.KindBooleanLiteral:
		lit := e.reg.Literal(id)
		if lit.Bool {
			return vm.IntOperand(1, vm.SizeByte), true
		}
		return vm.IntOperand(0, vm.SizeByte), true

	case element.KindCharacterLiteral:
		lit := e.reg.Literal(id)
		return vm.IntOperand(uint64(lit.Rune), vm.SizeDword), true

	case element.KindNilLiteral:
		return vm.IntOperand(0, vm.SizeQword), true

	case element.KindStringLiteral:
		internID, ok := e.interns.ElementToInternID(id)
		if !ok {
			e.bag.Error(diagnostics.ErrMissingVariable,
				"string literal missing from intern table", &elem.Location)
			return vm.Operand{}, false
		}
		return e.labelRef(intern.DataLabel(internID)), true

	case element.KindIdentifierReference:
		ref := e.reg.Reference(id)
		if ref == nil || ref.Identifier == element.None {
			e.bag.Error(diagnostics.ErrUnresolvedIdentifier,
				fmt.Sprintf("unresolved identifier: %s", ref.Qualified), &elem.Location)
			return vm.Operand{}, false
		}
		return e.emitIdentifierValue(ref.Identifier)

	case element.KindIdentifier:
		return e.emitIdentifierValue(id)

	case element.KindUnaryOperator:
		return e.emitUnary(id)

	case element.KindBinaryOperator:
		return e.emitBinary(id)

	case element.KindCast, element.KindTransmute:
		return e.emitCast(id)

	case element.KindProcCall:
		return e.emitCall(id)

	case element.KindIntrinsic:
		return e.emitIntrinsic(id)
	}

	e.bag.Error(diagnostics.ErrGeneric,
		fmt.Sprintf("unsupported expression: %s", elem.Kind), &elem.Location)
	return vm.Operand{}, false
}

func (e *Emitter) emitIdentifierValue(identID element.ID) (vm.Operand, bool) {
	elem := e.reg.Find(identID)
	typeID := e.reg.IdentifierType(identID)
	size := vm.OpSizeForByteSize(e.reg.SizeOf(typeID))

	if e.scopes.WithinLocalScope(elem.Parent) {
		return vm.RefOperand(e.asm.MakeNamedRef(vm.RefLocal, e.identName(identID), size)), true
	}

	// a string bound to one interned literal passes that literal's data
	// label straight through
	if e.reg.KindOf(typeID) == element.KindStringType {
		if ident := e.reg.Identifier(identID); ident != nil && ident.Initializer != element.None {
			if internID, ok := e.interns.ElementToInternID(e.initExpr(ident.Initializer)); ok {
				return e.labelRef(intern.DataLabel(internID)), true
			}
		}
	}

	// composite identifiers yield their address; scalars load
	if e.reg.IsCompositeType(typeID) {
		return e.labelRef(elem.LabelName()), true
	}
	temp, ok := e.acquireTemp(size)
	if !ok {
		return vm.Operand{}, false
	}
	e.current.Load(temp, e.labelRef(elem.LabelName()))
	return temp, true
}

// emitAddress lowers an assignment target or member-access base to a
// (base, offset) pair.
func (e *Emitter) emitAddress(id element.ID) (address, bool) {
	elem := e.reg.Find(id)
	if elem == nil {
		return address{}, false
	}

	switch elem.Kind {
	case element.KindExpression:
		if w := e.reg.Wrapper(id); w != nil {
			return e.emitAddress(w.Expr)
		}

	case element.KindIdentifierReference:
		ref := e.reg.Reference(id)
		if ref == nil || ref.Identifier == element.None {
			e.bag.Error(diagnostics.ErrUnresolvedIdentifier,
				fmt.Sprintf("unresolved identifier: %s", ref.Qualified), &elem.Location)
			return address{}, false
		}
		return e.identifierAddress(ref.Identifier)

	case element.KindIdentifier:
		return e.identifierAddress(id)

	case element.KindUnaryOperator:
		op := e.reg.Operation(id)
		if op != nil && op.Op == element.OpDereference {
			// the pointer's value is the target address
			value, ok := e.emitValue(op.RHS)
			if !ok {
				return address{}, false
			}
			return address{Base: value}, true
		}

	case element.KindBinaryOperator:
		op := e.reg.Operation(id)
		if op == nil {
			break
		}
		switch op.Op {
		case element.OpMemberAccess:
			return e.memberAddress(op)
		case element.OpSubscript:
			return e.subscriptAddress(op)
		}
	}

	e.bag.Error(diagnostics.ErrGeneric,
		fmt.Sprintf("expression is not addressable: %s", elem.Kind), &elem.Location)
	return address{}, false
}

func (e *Emitter) identifierAddress(identID element.ID) (address, bool) {
	elem := e.reg.Find(identID)
	typeID := e.reg.IdentifierType(identID)
	size := vm.OpSizeForByteSize(e.reg.SizeOf(typeID))

	if e.scopes.WithinLocalScope(elem.Parent) {
		return address{
			Base:   vm.RefOperand(e.asm.MakeNamedRef(vm.RefLocal, e.identName(identID), size)),
			Direct: true,
		}, true
	}
	return address{Base: e.labelRef(elem.LabelName())}, true
}

// memberAddress resolves p.x to (address_of_p_value, offset_of_x),
// stepping through one pointer level automatically.
func (e *Emitter) memberAddress(op *element.Operation) (address, bool) {
	base, ok := e.emitAddress(op.LHS)
	if !ok {
		return address{}, false
	}

	lhsType, inferred := e.reg.InferType(e.scopes, op.LHS)
	if !inferred {
		return address{}, false
	}
	lhsType = e.reg.ResolveType(lhsType)

	if e.reg.KindOf(lhsType) == element.KindPointerType {
		// step once to the base: load the pointer's value
		temp, tok := e.acquireTemp(vm.SizeQword)
		if !tok {
			return address{}, false
		}
		if base.Direct {
			e.current.Move(temp, base.operand())
		} else {
			e.current.Load(temp, base.operand())
		}
		base = address{Base: temp}
		if t := e.reg.Type(lhsType); t != nil {
			lhsType = e.reg.ResolveType(t.Base)
		}
	}

	name := e.fieldName(op.RHS)
	_, field := e.reg.FieldByName(lhsType, name)
	if field == nil {
		elem := e.reg.Find(op.RHS)
		e.bag.Error(diagnostics.ErrGeneric,
			fmt.Sprintf("unknown field: %s", name), &elem.Location)
		return address{}, false
	}
	base.Offset += int64(field.Offset)
	base.Direct = false
	return base, true
}

func (e *Emitter) fieldName(id element.ID) string {
	switch e.reg.KindOf(id) {
	case element.KindIdentifierReference:
		if ref := e.reg.Reference(id); ref != nil {
			return ref.Qualified.Name
		}
	case element.KindSymbol:
		if sym := e.reg.Symbol(id); sym != nil {
			return sym.Qualified.Name
		}
	}
	return ""
}

func (e *Emitter) subscriptAddress(op *element.Operation) (address, bool) {
	base, ok := e.emitAddress(op.LHS)
	if !ok {
		return address{}, false
	}
	baseType, inferred := e.reg.InferType(e.scopes, op.LHS)
	if !inferred {
		return address{}, false
	}
	baseType = e.reg.ResolveType(baseType)
	t := e.reg.Type(baseType)
	if t == nil {
		return address{}, false
	}
	elemSize := e.reg.SizeOf(e.reg.ResolveType(t.Base))

	if index, constant := e.reg.AsInteger(op.RHS); constant {
		base.Offset += int64(index) * int64(elemSize)
		return base, true
	}

	index, ok := e.emitValue(op.RHS)
	if !ok {
		return address{}, false
	}
	scaled, ok := e.acquireTemp(vm.SizeQword)
	if !ok {
		return address{}, false
	}
	e.current.Mul(scaled, index, vm.IntOperand(uint64(elemSize), vm.SizeQword))
	e.current.Add(scaled, scaled, base.Base)
	return address{Base: scaled, Offset: base.Offset}, true
}

func (e *Emitter) emitUnary(id element.ID) (vm.Operand, bool) {
	op := e.reg.Operation(id)
	if op == nil {
		return vm.Operand{}, false
	}

	switch op.Op {
	case element.OpNegate, element.OpBinaryNot:
		value, ok := e.emitValue(op.RHS)
		if !ok {
			return vm.Operand{}, false
		}
		temp, ok := e.acquireTemp(value.Size)
		if !ok {
			return vm.Operand{}, false
		}
		if op.Op == element.OpNegate {
			e.current.Neg(temp, value)
		} else {
			e.current.Not(temp, value)
		}
		return temp, true

	case element.OpLogicalNot:
		value, ok := e.emitValue(op.RHS)
		if !ok {
			return vm.Operand{}, false
		}
		temp, ok := e.acquireTemp(vm.SizeByte)
		if !ok {
			return vm.Operand{}, false
		}
		e.current.Xor(temp, value, vm.IntOperand(1, vm.SizeByte))
		return temp, true

	case element.OpAddressOf:
		addr, ok := e.emitAddress(op.RHS)
		if !ok {
			return vm.Operand{}, false
		}
		temp, tok := e.acquireTemp(vm.SizeQword)
		if !tok {
			return vm.Operand{}, false
		}
		e.current.Move(temp, addr.operand())
		return temp, true

	case element.OpDereference:
		value, ok := e.emitValue(op.RHS)
		if !ok {
			return vm.Operand{}, false
		}
		baseType, inferred := e.reg.InferType(e.scopes, id)
		if inferred && e.reg.IsCompositeType(baseType) {
			// composite dereference keeps the address/offset pair
			return value, true
		}
		size := vm.SizeQword
		if inferred {
			size = vm.OpSizeForByteSize(e.reg.SizeOf(baseType))
		}
		temp, tok := e.acquireTemp(size)
		if !tok {
			return vm.Operand{}, false
		}
		e.current.Load(temp, value)
		return temp, true
	}

	elem := e.reg.Find(id)
	e.bag.Error(diagnostics.ErrGeneric,
		fmt.Sprintf("unsupported unary operator: %s", op.Op), &elem.Location)
	return vm.Operand{}, false
}

func (e *Emitter) emitBinary(id element.ID) (vm.Operand, bool) {
	op := e.reg.Operation(id)
	if op == nil {
		return vm.Operand{}, false
	}

	switch {
	case op.Op.IsArithmetic():
		return e.emitArithmetic(id, op)
	case op.Op.IsRelational():
		return e.emitRelational(id, op)
	case op.Op.IsLogical():
		return e.emitLogical(id, op)
	case op.Op == element.OpMemberAccess:
		return e.emitMemberValue(id, op)
	case op.Op == element.OpSubscript:
		return e.emitSubscriptValue(id, op)
	case op.Op == element.OpAssignment:
		if !e.emitAssignment(id, op) {
			return vm.Operand{}, false
		}
		return vm.Operand{}, true
	}

	elem := e.reg.Find(id)
	e.bag.Error(diagnostics.ErrGeneric,
		fmt.Sprintf("unsupported binary operator: %s", op.Op), &elem.Location)
	return vm.Operand{}, false
}

// emitArithmetic produces one three-operand instruction into a fresh
// local of the inferred result type.
func (e *Emitter) emitArithmetic(id element.ID, op *element.Operation) (vm.Operand, bool) {
	lhs, ok := e.emitValue(op.LHS)
	if !ok {
		return vm.Operand{}, false
	}
	rhs, ok := e.emitValue(op.RHS)
	if !ok {
		return vm.Operand{}, false
	}
	size := e.inferredSize(id)
	temp, ok := e.acquireTemp(size)
	if !ok {
		return vm.Operand{}, false
	}

	switch op.Op {
	case element.OpAdd:
		e.current.Add(temp, lhs, rhs)
	case element.OpSubtract:
		e.current.Sub(temp, lhs, rhs)
	case element.OpMultiply:
		e.current.Mul(temp, lhs, rhs)
	case element.OpDivide:
		e.current.Div(temp, lhs, rhs)
	case element.OpModulo:
		e.current.Mod(temp, lhs, rhs)
	case element.OpExponent:
		e.current.Pow(temp, lhs, rhs)
	case element.OpBinaryOr:
		e.current.Or(temp, lhs, rhs)
	case element.OpBinaryAnd:
		e.current.And(temp, lhs, rhs)
	case element.OpBinaryXor:
		e.current.Xor(temp, lhs, rhs)
	case element.OpShiftLeft:
		e.current.Shl(temp, lhs, rhs)
	case element.OpShiftRight:
		e.current.Shr(temp, lhs, rhs)
	case element.OpRotateLeft:
		e.current.Rol(temp, lhs, rhs)
	case element.OpRotateRight:
		e.current.Ror(temp, lhs, rhs)
	}
	return temp, true
}

// emitRelational compares and materializes a byte-sized boolean.
func (e *Emitter) emitRelational(id element.ID, op *element.Operation) (vm.Operand, bool) {
	lhs, ok := e.emitValue(op.LHS)
	if !ok {
		return vm.Operand{}, false
	}
	rhs, ok := e.emitValue(op.RHS)
	if !ok {
		return vm.Operand{}, false
	}
	temp, ok := e.acquireTemp(vm.SizeByte)
	if !ok {
		return vm.Operand{}, false
	}
	e.emitComparison(op, lhs, rhs, temp)
	return temp, true
}

func (e *Emitter) emitComparison(op *element.Operation, lhs, rhs, dst vm.Operand) {
	e.current.Cmp(lhs, rhs)
	signed := e.operandTypeSigned(op.LHS)
	var setOp vm.Opcode
	switch op.Op {
	case element.OpEquals:
		setOp = vm.OpSetz
	case element.OpNotEquals:
		setOp = vm.OpSetnz
	case element.OpGreaterThan:
		if signed {
			setOp = vm.OpSetg
		} else {
			setOp = vm.OpSeta
		}
	case element.OpGreaterThanOrEqual:
		setOp = vm.OpSetge
	case element.OpLessThan:
		if signed {
			setOp = vm.OpSetl
		} else {
			setOp = vm.OpSetb
		}
	case element.OpLessThanOrEqual:
		setOp = vm.OpSetle
	}
	e.current.Setcc(setOp, dst)
}

func (e *Emitter) operandTypeSigned(id element.ID) bool {
	typeID, ok := e.reg.InferType(e.scopes, id)
	if !ok {
		return true
	}
	return e.reg.IsSignedType(typeID)
}

// emitLogical short-circuits: the LHS lands in the result temporary, a
// branch skips the RHS on the deciding value (bnz for or, bz for and),
// and the RHS materializes into the same temporary.
func (e *Emitter) emitLogical(id element.ID, op *element.Operation) (vm.Operand, bool) {
	temp, ok := e.acquireTemp(vm.SizeByte)
	if !ok {
		return vm.Operand{}, false
	}

	if !e.emitValueInto(op.LHS, temp) {
		return vm.Operand{}, false
	}

	exitLabel := e.labelFor(id, "exit")
	exitRef := e.labelRef(exitLabel)
	if op.Op == element.OpLogicalOr {
		e.current.Bnz(temp, exitRef)
	} else {
		e.current.Bz(temp, exitRef)
	}

	entry := e.current
	rhsBlock := e.newBlock("", e.current.Section)
	entry.AddSuccessor(rhsBlock)
	e.current = rhsBlock

	if !e.emitValueInto(op.RHS, temp) {
		return vm.Operand{}, false
	}

	exitBlock := e.newBlock(exitLabel, e.current.Section)
	rhsBlock.AddSuccessor(exitBlock)
	entry.AddSuccessor(exitBlock)
	e.current = exitBlock
	return temp, true
}

// emitValueInto materializes an expression directly into dst. Relational
// operands set their condition byte in place; everything else moves.
func (e *Emitter) emitValueInto(id element.ID, dst vm.Operand) bool {
	target := id
	if w := e.reg.Wrapper(id); w != nil && w.Expr != element.None {
		switch e.reg.KindOf(id) {
		case element.KindExpression, element.KindInitializer:
			target = w.Expr
		}
	}
	if op := e.reg.Operation(target); op != nil && op.Op.IsRelational() {
		lhs, ok := e.emitValue(op.LHS)
		if !ok {
			return false
		}
		rhs, ok := e.emitValue(op.RHS)
		if !ok {
			return false
		}
		e.emitComparison(op, lhs, rhs, dst)
		return true
	}
	value, ok := e.emitValue(target)
	if !ok {
		return false
	}
	e.current.Move(dst, value)
	return true
}

func (e *Emitter) emitMemberValue(id element.ID, op *element.Operation) (vm.Operand, bool) {
	addr, ok := e.memberAddress(op)
	if !ok {
		return vm.Operand{}, false
	}
	typeID, inferred := e.reg.InferType(e.scopes, id)
	if inferred && e.reg.IsCompositeType(typeID) {
		return addr.operand(), true
	}
	size := vm.SizeQword
	if inferred {
		size = vm.OpSizeForByteSize(e.reg.SizeOf(typeID))
	}
	temp, tok := e.acquireTemp(size)
	if !tok {
		return vm.Operand{}, false
	}
	e.current.Load(temp, addr.operand())
	return temp, true
}

func (e *Emitter) emitSubscriptValue(id element.ID, op *element.Operation) (vm.Operand, bool) {
	addr, ok := e.subscriptAddress(op)
	if !ok {
		return vm.Operand{}, false
	}
	size := e.inferredSize(id)
	temp, tok := e.acquireTemp(size)
	if !tok {
		return vm.Operand{}, false
	}
	e.current.Load(temp, addr.operand())
	return temp, true
}

// emitAssignment evaluates the RHS first, then the LHS address. Matching
// composite types copy byte-wise; everything else stores the scalar.
func (e *Emitter) emitAssignment(id element.ID, op *element.Operation) bool {
	lhsType, lok := e.reg.InferType(e.scopes, op.LHS)
	rhsType, rok := e.reg.InferType(e.scopes, op.RHS)

	lhsComposite := lok && e.reg.IsCompositeType(lhsType)
	rhsComposite := rok && e.reg.IsCompositeType(rhsType)
	lhsPointer := lok && e.reg.IsPointerType(lhsType)

	if lhsComposite && rhsComposite {
		if e.reg.TypeName(lhsType) != e.reg.TypeName(rhsType) {
			elem := e.reg.Find(id)
			e.bag.Error(diagnostics.ErrTypeMismatch,
				fmt.Sprintf("cannot copy %s into %s",
					e.reg.TypeName(rhsType), e.reg.TypeName(lhsType)),
				&elem.Location)
			return false
		}
		src, ok := e.emitAddress(op.RHS)
		if !ok {
			return false
		}
		dst, ok := e.emitAddress(op.LHS)
		if !ok {
			return false
		}
		e.current.Copy(dst.operand(), src.operand(), e.reg.SizeOf(lhsType))
		return true
	}

	if (lhsComposite || rhsComposite) && !lhsPointer {
		elem := e.reg.Find(id)
		e.bag.Error(diagnostics.ErrGeneric,
			"cannot mix composite and scalar operands in assignment", &elem.Location)
		return false
	}

	value, ok := e.emitValue(op.RHS)
	if !ok {
		return false
	}
	dst, ok := e.emitAddress(op.LHS)
	if !ok {
		return false
	}
	if dst.Direct {
		e.current.Move(dst.operand(), value)
	} else {
		e.current.Store(dst.operand(), value)
	}
	return true
}

func (e *Emitter) emitIntrinsic(id element.ID) (vm.Operand, bool) {
	intrinsic := e.reg.Intrinsic(id)
	elem := e.reg.Find(id)
	if intrinsic == nil {
		return vm.Operand{}, false
	}
	switch intrinsic.Name {
	case "size_of":
		args := e.reg.ArgumentList(intrinsic.Args)
		if args == nil || len(args.Args) != 1 {
			e.bag.Error(diagnostics.ErrIntrinsicArity,
				"size_of expects exactly one argument", &elem.Location)
			return vm.Operand{}, false
		}
		typeID, ok := e.reg.InferType(e.scopes, args.Args[0])
		if !ok {
			return vm.Operand{}, false
		}
		return vm.IntOperand(uint64(e.reg.SizeOf(typeID)), vm.SizeDword), true
	}
	e.bag.Error(diagnostics.ErrGeneric,
		fmt.Sprintf("unknown intrinsic: %s", intrinsic.Name), &elem.Location)
	return vm.Operand{}, false
}

func (e *Emitter) emitDirective(id element.ID) bool {
	d := e.reg.Directive(id)
	elem := e.reg.Find(id)
	if d == nil {
		return true
	}
	switch d.Name {
	case "assembly":
		text, ok := e.reg.AsString(d.Expr)
		if !ok {
			e.bag.Error(diagnostics.ErrGeneric, "#assembly body missing", &elem.Location)
			return false
		}
		if _, err := e.asm.AssembleFromSource(text); err != nil {
			e.bag.Error(diagnostics.ErrGeneric, err.Error(), &elem.Location)
			return false
		}
		// emission continues in a fresh block after the raw body
		e.current = e.newBlock("", e.current.Section)
		return true
	case "run":
		// compile-time expressions fold during resolution; nothing to emit
		return true
	case "if":
		if value, ok := e.reg.AsBool(d.Expr); ok {
			if value && d.TrueBody != element.None {
				return e.emitStatementInner(d.TrueBody)
			}
			if !value && d.FalseBody != element.None {
				return e.emitStatementInner(d.FalseBody)
			}
		}
		return true
	case "type":
		return true
	}
	return true
}

func (e *Emitter) inferredSize(id element.ID) vm.OpSize {
	typeID, ok := e.reg.InferType(e.scopes, id)
	if !ok {
		return vm.SizeQword
	}
	size := e.reg.SizeOf(typeID)
	if size <= 0 || size > 8 {
		return vm.SizeQword
	}
	return vm.OpSizeForByteSize(size)
}
