package element

import "math"

// FoldResult carries the literal value a fold produced. The resolver pass
// materializes a literal element from it and swaps it into the parent.
type FoldResult struct {
	Kind    Kind
	Integer uint64
	Float   float64
	Bool    bool
	Signed  bool
	TypeID  ID
}

// Fold evaluates a constant subexpression. Folding happens only when every
// operand is constant and the operand types share a numeric class. Integer
// overflow wraps modulo 2^width for both signednesses, matching the VM's
// two's-complement registers.
func (r *Registry) Fold(tr TypeResolver, id ID) (FoldResult, bool) {
	e := r.Find(id)
	if e == nil || !r.IsConstant(id) {
		return FoldResult{}, false
	}

	switch e.Kind {
	case KindUnaryOperator:
		return r.foldUnary(tr, id)
	case KindBinaryOperator:
		return r.foldBinary(tr, id)
	}
	return FoldResult{}, false
}

func (r *Registry) foldUnary(tr TypeResolver, id ID) (FoldResult, bool) {
	op := r.Operation(id)
	if op == nil {
		return FoldResult{}, false
	}
	switch op.Op {
	case OpNegate:
		if f, ok := r.asFloatOperand(op.RHS); ok {
			return FoldResult{Kind: KindFloatLiteral, Float: -f}, true
		}
		v, ok := r.AsInteger(op.RHS)
		if !ok {
			return FoldResult{}, false
		}
		return r.maskedInteger(tr, id, uint64(-int64(v)), true), true
	case OpBinaryNot:
		v, ok := r.AsInteger(op.RHS)
		if !ok {
			return FoldResult{}, false
		}
		return r.maskedInteger(tr, id, ^v, r.operandSigned(op.RHS)), true
	case OpLogicalNot:
		v, ok := r.AsBool(op.RHS)
		if !ok {
			return FoldResult{}, false
		}
		return FoldResult{Kind: KindBooleanLiteral, Bool: !v}, true
	}
	return FoldResult{}, false
}

func (r *Registry) foldBinary(tr TypeResolver, id ID) (FoldResult, bool) {
	op := r.Operation(id)
	if op == nil {
		return FoldResult{}, false
	}

	if op.Op.IsLogical() {
		lhs, lok := r.AsBool(op.LHS)
		rhs, rok := r.AsBool(op.RHS)
		if !lok || !rok {
			return FoldResult{}, false
		}
		if op.Op == OpLogicalAnd {
			return FoldResult{Kind: KindBooleanLiteral, Bool: lhs && rhs}, true
		}
		return FoldResult{Kind: KindBooleanLiteral, Bool: lhs || rhs}, true
	}

	lf, lIsFloat := r.asFloatOperand(op.LHS)
	rf, rIsFloat := r.asFloatOperand(op.RHS)
	if lIsFloat || rIsFloat {
		if !lIsFloat || !rIsFloat {
			return FoldResult{}, false
		}
		return r.foldFloat(op.Op, lf, rf)
	}

	lhs, lok := r.AsInteger(op.LHS)
	rhs, rok := r.AsInteger(op.RHS)
	if !lok || !rok {
		return FoldResult{}, false
	}
	signed := r.operandSigned(op.LHS) || r.operandSigned(op.RHS)

	if op.Op.IsRelational() {
		return FoldResult{Kind: KindBooleanLiteral, Bool: compareIntegers(op.Op, lhs, rhs, signed)}, true
	}

	var value uint64
	switch op.Op {
	case OpAdd:
		value = lhs + rhs
	case OpSubtract:
		value = lhs - rhs
	case OpMultiply:
		value = lhs * rhs
	case OpDivide:
		if rhs == 0 {
			return FoldResult{}, false
		}
		if signed {
			value = uint64(int64(lhs) / int64(rhs))
		} else {
			value = lhs / rhs
		}
	case OpModulo:
		if rhs == 0 {
			return FoldResult{}, false
		}
		if signed {
			value = uint64(int64(lhs) % int64(rhs))
		} else {
			value = lhs % rhs
		}
	case OpExponent:
		value = integerPow(lhs, rhs)
	case OpBinaryAnd:
		value = lhs & rhs
	case OpBinaryOr:
		value = lhs | rhs
	case OpBinaryXor:
		value = lhs ^ rhs
	case OpShiftLeft:
		value = lhs << (rhs & 63)
	case OpShiftRight:
		if signed {
			value = uint64(int64(lhs) >> (rhs & 63))
		} else {
			value = lhs >> (rhs & 63)
		}
	case OpRotateLeft:
		value = rotate(lhs, int(rhs), r.foldWidth(tr, id), true)
	case OpRotateRight:
		value = rotate(lhs, int(rhs), r.foldWidth(tr, id), false)
	default:
		return FoldResult{}, false
	}
	return r.maskedInteger(tr, id, value, signed), true
}

func (r *Registry) foldFloat(op Operator, lhs, rhs float64) (FoldResult, bool) {
	if op.IsRelational() {
		var b bool
		switch op {
		case OpEquals:
			b = lhs == rhs
		case OpNotEquals:
			b = lhs != rhs
		case OpGreaterThan:
			b = lhs > rhs
		case OpGreaterThanOrEqual:
			b = lhs >= rhs
		case OpLessThan:
			b = lhs < rhs
		case OpLessThanOrEqual:
			b = lhs <= rhs
		}
		return FoldResult{Kind: KindBooleanLiteral, Bool: b}, true
	}
	var value float64
	switch op {
	case OpAdd:
		value = lhs + rhs
	case OpSubtract:
		value = lhs - rhs
	case OpMultiply:
		value = lhs * rhs
	case OpDivide:
		if rhs == 0 {
			return FoldResult{}, false
		}
		value = lhs / rhs
	case OpModulo:
		if rhs == 0 {
			return FoldResult{}, false
		}
		value = math.Mod(lhs, rhs)
	case OpExponent:
		value = math.Pow(lhs, rhs)
	default:
		return FoldResult{}, false
	}
	return FoldResult{Kind: KindFloatLiteral, Float: value}, true
}

// maskedInteger wraps the raw value to the folded expression's type width.
func (r *Registry) maskedInteger(tr TypeResolver, id ID, value uint64, signed bool) FoldResult {
	width := r.foldWidth(tr, id)
	if width > 0 && width < 64 {
		value &= (uint64(1) << width) - 1
		if signed && value&(uint64(1)<<(width-1)) != 0 {
			// sign-extend back so the literal round-trips
			value |= ^uint64(0) << width
		}
	}
	return FoldResult{Kind: KindIntegerLiteral, Integer: value, Signed: signed}
}

func (r *Registry) foldWidth(tr TypeResolver, id ID) int {
	typeID, ok := r.InferType(tr, id)
	if !ok {
		return 64
	}
	size := r.SizeOf(typeID)
	if size <= 0 || size > 8 {
		return 64
	}
	return size * 8
}

func (r *Registry) asFloatOperand(id ID) (float64, bool) {
	switch r.KindOf(id) {
	case KindFloatLiteral:
		return r.AsFloat(id)
	case KindExpression, KindInitializer:
		if w := r.Wrapper(id); w != nil {
			return r.asFloatOperand(w.Expr)
		}
	case KindIdentifierReference:
		if ref := r.Reference(id); ref != nil && ref.Identifier != None {
			return r.asFloatOperand(ref.Identifier)
		}
	case KindIdentifier:
		if ident := r.Identifier(id); ident != nil && ident.Initializer != None {
			return r.asFloatOperand(ident.Initializer)
		}
	case KindUnaryOperator:
		if op := r.Operation(id); op != nil && op.Op == OpNegate {
			if v, ok := r.asFloatOperand(op.RHS); ok {
				return -v, true
			}
		}
	}
	return 0, false
}

func (r *Registry) operandSigned(id ID) bool {
	switch r.KindOf(id) {
	case KindIntegerLiteral:
		if lit := r.Literal(id); lit != nil {
			return lit.Signed
		}
	case KindExpression, KindInitializer:
		if w := r.Wrapper(id); w != nil {
			return r.operandSigned(w.Expr)
		}
	case KindIdentifierReference:
		if ref := r.Reference(id); ref != nil && ref.Identifier != None {
			return r.operandSigned(ref.Identifier)
		}
	case KindIdentifier:
		if ident := r.Identifier(id); ident != nil {
			if ident.Initializer != None {
				return r.operandSigned(ident.Initializer)
			}
			return r.IsSignedType(r.ResolveType(ident.TypeRef))
		}
	case KindUnaryOperator:
		return true
	}
	return false
}

func compareIntegers(op Operator, lhs, rhs uint64, signed bool) bool {
	if signed {
		l, rv := int64(lhs), int64(rhs)
		switch op {
		case OpEquals:
			return l == rv
		case OpNotEquals:
			return l != rv
		case OpGreaterThan:
			return l > rv
		case OpGreaterThanOrEqual:
			return l >= rv
		case OpLessThan:
			return l < rv
		case OpLessThanOrEqual:
			return l <= rv
		}
		return false
	}
	switch op {
	case OpEquals:
		return lhs == rhs
	case OpNotEquals:
		return lhs != rhs
	case OpGreaterThan:
		return lhs > rhs
	case OpGreaterThanOrEqual:
		return lhs >= rhs
	case OpLessThan:
		return lhs < rhs
	case OpLessThanOrEqual:
		return lhs <= rhs
	}
	return false
}

func integerPow(base, exp uint64) uint64 {
	var result uint64 = 1
	for exp > 0 {
		if exp&1 == 1 {
			result *= base
		}
		base *= base
		exp >>= 1
	}
	return result
}

func rotate(value uint64, count, width int, left bool) uint64 {
	if width <= 0 || width > 64 {
		width = 64
	}
	mask := ^uint64(0)
	if width < 64 {
		mask = (uint64(1) << width) - 1
	}
	value &= mask
	count %= width
	if count == 0 {
		return value
	}
	if !left {
		count = width - count
	}
	return ((value << count) | (value >> (width - count))) & mask
}
