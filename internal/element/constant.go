package element

import "unicode/utf8"

// RuneInvalid is the replacement value for runes with no initializer.
const RuneInvalid rune = 0xFFFD

// IsConstant reports whether the element's value is known at compile time.
func (r *Registry) IsConstant(id ID) bool {
	e := r.Find(id)
	if e == nil {
		return false
	}
	switch e.Kind {
	case KindIntegerLiteral, KindFloatLiteral, KindBooleanLiteral,
		KindCharacterLiteral, KindStringLiteral, KindNilLiteral:
		return true
	case KindExpression, KindInitializer:
		if w := r.Wrapper(id); w != nil {
			return r.IsConstant(w.Expr)
		}
	case KindIdentifier:
		if ident := r.Identifier(id); ident != nil {
			return ident.Constant
		}
	case KindIdentifierReference:
		if ref := r.Reference(id); ref != nil && ref.Identifier != None {
			return r.IsConstant(ref.Identifier)
		}
	case KindUnaryOperator:
		if op := r.Operation(id); op != nil {
			switch op.Op {
			case OpNegate, OpBinaryNot, OpLogicalNot:
				return r.IsConstant(op.RHS)
			}
		}
	case KindBinaryOperator:
		if op := r.Operation(id); op != nil {
			if op.Op == OpAssignment || op.Op == OpMemberAccess || op.Op == OpSubscript {
				return false
			}
			return r.IsConstant(op.LHS) && r.IsConstant(op.RHS)
		}
	}
	return false
}

// AsInteger extracts a compile-time integer value.
func (r *Registry) AsInteger(id ID) (uint64, bool) {
	e := r.Find(id)
	if e == nil {
		return 0, false
	}
	switch e.Kind {
	case KindIntegerLiteral:
		if lit := r.Literal(id); lit != nil {
			return lit.Integer, true
		}
	case KindCharacterLiteral:
		if lit := r.Literal(id); lit != nil {
			return uint64(lit.Rune), true
		}
	case KindBooleanLiteral:
		if lit := r.Literal(id); lit != nil {
			if lit.Bool {
				return 1, true
			}
			return 0, true
		}
	case KindNilLiteral:
		return 0, true
	case KindExpression, KindInitializer:
		if w := r.Wrapper(id); w != nil {
			return r.AsInteger(w.Expr)
		}
	case KindIdentifier:
		if ident := r.Identifier(id); ident != nil && ident.Initializer != None {
			return r.AsInteger(ident.Initializer)
		}
	case KindIdentifierReference:
		if ref := r.Reference(id); ref != nil && ref.Identifier != None {
			return r.AsInteger(ref.Identifier)
		}
	case KindUnaryOperator:
		if op := r.Operation(id); op != nil && op.Op == OpNegate {
			if v, ok := r.AsInteger(op.RHS); ok {
				return uint64(-int64(v)), true
			}
		}
	}
	return 0, false
}

// AsFloat extracts a compile-time floating-point value.
func (r *Registry) AsFloat(id ID) (float64, bool) {
	e := r.Find(id)
	if e == nil {
		return 0, false
	}
	switch e.Kind {
	case KindFloatLiteral:
		if lit := r.Literal(id); lit != nil {
			return lit.Float, true
		}
	case KindIntegerLiteral:
		if lit := r.Literal(id); lit != nil {
			return float64(lit.Integer), true
		}
	case KindExpression, KindInitializer:
		if w := r.Wrapper(id); w != nil {
			return r.AsFloat(w.Expr)
		}
	case KindIdentifier:
		if ident := r.Identifier(id); ident != nil && ident.Initializer != None {
			return r.AsFloat(ident.Initializer)
		}
	case KindIdentifierReference:
		if ref := r.Reference(id); ref != nil && ref.Identifier != None {
			return r.AsFloat(ref.Identifier)
		}
	case KindUnaryOperator:
		if op := r.Operation(id); op != nil && op.Op == OpNegate {
			if v, ok := r.AsFloat(op.RHS); ok {
				return -v, true
			}
		}
	}
	return 0, false
}

// AsBool extracts a compile-time boolean value.
func (r *Registry) AsBool(id ID) (bool, bool) {
	e := r.Find(id)
	if e == nil {
		return false, false
	}
	switch e.Kind {
	case KindBooleanLiteral:
		if lit := r.Literal(id); lit != nil {
			return lit.Bool, true
		}
	case KindExpression, KindInitializer:
		if w := r.Wrapper(id); w != nil {
			return r.AsBool(w.Expr)
		}
	case KindIdentifier:
		if ident := r.Identifier(id); ident != nil && ident.Initializer != None {
			return r.AsBool(ident.Initializer)
		}
	case KindIdentifierReference:
		if ref := r.Reference(id); ref != nil && ref.Identifier != None {
			return r.AsBool(ref.Identifier)
		}
	}
	return false, false
}

// AsRune extracts a compile-time rune value.
func (r *Registry) AsRune(id ID) (rune, bool) {
	e := r.Find(id)
	if e == nil {
		return RuneInvalid, false
	}
	switch e.Kind {
	case KindCharacterLiteral:
		if lit := r.Literal(id); lit != nil {
			return lit.Rune, true
		}
	case KindIntegerLiteral:
		if lit := r.Literal(id); lit != nil && lit.Integer <= utf8.MaxRune {
			return rune(lit.Integer), true
		}
	case KindExpression, KindInitializer:
		if w := r.Wrapper(id); w != nil {
			return r.AsRune(w.Expr)
		}
	case KindIdentifier:
		if ident := r.Identifier(id); ident != nil && ident.Initializer != None {
			return r.AsRune(ident.Initializer)
		}
	case KindIdentifierReference:
		if ref := r.Reference(id); ref != nil && ref.Identifier != None {
			return r.AsRune(ref.Identifier)
		}
	}
	return RuneInvalid, false
}

// AsString extracts a compile-time string value.
func (r *Registry) AsString(id ID) (string, bool) {
	e := r.Find(id)
	if e == nil {
		return "", false
	}
	switch e.Kind {
	case KindStringLiteral, KindComment, KindRawBlock:
		if lit := r.Literal(id); lit != nil {
			return lit.Text, true
		}
	case KindExpression, KindInitializer:
		if w := r.Wrapper(id); w != nil {
			return r.AsString(w.Expr)
		}
	case KindIdentifier:
		if ident := r.Identifier(id); ident != nil && ident.Initializer != None {
			return r.AsString(ident.Initializer)
		}
	case KindIdentifierReference:
		if ref := r.Reference(id); ref != nil && ref.Identifier != None {
			return r.AsString(ref.Identifier)
		}
	}
	return "", false
}
