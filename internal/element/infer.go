package element

// TypeResolver supplies the lookups inference needs that live outside the
// element map: named built-in types and memoized derived types.
type TypeResolver interface {
	FindTypeByName(name string) ID
	PointerTo(base ID) ID
	ArrayOf(base ID, size int) ID
}

// InferType computes an expression's type bottom-up. It returns false when
// the type cannot be determined yet, e.g. an identifier whose declared
// type is still unknown; callers queue such identifiers for the
// unknown-type resolver pass.
func (r *Registry) InferType(tr TypeResolver, id ID) (ID, bool) {
	e := r.Find(id)
	if e == nil {
		return None, false
	}

	switch e.Kind {
	case KindIntegerLiteral:
		lit := r.Literal(id)
		if lit == nil {
			return None, false
		}
		return tr.FindTypeByName(NarrowestFitInteger(lit.Integer, lit.Signed)), true

	case KindFloatLiteral:
		lit := r.Literal(id)
		if lit == nil {
			return None, false
		}
		return tr.FindTypeByName(NarrowestFitFloat(lit.Float)), true

	case KindBooleanLiteral:
		return tr.FindTypeByName("bool"), true

	case KindCharacterLiteral:
		return tr.FindTypeByName("rune"), true

	case KindStringLiteral:
		return tr.FindTypeByName("string"), true

	case KindNilLiteral:
		return tr.PointerTo(tr.FindTypeByName("u0")), true

	case KindExpression, KindInitializer:
		if w := r.Wrapper(id); w != nil {
			return r.InferType(tr, w.Expr)
		}

	case KindStatement:
		if s := r.Statement(id); s != nil {
			return r.InferType(tr, s.Expr)
		}

	case KindIdentifier:
		ident := r.Identifier(id)
		if ident == nil {
			return None, false
		}
		typeID := r.ResolveType(ident.TypeRef)
		if typeID == None || r.KindOf(typeID) == KindUnknownType {
			return None, false
		}
		return typeID, true

	case KindIdentifierReference:
		ref := r.Reference(id)
		if ref == nil || ref.Identifier == None {
			return None, false
		}
		return r.InferType(tr, ref.Identifier)

	case KindUnaryOperator:
		op := r.Operation(id)
		if op == nil {
			return None, false
		}
		switch op.Op {
		case OpNegate, OpBinaryNot:
			return r.InferType(tr, op.RHS)
		case OpLogicalNot:
			return tr.FindTypeByName("bool"), true
		case OpAddressOf:
			base, ok := r.InferType(tr, op.RHS)
			if !ok {
				return None, false
			}
			return tr.PointerTo(base), true
		case OpDereference:
			base, ok := r.InferType(tr, op.RHS)
			if !ok {
				return None, false
			}
			if t := r.Type(r.ResolveType(base)); t != nil && r.KindOf(r.ResolveType(base)) == KindPointerType {
				return r.ResolveType(t.Base), true
			}
			return None, false
		}

	case KindBinaryOperator:
		op := r.Operation(id)
		if op == nil {
			return None, false
		}
		switch {
		case op.Op.IsRelational() || op.Op.IsLogical():
			return tr.FindTypeByName("bool"), true
		case op.Op.IsArithmetic():
			lhsType, ok := r.InferType(tr, op.LHS)
			if !ok {
				return None, false
			}
			rhsType, ok := r.InferType(tr, op.RHS)
			if !ok {
				return lhsType, true
			}
			return r.WiderType(lhsType, rhsType), true
		case op.Op == OpAssignment:
			return r.InferType(tr, op.LHS)
		case op.Op == OpSubscript:
			baseType, ok := r.InferType(tr, op.LHS)
			if !ok {
				return None, false
			}
			baseType = r.ResolveType(baseType)
			if t := r.Type(baseType); t != nil {
				switch r.KindOf(baseType) {
				case KindArrayType, KindPointerType:
					return r.ResolveType(t.Base), true
				}
			}
			return None, false
		case op.Op == OpMemberAccess:
			return r.inferMemberAccess(tr, op)
		}

	case KindCast, KindTransmute:
		if c := r.Cast(id); c != nil {
			return r.ResolveType(c.TypeRef), true
		}

	case KindProcCall:
		call := r.ProcCall(id)
		if call == nil {
			return None, false
		}
		procType := r.Type(r.ResolveType(call.ProcType))
		if procType == nil || len(procType.Returns) == 0 {
			return tr.FindTypeByName("u0"), true
		}
		field := r.Field(procType.Returns[0])
		if field == nil {
			return None, false
		}
		return r.InferType(tr, field.Identifier)

	case KindIntrinsic:
		intrinsic := r.Intrinsic(id)
		if intrinsic == nil {
			return None, false
		}
		switch intrinsic.Name {
		case "size_of", "align_of", "length_of":
			return tr.FindTypeByName("u32"), true
		case "address_of":
			return tr.PointerTo(tr.FindTypeByName("u0")), true
		}

	case KindAssignment, KindDeclaration:
		// declarations carry their identifier's type
		if e.Kind == KindDeclaration {
			if w := r.Wrapper(id); w != nil {
				return r.InferType(tr, w.Expr)
			}
		}
	}

	if e.Kind.IsType() {
		return id, true
	}
	return None, false
}

func (r *Registry) inferMemberAccess(tr TypeResolver, op *Operation) (ID, bool) {
	lhsType, ok := r.InferType(tr, op.LHS)
	if !ok {
		return None, false
	}
	lhsType = r.ResolveType(lhsType)

	// one level of pointer indirection resolves automatically
	if r.KindOf(lhsType) == KindPointerType {
		if t := r.Type(lhsType); t != nil {
			lhsType = r.ResolveType(t.Base)
		}
	}

	name := r.referenceName(op.RHS)
	if name == "" {
		return None, false
	}
	_, field := r.FieldByName(lhsType, name)
	if field == nil {
		return None, false
	}
	return r.InferType(tr, field.Identifier)
}

func (r *Registry) referenceName(id ID) string {
	switch r.KindOf(id) {
	case KindIdentifierReference:
		if ref := r.Reference(id); ref != nil {
			return ref.Qualified.Name
		}
	case KindSymbol:
		if sym := r.Symbol(id); sym != nil {
			return sym.Qualified.Name
		}
	case KindIdentifier:
		if ident := r.Identifier(id); ident != nil {
			if sym := r.Symbol(ident.Symbol); sym != nil {
				return sym.Qualified.Name
			}
		}
	}
	return ""
}
