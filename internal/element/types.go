package element

// Capability queries over type elements. These are free functions on the
// registry dispatching on element kind.

// NumberClassOf returns the numeric class of a type element.
func (r *Registry) NumberClassOf(typeID ID) NumberClass {
	typeID = r.ResolveType(typeID)
	e := r.Find(typeID)
	if e == nil {
		return ClassNone
	}
	switch e.Kind {
	case KindNumericType, KindBoolType, KindRuneType:
		if t := r.Type(typeID); t != nil && t.Class != ClassNone {
			return t.Class
		}
		return ClassInteger
	case KindPointerType:
		return ClassInteger
	case KindCompositeType:
		if t := r.Type(typeID); t != nil && t.Composite == CompositeEnum {
			return ClassInteger
		}
	}
	return ClassNone
}

// SizeOf returns a type element's size in bytes.
func (r *Registry) SizeOf(typeID ID) int {
	typeID = r.ResolveType(typeID)
	if t := r.Type(typeID); t != nil {
		return t.SizeInBytes
	}
	return 0
}

// AlignmentOf returns a type element's alignment in bytes.
func (r *Registry) AlignmentOf(typeID ID) int {
	typeID = r.ResolveType(typeID)
	if t := r.Type(typeID); t != nil {
		if t.Alignment > 0 {
			return t.Alignment
		}
		return t.SizeInBytes
	}
	return 0
}

// AccessModelOf reports whether values of the type move by value or by
// pointer at the ABI level.
func (r *Registry) AccessModelOf(typeID ID) AccessModel {
	typeID = r.ResolveType(typeID)
	switch r.KindOf(typeID) {
	case KindCompositeType, KindTupleType, KindArrayType, KindStringType, KindAnyType:
		return AccessPointer
	}
	return AccessValue
}

// IsPointerType reports whether the type element is a pointer type.
func (r *Registry) IsPointerType(typeID ID) bool {
	return r.KindOf(r.ResolveType(typeID)) == KindPointerType
}

// IsCompositeType reports whether the type element is composite (struct,
// union, enum, or tuple).
func (r *Registry) IsCompositeType(typeID ID) bool {
	switch r.KindOf(r.ResolveType(typeID)) {
	case KindCompositeType, KindTupleType:
		return true
	}
	return false
}

// IsSignedType reports whether the numeric type is signed.
func (r *Registry) IsSignedType(typeID ID) bool {
	typeID = r.ResolveType(typeID)
	if t := r.Type(typeID); t != nil {
		return t.Signed
	}
	return false
}

// IsVoidType reports whether the type is u0.
func (r *Registry) IsVoidType(typeID ID) bool {
	typeID = r.ResolveType(typeID)
	if t := r.Type(typeID); t != nil {
		return t.Name == "u0"
	}
	return false
}

// TypeName returns a type element's display name.
func (r *Registry) TypeName(typeID ID) string {
	typeID = r.ResolveType(typeID)
	if t := r.Type(typeID); t != nil {
		return t.Name
	}
	return ""
}

// TypeCheckOptions tunes compatibility checks.
type TypeCheckOptions struct {
	// RHSConstantNegative marks a signed/unsigned comparison against a
	// known-negative constant, which must fail.
	RHSConstantNegative bool
}

// TypeCheck applies the pairwise compatibility rules:
// numeric/numeric compatible in the same class with widening; pointer
// pairs compatible when bases type-check or one base is void; pointers accept
// 8-byte integers; composites require identity by symbol.
func (r *Registry) TypeCheck(lhs, rhs ID, opts TypeCheckOptions) bool {
	lhs = r.ResolveType(lhs)
	rhs = r.ResolveType(rhs)
	if lhs == None || rhs == None {
		return false
	}
	if lhs == rhs {
		return true
	}

	lk, rk := r.KindOf(lhs), r.KindOf(rhs)
	lt, rt := r.Type(lhs), r.Type(rhs)
	if lt == nil || rt == nil {
		return false
	}

	lNumeric := lk == KindNumericType || lk == KindBoolType || lk == KindRuneType
	rNumeric := rk == KindNumericType || rk == KindBoolType || rk == KindRuneType

	switch {
	case lNumeric && rNumeric:
		if r.NumberClassOf(lhs) != r.NumberClassOf(rhs) {
			return false
		}
		if lt.Signed != rt.Signed && opts.RHSConstantNegative {
			return false
		}
		return true

	case lk == KindPointerType && rk == KindPointerType:
		if r.IsVoidType(lt.Base) || r.IsVoidType(rt.Base) {
			return true
		}
		return r.TypeCheck(lt.Base, rt.Base, opts)

	case lk == KindPointerType && rNumeric:
		return r.NumberClassOf(rhs) == ClassInteger && rt.SizeInBytes == 8

	case lNumeric && rk == KindPointerType:
		return r.NumberClassOf(lhs) == ClassInteger && lt.SizeInBytes == 8

	case (lk == KindCompositeType || lk == KindTupleType) &&
		(rk == KindCompositeType || rk == KindTupleType):
		return lt.Name != "" && lt.Name == rt.Name

	case lk == KindStringType && rk == KindStringType:
		return true

	case lk == KindAnyType || rk == KindAnyType:
		return true
	}
	return false
}

// WiderType returns whichever of the two numeric types is larger; ties
// keep the left type.
func (r *Registry) WiderType(lhs, rhs ID) ID {
	lhs = r.ResolveType(lhs)
	rhs = r.ResolveType(rhs)
	lt, rt := r.Type(lhs), r.Type(rhs)
	if lt == nil {
		return rhs
	}
	if rt == nil {
		return lhs
	}
	if rt.SizeInBytes > lt.SizeInBytes {
		return rhs
	}
	return lhs
}
