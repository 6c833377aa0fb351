package resolver

import (
	"fmt"

	"github.com/awfeequdng/basecode/internal/diagnostics"
	"github.com/awfeequdng/basecode/internal/element"
)

// TypeCheck traverses binary assignments, proc-call argument bindings,
// return statements, and cast targets, applying the pairwise
// compatibility rules. Failures report P019 (C073 for casts).
func (r *Resolver) TypeCheck() bool {
	ok := true

	for _, opID := range r.reg.ByKind(element.KindBinaryOperator) {
		op := r.reg.Operation(opID)
		if op == nil || op.Op != element.OpAssignment {
			continue
		}
		if !r.checkAssignment(opID, op) {
			ok = false
		}
	}

	for _, callID := range r.reg.ByKind(element.KindProcCall) {
		if !r.checkCall(callID) {
			ok = false
		}
	}

	for _, retID := range r.reg.ByKind(element.KindReturn) {
		if !r.checkReturn(retID) {
			ok = false
		}
	}

	for _, kind := range []element.Kind{element.KindCast, element.KindTransmute} {
		for _, castID := range r.reg.ByKind(kind) {
			if !r.checkCast(castID) {
				ok = false
			}
		}
	}

	return ok
}

func (r *Resolver) checkAssignment(opID element.ID, op *element.Operation) bool {
	lhsType, lok := r.reg.InferType(r.scopes, op.LHS)
	rhsType, rok := r.reg.InferType(r.scopes, op.RHS)
	if !lok || !rok {
		return true // unresolved operands already reported upstream
	}
	opts := element.TypeCheckOptions{RHSConstantNegative: r.negativeConstant(op.RHS)}
	if !r.reg.TypeCheck(lhsType, rhsType, opts) {
		e := r.reg.Find(opID)
		r.bag.Error(
			diagnostics.ErrTypeMismatch,
			fmt.Sprintf("type mismatch: cannot assign %s to %s",
				r.reg.TypeName(rhsType), r.reg.TypeName(lhsType)),
			&e.Location)
		return false
	}
	return true
}

func (r *Resolver) checkCall(callID element.ID) bool {
	call := r.reg.ProcCall(callID)
	if call == nil {
		return true
	}
	procType := r.reg.Type(r.reg.ResolveType(call.ProcType))
	if procType == nil {
		return true
	}
	args := r.reg.ArgumentList(call.Args)
	if args == nil {
		return true
	}

	ok := true
	for i, argID := range args.Args {
		if i >= len(procType.Params) {
			if !procType.Foreign {
				e := r.reg.Find(callID)
				r.bag.Error(
					diagnostics.ErrTypeMismatch,
					fmt.Sprintf("too many arguments: call takes %d", len(procType.Params)),
					&e.Location)
				ok = false
			}
			break
		}
		valueID := argID
		if pair := r.reg.ArgumentPair(argID); pair != nil {
			valueID = pair.Value
		}
		argType, aok := r.reg.InferType(r.scopes, valueID)
		if !aok {
			continue
		}
		field := r.reg.Field(procType.Params[i])
		if field == nil {
			continue
		}
		paramType := r.reg.IdentifierType(field.Identifier)
		opts := element.TypeCheckOptions{RHSConstantNegative: r.negativeConstant(valueID)}
		if !r.reg.TypeCheck(paramType, argType, opts) {
			e := r.reg.Find(valueID)
			r.bag.Error(
				diagnostics.ErrTypeMismatch,
				fmt.Sprintf("type mismatch: argument %d is %s, parameter expects %s",
					i+1, r.reg.TypeName(argType), r.reg.TypeName(paramType)),
				&e.Location)
			ok = false
		}
	}
	return ok
}

func (r *Resolver) checkReturn(retID element.ID) bool {
	ret := r.reg.Return(retID)
	if ret == nil || len(ret.Exprs) == 0 {
		return true
	}
	procType := r.enclosingProcType(retID)
	if procType == nil {
		return true
	}
	if len(procType.Returns) == 0 {
		e := r.reg.Find(retID)
		r.bag.Error(
			diagnostics.ErrTypeMismatch,
			"return with value in a procedure without a return type",
			&e.Location)
		return false
	}
	field := r.reg.Field(procType.Returns[0])
	if field == nil {
		return true
	}
	retType := r.reg.IdentifierType(field.Identifier)
	exprType, ok := r.reg.InferType(r.scopes, ret.Exprs[0])
	if !ok {
		return true
	}
	opts := element.TypeCheckOptions{RHSConstantNegative: r.negativeConstant(ret.Exprs[0])}
	if !r.reg.TypeCheck(retType, exprType, opts) {
		e := r.reg.Find(retID)
		r.bag.Error(
			diagnostics.ErrTypeMismatch,
			fmt.Sprintf("type mismatch: cannot return %s as %s",
				r.reg.TypeName(exprType), r.reg.TypeName(retType)),
			&e.Location)
		return false
	}
	return true
}

func (r *Resolver) checkCast(castID element.ID) bool {
	cast := r.reg.Cast(castID)
	if cast == nil {
		return true
	}
	targetType := r.reg.ResolveType(cast.TypeRef)
	sourceType, ok := r.reg.InferType(r.scopes, cast.Expr)
	if !ok {
		return true
	}
	// transmute reinterprets bits; only the sizes must line up
	if r.reg.KindOf(castID) == element.KindTransmute {
		if r.reg.SizeOf(targetType) != r.reg.SizeOf(sourceType) {
			e := r.reg.Find(castID)
			r.bag.Error(
				diagnostics.ErrInvalidCast,
				fmt.Sprintf("invalid transmute: %s and %s differ in size",
					r.reg.TypeName(sourceType), r.reg.TypeName(targetType)),
				&e.Location)
			return false
		}
		return true
	}
	if r.reg.NumberClassOf(targetType) == element.ClassNone ||
		r.reg.NumberClassOf(sourceType) == element.ClassNone {
		e := r.reg.Find(castID)
		r.bag.Error(
			diagnostics.ErrInvalidCast,
			fmt.Sprintf("invalid cast: %s to %s",
				r.reg.TypeName(sourceType), r.reg.TypeName(targetType)),
			&e.Location)
		return false
	}
	return true
}

// enclosingProcType walks the lexical chain from a return statement to
// the procedure body that owns it.
func (r *Resolver) enclosingProcType(id element.ID) *element.Type {
	e := r.reg.Find(id)
	for e != nil {
		for _, instID := range r.reg.ByKind(element.KindProcInstance) {
			inst := r.reg.ProcInstance(instID)
			if inst != nil && inst.Scope == e.ID {
				return r.reg.Type(inst.Type)
			}
		}
		e = r.reg.Find(e.Parent)
	}
	return nil
}

func (r *Resolver) negativeConstant(id element.ID) bool {
	if !r.reg.IsConstant(id) {
		return false
	}
	if v, ok := r.reg.AsInteger(id); ok {
		return int64(v) < 0 && r.signedLiteral(id)
	}
	return false
}

func (r *Resolver) signedLiteral(id element.ID) bool {
	switch r.reg.KindOf(id) {
	case element.KindIntegerLiteral:
		if lit := r.reg.Literal(id); lit != nil {
			return lit.Signed
		}
	case element.KindExpression, element.KindInitializer:
		if w := r.reg.Wrapper(id); w != nil {
			return r.signedLiteral(w.Expr)
		}
	case element.KindUnaryOperator:
		return true
	}
	return false
}
