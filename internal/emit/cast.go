package emit

import (
	"fmt"

	"github.com/awfeequdng/basecode/internal/diagnostics"
	"github.com/awfeequdng/basecode/internal/element"
	"github.com/awfeequdng/basecode/internal/vm"
)

// castMode selects the lowering a numeric conversion needs.
type castMode int

const (
	castNoop castMode = iota
	castIntegerTruncate
	castIntegerSignExtend
	castIntegerZeroExtend
	castFloatResize
	castFloatToInteger
	castIntegerToFloat
	castInvalid
)

// emitCast lowers a cast or transmute. Transmute reinterprets bits and
// never converts.
func (e *Emitter) emitCast(id element.ID) (vm.Operand, bool) {
	cast := e.reg.Cast(id)
	elem := e.reg.Find(id)
	if cast == nil || elem == nil {
		return vm.Operand{}, false
	}

	value, ok := e.emitValue(cast.Expr)
	if !ok {
		return vm.Operand{}, false
	}

	targetType := e.reg.ResolveType(cast.TypeRef)
	targetSize := vm.OpSizeForByteSize(e.reg.SizeOf(targetType))

	if elem.Kind == element.KindTransmute {
		temp, tok := e.acquireTemp(targetSize)
		if !tok {
			return vm.Operand{}, false
		}
		e.current.Move(temp, value)
		return temp, true
	}

	sourceType, inferred := e.reg.InferType(e.scopes, cast.Expr)
	if !inferred {
		return vm.Operand{}, false
	}
	mode := e.classifyCast(sourceType, targetType)
	if mode == castInvalid {
		e.bag.Error(diagnostics.ErrInvalidCast,
			fmt.Sprintf("invalid cast: %s to %s",
				e.reg.TypeName(sourceType), e.reg.TypeName(targetType)),
			&elem.Location)
		return vm.Operand{}, false
	}
	if mode == castNoop {
		return value, true
	}

	temp, tok := e.acquireTemp(targetSize)
	if !tok {
		return vm.Operand{}, false
	}
	switch mode {
	case castIntegerTruncate:
		e.current.Move(temp, value)
	case castIntegerSignExtend:
		e.current.Moves(temp, value)
	case castIntegerZeroExtend:
		e.current.Movez(temp, value)
	case castFloatResize, castFloatToInteger, castIntegerToFloat:
		e.current.Convert(temp, value)
	}
	return temp, true
}

func (e *Emitter) classifyCast(sourceType, targetType element.ID) castMode {
	sourceType = e.reg.ResolveType(sourceType)
	targetType = e.reg.ResolveType(targetType)

	srcClass := e.reg.NumberClassOf(sourceType)
	dstClass := e.reg.NumberClassOf(targetType)
	if srcClass == element.ClassNone || dstClass == element.ClassNone {
		return castInvalid
	}

	srcSize := e.reg.SizeOf(sourceType)
	dstSize := e.reg.SizeOf(targetType)

	switch {
	case srcClass == element.ClassFloat && dstClass == element.ClassFloat:
		if srcSize == dstSize {
			return castNoop
		}
		return castFloatResize
	case srcClass == element.ClassFloat:
		return castFloatToInteger
	case dstClass == element.ClassFloat:
		return castIntegerToFloat
	}

	srcSigned := e.reg.IsSignedType(sourceType)
	switch {
	case srcSize == dstSize && srcSigned == e.reg.IsSignedType(targetType):
		return castNoop
	case dstSize < srcSize || dstSize == srcSize:
		return castIntegerTruncate
	case srcSigned:
		return castIntegerSignExtend
	default:
		return castIntegerZeroExtend
	}
}
