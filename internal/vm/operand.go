package vm

import "fmt"

// OpSize is an operand width in bytes.
type OpSize int

const (
	SizeNone  OpSize = 0
	SizeByte  OpSize = 1
	SizeWord  OpSize = 2
	SizeDword OpSize = 4
	SizeQword OpSize = 8
)

// OpSizeForByteSize maps a type size to an operand width.
func OpSizeForByteSize(size int) OpSize {
	switch {
	case size <= 1:
		return SizeByte
	case size <= 2:
		return SizeWord
	case size <= 4:
		return SizeDword
	default:
		return SizeQword
	}
}

// NamedRefKind selects what a named reference resolves against.
type NamedRefKind int

const (
	RefLabel NamedRefKind = iota
	RefLocal
	RefOffset
)

func (k NamedRefKind) String() string {
	switch k {
	case RefLabel:
		return "label"
	case RefLocal:
		return "local"
	case RefOffset:
		return "offset"
	default:
		return "unknown"
	}
}

// NamedRef is a reference to a label, frame local, or offset resolved at
// assembly time.
type NamedRef struct {
	Kind NamedRefKind
	Name string
	Size OpSize
}

// OperandKind tags instruction operands.
type OperandKind int

const (
	OperandNone OperandKind = iota
	OperandInteger
	OperandFloat
	OperandRef
	OperandFP
	OperandSP
)

// Operand is one instruction operand: a literal, a named reference, or a
// register alias, optionally displaced by a byte offset.
type Operand struct {
	Kind    OperandKind
	Integer uint64
	Float   float64
	Ref     *NamedRef
	Size    OpSize
	Offset  int64
}

func IntOperand(value uint64, size OpSize) Operand {
	return Operand{Kind: OperandInteger, Integer: value, Size: size}
}

func FloatOperand(value float64, size OpSize) Operand {
	return Operand{Kind: OperandFloat, Float: value, Size: size}
}

func RefOperand(ref *NamedRef) Operand {
	return Operand{Kind: OperandRef, Ref: ref, Size: ref.Size}
}

// FP is the frame-pointer register operand.
func FP() Operand {
	return Operand{Kind: OperandFP, Size: SizeQword}
}

// SP is the stack-pointer register operand.
func SP() Operand {
	return Operand{Kind: OperandSP, Size: SizeQword}
}

// WithOffset displaces the operand by a byte offset.
func (o Operand) WithOffset(offset int64) Operand {
	o.Offset = offset
	return o
}

func (o Operand) IsNone() bool {
	return o.Kind == OperandNone
}

func (o Operand) String() string {
	var base string
	switch o.Kind {
	case OperandInteger:
		base = fmt.Sprintf("%d", o.Integer)
	case OperandFloat:
		base = fmt.Sprintf("%g", o.Float)
	case OperandRef:
		base = o.Ref.Name
	case OperandFP:
		base = "fp"
	case OperandSP:
		base = "sp"
	default:
		return "_"
	}
	if o.Offset != 0 {
		return fmt.Sprintf("%s%+d", base, o.Offset)
	}
	return base
}
