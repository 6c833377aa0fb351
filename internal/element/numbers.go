package element

import "math"

// NumericProperties describes one built-in numeric type.
type NumericProperties struct {
	Name        string
	Min         int64
	Max         uint64
	SizeInBytes int
	Signed      bool
	Class       NumberClass
}

// The built-in numeric types, ordered smallest to largest within each
// signedness so narrowing picks the first fit.
var numericProperties = []NumericProperties{
	{"u0", 0, 0, 0, false, ClassInteger},
	{"u8", 0, math.MaxUint8, 1, false, ClassInteger},
	{"u16", 0, math.MaxUint16, 2, false, ClassInteger},
	{"u32", 0, math.MaxUint32, 4, false, ClassInteger},
	{"u64", 0, math.MaxUint64, 8, false, ClassInteger},
	{"s8", math.MinInt8, math.MaxInt8, 1, true, ClassInteger},
	{"s16", math.MinInt16, math.MaxInt16, 2, true, ClassInteger},
	{"s32", math.MinInt32, math.MaxInt32, 4, true, ClassInteger},
	{"s64", math.MinInt64, math.MaxInt64, 8, true, ClassInteger},
	{"f32", 0, math.MaxUint32, 4, true, ClassFloat},
	{"f64", 0, math.MaxUint64, 8, true, ClassFloat},
}

// NumericTypeNames returns the built-in numeric type names.
func NumericTypeNames() []string {
	names := make([]string, 0, len(numericProperties))
	for _, p := range numericProperties {
		names = append(names, p.Name)
	}
	return names
}

// NumericPropertiesFor returns the properties for a built-in numeric
// type name.
func NumericPropertiesFor(name string) (NumericProperties, bool) {
	for _, p := range numericProperties {
		if p.Name == name {
			return p, true
		}
	}
	return NumericProperties{}, false
}

// NarrowestFitInteger returns the name of the smallest integer type whose
// range admits value. Signed values narrow within the signed types so a
// value past the signed maximum of a width moves to the next width up.
func NarrowestFitInteger(value uint64, signed bool) string {
	if signed {
		sv := int64(value)
		for _, p := range numericProperties {
			if !p.Signed || p.Class != ClassInteger || p.SizeInBytes == 0 {
				continue
			}
			if sv >= 0 {
				if value <= p.Max {
					return p.Name
				}
			} else if sv >= p.Min {
				return p.Name
			}
		}
		return "s64"
	}
	for _, p := range numericProperties {
		if p.Signed || p.Class != ClassInteger || p.SizeInBytes == 0 {
			continue
		}
		if value <= p.Max {
			return p.Name
		}
	}
	return "u64"
}

// NarrowestFitFloat returns f32 when the value survives a round trip
// through single precision, f64 otherwise.
func NarrowestFitFloat(value float64) string {
	if float64(float32(value)) == value {
		return "f32"
	}
	return "f64"
}

// Align rounds value up to the next multiple of alignment.
func Align(value, alignment int) int {
	if alignment <= 1 {
		return value
	}
	rem := value % alignment
	if rem == 0 {
		return value
	}
	return value + alignment - rem
}
