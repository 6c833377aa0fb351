package element

import (
	"testing"

	"github.com/awfeequdng/basecode/internal/source"
)

// testResolver backs inference tests with a registry-local type table.
type testResolver struct {
	reg      *Registry
	types    map[string]ID
	pointers map[ID]ID
	arrays   map[[2]int]ID
}

func newTestResolver(reg *Registry) *testResolver {
	tr := &testResolver{
		reg:      reg,
		types:    make(map[string]ID),
		pointers: make(map[ID]ID),
		arrays:   make(map[[2]int]ID),
	}
	for _, name := range NumericTypeNames() {
		props, _ := NumericPropertiesFor(name)
		e := reg.New(KindNumericType, None, None, source.Location{})
		reg.SetType(e.ID, &Type{
			Name:        props.Name,
			SizeInBytes: props.SizeInBytes,
			Alignment:   props.SizeInBytes,
			Min:         props.Min,
			Max:         props.Max,
			Signed:      props.Signed,
			Class:       props.Class,
		})
		tr.types[name] = e.ID
	}
	boolType := reg.New(KindBoolType, None, None, source.Location{})
	reg.SetType(boolType.ID, &Type{Name: "bool", SizeInBytes: 1, Alignment: 1, Class: ClassInteger})
	tr.types["bool"] = boolType.ID

	runeType := reg.New(KindRuneType, None, None, source.Location{})
	reg.SetType(runeType.ID, &Type{Name: "rune", SizeInBytes: 4, Alignment: 4, Class: ClassInteger})
	tr.types["rune"] = runeType.ID

	strType := reg.New(KindStringType, None, None, source.Location{})
	reg.SetType(strType.ID, &Type{Name: "string", SizeInBytes: 16, Alignment: 8})
	tr.types["string"] = strType.ID

	return tr
}

func (tr *testResolver) FindTypeByName(name string) ID {
	return tr.types[name]
}

func (tr *testResolver) PointerTo(base ID) ID {
	if existing, ok := tr.pointers[base]; ok {
		return existing
	}
	e := tr.reg.New(KindPointerType, None, None, source.Location{})
	tr.reg.SetType(e.ID, &Type{
		Name:        "ptr_" + tr.reg.TypeName(base),
		SizeInBytes: 8,
		Alignment:   8,
		Base:        base,
	})
	tr.pointers[base] = e.ID
	return e.ID
}

func (tr *testResolver) ArrayOf(base ID, size int) ID {
	key := [2]int{int(base), size}
	if existing, ok := tr.arrays[key]; ok {
		return existing
	}
	e := tr.reg.New(KindArrayType, None, None, source.Location{})
	tr.reg.SetType(e.ID, &Type{
		Name:        "array",
		SizeInBytes: tr.reg.SizeOf(base) * size,
		Alignment:   tr.reg.AlignmentOf(base),
		Base:        base,
		ArraySize:   size,
	})
	tr.arrays[key] = e.ID
	return e.ID
}

func makeIntLiteral(reg *Registry, value uint64, signed bool) ID {
	e := reg.New(KindIntegerLiteral, None, None, source.Location{})
	reg.SetLiteral(e.ID, &Literal{Integer: value, Signed: signed})
	return e.ID
}

func makeBinary(reg *Registry, op Operator, lhs, rhs ID) ID {
	e := reg.New(KindBinaryOperator, None, None, source.Location{})
	reg.SetOperation(e.ID, &Operation{Op: op, LHS: lhs, RHS: rhs})
	reg.AddOwned(e.ID, lhs)
	reg.AddOwned(e.ID, rhs)
	return e.ID
}

func TestTypeCheckIdenticalTypes(t *testing.T) {
	reg := NewRegistry()
	tr := newTestResolver(reg)
	for _, name := range []string{"u8", "s32", "f64", "bool", "string"} {
		typeID := tr.FindTypeByName(name)
		if !reg.TypeCheck(typeID, typeID, TypeCheckOptions{}) {
			t.Errorf("TypeCheck(%s, %s) = false, want true", name, name)
		}
	}
}

func TestTypeCheckNumericWidening(t *testing.T) {
	reg := NewRegistry()
	tr := newTestResolver(reg)
	if !reg.TypeCheck(tr.FindTypeByName("s64"), tr.FindTypeByName("s8"), TypeCheckOptions{}) {
		t.Error("smaller signed should widen into larger signed")
	}
	if reg.TypeCheck(tr.FindTypeByName("s32"), tr.FindTypeByName("f32"), TypeCheckOptions{}) {
		t.Error("integer and float classes must not mix")
	}
	if reg.TypeCheck(tr.FindTypeByName("u32"), tr.FindTypeByName("s32"),
		TypeCheckOptions{RHSConstantNegative: true}) {
		t.Error("negative constant must not check against unsigned")
	}
}

func TestTypeCheckPointers(t *testing.T) {
	reg := NewRegistry()
	tr := newTestResolver(reg)
	ptrS32 := tr.PointerTo(tr.FindTypeByName("s32"))
	ptrVoid := tr.PointerTo(tr.FindTypeByName("u0"))
	ptrF32 := tr.PointerTo(tr.FindTypeByName("f32"))

	if !reg.TypeCheck(ptrS32, ptrVoid, TypeCheckOptions{}) {
		t.Error("any pointer should check against pointer to void")
	}
	if reg.TypeCheck(ptrS32, ptrF32, TypeCheckOptions{}) {
		t.Error("pointers with incompatible bases must not check")
	}
	if !reg.TypeCheck(ptrS32, tr.FindTypeByName("u64"), TypeCheckOptions{}) {
		t.Error("pointer should accept an 8-byte integer")
	}
	if reg.TypeCheck(ptrS32, tr.FindTypeByName("u8"), TypeCheckOptions{}) {
		t.Error("pointer must not accept a narrow integer")
	}
}

func TestTypeCheckCompositesByIdentity(t *testing.T) {
	reg := NewRegistry()
	a := reg.New(KindCompositeType, None, None, source.Location{})
	reg.SetType(a.ID, &Type{Name: "Point"})
	b := reg.New(KindCompositeType, None, None, source.Location{})
	reg.SetType(b.ID, &Type{Name: "Point"})
	c := reg.New(KindCompositeType, None, None, source.Location{})
	reg.SetType(c.ID, &Type{Name: "Rect"})

	if !reg.TypeCheck(a.ID, b.ID, TypeCheckOptions{}) {
		t.Error("composites with the same symbol should match")
	}
	if reg.TypeCheck(a.ID, c.ID, TypeCheckOptions{}) {
		t.Error("composites with different symbols must not match")
	}
}

func TestInferLiteralTypes(t *testing.T) {
	reg := NewRegistry()
	tr := newTestResolver(reg)

	lit := makeIntLiteral(reg, 255, false)
	typeID, ok := reg.InferType(tr, lit)
	if !ok || reg.TypeName(typeID) != "u8" {
		t.Errorf("255 inferred as %s, want u8", reg.TypeName(typeID))
	}

	lit = makeIntLiteral(reg, 256, false)
	typeID, _ = reg.InferType(tr, lit)
	if reg.TypeName(typeID) != "u16" {
		t.Errorf("256 inferred as %s, want u16", reg.TypeName(typeID))
	}

	negOne := int64(-1)
	lit = makeIntLiteral(reg, uint64(negOne), true)
	typeID, _ = reg.InferType(tr, lit)
	if reg.TypeName(typeID) != "s8" {
		t.Errorf("-1 inferred as %s, want s8", reg.TypeName(typeID))
	}
}

func TestInferTypeIsPure(t *testing.T) {
	reg := NewRegistry()
	tr := newTestResolver(reg)
	lit := makeIntLiteral(reg, 42, true)

	first, ok1 := reg.InferType(tr, lit)
	second, ok2 := reg.InferType(tr, lit)
	if !ok1 || !ok2 || first != second {
		t.Error("repeated inference must return the identical type")
	}
}

func TestInferBinaryWidening(t *testing.T) {
	reg := NewRegistry()
	tr := newTestResolver(reg)

	small := makeIntLiteral(reg, 1, true)
	large := makeIntLiteral(reg, 1<<40, true)
	sum := makeBinary(reg, OpAdd, small, large)

	typeID, ok := reg.InferType(tr, sum)
	if !ok || reg.TypeName(typeID) != "s64" {
		t.Errorf("sum inferred as %s, want s64", reg.TypeName(typeID))
	}

	rel := makeBinary(reg, OpLessThan, small, large)
	typeID, ok = reg.InferType(tr, rel)
	if !ok || reg.TypeName(typeID) != "bool" {
		t.Errorf("relational inferred as %s, want bool", reg.TypeName(typeID))
	}
}

func TestInferUnaryOperators(t *testing.T) {
	reg := NewRegistry()
	tr := newTestResolver(reg)
	lit := makeIntLiteral(reg, 7, true)

	neg := reg.New(KindUnaryOperator, None, None, source.Location{})
	reg.SetOperation(neg.ID, &Operation{Op: OpNegate, RHS: lit})
	typeID, ok := reg.InferType(tr, neg.ID)
	if !ok || reg.TypeName(typeID) != "s8" {
		t.Errorf("negate inferred as %s, want s8", reg.TypeName(typeID))
	}

	addr := reg.New(KindUnaryOperator, None, None, source.Location{})
	reg.SetOperation(addr.ID, &Operation{Op: OpAddressOf, RHS: lit})
	typeID, ok = reg.InferType(tr, addr.ID)
	if !ok || reg.TypeName(typeID) != "ptr_s8" {
		t.Errorf("address-of inferred as %s, want ptr_s8", reg.TypeName(typeID))
	}
}

func TestCompositeLayout(t *testing.T) {
	reg := NewRegistry()
	tr := newTestResolver(reg)

	makeField := func(compositeScope ID, name string, typeName string) ID {
		sym := reg.New(KindSymbol, None, None, source.Location{})
		reg.SetSymbol(sym.ID, &Symbol{Qualified: QualifiedSymbol{Name: name}})
		ident := reg.New(KindIdentifier, compositeScope, None, source.Location{})
		reg.SetIdentifier(ident.ID, &Identifier{Symbol: sym.ID, TypeRef: tr.FindTypeByName(typeName)})
		field := reg.New(KindField, compositeScope, None, source.Location{})
		reg.SetField(field.ID, &Field{Identifier: ident.ID})
		return field.ID
	}

	composite := reg.New(KindCompositeType, None, None, source.Location{})
	reg.SetType(composite.ID, &Type{Name: "Mixed", Composite: CompositeStruct})
	t1 := makeField(None, "a", "u8")
	t2 := makeField(None, "b", "s32")
	t3 := makeField(None, "c", "u8")
	reg.Type(composite.ID).Fields = []ID{t1, t2, t3}

	reg.InitializeLayout(composite.ID)
	typ := reg.Type(composite.ID)

	if reg.Field(t1).Offset != 0 {
		t.Errorf("field a offset = %d, want 0", reg.Field(t1).Offset)
	}
	if reg.Field(t2).Offset != 4 {
		t.Errorf("field b offset = %d, want 4", reg.Field(t2).Offset)
	}
	if reg.Field(t3).Offset != 8 {
		t.Errorf("field c offset = %d, want 8", reg.Field(t3).Offset)
	}
	if typ.SizeInBytes != 9 {
		t.Errorf("size = %d, want 9", typ.SizeInBytes)
	}
	if typ.Alignment != 4 {
		t.Errorf("alignment = %d, want 4", typ.Alignment)
	}
}

func TestPackedCompositeLayout(t *testing.T) {
	reg := NewRegistry()
	tr := newTestResolver(reg)

	sym := reg.New(KindSymbol, None, None, source.Location{})
	reg.SetSymbol(sym.ID, &Symbol{Qualified: QualifiedSymbol{Name: "b"}})
	ident := reg.New(KindIdentifier, None, None, source.Location{})
	reg.SetIdentifier(ident.ID, &Identifier{Symbol: sym.ID, TypeRef: tr.FindTypeByName("s32")})
	field := reg.New(KindField, None, None, source.Location{})
	reg.SetField(field.ID, &Field{Identifier: ident.ID})

	sym2 := reg.New(KindSymbol, None, None, source.Location{})
	reg.SetSymbol(sym2.ID, &Symbol{Qualified: QualifiedSymbol{Name: "a"}})
	ident2 := reg.New(KindIdentifier, None, None, source.Location{})
	reg.SetIdentifier(ident2.ID, &Identifier{Symbol: sym2.ID, TypeRef: tr.FindTypeByName("u8")})
	field2 := reg.New(KindField, None, None, source.Location{})
	reg.SetField(field2.ID, &Field{Identifier: ident2.ID})

	composite := reg.New(KindCompositeType, None, None, source.Location{})
	reg.SetType(composite.ID, &Type{Name: "Packed", Composite: CompositeStruct, Packed: true,
		Fields: []ID{field2.ID, field.ID}})

	reg.InitializeLayout(composite.ID)
	if reg.Field(field.ID).Offset != 1 {
		t.Errorf("packed offset = %d, want 1", reg.Field(field.ID).Offset)
	}
	if reg.Type(composite.ID).SizeInBytes != 5 {
		t.Errorf("packed size = %d, want 5", reg.Type(composite.ID).SizeInBytes)
	}
}

func TestUnionLayout(t *testing.T) {
	reg := NewRegistry()
	tr := newTestResolver(reg)

	mk := func(name, typeName string) ID {
		sym := reg.New(KindSymbol, None, None, source.Location{})
		reg.SetSymbol(sym.ID, &Symbol{Qualified: QualifiedSymbol{Name: name}})
		ident := reg.New(KindIdentifier, None, None, source.Location{})
		reg.SetIdentifier(ident.ID, &Identifier{Symbol: sym.ID, TypeRef: tr.FindTypeByName(typeName)})
		field := reg.New(KindField, None, None, source.Location{})
		reg.SetField(field.ID, &Field{Identifier: ident.ID})
		return field.ID
	}

	union := reg.New(KindCompositeType, None, None, source.Location{})
	reg.SetType(union.ID, &Type{Name: "Variant", Composite: CompositeUnion,
		Fields: []ID{mk("a", "u8"), mk("b", "s64")}})
	reg.InitializeLayout(union.ID)

	typ := reg.Type(union.ID)
	if typ.SizeInBytes != 8 {
		t.Errorf("union size = %d, want 8 (largest field)", typ.SizeInBytes)
	}
	for _, fieldID := range typ.Fields {
		if reg.Field(fieldID).Offset != 0 {
			t.Error("union fields must overlay at offset zero")
		}
	}
}
