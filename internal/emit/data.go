package emit

import (
	"fmt"
	"math"

	"github.com/awfeequdng/basecode/internal/diagnostics"
	"github.com/awfeequdng/basecode/internal/element"
	"github.com/awfeequdng/basecode/internal/intern"
	"github.com/awfeequdng/basecode/internal/vars"
	"github.com/awfeequdng/basecode/internal/vm"
)

// typeInfoLabel names a type's descriptor record.
func typeInfoLabel(name string) string {
	return "_ti_" + name
}

// typeLiteralDataLabel names the bytes backing a type's display name.
func typeLiteralDataLabel(name string) string {
	return fmt.Sprintf("_ti_lit_%s_data", name)
}

func typeLiteralLabel(name string) string {
	return fmt.Sprintf("_ti_lit_%s", name)
}

// usedTypes gathers every type an emitted identifier, parameter, or cast
// touches, in first-use order.
func (e *Emitter) usedTypes(grouping *vars.Grouping) []element.ID {
	seen := make(map[element.ID]bool)
	var out []element.ID
	add := func(typeID element.ID) {
		typeID = e.reg.ResolveType(typeID)
		if typeID == element.None || seen[typeID] {
			return
		}
		switch e.reg.KindOf(typeID) {
		case element.KindGenericType, element.KindUnknownType,
			element.KindNamespaceType, element.KindModuleType:
			return
		}
		seen[typeID] = true
		out = append(out, typeID)
	}

	for _, identID := range grouping.All() {
		add(e.reg.IdentifierType(identID))
	}
	for _, castID := range e.reg.ByKind(element.KindCast) {
		if cast := e.reg.Cast(castID); cast != nil {
			add(cast.TypeRef)
		}
	}
	for _, procID := range e.reg.ByKind(element.KindProcType) {
		t := e.reg.Type(procID)
		if t == nil {
			continue
		}
		for _, fieldID := range append(append([]element.ID{}, t.Params...), t.Returns...) {
			if field := e.reg.Field(fieldID); field != nil {
				add(e.reg.IdentifierType(field.Identifier))
			}
		}
	}
	return out
}

// emitTypeTable writes each used type's name bytes and descriptor, then
// the _ti_array vector of descriptor addresses prefixed by their count.
func (e *Emitter) emitTypeTable(grouping *vars.Grouping) {
	used := e.usedTypes(grouping)

	block := e.newBlock("", vm.SectionROData)
	for _, typeID := range used {
		name := e.reg.TypeName(typeID)
		block.Align(4)
		block.String(
			e.asm.MakeLabel(typeLiteralLabel(name)),
			e.asm.MakeLabel(typeLiteralDataLabel(name)),
			name)
	}

	for _, typeID := range used {
		name := e.reg.TypeName(typeID)
		block.Align(4)
		block.Comment(fmt.Sprintf("type: %s", name))
		block.InnerLabel(e.asm.MakeLabel(typeInfoLabel(name)))
		nameLen := uint64(len(name))
		block.Dd(nameLen, nameLen)
		block.DqRef(e.asm.MakeNamedRef(vm.RefLabel, typeLiteralDataLabel(name), vm.SizeQword))
	}

	block.Align(8)
	block.InnerLabel(e.asm.MakeLabel("_ti_array"))
	block.Dq(uint64(len(used)))
	for _, typeID := range used {
		block.DqRef(e.asm.MakeNamedRef(vm.RefLabel, typeInfoLabel(e.reg.TypeName(typeID)), vm.SizeQword))
	}
}

func (e *Emitter) emitInternedStringTable() {
	block := e.newBlock("", vm.SectionROData)
	block.Comment("interned string literals")

	for _, entry := range e.interns.Sorted() {
		escaped, ok := intern.Escape(entry.Text)
		if !ok {
			e.bag.Error(diagnostics.ErrGeneric,
				fmt.Sprintf("invalid escape sequence: %s", entry.Text), nil)
			continue
		}
		block.Align(4)
		block.Comment(fmt.Sprintf("%q", entry.Text))
		block.String(
			e.asm.MakeLabel(intern.DescriptorLabel(entry.ID)),
			e.asm.MakeLabel(intern.DataLabel(entry.ID)),
			escaped)
	}
}

// emitSectionTables writes each grouped variable's storage, one block
// per populated section.
func (e *Emitter) emitSectionTables(grouping *vars.Grouping) {
	for _, section := range vm.Sections() {
		identifiers := grouping.Section(section)
		if len(identifiers) == 0 {
			continue
		}
		block := e.newBlock("", section)
		for _, identID := range identifiers {
			e.emitSectionVariable(block, identID)
		}
	}
}

func (e *Emitter) emitSectionVariable(block *vm.BasicBlock, identID element.ID) {
	ident := e.reg.Identifier(identID)
	elem := e.reg.Find(identID)
	if ident == nil || elem == nil {
		return
	}
	typeID := e.reg.IdentifierType(identID)
	t := e.reg.Type(typeID)
	if t == nil {
		return
	}
	if e.reg.KindOf(typeID) == element.KindProcType {
		return // procedure storage is its emitted body
	}

	alignment := e.reg.AlignmentOf(typeID)
	if alignment > 1 {
		block.Align(alignment)
	}
	block.Comment(fmt.Sprintf("identifier type: %s", t.Name))
	block.InnerLabel(e.asm.MakeLabel(elem.LabelName()))

	// an explicitly uninitialized identifier reserves storage only
	hasInit := ident.Initializer != element.None &&
		e.reg.KindOf(e.initExpr(ident.Initializer)) != element.KindUninitializedLiteral
	switch e.reg.KindOf(typeID) {
	case element.KindBoolType:
		if !hasInit {
			block.Reserve(1)
			return
		}
		value, _ := e.reg.AsBool(identID)
		if value {
			block.Db(1)
		} else {
			block.Db(0)
		}

	case element.KindRuneType:
		if !hasInit {
			block.Reserve(4)
			return
		}
		value, ok := e.reg.AsRune(identID)
		if !ok {
			value = element.RuneInvalid
		}
		block.Dd(uint64(value))

	case element.KindPointerType:
		if !hasInit {
			block.Reserve(8)
			return
		}
		block.Dq(0)

	case element.KindStringType:
		// strings resolve through the intern table; the slot holds the
		// descriptor address at runtime
		if !hasInit {
			block.Reserve(16)
			return
		}
		block.Reserve(16)

	case element.KindNumericType:
		e.emitNumericStorage(block, identID, t, hasInit)

	case element.KindArrayType, element.KindTupleType, element.KindCompositeType:
		block.Reserve(t.SizeInBytes)
	}
}

func (e *Emitter) emitNumericStorage(block *vm.BasicBlock, identID element.ID, t *element.Type, hasInit bool) {
	if !hasInit {
		block.Reserve(t.SizeInBytes)
		return
	}
	var value uint64
	if t.Class == element.ClassFloat {
		f, _ := e.reg.AsFloat(identID)
		value = floatBits(f, t.SizeInBytes)
	} else {
		value, _ = e.reg.AsInteger(identID)
	}
	switch vm.OpSizeForByteSize(t.SizeInBytes) {
	case vm.SizeByte:
		block.Db(value & 0xff)
	case vm.SizeWord:
		block.Dw(value & 0xffff)
	case vm.SizeDword:
		block.Dd(value & 0xffffffff)
	default:
		block.Dq(value)
	}
}

// emitInitializers walks composite identifiers breadth-first, storing
// each primitive leaf at its computed offset; scalars in data/ro_data
// already carry their bytes.
func (e *Emitter) emitInitializers(grouping *vars.Grouping) bool {
	block := e.newBlock("_initializer", vm.SectionText)
	e.current = block
	e.frame = block

	var toInit []element.ID
	for _, identID := range grouping.All() {
		ident := e.reg.Identifier(identID)
		if ident == nil {
			continue
		}
		typeID := e.reg.IdentifierType(identID)
		if !e.reg.IsCompositeType(typeID) {
			continue
		}
		if ident.Initializer == element.None {
			continue
		}
		if e.reg.KindOf(e.initExpr(ident.Initializer)) == element.KindUninitializedLiteral {
			continue
		}
		toInit = append(toInit, identID)
	}

	for _, identID := range toInit {
		elem := e.reg.Find(identID)
		local, ok := e.acquireTemp(vm.SizeQword)
		if !ok {
			return false
		}
		block.Comment(fmt.Sprintf("initializer: %s", e.identName(identID)))
		block.Move(local, e.labelRef(elem.LabelName()))
		if !e.emitCompositeInitializer(block, identID, local) {
			return false
		}
		e.temps = 0
	}
	return true
}

// emitCompositeInitializer stores field defaults breadth-first from the
// composite's base address. Union fields emit no stores.
func (e *Emitter) emitCompositeInitializer(block *vm.BasicBlock, identID element.ID, base vm.Operand) bool {
	type workItem struct {
		identID element.ID
		offset  int
	}
	queue := []workItem{{identID: identID}}

	for len(queue) > 0 {
		item := queue[0]
		queue = queue[1:]

		typeID := e.reg.IdentifierType(item.identID)
		t := e.reg.Type(typeID)
		if t == nil {
			continue
		}

		switch e.reg.KindOf(typeID) {
		case element.KindRuneType, element.KindBoolType,
			element.KindNumericType, element.KindPointerType:
			if !e.emitPrimitiveInitializer(block, item.identID, typeID, base, item.offset) {
				return false
			}

		case element.KindCompositeType, element.KindTupleType:
			switch t.Composite {
			case element.CompositeEnum:
				if !e.emitPrimitiveInitializer(block, item.identID, typeID, base, item.offset) {
					return false
				}
			case element.CompositeUnion:
				// static union init emits no stores
			default:
				fieldBase := element.Align(item.offset, t.Alignment)
				insert := make([]workItem, 0, len(t.Fields))
				for _, fieldID := range t.Fields {
					field := e.reg.Field(fieldID)
					if field == nil {
						continue
					}
					insert = append(insert, workItem{
						identID: field.Identifier,
						offset:  fieldBase + field.Offset,
					})
				}
				queue = append(queue, insert...)
			}
		}
	}
	return true
}

func (e *Emitter) emitPrimitiveInitializer(block *vm.BasicBlock, identID, typeID element.ID, base vm.Operand, offset int) bool {
	ident := e.reg.Identifier(identID)
	t := e.reg.Type(typeID)
	size := vm.OpSizeForByteSize(t.SizeInBytes)

	var value vm.Operand
	switch {
	case ident != nil && ident.Initializer != element.None:
		v, ok := e.emitValue(e.initExpr(ident.Initializer))
		if !ok {
			return false
		}
		value = v
	case e.reg.KindOf(typeID) == element.KindRuneType:
		value = vm.IntOperand(uint64(element.RuneInvalid), size)
	default:
		value = vm.IntOperand(0, size)
	}

	block.Comment(fmt.Sprintf("initializer: %s: %s", e.identName(identID), t.Name))
	block.Store(base.WithOffset(int64(offset)), value)
	return true
}

// emitFinalizers opens the _finalizer block and writes one comment per
// composite identifier; it emits no teardown instructions.
func (e *Emitter) emitFinalizers(grouping *vars.Grouping) {
	block := e.newBlock("_finalizer", vm.SectionText)
	e.current = block
	e.frame = block

	for _, identID := range grouping.All() {
		typeID := e.reg.IdentifierType(identID)
		if !e.reg.IsCompositeType(typeID) {
			continue
		}
		block.Comment(fmt.Sprintf("finalizer: %s: %s",
			e.identName(identID), e.reg.TypeName(typeID)))
	}
}

func (e *Emitter) identName(identID element.ID) string {
	ident := e.reg.Identifier(identID)
	if ident == nil {
		return "?"
	}
	if sym := e.reg.Symbol(ident.Symbol); sym != nil {
		return sym.Qualified.Name
	}
	return "?"
}

func (e *Emitter) initExpr(initID element.ID) element.ID {
	if w := e.reg.Wrapper(initID); w != nil && w.Expr != element.None {
		return w.Expr
	}
	return initID
}

func floatBits(value float64, sizeInBytes int) uint64 {
	if sizeInBytes == 4 {
		return uint64(math.Float32bits(float32(value)))
	}
	return math.Float64bits(value)
}
