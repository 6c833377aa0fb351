package element

const machineWordSize = 8

// InitializeLayout computes field offsets, total size, and alignment for a
// composite or tuple type. Struct fields honor per-field alignment unless
// the type is packed; unions overlay every field at offset zero; enums
// take their backing integer's size.
func (r *Registry) InitializeLayout(typeID ID) {
	typeID = r.ResolveType(typeID)
	t := r.Type(typeID)
	if t == nil {
		return
	}

	switch t.Composite {
	case CompositeEnum:
		t.SizeInBytes = 4
		t.Alignment = 4
		return

	case CompositeUnion:
		size := 0
		alignment := 1
		for _, fieldID := range t.Fields {
			field := r.Field(fieldID)
			if field == nil {
				continue
			}
			fieldType := r.IdentifierType(field.Identifier)
			field.Offset = 0
			if s := r.SizeOf(fieldType); s > size {
				size = s
			}
			if a := r.AlignmentOf(fieldType); a > alignment {
				alignment = a
			}
		}
		if alignment > machineWordSize {
			alignment = machineWordSize
		}
		t.SizeInBytes = size
		t.Alignment = alignment
		return
	}

	offset := 0
	alignment := 1
	for _, fieldID := range t.Fields {
		field := r.Field(fieldID)
		if field == nil {
			continue
		}
		fieldType := r.IdentifierType(field.Identifier)
		fieldAlign := r.AlignmentOf(fieldType)
		if fieldAlign < 1 {
			fieldAlign = 1
		}
		if !t.Packed {
			offset = Align(offset, fieldAlign)
		}
		field.Offset = offset
		offset += r.SizeOf(fieldType)
		if fieldAlign > alignment {
			alignment = fieldAlign
		}
	}
	if alignment > machineWordSize {
		alignment = machineWordSize
	}
	t.SizeInBytes = offset
	t.Alignment = alignment
}

// FieldByName finds a composite field by its identifier's symbol name.
func (r *Registry) FieldByName(typeID ID, name string) (ID, *Field) {
	typeID = r.ResolveType(typeID)
	t := r.Type(typeID)
	if t == nil {
		return None, nil
	}
	for _, fieldID := range t.Fields {
		field := r.Field(fieldID)
		if field == nil {
			continue
		}
		ident := r.Identifier(field.Identifier)
		if ident == nil {
			continue
		}
		if sym := r.Symbol(ident.Symbol); sym != nil && sym.Qualified.Name == name {
			return fieldID, field
		}
	}
	return None, nil
}
