package element

import "github.com/awfeequdng/basecode/internal/source"

// Registry is the element map: the sole owner of every element and its
// companion payload. Iteration follows insertion order so passes visit
// elements deterministically.
type Registry struct {
	nextID   ID
	order    []ID
	elements map[ID]*Element
	owned    map[ID][]ID
	ownerOf  map[ID]ID

	literals   map[ID]*Literal
	symbols    map[ID]*Symbol
	refs       map[ID]*Reference
	idents     map[ID]*Identifier
	blocks     map[ID]*Block
	types      map[ID]*Type
	fields     map[ID]*Field
	ops        map[ID]*Operation
	flows      map[ID]*Flow
	loops      map[ID]*ForLoop
	switches   map[ID]*Switch
	stmts      map[ID]*Statement
	wrappers   map[ID]*Wrapper
	returns    map[ID]*Return
	calls      map[ID]*ProcCall
	argLists   map[ID]*ArgumentList
	argPairs   map[ID]*ArgumentPair
	casts      map[ID]*Cast
	directives map[ID]*Directive
	typeRefs   map[ID]*TypeReference
	intrinsics map[ID]*Intrinsic
	modules    map[ID]*Module
	attrs      map[ID]*Attribute
	programs   map[ID]*Program
	instances  map[ID]*ProcInstance
}

func NewRegistry() *Registry {
	return &Registry{
		elements:   make(map[ID]*Element),
		owned:      make(map[ID][]ID),
		ownerOf:    make(map[ID]ID),
		literals:   make(map[ID]*Literal),
		symbols:    make(map[ID]*Symbol),
		refs:       make(map[ID]*Reference),
		idents:     make(map[ID]*Identifier),
		blocks:     make(map[ID]*Block),
		types:      make(map[ID]*Type),
		fields:     make(map[ID]*Field),
		ops:        make(map[ID]*Operation),
		flows:      make(map[ID]*Flow),
		loops:      make(map[ID]*ForLoop),
		switches:   make(map[ID]*Switch),
		stmts:      make(map[ID]*Statement),
		wrappers:   make(map[ID]*Wrapper),
		returns:    make(map[ID]*Return),
		calls:      make(map[ID]*ProcCall),
		argLists:   make(map[ID]*ArgumentList),
		argPairs:   make(map[ID]*ArgumentPair),
		casts:      make(map[ID]*Cast),
		directives: make(map[ID]*Directive),
		typeRefs:   make(map[ID]*TypeReference),
		intrinsics: make(map[ID]*Intrinsic),
		modules:    make(map[ID]*Module),
		attrs:      make(map[ID]*Attribute),
		programs:   make(map[ID]*Program),
		instances:  make(map[ID]*ProcInstance),
	}
}

// New allocates an element with a fresh id and installs it in the map.
func (r *Registry) New(kind Kind, parent, module ID, loc source.Location) *Element {
	r.nextID++
	e := &Element{
		ID:       r.nextID,
		Kind:     kind,
		Parent:   parent,
		Module:   module,
		Location: loc,
	}
	r.elements[e.ID] = e
	r.order = append(r.order, e.ID)
	return e
}

// Find returns the element header for id, or nil.
func (r *Registry) Find(id ID) *Element {
	return r.elements[id]
}

// Count returns the number of live elements.
func (r *Registry) Count() int {
	return len(r.order)
}

// Each visits every element in insertion order.
func (r *Registry) Each(visit func(*Element) bool) {
	for _, id := range r.order {
		if e, ok := r.elements[id]; ok {
			if !visit(e) {
				return
			}
		}
	}
}

// ByKind returns element ids of the given kind in insertion order.
func (r *Registry) ByKind(kind Kind) []ID {
	var ids []ID
	for _, id := range r.order {
		if e, ok := r.elements[id]; ok && e.Kind == kind {
			ids = append(ids, id)
		}
	}
	return ids
}

// AddOwned records that parent owns child in the adjacency table.
func (r *Registry) AddOwned(parent, child ID) {
	if parent == None || child == None {
		return
	}
	r.owned[parent] = append(r.owned[parent], child)
	if _, taken := r.ownerOf[child]; !taken {
		r.ownerOf[child] = parent
	}
}

// OwnerOf returns the element that owns child, None at the root.
func (r *Registry) OwnerOf(child ID) ID {
	return r.ownerOf[child]
}

// Owned returns the ids owned directly by parent.
func (r *Registry) Owned(parent ID) []ID {
	return r.owned[parent]
}

// OwnedClosure walks the ownership adjacency from root, visiting each
// reachable element exactly once.
func (r *Registry) OwnedClosure(root ID) []ID {
	seen := make(map[ID]bool)
	var out []ID
	var walk func(id ID)
	walk = func(id ID) {
		if id == None || seen[id] {
			return
		}
		seen[id] = true
		out = append(out, id)
		for _, child := range r.owned[id] {
			walk(child)
		}
	}
	walk(root)
	return out
}

// Remove drops an element replaced during constant folding. Ownership
// edges pointing at it are rewired by the caller via ReplaceChild.
func (r *Registry) Remove(id ID) {
	e, ok := r.elements[id]
	if !ok {
		return
	}
	delete(r.elements, id)
	for i, oid := range r.order {
		if oid == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	delete(r.owned, id)
	switch {
	case e.Kind.IsLiteral() || e.Kind == KindComment || e.Kind == KindRawBlock:
		delete(r.literals, id)
	case e.Kind.IsType():
		delete(r.types, id)
	}
	delete(r.ops, id)
	delete(r.wrappers, id)
	delete(r.casts, id)
	delete(r.intrinsics, id)
}

// Payload installers. Factories call exactly one per element.

func (r *Registry) SetLiteral(id ID, p *Literal) *Literal             { r.literals[id] = p; return p }
func (r *Registry) SetSymbol(id ID, p *Symbol) *Symbol                { r.symbols[id] = p; return p }
func (r *Registry) SetReference(id ID, p *Reference) *Reference       { r.refs[id] = p; return p }
func (r *Registry) SetIdentifier(id ID, p *Identifier) *Identifier    { r.idents[id] = p; return p }
func (r *Registry) SetBlock(id ID, p *Block) *Block                   { r.blocks[id] = p; return p }
func (r *Registry) SetType(id ID, p *Type) *Type                      { r.types[id] = p; return p }
func (r *Registry) SetField(id ID, p *Field) *Field                   { r.fields[id] = p; return p }
func (r *Registry) SetOperation(id ID, p *Operation) *Operation       { r.ops[id] = p; return p }
func (r *Registry) SetFlow(id ID, p *Flow) *Flow                      { r.flows[id] = p; return p }
func (r *Registry) SetForLoop(id ID, p *ForLoop) *ForLoop             { r.loops[id] = p; return p }
func (r *Registry) SetSwitch(id ID, p *Switch) *Switch                { r.switches[id] = p; return p }
func (r *Registry) SetStatement(id ID, p *Statement) *Statement       { r.stmts[id] = p; return p }
func (r *Registry) SetWrapper(id ID, p *Wrapper) *Wrapper             { r.wrappers[id] = p; return p }
func (r *Registry) SetReturn(id ID, p *Return) *Return                { r.returns[id] = p; return p }
func (r *Registry) SetProcCall(id ID, p *ProcCall) *ProcCall          { r.calls[id] = p; return p }
func (r *Registry) SetArgumentList(id ID, p *ArgumentList) *ArgumentList {
	r.argLists[id] = p
	return p
}
func (r *Registry) SetArgumentPair(id ID, p *ArgumentPair) *ArgumentPair {
	r.argPairs[id] = p
	return p
}
func (r *Registry) SetCast(id ID, p *Cast) *Cast                { r.casts[id] = p; return p }
func (r *Registry) SetDirective(id ID, p *Directive) *Directive { r.directives[id] = p; return p }
func (r *Registry) SetTypeReference(id ID, p *TypeReference) *TypeReference {
	r.typeRefs[id] = p
	return p
}
func (r *Registry) SetIntrinsic(id ID, p *Intrinsic) *Intrinsic { r.intrinsics[id] = p; return p }
func (r *Registry) SetModule(id ID, p *Module) *Module          { r.modules[id] = p; return p }
func (r *Registry) SetAttribute(id ID, p *Attribute) *Attribute { r.attrs[id] = p; return p }
func (r *Registry) SetProgram(id ID, p *Program) *Program       { r.programs[id] = p; return p }
func (r *Registry) SetProcInstance(id ID, p *ProcInstance) *ProcInstance {
	r.instances[id] = p
	return p
}

// Payload accessors.

func (r *Registry) Literal(id ID) *Literal             { return r.literals[id] }
func (r *Registry) Symbol(id ID) *Symbol               { return r.symbols[id] }
func (r *Registry) Reference(id ID) *Reference         { return r.refs[id] }
func (r *Registry) Identifier(id ID) *Identifier       { return r.idents[id] }
func (r *Registry) Block(id ID) *Block                 { return r.blocks[id] }
func (r *Registry) Type(id ID) *Type                   { return r.types[id] }
func (r *Registry) Field(id ID) *Field                 { return r.fields[id] }
func (r *Registry) Operation(id ID) *Operation         { return r.ops[id] }
func (r *Registry) Flow(id ID) *Flow                   { return r.flows[id] }
func (r *Registry) ForLoop(id ID) *ForLoop             { return r.loops[id] }
func (r *Registry) Switch(id ID) *Switch               { return r.switches[id] }
func (r *Registry) Statement(id ID) *Statement         { return r.stmts[id] }
func (r *Registry) Wrapper(id ID) *Wrapper             { return r.wrappers[id] }
func (r *Registry) Return(id ID) *Return               { return r.returns[id] }
func (r *Registry) ProcCall(id ID) *ProcCall           { return r.calls[id] }
func (r *Registry) ArgumentList(id ID) *ArgumentList   { return r.argLists[id] }
func (r *Registry) ArgumentPair(id ID) *ArgumentPair   { return r.argPairs[id] }
func (r *Registry) Cast(id ID) *Cast                   { return r.casts[id] }
func (r *Registry) Directive(id ID) *Directive         { return r.directives[id] }
func (r *Registry) TypeReference(id ID) *TypeReference { return r.typeRefs[id] }
func (r *Registry) Intrinsic(id ID) *Intrinsic         { return r.intrinsics[id] }
func (r *Registry) Module(id ID) *Module               { return r.modules[id] }
func (r *Registry) AttributeOf(id ID) *Attribute       { return r.attrs[id] }
func (r *Registry) Program(id ID) *Program             { return r.programs[id] }
func (r *Registry) ProcInstance(id ID) *ProcInstance   { return r.instances[id] }

// KindOf returns the element kind for id, KindElement if unknown.
func (r *Registry) KindOf(id ID) Kind {
	if e, ok := r.elements[id]; ok {
		return e.Kind
	}
	return KindElement
}

// ResolveType follows a type reference to its type element.
func (r *Registry) ResolveType(id ID) ID {
	if id == None {
		return None
	}
	if e := r.Find(id); e != nil && e.Kind == KindTypeReference {
		if ref := r.TypeReference(id); ref != nil {
			return ref.Type
		}
	}
	return id
}

// IdentifierType returns the resolved type element of an identifier.
func (r *Registry) IdentifierType(id ID) ID {
	ident := r.Identifier(id)
	if ident == nil {
		return None
	}
	return r.ResolveType(ident.TypeRef)
}

// ReplaceChild rewires the payload link from parent that points at old so
// it points at replacement. Used when constant folding substitutes a
// literal for a subexpression.
func (r *Registry) ReplaceChild(parent, old, replacement ID) bool {
	e := r.Find(parent)
	if e == nil {
		return false
	}

	replaced := false
	swap := func(slot *ID) {
		if *slot == old {
			*slot = replacement
			replaced = true
		}
	}
	swapList := func(list []ID) {
		for i := range list {
			if list[i] == old {
				list[i] = replacement
				replaced = true
			}
		}
	}

	switch e.Kind {
	case KindUnaryOperator, KindBinaryOperator:
		if op := r.ops[parent]; op != nil {
			swap(&op.LHS)
			swap(&op.RHS)
		}
	case KindExpression, KindInitializer, KindDefer, KindNamespace,
		KindBreak, KindContinue, KindSpreadOperator, KindModuleReference:
		if w := r.wrappers[parent]; w != nil {
			swap(&w.Expr)
		}
	case KindStatement:
		if s := r.stmts[parent]; s != nil {
			swap(&s.Expr)
		}
	case KindIf, KindWhile, KindWith, KindCase:
		if f := r.flows[parent]; f != nil {
			swap(&f.Predicate)
			swap(&f.Body)
			swap(&f.Else)
		}
	case KindFor:
		if l := r.loops[parent]; l != nil {
			swap(&l.Start)
			swap(&l.Stop)
			swap(&l.Step)
		}
	case KindSwitch:
		if s := r.switches[parent]; s != nil {
			swap(&s.Expr)
		}
	case KindReturn:
		if ret := r.returns[parent]; ret != nil {
			swapList(ret.Exprs)
		}
	case KindArgumentList:
		if args := r.argLists[parent]; args != nil {
			swapList(args.Args)
		}
	case KindArgumentPair:
		if pair := r.argPairs[parent]; pair != nil {
			swap(&pair.Value)
		}
	case KindCast, KindTransmute:
		if c := r.casts[parent]; c != nil {
			swap(&c.Expr)
		}
	case KindIdentifier:
		if ident := r.idents[parent]; ident != nil {
			swap(&ident.Initializer)
		}
	case KindDirective:
		if d := r.directives[parent]; d != nil {
			swap(&d.Expr)
			swap(&d.TrueBody)
			swap(&d.FalseBody)
		}
	case KindBlock:
		if b := r.blocks[parent]; b != nil {
			swapList(b.Statements)
			swapList(b.Defers)
		}
	}

	if replaced {
		children := r.owned[parent]
		for i := range children {
			if children[i] == old {
				children[i] = replacement
			}
		}
		if rep := r.Find(replacement); rep != nil {
			rep.Parent = e.Parent
		}
	}
	return replaced
}
