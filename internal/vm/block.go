package vm

// Local is a frame-resident temporary with its resolved offset.
type Local struct {
	Name   string
	Size   OpSize
	Offset int
}

// BasicBlock is a maximal straight-line instruction sequence. At most one
// branching or return instruction appears, and it is last. Predecessor
// and successor lists mirror each other across every CFG edge.
type BasicBlock struct {
	Label        string
	Section      Section
	Instructions []*Instruction
	Predecessors []*BasicBlock
	Successors   []*BasicBlock

	locals     []*Local
	localIndex map[string]*Local
	frameSize  int
	refs       map[string]*NamedRef
}

func newBasicBlock() *BasicBlock {
	return &BasicBlock{
		Section:    SectionText,
		localIndex: make(map[string]*Local),
		refs:       make(map[string]*NamedRef),
	}
}

// AddSuccessor wires the CFG edge in both directions.
func (b *BasicBlock) AddSuccessor(succ *BasicBlock) {
	if succ == nil {
		return
	}
	for _, existing := range b.Successors {
		if existing == succ {
			return
		}
	}
	b.Successors = append(b.Successors, succ)
	succ.Predecessors = append(succ.Predecessors, b)
}

// Local declares a named frame local and assigns its offset.
func (b *BasicBlock) Local(name string, size OpSize) *Local {
	if existing, ok := b.localIndex[name]; ok {
		return existing
	}
	byteSize := int(size)
	if byteSize == 0 {
		byteSize = 8
	}
	b.frameSize += byteSize
	local := &Local{Name: name, Size: size, Offset: -b.frameSize}
	b.locals = append(b.locals, local)
	b.localIndex[name] = local
	return local
}

// Locals returns the block's frame locals in declaration order.
func (b *BasicBlock) Locals() []*Local {
	return b.locals
}

// NamedRefFor records a named reference scoped to the block.
func (b *BasicBlock) NamedRefFor(kind NamedRefKind, name string, size OpSize) *NamedRef {
	key := kind.String() + ":" + name
	if existing, ok := b.refs[key]; ok {
		return existing
	}
	ref := &NamedRef{Kind: kind, Name: name, Size: size}
	b.refs[key] = ref
	return ref
}

// IsTerminated reports whether the block already ends in a branch or
// return.
func (b *BasicBlock) IsTerminated() bool {
	for i := len(b.Instructions) - 1; i >= 0; i-- {
		instr := b.Instructions[i]
		switch instr.Op {
		case OpComment, OpLabel, OpAlign:
			continue
		}
		return instr.Op.IsBranch()
	}
	return false
}

func (b *BasicBlock) add(instr *Instruction) *Instruction {
	b.Instructions = append(b.Instructions, instr)
	return instr
}

func (b *BasicBlock) op(op Opcode, size OpSize, operands ...Operand) *Instruction {
	return b.add(&Instruction{Op: op, Size: size, Operands: operands})
}

// Pseudo-ops

func (b *BasicBlock) Comment(text string) { b.add(&Instruction{Op: OpComment, Text: text}) }
func (b *BasicBlock) InnerLabel(name string) {
	b.add(&Instruction{Op: OpLabel, Text: name})
}
func (b *BasicBlock) Align(bytes int) {
	b.op(OpAlign, SizeNone, IntOperand(uint64(bytes), SizeByte))
}

// Data definition

func (b *BasicBlock) Db(values ...uint64) { b.defineData(OpDb, SizeByte, values) }
func (b *BasicBlock) Dw(values ...uint64) { b.defineData(OpDw, SizeWord, values) }
func (b *BasicBlock) Dd(values ...uint64) { b.defineData(OpDd, SizeDword, values) }
func (b *BasicBlock) Dq(values ...uint64) { b.defineData(OpDq, SizeQword, values) }

func (b *BasicBlock) defineData(op Opcode, size OpSize, values []uint64) {
	operands := make([]Operand, 0, len(values))
	for _, v := range values {
		operands = append(operands, IntOperand(v, size))
	}
	b.op(op, size, operands...)
}

// DqRef defines a quad-word holding a named reference's address.
func (b *BasicBlock) DqRef(ref *NamedRef) {
	b.op(OpDq, SizeQword, RefOperand(ref))
}

// Reserve reserves count bytes of zeroed storage.
func (b *BasicBlock) Reserve(count int) {
	b.op(OpRb, SizeByte, IntOperand(uint64(count), SizeQword))
}

// String defines a length-prefixed string record: the descriptor label
// holds the length twice and a pointer to the data label's bytes.
func (b *BasicBlock) String(descriptor, data string, text string) {
	b.InnerLabel(descriptor)
	b.Dd(uint64(len(text)), uint64(len(text)))
	b.DqRef(&NamedRef{Kind: RefLabel, Name: data, Size: SizeQword})
	b.InnerLabel(data)
	b.add(&Instruction{Op: OpString, Text: text})
}

// Instructions

func (b *BasicBlock) Nop() { b.op(OpNop, SizeNone) }

func (b *BasicBlock) Move(dst, src Operand)  { b.op(OpMove, dst.Size, dst, src) }
func (b *BasicBlock) Moves(dst, src Operand) { b.op(OpMoves, dst.Size, dst, src) }
func (b *BasicBlock) Movez(dst, src Operand) { b.op(OpMovez, dst.Size, dst, src) }

func (b *BasicBlock) Load(dst, addr Operand)  { b.op(OpLoad, dst.Size, dst, addr) }
func (b *BasicBlock) Store(addr, src Operand) { b.op(OpStore, src.Size, addr, src) }

func (b *BasicBlock) Push(src Operand) { b.op(OpPush, src.Size, src) }
func (b *BasicBlock) Pop(dst Operand)  { b.op(OpPop, dst.Size, dst) }

// Copy emits a byte-wise block copy of size bytes.
func (b *BasicBlock) Copy(dst, src Operand, size int) {
	b.op(OpCopy, SizeByte, dst, src, IntOperand(uint64(size), SizeQword))
}

func (b *BasicBlock) Fill(dst, value Operand, size int) {
	b.op(OpFill, SizeByte, dst, value, IntOperand(uint64(size), SizeQword))
}

func (b *BasicBlock) Alloc(dst, size Operand) { b.op(OpAlloc, SizeQword, dst, size) }
func (b *BasicBlock) Free(addr Operand)       { b.op(OpFree, SizeQword, addr) }

// Three-operand arithmetic and bitwise forms

func (b *BasicBlock) Add(dst, lhs, rhs Operand) { b.op(OpAdd, dst.Size, dst, lhs, rhs) }
func (b *BasicBlock) Sub(dst, lhs, rhs Operand) { b.op(OpSub, dst.Size, dst, lhs, rhs) }
func (b *BasicBlock) Mul(dst, lhs, rhs Operand) { b.op(OpMul, dst.Size, dst, lhs, rhs) }
func (b *BasicBlock) Div(dst, lhs, rhs Operand) { b.op(OpDiv, dst.Size, dst, lhs, rhs) }
func (b *BasicBlock) Mod(dst, lhs, rhs Operand) { b.op(OpMod, dst.Size, dst, lhs, rhs) }
func (b *BasicBlock) Pow(dst, lhs, rhs Operand) { b.op(OpPow, dst.Size, dst, lhs, rhs) }
func (b *BasicBlock) Or(dst, lhs, rhs Operand)  { b.op(OpOr, dst.Size, dst, lhs, rhs) }
func (b *BasicBlock) And(dst, lhs, rhs Operand) { b.op(OpAnd, dst.Size, dst, lhs, rhs) }
func (b *BasicBlock) Xor(dst, lhs, rhs Operand) { b.op(OpXor, dst.Size, dst, lhs, rhs) }
func (b *BasicBlock) Shl(dst, lhs, rhs Operand) { b.op(OpShl, dst.Size, dst, lhs, rhs) }
func (b *BasicBlock) Shr(dst, lhs, rhs Operand) { b.op(OpShr, dst.Size, dst, lhs, rhs) }
func (b *BasicBlock) Rol(dst, lhs, rhs Operand) { b.op(OpRol, dst.Size, dst, lhs, rhs) }
func (b *BasicBlock) Ror(dst, lhs, rhs Operand) { b.op(OpRor, dst.Size, dst, lhs, rhs) }

func (b *BasicBlock) Neg(dst, src Operand) { b.op(OpNeg, dst.Size, dst, src) }
func (b *BasicBlock) Not(dst, src Operand) { b.op(OpNot, dst.Size, dst, src) }

// Convert changes numeric representation between classes/sizes.
func (b *BasicBlock) Convert(dst, src Operand) { b.op(OpConvert, dst.Size, dst, src) }

// Compare, setcc, branch

func (b *BasicBlock) Cmp(lhs, rhs Operand) { b.op(OpCmp, lhs.Size, lhs, rhs) }

func (b *BasicBlock) Setcc(op Opcode, dst Operand) { b.op(op, SizeByte, dst) }

func (b *BasicBlock) Beq(target Operand)      { b.op(OpBeq, SizeQword, target) }
func (b *BasicBlock) Bne(target Operand)      { b.op(OpBne, SizeQword, target) }
func (b *BasicBlock) Bg(target Operand)       { b.op(OpBg, SizeQword, target) }
func (b *BasicBlock) Bl(target Operand)       { b.op(OpBl, SizeQword, target) }
func (b *BasicBlock) Bge(target Operand)      { b.op(OpBge, SizeQword, target) }
func (b *BasicBlock) Ble(target Operand)      { b.op(OpBle, SizeQword, target) }
func (b *BasicBlock) Bz(value, target Operand)  { b.op(OpBz, value.Size, value, target) }
func (b *BasicBlock) Bnz(value, target Operand) { b.op(OpBnz, value.Size, value, target) }

func (b *BasicBlock) Jump(target Operand) { b.op(OpJmp, SizeQword, target) }
func (b *BasicBlock) Jsr(target Operand)  { b.op(OpJsr, SizeQword, target) }
func (b *BasicBlock) Rts()                { b.op(OpRts, SizeNone) }
func (b *BasicBlock) Exit()               { b.op(OpExit, SizeNone) }

// Ffi dispatches a foreign call; signature selects variadic metadata.
func (b *BasicBlock) Ffi(address Operand, signature int) {
	b.op(OpFfi, SizeQword, address, IntOperand(uint64(signature), SizeDword))
}

// Meta carries raw assembly source through to the assembler.
func (b *BasicBlock) Meta(text string) {
	b.add(&Instruction{Op: OpMeta, Text: text})
}
