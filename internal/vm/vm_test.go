package vm

import "testing"

func TestOpSizeForByteSize(t *testing.T) {
	tests := []struct {
		bytes int
		want  OpSize
	}{
		{1, SizeByte},
		{2, SizeWord},
		{3, SizeDword},
		{4, SizeDword},
		{8, SizeQword},
		{16, SizeQword},
	}
	for _, tt := range tests {
		if got := OpSizeForByteSize(tt.bytes); got != tt.want {
			t.Errorf("OpSizeForByteSize(%d) = %d, want %d", tt.bytes, got, tt.want)
		}
	}
}

func TestSuccessorsAreSymmetric(t *testing.T) {
	asm := NewAssembler()
	a := asm.MakeBasicBlock()
	b := asm.MakeBasicBlock()
	a.AddSuccessor(b)

	if len(a.Successors) != 1 || a.Successors[0] != b {
		t.Fatal("successor edge missing")
	}
	if len(b.Predecessors) != 1 || b.Predecessors[0] != a {
		t.Fatal("predecessor edge missing")
	}

	// duplicate edges collapse
	a.AddSuccessor(b)
	if len(a.Successors) != 1 || len(b.Predecessors) != 1 {
		t.Error("duplicate edge must not double-wire")
	}
}

func TestIsTerminated(t *testing.T) {
	asm := NewAssembler()
	block := asm.MakeBasicBlock()
	if block.IsTerminated() {
		t.Error("empty block is not terminated")
	}
	block.Move(FP(), SP())
	if block.IsTerminated() {
		t.Error("move does not terminate")
	}
	block.Rts()
	if !block.IsTerminated() {
		t.Error("rts terminates the block")
	}
}

func TestLocalsGetDistinctOffsets(t *testing.T) {
	asm := NewAssembler()
	block := asm.MakeBasicBlock()
	a := block.Local("a", SizeQword)
	b := block.Local("b", SizeDword)
	same := block.Local("a", SizeQword)

	if a.Offset == b.Offset {
		t.Error("locals must not share frame offsets")
	}
	if same != a {
		t.Error("re-declaring a local must return the existing one")
	}
	if len(block.Locals()) != 2 {
		t.Errorf("locals = %d, want 2", len(block.Locals()))
	}
}

func TestNamedRefInterning(t *testing.T) {
	asm := NewAssembler()
	a := asm.MakeNamedRef(RefLabel, "_start", SizeQword)
	b := asm.MakeNamedRef(RefLabel, "_start", SizeQword)
	c := asm.MakeNamedRef(RefLocal, "_start", SizeQword)
	if a != b {
		t.Error("equal refs must intern to one value")
	}
	if a == c {
		t.Error("refs of different kinds must differ")
	}
}

func TestLabelSequence(t *testing.T) {
	asm := NewAssembler()
	first := asm.MakeBasicBlock()
	first.Label = asm.MakeLabel("_start")
	second := asm.MakeBasicBlock()
	second.InnerLabel(asm.MakeLabel("inner"))
	third := asm.MakeBasicBlock()
	third.Label = asm.MakeLabel("_end")

	got := asm.LabelSequence()
	want := []string{"_start", "inner", "_end"}
	if len(got) != len(want) {
		t.Fatalf("LabelSequence = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("label %d = %s, want %s", i, got[i], want[i])
		}
	}
}

func TestInstructionStrings(t *testing.T) {
	instr := Instruction{Op: OpAdd, Size: SizeDword, Operands: []Operand{
		RefOperand(&NamedRef{Kind: RefLocal, Name: "t0", Size: SizeDword}),
		IntOperand(1, SizeDword),
		IntOperand(2, SizeDword),
	}}
	if got := instr.String(); got != "add t0, 1, 2" {
		t.Errorf("String() = %q", got)
	}

	offset := Operand{Kind: OperandFP, Size: SizeQword}.WithOffset(16)
	if offset.String() != "fp+16" {
		t.Errorf("offset operand = %q", offset.String())
	}
}

func TestAssembleFromSource(t *testing.T) {
	asm := NewAssembler()
	block, err := asm.AssembleFromSource("nop\nmove fp, sp")
	if err != nil {
		t.Fatalf("AssembleFromSource failed: %v", err)
	}
	if len(block.Instructions) != 2 {
		t.Errorf("instructions = %d, want 2", len(block.Instructions))
	}
	if _, err := asm.AssembleFromSource("   "); err == nil {
		t.Error("empty source must fail")
	}
}
