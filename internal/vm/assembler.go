package vm

import (
	"fmt"
	"strings"
)

// Assembler collects labeled basic blocks in emission order. Actual
// machine encoding and register assignment happen downstream; the core
// only depends on this surface.
type Assembler struct {
	blocks []*BasicBlock
	labels map[string]bool
	refs   map[string]*NamedRef
}

func NewAssembler() *Assembler {
	return &Assembler{
		labels: make(map[string]bool),
		refs:   make(map[string]*NamedRef),
	}
}

// MakeLabel registers a label name and returns it.
func (a *Assembler) MakeLabel(name string) string {
	a.labels[name] = true
	return name
}

// HasLabel reports whether a label was registered.
func (a *Assembler) HasLabel(name string) bool {
	return a.labels[name]
}

// MakeNamedRef interns a named reference shared across blocks.
func (a *Assembler) MakeNamedRef(kind NamedRefKind, name string, size OpSize) *NamedRef {
	key := fmt.Sprintf("%s:%s:%d", kind, name, size)
	if existing, ok := a.refs[key]; ok {
		return existing
	}
	ref := &NamedRef{Kind: kind, Name: name, Size: size}
	a.refs[key] = ref
	return ref
}

// MakeBasicBlock appends a fresh block to the stream.
func (a *Assembler) MakeBasicBlock() *BasicBlock {
	block := newBasicBlock()
	a.blocks = append(a.blocks, block)
	return block
}

// Blocks returns the emitted blocks in order.
func (a *Assembler) Blocks() []*BasicBlock {
	return a.blocks
}

// AssembleFromSource threads raw VM assembly through as-is; the directive
// emitter uses it for #assembly bodies.
func (a *Assembler) AssembleFromSource(source string) (*BasicBlock, error) {
	if strings.TrimSpace(source) == "" {
		return nil, fmt.Errorf("empty assembly source")
	}
	block := a.MakeBasicBlock()
	for _, line := range strings.Split(source, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		block.Meta(line)
	}
	return block, nil
}

// LabelSequence returns every label in stream order; tests key emission
// ordering off this.
func (a *Assembler) LabelSequence() []string {
	var labels []string
	for _, block := range a.blocks {
		if block.Label != "" {
			labels = append(labels, block.Label)
		}
		for _, instr := range block.Instructions {
			if instr.Op == OpLabel {
				labels = append(labels, instr.Text)
			}
		}
	}
	return labels
}

// Disassemble renders the block stream as text.
func (a *Assembler) Disassemble() string {
	var sb strings.Builder
	for _, block := range a.blocks {
		if block.Label != "" {
			fmt.Fprintf(&sb, "%s:\n", block.Label)
		}
		for _, local := range block.Locals() {
			fmt.Fprintf(&sb, "  .local %s %d\n", local.Name, local.Offset)
		}
		for _, instr := range block.Instructions {
			fmt.Fprintf(&sb, "  %s\n", instr)
		}
	}
	return sb.String()
}
