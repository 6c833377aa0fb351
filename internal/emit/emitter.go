// Package emit lowers the resolved element graph into labeled basic
// blocks of VM instructions.
package emit

import (
	"fmt"

	"github.com/awfeequdng/basecode/internal/diagnostics"
	"github.com/awfeequdng/basecode/internal/element"
	"github.com/awfeequdng/basecode/internal/ffi"
	"github.com/awfeequdng/basecode/internal/intern"
	"github.com/awfeequdng/basecode/internal/scope"
	"github.com/awfeequdng/basecode/internal/vars"
	"github.com/awfeequdng/basecode/internal/vm"
)

const maxStatementTemps = 64

// controlFrame tracks the active loop or switch during emission so break,
// continue, and fallthrough know their targets.
type controlFrame struct {
	continueLabel string
	exitLabel     string
	nextCaseEntry string
	nextCaseTrue  string
	switchValue   vm.Operand
	isSwitch      bool
}

// Emitter lowers one program. The assembler and foreign interface arrive
// as explicit parameters; the emitter holds no global state.
type Emitter struct {
	reg     *element.Registry
	scopes  *scope.Manager
	interns *intern.Map
	asm     *vm.Assembler
	foreign *ffi.Interface
	bag     *diagnostics.Bag

	program element.ID

	current *vm.BasicBlock
	frame   *vm.BasicBlock
	temps   int
	flow    []*controlFrame

	emittedProcs map[element.ID]bool

	// forward jumps record their edges here; targets may not exist yet
	pendingEdges []pendingEdge
}

type pendingEdge struct {
	from  *vm.BasicBlock
	label string
}

func New(reg *element.Registry, scopes *scope.Manager, interns *intern.Map,
	asm *vm.Assembler, foreign *ffi.Interface, bag *diagnostics.Bag) *Emitter {
	return &Emitter{
		reg:          reg,
		scopes:       scopes,
		interns:      interns,
		asm:          asm,
		foreign:      foreign,
		bag:          bag,
		emittedProcs: make(map[element.ID]bool),
	}
}

// Emit produces the deterministic block stream: bootstrap, type table,
// interned strings, section tables, procedure instances, _start,
// initializers, implicit blocks, finalizers, _end.
func (e *Emitter) Emit(program element.ID) bool {
	e.program = program

	e.interns.InternAll(e.reg)
	grouping := vars.Group(e.reg, e.scopes)

	e.emitBootstrapBlock()
	e.emitTypeTable(grouping)
	e.emitInternedStringTable()
	e.emitSectionTables(grouping)
	if !e.emitProcedureInstances() {
		return false
	}
	e.emitStartBlock()
	if !e.emitInitializers(grouping) {
		return false
	}
	if !e.emitImplicitBlocks() {
		return false
	}
	e.emitFinalizers(grouping)
	e.emitEndBlock()
	e.resolvePendingEdges()

	return !e.bag.HasErrors()
}

// edgeTo records a CFG edge to a label whose block may not exist yet.
func (e *Emitter) edgeTo(from *vm.BasicBlock, label string) {
	e.pendingEdges = append(e.pendingEdges, pendingEdge{from: from, label: label})
}

func (e *Emitter) resolvePendingEdges() {
	byLabel := make(map[string]*vm.BasicBlock)
	for _, block := range e.asm.Blocks() {
		if block.Label != "" {
			byLabel[block.Label] = block
		}
	}
	for _, edge := range e.pendingEdges {
		if target, ok := byLabel[edge.label]; ok {
			edge.from.AddSuccessor(target)
		}
	}
	e.pendingEdges = nil
}

func (e *Emitter) newBlock(label string, section vm.Section) *vm.BasicBlock {
	block := e.asm.MakeBasicBlock()
	block.Section = section
	if label != "" {
		block.Label = e.asm.MakeLabel(label)
	}
	return block
}

// labelFor derives a CFG fragment label from an element id.
func (e *Emitter) labelFor(id element.ID, suffix string) string {
	elem := e.reg.Find(id)
	if elem == nil {
		return suffix
	}
	return fmt.Sprintf("%s_%s", elem.LabelName(), suffix)
}

func (e *Emitter) emitBootstrapBlock() {
	block := e.newBlock("", vm.SectionText)
	block.Jump(vm.RefOperand(e.asm.MakeNamedRef(vm.RefLabel, "_start", vm.SizeQword)))
}

func (e *Emitter) emitStartBlock() {
	block := e.newBlock("_start", vm.SectionText)
	block.Move(vm.FP(), vm.SP())
}

func (e *Emitter) emitEndBlock() {
	block := e.newBlock("_end", vm.SectionText)
	block.Exit()
}

// acquireTemp names a statement-scoped local in the active frame.
func (e *Emitter) acquireTemp(size vm.OpSize) (vm.Operand, bool) {
	if e.temps >= maxStatementTemps {
		e.bag.Error(diagnostics.ErrRegisterExhaustion,
			"statement requires too many temporaries", nil)
		return vm.Operand{}, false
	}
	e.temps++
	name := fmt.Sprintf("t%d", e.temps-1)
	if e.frame != nil {
		e.frame.Local(name, size)
	}
	ref := e.asm.MakeNamedRef(vm.RefLocal, name, size)
	return vm.RefOperand(ref), true
}

// statementScope releases every temporary acquired inside fn, on success
// and on error alike.
func (e *Emitter) statementScope(fn func() bool) bool {
	saved := e.temps
	defer func() { e.temps = saved }()
	return fn()
}

func (e *Emitter) pushFlow(frame *controlFrame) {
	e.flow = append(e.flow, frame)
}

func (e *Emitter) popFlow() {
	if len(e.flow) > 0 {
		e.flow = e.flow[:len(e.flow)-1]
	}
}

// nearestFlow returns the innermost control frame, optionally restricted
// to loops (continue skips switch frames).
func (e *Emitter) nearestFlow(loopsOnly bool) *controlFrame {
	for i := len(e.flow) - 1; i >= 0; i-- {
		frame := e.flow[i]
		if loopsOnly && frame.isSwitch {
			continue
		}
		return frame
	}
	return nil
}

func (e *Emitter) labelRef(name string) vm.Operand {
	return vm.RefOperand(e.asm.MakeNamedRef(vm.RefLabel, name, vm.SizeQword))
}
