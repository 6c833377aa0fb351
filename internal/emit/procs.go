package emit

import (
	"fmt"

	"github.com/awfeequdng/basecode/internal/element"
	"github.com/awfeequdng/basecode/internal/vm"
)

// emitProcedureInstances walks the static call graph from each module and
// emits every reachable non-foreign procedure exactly once.
func (e *Emitter) emitProcedureInstances() bool {
	program := e.reg.Program(e.program)
	if program == nil {
		return true
	}

	var worklist []element.ID
	for _, moduleID := range program.Modules {
		mod := e.reg.Module(moduleID)
		if mod == nil {
			continue
		}
		worklist = append(worklist, e.callsWithin(mod.Scope)...)
	}

	visitedCalls := make(map[element.ID]bool)
	for len(worklist) > 0 {
		callID := worklist[0]
		worklist = worklist[1:]
		if visitedCalls[callID] {
			continue
		}
		visitedCalls[callID] = true

		call := e.reg.ProcCall(callID)
		if call == nil {
			continue
		}
		procType := e.reg.Type(e.reg.ResolveType(call.ProcType))
		if procType == nil || procType.Foreign || len(procType.Instances) == 0 {
			continue
		}

		instanceID := procType.Instances[0]
		if e.emittedProcs[instanceID] {
			continue
		}
		e.emittedProcs[instanceID] = true

		if !e.emitProcInstance(instanceID, procType) {
			return false
		}

		// calls inside the body extend the graph
		if inst := e.reg.ProcInstance(instanceID); inst != nil {
			worklist = append(worklist, e.callsWithin(inst.Scope)...)
		}
	}
	return true
}

// callsWithin collects proc-call elements in the ownership closure of a
// scope, in insertion order.
func (e *Emitter) callsWithin(scopeID element.ID) []element.ID {
	var calls []element.ID
	for _, id := range e.reg.OwnedClosure(scopeID) {
		if e.reg.KindOf(id) == element.KindProcCall {
			calls = append(calls, id)
		}
	}
	return calls
}

// emitProcInstance emits a procedure body with its frame prologue and a
// fallback epilogue for bodies that do not end in return.
func (e *Emitter) emitProcInstance(instanceID element.ID, procType *element.Type) bool {
	inst := e.reg.ProcInstance(instanceID)
	elem := e.reg.Find(instanceID)
	if inst == nil || elem == nil {
		return true
	}

	block := e.newBlock(elem.LabelName(), vm.SectionText)
	if procType.Name != "" {
		block.Comment(fmt.Sprintf("procedure: %s", procType.Name))
	}
	block.Push(vm.FP())
	block.Move(vm.FP(), vm.SP())

	savedCurrent, savedFrame, savedTemps := e.current, e.frame, e.temps
	e.current = block
	e.frame = block
	e.temps = 0

	// parameters address relative to the frame pointer
	paramOffset := 16
	for _, fieldID := range procType.Params {
		field := e.reg.Field(fieldID)
		if field == nil {
			continue
		}
		field.Offset = paramOffset
		paramOffset += 8
	}

	ok := e.emitBlock(inst.Scope)

	if ok && !e.current.IsTerminated() {
		e.current.Move(vm.SP(), vm.FP())
		e.current.Pop(vm.FP())
		e.current.Rts()
	}

	e.current, e.frame, e.temps = savedCurrent, savedFrame, savedTemps
	return ok
}

// emitImplicitBlocks emits one labeled block per non-empty module or
// namespace scope, in module order.
func (e *Emitter) emitImplicitBlocks() bool {
	program := e.reg.Program(e.program)
	if program == nil {
		return true
	}

	var scopes []element.ID
	for _, moduleID := range program.Modules {
		mod := e.reg.Module(moduleID)
		if mod == nil {
			continue
		}
		scopes = append(scopes, mod.Scope)
		// namespaces declared inside the module get their own blocks
		for _, id := range e.reg.OwnedClosure(mod.Scope) {
			if e.reg.KindOf(id) == element.KindNamespace {
				if w := e.reg.Wrapper(id); w != nil && w.Expr != element.None {
					scopes = append(scopes, w.Expr)
				}
			}
		}
	}

	for _, scopeID := range scopes {
		block := e.reg.Block(scopeID)
		if block == nil || len(block.Statements) == 0 {
			continue
		}
		if !e.emitImplicitBlock(scopeID) {
			return false
		}
	}
	return true
}

func (e *Emitter) emitImplicitBlock(scopeID element.ID) bool {
	elem := e.reg.Find(scopeID)
	if elem == nil {
		return true
	}

	implicit := e.newBlock(elem.LabelName(), vm.SectionText)
	if mod := e.reg.Module(elem.Module); mod != nil && mod.Scope == scopeID {
		implicit.Comment(fmt.Sprintf("module: %s", mod.Path))
	}

	e.current = implicit
	e.frame = implicit
	e.temps = 0

	return e.emitBlock(scopeID)
}
