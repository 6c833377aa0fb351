package emit

import (
	"github.com/awfeequdng/basecode/internal/diagnostics"
	"github.com/awfeequdng/basecode/internal/element"
	"github.com/awfeequdng/basecode/internal/vm"
)

// emitIf lowers predicate -> (true, false) -> exit. The false branch of
// the predicate jumps forward past the true block; the true block falls
// through to the exit unless it already branched or returned.
func (e *Emitter) emitIf(id element.ID) bool {
	flow := e.reg.Flow(id)
	if flow == nil {
		return true
	}

	trueLabel := e.labelFor(id, "true")
	falseLabel := e.labelFor(id, "false")
	exitLabel := e.labelFor(id, "exit")

	predicate, ok := e.emitValue(flow.Predicate)
	if !ok {
		return false
	}
	predicateBlock := e.current
	if flow.Else != element.None {
		predicateBlock.Bz(predicate, e.labelRef(falseLabel))
	} else {
		predicateBlock.Bz(predicate, e.labelRef(exitLabel))
	}

	trueBlock := e.newBlock(trueLabel, predicateBlock.Section)
	predicateBlock.AddSuccessor(trueBlock)
	e.current = trueBlock
	if !e.emitStatementInner(flow.Body) {
		return false
	}
	trueEnd := e.current
	trueFalls := !trueEnd.IsTerminated()
	if trueFalls && flow.Else != element.None {
		trueEnd.Jump(e.labelRef(exitLabel))
	}

	var falseEnd *vm.BasicBlock
	if flow.Else != element.None {
		falseBlock := e.newBlock(falseLabel, predicateBlock.Section)
		predicateBlock.AddSuccessor(falseBlock)
		e.current = falseBlock
		if !e.emitStatementInner(flow.Else) {
			return false
		}
		falseEnd = e.current
	}

	exitBlock := e.newBlock(exitLabel, predicateBlock.Section)
	if trueFalls {
		trueEnd.AddSuccessor(exitBlock)
	}
	if falseEnd != nil {
		if !falseEnd.IsTerminated() {
			falseEnd.AddSuccessor(exitBlock)
		}
	} else {
		predicateBlock.AddSuccessor(exitBlock)
	}
	e.current = exitBlock
	return true
}

// emitWhile lowers predicate (labeled entry) -> body (jump back) -> exit.
func (e *Emitter) emitWhile(id element.ID) bool {
	flow := e.reg.Flow(id)
	if flow == nil {
		return true
	}

	entryLabel := e.labelFor(id, "entry")
	bodyLabel := e.labelFor(id, "body")
	exitLabel := e.labelFor(id, "exit")

	entryBlock := e.newBlock(entryLabel, e.current.Section)
	e.current.AddSuccessor(entryBlock)
	e.current = entryBlock

	predicate, ok := e.emitValue(flow.Predicate)
	if !ok {
		return false
	}
	predicateEnd := e.current
	predicateEnd.Bz(predicate, e.labelRef(exitLabel))

	e.pushFlow(&controlFrame{continueLabel: entryLabel, exitLabel: exitLabel})

	bodyBlock := e.newBlock(bodyLabel, predicateEnd.Section)
	predicateEnd.AddSuccessor(bodyBlock)
	e.current = bodyBlock
	if !e.emitStatementInner(flow.Body) {
		e.popFlow()
		return false
	}
	bodyEnd := e.current
	if !bodyEnd.IsTerminated() {
		bodyEnd.Jump(e.labelRef(entryLabel))
		bodyEnd.AddSuccessor(entryBlock)
	}

	e.popFlow()

	exitBlock := e.newBlock(exitLabel, predicateEnd.Section)
	predicateEnd.AddSuccessor(exitBlock)
	e.current = exitBlock
	return true
}

// emitFor desugars a range loop into init, predicate, body, step, and
// exit blocks. Direction and inclusivity pick the comparison and step
// instruction.
func (e *Emitter) emitFor(id element.ID) bool {
	loop := e.reg.ForLoop(id)
	if loop == nil {
		return true
	}

	entryLabel := e.labelFor(id, "entry")
	bodyLabel := e.labelFor(id, "body")
	stepLabel := e.labelFor(id, "step")
	exitLabel := e.labelFor(id, "exit")

	inductionType := e.reg.IdentifierType(loop.Induction)
	size := vm.OpSizeForByteSize(e.reg.SizeOf(inductionType))
	induction := vm.RefOperand(e.asm.MakeNamedRef(vm.RefLocal, e.identName(loop.Induction), size))
	e.frame.Local(e.identName(loop.Induction), size)

	// init: induction = start
	start, ok := e.emitValue(loop.Start)
	if !ok {
		return false
	}
	e.current.Move(induction, start)
	initEnd := e.current

	entryBlock := e.newBlock(entryLabel, initEnd.Section)
	initEnd.AddSuccessor(entryBlock)
	e.current = entryBlock

	stop, ok := e.emitValue(loop.Stop)
	if !ok {
		return false
	}
	e.current.Cmp(induction, stop)

	// ascending+inclusive <=, ascending+exclusive <,
	// descending+inclusive >=, descending+exclusive >
	exitRef := e.labelRef(exitLabel)
	switch {
	case loop.Dir == 0 && loop.RangeKind == 0:
		e.current.Bg(exitRef)
	case loop.Dir == 0 && loop.RangeKind == 1:
		e.current.Bge(exitRef)
	case loop.Dir == 1 && loop.RangeKind == 0:
		e.current.Bl(exitRef)
	default:
		e.current.Ble(exitRef)
	}
	predicateEnd := e.current

	e.pushFlow(&controlFrame{continueLabel: stepLabel, exitLabel: exitLabel})

	bodyBlock := e.newBlock(bodyLabel, predicateEnd.Section)
	predicateEnd.AddSuccessor(bodyBlock)
	e.current = bodyBlock
	if !e.emitBlock(loop.Body) {
		e.popFlow()
		return false
	}
	bodyEnd := e.current

	e.popFlow()

	stepBlock := e.newBlock(stepLabel, predicateEnd.Section)
	if !bodyEnd.IsTerminated() {
		bodyEnd.AddSuccessor(stepBlock)
	}
	e.current = stepBlock
	step, ok := e.emitValue(loop.Step)
	if !ok {
		return false
	}
	if loop.Dir == 1 {
		stepBlock.Sub(induction, induction, step)
	} else {
		stepBlock.Add(induction, induction, step)
	}
	stepBlock.Jump(e.labelRef(entryLabel))
	stepBlock.AddSuccessor(entryBlock)

	exitBlock := e.newBlock(exitLabel, predicateEnd.Section)
	predicateEnd.AddSuccessor(exitBlock)
	e.current = exitBlock
	return true
}

// emitSwitch chains case predicate blocks; inequality branches to the
// next case, equality runs the body then jumps to the exit unless the
// case falls through to the next case's true label.
func (e *Emitter) emitSwitch(id element.ID) bool {
	sw := e.reg.Switch(id)
	if sw == nil {
		return true
	}
	scope := e.reg.Block(sw.Scope)
	if scope == nil {
		return true
	}

	exitLabel := e.labelFor(id, "exit")

	value, ok := e.emitValue(sw.Expr)
	if !ok {
		return false
	}

	var cases []element.ID
	for _, stmtID := range scope.Statements {
		caseID := stmtID
		if e.reg.KindOf(caseID) == element.KindStatement {
			if stmt := e.reg.Statement(caseID); stmt != nil {
				caseID = stmt.Expr
			}
		}
		if e.reg.KindOf(caseID) == element.KindCase {
			cases = append(cases, caseID)
		}
	}

	chain := e.current
	for index, caseID := range cases {
		flow := e.reg.Flow(caseID)
		if flow == nil {
			continue
		}

		entryLabel := e.labelFor(caseID, "entry")
		trueLabel := e.labelFor(caseID, "true")

		nextEntry := exitLabel
		nextTrue := exitLabel
		if index+1 < len(cases) {
			nextEntry = e.labelFor(cases[index+1], "entry")
			nextTrue = e.labelFor(cases[index+1], "true")
		}

		entryBlock := e.newBlock(entryLabel, chain.Section)
		chain.AddSuccessor(entryBlock)
		e.current = entryBlock

		if flow.Predicate != element.None {
			caseValue, cok := e.emitValue(flow.Predicate)
			if !cok {
				return false
			}
			e.current.Cmp(value, caseValue)
			e.current.Bne(e.labelRef(nextEntry))
			e.edgeTo(e.current, nextEntry)
		}
		predicateEnd := e.current

		e.pushFlow(&controlFrame{
			exitLabel:     exitLabel,
			nextCaseEntry: nextEntry,
			nextCaseTrue:  nextTrue,
			switchValue:   value,
			isSwitch:      true,
		})

		trueBlock := e.newBlock(trueLabel, predicateEnd.Section)
		predicateEnd.AddSuccessor(trueBlock)
		e.current = trueBlock
		if !e.emitStatementInner(flow.Body) {
			e.popFlow()
			return false
		}
		bodyEnd := e.current
		if !bodyEnd.IsTerminated() {
			if flow.Fallthrough {
				bodyEnd.Jump(e.labelRef(nextTrue))
				e.edgeTo(bodyEnd, nextTrue)
			} else {
				bodyEnd.Jump(e.labelRef(exitLabel))
				e.edgeTo(bodyEnd, exitLabel)
			}
		}

		e.popFlow()
		chain = predicateEnd
	}

	exitBlock := e.newBlock(exitLabel, chain.Section)
	if len(cases) == 0 {
		chain.AddSuccessor(exitBlock)
	}
	e.current = exitBlock
	return true
}

// emitBreak jumps to the nearest control-flow frame's exit label, or a
// named label when one is given.
func (e *Emitter) emitBreak(id element.ID) bool {
	elem := e.reg.Find(id)
	w := e.reg.Wrapper(id)

	target := ""
	if w != nil && w.Expr != element.None {
		if label := e.reg.Wrapper(w.Expr); label != nil {
			target = label.Name
		}
	}
	if target == "" {
		frame := e.nearestFlow(false)
		if frame == nil {
			e.bag.Error(diagnostics.ErrInvalidBreakContinue,
				"break outside of loop or switch", &elem.Location)
			return false
		}
		target = frame.exitLabel
	}

	exitBlock := e.newBlock(e.labelFor(id, "exit"), e.current.Section)
	e.current.AddSuccessor(exitBlock)
	exitBlock.Jump(e.labelRef(target))
	e.edgeTo(exitBlock, target)
	e.current = exitBlock
	return true
}

// emitContinue jumps to the nearest loop frame's continue label.
func (e *Emitter) emitContinue(id element.ID) bool {
	elem := e.reg.Find(id)
	w := e.reg.Wrapper(id)

	target := ""
	if w != nil && w.Expr != element.None {
		if label := e.reg.Wrapper(w.Expr); label != nil {
			target = label.Name
		}
	}
	if target == "" {
		frame := e.nearestFlow(true)
		if frame == nil {
			e.bag.Error(diagnostics.ErrInvalidBreakContinue,
				"continue outside of loop", &elem.Location)
			return false
		}
		target = frame.continueLabel
	}

	exitBlock := e.newBlock(e.labelFor(id, "exit"), e.current.Section)
	e.current.AddSuccessor(exitBlock)
	exitBlock.Jump(e.labelRef(target))
	e.edgeTo(exitBlock, target)
	e.current = exitBlock
	return true
}

// emitReturn stores the value into the frame's return slot, unwinds the
// deferred stack, restores sp from fp, pops fp, and issues rts.
func (e *Emitter) emitReturn(id element.ID) bool {
	ret := e.reg.Return(id)
	elem := e.reg.Find(id)
	if ret == nil || elem == nil {
		return true
	}

	if len(ret.Exprs) > 0 {
		value, ok := e.emitValue(ret.Exprs[0])
		if !ok {
			return false
		}
		// the caller's return slot sits above the saved fp and return
		// address
		e.current.Store(vm.FP().WithOffset(16), value)
	}

	// deferred statements run before the frame epilogue, innermost
	// scope first
	for scopeID := elem.Parent; scopeID != element.None; {
		block := e.reg.Block(scopeID)
		if block == nil {
			break
		}
		if !e.emitDefers(scopeID) {
			return false
		}
		if block.HasFrame {
			break
		}
		owner := e.reg.Find(scopeID)
		if owner == nil {
			break
		}
		scopeID = owner.Parent
	}

	e.current.Move(vm.SP(), vm.FP())
	e.current.Pop(vm.FP())
	e.current.Rts()
	return true
}
