package emit

import (
	"fmt"

	"github.com/awfeequdng/basecode/internal/diagnostics"
	"github.com/awfeequdng/basecode/internal/element"
	"github.com/awfeequdng/basecode/internal/ffi"
	"github.com/awfeequdng/basecode/internal/vm"
)

// emitCall lowers a call into three adjacent blocks: prologue (save
// locals, push arguments right-to-left), invoke, and epilogue (pop the
// return value, release the argument area, restore locals).
func (e *Emitter) emitCall(id element.ID) (vm.Operand, bool) {
	call := e.reg.ProcCall(id)
	elem := e.reg.Find(id)
	if call == nil || elem == nil {
		return vm.Operand{}, false
	}

	procType := e.reg.Type(e.reg.ResolveType(call.ProcType))
	if procType == nil {
		e.bag.Error(diagnostics.ErrGeneric, "call to unresolved procedure", &elem.Location)
		return vm.Operand{}, false
	}

	args := e.reg.ArgumentList(call.Args)
	var argIDs []element.ID
	if args != nil {
		argIDs = args.Args
	}

	section := e.current.Section
	prologue := e.newBlock(e.labelFor(id, "prologue"), section)
	e.current.AddSuccessor(prologue)
	e.current = prologue

	// non-foreign calls save the caller's statement temporaries
	savedLocals := 0
	if !procType.Foreign {
		savedLocals = e.temps
		for i := 0; i < savedLocals; i++ {
			name := fmt.Sprintf("t%d", i)
			prologue.Push(vm.RefOperand(e.asm.MakeNamedRef(vm.RefLocal, name, vm.SizeQword)))
		}
	}

	// arguments push right-to-left; composites copy by value into a
	// stack area aligned to eight bytes
	argArea := 0
	for i := len(argIDs) - 1; i >= 0; i-- {
		valueID := argIDs[i]
		if pair := e.reg.ArgumentPair(valueID); pair != nil {
			valueID = pair.Value
		}

		argType, inferred := e.reg.InferType(e.scopes, valueID)
		if inferred && e.reg.IsCompositeType(argType) {
			size := element.Align(e.reg.SizeOf(argType), 8)
			src, ok := e.emitAddress(valueID)
			if !ok {
				return vm.Operand{}, false
			}
			prologue.Sub(vm.SP(), vm.SP(), vm.IntOperand(uint64(size), vm.SizeQword))
			prologue.Copy(vm.SP(), src.operand(), e.reg.SizeOf(argType))
			argArea += size
			continue
		}

		value, ok := e.emitValue(valueID)
		if !ok {
			return vm.Operand{}, false
		}
		prologue.Push(value)
		argArea += 8
	}

	// the return slot sits on top of the arguments, right below the
	// return address the jsr pushes
	if len(procType.Returns) > 0 {
		prologue.Push(vm.IntOperand(0, vm.SizeQword))
	}

	invoke := e.newBlock(e.labelFor(id, "invoke"), section)
	prologue.AddSuccessor(invoke)
	e.current = invoke

	if procType.Foreign {
		if !e.emitForeignInvoke(invoke, call, procType, argIDs, elem) {
			return vm.Operand{}, false
		}
	} else {
		instanceLabel, ok := e.procInstanceLabel(procType)
		if !ok {
			e.bag.Error(diagnostics.ErrGeneric,
				fmt.Sprintf("procedure %s has no instance to call", procType.Name),
				&elem.Location)
			return vm.Operand{}, false
		}
		invoke.Jsr(e.labelRef(instanceLabel))
	}

	epilogue := e.newBlock(e.labelFor(id, "epilogue"), section)
	invoke.AddSuccessor(epilogue)
	e.current = epilogue

	var result vm.Operand
	if len(procType.Returns) > 0 {
		field := e.reg.Field(procType.Returns[0])
		retType := e.reg.IdentifierType(field.Identifier)
		size := vm.OpSizeForByteSize(e.reg.SizeOf(retType))
		temp, ok := e.acquireTemp(size)
		if !ok {
			return vm.Operand{}, false
		}
		epilogue.Pop(temp)
		result = temp
	}
	if argArea > 0 {
		epilogue.Add(vm.SP(), vm.SP(), vm.IntOperand(uint64(argArea), vm.SizeQword))
	}
	for i := savedLocals - 1; i >= 0; i-- {
		name := fmt.Sprintf("t%d", i)
		epilogue.Pop(vm.RefOperand(e.asm.MakeNamedRef(vm.RefLocal, name, vm.SizeQword)))
	}

	return result, true
}

func (e *Emitter) emitForeignInvoke(invoke *vm.BasicBlock, call *element.ProcCall,
	procType *element.Type, argIDs []element.ID, elem *element.Element) bool {

	name := procType.Name
	if name == "" {
		name = e.callName(call)
	}
	fn := e.foreign.FindFunctionByName(name)
	if fn == nil && procType.ForeignAddress != 0 {
		fn = e.foreign.FindFunction(procType.ForeignAddress)
	}
	if fn == nil {
		// register on first use so the loader can bind it late
		fn = &ffi.Function{Name: name, Variadic: len(procType.Params) == 0 && len(argIDs) > 0}
		e.foreign.Register(fn)
	}

	signature := 0
	if fn.Variadic {
		// each variadic call site records its own argument layout
		argTypes := make([]ffi.ArgumentType, 0, len(argIDs))
		for _, argID := range argIDs {
			valueID := argID
			if pair := e.reg.ArgumentPair(argID); pair != nil {
				valueID = pair.Value
			}
			argTypes = append(argTypes, e.ffiArgumentType(valueID))
		}
		signature = e.foreign.RegisterCallSite(argTypes)
		call.SignatureID = signature
	}

	invoke.Ffi(vm.IntOperand(fn.Address, vm.SizeQword), signature)
	return true
}

func (e *Emitter) ffiArgumentType(id element.ID) ffi.ArgumentType {
	typeID, ok := e.reg.InferType(e.scopes, id)
	if !ok {
		return ffi.ArgInteger
	}
	typeID = e.reg.ResolveType(typeID)
	switch {
	case e.reg.NumberClassOf(typeID) == element.ClassFloat:
		return ffi.ArgFloat
	case e.reg.IsPointerType(typeID),
		e.reg.KindOf(typeID) == element.KindStringType:
		return ffi.ArgPointer
	case e.reg.IsCompositeType(typeID):
		return ffi.ArgStruct
	}
	return ffi.ArgInteger
}

func (e *Emitter) callName(call *element.ProcCall) string {
	if ref := e.reg.Reference(call.Ref); ref != nil {
		return ref.Qualified.Name
	}
	return ""
}

// procInstanceLabel returns the label of the procedure's emitted body.
func (e *Emitter) procInstanceLabel(procType *element.Type) (string, bool) {
	if len(procType.Instances) == 0 {
		return "", false
	}
	inst := e.reg.Find(procType.Instances[0])
	if inst == nil {
		return "", false
	}
	return inst.LabelName(), true
}
