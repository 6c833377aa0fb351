package session

import (
	"strings"
	"testing"

	"github.com/awfeequdng/basecode/internal/ast"
	"github.com/awfeequdng/basecode/internal/element"
)

func compile(t *testing.T, statements ...*ast.Node) (*Session, Result) {
	t.Helper()
	s := New(Options{})
	module := ast.Module(statements...)
	module.Token.Value = "test.bc"
	result := s.Compile(module)
	return s, result
}

func mustCompile(t *testing.T, statements ...*ast.Node) *Session {
	t.Helper()
	s, result := compile(t, statements...)
	if !result.Success {
		for _, d := range result.Diagnostics {
			t.Log(d.Format())
		}
		t.Fatal("compilation failed")
	}
	return s
}

// foreignProc builds `name := proc(params...)` carrying the foreign
// attribute.
func foreignProc(name string, params ...*ast.Node) *ast.Node {
	proc := ast.New(ast.KindProcExpression)
	list := ast.New(ast.KindParameterList)
	list.Children = params
	proc.Rhs = list
	proc.Attributes = []*ast.Node{ast.NewToken(ast.KindAttribute, "foreign")}
	return ast.Assignment(ast.Symbol(name), proc)
}

func structDecl(name string, fields ...*ast.Node) *ast.Node {
	expr := ast.New(ast.KindStructExpression)
	expr.Children = fields
	return ast.Assignment(ast.Symbol(name), expr)
}

func TestHelloWorld(t *testing.T) {
	s := mustCompile(t,
		ast.Assignment(ast.Symbol("s"), ast.String("hi")),
		foreignProc("print", ast.TypedSymbol("string", "s")),
		ast.Statement(ast.ProcCall(ast.Ref("print"), ast.Ref("s"))),
	)

	asm := s.Assembler().Disassemble()
	if !strings.Contains(asm, "_intern_str_lit_0:") {
		t.Error("missing interned string descriptor label")
	}
	if !strings.Contains(asm, "_intern_str_lit_0_data:") {
		t.Error("missing interned string data label")
	}
	if !strings.Contains(asm, `string "hi"`) {
		t.Error("missing interned string payload")
	}
	if !strings.Contains(asm, "ffi") {
		t.Error("foreign call should lower to an ffi dispatch")
	}
	if !strings.Contains(asm, "_start:") || !strings.Contains(asm, "_end:") {
		t.Error("missing entry labels")
	}
	if !strings.Contains(asm, "exit") {
		t.Error("_end block should exit")
	}
}

func TestEmissionOrderIsStable(t *testing.T) {
	s := mustCompile(t,
		ast.Assignment(ast.Symbol("x"), ast.Number("1")),
		ast.Statement(ast.Assignment(ast.Symbol("x"), ast.Number("1"))),
	)

	labels := s.Assembler().LabelSequence()
	index := func(name string) int {
		for i, label := range labels {
			if label == name {
				return i
			}
		}
		return -1
	}

	tiArray := index("_ti_array")
	start := index("_start")
	end := index("_end")
	if tiArray < 0 || start < 0 || end < 0 {
		t.Fatalf("missing structural labels in %v", labels)
	}
	if !(tiArray < start && start < end) {
		t.Errorf("emission order violated: %v", labels)
	}
}

func TestCompositeCopy(t *testing.T) {
	s := mustCompile(t,
		structDecl("Point", ast.TypedSymbol("s32", "x"), ast.TypedSymbol("s32", "y")),
		ast.Assignment(ast.TypedSymbol("Point", "a"), nil),
		ast.Assignment(ast.TypedSymbol("Point", "b"), nil),
		ast.Statement(ast.Assignment(ast.Symbol("b"), ast.Ref("a"))),
	)

	asm := s.Assembler().Disassemble()
	if !strings.Contains(asm, "copy") {
		t.Errorf("composite assignment must emit a byte-wise copy:\n%s", asm)
	}
	if !strings.Contains(asm, ", 8") {
		t.Error("copy should move the composite's full 8 bytes")
	}
}

func TestShortCircuitAnd(t *testing.T) {
	s := mustCompile(t,
		ast.Assignment(ast.Symbol("x"), ast.Number("2")),
		ast.Assignment(ast.Symbol("y"), ast.Number("3")),
		ast.Statement(ast.Binary("and",
			ast.Binary(">", ast.Ref("x"), ast.Number("0")),
			ast.Binary(">", ast.Ref("y"), ast.Number("0")))),
	)

	asm := s.Assembler().Disassemble()
	if strings.Count(asm, "setg t0") != 2 {
		t.Errorf("both relational sides must set the same temporary:\n%s", asm)
	}
	if !strings.Contains(asm, "bz t0") {
		t.Errorf("logical and must branch past the RHS on bz:\n%s", asm)
	}
}

func TestShortCircuitOrUsesBnz(t *testing.T) {
	s := mustCompile(t,
		ast.Assignment(ast.Symbol("x"), ast.Number("2")),
		ast.Statement(ast.Binary("or",
			ast.Binary(">", ast.Ref("x"), ast.Number("0")),
			ast.Binary("<", ast.Ref("x"), ast.Number("10")))),
	)
	asm := s.Assembler().Disassemble()
	if !strings.Contains(asm, "bnz t0") {
		t.Errorf("logical or must branch past the RHS on bnz:\n%s", asm)
	}
}

func rangeFor(induction string, body *ast.Node, args ...*ast.Node) *ast.Node {
	node := ast.New(ast.KindForInStatement)
	node.Lhs = ast.Symbol(induction)
	node.Rhs = ast.ProcCall(ast.Ref("range"), args...)
	node.Children = []*ast.Node{body}
	return node
}

func TestRangeForDescendingInclusive(t *testing.T) {
	s := mustCompile(t,
		ast.Assignment(ast.Symbol("total"), ast.Number("0")),
		ast.Statement(rangeFor("i",
			ast.Body(ast.Statement(ast.Assignment(ast.Symbol("total"), ast.Ref("i")))),
			ast.Number("10"), ast.Number("0"),
			ast.Pair("dir", ast.Number("1")),
			ast.Pair("kind", ast.Number("0")))),
	)

	asm := s.Assembler().Disassemble()
	// descending+inclusive loops exit when induction drops below stop
	if !strings.Contains(asm, "bl ") {
		t.Errorf("descending inclusive range must use a below-branch:\n%s", asm)
	}
	if !strings.Contains(asm, "sub i, i, 1") {
		t.Errorf("descending range must step with sub:\n%s", asm)
	}
}

func TestRangeForAscendingExclusiveBounds(t *testing.T) {
	s := mustCompile(t,
		ast.Assignment(ast.Symbol("total"), ast.Number("0")),
		ast.Statement(rangeFor("i",
			ast.Body(ast.Statement(ast.Assignment(ast.Symbol("total"), ast.Ref("i")))),
			ast.Number("0"), ast.Number("3"))),
	)
	asm := s.Assembler().Disassemble()
	// ascending exclusive exits when induction >= stop
	if !strings.Contains(asm, "bge ") {
		t.Errorf("ascending exclusive range must exit on bge:\n%s", asm)
	}
	if !strings.Contains(asm, "add i, i, 1") {
		t.Errorf("ascending range must step with add:\n%s", asm)
	}
}

func TestCastWidenSignedUsesMoves(t *testing.T) {
	cast := ast.New(ast.KindCastExpression)
	cast.Lhs = ast.TypeIdentifier("s64")
	cast.Rhs = ast.Ref("v")

	s := mustCompile(t,
		ast.Assignment(ast.TypedSymbol("s8", "v"), ast.Number("1")),
		ast.Assignment(ast.TypedSymbol("s64", "w"), nil),
		ast.Statement(ast.Assignment(ast.Symbol("w"), cast)),
	)

	asm := s.Assembler().Disassemble()
	if !strings.Contains(asm, "moves") {
		t.Errorf("s8 -> s64 must sign-extend with moves:\n%s", asm)
	}
}

func TestCastZeroExtendUnsigned(t *testing.T) {
	cast := ast.New(ast.KindCastExpression)
	cast.Lhs = ast.TypeIdentifier("u64")
	cast.Rhs = ast.Ref("v")

	s := mustCompile(t,
		ast.Assignment(ast.TypedSymbol("u8", "v"), ast.Number("1")),
		ast.Assignment(ast.TypedSymbol("u64", "w"), nil),
		ast.Statement(ast.Assignment(ast.Symbol("w"), cast)),
	)
	asm := s.Assembler().Disassemble()
	if !strings.Contains(asm, "movez") {
		t.Errorf("u8 -> u64 must zero-extend with movez:\n%s", asm)
	}
}

func TestInvalidCastReportsC073(t *testing.T) {
	cast := ast.New(ast.KindCastExpression)
	cast.Lhs = ast.TypeIdentifier("string")
	cast.Rhs = ast.Ref("v")

	_, result := compile(t,
		ast.Assignment(ast.TypedSymbol("s32", "v"), ast.Number("1")),
		ast.Assignment(ast.TypedSymbol("string", "w"), nil),
		ast.Statement(ast.Assignment(ast.Symbol("w"), cast)),
	)
	if result.Success {
		t.Fatal("cast to a non-numeric type must fail")
	}
	if !hasCode(result, "C073") {
		t.Errorf("expected C073, got %v", codes(result))
	}
}

func pointerType(name string) *ast.Node {
	ti := ast.TypeIdentifier(name)
	ti.Flags |= ast.FlagPointer
	return ti
}

func TestMemberAccessThroughPointer(t *testing.T) {
	pSym := ast.Symbol("p")
	pSym.Rhs = pointerType("Point")

	s := mustCompile(t,
		structDecl("Point", ast.TypedSymbol("s32", "x"), ast.TypedSymbol("s32", "y")),
		ast.Assignment(ast.TypedSymbol("Point", "a"), nil),
		ast.Assignment(pSym, nil),
		ast.Assignment(ast.TypedSymbol("s32", "g"), nil),
		ast.Statement(ast.Assignment(ast.Symbol("p"), ast.Unary("&", ast.Ref("a")))),
		ast.Statement(ast.Assignment(ast.Symbol("g"),
			ast.Binary(".", ast.Ref("p"), ast.Ref("y")))),
	)

	asm := s.Assembler().Disassemble()
	// the pointer steps once to its base, then the load uses the field
	// offset pair
	if !strings.Contains(asm, "+4") {
		t.Errorf("member access should address with the field offset:\n%s", asm)
	}
}

func TestUnresolvedIdentifierReportsP004(t *testing.T) {
	_, result := compile(t,
		ast.Statement(ast.Assignment(ast.Symbol("x"), ast.Ref("missing"))),
	)
	if result.Success {
		t.Fatal("unresolved identifier must fail")
	}
	if !hasCode(result, "P004") {
		t.Errorf("expected P004, got %v", codes(result))
	}
}

func TestTypeMismatchReportsP019(t *testing.T) {
	_, result := compile(t,
		structDecl("Point", ast.TypedSymbol("s32", "x")),
		ast.Assignment(ast.TypedSymbol("s32", "n"), nil),
		ast.Assignment(ast.TypedSymbol("Point", "pt"), nil),
		ast.Statement(ast.Assignment(ast.Symbol("n"), ast.Ref("pt"))),
	)
	if result.Success {
		t.Fatal("composite-to-scalar assignment must fail")
	}
	if !hasCode(result, "P019") {
		t.Errorf("expected P019, got %v", codes(result))
	}
}

func TestConstantFoldReplacesExpression(t *testing.T) {
	s := mustCompile(t,
		ast.Assignment(ast.Symbol("x"), ast.Binary("+", ast.Number("2"), ast.Number("3"))),
	)
	reg := s.Registry()
	identID := s.Scopes().FindIdentifier(element.QualifiedSymbol{Name: "x"}, s.EntryScope())
	if identID == element.None {
		t.Fatal("x not declared")
	}
	value, ok := reg.AsInteger(identID)
	if !ok || value != 5 {
		t.Errorf("folded value = %d (ok=%v), want 5", value, ok)
	}
	// the operator element is gone from the map
	if ops := reg.ByKind(element.KindBinaryOperator); len(ops) != 0 {
		t.Errorf("folded operator still present: %v", ops)
	}
}

func TestResolutionIsIdempotent(t *testing.T) {
	s := mustCompile(t,
		ast.Assignment(ast.Symbol("x"), ast.Number("1")),
		ast.Statement(ast.Assignment(ast.Symbol("x"), ast.Number("2"))),
	)
	countBefore := s.Registry().Count()
	// re-running resolution on a resolved program changes nothing
	s.resolver.ResolveUnknownIdentifiers(s.evaluator.UnresolvedRefs)
	s.resolver.ResolveUnknownTypes(s.evaluator.UnknownTypeIdents)
	if s.Bag().HasErrors() {
		t.Error("re-resolution must not add messages")
	}
	if s.Registry().Count() != countBefore {
		t.Error("re-resolution must not create elements")
	}
}

func TestElementMapInvariant(t *testing.T) {
	s := mustCompile(t,
		ast.Assignment(ast.Symbol("x"), ast.Number("1")),
	)
	reg := s.Registry()
	reg.Each(func(e *element.Element) bool {
		if reg.Find(e.ID) != e {
			t.Errorf("element %d does not round-trip through the map", e.ID)
		}
		return true
	})
}

func TestBreakTargetsInnermostFrame(t *testing.T) {
	// a for loop containing a break: the break jumps to the loop exit
	s := mustCompile(t,
		ast.Assignment(ast.Symbol("total"), ast.Number("0")),
		ast.Statement(rangeFor("i",
			ast.Body(ast.Statement(ast.New(ast.KindBreakStatement))),
			ast.Number("0"), ast.Number("3"))),
	)
	asm := s.Assembler().Disassemble()
	if !strings.Contains(asm, "_exit") {
		t.Errorf("break should target a loop exit label:\n%s", asm)
	}
}

func TestBreakOutsideLoopReportsP081(t *testing.T) {
	_, result := compile(t,
		ast.Statement(ast.New(ast.KindBreakStatement)),
	)
	if result.Success {
		t.Fatal("break outside a loop must fail")
	}
	if !hasCode(result, "P081") {
		t.Errorf("expected P081, got %v", codes(result))
	}
}

func TestSectionGrouping(t *testing.T) {
	s := mustCompile(t,
		ast.Assignment(ast.TypedSymbol("s32", "uninit"), nil),
		ast.Assignment(ast.Symbol("writable"), ast.Number("1")),
		ast.ConstantAssignment(ast.Symbol("fixed"), ast.Number("2")),
	)
	asm := s.Assembler().Disassemble()
	for _, label := range []string{"identifier_"} {
		if !strings.Contains(asm, label) {
			t.Errorf("expected %s storage labels in:\n%s", label, asm)
		}
	}
}

func TestDeferRunsAtScopeExitLIFO(t *testing.T) {
	first := ast.New(ast.KindDeferExpression)
	first.Rhs = ast.ProcCall(ast.Ref("note"), ast.Number("1"))
	second := ast.New(ast.KindDeferExpression)
	second.Rhs = ast.ProcCall(ast.Ref("note"), ast.Number("2"))

	s := mustCompile(t,
		foreignProc("note", ast.TypedSymbol("s32", "v")),
		ast.Statement(first),
		ast.Statement(second),
	)
	asm := s.Assembler().Disassemble()
	// both deferred calls dispatch through the ffi at module scope exit
	if strings.Count(asm, "ffi") != 2 {
		t.Errorf("both deferred calls must emit:\n%s", asm)
	}
	// LIFO: the second defer's arguments push before the first's
	push2 := strings.Index(asm, "push 2")
	push1 := strings.Index(asm, "push 1")
	if push2 < 0 || push1 < 0 || push2 > push1 {
		t.Errorf("defers must run in LIFO order:\n%s", asm)
	}
}

func TestSwitchLowersCaseChain(t *testing.T) {
	sw := ast.New(ast.KindSwitchExpression)
	sw.Lhs = ast.Ref("x")
	caseOne := ast.New(ast.KindCaseExpression)
	caseOne.Lhs = ast.Number("1")
	caseOne.Rhs = ast.Body(ast.Statement(ast.Assignment(ast.Symbol("x"), ast.Number("10"))))
	caseDefault := ast.New(ast.KindCaseExpression)
	caseDefault.Rhs = ast.Body(ast.Statement(ast.Assignment(ast.Symbol("x"), ast.Number("20"))))
	sw.Rhs = ast.Body(ast.Statement(caseOne), ast.Statement(caseDefault))

	s := mustCompile(t,
		ast.Assignment(ast.Symbol("x"), ast.Number("1")),
		ast.Statement(sw),
	)
	asm := s.Assembler().Disassemble()
	if !strings.Contains(asm, "bne ") {
		t.Errorf("case predicate must branch to the next case on inequality:\n%s", asm)
	}
	if !strings.Contains(asm, "switch_") {
		t.Errorf("switch should label its exit block:\n%s", asm)
	}
}

func TestWithRewritesUnqualifiedFields(t *testing.T) {
	with := ast.New(ast.KindWithExpression)
	with.Lhs = ast.Ref("pt")
	with.Rhs = ast.Body(
		ast.Statement(ast.Assignment(ast.Symbol("y"), ast.Number("5"))),
	)

	s := mustCompile(t,
		structDecl("Point", ast.TypedSymbol("s32", "x"), ast.TypedSymbol("s32", "y")),
		ast.Assignment(ast.TypedSymbol("Point", "pt"), nil),
		ast.Statement(with),
	)

	asm := s.Assembler().Disassemble()
	// the unqualified y resolves as pt.y: a store at the field offset
	if !strings.Contains(asm, "+4") {
		t.Errorf("with-body field assignment must use the field offset:\n%s", asm)
	}
}

func hasCode(result Result, code string) bool {
	for _, d := range result.Diagnostics {
		if d.Code == code {
			return true
		}
	}
	return false
}

func codes(result Result) []string {
	var out []string
	for _, d := range result.Diagnostics {
		out = append(out, d.Code)
	}
	return out
}
