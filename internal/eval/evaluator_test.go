package eval_test

import (
	"testing"

	"github.com/awfeequdng/basecode/internal/ast"
	"github.com/awfeequdng/basecode/internal/element"
	"github.com/awfeequdng/basecode/internal/session"
)

func evaluate(t *testing.T, statements ...*ast.Node) *session.Session {
	t.Helper()
	s := session.New(session.Options{})
	module := ast.Module(statements...)
	module.Token.Value = "eval_test.bc"
	s.Compile(module)
	return s
}

func TestDeclarationCreatesIdentifier(t *testing.T) {
	s := evaluate(t, ast.Assignment(ast.Symbol("x"), ast.Number("42")))
	reg := s.Registry()

	identID := s.Scopes().FindIdentifier(element.QualifiedSymbol{Name: "x"}, s.EntryScope())
	if identID == element.None {
		t.Fatal("declaration did not create an identifier")
	}
	ident := reg.Identifier(identID)
	if ident.Initializer == element.None {
		t.Error("identifier missing its initializer")
	}
	if !ident.InferredType {
		t.Error("identifier without annotation should have an inferred type")
	}
	if reg.TypeName(reg.ResolveType(ident.TypeRef)) != "s8" {
		t.Errorf("42 should infer s8, got %s", reg.TypeName(reg.ResolveType(ident.TypeRef)))
	}
}

func TestAssignmentToExistingNameIsBinaryOperator(t *testing.T) {
	s := evaluate(t,
		ast.Assignment(ast.Symbol("x"), ast.Number("1")),
		ast.Statement(ast.Assignment(ast.Symbol("x"), ast.Number("2"))),
	)
	reg := s.Registry()

	found := false
	for _, opID := range reg.ByKind(element.KindBinaryOperator) {
		if op := reg.Operation(opID); op != nil && op.Op == element.OpAssignment {
			found = true
		}
	}
	if !found {
		t.Error("assignment to an existing name must become a binary assignment")
	}
}

func TestConstantAssignmentSetsFlag(t *testing.T) {
	s := evaluate(t, ast.ConstantAssignment(ast.Symbol("limit"), ast.Number("10")))
	reg := s.Registry()
	identID := s.Scopes().FindIdentifier(element.QualifiedSymbol{Name: "limit"}, s.EntryScope())
	if identID == element.None {
		t.Fatal("constant not declared")
	}
	if !reg.Identifier(identID).Constant {
		t.Error("constant assignment must mark the identifier constant")
	}
}

func TestUnknownNodeKindFails(t *testing.T) {
	s := session.New(session.Options{})
	module := ast.Module(ast.New(ast.NodeKind(999)))
	result := s.Compile(module)
	if result.Success {
		t.Fatal("unknown node kind must fail")
	}
	if !hasCode(result, "X000") {
		t.Error("unknown node kind should surface the generic code")
	}
}

func TestProcExpressionBuildsType(t *testing.T) {
	proc := ast.New(ast.KindProcExpression)
	params := ast.New(ast.KindParameterList)
	params.Children = []*ast.Node{
		ast.TypedSymbol("s32", "a"),
		ast.TypedSymbol("s32", "b"),
	}
	returns := ast.New(ast.KindTypeList)
	returns.Children = []*ast.Node{ast.TypeIdentifier("s32")}
	proc.Rhs = params
	proc.Lhs = returns
	proc.Children = []*ast.Node{ast.Body(
		ast.New(ast.KindReturnStatement),
	)}

	s := evaluate(t, ast.Assignment(ast.Symbol("sum"), proc))
	reg := s.Registry()

	procTypes := reg.ByKind(element.KindProcType)
	if len(procTypes) != 1 {
		t.Fatalf("proc types = %d, want 1", len(procTypes))
	}
	procType := reg.Type(procTypes[0])
	if len(procType.Params) != 2 {
		t.Errorf("params = %d, want 2", len(procType.Params))
	}
	if len(procType.Returns) != 1 {
		t.Errorf("returns = %d, want 1", len(procType.Returns))
	}
	if len(procType.Instances) != 1 {
		t.Errorf("instances = %d, want 1 (body present)", len(procType.Instances))
	}
	if procType.Foreign {
		t.Error("proc with a body is not foreign")
	}
}

func TestStructFieldsAndLayout(t *testing.T) {
	structExpr := ast.New(ast.KindStructExpression)
	structExpr.Children = []*ast.Node{
		ast.TypedSymbol("u8", "tag"),
		ast.TypedSymbol("s64", "value"),
	}
	s := evaluate(t, ast.Assignment(ast.Symbol("Cell"), structExpr))
	reg := s.Registry()

	composites := reg.ByKind(element.KindCompositeType)
	if len(composites) != 1 {
		t.Fatalf("composites = %d, want 1", len(composites))
	}
	typ := reg.Type(composites[0])
	if typ.Name != "Cell" {
		t.Errorf("composite name = %s, want Cell", typ.Name)
	}
	if len(typ.Fields) != 2 {
		t.Fatalf("fields = %d, want 2", len(typ.Fields))
	}
	// u8 then s64: the second field aligns to 8
	if reg.Field(typ.Fields[1]).Offset != 8 {
		t.Errorf("second field offset = %d, want 8", reg.Field(typ.Fields[1]).Offset)
	}
	if typ.SizeInBytes != 16 {
		t.Errorf("size = %d, want 16", typ.SizeInBytes)
	}
}

func TestIfChainBuildsNestedElse(t *testing.T) {
	inner := ast.New(ast.KindElseIfExpression)
	inner.Lhs = ast.Boolean(false)
	inner.Rhs = ast.Body()

	node := ast.New(ast.KindIfExpression)
	node.Lhs = ast.Boolean(true)
	node.Rhs = ast.Body()
	node.Children = []*ast.Node{inner}

	s := evaluate(t, ast.Statement(node))
	reg := s.Registry()

	ifs := reg.ByKind(element.KindIf)
	if len(ifs) != 2 {
		t.Fatalf("if elements = %d, want 2 (else-if nests)", len(ifs))
	}
	outer := reg.Flow(ifs[1])
	if outer.Else != ifs[0] && reg.Flow(ifs[0]).Else != ifs[1] {
		// one of the two must reference the other as its else branch
		t.Error("else-if chain must nest an if element in the else slot")
	}
}

func TestDeferCollectsOnBlockStack(t *testing.T) {
	deferNode := ast.New(ast.KindDeferExpression)
	deferNode.Rhs = ast.Number("1")

	s := evaluate(t, ast.Statement(deferNode))
	reg := s.Registry()

	program := reg.Program(s.Program())
	mod := reg.Module(program.Modules[0])
	block := reg.Block(mod.Scope)
	if len(block.Defers) != 1 {
		t.Errorf("defer stack = %d, want 1", len(block.Defers))
	}
	if len(block.Statements) != 0 {
		t.Error("deferred expressions must not appear in the statement list")
	}
}

func hasCode(result session.Result, code string) bool {
	for _, d := range result.Diagnostics {
		if d.Code == code {
			return true
		}
	}
	return false
}
