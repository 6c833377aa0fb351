package vars_test

import (
	"testing"

	"github.com/awfeequdng/basecode/internal/ast"
	"github.com/awfeequdng/basecode/internal/element"
	"github.com/awfeequdng/basecode/internal/session"
	"github.com/awfeequdng/basecode/internal/vars"
	"github.com/awfeequdng/basecode/internal/vm"
)

func groupProgram(t *testing.T, statements ...*ast.Node) (*session.Session, *vars.Grouping) {
	t.Helper()
	s := session.New(session.Options{})
	module := ast.Module(statements...)
	module.Token.Value = "vars_test.bc"
	result := s.Compile(module)
	if !result.Success {
		for _, d := range result.Diagnostics {
			t.Log(d.Format())
		}
		t.Fatal("compilation failed")
	}
	return s, vars.Group(s.Registry(), s.Scopes())
}

func sectionNames(s *session.Session, ids []element.ID) []string {
	reg := s.Registry()
	var names []string
	for _, identID := range ids {
		ident := reg.Identifier(identID)
		if ident == nil {
			continue
		}
		if sym := reg.Symbol(ident.Symbol); sym != nil {
			names = append(names, sym.Qualified.Name)
		}
	}
	return names
}

func contains(names []string, want string) bool {
	for _, name := range names {
		if name == want {
			return true
		}
	}
	return false
}

func TestGroupingBySection(t *testing.T) {
	proc := ast.New(ast.KindProcExpression)
	proc.Attributes = []*ast.Node{ast.NewToken(ast.KindAttribute, "foreign")}

	s, grouping := groupProgram(t,
		ast.Assignment(ast.TypedSymbol("s32", "uninitialized"), nil),
		ast.Assignment(ast.Symbol("writable"), ast.Number("5")),
		ast.ConstantAssignment(ast.Symbol("fixed"), ast.Number("7")),
		ast.Assignment(ast.Symbol("exit_handler"), proc),
	)

	if !contains(sectionNames(s, grouping.Section(vm.SectionBSS)), "uninitialized") {
		t.Error("declared-but-uninitialized identifier belongs in bss")
	}
	if !contains(sectionNames(s, grouping.Section(vm.SectionData)), "writable") {
		t.Error("initialized writable identifier belongs in data")
	}
	if !contains(sectionNames(s, grouping.Section(vm.SectionROData)), "fixed") {
		t.Error("constant identifier belongs in ro_data")
	}
	if !contains(sectionNames(s, grouping.Section(vm.SectionText)), "exit_handler") {
		t.Error("procedure-typed identifier belongs in text")
	}
}

func TestLocalIdentifiersExcluded(t *testing.T) {
	proc := ast.New(ast.KindProcExpression)
	proc.Children = []*ast.Node{ast.Body(
		ast.Statement(ast.Assignment(ast.Symbol("inner"), ast.Number("1"))),
	)}

	s, grouping := groupProgram(t,
		ast.Assignment(ast.Symbol("helper"), proc),
	)

	for _, section := range vm.Sections() {
		if contains(sectionNames(s, grouping.Section(section)), "inner") {
			t.Errorf("local identifier leaked into section %s", section)
		}
	}
}

func TestTypeDeclarationsExcluded(t *testing.T) {
	structExpr := ast.New(ast.KindStructExpression)
	structExpr.Children = []*ast.Node{ast.TypedSymbol("s32", "x")}

	s, grouping := groupProgram(t,
		ast.Assignment(ast.Symbol("Shape"), structExpr),
	)

	for _, section := range vm.Sections() {
		if contains(sectionNames(s, grouping.Section(section)), "Shape") {
			t.Errorf("type declaration leaked into section %s", section)
		}
	}
}
