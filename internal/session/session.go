// Package session drives the compilation pipeline: evaluation, the
// resolver passes, and byte-code emission, with a phase boundary check
// after each step.
package session

import (
	"github.com/awfeequdng/basecode/internal/ast"
	"github.com/awfeequdng/basecode/internal/builder"
	"github.com/awfeequdng/basecode/internal/diagnostics"
	"github.com/awfeequdng/basecode/internal/element"
	"github.com/awfeequdng/basecode/internal/emit"
	"github.com/awfeequdng/basecode/internal/eval"
	"github.com/awfeequdng/basecode/internal/ffi"
	"github.com/awfeequdng/basecode/internal/intern"
	"github.com/awfeequdng/basecode/internal/resolver"
	"github.com/awfeequdng/basecode/internal/scope"
	"github.com/awfeequdng/basecode/internal/vm"
)

// Options configures a compilation session.
type Options struct {
	// Debug keeps intermediate state queryable after Compile
	Debug bool
}

// Session owns the element map, scope tree, intern map, and pass state
// for one compilation unit.
type Session struct {
	opts Options

	bag       *diagnostics.Bag
	registry  *element.Registry
	builder   *builder.Builder
	scopes    *scope.Manager
	evaluator *eval.Evaluator
	resolver  *resolver.Resolver
	interns   *intern.Map
	assembler *vm.Assembler
	foreign   *ffi.Interface

	program element.ID
}

func New(opts Options) *Session {
	bag := diagnostics.NewBag()
	reg := element.NewRegistry()
	b := builder.New(reg)
	scopes := scope.NewManager(b)

	s := &Session{
		opts:      opts,
		bag:       bag,
		registry:  reg,
		builder:   b,
		scopes:    scopes,
		evaluator: eval.New(b, scopes, bag),
		resolver:  resolver.New(b, scopes, bag),
		interns:   intern.NewMap(),
		assembler: vm.NewAssembler(),
		foreign:   ffi.New(),
	}
	s.initialize()
	return s
}

// initialize creates the program element and the built-in types, once.
func (s *Session) initialize() {
	s.program = s.builder.MakeProgram()
	root := s.registry.Program(s.program).Block
	s.scopes.SetRoot(root)

	for _, name := range element.NumericTypeNames() {
		props, _ := element.NumericPropertiesFor(name)
		typeID := s.builder.MakeNumericType(root, element.None, props)
		s.scopes.DeclareType(root, name, typeID)
	}
	s.scopes.DeclareType(root, "bool", s.builder.MakeBoolType(root, element.None))
	s.scopes.DeclareType(root, "rune", s.builder.MakeRuneType(root, element.None))
	s.scopes.DeclareType(root, "string", s.builder.MakeStringType(root, element.None))
	s.scopes.DeclareType(root, "any", s.builder.MakeAnyType(root, element.None))
	s.scopes.DeclareType(root, "namespace", s.builder.MakeNamespaceType(root, element.None))
	s.scopes.DeclareType(root, "module", s.builder.MakeModuleType(root, element.None))
}

func (s *Session) Bag() *diagnostics.Bag          { return s.bag }
func (s *Session) Registry() *element.Registry    { return s.registry }
func (s *Session) Builder() *builder.Builder      { return s.builder }
func (s *Session) Scopes() *scope.Manager         { return s.scopes }
func (s *Session) Interns() *intern.Map           { return s.interns }
func (s *Session) Assembler() *vm.Assembler       { return s.assembler }
func (s *Session) Foreign() *ffi.Interface        { return s.foreign }
func (s *Session) Program() element.ID            { return s.program }
func (s *Session) Evaluator() *eval.Evaluator     { return s.evaluator }

// EntryScope returns the top-level block of the first compiled module.
func (s *Session) EntryScope() element.ID {
	program := s.registry.Program(s.program)
	if program == nil || len(program.Modules) == 0 {
		return s.scopes.Root()
	}
	mod := s.registry.Module(program.Modules[0])
	if mod == nil {
		return s.scopes.Root()
	}
	return mod.Scope
}

// Result is the composite outcome of a compilation.
type Result struct {
	Success     bool
	Diagnostics []*diagnostics.Diagnostic
}

// Compile runs the full pipeline over the parsed modules. A failed phase
// terminates the pipeline at the next boundary.
func (s *Session) Compile(modules ...*ast.Node) Result {
	for _, moduleNode := range modules {
		path := moduleNode.Token.Value
		s.evaluator.EvaluateModule(s.program, moduleNode, path)
	}
	if s.bag.HasErrors() {
		return s.result()
	}

	if !s.resolver.ResolveUnknownIdentifiers(s.evaluator.UnresolvedRefs) {
		return s.result()
	}
	if !s.resolver.ResolveUnknownTypes(s.evaluator.UnknownTypeIdents) {
		return s.result()
	}
	if !s.resolver.TypeCheck() {
		return s.result()
	}
	s.resolver.FoldConstants()
	if s.bag.HasErrors() {
		return s.result()
	}

	emitter := emit.New(s.registry, s.scopes, s.interns, s.assembler, s.foreign, s.bag)
	emitter.Emit(s.program)
	return s.result()
}

func (s *Session) result() Result {
	return Result{
		Success:     !s.bag.HasErrors(),
		Diagnostics: s.bag.Diagnostics(),
	}
}
