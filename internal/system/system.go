// Package system defines the abstract representation of a network of
// timed automata: global declarations, parameterized templates with
// locations and edges, template instantiations, progress measures and
// properties. The parser and the XML loader build this structure; the
// type checker walks and annotates it.
package system

import (
	"github.com/dannybpoulsen/utap/internal/ast"
)

// Variable is a declared variable or constant together with its
// initializer, if any. The initializer may be rewritten by the type
// checker into normal form.
type Variable struct {
	Sym  *ast.Symbol
	Init *ast.Expression
}

// RatePair binds a clock or cost reference to its rate expression in
// a location, produced by decomposing the location invariant.
type RatePair struct {
	Ref  *ast.Expression // the clock or cost the rate applies to
	Rate *ast.Expression
}

// State is a location of a template. After checking, Invariant holds
// the residual stopwatch invariant, Rates the decomposed rate
// bindings and CostRate the first rate expression for quick access.
type State struct {
	Sym       *ast.Symbol
	Invariant *ast.Expression
	Rates     []RatePair
	CostRate  *ast.Expression
}

// Edge is a transition between two locations.
type Edge struct {
	Source *State
	Target *State
	Select *ast.Frame
	Guard  *ast.Expression
	Sync   *ast.Expression
	Assign *ast.Expression
}

// Progress is a progress measure with an optional guard.
type Progress struct {
	Guard   *ast.Expression
	Measure *ast.Expression
}

// Declarations is a lexical scope of variables, functions and types.
type Declarations struct {
	Frame     *ast.Frame
	Variables []*Variable
	Functions []*Function
}

// Template is an automaton blueprint with formal parameters, local
// declarations, locations and edges.
type Template struct {
	Declarations
	Sym        *ast.Symbol
	Parameters *ast.Frame
	Init       *State
	States     []*State
	Edges      []*Edge
}

// AddState appends a location to the template.
func (t *Template) AddState(sym *ast.Symbol, invariant *ast.Expression) *State {
	s := &State{Sym: sym, Invariant: invariant}
	sym.SetData(s)
	t.States = append(t.States, s)
	return s
}

// AddEdge appends an edge between two locations of the template.
func (t *Template) AddEdge(src, dst *State) *Edge {
	e := &Edge{Source: src, Target: dst}
	t.Edges = append(t.Edges, e)
	return e
}

// ParamAssignment maps one formal template parameter to an actual
// argument expression.
type ParamAssignment struct {
	Formal *ast.Symbol
	Actual *ast.Expression
}

// Instance is an instantiation of a template with a per-parameter
// argument mapping, in parameter order.
type Instance struct {
	Sym      *ast.Symbol
	Template *Template
	Mapping  []ParamAssignment
}

// System is the aggregate produced by a builder and consumed by the
// analyzer.
type System struct {
	Global       Declarations
	Templates    []*Template
	Instances    []*Instance
	Progress     []*Progress
	Properties   []*ast.Expression
	BeforeUpdate []*ast.Expression
	AfterUpdate  []*ast.Expression

	// Valuation of constants in document order, used for constant
	// folding during checking.
	Constants map[*ast.Symbol]*ast.Expression
}

// New creates an empty system with a fresh global frame.
func New() *System {
	return &System{
		Global:    Declarations{Frame: ast.NewFrame()},
		Constants: make(map[*ast.Symbol]*ast.Expression),
	}
}

// AddTemplate creates a template declared in the global frame.
func (s *System) AddTemplate(name string, parameters *ast.Frame) *Template {
	tmpl := &Template{Parameters: parameters}
	tmpl.Frame = ast.NewSubFrame(s.Global.Frame)
	tmpl.Frame.AddAll(parameters)
	tmpl.Sym = s.Global.Frame.AddSymbol(name, ast.NewTemplate(parameters), tmpl)
	s.Templates = append(s.Templates, tmpl)
	return tmpl
}

// AddInstance records an instantiation of a template.
func (s *System) AddInstance(name string, tmpl *Template, mapping []ParamAssignment) *Instance {
	inst := &Instance{Template: tmpl, Mapping: mapping}
	inst.Sym = s.Global.Frame.AddSymbol(name, ast.NewProcess(tmpl.Parameters), inst)
	s.Instances = append(s.Instances, inst)
	return inst
}

// AddVariable declares a variable in the given scope.
func (d *Declarations) AddVariable(name string, typ *ast.Type, init *ast.Expression) *Variable {
	v := &Variable{Init: init}
	v.Sym = d.Frame.AddSymbol(name, typ, v)
	d.Variables = append(d.Variables, v)
	return v
}

// AddFunction declares a function in the given scope.
func (d *Declarations) AddFunction(name string, typ *ast.Type, body *BlockStatement) *Function {
	f := &Function{Body: body}
	f.Sym = d.Frame.AddSymbol(name, typ, f)
	d.Functions = append(d.Functions, f)
	return f
}
