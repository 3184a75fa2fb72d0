package system

import (
	"github.com/dannybpoulsen/utap/internal/ast"
)

// Visitor walks a system in document order: global declarations
// first, then each template (parameters, local declarations,
// locations, edges), then instances, progress measures and
// properties.
type Visitor interface {
	VisitVariable(*Variable)
	VisitFunction(*Function)
	VisitTemplateBefore(*Template) bool
	VisitTemplateAfter(*Template)
	VisitState(*State)
	VisitEdge(*Edge)
	VisitInstance(*Instance)
	VisitProgress(*Progress)
	VisitProperty(*ast.Expression)
}

// BaseVisitor is a Visitor that visits everything and does nothing,
// for embedding.
type BaseVisitor struct{}

func (BaseVisitor) VisitVariable(*Variable)             {}
func (BaseVisitor) VisitFunction(*Function)             {}
func (BaseVisitor) VisitTemplateBefore(*Template) bool  { return true }
func (BaseVisitor) VisitTemplateAfter(*Template)        {}
func (BaseVisitor) VisitState(*State)                   {}
func (BaseVisitor) VisitEdge(*Edge)                     {}
func (BaseVisitor) VisitInstance(*Instance)             {}
func (BaseVisitor) VisitProgress(*Progress)             {}
func (BaseVisitor) VisitProperty(*ast.Expression)       {}

// Accept drives a visitor over the whole system.
func (s *System) Accept(v Visitor) {
	for _, variable := range s.Global.Variables {
		v.VisitVariable(variable)
	}
	for _, fn := range s.Global.Functions {
		v.VisitFunction(fn)
	}
	for _, tmpl := range s.Templates {
		if !v.VisitTemplateBefore(tmpl) {
			continue
		}
		for _, variable := range tmpl.Variables {
			v.VisitVariable(variable)
		}
		for _, fn := range tmpl.Functions {
			v.VisitFunction(fn)
		}
		for _, state := range tmpl.States {
			v.VisitState(state)
		}
		for _, edge := range tmpl.Edges {
			v.VisitEdge(edge)
		}
		v.VisitTemplateAfter(tmpl)
	}
	for _, inst := range s.Instances {
		v.VisitInstance(inst)
	}
	for _, progress := range s.Progress {
		v.VisitProgress(progress)
	}
	for _, property := range s.Properties {
		v.VisitProperty(property)
	}
}
