package check

import (
	"github.com/dannybpoulsen/utap/internal/ast"
	"github.com/dannybpoulsen/utap/internal/system"
)

// persistentVariables collects the symbols that are part of the
// runtime state vector: every variable without the constant prefix,
// and every template parameter that is a reference or a non-constant
// value parameter. The set is computed once per analysis and read
// only afterwards.
type persistentVariables struct {
	system.BaseVisitor
	variables map[*ast.Symbol]bool
}

func collectPersistentVariables(sys *system.System) map[*ast.Symbol]bool {
	pv := &persistentVariables{variables: make(map[*ast.Symbol]bool)}
	sys.Accept(pv)
	return pv.variables
}

func (pv *persistentVariables) VisitVariable(v *system.Variable) {
	if !v.Sym.Type().HasPrefix(ast.PrefixConstant) {
		pv.variables[v.Sym] = true
	}
}

func (pv *persistentVariables) VisitTemplateAfter(tmpl *system.Template) {
	for _, param := range tmpl.Parameters.Symbols() {
		if param.Type().HasPrefix(ast.PrefixReference) ||
			!param.Type().HasPrefix(ast.PrefixConstant) {
			pv.variables[param] = true
		}
	}
}
