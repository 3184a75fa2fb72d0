package parser

import (
	"github.com/dannybpoulsen/utap/internal/ast"
	"github.com/dannybpoulsen/utap/internal/lexer"
	"github.com/dannybpoulsen/utap/internal/system"
)

// parseTemplate parses a process template:
//
//	process Name(params) {
//	    declarations...
//	    state S1 { invariant }, S2;
//	    urgent S2;
//	    commit S3;
//	    init S1;
//	    trans S1 -> S2 { select...; guard...; sync...; assign...; }, ...;
//	}
func (p *Parser) parseTemplate() {
	p.expect(lexer.TokenProcess)
	name := p.expect(lexer.TokenIdentifier)

	params := ast.NewSubFrame(p.scope)
	saved := p.scope
	p.scope = params
	p.expect(lexer.TokenLParen)
	for !p.at(lexer.TokenRParen) && !p.at(lexer.TokenEOF) {
		p.parseParameter(params)
		if !p.accept(lexer.TokenComma) {
			break
		}
	}
	p.expect(lexer.TokenRParen)
	p.scope = saved

	tmpl := p.sys.AddTemplate(name.Text, params)
	p.scope = tmpl.Frame
	defer func() { p.scope = saved }()

	p.expect(lexer.TokenLBrace)
	for !p.at(lexer.TokenRBrace) && !p.at(lexer.TokenEOF) {
		switch p.tok().Type {
		case lexer.TokenState:
			p.parseStates(tmpl)
		case lexer.TokenUrgent, lexer.TokenCommit:
			// Location kind lists; `urgent` may also start a channel
			// declaration, which is recognized by the following type
			// token.
			if p.peek(1).Type == lexer.TokenIdentifier {
				p.parseStateKinds(tmpl)
				continue
			}
			p.parseDeclaration(&tmpl.Declarations)
		case lexer.TokenInit:
			p.next()
			stateName := p.expect(lexer.TokenIdentifier)
			p.expect(lexer.TokenSemicolon)
			if state := p.resolveState(tmpl, stateName); state != nil {
				tmpl.Init = state
			}
		case lexer.TokenTrans:
			p.parseTransitions(tmpl)
		default:
			p.parseDeclaration(&tmpl.Declarations)
		}
	}
	p.expect(lexer.TokenRBrace)
}

// parseParameter parses one formal parameter: a type, an optional
// reference marker and a declarator.
func (p *Parser) parseParameter(params *ast.Frame) {
	typ := p.parseType()
	if p.accept(lexer.TokenBitAnd) {
		typ = typ.SetPrefix(true, ast.PrefixReference)
	}
	name, declared := p.parseDeclarator(typ)
	params.AddSymbol(name.Text, declared, nil)
}

// parseStates parses a `state` declaration list with optional
// invariants.
func (p *Parser) parseStates(tmpl *system.Template) {
	p.expect(lexer.TokenState)
	for {
		name := p.expect(lexer.TokenIdentifier)
		var invariant *ast.Expression
		if p.accept(lexer.TokenLBrace) {
			invariant = p.parseExprList()
			p.expect(lexer.TokenRBrace)
		}
		sym := tmpl.Frame.AddSymbol(name.Text, ast.LocationType, nil)
		tmpl.AddState(sym, invariant)
		if !p.accept(lexer.TokenComma) {
			break
		}
	}
	p.expect(lexer.TokenSemicolon)
}

// parseStateKinds parses `urgent S1, S2;` or `commit S1;` lists,
// marking the named locations.
func (p *Parser) parseStateKinds(tmpl *system.Template) {
	kind := p.next()
	prefix := ast.PrefixUrgent
	if kind.Type == lexer.TokenCommit {
		prefix = ast.PrefixCommitted
	}
	for {
		name := p.expect(lexer.TokenIdentifier)
		if state := p.resolveState(tmpl, name); state != nil {
			state.Sym.SetType(state.Sym.Type().SetPrefix(true, prefix))
		}
		if !p.accept(lexer.TokenComma) {
			break
		}
	}
	p.expect(lexer.TokenSemicolon)
}

func (p *Parser) resolveState(tmpl *system.Template, name lexer.Token) *system.State {
	if sym, ok := tmpl.Frame.Resolve(name.Text); ok {
		if state, isState := sym.Data().(*system.State); isState {
			return state
		}
	}
	p.errorf(name.Pos, "unknown location '%s'", name.Text)
	return nil
}

// parseTransitions parses a `trans` list. Each transition is
// `Src -> Dst { select ...; guard ...; sync ...; assign ...; }`.
func (p *Parser) parseTransitions(tmpl *system.Template) {
	p.expect(lexer.TokenTrans)
	for {
		srcName := p.expect(lexer.TokenIdentifier)
		p.expect(lexer.TokenArrow)
		dstName := p.expect(lexer.TokenIdentifier)

		src := p.resolveState(tmpl, srcName)
		dst := p.resolveState(tmpl, dstName)
		edge := &system.Edge{Source: src, Target: dst, Select: ast.NewSubFrame(tmpl.Frame)}

		p.expect(lexer.TokenLBrace)
		saved := p.scope
		p.scope = edge.Select
		for !p.at(lexer.TokenRBrace) && !p.at(lexer.TokenEOF) {
			switch p.tok().Type {
			case lexer.TokenSelect:
				p.next()
				for {
					name := p.expect(lexer.TokenIdentifier)
					p.expect(lexer.TokenColon)
					typ := p.parseType()
					edge.Select.AddSymbol(name.Text, typ, nil)
					if !p.accept(lexer.TokenComma) {
						break
					}
				}
				p.expect(lexer.TokenSemicolon)
			case lexer.TokenGuard:
				p.next()
				edge.Guard = p.parseExprList()
				p.expect(lexer.TokenSemicolon)
			case lexer.TokenSync:
				p.next()
				edge.Sync = p.parseSyncLabel()
				p.expect(lexer.TokenSemicolon)
			case lexer.TokenAssign:
				p.next()
				edge.Assign = p.parseExprList()
				p.expect(lexer.TokenSemicolon)
			default:
				p.errorf(p.tok().Pos, "expected select, guard, sync or assign")
				p.skipTo(lexer.TokenSemicolon, lexer.TokenRBrace)
				p.accept(lexer.TokenSemicolon)
			}
		}
		p.expect(lexer.TokenRBrace)
		p.scope = saved

		if edge.Assign.Empty() {
			// An edge without an assignment label updates nothing;
			// the placeholder literal keeps the checker quiet.
			edge.Assign = ast.NewConstant(srcName.Pos, 1)
		}
		if src != nil && dst != nil {
			tmpl.Edges = append(tmpl.Edges, edge)
		}
		if !p.accept(lexer.TokenComma) {
			break
		}
	}
	p.expect(lexer.TokenSemicolon)
}
