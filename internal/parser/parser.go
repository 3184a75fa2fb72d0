// Package parser implements the textual front end for timed-automata
// models: global declarations, templates with locations and edges,
// functions, instantiations, progress measures and properties. The
// parser doubles as the system builder; it produces the linked system
// structure consumed by the type checker.
package parser

import (
	"os"

	"github.com/dannybpoulsen/utap/internal/ast"
	"github.com/dannybpoulsen/utap/internal/diagnostic"
	"github.com/dannybpoulsen/utap/internal/lexer"
	"github.com/dannybpoulsen/utap/internal/position"
	"github.com/dannybpoulsen/utap/internal/system"
)

// typeAlias marks symbols introduced by typedef; the aliased type is
// the symbol's own type.
type typeAlias struct{}

// Parser consumes a token stream and builds a system.
type Parser struct {
	tokens  []lexer.Token
	pos     int
	handler *diagnostic.Handler
	sys     *system.System
	scope   *ast.Frame
}

// ParseXTA parses a complete model in the textual syntax and returns
// the system. The boolean result is false if errors were reported.
func ParseXTA(src, filename string, handler *diagnostic.Handler) (*system.System, bool) {
	sys := system.New()
	// The cost variable of priced models is predeclared.
	sys.Global.AddVariable("cost", ast.CostType, nil)

	p := newParser(src, filename, sys, handler)
	before := handler.ErrorCount()
	p.parseModel()
	return sys, handler.ErrorCount() == before
}

// ParseXTAFile parses a model file.
func ParseXTAFile(path string, handler *diagnostic.Handler) (*system.System, bool) {
	data, err := os.ReadFile(path)
	if err != nil {
		handler.Error(position.Position{Filename: path, Line: 1, Column: 1}, "%s", err)
		return system.New(), false
	}
	return ParseXTA(string(data), path, handler)
}

// ParseExpression parses a single expression against the global
// declarations of an existing system.
func ParseExpression(src, filename string, sys *system.System, handler *diagnostic.Handler) *ast.Expression {
	p := newParser(src, filename, sys, handler)
	e := p.parseExprList()
	p.expect(lexer.TokenEOF)
	return e
}

// ParseQueries parses a sequence of properties separated by semicolons
// (empty entries and a trailing semicolon are accepted) and appends
// them to the system.
func ParseQueries(src, filename string, sys *system.System, handler *diagnostic.Handler) []*ast.Expression {
	p := newParser(src, filename, sys, handler)
	var queries []*ast.Expression
	for !p.at(lexer.TokenEOF) {
		if p.accept(lexer.TokenSemicolon) {
			continue
		}
		q := p.parseProperty()
		queries = append(queries, q)
		sys.Properties = append(sys.Properties, q)
		if !p.at(lexer.TokenEOF) {
			p.expect(lexer.TokenSemicolon)
		}
	}
	return queries
}

func newParser(src, filename string, sys *system.System, handler *diagnostic.Handler) *Parser {
	return &Parser{
		tokens:  lexer.New(src, filename).Tokens(),
		handler: handler,
		sys:     sys,
		scope:   sys.Global.Frame,
	}
}

// Token-stream helpers.

func (p *Parser) tok() lexer.Token {
	return p.tokens[p.pos]
}

func (p *Parser) peek(n int) lexer.Token {
	if p.pos+n >= len(p.tokens) {
		return p.tokens[len(p.tokens)-1]
	}
	return p.tokens[p.pos+n]
}

func (p *Parser) at(tt lexer.TokenType) bool {
	return p.tok().Type == tt
}

func (p *Parser) next() lexer.Token {
	t := p.tok()
	if t.Type != lexer.TokenEOF {
		p.pos++
	}
	return t
}

func (p *Parser) accept(tt lexer.TokenType) bool {
	if p.at(tt) {
		p.next()
		return true
	}
	return false
}

func (p *Parser) expect(tt lexer.TokenType) lexer.Token {
	if p.at(tt) {
		return p.next()
	}
	p.errorf(p.tok().Pos, "expected '%s' but found '%s'", tt, p.tok())
	return lexer.Token{Type: tt, Pos: p.tok().Pos}
}

func (p *Parser) errorf(pos position.Position, format string, args ...any) {
	p.handler.Error(pos, format, args...)
}

// skipTo advances to the next token of one of the given types, for
// error recovery.
func (p *Parser) skipTo(types ...lexer.TokenType) {
	for !p.at(lexer.TokenEOF) {
		for _, tt := range types {
			if p.at(tt) {
				return
			}
		}
		p.next()
	}
}

// parseModel parses the top level of a model file.
func (p *Parser) parseModel() {
	for !p.at(lexer.TokenEOF) {
		switch p.tok().Type {
		case lexer.TokenProcess:
			p.parseTemplate()
		case lexer.TokenSystem:
			p.parseSystemLine()
		case lexer.TokenProgress:
			p.parseProgress()
		case lexer.TokenBefore:
			p.next()
			p.expect(lexer.TokenLBrace)
			p.sys.BeforeUpdate = append(p.sys.BeforeUpdate, p.parseExprList())
			p.expect(lexer.TokenRBrace)
		case lexer.TokenAfter:
			p.next()
			p.expect(lexer.TokenLBrace)
			p.sys.AfterUpdate = append(p.sys.AfterUpdate, p.parseExprList())
			p.expect(lexer.TokenRBrace)
		case lexer.TokenIdentifier:
			// Either an instantiation `Name = Template(args);` or a
			// declaration using a typedef name.
			if p.peek(1).Type == lexer.TokenAssignOp {
				p.parseInstantiation()
				continue
			}
			p.parseDeclaration(&p.sys.Global)
		default:
			p.parseDeclaration(&p.sys.Global)
		}
	}
}

// parseInstantiation parses `Name = Template(args);`.
func (p *Parser) parseInstantiation() {
	name := p.expect(lexer.TokenIdentifier)
	p.expect(lexer.TokenAssignOp)
	tmplTok := p.expect(lexer.TokenIdentifier)

	var tmpl *system.Template
	if sym, ok := p.scope.Resolve(tmplTok.Text); ok {
		tmpl, _ = sym.Data().(*system.Template)
	}
	if tmpl == nil {
		p.errorf(tmplTok.Pos, "unknown template '%s'", tmplTok.Text)
	}

	var args []*ast.Expression
	p.expect(lexer.TokenLParen)
	for !p.at(lexer.TokenRParen) && !p.at(lexer.TokenEOF) {
		args = append(args, p.parseAssignment())
		if !p.accept(lexer.TokenComma) {
			break
		}
	}
	p.expect(lexer.TokenRParen)
	p.expect(lexer.TokenSemicolon)

	if tmpl == nil {
		return
	}
	formals := tmpl.Parameters.Symbols()
	if len(args) != len(formals) {
		p.errorf(name.Pos, "wrong number of arguments to template '%s'", tmplTok.Text)
		return
	}
	mapping := make([]system.ParamAssignment, len(args))
	for i, formal := range formals {
		mapping[i] = system.ParamAssignment{Formal: formal, Actual: args[i]}
	}
	p.sys.AddInstance(name.Text, tmpl, mapping)
}

// parseSystemLine parses `system Name, Name;`. Parameterless
// templates named here are instantiated implicitly.
func (p *Parser) parseSystemLine() {
	p.expect(lexer.TokenSystem)
	for {
		name := p.expect(lexer.TokenIdentifier)
		sym, ok := p.scope.Resolve(name.Text)
		if !ok {
			p.errorf(name.Pos, "unknown process '%s'", name.Text)
		} else if tmpl, isTemplate := sym.Data().(*system.Template); isTemplate {
			if tmpl.Parameters.Size() != 0 {
				p.errorf(name.Pos, "template '%s' cannot be instantiated without arguments", name.Text)
			} else {
				p.sys.AddInstance(name.Text, tmpl, nil)
			}
		} else if _, isInstance := sym.Data().(*system.Instance); !isInstance {
			p.errorf(name.Pos, "'%s' is not a process", name.Text)
		}
		if !p.accept(lexer.TokenComma) {
			break
		}
	}
	p.expect(lexer.TokenSemicolon)
}

// parseProgress parses `progress { [guard :] measure; ... }`.
func (p *Parser) parseProgress() {
	p.expect(lexer.TokenProgress)
	p.expect(lexer.TokenLBrace)
	for !p.at(lexer.TokenRBrace) && !p.at(lexer.TokenEOF) {
		first := p.parseExprList()
		progress := &system.Progress{Measure: first}
		if p.accept(lexer.TokenColon) {
			progress.Guard = first
			progress.Measure = p.parseExprList()
		}
		p.expect(lexer.TokenSemicolon)
		p.sys.Progress = append(p.sys.Progress, progress)
	}
	p.expect(lexer.TokenRBrace)
}
