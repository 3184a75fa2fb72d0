package parser

import (
	"github.com/dannybpoulsen/utap/internal/ast"
	"github.com/dannybpoulsen/utap/internal/lexer"
	"github.com/dannybpoulsen/utap/internal/system"
)

// parseFunction parses a function declaration with the given return
// type. Parameters are shared between the function type and the
// frame of the outermost body block, so the checker treats them as
// local variables.
func (p *Parser) parseFunction(decls *system.Declarations, returnType *ast.Type) {
	name := p.expect(lexer.TokenIdentifier)

	params := ast.NewSubFrame(p.scope)
	p.expect(lexer.TokenLParen)
	for !p.at(lexer.TokenRParen) && !p.at(lexer.TokenEOF) {
		p.parseParameter(params)
		if !p.accept(lexer.TokenComma) {
			break
		}
	}
	p.expect(lexer.TokenRParen)

	fn := decls.AddFunction(name.Text, ast.NewFunction(params, returnType), nil)

	body := &system.BlockStatement{Frame: ast.NewSubFrame(p.scope)}
	body.Frame.AddAll(params)

	saved := p.scope
	p.scope = body.Frame
	p.expect(lexer.TokenLBrace)
	for !p.at(lexer.TokenRBrace) && !p.at(lexer.TokenEOF) {
		if p.isTypeStart() {
			p.parseLocalDeclaration(body.Frame)
			continue
		}
		body.Stmts = append(body.Stmts, p.parseStatement())
	}
	p.expect(lexer.TokenRBrace)
	p.scope = saved

	fn.Body = body
}

// parseStatement parses one statement of a function body.
func (p *Parser) parseStatement() system.Statement {
	switch p.tok().Type {
	case lexer.TokenLBrace:
		return p.parseBlock()

	case lexer.TokenSemicolon:
		p.next()
		return &system.EmptyStatement{}

	case lexer.TokenIf:
		p.next()
		p.expect(lexer.TokenLParen)
		cond := p.parseExprList()
		p.expect(lexer.TokenRParen)
		then := p.parseStatement()
		var els system.Statement
		if p.accept(lexer.TokenElse) {
			els = p.parseStatement()
		}
		return &system.IfStatement{Cond: cond, Then: then, Else: els}

	case lexer.TokenWhile:
		p.next()
		p.expect(lexer.TokenLParen)
		cond := p.parseExprList()
		p.expect(lexer.TokenRParen)
		return &system.WhileStatement{Cond: cond, Body: p.parseStatement()}

	case lexer.TokenDo:
		p.next()
		body := p.parseStatement()
		p.expect(lexer.TokenWhile)
		p.expect(lexer.TokenLParen)
		cond := p.parseExprList()
		p.expect(lexer.TokenRParen)
		p.expect(lexer.TokenSemicolon)
		return &system.DoWhileStatement{Body: body, Cond: cond}

	case lexer.TokenFor:
		return p.parseFor()

	case lexer.TokenReturn:
		p.next()
		var value *ast.Expression
		if !p.at(lexer.TokenSemicolon) {
			value = p.parseExprList()
		}
		p.expect(lexer.TokenSemicolon)
		return &system.ReturnStatement{Value: value}

	case lexer.TokenBreak:
		p.next()
		p.expect(lexer.TokenSemicolon)
		return &system.BreakStatement{}

	case lexer.TokenContinue:
		p.next()
		p.expect(lexer.TokenSemicolon)
		return &system.ContinueStatement{}

	default:
		expr := p.parseExprList()
		p.expect(lexer.TokenSemicolon)
		return &system.ExprStatement{Expr: expr}
	}
}

// parseFor parses both loop forms: the C-style
// `for (init; cond; step)` and the iteration `for (i : type)`.
func (p *Parser) parseFor() system.Statement {
	p.expect(lexer.TokenFor)
	p.expect(lexer.TokenLParen)

	if p.at(lexer.TokenIdentifier) && p.peek(1).Type == lexer.TokenColon {
		name := p.next()
		p.next()
		typ := p.parseType()
		p.expect(lexer.TokenRParen)

		frame := ast.NewSubFrame(p.scope)
		sym := frame.AddSymbol(name.Text, typ, nil)
		saved := p.scope
		p.scope = frame
		body := p.parseStatement()
		p.scope = saved
		return &system.IterationStatement{Sym: sym, Body: body}
	}

	init := p.parseExprList()
	p.expect(lexer.TokenSemicolon)
	cond := p.parseExprList()
	p.expect(lexer.TokenSemicolon)
	step := p.parseExprList()
	p.expect(lexer.TokenRParen)
	return &system.ForStatement{Init: init, Cond: cond, Step: step, Body: p.parseStatement()}
}

// parseBlock parses a brace-enclosed block with local declarations.
func (p *Parser) parseBlock() *system.BlockStatement {
	block := &system.BlockStatement{Frame: ast.NewSubFrame(p.scope)}
	saved := p.scope
	p.scope = block.Frame

	p.expect(lexer.TokenLBrace)
	for !p.at(lexer.TokenRBrace) && !p.at(lexer.TokenEOF) {
		if p.isTypeStart() {
			p.parseLocalDeclaration(block.Frame)
			continue
		}
		block.Stmts = append(block.Stmts, p.parseStatement())
	}
	p.expect(lexer.TokenRBrace)
	p.scope = saved
	return block
}

// parseLocalDeclaration parses a local variable declaration into the
// block frame. Local variables are attached to their symbols, not to
// the surrounding declaration scope.
func (p *Parser) parseLocalDeclaration(frame *ast.Frame) {
	typ := p.parseType()
	for {
		name, declared := p.parseDeclarator(typ)
		var init *ast.Expression
		if p.accept(lexer.TokenAssignOp) {
			init = p.parseInitializer()
		}
		sym := frame.AddSymbol(name.Text, declared, nil)
		sym.SetData(&system.Variable{Sym: sym, Init: init})
		if !p.accept(lexer.TokenComma) {
			break
		}
	}
	p.expect(lexer.TokenSemicolon)
}
