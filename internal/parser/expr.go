package parser

import (
	"github.com/dannybpoulsen/utap/internal/ast"
	"github.com/dannybpoulsen/utap/internal/lexer"
)

// staticType computes the type a postfix chain is known to have at
// build time, peeling array layers for index expressions. Index nodes
// themselves are typed later by the checker.
func staticType(e *ast.Expression) *ast.Type {
	if e.Empty() {
		return ast.UnknownType
	}
	if e.Kind == ast.ExprIndex {
		t := staticType(e.Child(0))
		if t.Base() == ast.BaseArray {
			return t.Sub()
		}
		return ast.UnknownType
	}
	return e.GetType()
}

// parseExprList parses a comma expression, folding left.
func (p *Parser) parseExprList() *ast.Expression {
	e := p.parseAssignment()
	for p.at(lexer.TokenComma) {
		comma := p.next()
		right := p.parseAssignment()
		e = ast.NewBinary(comma.Pos, ast.ExprComma, e, right)
	}
	return e
}

var assignKinds = map[lexer.TokenType]ast.ExprKind{
	lexer.TokenAssignOp:    ast.ExprAssign,
	lexer.TokenPlusAssign:  ast.ExprAssignPlus,
	lexer.TokenMinusAssign: ast.ExprAssignMinus,
	lexer.TokenMulAssign:   ast.ExprAssignMult,
	lexer.TokenDivAssign:   ast.ExprAssignDiv,
	lexer.TokenModAssign:   ast.ExprAssignMod,
	lexer.TokenAndAssign:   ast.ExprAssignAnd,
	lexer.TokenOrAssign:    ast.ExprAssignOr,
	lexer.TokenXorAssign:   ast.ExprAssignXor,
	lexer.TokenShlAssign:   ast.ExprAssignShiftLeft,
	lexer.TokenShrAssign:   ast.ExprAssignShiftRight,
}

// parseAssignment parses right-associative assignment operators.
func (p *Parser) parseAssignment() *ast.Expression {
	e := p.parseTernary()
	if kind, ok := assignKinds[p.tok().Type]; ok {
		op := p.next()
		right := p.parseAssignment()
		return ast.NewBinary(op.Pos, kind, e, right)
	}
	return e
}

func (p *Parser) parseTernary() *ast.Expression {
	cond := p.parseOr()
	if p.at(lexer.TokenQuestion) {
		q := p.next()
		then := p.parseTernary()
		p.expect(lexer.TokenColon)
		els := p.parseTernary()
		return ast.NewTernary(q.Pos, ast.ExprInlineIf, cond, then, els)
	}
	return cond
}

func (p *Parser) parseOr() *ast.Expression {
	e := p.parseAnd()
	for p.at(lexer.TokenOrOr) || p.at(lexer.TokenOr2) {
		op := p.next()
		e = ast.NewBinary(op.Pos, ast.ExprOr, e, p.parseAnd())
	}
	return e
}

func (p *Parser) parseAnd() *ast.Expression {
	e := p.parseBitOr()
	for p.at(lexer.TokenAndAnd) || p.at(lexer.TokenAnd2) {
		op := p.next()
		e = ast.NewBinary(op.Pos, ast.ExprAnd, e, p.parseBitOr())
	}
	return e
}

func (p *Parser) parseBitOr() *ast.Expression {
	e := p.parseBitXor()
	for p.at(lexer.TokenBitOr) {
		op := p.next()
		e = ast.NewBinary(op.Pos, ast.ExprBitOr, e, p.parseBitXor())
	}
	return e
}

func (p *Parser) parseBitXor() *ast.Expression {
	e := p.parseBitAnd()
	for p.at(lexer.TokenBitXor) {
		op := p.next()
		e = ast.NewBinary(op.Pos, ast.ExprBitXor, e, p.parseBitAnd())
	}
	return e
}

func (p *Parser) parseBitAnd() *ast.Expression {
	e := p.parseEquality()
	for p.at(lexer.TokenBitAnd) {
		op := p.next()
		e = ast.NewBinary(op.Pos, ast.ExprBitAnd, e, p.parseEquality())
	}
	return e
}

func (p *Parser) parseEquality() *ast.Expression {
	e := p.parseRelational()
	for p.at(lexer.TokenEq) || p.at(lexer.TokenNe) {
		op := p.next()
		kind := ast.ExprEq
		if op.Type == lexer.TokenNe {
			kind = ast.ExprNeq
		}
		e = ast.NewBinary(op.Pos, kind, e, p.parseRelational())
	}
	return e
}

var relationalKinds = map[lexer.TokenType]ast.ExprKind{
	lexer.TokenLt: ast.ExprLess,
	lexer.TokenLe: ast.ExprLessEq,
	lexer.TokenGe: ast.ExprGreaterEq,
	lexer.TokenGt: ast.ExprGreater,
}

func (p *Parser) parseRelational() *ast.Expression {
	e := p.parseMinMax()
	for {
		kind, ok := relationalKinds[p.tok().Type]
		if !ok {
			return e
		}
		op := p.next()
		e = ast.NewBinary(op.Pos, kind, e, p.parseMinMax())
	}
}

func (p *Parser) parseMinMax() *ast.Expression {
	e := p.parseShift()
	for p.at(lexer.TokenMinOp) || p.at(lexer.TokenMaxOp) {
		op := p.next()
		kind := ast.ExprMin
		if op.Type == lexer.TokenMaxOp {
			kind = ast.ExprMax
		}
		e = ast.NewBinary(op.Pos, kind, e, p.parseShift())
	}
	return e
}

func (p *Parser) parseShift() *ast.Expression {
	e := p.parseAdditive()
	for p.at(lexer.TokenShl) || p.at(lexer.TokenShr) {
		op := p.next()
		kind := ast.ExprShiftLeft
		if op.Type == lexer.TokenShr {
			kind = ast.ExprShiftRight
		}
		e = ast.NewBinary(op.Pos, kind, e, p.parseAdditive())
	}
	return e
}

func (p *Parser) parseAdditive() *ast.Expression {
	e := p.parseMultiplicative()
	for p.at(lexer.TokenPlus) || p.at(lexer.TokenMinus) {
		op := p.next()
		kind := ast.ExprPlus
		if op.Type == lexer.TokenMinus {
			kind = ast.ExprMinus
		}
		e = ast.NewBinary(op.Pos, kind, e, p.parseMultiplicative())
	}
	return e
}

func (p *Parser) parseMultiplicative() *ast.Expression {
	e := p.parseUnary()
	for p.at(lexer.TokenMul) || p.at(lexer.TokenDiv) || p.at(lexer.TokenMod) {
		op := p.next()
		kind := ast.ExprMult
		switch op.Type {
		case lexer.TokenDiv:
			kind = ast.ExprDiv
		case lexer.TokenMod:
			kind = ast.ExprMod
		}
		e = ast.NewBinary(op.Pos, kind, e, p.parseUnary())
	}
	return e
}

func (p *Parser) parseUnary() *ast.Expression {
	switch p.tok().Type {
	case lexer.TokenNot, lexer.TokenNot2:
		op := p.next()
		return ast.NewUnary(op.Pos, ast.ExprNot, p.parseUnary())
	case lexer.TokenMinus:
		op := p.next()
		return ast.NewUnary(op.Pos, ast.ExprNeg, p.parseUnary())
	case lexer.TokenInc:
		op := p.next()
		return ast.NewUnary(op.Pos, ast.ExprPreIncrement, p.parseUnary())
	case lexer.TokenDec:
		op := p.next()
		return ast.NewUnary(op.Pos, ast.ExprPreDecrement, p.parseUnary())
	default:
		return p.parsePostfix()
	}
}

func (p *Parser) parsePostfix() *ast.Expression {
	e := p.parsePrimary()
	for {
		switch p.tok().Type {
		case lexer.TokenLBracket:
			op := p.next()
			index := p.parseExprList()
			p.expect(lexer.TokenRBracket)
			e = ast.NewBinary(op.Pos, ast.ExprIndex, e, index)

		case lexer.TokenDot:
			op := p.next()
			field := p.expect(lexer.TokenIdentifier)
			t := staticType(e)
			fields := t.RecordFields()
			if t.Base() != ast.BaseRecord || fields == nil {
				p.errorf(op.Pos, "left hand side of '.' must be a record")
				e = ast.NewDot(op.Pos, e, -1, ast.UnknownType)
				continue
			}
			index := fields.IndexOf(field.Text)
			if index == -1 {
				p.errorf(field.Pos, "unknown field '%s'", field.Text)
				e = ast.NewDot(op.Pos, e, -1, ast.UnknownType)
				continue
			}
			e = ast.NewDot(op.Pos, e, index, fields.Symbol(index).Type())

		case lexer.TokenLParen:
			op := p.next()
			children := []*ast.Expression{e}
			for !p.at(lexer.TokenRParen) && !p.at(lexer.TokenEOF) {
				children = append(children, p.parseAssignment())
				if !p.accept(lexer.TokenComma) {
					break
				}
			}
			p.expect(lexer.TokenRParen)
			// The call node carries the callee's return type; the
			// checker validates the arguments.
			ret := ast.UnknownType
			if t := staticType(e); t.Base() == ast.BaseFunction {
				ret = t.Sub()
			}
			e = ast.NewNary(op.Pos, ast.ExprFunCall, children, ret)

		case lexer.TokenPrime:
			op := p.next()
			e = ast.NewUnary(op.Pos, ast.ExprRate, e)

		case lexer.TokenInc:
			op := p.next()
			e = ast.NewUnary(op.Pos, ast.ExprPostIncrement, e)

		case lexer.TokenDec:
			op := p.next()
			e = ast.NewUnary(op.Pos, ast.ExprPostDecrement, e)

		default:
			return e
		}
	}
}

func (p *Parser) parsePrimary() *ast.Expression {
	tok := p.tok()
	switch tok.Type {
	case lexer.TokenInteger:
		p.next()
		return ast.NewConstant(tok.Pos, tok.Value)

	case lexer.TokenTrue:
		p.next()
		return ast.NewBoolConstant(tok.Pos, true)

	case lexer.TokenFalse:
		p.next()
		return ast.NewBoolConstant(tok.Pos, false)

	case lexer.TokenDeadlock:
		p.next()
		e := &ast.Expression{Kind: ast.ExprDeadlock, Pos: tok.Pos, Type: ast.ConstraintType}
		return e

	case lexer.TokenForall:
		p.next()
		p.expect(lexer.TokenLParen)
		name := p.expect(lexer.TokenIdentifier)
		p.expect(lexer.TokenColon)
		typ := p.parseType()
		p.expect(lexer.TokenRParen)

		frame := ast.NewSubFrame(p.scope)
		sym := frame.AddSymbol(name.Text, typ, nil)
		bound := ast.NewIdentifier(name.Pos, sym)

		saved := p.scope
		p.scope = frame
		body := p.parseTernary()
		p.scope = saved
		return ast.NewBinary(tok.Pos, ast.ExprForall, bound, body)

	case lexer.TokenLParen:
		p.next()
		e := p.parseExprList()
		p.expect(lexer.TokenRParen)
		return e

	case lexer.TokenIdentifier:
		p.next()
		sym, ok := p.scope.Resolve(tok.Text)
		if !ok {
			p.errorf(tok.Pos, "unknown identifier '%s'", tok.Text)
			sym = ast.NewFrame().AddSymbol(tok.Text, ast.UnknownType, nil)
		}
		if _, isAlias := sym.Data().(typeAlias); isAlias {
			p.errorf(tok.Pos, "type name '%s' is not a value", tok.Text)
		}
		return ast.NewIdentifier(tok.Pos, sym)

	default:
		p.errorf(tok.Pos, "unexpected '%s' in expression", tok)
		p.next()
		return ast.NewConstant(tok.Pos, 0)
	}
}

// parseProperty parses a property: a path quantifier applied to a
// state expression, or a leads-to property `p --> q`.
func (p *Parser) parseProperty() *ast.Expression {
	e := p.parseQuantified()
	if p.at(lexer.TokenLeadsTo) {
		op := p.next()
		right := p.parseQuantified()
		prop := ast.NewBinary(op.Pos, ast.ExprLeadsTo, e, right)
		prop.SetType(ast.ConstraintType)
		return prop
	}
	return e
}

func (p *Parser) parseQuantified() *ast.Expression {
	tok := p.tok()
	if tok.Type == lexer.TokenIdentifier && (tok.Text == "E" || tok.Text == "A") {
		var kind ast.ExprKind
		matched := true
		switch {
		case tok.Text == "E" && p.peek(1).Type == lexer.TokenLt && p.peek(2).Type == lexer.TokenGt:
			kind = ast.ExprEF
		case tok.Text == "E" && p.peek(1).Type == lexer.TokenLBracket && p.peek(2).Type == lexer.TokenRBracket:
			kind = ast.ExprEG
		case tok.Text == "A" && p.peek(1).Type == lexer.TokenLt && p.peek(2).Type == lexer.TokenGt:
			kind = ast.ExprAF
		case tok.Text == "A" && p.peek(1).Type == lexer.TokenLBracket && p.peek(2).Type == lexer.TokenRBracket:
			kind = ast.ExprAG
		default:
			matched = false
		}
		if matched {
			p.next()
			p.next()
			p.next()
			body := p.parseTernary()
			prop := ast.NewUnary(tok.Pos, kind, body)
			prop.SetType(ast.ConstraintType)
			return prop
		}
	}
	return p.parseTernary()
}

// parseSyncLabel parses `chanexpr !` or `chanexpr ?`.
func (p *Parser) parseSyncLabel() *ast.Expression {
	channel := p.parsePostfix()
	tok := p.tok()
	switch tok.Type {
	case lexer.TokenNot:
		p.next()
		return ast.NewSync(tok.Pos, channel, ast.SyncSend)
	case lexer.TokenQuestion:
		p.next()
		return ast.NewSync(tok.Pos, channel, ast.SyncReceive)
	default:
		p.errorf(tok.Pos, "expected '!' or '?' in synchronisation")
		return ast.NewSync(tok.Pos, channel, ast.SyncSend)
	}
}
