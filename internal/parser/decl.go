package parser

import (
	"github.com/dannybpoulsen/utap/internal/ast"
	"github.com/dannybpoulsen/utap/internal/lexer"
	"github.com/dannybpoulsen/utap/internal/system"
)

// isTypeStart reports whether the current token can begin a type.
func (p *Parser) isTypeStart() bool {
	switch p.tok().Type {
	case lexer.TokenConst, lexer.TokenMeta, lexer.TokenUrgent, lexer.TokenBroadcast,
		lexer.TokenInt, lexer.TokenBool, lexer.TokenClock, lexer.TokenChan,
		lexer.TokenScalar, lexer.TokenStruct, lexer.TokenVoid:
		return true
	case lexer.TokenIdentifier:
		if sym, ok := p.scope.Resolve(p.tok().Text); ok {
			_, isAlias := sym.Data().(typeAlias)
			return isAlias
		}
	}
	return false
}

// parseDeclaration parses a typedef, a function or a variable
// declaration into the given scope.
func (p *Parser) parseDeclaration(decls *system.Declarations) {
	if p.accept(lexer.TokenTypedef) {
		base := p.parseType()
		name, typ := p.parseDeclarator(base)
		p.expect(lexer.TokenSemicolon)
		decls.Frame.AddSymbol(name.Text, typ, typeAlias{})
		return
	}

	if !p.isTypeStart() {
		tok := p.tok()
		p.errorf(tok.Pos, "unexpected '%s' in declaration", tok)
		p.next()
		p.skipTo(lexer.TokenSemicolon, lexer.TokenRBrace)
		p.accept(lexer.TokenSemicolon)
		return
	}

	typ := p.parseType()

	// A declarator followed by a parameter list is a function.
	if p.at(lexer.TokenIdentifier) && p.peek(1).Type == lexer.TokenLParen {
		p.parseFunction(decls, typ)
		return
	}

	for {
		name, declared := p.parseDeclarator(typ)
		var init *ast.Expression
		if p.accept(lexer.TokenAssignOp) {
			init = p.parseInitializer()
		}
		decls.AddVariable(name.Text, declared, init)
		if !p.accept(lexer.TokenComma) {
			break
		}
	}
	p.expect(lexer.TokenSemicolon)
}

// parseType parses a possibly prefixed base type.
func (p *Parser) parseType() *ast.Type {
	var prefixes ast.Prefix
	for {
		switch p.tok().Type {
		case lexer.TokenConst:
			prefixes |= ast.PrefixConstant
		case lexer.TokenMeta:
			prefixes |= ast.PrefixMeta
		case lexer.TokenUrgent:
			prefixes |= ast.PrefixUrgent
		case lexer.TokenBroadcast:
			prefixes |= ast.PrefixBroadcast
		default:
			return applyPrefixes(p.parseBaseType(), prefixes)
		}
		p.next()
	}
}

func applyPrefixes(t *ast.Type, prefixes ast.Prefix) *ast.Type {
	for _, bit := range []ast.Prefix{
		ast.PrefixUrgent, ast.PrefixCommitted, ast.PrefixConstant,
		ast.PrefixBroadcast, ast.PrefixReference, ast.PrefixMeta,
	} {
		if prefixes&bit != 0 {
			t = t.SetPrefix(true, bit)
		}
	}
	return t
}

func (p *Parser) parseBaseType() *ast.Type {
	tok := p.tok()
	switch tok.Type {
	case lexer.TokenInt:
		p.next()
		if p.accept(lexer.TokenLBracket) {
			lower := p.parseAssignment()
			p.expect(lexer.TokenComma)
			upper := p.parseAssignment()
			p.expect(lexer.TokenRBracket)
			return ast.NewInteger(lower, upper)
		}
		return ast.IntType

	case lexer.TokenBool:
		p.next()
		return ast.BoolType

	case lexer.TokenClock:
		p.next()
		return ast.ClockType

	case lexer.TokenChan:
		p.next()
		return ast.ChannelType

	case lexer.TokenVoid:
		p.next()
		return ast.VoidType

	case lexer.TokenScalar:
		p.next()
		p.expect(lexer.TokenLBracket)
		size := p.parseAssignment()
		p.expect(lexer.TokenRBracket)
		lower := ast.NewConstant(size.Position(), 0)
		upper := ast.NewBinary(size.Position(), ast.ExprMinus, size, ast.NewConstant(size.Position(), 1))
		return ast.NewScalarSet(lower, upper)

	case lexer.TokenStruct:
		p.next()
		fields := ast.NewFrame()
		p.expect(lexer.TokenLBrace)
		for !p.at(lexer.TokenRBrace) && !p.at(lexer.TokenEOF) {
			fieldType := p.parseType()
			for {
				name, declared := p.parseDeclarator(fieldType)
				if fields.IndexOf(name.Text) != -1 {
					p.errorf(name.Pos, "duplicate field '%s'", name.Text)
				}
				fields.AddSymbol(name.Text, declared, nil)
				if !p.accept(lexer.TokenComma) {
					break
				}
			}
			p.expect(lexer.TokenSemicolon)
		}
		p.expect(lexer.TokenRBrace)
		return ast.NewRecord(fields)

	case lexer.TokenIdentifier:
		if sym, ok := p.scope.Resolve(tok.Text); ok {
			if _, isAlias := sym.Data().(typeAlias); isAlias {
				p.next()
				return sym.Type()
			}
		}
		p.errorf(tok.Pos, "unknown type '%s'", tok.Text)
		p.next()
		return ast.UnknownType

	default:
		p.errorf(tok.Pos, "expected a type but found '%s'", tok)
		p.next()
		return ast.UnknownType
	}
}

// parseDeclarator parses a name with optional array dimensions and
// returns the name token and the full declared type. Dimensions
// apply outermost first, so `int a[2][3]` is an array of two arrays
// of three integers.
func (p *Parser) parseDeclarator(base *ast.Type) (lexer.Token, *ast.Type) {
	name := p.expect(lexer.TokenIdentifier)
	var sizes []*ast.Type
	for p.accept(lexer.TokenLBracket) {
		sizes = append(sizes, p.parseArraySize())
		p.expect(lexer.TokenRBracket)
	}
	typ := base
	for i := len(sizes) - 1; i >= 0; i-- {
		typ = ast.NewArray(typ, sizes[i])
	}
	return name, typ
}

// parseArraySize parses one array dimension: either a typedef name
// denoting an integer or scalar range, or an expression n giving the
// index range [0, n-1].
func (p *Parser) parseArraySize() *ast.Type {
	if p.at(lexer.TokenIdentifier) {
		if sym, ok := p.scope.Resolve(p.tok().Text); ok {
			if _, isAlias := sym.Data().(typeAlias); isAlias &&
				(sym.Type().IsInteger() || sym.Type().Base() == ast.BaseScalar) {
				p.next()
				return sym.Type()
			}
		}
	}
	size := p.parseAssignment()
	lower := ast.NewConstant(size.Position(), 0)
	upper := ast.NewBinary(size.Position(), ast.ExprMinus, size, ast.NewConstant(size.Position(), 1))
	return ast.NewInteger(lower, upper)
}

// parseInitializer parses an expression or a brace-enclosed list of
// positional and named entries.
func (p *Parser) parseInitializer() *ast.Expression {
	if !p.at(lexer.TokenLBrace) {
		return p.parseAssignment()
	}
	open := p.expect(lexer.TokenLBrace)
	entries := ast.NewFrame()
	var children []*ast.Expression
	for !p.at(lexer.TokenRBrace) && !p.at(lexer.TokenEOF) {
		name := ""
		if p.at(lexer.TokenIdentifier) && p.peek(1).Type == lexer.TokenAssignOp {
			name = p.next().Text
			p.next()
		}
		child := p.parseInitializer()
		entries.AddSymbol(name, child.GetType(), nil)
		children = append(children, child)
		if !p.accept(lexer.TokenComma) {
			break
		}
	}
	p.expect(lexer.TokenRBrace)
	return ast.NewNary(open.Pos, ast.ExprList, children, ast.NewRecord(entries))
}
