package lexer

import (
	"testing"
)

func scanTypes(t *testing.T, src string) []TokenType {
	t.Helper()
	var types []TokenType
	for _, tok := range New(src, "test").Tokens() {
		if tok.Type == TokenError {
			t.Fatalf("unexpected lex error: %s at %s", tok.Text, tok.Pos)
		}
		types = append(types, tok.Type)
	}
	return types
}

func expectTypes(t *testing.T, src string, want ...TokenType) {
	t.Helper()
	got := scanTypes(t, src)
	want = append(want, TokenEOF)
	if len(got) != len(want) {
		t.Fatalf("%q: got %v, want %v", src, got, want)
	}
	for i := range got {
		if got[i] != want[i] {
			t.Fatalf("%q: token %d is %s, want %s", src, i, got[i], want[i])
		}
	}
}

func TestKeywordsAndIdentifiers(t *testing.T) {
	expectTypes(t, "const int clock chan foo",
		TokenConst, TokenInt, TokenClock, TokenChan, TokenIdentifier)
	expectTypes(t, "process state init trans urgent broadcast",
		TokenProcess, TokenState, TokenInit, TokenTrans, TokenUrgent, TokenBroadcast)
	expectTypes(t, "forall deadlock typedef struct meta",
		TokenForall, TokenDeadlock, TokenTypedef, TokenStruct, TokenMeta)
	if !IsKeyword("select") || IsKeyword("selected") {
		t.Error("keyword recognition is exact-match")
	}
}

func TestOperators(t *testing.T) {
	expectTypes(t, "== != <= >= && || << >>",
		TokenEq, TokenNe, TokenLe, TokenGe, TokenAndAnd, TokenOrOr, TokenShl, TokenShr)
	expectTypes(t, "+= -= <<= >>= ++ --",
		TokenPlusAssign, TokenMinusAssign, TokenShlAssign, TokenShrAssign, TokenInc, TokenDec)
	expectTypes(t, "<? >?", TokenMinOp, TokenMaxOp)
	expectTypes(t, "x' == 2", TokenIdentifier, TokenPrime, TokenEq, TokenInteger)
	expectTypes(t, "p --> q", TokenIdentifier, TokenLeadsTo, TokenIdentifier)
	expectTypes(t, "a -> b", TokenIdentifier, TokenArrow, TokenIdentifier)
	expectTypes(t, "a--", TokenIdentifier, TokenDec)
}

func TestSyncMarkers(t *testing.T) {
	expectTypes(t, "a!", TokenIdentifier, TokenNot)
	expectTypes(t, "a?", TokenIdentifier, TokenQuestion)
}

func TestIntegerLiterals(t *testing.T) {
	tokens := New("42 0", "test").Tokens()
	if tokens[0].Type != TokenInteger || tokens[0].Value != 42 {
		t.Errorf("unexpected token %+v", tokens[0])
	}
	if tokens[1].Value != 0 {
		t.Errorf("unexpected token %+v", tokens[1])
	}

	overflow := New("99999999999", "test").Next()
	if overflow.Type != TokenError {
		t.Error("out-of-range literal must be a lex error")
	}
}

func TestCommentsAndPositions(t *testing.T) {
	src := "// line comment\nx /* block\ncomment */ y"
	tokens := New(src, "model.xta").Tokens()
	if len(tokens) != 3 {
		t.Fatalf("expected x, y, eof; got %v", tokens)
	}
	x, y := tokens[0], tokens[1]
	if x.Pos.Line != 2 || x.Pos.Column != 1 {
		t.Errorf("x at %d:%d, want 2:1", x.Pos.Line, x.Pos.Column)
	}
	if y.Pos.Line != 3 {
		t.Errorf("y on line %d, want 3", y.Pos.Line)
	}
	if x.Pos.Filename != "model.xta" {
		t.Errorf("position filename %q", x.Pos.Filename)
	}
}
